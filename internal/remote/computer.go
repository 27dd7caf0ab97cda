// Package remote offloads heat-map computation from the viewer. A Delegator
// debounces state changes, runs one computation at a time on a Computer and
// keeps only results for the newest state version.
package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/Garsondee/Field-Sense/internal/api"
	"github.com/Garsondee/Field-Sense/internal/game"
)

// Computer evaluates one self-contained heat-map request.
// *api.Client satisfies it over HTTP.
type Computer interface {
	HeatMap(ctx context.Context, req api.HeatMapRequest) (*game.HeatMapData, error)
}

// Local computes in-process with the given default layer tuning.
type Local struct {
	Params game.LayerParams
}

// NewLocal uses the engine's default tuning.
func NewLocal() *Local {
	return &Local{Params: game.DefaultLayerParams()}
}

// HeatMap runs the compositor directly.
func (l *Local) HeatMap(ctx context.Context, req api.HeatMapRequest) (*game.HeatMapData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.GameState == nil {
		return nil, api.ErrMissingState
	}
	cfg := game.HeatMapConfig{
		Modes:     req.Modes,
		Normalize: req.Normalize,
		GridSize:  req.GridSize,
		Params:    l.Params,
	}
	if req.Params != nil {
		cfg.Params = *req.Params
	}
	return game.CalculateHeatMap(req.GameState, cfg), nil
}

// Stream computes over the service's websocket. Calls are serialized and
// each waits for the answer carrying its own sequence number. Any read or
// write failure, a timeout included, drops the connection; the next call
// dials a fresh one.
type Stream struct {
	mu      sync.Mutex
	url     string
	conn    *ws.Conn
	seq     uint64
	timeout time.Duration
	closed  bool
}

// ErrStreamClosed is returned by HeatMap after Close.
var ErrStreamClosed = errors.New("stream closed")

// streamURL maps http(s) base URLs to the ws(s) heat-map stream.
func streamURL(baseURL string) string {
	url := strings.TrimRight(baseURL, "/") + api.PathHeatMapStream
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return url
}

// DialStream connects to baseURL's heat-map stream. http(s) schemes are
// mapped to ws(s).
func DialStream(ctx context.Context, baseURL string, timeout time.Duration) (*Stream, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	s := &Stream{url: streamURL(baseURL), timeout: timeout}
	if err := s.dial(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Stream) dial(ctx context.Context) error {
	conn, _, err := ws.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("websocket dial failed: %w", err)
	}
	s.conn = conn
	return nil
}

// drop closes a connection that is no longer usable. Gorilla connections
// cannot be read again after a failed read.
func (s *Stream) drop() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

// Connected reports whether a live connection is held.
func (s *Stream) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// HeatMap sends one request and waits for its answer.
func (s *Stream) HeatMap(ctx context.Context, req api.HeatMapRequest) (*game.HeatMapData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStreamClosed
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(s.timeout)
	}
	if s.conn == nil {
		dctx, cancel := context.WithDeadline(ctx, deadline)
		err := s.dial(dctx)
		cancel()
		if err != nil {
			return nil, err
		}
	}
	s.seq++
	want := s.seq

	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		s.drop()
		return nil, fmt.Errorf("websocket SetWriteDeadline: %w", err)
	}
	if err := s.conn.WriteJSON(api.StreamRequest{Version: want, HeatMapRequest: req}); err != nil {
		s.drop()
		return nil, fmt.Errorf("websocket write: %w", err)
	}
	if err := s.conn.SetReadDeadline(deadline); err != nil {
		s.drop()
		return nil, fmt.Errorf("websocket SetReadDeadline: %w", err)
	}
	for {
		var resp api.StreamResponse
		if err := s.conn.ReadJSON(&resp); err != nil {
			s.drop()
			return nil, fmt.Errorf("websocket read: %w", err)
		}
		// The server may answer a superseded request on the same
		// connection with a lower version.
		if resp.Version < want {
			continue
		}
		if resp.Error != "" {
			return nil, fmt.Errorf("stream error: %s", resp.Error)
		}
		return resp.Data, nil
	}
}

// Close sends a close frame and drops the connection.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.conn == nil {
		return nil
	}
	_ = s.conn.WriteControl(ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseNormalClosure, ""), time.Now().Add(time.Second))
	err := s.conn.Close()
	s.conn = nil
	return err
}
