package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Field-Sense/internal/api"
	"github.com/Garsondee/Field-Sense/internal/game"
)

const streamWriteWait = 10 * time.Second

// streamJob is a decoded request, or the reason it could not be decoded.
type streamJob struct {
	req api.StreamRequest
	cfg game.HeatMapConfig
	err string
}

// handleStream serves version-tagged heat-map requests over one websocket.
// The reader keeps only the newest request; anything it replaces before the
// writer picks it up is dropped without being computed.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	logger := s.logger.With().Str("remote", r.RemoteAddr).Logger()
	logger.Debug().Msg("heat-map stream opened")

	pending := make(chan streamJob, 1)
	done := make(chan struct{})
	go s.streamWriter(r.Context(), conn, pending, done, logger)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseGoingAway, ws.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("websocket read error")
			}
			break
		}
		var job streamJob
		if err := json.Unmarshal(msg, &job.req); err != nil {
			job.err = "malformed request body: " + err.Error()
		} else if err := api.Prepare(job.req.GameState); err != nil {
			job.err = err.Error()
		} else if job.cfg, err = s.heatMapConfig(job.req.HeatMapRequest); err != nil {
			job.err = err.Error()
		}

		select {
		case old := <-pending:
			s.rec.Stale(r.Context(), "stream")
			logger.Trace().Uint64("version", old.req.Version).Msg("superseded request dropped")
		default:
		}
		pending <- job
	}
	close(pending)
	<-done
	logger.Debug().Msg("heat-map stream closed")
}

func (s *Server) streamWriter(ctx context.Context, conn *ws.Conn, pending <-chan streamJob, done chan<- struct{}, logger zerolog.Logger) {
	defer close(done)
	broken := false
	for job := range pending {
		if broken {
			continue
		}
		resp := api.StreamResponse{Version: job.req.Version, Error: job.err}
		if job.err == "" {
			start := time.Now()
			resp.Data = game.CalculateHeatMap(job.req.GameState, job.cfg)
			s.rec.Observe(ctx, "stream", time.Since(start), nil)
		}
		if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
			broken = true
			continue
		}
		if err := conn.WriteJSON(resp); err != nil {
			logger.Warn().Err(err).Msg("websocket write error")
			broken = true
		}
	}
}
