// Package server is the stateless compute service: every request carries a
// full snapshot and gets the engine's answer back as JSON.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Garsondee/Field-Sense/internal/api"
	"github.com/Garsondee/Field-Sense/internal/game"
	"github.com/Garsondee/Field-Sense/internal/metrics"
)

const (
	maxBodyBytes    = 8 << 20
	shutdownTimeout = 5 * time.Second
)

// Config tunes the engine behind every route.
type Config struct {
	Params      game.LayerParams
	Optimizer   game.OptimizerParams
	AllowOrigin string
}

// DefaultConfig uses engine defaults and allows any origin.
func DefaultConfig() Config {
	return Config{
		Params:      game.DefaultLayerParams(),
		Optimizer:   game.DefaultOptimizerParams(),
		AllowOrigin: "*",
	}
}

// Server routes compute requests to the engine.
type Server struct {
	cfg      Config
	logger   zerolog.Logger
	rec      *metrics.Recorder
	mux      *http.ServeMux
	upgrader ws.Upgrader
}

// New wires every route. rec may be nil.
func New(cfg Config, logger zerolog.Logger, rec *metrics.Recorder) *Server {
	if cfg.Optimizer.GridSize <= 0 {
		cfg.Optimizer.GridSize = game.DefaultGridSize
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		rec:    rec,
		mux:    http.NewServeMux(),
	}
	s.upgrader = ws.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 64 * 1024,
		CheckOrigin:     s.originAllowed,
	}

	s.mux.HandleFunc("GET "+api.PathHealthcheck, s.handleHealthcheck)
	s.mux.Handle("POST "+api.PathHeatMap, s.compute("heatmap", s.heatMap))
	s.mux.Handle("POST "+api.PathHeatMapSum, s.compute("heatmap-sum", s.heatMapSum))
	s.mux.Handle("POST "+api.PathPositionDefender, s.compute("position-defender", s.positionDefender))
	s.mux.Handle("POST "+api.PathPositionOffender, s.compute("position-offender", s.positionOffender))
	s.mux.Handle("POST "+api.PathPositionStack, s.compute("position-stack", s.positionStack))
	s.mux.Handle("POST "+api.PathUpdate, s.compute("update", s.update))
	s.mux.Handle("POST "+api.PathThrow, s.compute("throw", s.throw))
	s.mux.HandleFunc("GET "+api.PathHeatMapStream, s.handleStream)
	return s
}

// Handler is the full middleware chain: request logger, access log, CORS.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = s.cors(h)
	h = hlog.AccessHandler(func(r *http.Request, status, size int, took time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", took).
			Msg("request")
	})(h)
	h = hlog.NewHandler(s.logger)(h)
	return h
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info().Str("address", addr).Msg("compute service listening")

	select {
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || s.cfg.AllowOrigin == "*" || origin == s.cfg.AllowOrigin
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", s.cfg.AllowOrigin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// computeFunc decodes its own request and returns the value to encode.
// A returned error is the caller's fault and becomes a 400.
type computeFunc func(r *http.Request) (any, error)

func (s *Server) compute(op string, fn computeFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		out, err := fn(r)
		s.rec.Observe(r.Context(), op, time.Since(start), err)
		if err != nil {
			hlog.FromRequest(r).Debug().Err(err).Str("op", op).Msg("bad request")
			writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, out)
	})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("malformed request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
