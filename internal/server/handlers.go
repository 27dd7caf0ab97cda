package server

import (
	"errors"
	"math"
	"math/rand"
	"net/http"

	"github.com/Garsondee/Field-Sense/internal/api"
	"github.com/Garsondee/Field-Sense/internal/game"
)

var errBadDeltaTime = errors.New("deltaTime must be a finite, non-negative number")

// gridSize picks the requested resolution, or the configured one when none
// was asked for, and rejects grids too large to compute.
func (s *Server) gridSize(f game.Field, requested float64) (float64, error) {
	size := s.cfg.Optimizer.GridSize
	if requested != 0 {
		size = requested
	}
	if size <= 0 {
		size = s.cfg.Optimizer.GridSize
	}
	if err := game.ValidateGrid(f, size); err != nil {
		return 0, err
	}
	return size, nil
}

func (s *Server) optimizer(st *game.State, gridSize float64) (game.OptimizerParams, error) {
	op := s.cfg.Optimizer
	size, err := s.gridSize(st.Field, gridSize)
	if err != nil {
		return op, err
	}
	op.GridSize = size
	return op, nil
}

func (s *Server) heatMapConfig(req api.HeatMapRequest) (game.HeatMapConfig, error) {
	size, err := s.gridSize(req.GameState.Field, req.GridSize)
	if err != nil {
		return game.HeatMapConfig{}, err
	}
	cfg := game.HeatMapConfig{
		Modes:     req.Modes,
		Normalize: req.Normalize,
		GridSize:  size,
		Params:    s.cfg.Params,
	}
	if req.Params != nil {
		cfg.Params = *req.Params
	}
	return cfg, nil
}

func (s *Server) heatMap(r *http.Request) (any, error) {
	var req api.HeatMapRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	if err := api.Prepare(req.GameState); err != nil {
		return nil, err
	}
	cfg, err := s.heatMapConfig(req)
	if err != nil {
		return nil, err
	}
	return game.CalculateHeatMap(req.GameState, cfg), nil
}

func (s *Server) heatMapSum(r *http.Request) (any, error) {
	var req api.HeatMapSumRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	if err := api.Prepare(req.GameState); err != nil {
		return nil, err
	}
	size, err := s.gridSize(req.GameState.Field, req.GridSize)
	if err != nil {
		return nil, err
	}
	var resp api.HeatMapSumResponse
	if sum, ok := game.CombinedSum(req.GameState, size, s.cfg.Params); ok {
		resp.Sum = &sum
	}
	return resp, nil
}

func (s *Server) positionRequest(r *http.Request) (api.PositionRequest, game.OptimizerParams, error) {
	var req api.PositionRequest
	if err := decode(r, &req); err != nil {
		return req, s.cfg.Optimizer, err
	}
	if err := api.Prepare(req.GameState); err != nil {
		return req, s.cfg.Optimizer, err
	}
	op, err := s.optimizer(req.GameState, req.GridSize)
	return req, op, err
}

func position(pt game.Point, ok bool) *api.PositionResponse {
	if !ok {
		return nil
	}
	return &api.PositionResponse{X: pt.X, Y: pt.Y}
}

func (s *Server) positionDefender(r *http.Request) (any, error) {
	req, op, err := s.positionRequest(r)
	if err != nil {
		return nil, err
	}
	return position(game.PositionDefenderOptimal(req.GameState, req.DefenderLabel, op, s.cfg.Params)), nil
}

func (s *Server) positionOffender(r *http.Request) (any, error) {
	req, op, err := s.positionRequest(r)
	if err != nil {
		return nil, err
	}
	if req.Sample {
		rng := rand.New(rand.NewSource(req.Seed)) // #nosec G404 -- placement sampling, not security
		return position(game.SampleOffenderPosition(req.GameState, req.OffenderLabel, op, s.cfg.Params, rng)), nil
	}
	return position(game.PositionOffenderOptimal(req.GameState, req.OffenderLabel, op, s.cfg.Params)), nil
}

func (s *Server) positionStack(r *http.Request) (any, error) {
	req, op, err := s.positionRequest(r)
	if err != nil {
		return nil, err
	}
	return position(game.PositionOffenderStack(req.GameState, req.OffenderLabel, op)), nil
}

func (s *Server) update(r *http.Request) (any, error) {
	var req api.UpdateRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	if err := api.Prepare(req.GameState); err != nil {
		return nil, err
	}
	if req.DeltaTime < 0 || math.IsNaN(req.DeltaTime) || math.IsInf(req.DeltaTime, 0) {
		return nil, errBadDeltaTime
	}
	req.GameState.Advance(req.DeltaTime, req.Kinematic)
	return req.GameState, nil
}

func (s *Server) throw(r *http.Request) (any, error) {
	var req api.ThrowRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	if err := api.Prepare(req.GameState); err != nil {
		return nil, err
	}
	// Without a holder the snapshot comes back unchanged.
	req.GameState.ThrowDisc(req.TargetX, req.TargetY, req.ThrowSpeed())
	return req.GameState, nil
}
