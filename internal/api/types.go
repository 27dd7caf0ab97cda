// Package api holds the wire format of the compute service and a client for it.
// Every request carries a complete state snapshot; the service keeps no
// session.
package api

import (
	"errors"
	"fmt"

	"github.com/Garsondee/Field-Sense/internal/game"
)

// Route paths.
const (
	PathHealthcheck      = "/healthcheck"
	PathHeatMap          = "/api/heatmap"
	PathHeatMapSum       = "/api/heatmap-sum"
	PathPositionDefender = "/api/position-defender"
	PathPositionOffender = "/api/position-offender"
	PathPositionStack    = "/api/position-stack"
	PathUpdate           = "/api/update"
	PathThrow            = "/api/throw"
	PathHeatMapStream    = "/ws/heatmap"
)

// HeatMapRequest asks for the composited heat map.
type HeatMapRequest struct {
	GameState *game.State `json:"gameState"`
	Modes     game.Modes  `json:"modes"`
	Normalize bool        `json:"normalize"`
	GridSize  float64     `json:"gridSize"`
	// Params overrides the service's layer tuning when set.
	Params *game.LayerParams `json:"params,omitempty"`
}

// HeatMapSumRequest asks for the four-layer combined sum.
type HeatMapSumRequest struct {
	GameState *game.State `json:"gameState"`
	GridSize  float64     `json:"gridSize"`
}

// HeatMapSumResponse is {"sum": null} without a thrower.
type HeatMapSumResponse struct {
	Sum *float64 `json:"sum"`
}

// PositionRequest drives the three placement endpoints.
type PositionRequest struct {
	GameState     *game.State `json:"gameState"`
	GridSize      float64     `json:"gridSize"`
	DefenderLabel string      `json:"defenderLabel,omitempty"`
	OffenderLabel string      `json:"offenderLabel,omitempty"`
	// Sample picks the offender cell at random, weighted by score, instead
	// of taking the best one. Seed fixes the draw.
	Sample bool  `json:"sample,omitempty"`
	Seed   int64 `json:"seed,omitempty"`
}

// PositionResponse is a placement; the endpoints answer null when none exists.
type PositionResponse struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// UpdateRequest advances the snapshot by DeltaTime seconds.
type UpdateRequest struct {
	GameState *game.State `json:"gameState"`
	DeltaTime float64     `json:"deltaTime"`
	Kinematic bool        `json:"kinematic,omitempty"`
}

// ThrowRequest throws from the snapshot's holder.
type ThrowRequest struct {
	GameState *game.State `json:"gameState"`
	TargetX   float64     `json:"targetX"`
	TargetY   float64     `json:"targetY"`
	Speed     *float64    `json:"speed,omitempty"`
}

// ThrowSpeed returns the requested speed or the default.
func (r ThrowRequest) ThrowSpeed() float64 {
	if r.Speed == nil {
		return game.DefaultThrowSpeed
	}
	return *r.Speed
}

// StreamRequest is one heat-map request on the websocket, tagged with the
// caller's state version.
type StreamRequest struct {
	Version uint64 `json:"version"`
	HeatMapRequest
}

// StreamResponse answers a StreamRequest with the same version.
type StreamResponse struct {
	Version uint64            `json:"version"`
	Data    *game.HeatMapData `json:"data"`
	Error   string            `json:"error,omitempty"`
}

// ErrorResponse is the body of every 4xx/5xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrMissingState is returned when a request has no gameState.
var ErrMissingState = errors.New("gameState is required")

// Prepare validates a decoded snapshot and fills derived fields.
func Prepare(st *game.State) error {
	if st == nil {
		return ErrMissingState
	}
	if err := st.Validate(); err != nil {
		return fmt.Errorf("gameState: %w", err)
	}
	st.Normalize()
	return nil
}
