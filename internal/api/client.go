package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Garsondee/Field-Sense/internal/game"
)

// Client calls a remote compute service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL is the service root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Healthcheck checks if the compute service is reachable.
func (c *Client) Healthcheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+PathHealthcheck, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck returned status %d", resp.StatusCode)
	}
	return nil
}

// HeatMap fetches the composited map; nil means no overlay.
func (c *Client) HeatMap(ctx context.Context, in HeatMapRequest) (*game.HeatMapData, error) {
	var out *game.HeatMapData
	if err := c.post(ctx, PathHeatMap, in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// HeatMapSum fetches the combined sum; ok is false without a thrower.
func (c *Client) HeatMapSum(ctx context.Context, in HeatMapSumRequest) (sum float64, ok bool, err error) {
	var out HeatMapSumResponse
	if err := c.post(ctx, PathHeatMapSum, in, &out); err != nil {
		return 0, false, err
	}
	if out.Sum == nil {
		return 0, false, nil
	}
	return *out.Sum, true, nil
}

// PositionDefender asks for the paired defender's best spot.
func (c *Client) PositionDefender(ctx context.Context, in PositionRequest) (game.Point, bool, error) {
	return c.position(ctx, PathPositionDefender, in)
}

// PositionOffender asks for the offender's best (or sampled) spot.
func (c *Client) PositionOffender(ctx context.Context, in PositionRequest) (game.Point, bool, error) {
	return c.position(ctx, PathPositionOffender, in)
}

// PositionStack asks for the stack spot.
func (c *Client) PositionStack(ctx context.Context, in PositionRequest) (game.Point, bool, error) {
	return c.position(ctx, PathPositionStack, in)
}

// Update advances a snapshot remotely.
func (c *Client) Update(ctx context.Context, in UpdateRequest) (*game.State, error) {
	var out game.State
	if err := c.post(ctx, PathUpdate, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Throw applies a throw remotely.
func (c *Client) Throw(ctx context.Context, in ThrowRequest) (*game.State, error) {
	var out game.State
	if err := c.post(ctx, PathThrow, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) position(ctx context.Context, path string, in PositionRequest) (game.Point, bool, error) {
	var out *PositionResponse
	if err := c.post(ctx, path, in, &out); err != nil {
		return game.Point{}, false, err
	}
	if out == nil {
		return game.Point{}, false, nil
	}
	return game.Point{X: out.X, Y: out.Y}, true, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, e.Error)
		}
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
