package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Field-Sense/internal/api"
	"github.com/Garsondee/Field-Sense/internal/game"
	"github.com/Garsondee/Field-Sense/internal/metrics"
	"github.com/Garsondee/Field-Sense/internal/metrics/metricstest"
)

func snapshot(t *testing.T) *game.State {
	t.Helper()
	st := game.NewState(game.DefaultField())
	st.AddPlayer(game.NewPlayer("o1", game.TeamOffense, 80, 15))
	st.AddPlayer(game.NewPlayer("o2", game.TeamOffense, 55, 22)).Label = "1"
	st.AddPlayer(game.NewPlayer("d1", game.TeamDefense, 78, 16))
	st.AddPlayer(game.NewPlayer("d2", game.TeamDefense, 52, 25)).Label = "1"
	require.NoError(t, st.CatchDisc("o1"))
	return st
}

func newTestServer(t *testing.T) (*httptest.Server, *api.Client) {
	t.Helper()
	s := New(DefaultConfig(), zerolog.Nop(), nil)
	hs := httptest.NewServer(s.Handler())
	t.Cleanup(hs.Close)
	return hs, api.New(hs.URL, 5*time.Second)
}

func TestHealthcheck(t *testing.T) {
	_, c := newTestServer(t)
	require.NoError(t, c.Healthcheck(context.Background()))
}

func TestHeatMap_MatchesEngine(t *testing.T) {
	_, c := newTestServer(t)
	st := snapshot(t)
	req := api.HeatMapRequest{GameState: st, Modes: game.AllModes(), Normalize: true, GridSize: 2}

	got, err := c.HeatMap(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, got)

	cfg := game.DefaultHeatMapConfig()
	cfg.Modes = game.AllModes()
	cfg.GridSize = 2
	want := game.CalculateHeatMap(snapshot(t), cfg)
	assert.Equal(t, want.Mode, got.Mode)
	assert.Equal(t, want.ThrowerX, got.ThrowerX)
	require.Len(t, got.Values, len(want.Values))
	for i := range want.Values {
		assert.InDeltaSlice(t, want.Values[i], got.Values[i], 1e-12)
	}
}

func TestHeatMap_NoModesIsNull(t *testing.T) {
	_, c := newTestServer(t)
	got, err := c.HeatMap(context.Background(), api.HeatMapRequest{GameState: snapshot(t)})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestHeatMapSum(t *testing.T) {
	_, c := newTestServer(t)
	sum, ok, err := c.HeatMapSum(context.Background(), api.HeatMapSumRequest{GameState: snapshot(t), GridSize: 1})
	require.NoError(t, err)
	require.True(t, ok)
	want, _ := game.CombinedSum(snapshot(t), 1, game.DefaultLayerParams())
	assert.InDelta(t, want, sum, 1e-9)

	st := snapshot(t)
	st.Players[0].HasDisc = false
	st.Disc.HolderID = ""
	_, ok, err = c.HeatMapSum(context.Background(), api.HeatMapSumRequest{GameState: st})
	require.NoError(t, err)
	assert.False(t, ok, "no thrower means a null sum")
}

func TestPositionRoutes(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	def, ok, err := c.PositionDefender(ctx, api.PositionRequest{GameState: snapshot(t), DefenderLabel: "1"})
	require.NoError(t, err)
	require.True(t, ok)
	want, _ := game.PositionDefenderOptimal(snapshot(t), "1", game.DefaultOptimizerParams(), game.DefaultLayerParams())
	assert.Equal(t, want, def)

	off, ok, err := c.PositionOffender(ctx, api.PositionRequest{GameState: snapshot(t)})
	require.NoError(t, err)
	require.True(t, ok)
	want, _ = game.PositionOffenderOptimal(snapshot(t), "", game.DefaultOptimizerParams(), game.DefaultLayerParams())
	assert.Equal(t, want, off)

	a, ok, err := c.PositionOffender(ctx, api.PositionRequest{GameState: snapshot(t), Sample: true, Seed: 9})
	require.NoError(t, err)
	require.True(t, ok)
	b, _, _ := c.PositionOffender(ctx, api.PositionRequest{GameState: snapshot(t), Sample: true, Seed: 9})
	assert.Equal(t, a, b, "same seed, same sample")

	stack, ok, err := c.PositionStack(ctx, api.PositionRequest{GameState: snapshot(t)})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, game.Point{X: 60, Y: 20}, stack)

	_, ok, err = c.PositionDefender(ctx, api.PositionRequest{GameState: snapshot(t), DefenderLabel: "7"})
	require.NoError(t, err)
	assert.False(t, ok, "unknown label has no pair")
}

func TestThrowAndUpdate(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	thrown, err := c.Throw(ctx, api.ThrowRequest{GameState: snapshot(t), TargetX: 55, TargetY: 22})
	require.NoError(t, err)
	assert.True(t, thrown.Disc.InFlight)
	assert.Empty(t, thrown.Disc.HolderID)
	assert.InDelta(t, game.DefaultThrowSpeed, hypot(thrown.Disc.VX, thrown.Disc.VY), 1e-9)

	next, err := c.Update(ctx, api.UpdateRequest{GameState: thrown, DeltaTime: 0.1})
	require.NoError(t, err)
	assert.Less(t, next.Disc.X, thrown.Disc.X, "the disc moves toward the target")

	_, err = c.Update(ctx, api.UpdateRequest{GameState: thrown, DeltaTime: -1})
	require.Error(t, err)
}

func TestBadRequests(t *testing.T) {
	hs, _ := newTestServer(t)
	cases := map[string]string{
		api.PathHeatMap:          `{"gameState": `,
		api.PathHeatMapSum:       `{}`,
		api.PathPositionDefender: `[1,2]`,
		api.PathThrow: `{"gameState": {"field": {"fieldLength": 70, "fieldWidth": 40, "endZoneDepth": 20},
			"players": [{"id": "a", "team": 1}, {"id": "a", "team": 2}], "disc": {}}}`,
	}
	for path, body := range cases {
		resp, err := http.Post(hs.URL+path, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		var e api.ErrorResponse
		decodeBody(t, resp, &e)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		assert.NotEmpty(t, e.Error, path)
	}
}

func TestCORS(t *testing.T) {
	hs, _ := newTestServer(t)
	req, err := http.NewRequest(http.MethodOptions, hs.URL+api.PathHeatMap, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMethodNotAllowed(t *testing.T) {
	hs, _ := newTestServer(t)
	resp, err := http.Get(hs.URL + api.PathHeatMap)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStream_AnswersLatestVersion(t *testing.T) {
	hs, _ := newTestServer(t)
	url := "ws" + strings.TrimPrefix(hs.URL, "http") + api.PathHeatMapStream
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	for v := uint64(1); v <= 3; v++ {
		require.NoError(t, conn.WriteJSON(api.StreamRequest{
			Version:        v,
			HeatMapRequest: api.HeatMapRequest{GameState: snapshot(t), Modes: game.Modes{Catch: true}, GridSize: 5},
		}))
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var last uint64
	for last < 3 {
		var resp api.StreamResponse
		require.NoError(t, conn.ReadJSON(&resp))
		assert.Greater(t, resp.Version, last, "versions arrive in order")
		assert.Empty(t, resp.Error)
		require.NotNil(t, resp.Data)
		assert.Equal(t, game.LayerCatch, resp.Data.Mode)
		last = resp.Version
	}
}

func TestStream_MalformedRequest(t *testing.T) {
	hs, _ := newTestServer(t)
	url := "ws" + strings.TrimPrefix(hs.URL, "http") + api.PathHeatMapStream
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte(`{"version": 4, "gameState": null}`)))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var resp api.StreamResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, uint64(4), resp.Version)
	assert.Contains(t, resp.Error, "gameState")
	assert.Nil(t, resp.Data)
}

func TestOversizedWorkRejected(t *testing.T) {
	hs, _ := newTestServer(t)
	state := `{"field": {"fieldLength": 70, "fieldWidth": 40, "endZoneDepth": 20},
		"players": [{"id": "o1", "team": 1, "x": 80, "y": 15, "hasDisc": true}], "disc": {"x": 80, "y": 15, "holderId": "o1"}}`
	huge := `{"field": {"fieldLength": 1e9, "fieldWidth": 40, "endZoneDepth": 20},
		"players": [{"id": "o1", "team": 1, "x": 80, "y": 15, "hasDisc": true}], "disc": {"x": 80, "y": 15, "holderId": "o1"}}`
	cases := []struct {
		path, body, want string
	}{
		{api.PathHeatMap, `{"gameState": ` + state + `, "modes": {"catch": true}, "gridSize": 0.0001}`, "grid"},
		{api.PathHeatMapSum, `{"gameState": ` + state + `, "gridSize": 0.01}`, "grid"},
		{api.PathPositionDefender, `{"gameState": ` + state + `, "gridSize": 0.1, "defenderLabel": "1"}`, "grid"},
		{api.PathPositionOffender, `{"gameState": ` + state + `, "gridSize": 0.2}`, "grid"},
		{api.PathHeatMap, `{"gameState": ` + huge + `, "modes": {"catch": true}, "gridSize": 1}`, "field"},
		{api.PathUpdate, `{"gameState": ` + huge + `, "deltaTime": 0.1}`, "field"},
	}
	for _, c := range cases {
		resp, err := http.Post(hs.URL+c.path, "application/json", strings.NewReader(c.body))
		require.NoError(t, err)
		var e api.ErrorResponse
		decodeBody(t, resp, &e)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, c.path)
		assert.Contains(t, e.Error, c.want, c.path)
	}

	// The smallest allowed resolution still computes.
	resp, err := http.Post(hs.URL+api.PathHeatMapSum, "application/json",
		strings.NewReader(`{"gameState": `+state+`, "gridSize": 0.25}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStream_RejectsFineGrid(t *testing.T) {
	hs, _ := newTestServer(t)
	url := "ws" + strings.TrimPrefix(hs.URL, "http") + api.PathHeatMapStream
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(api.StreamRequest{
		Version:        9,
		HeatMapRequest: api.HeatMapRequest{GameState: snapshot(t), Modes: game.Modes{Catch: true}, GridSize: 0.001},
	}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var resp api.StreamResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, uint64(9), resp.Version)
	assert.Contains(t, resp.Error, "grid")
	assert.Nil(t, resp.Data)
}

func TestMetrics_CountRequestsAndFailures(t *testing.T) {
	rec, rd := metricstest.New(t)
	hs := httptest.NewServer(New(DefaultConfig(), zerolog.Nop(), rec).Handler())
	defer hs.Close()
	c := api.New(hs.URL, 5*time.Second)

	for i := 0; i < 2; i++ {
		_, err := c.HeatMap(context.Background(), api.HeatMapRequest{GameState: snapshot(t), Modes: game.Modes{Catch: true}, GridSize: 2})
		require.NoError(t, err)
	}
	resp, err := http.Post(hs.URL+api.PathHeatMap, "application/json", strings.NewReader(`{"gameState": `))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, int64(3), rd.Count(metrics.MetricRequests, "heatmap"))
	assert.Equal(t, int64(1), rd.Count(metrics.MetricFailures, "heatmap"))
	assert.Equal(t, uint64(3), rd.Samples(metrics.MetricDuration, "heatmap"))
	assert.Equal(t, int64(0), rd.Count(metrics.MetricRequests, "throw"))
}
