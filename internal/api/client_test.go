package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Field-Sense/internal/game"
)

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:3000/", 0)
	assert.Equal(t, "http://localhost:3000", c.BaseURL())
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
}

func TestHealthcheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathHealthcheck, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	require.NoError(t, New(server.URL, time.Second).Healthcheck(context.Background()))
}

func TestHealthcheck_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	require.Error(t, New(server.URL, time.Second).Healthcheck(context.Background()))
}

func TestHealthcheck_ServerDown(t *testing.T) {
	require.Error(t, New("http://127.0.0.1:1", time.Second).Healthcheck(context.Background()))
}

func TestHeatMap_SendsSnapshotAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathHeatMap, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var raw map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		for _, k := range []string{"gameState", "modes", "normalize", "gridSize"} {
			assert.Contains(t, raw, k)
		}
		_, _ = w.Write([]byte(`{"gridSize":1,"values":[[0.5]],"throwerX":80,"throwerY":15,"mode":"catch"}`))
	}))
	defer server.Close()

	hm, err := New(server.URL, time.Second).HeatMap(context.Background(), HeatMapRequest{
		GameState: game.NewState(game.DefaultField()),
		Modes:     game.Modes{Catch: true},
		GridSize:  1,
	})
	require.NoError(t, err)
	require.NotNil(t, hm)
	assert.Equal(t, "catch", hm.Mode)
	assert.Equal(t, 80.0, hm.ThrowerX)
}

func TestHeatMap_NullIsAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}))
	defer server.Close()

	hm, err := New(server.URL, time.Second).HeatMap(context.Background(), HeatMapRequest{})
	require.NoError(t, err)
	assert.Nil(t, hm)
}

func TestHeatMapSum(t *testing.T) {
	body := `{"sum":12.5}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()
	c := New(server.URL, time.Second)

	sum, ok, err := c.HeatMapSum(context.Background(), HeatMapSumRequest{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 12.5, sum)

	body = `{"sum":null}`
	_, ok, err = c.HeatMapSum(context.Background(), HeatMapSumRequest{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPosition_NullAndPoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathPositionStack:
			_, _ = w.Write([]byte(`{"x":60,"y":20}`))
		default:
			_, _ = w.Write([]byte(`null`))
		}
	}))
	defer server.Close()
	c := New(server.URL, time.Second)

	pt, ok, err := c.PositionStack(context.Background(), PositionRequest{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, game.Point{X: 60, Y: 20}, pt)

	_, ok, err = c.PositionDefender(context.Background(), PositionRequest{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPost_ErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"gameState is required"}`))
	}))
	defer server.Close()

	_, err := New(server.URL, time.Second).Throw(context.Background(), ThrowRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "gameState is required")
}

func TestThrowSpeed_Default(t *testing.T) {
	assert.Equal(t, game.DefaultThrowSpeed, ThrowRequest{}.ThrowSpeed())
	s := 12.0
	assert.Equal(t, 12.0, ThrowRequest{Speed: &s}.ThrowSpeed())
}

func TestPrepare(t *testing.T) {
	require.ErrorIs(t, Prepare(nil), ErrMissingState)

	st := game.NewState(game.Field{FieldLength: 70, FieldWidth: 40, EndZoneDepth: 20})
	require.NoError(t, Prepare(st))
	assert.Equal(t, 110.0, st.Field.TotalLength)

	bad := game.NewState(game.DefaultField())
	bad.AddPlayer(game.NewPlayer("a", game.TeamOffense, 1, 1))
	bad.AddPlayer(game.NewPlayer("a", game.TeamDefense, 2, 2))
	require.ErrorIs(t, Prepare(bad), game.ErrInvalidState)
}
