package armenv

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fake simulator process implementing the JSON protocol
func newFakeSimulator(t *testing.T) (*httptest.Server, *fakeSimState) {
	t.Helper()
	sim := &fakeSimState{}
	mux := http.NewServeMux()
	mux.HandleFunc("/configure", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sim.params))
		sim.configured = true
	})
	mux.HandleFunc("/spec", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"actions": []string{"Up", "Down", "Press"},
		})
	})
	mux.HandleFunc("/reset", func(w http.ResponseWriter, r *http.Request) {
		sim.resets += 1
		json.NewEncoder(w).Encode(map[string]interface{}{
			"observation": []float64{0.1, 0.2},
			"id":          "s0",
		})
	})
	mux.HandleFunc("/step", func(w http.ResponseWriter, r *http.Request) {
		req := make(map[string]string)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		sim.lastAction = req["action"]
		json.NewEncoder(w).Encode(map[string]interface{}{
			"observation": []float64{0.3, 0.4},
			"id":          "s1",
			"reward":      0.5,
			"done":        true,
		})
	})
	mux.HandleFunc("/close", func(w http.ResponseWriter, r *http.Request) {
		sim.closed = true
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, sim
}

type fakeSimState struct {
	configured bool
	resets     int
	closed     bool
	lastAction string
	params     Params
}

func simAddr(srv *httptest.Server) string {
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestRemoteEnvConfiguresAndSteps(t *testing.T) {
	srv, sim := newFakeSimulator(t)

	params := DefaultParams()
	params.UseSRL = true
	params.SRLModelPath = "srl_zoo/logs/model.pth"
	env, err := NewRemoteEnv(context.Background(), simAddr(srv), params)
	require.NoError(t, err)

	assert.True(t, sim.configured)
	assert.True(t, sim.params.UseSRL)
	assert.Equal(t, "srl_zoo/logs/model.pth", sim.params.SRLModelPath)
	require.Len(t, env.ActionSpace(), 3)

	state, err := env.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s0", state.Hash())
	assert.Equal(t, []float64{0.1, 0.2}, state.Features())

	res, err := env.Step(context.Background(), env.ActionSpace()[2])
	require.NoError(t, err)
	assert.Equal(t, "Press", sim.lastAction)
	assert.Equal(t, 0.5, res.Reward)
	assert.True(t, res.Done)
	assert.Equal(t, "s1", res.State.Hash())

	require.NoError(t, env.Close())
	assert.True(t, sim.closed)
}

func TestRemoteEnvRejectsEmptyActionSpace(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/configure", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/spec", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"actions": []string{}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := NewRemoteEnv(context.Background(), simAddr(srv), DefaultParams())
	assert.Error(t, err)
}

func TestRemoteStateHashFallsBackToFeatures(t *testing.T) {
	s := &RemoteState{Obs: []float64{0.123, 0.456}}
	assert.Equal(t, "0.12,0.46,", s.Hash())
}
