package armenv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/robolab/arm-rl-train/types"
)

// RemoteEnv talks to an external arm simulator process over a small JSON
// protocol. The simulator owns the physics and rendering; the driver only
// configures it and exchanges observations and actions.
type RemoteEnv struct {
	addr   string
	client *http.Client
	params Params

	actions []types.Action
}

var _ types.Environment = &RemoteEnv{}

// NewRemoteEnv configures the simulator at addr with the given params and
// fetches its action space
func NewRemoteEnv(ctx context.Context, addr string, params Params) (*RemoteEnv, error) {
	env := &RemoteEnv{
		addr:   addr,
		client: &http.Client{Timeout: 30 * time.Second},
		params: params,
	}

	if err := env.post(ctx, "/configure", params, nil); err != nil {
		return nil, fmt.Errorf("configuring simulator: %w", err)
	}

	spec := &specResponse{}
	if err := env.get(ctx, "/spec", spec); err != nil {
		return nil, fmt.Errorf("fetching simulator spec: %w", err)
	}
	if len(spec.Actions) == 0 {
		return nil, fmt.Errorf("simulator at %s reports no actions", addr)
	}
	env.actions = make([]types.Action, len(spec.Actions))
	for i, name := range spec.Actions {
		env.actions[i] = &ArmAction{Direction: name}
	}
	return env, nil
}

type specResponse struct {
	Actions []string               `json:"actions"`
	Params  map[string]interface{} `json:"params"`
}

type resetRequest struct {
	Seed uint64 `json:"seed"`
}

type stepRequest struct {
	Action string `json:"action"`
}

type stepResponse struct {
	Observation []float64 `json:"observation"`
	ID          string    `json:"id"`
	Reward      float64   `json:"reward"`
	Done        bool      `json:"done"`
}

func (e *RemoteEnv) Reset(ctx context.Context) (types.State, error) {
	resp := &stepResponse{}
	if err := e.post(ctx, "/reset", resetRequest{Seed: e.params.Seed}, resp); err != nil {
		return nil, fmt.Errorf("resetting simulator: %w", err)
	}
	return newRemoteState(resp), nil
}

func (e *RemoteEnv) Step(ctx context.Context, a types.Action) (*types.StepResult, error) {
	resp := &stepResponse{}
	if err := e.post(ctx, "/step", stepRequest{Action: a.Hash()}, resp); err != nil {
		return nil, fmt.Errorf("stepping simulator: %w", err)
	}
	return &types.StepResult{
		State:  newRemoteState(resp),
		Reward: resp.Reward,
		Done:   resp.Done,
	}, nil
}

func (e *RemoteEnv) ActionSpace() []types.Action {
	return e.actions
}

func (e *RemoteEnv) Params() map[string]interface{} {
	return e.params.Snapshot()
}

func (e *RemoteEnv) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return e.post(ctx, "/close", nil, nil)
}

func (e *RemoteEnv) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(bs)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+e.addr+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return e.do(req, out)
}

func (e *RemoteEnv) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+e.addr+path, nil)
	if err != nil {
		return err
	}
	return e.do(req, out)
}

func (e *RemoteEnv) do(req *http.Request, out interface{}) error {
	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		bs, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("simulator returned %d: %s", resp.StatusCode, string(bs))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func newRemoteState(resp *stepResponse) *RemoteState {
	return &RemoteState{
		Obs: resp.Observation,
		ID:  resp.ID,
	}
}

// RemoteState is an observation returned by the simulator. The simulator
// provides the state identifier used by tabular policies; when absent the
// quantized feature vector is used instead.
type RemoteState struct {
	Obs []float64
	ID  string
}

var _ types.State = &RemoteState{}

func (s *RemoteState) Hash() string {
	if s.ID != "" {
		return s.ID
	}
	hash := ""
	for _, f := range s.Obs {
		hash = fmt.Sprintf("%s%.2f,", hash, f)
	}
	return hash
}

func (s *RemoteState) Features() []float64 {
	return s.Obs
}
