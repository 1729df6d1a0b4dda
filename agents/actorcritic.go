package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/robolab/arm-rl-train/types"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

type ActorCriticConfig struct {
	ActorAlpha  float64
	CriticAlpha float64
	Discount    float64
	Seed        uint64
}

// ActorCritic is a one-step tabular actor-critic trainer: a softmax actor
// over a preference table and a state-value critic
type ActorCritic struct {
	cfg    ActorCriticConfig
	prefs  *QTable
	values map[string]float64
	src    rand.Source
	rand   *rand.Rand
}

var _ types.Trainer = &ActorCritic{}

func NewActorCritic(cfg ActorCriticConfig) *ActorCritic {
	src := rand.NewSource(cfg.Seed)
	return &ActorCritic{
		cfg:    cfg,
		prefs:  NewQTable(),
		values: make(map[string]float64),
		src:    src,
		rand:   rand.New(src),
	}
}

func (a *ActorCritic) Name() string {
	return "actorcritic"
}

func (a *ActorCritic) Locals() map[string]interface{} {
	return map[string]interface{}{
		"algo":         a.Name(),
		"actor_alpha":  a.cfg.ActorAlpha,
		"critic_alpha": a.cfg.CriticAlpha,
		"discount":     a.cfg.Discount,
		"seed":         a.cfg.Seed,
	}
}

func (a *ActorCritic) SaveCheckpoint(path string) error {
	out := map[string]interface{}{
		"preferences": a.prefs,
		"values":      a.values,
	}
	bs, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return os.WriteFile(path, bs, 0644)
}

func (a *ActorCritic) Train(ctx context.Context, env types.Environment, totalSteps int, cb types.Callback) error {
	actions := env.ActionSpace()
	hashes := actionHashes(actions)

	step := 0
	for step < totalSteps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		state, err := env.Reset(ctx)
		if err != nil {
			return fmt.Errorf("resetting environment: %w", err)
		}

		done := false
		for !done && step < totalSteps {
			action, err := a.sampleAction(state, actions, hashes)
			if err != nil {
				return err
			}
			res, err := env.Step(ctx, action)
			if err != nil {
				return fmt.Errorf("stepping environment: %w", err)
			}
			step += 1
			a.update(state, action, res, hashes)
			if err := notify(cb, step, a); err != nil {
				return err
			}
			state = res.State
			done = res.Done
		}
	}
	return nil
}

// softmax over the preference entries of the state. The max preference
// is subtracted before exponentiating so that large preferences do not
// overflow to +Inf.
func (a *ActorCritic) probs(stateHash string, hashes []string) []float64 {
	return softmaxProbs(a.prefs, stateHash, hashes)
}

func (a *ActorCritic) sampleAction(state types.State, actions []types.Action, hashes []string) (types.Action, error) {
	weights := a.probs(state.Hash(), hashes)
	i, ok := sampleuv.NewWeighted(weights, a.src).Take()
	if !ok {
		return nil, fmt.Errorf("sampling action in state %s: policy weights are not normalizable", state.Hash())
	}
	return actions[i], nil
}

func (a *ActorCritic) update(state types.State, action types.Action, res *types.StepResult, hashes []string) {
	stateHash := state.Hash()
	actionHash := action.Hash()

	target := res.Reward
	if !res.Done {
		target += a.cfg.Discount * a.values[res.State.Hash()]
	}
	delta := target - a.values[stateHash]
	a.values[stateHash] += a.cfg.CriticAlpha * delta

	probs := a.probs(stateHash, hashes)
	for i, h := range hashes {
		grad := -probs[i]
		if h == actionHash {
			grad += 1
		}
		cur := a.prefs.Get(stateHash, h, 0)
		a.prefs.Set(stateHash, h, cur+a.cfg.ActorAlpha*delta*grad)
	}
}
