package agents

import (
	"context"
	"fmt"

	"github.com/robolab/arm-rl-train/types"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

type ReinforceConfig struct {
	Alpha    float64
	Discount float64
	Seed     uint64
}

// Reinforce is an episodic policy-gradient trainer over a softmax
// preference table, updated from the discounted returns of each episode
type Reinforce struct {
	cfg   ReinforceConfig
	prefs *QTable
	src   rand.Source
}

var _ types.Trainer = &Reinforce{}

func NewReinforce(cfg ReinforceConfig) *Reinforce {
	return &Reinforce{
		cfg:   cfg,
		prefs: NewQTable(),
		src:   rand.NewSource(cfg.Seed),
	}
}

func (r *Reinforce) Name() string {
	return "reinforce"
}

func (r *Reinforce) Locals() map[string]interface{} {
	return map[string]interface{}{
		"algo":     r.Name(),
		"alpha":    r.cfg.Alpha,
		"discount": r.cfg.Discount,
		"seed":     r.cfg.Seed,
	}
}

func (r *Reinforce) SaveCheckpoint(path string) error {
	return r.prefs.SaveJSON(path)
}

func (r *Reinforce) Train(ctx context.Context, env types.Environment, totalSteps int, cb types.Callback) error {
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

		trace := types.NewTrace()
		done := false
		for !done && step < totalSteps {
			action, err := r.sampleAction(state, actions, hashes)
			if err != nil {
				return err
			}
			res, err := env.Step(ctx, action)
			if err != nil {
				return fmt.Errorf("stepping environment: %w", err)
			}
			step += 1
			trace.Append(state, action, res.Reward, res.State)
			if err := notify(cb, step, r); err != nil {
				return err
			}
			state = res.State
			done = res.Done
		}
		r.updateEpisode(trace, hashes)
	}
	return nil
}

func (r *Reinforce) probs(stateHash string, hashes []string) []float64 {
	return softmaxProbs(r.prefs, stateHash, hashes)
}

func (r *Reinforce) sampleAction(state types.State, actions []types.Action, hashes []string) (types.Action, error) {
	weights := r.probs(state.Hash(), hashes)
	i, ok := sampleuv.NewWeighted(weights, r.src).Take()
	if !ok {
		return nil, fmt.Errorf("sampling action in state %s: policy weights are not normalizable", state.Hash())
	}
	return actions[i], nil
}

func (r *Reinforce) updateEpisode(trace *types.Trace, hashes []string) {
	returns := trace.Returns(r.cfg.Discount)
	for i := 0; i < trace.Len(); i++ {
		state, action, _, _, _ := trace.Get(i)
		stateHash := state.Hash()
		actionHash := action.Hash()
		probs := r.probs(stateHash, hashes)
		for j, h := range hashes {
			grad := -probs[j]
			if h == actionHash {
				grad += 1
			}
			cur := r.prefs.Get(stateHash, h, 0)
			r.prefs.Set(stateHash, h, cur+r.cfg.Alpha*returns[i]*grad)
		}
	}
}
