package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/robolab/arm-rl-train/types"
	"golang.org/x/exp/rand"
)

// RandomAgent takes uniformly random actions. It learns nothing and
// serves as the baseline the other trainers are compared against.
type RandomAgent struct {
	seed uint64
	rand *rand.Rand
}

var _ types.Trainer = &RandomAgent{}

func NewRandomAgent(seed uint64) *RandomAgent {
	return &RandomAgent{
		seed: seed,
		rand: rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomAgent) Name() string {
	return "random"
}

func (r *RandomAgent) Locals() map[string]interface{} {
	return map[string]interface{}{
		"algo": r.Name(),
		"seed": r.seed,
	}
}

func (r *RandomAgent) SaveCheckpoint(path string) error {
	bs, err := json.Marshal(map[string]interface{}{"algo": r.Name(), "seed": r.seed})
	if err != nil {
		return err
	}
	return os.WriteFile(path, bs, 0644)
}

func (r *RandomAgent) Train(ctx context.Context, env types.Environment, totalSteps int, cb types.Callback) error {
	actions := env.ActionSpace()

	step := 0
	for step < totalSteps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, err := env.Reset(ctx); err != nil {
			return fmt.Errorf("resetting environment: %w", err)
		}

		done := false
		for !done && step < totalSteps {
			a := actions[r.rand.Intn(len(actions))]
			res, err := env.Step(ctx, a)
			if err != nil {
				return fmt.Errorf("stepping environment: %w", err)
			}
			step += 1
			if err := notify(cb, step, r); err != nil {
				return err
			}
			done = res.Done
		}
	}
	return nil
}
