package agents

import (
	"context"
	"fmt"

	"github.com/robolab/arm-rl-train/types"
	"golang.org/x/exp/rand"
)

type QLearningConfig struct {
	Alpha    float64
	Discount float64
	Epsilon  float64
	Seed     uint64
}

// QLearning is an epsilon-greedy tabular value-based trainer
type QLearning struct {
	cfg    QLearningConfig
	qTable *QTable
	rand   *rand.Rand
}

var _ types.Trainer = &QLearning{}

func NewQLearning(cfg QLearningConfig) *QLearning {
	return &QLearning{
		cfg:    cfg,
		qTable: NewQTable(),
		rand:   rand.New(rand.NewSource(cfg.Seed)),
	}
}

func (q *QLearning) Name() string {
	return "qlearning"
}

func (q *QLearning) Locals() map[string]interface{} {
	return map[string]interface{}{
		"algo":     q.Name(),
		"alpha":    q.cfg.Alpha,
		"discount": q.cfg.Discount,
		"epsilon":  q.cfg.Epsilon,
		"seed":     q.cfg.Seed,
	}
}

func (q *QLearning) SaveCheckpoint(path string) error {
	return q.qTable.SaveJSON(path)
}

func (q *QLearning) Train(ctx context.Context, env types.Environment, totalSteps int, cb types.Callback) error {
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
			a := q.nextAction(state, actions, hashes)
			res, err := env.Step(ctx, a)
			if err != nil {
				return fmt.Errorf("stepping environment: %w", err)
			}
			step += 1
			q.update(state, a, res)
			if err := notify(cb, step, q); err != nil {
				return err
			}
			state = res.State
			done = res.Done
		}
	}
	return nil
}

func (q *QLearning) nextAction(state types.State, actions []types.Action, hashes []string) types.Action {
	if q.rand.Float64() < q.cfg.Epsilon {
		return actions[q.rand.Intn(len(actions))]
	}
	maxAction, _ := q.qTable.MaxAmong(state.Hash(), hashes, 0)
	for i, h := range hashes {
		if h == maxAction {
			return actions[i]
		}
	}
	return actions[0]
}

func (q *QLearning) update(state types.State, action types.Action, res *types.StepResult) {
	stateHash := state.Hash()
	actionHash := action.Hash()

	target := res.Reward
	if !res.Done {
		_, maxNext := q.qTable.Max(res.State.Hash(), 0)
		target += q.cfg.Discount * maxNext
	}
	curVal := q.qTable.Get(stateHash, actionHash, 0)
	q.qTable.Set(stateHash, actionHash, (1-q.cfg.Alpha)*curVal+q.cfg.Alpha*target)
}
