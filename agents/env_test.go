package agents

import (
	"context"
	"fmt"

	"github.com/robolab/arm-rl-train/types"
)

// chainEnv is a deterministic chain of cells. Right moves toward the goal
// cell, Left moves back. Reaching the goal gives reward 1 and ends the
// episode; episodes also end at the step limit.
type chainEnv struct {
	length   int
	maxSteps int

	pos   int
	steps int
}

type chainState struct {
	pos    int
	length int
}

func (s *chainState) Hash() string {
	return fmt.Sprintf("cell-%d", s.pos)
}

func (s *chainState) Features() []float64 {
	return []float64{float64(s.pos) / float64(s.length)}
}

type chainAction struct {
	name string
}

func (a *chainAction) Hash() string {
	return a.name
}

var (
	chainLeft  = &chainAction{"Left"}
	chainRight = &chainAction{"Right"}
)

func newChainEnv(length, maxSteps int) *chainEnv {
	return &chainEnv{
		length:   length,
		maxSteps: maxSteps,
	}
}

func (e *chainEnv) Reset(_ context.Context) (types.State, error) {
	e.pos = 0
	e.steps = 0
	return &chainState{pos: 0, length: e.length}, nil
}

func (e *chainEnv) Step(_ context.Context, a types.Action) (*types.StepResult, error) {
	e.steps += 1
	switch a.Hash() {
	case "Right":
		if e.pos < e.length-1 {
			e.pos += 1
		}
	case "Left":
		if e.pos > 0 {
			e.pos -= 1
		}
	default:
		return nil, fmt.Errorf("unknown action: %s", a.Hash())
	}

	reward := float64(0)
	done := e.steps >= e.maxSteps
	if e.pos == e.length-1 {
		reward = 1
		done = true
	}
	return &types.StepResult{
		State:  &chainState{pos: e.pos, length: e.length},
		Reward: reward,
		Done:   done,
	}, nil
}

func (e *chainEnv) ActionSpace() []types.Action {
	return []types.Action{chainLeft, chainRight}
}

func (e *chainEnv) Params() map[string]interface{} {
	return map[string]interface{}{"length": e.length, "max_steps": e.maxSteps}
}

func (e *chainEnv) Close() error {
	return nil
}
