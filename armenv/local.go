package armenv

import (
	"context"
	"fmt"

	"github.com/robolab/arm-rl-train/types"
	"golang.org/x/exp/rand"
)

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// LocalArmEnv is a built-in planar version of the arm task: the effector
// moves on a bounded grid and must press the button cell. There is no
// physics; the real simulator stays an external process behind RemoteEnv.
// Used for offline runs and tests.
type LocalArmEnv struct {
	params Params
	rand   *rand.Rand

	pos    *ArmState
	button position
	steps  int
}

type position struct {
	X int
	Y int
}

var _ types.Environment = &LocalArmEnv{}

func NewLocalArmEnv(params Params) *LocalArmEnv {
	env := &LocalArmEnv{
		params: params,
		rand:   rand.New(rand.NewSource(params.Seed)),
	}
	env.button = position{X: params.Width - 1, Y: params.Height - 1}
	return env
}

func (e *LocalArmEnv) Reset(_ context.Context) (types.State, error) {
	if e.params.ButtonRandom {
		e.button = position{
			X: e.rand.Intn(e.params.Width),
			Y: e.rand.Intn(e.params.Height),
		}
	}
	e.steps = 0
	e.pos = e.state(0, 0)
	return e.pos, nil
}

func (e *LocalArmEnv) Step(_ context.Context, a types.Action) (*types.StepResult, error) {
	if e.pos == nil {
		return nil, fmt.Errorf("step before reset")
	}
	move, ok := a.(*ArmAction)
	if !ok {
		return nil, fmt.Errorf("unknown action type: %T", a)
	}

	reward := float64(0)
	done := false
	pos := position{X: e.pos.X, Y: e.pos.Y}

	repeat := maxInt(1, e.params.ActionRepeat)
	for i := 0; i < repeat && !done; i++ {
		e.steps += 1
		reward += stepPenalty

		switch move.Direction {
		case "Up":
			pos.Y = minInt(e.params.Height-1, pos.Y+1)
		case "Down":
			pos.Y = maxInt(0, pos.Y-1)
		case "Left":
			pos.X = maxInt(0, pos.X-1)
		case "Right":
			pos.X = minInt(e.params.Width-1, pos.X+1)
		case "Press":
			if pos.X == e.button.X && pos.Y == e.button.Y {
				reward += pressReward
				done = true
			} else {
				reward += missPenalty
			}
		default:
			return nil, fmt.Errorf("unknown action: %s", move.Direction)
		}

		if e.steps >= e.params.MaxEpisodeSteps {
			done = true
		}
	}

	e.pos = e.state(pos.X, pos.Y)
	return &types.StepResult{
		State:  e.pos,
		Reward: reward,
		Done:   done,
	}, nil
}

func (e *LocalArmEnv) state(x, y int) *ArmState {
	return &ArmState{
		X:      x,
		Y:      y,
		Button: e.button,
		width:  e.params.Width,
		height: e.params.Height,
	}
}

func (e *LocalArmEnv) ActionSpace() []types.Action {
	return AllArmActions
}

func (e *LocalArmEnv) Params() map[string]interface{} {
	return e.params.Snapshot()
}

func (e *LocalArmEnv) Close() error {
	return nil
}

const (
	pressReward = 1.0
	missPenalty = -0.1
	stepPenalty = -0.01
)

// ArmState is the observed effector and button position
type ArmState struct {
	X      int
	Y      int
	Button position
	width  int
	height int
}

var _ types.State = &ArmState{}

func (s *ArmState) Hash() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", s.X, s.Y, s.Button.X, s.Button.Y)
}

func (s *ArmState) Features() []float64 {
	return []float64{
		float64(s.X) / float64(s.width),
		float64(s.Y) / float64(s.height),
		float64(s.Button.X) / float64(s.width),
		float64(s.Button.Y) / float64(s.height),
	}
}

// ArmAction is one of the discrete effector commands
type ArmAction struct {
	Direction string
}

var _ types.Action = &ArmAction{}

func (a *ArmAction) Hash() string {
	return a.Direction
}

var (
	ArmUp                       = &ArmAction{"Up"}
	ArmDown                     = &ArmAction{"Down"}
	ArmLeft                     = &ArmAction{"Left"}
	ArmRight                    = &ArmAction{"Right"}
	ArmPress                    = &ArmAction{"Press"}
	AllArmActions []types.Action = []types.Action{
		ArmUp,
		ArmDown,
		ArmLeft,
		ArmRight,
		ArmPress,
	}
)
