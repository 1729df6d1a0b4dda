package armenv

import (
	"context"
	"fmt"
	"strings"

	"github.com/robolab/arm-rl-train/types"
)

// FrameStack wraps an environment so that observations carry the feature
// vectors of the last N states. On reset the stack is filled with copies
// of the first observation.
type FrameStack struct {
	inner types.Environment
	n     int

	frames []types.State
}

var _ types.Environment = &FrameStack{}

func NewFrameStack(inner types.Environment, n int) (*FrameStack, error) {
	if n < 1 {
		return nil, fmt.Errorf("frame stack size must be positive, got %d", n)
	}
	return &FrameStack{
		inner: inner,
		n:     n,
	}, nil
}

func (f *FrameStack) Reset(ctx context.Context) (types.State, error) {
	state, err := f.inner.Reset(ctx)
	if err != nil {
		return nil, err
	}
	f.frames = make([]types.State, f.n)
	for i := range f.frames {
		f.frames[i] = state
	}
	return f.stacked(), nil
}

func (f *FrameStack) Step(ctx context.Context, a types.Action) (*types.StepResult, error) {
	res, err := f.inner.Step(ctx, a)
	if err != nil {
		return nil, err
	}
	f.frames = append(f.frames[1:], res.State)
	return &types.StepResult{
		State:  f.stacked(),
		Reward: res.Reward,
		Done:   res.Done,
	}, nil
}

func (f *FrameStack) stacked() *StackedState {
	frames := make([]types.State, len(f.frames))
	copy(frames, f.frames)
	return &StackedState{frames: frames}
}

func (f *FrameStack) ActionSpace() []types.Action {
	return f.inner.ActionSpace()
}

func (f *FrameStack) Params() map[string]interface{} {
	params := f.inner.Params()
	params["num_stack"] = f.n
	return params
}

func (f *FrameStack) Close() error {
	return f.inner.Close()
}

// StackedState concatenates the features of the stacked frames. The hash
// joins the frame hashes so that tabular policies see the full window.
type StackedState struct {
	frames []types.State
}

var _ types.State = &StackedState{}

func (s *StackedState) Hash() string {
	hashes := make([]string, len(s.frames))
	for i, f := range s.frames {
		hashes[i] = f.Hash()
	}
	return strings.Join(hashes, "|")
}

func (s *StackedState) Features() []float64 {
	features := make([]float64, 0)
	for _, f := range s.frames {
		features = append(features, f.Features()...)
	}
	return features
}
