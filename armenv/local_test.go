package armenv

import (
	"context"
	"testing"

	"github.com/robolab/arm-rl-train/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalArmEnvReachesButton(t *testing.T) {
	params := DefaultParams()
	params.Width = 3
	params.Height = 3
	params.MaxEpisodeSteps = 50
	env := NewLocalArmEnv(params)

	ctx := context.Background()
	state, err := env.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, "(0, 0, 2, 2)", state.Hash())

	// walk to the button at the far corner and press it
	var res *types.StepResult
	for _, a := range []*ArmAction{ArmRight, ArmRight, ArmUp, ArmUp, ArmPress} {
		result, err := env.Step(ctx, a)
		require.NoError(t, err)
		res = result
	}
	assert.True(t, res.Done)
	assert.Greater(t, res.Reward, 0.8)
}

func TestLocalArmEnvPressOffButton(t *testing.T) {
	params := DefaultParams()
	params.Width = 3
	params.Height = 3
	env := NewLocalArmEnv(params)

	ctx := context.Background()
	_, err := env.Reset(ctx)
	require.NoError(t, err)

	res, err := env.Step(ctx, ArmPress)
	require.NoError(t, err)
	assert.False(t, res.Done)
	assert.Less(t, res.Reward, 0.0)
}

func TestLocalArmEnvStepLimit(t *testing.T) {
	params := DefaultParams()
	params.Width = 4
	params.Height = 4
	params.MaxEpisodeSteps = 5
	env := NewLocalArmEnv(params)

	ctx := context.Background()
	_, err := env.Reset(ctx)
	require.NoError(t, err)

	done := false
	steps := 0
	for !done {
		res, err := env.Step(ctx, ArmUp)
		require.NoError(t, err)
		done = res.Done
		steps += 1
		require.LessOrEqual(t, steps, 5)
	}
	assert.Equal(t, 5, steps)
}

func TestLocalArmEnvActionRepeat(t *testing.T) {
	params := DefaultParams()
	params.Width = 8
	params.Height = 8
	params.ActionRepeat = 3
	env := NewLocalArmEnv(params)

	ctx := context.Background()
	_, err := env.Reset(ctx)
	require.NoError(t, err)

	res, err := env.Step(ctx, ArmRight)
	require.NoError(t, err)
	state := res.State.(*ArmState)
	assert.Equal(t, 3, state.X)
}

func TestLocalArmEnvStepBeforeReset(t *testing.T) {
	env := NewLocalArmEnv(DefaultParams())
	_, err := env.Step(context.Background(), ArmUp)
	assert.Error(t, err)
}

func TestParamsSnapshot(t *testing.T) {
	params := DefaultParams()
	params.UseSRL = true
	params.SRLModelPath = "srl_zoo/logs/model.pth"
	params.Seed = 3

	snapshot := params.Snapshot()
	assert.Equal(t, true, snapshot["use_srl"])
	assert.Equal(t, "srl_zoo/logs/model.pth", snapshot["srl_model_path"])
	assert.Contains(t, snapshot, "action_repeat")
	assert.Contains(t, snapshot, "max_episode_steps")
}

func TestArmStateFeatures(t *testing.T) {
	params := DefaultParams()
	params.Width = 4
	params.Height = 4
	env := NewLocalArmEnv(params)

	state, err := env.Reset(context.Background())
	require.NoError(t, err)
	features := state.Features()
	require.Len(t, features, 4)
	assert.Equal(t, 0.0, features[0])
	assert.Equal(t, 0.75, features[2])
}
