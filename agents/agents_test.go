package agents

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path"
	"testing"

	"github.com/robolab/arm-rl-train/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorCriticTrainsAndCheckpoints(t *testing.T) {
	env := newChainEnv(3, 15)
	ac := NewActorCritic(ActorCriticConfig{
		ActorAlpha:  0.1,
		CriticAlpha: 0.3,
		Discount:    0.9,
		Seed:        11,
	})

	require.NoError(t, ac.Train(context.Background(), env, 3000, nil))

	checkpoint := path.Join(t.TempDir(), "actorcritic_model.json")
	require.NoError(t, ac.SaveCheckpoint(checkpoint))

	bs, err := os.ReadFile(checkpoint)
	require.NoError(t, err)
	out := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(bs, &out))
	assert.Contains(t, out, "preferences")
	assert.Contains(t, out, "values")
}

func TestReinforcePrefersGoalAction(t *testing.T) {
	env := newChainEnv(2, 5)
	r := NewReinforce(ReinforceConfig{
		Alpha:    0.1,
		Discount: 0.9,
		Seed:     3,
	})

	require.NoError(t, r.Train(context.Background(), env, 2000, nil))

	// the single non-goal cell should strongly prefer Right
	right := r.prefs.Get("cell-0", "Right", 0)
	left := r.prefs.Get("cell-0", "Left", 0)
	assert.Greater(t, right, left)
}

func TestActorCriticTrainsWithExtremePreferences(t *testing.T) {
	env := newChainEnv(3, 10)
	ac := NewActorCritic(ActorCriticConfig{
		ActorAlpha:  0.1,
		CriticAlpha: 0.3,
		Discount:    0.9,
		Seed:        1,
	})
	// beyond the range where a plain exp would overflow
	ac.prefs.Set("cell-0", "Right", 800)

	calls := 0
	require.NoError(t, ac.Train(context.Background(), env, 50, func(info *types.StepInfo) error {
		calls += 1
		return nil
	}))
	assert.Equal(t, 50, calls)
}

func TestReinforceTrainsWithExtremePreferences(t *testing.T) {
	env := newChainEnv(3, 10)
	r := NewReinforce(ReinforceConfig{Alpha: 0.1, Discount: 0.9, Seed: 1})
	r.prefs.Set("cell-0", "Left", 800)

	calls := 0
	require.NoError(t, r.Train(context.Background(), env, 50, func(info *types.StepInfo) error {
		calls += 1
		return nil
	}))
	assert.Equal(t, 50, calls)
}

func TestSoftmaxProbsShifted(t *testing.T) {
	prefs := NewQTable()
	prefs.Set("s", "a", 1000)
	prefs.Set("s", "b", 999)

	probs := softmaxProbs(prefs, "s", []string{"a", "b"})
	sum := probs[0] + probs[1]
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, probs[0], probs[1])
	assert.False(t, math.IsNaN(probs[0]))
}

func TestRandomAgentRunsFullBudget(t *testing.T) {
	env := newChainEnv(5, 10)
	r := NewRandomAgent(42)

	calls := 0
	require.NoError(t, r.Train(context.Background(), env, 200, func(info *types.StepInfo) error {
		calls += 1
		return nil
	}))
	assert.Equal(t, 200, calls)
}

func TestRandomSearchFindsGoal(t *testing.T) {
	env := newChainEnv(2, 10)
	rs := NewRandomSearch(RandomSearchConfig{Seed: 5})

	require.NoError(t, rs.Train(context.Background(), env, 2000, nil))

	checkpoint := path.Join(t.TempDir(), "randomsearch_model.json")
	require.NoError(t, rs.SaveCheckpoint(checkpoint))
	bs, err := os.ReadFile(checkpoint)
	require.NoError(t, err)
	out := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(bs, &out))
	assert.InDelta(t, 1.0, out["best_return"], 1e-9)
}

func TestCallbackIntervals(t *testing.T) {
	assert.Equal(t, Intervals{Save: 100, Log: 20}, CallbackIntervals("actorcritic"))
	assert.Equal(t, Intervals{Log: 10}, CallbackIntervals("reinforce"))
	assert.Equal(t, Intervals{}, CallbackIntervals("qlearning"))
	assert.Contains(t, Names(), "qlearning")
	assert.Len(t, Names(), 5)
}
