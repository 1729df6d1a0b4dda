package monitor

import (
	"context"
	"fmt"
	"testing"

	"github.com/robolab/arm-rl-train/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted env: every episode lasts episodeLen steps and yields the next
// reward of the script on its final step
type scriptedEnv struct {
	episodeLen int
	rewards    []float64

	episode int
	step    int
}

type scriptedState struct{ n int }

func (s *scriptedState) Hash() string        { return fmt.Sprintf("s%d", s.n) }
func (s *scriptedState) Features() []float64 { return []float64{float64(s.n)} }

type scriptedAction struct{}

func (a *scriptedAction) Hash() string { return "go" }

func (e *scriptedEnv) Reset(_ context.Context) (types.State, error) {
	e.step = 0
	return &scriptedState{n: 0}, nil
}

func (e *scriptedEnv) Step(_ context.Context, _ types.Action) (*types.StepResult, error) {
	e.step += 1
	done := e.step >= e.episodeLen
	reward := float64(0)
	if done {
		reward = e.rewards[e.episode%len(e.rewards)]
		e.episode += 1
	}
	return &types.StepResult{
		State:  &scriptedState{n: e.step},
		Reward: reward,
		Done:   done,
	}, nil
}

func (e *scriptedEnv) ActionSpace() []types.Action {
	return []types.Action{&scriptedAction{}}
}

func (e *scriptedEnv) Params() map[string]interface{} {
	return map[string]interface{}{"episode_len": e.episodeLen}
}

func (e *scriptedEnv) Close() error { return nil }

func runEpisodes(t *testing.T, m *Monitor, episodes int) {
	t.Helper()
	ctx := context.Background()
	action := &scriptedAction{}
	for i := 0; i < episodes; i++ {
		_, err := m.Reset(ctx)
		require.NoError(t, err)
		done := false
		for !done {
			res, err := m.Step(ctx, action)
			require.NoError(t, err)
			done = res.Done
		}
	}
}

func TestMonitorRecordsEpisodes(t *testing.T) {
	dir := t.TempDir()
	env := &scriptedEnv{episodeLen: 3, rewards: []float64{1, 2, 3}}
	m, err := NewMonitor(env, dir)
	require.NoError(t, err)

	seen := make([]EpisodeStat, 0)
	m.OnEpisode(func(s EpisodeStat) { seen = append(seen, s) })

	runEpisodes(t, m, 3)
	require.NoError(t, m.Close())

	assert.Equal(t, 3, m.Episodes())
	require.Len(t, seen, 3)
	assert.Equal(t, 2.0, seen[1].Reward)
	assert.Equal(t, 3, seen[1].Length)

	stats, err := EpisodeStats(dir)
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, 1.0, stats[0].Reward)
	assert.Equal(t, 3.0, stats[2].Reward)
}

func TestMeanEpisodeRewardLastN(t *testing.T) {
	dir := t.TempDir()
	env := &scriptedEnv{episodeLen: 1, rewards: []float64{0, 0, 0, 6, 6, 6}}
	m, err := NewMonitor(env, dir)
	require.NoError(t, err)
	runEpisodes(t, m, 6)
	require.NoError(t, m.Close())

	mean, n, err := MeanEpisodeReward(dir, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.InDelta(t, 6.0, mean, 1e-9)

	// window larger than the number of episodes uses all of them
	mean, n, err = MeanEpisodeReward(dir, 50)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.InDelta(t, 3.0, mean, 1e-9)
}

func TestMeanEpisodeRewardNoEpisodes(t *testing.T) {
	dir := t.TempDir()
	env := &scriptedEnv{episodeLen: 5, rewards: []float64{1}}
	m, err := NewMonitor(env, dir)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	_, n, err := MeanEpisodeReward(dir, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMeanEpisodeRewardMissingFile(t *testing.T) {
	_, _, err := MeanEpisodeReward(t.TempDir(), 10)
	assert.Error(t, err)
}
