// Package monitor records per-episode reward statistics of a training run
// to disk. The periodic callback reads them back to decide whether the
// model improved, the same way the plots do.
package monitor

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/robolab/arm-rl-train/types"
	"gonum.org/v1/gonum/stat"
)

// MonitorFile is the episode log inside a run's log directory
const MonitorFile = "episode_monitor.csv"

// EpisodeStat is one finished episode
type EpisodeStat struct {
	Episode int     `json:"episode"`
	Reward  float64 `json:"reward"`
	Length  int     `json:"length"`
	Elapsed float64 `json:"elapsed"`
}

// Monitor wraps an environment and appends a CSV row for every finished
// episode. Partially run episodes (reset before done) are discarded.
type Monitor struct {
	env types.Environment

	file   *os.File
	writer *csv.Writer
	start  time.Time

	episodes  int
	epReward  float64
	epLength  int
	inEpisode bool

	onEpisode []func(EpisodeStat)
}

var _ types.Environment = &Monitor{}

func NewMonitor(env types.Environment, dir string) (*Monitor, error) {
	f, err := os.OpenFile(path.Join(dir, MonitorFile), os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening episode monitor: %w", err)
	}
	m := &Monitor{
		env:    env,
		file:   f,
		writer: csv.NewWriter(f),
		start:  time.Now(),
	}
	if err := m.writer.Write([]string{"reward", "length", "elapsed"}); err != nil {
		f.Close()
		return nil, err
	}
	m.writer.Flush()
	return m, m.writer.Error()
}

// OnEpisode registers a hook invoked after every finished episode,
// used to stream live statistics to the dashboard
func (m *Monitor) OnEpisode(fn func(EpisodeStat)) {
	m.onEpisode = append(m.onEpisode, fn)
}

func (m *Monitor) Episodes() int {
	return m.episodes
}

func (m *Monitor) Reset(ctx context.Context) (types.State, error) {
	m.epReward = 0
	m.epLength = 0
	m.inEpisode = true
	return m.env.Reset(ctx)
}

func (m *Monitor) Step(ctx context.Context, a types.Action) (*types.StepResult, error) {
	res, err := m.env.Step(ctx, a)
	if err != nil {
		return nil, err
	}
	if m.inEpisode {
		m.epReward += res.Reward
		m.epLength += 1
		if res.Done {
			m.inEpisode = false
			m.episodes += 1
			epStat := EpisodeStat{
				Episode: m.episodes,
				Reward:  m.epReward,
				Length:  m.epLength,
				Elapsed: time.Since(m.start).Seconds(),
			}
			if err := m.record(epStat); err != nil {
				return nil, err
			}
			for _, fn := range m.onEpisode {
				fn(epStat)
			}
		}
	}
	return res, nil
}

func (m *Monitor) record(s EpisodeStat) error {
	row := []string{
		strconv.FormatFloat(s.Reward, 'f', 6, 64),
		strconv.Itoa(s.Length),
		strconv.FormatFloat(s.Elapsed, 'f', 3, 64),
	}
	if err := m.writer.Write(row); err != nil {
		return err
	}
	m.writer.Flush()
	return m.writer.Error()
}

func (m *Monitor) ActionSpace() []types.Action {
	return m.env.ActionSpace()
}

func (m *Monitor) Params() map[string]interface{} {
	return m.env.Params()
}

func (m *Monitor) Close() error {
	m.writer.Flush()
	if err := m.file.Close(); err != nil {
		return err
	}
	return m.env.Close()
}

// EpisodeStats reads back all finished episodes of a run directory
func EpisodeStats(dir string) ([]EpisodeStat, error) {
	f, err := os.Open(path.Join(dir, MonitorFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading episode monitor: %w", err)
	}

	stats := make([]EpisodeStat, 0)
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			// header
			continue
		}
		reward, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			continue
		}
		length, err := strconv.Atoi(row[1])
		if err != nil {
			continue
		}
		elapsed, _ := strconv.ParseFloat(row[2], 64)
		stats = append(stats, EpisodeStat{
			Episode: len(stats) + 1,
			Reward:  reward,
			Length:  length,
			Elapsed: elapsed,
		})
	}
	return stats, nil
}

// MeanEpisodeReward computes the mean reward over the last lastN finished
// episodes of the run. The returned count is the number of episodes the
// mean was computed over, zero when none finished yet.
func MeanEpisodeReward(dir string, lastN int) (float64, int, error) {
	stats, err := EpisodeStats(dir)
	if err != nil {
		return 0, 0, err
	}
	if len(stats) == 0 {
		return 0, 0, nil
	}
	from := 0
	if len(stats) > lastN {
		from = len(stats) - lastN
	}
	rewards := make([]float64, 0, lastN)
	for _, s := range stats[from:] {
		rewards = append(rewards, s.Reward)
	}
	return stat.Mean(rewards, nil), len(rewards), nil
}
