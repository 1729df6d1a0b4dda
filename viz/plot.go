// Package viz renders the training plots the dashboard serves: reward
// against timesteps, a smoothed variant, and per-episode reward over a
// moving window.
package viz

import (
	"fmt"
	"os"
	"path"

	"github.com/robolab/arm-rl-train/monitor"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	RewardPlot   = "reward.png"
	SmoothedPlot = "reward_smoothed.png"
	EpisodesPlot = "episodes.png"
)

type Plotter struct {
	dir    string
	title  string
	window int
}

// NewPlotter creates the plots folder inside the run's log directory.
// window is the moving-average span of the episode plot.
func NewPlotter(logDir, title string, window int) (*Plotter, error) {
	dir := path.Join(logDir, "plots")
	if _, err := os.Stat(dir); err != nil {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, err
		}
	}
	return &Plotter{
		dir:    dir,
		title:  title,
		window: window,
	}, nil
}

func (p *Plotter) Dir() string {
	return p.dir
}

// Refresh re-renders all plots from the finished episodes so far
func (p *Plotter) Refresh(stats []monitor.EpisodeStat) error {
	if len(stats) == 0 {
		return nil
	}

	timesteps := make([]float64, len(stats))
	rewards := make([]float64, len(stats))
	total := 0
	for i, s := range stats {
		total += s.Length
		timesteps[i] = float64(total)
		rewards[i] = s.Reward
	}

	if err := p.renderLine(RewardPlot, p.title, "Timesteps", xys(timesteps, rewards)); err != nil {
		return err
	}

	smoothed := movingAverage(rewards, p.window)
	if err := p.renderLine(SmoothedPlot, p.title+" smoothed", "Timesteps", xys(timesteps, smoothed)); err != nil {
		return err
	}

	episodes := make([]float64, len(stats))
	for i := range stats {
		episodes[i] = float64(i + 1)
	}
	return p.renderLine(EpisodesPlot, fmt.Sprintf("%s [Episodes]", p.title), "Episodes", xys(episodes, smoothed))
}

func (p *Plotter) renderLine(file, title, xLabel string, points plotter.XYs) error {
	pl := plot.New()
	pl.Title.Text = title
	pl.X.Label.Text = xLabel
	pl.Y.Label.Text = "Reward"

	line, err := plotter.NewLine(points)
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(0)
	pl.Add(line)

	return pl.Save(8*vg.Inch, 6*vg.Inch, path.Join(p.dir, file))
}

func xys(x, y []float64) plotter.XYs {
	points := make(plotter.XYs, len(x))
	for i := range x {
		points[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	return points
}

// movingAverage over a trailing window, shorter at the start of the series
func movingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	sum := float64(0)
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
			out[i] = sum / float64(window)
		} else {
			out[i] = sum / float64(i+1)
		}
	}
	return out
}
