package train

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/robolab/arm-rl-train/dashboard"
	"github.com/robolab/arm-rl-train/monitor"
	"github.com/robolab/arm-rl-train/types"
	"github.com/robolab/arm-rl-train/util"
	"github.com/robolab/arm-rl-train/viz"
	"go.uber.org/zap"
)

// PeriodicCallback is invoked by the training loop at every step. It dumps
// the trainer locals once, evaluates the recent mean episode reward at the
// save cadence, checkpoints the model when the mean improves, and refreshes
// the plots at the log cadence.
type PeriodicCallback struct {
	cfg    *Config
	mon    *monitor.Monitor
	logger *zap.SugaredLogger

	plotter *viz.Plotter
	dash    *dashboard.Server
	redis   *dashboard.RedisPublisher

	bestMeanReward float64
	localsSaved    bool
}

func NewPeriodicCallback(cfg *Config, mon *monitor.Monitor, logger *zap.SugaredLogger,
	plotter *viz.Plotter, dash *dashboard.Server, redis *dashboard.RedisPublisher) *PeriodicCallback {
	return &PeriodicCallback{
		cfg:            cfg,
		mon:            mon,
		logger:         logger,
		plotter:        plotter,
		dash:           dash,
		redis:          redis,
		bestMeanReward: bestRewardFloor,
	}
}

func (p *PeriodicCallback) BestMeanReward() float64 {
	return p.bestMeanReward
}

func (p *PeriodicCallback) OnStep(info *types.StepInfo) error {
	if !p.localsSaved {
		if err := util.WriteJSON(path.Join(p.cfg.RunDir, "rl_locals.json"), info.Locals); err != nil {
			return fmt.Errorf("saving trainer locals: %w", err)
		}
		p.localsSaved = true
	}

	if info.Step%p.cfg.SaveInterval == 0 {
		if err := p.evaluate(info); err != nil {
			return err
		}
	}

	if info.Step%p.cfg.LogInterval == 0 {
		// terminal execution display
		fmt.Printf("\rStep:%d/%d, Eps:%d, Best:%8.2f",
			info.Step, p.cfg.NumTimesteps, p.mon.Episodes(), p.bestMeanReward)
		if p.plotter != nil {
			p.refreshPlots()
		}
	}
	return nil
}

// evaluate the recent performance and checkpoint the model if it improved
func (p *PeriodicCallback) evaluate(info *types.StepInfo) error {
	meanReward, episodes, err := monitor.MeanEpisodeReward(p.cfg.RunDir, evalEpisodes)
	if err != nil || episodes == 0 {
		// not enough episodes yet
		meanReward = bestRewardFloor
	} else {
		p.logger.Infof("best mean reward: %.2f - last mean reward per episode: %.2f",
			p.bestMeanReward, meanReward)
	}

	if meanReward > p.bestMeanReward {
		p.bestMeanReward = meanReward
		checkpointPath := path.Join(p.cfg.RunDir, p.cfg.Algo+"_model.json")
		if err := info.Model.SaveCheckpoint(checkpointPath); err != nil {
			return fmt.Errorf("saving checkpoint: %w", err)
		}
		p.logger.Infow("saved checkpoint", "path", checkpointPath, "mean_reward", meanReward)
	}

	p.publishStatus(info.Step, meanReward)
	return nil
}

func (p *PeriodicCallback) publishStatus(step int, meanReward float64) {
	update := func(s *dashboard.Status) {
		s.Step = step
		s.Episodes = p.mon.Episodes()
		s.BestMeanReward = p.bestMeanReward
		s.LastMeanReward = meanReward
	}
	if p.dash != nil {
		p.dash.UpdateStatus(update)
	}
	if p.redis != nil {
		status := dashboard.Status{
			RunID:    p.cfg.RunID,
			Algo:     p.cfg.Algo,
			EnvID:    p.cfg.EnvID,
			SRLModel: p.cfg.SRLModel,
		}
		update(&status)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := p.redis.PublishStatus(ctx, status); err != nil {
			p.logger.Warnw("publishing run status", "error", err)
		}
	}
}

func (p *PeriodicCallback) refreshPlots() {
	stats, err := monitor.EpisodeStats(p.cfg.RunDir)
	if err != nil {
		p.logger.Warnw("reading episode stats", "error", err)
		return
	}
	if err := p.plotter.Refresh(stats); err != nil {
		p.logger.Warnw("refreshing plots", "error", err)
	}
}
