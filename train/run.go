package train

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/robolab/arm-rl-train/agents"
	"github.com/robolab/arm-rl-train/armenv"
	"github.com/robolab/arm-rl-train/dashboard"
	"github.com/robolab/arm-rl-train/monitor"
	"github.com/robolab/arm-rl-train/srl"
	"github.com/robolab/arm-rl-train/types"
	"github.com/robolab/arm-rl-train/util"
	"github.com/robolab/arm-rl-train/viz"
	"go.uber.org/zap"
)

// runTraining sequences a full training run: SRL resolution, log folder
// and config dumps, environment and dashboard setup, then hands control
// to the trainer with the periodic callback.
func runTraining(cfg *Config, build agents.Builder) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zl, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer zl.Sync()
	logger := zl.Sugar()

	res, err := resolveSRL(cfg)
	if err != nil {
		return err
	}

	cfg.resolveIntervals()
	if err := cfg.ConfigureRunDir(res); err != nil {
		return err
	}
	if err := cfg.SaveArgs(); err != nil {
		return fmt.Errorf("saving args: %w", err)
	}
	logger.Infof("Agent = %s", cfg.Algo)
	logger.Infow("run configured", "dir", cfg.RunDir, "env", cfg.EnvID, "srl_model", cfg.SRLModel)

	env, err := buildEnvironment(ctx, cfg, res)
	if err != nil {
		return err
	}

	mon, err := monitor.NewMonitor(env, cfg.RunDir)
	if err != nil {
		return err
	}
	defer mon.Close()

	if err := SaveEnvParams(cfg.RunDir, mon.Params()); err != nil {
		return fmt.Errorf("saving env params: %w", err)
	}

	var plotter *viz.Plotter
	var dash *dashboard.Server
	if !cfg.NoVis {
		plotter, err = viz.NewPlotter(cfg.RunDir, cfg.PlotTitle, episodeWindow)
		if err != nil {
			return fmt.Errorf("creating plotter: %w", err)
		}
		dash = dashboard.NewServer(cfg.Port, plotter.Dir(), dashboard.Status{
			RunID:          cfg.RunID,
			Algo:           cfg.Algo,
			EnvID:          cfg.EnvID,
			SRLModel:       cfg.SRLModel,
			BestMeanReward: bestRewardFloor,
		}, logger)
		dash.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			dash.Shutdown(shutdownCtx)
		}()
		mon.OnEpisode(dash.PublishEpisode)
	}

	var redisPub *dashboard.RedisPublisher
	if cfg.RedisAddr != "" {
		redisPub, err = dashboard.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RunID)
		if err != nil {
			return err
		}
		defer redisPub.Close()
		mon.OnEpisode(func(stat monitor.EpisodeStat) {
			pubCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := redisPub.PublishEpisode(pubCtx, stat); err != nil {
				logger.Warnw("publishing episode", "error", err)
			}
		})
	}

	trainer := build(cfg.Seed)
	cb := NewPeriodicCallback(cfg, mon, logger, plotter, dash, redisPub)

	logger.Infow("training", "timesteps", cfg.NumTimesteps)
	if err := trainer.Train(ctx, mon, cfg.NumTimesteps, cb.OnStep); err != nil {
		fmt.Println("")
		if errors.Is(err, context.Canceled) {
			logger.Infow("training interrupted")
			return nil
		}
		return fmt.Errorf("training %s: %w", cfg.Algo, err)
	}
	fmt.Println("")
	logger.Infof("training done, best mean reward: %.2f", cb.BestMeanReward())
	return saveSummary(cfg, mon, cb)
}

// saveSummary writes a short human-readable recap next to the JSON dumps
func saveSummary(cfg *Config, mon *monitor.Monitor, cb *PeriodicCallback) error {
	return util.WriteToFile(path.Join(cfg.RunDir, "summary.txt"),
		fmt.Sprintf("algo: %s", cfg.Algo),
		fmt.Sprintf("env: %s", cfg.EnvID),
		fmt.Sprintf("timesteps: %d", cfg.NumTimesteps),
		fmt.Sprintf("episodes: %d", mon.Episodes()),
		fmt.Sprintf("best mean reward: %.2f", cb.BestMeanReward()),
	)
}

// resolveSRL loads the registry when present and resolves the requested
// preprocessing. Raw features and ground truth need no registry file.
func resolveSRL(cfg *Config) (*srl.Resolution, error) {
	reg := &srl.Registry{}
	if _, err := os.Stat(cfg.SRLConfig); err == nil {
		reg, err = srl.Load(cfg.SRLConfig)
		if err != nil {
			return nil, err
		}
	}
	return reg.Resolve(cfg.SRLModel)
}

func buildEnvironment(ctx context.Context, cfg *Config, res *srl.Resolution) (types.Environment, error) {
	params := armenv.DefaultParams()
	params.Seed = cfg.Seed
	params.ActionRepeat = cfg.ActionRepeat
	params.UseSRL = res.UseSRL
	params.SRLModelPath = res.ModelPath
	params.UseGroundTruth = res.UseGroundTruth

	var env types.Environment
	if cfg.SimAddr != "" {
		remote, err := armenv.NewRemoteEnv(ctx, cfg.SimAddr, params)
		if err != nil {
			return nil, err
		}
		env = remote
	} else {
		env = armenv.NewLocalArmEnv(params)
	}

	if cfg.NumStack > 1 {
		stacked, err := armenv.NewFrameStack(env, cfg.NumStack)
		if err != nil {
			return nil, err
		}
		env = stacked
	}
	return env, nil
}
