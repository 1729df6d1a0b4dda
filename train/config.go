package train

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/robolab/arm-rl-train/agents"
	"github.com/robolab/arm-rl-train/srl"
	"github.com/robolab/arm-rl-train/util"
)

const (
	defaultSaveInterval = 500 // steps between checkpoint evaluations
	defaultLogInterval  = 100 // steps between plot refreshes
	evalEpisodes        = 50  // episodes the mean reward is evaluated over
	episodeWindow       = 40  // moving average span of the episode plot
	bestRewardFloor     = -10000.0

	timestampLayout = "02-01-06_15h04_05"
)

// Config is the merged configuration of a training run
type Config struct {
	Algo         string
	EnvID        string
	Seed         uint64
	LogDir       string
	NumTimesteps int
	SRLModel     string
	SRLConfig    string
	NumStack     int
	ActionRepeat int
	Port         int
	NoVis        bool
	RedisAddr    string
	SimAddr      string

	// derived during configuration
	RunDir       string
	RunID        string
	PlotTitle    string
	SaveInterval int
	LogInterval  int
}

// resolveIntervals applies the per-algorithm cadence overrides
func (c *Config) resolveIntervals() {
	intervals := agents.CallbackIntervals(c.Algo)
	c.SaveInterval = defaultSaveInterval
	c.LogInterval = defaultLogInterval
	if intervals.Save > 0 {
		c.SaveInterval = intervals.Save
	}
	if intervals.Log > 0 {
		c.LogInterval = intervals.Log
	}
}

// ConfigureRunDir derives the timestamped log directory of the run:
// <log-dir>/<srl-model|raw_features>/<algo>/<dd-mm-yy_HHhMM_SS>/
func (c *Config) ConfigureRunDir(res *srl.Resolution) error {
	stamp := time.Now().Format(timestampLayout)
	c.RunDir = path.Join(c.LogDir, res.SubFolder, c.Algo, stamp)
	c.RunID = fmt.Sprintf("%s-%s", c.Algo, stamp)
	c.PlotTitle = res.PlotTitle
	if err := os.MkdirAll(c.RunDir, os.ModePerm); err != nil {
		return fmt.Errorf("creating run directory: %w", err)
	}
	return nil
}

// SaveArgs persists the merged configuration as args.json
func (c *Config) SaveArgs() error {
	args := map[string]interface{}{
		"algo":          c.Algo,
		"env":           c.EnvID,
		"seed":          c.Seed,
		"log_dir":       c.RunDir,
		"num_timesteps": c.NumTimesteps,
		"srl_model":     c.SRLModel,
		"num_stack":     c.NumStack,
		"action_repeat": c.ActionRepeat,
		"port":          c.Port,
		"no_vis":        c.NoVis,
		"redis_addr":    c.RedisAddr,
		"sim_addr":      c.SimAddr,
		"save_interval": c.SaveInterval,
		"log_interval":  c.LogInterval,
	}
	return util.WriteJSON(path.Join(c.RunDir, "args.json"), args)
}

// SaveEnvParams snapshots the environment configuration for reproducibility
func SaveEnvParams(dir string, params map[string]interface{}) error {
	return util.WriteJSON(path.Join(dir, "arm_env_params.json"), params)
}
