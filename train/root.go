package train

import "github.com/spf13/cobra"

func GetRootCommand() *cobra.Command {
	cfg := &Config{}

	rootCommand := &cobra.Command{
		Use:   "arm-rl-train",
		Short: "Train RL agents against the arm simulator",
	}
	pf := rootCommand.PersistentFlags()
	pf.StringVar(&cfg.EnvID, "env", "ArmButtonEnv-v0", "environment ID")
	pf.Uint64Var(&cfg.Seed, "seed", 0, "random seed")
	pf.StringVar(&cfg.LogDir, "log-dir", "/tmp/arm/", "directory to save agent logs and models")
	pf.IntVar(&cfg.NumTimesteps, "num-timesteps", 1000000, "total environment steps to train for")
	pf.StringVar(&cfg.SRLModel, "srl-model", "", "SRL model to use (ground_truth or a registry entry, empty for raw features)")
	pf.StringVar(&cfg.SRLConfig, "srl-config", "config/srl_models.yaml", "path to the SRL model registry")
	pf.IntVar(&cfg.NumStack, "num-stack", 1, "number of observation frames to stack")
	pf.IntVar(&cfg.ActionRepeat, "action-repeat", 1, "number of times an action is repeated")
	pf.IntVar(&cfg.Port, "port", 8097, "dashboard server port")
	pf.BoolVar(&cfg.NoVis, "no-vis", false, "disable plots and the dashboard server")
	pf.StringVar(&cfg.RedisAddr, "redis-addr", "", "optional redis address to mirror run status to")
	pf.StringVar(&cfg.SimAddr, "sim-addr", "", "address of the external simulator (empty runs the built-in task)")

	// adding the algorithm subcommands here
	rootCommand.AddCommand(QLearningCommand(cfg))
	rootCommand.AddCommand(ActorCriticCommand(cfg))
	rootCommand.AddCommand(ReinforceCommand(cfg))
	rootCommand.AddCommand(RandomAgentCommand(cfg))
	rootCommand.AddCommand(RandomSearchCommand(cfg))
	return rootCommand
}
