package train

import (
	"github.com/robolab/arm-rl-train/agents"
	"github.com/robolab/arm-rl-train/types"
	"github.com/spf13/cobra"
)

func QLearningCommand(cfg *Config) *cobra.Command {
	var alpha float64
	var discount float64
	var epsilon float64

	cmd := &cobra.Command{
		Use:   "qlearning",
		Short: "Tabular epsilon-greedy Q-learning",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Algo = "qlearning"
			return runTraining(cfg, func(seed uint64) types.Trainer {
				return agents.NewQLearning(agents.QLearningConfig{
					Alpha:    alpha,
					Discount: discount,
					Epsilon:  epsilon,
					Seed:     seed,
				})
			})
		},
	}
	cmd.Flags().Float64Var(&alpha, "alpha", 0.3, "learning rate")
	cmd.Flags().Float64Var(&discount, "discount", 0.99, "discount factor")
	cmd.Flags().Float64Var(&epsilon, "epsilon", 0.1, "exploration rate")
	return cmd
}

func ActorCriticCommand(cfg *Config) *cobra.Command {
	var actorAlpha float64
	var criticAlpha float64
	var discount float64

	cmd := &cobra.Command{
		Use:   "actorcritic",
		Short: "Tabular one-step actor-critic",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Algo = "actorcritic"
			return runTraining(cfg, func(seed uint64) types.Trainer {
				return agents.NewActorCritic(agents.ActorCriticConfig{
					ActorAlpha:  actorAlpha,
					CriticAlpha: criticAlpha,
					Discount:    discount,
					Seed:        seed,
				})
			})
		},
	}
	cmd.Flags().Float64Var(&actorAlpha, "actor-alpha", 0.1, "actor learning rate")
	cmd.Flags().Float64Var(&criticAlpha, "critic-alpha", 0.3, "critic learning rate")
	cmd.Flags().Float64Var(&discount, "discount", 0.99, "discount factor")
	return cmd
}

func ReinforceCommand(cfg *Config) *cobra.Command {
	var alpha float64
	var discount float64

	cmd := &cobra.Command{
		Use:   "reinforce",
		Short: "Episodic softmax policy gradient",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Algo = "reinforce"
			return runTraining(cfg, func(seed uint64) types.Trainer {
				return agents.NewReinforce(agents.ReinforceConfig{
					Alpha:    alpha,
					Discount: discount,
					Seed:     seed,
				})
			})
		},
	}
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "learning rate")
	cmd.Flags().Float64Var(&discount, "discount", 0.99, "discount factor")
	return cmd
}

func RandomAgentCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "random",
		Short: "Uniform random baseline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Algo = "random"
			return runTraining(cfg, func(seed uint64) types.Trainer {
				return agents.NewRandomAgent(seed)
			})
		},
	}
}

func RandomSearchCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "randomsearch",
		Short: "Random policy search keeping the best candidate",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Algo = "randomsearch"
			return runTraining(cfg, func(seed uint64) types.Trainer {
				return agents.NewRandomSearch(agents.RandomSearchConfig{Seed: seed})
			})
		},
	}
}
