package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/multipong/internal/ai"
)

var (
	flagEpisodes     int
	flagMaxSteps     int
	flagModelOut     string
	flagEpsilonDecay float64
	flagMinEpsilon   float64
	flagResume       bool
	flagSeed         int64
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the Q-learning bot",
	Long: `Train the Q-learning bot on a headless single-paddle court and save
the learned table as JSON. Servers load it from ai.qlearning.model_path
for level 3 bots.

Examples:
  multipong train --episodes 5000
  multipong train --out ./model.json --resume`,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().IntVar(&flagEpisodes, "episodes", 1000, "Number of training episodes")
	trainCmd.Flags().IntVar(&flagMaxSteps, "max-steps", 5000, "Step limit per episode")
	trainCmd.Flags().StringVar(&flagModelOut, "out", "", "Model output path (default: ai.qlearning.model_path)")
	trainCmd.Flags().Float64Var(&flagEpsilonDecay, "epsilon-decay", 0.995, "Exploration decay per episode (0 keeps it fixed)")
	trainCmd.Flags().Float64Var(&flagMinEpsilon, "min-epsilon", 0.01, "Lower bound for exploration")
	trainCmd.Flags().BoolVar(&flagResume, "resume", false, "Continue from the existing model file")
	trainCmd.Flags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
}

func runTrain(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Server.LogLevel)

	out := cfg.AI.QLearning.ModelPath
	if flagModelOut != "" {
		out = flagModelOut
	}
	if out == "" {
		return fmt.Errorf("no model path: set ai.qlearning.model_path or --out")
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	qcfg := cfg.AI.QLearning
	agent := ai.NewQLearning(qcfg.LearningRate, qcfg.Gamma, qcfg.Epsilon, seed)
	if flagResume {
		if err := agent.Load(out); err != nil {
			return err
		}
		// Loading turns exploration off.
		agent.SetEpsilon(qcfg.Epsilon)
		logger.Info("resuming", "model", out, "states", agent.States())
	}

	report := max(flagEpisodes/10, 1)
	start := time.Now()
	res := ai.Train(agent, ai.NewEnv(ai.DefaultEnvConfig()), ai.TrainOptions{
		Episodes:     flagEpisodes,
		MaxSteps:     flagMaxSteps,
		EpsilonDecay: flagEpsilonDecay,
		MinEpsilon:   flagMinEpsilon,
		Progress: func(episode, hits int, total float64) {
			if episode%report == 0 {
				logger.Info("training", "episode", episode, "hits", hits, "reward", total, "states", agent.States())
			}
		},
	})

	if err := agent.Save(out); err != nil {
		return err
	}
	logger.Info("model saved",
		"path", out,
		"episodes", res.Episodes,
		"best_hits", res.BestHits,
		"mean_reward", fmt.Sprintf("%.2f", res.MeanReward),
		"states", agent.States(),
		"took", time.Since(start).Round(time.Millisecond),
	)
	return nil
}
