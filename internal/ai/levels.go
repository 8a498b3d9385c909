package ai

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/multipong/internal/config"
	"github.com/vovakirdan/multipong/internal/engine"
	"github.com/vovakirdan/multipong/internal/registry"
)

func init() {
	registry.Register(config.LevelStatic, "static", "Static", func(config.AIConfig) engine.Controller {
		return Static{}
	})
	registry.Register(config.LevelReactive, "reactive", "Reactive", func(cfg config.AIConfig) engine.Controller {
		return NewReactive(cfg.DeadZone)
	})
	registry.Register(config.LevelPredictive, "predictive", "Predictive", func(cfg config.AIConfig) engine.Controller {
		return NewPredictive(cfg.PredictSteps, cfg.PredictNoise, time.Now().UnixNano())
	})
	registry.Register(config.LevelQLearning, "qlearning", "Q-Learning", func(cfg config.AIConfig) engine.Controller {
		q, err := NewQLearningFromConfig(cfg.QLearning, time.Now().UnixNano())
		if err != nil {
			log.Warn("q-learning model not loaded", "path", cfg.QLearning.ModelPath, "err", err)
		}
		return q
	})
}

// New builds a controller for a difficulty level. Unknown levels fall
// back to the reactive tracker.
func New(level int, cfg config.AIConfig) engine.Controller {
	c, err := registry.Create(level, cfg)
	if err != nil {
		return NewReactive(cfg.DeadZone)
	}
	return c
}
