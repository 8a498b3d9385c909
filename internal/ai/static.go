// Package ai implements the paddle controllers used for bots: a static
// paddle, a reactive tracker, a trajectory predictor and a tabular
// Q-learning agent, plus a headless environment to train the latter.
package ai

import (
	"github.com/vovakirdan/multipong/internal/engine"
)

// Static never moves. Useful for physics testing.
type Static struct{}

// Decide always returns no movement.
func (Static) Decide(engine.Paddle, engine.Ball, engine.Arena) engine.Intent {
	return engine.Intent{}
}

var _ engine.Controller = Static{}
