package ai

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/multipong/internal/engine"
)

// Predictive simulates the ball forward on a detached copy, bouncing off
// the top and bottom walls, and steers toward the predicted y.
type Predictive struct {
	Steps int
	Noise float64
	rng   *rand.Rand
}

// NewPredictive creates a predictive controller. Steps is at least 1.
// Noise adds a uniform offset in [-noise, noise] to the target.
func NewPredictive(steps int, noise float64, seed int64) *Predictive {
	return &Predictive{
		Steps: max(1, steps),
		Noise: max(0, noise),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Decide steers toward the predicted ball position.
func (pr *Predictive) Decide(p engine.Paddle, b engine.Ball, a engine.Arena) engine.Intent {
	target := PredictY(b, a, pr.Steps)
	if pr.Noise > 0 {
		target += (pr.rng.Float64()*2 - 1) * pr.Noise
	}
	center := p.CenterY()
	return engine.Intent{Up: center > target, Down: center < target}
}

// PredictY advances a copy of the ball for steps ticks and returns its y.
func PredictY(b engine.Ball, a engine.Arena, steps int) float64 {
	sim := b
	for range steps {
		sim.X += sim.VX
		sim.Y += sim.VY
		if sim.Y-sim.Radius <= 0 {
			sim.Y = sim.Radius
			sim.VY = math.Abs(sim.VY)
		} else if sim.Y+sim.Radius >= a.H() {
			sim.Y = a.H() - sim.Radius
			sim.VY = -math.Abs(sim.VY)
		}
	}
	return sim.Y
}

var _ engine.Controller = (*Predictive)(nil)
