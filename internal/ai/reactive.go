package ai

import (
	"github.com/vovakirdan/multipong/internal/engine"
)

// DefaultDeadZone is the reactive tracker's tolerance around the paddle center.
const DefaultDeadZone = 5.0

// Reactive steers the paddle center toward the ball's current y.
type Reactive struct {
	DeadZone float64
}

// NewReactive creates a reactive controller. A negative dead zone is treated as zero.
func NewReactive(deadZone float64) *Reactive {
	return &Reactive{DeadZone: max(0, deadZone)}
}

// Decide moves toward the ball unless it is inside the dead zone.
func (r *Reactive) Decide(p engine.Paddle, b engine.Ball, _ engine.Arena) engine.Intent {
	center := p.CenterY()
	return engine.Intent{
		Up:   b.Y < center-r.DeadZone,
		Down: b.Y > center+r.DeadZone,
	}
}

var _ engine.Controller = (*Reactive)(nil)
