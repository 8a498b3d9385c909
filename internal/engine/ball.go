package engine

import "math"

// Ball is the single ball of a match.
type Ball struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Radius float64 `json:"radius"`
}

// NewBall creates a resting ball at the given position.
func NewBall(x, y, radius float64) Ball {
	return Ball{X: x, Y: y, Radius: radius}
}

// Move advances the ball by its velocity.
func (b *Ball) Move() {
	b.X += b.VX
	b.Y += b.VY
}

// BounceWalls reflects the ball off the top and bottom walls.
// The ball is clamped to touch the wall and vy is inverted.
// Returns true if a bounce happened.
func (b *Ball) BounceWalls(a Arena) bool {
	switch {
	case b.Y-b.Radius <= 0:
		b.Y = b.Radius
		b.VY = -b.VY
		return true
	case b.Y+b.Radius >= a.H():
		b.Y = a.H() - b.Radius
		b.VY = -b.VY
		return true
	}
	return false
}

// Reset centers the ball with zero velocity.
func (b *Ball) Reset(x, y float64) {
	b.X = x
	b.Y = y
	b.VX = 0
	b.VY = 0
}

// Serve gives the ball a velocity.
func (b *Ball) Serve(vx, vy float64) {
	b.VX = vx
	b.VY = vy
}

// IsMoving reports whether the ball has any velocity.
func (b Ball) IsMoving() bool {
	return b.VX != 0 || b.VY != 0
}

// ClampSpeed limits each velocity component to [-limit, limit].
func (b *Ball) ClampSpeed(limit float64) {
	b.VX = clampAbs(b.VX, limit)
	b.VY = clampAbs(b.VY, limit)
}

func clampAbs(v, limit float64) float64 {
	if math.Abs(v) > limit {
		return math.Copysign(limit, v)
	}
	return v
}

// sign returns -1, 0 or 1.
func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
