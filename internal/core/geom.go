// Package core provides small shared building blocks for multipong: float
// geometry for the simulation, the paddle intent type, and a colored cell
// buffer the terminal client draws into.
// It has no external dependencies so it can be used from every layer.
package core

import "math"

// Rect is an axis-aligned box in arena coordinates.
type Rect struct {
	X, Y float64 // Top-left corner
	W, H float64
}

// NewRect creates a new rectangle.
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// CenterY returns the vertical center.
func (r Rect) CenterY() float64 {
	return r.Y + r.H/2
}

// Contains reports whether the point lies inside the rectangle, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// TouchesCircle reports whether a circle's bounding box overlaps the rectangle.
// Touching edges count as overlap.
func (r Rect) TouchesCircle(cx, cy, radius float64) bool {
	if cx+radius < r.X || cx-radius > r.Right() {
		return false
	}
	if cy+radius < r.Y || cy-radius > r.Bottom() {
		return false
	}
	return true
}

// Clamp restricts an int to [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Sign returns -1, 0 or 1 depending on the sign of v.
func Sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Round rounds to the nearest integer.
func Round(v float64) int {
	return int(math.Round(v))
}
