// Package engine implements the authoritative multipong simulation: the
// arena, ball, paddles, goal zones and teams, advanced one fixed tick at a
// time by Engine.
//
// The engine is pure synchronous computation. It is owned by a single
// goroutine (the game loop) and never touched concurrently.
package engine

// Arena is the static playfield.
type Arena struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewArena creates an arena of the given size.
func NewArena(width, height int) Arena {
	return Arena{Width: width, Height: height}
}

// Center returns the center point of the arena.
func (a Arena) Center() (float64, float64) {
	return float64(a.Width) / 2, float64(a.Height) / 2
}

// W returns the width as a float for physics math.
func (a Arena) W() float64 { return float64(a.Width) }

// H returns the height as a float for physics math.
func (a Arena) H() float64 { return float64(a.Height) }

// ContainsX reports whether x lies within [0, width].
func (a Arena) ContainsX(x float64) bool {
	return x >= 0 && x <= a.W()
}

// ContainsY reports whether y lies within [0, height].
func (a Arena) ContainsY(y float64) bool {
	return y >= 0 && y <= a.H()
}

// Contains reports whether the point lies inside the arena.
func (a Arena) Contains(x, y float64) bool {
	return a.ContainsX(x) && a.ContainsY(y)
}
