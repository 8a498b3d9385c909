package engine

import (
	"github.com/vovakirdan/multipong/internal/core"
)

// Intent is the movement a paddle wants for one tick.
type Intent = core.Intent

// Controller decides a paddle's intent from the current state.
// AI strategies implement it; human paddles have no controller.
type Controller interface {
	Decide(p Paddle, b Ball, a Arena) Intent
}

// Zone is the vertical band a paddle is confined to.
type Zone struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Paddle is one slot's paddle. PlayerID is the slot id ("A1".."B4").
type Paddle struct {
	PlayerID string
	X, Y     float64
	Width    float64
	Height   float64
	Speed    float64
	// Zone is nil when the paddle may roam the full arena height.
	Zone    *Zone
	Stretch float64
	Stats   PlayerStats

	controller Controller
}

// NewPaddle creates a paddle at (x, y).
func NewPaddle(playerID string, x, y, width, height, speed float64) *Paddle {
	return &Paddle{
		PlayerID: playerID,
		X:        x,
		Y:        y,
		Width:    width,
		Height:   height,
		Speed:    speed,
		Stretch:  1,
		Stats:    PlayerStats{PlayerID: playerID},
	}
}

// SetController attaches an AI controller; nil makes the paddle human.
func (p *Paddle) SetController(c Controller) {
	p.controller = c
}

// Controller returns the attached controller, if any.
func (p *Paddle) Controller() Controller {
	return p.controller
}

// IsAI reports whether the paddle is AI-controlled.
func (p *Paddle) IsAI() bool {
	return p.controller != nil
}

// Rect returns the paddle's collision box.
func (p Paddle) Rect() core.Rect {
	return core.NewRect(p.X, p.Y, p.Width, p.Height)
}

// CenterY returns the paddle's vertical center.
func (p Paddle) CenterY() float64 {
	return p.Y + p.Height/2
}

// Bounds returns the vertical range the paddle's top edge may occupy.
func (p Paddle) Bounds(a Arena) (float64, float64) {
	top, bottom := 0.0, a.H()
	if p.Zone != nil {
		top, bottom = p.Zone.Top, p.Zone.Bottom
	}
	return top, max(top, bottom-p.Height)
}

// Move applies one tick of intent and clamps to the allowed range.
func (p *Paddle) Move(in Intent, a Arena) {
	p.Y += float64(in.Direction()) * p.Speed
	p.Clamp(a)
}

// Clamp keeps the paddle inside its zone, or the arena when it has none.
func (p *Paddle) Clamp(a Arena) {
	lo, hi := p.Bounds(a)
	p.Y = core.ClampF(p.Y, lo, hi)
}

// Center places the paddle in the middle of its allowed range.
func (p *Paddle) Center(a Arena) {
	lo, hi := p.Bounds(a)
	p.Y = (lo + hi) / 2
}

// relaxStretch eases the hit stretch back toward 1.
func (p *Paddle) relaxStretch(decay float64) {
	if p.Stretch <= 1 {
		p.Stretch = 1
		return
	}
	p.Stretch = 1 + (p.Stretch-1)*decay
	if p.Stretch < 1.001 {
		p.Stretch = 1
	}
}
