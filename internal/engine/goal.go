package engine

// Side identifies the left or right back wall.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

// String returns "left" or "right".
func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// GoalZone is the goal mouth on one back wall.
type GoalZone struct {
	Side   Side    `json:"-"`
	X      float64 `json:"x"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// NewGoalZone builds a goal of the given size centered on the back wall.
func NewGoalZone(side Side, a Arena, size float64) GoalZone {
	x := 0.0
	if side == SideRight {
		x = a.W()
	}
	_, cy := a.Center()
	return GoalZone{
		Side:   side,
		X:      x,
		Top:    cy - size/2,
		Bottom: cy + size/2,
	}
}

// Spans reports whether y lies inside the goal mouth.
func (g GoalZone) Spans(y float64) bool {
	return y >= g.Top && y <= g.Bottom
}

// Crossed reports whether the ball has reached the goal line inside the mouth.
func (g GoalZone) Crossed(b Ball) bool {
	if !g.Spans(b.Y) {
		return false
	}
	if g.Side == SideLeft {
		return b.X-b.Radius <= g.X
	}
	return b.X+b.Radius >= g.X
}
