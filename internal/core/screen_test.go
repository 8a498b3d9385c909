package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(10, 5)

	if s.Width() != 10 || s.Height() != 5 {
		t.Fatalf("size = %dx%d, expected 10x5", s.Width(), s.Height())
	}
	for y := range 5 {
		for x := range 10 {
			if s.Get(x, y) != ' ' {
				t.Fatalf("cell (%d,%d) = %q, expected space", x, y, s.Get(x, y))
			}
		}
	}
}

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 5)

	s.Set(3, 2, 'O', ColorBall)
	cell := s.GetCell(3, 2)
	if cell.Rune != 'O' || cell.Color != ColorBall {
		t.Errorf("GetCell() = %+v, expected O/ball", cell)
	}

	// Out of bounds is ignored.
	s.Set(-1, 0, 'X', ColorWarn)
	s.Set(10, 0, 'X', ColorWarn)
	if s.Get(-1, 0) != ' ' || s.Get(10, 0) != ' ' {
		t.Error("out of bounds Get should return space")
	}
}

func TestScreenDrawText(t *testing.T) {
	s := NewScreen(10, 1)
	s.DrawText(2, 0, "A:3", ColorTeamLeft)

	if row := s.Row(0); row != "  A:3     " {
		t.Errorf("Row(0) = %q", row)
	}
	if s.GetCell(2, 0).Color != ColorTeamLeft {
		t.Error("text should carry its color")
	}
}

func TestScreenDrawTextCentered(t *testing.T) {
	s := NewScreen(11, 1)
	s.DrawTextCentered(0, "GOAL", ColorGoal)

	if row := s.Row(0); row != "   GOAL    " {
		t.Errorf("Row(0) = %q", row)
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(4, 3)
	s.DrawBox(0, 0, 4, 3, ColorWall)

	expected := "┌──┐\n│  │\n└──┘"
	if got := s.String(); got != expected {
		t.Errorf("String() = %q, expected %q", got, expected)
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(5, 5)
	s.Set(1, 1, '#', ColorDefault)
	s.Resize(8, 2)

	if s.Width() != 8 || s.Height() != 2 {
		t.Fatalf("size = %dx%d, expected 8x2", s.Width(), s.Height())
	}
	if strings.ContainsRune(s.String(), '#') {
		t.Error("Resize should clear the buffer")
	}
}

func TestViewportToCell(t *testing.T) {
	v := NewViewport(1200, 800, 1, 1, 60, 20)

	tests := []struct {
		name   string
		x, y   float64
		cx, cy int
	}{
		{"origin", 0, 0, 1, 1},
		{"center", 600, 400, 31, 11},
		{"far corner clamps", 1200, 800, 60, 20},
		{"negative clamps", -50, -50, 1, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cx, cy := v.ToCell(tc.x, tc.y)
			if cx != tc.cx || cy != tc.cy {
				t.Errorf("ToCell(%v, %v) = (%d, %d), expected (%d, %d)", tc.x, tc.y, cx, cy, tc.cx, tc.cy)
			}
		})
	}

	if h := v.ScaleH(100); h != 3 {
		t.Errorf("ScaleH(100) = %d, expected 3", h)
	}
	if h := v.ScaleH(1); h != 1 {
		t.Errorf("ScaleH(1) = %d, expected minimum 1", h)
	}
}
