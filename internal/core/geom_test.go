package core

import "testing"

func TestRectContains(t *testing.T) {
	r := NewRect(50, 350, 20, 100)

	tests := []struct {
		name     string
		x, y     float64
		expected bool
	}{
		{"inside", 60, 400, true},
		{"top-left corner", 50, 350, true},
		{"bottom-right corner", 70, 450, true},
		{"left of rect", 49, 400, false},
		{"below rect", 60, 451, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if result := r.Contains(tc.x, tc.y); result != tc.expected {
				t.Errorf("Contains(%v, %v) = %v, expected %v", tc.x, tc.y, result, tc.expected)
			}
		})
	}
}

func TestRectTouchesCircle(t *testing.T) {
	paddle := NewRect(50, 350, 20, 100)

	tests := []struct {
		name     string
		cx, cy   float64
		expected bool
	}{
		{"touching front face", 80, 400, true},
		{"overlapping", 75, 400, true},
		{"clear of front face", 81, 400, false},
		{"grazing top edge", 60, 340, true},
		{"above paddle", 60, 339, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if result := paddle.TouchesCircle(tc.cx, tc.cy, 10); result != tc.expected {
				t.Errorf("TouchesCircle() = %v, expected %v", result, tc.expected)
			}
		})
	}
}

func TestRectEdges(t *testing.T) {
	r := NewRect(10, 20, 30, 40)

	if r.Right() != 40 {
		t.Errorf("Right() = %v, expected 40", r.Right())
	}
	if r.Bottom() != 60 {
		t.Errorf("Bottom() = %v, expected 60", r.Bottom())
	}
	if r.CenterY() != 40 {
		t.Errorf("CenterY() = %v, expected 40", r.CenterY())
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, expected int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}

	for _, tc := range tests {
		if result := Clamp(tc.val, tc.min, tc.max); result != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.min, tc.max, result, tc.expected)
		}
	}
}

func TestClampF(t *testing.T) {
	tests := []struct {
		val, min, max, expected float64
	}{
		{5.5, 0, 10, 5.5},
		{-5.5, 0, 10, 0},
		{15.5, 0, 10, 10},
	}

	for _, tc := range tests {
		if result := ClampF(tc.val, tc.min, tc.max); result != tc.expected {
			t.Errorf("ClampF(%f, %f, %f) = %f, expected %f", tc.val, tc.min, tc.max, result, tc.expected)
		}
	}
}

func TestLerp(t *testing.T) {
	tests := []struct {
		a, b, t, expected float64
	}{
		{0, 10, 0, 0},
		{0, 10, 1, 10},
		{0, 10, 0.5, 5},
		{100, 50, 0.25, 87.5},
	}

	for _, tc := range tests {
		if result := Lerp(tc.a, tc.b, tc.t); result != tc.expected {
			t.Errorf("Lerp(%v, %v, %v) = %v, expected %v", tc.a, tc.b, tc.t, result, tc.expected)
		}
	}
}

func TestSign(t *testing.T) {
	if Sign(-3.2) != -1 || Sign(0) != 0 || Sign(7) != 1 {
		t.Errorf("Sign() returned wrong values: %d %d %d", Sign(-3.2), Sign(0), Sign(7))
	}
}

func TestIntentDirection(t *testing.T) {
	tests := []struct {
		name     string
		intent   Intent
		expected int
	}{
		{"idle", Intent{}, 0},
		{"up", Intent{Up: true}, -1},
		{"down", Intent{Down: true}, 1},
		{"both cancel", Intent{Up: true, Down: true}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if result := tc.intent.Direction(); result != tc.expected {
				t.Errorf("Direction() = %d, expected %d", result, tc.expected)
			}
			if back := IntentFromDirection(tc.expected); back.Direction() != tc.expected {
				t.Errorf("IntentFromDirection(%d).Direction() = %d", tc.expected, back.Direction())
			}
		})
	}
}

func TestHeldKeys(t *testing.T) {
	h := NewHeldKeys(2)

	h.Press(ActionUp)
	if !h.Intent().Up {
		t.Fatal("expected up held after press")
	}

	h.Press(ActionDown)
	if got := h.Intent(); got.Up || !got.Down {
		t.Errorf("Intent() = %+v, expected only down", got)
	}

	h.Tick()
	if !h.Intent().Down {
		t.Error("expected down still held after one frame")
	}
	h.Tick()
	if !h.Intent().IsIdle() {
		t.Error("expected key released after hold frames")
	}
}
