package core

// Intent is a paddle's desired movement for one tick.
// Up and Down both set cancel each other out.
type Intent struct {
	Up   bool `json:"up"`
	Down bool `json:"down"`
}

// Direction returns -1 for up, 1 for down and 0 for no movement.
// Screen coordinates grow downward.
func (i Intent) Direction() int {
	switch {
	case i.Up && !i.Down:
		return -1
	case i.Down && !i.Up:
		return 1
	}
	return 0
}

// IsIdle reports whether the intent moves the paddle.
func (i Intent) IsIdle() bool {
	return i.Direction() == 0
}

// IntentFromDirection is the inverse of Direction.
func IntentFromDirection(dir int) Intent {
	switch {
	case dir < 0:
		return Intent{Up: true}
	case dir > 0:
		return Intent{Down: true}
	}
	return Intent{}
}

// Action is a client-side command, abstracted from physical key presses.
type Action int

const (
	ActionNone     Action = iota
	ActionUp              // W, Up arrow
	ActionDown            // S, Down arrow
	ActionReady           // R - toggle ready in the lobby
	ActionSlotNext        // Tab, right - cycle slot selection
	ActionSlotPrev        // Shift+Tab, left
	ActionConfirm         // Enter - claim the highlighted slot
	ActionChat            // T - open chat input
	ActionPing            // P
	ActionBack            // Esc
	ActionQuit            // Q, Ctrl+C
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionReady:
		return "Ready"
	case ActionSlotNext:
		return "SlotNext"
	case ActionSlotPrev:
		return "SlotPrev"
	case ActionConfirm:
		return "Confirm"
	case ActionChat:
		return "Chat"
	case ActionPing:
		return "Ping"
	case ActionBack:
		return "Back"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// HeldKeys tracks which movement keys are down.
// Terminals deliver only key presses, so a key counts as held until
// it expires after a number of frames without a repeat.
type HeldKeys struct {
	up, down int
	hold     int
}

// NewHeldKeys creates a tracker that keeps a key held for hold frames.
func NewHeldKeys(hold int) *HeldKeys {
	if hold < 1 {
		hold = 1
	}
	return &HeldKeys{hold: hold}
}

// Press registers a key press for a movement action.
func (h *HeldKeys) Press(a Action) {
	switch a {
	case ActionUp:
		h.up = h.hold
		h.down = 0
	case ActionDown:
		h.down = h.hold
		h.up = 0
	}
}

// Intent returns the current movement intent.
func (h *HeldKeys) Intent() Intent {
	return Intent{Up: h.up > 0, Down: h.down > 0}
}

// Tick ages held keys by one frame.
func (h *HeldKeys) Tick() {
	if h.up > 0 {
		h.up--
	}
	if h.down > 0 {
		h.down--
	}
}

// Release drops all held keys.
func (h *HeldKeys) Release() {
	h.up = 0
	h.down = 0
}
