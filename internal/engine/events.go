package engine

// EventKind classifies something that happened during a tick.
type EventKind int

const (
	EventHit EventKind = iota
	EventGoal
	EventServe
	EventMatchOver
)

// String returns the event name used in logs and telemetry.
func (k EventKind) String() string {
	switch k {
	case EventHit:
		return "hit"
	case EventGoal:
		return "goal"
	case EventServe:
		return "serve"
	case EventMatchOver:
		return "match_over"
	default:
		return "unknown"
	}
}

// Event is emitted by Advance. PlayerID is set for hits; Team names the
// scoring team for goals.
type Event struct {
	Kind     EventKind
	Tick     uint64
	PlayerID string
	Team     string
}
