// Package multiplayer runs the authoritative match: player sessions, the
// fixed-rate game loop that owns the engine, and the coordinator that
// ties connections to lobby slots.
package multiplayer

import (
	"errors"

	"github.com/vovakirdan/multipong/internal/engine"
)

var (
	// ErrDuplicatePlayer is returned when a player id already has a live session.
	ErrDuplicatePlayer = errors.New("multiplayer: player already connected")
	// ErrSessionClosed is returned when sending to a closed session.
	ErrSessionClosed = errors.New("multiplayer: session closed")
)

// MatchResultSaver persists finished matches.
// This allows the loop to save results without depending on the storage package.
type MatchResultSaver interface {
	SaveMatchResult(t engine.Tally) error
}

// EventPublisher receives notable match events, e.g. for telemetry.
// Implementations must not block.
type EventPublisher interface {
	PublishGoal(ev engine.Event, score map[string]int)
	PublishMatchEnd(t engine.Tally)
}
