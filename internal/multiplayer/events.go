package multiplayer

import "github.com/vovakirdan/multipong/internal/engine"

// loopCommand is a request for the game loop. Commands are the only way
// other goroutines change the engine; the loop applies them at the start
// of its next tick.
type loopCommand interface {
	loopCommand()
}

// startMatchCmd makes the match live after syncing controllers to the lobby.
type startMatchCmd struct{}

func (startMatchCmd) loopCommand() {}

// resetMatchCmd stops the match and clears scores.
type resetMatchCmd struct{}

func (resetMatchCmd) loopCommand() {}

// setControllerCmd hands a slot to a bot (non-nil) or to human input (nil).
type setControllerCmd struct {
	Slot       string
	Controller engine.Controller
}

func (setControllerCmd) loopCommand() {}

// syncSlotCmd recomputes a slot's controller from its lobby occupant.
type syncSlotCmd struct {
	Slot string
}

func (syncSlotCmd) loopCommand() {}
