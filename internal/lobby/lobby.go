// Package lobby allocates the fixed paddle slots (A1..B4) to players and
// tracks nicknames and ready state. All operations are atomic with respect
// to each other.
package lobby

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/multipong/internal/config"
)

// AutoSlot requests automatic slot assignment.
const AutoSlot = "auto"

var (
	// ErrNoSlot is returned when every active slot is occupied.
	ErrNoSlot = errors.New("lobby: no available slots")
	// ErrUnknownPlayer is returned for players without a slot.
	ErrUnknownPlayer = errors.New("lobby: unknown player")
	// ErrInvalidSlot is returned for slots that are not active.
	ErrInvalidSlot = errors.New("lobby: invalid slot")
)

// Occupant is whoever holds a slot.
type Occupant struct {
	PlayerID string `json:"player_id"`
	Nickname string `json:"nickname"`
	Slot     string `json:"slot"`
	Ready    bool   `json:"ready"`
	IsAI     bool   `json:"is_ai"`
	AILevel  int    `json:"ai_level,omitempty"`
}

// Lobby maps player identities to slots.
type Lobby struct {
	mu       sync.Mutex
	active   []string             // sorted active slot ids
	isActive map[string]bool      // slot -> active
	slots    map[string]*Occupant // slot -> occupant
	byPlayer map[string]string    // player id -> slot
}

// New creates a lobby whose active slots are those of cfg with a positive
// paddle height.
func New(cfg config.Config) *Lobby {
	return NewWithSlots(cfg.ActiveSlots())
}

// NewWithSlots creates a lobby with an explicit set of active slots.
func NewWithSlots(active []string) *Lobby {
	l := &Lobby{
		active:   append([]string(nil), active...),
		isActive: make(map[string]bool, len(active)),
		slots:    make(map[string]*Occupant),
		byPlayer: make(map[string]string),
	}
	sort.Strings(l.active)
	for _, s := range l.active {
		l.isActive[s] = true
	}
	return l
}

// AssignSlot gives playerID a slot and returns it.
//
// With preferred empty or AutoSlot the first free active slot in
// lexicographic order is chosen. A free preferred slot is taken directly;
// an occupied or inactive one falls back to the first free slot. A player
// who already holds a slot is moved when the preferred slot is free and
// otherwise keeps the current one. ErrNoSlot is returned when nothing is
// left.
func (l *Lobby) AssignSlot(playerID, preferred string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if preferred == AutoSlot {
		preferred = ""
	}
	current, hasSlot := l.byPlayer[playerID]
	if hasSlot && (preferred == "" || preferred == current) {
		return current, nil
	}

	if preferred != "" && l.freeLocked(preferred) {
		l.occupyLocked(playerID, preferred)
		return preferred, nil
	}
	if hasSlot {
		return current, nil
	}

	for _, slot := range l.active {
		if l.freeLocked(slot) {
			l.occupyLocked(playerID, slot)
			return slot, nil
		}
	}
	return "", ErrNoSlot
}

// Choose moves a slotted player to a specific slot. Unlike AssignSlot it
// requires the player to be known already.
func (l *Lobby) Choose(playerID, slot string) (string, error) {
	l.mu.Lock()
	_, ok := l.byPlayer[playerID]
	l.mu.Unlock()
	if !ok {
		return "", ErrUnknownPlayer
	}
	return l.AssignSlot(playerID, slot)
}

// occupyLocked places playerID in slot, vacating any previous slot in the
// same critical section. Nickname and ready state move with the player.
func (l *Lobby) occupyLocked(playerID, slot string) {
	occ := &Occupant{PlayerID: playerID, Nickname: playerID}
	if prev, ok := l.byPlayer[playerID]; ok {
		occ = l.slots[prev]
		delete(l.slots, prev)
	}
	occ.Slot = slot
	l.slots[slot] = occ
	l.byPlayer[playerID] = slot
}

func (l *Lobby) freeLocked(slot string) bool {
	if !l.isActive[slot] {
		return false
	}
	_, taken := l.slots[slot]
	return !taken
}

// ReleaseSlot frees the player's slot. Returns false if the player had none.
func (l *Lobby) ReleaseSlot(playerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.byPlayer[playerID]
	if !ok {
		return false
	}
	delete(l.byPlayer, playerID)
	delete(l.slots, slot)
	return true
}

// Join sets the nickname of a slotted player.
func (l *Lobby) Join(playerID, nickname string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.byPlayer[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	if nickname != "" {
		l.slots[slot].Nickname = nickname
	}
	return nil
}

// SetReady changes a human player's ready flag. Returns false for unknown
// players.
func (l *Lobby) SetReady(playerID string, ready bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.byPlayer[playerID]
	if !ok {
		return false
	}
	occ := l.slots[slot]
	if !occ.IsAI {
		occ.Ready = ready
	}
	return true
}

// SetAI puts a bot of the given level into a free slot. Bots are always ready.
func (l *Lobby) SetAI(slot string, level int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.isActive[slot] {
		return fmt.Errorf("%w: %s", ErrInvalidSlot, slot)
	}
	if occ, taken := l.slots[slot]; taken {
		if !occ.IsAI {
			return fmt.Errorf("lobby: slot %s is held by %s", slot, occ.PlayerID)
		}
		occ.AILevel = level
		return nil
	}

	id := "bot-" + slot
	l.slots[slot] = &Occupant{PlayerID: id, Nickname: id, Slot: slot, Ready: true, IsAI: true, AILevel: level}
	l.byPlayer[id] = slot
	return nil
}

// AllReady reports whether at least minPlayers slots are occupied, at
// least one occupant is human and every human is ready.
func (l *Lobby) AllReady(minPlayers int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.slots) == 0 || len(l.slots) < minPlayers {
		return false
	}
	humans := 0
	for _, occ := range l.slots {
		if occ.IsAI {
			continue
		}
		humans++
		if !occ.Ready {
			return false
		}
	}
	return humans > 0
}

// AssignedSlot returns the player's slot.
func (l *Lobby) AssignedSlot(playerID string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.byPlayer[playerID]
	return slot, ok
}

// Occupant returns a copy of the slot's occupant.
func (l *Lobby) Occupant(slot string) (Occupant, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	occ, ok := l.slots[slot]
	if !ok {
		return Occupant{}, false
	}
	return *occ, true
}

// IsSlotAvailable reports whether a slot is active and free.
func (l *Lobby) IsSlotAvailable(slot string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.freeLocked(slot)
}

// AvailableSlots returns the free active slots, sorted.
func (l *Lobby) AvailableSlots() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.availableLocked()
}

func (l *Lobby) availableLocked() []string {
	free := make([]string, 0, len(l.active))
	for _, slot := range l.active {
		if l.freeLocked(slot) {
			free = append(free, slot)
		}
	}
	return free
}

// PlayerCount returns the number of occupied slots.
func (l *Lobby) PlayerCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

// Reset frees every slot.
func (l *Lobby) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.slots = make(map[string]*Occupant)
	l.byPlayer = make(map[string]string)
}
