package lobby

// Status is the lobby view served on /lobby/status and sent with
// "connected" messages.
type Status struct {
	Available    []string            `json:"available"`
	Occupied     map[string]string   `json:"occupied"` // player id -> slot
	TotalSlots   int                 `json:"total_slots"`
	PlayersCount int                 `json:"players_count"`
	Players      map[string]Occupant `json:"players"` // slot -> occupant
}

// Settings describes match start rules for lobby_update messages.
type Settings struct {
	MinPlayers       int `json:"min_players"`
	CountdownSeconds int `json:"countdown_seconds"`
}

// Update is the payload of lobby_update messages.
type Update struct {
	Slots        []SlotState `json:"slots"`
	ReadyPlayers []string    `json:"ready_players"`
	Settings     Settings    `json:"settings"`
}

// SlotState is one active slot in a lobby update. Occupant is nil for free slots.
type SlotState struct {
	Slot     string    `json:"slot"`
	Occupant *Occupant `json:"occupant"`
}

// Status returns a consistent copy of the lobby state.
func (l *Lobby) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := Status{
		Available:    l.availableLocked(),
		Occupied:     make(map[string]string, len(l.byPlayer)),
		TotalSlots:   len(l.active),
		PlayersCount: len(l.slots),
		Players:      make(map[string]Occupant, len(l.slots)),
	}
	for id, slot := range l.byPlayer {
		st.Occupied[id] = slot
	}
	for slot, occ := range l.slots {
		st.Players[slot] = *occ
	}
	return st
}

// Update returns the lobby_update payload.
func (l *Lobby) Update(settings Settings) Update {
	l.mu.Lock()
	defer l.mu.Unlock()

	u := Update{
		Slots:        make([]SlotState, 0, len(l.active)),
		ReadyPlayers: []string{},
		Settings:     settings,
	}
	for _, slot := range l.active {
		ss := SlotState{Slot: slot}
		if occ, ok := l.slots[slot]; ok {
			c := *occ
			ss.Occupant = &c
			if c.Ready {
				u.ReadyPlayers = append(u.ReadyPlayers, c.PlayerID)
			}
		}
		u.Slots = append(u.Slots, ss)
	}
	return u
}

// SlotOf returns the slot held by playerID in the update.
func (u Update) SlotOf(playerID string) (string, bool) {
	for _, s := range u.Slots {
		if s.Occupant != nil && s.Occupant.PlayerID == playerID {
			return s.Slot, true
		}
	}
	return "", false
}
