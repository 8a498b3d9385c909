package engine

// PaddleState is the wire view of one paddle.
type PaddleState struct {
	PlayerID      string  `json:"player_id"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Zone          *Zone   `json:"zone,omitempty"`
	Stretch       float64 `json:"stretch"`
	IsAI          bool    `json:"is_ai"`
	Hits          int     `json:"hits"`
	GoalsScored   int     `json:"goals_scored"`
	GoalsReceived int     `json:"goals_received"`
}

// TeamState is the wire view of one team.
type TeamState struct {
	Name    string        `json:"name"`
	Score   int           `json:"score"`
	Paddles []PaddleState `json:"paddles"`
}

// Paddle finds a paddle in the team state by player id.
func (t TeamState) Paddle(playerID string) (PaddleState, bool) {
	for _, p := range t.Paddles {
		if p.PlayerID == playerID {
			return p, true
		}
	}
	return PaddleState{}, false
}

// Snapshot is an immutable, self-contained view of the match state.
// It shares no memory with the engine.
type Snapshot struct {
	Tick               uint64         `json:"tick"`
	Arena              Arena          `json:"arena"`
	Ball               Ball           `json:"ball"`
	TeamLeft           TeamState      `json:"team_left"`
	TeamRight          TeamState      `json:"team_right"`
	GoalLeft           GoalZone       `json:"goal_left"`
	GoalRight          GoalZone       `json:"goal_right"`
	Score              map[string]int `json:"score"`
	GoalPauseRemaining float64        `json:"goal_pause_remaining"`
	RallyHits          int            `json:"rally_hits"`
	TimeLeft           float64        `json:"time_left"`
	IsRunning          bool           `json:"is_running"`
}

// Paddle finds a paddle on either team by player id.
func (s Snapshot) Paddle(playerID string) (PaddleState, bool) {
	if p, ok := s.TeamLeft.Paddle(playerID); ok {
		return p, true
	}
	return s.TeamRight.Paddle(playerID)
}

// Snapshot captures the current state.
func (e *Engine) Snapshot() Snapshot {
	rate := float64(max(1, e.cfg.Server.TickRate))
	return Snapshot{
		Tick:      e.tick,
		Arena:     e.arena,
		Ball:      e.ball,
		TeamLeft:  teamState(e.left),
		TeamRight: teamState(e.right),
		GoalLeft:  e.goalLeft,
		GoalRight: e.goalRight,
		Score: map[string]int{
			e.left.Name:  e.left.Score,
			e.right.Name: e.right.Score,
		},
		GoalPauseRemaining: float64(e.pauseTicks) / rate,
		RallyHits:          e.rallyHits,
		TimeLeft:           e.TimeLeft(),
		IsRunning:          e.running,
	}
}

func teamState(t *Team) TeamState {
	ts := TeamState{
		Name:    t.Name,
		Score:   t.Score,
		Paddles: make([]PaddleState, 0, len(t.Paddles)),
	}
	for _, p := range t.Paddles {
		ps := PaddleState{
			PlayerID:      p.PlayerID,
			X:             p.X,
			Y:             p.Y,
			Width:         p.Width,
			Height:        p.Height,
			Stretch:       p.Stretch,
			IsAI:          p.IsAI(),
			Hits:          p.Stats.Hits,
			GoalsScored:   p.Stats.GoalsScored,
			GoalsReceived: p.Stats.GoalsReceived,
		}
		if p.Zone != nil {
			z := *p.Zone
			ps.Zone = &z
		}
		ts.Paddles = append(ts.Paddles, ps)
	}
	return ts
}
