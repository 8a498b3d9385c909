package engine

// PlayerTally is the final line of one paddle in a match.
type PlayerTally struct {
	PlayerID      string `json:"player_id"`
	Slot          string `json:"slot"`
	Team          string `json:"team"`
	IsAI          bool   `json:"is_ai"`
	Hits          int    `json:"hits"`
	GoalsScored   int    `json:"goals_scored"`
	GoalsReceived int    `json:"goals_received"`
}

// Tally is the result of a match as handed to persistence and telemetry.
type Tally struct {
	DurationSeconds float64       `json:"duration_seconds"`
	TeamLeftScore   int           `json:"team_left_score"`
	TeamRightScore  int           `json:"team_right_score"`
	Players         []PlayerTally `json:"players"`
}

// Winner returns the name of the leading team, or "" on a draw.
func (t Tally) Winner(left, right string) string {
	switch {
	case t.TeamLeftScore > t.TeamRightScore:
		return left
	case t.TeamRightScore > t.TeamLeftScore:
		return right
	default:
		return ""
	}
}

// Tally collects the current scores and per-paddle stats. name maps a
// slot to the identity stored for it; slots it maps to "" have no player
// and are left out. A nil name keeps every paddle under its slot id.
func (e *Engine) Tally(name func(slot string) string) Tally {
	t := Tally{
		DurationSeconds: e.elapsed(),
		TeamLeftScore:   e.left.Score,
		TeamRightScore:  e.right.Score,
	}
	for _, team := range []*Team{e.left, e.right} {
		for _, p := range team.Paddles {
			id := p.PlayerID
			if name != nil {
				if id = name(p.PlayerID); id == "" {
					continue
				}
			}
			t.Players = append(t.Players, PlayerTally{
				PlayerID:      id,
				Slot:          p.PlayerID,
				Team:          team.Name,
				IsAI:          p.IsAI(),
				Hits:          p.Stats.Hits,
				GoalsScored:   p.Stats.GoalsScored,
				GoalsReceived: p.Stats.GoalsReceived,
			})
		}
	}
	return t
}
