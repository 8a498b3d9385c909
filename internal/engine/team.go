package engine

// Team is one side of the match.
type Team struct {
	Name    string
	Side    Side
	Paddles []*Paddle
	Score   int
}

// NewTeam creates an empty team.
func NewTeam(name string, side Side) *Team {
	return &Team{Name: name, Side: side}
}

// AddPaddle appends a paddle to the team.
func (t *Team) AddPaddle(p *Paddle) {
	t.Paddles = append(t.Paddles, p)
}

// Paddle finds a paddle by player id.
func (t *Team) Paddle(playerID string) (*Paddle, bool) {
	for _, p := range t.Paddles {
		if p.PlayerID == playerID {
			return p, true
		}
	}
	return nil, false
}

// ScoreGoal increments the team score and every member's goals scored.
func (t *Team) ScoreGoal() {
	t.Score++
	for _, p := range t.Paddles {
		p.Stats.RecordGoalScored()
	}
}

// ConcedeGoal increments every member's goals received.
func (t *Team) ConcedeGoal() {
	for _, p := range t.Paddles {
		p.Stats.RecordGoalReceived()
	}
}

// Reset zeroes the score and member stats.
func (t *Team) Reset() {
	t.Score = 0
	for _, p := range t.Paddles {
		p.Stats.Reset()
		p.Stretch = 1
	}
}
