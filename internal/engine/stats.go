package engine

// PlayerStats holds per-player counters for one match.
type PlayerStats struct {
	PlayerID      string `json:"player_id"`
	Hits          int    `json:"hits"`
	GoalsScored   int    `json:"goals_scored"`
	GoalsReceived int    `json:"goals_received"`
}

// RecordHit counts a paddle hit.
func (s *PlayerStats) RecordHit() { s.Hits++ }

// RecordGoalScored counts a goal for the player's team.
func (s *PlayerStats) RecordGoalScored() { s.GoalsScored++ }

// RecordGoalReceived counts a goal conceded by the player's team.
func (s *PlayerStats) RecordGoalReceived() { s.GoalsReceived++ }

// Reset zeroes all counters.
func (s *PlayerStats) Reset() {
	s.Hits = 0
	s.GoalsScored = 0
	s.GoalsReceived = 0
}
