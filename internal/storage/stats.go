package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrInvalidTeam is returned by TeamStats for anything but A or B.
var ErrInvalidTeam = errors.New("storage: team must be A or B")

// PlayerSummary aggregates one player's stats over all matches.
type PlayerSummary struct {
	PlayerID            string  `json:"player_id"`
	Name                string  `json:"name"`
	Team                string  `json:"team"`
	MatchesPlayed       int     `json:"matches_played"`
	TotalHits           int     `json:"total_hits"`
	TotalGoalsScored    int     `json:"total_goals_scored"`
	TotalGoalsReceived  int     `json:"total_goals_received"`
	AverageHitsPerMatch float64 `json:"average_hits_per_match"`
}

// TeamStats aggregates scores for one side across all matches.
type TeamStats struct {
	Team               string `json:"team"`
	MatchesPlayed      int    `json:"matches_played"`
	TotalGoalsScored   int    `json:"total_goals_scored"`
	TotalGoalsReceived int    `json:"total_goals_received"`
}

// Summary holds global counters.
type Summary struct {
	TotalMatches         int     `json:"total_matches"`
	TotalPlayers         int     `json:"total_players"`
	TotalGoals           int     `json:"total_goals"`
	AverageGoalsPerMatch float64 `json:"average_goals_per_match"`
}

// Standout names the player leading one category.
type Standout struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Total    int    `json:"total"`
}

const summarySelect = `
	SELECT p.player_id, COALESCE(p.name, p.player_id), COALESCE(p.team, ''),
	       COUNT(ps.id),
	       COALESCE(SUM(ps.hits), 0),
	       COALESCE(SUM(ps.goals_scored), 0),
	       COALESCE(SUM(ps.goals_received), 0)
	FROM players p
	JOIN player_stats ps ON ps.player_id = p.id`

func (ps *PlayerSummary) fillAverage() {
	if ps.MatchesPlayed > 0 {
		ps.AverageHitsPerMatch = float64(ps.TotalHits) / float64(ps.MatchesPlayed)
	}
}

// PlayerSummary returns the totals for one player. Players without
// recorded matches are reported as ErrNotFound.
func (s *Store) PlayerSummary(playerID string) (PlayerSummary, error) {
	var ps PlayerSummary
	err := s.db.QueryRow(
		summarySelect+`
		WHERE p.player_id = ?
		GROUP BY p.id`,
		playerID,
	).Scan(&ps.PlayerID, &ps.Name, &ps.Team, &ps.MatchesPlayed,
		&ps.TotalHits, &ps.TotalGoalsScored, &ps.TotalGoalsReceived)
	if err == sql.ErrNoRows {
		return PlayerSummary{}, ErrNotFound
	}
	if err != nil {
		return PlayerSummary{}, fmt.Errorf("storage: cannot get player summary: %w", err)
	}
	ps.fillAverage()
	return ps, nil
}

// Leaderboard returns players ordered by goals scored, best first.
func (s *Store) Leaderboard(limit int) ([]PlayerSummary, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	rows, err := s.db.Query(
		summarySelect+`
		GROUP BY p.id
		ORDER BY SUM(ps.goals_scored) DESC, SUM(ps.hits) DESC, p.player_id
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []PlayerSummary
	for rows.Next() {
		var ps PlayerSummary
		if err := rows.Scan(&ps.PlayerID, &ps.Name, &ps.Team, &ps.MatchesPlayed,
			&ps.TotalHits, &ps.TotalGoalsScored, &ps.TotalGoalsReceived); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		ps.fillAverage()
		entries = append(entries, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// TeamStats sums the goals of team A (left) or B (right) over all matches.
func (s *Store) TeamStats(team string) (TeamStats, error) {
	var scored, received string
	switch team {
	case "A":
		scored, received = "team_left_score", "team_right_score"
	case "B":
		scored, received = "team_right_score", "team_left_score"
	default:
		return TeamStats{}, ErrInvalidTeam
	}

	ts := TeamStats{Team: team}
	err := s.db.QueryRow(fmt.Sprintf(
		`SELECT COUNT(*), COALESCE(SUM(%s), 0), COALESCE(SUM(%s), 0) FROM matches`,
		scored, received,
	)).Scan(&ts.MatchesPlayed, &ts.TotalGoalsScored, &ts.TotalGoalsReceived)
	if err != nil {
		return TeamStats{}, fmt.Errorf("storage: cannot get team stats: %w", err)
	}
	return ts, nil
}

// Summary returns global match, player and goal counts.
func (s *Store) Summary() (Summary, error) {
	var sum Summary
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM matches`).Scan(&sum.TotalMatches); err != nil {
		return Summary{}, fmt.Errorf("storage: cannot count matches: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM players`).Scan(&sum.TotalPlayers); err != nil {
		return Summary{}, fmt.Errorf("storage: cannot count players: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COALESCE(SUM(goals_scored), 0) FROM player_stats`).Scan(&sum.TotalGoals); err != nil {
		return Summary{}, fmt.Errorf("storage: cannot count goals: %w", err)
	}
	if sum.TotalMatches > 0 {
		sum.AverageGoalsPerMatch = float64(sum.TotalGoals) / float64(sum.TotalMatches)
	}
	return sum, nil
}

// BestDefender returns the player who conceded the fewest goals.
func (s *Store) BestDefender() (Standout, error) {
	return s.standout("SUM(ps.goals_received)", "ASC")
}

// HottestScorer returns the player who scored the most goals.
func (s *Store) HottestScorer() (Standout, error) {
	return s.standout("SUM(ps.goals_scored)", "DESC")
}

func (s *Store) standout(total, order string) (Standout, error) {
	var st Standout
	err := s.db.QueryRow(fmt.Sprintf(
		`SELECT p.player_id, COALESCE(p.name, p.player_id), %s AS total
		 FROM players p
		 JOIN player_stats ps ON ps.player_id = p.id
		 GROUP BY p.id
		 ORDER BY total %s, p.player_id
		 LIMIT 1`,
		total, order,
	)).Scan(&st.PlayerID, &st.Name, &st.Total)
	if err == sql.ErrNoRows {
		return Standout{}, ErrNotFound
	}
	if err != nil {
		return Standout{}, fmt.Errorf("storage: cannot get standout player: %w", err)
	}
	return st, nil
}
