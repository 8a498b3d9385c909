// Package storage provides SQLite-based persistence for match statistics.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/multipong/internal/config"
	"github.com/vovakirdan/multipong/internal/engine"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("storage: not found")

// Default result limits for list queries.
const (
	DefaultMatchLimit       = 20
	DefaultLeaderboardLimit = 10
)

// Store manages the SQLite database connection for match statistics.
type Store struct {
	db *sql.DB
}

// Player is a known player identity.
type Player struct {
	ID       int64  `json:"id"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Team     string `json:"team"`
}

// Match is one finished match. Stats is only filled by MatchByID.
type Match struct {
	ID              int64       `json:"id"`
	CreatedAt       time.Time   `json:"timestamp"`
	TeamLeftScore   int         `json:"team_left_score"`
	TeamRightScore  int         `json:"team_right_score"`
	DurationSeconds float64     `json:"duration_seconds"`
	Stats           []MatchStat `json:"player_stats,omitempty"`
}

// MatchStat is one player's line in a match.
type MatchStat struct {
	PlayerID      string `json:"player_id"`
	Name          string `json:"name"`
	Team          string `json:"team"`
	Hits          int    `json:"hits"`
	GoalsScored   int    `json:"goals_scored"`
	GoalsReceived int    `json:"goals_received"`
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	dbPath, err := config.ExpandHome(dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// One writer at a time; match results arrive from background goroutines.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS players (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id TEXT NOT NULL UNIQUE,
			name TEXT,
			team TEXT
		);

		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			team_left_score INTEGER NOT NULL DEFAULT 0,
			team_right_score INTEGER NOT NULL DEFAULT 0,
			duration_seconds REAL NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_matches_created ON matches(created_at DESC);

		CREATE TABLE IF NOT EXISTS player_stats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id INTEGER NOT NULL REFERENCES matches(id),
			player_id INTEGER NOT NULL REFERENCES players(id),
			hits INTEGER NOT NULL DEFAULT 0,
			goals_scored INTEGER NOT NULL DEFAULT 0,
			goals_received INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_player_stats_match ON player_stats(match_id);
		CREATE INDEX IF NOT EXISTS idx_player_stats_player ON player_stats(player_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveMatch records a finished match with one stats row per player,
// creating unknown players on the way. Returns the match ID.
func (s *Store) SaveMatch(t engine.Tally) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO matches (team_left_score, team_right_score, duration_seconds)
		 VALUES (?, ?, ?)`,
		t.TeamLeftScore, t.TeamRightScore, t.DurationSeconds,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match: %w", err)
	}
	matchID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	for _, p := range t.Players {
		// Bots and empty slots have no player row.
		if p.IsAI || p.PlayerID == "" {
			continue
		}
		rowID, err := upsertPlayer(tx, p.PlayerID, p.Team)
		if err != nil {
			return 0, err
		}
		if _, err := tx.Exec(
			`INSERT INTO player_stats (match_id, player_id, hits, goals_scored, goals_received)
			 VALUES (?, ?, ?, ?, ?)`,
			matchID, rowID, p.Hits, p.GoalsScored, p.GoalsReceived,
		); err != nil {
			return 0, fmt.Errorf("storage: cannot save stats for %s: %w", p.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit match: %w", err)
	}
	return matchID, nil
}

// SaveMatchResult implements multiplayer.MatchResultSaver.
func (s *Store) SaveMatchResult(t engine.Tally) error {
	_, err := s.SaveMatch(t)
	return err
}

// upsertPlayer returns the row ID for playerID, creating the player if
// needed. The team is updated to the one they last played for.
func upsertPlayer(tx *sql.Tx, playerID, team string) (int64, error) {
	if _, err := tx.Exec(
		`INSERT INTO players (player_id, name, team) VALUES (?, ?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET team = excluded.team`,
		playerID, playerID, team,
	); err != nil {
		return 0, fmt.Errorf("storage: cannot save player %s: %w", playerID, err)
	}

	var id int64
	if err := tx.QueryRow(`SELECT id FROM players WHERE player_id = ?`, playerID).Scan(&id); err != nil {
		return 0, fmt.Errorf("storage: cannot find player %s: %w", playerID, err)
	}
	return id, nil
}

// CreatePlayer registers a player ahead of their first match.
func (s *Store) CreatePlayer(playerID, name, team string) (Player, error) {
	if name == "" {
		name = playerID
	}
	result, err := s.db.Exec(
		`INSERT INTO players (player_id, name, team) VALUES (?, ?, ?)`,
		playerID, name, team,
	)
	if err != nil {
		return Player{}, fmt.Errorf("storage: cannot create player: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Player{}, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return Player{ID: id, PlayerID: playerID, Name: name, Team: team}, nil
}

// Players lists every known player ordered by player ID.
func (s *Store) Players() ([]Player, error) {
	rows, err := s.db.Query(
		`SELECT id, player_id, COALESCE(name, ''), COALESCE(team, '')
		 FROM players
		 ORDER BY player_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query players: %w", err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.PlayerID, &p.Name, &p.Team); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return players, nil
}

// PlayerByID looks up a player by their public ID.
func (s *Store) PlayerByID(playerID string) (Player, error) {
	var p Player
	err := s.db.QueryRow(
		`SELECT id, player_id, COALESCE(name, ''), COALESCE(team, '')
		 FROM players WHERE player_id = ?`,
		playerID,
	).Scan(&p.ID, &p.PlayerID, &p.Name, &p.Team)
	if err == sql.ErrNoRows {
		return Player{}, ErrNotFound
	}
	if err != nil {
		return Player{}, fmt.Errorf("storage: cannot get player: %w", err)
	}
	return p, nil
}

// DeletePlayer removes a player and their per-match stats.
func (s *Store) DeletePlayer(playerID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRow(`SELECT id FROM players WHERE player_id = ?`, playerID).Scan(&id)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("storage: cannot get player: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM player_stats WHERE player_id = ?`, id); err != nil {
		return fmt.Errorf("storage: cannot delete player stats: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM players WHERE id = ?`, id); err != nil {
		return fmt.Errorf("storage: cannot delete player: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit delete: %w", err)
	}
	return nil
}

// Matches retrieves the most recent matches, newest first.
func (s *Store) Matches(limit int) ([]Match, error) {
	if limit <= 0 {
		limit = DefaultMatchLimit
	}

	rows, err := s.db.Query(
		`SELECT id, created_at, team_left_score, team_right_score, duration_seconds
		 FROM matches
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		var createdAt any
		if err := rows.Scan(&m.ID, &createdAt, &m.TeamLeftScore, &m.TeamRightScore, &m.DurationSeconds); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		m.CreatedAt = parseTime(createdAt)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return matches, nil
}

// MatchByID retrieves a match together with its player stats.
func (s *Store) MatchByID(id int64) (Match, error) {
	var m Match
	var createdAt any
	err := s.db.QueryRow(
		`SELECT id, created_at, team_left_score, team_right_score, duration_seconds
		 FROM matches WHERE id = ?`,
		id,
	).Scan(&m.ID, &createdAt, &m.TeamLeftScore, &m.TeamRightScore, &m.DurationSeconds)
	if err == sql.ErrNoRows {
		return Match{}, ErrNotFound
	}
	if err != nil {
		return Match{}, fmt.Errorf("storage: cannot get match: %w", err)
	}
	m.CreatedAt = parseTime(createdAt)

	rows, err := s.db.Query(
		`SELECT p.player_id, COALESCE(p.name, p.player_id), COALESCE(p.team, ''),
		        ps.hits, ps.goals_scored, ps.goals_received
		 FROM player_stats ps
		 JOIN players p ON p.id = ps.player_id
		 WHERE ps.match_id = ?
		 ORDER BY ps.id`,
		id,
	)
	if err != nil {
		return Match{}, fmt.Errorf("storage: cannot query match stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st MatchStat
		if err := rows.Scan(&st.PlayerID, &st.Name, &st.Team, &st.Hits, &st.GoalsScored, &st.GoalsReceived); err != nil {
			return Match{}, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		m.Stats = append(m.Stats, st)
	}
	if err := rows.Err(); err != nil {
		return Match{}, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return m, nil
}

// parseTime handles both time.Time and the SQLite text form of DATETIME.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
