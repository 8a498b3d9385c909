package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/multipong/internal/engine"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// seed stores two matches:
//
//	match 1: A 3 - 1 B, alice 3 goals, bob 1 goal
//	match 2: A 0 - 2 B, alice 0 goals, carol 2 goals
func seed(t *testing.T, store *Store) {
	t.Helper()
	tallies := []engine.Tally{
		{
			DurationSeconds: 120,
			TeamLeftScore:   3,
			TeamRightScore:  1,
			Players: []engine.PlayerTally{
				{PlayerID: "alice", Slot: "A1", Team: "A", Hits: 10, GoalsScored: 3, GoalsReceived: 1},
				{PlayerID: "bob", Slot: "B1", Team: "B", Hits: 4, GoalsScored: 1, GoalsReceived: 3},
			},
		},
		{
			DurationSeconds: 90.5,
			TeamLeftScore:   0,
			TeamRightScore:  2,
			Players: []engine.PlayerTally{
				{PlayerID: "alice", Slot: "A2", Team: "A", Hits: 6, GoalsScored: 0, GoalsReceived: 2},
				{PlayerID: "carol", Slot: "B2", Team: "B", Hits: 8, GoalsScored: 2, GoalsReceived: 0},
			},
		},
	}
	for _, tally := range tallies {
		if err := store.SaveMatchResult(tally); err != nil {
			t.Fatalf("SaveMatchResult() failed: %v", err)
		}
	}
}

func TestStoreOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	seed(t, store)
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer store.Close()

	matches, err := store.Matches(0)
	if err != nil {
		t.Fatalf("Matches() failed: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("Matches() len = %d, expected 2", len(matches))
	}
}

func TestSaveMatchCreatesPlayersOnce(t *testing.T) {
	store := openStore(t)
	seed(t, store)

	players, err := store.Players()
	if err != nil {
		t.Fatalf("Players() failed: %v", err)
	}
	if len(players) != 3 {
		t.Fatalf("Players() len = %d, expected 3", len(players))
	}

	expected := []string{"alice", "bob", "carol"}
	for i, p := range players {
		if p.PlayerID != expected[i] {
			t.Errorf("Players()[%d] = %s, expected %s", i, p.PlayerID, expected[i])
		}
		if p.Name != p.PlayerID {
			t.Errorf("player %s name = %q, expected the player id", p.PlayerID, p.Name)
		}
	}
}

func TestSaveMatchSkipsBots(t *testing.T) {
	tests := []struct {
		name     string
		player   engine.PlayerTally
		expected int
	}{
		{"human", engine.PlayerTally{PlayerID: "dave", Slot: "B3", Team: "B"}, 2},
		{"bot", engine.PlayerTally{PlayerID: "bot-B3", Slot: "B3", Team: "B", IsAI: true}, 1},
		{"empty slot", engine.PlayerTally{Slot: "B3", Team: "B"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := openStore(t)
			id, err := store.SaveMatch(engine.Tally{
				TeamLeftScore: 1,
				Players: []engine.PlayerTally{
					{PlayerID: "alice", Slot: "A1", Team: "A", GoalsScored: 1},
					tt.player,
				},
			})
			if err != nil {
				t.Fatalf("SaveMatch() failed: %v", err)
			}

			players, err := store.Players()
			if err != nil {
				t.Fatalf("Players() failed: %v", err)
			}
			if len(players) != tt.expected {
				t.Errorf("Players() len = %d, expected %d", len(players), tt.expected)
			}
			m, err := store.MatchByID(id)
			if err != nil {
				t.Fatalf("MatchByID() failed: %v", err)
			}
			if len(m.Stats) != tt.expected {
				t.Errorf("MatchByID() stats len = %d, expected %d", len(m.Stats), tt.expected)
			}
		})
	}
}

func TestMatchByID(t *testing.T) {
	store := openStore(t)
	seed(t, store)

	matches, err := store.Matches(10)
	if err != nil {
		t.Fatalf("Matches() failed: %v", err)
	}
	// Newest first.
	if matches[0].TeamRightScore != 2 {
		t.Errorf("Matches()[0] = %+v, expected the second match first", matches[0])
	}
	if matches[0].Stats != nil {
		t.Error("Matches() should not load player stats")
	}

	m, err := store.MatchByID(matches[1].ID)
	if err != nil {
		t.Fatalf("MatchByID() failed: %v", err)
	}
	if m.TeamLeftScore != 3 || m.DurationSeconds != 120 {
		t.Errorf("MatchByID() = %+v, expected 3-1 over 120s", m)
	}
	if m.CreatedAt.IsZero() {
		t.Error("MatchByID() CreatedAt is zero")
	}
	if len(m.Stats) != 2 || m.Stats[0].PlayerID != "alice" || m.Stats[0].Hits != 10 {
		t.Errorf("MatchByID() stats = %+v", m.Stats)
	}

	if _, err := store.MatchByID(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("MatchByID(999) error = %v, expected ErrNotFound", err)
	}
}

func TestMatchesLimit(t *testing.T) {
	store := openStore(t)
	seed(t, store)

	matches, err := store.Matches(1)
	if err != nil {
		t.Fatalf("Matches() failed: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("Matches(1) len = %d, expected 1", len(matches))
	}
}

func TestPlayerSummary(t *testing.T) {
	store := openStore(t)
	seed(t, store)

	ps, err := store.PlayerSummary("alice")
	if err != nil {
		t.Fatalf("PlayerSummary() failed: %v", err)
	}
	if ps.MatchesPlayed != 2 || ps.TotalHits != 16 || ps.TotalGoalsScored != 3 || ps.TotalGoalsReceived != 3 {
		t.Errorf("PlayerSummary(alice) = %+v", ps)
	}
	if ps.AverageHitsPerMatch != 8 {
		t.Errorf("AverageHitsPerMatch = %v, expected 8", ps.AverageHitsPerMatch)
	}

	if _, err := store.PlayerSummary("nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("PlayerSummary(nobody) error = %v, expected ErrNotFound", err)
	}
}

func TestLeaderboard(t *testing.T) {
	store := openStore(t)
	seed(t, store)

	board, err := store.Leaderboard(0)
	if err != nil {
		t.Fatalf("Leaderboard() failed: %v", err)
	}
	expected := []string{"alice", "carol", "bob"}
	if len(board) != len(expected) {
		t.Fatalf("Leaderboard() len = %d, expected %d", len(board), len(expected))
	}
	for i, e := range board {
		if e.PlayerID != expected[i] {
			t.Errorf("Leaderboard()[%d] = %s, expected %s", i, e.PlayerID, expected[i])
		}
	}

	top, err := store.Leaderboard(1)
	if err != nil {
		t.Fatalf("Leaderboard(1) failed: %v", err)
	}
	if len(top) != 1 {
		t.Errorf("Leaderboard(1) len = %d, expected 1", len(top))
	}
}

func TestTeamStats(t *testing.T) {
	store := openStore(t)
	seed(t, store)

	tests := []struct {
		team     string
		scored   int
		received int
		err      error
	}{
		{"A", 3, 3, nil},
		{"B", 3, 3, nil},
		{"C", 0, 0, ErrInvalidTeam},
	}

	for _, tc := range tests {
		t.Run(tc.team, func(t *testing.T) {
			ts, err := store.TeamStats(tc.team)
			if !errors.Is(err, tc.err) {
				t.Fatalf("TeamStats(%s) error = %v, expected %v", tc.team, err, tc.err)
			}
			if err != nil {
				return
			}
			if ts.MatchesPlayed != 2 || ts.TotalGoalsScored != tc.scored || ts.TotalGoalsReceived != tc.received {
				t.Errorf("TeamStats(%s) = %+v", tc.team, ts)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	store := openStore(t)

	empty, err := store.Summary()
	if err != nil {
		t.Fatalf("Summary() on empty store failed: %v", err)
	}
	if empty != (Summary{}) {
		t.Errorf("Summary() on empty store = %+v, expected zero", empty)
	}

	seed(t, store)
	sum, err := store.Summary()
	if err != nil {
		t.Fatalf("Summary() failed: %v", err)
	}
	expected := Summary{TotalMatches: 2, TotalPlayers: 3, TotalGoals: 6, AverageGoalsPerMatch: 3}
	if sum != expected {
		t.Errorf("Summary() = %+v, expected %+v", sum, expected)
	}
}

func TestStandouts(t *testing.T) {
	store := openStore(t)

	if _, err := store.BestDefender(); !errors.Is(err, ErrNotFound) {
		t.Errorf("BestDefender() on empty store error = %v, expected ErrNotFound", err)
	}
	if _, err := store.HottestScorer(); !errors.Is(err, ErrNotFound) {
		t.Errorf("HottestScorer() on empty store error = %v, expected ErrNotFound", err)
	}

	seed(t, store)

	defender, err := store.BestDefender()
	if err != nil {
		t.Fatalf("BestDefender() failed: %v", err)
	}
	if defender.PlayerID != "carol" || defender.Total != 0 {
		t.Errorf("BestDefender() = %+v, expected carol with 0", defender)
	}

	scorer, err := store.HottestScorer()
	if err != nil {
		t.Fatalf("HottestScorer() failed: %v", err)
	}
	if scorer.PlayerID != "alice" || scorer.Total != 3 {
		t.Errorf("HottestScorer() = %+v, expected alice with 3", scorer)
	}
}

func TestCreateAndDeletePlayer(t *testing.T) {
	store := openStore(t)
	seed(t, store)

	p, err := store.CreatePlayer("dave", "", "B")
	if err != nil {
		t.Fatalf("CreatePlayer() failed: %v", err)
	}
	if p.Name != "dave" {
		t.Errorf("CreatePlayer() name = %q, expected dave", p.Name)
	}
	if _, err := store.CreatePlayer("dave", "Dave", "A"); err == nil {
		t.Error("CreatePlayer() duplicate should fail")
	}

	if err := store.DeletePlayer("alice"); err != nil {
		t.Fatalf("DeletePlayer() failed: %v", err)
	}
	if _, err := store.PlayerByID("alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("PlayerByID(alice) after delete error = %v, expected ErrNotFound", err)
	}
	if err := store.DeletePlayer("alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeletePlayer() error = %v, expected ErrNotFound", err)
	}

	sum, err := store.Summary()
	if err != nil {
		t.Fatalf("Summary() failed: %v", err)
	}
	if sum.TotalGoals != 3 {
		t.Errorf("Summary() goals after delete = %d, expected 3", sum.TotalGoals)
	}
}
