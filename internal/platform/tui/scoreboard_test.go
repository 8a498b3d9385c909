package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/multipong/internal/storage"
)

type fakeStats struct {
	board   []storage.PlayerSummary
	matches []storage.Match
	err     error
	calls   int
}

func (f *fakeStats) Leaderboard(int) ([]storage.PlayerSummary, error) {
	f.calls++
	return f.board, f.err
}

func (f *fakeStats) Matches(int) ([]storage.Match, error) {
	f.calls++
	return f.matches, f.err
}

func TestScoreboardViews(t *testing.T) {
	src := &fakeStats{
		board: []storage.PlayerSummary{
			{PlayerID: "alice", Name: "alice", Team: "A", MatchesPlayed: 2, TotalGoalsScored: 3},
			{PlayerID: "bob", Name: "bob", Team: "B", MatchesPlayed: 1, TotalGoalsScored: 1},
		},
		matches: []storage.Match{
			{ID: 7, CreatedAt: time.Date(2025, 1, 2, 15, 4, 0, 0, time.UTC), TeamLeftScore: 3, TeamRightScore: 1, DurationSeconds: 120},
		},
	}

	m := NewScoreboardModel(src, 80, 30)
	if m.view != viewLeaderboard || m.rows != 2 {
		t.Fatalf("initial view = %d with %d rows, expected leaderboard with 2", m.view, m.rows)
	}
	if view := m.View(); !strings.Contains(view, "alice") {
		t.Errorf("leaderboard view missing alice:\n%s", view)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(ScoreboardModel)
	if m.view != viewMatches || m.rows != 1 {
		t.Errorf("after tab view = %d with %d rows, expected matches with 1", m.view, m.rows)
	}
	if view := m.View(); !strings.Contains(view, "Jan 02 15:04") {
		t.Errorf("matches view missing match date:\n%s", view)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(ScoreboardModel)
	if m.view != viewLeaderboard {
		t.Errorf("second tab view = %d, expected leaderboard", m.view)
	}

	calls := src.calls
	next, _ = m.Update(runeKey("r"))
	m = next.(ScoreboardModel)
	if src.calls != calls+1 {
		t.Errorf("refresh queried %d times, expected 1", src.calls-calls)
	}
}

func TestScoreboardEmptyAndError(t *testing.T) {
	empty := NewScoreboardModel(&fakeStats{}, 80, 30)
	if view := empty.View(); !strings.Contains(view, "No matches recorded yet") {
		t.Errorf("empty view = %q", view)
	}

	failing := NewScoreboardModel(&fakeStats{err: errors.New("disk gone")}, 80, 30)
	if view := failing.View(); !strings.Contains(view, "disk gone") {
		t.Errorf("error view = %q", view)
	}
}

func TestScoreboardQuit(t *testing.T) {
	m := NewScoreboardModel(&fakeStats{}, 80, 30)
	next, cmd := m.Update(runeKey("q"))
	if cmd == nil {
		t.Fatal("quit key returned no command")
	}
	m = next.(ScoreboardModel)
	if !m.quitting || m.View() != "" {
		t.Error("scoreboard should be quitting with an empty view")
	}
}
