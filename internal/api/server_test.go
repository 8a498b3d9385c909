package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/multipong/internal/config"
	"github.com/vovakirdan/multipong/internal/engine"
	"github.com/vovakirdan/multipong/internal/multiplayer"
	"github.com/vovakirdan/multipong/internal/protocol"
	"github.com/vovakirdan/multipong/internal/storage"
	"github.com/vovakirdan/multipong/internal/transport/ws"
)

func newTestServer(t *testing.T, withStore bool) (*Server, *multiplayer.Coordinator, *storage.Store) {
	t.Helper()
	cfg := config.DefaultConfig()
	logger := log.New(io.Discard)
	coord := multiplayer.NewCoordinator(cfg, logger)
	t.Cleanup(coord.Stop)

	var store *storage.Store
	if withStore {
		var err error
		store, err = storage.Open(filepath.Join(t.TempDir(), "stats.db"))
		if err != nil {
			t.Fatalf("storage.Open() failed: %v", err)
		}
		t.Cleanup(func() { store.Close() })
	}

	s := New(cfg, coord, ws.NewHandler(coord, nil, nil, logger), store, logger)
	gin.SetMode(gin.TestMode)
	return s, coord, store
}

func doRequest(t *testing.T, s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("response %q is not JSON: %v", rec.Body.String(), err)
	}
	return v
}

func seedMatch(t *testing.T, store *storage.Store) {
	t.Helper()
	err := store.SaveMatchResult(engine.Tally{
		DurationSeconds: 60,
		TeamLeftScore:   2,
		TeamRightScore:  1,
		Players: []engine.PlayerTally{
			{PlayerID: "alice", Team: "A", Hits: 5, GoalsScored: 2, GoalsReceived: 1},
			{PlayerID: "bob", Team: "B", Hits: 3, GoalsScored: 1, GoalsReceived: 2},
		},
	})
	if err != nil {
		t.Fatalf("SaveMatchResult() failed: %v", err)
	}
}

func TestRootAndHealth(t *testing.T) {
	s, coord, _ := newTestServer(t, true)
	if _, err := coord.Connect("p1", "auto"); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}

	rec := doRequest(t, s, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status = %d, expected 200", rec.Code)
	}
	if root := decode[map[string]any](t, rec); root["service"] != ServiceName {
		t.Errorf("service = %v, expected %s", root["service"], ServiceName)
	}

	rec = doRequest(t, s, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health status = %d, expected 200", rec.Code)
	}
	health := decode[map[string]any](t, rec)
	if health["status"] != "ok" || health["players"] != float64(1) {
		t.Errorf("health = %v, expected ok with 1 player", health)
	}
	for _, key := range []string{"tick", "uptime_seconds", "system", "connections"} {
		if _, ok := health[key]; !ok {
			t.Errorf("health missing %q", key)
		}
	}
}

func TestLobbyStatus(t *testing.T) {
	s, coord, _ := newTestServer(t, false)
	if _, err := coord.Connect("p1", "B3"); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}

	rec := doRequest(t, s, http.MethodGet, "/lobby/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	status := decode[struct {
		Available    []string          `json:"available"`
		Occupied     map[string]string `json:"occupied"`
		TotalSlots   int               `json:"total_slots"`
		PlayersCount int               `json:"players_count"`
	}](t, rec)
	if status.TotalSlots != 6 || status.PlayersCount != 1 || status.Occupied["p1"] != "B3" {
		t.Errorf("lobby status = %+v", status)
	}
	if len(status.Available) != 5 {
		t.Errorf("available = %v, expected 5 slots", status.Available)
	}
}

func TestStatsRoutes(t *testing.T) {
	s, _, store := newTestServer(t, true)
	seedMatch(t, store)

	tests := []struct {
		name     string
		method   string
		path     string
		expected int
	}{
		{"players", http.MethodGet, "/players", http.StatusOK},
		{"player", http.MethodGet, "/players/alice", http.StatusOK},
		{"missing player", http.MethodGet, "/players/zed", http.StatusNotFound},
		{"matches", http.MethodGet, "/matches?limit=5", http.StatusOK},
		{"bad limit", http.MethodGet, "/matches?limit=abc", http.StatusBadRequest},
		{"match", http.MethodGet, "/matches/1", http.StatusOK},
		{"bad match id", http.MethodGet, "/matches/x", http.StatusBadRequest},
		{"missing match", http.MethodGet, "/matches/99", http.StatusNotFound},
		{"leaderboard", http.MethodGet, "/stats/leaderboard", http.StatusOK},
		{"player stats", http.MethodGet, "/stats/player/bob", http.StatusOK},
		{"team A", http.MethodGet, "/stats/team/A", http.StatusOK},
		{"team C", http.MethodGet, "/stats/team/C", http.StatusBadRequest},
		{"summary", http.MethodGet, "/stats/summary", http.StatusOK},
		{"best defender", http.MethodGet, "/stats/best_defender", http.StatusOK},
		{"hottest scorer", http.MethodGet, "/stats/hottest_scorer", http.StatusOK},
		{"unknown", http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, s, tc.method, tc.path, nil)
			if rec.Code != tc.expected {
				t.Errorf("%s %s status = %d, expected %d (%s)", tc.method, tc.path, rec.Code, tc.expected, rec.Body.String())
			}
		})
	}
}

func TestLeaderboardBody(t *testing.T) {
	s, _, store := newTestServer(t, true)
	seedMatch(t, store)

	rec := doRequest(t, s, http.MethodGet, "/stats/leaderboard?limit=1", nil)
	board := decode[[]storage.PlayerSummary](t, rec)
	if len(board) != 1 || board[0].PlayerID != "alice" || board[0].TotalGoalsScored != 2 {
		t.Errorf("leaderboard = %+v, expected alice with 2 goals", board)
	}
}

func TestEmptyStore(t *testing.T) {
	s, _, _ := newTestServer(t, true)

	if rec := doRequest(t, s, http.MethodGet, "/stats/best_defender", nil); rec.Code != http.StatusNotFound {
		t.Errorf("best_defender on empty store = %d, expected 404", rec.Code)
	}
	rec := doRequest(t, s, http.MethodGet, "/matches", nil)
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("empty matches body = %s, expected []", body)
	}
}

func TestCreateAndDeletePlayer(t *testing.T) {
	s, _, _ := newTestServer(t, true)

	rec := doRequest(t, s, http.MethodPost, "/players", []byte(`{"player_id":"carol","team":"B"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /players status = %d, expected 201 (%s)", rec.Code, rec.Body.String())
	}
	if p := decode[storage.Player](t, rec); p.Name != "carol" || p.Team != "B" {
		t.Errorf("created player = %+v", p)
	}

	tests := []struct {
		name     string
		body     string
		expected int
	}{
		{"duplicate", `{"player_id":"carol"}`, http.StatusConflict},
		{"missing id", `{"name":"x"}`, http.StatusBadRequest},
		{"bad team", `{"player_id":"dan","team":"Z"}`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if rec := doRequest(t, s, http.MethodPost, "/players", []byte(tc.body)); rec.Code != tc.expected {
				t.Errorf("POST /players %s status = %d, expected %d", tc.body, rec.Code, tc.expected)
			}
		})
	}

	if rec := doRequest(t, s, http.MethodDelete, "/players/carol", nil); rec.Code != http.StatusOK {
		t.Errorf("DELETE status = %d, expected 200", rec.Code)
	}
	if rec := doRequest(t, s, http.MethodDelete, "/players/carol", nil); rec.Code != http.StatusNotFound {
		t.Errorf("second DELETE status = %d, expected 404", rec.Code)
	}
}

func TestStatsDisabledWithoutStore(t *testing.T) {
	s, _, _ := newTestServer(t, false)
	if rec := doRequest(t, s, http.MethodGet, "/stats/summary", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, expected 503", rec.Code)
	}
}

func TestWebSocketRoute(t *testing.T) {
	s, coord, _ := newTestServer(t, false)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, tc := range []struct {
		path     string
		player   string
		expected string
	}{
		{"/ws/A2", "p1", "A2"},
		{"/ws", "p2", "A1"},
	} {
		t.Run(tc.path, func(t *testing.T) {
			url := "ws" + strings.TrimPrefix(srv.URL, "http") + tc.path + "?player=" + tc.player
			conn, _, err := websocket.Dial(ctx, url, nil)
			if err != nil {
				t.Fatalf("Dial(%s) error = %v", tc.path, err)
			}
			defer conn.CloseNow()

			for {
				_, data, err := conn.Read(ctx)
				if err != nil {
					t.Fatalf("Read() error = %v", err)
				}
				msg, err := protocol.DecodeServer(data)
				if err != nil {
					t.Fatalf("DecodeServer() error = %v", err)
				}
				if connected, ok := msg.(protocol.Connected); ok {
					if connected.AssignedSlot != tc.expected {
						t.Errorf("slot = %s, expected %s", connected.AssignedSlot, tc.expected)
					}
					break
				}
			}
			if slot, _ := coord.Lobby().AssignedSlot(tc.player); slot != tc.expected {
				t.Errorf("lobby slot = %s, expected %s", slot, tc.expected)
			}
		})
	}
}
