package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/multipong/internal/storage"
)

type createPlayerRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
	Name     string `json:"name"`
	Team     string `json:"team" binding:"omitempty,oneof=A B"`
}

// queryLimit parses ?limit=, falling back to def when absent.
func queryLimit(c *gin.Context, def int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return 0, false
	}
	return limit, true
}

// storeError maps a storage error to a response.
func (s *Server) storeError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
	case errors.Is(err, storage.ErrInvalidTeam):
		c.JSON(http.StatusBadRequest, gin.H{"error": "team must be A or B"})
	default:
		s.logger.Error("stats query failed", "path", c.Request.URL.Path, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// nonNil keeps empty lists as [] in JSON.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func (s *Server) handleListPlayers(c *gin.Context) {
	players, err := s.store.Players()
	if err != nil {
		s.storeError(c, err, "players")
		return
	}
	c.JSON(http.StatusOK, nonNil(players))
}

func (s *Server) handleCreatePlayer(c *gin.Context) {
	var req createPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := s.store.PlayerByID(req.PlayerID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "player already exists"})
		return
	}
	player, err := s.store.CreatePlayer(req.PlayerID, req.Name, req.Team)
	if err != nil {
		s.storeError(c, err, "player")
		return
	}
	c.JSON(http.StatusCreated, player)
}

func (s *Server) handleGetPlayer(c *gin.Context) {
	player, err := s.store.PlayerByID(c.Param("player_id"))
	if err != nil {
		s.storeError(c, err, "player")
		return
	}
	c.JSON(http.StatusOK, player)
}

func (s *Server) handleDeletePlayer(c *gin.Context) {
	if err := s.store.DeletePlayer(c.Param("player_id")); err != nil {
		s.storeError(c, err, "player")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("player_id")})
}

func (s *Server) handleListMatches(c *gin.Context) {
	limit, ok := queryLimit(c, storage.DefaultMatchLimit)
	if !ok {
		return
	}
	matches, err := s.store.Matches(limit)
	if err != nil {
		s.storeError(c, err, "matches")
		return
	}
	c.JSON(http.StatusOK, nonNil(matches))
}

func (s *Server) handleGetMatch(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
		return
	}
	match, err := s.store.MatchByID(id)
	if err != nil {
		s.storeError(c, err, "match")
		return
	}
	c.JSON(http.StatusOK, match)
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	limit, ok := queryLimit(c, storage.DefaultLeaderboardLimit)
	if !ok {
		return
	}
	board, err := s.store.Leaderboard(limit)
	if err != nil {
		s.storeError(c, err, "leaderboard")
		return
	}
	c.JSON(http.StatusOK, nonNil(board))
}

func (s *Server) handlePlayerStats(c *gin.Context) {
	summary, err := s.store.PlayerSummary(c.Param("player_id"))
	if err != nil {
		s.storeError(c, err, "player")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleTeamStats(c *gin.Context) {
	stats, err := s.store.TeamStats(c.Param("team"))
	if err != nil {
		s.storeError(c, err, "team")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleSummary(c *gin.Context) {
	summary, err := s.store.Summary()
	if err != nil {
		s.storeError(c, err, "summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleBestDefender(c *gin.Context) {
	st, err := s.store.BestDefender()
	if err != nil {
		s.storeError(c, err, "matches")
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleHottestScorer(c *gin.Context) {
	st, err := s.store.HottestScorer()
	if err != nil {
		s.storeError(c, err, "matches")
		return
	}
	c.JSON(http.StatusOK, st)
}
