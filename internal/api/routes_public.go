package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/vovakirdan/multipong/internal/lobby"
)

// MemoryUsage is the memory block of /health, in megabytes.
type MemoryUsage struct {
	Total       uint64  `json:"total_mb"`
	Used        uint64  `json:"used_mb"`
	Available   uint64  `json:"available_mb"`
	UsedPercent float64 `json:"used_percent"`
}

// SystemUsage is the host block of /health. Fields stay zero when the
// platform does not report them.
type SystemUsage struct {
	CPUPercent float64     `json:"cpu_percent"`
	Memory     MemoryUsage `json:"memory"`
}

func systemUsage() SystemUsage {
	var usage SystemUsage
	if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
		usage.CPUPercent = percentages[0]
	}
	if memInfo, err := mem.VirtualMemory(); err == nil {
		usage.Memory = MemoryUsage{
			Total:       memInfo.Total / (1024 * 1024),
			Used:        memInfo.Used / (1024 * 1024),
			Available:   memInfo.Available / (1024 * 1024),
			UsedPercent: memInfo.UsedPercent,
		}
	}
	return usage
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":   ServiceName,
		"websocket": "/ws/{slot|auto}",
		"slots":     s.cfg.ActiveSlots(),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	loop := s.coord.Loop()
	snap := loop.Snapshot()

	body := gin.H{
		"status":         "ok",
		"players":        s.coord.Sessions().Count(),
		"lobby_players":  s.coord.Lobby().PlayerCount(),
		"match_running":  loop.Running(),
		"tick":           snap.Tick,
		"score":          snap.Score,
		"uptime_seconds": int64(s.coord.Uptime().Seconds()),
		"system":         systemUsage(),
		"storage":        s.store != nil,
	}
	if s.ws != nil {
		body["connections"] = s.ws.Stats()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleLobbyStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.coord.Lobby().Status())
}

// handleWS upgrades to a player connection. The slot segment may be
// omitted, which requests auto assignment.
func (s *Server) handleWS(c *gin.Context) {
	if s.ws == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "websocket transport is disabled"})
		return
	}
	slot := c.Param("slot")
	if slot == "" {
		slot = lobby.AutoSlot
	}
	s.ws.ServeWS(c.Writer, c.Request, slot)
}
