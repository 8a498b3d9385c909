// Package api serves the HTTP side of the game server: the websocket
// upgrade route, health and lobby status, and the statistics REST API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/multipong/internal/config"
	"github.com/vovakirdan/multipong/internal/multiplayer"
	"github.com/vovakirdan/multipong/internal/storage"
	"github.com/vovakirdan/multipong/internal/transport/ws"
)

// ServiceName is reported by the root endpoint.
const ServiceName = "multipong"

// Server is the HTTP server of a multipong instance.
type Server struct {
	cfg    config.Config
	coord  *multiplayer.Coordinator
	ws     *ws.Handler
	store  *storage.Store // nil disables the stats routes
	logger *log.Logger

	router     *gin.Engine
	httpServer *http.Server
}

// New creates the server and builds its router. store may be nil.
func New(cfg config.Config, coord *multiplayer.Coordinator, handler *ws.Handler, store *storage.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Server.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:    cfg,
		coord:  coord,
		ws:     handler,
		store:  store,
		logger: logger,
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on the configured address and serves until ctx is
// cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	addr := s.cfg.Server.Address
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("api: listen %s: %w", addr, err)
	}
	s.logger.Info("http server starting", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api: serve: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(s.logger))

	allowedOrigins := s.cfg.Server.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Must be false when AllowOrigins is "*"
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", s.handleRoot)
	router.GET("/health", s.handleHealth)
	router.GET("/lobby/status", s.handleLobbyStatus)
	router.GET("/ws", s.handleWS)
	router.GET("/ws/:slot", s.handleWS)

	players := router.Group("/players")
	players.Use(s.requireStore)
	{
		players.GET("", s.handleListPlayers)
		players.POST("", s.handleCreatePlayer)
		players.GET("/:player_id", s.handleGetPlayer)
		players.DELETE("/:player_id", s.handleDeletePlayer)
	}

	matches := router.Group("/matches")
	matches.Use(s.requireStore)
	{
		matches.GET("", s.handleListMatches)
		matches.GET("/:id", s.handleGetMatch)
	}

	stats := router.Group("/stats")
	stats.Use(s.requireStore)
	{
		stats.GET("/leaderboard", s.handleLeaderboard)
		stats.GET("/player/:player_id", s.handlePlayerStats)
		stats.GET("/team/:team", s.handleTeamStats)
		stats.GET("/summary", s.handleSummary)
		stats.GET("/best_defender", s.handleBestDefender)
		stats.GET("/hottest_scorer", s.handleHottestScorer)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
	})

	return router
}
