package ws

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"

	"github.com/vovakirdan/multipong/internal/lobby"
	"github.com/vovakirdan/multipong/internal/multiplayer"
	"github.com/vovakirdan/multipong/internal/protocol"
)

// ReadLimit caps the size of one inbound message.
const ReadLimit = 4096

// Stats holds live connection counters.
type Stats struct {
	ActiveConnections int64  `json:"active_connections"`
	TotalConnections  uint64 `json:"total_connections"`
	Rejected          uint64 `json:"rejected"`
}

// Handler upgrades HTTP requests to player connections.
type Handler struct {
	coord          *multiplayer.Coordinator
	limiter        *IPRateLimiter
	originPatterns []string
	logger         *log.Logger

	active   atomic.Int64
	total    atomic.Uint64
	rejected atomic.Uint64
}

// NewHandler creates a websocket handler. limiter may be nil.
func NewHandler(coord *multiplayer.Coordinator, limiter *IPRateLimiter, originPatterns []string, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		coord:          coord,
		limiter:        limiter,
		originPatterns: originPatterns,
		logger:         logger,
	}
}

// Stats returns a snapshot of the connection counters.
func (h *Handler) Stats() Stats {
	return Stats{
		ActiveConnections: h.active.Load(),
		TotalConnections:  h.total.Load(),
		Rejected:          h.rejected.Load(),
	}
}

// ServeWS runs one player connection. requested is the slot asked for in
// the URL ("auto" for any). The optional query parameters player and name
// set the identity and nickname. It blocks until the connection ends.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request, requested string) {
	ip := RealIP(r)
	if h.limiter != nil {
		if !h.limiter.ConnectAllowed(ip) {
			h.rejected.Add(1)
			http.Error(w, "too many connections", http.StatusTooManyRequests)
			return
		}
		defer h.limiter.Disconnect(ip)
	}

	opts := &websocket.AcceptOptions{}
	if len(h.originPatterns) > 0 {
		opts.OriginPatterns = h.originPatterns
	}
	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		h.logger.Warn("accept failed", "ip", ip, "err", err)
		return
	}
	conn.SetReadLimit(ReadLimit)

	// The request context ends with the handler, so the connection gets its own.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	query := r.URL.Query()
	session, err := h.coord.Connect(query.Get("player"), requested)
	if err != nil {
		h.rejected.Add(1)
		h.refuse(ctx, conn, err)
		return
	}
	if name := lobby.SanitizeNickname(query.Get("name")); name != "" {
		if err := h.coord.Lobby().Join(session.ID(), name); err != nil {
			h.logger.Warn("set nickname", "player", session.ID(), "err", err)
		}
	}

	h.total.Add(1)
	h.active.Add(1)
	defer h.active.Add(-1)
	h.logger.Info("connection opened", "player", session.ID(), "ip", ip, "total", h.total.Load())

	c := NewConn(conn, session, ip, h.limiter, h.logger)
	go c.WriteLoop(ctx)
	c.ReadLoop(ctx, func(data []byte) {
		h.coord.Handle(session, data)
	})

	h.coord.Disconnect(session)
	h.logger.Info("connection closed", "player", session.ID())
}

// refuse sends one error message and closes the connection.
func (h *Handler) refuse(ctx context.Context, conn *websocket.Conn, reason error) {
	status := websocket.StatusPolicyViolation
	text := reason.Error()
	switch {
	case errors.Is(reason, lobby.ErrNoSlot):
		status = websocket.StatusTryAgainLater
		text = "no available slots"
	case errors.Is(reason, multiplayer.ErrDuplicatePlayer):
		text = "player already connected"
	}

	if data, err := protocol.Encode(protocol.NewError(text)); err == nil {
		wctx, cancel := context.WithTimeout(ctx, WriteTimeout)
		if err := conn.Write(wctx, websocket.MessageText, data); err != nil {
			h.logger.Debug("write refusal", "err", err)
		}
		cancel()
	}
	conn.Close(status, text)
	h.logger.Info("connection refused", "reason", text)
}
