package multiplayer

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/multipong/internal/config"
	"github.com/vovakirdan/multipong/internal/engine"
	"github.com/vovakirdan/multipong/internal/lobby"
	"github.com/vovakirdan/multipong/internal/protocol"
)

// Coordinator connects sessions to lobby slots, dispatches client
// messages and evicts idle sessions.
type Coordinator struct {
	cfg      config.Config
	lobby    *lobby.Lobby
	sessions *SessionRegistry
	loop     *GameLoop
	logger   *log.Logger

	mu        sync.Mutex
	countdown *time.Timer // non-nil while a start countdown runs

	startedAt time.Time
}

// NewCoordinator creates the lobby, session registry and game loop for cfg.
func NewCoordinator(cfg config.Config, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	l := lobby.New(cfg)
	sessions := NewSessionRegistry(l, logger.WithPrefix("sessions"))
	c := &Coordinator{
		cfg:       cfg,
		lobby:     l,
		sessions:  sessions,
		loop:      NewGameLoop(cfg, sessions, l, logger.WithPrefix("loop")),
		logger:    logger,
		startedAt: time.Now(),
	}
	sessions.OnRemove(c.handleSessionRemoved)
	c.loop.OnMatchEnd(c.handleMatchEnded)
	return c
}

// Lobby returns the slot allocator.
func (c *Coordinator) Lobby() *lobby.Lobby { return c.lobby }

// Sessions returns the session registry.
func (c *Coordinator) Sessions() *SessionRegistry { return c.sessions }

// Loop returns the game loop.
func (c *Coordinator) Loop() *GameLoop { return c.loop }

// Config returns the configuration the coordinator was built with.
func (c *Coordinator) Config() config.Config { return c.cfg }

// Uptime returns the time since the coordinator was created.
func (c *Coordinator) Uptime() time.Duration { return time.Since(c.startedAt) }

// Start begins the game loop and idle eviction. Both stop when ctx is
// cancelled or Stop is called.
func (c *Coordinator) Start(ctx context.Context) {
	go c.loop.Run(ctx)
	go c.cleanupLoop(ctx)
}

// Stop disconnects everyone and shuts down the loop.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if c.countdown != nil {
		c.countdown.Stop()
		c.countdown = nil
	}
	c.mu.Unlock()

	c.sessions.DisconnectAll()
	c.loop.Stop()
}

// Connect registers a player and gives them a slot. An empty playerID
// gets a generated one. requested is a slot id or lobby.AutoSlot.
//
// lobby.ErrNoSlot means the server is full; the caller should report it
// to the client and close the connection.
func (c *Coordinator) Connect(playerID, requested string) (*Session, error) {
	if playerID == "" {
		playerID = "player-" + generateID()
	}

	// The identity is reserved before the slot so a second connection with
	// the same id cannot move the live player.
	s := NewSession(playerID, DefaultSendBuffer)
	if !c.sessions.Add(s) {
		return nil, ErrDuplicatePlayer
	}

	slot, err := c.lobby.AssignSlot(playerID, requested)
	if err != nil {
		c.sessions.discard(s)
		c.logger.Warn("connection refused", "player", playerID, "requested", requested, "err", err)
		return nil, err
	}
	c.loop.SyncSlot(slot)

	c.logger.Info("session started", "player", playerID, "slot", slot)
	if err := s.SendMessage(protocol.NewConnected(playerID, slot, c.lobby.Status())); err != nil {
		c.logger.Warn("send connected", "player", playerID, "err", err)
	}
	c.broadcastLobby()
	return s, nil
}

// Disconnect ends a session and frees its slot.
func (c *Coordinator) Disconnect(s *Session) {
	if c.sessions.Remove(s) {
		c.logger.Info("session ended", "player", s.ID())
	}
}

// Handle processes one inbound message from a session. Malformed or
// unknown messages are logged and ignored.
func (c *Coordinator) Handle(s *Session, data []byte) {
	s.Touch()

	msg, err := protocol.DecodeClient(data)
	if err != nil {
		c.logger.Warn("bad message", "player", s.ID(), "err", err)
		return
	}

	switch m := msg.(type) {
	case protocol.Input:
		s.SetInput(m.Intent())
	case protocol.Chat:
		c.sessions.Broadcast(protocol.NewChat(s.ID(), m.Message), "")
	case protocol.Ping:
		c.reply(s, protocol.NewPong(m.PingID))
	case protocol.JoinLobby:
		c.handleJoinLobby(s, m)
	case protocol.ChooseSlot:
		c.handleChooseSlot(s, m)
	case protocol.SetReady:
		c.handleSetReady(s, m)
	}
}

func (c *Coordinator) reply(s *Session, msg protocol.ServerMessage) {
	if err := s.SendMessage(msg); err != nil {
		c.logger.Debug("reply dropped", "player", s.ID(), "err", err)
	}
}

func (c *Coordinator) handleJoinLobby(s *Session, m protocol.JoinLobby) {
	if err := c.lobby.Join(s.ID(), lobby.SanitizeNickname(m.PlayerName)); err != nil {
		c.reply(s, protocol.NewError(err.Error()))
		return
	}
	c.broadcastLobby()
}

func (c *Coordinator) handleChooseSlot(s *Session, m protocol.ChooseSlot) {
	old, _ := c.lobby.AssignedSlot(s.ID())
	slot, err := c.lobby.Choose(s.ID(), m.Slot)
	if err != nil {
		c.reply(s, protocol.NewError(err.Error()))
		return
	}
	if slot != m.Slot {
		c.reply(s, protocol.NewError(fmt.Sprintf("slot %s unavailable, keeping %s", m.Slot, slot)))
	}
	if slot != old {
		c.loop.SyncSlot(old)
		c.loop.SyncSlot(slot)
		c.logger.Info("slot changed", "player", s.ID(), "from", old, "to", slot)
	}
	c.broadcastLobby()
}

func (c *Coordinator) handleSetReady(s *Session, m protocol.SetReady) {
	if !c.lobby.SetReady(s.ID(), m.Ready) {
		c.reply(s, protocol.NewError(lobby.ErrUnknownPlayer.Error()))
		return
	}
	c.broadcastLobby()
	c.maybeStartCountdown()
}

// maybeStartCountdown announces start_match once everyone is ready and
// starts the engine when the countdown ends, if they still are.
func (c *Coordinator) maybeStartCountdown() {
	minPlayers := c.cfg.Server.MinPlayers
	if c.loop.Running() || !c.lobby.AllReady(minPlayers) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.countdown != nil {
		return
	}

	seconds := max(0, c.cfg.Server.CountdownSeconds)
	c.sessions.Broadcast(protocol.NewStartMatch(seconds), "")
	c.logger.Info("countdown started", "seconds", seconds)

	c.countdown = time.AfterFunc(time.Duration(seconds)*time.Second, func() {
		c.mu.Lock()
		c.countdown = nil
		c.mu.Unlock()

		if c.lobby.AllReady(minPlayers) {
			c.loop.StartMatch()
			return
		}
		c.logger.Info("countdown cancelled, players not ready")
	})
}

func (c *Coordinator) handleSessionRemoved(s *Session, slot string) {
	if slot != "" {
		c.loop.SyncSlot(slot)
	}
	if c.humanCount() == 0 {
		c.loop.ResetMatch()
	}
	c.broadcastLobby()
}

func (c *Coordinator) handleMatchEnded(engine.Tally) {
	for _, occ := range c.lobby.Status().Players {
		if !occ.IsAI {
			c.lobby.SetReady(occ.PlayerID, false)
		}
	}
	c.broadcastLobby()
}

func (c *Coordinator) humanCount() int {
	n := 0
	for _, occ := range c.lobby.Status().Players {
		if !occ.IsAI {
			n++
		}
	}
	return n
}

func (c *Coordinator) broadcastLobby() {
	c.sessions.Broadcast(protocol.NewLobbyUpdate(c.lobby.Update(c.settings())), "")
}

func (c *Coordinator) settings() lobby.Settings {
	return lobby.Settings{
		MinPlayers:       c.cfg.Server.MinPlayers,
		CountdownSeconds: c.cfg.Server.CountdownSeconds,
	}
}

// AddBot places a bot of the given level into a free slot.
func (c *Coordinator) AddBot(slot string, level int) error {
	if err := c.lobby.SetAI(slot, level); err != nil {
		return err
	}
	c.loop.SyncSlot(slot)
	c.broadcastLobby()
	return nil
}

func (c *Coordinator) cleanupLoop(ctx context.Context) {
	period := c.cfg.Server.TimeoutCheckDuration()
	if period <= 0 {
		period = 5 * time.Second
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictIdle()
		case <-ctx.Done():
			return
		case <-c.loop.done:
			return
		}
	}
}

func (c *Coordinator) evictIdle() int {
	n := c.sessions.DisconnectInactive(c.cfg.Server.SessionTimeoutDuration())
	if n > 0 {
		c.logger.Info("evicted idle sessions", "count", n)
	}
	return n
}

// IsCapacityError reports whether err means no slot was left.
func IsCapacityError(err error) bool {
	return errors.Is(err, lobby.ErrNoSlot)
}

// generateID creates an 8-character uppercase identifier.
func generateID() string {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return strings.ToUpper(base32.StdEncoding.EncodeToString(b))
}
