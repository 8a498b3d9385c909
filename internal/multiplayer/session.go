package multiplayer

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/multipong/internal/core"
	"github.com/vovakirdan/multipong/internal/lobby"
	"github.com/vovakirdan/multipong/internal/protocol"
)

// DefaultSendBuffer is the number of outbound messages a session buffers
// before dropping the oldest.
const DefaultSendBuffer = 64

// Session is one connected player. The transport reads inbound messages
// into it and drains Outbound to the wire.
type Session struct {
	id string

	mu           sync.Mutex
	input        core.Intent
	lastActivity time.Time

	out      chan []byte
	done     chan struct{}
	doneOnce sync.Once
}

// NewSession creates a session for a player id.
// bufferSize controls how many messages can be buffered before dropping.
func NewSession(id string, bufferSize int) *Session {
	if bufferSize < 1 {
		bufferSize = DefaultSendBuffer
	}
	return &Session{
		id:           id,
		lastActivity: time.Now(),
		out:          make(chan []byte, bufferSize),
		done:         make(chan struct{}),
	}
}

// ID returns the player identity of the session.
func (s *Session) ID() string {
	return s.id
}

// SetInput replaces both input flags at once.
func (s *Session) SetInput(in core.Intent) {
	s.mu.Lock()
	s.input = in
	s.mu.Unlock()
}

// Input returns the latest input pair.
func (s *Session) Input() core.Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Touch records inbound activity now.
func (s *Session) Touch() {
	s.touchAt(time.Now())
}

func (s *Session) touchAt(t time.Time) {
	s.mu.Lock()
	s.lastActivity = t
	s.mu.Unlock()
}

// LastActivity returns the time of the last inbound message.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Send queues an encoded message. If the buffer is full the oldest
// message is dropped. Sending to a closed session fails.
func (s *Session) Send(data []byte) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	select {
	case s.out <- data:
		return nil
	default:
	}

	select {
	case <-s.out:
	default:
	}
	select {
	case s.out <- data:
	default:
	}
	return nil
}

// SendMessage encodes and queues a server message.
func (s *Session) SendMessage(msg protocol.ServerMessage) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	return s.Send(data)
}

// Outbound returns the channel of encoded messages for the transport.
func (s *Session) Outbound() <-chan []byte {
	return s.out
}

// Done returns a channel that closes when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close marks the session as done.
// Safe to call multiple times.
func (s *Session) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// SessionRegistry tracks the connected sessions. Removing a session
// always releases its lobby slot in the same step.
// Thread-safe for concurrent access.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	lobby    *lobby.Lobby
	logger   *log.Logger
	now      func() time.Time
	onRemove func(s *Session, slot string)
}

// NewSessionRegistry creates a registry bound to a lobby.
func NewSessionRegistry(l *lobby.Lobby, logger *log.Logger) *SessionRegistry {
	if logger == nil {
		logger = log.Default()
	}
	return &SessionRegistry{
		sessions: make(map[string]*Session),
		lobby:    l,
		logger:   logger,
		now:      time.Now,
	}
}

// OnRemove sets a callback run after a session is removed and its slot
// released. slot is "" when the player had none.
func (r *SessionRegistry) OnRemove(fn func(s *Session, slot string)) {
	r.mu.Lock()
	r.onRemove = fn
	r.mu.Unlock()
}

// Add registers a session. It returns false if the player id is already
// connected.
func (r *SessionRegistry) Add(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[s.ID()]; exists {
		return false
	}
	r.sessions[s.ID()] = s
	return true
}

// Remove closes the session, unregisters it and releases its lobby slot.
// It returns false if the session was not registered.
func (r *SessionRegistry) Remove(s *Session) bool {
	r.mu.Lock()
	current, ok := r.sessions[s.ID()]
	if !ok || current != s {
		r.mu.Unlock()
		s.Close()
		return false
	}
	delete(r.sessions, s.ID())
	slot, _ := r.lobby.AssignedSlot(s.ID())
	r.lobby.ReleaseSlot(s.ID())
	hook := r.onRemove
	r.mu.Unlock()

	s.Close()
	if hook != nil {
		hook(s, slot)
	}
	return true
}

// discard unregisters a session that never got a slot. Unlike Remove it
// does not touch the lobby or run the remove hook.
func (r *SessionRegistry) discard(s *Session) {
	r.mu.Lock()
	if current, ok := r.sessions[s.ID()]; ok && current == s {
		delete(r.sessions, s.ID())
	}
	r.mu.Unlock()
	s.Close()
}

// Get retrieves a session by player id.
func (r *SessionRegistry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Count returns the number of registered sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sessions returns a snapshot of the registered sessions.
func (r *SessionRegistry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Broadcast sends msg to every session except exclude and returns the
// number of successful sends. Sessions that fail are removed.
func (r *SessionRegistry) Broadcast(msg protocol.ServerMessage, exclude string) int {
	return r.broadcast(msg, func(s *Session) bool { return s.ID() != exclude })
}

// BroadcastToTeam sends msg to the sessions whose slot belongs to team.
func (r *SessionRegistry) BroadcastToTeam(msg protocol.ServerMessage, team string) int {
	return r.broadcast(msg, func(s *Session) bool {
		slot, ok := r.lobby.AssignedSlot(s.ID())
		return ok && slot[:1] == team
	})
}

func (r *SessionRegistry) broadcast(msg protocol.ServerMessage, include func(*Session) bool) int {
	data, err := protocol.Encode(msg)
	if err != nil {
		r.logger.Error("encode broadcast", "err", err)
		return 0
	}

	sent := 0
	var failed []*Session
	for _, s := range r.Sessions() {
		if !include(s) {
			continue
		}
		if err := s.Send(data); err != nil {
			failed = append(failed, s)
			continue
		}
		sent++
	}
	for _, s := range failed {
		if r.Remove(s) {
			r.logger.Info("session dropped on send failure", "player", s.ID())
		}
	}
	return sent
}

// CollectInputs returns the current input of every session by player id.
func (r *SessionRegistry) CollectInputs() map[string]core.Intent {
	sessions := r.Sessions()
	inputs := make(map[string]core.Intent, len(sessions))
	for _, s := range sessions {
		inputs[s.ID()] = s.Input()
	}
	return inputs
}

// DisconnectInactive removes every session whose last inbound message is
// older than timeout and returns how many were evicted.
func (r *SessionRegistry) DisconnectInactive(timeout time.Duration) int {
	now := r.now()
	evicted := 0
	for _, s := range r.Sessions() {
		if now.Sub(s.LastActivity()) <= timeout {
			continue
		}
		if r.Remove(s) {
			evicted++
			r.logger.Info("session timed out", "player", s.ID())
		}
	}
	return evicted
}

// DisconnectAll removes every session.
func (r *SessionRegistry) DisconnectAll() {
	for _, s := range r.Sessions() {
		r.Remove(s)
	}
}
