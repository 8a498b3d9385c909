package tui

import (
	"context"
	"sync"
	"time"

	"github.com/vovakirdan/multipong/internal/client"
	"github.com/vovakirdan/multipong/internal/engine"
	"github.com/vovakirdan/multipong/internal/multiplayer"
	"github.com/vovakirdan/multipong/internal/protocol"
)

// Conn is a player's link to a match, either over the network or inside
// the server process (SSH sessions).
type Conn interface {
	SendInput(up, down bool) error
	SetReady(ready bool) error
	ChooseSlot(slot string) error
	Chat(message string) error
	Ping() error

	// Frame returns the snapshot to draw now, interpolated renderDelay in the past.
	Frame(renderDelay time.Duration) (engine.Snapshot, bool)
	Messages() <-chan protocol.ServerMessage
	PlayerID() string
	Slot() string
	RTT() time.Duration
	Done() <-chan struct{}
	Close() error
}

// RemoteConn adapts a websocket client.
type RemoteConn struct {
	ctx context.Context
	c   *client.Client
}

// NewRemoteConn wraps c. ctx bounds every send.
func NewRemoteConn(ctx context.Context, c *client.Client) *RemoteConn {
	return &RemoteConn{ctx: ctx, c: c}
}

func (r *RemoteConn) SendInput(up, down bool) error { return r.c.SendInput(r.ctx, up, down) }
func (r *RemoteConn) SetReady(ready bool) error     { return r.c.SetReady(r.ctx, ready) }
func (r *RemoteConn) ChooseSlot(slot string) error  { return r.c.ChooseSlot(r.ctx, slot) }
func (r *RemoteConn) Chat(message string) error     { return r.c.Chat(r.ctx, message) }

func (r *RemoteConn) Ping() error {
	_, err := r.c.Ping(r.ctx)
	return err
}

func (r *RemoteConn) Frame(renderDelay time.Duration) (engine.Snapshot, bool) {
	return r.c.Buffer().Interpolated(renderDelay)
}

func (r *RemoteConn) Messages() <-chan protocol.ServerMessage { return r.c.Messages() }
func (r *RemoteConn) PlayerID() string                        { return r.c.PlayerID() }
func (r *RemoteConn) Slot() string                            { return r.c.Slot() }
func (r *RemoteConn) RTT() time.Duration                      { return r.c.RTT() }
func (r *RemoteConn) Done() <-chan struct{}                   { return r.c.Done() }
func (r *RemoteConn) Close() error                            { return r.c.Close() }

// LocalConn feeds a session's outbound queue straight into a snapshot
// buffer and hands client messages to the coordinator, skipping the
// network.
type LocalConn struct {
	coord    *multiplayer.Coordinator
	session  *multiplayer.Session
	buffer   *client.SnapshotBuffer
	messages chan protocol.ServerMessage

	mu   sync.Mutex
	slot string

	done chan struct{}
	once sync.Once
}

// NewLocalConn starts pumping s's outbound messages.
func NewLocalConn(coord *multiplayer.Coordinator, s *multiplayer.Session, bufferSize int) *LocalConn {
	lc := &LocalConn{
		coord:    coord,
		session:  s,
		buffer:   client.NewSnapshotBuffer(bufferSize),
		messages: make(chan protocol.ServerMessage, 64),
		done:     make(chan struct{}),
	}
	if slot, ok := coord.Lobby().AssignedSlot(s.ID()); ok {
		lc.slot = slot
	}
	go lc.pump()
	return lc
}

func (l *LocalConn) pump() {
	defer l.Close()
	for {
		select {
		case data := <-l.session.Outbound():
			msg, err := protocol.DecodeServer(data)
			if err != nil {
				continue
			}
			l.dispatch(msg)
		case <-l.session.Done():
			return
		case <-l.done:
			return
		}
	}
}

func (l *LocalConn) dispatch(msg protocol.ServerMessage) {
	switch m := msg.(type) {
	case protocol.Snapshot:
		l.buffer.Add(m.Snapshot)
		return
	case protocol.Connected:
		l.setSlot(m.AssignedSlot)
	case protocol.LobbyUpdate:
		if slot, ok := m.Update.SlotOf(l.session.ID()); ok {
			l.setSlot(slot)
		}
	}
	select {
	case l.messages <- msg:
	default:
	}
}

func (l *LocalConn) setSlot(slot string) {
	l.mu.Lock()
	l.slot = slot
	l.mu.Unlock()
}

func (l *LocalConn) send(msg protocol.ClientMessage) error {
	select {
	case <-l.done:
		return client.ErrClosed
	default:
	}
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	l.coord.Handle(l.session, data)
	return nil
}

func (l *LocalConn) SendInput(up, down bool) error { return l.send(protocol.NewInput(up, down)) }
func (l *LocalConn) SetReady(ready bool) error     { return l.send(protocol.NewSetReady(ready)) }
func (l *LocalConn) ChooseSlot(slot string) error  { return l.send(protocol.NewChooseSlot(slot)) }
func (l *LocalConn) Chat(message string) error     { return l.send(protocol.NewChat("", message)) }

// Ping only refreshes the session; there is no network round trip.
func (l *LocalConn) Ping() error {
	l.session.Touch()
	return nil
}

func (l *LocalConn) Frame(renderDelay time.Duration) (engine.Snapshot, bool) {
	return l.buffer.Interpolated(renderDelay)
}

func (l *LocalConn) Messages() <-chan protocol.ServerMessage { return l.messages }
func (l *LocalConn) PlayerID() string                        { return l.session.ID() }
func (l *LocalConn) RTT() time.Duration                      { return 0 }
func (l *LocalConn) Done() <-chan struct{}                   { return l.done }

func (l *LocalConn) Slot() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.slot
}

// Close leaves the match and frees the slot. Safe to call multiple times.
func (l *LocalConn) Close() error {
	l.once.Do(func() {
		close(l.done)
		l.coord.Disconnect(l.session)
	})
	return nil
}
