package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"

	"github.com/vovakirdan/multipong/internal/lobby"
	"github.com/vovakirdan/multipong/internal/protocol"
)

// WriteTimeout bounds a single outbound message.
const WriteTimeout = 5 * time.Second

// ErrClosed is returned by sends after the connection has ended.
var ErrClosed = errors.New("client: connection closed")

// pingTimeout is how long an unanswered ping is remembered.
const pingTimeout = 10 * time.Second

// Options configure Dial.
type Options struct {
	PlayerID   string // optional identity, generated by the server when empty
	Name       string // optional nickname
	BufferSize int    // snapshot buffer size, DefaultBufferSize when 0
	Logger     *log.Logger
}

// Client is one player's connection to the server.
type Client struct {
	conn   *websocket.Conn
	buffer *SnapshotBuffer
	logger *log.Logger

	messages chan protocol.ServerMessage

	mu       sync.Mutex
	playerID string
	slot     string
	update   lobby.Update
	lastErr  string
	rtt      time.Duration
	pings    map[string]time.Time

	pingSeq atomic.Uint64
	done    chan struct{}
	once    sync.Once
}

// URL builds the websocket address for a slot request on server, which
// may be given as ws://, http:// or a bare host:port.
func URL(server, slot string, opts Options) (string, error) {
	if !strings.Contains(server, "://") {
		server = "ws://" + server
	}
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("client: parse server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if slot == "" {
		slot = lobby.AutoSlot
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/" + url.PathEscape(slot)

	q := u.Query()
	if opts.PlayerID != "" {
		q.Set("player", opts.PlayerID)
	}
	if opts.Name != "" {
		q.Set("name", opts.Name)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dial connects to server asking for slot ("auto" or "" for any).
func Dial(ctx context.Context, server, slot string, opts Options) (*Client, error) {
	addr, err := URL(server, slot, opts)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", addr, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		conn:     conn,
		buffer:   NewSnapshotBuffer(opts.BufferSize),
		logger:   logger,
		messages: make(chan protocol.ServerMessage, 64),
		pings:    make(map[string]time.Time),
		done:     make(chan struct{}),
	}, nil
}

// Run reads server messages until the connection ends. Snapshots go into
// the buffer; every other message is also offered on Messages.
func (c *Client) Run(ctx context.Context) error {
	defer c.Close()
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return fmt.Errorf("client: read: %w", err)
		}
		msg, err := protocol.DecodeServer(data)
		if err != nil {
			c.logger.Warn("bad server message", "err", err)
			continue
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg protocol.ServerMessage) {
	switch m := msg.(type) {
	case protocol.Snapshot:
		c.buffer.Add(m.Snapshot)
		return
	case protocol.Connected:
		c.mu.Lock()
		c.playerID, c.slot = m.PlayerID, m.AssignedSlot
		c.mu.Unlock()
		c.logger.Info("connected", "player", m.PlayerID, "slot", m.AssignedSlot)
	case protocol.LobbyUpdate:
		c.mu.Lock()
		c.update = m.Update
		if slot, ok := m.Update.SlotOf(c.playerID); ok {
			c.slot = slot
		}
		c.mu.Unlock()
	case protocol.Pong:
		c.mu.Lock()
		if sent, ok := c.pings[m.PingID]; ok {
			c.rtt = time.Since(sent)
			delete(c.pings, m.PingID)
		}
		c.mu.Unlock()
	case protocol.Error:
		c.mu.Lock()
		c.lastErr = m.Message
		c.mu.Unlock()
		c.logger.Warn("server error", "message", m.Message)
	}

	select {
	case c.messages <- msg:
	default:
	}
}

func (c *Client) send(ctx context.Context, msg protocol.ClientMessage) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()
	if err := c.conn.Write(wctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("client: write %T: %w", msg, err)
	}
	return nil
}

// SendInput sends the current up/down state.
func (c *Client) SendInput(ctx context.Context, up, down bool) error {
	return c.send(ctx, protocol.NewInput(up, down))
}

// Chat sends a chat line to everyone.
func (c *Client) Chat(ctx context.Context, message string) error {
	return c.send(ctx, protocol.NewChat("", message))
}

// Ping sends a ping and returns its id. RTT is updated when the pong arrives.
func (c *Client) Ping(ctx context.Context) (string, error) {
	id := strconv.FormatUint(c.pingSeq.Add(1), 10)
	c.trackPing(id, time.Now())
	return id, c.send(ctx, protocol.NewPing(id))
}

// trackPing records a sent ping and forgets pings that were never answered.
func (c *Client) trackPing(id string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for old, sent := range c.pings {
		if now.Sub(sent) > pingTimeout {
			delete(c.pings, old)
		}
	}
	c.pings[id] = now
}

// JoinLobby sets the nickname.
func (c *Client) JoinLobby(ctx context.Context, name string) error {
	return c.send(ctx, protocol.NewJoinLobby(name))
}

// ChooseSlot asks to move to another slot.
func (c *Client) ChooseSlot(ctx context.Context, slot string) error {
	return c.send(ctx, protocol.NewChooseSlot(slot))
}

// SetReady changes the ready flag.
func (c *Client) SetReady(ctx context.Context, ready bool) error {
	return c.send(ctx, protocol.NewSetReady(ready))
}

// Buffer returns the snapshot buffer fed by Run.
func (c *Client) Buffer() *SnapshotBuffer { return c.buffer }

// Messages returns non-snapshot server messages. Messages are dropped
// when nobody reads them.
func (c *Client) Messages() <-chan protocol.ServerMessage { return c.messages }

// PlayerID returns the identity confirmed by the server.
func (c *Client) PlayerID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID
}

// Slot returns the slot currently held.
func (c *Client) Slot() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slot
}

// Lobby returns the last lobby update.
func (c *Client) Lobby() lobby.Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.update
}

// LastError returns the last error message from the server.
func (c *Client) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// RTT returns the last measured ping round trip.
func (c *Client) RTT() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rtt
}

// Done returns a channel that closes with the connection.
func (c *Client) Done() <-chan struct{} { return c.done }

// Close ends the connection. Safe to call multiple times.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.conn.Close(websocket.StatusNormalClosure, "")
	})
	return err
}
