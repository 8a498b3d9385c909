// Package ws carries the JSON protocol over websockets: it accepts
// connections, binds each one to a player session and pumps messages
// in both directions.
package ws

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"

	"github.com/vovakirdan/multipong/internal/multiplayer"
)

// WriteTimeout bounds a single websocket write.
const WriteTimeout = 5 * time.Second

// Conn pumps one websocket to and from a session.
type Conn struct {
	ws      *websocket.Conn
	session *multiplayer.Session
	ip      string
	limiter *IPRateLimiter
	logger  *log.Logger

	done chan struct{}
	once sync.Once
}

// NewConn binds a websocket to a session.
func NewConn(ws *websocket.Conn, session *multiplayer.Session, ip string, limiter *IPRateLimiter, logger *log.Logger) *Conn {
	if logger == nil {
		logger = log.Default()
	}
	return &Conn{
		ws:      ws,
		session: session,
		ip:      ip,
		limiter: limiter,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// ReadLoop hands every inbound message to handle until the socket fails
// or the connection is closed. Messages over the IP's rate are dropped.
func (c *Conn) ReadLoop(ctx context.Context, handle func(data []byte)) {
	defer c.Close()
	for {
		_, data, err := c.ws.Read(ctx)
		if err != nil {
			c.logger.Debug("read ended", "player", c.session.ID(), "err", err)
			return
		}
		if c.limiter != nil && !c.limiter.MessageAllowed(c.ip) {
			continue
		}
		handle(data)
	}
}

// WriteLoop drains the session's outbound queue to the socket. It returns
// when the session or the connection ends.
func (c *Conn) WriteLoop(ctx context.Context) {
	defer c.Close()
	for {
		select {
		case data := <-c.session.Outbound():
			wctx, cancel := context.WithTimeout(ctx, WriteTimeout)
			err := c.ws.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				c.logger.Debug("write failed", "player", c.session.ID(), "err", err)
				c.session.Close()
				return
			}
		case <-c.session.Done():
			return
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Close closes the websocket. Safe to call multiple times.
func (c *Conn) Close() {
	c.once.Do(func() {
		close(c.done)
		c.ws.Close(websocket.StatusNormalClosure, "")
	})
}

// Done returns a channel that closes with the connection.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}
