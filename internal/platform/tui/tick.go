// Package tui provides the Bubble Tea terminal client for multipong and
// the SSH server that plays it inside the game server process.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/multipong/internal/protocol"
)

// FrameMsg is sent to trigger a redraw and input update.
type FrameMsg time.Time

// ServerMsg wraps a non-snapshot message from the server.
type ServerMsg struct {
	Message protocol.ServerMessage
}

// DisconnectedMsg reports that the connection has ended.
type DisconnectedMsg struct{}

// frameCmd returns a Bubble Tea command that sends frame messages at the specified rate.
func frameCmd(fps int) tea.Cmd {
	interval := time.Second / time.Duration(max(1, fps))
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// waitForMessage blocks until the next server message or disconnect.
func waitForMessage(conn Conn) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-conn.Messages():
			return ServerMsg{Message: msg}
		case <-conn.Done():
			return DisconnectedMsg{}
		}
	}
}
