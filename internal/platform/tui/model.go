package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/multipong/internal/core"
	"github.com/vovakirdan/multipong/internal/engine"
	"github.com/vovakirdan/multipong/internal/lobby"
	"github.com/vovakirdan/multipong/internal/protocol"
)

// Layout: one HUD row above the arena, status and help rows below.
const (
	hudRows    = 1
	footerRows = 3
	chatLines  = 3
)

// Options configure a GameModel.
type Options struct {
	FPS         int
	RenderDelay time.Duration
	Width       int
	Height      int
}

// GameModel is the match screen: it draws interpolated snapshots, turns
// key presses into input messages and shows lobby state and chat.
type GameModel struct {
	conn Conn
	opts Options

	keys   KeyMap
	help   help.Model
	chat   textinput.Model
	screen *core.Screen
	held   *core.HeldKeys

	width, height int
	lastInput     core.Intent
	frames        int

	lobby      lobby.Update
	cursor     int // index into lobby.Slots for slot selection
	ready      bool
	chatting   bool
	chatLog    []string
	status     string

	quitting     bool
	disconnected bool
}

// NewGameModel creates the match screen for conn.
func NewGameModel(conn Conn, opts Options) GameModel {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	ti := textinput.New()
	ti.Placeholder = "say something"
	ti.CharLimit = 200
	ti.Prompt = "> "

	h := help.New()
	h.ShowAll = false

	m := GameModel{
		conn:   conn,
		opts:   opts,
		keys:   DefaultKeyMap(),
		help:   h,
		chat:   ti,
		held:   core.NewHeldKeys(max(1, opts.FPS/4)),
		width:  opts.Width,
		height: opts.Height,
	}
	m.screen = core.NewScreen(m.arenaSize())
	return m
}

func (m GameModel) arenaSize() (int, int) {
	return max(m.width, 0), max(m.height-hudRows-footerRows, 0)
}

// Init starts the frame loop and the message pump.
func (m GameModel) Init() tea.Cmd {
	return tea.Batch(frameCmd(m.opts.FPS), waitForMessage(m.conn))
}

// Update handles messages.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.chatting {
			return m.handleChatKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.screen.Resize(m.arenaSize())
		m.help.Width = msg.Width
		return m, nil

	case FrameMsg:
		return m.handleFrame()

	case ServerMsg:
		m.handleServerMessage(msg.Message)
		return m, waitForMessage(m.conn)

	case DisconnectedMsg:
		m.disconnected = true
		m.status = "disconnected from server"
		return m, tea.Quit
	}
	return m, nil
}

func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch action := m.keys.Action(msg); action {
	case core.ActionQuit:
		m.quitting = true
		m.conn.Close()
		return m, tea.Quit
	case core.ActionUp, core.ActionDown:
		m.held.Press(action)
	case core.ActionReady:
		m.ready = !m.ready
		m.report(m.conn.SetReady(m.ready))
	case core.ActionSlotNext:
		m.moveCursor(1)
	case core.ActionSlotPrev:
		m.moveCursor(-1)
	case core.ActionConfirm:
		if slot := m.cursorSlot(); slot != "" && slot != m.conn.Slot() {
			m.report(m.conn.ChooseSlot(slot))
		}
	case core.ActionChat:
		m.chatting = true
		m.held.Release()
		return m, m.chat.Focus()
	case core.ActionPing:
		m.report(m.conn.Ping())
	}
	return m, nil
}

func (m GameModel) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if text := strings.TrimSpace(m.chat.Value()); text != "" {
			m.report(m.conn.Chat(text))
		}
		fallthrough
	case tea.KeyEsc:
		m.chatting = false
		m.chat.Reset()
		m.chat.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	return m, cmd
}

func (m GameModel) handleFrame() (tea.Model, tea.Cmd) {
	m.frames++
	intent := m.held.Intent()
	if intent != m.lastInput {
		m.report(m.conn.SendInput(intent.Up, intent.Down))
		m.lastInput = intent
	}
	m.held.Tick()

	// Keep the session alive while idle.
	if m.frames%(2*m.opts.FPS) == 0 {
		m.report(m.conn.Ping())
	}
	return m, frameCmd(m.opts.FPS)
}

func (m *GameModel) handleServerMessage(msg protocol.ServerMessage) {
	switch v := msg.(type) {
	case protocol.Connected:
		m.status = fmt.Sprintf("connected as %s in slot %s", v.PlayerID, v.AssignedSlot)
	case protocol.LobbyUpdate:
		m.lobby = v.Update
		m.cursor = min(m.cursor, max(len(v.Slots)-1, 0))
		if slot, ok := v.SlotOf(m.conn.PlayerID()); ok {
			for _, s := range v.Slots {
				if s.Slot == slot && s.Occupant != nil {
					m.ready = s.Occupant.Ready
				}
			}
		}
	case protocol.StartMatch:
		m.status = fmt.Sprintf("match starts in %ds", v.Countdown)
	case protocol.MatchEnd:
		m.ready = false
		m.status = fmt.Sprintf("match over: %s", formatScore(v.Score))
	case protocol.Chat:
		m.appendChat(fmt.Sprintf("%s: %s", v.PlayerID, v.Message))
	case protocol.Error:
		m.status = "error: " + v.Message
	case protocol.Pong:
		if rtt := m.conn.RTT(); rtt > 0 {
			m.status = fmt.Sprintf("ping %dms", rtt.Milliseconds())
		}
	}
}

func (m *GameModel) appendChat(line string) {
	m.chatLog = append(m.chatLog, line)
	if len(m.chatLog) > chatLines {
		m.chatLog = m.chatLog[len(m.chatLog)-chatLines:]
	}
}

func (m *GameModel) report(err error) {
	if err != nil {
		m.status = "error: " + err.Error()
	}
}

func (m *GameModel) moveCursor(delta int) {
	n := len(m.lobby.Slots)
	if n == 0 {
		return
	}
	m.cursor = (m.cursor + delta + n) % n
}

func (m GameModel) cursorSlot() string {
	if m.cursor < 0 || m.cursor >= len(m.lobby.Slots) {
		return ""
	}
	return m.lobby.Slots[m.cursor].Slot
}

func formatScore(score map[string]int) string {
	return fmt.Sprintf("A %d : %d B", score["A"], score["B"])
}

var (
	hudStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cursorStyle = lipgloss.NewStyle().Reverse(true)
)

// View renders the current state to a string for display.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}

	snap, ok := m.conn.Frame(m.opts.RenderDelay)
	var b strings.Builder

	if ok {
		b.WriteString(hudStyle.Render(ScoreLine(snap)))
		b.WriteString("   ")
		b.WriteString(statusStyle.Render("slot " + m.conn.Slot()))
	} else {
		b.WriteString(hudStyle.Render("waiting for server..."))
	}
	b.WriteString("\n")

	if ok {
		DrawArena(m.screen, snap, m.conn.Slot())
	} else {
		m.screen.Clear()
	}
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")

	b.WriteString(m.lobbyLine(snap, ok))
	b.WriteString("\n")
	switch {
	case m.chatting:
		b.WriteString(m.chat.View())
	case len(m.chatLog) > 0:
		b.WriteString(statusStyle.Render(m.chatLog[len(m.chatLog)-1]))
	default:
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// lobbyLine lists the slots with their occupants, marking the cursor.
func (m GameModel) lobbyLine(snap engine.Snapshot, ok bool) string {
	if len(m.lobby.Slots) == 0 {
		return statusStyle.Render(m.status)
	}
	parts := make([]string, 0, len(m.lobby.Slots))
	for i, s := range m.lobby.Slots {
		label := s.Slot + ":-"
		if occ := s.Occupant; occ != nil {
			name := occ.Nickname
			if name == "" {
				name = occ.PlayerID
			}
			if occ.IsAI {
				name = "bot"
			}
			mark := ""
			if occ.Ready {
				mark = "✓"
			}
			label = fmt.Sprintf("%s:%s%s", s.Slot, name, mark)
		}
		if i == m.cursor {
			label = cursorStyle.Render(label)
		}
		parts = append(parts, label)
	}
	line := strings.Join(parts, " ")
	if ok && !snap.IsRunning {
		ready := "not ready"
		if m.ready {
			ready = "ready"
		}
		line += statusStyle.Render("  [" + ready + "]")
	}
	return line
}

// Quitting reports whether the user asked to leave.
func (m GameModel) Quitting() bool { return m.quitting }

// Disconnected reports whether the server ended the connection.
func (m GameModel) Disconnected() bool { return m.disconnected }

// Run starts a Bubble Tea program for conn and blocks until it exits.
func Run(conn Conn, opts Options) error {
	p := tea.NewProgram(NewGameModel(conn, opts), tea.WithAltScreen())
	_, err := p.Run()
	conn.Close()
	return err
}
