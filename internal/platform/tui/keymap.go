package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/multipong/internal/core"
)

// KeyMap defines the key bindings of the match screen.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Ready    key.Binding
	SlotNext key.Binding
	SlotPrev key.Binding
	Confirm  key.Binding
	Chat     key.Binding
	Ping     key.Binding
	Back     key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Ready, k.SlotNext, k.Chat, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Ready, k.SlotNext, k.SlotPrev, k.Confirm},
		{k.Chat, k.Ping, k.Back, k.Quit},
	}
}

// DefaultKeyMap returns default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "w"),
			key.WithHelp("↑/w", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "s"),
			key.WithHelp("↓/s", "down"),
		),
		Ready: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "ready"),
		),
		SlotNext: key.NewBinding(
			key.WithKeys("tab", "right"),
			key.WithHelp("tab", "next slot"),
		),
		SlotPrev: key.NewBinding(
			key.WithKeys("shift+tab", "left"),
			key.WithHelp("S-tab", "prev slot"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "take slot"),
		),
		Chat: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "chat"),
		),
		Ping: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "ping"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Action translates a key message to a client action.
func (k KeyMap) Action(msg tea.KeyMsg) core.Action {
	switch {
	case key.Matches(msg, k.Quit):
		return core.ActionQuit
	case key.Matches(msg, k.Up):
		return core.ActionUp
	case key.Matches(msg, k.Down):
		return core.ActionDown
	case key.Matches(msg, k.Ready):
		return core.ActionReady
	case key.Matches(msg, k.SlotNext):
		return core.ActionSlotNext
	case key.Matches(msg, k.SlotPrev):
		return core.ActionSlotPrev
	case key.Matches(msg, k.Confirm):
		return core.ActionConfirm
	case key.Matches(msg, k.Chat):
		return core.ActionChat
	case key.Matches(msg, k.Ping):
		return core.ActionPing
	case key.Matches(msg, k.Back):
		return core.ActionBack
	}
	return core.ActionNone
}
