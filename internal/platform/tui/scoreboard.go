package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/multipong/internal/storage"
)

// Scoreboard layout constants
const (
	maxRows       = 100 // Max rows to load per view
	scoreboardTop = 8   // rows taken by title, tabs, help and margins
)

// StatsSource is the part of the statistics store the scoreboard reads.
type StatsSource interface {
	Leaderboard(limit int) ([]storage.PlayerSummary, error)
	Matches(limit int) ([]storage.Match, error)
}

// scoreboardView selects what the table shows.
type scoreboardView int

const (
	viewLeaderboard scoreboardView = iota
	viewMatches
)

var scoreboardTitles = []string{"Leaderboard", "Recent matches"}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextView key.Binding
	Refresh  key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextView, k.Refresh, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.NextView, k.Refresh, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextView: key.NewBinding(
			key.WithKeys("tab", "left", "right"),
			key.WithHelp("tab", "switch view"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel is the Bubble Tea model for browsing match statistics.
type ScoreboardModel struct {
	source   StatsSource
	view     scoreboardView
	table    table.Model
	help     help.Model
	keys     ScoreboardKeyMap
	width    int
	height   int
	rows     int
	err      error
	quitting bool
}

// NewScoreboardModel creates a new scoreboard model.
func NewScoreboardModel(source StatsSource, width, height int) ScoreboardModel {
	h := help.New()
	h.ShowAll = false

	m := ScoreboardModel{
		source: source,
		keys:   DefaultScoreboardKeyMap(),
		help:   h,
		width:  width,
		height: height,
	}
	m.load()
	return m
}

func (m ScoreboardModel) columns() []table.Column {
	if m.view == viewMatches {
		return []table.Column{
			{Title: "#", Width: 6},
			{Title: "Date", Width: 14},
			{Title: "A", Width: 4},
			{Title: "B", Width: 4},
			{Title: "Duration", Width: 10},
		}
	}
	return []table.Column{
		{Title: "Rank", Width: 6},
		{Title: "Player", Width: 18},
		{Title: "Team", Width: 5},
		{Title: "Matches", Width: 8},
		{Title: "Goals", Width: 6},
		{Title: "Conceded", Width: 9},
		{Title: "Hits", Width: 6},
	}
}

// createTable creates a new table with the current view's columns.
func (m *ScoreboardModel) createTable(rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(m.columns()),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-scoreboardTop, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// load queries the source for the current view and rebuilds the table.
func (m *ScoreboardModel) load() {
	var rows []table.Row
	m.err = nil

	switch m.view {
	case viewLeaderboard:
		entries, err := m.source.Leaderboard(maxRows)
		m.err = err
		for i, e := range entries {
			rows = append(rows, table.Row{
				fmt.Sprintf("#%d", i+1),
				e.Name,
				e.Team,
				fmt.Sprintf("%d", e.MatchesPlayed),
				fmt.Sprintf("%d", e.TotalGoalsScored),
				fmt.Sprintf("%d", e.TotalGoalsReceived),
				fmt.Sprintf("%d", e.TotalHits),
			})
		}
	case viewMatches:
		matches, err := m.source.Matches(maxRows)
		m.err = err
		for _, match := range matches {
			rows = append(rows, table.Row{
				fmt.Sprintf("%d", match.ID),
				match.CreatedAt.Format("Jan 02 15:04"),
				fmt.Sprintf("%d", match.TeamLeftScore),
				fmt.Sprintf("%d", match.TeamRightScore),
				fmt.Sprintf("%.0fs", match.DurationSeconds),
			})
		}
	}

	m.rows = len(rows)
	m.table = m.createTable(rows)
}

// Init initializes the scoreboard.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextView):
			m.view = (m.view + 1) % scoreboardView(len(scoreboardTitles))
			m.load()
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.load()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(m.height-scoreboardTop, 3))
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)
	b.WriteString(titleStyle.Render("MULTIPONG STATS"))
	b.WriteString("\n\n")

	tabStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)
	tabs := make([]string, len(scoreboardTitles))
	for i, title := range scoreboardTitles {
		if scoreboardView(i) == m.view {
			tabs[i] = activeTabStyle.Render(title)
		} else {
			tabs[i] = tabStyle.Render(title)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(m.renderTableContent()))

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the table or a placeholder.
func (m ScoreboardModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)
	if m.err != nil {
		return emptyStyle.Render("Cannot load statistics:\n" + m.err.Error())
	}
	if m.rows == 0 {
		return emptyStyle.Render("No matches recorded yet.\nFinish a match to fill the board!")
	}
	return m.table.View()
}

// RunScoreboard runs the scoreboard screen until the user quits.
func RunScoreboard(source StatsSource, width, height int) error {
	p := tea.NewProgram(
		NewScoreboardModel(source, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
