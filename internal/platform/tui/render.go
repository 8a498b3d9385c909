package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/multipong/internal/core"
	"github.com/vovakirdan/multipong/internal/engine"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:   lipgloss.NewStyle(),
	core.ColorTeamLeft:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorTeamRight: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBall:      lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
	core.ColorWall:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	core.ColorGoal:      lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorSelf:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	core.ColorText:      lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorDim:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	core.ColorWarn:      lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// Glyphs used on the arena.
const (
	glyphBall   = 'O'
	glyphPaddle = '█'
	glyphGoal   = '┃'
)

// DrawArena draws the playfield of snap into the whole screen. The paddle
// in slot self is highlighted.
func DrawArena(s *core.Screen, snap engine.Snapshot, self string) {
	s.Clear()
	if s.Width() < 4 || s.Height() < 4 || snap.Arena.Width <= 0 || snap.Arena.Height <= 0 {
		return
	}

	s.DrawBox(0, 0, s.Width(), s.Height(), core.ColorWall)
	vp := core.NewViewport(float64(snap.Arena.Width), float64(snap.Arena.Height), 1, 1, s.Width()-2, s.Height()-2)

	// Center line.
	midX, _ := vp.ToCell(float64(snap.Arena.Width)/2, 0)
	for y := 1; y < s.Height()-1; y += 2 {
		s.Set(midX, y, '┊', core.ColorDim)
	}

	drawGoal(s, vp, snap.GoalLeft, 0)
	drawGoal(s, vp, snap.GoalRight, s.Width()-1)

	for _, team := range []engine.TeamState{snap.TeamLeft, snap.TeamRight} {
		color := core.TeamColor(team.Name)
		for _, p := range team.Paddles {
			c := color
			if p.PlayerID == self {
				c = core.ColorSelf
			}
			drawPaddle(s, vp, p, c)
		}
	}

	bx, by := vp.ToCell(snap.Ball.X, snap.Ball.Y)
	s.Set(bx, by, glyphBall, core.ColorBall)
}

func drawGoal(s *core.Screen, vp core.Viewport, g engine.GoalZone, x int) {
	_, top := vp.ToCell(0, g.Top)
	_, bottom := vp.ToCell(0, g.Bottom)
	s.DrawVLine(x, top, bottom-top+1, glyphGoal, core.ColorGoal)
}

func drawPaddle(s *core.Screen, vp core.Viewport, p engine.PaddleState, c core.Color) {
	x, y := vp.ToCell(p.X+p.Width/2, p.Y)
	s.DrawVLine(x, y, vp.ScaleH(p.Height), glyphPaddle, c)
}

// ScoreLine formats the HUD line of a snapshot.
func ScoreLine(snap engine.Snapshot) string {
	clock := "∞"
	if snap.TimeLeft > 0 {
		secs := int(snap.TimeLeft + 0.5)
		clock = fmt.Sprintf("%d:%02d", secs/60, secs%60)
	}
	line := fmt.Sprintf("%s %d : %d %s   %s",
		snap.TeamLeft.Name, snap.Score[snap.TeamLeft.Name],
		snap.Score[snap.TeamRight.Name], snap.TeamRight.Name, clock)
	if snap.GoalPauseRemaining > 0 {
		line += "   GOAL!"
	}
	return line
}
