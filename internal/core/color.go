package core

// Color represents a foreground color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Predefined colors for game elements.
const (
	ColorDefault Color = iota
	ColorTeamLeft
	ColorTeamRight
	ColorBall
	ColorWall
	ColorGoal
	ColorSelf
	ColorText
	ColorDim
	ColorWarn
)

// TeamColor returns the color used for a team name ("A" or "B").
func TeamColor(team string) Color {
	switch team {
	case "A":
		return ColorTeamLeft
	case "B":
		return ColorTeamRight
	}
	return ColorDefault
}
