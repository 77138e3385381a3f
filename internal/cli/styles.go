package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette - keeping it minimal and accessible.
var (
	colorPrimary   = lipgloss.Color("39")  // Blue
	colorSecondary = lipgloss.Color("245") // Gray
	colorMuted     = lipgloss.Color("240") // Dark gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Padding(0, 1)

	borderStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	plainStyle = lipgloss.NewStyle().
			PaddingRight(2)
)

// styledOutput reports whether stdout is a terminal that wants colors.
// NO_COLOR and CI disable styling.
func styledOutput() bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("CI") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// terminalWidth returns the width of stdout, or 0 when unknown.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return width
}
