package components

import (
	"strings"

	"github.com/theirongolddev/reefboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar. note is shown on the right,
// in red when isErr is set.
func RenderStatusBar(width int, note string, isErr bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().Foreground(t.TextMuted)
	noteStyle := style
	if isErr {
		noteStyle = lipgloss.NewStyle().Foreground(t.Red)
	}

	left := " [tab]switch  [r]efresh  [q]uit"
	right := ""
	if note != "" {
		right = note + " "
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	return style.Render(left+strings.Repeat(" ", padding)) + noteStyle.Render(right)
}
