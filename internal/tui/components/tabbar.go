package components

import (
	"strings"

	"github.com/theirongolddev/reefboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab is one entry in the tab bar. The shortcut is the first letter of Name.
type Tab struct {
	Name string
	Key  rune
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Agents", Key: 'a'},
	{Name: "Models", Key: 'm'},
	{Name: "Sessions", Key: 's'},
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	inactiveStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	dimKeyStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts = append(parts, activeStyle.Render(tab.Name))
			continue
		}
		parts = append(parts, dimKeyStyle.Render("[")+keyStyle.Render(tab.Name[:1])+dimKeyStyle.Render("]")+
			inactiveStyle.Render(tab.Name[1:]))
	}

	row := " " + strings.Join(parts, "  ")
	if w := lipgloss.Width(row); w < width {
		row += strings.Repeat(" ", width-w)
	}
	return row
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
