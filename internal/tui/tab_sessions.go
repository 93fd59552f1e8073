package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/reefboard/internal/cli"
	"github.com/theirongolddev/reefboard/internal/tui/components"
	"github.com/theirongolddev/reefboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// cardChrome is the border and title lines around the sessions list.
const cardChrome = 4

func (a App) renderSessionsTab(cw, h int) string {
	t := theme.Active
	sessions := a.activity.Sessions

	headStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	ageStyle := lipgloss.NewStyle().Foreground(t.Accent)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	rows := h - cardChrome
	if rows < 1 {
		rows = 1
	}

	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("%-14s %-16s %-22s %10s  %s", "Agent", "Session", "Model", "Tokens", "Last active")))
	if len(sessions) == 0 {
		b.WriteString("\n" + dimStyle.Render("No recent sessions."))
	}
	for i, s := range sessions {
		if i >= rows {
			b.WriteString("\n" + dimStyle.Render(fmt.Sprintf("… %d more", len(sessions)-rows)))
			break
		}
		model := s.Model
		if model == "" {
			model = "-"
		}
		b.WriteString("\n")
		b.WriteString(rowStyle.Render(fmt.Sprintf("%-14s %-16s %-22s %10s  ",
			truncStr(s.AgentName, 14), truncStr(s.TruncatedKey, 16), truncStr(model, 22), cli.FormatTokens(s.Messages))))
		b.WriteString(ageStyle.Render(s.LastActivity))
	}

	title := fmt.Sprintf("Recent sessions · %d", a.activity.Count)
	return components.ContentCard(title, b.String(), cw)
}
