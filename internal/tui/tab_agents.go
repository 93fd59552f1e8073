package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/reefboard/internal/cli"
	"github.com/theirongolddev/reefboard/internal/tui/components"
	"github.com/theirongolddev/reefboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderAgentsTab(cw int) string {
	t := theme.Active
	s := a.status

	active := 0
	sessions := 0
	for _, ag := range s.Agents {
		if ag.SessionsCount > 0 {
			active++
		}
		sessions += ag.SessionsCount
	}

	cards := components.MetricCardRow([]components.Metric{
		{Label: "Total Cost", Value: cli.FormatCost(s.UsageSummary.TotalCost)},
		{Label: "Tokens", Value: cli.FormatTokens(s.UsageSummary.TotalTokens),
			Hint: fmt.Sprintf("%s in / %s out",
				cli.FormatTokens(s.UsageSummary.TotalPrompts), cli.FormatTokens(s.UsageSummary.TotalCompletions))},
		{Label: "Agents", Value: cli.FormatNumber(int64(len(s.Agents))), Hint: fmt.Sprintf("%d with sessions", active)},
		{Label: "Sessions", Value: cli.FormatNumber(int64(sessions))},
	}, cw)

	headStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	costStyle := lipgloss.NewStyle().Foreground(t.Green)

	inner := components.CardInnerWidth(cw)
	nameW := inner - 48
	if nameW < 12 {
		nameW = 12
	}

	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("%-*s %-12s %-10s %8s %10s", nameW, "Agent", "Role", "Status", "Sessions", "Cost")))
	b.WriteString("\n")
	if len(s.Agents) == 0 {
		b.WriteString(dimStyle.Render("No agents reported."))
	}
	for i, ag := range s.Agents {
		if i > 0 {
			b.WriteString("\n")
		}
		name := ag.Name
		if name == "" {
			name = ag.ID
		}
		b.WriteString(rowStyle.Render(fmt.Sprintf("%-*s %-12s %-10s %8d ",
			nameW, truncStr(name, nameW), truncStr(ag.Role, 12), truncStr(ag.Status, 10), ag.SessionsCount)))
		b.WriteString(costStyle.Render(fmt.Sprintf("%10s", cli.FormatCost(ag.Cost))))
	}

	return lipgloss.JoinVertical(lipgloss.Left, cards, components.ContentCard("Agents", b.String(), cw))
}
