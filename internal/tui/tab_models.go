package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/reefboard/internal/cli"
	"github.com/theirongolddev/reefboard/internal/tui/components"
	"github.com/theirongolddev/reefboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderModelsTab(cw int) string {
	t := theme.Active
	sum := a.status.UsageSummary

	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	inner := components.CardInnerWidth(cw)
	labelW := 28
	barW := inner - labelW - 32
	if barW < 8 {
		barW = 8
	}

	var b strings.Builder
	if len(sum.ModelBreakdown) == 0 {
		b.WriteString(dimStyle.Render("No model usage yet."))
	}
	for i, m := range sum.ModelBreakdown {
		if i > 0 {
			b.WriteString("\n")
		}
		share := 0.0
		if sum.TotalCost > 0 {
			share = m.Cost / sum.TotalCost
		}
		b.WriteString(components.ShareBar(m.Model, share, labelW, barW))
		b.WriteString(valueStyle.Render(fmt.Sprintf("  %10s  %8s tok", cli.FormatCost(m.Cost), cli.FormatTokens(m.TotalTokens))))
	}

	title := fmt.Sprintf("Cost by model · %s total", cli.FormatCost(sum.TotalCost))
	return components.ContentCard(title, b.String(), cw)
}
