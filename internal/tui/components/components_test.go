package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/theirongolddev/reefboard/internal/tui/theme"
)

func init() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToWidth(t *testing.T) {
	for _, tc := range []struct{ width, n int }{{80, 3}, {81, 4}, {7, 7}, {100, 1}} {
		widths := LayoutRow(tc.width, tc.n)
		sum := 0
		for _, w := range widths {
			sum += w
		}
		if sum != tc.width {
			t.Errorf("LayoutRow(%d, %d) sums to %d", tc.width, tc.n, sum)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Error("LayoutRow with n=0 should be nil")
	}
}

func TestCardRowMatchesTallestCard(t *testing.T) {
	theme.SetActive("flexoki-dark")

	short := ContentCard("Short", "one", 22)
	tall := ContentCard("Tall", "1\n2\n3\n4", 22)
	joined := CardRow([]string{tall, short})

	if got, want := lipgloss.Height(joined), lipgloss.Height(tall); got != want {
		t.Errorf("joined height = %d, want %d", got, want)
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Cost", Value: "$1.20"},
		{Label: "Tokens", Value: "12.5K", Hint: "3 models"},
	}, 60)
	if got := lipgloss.Width(row); got != 60 {
		t.Errorf("row width = %d, want 60", got)
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey('m'); got != 1 {
		t.Errorf("TabIdxByKey('m') = %d, want 1", got)
	}
	if got := TabIdxByKey('z'); got != -1 {
		t.Errorf("TabIdxByKey('z') = %d, want -1", got)
	}
	bar := RenderTabBar(0, 60)
	if !strings.Contains(bar, "Agents") || !strings.Contains(bar, "essions") {
		t.Errorf("tab bar missing names: %q", bar)
	}
}

func TestShareBarClamps(t *testing.T) {
	bar := ShareBar("claude-sonnet-4", 1.7, 12, 10)
	if !strings.Contains(bar, "100%") {
		t.Errorf("ShareBar should clamp to 100%%: %q", bar)
	}
	if !strings.Contains(ShareBar("x", -1, 4, 10), "0%") {
		t.Error("ShareBar should clamp negatives to 0%")
	}
}
