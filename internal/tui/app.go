// Package tui provides the interactive Bubble Tea dashboard for reefboard.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/reefboard/internal/model"
	"github.com/theirongolddev/reefboard/internal/tui/components"
	"github.com/theirongolddev/reefboard/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Source supplies the views the dashboard renders.
type Source interface {
	Status(ctx context.Context) (model.StatusReport, error)
	Activity(ctx context.Context) (model.ActivityReport, error)
}

// Invalidator is implemented by sources that cache; a manual refresh clears them.
type Invalidator interface {
	Invalidate()
}

// statusMsg carries a finished status fetch.
type statusMsg struct {
	report model.StatusReport
	err    error
}

// activityMsg carries a finished activity fetch.
type activityMsg struct {
	report model.ActivityReport
	err    error
}

type refreshTickMsg struct{}

const (
	minTerminalWidth = 60
	maxContentWidth  = 160
	minContentHeight = 5

	fetchTimeout = 30 * time.Second
)

// App is the root Bubble Tea model.
type App struct {
	src             Source
	refreshInterval time.Duration
	now             func() time.Time

	status      model.StatusReport
	activity    model.ActivityReport
	loaded      bool
	refreshing  int
	lastRefresh time.Time
	lastErr     error
	batchErr    error

	width     int
	height    int
	activeTab int
	spinner   spinner.Model
}

// NewApp creates a dashboard over src that refreshes every interval.
// A non-positive interval disables automatic refresh.
func NewApp(src Source, interval time.Duration) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	return App{
		src:             src,
		refreshInterval: interval,
		now:             time.Now,
		spinner:         sp,
		refreshing:      2,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.fetchAll(), a.scheduleRefresh())
}

func (a App) fetchAll() tea.Cmd {
	src := a.src
	return tea.Batch(
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
			defer cancel()
			r, err := src.Status(ctx)
			return statusMsg{report: r, err: err}
		},
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
			defer cancel()
			r, err := src.Activity(ctx)
			return activityMsg{report: r, err: err}
		},
	)
}

func (a App) scheduleRefresh() tea.Cmd {
	if a.refreshInterval <= 0 {
		return nil
	}
	return tea.Tick(a.refreshInterval, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

func (a *App) startRefresh() tea.Cmd {
	a.refreshing = 2
	a.batchErr = nil
	return a.fetchAll()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case statusMsg:
		a.finishFetch(msg.err)
		if msg.err == nil {
			a.status = msg.report
		}
		return a, nil

	case activityMsg:
		a.finishFetch(msg.err)
		if msg.err == nil {
			a.activity = msg.report
		}
		return a, nil

	case refreshTickMsg:
		if a.refreshing > 0 {
			return a, a.scheduleRefresh()
		}
		return a, tea.Batch(a.startRefresh(), a.scheduleRefresh())

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.updateKey(msg)
	}
	return a, nil
}

func (a *App) finishFetch(err error) {
	if err != nil {
		a.batchErr = err
	}
	if a.refreshing > 0 {
		a.refreshing--
	}
	if a.refreshing == 0 {
		a.loaded = true
		a.lastRefresh = a.now()
		a.lastErr = a.batchErr
		a.batchErr = nil
	}
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		return a, tea.Quit
	case "r":
		if a.refreshing > 0 {
			return a, nil
		}
		if inv, ok := a.src.(Invalidator); ok {
			inv.Invalidate()
		}
		return a, a.startRefresh()
	case "tab", "right", "l":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "shift+tab", "left", "h":
		a.activeTab = (a.activeTab + len(components.Tabs) - 1) % len(components.Tabs)
		return a, nil
	}
	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  reefboard needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}
	if !a.loaded {
		return a.viewLoading()
	}
	return a.viewMain()
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Accent).
		Padding(1, 3)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	body := logoStyle.Render("◈ reefboard") + subtitleStyle.Render(" · agent ops") + "\n\n" +
		a.spinner.View() + subtitleStyle.Render(" Fetching agents and sessions...")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body))
}

func (a App) viewMain() string {
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, a.width)
	statusBar := components.RenderStatusBar(a.width, a.statusNote(), a.lastErr != nil)

	contentH := a.height - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case 0:
		content = a.renderAgentsTab(cw)
	case 1:
		content = a.renderModelsTab(cw)
	case 2:
		content = a.renderSessionsTab(cw, contentH)
	}
	content = padHeight(truncateHeight(content, contentH), contentH)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (a App) statusNote() string {
	switch {
	case a.refreshing > 0:
		return a.spinner.View() + " refreshing"
	case a.lastErr != nil:
		return "error: " + truncStr(a.lastErr.Error(), 60)
	case !a.lastRefresh.IsZero():
		return "updated " + a.lastRefresh.Format("15:04:05")
	}
	return ""
}

func truncStr(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}
