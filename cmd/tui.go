package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/reefboard/internal/config"
	"github.com/theirongolddev/reefboard/internal/tui"
	"github.com/theirongolddev/reefboard/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var flagTUIRefresh time.Duration

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().DurationVar(&flagTUIRefresh, "refresh", 0, "Auto-refresh interval; 0 disables (default: the status cache window)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor so background styling always produces ANSI codes.
	lipgloss.SetColorProfile(termenv.TrueColor)

	dash, err := newDashboard(cfg, nil)
	if err != nil {
		return err
	}

	interval := config.Seconds(cfg.Cache.StatusSec, time.Minute)
	if cmd.Flags().Changed("refresh") {
		interval = flagTUIRefresh
	}

	p := tea.NewProgram(tui.NewApp(dash, interval), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
