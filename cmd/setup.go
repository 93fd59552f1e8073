package cmd

import (
	"errors"
	"fmt"
	"net"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/reefboard/internal/config"
	"github.com/theirongolddev/reefboard/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, _ := config.Load(flagConfig)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Description("Where `reefboard serve` binds the HTTP API.").
				Value(&cfg.Server.Addr).
				Validate(validateAddr),
			huh.NewInput().
				Title("openclaw binary").
				Value(&cfg.Sources.OpenClawBin).
				Validate(validateBinary),
			huh.NewSelect[string]().
				Title("Session source").
				Description("Use the openclaw CLI or read session transcripts from disk.").
				Options(
					huh.NewOption("openclaw CLI", "cli"),
					huh.NewOption("Transcript files", "files"),
				).
				Value(&cfg.Sources.SessionSource),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("gog binary").
				Value(&cfg.Sources.GogBin),
			huh.NewInput().
				Title("gog account").
				Description("Leave blank to use gog's default account.").
				Value(&cfg.Sources.GogAccount),
			huh.NewInput().
				Title("Data directory").
				Description("Ledgers, tasks and the bet database live here.").
				Value(&cfg.Data.Dir),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&cfg.Appearance.Theme),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	path := flagConfig
	if path == "" {
		path = config.ConfigPath()
	}
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", path)
	fmt.Println("  Run `reefboard setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

func validateAddr(s string) error {
	if _, _, err := net.SplitHostPort(s); err != nil {
		return errors.New("expected host:port")
	}
	return nil
}

func validateBinary(s string) error {
	if s == "" {
		return errors.New("required")
	}
	return nil
}
