package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/reefboard/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := flagConfig
	if path == "" {
		path = config.ConfigPath()
	}
	fmt.Printf("  Config file: %s\n", path)
	if config.Exists(path) {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:         %s\n", cfg.Server.Addr)
	fmt.Printf("    Allowed origins: %s\n", orNone(strings.Join(cfg.Server.AllowedOrigins, ", ")))
	fmt.Println()

	fmt.Println("  [Sources]")
	fmt.Printf("    openclaw binary: %s\n", cfg.Sources.OpenClawBin)
	fmt.Printf("    Session source:  %s\n", cfg.Sources.SessionSource)
	if cfg.Sources.SessionSource == "files" {
		fmt.Printf("    Agents dir:      %s\n", cfg.Sources.AgentsDir)
	}
	fmt.Printf("    Pricing file:    %s\n", cfg.Sources.PricingFile)
	fmt.Printf("    gog binary:      %s\n", cfg.Sources.GogBin)
	fmt.Printf("    gog account:     %s\n", orNone(cfg.Sources.GogAccount))
	fmt.Printf("    Polymarket API:  %s\n", cfg.Sources.PolymarketURL)
	fmt.Printf("    Command timeout: %ds\n", cfg.Sources.CommandTimeout)
	fmt.Println()

	fmt.Println("  [Data]")
	fmt.Printf("    Directory: %s\n", cfg.Data.Dir)
	fmt.Println()

	fmt.Println("  [Cache]")
	fmt.Printf("    Status:   %ds\n", cfg.Cache.StatusSec)
	fmt.Printf("    Activity: %ds\n", cfg.Cache.ActivitySec)
	fmt.Printf("    Brief:    %ds\n", cfg.Cache.BriefSec)
	fmt.Printf("    Markets:  %ds\n", cfg.Cache.MarketsSec)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `reefboard setup` to reconfigure.")
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "not set"
	}
	return s
}
