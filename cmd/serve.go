package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/reefboard/internal/metrics"
	"github.com/theirongolddev/reefboard/internal/server"
)

var (
	flagServeAddr  string
	flagServeDebug bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().BoolVar(&flagServeDebug, "debug", false, "Run the router in debug mode")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagServeAddr != "" {
		cfg.Server.Addr = flagServeAddr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	m := metrics.New()
	dash, err := newDashboard(cfg, m)
	if err != nil {
		return err
	}
	stores, err := openDataStores(ctx, cfg.Data.Dir)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(); err != nil {
			slog.Warn("closing bet store", "err", err)
		}
	}()

	srv := server.New(server.Config{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Debug:          flagServeDebug,
	}, server.Deps{
		Views:     dash,
		ArbLedger: stores.arbLedger,
		SimLedger: stores.simLedger,
		Tasks:     stores.tasks,
		Bets:      stores.bets,
		Metrics:   m,
	})

	fmt.Printf("  reefboard listening on http://%s\n", cfg.Server.Addr)
	fmt.Printf("  Data directory: %s\n", cfg.Data.Dir)

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
