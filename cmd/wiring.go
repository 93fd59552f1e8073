package cmd

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/theirongolddev/reefboard/internal/config"
	"github.com/theirongolddev/reefboard/internal/dashboard"
	"github.com/theirongolddev/reefboard/internal/ledger"
	"github.com/theirongolddev/reefboard/internal/metrics"
	"github.com/theirongolddev/reefboard/internal/polymarket"
	"github.com/theirongolddev/reefboard/internal/source"
	"github.com/theirongolddev/reefboard/internal/store"
	"github.com/theirongolddev/reefboard/internal/tasks"
)

// Data file names under the data dir.
const (
	arbLedgerFile = "arb_ledger.jsonl"
	simLedgerFile = "simulated_portfolio.jsonl"
	tasksFile     = "tasks.json"
	betsDBFile    = "arb.db"
)

// newDashboard builds the dashboard service from cfg.
func newDashboard(cfg config.Config, m *metrics.Metrics) (*dashboard.Service, error) {
	runner := source.NewExecRunner(config.Seconds(cfg.Sources.CommandTimeout, source.DefaultTimeout))
	oc := source.NewOpenClaw(runner, cfg.Sources.OpenClawBin)

	var sessions source.SessionLister
	switch cfg.Sources.SessionSource {
	case "", "cli":
		sessions = oc
	case "files":
		sessions = source.NewSessionFiles(cfg.Sources.AgentsDir)
	default:
		return nil, fmt.Errorf("unknown session source %q (want cli or files)", cfg.Sources.SessionSource)
	}

	markets := polymarket.NewClient(cfg.Sources.PolymarketURL, &http.Client{Timeout: 15 * time.Second})

	return dashboard.New(dashboard.Options{
		Agents:      oc,
		Sessions:    sessions,
		Brief:       source.NewGog(runner, cfg.Sources.GogBin, cfg.Sources.GogAccount),
		Markets:     markets,
		PricingFile: cfg.Sources.PricingFile,
		StatusTTL:   config.Seconds(cfg.Cache.StatusSec, dashboard.DefaultStatusTTL),
		ActivityTTL: config.Seconds(cfg.Cache.ActivitySec, dashboard.DefaultActivityTTL),
		BriefTTL:    config.Seconds(cfg.Cache.BriefSec, dashboard.DefaultBriefTTL),
		MarketsTTL:  config.Seconds(cfg.Cache.MarketsSec, dashboard.DefaultMarketsTTL),
		Metrics:     m,
	}), nil
}

// dataStores are the writable stores under the data dir.
type dataStores struct {
	arbLedger *ledger.File
	simLedger *ledger.File
	tasks     *tasks.Store
	bets      *store.DB
}

func openDataStores(ctx context.Context, dir string) (*dataStores, error) {
	db, err := store.Open(ctx, filepath.Join(dir, betsDBFile))
	if err != nil {
		return nil, fmt.Errorf("opening bet store: %w", err)
	}
	return &dataStores{
		arbLedger: ledger.Open(filepath.Join(dir, arbLedgerFile)),
		simLedger: ledger.Open(filepath.Join(dir, simLedgerFile)),
		tasks:     tasks.Open(filepath.Join(dir, tasksFile)),
		bets:      db,
	}, nil
}

func (d *dataStores) Close() error {
	return d.bets.Close()
}
