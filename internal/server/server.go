// Package server exposes the dashboard, ledgers, tasks and bet store over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/theirongolddev/reefboard/internal/ledger"
	"github.com/theirongolddev/reefboard/internal/metrics"
	"github.com/theirongolddev/reefboard/internal/model"
	"github.com/theirongolddev/reefboard/internal/store"
	"github.com/theirongolddev/reefboard/internal/tasks"
)

// Views is the cached read side of the dashboard.
type Views interface {
	Status(ctx context.Context) (model.StatusReport, error)
	Activity(ctx context.Context) (model.ActivityReport, error)
	Brief(ctx context.Context) (model.Brief, error)
	Markets(ctx context.Context) ([]model.Market, error)
}

// Config holds HTTP listener settings.
type Config struct {
	Addr           string
	AllowedOrigins []string
	Debug          bool
}

// Deps are the collaborators behind the routes.
type Deps struct {
	Views     Views
	ArbLedger *ledger.File
	SimLedger *ledger.File
	Tasks     *tasks.Store
	Bets      *store.DB
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

// Server is the HTTP API.
type Server struct {
	cfg    Config
	deps   Deps
	engine *gin.Engine
}

// New builds the router.
func New(cfg Config, deps Deps) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:3001"
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{cfg: cfg, deps: deps}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.Use(observe(s.deps.Metrics))

	corsCfg := cors.Config{
		AllowOrigins:     s.cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "If-None-Match"},
		ExposeHeaders:    []string{"ETag"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/status", s.getStatus)
		api.GET("/agent-activity", s.getActivity)
		api.GET("/brief", s.getBrief)
		api.GET("/polymarket", s.getMarkets)

		api.GET("/arb-ledger", s.getArbLedger)
		api.POST("/arb-ledger", s.postArbLedger)
		api.POST("/simulate-bet", s.postSimulateBet)
		api.GET("/simulate-stats", s.getSimulateStats)

		api.GET("/tasks", s.listTasks)
		api.POST("/tasks", s.createTask)
		api.PUT("/tasks", s.updateTask)
		api.DELETE("/tasks", s.deleteTask)

		arb := api.Group("/arb")
		arb.GET("/bets", s.listBets)
		arb.POST("/bets", s.saveBet)
		arb.GET("/opportunities", s.listOpportunities)
		arb.POST("/opportunities", s.reportOpportunity)
		arb.GET("/bankroll", s.getBankroll)
		arb.PATCH("/bankroll", s.patchBankroll)
		arb.GET("/bankroll/history", s.getBankrollHistory)
	}
	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	slog.Info("listening", "addr", s.cfg.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}
