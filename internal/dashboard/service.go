// Package dashboard composes the fetchers, the pricing table and the
// per-endpoint caches behind the read-only dashboard views.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/theirongolddev/reefboard/internal/cache"
	"github.com/theirongolddev/reefboard/internal/config"
	"github.com/theirongolddev/reefboard/internal/metrics"
	"github.com/theirongolddev/reefboard/internal/model"
	"github.com/theirongolddev/reefboard/internal/pipeline"
	"github.com/theirongolddev/reefboard/internal/source"
)

// Default cache windows.
const (
	DefaultStatusTTL   = 60 * time.Second
	DefaultActivityTTL = 30 * time.Second
	DefaultBriefTTL    = 60 * time.Second
	DefaultMarketsTTL  = 5 * time.Minute
	DefaultFetchWindow = 15 * time.Second

	marketLimit = 10
)

// BriefSource supplies calendar events and unread mail.
type BriefSource interface {
	Events(ctx context.Context) ([]json.RawMessage, error)
	UnreadMail(ctx context.Context) ([]json.RawMessage, error)
}

// MarketSource supplies trending prediction markets.
type MarketSource interface {
	Trending(ctx context.Context, limit int) ([]model.Market, error)
}

// Options wires a Service. Zero TTLs take the defaults.
type Options struct {
	Agents      source.AgentLister
	Sessions    source.SessionLister
	Brief       BriefSource
	Markets     MarketSource
	PricingFile string

	StatusTTL   time.Duration
	ActivityTTL time.Duration
	BriefTTL    time.Duration
	MarketsTTL  time.Duration

	// FetchTimeout bounds one cache fill.
	FetchTimeout time.Duration

	Now     func() time.Time
	Metrics *metrics.Metrics
}

// Service serves cached dashboard views.
type Service struct {
	opts Options
	now  func() time.Time

	status   *cache.Slot[model.StatusReport]
	activity *cache.Slot[model.ActivityReport]
	brief    *cache.Slot[model.Brief]
	markets  *cache.Slot[[]model.Market]
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// New returns a Service with empty caches.
func New(opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	opts.FetchTimeout = orDefault(opts.FetchTimeout, DefaultFetchWindow)
	clock := cache.WithClock(now)

	return &Service{
		opts:     opts,
		now:      now,
		status:   cache.NewSlot[model.StatusReport](orDefault(opts.StatusTTL, DefaultStatusTTL), clock),
		activity: cache.NewSlot[model.ActivityReport](orDefault(opts.ActivityTTL, DefaultActivityTTL), clock),
		brief:    cache.NewSlot[model.Brief](orDefault(opts.BriefTTL, DefaultBriefTTL), clock),
		markets:  cache.NewSlot[[]model.Market](orDefault(opts.MarketsTTL, DefaultMarketsTTL), clock),
	}
}

// fill runs compute detached from the caller's cancellation and bounded by
// the fetch timeout.
func fill[T any](ctx context.Context, s *Service, endpoint string, slot *cache.Slot[T], compute func(context.Context) (T, error)) (T, error) {
	v, hit, err := slot.Fetch(func() (T, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.FetchTimeout)
		defer cancel()
		return compute(ctx)
	})
	s.opts.Metrics.CacheLookup(endpoint, hit)
	return v, err
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// Status returns agents with their attributed usage and the global model
// breakdown. It fails only when both the agent list and the sessions fail.
func (s *Service) Status(ctx context.Context) (model.StatusReport, error) {
	return fill(ctx, s, "status", s.status, s.computeStatus)
}

func (s *Service) computeStatus(ctx context.Context) (model.StatusReport, error) {
	agents, agentErr := s.listAgents(ctx)
	if agentErr != nil {
		s.opts.Metrics.FetchFailed("agents")
		slog.Warn("agent list unavailable", "err", agentErr)
		agents = []model.Agent{}
	}
	sessions, sessErr := s.listSessions(ctx)
	if sessErr != nil {
		s.opts.Metrics.FetchFailed("sessions")
		slog.Warn("session list unavailable", "err", sessErr)
		sessions = nil
	}
	if agentErr != nil && sessErr != nil {
		return model.StatusReport{}, errors.Join(agentErr, sessErr)
	}

	pricing := config.LoadPricing(s.opts.PricingFile)
	return model.StatusReport{
		Agents:       pipeline.SummarizeAgents(agents, sessions, pricing),
		UsageSummary: pipeline.Aggregate(sessions, pricing),
		Timestamp:    s.timestamp(),
	}, nil
}

// Activity returns recent sessions, most recent first.
func (s *Service) Activity(ctx context.Context) (model.ActivityReport, error) {
	return fill(ctx, s, "activity", s.activity, func(ctx context.Context) (model.ActivityReport, error) {
		sessions, err := s.listSessions(ctx)
		if err != nil {
			s.opts.Metrics.FetchFailed("sessions")
			return model.ActivityReport{}, err
		}
		rows := pipeline.Activity(sessions)
		return model.ActivityReport{
			Sessions:  rows,
			Count:     len(rows),
			Timestamp: s.timestamp(),
		}, nil
	})
}

// Brief returns upcoming events and unread mail. A failing half is empty;
// both failing is an error.
func (s *Service) Brief(ctx context.Context) (model.Brief, error) {
	return fill(ctx, s, "brief", s.brief, func(ctx context.Context) (model.Brief, error) {
		if s.opts.Brief == nil {
			return model.Brief{}, errors.New("brief source not configured")
		}
		events, evErr := s.opts.Brief.Events(ctx)
		if evErr != nil {
			s.opts.Metrics.FetchFailed("calendar")
			slog.Warn("calendar unavailable", "err", evErr)
			events = []json.RawMessage{}
		}
		mail, mailErr := s.opts.Brief.UnreadMail(ctx)
		if mailErr != nil {
			s.opts.Metrics.FetchFailed("mail")
			slog.Warn("mail unavailable", "err", mailErr)
			mail = []json.RawMessage{}
		}
		if evErr != nil && mailErr != nil {
			return model.Brief{}, errors.Join(evErr, mailErr)
		}
		return model.Brief{Events: events, Emails: mail, Timestamp: s.timestamp()}, nil
	})
}

// Markets returns trending prediction markets.
func (s *Service) Markets(ctx context.Context) ([]model.Market, error) {
	return fill(ctx, s, "markets", s.markets, func(ctx context.Context) ([]model.Market, error) {
		if s.opts.Markets == nil {
			return nil, errors.New("market source not configured")
		}
		m, err := s.opts.Markets.Trending(ctx, marketLimit)
		if err != nil {
			s.opts.Metrics.FetchFailed("polymarket")
			return nil, err
		}
		return m, nil
	})
}

// Invalidate drops every cached view.
func (s *Service) Invalidate() {
	s.status.Clear()
	s.activity.Clear()
	s.brief.Clear()
	s.markets.Clear()
}

func (s *Service) listAgents(ctx context.Context) ([]model.Agent, error) {
	if s.opts.Agents == nil {
		return nil, errors.New("agent source not configured")
	}
	agents, err := s.opts.Agents.ListAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("agents: %w", err)
	}
	return agents, nil
}

func (s *Service) listSessions(ctx context.Context) ([]model.SessionRecord, error) {
	if s.opts.Sessions == nil {
		return nil, errors.New("session source not configured")
	}
	sessions, err := s.opts.Sessions.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("sessions: %w", err)
	}
	return sessions, nil
}
