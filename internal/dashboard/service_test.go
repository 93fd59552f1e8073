package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/reefboard/internal/model"
)

type fakeAgents struct {
	agents []model.Agent
	err    error
	calls  int
}

func (f *fakeAgents) ListAgents(context.Context) ([]model.Agent, error) {
	f.calls++
	return f.agents, f.err
}

type fakeSessions struct {
	sessions []model.SessionRecord
	err      error
	calls    int
	ctxErr   error
}

func (f *fakeSessions) ListSessions(ctx context.Context) ([]model.SessionRecord, error) {
	f.calls++
	f.ctxErr = ctx.Err()
	return f.sessions, f.err
}

type fakeBrief struct {
	evErr, mailErr error
}

func (f *fakeBrief) Events(context.Context) ([]json.RawMessage, error) {
	if f.evErr != nil {
		return nil, f.evErr
	}
	return []json.RawMessage{json.RawMessage(`{"summary":"standup"}`)}, nil
}

func (f *fakeBrief) UnreadMail(context.Context) ([]json.RawMessage, error) {
	if f.mailErr != nil {
		return nil, f.mailErr
	}
	return []json.RawMessage{json.RawMessage(`{"subject":"hi"}`)}, nil
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func writePricing(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openclaw.json")
	doc := `{"models":{"providers":{"p":{"models":[{"id":"acme/fast","cost":{"input":1,"output":2}}]}}}}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStatus_AggregatesAndCaches(t *testing.T) {
	c := &clock{t: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	agents := &fakeAgents{agents: []model.Agent{{ID: "main", Name: "main"}}}
	sessions := &fakeSessions{sessions: []model.SessionRecord{
		{Key: "agent:main:a", Model: "acme/fast", InputTokens: 1_000_000, OutputTokens: 1_000_000},
		{Key: "agent:ghost:b", Model: "fast", InputTokens: 1_000_000},
	}}
	svc := New(Options{Agents: agents, Sessions: sessions, PricingFile: writePricing(t), Now: c.now})

	report, err := svc.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if report.UsageSummary.TotalCost != 4 {
		t.Fatalf("TotalCost = %v, want 4", report.UsageSummary.TotalCost)
	}
	if len(report.Agents) != 1 || report.Agents[0].Cost != 3 || report.Agents[0].SessionsCount != 1 {
		t.Fatalf("agents = %+v", report.Agents)
	}
	if report.Timestamp != "2026-02-01T00:00:00Z" {
		t.Fatalf("Timestamp = %q", report.Timestamp)
	}

	c.advance(30 * time.Second)
	if _, err := svc.Status(context.Background()); err != nil {
		t.Fatal(err)
	}
	if agents.calls != 1 || sessions.calls != 1 {
		t.Fatalf("calls = %d/%d, want cached", agents.calls, sessions.calls)
	}

	c.advance(30 * time.Second)
	if _, err := svc.Status(context.Background()); err != nil {
		t.Fatal(err)
	}
	if sessions.calls != 2 {
		t.Fatalf("sessions.calls = %d after ttl, want 2", sessions.calls)
	}
}

func TestStatus_PartialFailure(t *testing.T) {
	svc := New(Options{
		Agents:   &fakeAgents{err: errors.New("no binary")},
		Sessions: &fakeSessions{sessions: []model.SessionRecord{{Key: "agent:a:1", Model: "x", InputTokens: 5}}},
	})
	report, err := svc.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(report.Agents) != 0 || report.UsageSummary.TotalPrompts != 5 {
		t.Fatalf("report = %+v", report)
	}
}

func TestStatus_BothFail(t *testing.T) {
	boom := errors.New("boom")
	svc := New(Options{
		Agents:   &fakeAgents{err: boom},
		Sessions: &fakeSessions{err: errors.New("timeout")},
	})
	if _, err := svc.Status(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want joined boom", err)
	}
}

func TestActivity_DetachedFromCancellation(t *testing.T) {
	sessions := &fakeSessions{sessions: []model.SessionRecord{
		{Key: "agent:b:1", AgeMs: 9000},
		{Key: "agent:a:1", AgeMs: 1000},
	}}
	svc := New(Options{Sessions: sessions})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := svc.Activity(ctx)
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if sessions.ctxErr != nil {
		t.Fatal("compute saw the caller's cancellation")
	}
	if report.Count != 2 || report.Sessions[0].AgentID != "a" {
		t.Fatalf("report = %+v", report)
	}
}

func TestActivity_Error(t *testing.T) {
	svc := New(Options{Sessions: &fakeSessions{err: errors.New("exit 1")}})
	if _, err := svc.Activity(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestBrief(t *testing.T) {
	svc := New(Options{Brief: &fakeBrief{mailErr: errors.New("auth")}})
	b, err := svc.Brief(context.Background())
	if err != nil {
		t.Fatalf("Brief: %v", err)
	}
	if len(b.Events) != 1 || b.Emails == nil || len(b.Emails) != 0 {
		t.Fatalf("brief = %+v", b)
	}

	svc = New(Options{Brief: &fakeBrief{evErr: errors.New("a"), mailErr: errors.New("b")}})
	if _, err := svc.Brief(context.Background()); err == nil {
		t.Fatal("expected error when both halves fail")
	}
}

func TestInvalidate(t *testing.T) {
	sessions := &fakeSessions{}
	svc := New(Options{Sessions: sessions})
	_, _ = svc.Activity(context.Background())
	svc.Invalidate()
	_, _ = svc.Activity(context.Background())
	if sessions.calls != 2 {
		t.Fatalf("calls = %d, want 2", sessions.calls)
	}
}
