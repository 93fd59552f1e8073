package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/reefboard/internal/ledger"
	"github.com/theirongolddev/reefboard/internal/metrics"
	"github.com/theirongolddev/reefboard/internal/model"
	"github.com/theirongolddev/reefboard/internal/store"
	"github.com/theirongolddev/reefboard/internal/tasks"
)

type fakeViews struct {
	status  model.StatusReport
	err     error
	markets []model.Market
}

func (f *fakeViews) Status(context.Context) (model.StatusReport, error) {
	return f.status, f.err
}

func (f *fakeViews) Activity(context.Context) (model.ActivityReport, error) {
	return model.ActivityReport{Sessions: []model.ActivitySession{}, Timestamp: "t"}, f.err
}

func (f *fakeViews) Brief(context.Context) (model.Brief, error) {
	return model.Brief{}, f.err
}

func (f *fakeViews) Markets(context.Context) ([]model.Market, error) {
	return f.markets, f.err
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, views Views) (*Server, *metrics.Metrics) {
	t.Helper()
	dir := t.TempDir()

	db, err := store.Open(context.Background(), filepath.Join(dir, "arb.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m := metrics.New()
	s := New(Config{}, Deps{
		Views:     views,
		ArbLedger: ledger.Open(filepath.Join(dir, "arb_ledger.jsonl")),
		SimLedger: ledger.Open(filepath.Join(dir, "simulated_portfolio.jsonl")),
		Tasks:     tasks.Open(filepath.Join(dir, "tasks.json")),
		Bets:      db,
		Metrics:   m,
		Now:       func() time.Time { return fixedNow },
	})
	return s, m
}

func do(t *testing.T, s *Server, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		r.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthzAndMetrics(t *testing.T) {
	s, _ := newTestServer(t, &fakeViews{})

	w := do(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())

	w = do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `reefboard_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestStatusETagRoundTrip(t *testing.T) {
	views := &fakeViews{status: model.StatusReport{
		Agents:       []model.AgentSummary{},
		UsageSummary: model.UsageSummary{ModelBreakdown: []model.ModelUsage{}},
		Timestamp:    "2026-03-01T12:00:00Z",
	}}
	s, _ := newTestServer(t, views)

	w := do(t, s, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	tag := w.Header().Get("ETag")
	require.NotEmpty(t, tag)
	body := decode(t, w)
	require.Equal(t, "2026-03-01T12:00:00Z", body["timestamp"])

	w = do(t, s, http.MethodGet, "/api/status", "", "If-None-Match", tag)
	require.Equal(t, http.StatusNotModified, w.Code)
	require.Empty(t, w.Body.Bytes())

	w = do(t, s, http.MethodGet, "/api/status", "", "If-None-Match", `"stale"`)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestDashboardErrors(t *testing.T) {
	s, _ := newTestServer(t, &fakeViews{err: errors.New("openclaw: not found")})

	w := do(t, s, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	require.Equal(t, "Failed to fetch agent status", body["error"])
	require.Equal(t, "openclaw: not found", body["details"])

	w = do(t, s, http.MethodGet, "/api/agent-activity", "")
	require.Equal(t, "Failed to fetch agent activity", decode(t, w)["error"])

	w = do(t, s, http.MethodGet, "/api/brief", "")
	require.Equal(t, "Failed to fetch brief data", decode(t, w)["error"])

	w = do(t, s, http.MethodGet, "/api/polymarket", "")
	body = decode(t, w)
	require.Equal(t, "Failed to fetch prediction markets", body["error"])
	require.NotContains(t, body, "details")
}

func TestArbLedger(t *testing.T) {
	s, _ := newTestServer(t, &fakeViews{})

	w := do(t, s, http.MethodGet, "/api/arb-ledger", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())

	w = do(t, s, http.MethodPost, "/api/arb-ledger", `{"event":"A v B","odds":[2.1,2.0]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, ledger.MissingArbFieldsMessage, decode(t, w)["error"])

	w = do(t, s, http.MethodPost, "/api/arb-ledger", `{"event":"A v B","odds":2.1,"bookmakers":"bet365","stake":"100"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, true, body["success"])
	entry := body["entry"].(map[string]any)
	require.InDelta(t, 110.0, entry["potential_payout"], 1e-9)
	require.Equal(t, "Arbitrage opportunity logged", entry["note"])

	w = do(t, s, http.MethodGet, "/api/arb-ledger", "")
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "A v B", list[0]["event"])
}

func TestSimulatedBets(t *testing.T) {
	s, _ := newTestServer(t, &fakeViews{})

	w := do(t, s, http.MethodPost, "/api/simulate-bet", `{"stake":100}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, ledger.MissingSimFieldsMessage, decode(t, w)["error"])

	w = do(t, s, http.MethodPost, "/api/simulate-bet", `{"arb":{"return_pct":5},"stake":200}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/api/simulate-stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.InDelta(t, 200.0, body["totalStake"], 1e-9)
	require.InDelta(t, 210.0, body["totalReturn"], 1e-9)
	require.InDelta(t, 5.0, body["roi"], 1e-9)
	require.InDelta(t, 1.0, body["count"], 1e-9)
}

func TestTasksCRUD(t *testing.T) {
	s, _ := newTestServer(t, &fakeViews{})

	w := do(t, s, http.MethodPost, "/api/tasks", `{"priority":"high"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Title is required", decode(t, w)["error"])

	w = do(t, s, http.MethodPost, "/api/tasks", `{"title":"renew domain"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	id := created["id"].(string)
	require.NotEmpty(t, id)
	require.Equal(t, "medium", created["priority"])
	require.Equal(t, false, created["completed"])

	w = do(t, s, http.MethodPut, "/api/tasks", `{"completed":true}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "ID is required", decode(t, w)["error"])

	w = do(t, s, http.MethodPut, "/api/tasks", `{"id":"nope","completed":true}`)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodPut, "/api/tasks", `{"id":"`+id+`","completed":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode(t, w)
	require.Equal(t, true, updated["completed"])
	require.Equal(t, "renew domain", updated["title"])

	w = do(t, s, http.MethodDelete, "/api/tasks", "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodDelete, "/api/tasks?id="+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, decode(t, w)["success"])

	w = do(t, s, http.MethodDelete, "/api/tasks?id="+id, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodGet, "/api/tasks", "")
	require.JSONEq(t, `[]`, w.Body.String())
}

const betBody = `{"event":"Lakers v Celtics","sport":"nba","leg1_book":"fanduel","leg1_team":"LAL",` +
	`"leg1_odds":"2.10","leg2_book":"draftkings","leg2_team":"BOS","leg2_odds":1.95,"stake":200}`

func TestBets(t *testing.T) {
	s, _ := newTestServer(t, &fakeViews{})

	w := do(t, s, http.MethodPost, "/api/arb/bets", `{"event":"x"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, store.MissingBetFieldsMessage, decode(t, w)["error"])

	w = do(t, s, http.MethodPost, "/api/arb/bets", betBody)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, "Bet placed successfully", body["message"])
	id := int64(body["id"].(float64))

	bad := strings.Replace(betBody, `"stake":200`, `"stake":200,"status":"void"`, 1)
	w = do(t, s, http.MethodPost, "/api/arb/bets", bad)
	require.Equal(t, http.StatusBadRequest, w.Code)

	missing := strings.Replace(betBody, `{"event"`, `{"id":999,"event"`, 1)
	w = do(t, s, http.MethodPost, "/api/arb/bets", missing)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodPost, "/api/arb/opportunities", betBody)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, decode(t, w)["message"], "Awaiting approval")

	w = do(t, s, http.MethodGet, "/api/arb/bets", "")
	require.Equal(t, http.StatusOK, w.Code)
	var bets []store.Bet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bets))
	require.Len(t, bets, 2)
	require.Equal(t, id, bets[1].ID)
	require.InDelta(t, 390.0, bets[1].PotentialPayout, 1e-9)
	require.Equal(t, "pending", bets[0].Status)
}

func TestBankroll(t *testing.T) {
	s, _ := newTestServer(t, &fakeViews{})

	w := do(t, s, http.MethodGet, "/api/arb/bankroll", "")
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode(t, w)
	require.InDelta(t, 1000.0, snap["balance"], 1e-9)
	require.Contains(t, snap, "updated_at")
	require.NotContains(t, snap, "id")

	w = do(t, s, http.MethodPatch, "/api/arb/bankroll", `{"reason":"oops"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Missing required field: amount", decode(t, w)["error"])

	w = do(t, s, http.MethodPatch, "/api/arb/bankroll", `{"amount":-150.25}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.InDelta(t, 1000.0, body["previousBalance"], 1e-9)
	require.InDelta(t, -150.25, body["adjustment"], 1e-9)
	require.InDelta(t, 849.75, body["newBalance"], 1e-9)
	require.Equal(t, "Bankroll adjustment", body["reason"])

	w = do(t, s, http.MethodGet, "/api/arb/bankroll/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	history := decode(t, w)["history"].([]any)
	require.Len(t, history, 2)
}

func TestBankroll_BetIDForms(t *testing.T) {
	s, _ := newTestServer(t, &fakeViews{})

	w := do(t, s, http.MethodPatch, "/api/arb/bankroll", `{"amount":50,"betId":"1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.InDelta(t, 1050.0, decode(t, w)["newBalance"], 1e-9)

	w = do(t, s, http.MethodPatch, "/api/arb/bankroll", `{"amount":25,"betId":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.InDelta(t, 1075.0, decode(t, w)["newBalance"], 1e-9)

	w = do(t, s, http.MethodPatch, "/api/arb/bankroll", `{"amount":5,"betId":null}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodPatch, "/api/arb/bankroll", `{"amount":5,"betId":"abc"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid betId: must be an integer", decode(t, w)["error"])
}

func TestParseBetID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"null", 0, false},
		{`""`, 0, false},
		{"false", 0, false},
		{"7", 7, false},
		{`"12"`, 12, false},
		{"1.5", 0, true},
		{`"x"`, 0, true},
		{"true", 0, true},
		{"-3", 0, true},
	}
	for _, tt := range tests {
		got, err := parseBetID(json.RawMessage(tt.raw))
		if tt.wantErr {
			require.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		require.Equal(t, tt.want, got, tt.raw)
	}
}
