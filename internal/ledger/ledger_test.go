package ledger

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var fixedNow = time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

func TestRecent_MissingFile(t *testing.T) {
	f := Open(filepath.Join(t.TempDir(), "none.jsonl"))
	got, err := f.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("Recent = %#v, want empty", got)
	}
}

func TestRecent_NewestFirstAndLimited(t *testing.T) {
	f := Open(filepath.Join(t.TempDir(), "sub", "arb.jsonl"))
	for i := 0; i < 12; i++ {
		if err := f.Append(map[string]int{"n": i}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := f.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
	var first, last struct{ N int }
	_ = json.Unmarshal(got[0], &first)
	_ = json.Unmarshal(got[9], &last)
	if first.N != 11 || last.N != 2 {
		t.Fatalf("first/last = %d/%d, want 11/2", first.N, last.N)
	}
}

func TestAll_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arb.jsonl")
	data := "{\"a\":1}\n{broken\n\n{\"a\":2}\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := Open(path).All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}

func TestRecent_SkipsOversizedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arb.jsonl")
	huge := `{"pad":"` + strings.Repeat("x", 2*1024*1024) + `"}`
	data := "{\"a\":1}\n" + huge + "\n{\"a\":2}\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := Open(path).Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if string(got[0]) != `{"a":2}` || string(got[1]) != `{"a":1}` {
		t.Fatalf("got %s, %s", got[0], got[1])
	}
}

func decodeArb(t *testing.T, body string) ArbRequest {
	t.Helper()
	var req ArbRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return req
}

func TestNewArbEntry_Defaults(t *testing.T) {
	req := decodeArb(t, `{"event":"Lakers v Celtics","odds":2.1,"bookmakers":"bet365","stake":"100"}`)
	e, err := NewArbEntry(req, fixedNow)
	if err != nil {
		t.Fatalf("NewArbEntry: %v", err)
	}
	if e.Type != "arb_opportunity" || e.Note != "Arbitrage opportunity logged" {
		t.Errorf("entry = %+v", e)
	}
	if len(e.Odds) != 1 || string(e.Odds[0]) != "2.1" {
		t.Errorf("odds = %s", e.Odds)
	}
	if len(e.Bookmakers) != 1 || string(e.Bookmakers[0]) != `"bet365"` {
		t.Errorf("bookmakers = %s", e.Bookmakers)
	}
	if e.Stake != 100 || math.Abs(e.PotentialPayout-110) > 1e-9 {
		t.Errorf("stake/payout = %v/%v", e.Stake, e.PotentialPayout)
	}
	if e.Timestamp != "2026-05-04T10:30:00Z" {
		t.Errorf("timestamp = %q", e.Timestamp)
	}
}

func TestNewArbEntry_ExplicitPayoutAndLists(t *testing.T) {
	req := decodeArb(t, `{"event":"e","odds":[2.0,2.2],"bookmakers":["a","b"],"stake":50,"potential_payout":"57.5","note":"manual"}`)
	e, err := NewArbEntry(req, fixedNow)
	if err != nil {
		t.Fatalf("NewArbEntry: %v", err)
	}
	if len(e.Odds) != 2 || len(e.Bookmakers) != 2 || e.PotentialPayout != 57.5 || e.Note != "manual" {
		t.Fatalf("entry = %+v", e)
	}
}

func TestNewArbEntry_MissingFields(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"odds":2,"bookmakers":"a","stake":1}`,
		`{"event":"e","bookmakers":"a","stake":1}`,
		`{"event":"e","odds":2,"stake":1}`,
		`{"event":"e","odds":2,"bookmakers":"a"}`,
		`{"event":"e","odds":2,"bookmakers":"a","stake":0}`,
	} {
		_, err := NewArbEntry(decodeArb(t, body), fixedNow)
		if !errors.Is(err, ErrMissingFields) {
			t.Errorf("%s: err = %v, want ErrMissingFields", body, err)
		}
	}
}

func TestNewSimulatedBet(t *testing.T) {
	var req SimulateRequest
	if err := json.Unmarshal([]byte(`{"arb":{"event":"x","return_pct":2.5},"stake":"200"}`), &req); err != nil {
		t.Fatal(err)
	}
	bet, err := NewSimulatedBet(req, fixedNow)
	if err != nil {
		t.Fatalf("NewSimulatedBet: %v", err)
	}
	if bet.Stake != 200 || math.Abs(bet.GuaranteedReturn-205) > 1e-9 {
		t.Fatalf("bet = %+v", bet)
	}
}

func TestNewSimulatedBet_Missing(t *testing.T) {
	var req SimulateRequest
	_ = json.Unmarshal([]byte(`{"stake":10}`), &req)
	if _, err := NewSimulatedBet(req, fixedNow); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("err = %v", err)
	}
}

func TestStats(t *testing.T) {
	f := Open(filepath.Join(t.TempDir(), "sim.jsonl"))
	_ = f.Append(SimulatedBet{Stake: 100, GuaranteedReturn: 102.5})
	_ = f.Append(SimulatedBet{Stake: 200, GuaranteedReturn: 203})

	all, err := f.All()
	if err != nil {
		t.Fatal(err)
	}
	s := Stats(all)
	if s.Count != 2 || s.TotalStake != 300 || math.Abs(s.TotalProfit-5.5) > 1e-9 {
		t.Fatalf("stats = %+v", s)
	}
	if s.ROI != 1.83 {
		t.Fatalf("ROI = %v, want 1.83", s.ROI)
	}
}

func TestStats_Empty(t *testing.T) {
	s := Stats(nil)
	if s != (SimulationStats{}) {
		t.Fatalf("stats = %+v", s)
	}
}
