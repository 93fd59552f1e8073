package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

const samplePricing = `{
  "models": {
    "providers": {
      "openrouter": {
        "models": [
          {"id": "anthropic/claude-sonnet-4", "cost": {"input": 3, "output": 15}},
          {"id": "openai/gpt-4o", "cost": {"input": 2.5, "output": 10}},
          {"id": "no-cost-model"}
        ]
      },
      "direct": {
        "models": [
          {"id": "gpt-4o", "cost": {"input": 99, "output": 99}},
          {"id": "google/gemini-pro", "cost": {"input": -1, "output": 4}}
        ]
      }
    }
  }
}`

func sampleTable(t *testing.T) *PricingTable {
	t.Helper()
	tbl := NewPricingTable()
	ParsePricing([]byte(samplePricing), tbl)
	return tbl
}

func TestLookup_ExactMatch(t *testing.T) {
	tbl := sampleTable(t)
	p, ok := tbl.Lookup("anthropic/claude-sonnet-4")
	if !ok {
		t.Fatal("exact lookup returned !ok")
	}
	if p.InputPerMTok != 3 || p.OutputPerMTok != 15 {
		t.Fatalf("got %+v, want 3/15", p)
	}
}

func TestLookup_SuffixFirstWriterWins(t *testing.T) {
	tbl := sampleTable(t)
	// "gpt-4o" was registered as the suffix of openai/gpt-4o before the
	// direct provider's own "gpt-4o" entry.
	p, ok := tbl.Lookup("gpt-4o")
	if !ok {
		t.Fatal("suffix lookup returned !ok")
	}
	if p.InputPerMTok != 2.5 {
		t.Fatalf("InputPerMTok = %.2f, want 2.5 (first writer)", p.InputPerMTok)
	}
}

func TestLookup_QueryWithPrefix(t *testing.T) {
	tbl := sampleTable(t)
	p, ok := tbl.Lookup("vertex/claude-sonnet-4")
	if !ok || p.InputPerMTok != 3 {
		t.Fatalf("got %+v ok=%v, want sonnet pricing via suffix", p, ok)
	}
}

func TestLookup_SubstringCaseInsensitive(t *testing.T) {
	tbl := sampleTable(t)
	p, ok := tbl.Lookup("Claude-Sonnet-4-20250514")
	if !ok || p.OutputPerMTok != 15 {
		t.Fatalf("got %+v ok=%v, want sonnet pricing via substring", p, ok)
	}
}

func TestLookup_Unknown(t *testing.T) {
	tbl := sampleTable(t)
	if _, ok := tbl.Lookup("mistral-large"); ok {
		t.Fatal("unknown model resolved")
	}
	if _, ok := tbl.Lookup(""); ok {
		t.Fatal("empty model resolved")
	}
}

func TestParsePricing_SkipsModelsWithoutCost(t *testing.T) {
	tbl := sampleTable(t)
	if _, ok := tbl.prices["no-cost-model"]; ok {
		t.Fatal("model without cost block was registered")
	}
}

func TestParsePricing_ClampsNegativeRates(t *testing.T) {
	tbl := sampleTable(t)
	p, _ := tbl.Lookup("google/gemini-pro")
	if p.InputPerMTok != 0 || p.OutputPerMTok != 4 {
		t.Fatalf("got %+v, want 0/4", p)
	}
}

func TestCost(t *testing.T) {
	tbl := sampleTable(t)

	got := tbl.Cost("anthropic/claude-sonnet-4", 1_000_000, 500_000)
	if math.Abs(got-10.5) > 1e-9 {
		t.Fatalf("Cost = %f, want 10.5", got)
	}

	if got := tbl.Cost("mistral-large", 1000, 1000); got != 0 {
		t.Fatalf("unknown model cost = %f, want 0", got)
	}
	if got := tbl.Cost("openai/gpt-4o", -5, -5); got != 0 {
		t.Fatalf("negative token cost = %f, want 0", got)
	}
	if got := tbl.Cost("openai/gpt-4o", 0, 0); got != 0 {
		t.Fatalf("zero token cost = %f, want 0", got)
	}
}

func TestCost_NilTable(t *testing.T) {
	var tbl *PricingTable
	if got := tbl.Cost("x", 10, 10); got != 0 {
		t.Fatalf("nil table cost = %f, want 0", got)
	}
}

func TestLoadPricing_MissingFile(t *testing.T) {
	tbl := LoadPricing(filepath.Join(t.TempDir(), "nope.json"))
	if tbl.Len() != 0 {
		t.Fatalf("Len = %d, want 0", tbl.Len())
	}
}

func TestLoadPricing_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	tbl := LoadPricing(path)
	if tbl.Len() != 0 {
		t.Fatalf("Len = %d, want 0", tbl.Len())
	}
}

func TestLoadPricing_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openclaw.json")
	if err := os.WriteFile(path, []byte(samplePricing), 0o600); err != nil {
		t.Fatal(err)
	}
	tbl := LoadPricing(path)
	// anthropic/claude-sonnet-4, claude-sonnet-4, openai/gpt-4o, gpt-4o,
	// google/gemini-pro, gemini-pro
	if tbl.Len() != 6 {
		t.Fatalf("Len = %d, want 6", tbl.Len())
	}
}
