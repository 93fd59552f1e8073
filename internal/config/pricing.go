package config

import (
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

// ModelPricing holds per-million-token prices for a model.
type ModelPricing struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// PricingTable maps model ids to their pricing. Keys keep registration
// order so fuzzy lookups are deterministic.
type PricingTable struct {
	prices map[string]ModelPricing
	order  []string
}

// NewPricingTable returns an empty table.
func NewPricingTable() *PricingTable {
	return &PricingTable{prices: make(map[string]ModelPricing)}
}

// Register adds a model under its full id and, when the id carries a
// provider prefix, under the part after the last "/". Existing keys are
// never overwritten.
func (t *PricingTable) Register(id string, p ModelPricing) {
	p.InputPerMTok = sanitizeRate(p.InputPerMTok)
	p.OutputPerMTok = sanitizeRate(p.OutputPerMTok)

	t.add(id, p)
	if i := strings.LastIndex(id, "/"); i >= 0 && i < len(id)-1 {
		t.add(id[i+1:], p)
	}
}

func (t *PricingTable) add(key string, p ModelPricing) {
	if key == "" {
		return
	}
	if _, ok := t.prices[key]; ok {
		return
	}
	t.prices[key] = p
	t.order = append(t.order, key)
}

// Len returns the number of registered keys.
func (t *PricingTable) Len() int {
	return len(t.order)
}

// Lookup resolves a model id to its pricing:
// exact key, then the suffix after the last "/", then a case-insensitive
// substring match in either direction against registered keys in
// registration order. Unknown models resolve to zero rates with ok=false.
func (t *PricingTable) Lookup(modelID string) (ModelPricing, bool) {
	if t == nil || modelID == "" {
		return ModelPricing{}, false
	}
	if p, ok := t.prices[modelID]; ok {
		return p, true
	}
	if i := strings.LastIndex(modelID, "/"); i >= 0 {
		if p, ok := t.prices[modelID[i+1:]]; ok {
			return p, true
		}
	}

	lower := strings.ToLower(modelID)
	for _, key := range t.order {
		k := strings.ToLower(key)
		if strings.Contains(lower, k) || strings.Contains(k, lower) {
			return t.prices[key], true
		}
	}
	return ModelPricing{}, false
}

// Cost returns the dollar cost of a call with the given token counts.
// Negative token counts count as zero; the result is always finite and >= 0.
func (t *PricingTable) Cost(modelID string, inputTokens, outputTokens int64) float64 {
	p, _ := t.Lookup(modelID)
	in := float64(max(inputTokens, 0))
	out := float64(max(outputTokens, 0))

	cost := in*p.InputPerMTok/1_000_000 + out*p.OutputPerMTok/1_000_000
	if math.IsNaN(cost) || math.IsInf(cost, 0) || cost < 0 {
		return 0
	}
	return cost
}

func sanitizeRate(r float64) float64 {
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return 0
	}
	return r
}

// LoadPricing reads the agent runtime's JSON config and builds a pricing
// table from models.providers.*.models[]. A missing or malformed file
// yields an empty table.
func LoadPricing(path string) *PricingTable {
	t := NewPricingTable()
	if path == "" {
		return t
	}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("pricing file unavailable", "path", path, "err", err)
		return t
	}
	if !gjson.ValidBytes(data) {
		slog.Warn("pricing file is not valid JSON", "path", path)
		return t
	}

	ParsePricing(data, t)
	return t
}

// ParsePricing registers every priced model in a JSON document into t,
// walking providers and models in document order.
func ParsePricing(data []byte, t *PricingTable) {
	providers := gjson.GetBytes(data, "models.providers")
	providers.ForEach(func(_, provider gjson.Result) bool {
		provider.Get("models").ForEach(func(_, m gjson.Result) bool {
			id := m.Get("id").String()
			cost := m.Get("cost")
			if id == "" || !cost.IsObject() {
				return true
			}
			t.Register(id, ModelPricing{
				InputPerMTok:  cost.Get("input").Float(),
				OutputPerMTok: cost.Get("output").Float(),
			})
			return true
		})
		return true
	})
}
