package ledger

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// MissingSimFieldsMessage is returned when a simulated bet lacks arb or stake.
const MissingSimFieldsMessage = "Missing arb details or stake"

// SimulateRequest is the body of a simulated bet.
type SimulateRequest struct {
	Arb   json.RawMessage     `json:"arb"`
	Stake decimal.NullDecimal `json:"stake"`
}

// SimulatedBet is one paper trade.
type SimulatedBet struct {
	Timestamp        string          `json:"timestamp"`
	Stake            float64         `json:"stake"`
	Arb              json.RawMessage `json:"arb"`
	GuaranteedReturn float64         `json:"guaranteed_return"`
}

// SimulationStats folds the paper-trading ledger.
type SimulationStats struct {
	TotalStake  float64 `json:"totalStake"`
	TotalReturn float64 `json:"totalReturn"`
	TotalProfit float64 `json:"totalProfit"`
	ROI         float64 `json:"roi"`
	Count       int     `json:"count"`
}

// NewSimulatedBet computes the guaranteed return
// stake x (1 + arb.return_pct / 100).
func NewSimulatedBet(req SimulateRequest, now time.Time) (SimulatedBet, error) {
	arb := gjson.ParseBytes(req.Arb)
	if len(req.Arb) == 0 || !arb.IsObject() || !req.Stake.Valid || req.Stake.Decimal.IsZero() {
		return SimulatedBet{}, fmt.Errorf("%w: arb, stake", ErrMissingFields)
	}

	pct := decimal.NewFromFloat(arb.Get("return_pct").Float())
	factor := decimal.NewFromInt(1).Add(pct.Div(decimal.NewFromInt(100)))
	ret := req.Stake.Decimal.Mul(factor)

	return SimulatedBet{
		Timestamp:        now.UTC().Format(time.RFC3339Nano),
		Stake:            req.Stake.Decimal.InexactFloat64(),
		Arb:              req.Arb,
		GuaranteedReturn: ret.InexactFloat64(),
	}, nil
}

// Stats sums stakes and returns across entries. ROI is a percentage rounded
// to two decimals.
func Stats(entries []json.RawMessage) SimulationStats {
	var s SimulationStats
	for _, e := range entries {
		r := gjson.ParseBytes(e)
		if !r.IsObject() {
			continue
		}
		s.TotalStake += r.Get("stake").Float()
		s.TotalReturn += r.Get("guaranteed_return").Float()
		s.Count++
	}
	s.TotalProfit = s.TotalReturn - s.TotalStake
	if s.TotalStake > 0 {
		s.ROI = math.Round(s.TotalProfit/s.TotalStake*100*100) / 100
	}
	return s
}
