package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const defaultArbNote = "Arbitrage opportunity logged"

// MissingArbFieldsMessage is returned to clients that omit a required field.
const MissingArbFieldsMessage = "Missing required fields: event, odds, bookmakers, stake"

// OneOrMany decodes either a JSON array or a single value into a list.
type OneOrMany []json.RawMessage

// UnmarshalJSON implements json.Unmarshaler.
func (o *OneOrMany) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*o = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*o = list
		return nil
	}
	*o = OneOrMany{json.RawMessage(bytes.Clone(data))}
	return nil
}

func (o OneOrMany) empty() bool {
	if len(o) == 0 {
		return true
	}
	return len(o) == 1 && (bytes.Equal(o[0], []byte(`""`)) || bytes.Equal(o[0], []byte(`0`)))
}

// ArbRequest is the body of an arbitrage log request. Stake and payout
// accept numbers or numeric strings.
type ArbRequest struct {
	Event           string              `json:"event"`
	Odds            OneOrMany           `json:"odds"`
	Bookmakers      OneOrMany           `json:"bookmakers"`
	Stake           decimal.NullDecimal `json:"stake"`
	PotentialPayout decimal.NullDecimal `json:"potential_payout"`
	Note            string              `json:"note"`
}

// ArbEntry is one logged arbitrage opportunity.
type ArbEntry struct {
	Type            string            `json:"type"`
	Event           string            `json:"event"`
	Odds            []json.RawMessage `json:"odds"`
	Bookmakers      []json.RawMessage `json:"bookmakers"`
	Stake           float64           `json:"stake"`
	PotentialPayout float64           `json:"potential_payout"`
	Timestamp       string            `json:"timestamp"`
	Note            string            `json:"note"`
}

// NewArbEntry validates req and fills defaults: payout is stake x 1.1 and
// the note is a stock message.
func NewArbEntry(req ArbRequest, now time.Time) (ArbEntry, error) {
	if req.Event == "" || req.Odds.empty() || req.Bookmakers.empty() || !req.Stake.Valid || req.Stake.Decimal.IsZero() {
		return ArbEntry{}, fmt.Errorf("%w: event, odds, bookmakers, stake", ErrMissingFields)
	}

	payout := req.Stake.Decimal.Mul(decimal.RequireFromString("1.1"))
	if req.PotentialPayout.Valid && !req.PotentialPayout.Decimal.IsZero() {
		payout = req.PotentialPayout.Decimal
	}
	note := req.Note
	if note == "" {
		note = defaultArbNote
	}

	return ArbEntry{
		Type:            "arb_opportunity",
		Event:           req.Event,
		Odds:            req.Odds,
		Bookmakers:      req.Bookmakers,
		Stake:           req.Stake.Decimal.InexactFloat64(),
		PotentialPayout: payout.InexactFloat64(),
		Timestamp:       now.UTC().Format(time.RFC3339Nano),
		Note:            note,
	}, nil
}
