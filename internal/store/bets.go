package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// MissingBetFieldsMessage names every field a bet must carry.
const MissingBetFieldsMessage = "Missing required fields: event, sport, leg1_book, leg1_team, leg1_odds, leg2_book, leg2_team, leg2_odds"

var defaultStake = decimal.NewFromInt(100)

// Bet is one two-legged arbitrage bet.
type Bet struct {
	ID              int64   `json:"id"`
	Event           string  `json:"event"`
	Sport           string  `json:"sport"`
	Leg1Book        string  `json:"leg1_book"`
	Leg1Team        string  `json:"leg1_team"`
	Leg1Odds        float64 `json:"leg1_odds"`
	Leg2Book        string  `json:"leg2_book"`
	Leg2Team        string  `json:"leg2_team"`
	Leg2Odds        float64 `json:"leg2_odds"`
	Stake           float64 `json:"stake"`
	PotentialPayout float64 `json:"potential_payout"`
	Status          string  `json:"status"`
	ResultUpdatedAt *string `json:"result_updated_at"`
	CreatedAt       string  `json:"created_at"`
}

// BetInput is a bet as submitted by a client. Odds and stake accept
// numbers or numeric strings; an ID turns the write into an update.
type BetInput struct {
	ID       int64               `json:"id"`
	Event    string              `json:"event" validate:"required"`
	Sport    string              `json:"sport" validate:"required"`
	Leg1Book string              `json:"leg1_book" validate:"required"`
	Leg1Team string              `json:"leg1_team" validate:"required"`
	Leg1Odds decimal.NullDecimal `json:"leg1_odds"`
	Leg2Book string              `json:"leg2_book" validate:"required"`
	Leg2Team string              `json:"leg2_team" validate:"required"`
	Leg2Odds decimal.NullDecimal `json:"leg2_odds"`
	Stake    decimal.NullDecimal `json:"stake"`
	Status   string              `json:"status" validate:"omitempty,oneof=pending won lost"`
}

var validate = validator.New()

// normalized validates in and returns the stake, payout and status to store.
// The payout is the smaller of the two legs' returns.
func (in BetInput) normalized() (stake, payout decimal.Decimal, status string, err error) {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Tag() == "oneof" {
					return stake, payout, "", fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
				}
			}
		}
		return stake, payout, "", fmt.Errorf("%w: %s", ErrMissingFields, err)
	}
	if !positive(in.Leg1Odds) || !positive(in.Leg2Odds) {
		return stake, payout, "", fmt.Errorf("%w: leg odds", ErrMissingFields)
	}

	stake = defaultStake
	if positive(in.Stake) {
		stake = in.Stake.Decimal
	}
	payout = decimal.Min(stake.Mul(in.Leg1Odds.Decimal), stake.Mul(in.Leg2Odds.Decimal))

	status = in.Status
	if status == "" {
		status = "pending"
	}
	return stake, payout, status, nil
}

func positive(d decimal.NullDecimal) bool {
	return d.Valid && d.Decimal.IsPositive()
}

const betColumns = `id, event, sport, leg1_book, leg1_team, leg1_odds, leg2_book, leg2_team, leg2_odds,
	stake, potential_payout, status, result_updated_at, created_at`

// ListBets returns up to limit bets, newest first.
func (d *DB) ListBets(ctx context.Context, limit int) ([]Bet, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+betColumns+` FROM bets ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing bets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	bets := []Bet{}
	for rows.Next() {
		var b Bet
		var settled sql.NullString
		if err := rows.Scan(&b.ID, &b.Event, &b.Sport, &b.Leg1Book, &b.Leg1Team, &b.Leg1Odds,
			&b.Leg2Book, &b.Leg2Team, &b.Leg2Odds, &b.Stake, &b.PotentialPayout, &b.Status,
			&settled, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning bet: %w", err)
		}
		if settled.Valid {
			b.ResultUpdatedAt = &settled.String
		}
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

// GetBet returns the bet with id.
func (d *DB) GetBet(ctx context.Context, id int64) (Bet, error) {
	var b Bet
	var settled sql.NullString
	err := d.db.QueryRowContext(ctx, `SELECT `+betColumns+` FROM bets WHERE id = ?`, id).Scan(
		&b.ID, &b.Event, &b.Sport, &b.Leg1Book, &b.Leg1Team, &b.Leg1Odds,
		&b.Leg2Book, &b.Leg2Team, &b.Leg2Odds, &b.Stake, &b.PotentialPayout, &b.Status,
		&settled, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Bet{}, ErrNotFound
	}
	if err != nil {
		return Bet{}, fmt.Errorf("loading bet %d: %w", id, err)
	}
	if settled.Valid {
		b.ResultUpdatedAt = &settled.String
	}
	return b, nil
}

// SaveBet inserts in, or updates the existing bet when in.ID is set.
// It returns the bet's id.
func (d *DB) SaveBet(ctx context.Context, in BetInput) (int64, error) {
	stake, payout, status, err := in.normalized()
	if err != nil {
		return 0, err
	}
	args := []any{
		in.Event, in.Sport, in.Leg1Book, in.Leg1Team, in.Leg1Odds.Decimal.InexactFloat64(),
		in.Leg2Book, in.Leg2Team, in.Leg2Odds.Decimal.InexactFloat64(),
		stake.InexactFloat64(), payout.InexactFloat64(), status,
	}

	if in.ID > 0 {
		res, err := d.db.ExecContext(ctx, `
			UPDATE bets
			SET event = ?, sport = ?, leg1_book = ?, leg1_team = ?, leg1_odds = ?,
			    leg2_book = ?, leg2_team = ?, leg2_odds = ?, stake = ?, potential_payout = ?, status = ?
			WHERE id = ?`, append(args, in.ID)...)
		if err != nil {
			return 0, fmt.Errorf("updating bet %d: %w", in.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return 0, ErrNotFound
		}
		return in.ID, nil
	}

	return d.insertBet(ctx, args)
}

// ReportOpportunity records in as a pending bet awaiting approval.
func (d *DB) ReportOpportunity(ctx context.Context, in BetInput) (int64, error) {
	in.ID = 0
	in.Status = "pending"
	stake, payout, status, err := in.normalized()
	if err != nil {
		return 0, err
	}
	return d.insertBet(ctx, []any{
		in.Event, in.Sport, in.Leg1Book, in.Leg1Team, in.Leg1Odds.Decimal.InexactFloat64(),
		in.Leg2Book, in.Leg2Team, in.Leg2Odds.Decimal.InexactFloat64(),
		stake.InexactFloat64(), payout.InexactFloat64(), status,
	})
}

func (d *DB) insertBet(ctx context.Context, args []any) (int64, error) {
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO bets (event, sport, leg1_book, leg1_team, leg1_odds, leg2_book, leg2_team, leg2_odds,
		                  stake, potential_payout, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting bet: %w", err)
	}
	return res.LastInsertId()
}
