package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Snapshot is one bankroll balance row. The latest row is the current balance.
type Snapshot struct {
	ID        int64   `json:"id"`
	Balance   float64 `json:"balance"`
	UpdatedAt string  `json:"updated_at"`
}

// Adjustment reports the effect of a bankroll change.
type Adjustment struct {
	PreviousBalance float64
	Amount          float64
	NewBalance      float64
}

// LatestBalance returns the most recent snapshot.
func (d *DB) LatestBalance(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	err := d.db.QueryRowContext(ctx,
		`SELECT id, balance, updated_at FROM bankroll ORDER BY id DESC LIMIT 1`).
		Scan(&s.ID, &s.Balance, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading bankroll: %w", err)
	}
	return s, nil
}

// AdjustBalance appends a snapshot of previous + amount. When betID is
// non-zero the bet's result_updated_at is stamped in the same transaction.
func (d *DB) AdjustBalance(ctx context.Context, amount decimal.Decimal, betID int64) (Adjustment, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return Adjustment{}, fmt.Errorf("begin bankroll tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	previous := decimal.NewFromInt(InitialBalance)
	var current float64
	err = tx.QueryRowContext(ctx, `SELECT balance FROM bankroll ORDER BY id DESC LIMIT 1`).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return Adjustment{}, fmt.Errorf("loading bankroll: %w", err)
	default:
		previous = decimal.NewFromFloat(current)
	}

	next := previous.Add(amount)
	if _, err := tx.ExecContext(ctx, `INSERT INTO bankroll (balance) VALUES (?)`, next.InexactFloat64()); err != nil {
		return Adjustment{}, fmt.Errorf("inserting bankroll: %w", err)
	}

	if betID > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE bets SET result_updated_at = datetime('now') WHERE id = ?`, betID); err != nil {
			return Adjustment{}, fmt.Errorf("stamping bet %d: %w", betID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Adjustment{}, fmt.Errorf("commit bankroll tx: %w", err)
	}
	return Adjustment{
		PreviousBalance: previous.InexactFloat64(),
		Amount:          amount.InexactFloat64(),
		NewBalance:      next.InexactFloat64(),
	}, nil
}

// BalanceHistory returns every snapshot in insertion order.
func (d *DB) BalanceHistory(ctx context.Context) ([]Snapshot, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, balance, updated_at FROM bankroll ORDER BY updated_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing bankroll: %w", err)
	}
	defer func() { _ = rows.Close() }()

	history := []Snapshot{}
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.Balance, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning bankroll: %w", err)
		}
		history = append(history, s)
	}
	return history, rows.Err()
}
