// Package store provides the SQLite-backed bet and bankroll ledger.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // register sqlite driver
)

//go:embed migrations/*.sql
var migrations embed.FS

// Sentinel errors.
var (
	ErrNotFound      = errors.New("store: not found")
	ErrMissingFields = errors.New("store: missing required fields")
	ErrInvalidStatus = errors.New("store: invalid status")
)

// InitialBalance seeds an empty bankroll.
const InitialBalance = 1000

// DB wraps the bet database.
type DB struct {
	db *sql.DB
}

var gooseMu sync.Mutex

// Open opens or creates the database at dbPath and applies migrations.
func Open(ctx context.Context, dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening bet db: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO bankroll (balance) SELECT ? WHERE NOT EXISTS (SELECT 1 FROM bankroll)`,
		InitialBalance); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seeding bankroll: %w", err)
	}

	return &DB{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	// goose keeps its dialect and filesystem in package state.
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks the connection.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}
