// Package sqlite implements the Ledger Store in a local SQLite file, the
// default backend on a single device.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS ledger_entries (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Config holds SQLite settings.
type Config struct {
	// Path is the database file. ":memory:" opens a private in-memory database.
	Path string

	BusyTimeout time.Duration
}

// DefaultConfig returns a configuration for talkboard.db in the working directory.
func DefaultConfig() Config {
	return Config{
		Path:        "talkboard.db",
		BusyTimeout: 5 * time.Second,
	}
}

// DSN returns the go-sqlite3 connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("file:%s?_busy_timeout=%d", c.Path, c.BusyTimeout.Milliseconds())
}

// Store is a Ledger Store over a single SQLite table.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database file and its schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	db, err := sql.Open("sqlite3", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}

	if err := configure(ctx, db, cfg.Path == ":memory:"); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func configure(ctx context.Context, db *sql.DB, inMemory bool) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping database: %w", err)
	}

	// Every pooled connection to ":memory:" would see its own empty database.
	if inMemory {
		db.SetMaxOpenConns(1)
		return nil
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(time.Minute)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("sqlite: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA synchronous=NORMAL;"); err != nil {
		return fmt.Errorf("sqlite: set synchronous: %w", err)
	}
	return nil
}

// Get implements ledger.Store.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM ledger_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite: get %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements ledger.Store as an upsert.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("sqlite: set %s: %w", key, err)
	}
	return nil
}

// Remove implements ledger.Store with one DELETE.
func (s *Store) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	query := `DELETE FROM ledger_entries WHERE key IN (?` + strings.Repeat(`, ?`, len(keys)-1) + `)`

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlite: remove: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
