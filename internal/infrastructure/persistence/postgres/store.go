package postgres

import (
	"context"
	"fmt"
)

// Store is a Ledger Store over the ledger_entries table.
type Store struct {
	conn *Connection
}

// Open connects, applies pending migrations and returns the store.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	conn, err := NewConnection(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := NewMigrator(conn).Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return NewStore(conn), nil
}

// NewStore wraps an already migrated connection.
func NewStore(conn *Connection) *Store {
	return &Store{conn: conn}
}

// Get implements ledger.Store.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.conn.QueryRow(ctx, `SELECT value FROM ledger_entries WHERE key = $1`, key).Scan(&value)
	if IsNoRows(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres: get %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements ledger.Store as an upsert.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO ledger_entries (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value)
	if err != nil {
		return fmt.Errorf("postgres: set %s: %w", key, err)
	}
	return nil
}

// Remove implements ledger.Store with one DELETE.
func (s *Store) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := s.conn.Exec(ctx, `DELETE FROM ledger_entries WHERE key = ANY($1)`, keys); err != nil {
		return fmt.Errorf("postgres: remove: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close releases the pool.
func (s *Store) Close() error {
	s.conn.Close()
	return nil
}
