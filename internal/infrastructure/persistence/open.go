// Package persistence selects and builds the configured Ledger Store backend.
package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/talkboard/progress-engine/internal/domain/ledger"
	"github.com/talkboard/progress-engine/internal/infrastructure/persistence/memory"
	"github.com/talkboard/progress-engine/internal/infrastructure/persistence/postgres"
	"github.com/talkboard/progress-engine/internal/infrastructure/persistence/redis"
	"github.com/talkboard/progress-engine/internal/infrastructure/persistence/sqlite"
	"github.com/talkboard/progress-engine/pkg/circuitbreaker"
	"github.com/talkboard/progress-engine/pkg/logger"
	"github.com/talkboard/progress-engine/pkg/retry"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Backend is a Ledger Store that holds resources.
type Backend interface {
	ledger.Store
	Close() error
}

// Config selects a backend and carries every backend's settings.
type Config struct {
	Backend  string
	SQLite   sqlite.Config
	Redis    redis.Config
	Postgres postgres.Config

	// Retry wraps remote backends (redis, postgres) in WithRetry.
	// MaxAttempts <= 1 disables it.
	Retry retry.Config

	// Breaker wraps remote backends in WithBreaker, outside the retries.
	Breaker        circuitbreaker.Config
	DisableBreaker bool

	Logger *slog.Logger
}

// DefaultConfig returns the on-device default: SQLite, with retries and a
// circuit breaker for remote backends.
func DefaultConfig() Config {
	return Config{
		Backend:  BackendSQLite,
		SQLite:   sqlite.DefaultConfig(),
		Redis:    redis.DefaultConfig(),
		Postgres: postgres.DefaultConfig(),
		Retry:    retry.DefaultConfig(),
		Breaker:  circuitbreaker.DefaultConfig("ledger-store"),
	}
}

// Open builds the configured backend.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	log := logger.OrDiscard(cfg.Logger).With(logger.Component("persistence"))

	var (
		backend Backend
		remote  bool
		err     error
		start   = time.Now()
	)

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendMemory:
		backend = memory.New()
	case BackendSQLite, "sqlite3", "":
		backend, err = sqlite.Open(ctx, cfg.SQLite)
	case BackendRedis:
		backend, err = redis.New(ctx, cfg.Redis)
		remote = true
	case BackendPostgres, "postgresql":
		backend, err = postgres.Open(ctx, cfg.Postgres)
		remote = true
	default:
		return nil, fmt.Errorf("persistence: unsupported backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("persistence: open %s: %w", cfg.Backend, err)
	}

	log.Info("ledger store opened",
		slog.String("backend", cfg.Backend),
		logger.Latency(time.Since(start)),
	)

	if !remote {
		return backend, nil
	}
	if cfg.Retry.MaxAttempts > 1 {
		backend = WithRetry(backend, cfg.Retry, log)
	}
	if !cfg.DisableBreaker {
		backend = WithBreaker(backend, cfg.Breaker, log)
	}
	return backend, nil
}
