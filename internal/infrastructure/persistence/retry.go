package persistence

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/talkboard/progress-engine/internal/infrastructure/persistence/postgres"
	"github.com/talkboard/progress-engine/internal/infrastructure/persistence/redis"
	"github.com/talkboard/progress-engine/pkg/logger"
	"github.com/talkboard/progress-engine/pkg/retry"
)

// RetryingStore retries failed store calls with backoff.
type RetryingStore struct {
	next    Backend
	retrier *retry.Retrier
}

// WithRetry decorates next so transient failures are retried per cfg.
// Context cancellation and closed backends are never retried.
func WithRetry(next Backend, cfg retry.Config, log *slog.Logger) *RetryingStore {
	log = logger.OrDiscard(log)

	if cfg.RetryIf == nil {
		cfg.RetryIf = Retryable
	}
	if cfg.OnRetry == nil {
		cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
			log.Warn("ledger store call failed, retrying",
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
				logger.Err(err),
			)
		}
	}

	return &RetryingStore{next: next, retrier: retry.NewWithConfig(cfg)}
}

// Retryable reports whether a store error may succeed on another attempt.
func Retryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, redis.ErrStoreClosed),
		errors.Is(err, postgres.ErrConnectionClosed):
		return false
	}
	return true
}

type getResult struct {
	value string
	found bool
}

// Get implements ledger.Store.
func (s *RetryingStore) Get(ctx context.Context, key string) (string, bool, error) {
	r, err := retry.DoWithData(ctx, s.retrier, func(ctx context.Context) (getResult, error) {
		v, found, err := s.next.Get(ctx, key)
		return getResult{value: v, found: found}, err
	})
	if err != nil {
		return "", false, err
	}
	return r.value, r.found, nil
}

// Set implements ledger.Store.
func (s *RetryingStore) Set(ctx context.Context, key, value string) error {
	return s.retrier.Do(ctx, func(ctx context.Context) error {
		return s.next.Set(ctx, key, value)
	})
}

// Remove implements ledger.Store.
func (s *RetryingStore) Remove(ctx context.Context, keys ...string) error {
	return s.retrier.Do(ctx, func(ctx context.Context) error {
		return s.next.Remove(ctx, keys...)
	})
}

// Close closes the wrapped backend.
func (s *RetryingStore) Close() error {
	return s.next.Close()
}
