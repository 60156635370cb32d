package persistence

import (
	"context"
	"log/slog"

	"github.com/talkboard/progress-engine/pkg/circuitbreaker"
	"github.com/talkboard/progress-engine/pkg/logger"
)

// BreakingStore rejects store calls while its circuit breaker is open.
type BreakingStore struct {
	next    Backend
	breaker *circuitbreaker.CircuitBreaker
}

// WithBreaker decorates next with a circuit breaker. Cancelled or timed-out
// calls do not count as backend failures.
func WithBreaker(next Backend, cfg circuitbreaker.Config, log *slog.Logger) *BreakingStore {
	log = logger.OrDiscard(log)

	if cfg.IsFailure == nil {
		cfg.IsFailure = Retryable
	}
	if cfg.OnStateChange == nil {
		cfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
			log.Warn("ledger store circuit changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		}
	}
	return &BreakingStore{next: next, breaker: circuitbreaker.New(cfg)}
}

// Breaker exposes the breaker for health reporting.
func (s *BreakingStore) Breaker() *circuitbreaker.CircuitBreaker {
	return s.breaker
}

// Get implements ledger.Store.
func (s *BreakingStore) Get(ctx context.Context, key string) (value string, found bool, err error) {
	err = s.breaker.Execute(ctx, func(ctx context.Context) error {
		var getErr error
		value, found, getErr = s.next.Get(ctx, key)
		return getErr
	})
	return value, found, err
}

// Set implements ledger.Store.
func (s *BreakingStore) Set(ctx context.Context, key, value string) error {
	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.next.Set(ctx, key, value)
	})
}

// Remove implements ledger.Store.
func (s *BreakingStore) Remove(ctx context.Context, keys ...string) error {
	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.next.Remove(ctx, keys...)
	})
}

// Close closes the wrapped backend.
func (s *BreakingStore) Close() error {
	return s.next.Close()
}
