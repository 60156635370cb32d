package gamification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/talkboard/progress-engine/internal/domain/ledger"
	"github.com/talkboard/progress-engine/internal/domain/shared"
	"github.com/talkboard/progress-engine/pkg/logger"
)

// CreditResult is returned by a successful credit.
type CreditResult struct {
	NewBalance      int    `json:"newBalance"`
	PreviousBalance int    `json:"previousBalance"`
	AmountCredited  int    `json:"amountCredited"`
	Reason          string `json:"reason"`
}

// StarLedger owns the star balance. It is add-only; the balance moves down
// only through Reset.
type StarLedger struct {
	deps Deps
}

// NewStarLedger creates a StarLedger.
func NewStarLedger(d Deps) *StarLedger {
	return &StarLedger{deps: d.Normalize()}
}

// Balance returns the persisted balance, 0 when unset.
func (l *StarLedger) Balance(ctx context.Context) (int, error) {
	n, err := ledger.ReadInt(ctx, l.deps.Store, l.deps.Keys.Stars())
	if err != nil {
		return 0, fmt.Errorf("stars: balance: %w", err)
	}
	if n < 0 {
		return 0, shared.NewDomainError("stars", "Balance", shared.ErrCorruptValue,
			fmt.Sprintf("negative balance %d", n))
	}
	return n, nil
}

// Credit adds a positive amount to the balance. Non-positive amounts are
// rejected with shared.ErrInvalidAmount and nothing is written.
func (l *StarLedger) Credit(ctx context.Context, amount int, reason string) (CreditResult, error) {
	if amount <= 0 {
		return CreditResult{}, shared.NewDomainError("stars", "Credit", shared.ErrInvalidAmount,
			fmt.Sprintf("cannot credit %d stars", amount))
	}

	res, err := l.credit(ctx, amount, reason)
	if err != nil {
		return CreditResult{}, err
	}

	l.deps.Logger.Debug("stars credited",
		logger.Stars(amount),
		slog.String("reason", reason),
	)
	l.deps.publish(shared.NewStarsCreditedEvent(
		l.deps.ProfileID, l.deps.Calendar.Now(), amount, res.NewBalance, reason,
	))
	return res, nil
}

func (l *StarLedger) credit(ctx context.Context, amount int, reason string) (CreditResult, error) {
	key := l.deps.Keys.Stars()
	unlock := l.deps.Locker.Lock(key)
	defer unlock()

	before, err := l.Balance(ctx)
	if err = l.deps.recoverCorrupt("stars.Credit", err); err != nil {
		return CreditResult{}, err
	}

	after := before + amount
	if err := ledger.WriteInt(ctx, l.deps.Store, key, after); err != nil {
		return CreditResult{}, fmt.Errorf("stars: credit: %w", err)
	}

	return CreditResult{
		NewBalance:      after,
		PreviousBalance: before,
		AmountCredited:  amount,
		Reason:          reason,
	}, nil
}

// Reset removes the balance key.
func (l *StarLedger) Reset(ctx context.Context) error {
	key := l.deps.Keys.Stars()
	unlock := l.deps.Locker.Lock(key)
	defer unlock()

	if err := ledger.Remove(ctx, l.deps.Store, key); err != nil {
		return fmt.Errorf("stars: reset: %w", err)
	}
	return nil
}
