package gamification_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkboard/progress-engine/internal/application/gamification"
	"github.com/talkboard/progress-engine/internal/domain/shared"
)

func TestStarLedger_BalanceDefaultsToZero(t *testing.T) {
	f := newFixture(t)
	l := gamification.NewStarLedger(f.deps)

	n, err := l.Balance(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStarLedger_BalanceIsSumOfCredits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := gamification.NewStarLedger(f.deps)

	total := 0
	for _, amount := range []int{1, 5, 12, 3, 50} {
		res, err := l.Credit(ctx, amount, "test")
		require.NoError(t, err)
		assert.Equal(t, total, res.PreviousBalance)
		total += amount
		assert.Equal(t, total, res.NewBalance)
		assert.Equal(t, amount, res.AmountCredited)
	}

	n, err := l.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 71, n)
	assert.Equal(t, 5, f.events.count(shared.EventStarsCredited))
}

func TestStarLedger_RejectsNonPositive(t *testing.T) {
	f := newFixture(t)
	l := gamification.NewStarLedger(f.deps)

	for _, amount := range []int{0, -5} {
		res, err := l.Credit(context.Background(), amount, "bad")
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
		assert.Equal(t, gamification.CreditResult{}, res)
	}

	_, written := f.store.Raw(f.keys.Stars())
	assert.False(t, written)
}

func TestStarLedger_StorageFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := gamification.NewStarLedger(f.deps)
	_, err := l.Credit(ctx, 10, "seed")
	require.NoError(t, err)

	f.store.FailGets(errors.New("disk gone"))
	res, err := l.Credit(ctx, 5, "lost")
	assert.True(t, shared.IsStorage(err))
	assert.Zero(t, res.NewBalance)

	n, err := l.Balance(ctx)
	assert.True(t, shared.IsStorage(err))
	assert.Zero(t, n)

	f.store.FailGets(nil)
	raw, _ := f.store.Raw(f.keys.Stars())
	assert.Equal(t, "10", raw)
}

func TestStarLedger_WriteFailure(t *testing.T) {
	f := newFixture(t)
	l := gamification.NewStarLedger(f.deps)
	f.store.FailSets(errors.New("read-only"))

	res, err := l.Credit(context.Background(), 5, "x")
	assert.True(t, shared.IsStorage(err))
	assert.Equal(t, gamification.CreditResult{}, res)
	assert.Zero(t, f.events.count(shared.EventStarsCredited))
}

func TestStarLedger_CorruptBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := gamification.NewStarLedger(f.deps)

	f.store.Put(f.keys.Stars(), "lots")
	_, err := l.Balance(ctx)
	assert.True(t, shared.IsCorrupt(err))

	f.store.Put(f.keys.Stars(), "-3")
	_, err = l.Balance(ctx)
	assert.True(t, shared.IsCorrupt(err))

	require.NoError(t, l.Reset(ctx))
	n, err := l.Balance(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStarLedger_CreditOverwritesCorruptBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := gamification.NewStarLedger(f.deps)
	f.store.Put(f.keys.Stars(), "lots")

	res, err := l.Credit(ctx, 5, "recover")
	require.NoError(t, err)
	assert.Equal(t, 0, res.PreviousBalance)
	assert.Equal(t, 5, res.NewBalance)

	n, err := l.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestStarLedger_ConcurrentCreditsAreNotLost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := gamification.NewStarLedger(f.deps)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Credit(ctx, 2, "race")
		}()
	}
	wg.Wait()

	n, err := l.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200, n)
}
