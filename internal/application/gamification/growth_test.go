package gamification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkboard/progress-engine/internal/application/gamification"
	"github.com/talkboard/progress-engine/internal/domain/ledger"
	"github.com/talkboard/progress-engine/internal/domain/progress"
	"github.com/talkboard/progress-engine/internal/domain/shared"
)

func TestGrowth_FreshProgressIsZero(t *testing.T) {
	f := newFixture(t)
	g := gamification.NewGrowthEngine(f.deps)

	p, err := g.Progress(context.Background())
	require.NoError(t, err)
	assert.Zero(t, p)

	last, _ := f.store.Raw(f.keys.GrowthLastReset())
	assert.Equal(t, "2026-03-10", last)
}

func TestGrowth_WordUsedUnits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := gamification.NewGrowthEngine(f.deps)

	var grantedOn []int
	for i := 1; i <= 16; i++ {
		out, err := g.RecordAction(ctx, progress.ActionWordUsed, "test")
		require.NoError(t, err)
		if out.UnitGranted {
			grantedOn = append(grantedOn, i)
		}
	}

	assert.Equal(t, []int{5, 10, 15}, grantedOn)
	p, err := g.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, p)
	assert.Equal(t, 3, f.events.count(shared.EventGrowthUnitGranted))
}

func TestGrowth_NeverExceedsMax(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := gamification.NewGrowthEngine(f.deps)

	actions := progress.ActionTypes()
	for i := 0; i < 60; i++ {
		out, err := g.RecordAction(ctx, actions[i%len(actions)], "mix")
		require.NoError(t, err)
		assert.LessOrEqual(t, out.Progress, progress.MaxProgress)
	}

	p, _ := g.Progress(ctx)
	assert.Equal(t, progress.MaxProgress, p)

	_, setsBefore := f.store.Counts()
	out, err := g.RecordAction(ctx, progress.ActionQuizCorrect, "full")
	require.NoError(t, err)
	_, setsAfter := f.store.Counts()

	assert.True(t, out.MaxReached)
	assert.False(t, out.UnitGranted)
	assert.Equal(t, setsBefore, setsAfter)
}

func TestGrowth_RolloverOnNewDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := gamification.NewGrowthEngine(f.deps)

	require.NoError(t, ledger.WriteInt(ctx, f.store, f.keys.GrowthProgress(), 6))
	require.NoError(t, ledger.WriteJSON(ctx, f.store, f.keys.GrowthActions(),
		map[progress.ActionType]int{progress.ActionQuizCorrect: 2, progress.ActionWordUsed: 9}))
	require.NoError(t, ledger.WriteString(ctx, f.store, f.keys.GrowthLastReset(), "2026-03-09"))

	out, err := g.RecordAction(ctx, progress.ActionQuizCorrect, "new day")
	require.NoError(t, err)
	assert.True(t, out.UnitGranted)
	assert.Equal(t, 1, out.Progress)
	assert.Equal(t, 1, out.ActionCount)

	rolled, err := g.RolloverIfNewDay(ctx)
	require.NoError(t, err)
	assert.False(t, rolled)

	f.clock.AddDays(1)
	rolled, err = g.RolloverIfNewDay(ctx)
	require.NoError(t, err)
	assert.True(t, rolled)

	s, err := g.State(ctx)
	require.NoError(t, err)
	assert.Zero(t, s.Progress)
	assert.Empty(t, s.ActionCounts)
	assert.Equal(t, "2026-03-11", s.LastResetDate)
}

func TestGrowth_ProgressRollsOverFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := gamification.NewGrowthEngine(f.deps)

	require.NoError(t, ledger.WriteInt(ctx, f.store, f.keys.GrowthProgress(), 8))
	require.NoError(t, ledger.WriteString(ctx, f.store, f.keys.GrowthLastReset(), "2026-03-01"))

	p, err := g.Progress(ctx)
	require.NoError(t, err)
	assert.Zero(t, p)
}

func TestGrowth_UnknownAction(t *testing.T) {
	f := newFixture(t)
	g := gamification.NewGrowthEngine(f.deps)

	out, err := g.RecordAction(context.Background(), progress.ActionType("JUMP"), "")
	assert.ErrorIs(t, err, shared.ErrUnknownAction)
	assert.Equal(t, progress.GrowthOutcome{}, out)
	assert.Empty(t, f.store.Keys())
}

func TestGrowth_StorageFailureIsNeutral(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := gamification.NewGrowthEngine(f.deps)
	f.store.FailGets(errors.New("io"))

	out, err := g.RecordAction(ctx, progress.ActionStoryCompleted, "x")
	assert.True(t, shared.IsStorage(err))
	assert.Equal(t, progress.GrowthOutcome{}, out)

	p, err := g.Progress(ctx)
	assert.Error(t, err)
	assert.Zero(t, p)
}

func TestGrowth_Reset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := gamification.NewGrowthEngine(f.deps)

	_, err := g.RecordAction(ctx, progress.ActionStoryCompleted, "x")
	require.NoError(t, err)
	require.NoError(t, g.Reset(ctx))

	s, err := g.State(ctx)
	require.NoError(t, err)
	assert.Zero(t, s.Progress)
	assert.Empty(t, s.ActionCounts)
}

func TestGrowth_CorruptValuesRecoverSameDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := gamification.NewGrowthEngine(f.deps)

	f.store.Put(f.keys.GrowthProgress(), "3")
	f.store.Put(f.keys.GrowthActions(), "{oops")
	f.store.Put(f.keys.GrowthLastReset(), "2026-03-10")

	out, err := g.RecordAction(ctx, progress.ActionQuizCorrect, "quiz")
	require.NoError(t, err)
	assert.True(t, out.UnitGranted)
	assert.Equal(t, 4, out.Progress)

	counts, err := ledger.ReadJSON(ctx, f.store, f.keys.GrowthActions(), map[progress.ActionType]int{})
	require.NoError(t, err)
	assert.Equal(t, map[progress.ActionType]int{progress.ActionQuizCorrect: 1}, counts)
}

func TestGrowth_CorruptValuesRecoverAcrossDays(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := gamification.NewGrowthEngine(f.deps)

	f.store.Put(f.keys.GrowthProgress(), "lots")
	f.store.Put(f.keys.GrowthActions(), "{oops")
	f.store.Put(f.keys.GrowthLastReset(), "2026-03-09")

	for day := 0; day < 3; day++ {
		out, err := g.RecordAction(ctx, progress.ActionQuizCorrect, "quiz")
		require.NoError(t, err, "day %d", day)
		assert.True(t, out.UnitGranted, "day %d", day)

		p, err := g.Progress(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, p, "day %d", day)

		f.clock.AddDays(1)
	}

	raw, _ := f.store.Raw(f.keys.GrowthActions())
	assert.NotEqual(t, "{oops", raw)
}
