package gamification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkboard/progress-engine/internal/application/gamification"
	"github.com/talkboard/progress-engine/internal/domain/progress"
	"github.com/talkboard/progress-engine/internal/domain/shared"
)

func newAchievements(f *fixture) (*gamification.AchievementEngine, *gamification.StarLedger) {
	stars := gamification.NewStarLedger(f.deps)
	return gamification.NewAchievementEngine(f.deps, stars), stars
}

func TestUnlock_IdempotentSingleCredit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, stars := newAchievements(f)

	rec, err := a.Unlock(ctx, progress.AchievementFirstWord, nil)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, progress.AchievementFirstWord, rec.ID)
	assert.Equal(t, testNow, rec.UnlockedAt)
	assert.Equal(t, "2026-03-10", rec.UnlockedDate)

	again, err := a.Unlock(ctx, progress.AchievementFirstWord, nil)
	require.NoError(t, err)
	assert.Nil(t, again)

	unlocked, err := a.Unlocked(ctx)
	require.NoError(t, err)
	assert.Len(t, unlocked, 1)

	def, _ := progress.FindDefinition(progress.AchievementFirstWord)
	balance, err := stars.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, def.StarReward, balance)
	assert.Equal(t, 1, f.events.count(shared.EventStarsCredited))
	assert.Equal(t, 1, f.events.count(shared.EventAchievementUnlocked))
}

func TestUnlock_UnknownID(t *testing.T) {
	f := newFixture(t)
	a, _ := newAchievements(f)

	rec, err := a.Unlock(context.Background(), "moon_landing", nil)
	assert.ErrorIs(t, err, shared.ErrUnknownAchievement)
	assert.Nil(t, rec)
}

func TestUnlock_OverrideDefinition(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, stars := newAchievements(f)

	rec, err := a.Unlock(ctx, "birthday", &progress.Definition{Name: "Birthday", StarReward: 7})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "birthday", rec.ID)

	balance, _ := stars.Balance(ctx)
	assert.Equal(t, 7, balance)
}

func TestUnlock_ZeroRewardDoesNotCredit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, _ := newAchievements(f)

	_, err := a.Unlock(ctx, progress.AchievementLevel2, nil)
	require.NoError(t, err)

	_, written := f.store.Raw(f.keys.Stars())
	assert.False(t, written)
}

func TestUnlock_WriteFailureLeavesNoRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, _ := newAchievements(f)
	f.store.FailSets(errors.New("full"))

	rec, err := a.Unlock(ctx, progress.AchievementFirstStory, nil)
	assert.True(t, shared.IsStorage(err))
	assert.Nil(t, rec)

	f.store.FailSets(nil)
	unlocked, err := a.Unlocked(ctx)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
}

func TestUnlock_CorruptMapRecovers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, stars := newAchievements(f)
	f.store.Put(f.keys.Achievements(), "[1,2")

	_, err := a.Unlocked(ctx)
	assert.True(t, shared.IsCorrupt(err))

	rec, err := a.Unlock(ctx, progress.AchievementFirstQuiz, nil)
	require.NoError(t, err)
	require.NotNil(t, rec)

	unlocked, err := a.Unlocked(ctx)
	require.NoError(t, err)
	assert.Len(t, unlocked, 1)
	assert.Contains(t, unlocked, progress.AchievementFirstQuiz)

	balance, err := stars.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, balance)
}

func TestCheckThreshold_ExactMatchOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, _ := newAchievements(f)

	for _, count := range []int{9, 11} {
		recs, err := a.CheckThreshold(ctx, progress.CategoryQuiz, count)
		require.NoError(t, err)
		assert.Empty(t, recs, "count=%d", count)
	}

	recs, err := a.CheckThreshold(ctx, progress.CategoryQuiz, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, progress.AchievementQuiz10, recs[0].ID)

	recs, err = a.CheckThreshold(ctx, progress.CategoryQuiz, 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestCatalog_JoinsUnlockState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, _ := newAchievements(f)
	_, err := a.Unlock(ctx, progress.AchievementStreak3, nil)
	require.NoError(t, err)

	statuses, err := a.Catalog(ctx)
	require.NoError(t, err)
	assert.Len(t, statuses, len(progress.Catalog()))

	for _, s := range statuses {
		if s.ID == progress.AchievementStreak3 {
			assert.True(t, s.Unlocked)
			require.NotNil(t, s.Record)
			assert.Equal(t, "2026-03-10", s.Record.UnlockedDate)
		} else {
			assert.False(t, s.Unlocked, s.ID)
			assert.Nil(t, s.Record, s.ID)
		}
	}

	require.NoError(t, a.Reset(ctx))
	unlocked, err := a.Unlocked(ctx)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
}
