package gamification_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkboard/progress-engine/internal/application/gamification"
	"github.com/talkboard/progress-engine/internal/domain/shared"
)

func TestCounters_Increment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := gamification.NewCounters(f.deps)

	for want := 1; want <= 3; want++ {
		n, err := c.Increment(ctx, gamification.CounterQuizCorrect)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	v, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, gamification.ActivityCounters{QuizCorrect: 3}, v)

	_, err = c.Increment(ctx, gamification.Counter("naps"))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCounters_CorruptValueRecovers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := gamification.NewCounters(f.deps)
	f.store.Put(f.keys.Counters(), "{\"storiesCompleted\":")

	_, err := c.Get(ctx)
	assert.True(t, shared.IsCorrupt(err))

	n, err := c.Increment(ctx, gamification.CounterStoriesCompleted)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	v, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v.StoriesCompleted)
}
