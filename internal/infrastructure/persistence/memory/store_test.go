package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetSetRemove(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "a", "1"))
	require.NoError(t, s.Set(ctx, "b", "2"))

	v, found, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1", v)

	require.NoError(t, s.Remove(ctx, "a", "never-set"))
	assert.Equal(t, []string{"b"}, s.Keys())
}

func TestStore_InjectedFailures(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("disk full")

	s.FailSets(boom)
	assert.ErrorIs(t, s.Set(ctx, "a", "1"), boom)
	_, ok := s.Raw("a")
	assert.False(t, ok)

	s.FailSets(nil)
	s.FailGets(boom)
	_, _, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, boom)

	s.FailRemoves(boom)
	assert.ErrorIs(t, s.Remove(ctx, "a"), boom)

	gets, sets := s.Counts()
	assert.Equal(t, 1, gets)
	assert.Equal(t, 1, sets)
}
