package ledger_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkboard/progress-engine/internal/domain/ledger"
	"github.com/talkboard/progress-engine/internal/domain/shared"
	"github.com/talkboard/progress-engine/internal/infrastructure/persistence/memory"
)

type sample struct {
	Count int    `json:"count"`
	Name  string `json:"name"`
}

func TestKeys_Namespaced(t *testing.T) {
	keys := ledger.NewKeys("child-1:")

	assert.Equal(t, "child-1:stars", keys.Stars())
	assert.Equal(t, "child-1:growth:last_reset", keys.GrowthLastReset())
	for _, k := range keys.All() {
		assert.True(t, strings.HasPrefix(k, "child-1:"), k)
	}
	assert.Len(t, keys.All(), 9)

	assert.Equal(t, "talkboard:stars", ledger.NewKeys("  ").Stars())
}

func TestReadJSON_AbsentYieldsDefault(t *testing.T) {
	s := memory.New()
	v, err := ledger.ReadJSON(context.Background(), s, "k", sample{Name: "default"})

	require.NoError(t, err)
	assert.Equal(t, "default", v.Name)
}

func TestReadJSON_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	require.NoError(t, ledger.WriteJSON(ctx, s, "k", sample{Count: 3, Name: "x"}))
	v, err := ledger.ReadJSON(ctx, s, "k", sample{})

	require.NoError(t, err)
	assert.Equal(t, sample{Count: 3, Name: "x"}, v)
}

func TestReadJSON_CorruptValue(t *testing.T) {
	s := memory.New()
	s.Put("k", "{not json")

	v, err := ledger.ReadJSON(context.Background(), s, "k", sample{Count: 7})

	assert.True(t, shared.IsCorrupt(err))
	assert.Equal(t, 7, v.Count)
}

func TestReadInt_StorageFailure(t *testing.T) {
	s := memory.New()
	s.FailGets(errors.New("io"))

	n, err := ledger.ReadInt(context.Background(), s, "k")

	assert.True(t, shared.IsStorage(err))
	assert.Zero(t, n)
}

func TestReadInt_Corrupt(t *testing.T) {
	s := memory.New()
	s.Put("k", "twelve")

	_, err := ledger.ReadInt(context.Background(), s, "k")
	assert.True(t, shared.IsCorrupt(err))
}

func TestKeyLocker_SerializesIncrements(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	locker := ledger.NewKeyLocker()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock("counter")
			defer unlock()

			n, err := ledger.ReadInt(ctx, s, "counter")
			if err != nil {
				return
			}
			_ = ledger.WriteInt(ctx, s, "counter", n+1)
		}()
	}
	wg.Wait()

	n, err := ledger.ReadInt(ctx, s, "counter")
	require.NoError(t, err)
	assert.Equal(t, 50, n)
}

func TestKeyLocker_MultiKeyNoDeadlock(t *testing.T) {
	locker := ledger.NewKeyLocker()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock := locker.Lock("a", "b")
			unlock()
		}()
		go func() {
			defer wg.Done()
			unlock := locker.Lock("b", "a", "b")
			unlock()
		}()
	}
	wg.Wait()
}
