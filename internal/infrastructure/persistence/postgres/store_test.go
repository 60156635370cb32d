package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkboard/progress-engine/internal/domain/ledger"
	"github.com/talkboard/progress-engine/internal/infrastructure/persistence/postgres"
)

const testDatabaseURLEnv = "TALKBOARD_TEST_DATABASE_URL"

func openTestStore(t *testing.T) *postgres.Store {
	t.Helper()

	url := os.Getenv(testDatabaseURLEnv)
	if url == "" {
		t.Skipf("%s not set - skipping postgres integration test", testDatabaseURLEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := postgres.Open(ctx, postgres.Config{URL: url})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestConfig_DSN(t *testing.T) {
	cfg := postgres.DefaultConfig()
	cfg.Password = "secret"

	assert.Equal(t,
		"host=localhost port=5432 dbname=talkboard user=postgres password=secret sslmode=disable connect_timeout=10",
		cfg.DSN())

	cfg.URL = "postgres://u:p@db:5432/x"
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DSN())
}

func TestConfig_PoolConfig(t *testing.T) {
	cfg := postgres.DefaultConfig()
	pc, err := cfg.PoolConfig()
	require.NoError(t, err)
	assert.Equal(t, int32(4), pc.MaxConns)
	assert.Equal(t, time.Hour, pc.MaxConnLifetime)
}

func TestMigrations_Ordered(t *testing.T) {
	migs := postgres.Migrations()
	require.NotEmpty(t, migs)
	for i, m := range migs {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, m.UpSQL, m.Name)
		assert.NotEmpty(t, m.DownSQL, m.Name)
	}
}

func TestStore_Integration(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	keys := ledger.NewKeys("it-" + uuid.NewString())
	t.Cleanup(func() { _ = s.Remove(context.Background(), keys.All()...) })

	_, found, err := s.Get(ctx, keys.Stars())
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, ledger.WriteInt(ctx, s, keys.Stars(), 5))
	require.NoError(t, ledger.WriteInt(ctx, s, keys.Stars(), 12))
	n, err := ledger.ReadInt(ctx, s, keys.Stars())
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	require.NoError(t, s.Remove(ctx, keys.All()...))
	_, found, err = s.Get(ctx, keys.Stars())
	require.NoError(t, err)
	assert.False(t, found)
}

var _ ledger.Store = (*postgres.Store)(nil)
