package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkboard/progress-engine/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 3, cfg.Store.RetryAttempts)
	assert.Equal(t, "talkboard.db", cfg.SQLite.Path)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 5*time.Second, cfg.Redis.DialTimeout)
	assert.Equal(t, config.RewardsConfig{WordSpoken: 1, SentenceFormed: 2, StoryCompleted: 10, QuizCorrect: 5}, cfg.Gamification.Rewards)
	assert.Equal(t, []int{3, 7}, cfg.Gamification.StreakMilestones)
	assert.Equal(t, "talkboard", cfg.Namespace())
	assert.Equal(t, time.Local, cfg.Location())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TALKBOARD_STORE_BACKEND", "redis")
	t.Setenv("TALKBOARD_REDIS_PORT", "6380")
	t.Setenv("TALKBOARD_GAMIFICATION_REWARDS_QUIZ_CORRECT", "8")
	t.Setenv("TALKBOARD_GAMIFICATION_PROFILE_ID", "mia")
	t.Setenv("TALKBOARD_GAMIFICATION_TIMEZONE", "UTC")
	t.Setenv("TALKBOARD_SQLITE_BUSY_TIMEOUT", "2s")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, 8, cfg.Gamification.Rewards.QuizCorrect)
	assert.Equal(t, "talkboard:mia", cfg.Namespace())
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, 2*time.Second, cfg.SQLite.BusyTimeout)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talkboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  backend: postgres
database:
  url: postgres://app:secret@db:5432/talkboard
gamification:
  streak_milestones: [3, 7, 30]
observability:
  log_level: debug
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Backend)
	assert.Equal(t, "postgres://app:secret@db:5432/talkboard", cfg.Database.URL)
	assert.Equal(t, []int{3, 7, 30}, cfg.Gamification.StreakMilestones)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.Equal(t, "talkboard.db", cfg.SQLite.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		errMsg string
	}{
		{
			name:   "unknown backend",
			env:    map[string]string{"TALKBOARD_STORE_BACKEND": "mongo"},
			errMsg: "Backend",
		},
		{
			name:   "postgres without url",
			env:    map[string]string{"TALKBOARD_STORE_BACKEND": "postgres"},
			errMsg: "database.url is required",
		},
		{
			name:   "bad timezone",
			env:    map[string]string{"TALKBOARD_GAMIFICATION_TIMEZONE": "Mars/Olympus"},
			errMsg: "gamification.timezone",
		},
		{
			name:   "bad log level",
			env:    map[string]string{"TALKBOARD_OBSERVABILITY_LOG_LEVEL": "loud"},
			errMsg: "LogLevel",
		},
		{
			name:   "negative reward",
			env:    map[string]string{"TALKBOARD_GAMIFICATION_REWARDS_WORD_SPOKEN": "-1"},
			errMsg: "WordSpoken",
		},
		{
			name: "memory in production",
			env: map[string]string{
				"TALKBOARD_APP_ENVIRONMENT": "production",
				"TALKBOARD_STORE_BACKEND":   "memory",
			},
			errMsg: "not allowed in production",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidate_StreakMilestonesMustExist(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.Gamification.StreakMilestones = []int{7, 3}
	require.NoError(t, cfg.Validate())

	cfg.Gamification.StreakMilestones = []int{3, 14}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no streak achievement for 14 days")
}
