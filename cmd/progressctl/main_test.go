package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkboard/progress-engine/internal/application/gamification"
	"github.com/talkboard/progress-engine/internal/domain/progress"
)

func useTempStore(t *testing.T) {
	t.Helper()
	t.Setenv("TALKBOARD_STORE_BACKEND", "sqlite")
	t.Setenv("TALKBOARD_SQLITE_PATH", filepath.Join(t.TempDir(), "ledger.db"))
	t.Setenv("TALKBOARD_GAMIFICATION_TIMEZONE", "UTC")
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestRun_Usage(t *testing.T) {
	_, err := runCmd(t)
	assert.ErrorIs(t, err, errUsage)

	_, err = runCmd(t, "launch")
	assert.ErrorIs(t, err, errUsage)
}

func TestRun_ActivitiesPersistAcrossInvocations(t *testing.T) {
	useTempStore(t)

	out, err := runCmd(t, "word", "-id", "apple", "-label", "Apple")
	require.NoError(t, err)
	var word gamification.ActionOutcome
	require.NoError(t, json.Unmarshal([]byte(out), &word))
	assert.Equal(t, 1, word.StarsEarned)
	require.Len(t, word.Unlocked, 1)
	assert.Equal(t, progress.AchievementFirstWord, word.Unlocked[0].ID)

	_, err = runCmd(t, "quiz")
	require.NoError(t, err)

	out, err = runCmd(t, "dashboard")
	require.NoError(t, err)
	var d gamification.Dashboard
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, 16, d.Stars)
	assert.Equal(t, 1, d.DistinctWords)
	assert.Equal(t, 2, d.UnlockedCount)
	assert.Equal(t, 1, d.Growth)
}

func TestRun_Reports(t *testing.T) {
	useTempStore(t)

	for _, id := range []string{"more", "eat", "more"} {
		_, err := runCmd(t, "word", "-id", id)
		require.NoError(t, err)
	}

	out, err := runCmd(t, "top", "-n", "1")
	require.NoError(t, err)
	var top []progress.WordUsage
	require.NoError(t, json.Unmarshal([]byte(out), &top))
	require.Len(t, top, 1)
	assert.Equal(t, "more", top[0].Label)
	assert.Equal(t, 2, top[0].TotalCount)

	out, err = runCmd(t, "weekly")
	require.NoError(t, err)
	var weekly progress.WeeklyStats
	require.NoError(t, json.Unmarshal([]byte(out), &weekly))
	assert.Equal(t, 3, weekly.TotalWords)
	assert.Equal(t, 2, weekly.UniqueWords)

	out, err = runCmd(t, "achievements")
	require.NoError(t, err)
	var catalog []gamification.AchievementStatus
	require.NoError(t, json.Unmarshal([]byte(out), &catalog))
	assert.Len(t, catalog, len(progress.Catalog()))
}

func TestRun_ActivityFlagValidation(t *testing.T) {
	useTempStore(t)

	_, err := runCmd(t, "word")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCmd(t, "stars", "-amount", "0")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCmd(t, "dashboard", "extra")
	assert.ErrorIs(t, err, errUsage)
}

func TestRun_ResetRequiresPIN(t *testing.T) {
	useTempStore(t)

	_, err := runCmd(t, "stars", "-amount", "30")
	require.NoError(t, err)

	_, err = runCmd(t, "reset", "-pin", "1234")
	assert.ErrorIs(t, err, errPINNotConfigured)

	hash, err := hashPIN("1234")
	require.NoError(t, err)
	t.Setenv("TALKBOARD_GAMIFICATION_PARENT_PIN_HASH", hash)

	_, err = runCmd(t, "reset", "-pin", "9999")
	assert.ErrorIs(t, err, errWrongPIN)

	out, err := runCmd(t, "reset", "-pin", "1234")
	require.NoError(t, err)
	assert.Contains(t, out, "profile reset")

	out, err = runCmd(t, "dashboard")
	require.NoError(t, err)
	var d gamification.Dashboard
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Zero(t, d.Stars)
}

func TestRun_HashPIN(t *testing.T) {
	out, err := runCmd(t, "hash-pin", "-pin", "2468")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(hash, "$2a$"), hash)
	assert.NoError(t, checkPIN(hash, "2468"))

	_, err = runCmd(t, "hash-pin", "-pin", "12")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCmd(t, "hash-pin", "-pin", "12ab")
	assert.ErrorIs(t, err, errUsage)
}
