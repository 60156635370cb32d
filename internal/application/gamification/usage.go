package gamification

import (
	"context"
	"fmt"
	"strings"

	"github.com/talkboard/progress-engine/internal/domain/ledger"
	"github.com/talkboard/progress-engine/internal/domain/progress"
	"github.com/talkboard/progress-engine/internal/domain/shared"
)

// WeekLength is the number of days covered by WeeklyStats.
const WeekLength = 7

// UsageResult describes one recorded usage.
type UsageResult struct {
	Record progress.WordUsage

	// FirstUse is true the first time the item is ever used.
	FirstUse      bool
	DistinctWords int
	Today         progress.DailyUsage
}

// UsageAggregator owns the word-usage map and the per-day rollups.
type UsageAggregator struct {
	deps Deps
}

// NewUsageAggregator creates a UsageAggregator.
func NewUsageAggregator(d Deps) *UsageAggregator {
	return &UsageAggregator{deps: d.Normalize()}
}

// RecordUsage counts one use of a vocabulary item today.
func (u *UsageAggregator) RecordUsage(ctx context.Context, itemID, label string) (UsageResult, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return UsageResult{}, shared.NewDomainError("usage", "RecordUsage", shared.ErrEmptyValue, "item id is required")
	}

	wordsKey, dailyKey := u.deps.Keys.WordUsage(), u.deps.Keys.DailyUsage()
	unlock := u.deps.Locker.Lock(wordsKey, dailyKey)
	defer unlock()

	words, err := u.words(ctx)
	if err = u.deps.recoverCorrupt("usage.RecordUsage", err); err != nil {
		return UsageResult{}, err
	}
	daily, err := u.daily(ctx)
	if err = u.deps.recoverCorrupt("usage.RecordUsage", err); err != nil {
		return UsageResult{}, err
	}

	now := u.deps.Calendar.Now()
	day := u.deps.Calendar.DayKey(now)
	_, seen := words[itemID]

	rec := words.Record(itemID, label, now, day)
	agg := daily.Record(itemID, day)

	if err := ledger.WriteJSON(ctx, u.deps.Store, wordsKey, words); err != nil {
		return UsageResult{}, fmt.Errorf("usage: record %s: %w", itemID, err)
	}
	if err := ledger.WriteJSON(ctx, u.deps.Store, dailyKey, daily); err != nil {
		return UsageResult{}, fmt.Errorf("usage: record %s: %w", itemID, err)
	}

	return UsageResult{
		Record:        rec,
		FirstUse:      !seen,
		DistinctWords: words.DistinctWords(),
		Today:         agg,
	}, nil
}

// TopUsed returns the most used items, count descending, ties by item ID.
// A non-positive limit returns every item.
func (u *UsageAggregator) TopUsed(ctx context.Context, limit int) ([]progress.WordUsage, error) {
	words, err := u.words(ctx)
	if err != nil {
		return nil, err
	}
	return progress.TopUsed(words, limit), nil
}

// WeeklyStats summarizes today and the six days before it, oldest first.
func (u *UsageAggregator) WeeklyStats(ctx context.Context) (progress.WeeklyStats, error) {
	daily, err := u.daily(ctx)
	if err != nil {
		return progress.ComputeWeekly(nil, u.deps.Calendar.LastNDays(WeekLength), u.deps.Calendar.WeekdayLabel), err
	}
	return progress.ComputeWeekly(daily, u.deps.Calendar.LastNDays(WeekLength), u.deps.Calendar.WeekdayLabel), nil
}

// DistinctWords returns the number of items ever used.
func (u *UsageAggregator) DistinctWords(ctx context.Context) (int, error) {
	words, err := u.words(ctx)
	if err != nil {
		return 0, err
	}
	return words.DistinctWords(), nil
}

func (u *UsageAggregator) words(ctx context.Context) (progress.WordUsageMap, error) {
	m, err := ledger.ReadJSON(ctx, u.deps.Store, u.deps.Keys.WordUsage(), progress.WordUsageMap{})
	if err != nil {
		return progress.WordUsageMap{}, fmt.Errorf("usage: words: %w", err)
	}
	if m == nil {
		m = progress.WordUsageMap{}
	}
	return m, nil
}

func (u *UsageAggregator) daily(ctx context.Context) (progress.DailyUsageMap, error) {
	m, err := ledger.ReadJSON(ctx, u.deps.Store, u.deps.Keys.DailyUsage(), progress.DailyUsageMap{})
	if err != nil {
		return progress.DailyUsageMap{}, fmt.Errorf("usage: daily: %w", err)
	}
	if m == nil {
		m = progress.DailyUsageMap{}
	}
	return m, nil
}
