package gamification

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/talkboard/progress-engine/internal/domain/ledger"
	"github.com/talkboard/progress-engine/internal/domain/progress"
	"github.com/talkboard/progress-engine/internal/domain/shared"
	"github.com/talkboard/progress-engine/pkg/logger"
)

// DefaultStreakMilestones are the streak lengths that trigger an achievement
// check.
var DefaultStreakMilestones = []int{3, 7}

// TouchResult describes a streak evaluation.
type TouchResult struct {
	Streak   int
	Best     int
	Changed  bool
	Broken   bool
	Previous int
	Unlocked []progress.UnlockRecord
}

// StreakTracker owns the streak state.
type StreakTracker struct {
	deps         Deps
	achievements *AchievementEngine
	milestones   []int
}

// NewStreakTracker creates a StreakTracker. Empty milestones fall back to
// DefaultStreakMilestones.
func NewStreakTracker(d Deps, achievements *AchievementEngine, milestones []int) *StreakTracker {
	if len(milestones) == 0 {
		milestones = DefaultStreakMilestones
	}
	return &StreakTracker{
		deps:         d.Normalize(),
		achievements: achievements,
		milestones:   slices.Clone(milestones),
	}
}

// State returns the persisted streak state.
func (t *StreakTracker) State(ctx context.Context) (progress.StreakState, error) {
	s, err := ledger.ReadJSON(ctx, t.deps.Store, t.deps.Keys.Streak(), progress.StreakState{})
	if err != nil {
		return progress.StreakState{}, fmt.Errorf("streak: state: %w", err)
	}
	return s, nil
}

// Current returns the streak as it stands today: a streak whose last
// activity is older than yesterday reads as 0.
func (t *StreakTracker) Current(ctx context.Context) (int, error) {
	s, err := t.State(ctx)
	if err != nil {
		return 0, err
	}
	if !s.ActiveOn(t.deps.Calendar.Today(), t.deps.Calendar.Yesterday()) {
		return 0, nil
	}
	return s.CurrentStreak, nil
}

// Touch evaluates the streak for today and returns the resulting streak.
// Repeated calls on the same day return the same value without writing.
func (t *StreakTracker) Touch(ctx context.Context) (int, error) {
	res, err := t.touch(ctx)
	if err != nil {
		return 0, err
	}
	return res.Streak, nil
}

func (t *StreakTracker) touch(ctx context.Context) (TouchResult, error) {
	tr, err := t.advance(ctx)
	if err != nil {
		return TouchResult{}, err
	}

	res := TouchResult{
		Streak:   tr.State.CurrentStreak,
		Best:     tr.State.BestStreak,
		Changed:  tr.Changed,
		Broken:   tr.Broken,
		Previous: tr.Previous,
	}
	if !tr.Changed {
		return res, nil
	}

	t.deps.Logger.Debug("streak advanced",
		slog.Int("previous", tr.Previous),
		slog.Int("current", res.Streak),
		slog.Bool("broken", tr.Broken),
	)
	t.deps.publish(shared.NewStreakUpdatedEvent(
		t.deps.ProfileID, t.deps.Calendar.Now(), tr.Previous, res.Streak, tr.Broken,
	))

	if t.achievements != nil && slices.Contains(t.milestones, res.Streak) {
		unlocked, err := t.achievements.CheckThreshold(ctx, progress.CategoryStreak, res.Streak)
		if err != nil {
			t.deps.Logger.Warn("streak milestone check failed",
				slog.Int("streak", res.Streak),
				logger.Err(err),
			)
		}
		res.Unlocked = unlocked
	}
	return res, nil
}

func (t *StreakTracker) advance(ctx context.Context) (progress.StreakTransition, error) {
	key := t.deps.Keys.Streak()
	unlock := t.deps.Locker.Lock(key)
	defer unlock()

	s, err := t.State(ctx)
	if err = t.deps.recoverCorrupt("streak.Touch", err); err != nil {
		return progress.StreakTransition{}, err
	}

	tr := s.Advance(t.deps.Calendar.Today(), t.deps.Calendar.Yesterday())
	if !tr.Changed {
		return tr, nil
	}
	if err := ledger.WriteJSON(ctx, t.deps.Store, key, tr.State); err != nil {
		return progress.StreakTransition{}, fmt.Errorf("streak: touch: %w", err)
	}
	return tr, nil
}
