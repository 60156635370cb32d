package gamification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/talkboard/progress-engine/internal/domain/ledger"
	"github.com/talkboard/progress-engine/internal/domain/progress"
	"github.com/talkboard/progress-engine/internal/domain/shared"
	"github.com/talkboard/progress-engine/pkg/logger"
)

// GrowthEngine owns the daily growth meter: its value, the per-action
// counters and the last reset day.
type GrowthEngine struct {
	deps Deps
}

// NewGrowthEngine creates a GrowthEngine.
func NewGrowthEngine(d Deps) *GrowthEngine {
	return &GrowthEngine{deps: d.Normalize()}
}

func (g *GrowthEngine) keys() []string {
	return []string{
		g.deps.Keys.GrowthProgress(),
		g.deps.Keys.GrowthActions(),
		g.deps.Keys.GrowthLastReset(),
	}
}

// Progress rolls the meter over if a new day started and returns its value.
func (g *GrowthEngine) Progress(ctx context.Context) (int, error) {
	s, err := g.State(ctx)
	if err != nil {
		return 0, err
	}
	return s.Progress, nil
}

// State rolls the meter over if needed and returns the whole daily state.
func (g *GrowthEngine) State(ctx context.Context) (progress.GrowthState, error) {
	unlock := g.deps.Locker.Lock(g.keys()...)
	defer unlock()

	s, _, err := g.rollover(ctx)
	if err != nil {
		return progress.GrowthState{}, err
	}
	return s, nil
}

// RolloverIfNewDay clears the meter and counters when the stored reset day
// differs from today. It reports whether a rollover happened.
func (g *GrowthEngine) RolloverIfNewDay(ctx context.Context) (bool, error) {
	unlock := g.deps.Locker.Lock(g.keys()...)
	defer unlock()

	_, rolled, err := g.rollover(ctx)
	if err != nil {
		return false, err
	}
	return rolled, nil
}

// RecordAction applies one action to today's meter.
func (g *GrowthEngine) RecordAction(ctx context.Context, action progress.ActionType, reason string) (progress.GrowthOutcome, error) {
	if !action.Valid() {
		return progress.GrowthOutcome{}, shared.NewDomainError("growth", "RecordAction",
			shared.ErrUnknownAction, string(action))
	}

	out, err := g.record(ctx, action)
	if err != nil {
		return progress.GrowthOutcome{}, err
	}

	if out.UnitGranted {
		g.deps.Logger.Debug("growth unit granted",
			logger.Action(string(action)),
			slog.String("reason", reason),
			slog.Int("progress", out.Progress),
		)
		g.deps.publish(shared.NewGrowthUnitGrantedEvent(
			g.deps.ProfileID, g.deps.Calendar.Now(), string(action), out.Progress, out.MaxReached, out.Message,
		))
	}
	return out, nil
}

func (g *GrowthEngine) record(ctx context.Context, action progress.ActionType) (progress.GrowthOutcome, error) {
	unlock := g.deps.Locker.Lock(g.keys()...)
	defer unlock()

	s, _, err := g.rollover(ctx)
	if err != nil {
		return progress.GrowthOutcome{}, err
	}

	next, out := s.Apply(action)
	if !out.Recorded {
		return out, nil
	}

	if err := ledger.WriteJSON(ctx, g.deps.Store, g.deps.Keys.GrowthActions(), next.ActionCounts); err != nil {
		return progress.GrowthOutcome{}, fmt.Errorf("growth: record %s: %w", action, err)
	}
	if out.UnitGranted {
		if err := ledger.WriteInt(ctx, g.deps.Store, g.deps.Keys.GrowthProgress(), next.Progress); err != nil {
			return progress.GrowthOutcome{}, fmt.Errorf("growth: record %s: %w", action, err)
		}
	}
	return out, nil
}

// Reset clears today's meter. The next access starts a fresh day.
func (g *GrowthEngine) Reset(ctx context.Context) error {
	unlock := g.deps.Locker.Lock(g.keys()...)
	defer unlock()

	if err := ledger.Remove(ctx, g.deps.Store, g.keys()...); err != nil {
		return fmt.Errorf("growth: reset: %w", err)
	}
	return nil
}

// rollover must be called with the growth keys locked.
func (g *GrowthEngine) rollover(ctx context.Context) (progress.GrowthState, bool, error) {
	s, err := g.load(ctx)
	if err != nil {
		return progress.GrowthState{}, false, err
	}

	today := g.deps.Calendar.Today()
	next, rolled := s.Rollover(today)
	if !rolled {
		return s, false, nil
	}

	// The reset day is written last so a partial failure rolls over again.
	if err := ledger.WriteInt(ctx, g.deps.Store, g.deps.Keys.GrowthProgress(), 0); err != nil {
		return progress.GrowthState{}, false, fmt.Errorf("growth: rollover: %w", err)
	}
	if err := ledger.WriteJSON(ctx, g.deps.Store, g.deps.Keys.GrowthActions(), next.ActionCounts); err != nil {
		return progress.GrowthState{}, false, fmt.Errorf("growth: rollover: %w", err)
	}
	if err := ledger.WriteString(ctx, g.deps.Store, g.deps.Keys.GrowthLastReset(), today); err != nil {
		return progress.GrowthState{}, false, fmt.Errorf("growth: rollover: %w", err)
	}

	g.deps.Logger.Debug("growth meter rolled over",
		logger.Day(today),
		slog.String("previous_day", s.LastResetDate),
	)
	return next, true, nil
}

// load reads the three growth keys. An undecodable progress or counter value
// reads as its default so the day can still roll over and be rewritten.
func (g *GrowthEngine) load(ctx context.Context) (progress.GrowthState, error) {
	p, err := ledger.ReadInt(ctx, g.deps.Store, g.deps.Keys.GrowthProgress())
	if err = g.deps.recoverCorrupt("growth.load", err); err != nil {
		return progress.GrowthState{}, fmt.Errorf("growth: load: %w", err)
	}
	counts, err := ledger.ReadJSON(ctx, g.deps.Store, g.deps.Keys.GrowthActions(), map[progress.ActionType]int{})
	if err = g.deps.recoverCorrupt("growth.load", err); err != nil {
		return progress.GrowthState{}, fmt.Errorf("growth: load: %w", err)
	}
	last, err := ledger.ReadString(ctx, g.deps.Store, g.deps.Keys.GrowthLastReset())
	if err != nil {
		return progress.GrowthState{}, fmt.Errorf("growth: load: %w", err)
	}

	if counts == nil {
		counts = map[progress.ActionType]int{}
	}
	return progress.GrowthState{
		Progress:      min(max(p, 0), progress.MaxProgress),
		LastResetDate: last,
		ActionCounts:  counts,
	}, nil
}
