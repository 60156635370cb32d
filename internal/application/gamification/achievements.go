package gamification

import (
	"context"
	"fmt"

	"github.com/talkboard/progress-engine/internal/domain/ledger"
	"github.com/talkboard/progress-engine/internal/domain/progress"
	"github.com/talkboard/progress-engine/internal/domain/shared"
	"github.com/talkboard/progress-engine/pkg/logger"
)

// AchievementStatus is a catalog entry joined with its unlock state.
type AchievementStatus struct {
	progress.Definition
	Unlocked bool                   `json:"unlocked"`
	Record   *progress.UnlockRecord `json:"record,omitempty"`
}

// AchievementEngine owns the unlocked-achievements map and credits star
// rewards through the StarLedger.
type AchievementEngine struct {
	deps  Deps
	stars *StarLedger
}

// NewAchievementEngine creates an AchievementEngine.
func NewAchievementEngine(d Deps, stars *StarLedger) *AchievementEngine {
	return &AchievementEngine{deps: d.Normalize(), stars: stars}
}

// Unlocked returns every unlock record keyed by achievement ID.
func (e *AchievementEngine) Unlocked(ctx context.Context) (map[string]progress.UnlockRecord, error) {
	m, err := ledger.ReadJSON(ctx, e.deps.Store, e.deps.Keys.Achievements(), map[string]progress.UnlockRecord{})
	if err != nil {
		return map[string]progress.UnlockRecord{}, fmt.Errorf("achievements: list: %w", err)
	}
	if m == nil {
		m = map[string]progress.UnlockRecord{}
	}
	return m, nil
}

// Unlock records an achievement once. It returns nil without side effects
// when the achievement is already unlocked. override replaces the catalog
// definition when non-nil. The star reward is credited after the record is
// persisted; a failed credit is logged and does not undo the unlock.
func (e *AchievementEngine) Unlock(ctx context.Context, id string, override *progress.Definition) (*progress.UnlockRecord, error) {
	def, ok := progress.FindDefinition(id)
	if override != nil {
		def, ok = *override, true
		def.ID = id
	}
	if !ok {
		return nil, shared.NewDomainError("achievements", "Unlock", shared.ErrUnknownAchievement, id)
	}

	rec, err := e.insert(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}

	log := e.deps.Logger.With(logger.Achievement(id))
	log.Info("achievement unlocked", logger.Stars(def.StarReward))

	if def.StarReward > 0 && e.stars != nil {
		if _, err := e.stars.Credit(ctx, def.StarReward, "achievement:"+id); err != nil {
			log.Warn("achievement reward not credited", logger.Err(err))
		}
	}

	e.deps.publish(shared.NewAchievementUnlockedEvent(
		e.deps.ProfileID, rec.UnlockedAt, id, def.Name, def.Icon, def.StarReward,
	))
	return rec, nil
}

func (e *AchievementEngine) insert(ctx context.Context, id string) (*progress.UnlockRecord, error) {
	key := e.deps.Keys.Achievements()
	unlock := e.deps.Locker.Lock(key)
	defer unlock()

	unlocked, err := e.Unlocked(ctx)
	if err = e.deps.recoverCorrupt("achievements.Unlock", err); err != nil {
		return nil, err
	}
	if _, exists := unlocked[id]; exists {
		return nil, nil
	}

	now := e.deps.Calendar.Now()
	rec := progress.UnlockRecord{
		ID:           id,
		UnlockedAt:   now,
		UnlockedDate: e.deps.Calendar.DayKey(now),
	}
	unlocked[id] = rec

	if err := ledger.WriteJSON(ctx, e.deps.Store, key, unlocked); err != nil {
		return nil, fmt.Errorf("achievements: unlock %s: %w", id, err)
	}
	return &rec, nil
}

// CheckThreshold unlocks every catalog entry of the category whose threshold
// equals count exactly. Already-unlocked entries are skipped.
func (e *AchievementEngine) CheckThreshold(ctx context.Context, category progress.Category, count int) ([]progress.UnlockRecord, error) {
	var out []progress.UnlockRecord
	for _, def := range progress.DefinitionsMatching(category, count) {
		rec, err := e.Unlock(ctx, def.ID, nil)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			out = append(out, *rec)
		}
	}
	return out, nil
}

// Catalog returns every definition with its unlock state, in catalog order.
func (e *AchievementEngine) Catalog(ctx context.Context) ([]AchievementStatus, error) {
	unlocked, err := e.Unlocked(ctx)
	if err != nil {
		return nil, err
	}

	defs := progress.Catalog()
	out := make([]AchievementStatus, 0, len(defs))
	for _, def := range defs {
		status := AchievementStatus{Definition: def}
		if rec, ok := unlocked[def.ID]; ok {
			rec := rec
			status.Unlocked = true
			status.Record = &rec
		}
		out = append(out, status)
	}
	return out, nil
}

// Reset removes every unlock record.
func (e *AchievementEngine) Reset(ctx context.Context) error {
	key := e.deps.Keys.Achievements()
	unlock := e.deps.Locker.Lock(key)
	defer unlock()

	if err := ledger.Remove(ctx, e.deps.Store, key); err != nil {
		return fmt.Errorf("achievements: reset: %w", err)
	}
	return nil
}
