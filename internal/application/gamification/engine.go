package gamification

import (
	"context"
	"log/slog"

	"github.com/talkboard/progress-engine/internal/domain/ledger"
	"github.com/talkboard/progress-engine/internal/domain/progress"
	"github.com/talkboard/progress-engine/internal/domain/shared"
	"github.com/talkboard/progress-engine/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENGINE
// The UI-facing facade. Flows compose the components, log failures and
// return neutral defaults so the child never sees an error.
// ══════════════════════════════════════════════════════════════════════════════

// Rewards are the stars credited per activity. A zero reward credits nothing.
type Rewards struct {
	WordSpoken     int
	SentenceFormed int
	StoryCompleted int
	QuizCorrect    int
}

// EngineConfig configures the Engine.
type EngineConfig struct {
	Rewards          Rewards
	StreakMilestones []int

	// TopWordsLimit bounds the dashboard's favourite words list.
	TopWordsLimit int
}

// DefaultEngineConfig returns default configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Rewards: Rewards{
			WordSpoken:     1,
			SentenceFormed: 2,
			StoryCompleted: 10,
			QuizCorrect:    5,
		},
		StreakMilestones: DefaultStreakMilestones,
		TopWordsLimit:    10,
	}
}

// StarsOutcome is the result of crediting stars with a level check.
type StarsOutcome struct {
	Credited bool                  `json:"credited"`
	Amount   int                   `json:"amount"`
	Balance  int                   `json:"balance"`
	LevelUp  progress.LevelUp      `json:"levelUp"`
	Unlocked []progress.Definition `json:"unlocked,omitempty"`
}

// ActionOutcome is everything a UI flow produced.
type ActionOutcome struct {
	// StarsEarned counts the activity reward only; achievement bonuses are
	// carried by the Unlocked definitions.
	StarsEarned int                    `json:"starsEarned"`
	Balance     int                    `json:"balance"`
	Growth      progress.GrowthOutcome `json:"growth"`
	Streak      int                    `json:"streak,omitempty"`
	LevelUp     progress.LevelUp       `json:"levelUp"`
	Unlocked    []progress.Definition  `json:"unlocked,omitempty"`
}

// Dashboard is the parent-facing summary of a profile.
type Dashboard struct {
	Stars             int                    `json:"stars"`
	Level             progress.LevelProgress `json:"level"`
	Streak            progress.StreakState   `json:"streak"`
	StreakActive      bool                   `json:"streakActive"`
	Growth            int                    `json:"growth"`
	GrowthMax         int                    `json:"growthMax"`
	Counters          ActivityCounters       `json:"counters"`
	DistinctWords     int                    `json:"distinctWords"`
	TopWords          []progress.WordUsage   `json:"topWords"`
	Weekly            progress.WeeklyStats   `json:"weekly"`
	UnlockedCount     int                    `json:"unlockedCount"`
	TotalAchievements int                    `json:"totalAchievements"`
}

// Engine composes every gamification component.
type Engine struct {
	deps Deps
	cfg  EngineConfig

	stars        *StarLedger
	achievements *AchievementEngine
	streak       *StreakTracker
	growth       *GrowthEngine
	usage        *UsageAggregator
	counters     *Counters
}

// New creates an Engine. Deps.Store is required.
func New(d Deps, cfg EngineConfig) (*Engine, error) {
	if d.Store == nil {
		return nil, shared.NewDomainError("engine", "New", shared.ErrInvalidInput, "ledger store is required")
	}
	d = d.Normalize()
	d.Logger = d.Logger.With(logger.Component("gamification"))

	def := DefaultEngineConfig()
	if cfg.TopWordsLimit <= 0 {
		cfg.TopWordsLimit = def.TopWordsLimit
	}

	stars := NewStarLedger(d)
	achievements := NewAchievementEngine(d, stars)
	return &Engine{
		deps:         d,
		cfg:          cfg,
		stars:        stars,
		achievements: achievements,
		streak:       NewStreakTracker(d, achievements, cfg.StreakMilestones),
		growth:       NewGrowthEngine(d),
		usage:        NewUsageAggregator(d),
		counters:     NewCounters(d),
	}, nil
}

// Stars returns the star ledger.
func (e *Engine) Stars() *StarLedger { return e.stars }

// Achievements returns the achievement engine.
func (e *Engine) Achievements() *AchievementEngine { return e.achievements }

// Streak returns the streak tracker.
func (e *Engine) Streak() *StreakTracker { return e.streak }

// Growth returns the daily growth engine.
func (e *Engine) Growth() *GrowthEngine { return e.growth }

// Usage returns the usage aggregator.
func (e *Engine) Usage() *UsageAggregator { return e.usage }

// Counters returns the activity counters.
func (e *Engine) Counters() *Counters { return e.counters }

// AddStars credits stars and unlocks level achievements for every level
// reached by the credit.
func (e *Engine) AddStars(ctx context.Context, amount int, reason string) StarsOutcome {
	res, err := e.stars.Credit(ctx, amount, reason)
	if err != nil {
		e.warn("AddStars", err)
		balance, _ := e.stars.Balance(ctx)
		return StarsOutcome{Balance: balance}
	}

	out := StarsOutcome{
		Credited: true,
		Amount:   res.AmountCredited,
		Balance:  res.NewBalance,
	}
	out.LevelUp, out.Unlocked = e.checkLevel(ctx, res.PreviousBalance, res.NewBalance)
	return out
}

// StartSession evaluates the daily streak. Call it on every app foreground.
func (e *Engine) StartSession(ctx context.Context) ActionOutcome {
	return e.flow(ctx, "StartSession", func(out *ActionOutcome) {
		res, err := e.streak.touch(ctx)
		if err != nil {
			e.warn("StartSession", err)
			return
		}
		out.Streak = res.Streak
		out.Unlocked = append(out.Unlocked, definitions(res.Unlocked)...)
	})
}

// WordSpoken records a spoken vocabulary item.
func (e *Engine) WordSpoken(ctx context.Context, itemID, label string) ActionOutcome {
	return e.flow(ctx, "WordSpoken", func(out *ActionOutcome) {
		usage, err := e.usage.RecordUsage(ctx, itemID, label)
		if err != nil {
			e.warn("WordSpoken", err)
			// A blank item is not a word; anything else still earns.
			if shared.IsValidation(err) {
				return
			}
		} else if usage.FirstUse {
			e.unlockAt(ctx, out, progress.CategoryWord, usage.DistinctWords)
		}
		e.grow(ctx, out, progress.ActionWordUsed, "word:"+itemID)
		e.earn(ctx, out, e.cfg.Rewards.WordSpoken, "word_spoken")
	})
}

// SentenceFormed records a sentence built on the board.
func (e *Engine) SentenceFormed(ctx context.Context) ActionOutcome {
	return e.flow(ctx, "SentenceFormed", func(out *ActionOutcome) {
		if _, err := e.counters.Increment(ctx, CounterSentencesFormed); err != nil {
			e.warn("SentenceFormed", err)
		}
		e.grow(ctx, out, progress.ActionSentenceFormed, "sentence")
		e.earn(ctx, out, e.cfg.Rewards.SentenceFormed, "sentence_formed")
	})
}

// StoryCompleted records a finished story.
func (e *Engine) StoryCompleted(ctx context.Context, storyID string) ActionOutcome {
	return e.flow(ctx, "StoryCompleted", func(out *ActionOutcome) {
		n, err := e.counters.Increment(ctx, CounterStoriesCompleted)
		if err != nil {
			e.warn("StoryCompleted", err)
		} else {
			e.unlockAt(ctx, out, progress.CategoryStory, n)
		}
		e.grow(ctx, out, progress.ActionStoryCompleted, "story:"+storyID)
		e.earn(ctx, out, e.cfg.Rewards.StoryCompleted, "story_completed")
	})
}

// QuizAnswered records a quiz answer. Wrong answers change nothing.
func (e *Engine) QuizAnswered(ctx context.Context, correct bool) ActionOutcome {
	if !correct {
		balance, _ := e.stars.Balance(ctx)
		return ActionOutcome{Balance: balance}
	}
	return e.flow(ctx, "QuizAnswered", func(out *ActionOutcome) {
		n, err := e.counters.Increment(ctx, CounterQuizCorrect)
		if err != nil {
			e.warn("QuizAnswered", err)
		} else {
			e.unlockAt(ctx, out, progress.CategoryQuiz, n)
		}
		e.grow(ctx, out, progress.ActionQuizCorrect, "quiz")
		e.earn(ctx, out, e.cfg.Rewards.QuizCorrect, "quiz_correct")
	})
}

// Dashboard gathers every read model. Each part degrades independently.
func (e *Engine) Dashboard(ctx context.Context) Dashboard {
	d := Dashboard{GrowthMax: progress.MaxProgress, TotalAchievements: len(progress.Catalog())}
	var err error

	if d.Stars, err = e.stars.Balance(ctx); err != nil {
		e.warn("Dashboard", err)
	}
	d.Level = progress.LevelProgressFor(d.Stars)

	if d.Streak, err = e.streak.State(ctx); err != nil {
		e.warn("Dashboard", err)
	}
	d.StreakActive = d.Streak.ActiveOn(e.deps.Calendar.Today(), e.deps.Calendar.Yesterday())

	if d.Growth, err = e.growth.Progress(ctx); err != nil {
		e.warn("Dashboard", err)
	}
	if d.Counters, err = e.counters.Get(ctx); err != nil {
		e.warn("Dashboard", err)
	}
	if d.DistinctWords, err = e.usage.DistinctWords(ctx); err != nil {
		e.warn("Dashboard", err)
	}
	if d.TopWords, err = e.usage.TopUsed(ctx, e.cfg.TopWordsLimit); err != nil {
		e.warn("Dashboard", err)
	}
	if d.Weekly, err = e.usage.WeeklyStats(ctx); err != nil {
		e.warn("Dashboard", err)
	}

	unlocked, err := e.achievements.Unlocked(ctx)
	if err != nil {
		e.warn("Dashboard", err)
	}
	d.UnlockedCount = len(unlocked)
	return d
}

// ResetProfile removes every key of the profile in one pass.
func (e *Engine) ResetProfile(ctx context.Context) error {
	keys := e.deps.Keys.All()
	unlock := e.deps.Locker.Lock(keys...)
	err := ledger.Remove(ctx, e.deps.Store, keys...)
	unlock()

	if err != nil {
		e.warn("ResetProfile", err)
		return err
	}

	e.deps.Logger.Info("profile reset", slog.Int("keys", len(keys)))
	e.deps.publish(shared.NewProfileResetEvent(e.deps.ProfileID, e.deps.Calendar.Now(), len(keys)))
	return nil
}

// flow runs fn and then checks for a level-up across everything fn credited,
// including achievement rewards.
func (e *Engine) flow(ctx context.Context, op string, fn func(out *ActionOutcome)) ActionOutcome {
	before, beforeErr := e.stars.Balance(ctx)
	if beforeErr != nil {
		e.warn(op, beforeErr)
	}

	var out ActionOutcome
	fn(&out)

	after, err := e.stars.Balance(ctx)
	if err != nil {
		e.warn(op, err)
		return out
	}
	out.Balance = after

	if beforeErr == nil {
		lu, unlocked := e.checkLevel(ctx, before, after)
		out.LevelUp = lu
		out.Unlocked = append(out.Unlocked, unlocked...)
	}
	return out
}

func (e *Engine) checkLevel(ctx context.Context, before, after int) (progress.LevelUp, []progress.Definition) {
	lu := progress.DetectLevelUp(before, after)
	if !lu.LeveledUp {
		return lu, nil
	}

	e.deps.Logger.Info("level up",
		slog.Int("old_level", lu.OldLevel),
		slog.Int("new_level", lu.NewLevel),
		logger.Stars(after),
	)
	e.deps.publish(shared.NewLevelUpEvent(e.deps.ProfileID, e.deps.Calendar.Now(), lu.OldLevel, lu.NewLevel, after))

	var unlocked []progress.Definition
	for _, level := range lu.LevelsGained() {
		recs, err := e.achievements.CheckThreshold(ctx, progress.CategoryLevel, level)
		if err != nil {
			e.warn("LevelUp", err)
			continue
		}
		unlocked = append(unlocked, definitions(recs)...)
	}
	return lu, unlocked
}

func (e *Engine) unlockAt(ctx context.Context, out *ActionOutcome, category progress.Category, count int) {
	recs, err := e.achievements.CheckThreshold(ctx, category, count)
	if err != nil {
		e.warn("CheckThreshold", err)
		return
	}
	out.Unlocked = append(out.Unlocked, definitions(recs)...)
}

func (e *Engine) grow(ctx context.Context, out *ActionOutcome, action progress.ActionType, reason string) {
	g, err := e.growth.RecordAction(ctx, action, reason)
	if err != nil {
		e.warn("RecordAction", err)
		return
	}
	out.Growth = g
}

func (e *Engine) earn(ctx context.Context, out *ActionOutcome, amount int, reason string) {
	if amount <= 0 {
		return
	}
	res, err := e.stars.Credit(ctx, amount, reason)
	if err != nil {
		e.warn("Credit", err)
		return
	}
	out.StarsEarned += res.AmountCredited
}

func (e *Engine) warn(op string, err error) {
	level := slog.LevelWarn
	if shared.IsValidation(err) {
		level = slog.LevelDebug
	}
	e.deps.Logger.Log(context.Background(), level, "gamification degraded to default",
		logger.Operation(op),
		logger.Err(err),
	)
}

func definitions(recs []progress.UnlockRecord) []progress.Definition {
	if len(recs) == 0 {
		return nil
	}
	out := make([]progress.Definition, 0, len(recs))
	for _, rec := range recs {
		if def, ok := progress.FindDefinition(rec.ID); ok {
			out = append(out, def)
		}
	}
	return out
}
