package gamification

import (
	"context"
	"fmt"

	"github.com/talkboard/progress-engine/internal/domain/ledger"
	"github.com/talkboard/progress-engine/internal/domain/shared"
)

// Counter names a lifetime activity counter.
type Counter string

const (
	CounterStoriesCompleted Counter = "storiesCompleted"
	CounterQuizCorrect      Counter = "quizCorrect"
	CounterSentencesFormed  Counter = "sentencesFormed"
)

// ActivityCounters are the lifetime totals that feed story and quiz
// achievements.
type ActivityCounters struct {
	StoriesCompleted int `json:"storiesCompleted"`
	QuizCorrect      int `json:"quizCorrect"`
	SentencesFormed  int `json:"sentencesFormed"`
}

func (c *ActivityCounters) field(name Counter) *int {
	switch name {
	case CounterStoriesCompleted:
		return &c.StoriesCompleted
	case CounterQuizCorrect:
		return &c.QuizCorrect
	case CounterSentencesFormed:
		return &c.SentencesFormed
	}
	return nil
}

// Counters owns the lifetime activity counters.
type Counters struct {
	deps Deps
}

// NewCounters creates a Counters component.
func NewCounters(d Deps) *Counters {
	return &Counters{deps: d.Normalize()}
}

// Get returns the current totals.
func (c *Counters) Get(ctx context.Context) (ActivityCounters, error) {
	v, err := ledger.ReadJSON(ctx, c.deps.Store, c.deps.Keys.Counters(), ActivityCounters{})
	if err != nil {
		return ActivityCounters{}, fmt.Errorf("counters: get: %w", err)
	}
	return v, nil
}

// Increment adds one to a counter and returns its new value.
func (c *Counters) Increment(ctx context.Context, name Counter) (int, error) {
	if (&ActivityCounters{}).field(name) == nil {
		return 0, shared.NewDomainError("counters", "Increment", shared.ErrInvalidInput, "unknown counter "+string(name))
	}

	key := c.deps.Keys.Counters()
	unlock := c.deps.Locker.Lock(key)
	defer unlock()

	v, err := c.Get(ctx)
	if err = c.deps.recoverCorrupt("counters.Increment", err); err != nil {
		return 0, err
	}

	p := v.field(name)
	*p++
	if err := ledger.WriteJSON(ctx, c.deps.Store, key, v); err != nil {
		return 0, fmt.Errorf("counters: increment %s: %w", name, err)
	}
	return *p, nil
}
