package gamification_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/talkboard/progress-engine/internal/application/gamification"
	"github.com/talkboard/progress-engine/internal/domain/ledger"
	"github.com/talkboard/progress-engine/internal/domain/progress"
	"github.com/talkboard/progress-engine/internal/domain/shared"
	"github.com/talkboard/progress-engine/internal/infrastructure/persistence/memory"
	"github.com/talkboard/progress-engine/pkg/timeutil"
)

var testNow = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []shared.Event
}

func (r *recorder) Publish(e shared.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) count(t shared.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.EventType() == t {
			n++
		}
	}
	return n
}

type fixture struct {
	store  *memory.Store
	clock  *timeutil.FixedClock
	events *recorder
	deps   gamification.Deps
	keys   ledger.Keys
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:  memory.New(),
		clock:  timeutil.NewFixedClock(testNow),
		events: &recorder{},
		keys:   ledger.NewKeys("test"),
	}
	f.deps = gamification.Deps{
		Store:     f.store,
		Keys:      f.keys,
		Locker:    ledger.NewKeyLocker(),
		Calendar:  timeutil.NewCalendar(f.clock, time.UTC),
		Publisher: f.events,
		ProfileID: "child-1",
	}.Normalize()
	return f
}

func (f *fixture) engine(t *testing.T) *gamification.Engine {
	t.Helper()
	e, err := gamification.New(f.deps, gamification.DefaultEngineConfig())
	require.NoError(t, err)
	return e
}

func ids(defs []progress.Definition) []string {
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.ID)
	}
	return out
}
