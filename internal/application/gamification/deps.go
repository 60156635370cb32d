// Package gamification wires the pure progress rules to the Ledger Store.
//
// Each component owns its keys and performs read-modify-write on them under
// a shared ledger.KeyLocker. Components return (value, error) where value is
// always the neutral default when err is non-nil; the Engine facade is the
// boundary that logs errors and hands only defaults to the UI.
package gamification

import (
	"log/slog"

	"github.com/talkboard/progress-engine/internal/domain/ledger"
	"github.com/talkboard/progress-engine/internal/domain/shared"
	"github.com/talkboard/progress-engine/pkg/logger"
	"github.com/talkboard/progress-engine/pkg/timeutil"
)

// DefaultProfileID is used for events when no profile is configured.
const DefaultProfileID = "default"

// Deps are the collaborators shared by every component.
// Store is required; everything else has a usable default.
type Deps struct {
	Store     ledger.Store
	Keys      ledger.Keys
	Locker    *ledger.KeyLocker
	Calendar  *timeutil.Calendar
	Publisher shared.EventPublisher
	Logger    *slog.Logger
	ProfileID string
}

// Normalize fills unset collaborators with defaults. Components built from
// the same normalized Deps share one locker.
func (d Deps) Normalize() Deps {
	if d.Keys == (ledger.Keys{}) {
		d.Keys = ledger.NewKeys(ledger.DefaultNamespace)
	}
	if d.Locker == nil {
		d.Locker = ledger.NewKeyLocker()
	}
	if d.Calendar == nil {
		d.Calendar = timeutil.NewCalendar(nil, nil)
	}
	if d.Publisher == nil {
		d.Publisher = shared.NopPublisher{}
	}
	d.Logger = logger.OrDiscard(d.Logger)
	if d.ProfileID == "" {
		d.ProfileID = DefaultProfileID
	}
	return d
}

// recoverCorrupt lets a read-modify-write continue from the default value
// when the stored value cannot be decoded; the write that follows replaces
// it. Storage failures are returned unchanged.
func (d Deps) recoverCorrupt(op string, err error) error {
	if err == nil || !shared.IsCorrupt(err) {
		return err
	}
	d.Logger.Warn("corrupt ledger value reset to default",
		logger.Operation(op),
		logger.Err(err),
	)
	return nil
}

func (d Deps) publish(event shared.Event) {
	if err := d.Publisher.Publish(event); err != nil {
		d.Logger.Warn("event handler failed",
			slog.String("event_type", string(event.EventType())),
			logger.Err(err),
		)
	}
}
