// Package ledger defines the key-value Ledger Store the progress engine is
// built on, the namespaced keys it owns, and the helpers every component uses
// to read-modify-write its state.
//
// The store is deliberately minimal: get, set and remove of text values, no
// transactions and no compare-and-swap. Absent keys mean "default value".
package ledger

import (
	"context"
	"strings"
)

// Store is the persistence capability consumed by the engine.
// Implementations live under internal/infrastructure/persistence.
type Store interface {
	// Get returns the value stored under key. found is false when the key
	// is absent; err is reserved for I/O failures.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes every given key. Missing keys are not an error.
	Remove(ctx context.Context, keys ...string) error
}

// DefaultNamespace prefixes every key when no namespace is configured.
const DefaultNamespace = "talkboard"

// Keys builds the fixed, namespaced keys owned by the engine.
type Keys struct {
	prefix string
}

// NewKeys creates Keys under the given namespace.
func NewKeys(namespace string) Keys {
	namespace = strings.TrimSuffix(strings.TrimSpace(namespace), ":")
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return Keys{prefix: namespace + ":"}
}

func (k Keys) key(name string) string { return k.prefix + name }

// Stars holds the star balance.
func (k Keys) Stars() string { return k.key("stars") }

// Achievements holds the unlocked achievement map.
func (k Keys) Achievements() string { return k.key("achievements") }

// Streak holds the streak state.
func (k Keys) Streak() string { return k.key("streak") }

// GrowthProgress holds today's growth meter value.
func (k Keys) GrowthProgress() string { return k.key("growth:progress") }

// GrowthActions holds today's per-action counters.
func (k Keys) GrowthActions() string { return k.key("growth:actions") }

// GrowthLastReset holds the day the growth meter was last reset.
func (k Keys) GrowthLastReset() string { return k.key("growth:last_reset") }

// WordUsage holds per-word usage records.
func (k Keys) WordUsage() string { return k.key("usage:words") }

// DailyUsage holds per-day usage aggregates.
func (k Keys) DailyUsage() string { return k.key("usage:daily") }

// Counters holds running activity counters (stories, quiz answers, sentences).
func (k Keys) Counters() string { return k.key("counters") }

// All returns every key owned by the engine, for full-profile deletion.
func (k Keys) All() []string {
	return []string{
		k.Stars(),
		k.Achievements(),
		k.Streak(),
		k.GrowthProgress(),
		k.GrowthActions(),
		k.GrowthLastReset(),
		k.WordUsage(),
		k.DailyUsage(),
		k.Counters(),
	}
}
