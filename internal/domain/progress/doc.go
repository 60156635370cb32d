// Package progress holds the pure gamification rules of the engine: level
// derivation, the achievement catalog, streak transitions, the daily growth
// meter and word-usage aggregation.
//
// Nothing in this package touches storage or reads the clock. Every rule is a
// function of explicit inputs (balances, stored day keys, today's day key),
// which keeps day rollover and streak logic testable without real time
// passing. The application layer (internal/application/gamification) loads
// state from the Ledger Store, applies these rules and writes the result back.
//
// Level
//
//	level = floor(stars / 50) + 1
//
// A level-up is detected from the balances before and after a credit:
//
//	lu := progress.DetectLevelUp(40, 55) // {LeveledUp: true, OldLevel: 1, NewLevel: 2}
//
// Daily growth
//
// The growth meter runs from 0 to MaxProgress (8) each calendar day. Every
// action type converts raw actions into meter units at its own rate and may
// contribute at most MaxUnitsPerType units per day:
//
//	state, _ = state.Rollover(today)
//	state, out := state.Apply(progress.ActionWordUsed)
//	if out.UnitGranted { ... }
package progress
