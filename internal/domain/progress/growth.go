package progress

import (
	"fmt"
	"sort"
)

// MaxProgress is the top of the daily growth meter.
const MaxProgress = 8

// ActionType is an activity that can feed the growth meter.
type ActionType string

const (
	ActionWordUsed       ActionType = "WORD_USED"
	ActionSentenceFormed ActionType = "SENTENCE_FORMED"
	ActionStoryCompleted ActionType = "STORY_COMPLETED"
	ActionQuizCorrect    ActionType = "QUIZ_CORRECT"
)

// ActionRule converts raw actions of one type into meter units.
type ActionRule struct {
	ActionsPerUnit  int
	MaxUnitsPerType int
	singular        string
	plural          string
}

var actionRules = map[ActionType]ActionRule{
	ActionWordUsed:       {ActionsPerUnit: 5, MaxUnitsPerType: 3, singular: "word", plural: "words"},
	ActionSentenceFormed: {ActionsPerUnit: 2, MaxUnitsPerType: 2, singular: "sentence", plural: "sentences"},
	ActionStoryCompleted: {ActionsPerUnit: 1, MaxUnitsPerType: 2, singular: "story", plural: "stories"},
	ActionQuizCorrect:    {ActionsPerUnit: 1, MaxUnitsPerType: 2, singular: "quiz answer", plural: "quiz answers"},
}

// Valid reports whether a is a known action type.
func (a ActionType) Valid() bool {
	_, ok := actionRules[a]
	return ok
}

// RuleFor returns the conversion rule of an action type.
func RuleFor(a ActionType) (ActionRule, bool) {
	r, ok := actionRules[a]
	return r, ok
}

// ActionTypes lists every known action type in a stable order.
func ActionTypes() []ActionType {
	out := make([]ActionType, 0, len(actionRules))
	for a := range actionRules {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GrowthState is the daily growth entity. It is persisted under three keys:
// the meter value, the per-action counters and the last reset day.
type GrowthState struct {
	Progress      int
	LastResetDate string
	ActionCounts  map[ActionType]int
}

// NeedsRollover reports whether the state belongs to a day other than today.
func (s GrowthState) NeedsRollover(today string) bool {
	return s.LastResetDate != today
}

// Rollover clears the meter and counters when the stored day differs from
// today. The second return value reports whether a rollover happened.
func (s GrowthState) Rollover(today string) (GrowthState, bool) {
	if !s.NeedsRollover(today) {
		return s, false
	}
	return GrowthState{
		Progress:      0,
		LastResetDate: today,
		ActionCounts:  map[ActionType]int{},
	}, true
}

// GrowthOutcome describes what a single recorded action did to the meter.
type GrowthOutcome struct {
	Progress    int        `json:"progress"`
	UnitGranted bool       `json:"unitGranted"`
	MaxReached  bool       `json:"maxReached"`
	Message     string     `json:"message"`
	Action      ActionType `json:"action"`

	// Recorded is false when the meter was already full and nothing changed.
	Recorded bool `json:"recorded"`

	ActionCount       int  `json:"actionCount"`
	UnitsEarned       int  `json:"unitsEarned"`
	ActionsToNextUnit int  `json:"actionsToNextUnit"`
	TypeCapped        bool `json:"typeCapped"`
}

// Apply records one action against a state that has already been rolled over
// for today. The returned state is the one to persist when Recorded is true.
// Unknown action types leave the state untouched.
//
// A unit is granted iff the new action count is a multiple of the rule's
// ActionsPerUnit and the units earned so far do not exceed MaxUnitsPerType.
// The global MaxProgress cap always wins over per-type caps.
func (s GrowthState) Apply(action ActionType) (GrowthState, GrowthOutcome) {
	rule, ok := actionRules[action]
	out := GrowthOutcome{Action: action, Progress: s.Progress}
	if !ok {
		return s, out
	}

	if s.Progress >= MaxProgress {
		out.MaxReached = true
		out.Message = FullMessage
		return s, out
	}

	counts := make(map[ActionType]int, len(s.ActionCounts)+1)
	for k, v := range s.ActionCounts {
		counts[k] = v
	}
	counts[action]++

	count := counts[action]
	units := count / rule.ActionsPerUnit
	granted := count%rule.ActionsPerUnit == 0 && units <= rule.MaxUnitsPerType

	next := GrowthState{
		Progress:      s.Progress,
		LastResetDate: s.LastResetDate,
		ActionCounts:  counts,
	}

	out.Recorded = true
	out.ActionCount = count
	out.UnitsEarned = min(units, rule.MaxUnitsPerType)
	out.TypeCapped = units >= rule.MaxUnitsPerType

	if granted {
		next.Progress = min(s.Progress+1, MaxProgress)
		out.UnitGranted = true
		out.Progress = next.Progress
		out.MaxReached = next.Progress >= MaxProgress
		out.Message = MilestoneMessage(next.Progress)
		if !out.TypeCapped {
			out.ActionsToNextUnit = rule.ActionsPerUnit
		}
		return next, out
	}

	if !out.TypeCapped {
		out.ActionsToNextUnit = rule.ActionsPerUnit - count%rule.ActionsPerUnit
	}
	out.Message = rule.hint(out.ActionsToNextUnit, out.TypeCapped)
	return next, out
}

// Growth messages shown next to the lion.
const (
	FullMessage      = "Your lion is fully grown today! Come back tomorrow for more."
	CompleteMessage  = "Amazing! Your lion is fully grown today!"
	AlmostMessage    = "Almost there! Your lion is nearly grown."
	HalfwayMessage   = "Halfway there! Your lion is growing strong."
	EncourageMessage = "Great job! Your lion grew a little."
)

// MilestoneMessage returns the message banded by the meter value after a
// unit was granted.
func MilestoneMessage(progress int) string {
	switch {
	case progress >= MaxProgress:
		return CompleteMessage
	case progress >= 6:
		return AlmostMessage
	case progress >= 3:
		return HalfwayMessage
	default:
		return EncourageMessage
	}
}

func (r ActionRule) hint(remaining int, capped bool) string {
	if capped {
		return fmt.Sprintf("Your lion loved all those %s! Try something different to keep growing.", r.plural)
	}
	noun := r.plural
	if remaining == 1 {
		noun = r.singular
	}
	return fmt.Sprintf("%d more %s to help your lion grow!", remaining, noun)
}
