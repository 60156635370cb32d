package progress

// StreakState is the persisted streak entity.
type StreakState struct {
	CurrentStreak    int    `json:"currentStreak"`
	LastActivityDate string `json:"lastActivityDate"`
	BestStreak       int    `json:"bestStreak,omitempty"`
}

// StreakTransition is the result of evaluating a streak for a new day.
type StreakTransition struct {
	State StreakState

	// Changed is false when the streak was already evaluated today.
	Changed bool

	Previous int

	// Broken is true when a running streak was reset by a gap.
	Broken bool
}

// Advance evaluates the streak for today. It is idempotent within a day:
// when LastActivityDate already equals today the state is returned unchanged.
func (s StreakState) Advance(today, yesterday string) StreakTransition {
	if s.LastActivityDate == today {
		return StreakTransition{State: s, Previous: s.CurrentStreak}
	}

	next := StreakState{
		LastActivityDate: today,
		BestStreak:       s.BestStreak,
	}

	broken := false
	if s.LastActivityDate == yesterday {
		next.CurrentStreak = s.CurrentStreak + 1
	} else {
		next.CurrentStreak = 1
		broken = s.CurrentStreak > 0
	}

	if next.CurrentStreak > next.BestStreak {
		next.BestStreak = next.CurrentStreak
	}

	return StreakTransition{
		State:    next,
		Changed:  true,
		Previous: s.CurrentStreak,
		Broken:   broken,
	}
}

// ActiveOn reports whether the streak is still alive on the given day,
// i.e. the last activity was today or yesterday.
func (s StreakState) ActiveOn(today, yesterday string) bool {
	return s.CurrentStreak > 0 && (s.LastActivityDate == today || s.LastActivityDate == yesterday)
}
