package progress

// StarsPerLevel is the number of stars that make up one level.
const StarsPerLevel = 50

// LevelFor returns the level implied by a star balance.
// Negative balances are treated as zero.
func LevelFor(stars int) int {
	if stars < 0 {
		stars = 0
	}
	return stars/StarsPerLevel + 1
}

// StarsRequiredFor returns the balance at which the given level is left
// behind, i.e. the threshold for reaching level+1.
func StarsRequiredFor(level int) int {
	return level * StarsPerLevel
}

// LevelUp describes the level transition caused by a balance change.
type LevelUp struct {
	LeveledUp bool `json:"leveledUp"`
	OldLevel  int  `json:"oldLevel"`
	NewLevel  int  `json:"newLevel"`
}

// DetectLevelUp compares the levels implied by the balances before and after
// a credit. LeveledUp is true only when the level strictly increased.
func DetectLevelUp(starsBefore, starsAfter int) LevelUp {
	oldLevel := LevelFor(starsBefore)
	newLevel := LevelFor(starsAfter)
	return LevelUp{
		LeveledUp: newLevel > oldLevel,
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
	}
}

// LevelsGained lists every level reached by the transition, lowest first.
// It is empty when there was no level-up.
func (lu LevelUp) LevelsGained() []int {
	if !lu.LeveledUp {
		return nil
	}
	levels := make([]int, 0, lu.NewLevel-lu.OldLevel)
	for l := lu.OldLevel + 1; l <= lu.NewLevel; l++ {
		levels = append(levels, l)
	}
	return levels
}

// LevelProgress is the level bar shown to the child.
type LevelProgress struct {
	Level             int `json:"level"`
	Stars             int `json:"stars"`
	StarsIntoLevel    int `json:"starsIntoLevel"`
	StarsForNextLevel int `json:"starsForNextLevel"`
	NextLevelAt       int `json:"nextLevelAt"`
}

// LevelProgressFor computes the level bar for a balance.
func LevelProgressFor(stars int) LevelProgress {
	if stars < 0 {
		stars = 0
	}
	level := LevelFor(stars)
	next := StarsRequiredFor(level)
	return LevelProgress{
		Level:             level,
		Stars:             stars,
		StarsIntoLevel:    stars - StarsRequiredFor(level-1),
		StarsForNextLevel: next - stars,
		NextLevelAt:       next,
	}
}
