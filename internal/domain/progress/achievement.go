package progress

import (
	"time"
)

// Category groups achievements by the counter that drives them.
type Category string

const (
	CategoryWord   Category = "word"
	CategoryStory  Category = "story"
	CategoryQuiz   Category = "quiz"
	CategoryStreak Category = "streak"
	CategoryLevel  Category = "level"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryWord, CategoryStory, CategoryQuiz, CategoryStreak, CategoryLevel:
		return true
	}
	return false
}

// Achievement IDs.
const (
	AchievementFirstWord  = "first_word"
	AchievementWords10    = "words_10"
	AchievementWords25    = "words_25"
	AchievementWords50    = "words_50"
	AchievementFirstStory = "first_story"
	AchievementStories5   = "stories_5"
	AchievementStories10  = "stories_10"
	AchievementFirstQuiz  = "first_quiz"
	AchievementQuiz10     = "quiz_10"
	AchievementQuiz50     = "quiz_50"
	AchievementStreak3    = "streak_3"
	AchievementStreak7    = "streak_7"
	AchievementLevel2     = "level_2"
	AchievementLevel5     = "level_5"
	AchievementLevel10    = "level_10"
)

// Definition is an immutable catalog entry.
type Definition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	StarReward  int      `json:"starReward"`
	Category    Category `json:"category"`

	// Threshold is the counter value that unlocks the achievement.
	// Matching is exact: a counter that jumps past it never unlocks it.
	Threshold int `json:"threshold"`
}

// UnlockRecord is persisted once per unlocked achievement.
type UnlockRecord struct {
	ID           string    `json:"id"`
	UnlockedAt   time.Time `json:"unlockedAt"`
	UnlockedDate string    `json:"unlockedDate"`
}

var catalog = []Definition{
	{AchievementFirstWord, "First Word", "Said your very first word", "🗣️", 5, CategoryWord, 1},
	{AchievementWords10, "Word Explorer", "Used 10 different words", "🔤", 10, CategoryWord, 10},
	{AchievementWords25, "Word Collector", "Used 25 different words", "📚", 15, CategoryWord, 25},
	{AchievementWords50, "Word Wizard", "Used 50 different words", "🧙", 25, CategoryWord, 50},
	{AchievementFirstStory, "Story Time", "Finished your first story", "📖", 5, CategoryStory, 1},
	{AchievementStories5, "Bookworm", "Finished 5 stories", "🐛", 15, CategoryStory, 5},
	{AchievementStories10, "Storyteller", "Finished 10 stories", "🏰", 25, CategoryStory, 10},
	{AchievementFirstQuiz, "Quiz Starter", "Answered your first quiz question", "❓", 5, CategoryQuiz, 1},
	{AchievementQuiz10, "Quiz Whiz", "Answered 10 quiz questions correctly", "🧠", 15, CategoryQuiz, 10},
	{AchievementQuiz50, "Quiz Champion", "Answered 50 quiz questions correctly", "🏆", 30, CategoryQuiz, 50},
	{AchievementStreak3, "On a Roll", "Played 3 days in a row", "🔥", 10, CategoryStreak, 3},
	{AchievementStreak7, "Super Week", "Played 7 days in a row", "🌟", 25, CategoryStreak, 7},
	// Level badges carry no stars: flows check levels once per credit, so a
	// rewarded badge could cross a further level unnoticed.
	{AchievementLevel2, "Growing Up", "Reached level 2", "🌱", 0, CategoryLevel, 2},
	{AchievementLevel5, "Rising Star", "Reached level 5", "⭐", 0, CategoryLevel, 5},
	{AchievementLevel10, "Superstar", "Reached level 10", "👑", 0, CategoryLevel, 10},
}

// Catalog returns a copy of every achievement definition.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// FindDefinition looks up a catalog entry by ID.
func FindDefinition(id string) (Definition, bool) {
	for _, def := range catalog {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}

// DefinitionsMatching returns the catalog entries of a category whose
// threshold equals count exactly.
func DefinitionsMatching(category Category, count int) []Definition {
	var out []Definition
	for _, def := range catalog {
		if def.Category == category && def.Threshold == count {
			out = append(out, def)
		}
	}
	return out
}
