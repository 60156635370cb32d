package shared

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of domain event.
type EventType string

// Gamification events. The UI subscribes to these to show star popups,
// badges and growth animations.
const (
	EventStarsCredited       EventType = "progress.stars_credited"
	EventLevelUp             EventType = "progress.level_up"
	EventAchievementUnlocked EventType = "progress.achievement_unlocked"
	EventStreakUpdated       EventType = "progress.streak_updated"
	EventGrowthUnitGranted   EventType = "growth.unit_granted"
	EventProfileReset        EventType = "profile.reset"
)

// Event is the base interface for all domain events.
type Event interface {
	EventType() EventType
	EventID() string
	OccurredAt() time.Time

	// AggregateID is the child profile that produced the event.
	AggregateID() string

	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// EventID implements Event interface.
func (e BaseEvent) EventID() string {
	return e.ID
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event with a fresh ID.
func NewBaseEvent(eventType EventType, profileID string, at time.Time) BaseEvent {
	return BaseEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Timestamp:   at,
		AggregateId: profileID,
		Version:     1,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// StarsCreditedEvent is emitted after a successful credit.
type StarsCreditedEvent struct {
	BaseEvent
	Amount     int    `json:"amount"`
	NewBalance int    `json:"new_balance"`
	Reason     string `json:"reason"`
}

// Payload implements Event interface.
func (e StarsCreditedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"amount":      e.Amount,
		"new_balance": e.NewBalance,
		"reason":      e.Reason,
	}
}

// NewStarsCreditedEvent creates a new StarsCreditedEvent.
func NewStarsCreditedEvent(profileID string, at time.Time, amount, newBalance int, reason string) StarsCreditedEvent {
	return StarsCreditedEvent{
		BaseEvent:  NewBaseEvent(EventStarsCredited, profileID, at),
		Amount:     amount,
		NewBalance: newBalance,
		Reason:     reason,
	}
}

// LevelUpEvent is emitted when a balance change crosses a level boundary.
type LevelUpEvent struct {
	BaseEvent
	OldLevel int `json:"old_level"`
	NewLevel int `json:"new_level"`
	Stars    int `json:"stars"`
}

// Payload implements Event interface.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"old_level": e.OldLevel,
		"new_level": e.NewLevel,
		"stars":     e.Stars,
	}
}

// NewLevelUpEvent creates a new LevelUpEvent.
func NewLevelUpEvent(profileID string, at time.Time, oldLevel, newLevel, stars int) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent: NewBaseEvent(EventLevelUp, profileID, at),
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
		Stars:     stars,
	}
}

// AchievementUnlockedEvent is emitted once per newly unlocked achievement.
type AchievementUnlockedEvent struct {
	BaseEvent
	AchievementID string `json:"achievement_id"`
	Name          string `json:"name"`
	Icon          string `json:"icon"`
	StarReward    int    `json:"star_reward"`
}

// Payload implements Event interface.
func (e AchievementUnlockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"achievement_id": e.AchievementID,
		"name":           e.Name,
		"icon":           e.Icon,
		"star_reward":    e.StarReward,
	}
}

// NewAchievementUnlockedEvent creates a new AchievementUnlockedEvent.
func NewAchievementUnlockedEvent(profileID string, at time.Time, id, name, icon string, reward int) AchievementUnlockedEvent {
	return AchievementUnlockedEvent{
		BaseEvent:     NewBaseEvent(EventAchievementUnlocked, profileID, at),
		AchievementID: id,
		Name:          name,
		Icon:          icon,
		StarReward:    reward,
	}
}

// StreakUpdatedEvent is emitted when the first touch of a day changes the streak.
type StreakUpdatedEvent struct {
	BaseEvent
	PreviousStreak int  `json:"previous_streak"`
	CurrentStreak  int  `json:"current_streak"`
	Broken         bool `json:"broken"`
}

// Payload implements Event interface.
func (e StreakUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"previous_streak": e.PreviousStreak,
		"current_streak":  e.CurrentStreak,
		"broken":          e.Broken,
	}
}

// NewStreakUpdatedEvent creates a new StreakUpdatedEvent.
func NewStreakUpdatedEvent(profileID string, at time.Time, previous, current int, broken bool) StreakUpdatedEvent {
	return StreakUpdatedEvent{
		BaseEvent:      NewBaseEvent(EventStreakUpdated, profileID, at),
		PreviousStreak: previous,
		CurrentStreak:  current,
		Broken:         broken,
	}
}

// GrowthUnitGrantedEvent is emitted when an action grows the daily meter.
type GrowthUnitGrantedEvent struct {
	BaseEvent
	Action     string `json:"action"`
	Progress   int    `json:"progress"`
	MaxReached bool   `json:"max_reached"`
	Message    string `json:"message"`
}

// Payload implements Event interface.
func (e GrowthUnitGrantedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"action":      e.Action,
		"progress":    e.Progress,
		"max_reached": e.MaxReached,
		"message":     e.Message,
	}
}

// NewGrowthUnitGrantedEvent creates a new GrowthUnitGrantedEvent.
func NewGrowthUnitGrantedEvent(profileID string, at time.Time, action string, progress int, maxReached bool, message string) GrowthUnitGrantedEvent {
	return GrowthUnitGrantedEvent{
		BaseEvent:  NewBaseEvent(EventGrowthUnitGranted, profileID, at),
		Action:     action,
		Progress:   progress,
		MaxReached: maxReached,
		Message:    message,
	}
}

// ProfileResetEvent is emitted after a full-profile wipe.
type ProfileResetEvent struct {
	BaseEvent
	KeysRemoved int `json:"keys_removed"`
}

// Payload implements Event interface.
func (e ProfileResetEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"keys_removed": e.KeysRemoved,
	}
}

// NewProfileResetEvent creates a new ProfileResetEvent.
func NewProfileResetEvent(profileID string, at time.Time, keysRemoved int) ProfileResetEvent {
	return ProfileResetEvent{
		BaseEvent:   NewBaseEvent(EventProfileReset, profileID, at),
		KeysRemoved: keysRemoved,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Bus Interfaces
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	Subscribe(eventType EventType, handler EventHandler) error
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}

// NopPublisher discards events.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(Event) error { return nil }
