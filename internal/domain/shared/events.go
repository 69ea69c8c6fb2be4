package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Inbound activity events
	EventTransactionRecorded EventType = "activity.transaction_recorded"
	EventGoalCompleted       EventType = "activity.goal_completed"
	EventUserLogin           EventType = "activity.user_login"

	// Streak events
	EventStreakUpdated EventType = "streak.updated"
	EventStreakBroken  EventType = "streak.broken"
	EventStreakAtRisk  EventType = "streak.at_risk"

	// Progress events
	EventXPGained         EventType = "progress.xp_gained"
	EventLevelUp          EventType = "progress.level_up"
	EventBadgeEarned      EventType = "progress.badge_earned"
	EventMilestoneReached EventType = "progress.milestone_reached"

	// Leaderboard events
	EventRankChanged        EventType = "leaderboard.rank_changed"
	EventLeaderboardRebuilt EventType = "leaderboard.rebuilt"

	// Notification events
	EventNotificationSent   EventType = "notification.sent"
	EventNotificationFailed EventType = "notification.failed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Activity Events
// ═══════════════════════════════════════════════════════════════════════════

// TransactionRecordedEvent is emitted when a user records a transaction.
type TransactionRecordedEvent struct {
	BaseEvent
	UserID      string    `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Kind        string    `json:"kind"` // "income" or "expense"
	Category    string    `json:"category"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Payload implements Event interface.
func (e TransactionRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":      e.UserID,
		"amount_cents": e.AmountCents,
		"kind":         e.Kind,
		"category":     e.Category,
		"recorded_at":  e.RecordedAt.Format(time.RFC3339),
	}
}

// NewTransactionRecordedEvent creates a new TransactionRecordedEvent.
func NewTransactionRecordedEvent(userID string, amountCents int64, kind, category string, recordedAt time.Time) TransactionRecordedEvent {
	return TransactionRecordedEvent{
		BaseEvent:   NewBaseEvent(EventTransactionRecorded, userID),
		UserID:      userID,
		AmountCents: amountCents,
		Kind:        kind,
		Category:    category,
		RecordedAt:  recordedAt,
	}
}

// GoalCompletedEvent is emitted when a user completes a savings goal.
type GoalCompletedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	GoalID string `json:"goal_id"`
}

// Payload implements Event interface.
func (e GoalCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"goal_id": e.GoalID,
	}
}

// NewGoalCompletedEvent creates a new GoalCompletedEvent.
func NewGoalCompletedEvent(userID, goalID string) GoalCompletedEvent {
	return GoalCompletedEvent{
		BaseEvent: NewBaseEvent(EventGoalCompleted, userID),
		UserID:    userID,
		GoalID:    goalID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Streak Events
// ═══════════════════════════════════════════════════════════════════════════

// StreakUpdatedEvent is emitted when a user's streak changes.
type StreakUpdatedEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	OldStreak int    `json:"old_streak"`
	NewStreak int    `json:"new_streak"`
	Longest   int    `json:"longest_streak"`
}

// Payload implements Event interface.
func (e StreakUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        e.UserID,
		"old_streak":     e.OldStreak,
		"new_streak":     e.NewStreak,
		"longest_streak": e.Longest,
	}
}

// NewStreakUpdatedEvent creates a new StreakUpdatedEvent.
func NewStreakUpdatedEvent(userID string, oldStreak, newStreak, longest int) StreakUpdatedEvent {
	return StreakUpdatedEvent{
		BaseEvent: NewBaseEvent(EventStreakUpdated, userID),
		UserID:    userID,
		OldStreak: oldStreak,
		NewStreak: newStreak,
		Longest:   longest,
	}
}

// StreakBrokenEvent is emitted when a user's daily streak is broken.
type StreakBrokenEvent struct {
	BaseEvent
	UserID         string `json:"user_id"`
	PreviousStreak int    `json:"previous_streak"`
	DaysMissed     int    `json:"days_missed"`
	Severity       string `json:"severity"` // soft_reminder, strong_nudge, reactivation
}

// Payload implements Event interface.
func (e StreakBrokenEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":         e.UserID,
		"previous_streak": e.PreviousStreak,
		"days_missed":     e.DaysMissed,
		"severity":        e.Severity,
	}
}

// NewStreakBrokenEvent creates a new StreakBrokenEvent.
func NewStreakBrokenEvent(userID string, previousStreak, daysMissed int, severity string) StreakBrokenEvent {
	return StreakBrokenEvent{
		BaseEvent:      NewBaseEvent(EventStreakBroken, userID),
		UserID:         userID,
		PreviousStreak: previousStreak,
		DaysMissed:     daysMissed,
		Severity:       severity,
	}
}

// StreakAtRiskEvent is emitted by the risk scan for users who were active
// yesterday but not yet today.
type StreakAtRiskEvent struct {
	BaseEvent
	UserID        string `json:"user_id"`
	CurrentStreak int    `json:"current_streak"`
}

// Payload implements Event interface.
func (e StreakAtRiskEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        e.UserID,
		"current_streak": e.CurrentStreak,
	}
}

// NewStreakAtRiskEvent creates a new StreakAtRiskEvent.
func NewStreakAtRiskEvent(userID string, currentStreak int) StreakAtRiskEvent {
	return StreakAtRiskEvent{
		BaseEvent:     NewBaseEvent(EventStreakAtRisk, userID),
		UserID:        userID,
		CurrentStreak: currentStreak,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// BadgeEarnedEvent is emitted when a user earns a badge.
type BadgeEarnedEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	BadgeID   string `json:"badge_id"`
	BadgeName string `json:"badge_name"`
	Points    int    `json:"points"`
	NewLevel  int    `json:"new_level"`
	Showcased bool   `json:"showcased"`
}

// Payload implements Event interface.
func (e BadgeEarnedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":    e.UserID,
		"badge_id":   e.BadgeID,
		"badge_name": e.BadgeName,
		"points":     e.Points,
		"new_level":  e.NewLevel,
		"showcased":  e.Showcased,
	}
}

// NewBadgeEarnedEvent creates a new BadgeEarnedEvent.
func NewBadgeEarnedEvent(userID, badgeID, badgeName string, points, newLevel int, showcased bool) BadgeEarnedEvent {
	return BadgeEarnedEvent{
		BaseEvent: NewBaseEvent(EventBadgeEarned, userID),
		UserID:    userID,
		BadgeID:   badgeID,
		BadgeName: badgeName,
		Points:    points,
		NewLevel:  newLevel,
		Showcased: showcased,
	}
}

// MilestoneReachedEvent is emitted when a user crosses a streak milestone.
type MilestoneReachedEvent struct {
	BaseEvent
	UserID    string   `json:"user_id"`
	Threshold int      `json:"threshold"`
	Title     string   `json:"title"`
	Points    int      `json:"points"`
	Perks     []string `json:"perks,omitempty"`
	Priority  string   `json:"priority"` // "high" or "normal"
}

// Payload implements Event interface.
func (e MilestoneReachedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"threshold": e.Threshold,
		"title":     e.Title,
		"points":    e.Points,
		"perks":     e.Perks,
		"priority":  e.Priority,
	}
}

// NewMilestoneReachedEvent creates a new MilestoneReachedEvent.
func NewMilestoneReachedEvent(userID string, threshold int, title string, points int, perks []string, priority string) MilestoneReachedEvent {
	return MilestoneReachedEvent{
		BaseEvent: NewBaseEvent(EventMilestoneReached, userID),
		UserID:    userID,
		Threshold: threshold,
		Title:     title,
		Points:    points,
		Perks:     perks,
		Priority:  priority,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Leaderboard Events
// ═══════════════════════════════════════════════════════════════════════════

// RankChangedEvent is emitted when a user's rank changes on a leaderboard.
type RankChangedEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	BoardType string `json:"board_type"`
	Period    string `json:"period"`
	Scope     string `json:"scope"`
	OldRank   int    `json:"old_rank"`
	NewRank   int    `json:"new_rank"`
}

// Payload implements Event interface.
func (e RankChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":    e.UserID,
		"board_type": e.BoardType,
		"period":     e.Period,
		"scope":      e.Scope,
		"old_rank":   e.OldRank,
		"new_rank":   e.NewRank,
	}
}

// NewRankChangedEvent creates a new RankChangedEvent.
func NewRankChangedEvent(userID, boardType, period, scope string, oldRank, newRank int) RankChangedEvent {
	return RankChangedEvent{
		BaseEvent: NewBaseEvent(EventRankChanged, userID),
		UserID:    userID,
		BoardType: boardType,
		Period:    period,
		Scope:     scope,
		OldRank:   oldRank,
		NewRank:   newRank,
	}
}

// LevelUpEvent is published when a user's level increases after XP gains.
type LevelUpEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	OldLevel int    `json:"old_level"`
	NewLevel int    `json:"new_level"`
	Title    string `json:"title"`
}

// Payload implements Event interface.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"old_level": e.OldLevel,
		"new_level": e.NewLevel,
		"title":     e.Title,
	}
}

// NewLevelUpEvent creates a new LevelUpEvent.
func NewLevelUpEvent(userID string, oldLevel, newLevel int, title string) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent: NewBaseEvent(EventLevelUp, userID),
		UserID:    userID,
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
		Title:     title,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
