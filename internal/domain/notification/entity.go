// Package notification содержит доменную модель уведомлений CampusCents.
// Уведомления должны мотивировать возвращаться к финансовым привычкам,
// а не раздражать: короткие серии не генерируют шума, доставка best-effort.
package notification

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION TYPE
// ══════════════════════════════════════════════════════════════════════════════

// Type определяет тип уведомления.
type Type string

const (
	// TypeStreakBroken - серия активных дней прервана.
	// "💔 Твоя серия в 12 дней прервалась. Начни новую!"
	TypeStreakBroken Type = "streak_broken"

	// TypeStreakAtRisk - серия сгорит сегодня вечером.
	// "🔥 Не потеряй серию в 7 дней! Запиши хотя бы одну трату"
	TypeStreakAtRisk Type = "streak_at_risk"

	// TypeBadgeEarned - получена награда.
	// "🏅 Новая награда: Smart Saver!"
	TypeBadgeEarned Type = "badge_earned"

	// TypeMilestoneReached - пересечён рубеж серии.
	// "🎯 30 дней подряд! Ты Month Master"
	TypeMilestoneReached Type = "milestone_reached"

	// TypeLevelUp - повышение уровня.
	// "⬆️ Уровень повышен! Теперь ты Budget Master"
	TypeLevelUp Type = "level_up"

	// TypeRankChanged - заметная смена места в лидерборде.
	// "🚀 Ты поднялся на 5 мест! Теперь ты #42"
	TypeRankChanged Type = "rank_changed"
)

// IsValid проверяет, что тип уведомления корректен.
func (t Type) IsValid() bool {
	switch t {
	case TypeStreakBroken,
		TypeStreakAtRisk,
		TypeBadgeEarned,
		TypeMilestoneReached,
		TypeLevelUp,
		TypeRankChanged:
		return true
	default:
		return false
	}
}

// Priority определяет срочность доставки.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidNotification - некорректное уведомление.
	ErrInvalidNotification = errors.New("invalid notification")

	// ErrDeliveryFailed - доставка не удалась. Best-effort: логируется,
	// синхронно не повторяется.
	ErrDeliveryFailed = errors.New("notification delivery failed")
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Notification - одно исходящее уведомление.
type Notification struct {
	// ID - идентификатор (UUID).
	ID string

	// UserID - получатель.
	UserID string

	// Type - тип уведомления.
	Type Type

	// Title - заголовок.
	Title string

	// Body - текст.
	Body string

	// Priority - срочность.
	Priority Priority

	// CreatedAt - момент создания.
	CreatedAt time.Time
}

// New создаёт уведомление с валидацией.
func New(userID string, t Type, title, body string, priority Priority) (*Notification, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrInvalidNotification)
	}
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidNotification, t)
	}
	if title == "" {
		return nil, fmt.Errorf("%w: empty title", ErrInvalidNotification)
	}

	return &Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      t,
		Title:     title,
		Body:      body,
		Priority:  priority,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// String возвращает строковое представление для логирования.
func (n *Notification) String() string {
	return fmt.Sprintf("Notification{User: %s, Type: %s, Title: %q}", n.UserID, n.Type, n.Title)
}

// ══════════════════════════════════════════════════════════════════════════════
// MESSAGE BUILDERS
// ══════════════════════════════════════════════════════════════════════════════

// ForStreakBroken строит уведомление о сломанной серии.
// Тон зависит от длины пропуска: мягкое напоминание, настойчивый призыв
// или реактивация.
func ForStreakBroken(userID string, previousStreak, daysMissed int) (*Notification, error) {
	var title, body string
	priority := PriorityNormal

	switch {
	case daysMissed >= 7:
		title = "Мы скучаем! 👋"
		body = fmt.Sprintf(
			"Тебя не было %d дней. Твоя серия в %d дней ждёт реванша - начни с одной записи.",
			daysMissed, previousStreak)
		priority = PriorityHigh
	case daysMissed >= 3:
		title = "Серия прервалась 💔"
		body = fmt.Sprintf(
			"Серия в %d дней оборвалась. Верни привычку сегодня - первая запись занимает минуту.",
			previousStreak)
	default:
		title = "Один день пропущен"
		body = fmt.Sprintf(
			"Серия в %d дней сбросилась, но ничего страшного. Сегодняшняя запись начнёт новую.",
			previousStreak)
		priority = PriorityLow
	}

	return New(userID, TypeStreakBroken, title, body, priority)
}

// ForStreakAtRisk строит напоминание о серии, которая сгорит сегодня.
func ForStreakAtRisk(userID string, currentStreak int) (*Notification, error) {
	title := "Серия под угрозой 🔥"
	body := fmt.Sprintf(
		"Твоя серия в %d дней сгорит в полночь. Запиши хотя бы одну операцию!",
		currentStreak)
	return New(userID, TypeStreakAtRisk, title, body, PriorityHigh)
}

// ForBadgeEarned строит уведомление о новой награде.
func ForBadgeEarned(userID, badgeName string, points int) (*Notification, error) {
	title := "Новая награда! 🏅"
	body := fmt.Sprintf("Ты получил награду %q и +%d XP.", badgeName, points)
	return New(userID, TypeBadgeEarned, title, body, PriorityNormal)
}

// ForMilestoneReached строит уведомление о рубеже серии.
func ForMilestoneReached(userID, milestoneTitle string, days, points int, high bool) (*Notification, error) {
	priority := PriorityNormal
	if high {
		priority = PriorityHigh
	}
	title := fmt.Sprintf("%d дней подряд! 🎯", days)
	body := fmt.Sprintf("Рубеж %q взят: +%d XP. Так держать!", milestoneTitle, points)
	return New(userID, TypeMilestoneReached, title, body, priority)
}

// ForLevelUp строит уведомление о росте уровня.
func ForLevelUp(userID string, level int, title string) (*Notification, error) {
	head := "Уровень повышен! ⬆️"
	body := fmt.Sprintf("Теперь ты %s (уровень %d).", title, level)
	return New(userID, TypeLevelUp, head, body, PriorityNormal)
}
