// Package celebration содержит очередь праздничных уведомлений.
// Праздник - это payload для клиентского экрана (конфетти, новая награда,
// рубеж серии), который доставляется при следующем контакте клиента.
package celebration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Kind определяет повод праздника.
type Kind string

const (
	// KindBadge - получена награда.
	KindBadge Kind = "badge"

	// KindMilestone - пересечён рубеж серии.
	KindMilestone Kind = "milestone"

	// KindLevelUp - вырос уровень.
	KindLevelUp Kind = "level_up"
)

// IsValid проверяет, что повод известен.
func (k Kind) IsValid() bool {
	switch k {
	case KindBadge, KindMilestone, KindLevelUp:
		return true
	}
	return false
}

// Priority определяет срочность показа.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidItem - некорректный праздничный payload.
	ErrInvalidItem = errors.New("invalid celebration item")

	// ErrQueueUnavailable - очередь недоступна.
	ErrQueueUnavailable = errors.New("celebration queue unavailable")
)

// ══════════════════════════════════════════════════════════════════════════════
// ITEM
// ══════════════════════════════════════════════════════════════════════════════

// Item - один праздничный payload в очереди пользователя.
type Item struct {
	// ID - идентификатор записи (UUID).
	ID string `json:"id"`

	// UserID - получатель.
	UserID string `json:"user_id"`

	// Kind - повод праздника.
	Kind Kind `json:"kind"`

	// Title - заголовок экрана.
	Title string `json:"title"`

	// Message - текст экрана.
	Message string `json:"message"`

	// Icon - имя иконки в клиентском наборе.
	Icon string `json:"icon"`

	// Points - начисленные XP (для отображения).
	Points int `json:"points"`

	// Priority - срочность показа.
	Priority Priority `json:"priority"`

	// CreatedAt - момент постановки в очередь. Определяет FIFO-порядок.
	CreatedAt time.Time `json:"created_at"`
}

// NewItem создаёт праздничный payload с валидацией.
func NewItem(userID string, kind Kind, title, message, icon string, points int, priority Priority) (*Item, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrInvalidItem)
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidItem, kind)
	}
	if title == "" {
		return nil, fmt.Errorf("%w: empty title", ErrInvalidItem)
	}
	if priority != PriorityNormal && priority != PriorityHigh {
		priority = PriorityNormal
	}

	return &Item{
		ID:        uuid.New().String(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		Icon:      icon,
		Points:    points,
		Priority:  priority,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// String возвращает строковое представление для логирования.
func (i *Item) String() string {
	return fmt.Sprintf("Celebration{User: %s, Kind: %s, Title: %q}", i.UserID, i.Kind, i.Title)
}

// ══════════════════════════════════════════════════════════════════════════════
// QUEUE
// ══════════════════════════════════════════════════════════════════════════════

// Queue определяет контракт очереди праздников.
// Реализация находится в infrastructure слое (Redis, список на пользователя).
//
// Доставка at-most-once: DrainPending снимает записи с очереди до того, как
// клиент подтвердит показ. Оборванное соединение после дрейна теряет пачку,
// это осознанный размен надёжности на простоту.
type Queue interface {
	// Enqueue ставит payload в хвост очереди пользователя.
	Enqueue(ctx context.Context, item *Item) error

	// DrainPending снимает и возвращает все ожидающие payload пользователя
	// в порядке постановки. Единственный потребитель очереди.
	DrainPending(ctx context.Context, userID string) ([]*Item, error)

	// PeekPending возвращает ожидающие payload без снятия с очереди.
	// Используется чтением профиля, которое не считается показом.
	PeekPending(ctx context.Context, userID string) ([]*Item, error)

	// PendingCount возвращает размер очереди пользователя без снятия.
	PendingCount(ctx context.Context, userID string) (int, error)
}
