// Package achievement содержит журнал достижений пользователя.
// Журнал append-only: записи создаются движком наград и детектором
// рубежей, никогда не изменяются и не удаляются. Единственное
// допустимое изменение - флаг публикации в ленту.
package achievement

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind определяет источник достижения.
type Kind string

const (
	// KindBadge - достижение за полученную награду.
	KindBadge Kind = "badge"

	// KindMilestone - достижение за рубеж серии.
	KindMilestone Kind = "milestone"

	// KindLevelUp - достижение за рост уровня.
	KindLevelUp Kind = "level_up"
)

// IsValid проверяет, что вид достижения известен.
func (k Kind) IsValid() bool {
	switch k {
	case KindBadge, KindMilestone, KindLevelUp:
		return true
	}
	return false
}

var (
	// ErrInvalidAchievement - некорректная запись достижения.
	ErrInvalidAchievement = errors.New("invalid achievement")

	// ErrAchievementNotFound - запись не найдена.
	ErrAchievementNotFound = errors.New("achievement not found")
)

// Achievement - одна запись журнала достижений.
type Achievement struct {
	// ID - идентификатор записи (UUID).
	ID string

	// UserID - владелец.
	UserID string

	// Kind - источник достижения.
	Kind Kind

	// Title - заголовок для ленты.
	Title string

	// Description - описание для ленты.
	Description string

	// Points - начисленные XP.
	Points int

	// Shareable - можно ли публиковать в ленту.
	Shareable bool

	// IsShared - опубликовано ли в ленту.
	IsShared bool

	// ShouldCelebrate - показывать ли праздничный экран.
	ShouldCelebrate bool

	// CelebrationPriority - срочность праздника ("normal" или "high").
	CelebrationPriority string

	// CreatedAt - момент создания.
	CreatedAt time.Time
}

// WithCelebration помечает достижение празднуемым с указанной срочностью.
func (a *Achievement) WithCelebration(priority string) *Achievement {
	a.ShouldCelebrate = true
	a.CelebrationPriority = priority
	return a
}

// New создаёт запись достижения.
func New(userID string, kind Kind, title, description string, points int, shareable bool) (*Achievement, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrInvalidAchievement)
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidAchievement, kind)
	}
	if title == "" {
		return nil, fmt.Errorf("%w: empty title", ErrInvalidAchievement)
	}
	if points < 0 {
		return nil, fmt.Errorf("%w: negative points", ErrInvalidAchievement)
	}

	return &Achievement{
		ID:          uuid.New().String(),
		UserID:      userID,
		Kind:        kind,
		Title:       title,
		Description: description,
		Points:      points,
		Shareable:   shareable,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// MarkShared помечает достижение опубликованным в ленту.
func (a *Achievement) MarkShared() {
	a.IsShared = true
}

// String возвращает строковое представление для логирования.
func (a *Achievement) String() string {
	return fmt.Sprintf("Achievement{User: %s, Kind: %s, Title: %q, Points: %d}",
		a.UserID, a.Kind, a.Title, a.Points)
}
