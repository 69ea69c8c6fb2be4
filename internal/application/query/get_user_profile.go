package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campuscents/campuscents-gamification/internal/domain/achievement"
	"github.com/campuscents/campuscents-gamification/internal/domain/badge"
	"github.com/campuscents/campuscents-gamification/internal/domain/celebration"
	"github.com/campuscents/campuscents-gamification/internal/domain/stats"
	"github.com/campuscents/campuscents-gamification/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET USER PROFILE QUERY
// Агрегированный профиль: статистика + награды + ожидающие праздники.
// Чтение профиля не считается показом, очередь праздников не трогается.
// ══════════════════════════════════════════════════════════════════════════════

// GetUserProfileQuery содержит параметры запроса профиля.
type GetUserProfileQuery struct {
	// UserID - внутренний ID пользователя.
	UserID string

	// AchievementLimit - сколько последних достижений вернуть
	// (по умолчанию 10, максимум 50).
	AchievementLimit int
}

// Validate проверяет корректность параметров запроса.
func (q *GetUserProfileQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user_id is required")
	}
	if q.AchievementLimit < 0 {
		return errors.New("achievement limit cannot be negative")
	}
	if q.AchievementLimit == 0 {
		q.AchievementLimit = 10
	}
	if q.AchievementLimit > 50 {
		q.AchievementLimit = 50
	}
	return nil
}

// BadgeDTO - DTO для полученной награды.
type BadgeDTO struct {
	BadgeID     string    `json:"badge_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Icon        string    `json:"icon"`
	Rarity      string    `json:"rarity"`
	Showcased   bool      `json:"showcased"`
	EarnedAt    time.Time `json:"earned_at"`
}

// AchievementDTO - DTO для записи журнала достижений.
type AchievementDTO struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Points    int       `json:"points"`
	IsShared  bool      `json:"is_shared"`
	CreatedAt time.Time `json:"created_at"`
}

// UserProfileResult содержит агрегированный профиль.
type UserProfileResult struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Campus      string `json:"campus,omitempty"`

	NetSavingsCents int64 `json:"net_savings_cents"`
	CurrentStreak   int   `json:"current_streak"`
	LongestStreak   int   `json:"longest_streak"`
	XP              int   `json:"xp"`
	Level           int   `json:"level"`

	// Title - звание, производное от уровня.
	Title string `json:"title"`

	GoalsCompleted   int `json:"goals_completed"`
	HustlesCompleted int `json:"hustles_completed"`

	Badges       []BadgeDTO       `json:"badges"`
	Achievements []AchievementDTO `json:"achievements"`

	// PendingCelebrations - ожидающие праздники (без снятия с очереди).
	PendingCelebrations []*celebration.Item `json:"pending_celebrations"`

	GeneratedAt time.Time `json:"generated_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetUserProfileHandler обрабатывает запросы профиля.
type GetUserProfileHandler struct {
	statsRepo    stats.Repository
	badgeRepo    badge.Repository
	achievements achievement.Repository
	celebrations celebration.Queue
	log          *logger.Logger
}

// NewGetUserProfileHandler создаёт обработчик.
func NewGetUserProfileHandler(
	statsRepo stats.Repository,
	badgeRepo badge.Repository,
	achievements achievement.Repository,
	celebrations celebration.Queue,
	log *logger.Logger,
) *GetUserProfileHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetUserProfileHandler{
		statsRepo:    statsRepo,
		badgeRepo:    badgeRepo,
		achievements: achievements,
		celebrations: celebrations,
		log:          log.With(logger.Component("get_user_profile")),
	}
}

// Handle собирает профиль пользователя.
func (h *GetUserProfileHandler) Handle(ctx context.Context, q GetUserProfileQuery) (*UserProfileResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_user_profile: %w", err)
	}

	user, err := h.statsRepo.GetByUserID(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("get_user_profile: %w", err)
	}

	result := &UserProfileResult{
		UserID:           user.UserID,
		DisplayName:      user.DisplayName,
		Campus:           user.Campus.String(),
		NetSavingsCents:  int64(user.NetSavings),
		CurrentStreak:    user.CurrentStreak,
		LongestStreak:    user.LongestStreak,
		XP:               int(user.ExperiencePoints),
		Level:            int(user.Level),
		Title:            string(user.Title),
		GoalsCompleted:   user.GoalsCompleted,
		HustlesCompleted: user.HustlesCompleted,
		GeneratedAt:      time.Now().UTC(),
	}

	userBadges, err := h.badgeRepo.ListUserBadges(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("get_user_profile: list badges: %w", err)
	}
	for _, ub := range userBadges {
		dto := BadgeDTO{
			BadgeID:   ub.BadgeID,
			Showcased: ub.Showcased,
			EarnedAt:  ub.EarnedAt,
		}
		// Каталог маленький и читается из памяти реализации; промах
		// означает выключенную награду - показываем только ID.
		if def, defErr := h.badgeRepo.GetDefinition(ctx, ub.BadgeID); defErr == nil {
			dto.Name = def.Name
			dto.Description = def.Description
			dto.Category = string(def.Category)
			dto.Icon = def.Icon
			dto.Rarity = string(def.Rarity)
		}
		result.Badges = append(result.Badges, dto)
	}

	records, err := h.achievements.ListByUser(ctx, q.UserID, q.AchievementLimit)
	if err != nil {
		return nil, fmt.Errorf("get_user_profile: list achievements: %w", err)
	}
	for _, rec := range records {
		result.Achievements = append(result.Achievements, AchievementDTO{
			ID:        rec.ID,
			Kind:      string(rec.Kind),
			Title:     rec.Title,
			Points:    rec.Points,
			IsShared:  rec.IsShared,
			CreatedAt: rec.CreatedAt,
		})
	}

	pending, err := h.celebrations.PeekPending(ctx, q.UserID)
	if err != nil {
		// Очередь вторична для профиля: показываем без праздников.
		h.log.Warn("celebration peek failed", logger.UserID(q.UserID), logger.Err(err))
	} else {
		result.PendingCelebrations = pending
	}

	return result, nil
}
