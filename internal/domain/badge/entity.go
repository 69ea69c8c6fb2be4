// Package badge содержит каталог наград и движок их начисления.
// Награда выдаётся ровно один раз при пересечении порога статистики.
package badge

import (
	"errors"
	"fmt"
	"time"

	"github.com/campuscents/campuscents-gamification/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// RequirementType определяет вид условия получения награды.
// Закрытый набор: каждый вид имеет собственную функцию проверки,
// неизвестный вид - ошибка, а не тихий пропуск.
type RequirementType string

const (
	// RequirementAmountSaved - чистые накопления достигли порога (в центах).
	RequirementAmountSaved RequirementType = "amount_saved"

	// RequirementStreakDays - лучшая серия достигла порога дней.
	RequirementStreakDays RequirementType = "streak_days"

	// RequirementGoalsCompleted - завершено целей накопления.
	RequirementGoalsCompleted RequirementType = "goals_completed"

	// RequirementHustlesCompleted - завершено подработок.
	RequirementHustlesCompleted RequirementType = "hustles_completed"

	// RequirementAchievementsShared - опубликовано достижений в ленту.
	RequirementAchievementsShared RequirementType = "achievements_shared"

	// RequirementCampusRank - место в кампусном лидерборде не ниже порога.
	RequirementCampusRank RequirementType = "campus_rank"

	// RequirementBudgetStreak - дней подряд в рамках бюджета.
	RequirementBudgetStreak RequirementType = "budget_streak"
)

// IsValid проверяет, что вид условия известен движку.
func (t RequirementType) IsValid() bool {
	switch t {
	case RequirementAmountSaved, RequirementStreakDays,
		RequirementGoalsCompleted, RequirementHustlesCompleted,
		RequirementAchievementsShared, RequirementCampusRank,
		RequirementBudgetStreak:
		return true
	}
	return false
}

// Rarity определяет редкость награды.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Category группирует награды для витрины профиля.
type Category string

const (
	CategorySavings Category = "savings"
	CategoryStreak  Category = "streak"
	CategoryGoals   Category = "goals"
	CategoryHustle  Category = "hustle"
	CategorySocial  Category = "social"
	CategoryCampus  Category = "campus"
	CategoryBudget  Category = "budget"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrUnknownRequirement - неизвестный вид условия в каталоге.
	ErrUnknownRequirement = errors.New("unknown badge requirement type")

	// ErrInvalidDefinition - некорректная запись каталога.
	ErrInvalidDefinition = errors.New("invalid badge definition")

	// ErrNilStats - проверка условия без статистики пользователя.
	ErrNilStats = errors.New("badge evaluation requires user stats")

	// ErrDuplicateAward - награда уже выдана. Ожидаемый исход гонки
	// двойного начисления, вызывающий код его проглатывает.
	ErrDuplicateAward = errors.New("badge already awarded")

	// ErrDefinitionNotFound - награда отсутствует в каталоге.
	ErrDefinitionNotFound = errors.New("badge definition not found")
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUIREMENT
// ══════════════════════════════════════════════════════════════════════════════

// EvalContext содержит данные для проверки условий.
// Stats покрывает большинство условий; rank и бюджетная серия
// подгружаются точечно из внешних коллекций.
type EvalContext struct {
	// Stats - текущая статистика пользователя.
	Stats *stats.UserStats

	// CampusRank - место пользователя в кампусном лидерборде накоплений.
	// 0 означает, что места нет (нет кампуса или лидерборд пуст).
	CampusRank int

	// BudgetStreakDays - текущая серия дней в рамках бюджета.
	BudgetStreakDays int
}

// Requirement - условие получения награды: вид плюс числовой порог.
type Requirement struct {
	Type  RequirementType
	Value int64
}

// Satisfied проверяет условие против контекста.
// Возвращает ErrUnknownRequirement для неизвестного вида условия.
func (r Requirement) Satisfied(ctx EvalContext) (bool, error) {
	if ctx.Stats == nil {
		return false, ErrNilStats
	}

	switch r.Type {
	case RequirementAmountSaved:
		return int64(ctx.Stats.NetSavings) >= r.Value, nil

	case RequirementStreakDays:
		return int64(ctx.Stats.LongestStreak) >= r.Value, nil

	case RequirementGoalsCompleted:
		return int64(ctx.Stats.GoalsCompleted) >= r.Value, nil

	case RequirementHustlesCompleted:
		return int64(ctx.Stats.HustlesCompleted) >= r.Value, nil

	case RequirementAchievementsShared:
		return int64(ctx.Stats.AchievementsShared) >= r.Value, nil

	case RequirementCampusRank:
		// Чем меньше место, тем лучше. 0 - места нет.
		return ctx.CampusRank > 0 && int64(ctx.CampusRank) <= r.Value, nil

	case RequirementBudgetStreak:
		return int64(ctx.BudgetStreakDays) >= r.Value, nil

	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownRequirement, r.Type)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Definition - неизменяемая запись каталога наград.
// Создаётся при посеве каталога, дальше только читается.
type Definition struct {
	// ID - стабильный машинный идентификатор (slug).
	ID string

	// Name - отображаемое название.
	Name string

	// Description - описание условия для пользователя.
	Description string

	// Category - категория для витрины.
	Category Category

	// Icon - имя иконки в клиентском наборе.
	Icon string

	// Rarity - редкость.
	Rarity Rarity

	// Requirement - условие получения.
	Requirement Requirement

	// PointsAwarded - XP за получение.
	PointsAwarded int

	// SpecialPerks - привилегии, открываемые наградой (опционально).
	SpecialPerks []string

	// SortOrder - порядок обработки в каталоге.
	SortOrder int

	// Active - неактивные награды не участвуют в начислении.
	Active bool
}

// Validate проверяет корректность записи каталога.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return ErrInvalidDefinition
	}
	if d.Name == "" {
		return ErrInvalidDefinition
	}
	if !d.Requirement.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownRequirement, d.Requirement.Type)
	}
	if d.Requirement.Value <= 0 {
		return ErrInvalidDefinition
	}
	if d.PointsAwarded < 0 {
		return ErrInvalidDefinition
	}
	return nil
}

// StatsSnapshot - срез статистики в момент получения награды.
type StatsSnapshot struct {
	NetSavings    stats.Money
	CurrentStreak int
	XP            stats.XP
	Level         stats.Level
}

// SnapshotOf снимает срез с текущей статистики.
func SnapshotOf(s *stats.UserStats) StatsSnapshot {
	return StatsSnapshot{
		NetSavings:    s.NetSavings,
		CurrentStreak: s.CurrentStreak,
		XP:            s.ExperiencePoints,
		Level:         s.Level,
	}
}

// UserBadge - факт получения награды пользователем.
// Инвариант: не более одной записи на пару (user, badge).
type UserBadge struct {
	// ID - идентификатор записи (UUID).
	ID string

	// UserID - владелец.
	UserID string

	// BadgeID - идентификатор награды из каталога.
	BadgeID string

	// EarnedAt - момент получения.
	EarnedAt time.Time

	// Showcased - первая награда пачки показывается на витрине профиля.
	Showcased bool

	// Snapshot - статистика в момент получения.
	Snapshot StatsSnapshot
}

// String возвращает строковое представление для логирования.
func (ub *UserBadge) String() string {
	return fmt.Sprintf("UserBadge{User: %s, Badge: %s, EarnedAt: %s}",
		ub.UserID, ub.BadgeID, ub.EarnedAt.Format(time.RFC3339))
}
