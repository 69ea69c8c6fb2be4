// Package stats содержит доменную модель накопительной статистики пользователя
// CampusCents. Это ядро бизнес-логики - здесь нет внешних зависимостей.
package stats

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// XP представляет очки опыта пользователя.
type XP int

// IsValid проверяет, что XP неотрицательный.
func (x XP) IsValid() bool {
	return x >= 0
}

// Add складывает XP.
func (x XP) Add(delta XP) XP {
	return x + delta
}

// Level представляет уровень пользователя, вычисляемый из XP.
type Level int

// CalculateLevel вычисляет уровень на основе XP.
// Формула: level = 1 + xp/100. Новый пользователь начинает с 1 уровня.
func CalculateLevel(xp XP) Level {
	if xp < 0 {
		return 1
	}
	return Level(1 + int(xp)/100)
}

// Title представляет звание пользователя, привязанное к уровню.
type Title string

const (
	TitleBeginner      Title = "Beginner"
	TitleSaver         Title = "Saver"
	TitleBudgetMaster  Title = "Budget Master"
	TitleFinancialGuru Title = "Financial Guru"
	TitleMoneyManager  Title = "Money Manager"
	TitleLegendary     Title = "Legendary"
)

// TitleForLevel возвращает звание для уровня по фиксированным диапазонам.
func TitleForLevel(level Level) Title {
	switch {
	case level <= 5:
		return TitleBeginner
	case level <= 10:
		return TitleSaver
	case level <= 20:
		return TitleBudgetMaster
	case level <= 35:
		return TitleFinancialGuru
	case level <= 50:
		return TitleMoneyManager
	default:
		return TitleLegendary
	}
}

// Money представляет денежную сумму в центах.
// Целые центы вместо float - копейка в копейку, без ошибок округления.
type Money int64

// Dollars возвращает сумму в долларах для отображения.
func (m Money) Dollars() float64 {
	return float64(m) / 100.0
}

// String возвращает строковое представление суммы.
func (m Money) String() string {
	return fmt.Sprintf("$%.2f", m.Dollars())
}

// Campus представляет университет пользователя.
// Пустое значение означает, что пользователь не привязан к кампусу.
type Campus string

// CampusNone - пользователь без кампуса (только глобальные лидерборды).
const CampusNone Campus = ""

// IsValid проверяет корректность названия кампуса.
func (c Campus) IsValid() bool {
	if c == CampusNone {
		return true
	}
	s := string(c)
	return len(s) >= 2 && len(s) <= 100
}

// HasCampus возвращает true, если пользователь привязан к кампусу.
func (c Campus) HasCampus() bool {
	return c != CampusNone
}

// String возвращает строковое представление кампуса.
func (c Campus) String() string {
	return string(c)
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: USER STATS
// ══════════════════════════════════════════════════════════════════════════════

// UserStats - центральная сущность движка геймификации.
// Поля, вычисляемые движком (streak, XP, level, title), принадлежат
// исключительно ему: другие подсистемы читают, но не пишут.
type UserStats struct {
	// UserID - идентификатор пользователя (UUID в строковом формате).
	UserID string

	// DisplayName - отображаемое имя для лидербордов.
	DisplayName string

	// NetSavings - чистые накопления (доходы минус расходы).
	NetSavings Money

	// CurrentStreak - текущая серия активных дней.
	CurrentStreak int

	// LongestStreak - лучшая серия за всё время. Никогда не уменьшается.
	LongestStreak int

	// LastActivityDate - дата последней активности (полночь в таймзоне
	// пользователя). Нулевое значение - активности ещё не было.
	LastActivityDate time.Time

	// ExperiencePoints - накопленные очки опыта.
	ExperiencePoints XP

	// Level - текущий уровень, производный от XP.
	Level Level

	// Title - звание, производное от уровня.
	Title Title

	// Campus - университет (опционально, для кампусных лидербордов).
	Campus Campus

	// Timezone - IANA-таймзона пользователя для календарных расчётов.
	Timezone string

	// GoalsCompleted - количество завершённых целей накопления.
	GoalsCompleted int

	// HustlesCompleted - количество завершённых подработок.
	HustlesCompleted int

	// AchievementsShared - количество достижений, опубликованных в ленту.
	AchievementsShared int

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidUserID - невалидный идентификатор пользователя.
	ErrInvalidUserID = errors.New("invalid user id: cannot be empty")

	// ErrInvalidDisplayName - невалидное отображаемое имя.
	ErrInvalidDisplayName = errors.New("invalid display name: must be 1-100 chars")

	// ErrInvalidCampus - невалидное название кампуса.
	ErrInvalidCampus = errors.New("invalid campus: must be 2-100 chars")

	// ErrInvalidXP - невалидное значение XP.
	ErrInvalidXP = errors.New("invalid xp: must be non-negative")

	// ErrStatsNotFound - статистика пользователя не найдена.
	ErrStatsNotFound = errors.New("user stats not found")

	// ErrStatsAlreadyExist - статистика уже существует.
	ErrStatsAlreadyExist = errors.New("user stats already exist")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewUserStatsParams содержит параметры для создания новой записи.
type NewUserStatsParams struct {
	UserID      string
	DisplayName string
	Campus      Campus
	Timezone    string
}

// NewUserStats создаёт запись статистики с нулевыми значениями.
// Вызывается один раз при создании аккаунта.
func NewUserStats(params NewUserStatsParams) (*UserStats, error) {
	if params.UserID == "" {
		return nil, ErrInvalidUserID
	}

	displayName := strings.TrimSpace(params.DisplayName)
	if len(displayName) == 0 || len(displayName) > 100 {
		return nil, ErrInvalidDisplayName
	}

	if !params.Campus.IsValid() {
		return nil, ErrInvalidCampus
	}

	now := time.Now().UTC()

	return &UserStats{
		UserID:           params.UserID,
		DisplayName:      displayName,
		NetSavings:       0,
		CurrentStreak:    0,
		LongestStreak:    0,
		LastActivityDate: time.Time{},
		ExperiencePoints: 0,
		Level:            CalculateLevel(0),
		Title:            TitleForLevel(CalculateLevel(0)),
		Campus:           params.Campus,
		Timezone:         params.Timezone,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// AddXP добавляет очки опыта и пересчитывает уровень и звание.
// Возвращает true, если уровень вырос.
func (s *UserStats) AddXP(delta XP) (leveledUp bool, err error) {
	if delta < 0 {
		return false, ErrInvalidXP
	}

	oldLevel := s.Level
	s.ExperiencePoints = s.ExperiencePoints.Add(delta)
	s.Level = CalculateLevel(s.ExperiencePoints)
	s.Title = TitleForLevel(s.Level)
	s.UpdatedAt = time.Now().UTC()

	return s.Level > oldLevel, nil
}

// ApplyTransaction обновляет чистые накопления по транзакции.
// Доход увеличивает NetSavings, расход - уменьшает.
func (s *UserStats) ApplyTransaction(amount Money, isIncome bool) {
	if isIncome {
		s.NetSavings += amount
	} else {
		s.NetSavings -= amount
	}
	s.UpdatedAt = time.Now().UTC()
}

// RecordGoalCompleted увеличивает счётчик завершённых целей.
func (s *UserStats) RecordGoalCompleted() {
	s.GoalsCompleted++
	s.UpdatedAt = time.Now().UTC()
}

// RecordHustleCompleted увеличивает счётчик завершённых подработок.
func (s *UserStats) RecordHustleCompleted() {
	s.HustlesCompleted++
	s.UpdatedAt = time.Now().UTC()
}

// RecordAchievementShared увеличивает счётчик опубликованных достижений.
func (s *UserStats) RecordAchievementShared() {
	s.AchievementsShared++
	s.UpdatedAt = time.Now().UTC()
}

// SetStreak применяет результат трекера серий одной записью.
// longest_streak никогда не уменьшается.
func (s *UserStats) SetStreak(current int, activityDate time.Time) {
	s.CurrentStreak = current
	if current > s.LongestStreak {
		s.LongestStreak = current
	}
	s.LastActivityDate = activityDate
	s.UpdatedAt = time.Now().UTC()
}

// String возвращает строковое представление для логирования.
func (s *UserStats) String() string {
	return fmt.Sprintf(
		"UserStats{UserID: %s, Savings: %s, Streak: %d, XP: %d, Level: %d, Title: %s}",
		s.UserID, s.NetSavings, s.CurrentStreak, s.ExperiencePoints, s.Level, s.Title,
	)
}

// Clone создаёт глубокую копию записи.
func (s *UserStats) Clone() *UserStats {
	if s == nil {
		return nil
	}

	clone := *s
	return &clone
}
