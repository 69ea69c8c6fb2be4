package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateLevel(t *testing.T) {
	assert.Equal(t, Level(1), CalculateLevel(0))
	assert.Equal(t, Level(1), CalculateLevel(99))
	assert.Equal(t, Level(2), CalculateLevel(100))
	assert.Equal(t, Level(3), CalculateLevel(250))
	assert.Equal(t, Level(11), CalculateLevel(1000))
	assert.Equal(t, Level(1), CalculateLevel(-50))
}

func TestTitleForLevel(t *testing.T) {
	assert.Equal(t, TitleBeginner, TitleForLevel(1))
	assert.Equal(t, TitleBeginner, TitleForLevel(5))
	assert.Equal(t, TitleSaver, TitleForLevel(6))
	assert.Equal(t, TitleSaver, TitleForLevel(10))
	assert.Equal(t, TitleBudgetMaster, TitleForLevel(11))
	assert.Equal(t, TitleBudgetMaster, TitleForLevel(20))
	assert.Equal(t, TitleFinancialGuru, TitleForLevel(21))
	assert.Equal(t, TitleFinancialGuru, TitleForLevel(35))
	assert.Equal(t, TitleMoneyManager, TitleForLevel(36))
	assert.Equal(t, TitleMoneyManager, TitleForLevel(50))
	assert.Equal(t, TitleLegendary, TitleForLevel(51))
}

func TestMoney_Dollars(t *testing.T) {
	assert.Equal(t, 12.34, Money(1234).Dollars())
	assert.Equal(t, -5.00, Money(-500).Dollars())
	assert.Equal(t, "$12.34", Money(1234).String())
}

func TestCampus_IsValid(t *testing.T) {
	assert.True(t, CampusNone.IsValid())
	assert.True(t, Campus("MIT").IsValid())
	assert.False(t, Campus("X").IsValid())
	assert.False(t, Campus("").HasCampus())
	assert.True(t, Campus("Stanford").HasCampus())
}

func TestNewUserStats(t *testing.T) {
	s, err := NewUserStats(NewUserStatsParams{
		UserID:      "user-1",
		DisplayName: "  Alice  ",
		Campus:      "MIT",
		Timezone:    "America/New_York",
	})

	require.NoError(t, err)
	assert.Equal(t, "user-1", s.UserID)
	assert.Equal(t, "Alice", s.DisplayName)
	assert.Equal(t, Money(0), s.NetSavings)
	assert.Equal(t, 0, s.CurrentStreak)
	assert.Equal(t, Level(1), s.Level)
	assert.Equal(t, TitleBeginner, s.Title)
	assert.True(t, s.LastActivityDate.IsZero())
	assert.False(t, s.CreatedAt.IsZero())
}

func TestNewUserStats_Validation(t *testing.T) {
	_, err := NewUserStats(NewUserStatsParams{DisplayName: "Alice"})
	assert.ErrorIs(t, err, ErrInvalidUserID)

	_, err = NewUserStats(NewUserStatsParams{UserID: "u1", DisplayName: "   "})
	assert.ErrorIs(t, err, ErrInvalidDisplayName)

	_, err = NewUserStats(NewUserStatsParams{UserID: "u1", DisplayName: "Alice", Campus: "X"})
	assert.ErrorIs(t, err, ErrInvalidCampus)
}

func TestUserStats_AddXP(t *testing.T) {
	s := &UserStats{ExperiencePoints: 90, Level: 1, Title: TitleBeginner}

	leveledUp, err := s.AddXP(5)
	require.NoError(t, err)
	assert.False(t, leveledUp)
	assert.Equal(t, XP(95), s.ExperiencePoints)
	assert.Equal(t, Level(1), s.Level)

	leveledUp, err = s.AddXP(10)
	require.NoError(t, err)
	assert.True(t, leveledUp)
	assert.Equal(t, XP(105), s.ExperiencePoints)
	assert.Equal(t, Level(2), s.Level)
}

func TestUserStats_AddXP_RejectsNegative(t *testing.T) {
	s := &UserStats{ExperiencePoints: 50, Level: 1}

	_, err := s.AddXP(-10)
	assert.ErrorIs(t, err, ErrInvalidXP)
	assert.Equal(t, XP(50), s.ExperiencePoints)
}

func TestUserStats_AddXP_UpdatesTitle(t *testing.T) {
	s := &UserStats{ExperiencePoints: 480, Level: 5, Title: TitleBeginner}

	leveledUp, err := s.AddXP(50)
	require.NoError(t, err)
	assert.True(t, leveledUp)
	assert.Equal(t, Level(6), s.Level)
	assert.Equal(t, TitleSaver, s.Title)
}

func TestUserStats_ApplyTransaction(t *testing.T) {
	s := &UserStats{NetSavings: 1000}

	s.ApplyTransaction(500, true)
	assert.Equal(t, Money(1500), s.NetSavings)

	s.ApplyTransaction(2000, false)
	assert.Equal(t, Money(-500), s.NetSavings)
}

func TestUserStats_Counters(t *testing.T) {
	s := &UserStats{}

	s.RecordGoalCompleted()
	s.RecordGoalCompleted()
	s.RecordHustleCompleted()
	s.RecordAchievementShared()

	assert.Equal(t, 2, s.GoalsCompleted)
	assert.Equal(t, 1, s.HustlesCompleted)
	assert.Equal(t, 1, s.AchievementsShared)
}

func TestUserStats_SetStreak(t *testing.T) {
	s := &UserStats{CurrentStreak: 10, LongestStreak: 10}
	day := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	s.SetStreak(11, day)
	assert.Equal(t, 11, s.CurrentStreak)
	assert.Equal(t, 11, s.LongestStreak)
	assert.Equal(t, day, s.LastActivityDate)

	// Сброс серии не трогает рекорд.
	s.SetStreak(1, day.AddDate(0, 0, 5))
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 11, s.LongestStreak)
}

func TestUserStats_Clone(t *testing.T) {
	s := &UserStats{UserID: "u1", NetSavings: 100}
	clone := s.Clone()

	clone.NetSavings = 999
	assert.Equal(t, Money(100), s.NetSavings)

	var nilStats *UserStats
	assert.Nil(t, nilStats.Clone())
}
