package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock возвращает источник времени, застывший на данном моменте.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var testNow = time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

func newTestTracker(minStreakForNotice int) *Tracker {
	return NewTracker(minStreakForNotice).WithClock(fixedClock(testNow))
}

func TestTracker_FirstActivity(t *testing.T) {
	tracker := newTestTracker(3)

	res := tracker.Update(time.Time{}, 0, 0, "UTC")

	assert.Equal(t, ChangeStarted, res.Change)
	assert.Equal(t, 0, res.OldStreak)
	assert.Equal(t, 1, res.NewStreak)
	assert.Equal(t, 1, res.LongestStreak)
	assert.Nil(t, res.Break)
	assert.True(t, res.Changed())
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), res.ActivityDate)
}

func TestTracker_SameDayIsIdempotent(t *testing.T) {
	tracker := newTestTracker(3)
	today := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)

	res := tracker.Update(today, 5, 10, "UTC")

	assert.Equal(t, ChangeSameDay, res.Change)
	assert.Equal(t, 5, res.NewStreak)
	assert.Equal(t, 10, res.LongestStreak)
	assert.Nil(t, res.Break)
	assert.False(t, res.Changed())
}

func TestTracker_FutureDateTreatedAsToday(t *testing.T) {
	tracker := newTestTracker(3)
	future := testNow.AddDate(0, 0, 2)

	res := tracker.Update(future, 5, 10, "UTC")

	assert.Equal(t, ChangeSameDay, res.Change)
	assert.Equal(t, 5, res.NewStreak)
	assert.False(t, res.Changed())
}

func TestTracker_YesterdayContinuesStreak(t *testing.T) {
	tracker := newTestTracker(3)
	yesterday := testNow.AddDate(0, 0, -1)

	res := tracker.Update(yesterday, 6, 10, "UTC")

	assert.Equal(t, ChangeContinued, res.Change)
	assert.Equal(t, 6, res.OldStreak)
	assert.Equal(t, 7, res.NewStreak)
	assert.Equal(t, 10, res.LongestStreak)
	assert.Nil(t, res.Break)
}

func TestTracker_ContinuationUpdatesLongest(t *testing.T) {
	tracker := newTestTracker(3)
	yesterday := testNow.AddDate(0, 0, -1)

	res := tracker.Update(yesterday, 10, 10, "UTC")

	assert.Equal(t, 11, res.NewStreak)
	assert.Equal(t, 11, res.LongestStreak)
}

func TestTracker_GapResetsStreak(t *testing.T) {
	tracker := newTestTracker(3)
	threeDaysAgo := testNow.AddDate(0, 0, -3)

	res := tracker.Update(threeDaysAgo, 12, 20, "UTC")

	assert.Equal(t, ChangeReset, res.Change)
	assert.Equal(t, 1, res.NewStreak)
	assert.Equal(t, 20, res.LongestStreak)

	require.NotNil(t, res.Break)
	assert.Equal(t, 12, res.Break.PreviousStreak)
	assert.Equal(t, 2, res.Break.DaysMissed)
	assert.Equal(t, SeveritySoftReminder, res.Break.Severity)
	assert.True(t, res.Break.ShouldNotify)
}

func TestTracker_BreakSeverityTiers(t *testing.T) {
	tests := []struct {
		name       string
		daysAgo    int
		daysMissed int
		severity   BreakSeverity
	}{
		{"one day missed", 2, 1, SeveritySoftReminder},
		{"two days missed", 3, 2, SeveritySoftReminder},
		{"three days missed", 4, 3, SeverityStrongNudge},
		{"six days missed", 7, 6, SeverityStrongNudge},
		{"seven days missed", 8, 7, SeverityReactivation},
		{"month missed", 31, 30, SeverityReactivation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newTestTracker(3)
			last := testNow.AddDate(0, 0, -tt.daysAgo)

			res := tracker.Update(last, 10, 10, "UTC")

			require.NotNil(t, res.Break)
			assert.Equal(t, tt.daysMissed, res.Break.DaysMissed)
			assert.Equal(t, tt.severity, res.Break.Severity)
		})
	}
}

func TestTracker_ShortStreakBreaksQuietly(t *testing.T) {
	tracker := newTestTracker(3)
	last := testNow.AddDate(0, 0, -5)

	res := tracker.Update(last, 2, 8, "UTC")

	require.NotNil(t, res.Break)
	assert.False(t, res.Break.ShouldNotify)
}

func TestTracker_ZeroStreakBreakNeverNotifies(t *testing.T) {
	tracker := newTestTracker(0)
	last := testNow.AddDate(0, 0, -5)

	res := tracker.Update(last, 0, 8, "UTC")

	require.NotNil(t, res.Break)
	assert.False(t, res.Break.ShouldNotify)
}

func TestTracker_TimezoneShiftsCalendarDay(t *testing.T) {
	// 14:30 UTC 15 марта = 03:30 16 марта в Окленде: активность
	// "вчера вечером" по Окленду продолжает серию, а не дублирует день.
	tracker := newTestTracker(3)
	last := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	res := tracker.Update(last, 4, 10, "Pacific/Auckland")

	assert.Equal(t, ChangeContinued, res.Change)
	assert.Equal(t, 5, res.NewStreak)
}

func TestTracker_UnknownTimezoneFallsBackToUTC(t *testing.T) {
	tracker := newTestTracker(3)
	yesterday := testNow.AddDate(0, 0, -1)

	res := tracker.Update(yesterday, 1, 1, "Mars/Olympus")

	assert.Equal(t, ChangeContinued, res.Change)
	assert.Equal(t, 2, res.NewStreak)
}

func TestSeverityForDaysMissed(t *testing.T) {
	assert.Equal(t, SeveritySoftReminder, SeverityForDaysMissed(1))
	assert.Equal(t, SeveritySoftReminder, SeverityForDaysMissed(2))
	assert.Equal(t, SeverityStrongNudge, SeverityForDaysMissed(3))
	assert.Equal(t, SeverityStrongNudge, SeverityForDaysMissed(6))
	assert.Equal(t, SeverityReactivation, SeverityForDaysMissed(7))
	assert.Equal(t, SeverityReactivation, SeverityForDaysMissed(100))
}
