package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLocation(t *testing.T) {
	assert.Equal(t, time.UTC, LoadLocation(""))
	assert.Equal(t, time.UTC, LoadLocation("Mars/Olympus"))

	loc := LoadLocation("America/New_York")
	assert.Equal(t, "America/New_York", loc.String())
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2026, 3, 15, 14, 30, 45, 999, time.UTC)
	got := DateOnly(ts)

	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, ts.Location(), got.Location())
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC)
	nextDay := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(morning, evening))
	assert.False(t, SameDay(evening, nextDay))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC)
	b := time.Date(2026, 3, 16, 1, 0, 0, 0, time.UTC)

	// Считаются календарные дни, не 24-часовые окна.
	assert.Equal(t, 1, DaysBetween(a, b))
	assert.Equal(t, 0, DaysBetween(a, a))
	assert.Equal(t, -1, DaysBetween(b, a))
	assert.Equal(t, 7, DaysBetween(a, a.AddDate(0, 0, 7)))
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 8 марта 2026 - переход на летнее время, день длится 23 часа.
	before := time.Date(2026, 3, 7, 12, 0, 0, 0, loc)
	after := time.Date(2026, 3, 9, 12, 0, 0, 0, loc)

	assert.Equal(t, 2, DaysBetween(before, after))
	assert.Equal(t, 1, DaysBetween(before, before.AddDate(0, 0, 1)))
}

func TestIsYesterday(t *testing.T) {
	today := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	assert.True(t, IsYesterday(today.AddDate(0, 0, -1), today))
	assert.False(t, IsYesterday(today, today))
	assert.False(t, IsYesterday(today.AddDate(0, 0, -2), today))
}

func TestStartOfWeek(t *testing.T) {
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	// 11 марта 2026 - среда.
	wednesday := time.Date(2026, 3, 11, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, monday, StartOfWeek(wednesday))

	// Воскресенье принадлежит уходящей неделе.
	sunday := time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, StartOfWeek(sunday))

	assert.Equal(t, monday, StartOfWeek(monday))
}

func TestStartOfMonth(t *testing.T) {
	ts := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(ts))
}

func TestFormatAndParseDate(t *testing.T) {
	ts := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-15", FormatDate(ts))

	parsed, err := ParseDate("2026-03-15", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), parsed)

	_, err = ParseDate("not-a-date", time.UTC)
	assert.Error(t, err)
}
