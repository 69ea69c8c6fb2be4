// Package timeutil provides calendar-date utilities for the CampusCents
// gamification engine. Streaks are counted in whole calendar days in the
// user's stored timezone, so every comparison in the engine goes through
// the date-only helpers here instead of raw time.Time arithmetic.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// DefaultTimezone is used for users who have not set a timezone yet.
const DefaultTimezone = "UTC"

// LoadLocation resolves a stored timezone name, falling back to UTC when the
// name is empty or unknown. A user with a corrupt timezone keeps a working
// streak rather than erroring out of the whole pipeline.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DateOnly truncates a time to midnight of its calendar day, preserving
// location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Today returns midnight of the current day in the given location.
func Today(loc *time.Location) time.Time {
	return DateOnly(time.Now().In(loc))
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween returns the number of whole calendar days from a to b.
// The result is negative when b is before a. DST transitions are handled by
// rounding: a 23- or 25-hour calendar day still counts as one day.
func DaysBetween(a, b time.Time) int {
	da := DateOnly(a)
	db := DateOnly(b.In(a.Location()))

	hours := db.Sub(da).Hours()
	if hours >= 0 {
		return int(hours + 12) / 24
	}
	return -int(-hours+12) / 24
}

// IsYesterday reports whether a falls on the calendar day before b.
func IsYesterday(a, b time.Time) bool {
	return DaysBetween(a, b) == 1
}

// StartOfWeek returns midnight of Monday of the week containing t.
// Weekly leaderboard periods are Monday-anchored.
func StartOfWeek(t time.Time) time.Time {
	d := DateOnly(t)
	weekday := int(d.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return d.AddDate(0, 0, -(weekday - 1))
}

// StartOfMonth returns midnight of the first day of the month containing t.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// FormatDate formats a time as a date-only string (YYYY-MM-DD).
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDate parses a date-only string (YYYY-MM-DD) in the given location.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, loc)
}
