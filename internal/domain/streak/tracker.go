// Package streak содержит машину состояний серии активных дней.
// Серия считается в целых календарных днях в таймзоне пользователя:
// сравниваются только даты, время суток не имеет значения.
package streak

import (
	"time"

	"github.com/campuscents/campuscents-gamification/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Change определяет, что произошло с серией при обновлении.
type Change string

const (
	// ChangeSameDay - активность уже была сегодня, состояние не меняется.
	ChangeSameDay Change = "same_day"

	// ChangeContinued - активность на следующий календарный день, серия +1.
	ChangeContinued Change = "continued"

	// ChangeStarted - первая активность пользователя, серия = 1.
	ChangeStarted Change = "started"

	// ChangeReset - пропущен хотя бы один день, серия сброшена до 1.
	ChangeReset Change = "reset"
)

// BreakSeverity определяет срочность уведомления о сломанной серии.
type BreakSeverity string

const (
	// SeveritySoftReminder - пропущено 1-2 дня, мягкое напоминание.
	SeveritySoftReminder BreakSeverity = "soft_reminder"

	// SeverityStrongNudge - пропущено 3-6 дней, настойчивый призыв.
	SeverityStrongNudge BreakSeverity = "strong_nudge"

	// SeverityReactivation - пропущено 7+ дней, реактивационный пуш.
	SeverityReactivation BreakSeverity = "reactivation"
)

// SeverityForDaysMissed возвращает срочность по количеству пропущенных дней.
func SeverityForDaysMissed(daysMissed int) BreakSeverity {
	switch {
	case daysMissed >= 7:
		return SeverityReactivation
	case daysMissed >= 3:
		return SeverityStrongNudge
	default:
		return SeveritySoftReminder
	}
}

// BreakInfo описывает сломанную серию.
type BreakInfo struct {
	// PreviousStreak - длина серии до сброса.
	PreviousStreak int

	// DaysMissed - количество полностью пропущенных дней.
	DaysMissed int

	// Severity - срочность уведомления.
	Severity BreakSeverity

	// ShouldNotify - false для коротких серий, чтобы не шуметь.
	ShouldNotify bool
}

// Result содержит итог одного обновления серии.
type Result struct {
	// OldStreak - серия до обновления.
	OldStreak int

	// NewStreak - серия после обновления.
	NewStreak int

	// LongestStreak - лучшая серия с учётом обновления.
	LongestStreak int

	// ActivityDate - зафиксированная дата активности (полночь).
	ActivityDate time.Time

	// Change - что произошло.
	Change Change

	// Break - информация о сбросе; nil, если серия не ломалась.
	Break *BreakInfo
}

// Changed возвращает true, если состояние серии изменилось.
func (r Result) Changed() bool {
	return r.Change != ChangeSameDay
}

// ══════════════════════════════════════════════════════════════════════════════
// TRACKER
// ══════════════════════════════════════════════════════════════════════════════

// Tracker вычисляет новое состояние серии по дате последней активности.
// Чистая функция от своих входов: запись в хранилище делает вызывающий.
type Tracker struct {
	// minStreakForNotice - минимальная длина сломанной серии, при которой
	// отправляется уведомление.
	minStreakForNotice int

	// now - источник времени, подменяется в тестах.
	now func() time.Time
}

// NewTracker создаёт трекер серий.
func NewTracker(minStreakForNotice int) *Tracker {
	if minStreakForNotice < 0 {
		minStreakForNotice = 0
	}
	return &Tracker{
		minStreakForNotice: minStreakForNotice,
		now:                time.Now,
	}
}

// WithClock подменяет источник времени (для тестов).
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Update вычисляет новое состояние серии.
//
// Правила:
//   - та же дата: no-op, вызов идемпотентен в пределах календарного дня;
//   - вчера: серия продолжается, +1;
//   - разрыв в 2+ дня или первая активность: серия = 1; если прежняя серия
//     была не короче minStreakForNotice, это событие "break" с уведомлением.
func (t *Tracker) Update(lastActivityDate time.Time, currentStreak, longestStreak int, timezone string) Result {
	loc := timeutil.LoadLocation(timezone)
	today := timeutil.DateOnly(t.now().In(loc))

	res := Result{
		OldStreak:     currentStreak,
		LongestStreak: longestStreak,
		ActivityDate:  today,
	}

	// Первая активность пользователя.
	if lastActivityDate.IsZero() {
		res.NewStreak = 1
		res.Change = ChangeStarted
		if res.NewStreak > res.LongestStreak {
			res.LongestStreak = res.NewStreak
		}
		return res
	}

	last := timeutil.DateOnly(lastActivityDate.In(loc))
	gap := timeutil.DaysBetween(last, today)

	switch {
	case gap <= 0:
		// Активность уже записана сегодня (или дата из будущего после
		// правки часов - тоже считаем за сегодня).
		res.NewStreak = currentStreak
		res.ActivityDate = last
		res.Change = ChangeSameDay
		return res

	case gap == 1:
		res.NewStreak = currentStreak + 1
		res.Change = ChangeContinued

	default:
		res.NewStreak = 1
		res.Change = ChangeReset

		daysMissed := gap - 1
		res.Break = &BreakInfo{
			PreviousStreak: currentStreak,
			DaysMissed:     daysMissed,
			Severity:       SeverityForDaysMissed(daysMissed),
			ShouldNotify:   currentStreak >= t.minStreakForNotice && currentStreak > 0,
		}
	}

	if res.NewStreak > res.LongestStreak {
		res.LongestStreak = res.NewStreak
	}

	return res
}
