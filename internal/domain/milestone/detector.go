// Package milestone содержит детектор рубежей серии.
// Рубеж - фиксированная длина серии (7, 15, 30, 60, 100 дней), пересечение
// которой даёт бонусные очки, привилегии и праздничный экран.
package milestone

import (
	"fmt"
	"sort"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Perk представляет привилегию, открываемую рубежом.
type Perk string

const (
	PerkReferralBoost     Perk = "referral_boost"
	PerkProfileHighlight  Perk = "profile_highlight"
	PerkPrioritySupport   Perk = "priority_support"
	PerkExclusiveFeatures Perk = "exclusive_features"
)

// Priority определяет срочность праздничного уведомления.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Milestone описывает один рубеж лестницы.
type Milestone struct {
	// Threshold - длина серии в днях.
	Threshold int

	// Title - человекочитаемое название рубежа.
	Title string

	// Points - бонусные XP за пересечение.
	Points int
}

// Reached описывает факт пересечения рубежа.
type Reached struct {
	Milestone

	// Perks - полный набор привилегий, действующих на этом рубеже.
	// Привилегии накапливаются: рубеж 60 включает привилегии рубежа 30.
	Perks []Perk

	// Priority - срочность праздника. high начиная с 30 дней.
	Priority Priority
}

// String возвращает строковое представление для логирования.
func (r Reached) String() string {
	return fmt.Sprintf("Milestone{%d days, %q, +%d XP, priority=%s}",
		r.Threshold, r.Title, r.Points, r.Priority)
}

// ══════════════════════════════════════════════════════════════════════════════
// LADDER
// ══════════════════════════════════════════════════════════════════════════════

// ladder - фиксированная лестница рубежей в порядке возрастания.
var ladder = []Milestone{
	{Threshold: 7, Title: "Week Warrior", Points: 50},
	{Threshold: 15, Title: "Fortnight Fighter", Points: 100},
	{Threshold: 30, Title: "Month Master", Points: 250},
	{Threshold: 60, Title: "Streak Legend", Points: 500},
	{Threshold: 100, Title: "Centurion", Points: 1000},
}

// perkThreshold - с какого рубежа открывается каждая привилегия.
var perkThresholds = []struct {
	threshold int
	perks     []Perk
}{
	{30, []Perk{PerkReferralBoost, PerkProfileHighlight}},
	{60, []Perk{PerkPrioritySupport}},
	{100, []Perk{PerkExclusiveFeatures}},
}

// highPriorityThreshold - рубеж, с которого праздник получает high priority.
const highPriorityThreshold = 30

// Ladder возвращает копию лестницы рубежей.
func Ladder() []Milestone {
	out := make([]Milestone, len(ladder))
	copy(out, ladder)
	return out
}

// PerksAt возвращает накопленный набор привилегий для длины серии.
func PerksAt(streakDays int) []Perk {
	var perks []Perk
	for _, pt := range perkThresholds {
		if streakDays >= pt.threshold {
			perks = append(perks, pt.perks...)
		}
	}
	return perks
}

// ══════════════════════════════════════════════════════════════════════════════
// DETECTOR
// ══════════════════════════════════════════════════════════════════════════════

// Detect проверяет, пересекла ли серия рубеж при переходе old -> new.
//
// Рубеж считается пересечённым, если old < threshold <= new. Если скачок
// пересёк несколько рубежей сразу (восстановление данных, ручная правка),
// срабатывает только старший: его очки уже включают ценность младших.
// Пересечение того же рубежа второй раз невозможно, пока серия не сломается
// и не дорастёт заново.
func Detect(oldStreak, newStreak int) (Reached, bool) {
	if newStreak <= oldStreak {
		return Reached{}, false
	}

	idx := sort.Search(len(ladder), func(i int) bool {
		return ladder[i].Threshold > newStreak
	})
	if idx == 0 {
		return Reached{}, false
	}

	highest := ladder[idx-1]
	if oldStreak >= highest.Threshold {
		return Reached{}, false
	}

	priority := PriorityNormal
	if highest.Threshold >= highPriorityThreshold {
		priority = PriorityHigh
	}

	return Reached{
		Milestone: highest,
		Perks:     PerksAt(highest.Threshold),
		Priority:  priority,
	}, true
}
