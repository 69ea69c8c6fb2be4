// Package leaderboard содержит доменную модель лидербордов CampusCents.
// Лидерборд существует в четырёх видах (накопления, серия, очки, цели),
// трёх периодах (всё время, неделя, месяц) и двух охватах (глобальный
// и кампусный).
package leaderboard

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// BoardType определяет, какая метрика ранжируется.
type BoardType string

const (
	// BoardSavings - чистые накопления в центах.
	BoardSavings BoardType = "savings"

	// BoardStreak - текущая серия активных дней.
	BoardStreak BoardType = "streak"

	// BoardPoints - очки опыта.
	BoardPoints BoardType = "points"

	// BoardGoals - количество завершённых целей.
	BoardGoals BoardType = "goals"
)

// IsValid проверяет корректность вида лидерборда.
func (t BoardType) IsValid() bool {
	switch t {
	case BoardSavings, BoardStreak, BoardPoints, BoardGoals:
		return true
	}
	return false
}

// AllBoardTypes возвращает все виды лидербордов.
func AllBoardTypes() []BoardType {
	return []BoardType{BoardSavings, BoardStreak, BoardPoints, BoardGoals}
}

// Period определяет временное окно лидерборда.
// Недельные и месячные доски сбрасываются внешней периодической задачей,
// движок их только наполняет.
type Period string

const (
	PeriodAllTime Period = "all_time"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// IsValid проверяет корректность периода.
func (p Period) IsValid() bool {
	switch p {
	case PeriodAllTime, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

// AllPeriods возвращает все периоды.
func AllPeriods() []Period {
	return []Period{PeriodAllTime, PeriodWeekly, PeriodMonthly}
}

// Scope определяет охват лидерборда.
// Пустое значение - глобальный охват, непустое - название кампуса.
type Scope string

// ScopeGlobal - глобальный лидерборд.
const ScopeGlobal Scope = ""

// IsGlobal возвращает true для глобального охвата.
func (s Scope) IsGlobal() bool {
	return s == ScopeGlobal
}

// String возвращает строковое представление охвата.
func (s Scope) String() string {
	if s.IsGlobal() {
		return "global"
	}
	return string(s)
}

// Rank представляет позицию в лидерборде. Начинается с 1.
type Rank int

// IsValid проверяет, что ранг положительный.
func (r Rank) IsValid() bool {
	return r > 0
}

// IsTop10 возвращает true, если пользователь в топ-10.
func (r Rank) IsTop10() bool {
	return r >= 1 && r <= 10
}

// String возвращает строковое представление ранга.
func (r Rank) String() string {
	return fmt.Sprintf("#%d", r)
}

// Key однозначно определяет один лидерборд.
type Key struct {
	Type   BoardType
	Period Period
	Scope  Scope
}

// Validate проверяет корректность ключа.
func (k Key) Validate() error {
	if !k.Type.IsValid() {
		return ErrInvalidBoardType
	}
	if !k.Period.IsValid() {
		return ErrInvalidPeriod
	}
	return nil
}

// String возвращает каноническую строку ключа.
// Используется как ключ кэша и как ключ advisory-блокировки.
func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s", k.Type, k.Period, k.Scope.String())
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD ENTRY
// ══════════════════════════════════════════════════════════════════════════════

// Entry представляет одну строку лидерборда.
type Entry struct {
	// Rank - текущая позиция.
	Rank Rank

	// UserID - идентификатор пользователя.
	UserID string

	// DisplayName - отображаемое имя.
	DisplayName string

	// Campus - кампус пользователя (пусто, если не привязан).
	Campus string

	// Scope - охват строки. Пользователь с кампусом имеет две строки
	// на пару (вид, период): глобальную и кампусную, с одинаковым счётом.
	Scope Scope

	// Score - значение метрики. Для накоплений - центы.
	Score int64

	// UpdatedAt - время последнего обновления счёта.
	UpdatedAt time.Time
}

// NewEntry создаёт строку лидерборда с валидацией.
func NewEntry(userID, displayName string, scope Scope, score int64) (*Entry, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if score < 0 {
		score = 0
	}

	return &Entry{
		UserID:      userID,
		DisplayName: displayName,
		Scope:       scope,
		Score:       score,
		UpdatedAt:   time.Now().UTC(),
	}, nil
}

// Clone создаёт копию строки.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	clone := *e
	return &clone
}

// String возвращает строковое представление для логирования.
func (e *Entry) String() string {
	return fmt.Sprintf("Entry{Rank: %d, User: %s, Score: %d, Scope: %s}",
		e.Rank, e.UserID, e.Score, e.Scope.String())
}

// ══════════════════════════════════════════════════════════════════════════════
// RANKING
// ══════════════════════════════════════════════════════════════════════════════

// Ranking - полный отсортированный список строк одного лидерборда.
// Вспомогательная структура для пересчёта рангов.
type Ranking struct {
	entries []*Entry
	byID    map[string]*Entry
}

// NewRanking создаёт пустой Ranking.
func NewRanking() *Ranking {
	return &Ranking{
		entries: make([]*Entry, 0),
		byID:    make(map[string]*Entry),
	}
}

// Add добавляет строку в рейтинг (без автоматической сортировки).
func (r *Ranking) Add(entry *Entry) error {
	if entry == nil {
		return ErrNilEntry
	}
	if _, exists := r.byID[entry.UserID]; exists {
		return ErrDuplicateUser
	}

	r.entries = append(r.entries, entry)
	r.byID[entry.UserID] = entry
	return nil
}

// Rerank сортирует строки по счёту (по убыванию) и присваивает ранги 1..N.
// Равные счёты НЕ делят ранг: каждый получает свой последовательный ранг,
// порядок при равенстве детерминирован по возрастанию UserID. Перестройка
// всего списка целиком, не инкрементальная правка.
func (r *Ranking) Rerank() {
	sort.Slice(r.entries, func(i, j int) bool {
		if r.entries[i].Score != r.entries[j].Score {
			return r.entries[i].Score > r.entries[j].Score
		}
		return r.entries[i].UserID < r.entries[j].UserID
	})

	for i, entry := range r.entries {
		entry.Rank = Rank(i + 1)
	}
}

// GetByID возвращает строку по идентификатору пользователя.
func (r *Ranking) GetByID(userID string) *Entry {
	return r.byID[userID]
}

// Top возвращает топ-N строк.
func (r *Ranking) Top(n int) []*Entry {
	if n <= 0 {
		return nil
	}
	if n > len(r.entries) {
		n = len(r.entries)
	}
	result := make([]*Entry, n)
	copy(result, r.entries[:n])
	return result
}

// All возвращает все строки.
func (r *Ranking) All() []*Entry {
	result := make([]*Entry, len(r.entries))
	copy(result, r.entries)
	return result
}

// Count возвращает количество строк.
func (r *Ranking) Count() int {
	return len(r.entries)
}

// ══════════════════════════════════════════════════════════════════════════════
// GLOBAL-VIEW DEDUPLICATION
// ══════════════════════════════════════════════════════════════════════════════

// DeduplicateGlobal строит глобальную выдачу из строк всех охватов.
//
// Пользователь с кампусом имеет две строки на доску. В глобальной выдаче он
// обязан появиться ровно один раз: берётся кампусная строка, если она есть,
// иначе глобальная. После схлопывания список сортируется и ранжируется
// заново.
func DeduplicateGlobal(rows []*Entry) *Ranking {
	preferred := make(map[string]*Entry, len(rows))

	for _, row := range rows {
		if row == nil {
			continue
		}
		current, ok := preferred[row.UserID]
		if !ok {
			preferred[row.UserID] = row
			continue
		}
		// Кампусная строка вытесняет глобальную. Две строки одного
		// охвата невозможны при корректном хранилище, первая остаётся.
		if current.Scope.IsGlobal() && !row.Scope.IsGlobal() {
			preferred[row.UserID] = row
		}
	}

	ranking := NewRanking()
	for _, row := range preferred {
		_ = ranking.Add(row.Clone())
	}
	ranking.Rerank()
	return ranking
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidBoardType - неизвестный вид лидерборда.
	ErrInvalidBoardType = errors.New("invalid leaderboard type")

	// ErrInvalidPeriod - неизвестный период.
	ErrInvalidPeriod = errors.New("invalid leaderboard period")

	// ErrInvalidUserID - невалидный идентификатор пользователя.
	ErrInvalidUserID = errors.New("invalid user id: cannot be empty")

	// ErrNilEntry - попытка добавить nil строку.
	ErrNilEntry = errors.New("cannot add nil entry")

	// ErrDuplicateUser - пользователь уже есть в рейтинге.
	ErrDuplicateUser = errors.New("user already exists in ranking")

	// ErrEmptyLeaderboard - лидерборд пуст.
	ErrEmptyLeaderboard = errors.New("leaderboard is empty")
)
