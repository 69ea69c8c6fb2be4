// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campuscents/campuscents-gamification/internal/domain/leaderboard"
	"github.com/campuscents/campuscents-gamification/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Получает топ-N лидерборда. Глобальная выдача схлопывает пользователей
// с кампусом до одной строки.
// ══════════════════════════════════════════════════════════════════════════════

// GetLeaderboardQuery содержит параметры запроса лидерборда.
type GetLeaderboardQuery struct {
	// Type - вид лидерборда: savings, streak, points, goals.
	Type string

	// Period - период: all_time, weekly, monthly.
	Period string

	// Campus - кампус для кампусной выдачи (пусто = глобальная).
	Campus string

	// Limit - количество записей (по умолчанию 20, максимум 100).
	Limit int
}

// Validate проверяет корректность параметров запроса.
func (q *GetLeaderboardQuery) Validate() error {
	if q.Type == "" {
		q.Type = string(leaderboard.BoardSavings)
	}
	if !leaderboard.BoardType(q.Type).IsValid() {
		return fmt.Errorf("unknown leaderboard type %q", q.Type)
	}
	if q.Period == "" {
		q.Period = string(leaderboard.PeriodAllTime)
	}
	if !leaderboard.Period(q.Period).IsValid() {
		return fmt.Errorf("unknown leaderboard period %q", q.Period)
	}
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
	return nil
}

// EntryDTO - DTO для строки лидерборда.
type EntryDTO struct {
	// Rank - позиция (начиная с 1).
	Rank int `json:"rank"`

	// UserID - внутренний ID пользователя.
	UserID string `json:"user_id"`

	// DisplayName - отображаемое имя.
	DisplayName string `json:"display_name"`

	// Campus - кампус пользователя (пусто, если не привязан).
	Campus string `json:"campus,omitempty"`

	// Score - значение метрики. Для накоплений - центы.
	Score int64 `json:"score"`
}

// GetLeaderboardResult содержит результат запроса лидерборда.
type GetLeaderboardResult struct {
	// Type - вид лидерборда.
	Type string `json:"type"`

	// Period - период.
	Period string `json:"period"`

	// Scope - охват: "global" или название кампуса.
	Scope string `json:"scope"`

	// Entries - строки выдачи.
	Entries []EntryDTO `json:"entries"`

	// TotalCount - общее количество участников.
	TotalCount int `json:"total_count"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetLeaderboardHandler обрабатывает запросы лидерборда.
type GetLeaderboardHandler struct {
	repo     leaderboard.Repository
	cache    leaderboard.Cache
	cacheTTL time.Duration
	log      *logger.Logger
}

// NewGetLeaderboardHandler создаёт обработчик.
func NewGetLeaderboardHandler(repo leaderboard.Repository, cache leaderboard.Cache, cacheTTL time.Duration, log *logger.Logger) *GetLeaderboardHandler {
	if log == nil {
		log = logger.Default()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &GetLeaderboardHandler{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log.With(logger.Component("get_leaderboard")),
	}
}

// Handle возвращает выдачу лидерборда.
//
// Глобальная выдача собирается из строк всех охватов со схлопыванием
// дублей: пользователь с кампусом появляется ровно один раз (берётся его
// кампусная строка). Кампусная выдача читается как есть.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, q GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_leaderboard: %w", err)
	}

	key := leaderboard.Key{
		Type:   leaderboard.BoardType(q.Type),
		Period: leaderboard.Period(q.Period),
		Scope:  leaderboard.Scope(q.Campus),
	}

	if h.cache != nil {
		cached, err := h.cache.GetBoard(ctx, key, q.Limit)
		if err == nil {
			return h.toResult(key, cached, len(cached)), nil
		}
		if !errors.Is(err, leaderboard.ErrCacheMiss) {
			// Кэш недоступен - деградация до чтения из хранилища.
			h.log.Warn("leaderboard cache read failed",
				logger.LeaderboardKey(key.String()), logger.Err(err))
		}
	}

	var ranking *leaderboard.Ranking
	if key.Scope.IsGlobal() {
		rows, err := h.repo.ListEntriesAllScopes(ctx, key.Type, key.Period)
		if err != nil {
			return nil, fmt.Errorf("get_leaderboard: %w", err)
		}
		ranking = leaderboard.DeduplicateGlobal(rows)
	} else {
		rows, err := h.repo.ListEntries(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("get_leaderboard: %w", err)
		}
		ranking = leaderboard.NewRanking()
		for _, row := range rows {
			_ = ranking.Add(row)
		}
		ranking.Rerank()
	}

	top := ranking.Top(q.Limit)

	if h.cache != nil {
		if err := h.cache.SetBoard(ctx, key, top, h.cacheTTL); err != nil {
			h.log.Warn("leaderboard cache write failed",
				logger.LeaderboardKey(key.String()), logger.Err(err))
		}
	}

	return h.toResult(key, top, ranking.Count()), nil
}

func (h *GetLeaderboardHandler) toResult(key leaderboard.Key, rows []*leaderboard.Entry, total int) *GetLeaderboardResult {
	entries := make([]EntryDTO, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, EntryDTO{
			Rank:        int(row.Rank),
			UserID:      row.UserID,
			DisplayName: row.DisplayName,
			Campus:      row.Campus,
			Score:       row.Score,
		})
	}

	return &GetLeaderboardResult{
		Type:        string(key.Type),
		Period:      string(key.Period),
		Scope:       key.Scope.String(),
		Entries:     entries,
		TotalCount:  total,
		GeneratedAt: time.Now().UTC(),
	}
}
