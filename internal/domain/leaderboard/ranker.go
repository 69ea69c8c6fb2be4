package leaderboard

import (
	"context"
	"errors"

	"github.com/campuscents/campuscents-gamification/internal/domain/stats"
	"github.com/campuscents/campuscents-gamification/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCORE COMPUTATION
// ══════════════════════════════════════════════════════════════════════════════

// ScoreFor вычисляет счёт пользователя для вида лидерборда.
func ScoreFor(boardType BoardType, s *stats.UserStats) (int64, error) {
	if s == nil {
		return 0, ErrInvalidUserID
	}

	switch boardType {
	case BoardSavings:
		return int64(s.NetSavings), nil
	case BoardStreak:
		return int64(s.CurrentStreak), nil
	case BoardPoints:
		return int64(s.ExperiencePoints), nil
	case BoardGoals:
		return int64(s.GoalsCompleted), nil
	default:
		return 0, ErrInvalidBoardType
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RANKER
// ══════════════════════════════════════════════════════════════════════════════

// RankChange описывает смену позиции пользователя после пересчёта.
type RankChange struct {
	Key     Key
	OldRank Rank
	NewRank Rank
}

// Ranker обновляет счёты пользователя и пересчитывает ранги затронутых
// лидербордов. Пересчёт всегда полный: прочитать все строки, отсортировать,
// записать все ранги. Обновление идемпотентно, повторный вызов на тех же
// данных ничего не меняет.
type Ranker struct {
	repo  Repository
	cache Cache
	log   *logger.Logger
}

// NewRanker создаёт ранкер.
func NewRanker(repo Repository, cache Cache, log *logger.Logger) *Ranker {
	if log == nil {
		log = logger.Default()
	}
	return &Ranker{
		repo:  repo,
		cache: cache,
		log:   log.With(logger.Component("leaderboard_ranker")),
	}
}

// RefreshUser записывает счёты пользователя во все лидерборды и
// пересчитывает ранги затронутых досок.
//
// Для каждой пары (вид, период) пишется глобальная строка; пользователь
// с кампусом дополнительно получает кампусную строку с тем же счётом.
// Возвращает смены позиций в глобальных досках (для события rank_changed).
func (r *Ranker) RefreshUser(ctx context.Context, s *stats.UserStats) ([]RankChange, error) {
	if s == nil {
		return nil, ErrInvalidUserID
	}

	var changes []RankChange

	for _, boardType := range AllBoardTypes() {
		score, err := ScoreFor(boardType, s)
		if err != nil {
			return changes, err
		}

		for _, period := range AllPeriods() {
			scopes := []Scope{ScopeGlobal}
			if s.Campus.HasCampus() {
				scopes = append(scopes, Scope(s.Campus))
			}

			for _, scope := range scopes {
				key := Key{Type: boardType, Period: period, Scope: scope}

				change, err := r.refreshBoard(ctx, key, s, score)
				if err != nil {
					// Сбой одной доски не должен портить остальные.
					r.log.Error("leaderboard refresh failed",
						logger.UserID(s.UserID),
						logger.LeaderboardKey(key.String()),
						logger.Err(err))
					continue
				}
				if scope.IsGlobal() && change.OldRank != change.NewRank {
					changes = append(changes, change)
				}
			}
		}
	}

	return changes, nil
}

// refreshBoard обновляет счёт пользователя в одной доске и пересчитывает
// её ранги под блокировкой доски.
func (r *Ranker) refreshBoard(ctx context.Context, key Key, s *stats.UserStats, score int64) (RankChange, error) {
	change := RankChange{Key: key}

	entry, err := NewEntry(s.UserID, s.DisplayName, key.Scope, score)
	if err != nil {
		return change, err
	}
	entry.Campus = s.Campus.String()

	err = r.repo.WithBoardLock(ctx, key, func(ctx context.Context) error {
		if err := r.repo.UpsertScore(ctx, key, entry); err != nil {
			return err
		}

		rows, err := r.repo.ListEntries(ctx, key)
		if err != nil {
			return err
		}

		ranking := NewRanking()
		for _, row := range rows {
			if addErr := ranking.Add(row); addErr != nil {
				r.log.Warn("duplicate row in leaderboard storage",
					logger.LeaderboardKey(key.String()),
					logger.UserID(row.UserID))
			}
		}

		if prev := ranking.GetByID(s.UserID); prev != nil {
			change.OldRank = prev.Rank
		}

		ranking.Rerank()

		if cur := ranking.GetByID(s.UserID); cur != nil {
			change.NewRank = cur.Rank
		}

		return r.repo.ReplaceRanks(ctx, key, ranking.All())
	})
	if err != nil {
		return change, err
	}

	if r.cache != nil {
		if err := r.cache.InvalidateBoard(ctx, key); err != nil {
			r.log.Warn("leaderboard cache invalidation failed",
				logger.LeaderboardKey(key.String()),
				logger.Err(err))
		}
	}

	return change, nil
}

// RebuildBoard полностью пересобирает одну доску из статистики всех
// пользователей. Используется периодической задачей восстановления.
func (r *Ranker) RebuildBoard(ctx context.Context, key Key, users []*stats.UserStats) error {
	if err := key.Validate(); err != nil {
		return err
	}

	ranking := NewRanking()
	for _, s := range users {
		if s == nil {
			continue
		}
		// Кампусная доска содержит только своих студентов.
		if !key.Scope.IsGlobal() && s.Campus.String() != string(key.Scope) {
			continue
		}

		score, err := ScoreFor(key.Type, s)
		if err != nil {
			return err
		}

		entry, err := NewEntry(s.UserID, s.DisplayName, key.Scope, score)
		if err != nil {
			continue
		}
		entry.Campus = s.Campus.String()
		_ = ranking.Add(entry)
	}

	ranking.Rerank()

	err := r.repo.WithBoardLock(ctx, key, func(ctx context.Context) error {
		for _, entry := range ranking.All() {
			if err := r.repo.UpsertScore(ctx, key, entry); err != nil {
				return err
			}
		}
		return r.repo.ReplaceRanks(ctx, key, ranking.All())
	})
	if err != nil {
		return err
	}

	if r.cache != nil {
		if err := r.cache.InvalidateBoard(ctx, key); err != nil {
			r.log.Warn("leaderboard cache invalidation failed",
				logger.LeaderboardKey(key.String()),
				logger.Err(err))
		}
	}

	r.log.Info("leaderboard rebuilt",
		logger.LeaderboardKey(key.String()),
		logger.Int("entries", ranking.Count()))

	return nil
}

// CampusRank возвращает место пользователя в кампусной доске накоплений.
// Используется движком наград для условий campus_rank. 0 - места нет.
func (r *Ranker) CampusRank(ctx context.Context, s *stats.UserStats) (int, error) {
	if s == nil || !s.Campus.HasCampus() {
		return 0, nil
	}

	key := Key{Type: BoardSavings, Period: PeriodAllTime, Scope: Scope(s.Campus)}
	entry, err := r.repo.GetUserEntry(ctx, key, s.UserID)
	if err != nil {
		if errors.Is(err, ErrEmptyLeaderboard) {
			return 0, nil
		}
		return 0, err
	}
	return int(entry.Rank), nil
}
