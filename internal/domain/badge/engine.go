package badge

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/campuscents/campuscents-gamification/internal/domain/achievement"
	"github.com/campuscents/campuscents-gamification/internal/domain/stats"
	"github.com/campuscents/campuscents-gamification/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESULT TYPES
// ══════════════════════════════════════════════════════════════════════════════

// Earned описывает одну только что выданную награду.
type Earned struct {
	// Definition - запись каталога.
	Definition *Definition

	// UserBadge - созданная запись факта получения.
	UserBadge *UserBadge

	// Achievement - запись журнала достижений; nil, если журнал недоступен.
	Achievement *achievement.Achievement
}

// Failure описывает награду, начисление которой не удалось.
type Failure struct {
	BadgeID string
	Err     error
}

// EvalResult - итог одного прохода по каталогу.
type EvalResult struct {
	// Earned - выданные награды в порядке каталога.
	Earned []Earned

	// Failures - частичные сбои. Сбой одной награды не блокирует остальные.
	Failures []Failure

	// XPGained - суммарные XP за пачку.
	XPGained int

	// LeveledUp - вырос ли уровень после начисления всей пачки.
	LeveledUp bool
}

// HasEarned возвращает true, если выдана хотя бы одна награда.
func (r *EvalResult) HasEarned() bool {
	return len(r.Earned) > 0
}

// ══════════════════════════════════════════════════════════════════════════════
// ENGINE
// ══════════════════════════════════════════════════════════════════════════════

// Engine начисляет награды по каталогу.
// Проход идемпотентен: повторный вызов на тех же данных не выдаёт дублей.
type Engine struct {
	badges       Repository
	achievements achievement.Repository
	log          *logger.Logger
}

// NewEngine создаёт движок наград.
func NewEngine(badges Repository, achievements achievement.Repository, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Default()
	}
	return &Engine{
		badges:       badges,
		achievements: achievements,
		log:          log.With(logger.Component("badge_engine")),
	}
}

// Evaluate проходит по каталогу и выдаёт все новые награды.
//
// Для каждой активной записи каталога, которой у пользователя ещё нет,
// проверяется условие. Выданные в одной пачке награды обрабатываются в
// порядке каталога; XP и уровень обновляются накопительно, поэтому итоговый
// уровень учитывает всю пачку сразу. Первая награда пачки помечается
// showcased. Сбой одной награды записывается в Failures, остальные
// обрабатываются дальше.
//
// Метод изменяет ectx.Stats (XP, уровень, звание); запись в хранилище
// статистики делает вызывающий.
func (e *Engine) Evaluate(ctx context.Context, ectx EvalContext) (*EvalResult, error) {
	if ectx.Stats == nil {
		return nil, ErrNilStats
	}

	defs, err := e.badges.ListActiveDefinitions(ctx)
	if err != nil {
		return nil, err
	}

	held, err := e.badges.ListUserBadges(ctx, ectx.Stats.UserID)
	if err != nil {
		return nil, err
	}

	heldSet := make(map[string]struct{}, len(held))
	for _, ub := range held {
		heldSet[ub.BadgeID] = struct{}{}
	}

	result := &EvalResult{}

	for _, def := range defs {
		if _, ok := heldSet[def.ID]; ok {
			continue
		}

		satisfied, err := def.Requirement.Satisfied(ectx)
		if err != nil {
			result.Failures = append(result.Failures, Failure{BadgeID: def.ID, Err: err})
			e.log.Warn("badge requirement evaluation failed",
				logger.UserID(ectx.Stats.UserID),
				logger.String("badge_id", def.ID),
				logger.Err(err))
			continue
		}
		if !satisfied {
			continue
		}

		earned, err := e.award(ctx, ectx, def, !result.HasEarned())
		if err != nil {
			if errors.Is(err, ErrDuplicateAward) {
				// Конкурентный двойник успел первым. Награда уже у
				// пользователя, это и есть желаемый итог.
				heldSet[def.ID] = struct{}{}
				continue
			}
			result.Failures = append(result.Failures, Failure{BadgeID: def.ID, Err: err})
			e.log.Error("badge award failed",
				logger.UserID(ectx.Stats.UserID),
				logger.String("badge_id", def.ID),
				logger.Err(err))
			continue
		}

		result.Earned = append(result.Earned, earned)
		result.XPGained += def.PointsAwarded
		heldSet[def.ID] = struct{}{}

		e.log.Info("badge awarded",
			logger.UserID(ectx.Stats.UserID),
			logger.BadgeName(def.Name),
			logger.XPAmount(def.PointsAwarded))
	}

	// XP начисляются после вставки записи: если вставка упала, очков нет.
	if result.XPGained > 0 {
		leveledUp, err := ectx.Stats.AddXP(stats.XP(result.XPGained))
		if err != nil {
			return result, err
		}
		result.LeveledUp = leveledUp
	}

	return result, nil
}

// award вставляет запись UserBadge и дописывает журнал достижений.
func (e *Engine) award(ctx context.Context, ectx EvalContext, def *Definition, showcased bool) (Earned, error) {
	ub := &UserBadge{
		ID:        uuid.New().String(),
		UserID:    ectx.Stats.UserID,
		BadgeID:   def.ID,
		EarnedAt:  time.Now().UTC(),
		Showcased: showcased,
		Snapshot:  SnapshotOf(ectx.Stats),
	}

	if err := e.badges.InsertUserBadge(ctx, ub); err != nil {
		return Earned{}, err
	}

	earned := Earned{Definition: def, UserBadge: ub}

	rec, err := achievement.New(
		ectx.Stats.UserID,
		achievement.KindBadge,
		def.Name,
		def.Description,
		def.PointsAwarded,
		true,
	)
	if err == nil {
		if appendErr := e.achievements.Append(ctx, rec); appendErr != nil {
			// Журнал вторичен: награда выдана, запись ленты потеряна.
			e.log.Warn("achievement append failed",
				logger.UserID(ectx.Stats.UserID),
				logger.String("badge_id", def.ID),
				logger.Err(appendErr))
		} else {
			earned.Achievement = rec
		}
	}

	return earned, nil
}
