// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/campuscents/campuscents-gamification/internal/domain/achievement"
	"github.com/campuscents/campuscents-gamification/internal/domain/badge"
	"github.com/campuscents/campuscents-gamification/internal/domain/celebration"
	"github.com/campuscents/campuscents-gamification/internal/domain/leaderboard"
	"github.com/campuscents/campuscents-gamification/internal/domain/milestone"
	"github.com/campuscents/campuscents-gamification/internal/domain/shared"
	"github.com/campuscents/campuscents-gamification/internal/domain/stats"
	"github.com/campuscents/campuscents-gamification/internal/domain/streak"
	"github.com/campuscents/campuscents-gamification/pkg/logger"
	"github.com/campuscents/campuscents-gamification/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER LOCKS
// Per-user serialization: all writes for one user go through one mutex, so
// stage ordering (streak -> milestone -> badges -> leaderboard) is preserved
// for that user. Different users proceed fully in parallel.
// ══════════════════════════════════════════════════════════════════════════════

type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

// acquire locks the per-user mutex and returns a release function.
// Lock entries are reference-counted so the map does not grow forever.
func (ul *userLocks) acquire(userID string) func() {
	ul.mu.Lock()
	l, ok := ul.locks[userID]
	if !ok {
		l = &userLock{}
		ul.locks[userID] = l
	}
	l.refs++
	ul.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		ul.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(ul.locks, userID)
		}
		ul.mu.Unlock()
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PIPELINE
// ══════════════════════════════════════════════════════════════════════════════

// Outcome collects what one pipeline run produced.
type Outcome struct {
	// Stats is the user state after all stages.
	Stats *stats.UserStats

	// Streak is the streak transition.
	Streak streak.Result

	// Milestone is the crossed streak milestone, if any.
	Milestone *milestone.Reached

	// Badges is the badge evaluation result, if the stage ran.
	Badges *badge.EvalResult

	// RankChanges are global leaderboard position changes.
	RankChanges []leaderboard.RankChange

	// Celebrations are the payloads enqueued by this run.
	Celebrations []*celebration.Item

	// Events are the domain events published by this run.
	Events []shared.Event
}

// Hints carries targeted external lookups the stats document does not hold.
type Hints struct {
	// BudgetStreakDays is the user's current within-budget day streak.
	BudgetStreakDays int
}

// Pipeline runs the engine stages for one inbound event:
// streak update -> milestone check -> badge evaluation -> leaderboard
// refresh -> celebration enqueue.
//
// Stages commit independently and are idempotent, so a retry after a
// mid-pipeline store failure is safe: already-applied stages become no-ops.
// The pipeline is not a transaction; a leaderboard failure never rolls back
// an already-committed streak update.
type Pipeline struct {
	statsRepo    stats.Repository
	tracker      *streak.Tracker
	badges       *badge.Engine
	ranker       *leaderboard.Ranker
	celebrations celebration.Queue
	achievements achievement.Repository
	publisher    shared.EventPublisher
	retrier      *retry.Retrier
	locks        *userLocks
	log          *logger.Logger
}

// NewPipeline wires the engine stages together.
func NewPipeline(
	statsRepo stats.Repository,
	tracker *streak.Tracker,
	badges *badge.Engine,
	ranker *leaderboard.Ranker,
	celebrations celebration.Queue,
	achievements achievement.Repository,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *Pipeline {
	if log == nil {
		log = logger.Default()
	}
	return &Pipeline{
		statsRepo:    statsRepo,
		tracker:      tracker,
		badges:       badges,
		ranker:       ranker,
		celebrations: celebrations,
		achievements: achievements,
		publisher:    publisher,
		retrier:      retry.DatabaseRetrier(),
		locks:        newUserLocks(),
		log:          log.With(logger.Component("pipeline")),
	}
}

// Run executes the stage sequence for one user event.
//
// mutate applies the event's direct effect to the stats document (savings
// delta, goal counter) before the derived stages run; pass nil for events
// with no direct effect (login).
func (p *Pipeline) Run(ctx context.Context, userID string, mutate func(*stats.UserStats) error, hints Hints) (*Outcome, error) {
	if userID == "" {
		return nil, shared.ErrInvalidEvent
	}

	release := p.locks.acquire(userID)
	defer release()

	var user *stats.UserStats
	err := p.retrier.Do(ctx, func(ctx context.Context) error {
		var err error
		user, err = p.statsRepo.GetByUserID(ctx, userID)
		if err != nil && !shared.IsRetryable(err) {
			return retry.Permanent(err)
		}
		return retry.Retryable(err)
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: load stats: %w", err)
	}

	outcome := &Outcome{Stats: user}

	if mutate != nil {
		if err := mutate(user); err != nil {
			return nil, fmt.Errorf("pipeline: apply event: %w", err)
		}
	}

	p.runStreakStage(user, outcome)
	p.runMilestoneStage(ctx, user, outcome)
	p.runBadgeStage(ctx, user, hints, outcome)

	// One atomic write covers the event effect, streak, XP, level and title.
	err = p.retrier.Do(ctx, func(ctx context.Context) error {
		err := p.statsRepo.Update(ctx, user)
		if err != nil && !shared.IsRetryable(err) {
			return retry.Permanent(err)
		}
		return retry.Retryable(err)
	})
	if err != nil {
		return outcome, fmt.Errorf("pipeline: persist stats: %w", err)
	}

	p.runLeaderboardStage(ctx, user, outcome)

	p.publish(outcome)

	return outcome, nil
}

// runStreakStage advances the streak state machine and stages its events.
func (p *Pipeline) runStreakStage(user *stats.UserStats, outcome *Outcome) {
	res := p.tracker.Update(user.LastActivityDate, user.CurrentStreak, user.LongestStreak, user.Timezone)
	outcome.Streak = res

	if !res.Changed() {
		return
	}

	user.SetStreak(res.NewStreak, res.ActivityDate)

	outcome.Events = append(outcome.Events,
		shared.NewStreakUpdatedEvent(user.UserID, res.OldStreak, res.NewStreak, res.LongestStreak))

	if res.Break != nil && res.Break.ShouldNotify {
		outcome.Events = append(outcome.Events,
			shared.NewStreakBrokenEvent(user.UserID, res.Break.PreviousStreak,
				res.Break.DaysMissed, string(res.Break.Severity)))
	}
}

// runMilestoneStage fires the highest streak milestone crossed, if any.
func (p *Pipeline) runMilestoneStage(ctx context.Context, user *stats.UserStats, outcome *Outcome) {
	reached, ok := milestone.Detect(outcome.Streak.OldStreak, outcome.Streak.NewStreak)
	if !ok {
		return
	}
	outcome.Milestone = &reached

	if _, err := user.AddXP(stats.XP(reached.Points)); err != nil {
		p.log.Error("milestone xp grant failed", logger.UserID(user.UserID), logger.Err(err))
	}

	rec, err := achievement.New(user.UserID, achievement.KindMilestone,
		reached.Title,
		fmt.Sprintf("%d-day streak milestone", reached.Threshold),
		reached.Points, true)
	if err == nil {
		rec.WithCelebration(string(reached.Priority))
		if appendErr := p.achievements.Append(ctx, rec); appendErr != nil {
			p.log.Warn("milestone achievement append failed",
				logger.UserID(user.UserID), logger.Err(appendErr))
		}
	}

	item, err := celebration.NewItem(user.UserID, celebration.KindMilestone,
		reached.Title,
		fmt.Sprintf("%d days in a row! +%d XP", reached.Threshold, reached.Points),
		"streak-flame", reached.Points, celebration.Priority(reached.Priority))
	if err == nil {
		p.enqueueCelebration(ctx, item, outcome)
	}

	perks := make([]string, 0, len(reached.Perks))
	for _, perk := range reached.Perks {
		perks = append(perks, string(perk))
	}
	outcome.Events = append(outcome.Events,
		shared.NewMilestoneReachedEvent(user.UserID, reached.Threshold, reached.Title,
			reached.Points, perks, string(reached.Priority)))
}

// runBadgeStage evaluates the badge catalog and stages award celebrations.
func (p *Pipeline) runBadgeStage(ctx context.Context, user *stats.UserStats, hints Hints, outcome *Outcome) {
	oldLevel := user.Level

	campusRank, err := p.ranker.CampusRank(ctx, user)
	if err != nil {
		// Rank lookup is an input to campus_rank badges only; evaluation
		// proceeds with rank unknown.
		p.log.Warn("campus rank lookup failed", logger.UserID(user.UserID), logger.Err(err))
		campusRank = 0
	}

	evalResult, err := p.badges.Evaluate(ctx, badge.EvalContext{
		Stats:            user,
		CampusRank:       campusRank,
		BudgetStreakDays: hints.BudgetStreakDays,
	})
	if err != nil {
		p.log.Error("badge evaluation failed", logger.UserID(user.UserID), logger.Err(err))
		return
	}
	outcome.Badges = evalResult

	for _, earned := range evalResult.Earned {
		outcome.Events = append(outcome.Events,
			shared.NewBadgeEarnedEvent(user.UserID, earned.Definition.ID, earned.Definition.Name,
				earned.Definition.PointsAwarded, int(user.Level), earned.UserBadge.Showcased))

		item, err := celebration.NewItem(user.UserID, celebration.KindBadge,
			earned.Definition.Name, earned.Definition.Description,
			earned.Definition.Icon, earned.Definition.PointsAwarded, celebration.PriorityNormal)
		if err == nil {
			p.enqueueCelebration(ctx, item, outcome)
		}
	}

	if user.Level > oldLevel {
		outcome.Events = append(outcome.Events,
			shared.NewLevelUpEvent(user.UserID, int(oldLevel), int(user.Level), string(user.Title)))

		item, err := celebration.NewItem(user.UserID, celebration.KindLevelUp,
			fmt.Sprintf("Level %d!", user.Level),
			fmt.Sprintf("You are now a %s", user.Title),
			"level-up", 0, celebration.PriorityNormal)
		if err == nil {
			p.enqueueCelebration(ctx, item, outcome)
		}
	}
}

// runLeaderboardStage refreshes all boards for the user.
func (p *Pipeline) runLeaderboardStage(ctx context.Context, user *stats.UserStats, outcome *Outcome) {
	changes, err := p.ranker.RefreshUser(ctx, user)
	if err != nil {
		// Stale ranks heal on the next successful event for this user.
		p.log.Error("leaderboard refresh failed", logger.UserID(user.UserID), logger.Err(err))
	}
	outcome.RankChanges = changes

	for _, change := range changes {
		outcome.Events = append(outcome.Events,
			shared.NewRankChangedEvent(user.UserID, string(change.Key.Type),
				string(change.Key.Period), change.Key.Scope.String(),
				int(change.OldRank), int(change.NewRank)))
	}
}

// enqueueCelebration pushes a payload onto the user's queue, best-effort.
func (p *Pipeline) enqueueCelebration(ctx context.Context, item *celebration.Item, outcome *Outcome) {
	if err := p.celebrations.Enqueue(ctx, item); err != nil {
		p.log.Warn("celebration enqueue failed",
			logger.UserID(item.UserID), logger.Err(err))
		return
	}
	outcome.Celebrations = append(outcome.Celebrations, item)
}

// publish emits staged events after the stats write has committed.
func (p *Pipeline) publish(outcome *Outcome) {
	if p.publisher == nil {
		return
	}
	for _, event := range outcome.Events {
		if err := p.publisher.Publish(event); err != nil {
			p.log.Warn("event publish failed",
				logger.EventKind(string(event.EventType())), logger.Err(err))
		}
	}
}

// IsNotFound reports whether the pipeline failed because the user has no
// stats document yet.
func IsNotFound(err error) bool {
	return shared.IsNotFound(err) || errors.Is(err, stats.ErrStatsNotFound)
}
