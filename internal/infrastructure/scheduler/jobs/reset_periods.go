package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/campuscents/campuscents-gamification/internal/domain/leaderboard"
	"github.com/campuscents/campuscents-gamification/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESET PERIODS JOB
// ══════════════════════════════════════════════════════════════════════════════

// PeriodClearer deletes every leaderboard row of one period.
type PeriodClearer interface {
	ClearPeriod(ctx context.Context, period leaderboard.Period) error
}

// ResetPeriodsJob clears weekly boards at the start of each week and
// monthly boards at the start of each month, then lets the rebuild job
// repopulate them. Each boundary is cleared at most once: the job
// remembers the last boundary it handled, so repeat invocations on the
// boundary day are no-ops and an hourly schedule is safe. The marker
// lives in memory; a worker restart on the boundary day clears again
// and loses at most that day's accumulation until the next rebuild.
type ResetPeriodsJob struct {
	clearer PeriodClearer
	cache   leaderboard.Cache
	logger  *slog.Logger

	timezone *time.Location
	now      func() time.Time

	mu          sync.Mutex
	lastCleared map[leaderboard.Period]time.Time
}

// NewResetPeriodsJob creates a new period reset job.
func NewResetPeriodsJob(clearer PeriodClearer, cache leaderboard.Cache, tz *time.Location, logger *slog.Logger) *ResetPeriodsJob {
	if logger == nil {
		logger = slog.Default()
	}
	if tz == nil {
		tz = time.UTC
	}

	return &ResetPeriodsJob{
		clearer:     clearer,
		cache:       cache,
		logger:      logger.With("job", "reset_periods"),
		timezone:    tz,
		now:         time.Now,
		lastCleared: make(map[leaderboard.Period]time.Time),
	}
}

// Name returns the unique name of the job.
func (j *ResetPeriodsJob) Name() string {
	return "reset_periods"
}

// Description returns a human-readable description.
func (j *ResetPeriodsJob) Description() string {
	return "Clears weekly and monthly leaderboards at period boundaries"
}

// WithClock replaces the time source (for tests).
func (j *ResetPeriodsJob) WithClock(now func() time.Time) *ResetPeriodsJob {
	j.now = now
	return j
}

// Run executes the reset. Only periods whose boundary is today and not
// yet handled are touched; every other invocation is a no-op. A failed
// clear is not recorded as handled, so the next invocation retries it.
func (j *ResetPeriodsJob) Run(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now().In(j.timezone)
	today := timeutil.DateOnly(now)

	var toReset []leaderboard.Period
	if timeutil.StartOfWeek(now).Equal(today) && !j.lastCleared[leaderboard.PeriodWeekly].Equal(today) {
		toReset = append(toReset, leaderboard.PeriodWeekly)
	}
	if timeutil.StartOfMonth(now).Equal(today) && !j.lastCleared[leaderboard.PeriodMonthly].Equal(today) {
		toReset = append(toReset, leaderboard.PeriodMonthly)
	}

	if len(toReset) == 0 {
		j.logger.Debug("no unhandled period boundary")
		return nil
	}

	for _, period := range toReset {
		if err := j.clearer.ClearPeriod(ctx, period); err != nil {
			return fmt.Errorf("clear period %s: %w", period, err)
		}
		j.lastCleared[period] = today

		j.invalidatePeriodCaches(ctx, period)

		j.logger.Info("leaderboard period reset", "period", string(period))
	}

	return nil
}

// invalidatePeriodCaches drops cached global pages of the cleared period.
// Campus pages expire on their own short TTL.
func (j *ResetPeriodsJob) invalidatePeriodCaches(ctx context.Context, period leaderboard.Period) {
	if j.cache == nil {
		return
	}

	for _, boardType := range leaderboard.AllBoardTypes() {
		key := leaderboard.Key{Type: boardType, Period: period, Scope: leaderboard.ScopeGlobal}
		if err := j.cache.InvalidateBoard(ctx, key); err != nil {
			j.logger.Warn("cache invalidation failed",
				"board", key.String(), "error", err)
		}
	}
}
