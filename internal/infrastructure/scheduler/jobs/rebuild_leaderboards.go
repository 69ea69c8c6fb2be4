// Package jobs contains implementations of scheduled jobs for the
// CampusCents gamification engine.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/campuscents/campuscents-gamification/internal/domain/leaderboard"
	"github.com/campuscents/campuscents-gamification/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// REBUILD LEADERBOARDS JOB
// ══════════════════════════════════════════════════════════════════════════════

// RebuildLeaderboardsJob recomputes every leaderboard from user stats.
// Incremental per-event refreshes keep boards current during the day;
// this job is the safety net that repairs drift (missed events, manual
// stat corrections, period resets).
type RebuildLeaderboardsJob struct {
	statsRepo stats.Repository
	ranker    *leaderboard.Ranker
	logger    *slog.Logger

	config RebuildLeaderboardsConfig

	lastStats atomic.Value // *RebuildStats
}

// RebuildLeaderboardsConfig contains configuration for the rebuild job.
type RebuildLeaderboardsConfig struct {
	// Periods restricts which periods get rebuilt (empty = all).
	Periods []leaderboard.Period

	// Timeout is the maximum duration for the whole rebuild.
	Timeout time.Duration
}

// DefaultRebuildLeaderboardsConfig returns sensible defaults.
func DefaultRebuildLeaderboardsConfig() RebuildLeaderboardsConfig {
	return RebuildLeaderboardsConfig{
		Periods: nil,
		Timeout: 5 * time.Minute,
	}
}

// RebuildStats contains statistics from a rebuild run.
type RebuildStats struct {
	StartedAt    time.Time
	CompletedAt  time.Time
	Duration     time.Duration
	TotalUsers   int
	BoardsBuilt  int
	BoardsFailed int
	Errors       []error
}

// NewRebuildLeaderboardsJob creates a new rebuild job.
func NewRebuildLeaderboardsJob(
	statsRepo stats.Repository,
	ranker *leaderboard.Ranker,
	logger *slog.Logger,
	config RebuildLeaderboardsConfig,
) *RebuildLeaderboardsJob {
	if logger == nil {
		logger = slog.Default()
	}

	return &RebuildLeaderboardsJob{
		statsRepo: statsRepo,
		ranker:    ranker,
		logger:    logger.With("job", "rebuild_leaderboards"),
		config:    config,
	}
}

// Name returns the unique name of the job.
func (j *RebuildLeaderboardsJob) Name() string {
	return "rebuild_leaderboards"
}

// Description returns a human-readable description.
func (j *RebuildLeaderboardsJob) Description() string {
	return "Recomputes all leaderboards from user stats"
}

// Run executes the rebuild.
func (j *RebuildLeaderboardsJob) Run(ctx context.Context) error {
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	result := &RebuildStats{StartedAt: time.Now()}
	defer func() {
		result.CompletedAt = time.Now()
		result.Duration = result.CompletedAt.Sub(result.StartedAt)
		j.lastStats.Store(result)
	}()

	users, err := j.statsRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	result.TotalUsers = len(users)

	periods := j.config.Periods
	if len(periods) == 0 {
		periods = leaderboard.AllPeriods()
	}

	// Global board plus one board per campus seen in the user set.
	scopes := []leaderboard.Scope{leaderboard.ScopeGlobal}
	seen := make(map[string]bool)
	for _, u := range users {
		campus := u.Campus.String()
		if campus != "" && !seen[campus] {
			seen[campus] = true
			scopes = append(scopes, leaderboard.Scope(campus))
		}
	}

	for _, boardType := range leaderboard.AllBoardTypes() {
		for _, period := range periods {
			for _, scope := range scopes {
				key := leaderboard.Key{Type: boardType, Period: period, Scope: scope}

				if err := j.ranker.RebuildBoard(ctx, key, users); err != nil {
					result.BoardsFailed++
					result.Errors = append(result.Errors, fmt.Errorf("board %s: %w", key.String(), err))
					j.logger.Error("board rebuild failed",
						"board", key.String(), "error", err)
					continue
				}
				result.BoardsBuilt++
			}
		}
	}

	j.logger.Info("leaderboard rebuild complete",
		"users", result.TotalUsers,
		"boards_built", result.BoardsBuilt,
		"boards_failed", result.BoardsFailed,
		"duration", result.Duration)

	if result.BoardsFailed > 0 {
		return fmt.Errorf("rebuild finished with %d failed boards", result.BoardsFailed)
	}

	return nil
}

// LastStats returns statistics from the most recent run.
func (j *RebuildLeaderboardsJob) LastStats() *RebuildStats {
	v, _ := j.lastStats.Load().(*RebuildStats)
	return v
}
