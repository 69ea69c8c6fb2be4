package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campuscents/campuscents-gamification/internal/domain/shared"
	"github.com/campuscents/campuscents-gamification/internal/domain/stats"
	"github.com/campuscents/campuscents-gamification/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STREAK RISK SCAN JOB
// ══════════════════════════════════════════════════════════════════════════════

// StreakRiskScanJob finds users whose streak dies at midnight unless they
// act today: last activity was yesterday, streak long enough to care
// about. Each hit publishes a StreakAtRiskEvent; the notification
// handler turns it into an evening reminder push.
type StreakRiskScanJob struct {
	statsRepo stats.Repository
	publisher shared.EventPublisher
	logger    *slog.Logger

	config StreakRiskConfig
}

// StreakRiskConfig contains configuration for the risk scan.
type StreakRiskConfig struct {
	// MinStreak is the shortest streak worth a reminder. Nagging someone
	// about a 1-day streak does more harm than good.
	MinStreak int

	// Timezone anchors "yesterday" for the scan.
	Timezone *time.Location

	// Timeout is the maximum duration for the scan.
	Timeout time.Duration
}

// DefaultStreakRiskConfig returns sensible defaults.
func DefaultStreakRiskConfig() StreakRiskConfig {
	return StreakRiskConfig{
		MinStreak: 3,
		Timezone:  time.UTC,
		Timeout:   2 * time.Minute,
	}
}

// NewStreakRiskScanJob creates a new streak risk scan job.
func NewStreakRiskScanJob(
	statsRepo stats.Repository,
	publisher shared.EventPublisher,
	logger *slog.Logger,
	config StreakRiskConfig,
) *StreakRiskScanJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MinStreak <= 0 {
		config.MinStreak = 3
	}
	if config.Timezone == nil {
		config.Timezone = time.UTC
	}

	return &StreakRiskScanJob{
		statsRepo: statsRepo,
		publisher: publisher,
		logger:    logger.With("job", "streak_risk_scan"),
		config:    config,
	}
}

// Name returns the unique name of the job.
func (j *StreakRiskScanJob) Name() string {
	return "streak_risk_scan"
}

// Description returns a human-readable description.
func (j *StreakRiskScanJob) Description() string {
	return "Publishes at-risk events for streaks about to break"
}

// Run executes the scan.
func (j *StreakRiskScanJob) Run(ctx context.Context) error {
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	yesterday := timeutil.Today(j.config.Timezone).AddDate(0, 0, -1)

	atRisk, err := j.statsRepo.ListAtRiskOfBreak(ctx, yesterday, j.config.MinStreak)
	if err != nil {
		return fmt.Errorf("list at-risk users: %w", err)
	}

	published := 0
	for _, u := range atRisk {
		event := shared.NewStreakAtRiskEvent(u.UserID, u.CurrentStreak)
		if err := j.publisher.Publish(event); err != nil {
			j.logger.Error("failed to publish at-risk event",
				"user_id", u.UserID, "error", err)
			continue
		}
		published++
	}

	j.logger.Info("streak risk scan complete",
		"at_risk", len(atRisk),
		"published", published)

	return nil
}
