package command

import (
	"context"
	"fmt"
	"time"

	"github.com/campuscents/campuscents-gamification/internal/domain/shared"
	"github.com/campuscents/campuscents-gamification/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE GOAL COMMAND
// A finished savings goal bumps the goals counter, counts as daily activity
// and can unlock goal badges.
// ══════════════════════════════════════════════════════════════════════════════

// CompleteGoalCommand contains the data of one completed savings goal.
type CompleteGoalCommand struct {
	// UserID is the internal ID of the user.
	UserID string

	// GoalID is the ID of the completed goal.
	GoalID string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c CompleteGoalCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("%w: user_id is required", shared.ErrInvalidEvent)
	}
	if c.GoalID == "" {
		return fmt.Errorf("%w: goal_id is required", shared.ErrInvalidEvent)
	}
	return nil
}

// CompleteGoalResult contains the outcome of the goal completion.
type CompleteGoalResult struct {
	UserID         string
	GoalsCompleted int
	CurrentStreak  int
	BadgesEarned   []string
	Level          int
	ProcessedAt    time.Time
}

// CompleteGoalHandler handles the CompleteGoalCommand.
type CompleteGoalHandler struct {
	pipeline *Pipeline
}

// NewCompleteGoalHandler creates a new CompleteGoalHandler.
func NewCompleteGoalHandler(pipeline *Pipeline) *CompleteGoalHandler {
	return &CompleteGoalHandler{pipeline: pipeline}
}

// Handle executes the complete goal command.
func (h *CompleteGoalHandler) Handle(ctx context.Context, cmd CompleteGoalCommand) (*CompleteGoalResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("complete_goal: %w", err)
	}

	outcome, err := h.pipeline.Run(ctx, cmd.UserID, func(s *stats.UserStats) error {
		s.RecordGoalCompleted()
		return nil
	}, Hints{})
	if err != nil {
		return nil, fmt.Errorf("complete_goal: %w", err)
	}

	result := &CompleteGoalResult{
		UserID:         cmd.UserID,
		GoalsCompleted: outcome.Stats.GoalsCompleted,
		CurrentStreak:  outcome.Stats.CurrentStreak,
		Level:          int(outcome.Stats.Level),
		ProcessedAt:    time.Now().UTC(),
	}
	if outcome.Badges != nil {
		for _, earned := range outcome.Badges.Earned {
			result.BadgesEarned = append(result.BadgesEarned, earned.Definition.Name)
		}
	}

	return result, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE HUSTLE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// CompleteHustleCommand contains the data of one finished side hustle.
type CompleteHustleCommand struct {
	// UserID is the internal ID of the user.
	UserID string

	// HustleID is the ID of the completed hustle.
	HustleID string

	// EarnedCents is the income earned, applied to net savings.
	EarnedCents int64

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c CompleteHustleCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("%w: user_id is required", shared.ErrInvalidEvent)
	}
	if c.HustleID == "" {
		return fmt.Errorf("%w: hustle_id is required", shared.ErrInvalidEvent)
	}
	if c.EarnedCents < 0 {
		return fmt.Errorf("%w: earned amount must be non-negative", shared.ErrInvalidEvent)
	}
	return nil
}

// CompleteHustleResult contains the outcome of the hustle completion.
type CompleteHustleResult struct {
	UserID           string
	HustlesCompleted int
	NetSavings       int64
	BadgesEarned     []string
	ProcessedAt      time.Time
}

// CompleteHustleHandler handles the CompleteHustleCommand.
type CompleteHustleHandler struct {
	pipeline *Pipeline
}

// NewCompleteHustleHandler creates a new CompleteHustleHandler.
func NewCompleteHustleHandler(pipeline *Pipeline) *CompleteHustleHandler {
	return &CompleteHustleHandler{pipeline: pipeline}
}

// Handle executes the complete hustle command.
func (h *CompleteHustleHandler) Handle(ctx context.Context, cmd CompleteHustleCommand) (*CompleteHustleResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("complete_hustle: %w", err)
	}

	outcome, err := h.pipeline.Run(ctx, cmd.UserID, func(s *stats.UserStats) error {
		s.RecordHustleCompleted()
		if cmd.EarnedCents > 0 {
			s.ApplyTransaction(stats.Money(cmd.EarnedCents), true)
		}
		return nil
	}, Hints{})
	if err != nil {
		return nil, fmt.Errorf("complete_hustle: %w", err)
	}

	result := &CompleteHustleResult{
		UserID:           cmd.UserID,
		HustlesCompleted: outcome.Stats.HustlesCompleted,
		NetSavings:       int64(outcome.Stats.NetSavings),
		ProcessedAt:      time.Now().UTC(),
	}
	if outcome.Badges != nil {
		for _, earned := range outcome.Badges.Earned {
			result.BadgesEarned = append(result.BadgesEarned, earned.Definition.Name)
		}
	}

	return result, nil
}
