package command

import (
	"context"
	"fmt"
	"time"

	"github.com/campuscents/campuscents-gamification/internal/domain/shared"
	"github.com/campuscents/campuscents-gamification/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROCESS TRANSACTION COMMAND
// A recorded income or expense is the most common inbound event. It moves net
// savings, counts as daily activity for the streak, and can unlock savings
// badges and leaderboard positions.
// ══════════════════════════════════════════════════════════════════════════════

// TransactionKind defines the direction of a transaction.
type TransactionKind string

const (
	// TransactionIncome increases net savings.
	TransactionIncome TransactionKind = "income"

	// TransactionExpense decreases net savings.
	TransactionExpense TransactionKind = "expense"
)

// ProcessTransactionCommand contains the data of one recorded transaction.
type ProcessTransactionCommand struct {
	// UserID is the internal ID of the user.
	UserID string

	// AmountCents is the absolute transaction amount in cents.
	AmountCents int64

	// Kind is the transaction direction.
	Kind TransactionKind

	// Category is the spending/earning category (free-form, optional).
	Category string

	// BudgetStreakDays is the user's current within-budget day streak,
	// supplied by the budgeting subsystem alongside the event.
	BudgetStreakDays int

	// Timestamp is when the transaction was recorded (defaults to now).
	Timestamp time.Time

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c ProcessTransactionCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("%w: user_id is required", shared.ErrInvalidEvent)
	}
	if c.AmountCents < 0 {
		return fmt.Errorf("%w: amount must be non-negative", shared.ErrInvalidEvent)
	}
	switch c.Kind {
	case TransactionIncome, TransactionExpense:
	default:
		return fmt.Errorf("%w: unknown transaction kind %q", shared.ErrInvalidEvent, c.Kind)
	}
	return nil
}

// ProcessTransactionResult contains the outcome of processing a transaction.
type ProcessTransactionResult struct {
	// UserID is the internal ID of the user.
	UserID string

	// NetSavings is the updated net savings in cents.
	NetSavings int64

	// CurrentStreak is the streak after this event.
	CurrentStreak int

	// StreakChanged indicates the streak state moved.
	StreakChanged bool

	// MilestoneTitle names the crossed streak milestone, empty if none.
	MilestoneTitle string

	// BadgesEarned lists newly awarded badge names.
	BadgesEarned []string

	// Level is the user's level after this event.
	Level int

	// ProcessedAt is when the pipeline finished.
	ProcessedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ProcessTransactionHandler handles the ProcessTransactionCommand.
type ProcessTransactionHandler struct {
	pipeline *Pipeline
}

// NewProcessTransactionHandler creates a new ProcessTransactionHandler.
func NewProcessTransactionHandler(pipeline *Pipeline) *ProcessTransactionHandler {
	return &ProcessTransactionHandler{pipeline: pipeline}
}

// Handle executes the process transaction command.
func (h *ProcessTransactionHandler) Handle(ctx context.Context, cmd ProcessTransactionCommand) (*ProcessTransactionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("process_transaction: %w", err)
	}

	timestamp := cmd.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	if timestamp.After(time.Now().UTC().Add(time.Minute)) {
		return nil, fmt.Errorf("process_transaction: %w", shared.ErrActivityInFuture)
	}

	outcome, err := h.pipeline.Run(ctx, cmd.UserID, func(s *stats.UserStats) error {
		s.ApplyTransaction(stats.Money(cmd.AmountCents), cmd.Kind == TransactionIncome)
		return nil
	}, Hints{BudgetStreakDays: cmd.BudgetStreakDays})
	if err != nil {
		return nil, fmt.Errorf("process_transaction: %w", err)
	}

	result := &ProcessTransactionResult{
		UserID:        cmd.UserID,
		NetSavings:    int64(outcome.Stats.NetSavings),
		CurrentStreak: outcome.Stats.CurrentStreak,
		StreakChanged: outcome.Streak.Changed(),
		Level:         int(outcome.Stats.Level),
		ProcessedAt:   time.Now().UTC(),
	}
	if outcome.Milestone != nil {
		result.MilestoneTitle = outcome.Milestone.Title
	}
	if outcome.Badges != nil {
		for _, earned := range outcome.Badges.Earned {
			result.BadgesEarned = append(result.BadgesEarned, earned.Definition.Name)
		}
	}

	return result, nil
}
