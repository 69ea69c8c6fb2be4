package command

import (
	"context"
	"fmt"
	"time"

	"github.com/campuscents/campuscents-gamification/internal/domain/celebration"
	"github.com/campuscents/campuscents-gamification/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD LOGIN COMMAND
// A daily login counts as activity for the streak but carries no direct
// stats effect. Login is also the natural client contact, so the handler
// drains pending celebrations for the app to show.
// ══════════════════════════════════════════════════════════════════════════════

// RecordLoginCommand marks a user login.
type RecordLoginCommand struct {
	// UserID is the internal ID of the user.
	UserID string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RecordLoginCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("%w: user_id is required", shared.ErrInvalidEvent)
	}
	return nil
}

// RecordLoginResult contains the outcome of a login event.
type RecordLoginResult struct {
	UserID        string
	CurrentStreak int
	StreakChanged bool

	// Celebrations are the drained pending payloads, FIFO. Delivery is
	// at-most-once: they are already off the queue.
	Celebrations []*celebration.Item

	ProcessedAt time.Time
}

// RecordLoginHandler handles the RecordLoginCommand.
type RecordLoginHandler struct {
	pipeline     *Pipeline
	celebrations celebration.Queue
}

// NewRecordLoginHandler creates a new RecordLoginHandler.
func NewRecordLoginHandler(pipeline *Pipeline, celebrations celebration.Queue) *RecordLoginHandler {
	return &RecordLoginHandler{pipeline: pipeline, celebrations: celebrations}
}

// Handle executes the record login command.
func (h *RecordLoginHandler) Handle(ctx context.Context, cmd RecordLoginCommand) (*RecordLoginResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("record_login: %w", err)
	}

	outcome, err := h.pipeline.Run(ctx, cmd.UserID, nil, Hints{})
	if err != nil {
		return nil, fmt.Errorf("record_login: %w", err)
	}

	// Drain after the pipeline so celebrations produced by this very login
	// (a streak milestone, for example) ride along in the same response.
	pending, err := h.celebrations.DrainPending(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("record_login: drain celebrations: %w", err)
	}

	return &RecordLoginResult{
		UserID:        cmd.UserID,
		CurrentStreak: outcome.Stats.CurrentStreak,
		StreakChanged: outcome.Streak.Changed(),
		Celebrations:  pending,
		ProcessedAt:   time.Now().UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DRAIN CELEBRATIONS COMMAND
// Standalone drain for clients that poll for pending celebrations outside
// the login flow.
// ══════════════════════════════════════════════════════════════════════════════

// DrainCelebrationsCommand requests all pending celebrations for a user.
type DrainCelebrationsCommand struct {
	UserID string
}

// Validate validates the command.
func (c DrainCelebrationsCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("%w: user_id is required", shared.ErrInvalidEvent)
	}
	return nil
}

// DrainCelebrationsHandler handles the DrainCelebrationsCommand.
type DrainCelebrationsHandler struct {
	celebrations celebration.Queue
}

// NewDrainCelebrationsHandler creates a new DrainCelebrationsHandler.
func NewDrainCelebrationsHandler(celebrations celebration.Queue) *DrainCelebrationsHandler {
	return &DrainCelebrationsHandler{celebrations: celebrations}
}

// Handle drains and returns the user's pending celebrations.
func (h *DrainCelebrationsHandler) Handle(ctx context.Context, cmd DrainCelebrationsCommand) ([]*celebration.Item, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("drain_celebrations: %w", err)
	}

	items, err := h.celebrations.DrainPending(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("drain_celebrations: %w", err)
	}
	return items, nil
}
