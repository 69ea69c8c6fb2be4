package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campuscents/campuscents-gamification/internal/domain/shared"
	"github.com/campuscents/campuscents-gamification/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER USER COMMAND
// Creates the zero-valued stats document at account creation. Idempotent:
// re-registering an existing user is a no-op.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterUserCommand contains the data to create a stats document.
type RegisterUserCommand struct {
	// UserID is the internal ID of the user.
	UserID string

	// DisplayName is shown on leaderboards.
	DisplayName string

	// Campus is the user's university (optional).
	Campus string

	// Timezone is the IANA timezone for calendar-day streak math.
	// Defaults to UTC when empty.
	Timezone string
}

// Validate validates the command.
func (c RegisterUserCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("%w: user_id is required", shared.ErrInvalidEvent)
	}
	if c.DisplayName == "" {
		return fmt.Errorf("%w: display_name is required", shared.ErrInvalidEvent)
	}
	return nil
}

// RegisterUserResult contains the outcome of user registration.
type RegisterUserResult struct {
	UserID         string
	Created        bool
	AlreadyExisted bool
	RegisteredAt   time.Time
}

// RegisterUserHandler handles the RegisterUserCommand.
type RegisterUserHandler struct {
	statsRepo stats.Repository
}

// NewRegisterUserHandler creates a new RegisterUserHandler.
func NewRegisterUserHandler(statsRepo stats.Repository) *RegisterUserHandler {
	return &RegisterUserHandler{statsRepo: statsRepo}
}

// Handle executes the register user command.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*RegisterUserResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("register_user: %w", err)
	}

	user, err := stats.NewUserStats(stats.NewUserStatsParams{
		UserID:      cmd.UserID,
		DisplayName: cmd.DisplayName,
		Campus:      stats.Campus(cmd.Campus),
		Timezone:    cmd.Timezone,
	})
	if err != nil {
		return nil, fmt.Errorf("register_user: %w", err)
	}

	if err := h.statsRepo.Create(ctx, user); err != nil {
		if shared.IsAlreadyExists(err) || errors.Is(err, stats.ErrStatsAlreadyExist) {
			return &RegisterUserResult{
				UserID:         cmd.UserID,
				AlreadyExisted: true,
				RegisteredAt:   time.Now().UTC(),
			}, nil
		}
		return nil, fmt.Errorf("register_user: %w", err)
	}

	return &RegisterUserResult{
		UserID:       cmd.UserID,
		Created:      true,
		RegisteredAt: time.Now().UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SHARE ACHIEVEMENT COMMAND
// Marks an achievement as shared to the social feed and bumps the counter
// that feeds social badges.
// ══════════════════════════════════════════════════════════════════════════════

// ShareAchievementCommand marks an achievement shared.
type ShareAchievementCommand struct {
	// UserID is the internal ID of the user.
	UserID string

	// AchievementID is the achievement being shared.
	AchievementID string
}

// Validate validates the command.
func (c ShareAchievementCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("%w: user_id is required", shared.ErrInvalidEvent)
	}
	if c.AchievementID == "" {
		return fmt.Errorf("%w: achievement_id is required", shared.ErrInvalidEvent)
	}
	return nil
}

// ShareAchievementResult contains the outcome of sharing.
type ShareAchievementResult struct {
	UserID             string
	AchievementsShared int
	BadgesEarned       []string
	ProcessedAt        time.Time
}

// ShareAchievementHandler handles the ShareAchievementCommand.
type ShareAchievementHandler struct {
	pipeline     *Pipeline
	achievements achievementMarker
}

// achievementMarker is the slice of the achievement repository this
// handler needs.
type achievementMarker interface {
	MarkShared(ctx context.Context, id string) error
}

// NewShareAchievementHandler creates a new ShareAchievementHandler.
func NewShareAchievementHandler(pipeline *Pipeline, achievements achievementMarker) *ShareAchievementHandler {
	return &ShareAchievementHandler{pipeline: pipeline, achievements: achievements}
}

// Handle executes the share achievement command.
func (h *ShareAchievementHandler) Handle(ctx context.Context, cmd ShareAchievementCommand) (*ShareAchievementResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("share_achievement: %w", err)
	}

	if err := h.achievements.MarkShared(ctx, cmd.AchievementID); err != nil {
		return nil, fmt.Errorf("share_achievement: %w", err)
	}

	outcome, err := h.pipeline.Run(ctx, cmd.UserID, func(s *stats.UserStats) error {
		s.RecordAchievementShared()
		return nil
	}, Hints{})
	if err != nil {
		return nil, fmt.Errorf("share_achievement: %w", err)
	}

	result := &ShareAchievementResult{
		UserID:             cmd.UserID,
		AchievementsShared: outcome.Stats.AchievementsShared,
		ProcessedAt:        time.Now().UTC(),
	}
	if outcome.Badges != nil {
		for _, earned := range outcome.Badges.Earned {
			result.BadgesEarned = append(result.BadgesEarned, earned.Definition.Name)
		}
	}

	return result, nil
}
