package postgres

import (
	"context"
	"fmt"

	"github.com/campuscents/campuscents-gamification/internal/domain/achievement"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AchievementRepository implements achievement.Repository for PostgreSQL.
type AchievementRepository struct {
	conn *Connection
}

// NewAchievementRepository creates a new AchievementRepository.
func NewAchievementRepository(conn *Connection) *AchievementRepository {
	return &AchievementRepository{conn: conn}
}

// Append adds an entry to the achievement journal.
func (r *AchievementRepository) Append(ctx context.Context, a *achievement.Achievement) error {
	query := `
		INSERT INTO achievements (
			id, user_id, kind, title, description, points,
			shareable, is_shared, should_celebrate, celebration_priority, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.conn.Exec(ctx, query,
		a.ID,
		a.UserID,
		string(a.Kind),
		a.Title,
		a.Description,
		a.Points,
		a.Shareable,
		a.IsShared,
		a.ShouldCelebrate,
		a.CelebrationPriority,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append achievement: %w", err)
	}

	return nil
}

// ListByUser returns the user's achievements, newest first.
func (r *AchievementRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*achievement.Achievement, error) {
	query := `
		SELECT id, user_id, kind, title, description, points,
		       shareable, is_shared, should_celebrate, celebration_priority, created_at
		FROM achievements
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	defer rows.Close()

	var result []*achievement.Achievement
	for rows.Next() {
		var (
			a    achievement.Achievement
			kind string
		)
		err := rows.Scan(
			&a.ID,
			&a.UserID,
			&kind,
			&a.Title,
			&a.Description,
			&a.Points,
			&a.Shareable,
			&a.IsShared,
			&a.ShouldCelebrate,
			&a.CelebrationPriority,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		a.Kind = achievement.Kind(kind)
		result = append(result, &a)
	}
	return result, rows.Err()
}

// MarkShared marks an achievement as published to the feed.
func (r *AchievementRepository) MarkShared(ctx context.Context, id string) error {
	query := `UPDATE achievements SET is_shared = TRUE WHERE id = $1 AND shareable = TRUE`

	tag, err := r.conn.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark achievement shared: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return achievement.ErrAchievementNotFound
	}

	return nil
}
