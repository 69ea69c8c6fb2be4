package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campuscents/campuscents-gamification/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATS REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StatsRepository implements stats.Repository for PostgreSQL.
type StatsRepository struct {
	conn *Connection
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(conn *Connection) *StatsRepository {
	return &StatsRepository{conn: conn}
}

const statsColumns = `
	user_id, display_name, net_savings_cents, current_streak, longest_streak,
	last_activity_date, experience_points, level, title, campus, timezone,
	goals_completed, hustles_completed, achievements_shared, created_at, updated_at
`

// Create creates a stats document for a new user.
func (r *StatsRepository) Create(ctx context.Context, s *stats.UserStats) error {
	query := `
		INSERT INTO user_stats (` + statsColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.conn.Exec(ctx, query,
		s.UserID,
		s.DisplayName,
		int64(s.NetSavings),
		s.CurrentStreak,
		s.LongestStreak,
		nullableDate(s.LastActivityDate),
		int(s.ExperiencePoints),
		int(s.Level),
		string(s.Title),
		s.Campus.String(),
		s.Timezone,
		s.GoalsCompleted,
		s.HustlesCompleted,
		s.AchievementsShared,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return stats.ErrStatsAlreadyExist
		}
		return fmt.Errorf("failed to create user stats: %w", err)
	}

	return nil
}

// GetByUserID returns the stats document of one user.
func (r *StatsRepository) GetByUserID(ctx context.Context, userID string) (*stats.UserStats, error) {
	query := `SELECT ` + statsColumns + ` FROM user_stats WHERE user_id = $1`

	row := r.conn.QueryRow(ctx, query, userID)
	return r.scanStats(row)
}

// Update persists the whole document in one atomic write.
func (r *StatsRepository) Update(ctx context.Context, s *stats.UserStats) error {
	query := `
		UPDATE user_stats SET
			display_name = $2,
			net_savings_cents = $3,
			current_streak = $4,
			longest_streak = $5,
			last_activity_date = $6,
			experience_points = $7,
			level = $8,
			title = $9,
			campus = $10,
			timezone = $11,
			goals_completed = $12,
			hustles_completed = $13,
			achievements_shared = $14,
			updated_at = $15
		WHERE user_id = $1
	`

	tag, err := r.conn.Exec(ctx, query,
		s.UserID,
		s.DisplayName,
		int64(s.NetSavings),
		s.CurrentStreak,
		s.LongestStreak,
		nullableDate(s.LastActivityDate),
		int(s.ExperiencePoints),
		int(s.Level),
		string(s.Title),
		s.Campus.String(),
		s.Timezone,
		s.GoalsCompleted,
		s.HustlesCompleted,
		s.AchievementsShared,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update user stats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return stats.ErrStatsNotFound
	}

	return nil
}

// ListAtRiskOfBreak returns users whose last activity fell exactly on the
// given date and whose streak is at least minStreak.
func (r *StatsRepository) ListAtRiskOfBreak(ctx context.Context, lastActiveOn time.Time, minStreak int) ([]*stats.UserStats, error) {
	query := `
		SELECT ` + statsColumns + `
		FROM user_stats
		WHERE last_activity_date = $1 AND current_streak >= $2
	`

	rows, err := r.conn.Query(ctx, query, lastActiveOn, minStreak)
	if err != nil {
		return nil, fmt.Errorf("failed to query at-risk users: %w", err)
	}
	defer rows.Close()

	return r.scanStatsRows(rows)
}

// ListAll returns every stats document. Used by full leaderboard rebuilds.
func (r *StatsRepository) ListAll(ctx context.Context) ([]*stats.UserStats, error) {
	query := `SELECT ` + statsColumns + ` FROM user_stats`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query all user stats: %w", err)
	}
	defer rows.Close()

	return r.scanStatsRows(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

func (r *StatsRepository) scanStats(row pgx.Row) (*stats.UserStats, error) {
	var (
		s                stats.UserStats
		netSavings       int64
		lastActivityDate *time.Time
		xp, level        int
		title, campus    string
	)

	err := row.Scan(
		&s.UserID,
		&s.DisplayName,
		&netSavings,
		&s.CurrentStreak,
		&s.LongestStreak,
		&lastActivityDate,
		&xp,
		&level,
		&title,
		&campus,
		&s.Timezone,
		&s.GoalsCompleted,
		&s.HustlesCompleted,
		&s.AchievementsShared,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, stats.ErrStatsNotFound
		}
		return nil, fmt.Errorf("failed to scan user stats: %w", err)
	}

	s.NetSavings = stats.Money(netSavings)
	s.ExperiencePoints = stats.XP(xp)
	s.Level = stats.Level(level)
	s.Title = stats.Title(title)
	s.Campus = stats.Campus(campus)
	if lastActivityDate != nil {
		s.LastActivityDate = *lastActivityDate
	}

	return &s, nil
}

func (r *StatsRepository) scanStatsRows(rows pgx.Rows) ([]*stats.UserStats, error) {
	var result []*stats.UserStats
	for rows.Next() {
		s, err := r.scanStats(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// nullableDate maps the zero time to NULL so "never active" stays distinct
// from any real date.
func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
