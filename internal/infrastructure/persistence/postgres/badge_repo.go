package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campuscents/campuscents-gamification/internal/domain/badge"
	"github.com/campuscents/campuscents-gamification/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// BadgeRepository implements badge.Repository for PostgreSQL.
type BadgeRepository struct {
	conn *Connection
}

// NewBadgeRepository creates a new BadgeRepository.
func NewBadgeRepository(conn *Connection) *BadgeRepository {
	return &BadgeRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Catalog
// ─────────────────────────────────────────────────────────────────────────────

// SeedDefinitions inserts catalog rows that are not present yet.
// Existing rows are left untouched.
func (r *BadgeRepository) SeedDefinitions(ctx context.Context, defs []*badge.Definition) error {
	query := `
		INSERT INTO badge_definitions (
			id, name, description, category, icon, rarity,
			requirement_type, requirement_value, points_awarded,
			special_perks, sort_order, active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`

	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		for _, def := range defs {
			_, err := tx.Exec(ctx, query,
				def.ID,
				def.Name,
				def.Description,
				string(def.Category),
				def.Icon,
				string(def.Rarity),
				string(def.Requirement.Type),
				def.Requirement.Value,
				def.PointsAwarded,
				def.SpecialPerks,
				def.SortOrder,
				def.Active,
			)
			if err != nil {
				return fmt.Errorf("failed to seed badge definition %s: %w", def.ID, err)
			}
		}
		return nil
	})
}

const badgeDefColumns = `
	id, name, description, category, icon, rarity,
	requirement_type, requirement_value, points_awarded,
	special_perks, sort_order, active
`

// ListActiveDefinitions returns active catalog rows ordered by sort_order.
func (r *BadgeRepository) ListActiveDefinitions(ctx context.Context) ([]*badge.Definition, error) {
	query := `
		SELECT ` + badgeDefColumns + `
		FROM badge_definitions
		WHERE active = TRUE
		ORDER BY sort_order, id
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query badge definitions: %w", err)
	}
	defer rows.Close()

	var defs []*badge.Definition
	for rows.Next() {
		def, err := r.scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

// GetDefinition returns one catalog row by id.
func (r *BadgeRepository) GetDefinition(ctx context.Context, id string) (*badge.Definition, error) {
	query := `SELECT ` + badgeDefColumns + ` FROM badge_definitions WHERE id = $1`

	def, err := r.scanDefinition(r.conn.QueryRow(ctx, query, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, badge.ErrDefinitionNotFound
		}
		return nil, err
	}
	return def, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Awards
// ─────────────────────────────────────────────────────────────────────────────

// ListUserBadges returns the user's badges, newest first.
func (r *BadgeRepository) ListUserBadges(ctx context.Context, userID string) ([]*badge.UserBadge, error) {
	query := `
		SELECT id, user_id, badge_id, earned_at, showcased,
		       snap_savings_cents, snap_current_streak, snap_xp, snap_level
		FROM user_badges
		WHERE user_id = $1
		ORDER BY earned_at DESC
	`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user badges: %w", err)
	}
	defer rows.Close()

	var badges []*badge.UserBadge
	for rows.Next() {
		ub, err := r.scanUserBadge(rows)
		if err != nil {
			return nil, err
		}
		badges = append(badges, ub)
	}
	return badges, rows.Err()
}

// InsertUserBadge records an award. The unique constraint on
// (user_id, badge_id) makes concurrent double-awards fail here.
func (r *BadgeRepository) InsertUserBadge(ctx context.Context, ub *badge.UserBadge) error {
	query := `
		INSERT INTO user_badges (
			id, user_id, badge_id, earned_at, showcased,
			snap_savings_cents, snap_current_streak, snap_xp, snap_level
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.conn.Exec(ctx, query,
		ub.ID,
		ub.UserID,
		ub.BadgeID,
		ub.EarnedAt,
		ub.Showcased,
		int64(ub.Snapshot.NetSavings),
		ub.Snapshot.CurrentStreak,
		int(ub.Snapshot.XP),
		int(ub.Snapshot.Level),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return badge.ErrDuplicateAward
		}
		return fmt.Errorf("failed to insert user badge: %w", err)
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

func (r *BadgeRepository) scanDefinition(row pgx.Row) (*badge.Definition, error) {
	var (
		def                       badge.Definition
		category, rarity, reqType string
	)

	err := row.Scan(
		&def.ID,
		&def.Name,
		&def.Description,
		&category,
		&def.Icon,
		&rarity,
		&reqType,
		&def.Requirement.Value,
		&def.PointsAwarded,
		&def.SpecialPerks,
		&def.SortOrder,
		&def.Active,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan badge definition: %w", err)
	}

	def.Category = badge.Category(category)
	def.Rarity = badge.Rarity(rarity)
	def.Requirement.Type = badge.RequirementType(reqType)

	return &def, nil
}

func (r *BadgeRepository) scanUserBadge(row pgx.Row) (*badge.UserBadge, error) {
	var (
		ub         badge.UserBadge
		netSavings int64
		xp, level  int
	)

	err := row.Scan(
		&ub.ID,
		&ub.UserID,
		&ub.BadgeID,
		&ub.EarnedAt,
		&ub.Showcased,
		&netSavings,
		&ub.Snapshot.CurrentStreak,
		&xp,
		&level,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan user badge: %w", err)
	}

	ub.Snapshot.NetSavings = stats.Money(netSavings)
	ub.Snapshot.XP = stats.XP(xp)
	ub.Snapshot.Level = stats.Level(level)

	return &ub, nil
}
