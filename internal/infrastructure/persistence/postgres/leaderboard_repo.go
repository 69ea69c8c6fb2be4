package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campuscents/campuscents-gamification/internal/domain/leaderboard"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardRepository implements leaderboard.Repository for PostgreSQL.
type LeaderboardRepository struct {
	conn *Connection
}

// NewLeaderboardRepository creates a new LeaderboardRepository.
func NewLeaderboardRepository(conn *Connection) *LeaderboardRepository {
	return &LeaderboardRepository{conn: conn}
}

// UpsertScore writes a user's score row. Rank is left untouched:
// ReplaceRanks owns it.
func (r *LeaderboardRepository) UpsertScore(ctx context.Context, key leaderboard.Key, entry *leaderboard.Entry) error {
	query := `
		INSERT INTO leaderboard_entries (
			board_type, period, scope, user_id,
			display_name, campus, score, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (board_type, period, scope, user_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			campus       = EXCLUDED.campus,
			score        = EXCLUDED.score,
			updated_at   = EXCLUDED.updated_at
	`

	_, err := r.conn.Exec(ctx, query,
		string(key.Type),
		string(key.Period),
		string(key.Scope),
		entry.UserID,
		entry.DisplayName,
		entry.Campus,
		entry.Score,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert leaderboard score: %w", err)
	}

	return nil
}

const leaderboardColumns = `
	rank, user_id, display_name, campus, scope, score, updated_at
`

// ListEntries returns every row of one board. Order is not guaranteed.
func (r *LeaderboardRepository) ListEntries(ctx context.Context, key leaderboard.Key) ([]*leaderboard.Entry, error) {
	query := `
		SELECT ` + leaderboardColumns + `
		FROM leaderboard_entries
		WHERE board_type = $1 AND period = $2 AND scope = $3
	`

	rows, err := r.conn.Query(ctx, query, string(key.Type), string(key.Period), string(key.Scope))
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard entries: %w", err)
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

// ListEntriesAllScopes returns rows of every scope of a (type, period)
// pair. Global reads use this to collapse campus duplicates.
func (r *LeaderboardRepository) ListEntriesAllScopes(ctx context.Context, boardType leaderboard.BoardType, period leaderboard.Period) ([]*leaderboard.Entry, error) {
	query := `
		SELECT ` + leaderboardColumns + `
		FROM leaderboard_entries
		WHERE board_type = $1 AND period = $2
	`

	rows, err := r.conn.Query(ctx, query, string(boardType), string(period))
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard scopes: %w", err)
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

// ReplaceRanks writes the recomputed ranks of one board in a single
// transaction so readers never see a half-ranked board.
func (r *LeaderboardRepository) ReplaceRanks(ctx context.Context, key leaderboard.Key, entries []*leaderboard.Entry) error {
	query := `
		UPDATE leaderboard_entries
		SET rank = $5
		WHERE board_type = $1 AND period = $2 AND scope = $3 AND user_id = $4
	`

	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, e := range entries {
			batch.Queue(query,
				string(key.Type), string(key.Period), string(key.Scope),
				e.UserID, int(e.Rank),
			)
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for range entries {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("failed to replace leaderboard ranks: %w", err)
			}
		}
		return nil
	})
}

// GetUserEntry returns the user's row in one board.
func (r *LeaderboardRepository) GetUserEntry(ctx context.Context, key leaderboard.Key, userID string) (*leaderboard.Entry, error) {
	query := `
		SELECT ` + leaderboardColumns + `
		FROM leaderboard_entries
		WHERE board_type = $1 AND period = $2 AND scope = $3 AND user_id = $4
	`

	entry, err := r.scanEntry(r.conn.QueryRow(ctx, query,
		string(key.Type), string(key.Period), string(key.Scope), userID))
	if err != nil {
		if IsNoRows(err) {
			return nil, leaderboard.ErrEmptyLeaderboard
		}
		return nil, err
	}
	return entry, nil
}

// ClearPeriod deletes every row of one period across all board types
// and scopes. Called by the period reset job at week and month
// boundaries so weekly and monthly races start from zero.
func (r *LeaderboardRepository) ClearPeriod(ctx context.Context, period leaderboard.Period) error {
	_, err := r.conn.Exec(ctx,
		`DELETE FROM leaderboard_entries WHERE period = $1`, string(period))
	if err != nil {
		return fmt.Errorf("failed to clear leaderboard period: %w", err)
	}

	return nil
}

// WithBoardLock runs fn under an exclusive per-board advisory lock.
// Concurrent recomputes of the same board serialize here.
func (r *LeaderboardRepository) WithBoardLock(ctx context.Context, key leaderboard.Key, fn func(ctx context.Context) error) error {
	return r.conn.WithAdvisoryLock(ctx, key.String(), func(pgx.Tx) error {
		return fn(ctx)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

func (r *LeaderboardRepository) scanEntry(row pgx.Row) (*leaderboard.Entry, error) {
	var (
		e     leaderboard.Entry
		rank  int
		scope string
	)

	err := row.Scan(
		&rank,
		&e.UserID,
		&e.DisplayName,
		&e.Campus,
		&scope,
		&e.Score,
		&e.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
	}

	e.Rank = leaderboard.Rank(rank)
	e.Scope = leaderboard.Scope(scope)

	return &e, nil
}

func (r *LeaderboardRepository) scanEntries(rows pgx.Rows) ([]*leaderboard.Entry, error) {
	var entries []*leaderboard.Entry
	for rows.Next() {
		e, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
