package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campuscents/campuscents-gamification/internal/domain/leaderboard"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardCache implements leaderboard.Cache. Each board is cached as
// one JSON blob of the already-ranked page; the board key string
// ("type:period:scope") namespaces the entry.
type LeaderboardCache struct {
	cache *Cache
}

// NewLeaderboardCache creates a new LeaderboardCache.
func NewLeaderboardCache(cache *Cache) *LeaderboardCache {
	return &LeaderboardCache{cache: cache}
}

// cachedEntry is the wire form of one cached leaderboard row.
type cachedEntry struct {
	Rank        int       `json:"rank"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Campus      string    `json:"campus,omitempty"`
	Scope       string    `json:"scope,omitempty"`
	Score       int64     `json:"score"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GetBoard returns the cached page of a board, truncated to limit.
// Returns leaderboard.ErrCacheMiss when the board is not cached.
func (c *LeaderboardCache) GetBoard(ctx context.Context, key leaderboard.Key, limit int) ([]*leaderboard.Entry, error) {
	var cached []cachedEntry
	err := c.cache.Get(ctx, BoardKey(key.String()), &cached)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, leaderboard.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read leaderboard cache: %w", err)
	}

	// A cached page shorter than the requested limit may be missing
	// rows, so treat it as a miss and fall through to storage.
	if limit > 0 && len(cached) < limit {
		return nil, leaderboard.ErrCacheMiss
	}

	if limit > 0 && len(cached) > limit {
		cached = cached[:limit]
	}

	entries := make([]*leaderboard.Entry, 0, len(cached))
	for _, ce := range cached {
		entries = append(entries, &leaderboard.Entry{
			Rank:        leaderboard.Rank(ce.Rank),
			UserID:      ce.UserID,
			DisplayName: ce.DisplayName,
			Campus:      ce.Campus,
			Scope:       leaderboard.Scope(ce.Scope),
			Score:       ce.Score,
			UpdatedAt:   ce.UpdatedAt,
		})
	}

	return entries, nil
}

// SetBoard caches a ranked page with the given TTL.
func (c *LeaderboardCache) SetBoard(ctx context.Context, key leaderboard.Key, entries []*leaderboard.Entry, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = TTLLeaderboardCache
	}

	cached := make([]cachedEntry, 0, len(entries))
	for _, e := range entries {
		cached = append(cached, cachedEntry{
			Rank:        int(e.Rank),
			UserID:      e.UserID,
			DisplayName: e.DisplayName,
			Campus:      e.Campus,
			Scope:       string(e.Scope),
			Score:       e.Score,
			UpdatedAt:   e.UpdatedAt,
		})
	}

	if err := c.cache.Set(ctx, BoardKey(key.String()), cached, ttl); err != nil {
		return fmt.Errorf("failed to cache leaderboard: %w", err)
	}

	return nil
}

// InvalidateBoard drops the cached page after a recompute.
func (c *LeaderboardCache) InvalidateBoard(ctx context.Context, key leaderboard.Key) error {
	if err := c.cache.Delete(ctx, BoardKey(key.String())); err != nil {
		return fmt.Errorf("failed to invalidate leaderboard cache: %w", err)
	}

	return nil
}
