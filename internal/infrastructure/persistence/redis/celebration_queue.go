package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/campuscents/campuscents-gamification/internal/domain/celebration"
)

// ══════════════════════════════════════════════════════════════════════════════
// CELEBRATION QUEUE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CelebrationQueue implements celebration.Queue on top of Redis lists.
// Each user owns one list keyed by CelebrationKey; RPUSH preserves the
// enqueue order, so LRANGE reads come back FIFO.
type CelebrationQueue struct {
	cache *Cache
}

// NewCelebrationQueue creates a new CelebrationQueue.
func NewCelebrationQueue(cache *Cache) *CelebrationQueue {
	return &CelebrationQueue{cache: cache}
}

// Enqueue appends an item to the tail of the user's queue.
func (q *CelebrationQueue) Enqueue(ctx context.Context, item *celebration.Item) error {
	key := CelebrationKey(item.UserID)

	if err := q.cache.RPush(ctx, key, item); err != nil {
		return fmt.Errorf("failed to enqueue celebration: %w", err)
	}

	// Abandoned queues expire rather than grow forever.
	if err := q.cache.Expire(ctx, key, TTLCelebrationQueue); err != nil {
		return fmt.Errorf("failed to refresh celebration queue ttl: %w", err)
	}

	return nil
}

// DrainPending removes and returns every pending item in enqueue order.
// LRANGE and DEL run inside MULTI/EXEC so two concurrent drains cannot
// both see the same items.
func (q *CelebrationQueue) DrainPending(ctx context.Context, userID string) ([]*celebration.Item, error) {
	key := CelebrationKey(userID)

	var rangeCmd *redis.StringSliceCmd
	_, err := q.cache.Client().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		rangeCmd = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to drain celebration queue: %w", err)
	}

	return decodeItems(rangeCmd.Val())
}

// PeekPending returns pending items without consuming them.
func (q *CelebrationQueue) PeekPending(ctx context.Context, userID string) ([]*celebration.Item, error) {
	raw, err := q.cache.LRange(ctx, CelebrationKey(userID), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to peek celebration queue: %w", err)
	}

	return decodeItems(raw)
}

// PendingCount returns the queue length without consuming anything.
func (q *CelebrationQueue) PendingCount(ctx context.Context, userID string) (int, error) {
	n, err := q.cache.LLen(ctx, CelebrationKey(userID))
	if err != nil {
		return 0, fmt.Errorf("failed to count celebration queue: %w", err)
	}

	return int(n), nil
}

func decodeItems(raw []string) ([]*celebration.Item, error) {
	items := make([]*celebration.Item, 0, len(raw))
	for _, data := range raw {
		var item celebration.Item
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCacheSerialization, err)
		}
		items = append(items, &item)
	}
	return items, nil
}
