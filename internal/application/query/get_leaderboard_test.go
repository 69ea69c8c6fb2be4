package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscents/campuscents-gamification/internal/domain/leaderboard"
)

// fakeBoardStore отдаёт заранее заданные строки и считает обращения.
type fakeBoardStore struct {
	rows      []*leaderboard.Entry
	listCalls int
}

func (s *fakeBoardStore) UpsertScore(ctx context.Context, key leaderboard.Key, entry *leaderboard.Entry) error {
	return nil
}

func (s *fakeBoardStore) ListEntries(ctx context.Context, key leaderboard.Key) ([]*leaderboard.Entry, error) {
	s.listCalls++
	var out []*leaderboard.Entry
	for _, row := range s.rows {
		if row.Scope == key.Scope {
			out = append(out, row.Clone())
		}
	}
	return out, nil
}

func (s *fakeBoardStore) ListEntriesAllScopes(ctx context.Context, boardType leaderboard.BoardType, period leaderboard.Period) ([]*leaderboard.Entry, error) {
	s.listCalls++
	out := make([]*leaderboard.Entry, len(s.rows))
	for i, row := range s.rows {
		out[i] = row.Clone()
	}
	return out, nil
}

func (s *fakeBoardStore) ReplaceRanks(ctx context.Context, key leaderboard.Key, entries []*leaderboard.Entry) error {
	return nil
}

func (s *fakeBoardStore) GetUserEntry(ctx context.Context, key leaderboard.Key, userID string) (*leaderboard.Entry, error) {
	return nil, leaderboard.ErrEmptyLeaderboard
}

func (s *fakeBoardStore) WithBoardLock(ctx context.Context, key leaderboard.Key, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeBoardCache - кэш выдач в памяти.
type fakeBoardCache struct {
	boards   map[string][]*leaderboard.Entry
	getErr   error
	setCalls int
}

func newFakeBoardCache() *fakeBoardCache {
	return &fakeBoardCache{boards: make(map[string][]*leaderboard.Entry)}
}

func (c *fakeBoardCache) GetBoard(ctx context.Context, key leaderboard.Key, limit int) ([]*leaderboard.Entry, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	rows, ok := c.boards[key.String()]
	if !ok {
		return nil, leaderboard.ErrCacheMiss
	}
	return rows, nil
}

func (c *fakeBoardCache) SetBoard(ctx context.Context, key leaderboard.Key, entries []*leaderboard.Entry, ttl time.Duration) error {
	c.setCalls++
	c.boards[key.String()] = entries
	return nil
}

func (c *fakeBoardCache) InvalidateBoard(ctx context.Context, key leaderboard.Key) error {
	delete(c.boards, key.String())
	return nil
}

func entry(userID string, scope leaderboard.Scope, score int64) *leaderboard.Entry {
	e, _ := leaderboard.NewEntry(userID, "name-"+userID, scope, score)
	e.Campus = string(scope)
	return e
}

func TestGetLeaderboardQuery_Validate(t *testing.T) {
	q := GetLeaderboardQuery{}
	require.NoError(t, q.Validate())
	assert.Equal(t, "savings", q.Type)
	assert.Equal(t, "all_time", q.Period)
	assert.Equal(t, 20, q.Limit)

	q = GetLeaderboardQuery{Limit: 500}
	require.NoError(t, q.Validate())
	assert.Equal(t, 100, q.Limit)

	assert.Error(t, (&GetLeaderboardQuery{Type: "elo"}).Validate())
	assert.Error(t, (&GetLeaderboardQuery{Period: "decade"}).Validate())
	assert.Error(t, (&GetLeaderboardQuery{Limit: -1}).Validate())
}

func TestGetLeaderboard_GlobalDeduplicatesCampusUsers(t *testing.T) {
	store := &fakeBoardStore{rows: []*leaderboard.Entry{
		entry("u1", leaderboard.ScopeGlobal, 300),
		entry("u1", "MIT", 300),
		entry("u2", leaderboard.ScopeGlobal, 100),
	}}
	handler := NewGetLeaderboardHandler(store, nil, time.Minute, nil)

	result, err := handler.Handle(context.Background(), GetLeaderboardQuery{})
	require.NoError(t, err)

	assert.Equal(t, "savings", result.Type)
	assert.Equal(t, "global", result.Scope)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, 2, result.TotalCount)

	// u1 появляется один раз, с кампусной строкой.
	assert.Equal(t, "u1", result.Entries[0].UserID)
	assert.Equal(t, 1, result.Entries[0].Rank)
	assert.Equal(t, "MIT", result.Entries[0].Campus)
	assert.Equal(t, "u2", result.Entries[1].UserID)
	assert.Equal(t, 2, result.Entries[1].Rank)
}

func TestGetLeaderboard_CampusScope(t *testing.T) {
	store := &fakeBoardStore{rows: []*leaderboard.Entry{
		entry("u1", "MIT", 300),
		entry("u2", "MIT", 500),
		entry("u3", leaderboard.ScopeGlobal, 900),
	}}
	handler := NewGetLeaderboardHandler(store, nil, time.Minute, nil)

	result, err := handler.Handle(context.Background(), GetLeaderboardQuery{Campus: "MIT"})
	require.NoError(t, err)

	assert.Equal(t, "MIT", result.Scope)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, "u2", result.Entries[0].UserID)
	assert.Equal(t, int64(500), result.Entries[0].Score)
}

func TestGetLeaderboard_LimitCutsEntriesNotTotal(t *testing.T) {
	store := &fakeBoardStore{rows: []*leaderboard.Entry{
		entry("u1", leaderboard.ScopeGlobal, 300),
		entry("u2", leaderboard.ScopeGlobal, 200),
		entry("u3", leaderboard.ScopeGlobal, 100),
	}}
	handler := NewGetLeaderboardHandler(store, nil, time.Minute, nil)

	result, err := handler.Handle(context.Background(), GetLeaderboardQuery{Limit: 2})
	require.NoError(t, err)

	assert.Len(t, result.Entries, 2)
	assert.Equal(t, 3, result.TotalCount)
}

func TestGetLeaderboard_CacheHitSkipsStore(t *testing.T) {
	store := &fakeBoardStore{}
	cache := newFakeBoardCache()
	key := leaderboard.Key{Type: leaderboard.BoardSavings, Period: leaderboard.PeriodAllTime}
	cached := entry("u1", leaderboard.ScopeGlobal, 300)
	cached.Rank = 1
	cache.boards[key.String()] = []*leaderboard.Entry{cached}

	handler := NewGetLeaderboardHandler(store, cache, time.Minute, nil)

	result, err := handler.Handle(context.Background(), GetLeaderboardQuery{})
	require.NoError(t, err)

	require.Len(t, result.Entries, 1)
	assert.Equal(t, "u1", result.Entries[0].UserID)
	assert.Zero(t, store.listCalls)
}

func TestGetLeaderboard_CacheMissReadsStoreAndWritesCache(t *testing.T) {
	store := &fakeBoardStore{rows: []*leaderboard.Entry{
		entry("u1", leaderboard.ScopeGlobal, 300),
	}}
	cache := newFakeBoardCache()
	handler := NewGetLeaderboardHandler(store, cache, time.Minute, nil)

	_, err := handler.Handle(context.Background(), GetLeaderboardQuery{})
	require.NoError(t, err)

	assert.Equal(t, 1, store.listCalls)
	assert.Equal(t, 1, cache.setCalls)

	// Повторный запрос обслуживается кэшем.
	_, err = handler.Handle(context.Background(), GetLeaderboardQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, store.listCalls)
}

func TestGetLeaderboard_CacheFailureDegradesToStore(t *testing.T) {
	store := &fakeBoardStore{rows: []*leaderboard.Entry{
		entry("u1", leaderboard.ScopeGlobal, 300),
	}}
	cache := newFakeBoardCache()
	cache.getErr = errors.New("redis down")
	handler := NewGetLeaderboardHandler(store, cache, time.Minute, nil)

	result, err := handler.Handle(context.Background(), GetLeaderboardQuery{})
	require.NoError(t, err)

	assert.Len(t, result.Entries, 1)
	assert.Equal(t, 1, store.listCalls)
}
