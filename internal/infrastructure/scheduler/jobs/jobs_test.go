package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscents/campuscents-gamification/internal/domain/leaderboard"
	"github.com/campuscents/campuscents-gamification/internal/domain/shared"
	"github.com/campuscents/campuscents-gamification/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// FAKES
// ══════════════════════════════════════════════════════════════════════════════

type fakeStatsRepo struct {
	users []*stats.UserStats

	atRiskLastActiveOn time.Time
	atRiskMinStreak    int
}

func (r *fakeStatsRepo) Create(ctx context.Context, s *stats.UserStats) error { return nil }

func (r *fakeStatsRepo) GetByUserID(ctx context.Context, userID string) (*stats.UserStats, error) {
	return nil, stats.ErrStatsNotFound
}

func (r *fakeStatsRepo) Update(ctx context.Context, s *stats.UserStats) error { return nil }

func (r *fakeStatsRepo) ListAtRiskOfBreak(ctx context.Context, lastActiveOn time.Time, minStreak int) ([]*stats.UserStats, error) {
	r.atRiskLastActiveOn = lastActiveOn
	r.atRiskMinStreak = minStreak
	return r.users, nil
}

func (r *fakeStatsRepo) ListAll(ctx context.Context) ([]*stats.UserStats, error) {
	return r.users, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *capturePublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type fakeBoardRepo struct {
	mu     sync.Mutex
	boards map[string][]*leaderboard.Entry
}

func newFakeBoardRepo() *fakeBoardRepo {
	return &fakeBoardRepo{boards: make(map[string][]*leaderboard.Entry)}
}

func (r *fakeBoardRepo) UpsertScore(ctx context.Context, key leaderboard.Key, entry *leaderboard.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key.String()
	for i, e := range r.boards[k] {
		if e.UserID == entry.UserID {
			r.boards[k][i] = entry.Clone()
			return nil
		}
	}
	r.boards[k] = append(r.boards[k], entry.Clone())
	return nil
}

func (r *fakeBoardRepo) ListEntries(ctx context.Context, key leaderboard.Key) ([]*leaderboard.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.boards[key.String()]
	out := make([]*leaderboard.Entry, len(rows))
	for i, e := range rows {
		out[i] = e.Clone()
	}
	return out, nil
}

func (r *fakeBoardRepo) ListEntriesAllScopes(ctx context.Context, boardType leaderboard.BoardType, period leaderboard.Period) ([]*leaderboard.Entry, error) {
	return nil, nil
}

func (r *fakeBoardRepo) ReplaceRanks(ctx context.Context, key leaderboard.Key, entries []*leaderboard.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ranked := range entries {
		for _, stored := range r.boards[key.String()] {
			if stored.UserID == ranked.UserID {
				stored.Rank = ranked.Rank
			}
		}
	}
	return nil
}

func (r *fakeBoardRepo) GetUserEntry(ctx context.Context, key leaderboard.Key, userID string) (*leaderboard.Entry, error) {
	return nil, leaderboard.ErrEmptyLeaderboard
}

func (r *fakeBoardRepo) WithBoardLock(ctx context.Context, key leaderboard.Key, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeClearer struct {
	cleared []leaderboard.Period
	err     error
}

func (c *fakeClearer) ClearPeriod(ctx context.Context, period leaderboard.Period) error {
	if c.err != nil {
		return c.err
	}
	c.cleared = append(c.cleared, period)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STREAK RISK SCAN
// ══════════════════════════════════════════════════════════════════════════════

func TestStreakRiskScanJob_PublishesPerUser(t *testing.T) {
	repo := &fakeStatsRepo{users: []*stats.UserStats{
		{UserID: "u1", CurrentStreak: 5},
		{UserID: "u2", CurrentStreak: 12},
	}}
	pub := &capturePublisher{}

	cfg := DefaultStreakRiskConfig()
	cfg.MinStreak = 4
	job := NewStreakRiskScanJob(repo, pub, nil, cfg)

	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, 4, repo.atRiskMinStreak)

	// Скан ищет тех, кто был активен именно вчера.
	yesterday := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	assert.Equal(t, yesterday.Day(), repo.atRiskLastActiveOn.Day())

	require.Len(t, pub.events, 2)
	assert.Equal(t, shared.EventStreakAtRisk, pub.events[0].EventType())
}

func TestStreakRiskScanJob_EmptyScanIsNoop(t *testing.T) {
	repo := &fakeStatsRepo{}
	pub := &capturePublisher{}
	job := NewStreakRiskScanJob(repo, pub, nil, DefaultStreakRiskConfig())

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, pub.events)
}

// ══════════════════════════════════════════════════════════════════════════════
// RESET PERIODS
// ══════════════════════════════════════════════════════════════════════════════

func TestResetPeriodsJob_MondayResetsWeekly(t *testing.T) {
	clearer := &fakeClearer{}
	// 16 марта 2026 - понедельник.
	job := NewResetPeriodsJob(clearer, nil, time.UTC, nil).
		WithClock(func() time.Time { return time.Date(2026, 3, 16, 0, 30, 0, 0, time.UTC) })

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []leaderboard.Period{leaderboard.PeriodWeekly}, clearer.cleared)
}

func TestResetPeriodsJob_FirstOfMonthResetsMonthly(t *testing.T) {
	clearer := &fakeClearer{}
	// 1 апреля 2026 - среда: только месячная граница.
	job := NewResetPeriodsJob(clearer, nil, time.UTC, nil).
		WithClock(func() time.Time { return time.Date(2026, 4, 1, 1, 0, 0, 0, time.UTC) })

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []leaderboard.Period{leaderboard.PeriodMonthly}, clearer.cleared)
}

func TestResetPeriodsJob_MondayFirstResetsBoth(t *testing.T) {
	clearer := &fakeClearer{}
	// 1 июня 2026 - понедельник: обе границы сразу.
	job := NewResetPeriodsJob(clearer, nil, time.UTC, nil).
		WithClock(func() time.Time { return time.Date(2026, 6, 1, 0, 5, 0, 0, time.UTC) })

	require.NoError(t, job.Run(context.Background()))
	assert.ElementsMatch(t,
		[]leaderboard.Period{leaderboard.PeriodWeekly, leaderboard.PeriodMonthly},
		clearer.cleared)
}

func TestResetPeriodsJob_HourlyScheduleClearsOncePerBoundary(t *testing.T) {
	clearer := &fakeClearer{}
	at := time.Date(2026, 3, 16, 0, 30, 0, 0, time.UTC)
	job := NewResetPeriodsJob(clearer, nil, time.UTC, nil).
		WithClock(func() time.Time { return at })

	// Почасовые запуски в течение всего понедельника: одна чистка,
	// накопленные за день счёты не трогаются повторно.
	for hour := 0; hour < 24; hour++ {
		at = time.Date(2026, 3, 16, hour, 30, 0, 0, time.UTC)
		require.NoError(t, job.Run(context.Background()))
	}
	assert.Equal(t, []leaderboard.Period{leaderboard.PeriodWeekly}, clearer.cleared)

	// Следующий понедельник - новая граница.
	at = time.Date(2026, 3, 23, 0, 30, 0, 0, time.UTC)
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t,
		[]leaderboard.Period{leaderboard.PeriodWeekly, leaderboard.PeriodWeekly},
		clearer.cleared)
}

func TestResetPeriodsJob_FailedClearIsRetriedNextRun(t *testing.T) {
	clearer := &fakeClearer{err: errors.New("store down")}
	job := NewResetPeriodsJob(clearer, nil, time.UTC, nil).
		WithClock(func() time.Time { return time.Date(2026, 3, 16, 0, 30, 0, 0, time.UTC) })

	require.Error(t, job.Run(context.Background()))
	assert.Empty(t, clearer.cleared)

	clearer.err = nil
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []leaderboard.Period{leaderboard.PeriodWeekly}, clearer.cleared)
}

func TestResetPeriodsJob_OrdinaryDayIsNoop(t *testing.T) {
	clearer := &fakeClearer{}
	// 18 марта 2026 - среда посреди месяца.
	job := NewResetPeriodsJob(clearer, nil, time.UTC, nil).
		WithClock(func() time.Time { return time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC) })

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, clearer.cleared)
}

// ══════════════════════════════════════════════════════════════════════════════
// REBUILD LEADERBOARDS
// ══════════════════════════════════════════════════════════════════════════════

func TestRebuildLeaderboardsJob_RebuildsAllBoards(t *testing.T) {
	statsRepo := &fakeStatsRepo{users: []*stats.UserStats{
		{UserID: "u1", DisplayName: "Alice", NetSavings: 500, Campus: "MIT"},
		{UserID: "u2", DisplayName: "Bob", NetSavings: 900},
	}}
	boardRepo := newFakeBoardRepo()
	ranker := leaderboard.NewRanker(boardRepo, nil, nil)

	job := NewRebuildLeaderboardsJob(statsRepo, ranker, nil, DefaultRebuildLeaderboardsConfig())
	require.NoError(t, job.Run(context.Background()))

	last := job.LastStats()
	require.NotNil(t, last)
	assert.Equal(t, 2, last.TotalUsers)

	// 4 вида x 3 периода x (глобальный + кампус MIT).
	assert.Equal(t, 24, last.BoardsBuilt)
	assert.Zero(t, last.BoardsFailed)

	// Глобальная доска накоплений отранжирована по счёту.
	key := leaderboard.Key{Type: leaderboard.BoardSavings, Period: leaderboard.PeriodAllTime}
	rows, err := boardRepo.ListEntries(context.Background(), key)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		if row.UserID == "u2" {
			assert.Equal(t, leaderboard.Rank(1), row.Rank)
		}
	}

	// Кампусная доска содержит только студентов кампуса.
	campusKey := leaderboard.Key{Type: leaderboard.BoardSavings, Period: leaderboard.PeriodAllTime, Scope: "MIT"}
	campusRows, err := boardRepo.ListEntries(context.Background(), campusKey)
	require.NoError(t, err)
	require.Len(t, campusRows, 1)
	assert.Equal(t, "u1", campusRows[0].UserID)
}
