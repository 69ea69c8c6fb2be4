package command

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscents/campuscents-gamification/internal/domain/achievement"
	"github.com/campuscents/campuscents-gamification/internal/domain/badge"
	"github.com/campuscents/campuscents-gamification/internal/domain/celebration"
	"github.com/campuscents/campuscents-gamification/internal/domain/leaderboard"
	"github.com/campuscents/campuscents-gamification/internal/domain/shared"
	"github.com/campuscents/campuscents-gamification/internal/domain/stats"
	"github.com/campuscents/campuscents-gamification/internal/domain/streak"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY FAKES
// ══════════════════════════════════════════════════════════════════════════════

type memStatsRepo struct {
	mu       sync.Mutex
	users    map[string]*stats.UserStats
	getCalls int
	failGets []error
}

func newMemStatsRepo() *memStatsRepo {
	return &memStatsRepo{users: make(map[string]*stats.UserStats)}
}

func (r *memStatsRepo) Create(ctx context.Context, s *stats.UserStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[s.UserID]; ok {
		return stats.ErrStatsAlreadyExist
	}
	r.users[s.UserID] = s.Clone()
	return nil
}

func (r *memStatsRepo) GetByUserID(ctx context.Context, userID string) (*stats.UserStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	if len(r.failGets) > 0 {
		err := r.failGets[0]
		r.failGets = r.failGets[1:]
		if err != nil {
			return nil, err
		}
	}
	s, ok := r.users[userID]
	if !ok {
		return nil, stats.ErrStatsNotFound
	}
	return s.Clone(), nil
}

func (r *memStatsRepo) Update(ctx context.Context, s *stats.UserStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[s.UserID] = s.Clone()
	return nil
}

func (r *memStatsRepo) ListAtRiskOfBreak(ctx context.Context, lastActiveOn time.Time, minStreak int) ([]*stats.UserStats, error) {
	return nil, nil
}

func (r *memStatsRepo) ListAll(ctx context.Context) ([]*stats.UserStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*stats.UserStats
	for _, s := range r.users {
		out = append(out, s.Clone())
	}
	return out, nil
}

type memBadgeRepo struct {
	mu     sync.Mutex
	defs   []*badge.Definition
	earned map[string]map[string]*badge.UserBadge
}

func newMemBadgeRepo(defs []*badge.Definition) *memBadgeRepo {
	return &memBadgeRepo{defs: defs, earned: make(map[string]map[string]*badge.UserBadge)}
}

func (r *memBadgeRepo) SeedDefinitions(ctx context.Context, defs []*badge.Definition) error {
	r.defs = defs
	return nil
}

func (r *memBadgeRepo) ListActiveDefinitions(ctx context.Context) ([]*badge.Definition, error) {
	return r.defs, nil
}

func (r *memBadgeRepo) GetDefinition(ctx context.Context, id string) (*badge.Definition, error) {
	for _, d := range r.defs {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, badge.ErrDefinitionNotFound
}

func (r *memBadgeRepo) ListUserBadges(ctx context.Context, userID string) ([]*badge.UserBadge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*badge.UserBadge
	for _, ub := range r.earned[userID] {
		out = append(out, ub)
	}
	return out, nil
}

func (r *memBadgeRepo) InsertUserBadge(ctx context.Context, ub *badge.UserBadge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	held, ok := r.earned[ub.UserID]
	if !ok {
		held = make(map[string]*badge.UserBadge)
		r.earned[ub.UserID] = held
	}
	if _, dup := held[ub.BadgeID]; dup {
		return badge.ErrDuplicateAward
	}
	held[ub.BadgeID] = ub
	return nil
}

type memAchievementRepo struct {
	mu      sync.Mutex
	records []*achievement.Achievement
}

func (r *memAchievementRepo) Append(ctx context.Context, a *achievement.Achievement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, a)
	return nil
}

func (r *memAchievementRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*achievement.Achievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*achievement.Achievement
	for _, a := range r.records {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAchievementRepo) MarkShared(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.records {
		if a.ID == id {
			a.MarkShared()
			return nil
		}
	}
	return achievement.ErrAchievementNotFound
}

type memBoardRepo struct {
	mu     sync.Mutex
	boards map[string]map[string]*leaderboard.Entry
}

func newMemBoardRepo() *memBoardRepo {
	return &memBoardRepo{boards: make(map[string]map[string]*leaderboard.Entry)}
}

func (r *memBoardRepo) board(key leaderboard.Key) map[string]*leaderboard.Entry {
	b, ok := r.boards[key.String()]
	if !ok {
		b = make(map[string]*leaderboard.Entry)
		r.boards[key.String()] = b
	}
	return b
}

func (r *memBoardRepo) UpsertScore(ctx context.Context, key leaderboard.Key, entry *leaderboard.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.board(key)
	if prev, ok := b[entry.UserID]; ok {
		entry.Rank = prev.Rank
	}
	b[entry.UserID] = entry.Clone()
	return nil
}

func (r *memBoardRepo) ListEntries(ctx context.Context, key leaderboard.Key) ([]*leaderboard.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*leaderboard.Entry
	for _, e := range r.board(key) {
		out = append(out, e.Clone())
	}
	return out, nil
}

func (r *memBoardRepo) ListEntriesAllScopes(ctx context.Context, boardType leaderboard.BoardType, period leaderboard.Period) ([]*leaderboard.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := string(boardType) + ":" + string(period) + ":"
	var out []*leaderboard.Entry
	for keyStr, b := range r.boards {
		if !strings.HasPrefix(keyStr, prefix) {
			continue
		}
		for _, e := range b {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

func (r *memBoardRepo) ReplaceRanks(ctx context.Context, key leaderboard.Key, entries []*leaderboard.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.board(key)
	for _, e := range entries {
		if stored, ok := b[e.UserID]; ok {
			stored.Rank = e.Rank
		}
	}
	return nil
}

func (r *memBoardRepo) GetUserEntry(ctx context.Context, key leaderboard.Key, userID string) (*leaderboard.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.board(key)[userID]
	if !ok {
		return nil, leaderboard.ErrEmptyLeaderboard
	}
	return e.Clone(), nil
}

func (r *memBoardRepo) WithBoardLock(ctx context.Context, key leaderboard.Key, fn func(ctx context.Context) error) error {
	return fn(ctx)
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

func (p *capturePublisher) all() []shared.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.Event, len(p.events))
	copy(out, p.events)
	return out
}

func (p *capturePublisher) typesSeen() map[shared.EventType]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	seen := make(map[shared.EventType]int)
	for _, e := range p.events {
		seen[e.EventType()]++
	}
	return seen
}

// ══════════════════════════════════════════════════════════════════════════════
// TEST HARNESS
// ══════════════════════════════════════════════════════════════════════════════

type testEnv struct {
	pipeline     *Pipeline
	statsRepo    *memStatsRepo
	badgeRepo    *memBadgeRepo
	achievements *memAchievementRepo
	celebrations *celebration.MemoryQueue
	publisher    *capturePublisher
	now          time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		statsRepo:    newMemStatsRepo(),
		badgeRepo:    newMemBadgeRepo(badge.DefaultCatalog()),
		achievements: &memAchievementRepo{},
		celebrations: celebration.NewMemoryQueue(),
		publisher:    &capturePublisher{},
		now:          time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}

	tracker := streak.NewTracker(3).WithClock(func() time.Time { return env.now })
	engine := badge.NewEngine(env.badgeRepo, env.achievements, nil)
	ranker := leaderboard.NewRanker(newMemBoardRepo(), nil, nil)

	env.pipeline = NewPipeline(
		env.statsRepo, tracker, engine, ranker,
		env.celebrations, env.achievements, env.publisher, nil)

	return env
}

func (env *testEnv) registerUser(t *testing.T, userID string) {
	t.Helper()
	handler := NewRegisterUserHandler(env.statsRepo)
	_, err := handler.Handle(context.Background(), RegisterUserCommand{
		UserID:      userID,
		DisplayName: "Test " + userID,
		Timezone:    "UTC",
	})
	require.NoError(t, err)
}

func (env *testEnv) seedStats(t *testing.T, s *stats.UserStats) {
	t.Helper()
	require.NoError(t, env.statsRepo.Create(context.Background(), s))
}

// ══════════════════════════════════════════════════════════════════════════════
// PIPELINE TESTS
// ══════════════════════════════════════════════════════════════════════════════

func TestPipeline_TransactionStartsStreakAndAwardsBadge(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "u1")
	handler := NewProcessTransactionHandler(env.pipeline)

	result, err := handler.Handle(context.Background(), ProcessTransactionCommand{
		UserID:      "u1",
		AmountCents: 500,
		Kind:        TransactionIncome,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(500), result.NetSavings)
	assert.Equal(t, 1, result.CurrentStreak)
	assert.True(t, result.StreakChanged)
	assert.Empty(t, result.MilestoneTitle)
	assert.Contains(t, result.BadgesEarned, "First Dollar")

	// XP за first-dollar уже в сохранённой записи.
	saved, err := env.statsRepo.GetByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, stats.XP(10), saved.ExperiencePoints)
	assert.Equal(t, 1, saved.CurrentStreak)

	seen := env.publisher.typesSeen()
	assert.Equal(t, 1, seen[shared.EventStreakUpdated])
	assert.Equal(t, 1, seen[shared.EventBadgeEarned])
	assert.Zero(t, seen[shared.EventStreakBroken])

	// Награда празднуется при следующем контакте клиента.
	count, err := env.celebrations.PendingCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPipeline_SameDayEventIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "u1")
	handler := NewProcessTransactionHandler(env.pipeline)

	first, err := handler.Handle(context.Background(), ProcessTransactionCommand{
		UserID: "u1", AmountCents: 500, Kind: TransactionIncome,
	})
	require.NoError(t, err)
	require.Equal(t, 1, first.CurrentStreak)

	second, err := handler.Handle(context.Background(), ProcessTransactionCommand{
		UserID: "u1", AmountCents: 300, Kind: TransactionExpense,
	})
	require.NoError(t, err)

	// Серия не двигается, накопления двигаются.
	assert.Equal(t, 1, second.CurrentStreak)
	assert.False(t, second.StreakChanged)
	assert.Equal(t, int64(200), second.NetSavings)
	assert.Empty(t, second.BadgesEarned)
}

func TestPipeline_MilestoneFiresOnSeventhDay(t *testing.T) {
	env := newTestEnv(t)
	env.seedStats(t, &stats.UserStats{
		UserID:           "u1",
		DisplayName:      "Veteran",
		CurrentStreak:    6,
		LongestStreak:    6,
		LastActivityDate: env.now.AddDate(0, 0, -1),
		Level:            1,
		Title:            stats.TitleBeginner,
		Timezone:         "UTC",
	})
	handler := NewProcessTransactionHandler(env.pipeline)

	result, err := handler.Handle(context.Background(), ProcessTransactionCommand{
		UserID: "u1", AmountCents: 50, Kind: TransactionExpense,
	})
	require.NoError(t, err)

	assert.Equal(t, 7, result.CurrentStreak)
	assert.Equal(t, "Week Warrior", result.MilestoneTitle)
	assert.Contains(t, result.BadgesEarned, "Week Warrior")

	// 50 XP за рубеж + 50 XP за награду: ровно второй уровень.
	assert.Equal(t, 2, result.Level)

	seen := env.publisher.typesSeen()
	assert.Equal(t, 1, seen[shared.EventMilestoneReached])
	assert.Equal(t, 1, seen[shared.EventBadgeEarned])
	assert.Equal(t, 1, seen[shared.EventLevelUp])

	// Праздники: рубеж, награда и уровень.
	items, err := env.celebrations.PeekPending(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, celebration.KindMilestone, items[0].Kind)
	assert.Equal(t, celebration.KindBadge, items[1].Kind)
	assert.Equal(t, celebration.KindLevelUp, items[2].Kind)
}

func TestPipeline_StreakBreakPublishesEvent(t *testing.T) {
	env := newTestEnv(t)
	env.seedStats(t, &stats.UserStats{
		UserID:           "u1",
		DisplayName:      "Lapsed",
		CurrentStreak:    10,
		LongestStreak:    10,
		LastActivityDate: env.now.AddDate(0, 0, -5),
		Level:            1,
		Timezone:         "UTC",
	})
	handler := NewProcessTransactionHandler(env.pipeline)

	result, err := handler.Handle(context.Background(), ProcessTransactionCommand{
		UserID: "u1", AmountCents: 10, Kind: TransactionExpense,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.CurrentStreak)
	assert.True(t, result.StreakChanged)

	saved, err := env.statsRepo.GetByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 10, saved.LongestStreak)

	seen := env.publisher.typesSeen()
	assert.Equal(t, 1, seen[shared.EventStreakBroken])
}

func TestPipeline_ShortStreakBreaksSilently(t *testing.T) {
	env := newTestEnv(t)
	env.seedStats(t, &stats.UserStats{
		UserID:           "u1",
		DisplayName:      "Casual",
		CurrentStreak:    2,
		LongestStreak:    2,
		LastActivityDate: env.now.AddDate(0, 0, -4),
		Level:            1,
		Timezone:         "UTC",
	})
	handler := NewProcessTransactionHandler(env.pipeline)

	_, err := handler.Handle(context.Background(), ProcessTransactionCommand{
		UserID: "u1", AmountCents: 10, Kind: TransactionExpense,
	})
	require.NoError(t, err)

	assert.Zero(t, env.publisher.typesSeen()[shared.EventStreakBroken])
}

func TestPipeline_UnknownUserFails(t *testing.T) {
	env := newTestEnv(t)
	handler := NewProcessTransactionHandler(env.pipeline)

	_, err := handler.Handle(context.Background(), ProcessTransactionCommand{
		UserID: "ghost", AmountCents: 10, Kind: TransactionIncome,
	})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	// Отсутствие записи - не сбой хранилища, повторных чтений нет.
	assert.Equal(t, 1, env.statsRepo.getCalls)
}

func TestPipeline_TransientLoadFailureIsRetried(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "u1")
	env.statsRepo.failGets = []error{
		fmt.Errorf("query user stats: %w", shared.ErrStoreUnavailable),
	}
	handler := NewProcessTransactionHandler(env.pipeline)

	result, err := handler.Handle(context.Background(), ProcessTransactionCommand{
		UserID: "u1", AmountCents: 500, Kind: TransactionIncome,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.CurrentStreak)
	assert.Equal(t, 2, env.statsRepo.getCalls)
}

func TestPipeline_MonthMilestoneRunsAllStages(t *testing.T) {
	env := newTestEnv(t)
	env.seedStats(t, &stats.UserStats{
		UserID:           "u1",
		DisplayName:      "Committed",
		CurrentStreak:    29,
		LongestStreak:    29,
		LastActivityDate: env.now.AddDate(0, 0, -1),
		Level:            1,
		Title:            stats.TitleBeginner,
		Timezone:         "UTC",
	})
	handler := NewProcessTransactionHandler(env.pipeline)

	result, err := handler.Handle(context.Background(), ProcessTransactionCommand{
		UserID: "u1", AmountCents: 50, Kind: TransactionExpense,
	})
	require.NoError(t, err)

	assert.Equal(t, 30, result.CurrentStreak)
	assert.Equal(t, "Month Master", result.MilestoneTitle)
	assert.Contains(t, result.BadgesEarned, "Week Warrior")

	// 250 XP за рубеж + 50 XP за награду: четвёртый уровень.
	assert.Equal(t, 4, result.Level)

	saved, err := env.statsRepo.GetByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, stats.XP(300), saved.ExperiencePoints)
	assert.Equal(t, 30, saved.LongestStreak)

	var reached shared.MilestoneReachedEvent
	found := false
	for _, event := range env.publisher.all() {
		if m, ok := event.(shared.MilestoneReachedEvent); ok {
			reached = m
			found = true
		}
	}
	require.True(t, found)
	assert.Equal(t, 30, reached.Threshold)
	assert.Equal(t, 250, reached.Points)
	assert.Equal(t, "high", reached.Priority)
	assert.ElementsMatch(t, []string{"referral_boost", "profile_highlight"}, reached.Perks)

	seen := env.publisher.typesSeen()
	assert.Equal(t, 1, seen[shared.EventStreakUpdated])
	assert.Equal(t, 1, seen[shared.EventMilestoneReached])
	assert.Equal(t, 1, seen[shared.EventBadgeEarned])
	assert.Equal(t, 1, seen[shared.EventLevelUp])

	// Праздники в порядке стадий: рубеж, награда, уровень.
	items, err := env.celebrations.PeekPending(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, celebration.KindMilestone, items[0].Kind)
	assert.Equal(t, celebration.PriorityHigh, items[0].Priority)
	assert.Equal(t, celebration.KindBadge, items[1].Kind)
	assert.Equal(t, celebration.KindLevelUp, items[2].Kind)
}

func TestPipeline_FutureTimestampRejected(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "u1")
	handler := NewProcessTransactionHandler(env.pipeline)

	_, err := handler.Handle(context.Background(), ProcessTransactionCommand{
		UserID:      "u1",
		AmountCents: 10,
		Kind:        TransactionIncome,
		Timestamp:   time.Now().UTC().Add(time.Hour),
	})
	assert.ErrorIs(t, err, shared.ErrActivityInFuture)
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMAND HANDLER TESTS
// ══════════════════════════════════════════════════════════════════════════════

func TestProcessTransactionCommand_Validate(t *testing.T) {
	valid := ProcessTransactionCommand{UserID: "u1", AmountCents: 100, Kind: TransactionIncome}
	assert.NoError(t, valid.Validate())

	missing := ProcessTransactionCommand{AmountCents: 100, Kind: TransactionIncome}
	assert.ErrorIs(t, missing.Validate(), shared.ErrInvalidEvent)

	negative := ProcessTransactionCommand{UserID: "u1", AmountCents: -1, Kind: TransactionIncome}
	assert.ErrorIs(t, negative.Validate(), shared.ErrInvalidEvent)

	badKind := ProcessTransactionCommand{UserID: "u1", AmountCents: 1, Kind: "transfer"}
	assert.ErrorIs(t, badKind.Validate(), shared.ErrInvalidEvent)
}

func TestCompleteGoalHandler(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "u1")
	handler := NewCompleteGoalHandler(env.pipeline)

	result, err := handler.Handle(context.Background(), CompleteGoalCommand{
		UserID: "u1", GoalID: "goal-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.GoalsCompleted)
	assert.Equal(t, 1, result.CurrentStreak)
	assert.Contains(t, result.BadgesEarned, "Goal Getter")

	_, err = handler.Handle(context.Background(), CompleteGoalCommand{UserID: "u1"})
	assert.ErrorIs(t, err, shared.ErrInvalidEvent)
}

func TestCompleteHustleHandler(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "u1")
	handler := NewCompleteHustleHandler(env.pipeline)

	result, err := handler.Handle(context.Background(), CompleteHustleCommand{
		UserID: "u1", HustleID: "hustle-1", EarnedCents: 2500,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.HustlesCompleted)
	assert.Equal(t, int64(2500), result.NetSavings)
	assert.Contains(t, result.BadgesEarned, "Side Hustler")
	assert.Contains(t, result.BadgesEarned, "First Dollar")
}

func TestRecordLoginHandler_DrainsCelebrations(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "u1")

	txHandler := NewProcessTransactionHandler(env.pipeline)
	_, err := txHandler.Handle(context.Background(), ProcessTransactionCommand{
		UserID: "u1", AmountCents: 500, Kind: TransactionIncome,
	})
	require.NoError(t, err)

	loginHandler := NewRecordLoginHandler(env.pipeline, env.celebrations)
	result, err := loginHandler.Handle(context.Background(), RecordLoginCommand{UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.CurrentStreak)
	assert.False(t, result.StreakChanged)
	require.Len(t, result.Celebrations, 1)
	assert.Equal(t, "First Dollar", result.Celebrations[0].Title)

	// Очередь пуста после дрейна.
	count, err := env.celebrations.PendingCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDrainCelebrationsHandler(t *testing.T) {
	env := newTestEnv(t)
	handler := NewDrainCelebrationsHandler(env.celebrations)

	item, err := celebration.NewItem("u1", celebration.KindBadge, "Test", "", "", 0, celebration.PriorityNormal)
	require.NoError(t, err)
	require.NoError(t, env.celebrations.Enqueue(context.Background(), item))

	items, err := handler.Handle(context.Background(), DrainCelebrationsCommand{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = handler.Handle(context.Background(), DrainCelebrationsCommand{})
	assert.ErrorIs(t, err, shared.ErrInvalidEvent)
}

func TestRegisterUserHandler_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	handler := NewRegisterUserHandler(env.statsRepo)

	first, err := handler.Handle(context.Background(), RegisterUserCommand{
		UserID: "u1", DisplayName: "Alice", Campus: "MIT",
	})
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.False(t, first.AlreadyExisted)

	second, err := handler.Handle(context.Background(), RegisterUserCommand{
		UserID: "u1", DisplayName: "Alice", Campus: "MIT",
	})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.True(t, second.AlreadyExisted)
}

func TestShareAchievementHandler(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "u1")

	rec, err := achievement.New("u1", achievement.KindBadge, "First Dollar", "", 10, true)
	require.NoError(t, err)
	require.NoError(t, env.achievements.Append(context.Background(), rec))

	handler := NewShareAchievementHandler(env.pipeline, env.achievements)
	result, err := handler.Handle(context.Background(), ShareAchievementCommand{
		UserID: "u1", AchievementID: rec.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.AchievementsShared)
	assert.Contains(t, result.BadgesEarned, "Show Off")
	assert.True(t, rec.IsShared)
}

func TestShareAchievementHandler_UnknownAchievement(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "u1")

	handler := NewShareAchievementHandler(env.pipeline, env.achievements)
	_, err := handler.Handle(context.Background(), ShareAchievementCommand{
		UserID: "u1", AchievementID: "missing",
	})
	assert.ErrorIs(t, err, achievement.ErrAchievementNotFound)
}
