package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscents/campuscents-gamification/internal/domain/achievement"
	"github.com/campuscents/campuscents-gamification/internal/domain/badge"
	"github.com/campuscents/campuscents-gamification/internal/domain/celebration"
	"github.com/campuscents/campuscents-gamification/internal/domain/stats"
)

type fakeStatsStore struct {
	users map[string]*stats.UserStats
}

func (s *fakeStatsStore) Create(ctx context.Context, u *stats.UserStats) error {
	s.users[u.UserID] = u
	return nil
}

func (s *fakeStatsStore) GetByUserID(ctx context.Context, userID string) (*stats.UserStats, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, stats.ErrStatsNotFound
	}
	return u.Clone(), nil
}

func (s *fakeStatsStore) Update(ctx context.Context, u *stats.UserStats) error {
	s.users[u.UserID] = u
	return nil
}

func (s *fakeStatsStore) ListAtRiskOfBreak(ctx context.Context, lastActiveOn time.Time, minStreak int) ([]*stats.UserStats, error) {
	return nil, nil
}

func (s *fakeStatsStore) ListAll(ctx context.Context) ([]*stats.UserStats, error) {
	return nil, nil
}

type fakeBadgeStore struct {
	defs   map[string]*badge.Definition
	badges []*badge.UserBadge
}

func (s *fakeBadgeStore) SeedDefinitions(ctx context.Context, defs []*badge.Definition) error {
	return nil
}

func (s *fakeBadgeStore) ListActiveDefinitions(ctx context.Context) ([]*badge.Definition, error) {
	return nil, nil
}

func (s *fakeBadgeStore) GetDefinition(ctx context.Context, id string) (*badge.Definition, error) {
	def, ok := s.defs[id]
	if !ok {
		return nil, badge.ErrDefinitionNotFound
	}
	return def, nil
}

func (s *fakeBadgeStore) ListUserBadges(ctx context.Context, userID string) ([]*badge.UserBadge, error) {
	return s.badges, nil
}

func (s *fakeBadgeStore) InsertUserBadge(ctx context.Context, ub *badge.UserBadge) error {
	s.badges = append(s.badges, ub)
	return nil
}

type fakeAchievementStore struct {
	records []*achievement.Achievement
}

func (s *fakeAchievementStore) Append(ctx context.Context, a *achievement.Achievement) error {
	s.records = append(s.records, a)
	return nil
}

func (s *fakeAchievementStore) ListByUser(ctx context.Context, userID string, limit int) ([]*achievement.Achievement, error) {
	if limit > len(s.records) {
		limit = len(s.records)
	}
	return s.records[:limit], nil
}

func (s *fakeAchievementStore) MarkShared(ctx context.Context, id string) error {
	return achievement.ErrAchievementNotFound
}

func profileFixtures(t *testing.T) (*fakeStatsStore, *fakeBadgeStore, *fakeAchievementStore, *celebration.MemoryQueue) {
	t.Helper()

	statsStore := &fakeStatsStore{users: map[string]*stats.UserStats{
		"u1": {
			UserID:           "u1",
			DisplayName:      "Alice",
			Campus:           "MIT",
			NetSavings:       12_500,
			CurrentStreak:    8,
			LongestStreak:    15,
			ExperiencePoints: 320,
			Level:            4,
			Title:            stats.TitleBeginner,
			GoalsCompleted:   2,
			HustlesCompleted: 1,
		},
	}}

	catalog := badge.DefaultCatalog()
	defs := make(map[string]*badge.Definition, len(catalog))
	for _, def := range catalog {
		defs[def.ID] = def
	}
	badgeStore := &fakeBadgeStore{
		defs: defs,
		badges: []*badge.UserBadge{
			{ID: "ub1", UserID: "u1", BadgeID: "first-dollar", Showcased: true, EarnedAt: time.Now().UTC()},
			{ID: "ub2", UserID: "u1", BadgeID: "retired-badge", EarnedAt: time.Now().UTC()},
		},
	}

	rec, err := achievement.New("u1", achievement.KindMilestone, "Week Warrior", "7-day streak milestone", 50, true)
	require.NoError(t, err)
	achStore := &fakeAchievementStore{records: []*achievement.Achievement{rec}}

	queue := celebration.NewMemoryQueue()
	item, err := celebration.NewItem("u1", celebration.KindBadge, "First Dollar", "", "piggy-bank", 10, celebration.PriorityNormal)
	require.NoError(t, err)
	require.NoError(t, queue.Enqueue(context.Background(), item))

	return statsStore, badgeStore, achStore, queue
}

func TestGetUserProfileQuery_Validate(t *testing.T) {
	q := GetUserProfileQuery{UserID: "u1"}
	require.NoError(t, q.Validate())
	assert.Equal(t, 10, q.AchievementLimit)

	q = GetUserProfileQuery{UserID: "u1", AchievementLimit: 200}
	require.NoError(t, q.Validate())
	assert.Equal(t, 50, q.AchievementLimit)

	assert.Error(t, (&GetUserProfileQuery{}).Validate())
	assert.Error(t, (&GetUserProfileQuery{UserID: "u1", AchievementLimit: -1}).Validate())
}

func TestGetUserProfile_AggregatesAllSections(t *testing.T) {
	statsStore, badgeStore, achStore, queue := profileFixtures(t)
	handler := NewGetUserProfileHandler(statsStore, badgeStore, achStore, queue, nil)

	result, err := handler.Handle(context.Background(), GetUserProfileQuery{UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, "Alice", result.DisplayName)
	assert.Equal(t, "MIT", result.Campus)
	assert.Equal(t, int64(12_500), result.NetSavingsCents)
	assert.Equal(t, 8, result.CurrentStreak)
	assert.Equal(t, 15, result.LongestStreak)
	assert.Equal(t, 320, result.XP)
	assert.Equal(t, 4, result.Level)

	require.Len(t, result.Badges, 2)
	assert.Equal(t, "First Dollar", result.Badges[0].Name)
	assert.Equal(t, "piggy-bank", result.Badges[0].Icon)
	assert.True(t, result.Badges[0].Showcased)

	// Награда без записи каталога показывается только идентификатором.
	assert.Equal(t, "retired-badge", result.Badges[1].BadgeID)
	assert.Empty(t, result.Badges[1].Name)

	require.Len(t, result.Achievements, 1)
	assert.Equal(t, "Week Warrior", result.Achievements[0].Title)
	assert.Equal(t, "milestone", result.Achievements[0].Kind)

	require.Len(t, result.PendingCelebrations, 1)
	assert.Equal(t, "First Dollar", result.PendingCelebrations[0].Title)
}

func TestGetUserProfile_PeekDoesNotDrainQueue(t *testing.T) {
	statsStore, badgeStore, achStore, queue := profileFixtures(t)
	handler := NewGetUserProfileHandler(statsStore, badgeStore, achStore, queue, nil)

	_, err := handler.Handle(context.Background(), GetUserProfileQuery{UserID: "u1"})
	require.NoError(t, err)

	count, err := queue.PendingCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetUserProfile_UnknownUser(t *testing.T) {
	statsStore, badgeStore, achStore, queue := profileFixtures(t)
	handler := NewGetUserProfileHandler(statsStore, badgeStore, achStore, queue, nil)

	_, err := handler.Handle(context.Background(), GetUserProfileQuery{UserID: "ghost"})
	assert.ErrorIs(t, err, stats.ErrStatsNotFound)
}
