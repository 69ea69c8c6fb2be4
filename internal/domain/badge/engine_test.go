package badge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscents/campuscents-gamification/internal/domain/achievement"
	"github.com/campuscents/campuscents-gamification/internal/domain/stats"
)

// fakeBadgeRepo - хранилище каталога и наград в памяти для тестов движка.
type fakeBadgeRepo struct {
	defs       []*Definition
	userBadges map[string][]*UserBadge
	insertErr  error
	failOnce   map[string]error
}

func newFakeBadgeRepo(defs []*Definition) *fakeBadgeRepo {
	return &fakeBadgeRepo{
		defs:       defs,
		userBadges: make(map[string][]*UserBadge),
		failOnce:   make(map[string]error),
	}
}

func (r *fakeBadgeRepo) SeedDefinitions(ctx context.Context, defs []*Definition) error {
	r.defs = defs
	return nil
}

func (r *fakeBadgeRepo) ListActiveDefinitions(ctx context.Context) ([]*Definition, error) {
	var active []*Definition
	for _, d := range r.defs {
		if d.Active {
			active = append(active, d)
		}
	}
	return active, nil
}

func (r *fakeBadgeRepo) GetDefinition(ctx context.Context, id string) (*Definition, error) {
	for _, d := range r.defs {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, ErrDefinitionNotFound
}

func (r *fakeBadgeRepo) ListUserBadges(ctx context.Context, userID string) ([]*UserBadge, error) {
	return r.userBadges[userID], nil
}

func (r *fakeBadgeRepo) InsertUserBadge(ctx context.Context, ub *UserBadge) error {
	if err, ok := r.failOnce[ub.BadgeID]; ok {
		delete(r.failOnce, ub.BadgeID)
		return err
	}
	if r.insertErr != nil {
		return r.insertErr
	}
	for _, held := range r.userBadges[ub.UserID] {
		if held.BadgeID == ub.BadgeID {
			return ErrDuplicateAward
		}
	}
	r.userBadges[ub.UserID] = append(r.userBadges[ub.UserID], ub)
	return nil
}

// fakeAchievementRepo - журнал достижений в памяти.
type fakeAchievementRepo struct {
	records   []*achievement.Achievement
	appendErr error
}

func (r *fakeAchievementRepo) Append(ctx context.Context, a *achievement.Achievement) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.records = append(r.records, a)
	return nil
}

func (r *fakeAchievementRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*achievement.Achievement, error) {
	return r.records, nil
}

func (r *fakeAchievementRepo) MarkShared(ctx context.Context, id string) error {
	for _, a := range r.records {
		if a.ID == id {
			a.MarkShared()
			return nil
		}
	}
	return achievement.ErrAchievementNotFound
}

func testStats() *stats.UserStats {
	return &stats.UserStats{
		UserID:           "user-1",
		DisplayName:      "Alice",
		NetSavings:       0,
		ExperiencePoints: 0,
		Level:            1,
		Title:            stats.TitleBeginner,
	}
}

func TestEngine_AwardsOnThreshold(t *testing.T) {
	repo := newFakeBadgeRepo(DefaultCatalog())
	achRepo := &fakeAchievementRepo{}
	engine := NewEngine(repo, achRepo, nil)

	s := testStats()
	s.NetSavings = 150 // выше порога first-dollar (100 центов)

	result, err := engine.Evaluate(context.Background(), EvalContext{Stats: s})
	require.NoError(t, err)

	require.Len(t, result.Earned, 1)
	assert.Equal(t, "first-dollar", result.Earned[0].Definition.ID)
	assert.Equal(t, 10, result.XPGained)
	assert.Equal(t, stats.XP(10), s.ExperiencePoints)
	assert.True(t, result.Earned[0].UserBadge.Showcased)
	assert.Empty(t, result.Failures)

	require.NotNil(t, result.Earned[0].Achievement)
	assert.Equal(t, achievement.KindBadge, result.Earned[0].Achievement.Kind)
	assert.Equal(t, "First Dollar", result.Earned[0].Achievement.Title)
}

func TestEngine_SecondPassIsIdempotent(t *testing.T) {
	repo := newFakeBadgeRepo(DefaultCatalog())
	engine := NewEngine(repo, &fakeAchievementRepo{}, nil)

	s := testStats()
	s.NetSavings = 150

	first, err := engine.Evaluate(context.Background(), EvalContext{Stats: s})
	require.NoError(t, err)
	require.Len(t, first.Earned, 1)

	second, err := engine.Evaluate(context.Background(), EvalContext{Stats: s})
	require.NoError(t, err)
	assert.False(t, second.HasEarned())
	assert.Zero(t, second.XPGained)
	assert.Equal(t, stats.XP(10), s.ExperiencePoints)
}

func TestEngine_BatchAwardsAccumulateXP(t *testing.T) {
	repo := newFakeBadgeRepo(DefaultCatalog())
	engine := NewEngine(repo, &fakeAchievementRepo{}, nil)

	// Накопления $500 пересекают first-dollar, penny-pincher и smart-saver.
	s := testStats()
	s.NetSavings = 50_000

	result, err := engine.Evaluate(context.Background(), EvalContext{Stats: s})
	require.NoError(t, err)

	require.Len(t, result.Earned, 3)
	assert.Equal(t, 10+50+150, result.XPGained)
	assert.True(t, result.LeveledUp)
	assert.Equal(t, stats.Level(3), s.Level)

	// Только первая награда пачки на витрине.
	assert.True(t, result.Earned[0].UserBadge.Showcased)
	assert.False(t, result.Earned[1].UserBadge.Showcased)
	assert.False(t, result.Earned[2].UserBadge.Showcased)
}

func TestEngine_DuplicateAwardSwallowed(t *testing.T) {
	repo := newFakeBadgeRepo(DefaultCatalog())
	repo.failOnce["first-dollar"] = ErrDuplicateAward
	engine := NewEngine(repo, &fakeAchievementRepo{}, nil)

	s := testStats()
	s.NetSavings = 150

	result, err := engine.Evaluate(context.Background(), EvalContext{Stats: s})
	require.NoError(t, err)

	assert.False(t, result.HasEarned())
	assert.Empty(t, result.Failures)
	assert.Zero(t, result.XPGained)
}

func TestEngine_PartialFailureDoesNotBlockRest(t *testing.T) {
	repo := newFakeBadgeRepo(DefaultCatalog())
	repo.failOnce["first-dollar"] = errors.New("insert failed")
	engine := NewEngine(repo, &fakeAchievementRepo{}, nil)

	s := testStats()
	s.NetSavings = 10_000

	result, err := engine.Evaluate(context.Background(), EvalContext{Stats: s})
	require.NoError(t, err)

	require.Len(t, result.Earned, 1)
	assert.Equal(t, "penny-pincher", result.Earned[0].Definition.ID)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "first-dollar", result.Failures[0].BadgeID)
	assert.Equal(t, 50, result.XPGained)
}

func TestEngine_AchievementAppendFailureKeepsBadge(t *testing.T) {
	repo := newFakeBadgeRepo(DefaultCatalog())
	achRepo := &fakeAchievementRepo{appendErr: errors.New("journal down")}
	engine := NewEngine(repo, achRepo, nil)

	s := testStats()
	s.NetSavings = 150

	result, err := engine.Evaluate(context.Background(), EvalContext{Stats: s})
	require.NoError(t, err)

	require.Len(t, result.Earned, 1)
	assert.Nil(t, result.Earned[0].Achievement)
}

func TestEngine_CampusRankRequirement(t *testing.T) {
	repo := newFakeBadgeRepo(DefaultCatalog())
	engine := NewEngine(repo, &fakeAchievementRepo{}, nil)

	s := testStats()

	// Без места в лидерборде кампусные награды не выдаются.
	result, err := engine.Evaluate(context.Background(), EvalContext{Stats: s, CampusRank: 0})
	require.NoError(t, err)
	assert.False(t, result.HasEarned())

	// Первое место выдаёт обе кампусные награды.
	result, err = engine.Evaluate(context.Background(), EvalContext{Stats: s, CampusRank: 1})
	require.NoError(t, err)
	require.Len(t, result.Earned, 2)
	assert.Equal(t, "campus-elite", result.Earned[0].Definition.ID)
	assert.Equal(t, "campus-champion", result.Earned[1].Definition.ID)
}

func TestEngine_NilStats(t *testing.T) {
	engine := NewEngine(newFakeBadgeRepo(nil), &fakeAchievementRepo{}, nil)

	_, err := engine.Evaluate(context.Background(), EvalContext{})
	assert.ErrorIs(t, err, ErrNilStats)
}

func TestRequirement_Satisfied(t *testing.T) {
	s := &stats.UserStats{
		NetSavings:         5000,
		LongestStreak:      10,
		GoalsCompleted:     2,
		HustlesCompleted:   1,
		AchievementsShared: 0,
	}
	ectx := EvalContext{Stats: s, CampusRank: 5, BudgetStreakDays: 14}

	tests := []struct {
		req  Requirement
		want bool
	}{
		{Requirement{RequirementAmountSaved, 5000}, true},
		{Requirement{RequirementAmountSaved, 5001}, false},
		{Requirement{RequirementStreakDays, 10}, true},
		{Requirement{RequirementStreakDays, 11}, false},
		{Requirement{RequirementGoalsCompleted, 2}, true},
		{Requirement{RequirementHustlesCompleted, 2}, false},
		{Requirement{RequirementAchievementsShared, 1}, false},
		{Requirement{RequirementCampusRank, 10}, true},
		{Requirement{RequirementCampusRank, 4}, false},
		{Requirement{RequirementBudgetStreak, 14}, true},
	}

	for _, tt := range tests {
		got, err := tt.req.Satisfied(ectx)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "requirement %s/%d", tt.req.Type, tt.req.Value)
	}
}

func TestRequirement_UnknownType(t *testing.T) {
	req := Requirement{Type: "teleportation", Value: 1}

	_, err := req.Satisfied(EvalContext{Stats: &stats.UserStats{}})
	assert.ErrorIs(t, err, ErrUnknownRequirement)
}

func TestRequirement_CampusRankZeroMeansNoRank(t *testing.T) {
	req := Requirement{Type: RequirementCampusRank, Value: 10}

	got, err := req.Satisfied(EvalContext{Stats: &stats.UserStats{}, CampusRank: 0})
	require.NoError(t, err)
	assert.False(t, got)
}

func TestDefinition_Validate(t *testing.T) {
	valid := &Definition{
		ID:          "test",
		Name:        "Test",
		Requirement: Requirement{Type: RequirementAmountSaved, Value: 100},
	}
	assert.NoError(t, valid.Validate())

	assert.Error(t, (&Definition{}).Validate())
	assert.Error(t, (&Definition{ID: "x", Name: "X",
		Requirement: Requirement{Type: "bogus", Value: 1}}).Validate())
	assert.Error(t, (&Definition{ID: "x", Name: "X",
		Requirement: Requirement{Type: RequirementAmountSaved, Value: 0}}).Validate())
}

func TestDefaultCatalog_AllValid(t *testing.T) {
	seen := make(map[string]bool)
	for _, def := range DefaultCatalog() {
		assert.NoError(t, def.Validate(), "definition %s", def.ID)
		assert.False(t, seen[def.ID], "duplicate id %s", def.ID)
		seen[def.ID] = true
		assert.True(t, def.Active)
	}
}
