package milestone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_CrossingThreshold(t *testing.T) {
	reached, ok := Detect(6, 7)

	require.True(t, ok)
	assert.Equal(t, 7, reached.Threshold)
	assert.Equal(t, "Week Warrior", reached.Title)
	assert.Equal(t, 50, reached.Points)
	assert.Equal(t, PriorityNormal, reached.Priority)
	assert.Empty(t, reached.Perks)
}

func TestDetect_NoThresholdCrossed(t *testing.T) {
	_, ok := Detect(7, 8)
	assert.False(t, ok)

	_, ok = Detect(0, 1)
	assert.False(t, ok)

	_, ok = Detect(16, 29)
	assert.False(t, ok)
}

func TestDetect_SameOrLowerStreak(t *testing.T) {
	_, ok := Detect(7, 7)
	assert.False(t, ok)

	_, ok = Detect(30, 1)
	assert.False(t, ok)
}

func TestDetect_MultiThresholdJumpFiresHighestOnly(t *testing.T) {
	// Скачок 5 -> 35 пересекает 7, 15 и 30. Срабатывает только 30.
	reached, ok := Detect(5, 35)

	require.True(t, ok)
	assert.Equal(t, 30, reached.Threshold)
	assert.Equal(t, "Month Master", reached.Title)
	assert.Equal(t, 250, reached.Points)
}

func TestDetect_SameThresholdNotFiredTwice(t *testing.T) {
	_, ok := Detect(30, 45)
	assert.False(t, ok)
}

func TestDetect_HighPriorityFromMonth(t *testing.T) {
	reached, ok := Detect(14, 15)
	require.True(t, ok)
	assert.Equal(t, PriorityNormal, reached.Priority)

	reached, ok = Detect(29, 30)
	require.True(t, ok)
	assert.Equal(t, PriorityHigh, reached.Priority)

	reached, ok = Detect(99, 100)
	require.True(t, ok)
	assert.Equal(t, PriorityHigh, reached.Priority)
}

func TestDetect_CenturionCarriesAllPerks(t *testing.T) {
	reached, ok := Detect(99, 100)

	require.True(t, ok)
	assert.Equal(t, 1000, reached.Points)
	assert.Contains(t, reached.Perks, PerkReferralBoost)
	assert.Contains(t, reached.Perks, PerkProfileHighlight)
	assert.Contains(t, reached.Perks, PerkPrioritySupport)
	assert.Contains(t, reached.Perks, PerkExclusiveFeatures)
}

func TestPerksAt_Accumulate(t *testing.T) {
	assert.Empty(t, PerksAt(15))
	assert.ElementsMatch(t, []Perk{PerkReferralBoost, PerkProfileHighlight}, PerksAt(30))
	assert.ElementsMatch(t,
		[]Perk{PerkReferralBoost, PerkProfileHighlight, PerkPrioritySupport},
		PerksAt(60))
}

func TestLadder_ReturnsCopy(t *testing.T) {
	first := Ladder()
	first[0].Points = 9999

	second := Ladder()
	assert.Equal(t, 50, second[0].Points)
}
