package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCronExpression(t *testing.T) {
	ce, err := ParseCronExpression("0 18 * * *")
	require.NoError(t, err)
	assert.Equal(t, "0 18 * * *", ce.String())

	_, err = ParseCronExpression("0 18 * *")
	assert.Error(t, err)

	_, err = ParseCronExpression("61 * * * *")
	assert.Error(t, err)

	_, err = ParseCronExpression("* 25 * * *")
	assert.Error(t, err)
}

func TestCronExpression_NextDaily(t *testing.T) {
	ce := MustParseCronExpression("0 18 * * *")

	morning := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC), ce.Next(morning))

	// После 18:00 следующий запуск завтра.
	evening := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 16, 18, 0, 0, 0, time.UTC), ce.Next(evening))
}

func TestCronExpression_NextStep(t *testing.T) {
	ce := MustParseCronExpression("*/15 * * * *")

	at := time.Date(2026, 3, 15, 9, 3, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 15, 9, 15, 0, 0, time.UTC), ce.Next(at))

	onBoundary := time.Date(2026, 3, 15, 9, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC), ce.Next(onBoundary))
}

func TestCronExpression_NextWeekday(t *testing.T) {
	// 15 марта 2026 - воскресенье.
	ce := MustParseCronExpression("0 0 * * 1")

	sunday := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	next := ce.Next(sunday)

	assert.Equal(t, time.Monday, next.Weekday())
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), next)
}

func TestCronExpression_List(t *testing.T) {
	ce, err := ParseCronExpression("0 9,21 * * *")
	require.NoError(t, err)

	morning := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, 9, ce.Next(morning).Hour())

	noon := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 21, ce.Next(noon).Hour())
}

func TestIntervalSchedule(t *testing.T) {
	s := NewIntervalSchedule(30 * time.Minute)

	at := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, at.Add(30*time.Minute), s.Next(at))
}
