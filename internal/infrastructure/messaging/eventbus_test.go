package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscents/campuscents-gamification/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ТЕСТОВЫЕ ЗАГЛУШКИ
// ══════════════════════════════════════════════════════════════════════════════

type fakeRedisClient struct {
	messages chan RedisMessage
}

func newFakeRedisClient() *fakeRedisClient {
	return &fakeRedisClient{messages: make(chan RedisMessage, 16)}
}

func (c *fakeRedisClient) Publish(ctx context.Context, channel string, message interface{}) error {
	return nil
}

func (c *fakeRedisClient) Subscribe(ctx context.Context, channels ...string) (<-chan RedisMessage, error) {
	return c.messages, nil
}

func (c *fakeRedisClient) Close() error {
	return nil
}

// remoteEnvelope собирает сообщение так, как его публикует другой экземпляр шины.
func remoteEnvelope(t *testing.T, instanceID string, event shared.Event) RedisMessage {
	t.Helper()

	data, err := json.Marshal(eventEnvelope{
		InstanceID:  instanceID,
		EventType:   event.EventType(),
		AggregateID: event.AggregateID(),
		OccurredAt:  event.OccurredAt(),
		Payload:     event.Payload(),
	})
	require.NoError(t, err)

	return RedisMessage{Channel: "campuscents:events", Payload: string(data)}
}

// ══════════════════════════════════════════════════════════════════════════════
// ДЕКОДИРОВАНИЕ УДАЛЁННЫХ СОБЫТИЙ
// ══════════════════════════════════════════════════════════════════════════════

func TestDecodeRemoteEvent_RebuildsTypedEvents(t *testing.T) {
	occurred := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	original := shared.NewBadgeEarnedEvent("user-1", "badge-week-warrior", "Week Warrior", 50, 2, false)

	decoded, err := decodeRemoteEvent(eventEnvelope{
		InstanceID:  "engine-1",
		EventType:   original.EventType(),
		AggregateID: original.AggregateID(),
		OccurredAt:  occurred,
		Payload:     original.Payload(),
	})
	require.NoError(t, err)

	badge, ok := decoded.(shared.BadgeEarnedEvent)
	require.True(t, ok, "обработчики сверяют конкретный тип события")
	assert.Equal(t, "user-1", badge.UserID)
	assert.Equal(t, "badge-week-warrior", badge.BadgeID)
	assert.Equal(t, "Week Warrior", badge.BadgeName)
	assert.Equal(t, 50, badge.Points)
	assert.Equal(t, 2, badge.NewLevel)
	assert.Equal(t, shared.EventBadgeEarned, badge.EventType())
	assert.Equal(t, "user-1", badge.AggregateID())
	assert.Equal(t, occurred, badge.OccurredAt())
}

func TestDecodeRemoteEvent_UnknownTypeKeepsEnvelope(t *testing.T) {
	decoded, err := decodeRemoteEvent(eventEnvelope{
		InstanceID:  "engine-1",
		EventType:   shared.EventUserLogin,
		AggregateID: "user-1",
		OccurredAt:  time.Now(),
		Payload:     map[string]interface{}{"user_id": "user-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, shared.EventUserLogin, decoded.EventType())
	assert.Equal(t, "user-1", decoded.Payload()["user_id"])
}

// ══════════════════════════════════════════════════════════════════════════════
// REDIS EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

func TestRedisEventBus_DeliversRemoteEventsToTypedHandlers(t *testing.T) {
	client := newFakeRedisClient()

	bus, err := NewRedisEventBus(RedisEventBusConfig{
		Client:     client,
		InstanceID: "worker-1",
		LocalBusConfig: InMemoryEventBusConfig{
			AsyncMode: false,
		},
	})
	require.NoError(t, err)
	defer bus.Close()

	got := make(chan shared.Event, 4)
	require.NoError(t, bus.Subscribe(shared.EventStreakBroken, func(event shared.Event) error {
		got <- event
		return nil
	}))

	// Собственное сообщение пропускается, оно уже обработано локально.
	selfEvent := shared.NewStreakBrokenEvent("u9", 5, 1, "soft_reminder")
	client.messages <- remoteEnvelope(t, "worker-1", selfEvent)

	remote := shared.NewStreakBrokenEvent("u1", 10, 3, "strong_nudge")
	client.messages <- remoteEnvelope(t, "engine-1", remote)

	select {
	case event := <-got:
		broken, ok := event.(shared.StreakBrokenEvent)
		require.True(t, ok, "удалённое событие должно прийти конкретным типом")
		assert.Equal(t, "u1", broken.UserID)
		assert.Equal(t, 10, broken.PreviousStreak)
		assert.Equal(t, 3, broken.DaysMissed)
		assert.Equal(t, "strong_nudge", broken.Severity)
	case <-time.After(time.Second):
		t.Fatal("remote event was not delivered")
	}

	assert.Empty(t, got)
}
