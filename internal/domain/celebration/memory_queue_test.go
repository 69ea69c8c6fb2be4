package celebration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustItem(t *testing.T, userID, title string) *Item {
	t.Helper()
	item, err := NewItem(userID, KindBadge, title, "msg", "icon", 10, PriorityNormal)
	require.NoError(t, err)
	return item
}

func TestNewItem(t *testing.T) {
	item, err := NewItem("u1", KindMilestone, "Month Master", "30 days!", "calendar-flame", 250, PriorityHigh)
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "u1", item.UserID)
	assert.Equal(t, KindMilestone, item.Kind)
	assert.Equal(t, PriorityHigh, item.Priority)
	assert.False(t, item.CreatedAt.IsZero())
}

func TestNewItem_Validation(t *testing.T) {
	_, err := NewItem("", KindBadge, "t", "", "", 0, PriorityNormal)
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = NewItem("u1", "fireworks", "t", "", "", 0, PriorityNormal)
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = NewItem("u1", KindBadge, "", "", "", 0, PriorityNormal)
	assert.ErrorIs(t, err, ErrInvalidItem)
}

func TestNewItem_UnknownPriorityFallsBackToNormal(t *testing.T) {
	item, err := NewItem("u1", KindBadge, "t", "", "", 0, "urgent")
	require.NoError(t, err)
	assert.Equal(t, PriorityNormal, item.Priority)
}

func TestMemoryQueue_EnqueueAndDrain(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()

	require.NoError(t, q.Enqueue(ctx, mustItem(t, "u1", "first")))
	require.NoError(t, q.Enqueue(ctx, mustItem(t, "u1", "second")))
	require.NoError(t, q.Enqueue(ctx, mustItem(t, "u2", "other")))

	items, err := q.DrainPending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)

	// FIFO: порядок постановки сохраняется.
	assert.Equal(t, "first", items[0].Title)
	assert.Equal(t, "second", items[1].Title)

	// Дрейн деструктивен: повторный вызов возвращает пусто.
	items, err = q.DrainPending(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)

	// Чужая очередь не затронута.
	count, err := q.PendingCount(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryQueue_PeekDoesNotRemove(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()

	require.NoError(t, q.Enqueue(ctx, mustItem(t, "u1", "keep me")))

	peeked, err := q.PeekPending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, peeked, 1)

	count, err := q.PendingCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryQueue_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()

	assert.ErrorIs(t, q.Enqueue(ctx, nil), ErrInvalidItem)
	assert.ErrorIs(t, q.Enqueue(ctx, &Item{}), ErrInvalidItem)

	_, err := q.DrainPending(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = q.PeekPending(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = q.PendingCount(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidItem)
}

func TestMemoryQueue_DrainUnknownUserReturnsEmpty(t *testing.T) {
	q := NewMemoryQueue()

	items, err := q.DrainPending(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, items)
}
