package celebration

import (
	"context"
	"fmt"
	"sync"
)

// ══════════════════════════════════════════════════════════════════════════════
// MEMORY QUEUE
// ══════════════════════════════════════════════════════════════════════════════

// MemoryQueue - реализация Queue в памяти процесса. Используется в
// разработке без Redis и в тестах. Содержимое теряется при рестарте.
type MemoryQueue struct {
	mu    sync.Mutex
	items map[string][]*Item
}

// NewMemoryQueue создаёт пустую очередь в памяти.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		items: make(map[string][]*Item),
	}
}

// Enqueue ставит payload в хвост очереди пользователя.
func (q *MemoryQueue) Enqueue(ctx context.Context, item *Item) error {
	if item == nil {
		return fmt.Errorf("%w: nil item", ErrInvalidItem)
	}
	if item.UserID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidItem)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.items[item.UserID] = append(q.items[item.UserID], item)
	return nil
}

// DrainPending снимает и возвращает все ожидающие payload пользователя.
func (q *MemoryQueue) DrainPending(ctx context.Context, userID string) ([]*Item, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrInvalidItem)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.items[userID]
	delete(q.items, userID)
	return pending, nil
}

// PeekPending возвращает ожидающие payload без снятия с очереди.
func (q *MemoryQueue) PeekPending(ctx context.Context, userID string) ([]*Item, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrInvalidItem)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.items[userID]
	out := make([]*Item, len(pending))
	copy(out, pending)
	return out, nil
}

// PendingCount возвращает размер очереди пользователя.
func (q *MemoryQueue) PendingCount(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: empty user id", ErrInvalidItem)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items[userID]), nil
}
