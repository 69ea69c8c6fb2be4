package achievement

import "context"

// Repository определяет контракт журнала достижений.
// Реализация находится в infrastructure слое (PostgreSQL).
type Repository interface {
	// Append добавляет запись в журнал.
	Append(ctx context.Context, a *Achievement) error

	// ListByUser возвращает достижения пользователя, новые первыми.
	ListByUser(ctx context.Context, userID string, limit int) ([]*Achievement, error)

	// MarkShared помечает достижение опубликованным.
	// Возвращает ErrAchievementNotFound, если записи нет.
	MarkShared(ctx context.Context, id string) error
}
