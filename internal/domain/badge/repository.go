package badge

import "context"

// Repository определяет контракт хранилища каталога и выданных наград.
// Реализация находится в infrastructure слое (PostgreSQL).
type Repository interface {
	// SeedDefinitions вставляет записи каталога, которых ещё нет.
	// Существующие записи не трогает: каталог неизменяем после посева.
	SeedDefinitions(ctx context.Context, defs []*Definition) error

	// ListActiveDefinitions возвращает активные записи каталога
	// в порядке SortOrder.
	ListActiveDefinitions(ctx context.Context) ([]*Definition, error)

	// GetDefinition возвращает запись каталога по идентификатору.
	// Возвращает ErrDefinitionNotFound, если записи нет.
	GetDefinition(ctx context.Context, id string) (*Definition, error)

	// ListUserBadges возвращает награды пользователя, новые первыми.
	ListUserBadges(ctx context.Context, userID string) ([]*UserBadge, error)

	// InsertUserBadge записывает факт получения награды.
	// Возвращает ErrDuplicateAward, если пара (user, badge) уже существует:
	// вставка обязана быть атомарной относительно конкурентных вызовов.
	InsertUserBadge(ctx context.Context, ub *UserBadge) error
}
