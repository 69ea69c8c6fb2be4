package leaderboard

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss - выдачи нет в кэше, нужно чтение из хранилища.
var ErrCacheMiss = errors.New("leaderboard cache miss")

// Repository определяет контракт хранилища строк лидербордов.
// Реализация находится в infrastructure слое (PostgreSQL).
type Repository interface {
	// UpsertScore записывает счёт пользователя в лидерборд.
	// Ранг при этом не трогается: его выставляет ReplaceRanks.
	UpsertScore(ctx context.Context, key Key, entry *Entry) error

	// ListEntries возвращает все строки одного лидерборда.
	// Порядок не гарантируется, ранжирует вызывающий.
	ListEntries(ctx context.Context, key Key) ([]*Entry, error)

	// ListEntriesAllScopes возвращает строки всех охватов пары
	// (вид, период). Используется глобальной выдачей для схлопывания
	// дублей пользователей с кампусом.
	ListEntriesAllScopes(ctx context.Context, boardType BoardType, period Period) ([]*Entry, error)

	// ReplaceRanks записывает пересчитанные ранги всех строк лидерборда
	// одной транзакцией. Частично записанные ранги не должны быть видны.
	ReplaceRanks(ctx context.Context, key Key, entries []*Entry) error

	// GetUserEntry возвращает строку пользователя в лидерборде.
	// Возвращает ErrEmptyLeaderboard, если строки нет.
	GetUserEntry(ctx context.Context, key Key, userID string) (*Entry, error)

	// WithBoardLock выполняет fn под эксклюзивной блокировкой лидерборда.
	// Критическая секция пересчёта: конкурирующие полные пересчёты одного
	// ключа сериализуются, чтобы чередующиеся частичные записи рангов не
	// были видны читателям.
	WithBoardLock(ctx context.Context, key Key, fn func(ctx context.Context) error) error
}

// Cache определяет контракт кэша готовых выдач лидербордов.
// Реализация находится в infrastructure слое (Redis). Кэш вторичен:
// его недоступность деградирует до чтения из хранилища, не до ошибки.
type Cache interface {
	// GetBoard возвращает закэшированную выдачу или ErrCacheMiss.
	GetBoard(ctx context.Context, key Key, limit int) ([]*Entry, error)

	// SetBoard кэширует выдачу с ограниченным временем жизни.
	SetBoard(ctx context.Context, key Key, entries []*Entry, ttl time.Duration) error

	// InvalidateBoard сбрасывает кэш лидерборда после пересчёта.
	InvalidateBoard(ctx context.Context, key Key) error
}
