// Package stats содержит доменную модель накопительной статистики пользователя.
package stats

import (
	"context"
	"time"
)

// Repository определяет контракт для хранения статистики пользователей.
// Реализация находится в infrastructure слое (PostgreSQL).
//
// Движок - единственный писатель этих полей: обновление выполняется одной
// атомарной записью документа, частичных состояний не бывает.
type Repository interface {
	// Create создаёт запись статистики для нового пользователя.
	// Возвращает ErrStatsAlreadyExist, если запись уже есть.
	Create(ctx context.Context, s *UserStats) error

	// GetByUserID возвращает статистику пользователя.
	// Возвращает ErrStatsNotFound, если записи нет.
	GetByUserID(ctx context.Context, userID string) (*UserStats, error)

	// Update сохраняет изменённую запись целиком (одна атомарная запись).
	Update(ctx context.Context, s *UserStats) error

	// ListAtRiskOfBreak возвращает пользователей, чья последняя активность
	// пришлась ровно на указанную дату (обычно вчера) и чья серия не короче
	// minStreak. Используется сканом "серия под угрозой".
	ListAtRiskOfBreak(ctx context.Context, lastActiveOn time.Time, minStreak int) ([]*UserStats, error)

	// ListAll возвращает всех пользователей для полного пересчёта
	// лидербордов. Порядок не гарантируется.
	ListAll(ctx context.Context) ([]*UserStats, error)
}
