package notification

import "context"

// Sender определяет контракт доставки уведомлений.
// Реализация находится в infrastructure слое (push-шлюз за circuit breaker).
//
// Доставка best-effort: сбой логируется и не откатывает доменные записи,
// синхронных повторов нет.
type Sender interface {
	// Send доставляет уведомление получателю.
	// Возвращает ErrDeliveryFailed, обёрнутую поверх причины, при сбое.
	Send(ctx context.Context, n *Notification) error
}
