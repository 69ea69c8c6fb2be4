// Package eventhandler содержит обработчики доменных событий.
// Обработчики - "реактивная" часть движка: они запускают побочные эффекты
// (уведомления, лента) асинхронно и никогда не блокируют конвейер,
// породивший событие.
package eventhandler

import (
	"context"
	"log/slog"

	"github.com/campuscents/campuscents-gamification/internal/domain/notification"
	"github.com/campuscents/campuscents-gamification/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON STREAK BROKEN HANDLER
// Серия прервана - отправляем уведомление, тон которого зависит от длины
// пропуска. Конвейер уже отфильтровал короткие серии, сюда прилетают
// только заслуживающие уведомления.
// ═══════════════════════════════════════════════════════════════════════════

// OnStreakBrokenHandler отправляет уведомление о сломанной серии.
type OnStreakBrokenHandler struct {
	sender notification.Sender
	logger *slog.Logger
}

// NewOnStreakBrokenHandler создаёт обработчик.
func NewOnStreakBrokenHandler(sender notification.Sender, logger *slog.Logger) *OnStreakBrokenHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnStreakBrokenHandler{
		sender: sender,
		logger: logger.With("handler", "on_streak_broken"),
	}
}

// Handle обрабатывает событие сломанной серии.
// Реализует интерфейс shared.EventHandler.
func (h *OnStreakBrokenHandler) Handle(event shared.Event) error {
	breakEvent, ok := event.(shared.StreakBrokenEvent)
	if !ok {
		h.logger.Warn("received non-StreakBrokenEvent",
			"event_type", event.EventType())
		return nil
	}

	h.logger.Info("processing streak broken event",
		"user_id", breakEvent.UserID,
		"previous_streak", breakEvent.PreviousStreak,
		"days_missed", breakEvent.DaysMissed,
		"severity", breakEvent.Severity)

	n, err := notification.ForStreakBroken(breakEvent.UserID,
		breakEvent.PreviousStreak, breakEvent.DaysMissed)
	if err != nil {
		h.logger.Error("failed to build notification",
			"user_id", breakEvent.UserID, "error", err)
		return nil
	}

	// Best-effort: сбой доставки логируется и не ретраится синхронно.
	if err := h.sender.Send(context.Background(), n); err != nil {
		h.logger.Error("streak broken notification failed",
			"user_id", breakEvent.UserID, "error", err)
	}

	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// ON STREAK AT RISK HANDLER
// Вечерний скан нашёл серию, которая сгорит в полночь.
// ═══════════════════════════════════════════════════════════════════════════

// OnStreakAtRiskHandler отправляет напоминание о серии под угрозой.
type OnStreakAtRiskHandler struct {
	sender notification.Sender
	logger *slog.Logger
}

// NewOnStreakAtRiskHandler создаёт обработчик.
func NewOnStreakAtRiskHandler(sender notification.Sender, logger *slog.Logger) *OnStreakAtRiskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnStreakAtRiskHandler{
		sender: sender,
		logger: logger.With("handler", "on_streak_at_risk"),
	}
}

// Handle обрабатывает событие серии под угрозой.
func (h *OnStreakAtRiskHandler) Handle(event shared.Event) error {
	riskEvent, ok := event.(shared.StreakAtRiskEvent)
	if !ok {
		h.logger.Warn("received non-StreakAtRiskEvent",
			"event_type", event.EventType())
		return nil
	}

	n, err := notification.ForStreakAtRisk(riskEvent.UserID, riskEvent.CurrentStreak)
	if err != nil {
		h.logger.Error("failed to build notification",
			"user_id", riskEvent.UserID, "error", err)
		return nil
	}

	if err := h.sender.Send(context.Background(), n); err != nil {
		h.logger.Error("streak at risk notification failed",
			"user_id", riskEvent.UserID, "error", err)
	}

	return nil
}
