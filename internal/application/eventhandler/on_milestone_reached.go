package eventhandler

import (
	"context"
	"log/slog"

	"github.com/campuscents/campuscents-gamification/internal/domain/notification"
	"github.com/campuscents/campuscents-gamification/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON MILESTONE REACHED HANDLER
// Рубеж серии взят - уведомляем и публикуем в ленту. Рубежи от 30 дней
// получают high priority доставку.
// ═══════════════════════════════════════════════════════════════════════════

// OnMilestoneReachedHandler реагирует на пересечение рубежа серии.
type OnMilestoneReachedHandler struct {
	sender notification.Sender
	feed   FeedPublisher
	logger *slog.Logger
}

// NewOnMilestoneReachedHandler создаёт обработчик.
func NewOnMilestoneReachedHandler(sender notification.Sender, feed FeedPublisher, logger *slog.Logger) *OnMilestoneReachedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnMilestoneReachedHandler{
		sender: sender,
		feed:   feed,
		logger: logger.With("handler", "on_milestone_reached"),
	}
}

// Handle обрабатывает событие рубежа.
// Реализует интерфейс shared.EventHandler.
func (h *OnMilestoneReachedHandler) Handle(event shared.Event) error {
	msEvent, ok := event.(shared.MilestoneReachedEvent)
	if !ok {
		h.logger.Warn("received non-MilestoneReachedEvent",
			"event_type", event.EventType())
		return nil
	}

	h.logger.Info("processing milestone reached event",
		"user_id", msEvent.UserID,
		"threshold", msEvent.Threshold,
		"title", msEvent.Title,
		"priority", msEvent.Priority)

	ctx := context.Background()

	n, err := notification.ForMilestoneReached(msEvent.UserID, msEvent.Title,
		msEvent.Threshold, msEvent.Points, msEvent.Priority == "high")
	if err == nil {
		if sendErr := h.sender.Send(ctx, n); sendErr != nil {
			h.logger.Error("milestone notification failed",
				"user_id", msEvent.UserID, "error", sendErr)
		}
	}

	if h.feed != nil {
		if err := h.feed.PublishMilestone(ctx, msEvent.UserID, msEvent.Title, msEvent.Threshold); err != nil {
			h.logger.Error("milestone feed publish failed",
				"user_id", msEvent.UserID, "error", err)
		}
	}

	return nil
}
