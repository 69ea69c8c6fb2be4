package eventhandler

import (
	"context"
	"log/slog"

	"github.com/campuscents/campuscents-gamification/internal/domain/notification"
	"github.com/campuscents/campuscents-gamification/internal/domain/shared"
)

// FeedPublisher публикует событие в социальную ленту приложения.
// Реализация находится в infrastructure слое (HTTP-клиент ленты).
type FeedPublisher interface {
	// PublishBadge публикует пост "пользователь получил награду".
	PublishBadge(ctx context.Context, userID, badgeName string, points int) error

	// PublishMilestone публикует пост "пользователь взял рубеж серии".
	PublishMilestone(ctx context.Context, userID, title string, days int) error
}

// ═══════════════════════════════════════════════════════════════════════════
// ON BADGE EARNED HANDLER
// Награда выдана - уведомляем владельца и публикуем пост в ленту.
// Оба эффекта best-effort: сама награда уже записана конвейером.
// ═══════════════════════════════════════════════════════════════════════════

// OnBadgeEarnedHandler реагирует на выдачу награды.
type OnBadgeEarnedHandler struct {
	sender notification.Sender
	feed   FeedPublisher
	logger *slog.Logger
}

// NewOnBadgeEarnedHandler создаёт обработчик.
func NewOnBadgeEarnedHandler(sender notification.Sender, feed FeedPublisher, logger *slog.Logger) *OnBadgeEarnedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnBadgeEarnedHandler{
		sender: sender,
		feed:   feed,
		logger: logger.With("handler", "on_badge_earned"),
	}
}

// Handle обрабатывает событие выдачи награды.
// Реализует интерфейс shared.EventHandler.
func (h *OnBadgeEarnedHandler) Handle(event shared.Event) error {
	badgeEvent, ok := event.(shared.BadgeEarnedEvent)
	if !ok {
		h.logger.Warn("received non-BadgeEarnedEvent",
			"event_type", event.EventType())
		return nil
	}

	h.logger.Info("processing badge earned event",
		"user_id", badgeEvent.UserID,
		"badge_name", badgeEvent.BadgeName,
		"points", badgeEvent.Points)

	ctx := context.Background()

	n, err := notification.ForBadgeEarned(badgeEvent.UserID, badgeEvent.BadgeName, badgeEvent.Points)
	if err == nil {
		if sendErr := h.sender.Send(ctx, n); sendErr != nil {
			h.logger.Error("badge notification failed",
				"user_id", badgeEvent.UserID, "error", sendErr)
		}
	}

	if h.feed != nil {
		if err := h.feed.PublishBadge(ctx, badgeEvent.UserID, badgeEvent.BadgeName, badgeEvent.Points); err != nil {
			h.logger.Error("badge feed publish failed",
				"user_id", badgeEvent.UserID, "error", err)
		}
	}

	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// ON LEVEL UP HANDLER
// ═══════════════════════════════════════════════════════════════════════════

// OnLevelUpHandler уведомляет о росте уровня.
type OnLevelUpHandler struct {
	sender notification.Sender
	logger *slog.Logger
}

// NewOnLevelUpHandler создаёт обработчик.
func NewOnLevelUpHandler(sender notification.Sender, logger *slog.Logger) *OnLevelUpHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnLevelUpHandler{
		sender: sender,
		logger: logger.With("handler", "on_level_up"),
	}
}

// Handle обрабатывает событие роста уровня.
func (h *OnLevelUpHandler) Handle(event shared.Event) error {
	levelEvent, ok := event.(shared.LevelUpEvent)
	if !ok {
		h.logger.Warn("received non-LevelUpEvent",
			"event_type", event.EventType())
		return nil
	}

	n, err := notification.ForLevelUp(levelEvent.UserID, levelEvent.NewLevel, levelEvent.Title)
	if err != nil {
		return nil
	}

	if err := h.sender.Send(context.Background(), n); err != nil {
		h.logger.Error("level up notification failed",
			"user_id", levelEvent.UserID, "error", err)
	}

	return nil
}
