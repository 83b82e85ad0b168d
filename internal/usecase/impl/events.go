package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "cliphub/internal/delivery/context"
	"cliphub/internal/domain/service"

	"github.com/google/uuid"
)

// publishAccountEvent emits a lifecycle event. Publishing is best-effort and
// never fails the primary operation.
func publishAccountEvent(ctx context.Context, logger *slog.Logger, publisher service.EventPublisher, eventType string, userID uuid.UUID, username string) {
	event := &service.AccountEvent{
		Type:       eventType,
		UserID:     userID,
		Username:   username,
		OccurredAt: time.Now().UTC(),
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
	}

	if err := publisher.PublishAccountEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish account event",
			slog.String("type", eventType),
			slog.Any("userID", userID),
			slog.Any("error", err),
		)
	}
}
