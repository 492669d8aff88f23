// Package mqhandler holds the notifier's event consumers.
package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"opsboard/internal/event"
	"opsboard/internal/model"
	"opsboard/internal/repository"
	"opsboard/internal/service/notify"
	"opsboard/pkg/metrics"
	"opsboard/pkg/mq"

	"go.uber.org/zap"
)

// NotificationCreatedHandler marks freshly generated notifications as sent
// once they have travelled through the delivery queue.
type NotificationCreatedHandler struct {
	svc    *notify.Service
	logger *zap.Logger
}

func NewNotificationCreatedHandler(svc *notify.Service, logger *zap.Logger) *NotificationCreatedHandler {
	return &NotificationCreatedHandler{svc: svc, logger: logger}
}

func (h *NotificationCreatedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	start := time.Now()
	var p event.NotificationCreatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal NotificationCreatedPayload", zap.Error(err))
		return fmt.Errorf("%w: decode notification.created: %v", mq.ErrPermanent, err)
	}

	h.logger.Info("Handling notification.created event",
		zap.Int("notification_id", p.NotificationID),
		zap.String("type", p.Type),
	)

	if _, err := h.svc.MarkSent(ctx, p.NotificationID); err != nil {
		// Redeliveries land here: the notification was already sent (or
		// read, dismissed, deleted) before this attempt. Ack and move on.
		if errors.Is(err, model.ErrNotificationFinal) || errors.Is(err, repository.ErrNotFound) {
			h.logger.Info("Notification already settled, skipping",
				zap.Int("notification_id", p.NotificationID),
			)
			return nil
		}
		h.logger.Error("Failed to mark notification sent",
			zap.Error(err),
			zap.Int("notification_id", p.NotificationID),
		)
		return err
	}

	metrics.RecordMQConsumeLatency(event.NotificationCreatedKey, "notification.created.q", time.Since(start))
	return nil
}
