package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"opsboard/internal/event"
	"opsboard/internal/model"
	"opsboard/pkg/metrics"
	"opsboard/pkg/mq"

	"go.uber.org/zap"
)

// NotificationStore is the slice of the notification repository the cleanup
// handlers need.
type NotificationStore interface {
	ListActive(ctx context.Context) ([]model.Notification, error)
	Save(ctx context.Context, n *model.Notification) error
}

// TaskDeletedHandler dismisses the active notifications left behind by a
// deleted task so the inbox does not point at missing rows.
type TaskDeletedHandler struct {
	store  NotificationStore
	logger *zap.Logger
}

func NewTaskDeletedHandler(store NotificationStore, logger *zap.Logger) *TaskDeletedHandler {
	return &TaskDeletedHandler{store: store, logger: logger}
}

func (h *TaskDeletedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	start := time.Now()
	var p event.TaskDeletedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal TaskDeletedPayload", zap.Error(err))
		return fmt.Errorf("%w: decode task.deleted: %v", mq.ErrPermanent, err)
	}

	h.logger.Info("Handling task.deleted event",
		zap.Int("task_id", p.TaskID),
		zap.Int("project_id", p.ProjectID),
	)

	active, err := h.store.ListActive(ctx)
	if err != nil {
		return err
	}
	dismissed := 0
	now := time.Now().UTC()
	for i := range active {
		n := &active[i]
		if n.TaskID == nil || *n.TaskID != p.TaskID {
			continue
		}
		if err := n.Dismiss(now); err != nil {
			if errors.Is(err, model.ErrNotificationFinal) {
				continue
			}
			return err
		}
		if err := h.store.Save(ctx, n); err != nil {
			return err
		}
		dismissed++
	}
	if dismissed > 0 {
		h.logger.Info("Dismissed notifications for deleted task",
			zap.Int("task_id", p.TaskID),
			zap.Int("count", dismissed),
		)
	}

	metrics.RecordMQConsumeLatency(event.TaskDeletedKey, "task.deleted.q", time.Since(start))
	return nil
}
