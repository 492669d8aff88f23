package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"opsboard/internal/event"
	"opsboard/internal/model"
	"opsboard/internal/service/notify"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NotificationStore is the direct repository access the handler keeps for
// listing and settings; the rule engine itself lives in the notify service.
type NotificationStore interface {
	List(ctx context.Context, status model.NotificationStatus) ([]model.Notification, error)
	ListActive(ctx context.Context) ([]model.Notification, error)
	GetSettings(ctx context.Context) (*model.NotificationSettings, error)
	SaveSettings(ctx context.Context, s *model.NotificationSettings) error
}

type NotificationHandler struct {
	svc       *notify.Service
	store     NotificationStore
	publisher EventPublisher
	logger    *zap.Logger
}

func NewNotificationHandler(svc *notify.Service, store NotificationStore, pub EventPublisher, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, store: store, publisher: pub, logger: logger}
}

func (h *NotificationHandler) List(c *gin.Context) {
	var status model.NotificationStatus
	if raw := c.Query("status"); raw != "" {
		status = model.NotificationStatus(raw)
		switch status {
		case model.NotificationPending, model.NotificationSent, model.NotificationRead, model.NotificationDismissed:
		default:
			respondError(c, http.StatusBadRequest, "invalid status")
			return
		}
	}
	notifications, err := h.store.List(c.Request.Context(), status)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// Pending lists notifications still awaiting action, PENDING and SENT alike.
func (h *NotificationHandler) Pending(c *gin.Context) {
	notifications, err := h.store.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// Generate runs every notification rule once and reports how many new
// notifications came out of it.
func (h *NotificationHandler) Generate(c *gin.Context) {
	created, err := h.svc.GenerateAll(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to generate notifications", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if h.publisher != nil {
		for _, n := range created {
			payload := event.NotificationCreatedPayload{
				NotificationID: n.ID,
				Type:           string(n.Type),
				TaskID:         n.TaskID,
				ProjectID:      n.ProjectID,
				CreatedAt:      n.CreatedAt,
			}
			if err := h.publisher.Publish(event.NotificationCreatedKey, payload); err != nil {
				h.logger.Warn("Failed to publish notification.created",
					zap.Error(err),
					zap.Int("notification_id", n.ID),
				)
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%d new notifications generated", len(created)),
		"count":   len(created),
	})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c, "notification_id")
	if !ok {
		return
	}
	n, err := h.svc.MarkRead(c.Request.Context(), id)
	if err != nil {
		h.respondTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read", "notification": n})
}

func (h *NotificationHandler) Dismiss(c *gin.Context) {
	id, ok := pathID(c, "notification_id")
	if !ok {
		return
	}
	n, err := h.svc.Dismiss(c.Request.Context(), id)
	if err != nil {
		h.respondTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification dismissed", "notification": n})
}

func (h *NotificationHandler) respondTransitionError(c *gin.Context, err error) {
	if errors.Is(err, model.ErrNotificationFinal) {
		respondError(c, http.StatusConflict, "notification status is final")
		return
	}
	respondStoreError(c, err, "Notification not found", "")
}

func (h *NotificationHandler) GetSettings(c *gin.Context) {
	settings, err := h.store.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, settings)
}

type updateSettingsRequest struct {
	DueDateReminderDays         *int  `json:"due_date_reminder_days"`
	EnableDueDateReminders      *bool `json:"enable_due_date_reminders"`
	EnableMissingBriefAlerts    *bool `json:"enable_missing_brief_alerts"`
	EnableMissingDoDAlerts      *bool `json:"enable_missing_dod_alerts"`
	StaleTaskDays               *int  `json:"stale_task_days"`
	EnableStaleTaskAlerts       *bool `json:"enable_stale_task_alerts"`
	EnableReviewReminders       *bool `json:"enable_review_reminders"`
	ReviewReminderFrequencyDays *int  `json:"review_reminder_frequency_days"`
}

func (h *NotificationHandler) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	ctx := c.Request.Context()
	settings, err := h.store.GetSettings(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if req.DueDateReminderDays != nil {
		settings.DueDateReminderDays = *req.DueDateReminderDays
	}
	if req.EnableDueDateReminders != nil {
		settings.EnableDueDateReminders = *req.EnableDueDateReminders
	}
	if req.EnableMissingBriefAlerts != nil {
		settings.EnableMissingBriefAlerts = *req.EnableMissingBriefAlerts
	}
	if req.EnableMissingDoDAlerts != nil {
		settings.EnableMissingDoDAlerts = *req.EnableMissingDoDAlerts
	}
	if req.StaleTaskDays != nil {
		settings.StaleTaskDays = *req.StaleTaskDays
	}
	if req.EnableStaleTaskAlerts != nil {
		settings.EnableStaleTaskAlerts = *req.EnableStaleTaskAlerts
	}
	if req.EnableReviewReminders != nil {
		settings.EnableReviewReminders = *req.EnableReviewReminders
	}
	if req.ReviewReminderFrequencyDays != nil {
		settings.ReviewReminderFrequencyDays = *req.ReviewReminderFrequencyDays
	}
	if err := h.store.SaveSettings(ctx, settings); err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification settings updated", "settings": settings})
}

func (h *NotificationHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	counts := map[string]int{}
	total := 0
	for _, status := range []model.NotificationStatus{
		model.NotificationPending,
		model.NotificationSent,
		model.NotificationRead,
		model.NotificationDismissed,
	} {
		notifications, err := h.store.List(ctx, status)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "internal error")
			return
		}
		counts[string(status)] = len(notifications)
		total += len(notifications)
	}
	c.JSON(http.StatusOK, gin.H{
		"pending":   counts[string(model.NotificationPending)],
		"sent":      counts[string(model.NotificationSent)],
		"read":      counts[string(model.NotificationRead)],
		"dismissed": counts[string(model.NotificationDismissed)],
		"total":     total,
	})
}
