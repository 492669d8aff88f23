package client

import (
	"context"
	"fmt"
	"net/url"

	"opsboard/internal/model"
)

type GenerateResult struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type NotificationStats struct {
	Pending   int `json:"pending"`
	Sent      int `json:"sent"`
	Read      int `json:"read"`
	Dismissed int `json:"dismissed"`
	Total     int `json:"total"`
}

type UpdateNotificationSettingsParams struct {
	DueDateReminderDays         *int  `json:"due_date_reminder_days,omitempty"`
	EnableDueDateReminders      *bool `json:"enable_due_date_reminders,omitempty"`
	EnableMissingBriefAlerts    *bool `json:"enable_missing_brief_alerts,omitempty"`
	EnableMissingDoDAlerts      *bool `json:"enable_missing_dod_alerts,omitempty"`
	StaleTaskDays               *int  `json:"stale_task_days,omitempty"`
	EnableStaleTaskAlerts       *bool `json:"enable_stale_task_alerts,omitempty"`
	EnableReviewReminders       *bool `json:"enable_review_reminders,omitempty"`
	ReviewReminderFrequencyDays *int  `json:"review_reminder_frequency_days,omitempty"`
}

// ListNotifications filters by status when status is non-empty.
func (c *Client) ListNotifications(ctx context.Context, status model.NotificationStatus) ([]model.Notification, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": []string{string(status)}}
	}
	var notifications []model.Notification
	if err := c.get(ctx, "/notifications/", query, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// PendingNotifications returns those still awaiting a user action.
func (c *Client) PendingNotifications(ctx context.Context) ([]model.Notification, error) {
	var notifications []model.Notification
	if err := c.get(ctx, "/notifications/pending", nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// GenerateNotifications runs the notification rules once on the server.
func (c *Client) GenerateNotifications(ctx context.Context) (*GenerateResult, error) {
	var res GenerateResult
	if err := c.post(ctx, "/notifications/generate", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type notificationEnvelope struct {
	Notification model.Notification `json:"notification"`
}

// MarkNotificationRead fails with ErrConflict once the notification is in a
// final state.
func (c *Client) MarkNotificationRead(ctx context.Context, id int) (*model.Notification, error) {
	var env notificationEnvelope
	if err := c.patch(ctx, fmt.Sprintf("/notifications/%d/mark-read", id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Notification, nil
}

func (c *Client) DismissNotification(ctx context.Context, id int) (*model.Notification, error) {
	var env notificationEnvelope
	if err := c.patch(ctx, fmt.Sprintf("/notifications/%d/dismiss", id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Notification, nil
}

func (c *Client) NotificationSettings(ctx context.Context) (*model.NotificationSettings, error) {
	var settings model.NotificationSettings
	if err := c.get(ctx, "/notifications/settings", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (c *Client) UpdateNotificationSettings(ctx context.Context, params UpdateNotificationSettingsParams) (*model.NotificationSettings, error) {
	var env struct {
		Settings model.NotificationSettings `json:"settings"`
	}
	if err := c.patch(ctx, "/notifications/settings", params, &env); err != nil {
		return nil, err
	}
	return &env.Settings, nil
}

func (c *Client) NotificationStats(ctx context.Context) (*NotificationStats, error) {
	var stats NotificationStats
	if err := c.get(ctx, "/notifications/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
