package model

import (
	"errors"
	"time"
)

type NotificationType string

const (
	NotifyDueDateReminder NotificationType = "DUE_DATE_REMINDER"
	NotifyOverdueTask     NotificationType = "OVERDUE_TASK"
	NotifyMissingBrief    NotificationType = "MISSING_BRIEF"
	NotifyMissingDoD      NotificationType = "MISSING_DOD"
	NotifyStaleTask       NotificationType = "STALE_TASK"
	NotifyReviewSchedule  NotificationType = "REVIEW_SCHEDULE"
)

// NotificationStatus is a forward-only state machine:
// PENDING -> SENT -> READ, with DISMISSED reachable from any non-terminal
// state. READ and DISMISSED are terminal.
type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "PENDING"
	NotificationSent      NotificationStatus = "SENT"
	NotificationRead      NotificationStatus = "READ"
	NotificationDismissed NotificationStatus = "DISMISSED"
)

// ErrNotificationFinal is returned when a transition is attempted on a
// notification already in a terminal status.
var ErrNotificationFinal = errors.New("notification status is final")

// Terminal reports whether s accepts no further transitions.
func (s NotificationStatus) Terminal() bool {
	return s == NotificationRead || s == NotificationDismissed
}

type Notification struct {
	ID      int                `json:"id"`
	Type    NotificationType   `json:"type"`
	Title   string             `json:"title"`
	Message string             `json:"message"`
	Status  NotificationStatus `json:"status"`

	TaskID    *int `json:"task_id,omitempty"`
	ProjectID *int `json:"project_id,omitempty"`

	ScheduledFor time.Time  `json:"scheduled_for"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
	DismissedAt  *time.Time `json:"dismissed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarkSent advances PENDING -> SENT.
func (n *Notification) MarkSent(now time.Time) error {
	if n.Status != NotificationPending {
		return ErrNotificationFinal
	}
	n.Status = NotificationSent
	n.SentAt = &now
	n.UpdatedAt = now
	return nil
}

// MarkRead advances to READ from any non-terminal status.
func (n *Notification) MarkRead(now time.Time) error {
	if n.Status.Terminal() {
		return ErrNotificationFinal
	}
	n.Status = NotificationRead
	n.ReadAt = &now
	n.UpdatedAt = now
	return nil
}

// Dismiss advances to DISMISSED from any non-terminal status.
func (n *Notification) Dismiss(now time.Time) error {
	if n.Status.Terminal() {
		return ErrNotificationFinal
	}
	n.Status = NotificationDismissed
	n.DismissedAt = &now
	n.UpdatedAt = now
	return nil
}

// NotificationSettings is the singleton rule-engine configuration row.
type NotificationSettings struct {
	ID int `json:"id"`

	DueDateReminderDays    int  `json:"due_date_reminder_days"`
	EnableDueDateReminders bool `json:"enable_due_date_reminders"`

	EnableMissingBriefAlerts bool `json:"enable_missing_brief_alerts"`
	EnableMissingDoDAlerts   bool `json:"enable_missing_dod_alerts"`

	StaleTaskDays         int  `json:"stale_task_days"`
	EnableStaleTaskAlerts bool `json:"enable_stale_task_alerts"`

	EnableReviewReminders       bool `json:"enable_review_reminders"`
	ReviewReminderFrequencyDays int  `json:"review_reminder_frequency_days"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultNotificationSettings returns the settings used until the user saves
// their own.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		DueDateReminderDays:         1,
		EnableDueDateReminders:      true,
		EnableMissingBriefAlerts:    true,
		EnableMissingDoDAlerts:      true,
		StaleTaskDays:               7,
		EnableStaleTaskAlerts:       true,
		EnableReviewReminders:       true,
		ReviewReminderFrequencyDays: 7,
	}
}
