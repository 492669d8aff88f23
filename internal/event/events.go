// Package event defines the payloads published to the events exchange.
package event

import "time"

// Routing keys on the events exchange.
const (
	TaskCreatedKey         = "task.created"
	TaskStateChangedKey    = "task.state_changed"
	TaskDeletedKey         = "task.deleted"
	ProjectDeletedKey      = "project.deleted"
	NotificationCreatedKey = "notification.created"
)

// TaskCreatedPayload announces a new task.
type TaskCreatedPayload struct {
	TaskID    int       `json:"task_id"`
	ProjectID int       `json:"project_id"`
	Title     string    `json:"title"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskStateChangedPayload announces a lifecycle transition.
type TaskStateChangedPayload struct {
	TaskID    int       `json:"task_id"`
	ProjectID int       `json:"project_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}

// TaskDeletedPayload announces a task removal.
type TaskDeletedPayload struct {
	TaskID    int       `json:"task_id"`
	ProjectID int       `json:"project_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// ProjectDeletedPayload announces a project removal, tasks included.
type ProjectDeletedPayload struct {
	ProjectID int       `json:"project_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// NotificationCreatedPayload announces a generated notification.
type NotificationCreatedPayload struct {
	NotificationID int       `json:"notification_id"`
	Type           string    `json:"type"`
	TaskID         *int      `json:"task_id,omitempty"`
	ProjectID      *int      `json:"project_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
