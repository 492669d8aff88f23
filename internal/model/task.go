package model

import "time"

// TaskState is the task lifecycle state.
type TaskState string

const (
	StateBacklog    TaskState = "BACKLOG"
	StateInProgress TaskState = "IN_PROGRESS"
	StateDone       TaskState = "DONE"
	StatePaused     TaskState = "PAUSED"
	StateCanceled   TaskState = "CANCELED"
)

// Valid reports whether s is a known task state.
func (s TaskState) Valid() bool {
	switch s {
	case StateBacklog, StateInProgress, StateDone, StatePaused, StateCanceled:
		return true
	}
	return false
}

// Terminal reports whether s is a resting state. Tasks in a terminal state
// stay freely transitionable; callers use this for display only, reopening
// completed work is an allowed policy.
func (s TaskState) Terminal() bool {
	return s == StateDone || s == StateCanceled
}

type Task struct {
	ID         int        `json:"id"`
	ProjectID  int        `json:"project_id"`
	Title      string     `json:"title"`
	State      TaskState  `json:"state"`
	Priority   int        `json:"priority"` // 1 high - 5 low
	DueDate    *time.Time `json:"due_date,omitempty"`
	AssigneeID *int       `json:"assignee_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	// metrics
	ContextSwitchCount int  `json:"context_switch_count"`
	ReworkCount        int  `json:"rework_count"`
	DoDChecked         bool `json:"dod_checked"`
}

// Overdue reports whether the task has a due date in the past and is still
// open.
func (t *Task) Overdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	if t.State == StateDone || t.State == StateCanceled {
		return false
	}
	return t.DueDate.Before(now.Truncate(24 * time.Hour))
}

// ValidPriority reports whether p is inside the 1 (high) to 5 (low) band.
func ValidPriority(p int) bool {
	return p >= 1 && p <= 5
}
