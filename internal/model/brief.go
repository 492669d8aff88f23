package model

import "time"

// Brief is the five-sentence brief (5SB) attached to at most one task.
type Brief struct {
	ID              int       `json:"id"`
	TaskID          int       `json:"task_id"`
	Purpose         string    `json:"purpose"`
	SuccessCriteria string    `json:"success_criteria"`
	Constraints     string    `json:"constraints"`
	Priority        string    `json:"priority"`
	Validation      string    `json:"validation"`
	CreatedAt       time.Time `json:"created_at"`
}

// Complete reports whether every 5SB field is filled in.
func (b *Brief) Complete() bool {
	return b.Purpose != "" &&
		b.SuccessCriteria != "" &&
		b.Constraints != "" &&
		b.Priority != "" &&
		b.Validation != ""
}
