package model

import "time"

// Sample is a partial-deliverable validation record (the 10% rule).
type Sample struct {
	ID         int       `json:"id"`
	TaskID     int       `json:"task_id"`
	Proportion float64   `json:"proportion"` // 0.0 - 1.0
	Notes      string    `json:"notes,omitempty"`
	Approved   bool      `json:"approved"`
	CreatedAt  time.Time `json:"created_at"`
}

// ValidProportion reports whether p is inside the 0..1 band.
func ValidProportion(p float64) bool {
	return p >= 0.0 && p <= 1.0
}
