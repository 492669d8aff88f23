package model

import "time"

// ReviewType is the lifecycle stage a review covers.
type ReviewType string

const (
	ReviewPremortem ReviewType = "PREMORTEM"
	ReviewMidmortem ReviewType = "MIDMORTEM"
	ReviewRetro     ReviewType = "RETRO"
)

// Valid reports whether t is a known review type.
func (t ReviewType) Valid() bool {
	switch t {
	case ReviewPremortem, ReviewMidmortem, ReviewRetro:
		return true
	}
	return false
}

type Review struct {
	ID          int        `json:"id"`
	TaskID      int        `json:"task_id"`
	ReviewType  ReviewType `json:"review_type"`
	Positives   string     `json:"positives"`
	Negatives   string     `json:"negatives"`
	ChangesNext string     `json:"changes_next"`
	CreatedAt   time.Time  `json:"created_at"`
}
