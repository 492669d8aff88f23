package model

import (
	"strings"
	"time"
)

// reviewDelay is the D+7 window: a decision's retrospective becomes due seven
// days after the decision date.
const reviewDelay = 7 * 24 * time.Hour

type DecisionLog struct {
	ID               int       `json:"id"`
	TaskID           int       `json:"task_id"`
	Date             time.Time `json:"date"`
	Problem          string    `json:"problem"`
	Options          string    `json:"options"`
	DecisionReason   string    `json:"decision_reason"`
	AssumptionsRisks string    `json:"assumptions_risks"`
	DPlus7Review     string    `json:"d_plus_7_review,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ReviewDue reports whether the D+7 retrospective window has opened. The
// window is advisory: writing the review early is allowed, this only drives
// reminders and the has_review reporting.
func (d *DecisionLog) ReviewDue(now time.Time) bool {
	return !now.Before(d.Date.Add(reviewDelay))
}

// Reviewed reports whether the retrospective has been written. Once written
// it is never cleared back.
func (d *DecisionLog) Reviewed() bool {
	return strings.TrimSpace(d.DPlus7Review) != ""
}
