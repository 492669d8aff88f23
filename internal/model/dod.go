package model

import "time"

// DoD is the definition of done attached to at most one task. MandatoryChecks
// keeps its authoring order.
type DoD struct {
	ID                 int        `json:"id"`
	TaskID             int        `json:"task_id"`
	DeliverableFormats string     `json:"deliverable_formats"` // e.g. "MD,PDF,PPTX"
	MandatoryChecks    []string   `json:"mandatory_checks"`
	QualityBar         string     `json:"quality_bar"`
	Verification       string     `json:"verification"`
	Deadline           *time.Time `json:"deadline,omitempty"`
	VersionTag         string     `json:"version_tag"`
	CreatedAt          time.Time  `json:"created_at"`
}
