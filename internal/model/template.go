package model

import "time"

type TemplateCategory string

const (
	CategoryWebDevelopment   TemplateCategory = "WEB_DEVELOPMENT"
	CategoryMobileApp        TemplateCategory = "MOBILE_APP"
	CategoryDataAnalysis     TemplateCategory = "DATA_ANALYSIS"
	CategoryResearch         TemplateCategory = "RESEARCH"
	CategoryMarketing        TemplateCategory = "MARKETING"
	CategoryDesign           TemplateCategory = "DESIGN"
	CategoryInfrastructure   TemplateCategory = "INFRASTRUCTURE"
	CategoryAutomation       TemplateCategory = "AUTOMATION"
	CategoryContentCreation  TemplateCategory = "CONTENT_CREATION"
	CategoryBusinessStrategy TemplateCategory = "BUSINESS_STRATEGY"
	CategoryGeneral          TemplateCategory = "GENERAL"
)

// TemplateCategories lists every category in display order.
var TemplateCategories = []TemplateCategory{
	CategoryWebDevelopment,
	CategoryMobileApp,
	CategoryDataAnalysis,
	CategoryResearch,
	CategoryMarketing,
	CategoryDesign,
	CategoryInfrastructure,
	CategoryAutomation,
	CategoryContentCreation,
	CategoryBusinessStrategy,
	CategoryGeneral,
}

type TemplateType string

const (
	TemplateBrief   TemplateType = "BRIEF"
	TemplateDoD     TemplateType = "DOD"
	TemplateProject TemplateType = "PROJECT"
)

// Template is a reusable artifact skeleton. Content is a free-form JSON
// structure whose shape depends on the template type.
type Template struct {
	ID          int              `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Category    TemplateCategory `json:"category"`
	Type        TemplateType     `json:"template_type"`

	Content map[string]any `json:"content"`

	IsSystemTemplate bool `json:"is_system_template"`
	IsAIGenerated    bool `json:"is_ai_generated"`
	SourceProjectID  *int `json:"source_project_id,omitempty"`

	UsageCount  int      `json:"usage_count"`
	SuccessRate *float64 `json:"success_rate,omitempty"` // 0.0 - 1.0

	Tags []string `json:"tags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplateUsage records one application of a template.
type TemplateUsage struct {
	ID         int    `json:"id"`
	TemplateID int    `json:"template_id"`
	ProjectID  *int   `json:"project_id,omitempty"`
	TaskID     *int   `json:"task_id,omitempty"`
	UsedFor    string `json:"used_for"` // "project_creation", "task_creation", "brief_writing", ...

	WasHelpful    *bool  `json:"was_helpful,omitempty"`
	FeedbackNotes string `json:"feedback_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// BestPractice is curated guidance per category.
type BestPractice struct {
	ID          int              `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    TemplateCategory `json:"category"`

	Principles []string `json:"principles"`
	DoList     []string `json:"do_list"`
	DontList   []string `json:"dont_list"`
	Examples   []string `json:"examples"`

	Source          string  `json:"source"` // "internal", "industry", "research"
	ConfidenceScore float64 `json:"confidence_score"`

	Tags []string `json:"tags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
