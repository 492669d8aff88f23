package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"opsboard/internal/model"
	"opsboard/internal/service/template"
)

type TemplateList struct {
	Templates []model.Template `json:"templates"`
	Total     int              `json:"total"`
}

type TemplateRecommendations struct {
	Keywords        []string                  `json:"keywords"`
	Recommendations []template.Recommendation `json:"recommendations"`
}

type GeneratedTemplateRef struct {
	ID          int                `json:"id"`
	Name        string             `json:"name"`
	Type        model.TemplateType `json:"type"`
	SuccessRate float64            `json:"success_rate"`
}

type GenerateTemplatesResult struct {
	Message            string                 `json:"message"`
	GeneratedTemplates []GeneratedTemplateRef `json:"generated_templates"`
}

type TemplateCategoryInfo struct {
	Value       model.TemplateCategory `json:"value"`
	Description string                 `json:"description"`
}

type BestPracticeList struct {
	BestPractices []model.BestPractice `json:"best_practices"`
	Total         int                  `json:"total"`
}

func (c *Client) InitSystemTemplates(ctx context.Context) error {
	return c.post(ctx, "/templates/init-system-templates", nil, nil)
}

func (c *Client) ListTemplates(ctx context.Context, category model.TemplateCategory, typ model.TemplateType) (*TemplateList, error) {
	query := url.Values{}
	if category != "" {
		query.Set("category", string(category))
	}
	if typ != "" {
		query.Set("template_type", string(typ))
	}
	var list TemplateList
	if err := c.get(ctx, "/templates/", query, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// RecommendTemplates scores templates against free-text keywords.
func (c *Client) RecommendTemplates(ctx context.Context, keywords []string, limit int) (*TemplateRecommendations, error) {
	query := url.Values{"keywords": []string{strings.Join(keywords, ",")}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var recs TemplateRecommendations
	if err := c.get(ctx, "/templates/recommend", query, &recs); err != nil {
		return nil, err
	}
	return &recs, nil
}

func (c *Client) GetTemplate(ctx context.Context, id int) (*model.Template, error) {
	var t model.Template
	if err := c.get(ctx, fmt.Sprintf("/templates/%d", id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GenerateTemplatesFromProject mines a finished project for reusable brief
// and DoD templates.
func (c *Client) GenerateTemplatesFromProject(ctx context.Context, projectID int) (*GenerateTemplatesResult, error) {
	var res GenerateTemplatesResult
	if err := c.post(ctx, fmt.Sprintf("/templates/generate-from-project/%d", projectID), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type RecordTemplateUsageParams struct {
	UsedFor   string `json:"used_for,omitempty"`
	ProjectID *int   `json:"project_id,omitempty"`
	TaskID    *int   `json:"task_id,omitempty"`
}

func (c *Client) RecordTemplateUsage(ctx context.Context, templateID int, params RecordTemplateUsageParams) error {
	return c.post(ctx, fmt.Sprintf("/templates/%d/use", templateID), params, nil)
}

func (c *Client) TemplateCategories(ctx context.Context) ([]TemplateCategoryInfo, error) {
	var env struct {
		Categories []TemplateCategoryInfo `json:"categories"`
	}
	if err := c.get(ctx, "/templates/categories/stats", nil, &env); err != nil {
		return nil, err
	}
	return env.Categories, nil
}

func (c *Client) BestPractices(ctx context.Context, category model.TemplateCategory) (*BestPracticeList, error) {
	query := url.Values{}
	if category != "" {
		query.Set("category", string(category))
	}
	var list BestPracticeList
	if err := c.get(ctx, "/templates/best-practices/", query, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

type TemplateStatsOverview struct {
	TemplateStats *template.Stats `json:"template_stats"`
	Summary       map[string]any  `json:"summary"`
}

func (c *Client) TemplateStats(ctx context.Context) (*TemplateStatsOverview, error) {
	var stats TemplateStatsOverview
	if err := c.get(ctx, "/templates/stats/overview", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
