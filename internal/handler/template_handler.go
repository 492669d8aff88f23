package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"opsboard/internal/model"
	"opsboard/internal/service/template"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TemplateStore is the direct lookup access the handler keeps alongside the
// template service.
type TemplateStore interface {
	GetTemplate(ctx context.Context, id int) (*model.Template, error)
	GetProject(ctx context.Context, id int) (*model.Project, error)
}

type TemplateHandler struct {
	svc    *template.Service
	store  TemplateStore
	logger *zap.Logger
}

func NewTemplateHandler(svc *template.Service, store TemplateStore, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{svc: svc, store: store, logger: logger}
}

func (h *TemplateHandler) InitSystemTemplates(c *gin.Context) {
	if err := h.svc.SeedSystemTemplates(c.Request.Context()); err != nil {
		h.logger.Error("Failed to seed system templates", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "System templates initialized"})
}

func (h *TemplateHandler) List(c *gin.Context) {
	category := model.TemplateCategory(c.Query("category"))
	typ := model.TemplateType(c.Query("template_type"))
	templates, err := h.svc.List(c.Request.Context(), category, typ)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"templates": templates,
		"total":     len(templates),
	})
}

func (h *TemplateHandler) Recommend(c *gin.Context) {
	raw := c.Query("keywords")
	keywords := []string{}
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) == 0 {
		respondError(c, http.StatusBadRequest, "at least one keyword is required")
		return
	}
	limit := queryInt(c, "limit", 5)
	recommendations, err := h.svc.Recommend(c.Request.Context(), keywords, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"keywords":        keywords,
		"recommendations": recommendations,
	})
}

func (h *TemplateHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "template_id")
	if !ok {
		return
	}
	t, err := h.store.GetTemplate(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "Template not found", "")
		return
	}
	c.JSON(http.StatusOK, t)
}

// GenerateFromProject mines a finished project for reusable brief and DoD
// templates. Projects below the completion bar get a 400.
func (h *TemplateHandler) GenerateFromProject(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	project, err := h.store.GetProject(ctx, projectID)
	if err != nil {
		respondStoreError(c, err, "Project not found", "")
		return
	}
	generated, err := h.svc.GenerateFromProject(ctx, projectID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if generated == nil || (generated.BriefTemplate == nil && generated.DoDTemplate == nil) {
		respondError(c, http.StatusBadRequest, "project does not qualify for template generation (needs 80% completion and a brief or DoD)")
		return
	}
	refs := []gin.H{}
	if generated.BriefTemplate != nil {
		refs = append(refs, gin.H{
			"id":           generated.BriefTemplate.ID,
			"name":         generated.BriefTemplate.Name,
			"type":         model.TemplateBrief,
			"success_rate": generated.BriefTemplate.SuccessRate,
		})
	}
	if generated.DoDTemplate != nil {
		refs = append(refs, gin.H{
			"id":           generated.DoDTemplate.ID,
			"name":         generated.DoDTemplate.Name,
			"type":         model.TemplateDoD,
			"success_rate": generated.DoDTemplate.SuccessRate,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"message":             fmt.Sprintf("Templates generated from project %q", project.Name),
		"generated_templates": refs,
	})
}

type recordUsageRequest struct {
	UsedFor   string `json:"used_for"`
	ProjectID *int   `json:"project_id"`
	TaskID    *int   `json:"task_id"`
}

func (h *TemplateHandler) RecordUsage(c *gin.Context) {
	id, ok := pathID(c, "template_id")
	if !ok {
		return
	}
	var req recordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	ctx := c.Request.Context()
	if _, err := h.store.GetTemplate(ctx, id); err != nil {
		respondStoreError(c, err, "Template not found", "")
		return
	}
	usedFor := req.UsedFor
	if usedFor == "" {
		usedFor = "unknown"
	}
	usage := &model.TemplateUsage{
		TemplateID: id,
		ProjectID:  req.ProjectID,
		TaskID:     req.TaskID,
		UsedFor:    usedFor,
	}
	if err := h.svc.RecordUsage(ctx, usage); err != nil {
		respondStoreError(c, err, "Template not found", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template usage recorded"})
}

var categoryDescriptions = map[model.TemplateCategory]string{
	model.CategoryWebDevelopment:   "Websites and web application projects",
	model.CategoryMobileApp:        "iOS and Android application development",
	model.CategoryDataAnalysis:     "Data analysis, machine learning and BI",
	model.CategoryResearch:         "Academic, market and user research",
	model.CategoryMarketing:        "Marketing campaigns, branding and promotion",
	model.CategoryDesign:           "UI/UX, graphic and brand design",
	model.CategoryInfrastructure:   "Server, cloud and network infrastructure",
	model.CategoryAutomation:       "Workflow automation, scripting and bots",
	model.CategoryContentCreation:  "Blog, video and educational content",
	model.CategoryBusinessStrategy: "Business planning, strategy and process work",
	model.CategoryGeneral:          "General projects and everything else",
}

func (h *TemplateHandler) Categories(c *gin.Context) {
	categories := []gin.H{}
	for _, cat := range model.TemplateCategories {
		categories = append(categories, gin.H{
			"value":       cat,
			"description": categoryDescriptions[cat],
		})
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *TemplateHandler) BestPractices(c *gin.Context) {
	category := model.TemplateCategory(c.Query("category"))
	practices, err := h.svc.BestPractices(c.Request.Context(), category)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"best_practices": practices,
		"total":          len(practices),
	})
}

func (h *TemplateHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	covered := 0
	for _, count := range stats.CategoryDistribution {
		if count > 0 {
			covered++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"template_stats": stats,
		"summary": gin.H{
			"total_templates":    stats.TotalTemplates,
			"system_provided":    stats.SystemTemplates,
			"ai_generated":       stats.AIGeneratedTemplates,
			"user_created":       stats.UserTemplates,
			"categories_covered": covered,
		},
	})
}
