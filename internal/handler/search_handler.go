package handler

import (
	"net/http"
	"strconv"

	"opsboard/internal/service/search"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SearchHandler struct {
	svc    *search.Service
	logger *zap.Logger
}

func NewSearchHandler(svc *search.Service, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{svc: svc, logger: logger}
}

func (h *SearchHandler) Unified(c *gin.Context) {
	q := c.Query("q")
	if len([]rune(q)) < search.MinQueryLength {
		respondError(c, http.StatusBadRequest, "query must be at least 2 characters")
		return
	}
	types := c.QueryArray("types")
	limit := queryInt(c, "limit", 50)
	resp, err := h.svc.Unified(c.Request.Context(), q, types, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SearchHandler) SimilarProjects(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}
	limit := queryInt(c, "limit", 5)
	similar, err := h.svc.SimilarProjects(c.Request.Context(), projectID, limit)
	if err != nil {
		respondStoreError(c, err, "Project not found", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"project_id":       projectID,
		"similar_projects": similar,
	})
}

func (h *SearchHandler) DecisionPatterns(c *gin.Context) {
	q := c.Query("q")
	if len([]rune(q)) < search.MinPatternQueryLength {
		respondError(c, http.StatusBadRequest, "query must be at least 3 characters")
		return
	}
	limit := queryInt(c, "limit", 10)
	patterns, err := h.svc.DecisionPatterns(c.Request.Context(), q, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":             q,
		"decision_patterns": patterns,
	})
}

func (h *SearchHandler) Suggestions(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}
	suggestions, err := h.svc.ProjectSuggestions(c.Request.Context(), projectID)
	if err != nil {
		respondStoreError(c, err, "Project not found", "")
		return
	}
	c.JSON(http.StatusOK, suggestions)
}

func (h *SearchHandler) Stats(c *gin.Context) {
	summary, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"content_summary": summary,
		"search_capabilities": gin.H{
			"unified_search":      "full-text search across every content type",
			"similar_projects":    "similarity ranking against past projects",
			"decision_patterns":   "pattern analysis over the decision history",
			"project_suggestions": "per-project recommendations",
		},
		"supported_content_types": search.AllContentTypes,
	})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
