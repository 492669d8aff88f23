package handler

import (
	"context"
	"net/http"

	"opsboard/internal/cache"
	"opsboard/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BriefStore interface {
	Insert(ctx context.Context, b *model.Brief) (int, error)
	GetByID(ctx context.Context, id int) (*model.Brief, error)
	GetByTask(ctx context.Context, taskID int) (*model.Brief, error)
	Update(ctx context.Context, b *model.Brief) error
	Delete(ctx context.Context, id int) error
	ListAll(ctx context.Context) ([]model.Brief, error)
}

// BriefTaskStore resolves the task a brief attaches to.
type BriefTaskStore interface {
	GetByID(ctx context.Context, id int) (*model.Task, error)
}

type BriefHandler struct {
	store  BriefStore
	tasks  BriefTaskStore
	cache  *cache.Cache
	logger *zap.Logger
}

func NewBriefHandler(store BriefStore, tasks BriefTaskStore, c *cache.Cache, logger *zap.Logger) *BriefHandler {
	return &BriefHandler{store: store, tasks: tasks, cache: c, logger: logger}
}

type briefRequest struct {
	TaskID          int    `json:"task_id" binding:"required"`
	Purpose         string `json:"purpose" binding:"required"`
	SuccessCriteria string `json:"success_criteria" binding:"required"`
	Constraints     string `json:"constraints" binding:"required"`
	Priority        string `json:"priority" binding:"required"`
	Validation      string `json:"validation" binding:"required"`
}

// Create attaches a five-sentence brief to a task. A task carries at most one
// brief; a second create is refused with 409.
func (h *BriefHandler) Create(c *gin.Context) {
	var req briefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "all five brief fields are required")
		return
	}
	ctx := c.Request.Context()
	if _, err := h.tasks.GetByID(ctx, req.TaskID); err != nil {
		respondStoreError(c, err, "Task not found", "")
		return
	}
	b := &model.Brief{
		TaskID:          req.TaskID,
		Purpose:         req.Purpose,
		SuccessCriteria: req.SuccessCriteria,
		Constraints:     req.Constraints,
		Priority:        req.Priority,
		Validation:      req.Validation,
	}
	if _, err := h.store.Insert(ctx, b); err != nil {
		respondStoreError(c, err, "Task not found", "Brief already exists for this task (1:1)")
		return
	}
	h.cache.Invalidate(ctx, cache.MutationBriefWrite)
	c.JSON(http.StatusCreated, b)
}

func (h *BriefHandler) List(c *gin.Context) {
	briefs, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, briefs)
}

func (h *BriefHandler) GetByTask(c *gin.Context) {
	taskID, ok := pathID(c, "task_id")
	if !ok {
		return
	}
	b, err := h.store.GetByTask(c.Request.Context(), taskID)
	if err != nil {
		respondStoreError(c, err, "Brief not found", "")
		return
	}
	c.JSON(http.StatusOK, b)
}

type updateBriefRequest struct {
	Purpose         *string `json:"purpose"`
	SuccessCriteria *string `json:"success_criteria"`
	Constraints     *string `json:"constraints"`
	Priority        *string `json:"priority"`
	Validation      *string `json:"validation"`
}

func (h *BriefHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "brief_id")
	if !ok {
		return
	}
	var req updateBriefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	ctx := c.Request.Context()
	b, err := h.store.GetByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Brief not found", "")
		return
	}
	if req.Purpose != nil {
		b.Purpose = *req.Purpose
	}
	if req.SuccessCriteria != nil {
		b.SuccessCriteria = *req.SuccessCriteria
	}
	if req.Constraints != nil {
		b.Constraints = *req.Constraints
	}
	if req.Priority != nil {
		b.Priority = *req.Priority
	}
	if req.Validation != nil {
		b.Validation = *req.Validation
	}
	if err := h.store.Update(ctx, b); err != nil {
		respondStoreError(c, err, "Brief not found", "")
		return
	}
	h.cache.Invalidate(ctx, cache.MutationBriefWrite)
	c.JSON(http.StatusOK, b)
}

func (h *BriefHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "brief_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.store.Delete(ctx, id); err != nil {
		respondStoreError(c, err, "Brief not found", "")
		return
	}
	h.cache.Invalidate(ctx, cache.MutationBriefWrite)
	c.JSON(http.StatusOK, gin.H{"message": "Brief deleted"})
}
