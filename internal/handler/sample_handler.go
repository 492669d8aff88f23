package handler

import (
	"context"
	"net/http"

	"opsboard/internal/cache"
	"opsboard/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SampleStore interface {
	Insert(ctx context.Context, s *model.Sample) (int, error)
	GetByID(ctx context.Context, id int) (*model.Sample, error)
	ListByTask(ctx context.Context, taskID int) ([]model.Sample, error)
	ListAll(ctx context.Context) ([]model.Sample, error)
	Update(ctx context.Context, s *model.Sample) error
	Delete(ctx context.Context, id int) error
}

type SampleHandler struct {
	store  SampleStore
	tasks  BriefTaskStore
	cache  *cache.Cache
	logger *zap.Logger
}

func NewSampleHandler(store SampleStore, tasks BriefTaskStore, c *cache.Cache, logger *zap.Logger) *SampleHandler {
	return &SampleHandler{store: store, tasks: tasks, cache: c, logger: logger}
}

type sampleRequest struct {
	TaskID     int     `json:"task_id" binding:"required"`
	Proportion float64 `json:"proportion" binding:"required"`
	Notes      string  `json:"notes"`
	Approved   bool    `json:"approved"`
}

func (h *SampleHandler) Create(c *gin.Context) {
	var req sampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "task_id and proportion are required")
		return
	}
	if !model.ValidProportion(req.Proportion) {
		respondError(c, http.StatusBadRequest, "proportion must be between 0 and 1")
		return
	}
	ctx := c.Request.Context()
	if _, err := h.tasks.GetByID(ctx, req.TaskID); err != nil {
		respondStoreError(c, err, "Task not found", "")
		return
	}
	s := &model.Sample{
		TaskID:     req.TaskID,
		Proportion: req.Proportion,
		Notes:      req.Notes,
		Approved:   req.Approved,
	}
	if _, err := h.store.Insert(ctx, s); err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	h.cache.Invalidate(ctx, cache.MutationSampleWrite)
	c.JSON(http.StatusCreated, gin.H{"id": s.ID})
}

func (h *SampleHandler) List(c *gin.Context) {
	samples, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, samples)
}

func (h *SampleHandler) ListByTask(c *gin.Context) {
	taskID, ok := pathID(c, "task_id")
	if !ok {
		return
	}
	samples, err := h.store.ListByTask(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, samples)
}

func (h *SampleHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "sample_id")
	if !ok {
		return
	}
	var req sampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidProportion(req.Proportion) {
		respondError(c, http.StatusBadRequest, "proportion must be between 0 and 1")
		return
	}
	ctx := c.Request.Context()
	s, err := h.store.GetByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Sample not found", "")
		return
	}
	s.Proportion = req.Proportion
	s.Notes = req.Notes
	s.Approved = req.Approved
	if err := h.store.Update(ctx, s); err != nil {
		respondStoreError(c, err, "Sample not found", "")
		return
	}
	h.cache.Invalidate(ctx, cache.MutationSampleWrite)
	c.JSON(http.StatusOK, s)
}

func (h *SampleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "sample_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.store.Delete(ctx, id); err != nil {
		respondStoreError(c, err, "Sample not found", "")
		return
	}
	h.cache.Invalidate(ctx, cache.MutationSampleWrite)
	c.JSON(http.StatusOK, gin.H{"message": "Sample deleted"})
}
