package handler

import (
	"context"
	"net/http"
	"time"

	"opsboard/internal/cache"
	"opsboard/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DoDStore interface {
	Insert(ctx context.Context, d *model.DoD) (int, error)
	GetByID(ctx context.Context, id int) (*model.DoD, error)
	GetByTask(ctx context.Context, taskID int) (*model.DoD, error)
	Update(ctx context.Context, d *model.DoD) error
	Delete(ctx context.Context, id int) error
	ListAll(ctx context.Context) ([]model.DoD, error)
}

type DoDHandler struct {
	store  DoDStore
	tasks  BriefTaskStore
	cache  *cache.Cache
	logger *zap.Logger
}

func NewDoDHandler(store DoDStore, tasks BriefTaskStore, c *cache.Cache, logger *zap.Logger) *DoDHandler {
	return &DoDHandler{store: store, tasks: tasks, cache: c, logger: logger}
}

type dodRequest struct {
	TaskID             int        `json:"task_id" binding:"required"`
	DeliverableFormats string     `json:"deliverable_formats" binding:"required"`
	MandatoryChecks    []string   `json:"mandatory_checks" binding:"required"`
	QualityBar         string     `json:"quality_bar" binding:"required"`
	Verification       string     `json:"verification" binding:"required"`
	Deadline           *time.Time `json:"deadline"`
	VersionTag         string     `json:"version_tag"`
}

// Create attaches a definition of done to a task and marks the task
// dod_checked. A task carries at most one DoD.
func (h *DoDHandler) Create(c *gin.Context) {
	var req dodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "task_id, deliverable_formats, mandatory_checks, quality_bar and verification are required")
		return
	}
	ctx := c.Request.Context()
	if _, err := h.tasks.GetByID(ctx, req.TaskID); err != nil {
		respondStoreError(c, err, "Task not found", "")
		return
	}
	d := &model.DoD{
		TaskID:             req.TaskID,
		DeliverableFormats: req.DeliverableFormats,
		MandatoryChecks:    req.MandatoryChecks,
		QualityBar:         req.QualityBar,
		Verification:       req.Verification,
		Deadline:           req.Deadline,
		VersionTag:         req.VersionTag,
	}
	if _, err := h.store.Insert(ctx, d); err != nil {
		respondStoreError(c, err, "Task not found", "DoD already exists for this task (1:1)")
		return
	}
	h.cache.Invalidate(ctx, cache.MutationDoDWrite)
	c.JSON(http.StatusCreated, gin.H{"id": d.ID})
}

func (h *DoDHandler) List(c *gin.Context) {
	dods, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, dods)
}

func (h *DoDHandler) GetByTask(c *gin.Context) {
	taskID, ok := pathID(c, "task_id")
	if !ok {
		return
	}
	d, err := h.store.GetByTask(c.Request.Context(), taskID)
	if err != nil {
		respondStoreError(c, err, "DoD not found", "")
		return
	}
	c.JSON(http.StatusOK, d)
}

// Update replaces the DoD content wholesale; the original surface treats the
// PATCH body as a full rewrite.
func (h *DoDHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "dod_id")
	if !ok {
		return
	}
	var req dodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	ctx := c.Request.Context()
	d, err := h.store.GetByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "DoD not found", "")
		return
	}
	d.DeliverableFormats = req.DeliverableFormats
	d.MandatoryChecks = req.MandatoryChecks
	d.QualityBar = req.QualityBar
	d.Verification = req.Verification
	d.Deadline = req.Deadline
	d.VersionTag = req.VersionTag
	if err := h.store.Update(ctx, d); err != nil {
		respondStoreError(c, err, "DoD not found", "")
		return
	}
	h.cache.Invalidate(ctx, cache.MutationDoDWrite)
	c.JSON(http.StatusOK, d)
}

func (h *DoDHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "dod_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.store.Delete(ctx, id); err != nil {
		respondStoreError(c, err, "DoD not found", "")
		return
	}
	h.cache.Invalidate(ctx, cache.MutationDoDWrite)
	c.JSON(http.StatusOK, gin.H{"message": "DoD deleted"})
}
