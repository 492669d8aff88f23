package handler

import (
	"context"
	"net/http"

	"opsboard/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReviewStore interface {
	Insert(ctx context.Context, rv *model.Review) (int, error)
	GetByID(ctx context.Context, id int) (*model.Review, error)
	ListByTask(ctx context.Context, taskID int) ([]model.Review, error)
	ListAll(ctx context.Context) ([]model.Review, error)
	Update(ctx context.Context, rv *model.Review) error
	Delete(ctx context.Context, id int) error
}

type ReviewHandler struct {
	store  ReviewStore
	tasks  BriefTaskStore
	logger *zap.Logger
}

func NewReviewHandler(store ReviewStore, tasks BriefTaskStore, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{store: store, tasks: tasks, logger: logger}
}

type reviewRequest struct {
	TaskID      int              `json:"task_id" binding:"required"`
	ReviewType  model.ReviewType `json:"review_type" binding:"required"`
	Positives   string           `json:"positives"`
	Negatives   string           `json:"negatives"`
	ChangesNext string           `json:"changes_next"`
}

func (h *ReviewHandler) Create(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.ReviewType.Valid() {
		respondError(c, http.StatusBadRequest, "task_id and a valid review_type are required")
		return
	}
	ctx := c.Request.Context()
	if _, err := h.tasks.GetByID(ctx, req.TaskID); err != nil {
		respondStoreError(c, err, "Task not found", "")
		return
	}
	rv := &model.Review{
		TaskID:      req.TaskID,
		ReviewType:  req.ReviewType,
		Positives:   req.Positives,
		Negatives:   req.Negatives,
		ChangesNext: req.ChangesNext,
	}
	if _, err := h.store.Insert(ctx, rv); err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": rv.ID})
}

func (h *ReviewHandler) List(c *gin.Context) {
	reviews, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) ListByTask(c *gin.Context) {
	taskID, ok := pathID(c, "task_id")
	if !ok {
		return
	}
	reviews, err := h.store.ListByTask(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "review_id")
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.ReviewType.Valid() {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	ctx := c.Request.Context()
	rv, err := h.store.GetByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Review not found", "")
		return
	}
	rv.ReviewType = req.ReviewType
	rv.Positives = req.Positives
	rv.Negatives = req.Negatives
	rv.ChangesNext = req.ChangesNext
	if err := h.store.Update(ctx, rv); err != nil {
		respondStoreError(c, err, "Review not found", "")
		return
	}
	c.JSON(http.StatusOK, rv)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "review_id")
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "Review not found", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
