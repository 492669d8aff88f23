package handler

import (
	"context"
	"net/http"
	"time"

	"opsboard/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DecisionStore interface {
	Insert(ctx context.Context, d *model.DecisionLog) (int, error)
	GetByID(ctx context.Context, id int) (*model.DecisionLog, error)
	ListByTask(ctx context.Context, taskID int) ([]model.DecisionLog, error)
	ListAll(ctx context.Context) ([]model.DecisionLog, error)
	SetDPlus7Review(ctx context.Context, id int, review string) error
	Delete(ctx context.Context, id int) error
}

type DecisionHandler struct {
	store  DecisionStore
	tasks  BriefTaskStore
	logger *zap.Logger
}

func NewDecisionHandler(store DecisionStore, tasks BriefTaskStore, logger *zap.Logger) *DecisionHandler {
	return &DecisionHandler{store: store, tasks: tasks, logger: logger}
}

type createDecisionRequest struct {
	TaskID           int       `json:"task_id" binding:"required"`
	Date             time.Time `json:"date" binding:"required"`
	Problem          string    `json:"problem" binding:"required"`
	Options          string    `json:"options" binding:"required"`
	DecisionReason   string    `json:"decision_reason" binding:"required"`
	AssumptionsRisks string    `json:"assumptions_risks" binding:"required"`
}

func (h *DecisionHandler) Create(c *gin.Context) {
	var req createDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "task_id, date, problem, options, decision_reason and assumptions_risks are required")
		return
	}
	ctx := c.Request.Context()
	if _, err := h.tasks.GetByID(ctx, req.TaskID); err != nil {
		respondStoreError(c, err, "Task not found", "")
		return
	}
	d := &model.DecisionLog{
		TaskID:           req.TaskID,
		Date:             req.Date,
		Problem:          req.Problem,
		Options:          req.Options,
		DecisionReason:   req.DecisionReason,
		AssumptionsRisks: req.AssumptionsRisks,
	}
	if _, err := h.store.Insert(ctx, d); err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": d.ID})
}

func (h *DecisionHandler) List(c *gin.Context) {
	decisions, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, decisions)
}

func (h *DecisionHandler) ListByTask(c *gin.Context) {
	taskID, ok := pathID(c, "task_id")
	if !ok {
		return
	}
	decisions, err := h.store.ListByTask(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, decisions)
}

type dplus7Request struct {
	DPlus7Review string `json:"d_plus_7_review" binding:"required"`
}

// UpdateDPlus7 writes the D+7 retrospective. Writing it before the window
// opens is allowed; the window only drives reminders.
func (h *DecisionHandler) UpdateDPlus7(c *gin.Context) {
	id, ok := pathID(c, "decision_id")
	if !ok {
		return
	}
	var req dplus7Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "d_plus_7_review is required")
		return
	}
	ctx := c.Request.Context()
	if err := h.store.SetDPlus7Review(ctx, id, req.DPlus7Review); err != nil {
		respondStoreError(c, err, "Decision not found", "")
		return
	}
	d, err := h.store.GetByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Decision not found", "")
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DecisionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "decision_id")
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "Decision not found", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Decision deleted"})
}
