package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"opsboard/internal/cache"
	"opsboard/internal/event"
	"opsboard/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TaskStore interface {
	Insert(ctx context.Context, t *model.Task) (int, error)
	GetByID(ctx context.Context, id int) (*model.Task, error)
	ListByProject(ctx context.Context, projectID int) ([]model.Task, error)
	ListAll(ctx context.Context) ([]model.Task, error)
	CountByState(ctx context.Context, state model.TaskState) (int, error)
	UpdateState(ctx context.Context, t *model.Task, to model.TaskState) error
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id int) error
}

// TaskProjectStore is the project lookup the task handler needs to reject
// tasks pointed at missing projects.
type TaskProjectStore interface {
	GetByID(ctx context.Context, id int) (*model.Project, error)
}

type TaskHandler struct {
	store     TaskStore
	projects  TaskProjectStore
	cache     *cache.Cache
	publisher EventPublisher
	logger    *zap.Logger
	wipLimit  int
}

func NewTaskHandler(store TaskStore, projects TaskProjectStore, c *cache.Cache, pub EventPublisher, logger *zap.Logger, wipLimit int) *TaskHandler {
	return &TaskHandler{
		store:     store,
		projects:  projects,
		cache:     c,
		publisher: pub,
		logger:    logger,
		wipLimit:  wipLimit,
	}
}

type createTaskRequest struct {
	ProjectID int        `json:"project_id" binding:"required"`
	Title     string     `json:"title" binding:"required"`
	Priority  *int       `json:"priority"`
	DueDate   *time.Time `json:"due_date"`
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "project_id and title are required")
		return
	}
	ctx := c.Request.Context()
	if _, err := h.projects.GetByID(ctx, req.ProjectID); err != nil {
		respondStoreError(c, err, "Project not found", "")
		return
	}
	priority := 3
	if req.Priority != nil {
		if !model.ValidPriority(*req.Priority) {
			respondError(c, http.StatusBadRequest, "priority must be between 1 and 5")
			return
		}
		priority = *req.Priority
	}
	t := &model.Task{
		ProjectID: req.ProjectID,
		Title:     req.Title,
		State:     model.StateBacklog,
		Priority:  priority,
		DueDate:   req.DueDate,
	}
	if _, err := h.store.Insert(ctx, t); err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	h.cache.Invalidate(ctx, cache.MutationTaskWrite)
	h.publish(event.TaskCreatedKey, event.TaskCreatedPayload{
		TaskID:    t.ID,
		ProjectID: t.ProjectID,
		Title:     t.Title,
		Priority:  t.Priority,
		CreatedAt: t.CreatedAt,
	})
	c.JSON(http.StatusCreated, t)
}

func (h *TaskHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		tasks []model.Task
		err   error
	)
	if raw := c.Query("project_id"); raw != "" {
		projectID, convErr := parsePositiveInt(raw)
		if convErr != nil {
			respondError(c, http.StatusBadRequest, "invalid project_id")
			return
		}
		tasks, err = h.store.ListByProject(ctx, projectID)
	} else {
		tasks, err = h.store.ListAll(ctx)
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "Task not found", "")
		return
	}
	c.JSON(http.StatusOK, t)
}

type changeStateRequest struct {
	State model.TaskState `json:"state" binding:"required"`
}

// ChangeState moves a task through its lifecycle. Moving into IN_PROGRESS is
// refused once the WIP limit is reached; the task already being IN_PROGRESS
// does not count against it.
func (h *TaskHandler) ChangeState(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req changeStateRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.State.Valid() {
		respondError(c, http.StatusBadRequest, "invalid state")
		return
	}
	ctx := c.Request.Context()
	t, err := h.store.GetByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Task not found", "")
		return
	}
	if req.State == model.StateInProgress && t.State != model.StateInProgress {
		count, err := h.store.CountByState(ctx, model.StateInProgress)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "internal error")
			return
		}
		if count >= h.wipLimit {
			respondError(c, http.StatusBadRequest, fmt.Sprintf("WIP limit exceeded (limit=%d)", h.wipLimit))
			return
		}
	}
	from := t.State
	if err := h.store.UpdateState(ctx, t, req.State); err != nil {
		respondStoreError(c, err, "Task not found", "")
		return
	}
	h.cache.Invalidate(ctx, cache.MutationTaskStateChange)
	h.publish(event.TaskStateChangedKey, event.TaskStateChangedPayload{
		TaskID:    t.ID,
		ProjectID: t.ProjectID,
		From:      string(from),
		To:        string(t.State),
		ChangedAt: t.UpdatedAt,
	})
	c.JSON(http.StatusOK, t)
}

type updateTaskRequest struct {
	Title    *string    `json:"title"`
	Priority *int       `json:"priority"`
	DueDate  *time.Time `json:"due_date"`
}

func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	ctx := c.Request.Context()
	t, err := h.store.GetByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Task not found", "")
		return
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Priority != nil {
		if !model.ValidPriority(*req.Priority) {
			respondError(c, http.StatusBadRequest, "priority must be between 1 and 5")
			return
		}
		t.Priority = *req.Priority
	}
	if req.DueDate != nil {
		t.DueDate = req.DueDate
	}
	if err := h.store.Update(ctx, t); err != nil {
		respondStoreError(c, err, "Task not found", "")
		return
	}
	h.cache.Invalidate(ctx, cache.MutationTaskWrite)
	c.JSON(http.StatusOK, t)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	t, err := h.store.GetByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Task not found", "")
		return
	}
	if err := h.store.Delete(ctx, id); err != nil {
		respondStoreError(c, err, "Task not found", "")
		return
	}
	h.cache.Invalidate(ctx, cache.MutationTaskWrite)
	h.publish(event.TaskDeletedKey, event.TaskDeletedPayload{
		TaskID:    id,
		ProjectID: t.ProjectID,
		DeletedAt: time.Now().UTC(),
	})
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

func (h *TaskHandler) publish(routingKey string, payload any) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(routingKey, payload); err != nil {
		h.logger.Warn("Failed to publish event",
			zap.Error(err),
			zap.String("routing_key", routingKey),
		)
	}
}
