package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"opsboard/internal/cache"
	"opsboard/internal/event"
	"opsboard/internal/model"
	"opsboard/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProjectStore interface {
	Insert(ctx context.Context, p *model.Project) (int, error)
	GetByID(ctx context.Context, id int) (*model.Project, error)
	ListWithStats(ctx context.Context) ([]model.ProjectWithStats, error)
	Update(ctx context.Context, p *model.Project) error
	Delete(ctx context.Context, id int) error
}

type ProjectHandler struct {
	store     ProjectStore
	cache     *cache.Cache
	publisher EventPublisher
	logger    *zap.Logger
}

func NewProjectHandler(store ProjectStore, c *cache.Cache, pub EventPublisher, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{store: store, cache: c, publisher: pub, logger: logger}
}

type createProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	OwnerID     int    `json:"owner_id"`
	IsPrivate   bool   `json:"is_private"`
}

// defaultOwnerID is the bootstrap user seeded with the schema; projects
// created without an explicit owner belong to it.
const defaultOwnerID = 1

func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "name is required")
		return
	}
	if req.OwnerID == 0 {
		req.OwnerID = defaultOwnerID
	}
	p := &model.Project{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     req.OwnerID,
		IsPrivate:   req.IsPrivate,
	}
	if _, err := h.store.Insert(c.Request.Context(), p); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			respondError(c, http.StatusBadRequest, "owner user does not exist")
			return
		}
		respondStoreError(c, err, "Project not found", "project already exists")
		return
	}
	h.cache.Invalidate(c.Request.Context(), cache.MutationProjectWrite)
	c.JSON(http.StatusCreated, p)
}

// projectListTTL is the backstop for the cached listing; mutations
// invalidate eagerly through the invalidation table.
const projectListTTL = 30 * time.Second

func (h *ProjectHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var cached []model.ProjectWithStats
	if err := h.cache.Get(ctx, cache.KeyProjectList, &cached); err == nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	projects, err := h.store.ListWithStats(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	h.cache.Set(ctx, cache.KeyProjectList, projects, projectListTTL)
	c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "Project not found", "")
		return
	}
	c.JSON(http.StatusOK, p)
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsPrivate   *bool   `json:"is_private"`
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "Project not found", "")
		return
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.IsPrivate != nil {
		p.IsPrivate = *req.IsPrivate
	}
	if err := h.store.Update(c.Request.Context(), p); err != nil {
		respondStoreError(c, err, "Project not found", "")
		return
	}
	h.cache.Invalidate(c.Request.Context(), cache.MutationProjectWrite)
	c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "Project not found", "")
		return
	}
	h.cache.Invalidate(c.Request.Context(), cache.MutationProjectWrite)
	if h.publisher != nil {
		payload := event.ProjectDeletedPayload{ProjectID: id, DeletedAt: time.Now().UTC()}
		if err := h.publisher.Publish(event.ProjectDeletedKey, payload); err != nil {
			h.logger.Warn("Failed to publish project.deleted", zap.Error(err), zap.Int("project_id", id))
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}
