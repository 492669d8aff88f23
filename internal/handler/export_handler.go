package handler

import (
	"fmt"
	"net/http"
	"time"

	"opsboard/internal/service/export"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ExportHandler struct {
	svc    *export.Service
	logger *zap.Logger
	now    func() time.Time
}

func NewExportHandler(svc *export.Service, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{svc: svc, logger: logger, now: time.Now}
}

// ProjectMarkdown streams the project export as a markdown attachment named
// after the project and the export date.
func (h *ExportHandler) ProjectMarkdown(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}
	content, err := h.svc.ProjectMarkdown(c.Request.Context(), projectID)
	if err != nil {
		respondStoreError(c, err, "Project not found", "")
		return
	}
	name, err := h.svc.ProjectName(c.Request.Context(), projectID)
	if err != nil {
		respondStoreError(c, err, "Project not found", "")
		return
	}
	filename := export.Filename(name, h.now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(content))
}
