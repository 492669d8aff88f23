package handler

import (
	"net/http"

	"opsboard/internal/service/kpi"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	svc    *kpi.Service
	logger *zap.Logger
}

func NewDashboardHandler(svc *kpi.Service, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, logger: logger}
}

func (h *DashboardHandler) KPI(c *gin.Context) {
	summary, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to compute KPI summary", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *DashboardHandler) Productivity(c *gin.Context) {
	report, err := h.svc.Productivity(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to compute productivity report", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, report)
}
