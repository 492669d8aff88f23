// Package handler holds the gin handlers for the REST surface. Each handler
// owns a narrow store interface so tests can swap the repositories out.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"opsboard/internal/repository"

	"github.com/gin-gonic/gin"
)

// EventPublisher is the slice of the MQ publisher handlers need. A nil
// publisher disables event emission.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// respondStoreError maps repository sentinels onto 404, 409 and 400;
// everything else is a 500 with a generic message.
func respondStoreError(c *gin.Context, err error, notFoundMsg, conflictMsg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondError(c, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, repository.ErrConflict):
		respondError(c, http.StatusConflict, conflictMsg)
	case errors.Is(err, repository.ErrInvalidReference):
		respondError(c, http.StatusBadRequest, "referenced resource does not exist")
	default:
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}

func parsePositiveInt(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
