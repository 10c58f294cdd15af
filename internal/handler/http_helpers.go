package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spacetravelling/internal/cms"
	"github.com/spacetravelling/internal/logger"
	"github.com/spacetravelling/internal/service"
	"github.com/spacetravelling/internal/trace"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// statusForError maps service and CMS failures onto HTTP statuses.
func statusForError(err error) int {
	var apiErr *cms.APIError
	switch {
	case errors.Is(err, service.ErrPostNotFound), errors.Is(err, cms.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, cms.ErrForeignCursor):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrMalformedDocument):
		return http.StatusInternalServerError
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func isHTMX(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("HX-Request"), "true")
}

func logRequestError(c *gin.Context, msg string, err error) {
	c.Error(err)
	logger.ErrorWithFields(msg, logger.Fields{
		"path":       c.Request.URL.Path,
		"request_id": trace.RequestIDFromContext(c.Request.Context()),
		"error":      err.Error(),
	})
}
