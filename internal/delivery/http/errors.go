package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/domain"
)

// writeError maps usecase errors onto HTTP responses.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var dup *domain.DuplicateError
	switch {
	case errors.As(err, &dup):
		c.JSON(http.StatusConflict, gin.H{
			"error":          err.Error(),
			"job_id":         dup.JobID,
			"new_variant_id": dup.NewVariantID,
		})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrJobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Set job not found"})
	case errors.Is(err, domain.ErrJobNotEditable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPublishFailed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
	default:
		logger.Error("Request failed", zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
