package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/usecase"
)

// RunHandler queues batch runs for the worker.
type RunHandler struct {
	triggerUC *usecase.TriggerRunUsecase
	logger    *zap.Logger
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(triggerUC *usecase.TriggerRunUsecase, logger *zap.Logger) *RunHandler {
	return &RunHandler{triggerUC: triggerUC, logger: logger}
}

// Trigger handles POST /api/v1/runs/:kind?dry_run=true
func (h *RunHandler) Trigger(c *gin.Context) {
	dryRun := false
	if v := c.Query("dry_run"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dry_run flag"})
			return
		}
		dryRun = b
	}

	req, err := h.triggerUC.Execute(c.Request.Context(), domain.RunKind(c.Param("kind")), dryRun)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, req)
}
