package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/usecase"
)

// SetJobHandler handles HTTP requests for set jobs.
type SetJobHandler struct {
	createUC *usecase.CreateSetJobUsecase
	editUC   *usecase.EditSetJobUsecase
	deleteUC *usecase.DeleteSetJobUsecase
	getUC    *usecase.GetSetJobUsecase
	logger   *zap.Logger
}

// NewSetJobHandler creates a new SetJobHandler.
func NewSetJobHandler(
	createUC *usecase.CreateSetJobUsecase,
	editUC *usecase.EditSetJobUsecase,
	deleteUC *usecase.DeleteSetJobUsecase,
	getUC *usecase.GetSetJobUsecase,
	logger *zap.Logger,
) *SetJobHandler {
	return &SetJobHandler{
		createUC: createUC,
		editUC:   editUC,
		deleteUC: deleteUC,
		getUC:    getUC,
		logger:   logger,
	}
}

// List handles GET /api/v1/set-jobs
func (h *SetJobHandler) List(c *gin.Context) {
	jobs, err := h.getUC.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"set_jobs": jobs})
}

// Create handles POST /api/v1/set-jobs
func (h *SetJobHandler) Create(c *gin.Context) {
	var req domain.SetJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	job, err := h.createUC.Execute(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, domain.NewSetJobView(job))
}

// GetByID handles GET /api/v1/set-jobs/:id
func (h *SetJobHandler) GetByID(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}
	job, err := h.getUC.Execute(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Update handles PUT /api/v1/set-jobs/:id
func (h *SetJobHandler) Update(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}
	var req domain.SetJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	job, err := h.editUC.Execute(c.Request.Context(), id, &req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, domain.NewSetJobView(job))
}

// Delete handles DELETE /api/v1/set-jobs/:id
func (h *SetJobHandler) Delete(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}
	if err := h.deleteUC.Execute(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseJobID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid set job ID"})
		return 0, false
	}
	return id, true
}
