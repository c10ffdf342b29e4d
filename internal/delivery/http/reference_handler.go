package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Harsh-BH/SetForge/internal/domain"
)

// ReferenceHandler serves the fixed lookup tables operators pick from.
type ReferenceHandler struct{}

// NewReferenceHandler creates a new ReferenceHandler.
func NewReferenceHandler() *ReferenceHandler {
	return &ReferenceHandler{}
}

// List handles GET /api/v1/reference
func (h *ReferenceHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"requesters": domain.Requesters(),
		"set_types":  domain.SetTypes,
	})
}
