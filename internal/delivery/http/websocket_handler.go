package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/usecase"
)

const defaultStreamInterval = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the operator UI is served from another origin
	},
}

// WebSocketHandler streams set job state until the job reaches a terminal status.
type WebSocketHandler struct {
	getUC    *usecase.GetSetJobUsecase
	interval time.Duration
	logger   *zap.Logger
}

// NewWebSocketHandler creates a new WebSocketHandler polling every interval.
func NewWebSocketHandler(getUC *usecase.GetSetJobUsecase, interval time.Duration, logger *zap.Logger) *WebSocketHandler {
	if interval <= 0 {
		interval = defaultStreamInterval
	}
	return &WebSocketHandler{
		getUC:    getUC,
		interval: interval,
		logger:   logger,
	}
}

// Stream handles GET /api/v1/set-jobs/:id/stream (WebSocket upgrade)
func (h *WebSocketHandler) Stream(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Debug("WebSocket connection opened", zap.Int64("job_id", id))

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		job, err := h.getUC.Execute(ctx, id)
		if err != nil {
			_ = conn.WriteJSON(gin.H{"error": "Set job not found"})
			return
		}

		if err := conn.WriteJSON(job); err != nil {
			h.logger.Debug("WebSocket write failed (client disconnected)", zap.Error(err))
			return
		}

		if job.Status.IsTerminal() {
			h.logger.Debug("Set job reached terminal state, closing WebSocket", zap.Int64("job_id", id))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
