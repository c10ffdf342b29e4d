package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/delivery/http/middleware"
	"github.com/Harsh-BH/SetForge/internal/usecase"
)

// RouterDeps are the collaborators of the intake API.
type RouterDeps struct {
	CreateUC  *usecase.CreateSetJobUsecase
	EditUC    *usecase.EditSetJobUsecase
	DeleteUC  *usecase.DeleteSetJobUsecase
	GetUC     *usecase.GetSetJobUsecase
	TriggerUC *usecase.TriggerRunUsecase
	Logger    *zap.Logger

	// Context bounds background work of the middleware. Nil means Background.
	Context context.Context

	HealthChecks    map[string]HealthCheck
	RateLimitPerMin int
	BodyLimit       int64
	StreamInterval  time.Duration
}

// NewRouter creates and configures the Gin router with all routes and middleware.
func NewRouter(deps *RouterDeps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		healthHandler := NewHealthHandler(deps.HealthChecks, deps.Logger)
		v1.GET("/health", healthHandler.Health)

		refHandler := NewReferenceHandler()
		v1.GET("/reference", refHandler.List)

		wsHandler := NewWebSocketHandler(deps.GetUC, deps.StreamInterval, deps.Logger)
		v1.GET("/set-jobs/:id/stream", wsHandler.Stream)

		limited := v1.Group("")
		if deps.RateLimitPerMin > 0 {
			ctx := deps.Context
			if ctx == nil {
				ctx = context.Background()
			}
			limited.Use(middleware.RateLimiter(ctx, deps.RateLimitPerMin))
		}
		if deps.BodyLimit > 0 {
			limited.Use(middleware.BodySizeLimit(deps.BodyLimit))
		}

		jobHandler := NewSetJobHandler(deps.CreateUC, deps.EditUC, deps.DeleteUC, deps.GetUC, deps.Logger)
		limited.GET("/set-jobs", jobHandler.List)
		limited.POST("/set-jobs", jobHandler.Create)
		limited.GET("/set-jobs/:id", jobHandler.GetByID)
		limited.PUT("/set-jobs/:id", jobHandler.Update)
		limited.DELETE("/set-jobs/:id", jobHandler.Delete)

		runHandler := NewRunHandler(deps.TriggerUC, deps.Logger)
		limited.POST("/runs/:kind", runHandler.Trigger)
	}

	return router
}
