package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/app"
	"github.com/Harsh-BH/SetForge/internal/config"
	handler "github.com/Harsh-BH/SetForge/internal/delivery/http"
	"github.com/Harsh-BH/SetForge/internal/publisher"
	"github.com/Harsh-BH/SetForge/internal/repository/postgres"
	"github.com/Harsh-BH/SetForge/internal/usecase"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("Starting SetForge API Server")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	gin.SetMode(cfg.Server.GinMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := app.ConnectPostgres(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer dbPool.Close()
	logger.Info("Connected to PostgreSQL")

	rdb, err := app.ConnectRedis(ctx, cfg.Redis.URL)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()
	logger.Info("Connected to Redis")

	pub, err := publisher.NewRabbitMQPublisher(cfg.RabbitMQ.URL, logger)
	if err != nil {
		logger.Fatal("Failed to initialize RabbitMQ publisher", zap.Error(err))
	}
	defer pub.Close()
	logger.Info("Connected to RabbitMQ")

	store := postgres.NewStore(dbPool)

	router := handler.NewRouter(&handler.RouterDeps{
		CreateUC:  usecase.NewCreateSetJobUsecase(store, logger),
		EditUC:    usecase.NewEditSetJobUsecase(store, logger),
		DeleteUC:  usecase.NewDeleteSetJobUsecase(store, logger),
		GetUC:     usecase.NewGetSetJobUsecase(store, logger),
		TriggerUC: usecase.NewTriggerRunUsecase(pub, logger),
		Logger:    logger,
		Context:   ctx,
		HealthChecks: map[string]handler.HealthCheck{
			"postgres": dbPool.Ping,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		RateLimitPerMin: cfg.Server.RateLimit,
		BodyLimit:       cfg.Server.BodyLimit,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("API server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down API server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	cancel()
	logger.Info("API server stopped")
}
