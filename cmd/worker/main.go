package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/app"
	"github.com/Harsh-BH/SetForge/internal/config"
	amqpdelivery "github.com/Harsh-BH/SetForge/internal/delivery/amqp"
	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/pool"
	redisrepo "github.com/Harsh-BH/SetForge/internal/repository/redis"
	"github.com/Harsh-BH/SetForge/internal/usecase"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("Starting SetForge Run Worker")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := app.ConnectPostgres(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer dbPool.Close()
	logger.Info("Connected to PostgreSQL")

	redisClient, err := app.ConnectRedis(ctx, cfg.Redis.URL)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis")

	runners, err := app.NewPostgresRunners(cfg, dbPool, logger)
	if err != nil {
		logger.Fatal("Failed to initialize runners", zap.Error(err))
	}
	dispatcher := usecase.NewRunDispatcher(runners, redisrepo.NewRedisRunLock(redisClient), cfg.Worker.RunLockTTL, logger)

	runsChan := make(chan *domain.RunMessage, cfg.Worker.PoolSize*2)

	consumer, err := amqpdelivery.NewConsumer(cfg.RabbitMQ.URL, runsChan, logger)
	if err != nil {
		logger.Fatal("Failed to initialize AMQP consumer", zap.Error(err))
	}
	defer consumer.Close()
	logger.Info("Connected to RabbitMQ")

	workerPool := pool.NewWorkerPool(cfg.Worker.PoolSize, runsChan, dispatcher, logger)
	workerPool.Start(ctx)

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error("AMQP consumer error", zap.Error(err))
			cancel()
		}
	}()

	go app.Schedule(ctx, runsChan, domain.RunAggregate, cfg.Schedule.AggregateInterval, logger)
	go app.Schedule(ctx, runsChan, domain.RunImport, cfg.Schedule.ImportInterval, logger)

	go func() {
		metricsAddr := fmt.Sprintf(":%d", cfg.Worker.MetricsPort)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info("Metrics server listening", zap.String("addr", metricsAddr))
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			logger.Error("Metrics server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info("Shutting down worker...")
	cancel()

	// Wait for the in-flight run to finish
	workerPool.Stop()

	logger.Info("Worker stopped")
}
