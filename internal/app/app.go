// Package app builds the collaborators shared by the server, the worker and
// setctl from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/config"
	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/export"
	"github.com/Harsh-BH/SetForge/internal/importfile"
	"github.com/Harsh-BH/SetForge/internal/notify"
	"github.com/Harsh-BH/SetForge/internal/repository"
	"github.com/Harsh-BH/SetForge/internal/repository/postgres"
	"github.com/Harsh-BH/SetForge/internal/usecase"
	"github.com/Harsh-BH/SetForge/internal/workflow"
	"github.com/Harsh-BH/SetForge/migrations"
)

// ConnectPostgres opens and pings the pool, applying migrations when enabled.
func ConnectPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("app: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("app: ping postgres: %w", err)
	}
	if cfg.AutoMigrate {
		if err := migrations.Up(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return pool, nil
}

// ConnectRedis parses url and pings the server.
func ConnectRedis(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("app: parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("app: ping redis: %w", err)
	}
	return client, nil
}

// NewExportWriter builds the encoder and sink selected by cfg.
func NewExportWriter(cfg *config.Config) (*export.Writer, error) {
	enc, err := export.NewEncoder(export.Format(cfg.Export.Format))
	if err != nil {
		return nil, err
	}

	var sink export.Sink
	switch cfg.Export.Sink {
	case "minio":
		sink, err = export.NewMinioSink(
			export.WithEndpoint(cfg.MinIO.Endpoint),
			export.WithBucket(cfg.MinIO.Bucket),
			export.WithPrefix(cfg.MinIO.Prefix),
			export.WithAccessKey(cfg.MinIO.AccessKey),
			export.WithSecretKey(cfg.MinIO.SecretKey),
			export.WithSSL(cfg.MinIO.UseSSL),
		)
		if err != nil {
			return nil, err
		}
	default:
		sink = export.NewFileSink(cfg.Export.Dir)
	}
	return export.NewWriter(enc, sink), nil
}

// NewNotifier mails through SMTP when a relay is configured and logs otherwise.
func NewNotifier(cfg config.SMTPConfig, logger *zap.Logger) (notify.Notifier, error) {
	if cfg.Host == "" {
		logger.Warn("SMTP not configured, notifications are only logged")
		return notify.NewLogNotifier(logger), nil
	}
	return notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		To:       cfg.To,
	})
}

// NewWorkflowClient returns nil when no workflow service is configured.
func NewWorkflowClient(cfg config.WorkflowConfig) workflow.Client {
	if cfg.BaseURL == "" {
		return nil
	}
	return workflow.NewHTTPClient(cfg.BaseURL, cfg.Token, cfg.Timeout)
}

// NewRunners builds the aggregation and import runners over store.
func NewRunners(cfg *config.Config, store repository.Store, components repository.ComponentSource, logger *zap.Logger) (map[domain.RunKind]usecase.Runner, error) {
	writer, err := NewExportWriter(cfg)
	if err != nil {
		return nil, err
	}
	notifier, err := NewNotifier(cfg.SMTP, logger)
	if err != nil {
		return nil, err
	}
	flows := NewWorkflowClient(cfg.Workflow)
	source := importfile.NewFileSource(cfg.Import.ArchiveDir, cfg.Import.Paths...)

	return map[domain.RunKind]usecase.Runner{
		domain.RunAggregate: usecase.NewAggregateRunUsecase(
			store, components, writer, notifier, flows, cfg.Workflow.AggregateFlowID, cfg.AggregateOptions(), logger,
		),
		domain.RunImport: usecase.NewImportRunUsecase(
			store, components, source, writer, notifier, flows, cfg.Workflow.ImportFlowID, cfg.DetailOptions(), logger,
		),
	}, nil
}

// NewPostgresRunners wires NewRunners to the postgres store and component source.
func NewPostgresRunners(cfg *config.Config, pool *pgxpool.Pool, logger *zap.Logger) (map[domain.RunKind]usecase.Runner, error) {
	return NewRunners(cfg, postgres.NewStore(pool), postgres.NewComponentSource(pool), logger)
}
