package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/app"
	"github.com/Harsh-BH/SetForge/internal/config"
	"github.com/Harsh-BH/SetForge/internal/domain"
	redisrepo "github.com/Harsh-BH/SetForge/internal/repository/redis"
	"github.com/Harsh-BH/SetForge/internal/usecase"
)

type runKind struct {
	kind  domain.RunKind
	short string
}

var (
	aggregateKind = runKind{kind: domain.RunAggregate, short: "Aggregate open set jobs and export the set file"}
	importKind    = runKind{kind: domain.RunImport, short: "Apply the set import file and export component and detail files"}
)

func newRunCmd(k runKind) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   string(k.kind),
		Short: k.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := runOnce(ctx, k.kind, dryRun, logger)
			if report != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(report); encErr != nil {
					return encErr
				}
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "test", false, "Compute and report without writing jobs, barcodes or files")
	return cmd
}

func runOnce(ctx context.Context, kind domain.RunKind, dryRun bool, logger *zap.Logger) (*domain.RunReport, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	dbPool, err := app.ConnectPostgres(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	defer dbPool.Close()

	rdb, err := app.ConnectRedis(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, err
	}
	defer rdb.Close()

	runners, err := app.NewPostgresRunners(cfg, dbPool, logger)
	if err != nil {
		return nil, err
	}
	dispatcher := usecase.NewRunDispatcher(runners, redisrepo.NewRedisRunLock(rdb), cfg.Worker.RunLockTTL, logger)

	return dispatcher.Execute(ctx, &domain.RunRequest{Kind: kind, DryRun: dryRun})
}
