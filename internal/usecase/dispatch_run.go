package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/metrics"
	"github.com/Harsh-BH/SetForge/internal/repository"
)

// DefaultRunLockTTL bounds how long a crashed run keeps others of its kind out.
const DefaultRunLockTTL = 30 * time.Minute

// Runner executes one batch run.
type Runner interface {
	Execute(ctx context.Context, req *domain.RunRequest) (*domain.RunReport, error)
}

// RunDispatcher routes run requests to their runner, one run per kind at a time.
type RunDispatcher struct {
	runners map[domain.RunKind]Runner
	lock    repository.RunLock
	lockTTL time.Duration
	logger  *zap.Logger
}

// NewRunDispatcher creates a new RunDispatcher. lock may be nil when only one
// process ever runs batches.
func NewRunDispatcher(runners map[domain.RunKind]Runner, lock repository.RunLock, lockTTL time.Duration, logger *zap.Logger) *RunDispatcher {
	if lockTTL <= 0 {
		lockTTL = DefaultRunLockTTL
	}
	return &RunDispatcher{
		runners: runners,
		lock:    lock,
		lockTTL: lockTTL,
		logger:  logger,
	}
}

// Execute runs req under the run lock of its kind and records run metrics.
func (d *RunDispatcher) Execute(ctx context.Context, req *domain.RunRequest) (*domain.RunReport, error) {
	runner, ok := d.runners[req.Kind]
	if !req.Kind.IsValid() || !ok {
		return nil, fmt.Errorf("%w: unknown run kind %q", domain.ErrValidation, req.Kind)
	}
	if req.RunID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generate UUIDv7: %w", err)
		}
		req.RunID = id
	}
	if req.RequestedAt.IsZero() {
		req.RequestedAt = time.Now().UTC()
	}

	kind := string(req.Kind)
	owner := req.RunID.String()
	if d.lock != nil {
		acquired, err := d.lock.Acquire(ctx, req.Kind, owner, d.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		if !acquired {
			metrics.RunsTotal.WithLabelValues(kind, "skipped").Inc()
			d.logger.Warn("Run already in progress, skipping", zap.String("kind", kind), zap.String("run_id", owner))
			return nil, domain.ErrRunInProgress
		}
		defer func() {
			if err := d.lock.Release(context.WithoutCancel(ctx), req.Kind, owner); err != nil {
				d.logger.Error("Failed to release run lock", zap.Error(err), zap.String("kind", kind))
			}
		}()
	}

	d.logger.Info("Run started", zap.String("run_id", owner), zap.String("kind", kind), zap.Bool("dry_run", req.DryRun))
	start := time.Now()
	report, err := runner.Execute(ctx, req)
	metrics.RunDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	result := "success"
	switch {
	case err != nil:
		result = "failed"
	case req.DryRun:
		result = "dry_run"
	}
	metrics.RunsTotal.WithLabelValues(kind, result).Inc()

	if err != nil {
		d.logger.Error("Run failed", zap.Error(err), zap.String("run_id", owner), zap.String("kind", kind))
		return report, err
	}
	d.logger.Info("Run finished",
		zap.String("run_id", owner),
		zap.String("kind", kind),
		zap.Int("selected", report.Selected),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
		zap.Strings("exports", report.Exports),
		zap.Strings("diagnostics", report.Diagnostics),
		zap.String("flow_status", report.FlowStatus),
		zap.Duration("duration", time.Since(start)),
	)
	return report, nil
}
