package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/publisher"
)

// TriggerRunUsecase queues a batch run for the worker.
type TriggerRunUsecase struct {
	publisher publisher.Publisher
	logger    *zap.Logger
}

// NewTriggerRunUsecase creates a new TriggerRunUsecase.
func NewTriggerRunUsecase(pub publisher.Publisher, logger *zap.Logger) *TriggerRunUsecase {
	return &TriggerRunUsecase{publisher: pub, logger: logger}
}

// Execute publishes a run request of kind and returns it with its run id.
func (uc *TriggerRunUsecase) Execute(ctx context.Context, kind domain.RunKind, dryRun bool) (*domain.RunRequest, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown run kind %q", domain.ErrValidation, kind)
	}

	runID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate UUIDv7: %w", err)
	}
	req := &domain.RunRequest{
		RunID:       runID,
		Kind:        kind,
		DryRun:      dryRun,
		RequestedAt: time.Now().UTC(),
	}

	if err := uc.publisher.Publish(ctx, req); err != nil {
		uc.logger.Error("Failed to publish run request", zap.Error(err), zap.String("run_id", runID.String()))
		return nil, domain.ErrPublishFailed
	}

	uc.logger.Info("Run queued", zap.String("run_id", runID.String()), zap.String("kind", string(kind)), zap.Bool("dry_run", dryRun))
	return req, nil
}
