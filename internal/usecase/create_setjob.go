package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/metrics"
	"github.com/Harsh-BH/SetForge/internal/repository"
)

// CreateSetJobUsecase handles intake of new set jobs.
type CreateSetJobUsecase struct {
	store  repository.Store
	logger *zap.Logger
}

// NewCreateSetJobUsecase creates a new CreateSetJobUsecase.
func NewCreateSetJobUsecase(store repository.Store, logger *zap.Logger) *CreateSetJobUsecase {
	return &CreateSetJobUsecase{store: store, logger: logger}
}

// Execute validates the request, rejects duplicates and stores the job as OPEN.
func (uc *CreateSetJobUsecase) Execute(ctx context.Context, req *domain.SetJobRequest) (*domain.SetJob, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	job := &domain.SetJob{
		RequestedBy: req.RequestedBy,
		SetType:     req.SetType,
		Status:      domain.StatusOpen,
		Items:       domain.NewItems(req.VariantIDs),
	}

	err := uc.store.InTx(ctx, func(tx repository.Store) error {
		if err := checkDuplicate(ctx, tx.Jobs(), req.VariantIDs, 0); err != nil {
			return err
		}
		return tx.Jobs().Create(ctx, job)
	})

	var dup *domain.DuplicateError
	if errors.As(err, &dup) {
		metrics.DuplicatesRejected.Inc()
		uc.logger.Info("Rejected duplicate set job",
			zap.Int64("existing_job_id", dup.JobID),
			zap.String("signature", dup.Signature),
		)
		return nil, err
	}
	if err != nil {
		uc.logger.Error("Failed to create set job", zap.Error(err))
		return nil, fmt.Errorf("create set job: %w", err)
	}

	metrics.JobsCreated.Inc()
	uc.logger.Info("Set job created",
		zap.Int64("job_id", job.ID),
		zap.String("set_type", job.SetType),
		zap.Int("components", len(job.Items)),
	)
	return job, nil
}
