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

// EditSetJobUsecase replaces the contents of an existing set job. Editing an
// ERROR job is how operators send it back to aggregation.
type EditSetJobUsecase struct {
	store  repository.Store
	logger *zap.Logger
}

// NewEditSetJobUsecase creates a new EditSetJobUsecase.
func NewEditSetJobUsecase(store repository.Store, logger *zap.Logger) *EditSetJobUsecase {
	return &EditSetJobUsecase{store: store, logger: logger}
}

// Execute validates the request, checks duplicates against every other job and
// rewrites the job as OPEN.
func (uc *EditSetJobUsecase) Execute(ctx context.Context, id int64, req *domain.SetJobRequest) (*domain.SetJob, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	job := &domain.SetJob{
		ID:          id,
		RequestedBy: req.RequestedBy,
		SetType:     req.SetType,
		Items:       domain.NewItems(req.VariantIDs),
	}

	err := uc.store.InTx(ctx, func(tx repository.Store) error {
		current, err := tx.Jobs().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !current.Status.Editable() {
			return domain.ErrJobNotEditable
		}
		if err := checkDuplicate(ctx, tx.Jobs(), req.VariantIDs, id); err != nil {
			return err
		}
		if err := tx.Jobs().Update(ctx, job); err != nil {
			return err
		}
		job.NewItemID = current.NewItemID
		job.NewVariantID = current.NewVariantID
		job.Barcode = current.Barcode
		return nil
	})

	var dup *domain.DuplicateError
	switch {
	case err == nil:
	case errors.As(err, &dup):
		metrics.DuplicatesRejected.Inc()
		uc.logger.Info("Rejected duplicate set job edit",
			zap.Int64("job_id", id),
			zap.Int64("existing_job_id", dup.JobID),
		)
		return nil, err
	case errors.Is(err, domain.ErrJobNotFound), errors.Is(err, domain.ErrJobNotEditable):
		return nil, err
	default:
		uc.logger.Error("Failed to edit set job", zap.Error(err), zap.Int64("job_id", id))
		return nil, fmt.Errorf("edit set job %d: %w", id, err)
	}

	uc.logger.Info("Set job edited", zap.Int64("job_id", id), zap.Int("components", len(job.Items)))
	return job, nil
}
