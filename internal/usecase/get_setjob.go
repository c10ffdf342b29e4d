package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/repository"
)

// GetSetJobUsecase handles read access to set jobs.
type GetSetJobUsecase struct {
	store  repository.Store
	logger *zap.Logger
}

// NewGetSetJobUsecase creates a new GetSetJobUsecase.
func NewGetSetJobUsecase(store repository.Store, logger *zap.Logger) *GetSetJobUsecase {
	return &GetSetJobUsecase{store: store, logger: logger}
}

// Execute retrieves a job with its requester name and set label resolved.
func (uc *GetSetJobUsecase) Execute(ctx context.Context, id int64) (*domain.SetJobView, error) {
	job, err := uc.store.Jobs().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			return nil, err
		}
		uc.logger.Error("Failed to get set job", zap.Error(err), zap.Int64("job_id", id))
		return nil, fmt.Errorf("get set job %d: %w", id, err)
	}
	return domain.NewSetJobView(job), nil
}

// List returns every job, newest first.
func (uc *GetSetJobUsecase) List(ctx context.Context) ([]*domain.SetJobView, error) {
	jobs, err := uc.store.Jobs().List(ctx)
	if err != nil {
		uc.logger.Error("Failed to list set jobs", zap.Error(err))
		return nil, fmt.Errorf("list set jobs: %w", err)
	}
	views := make([]*domain.SetJobView, len(jobs))
	for i, j := range jobs {
		views[i] = domain.NewSetJobView(j)
	}
	return views, nil
}
