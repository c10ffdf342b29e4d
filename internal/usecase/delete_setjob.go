package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/repository"
)

// DeleteSetJobUsecase removes a set job and its items in any state.
type DeleteSetJobUsecase struct {
	store  repository.Store
	logger *zap.Logger
}

// NewDeleteSetJobUsecase creates a new DeleteSetJobUsecase.
func NewDeleteSetJobUsecase(store repository.Store, logger *zap.Logger) *DeleteSetJobUsecase {
	return &DeleteSetJobUsecase{store: store, logger: logger}
}

func (uc *DeleteSetJobUsecase) Execute(ctx context.Context, id int64) error {
	if err := uc.store.Jobs().Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			return err
		}
		uc.logger.Error("Failed to delete set job", zap.Error(err), zap.Int64("job_id", id))
		return fmt.Errorf("delete set job %d: %w", id, err)
	}
	uc.logger.Info("Set job deleted", zap.Int64("job_id", id))
	return nil
}
