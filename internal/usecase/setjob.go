package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/repository"
	"github.com/Harsh-BH/SetForge/internal/setcalc"
)

// validateRequest checks an intake payload and trims its set type in place.
func validateRequest(req *domain.SetJobRequest) error {
	if req == nil {
		return fmt.Errorf("%w: empty request", domain.ErrValidation)
	}
	if !req.RequestedBy.IsValid() {
		return fmt.Errorf("%w: unknown requester %d", domain.ErrValidation, req.RequestedBy)
	}
	req.SetType = strings.TrimSpace(req.SetType)
	if req.SetType == "" {
		return fmt.Errorf("%w: set type is required", domain.ErrValidation)
	}
	if len(req.VariantIDs) < setcalc.MinComponents {
		return fmt.Errorf("%w: a set needs at least %d components, got %d",
			domain.ErrValidation, setcalc.MinComponents, len(req.VariantIDs))
	}
	for i, id := range req.VariantIDs {
		if id <= 0 {
			return fmt.Errorf("%w: variant id at position %d must be positive", domain.ErrValidation, i+1)
		}
	}
	return nil
}

// checkDuplicate rejects ids whose multiset already exists on another job.
// It must run inside the transaction that writes the job.
func checkDuplicate(ctx context.Context, jobs repository.SetJobRepository, ids []int64, excludeID int64) error {
	if err := jobs.LockSignatures(ctx); err != nil {
		return fmt.Errorf("lock signatures: %w", err)
	}
	existing, err := jobs.Signatures(ctx, len(setcalc.NormalizeVariantIDs(ids)), excludeID)
	if err != nil {
		return fmt.Errorf("load signatures: %w", err)
	}
	if m := setcalc.FindDuplicate(ids, existing, excludeID); m != nil {
		return &domain.DuplicateError{
			JobID:        m.JobID,
			NewVariantID: m.NewVariantID,
			Signature:    m.Signature,
		}
	}
	return nil
}
