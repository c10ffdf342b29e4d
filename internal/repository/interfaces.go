package repository

import (
	"context"
	"time"

	"github.com/Harsh-BH/SetForge/internal/domain"
)

// SetJobRepository defines persistence operations for set jobs and their items.
// Every status-changing method is guarded by the expected source state and
// returns domain.ErrJobNotEligible when the job is no longer in it.
type SetJobRepository interface {
	// Create inserts the job with status OPEN and its items, filling ID and timestamps.
	Create(ctx context.Context, job *domain.SetJob) error

	// GetByID retrieves a job with its ordered items.
	GetByID(ctx context.Context, id int64) (*domain.SetJob, error)

	// List returns all jobs, newest first.
	List(ctx context.Context) ([]*domain.SetJob, error)

	// ListAggregatable returns the OPEN and NULL-status jobs in id order.
	ListAggregatable(ctx context.Context) ([]*domain.SetJob, error)

	// Update replaces requester, type and items of an OPEN, NULL or ERROR job,
	// resets it to OPEN and clears its last error.
	Update(ctx context.Context, job *domain.SetJob) error

	// Delete removes the job and its items regardless of status.
	Delete(ctx context.Context, id int64) error

	// LockSignatures serializes duplicate checks for the rest of the transaction.
	LockSignatures(ctx context.Context) error

	// Signatures returns the component signatures of all jobs with exactly count
	// items, except excludeID (0 excludes nothing).
	Signatures(ctx context.Context, count int, excludeID int64) ([]domain.JobSignature, error)

	// MarkAggregated moves an OPEN or NULL job to WAITING_FOR_COMPONENTS with its barcode.
	MarkAggregated(ctx context.Context, id int64, barcode string) error

	// MarkError moves an OPEN or NULL job to ERROR and stores the reason.
	MarkError(ctx context.Context, id int64, reason string) error

	// ApplyImport stores the published identifiers and moves a WAITING_FOR_COMPONENTS
	// job to COMPONENTS_ADDED. It returns false when the job is missing or in another state.
	ApplyImport(ctx context.Context, id, itemID, variantID int64) (bool, error)
}

// BarcodePool hands out pre-provisioned barcodes, each at most once.
type BarcodePool interface {
	// ClaimNext marks the lowest-id unused barcode as used and returns it.
	// Returns domain.ErrMissingBarcode when the pool is empty.
	ClaimNext(ctx context.Context) (string, error)

	// Peek returns up to limit unused barcodes in claim order without consuming them.
	Peek(ctx context.Context, limit int) ([]string, error)

	// CountUnused returns the number of barcodes still available.
	CountUnused(ctx context.Context) (int64, error)
}

// Store groups the transactional repositories.
type Store interface {
	Jobs() SetJobRepository
	Barcodes() BarcodePool

	// InTx runs fn inside one transaction. The transaction commits when fn
	// returns nil and rolls back otherwise. Nested calls join the outer transaction.
	InTx(ctx context.Context, fn func(tx Store) error) error
}

// ComponentSource is the read-only catalogue of independently sold variants.
type ComponentSource interface {
	// Lookup returns one record per distinct known id. Unknown ids are absent.
	Lookup(ctx context.Context, variantIDs []int64) ([]domain.ComponentRecord, error)
}

// RunLock keeps two runs of the same kind from executing at once.
type RunLock interface {
	// Acquire takes the lock for kind on behalf of owner. It returns false when
	// another owner holds it. The lock expires after ttl.
	Acquire(ctx context.Context, kind domain.RunKind, owner string, ttl time.Duration) (bool, error)

	// Release frees the lock for kind if owner still holds it.
	Release(ctx context.Context, kind domain.RunKind, owner string) error
}
