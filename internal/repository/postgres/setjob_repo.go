package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/repository"
)

var _ repository.SetJobRepository = (*pgSetJobRepo)(nil)

var signatureLockID = advisoryLockID("setforge:set_job:signature")

const jobColumns = `id, requested_by, set_type, status, new_item_id, new_variant_id,
		       barcode, last_error, created_at, updated_at`

type pgSetJobRepo struct {
	db dbtx
}

func (r *pgSetJobRepo) Create(ctx context.Context, job *domain.SetJob) error {
	query := `
		WITH job AS (
			INSERT INTO set_job (requested_by, set_type, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
			RETURNING id
		), items AS (
			INSERT INTO set_job_items (set_job_id, sort_index, variant_id)
			SELECT job.id, t.ord - 1, t.variant_id
			FROM job, unnest($5::bigint[]) WITH ORDINALITY AS t(variant_id, ord)
		)
		SELECT id FROM job`

	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query,
		job.RequestedBy, job.SetType, domain.StatusOpen, now, job.VariantIDs(),
	).Scan(&job.ID)
	if err != nil {
		return fmt.Errorf("postgres: create set job: %w", err)
	}
	job.Status = domain.StatusOpen
	job.Items = domain.NewItems(job.VariantIDs())
	job.CreatedAt = now
	job.UpdatedAt = now
	return nil
}

func (r *pgSetJobRepo) GetByID(ctx context.Context, id int64) (*domain.SetJob, error) {
	query := `SELECT ` + jobColumns + ` FROM set_job WHERE id = $1`

	job, err := scanJob(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get set job by id: %w", err)
	}
	if err := r.loadItems(ctx, []*domain.SetJob{job}); err != nil {
		return nil, err
	}
	return job, nil
}

func (r *pgSetJobRepo) List(ctx context.Context) ([]*domain.SetJob, error) {
	return r.queryJobs(ctx, `SELECT `+jobColumns+` FROM set_job ORDER BY id DESC`)
}

func (r *pgSetJobRepo) ListAggregatable(ctx context.Context) ([]*domain.SetJob, error) {
	return r.queryJobs(ctx, `
		SELECT `+jobColumns+`
		FROM set_job
		WHERE status IS NULL OR status = $1
		ORDER BY id`, domain.StatusOpen)
}

// Update must run inside Store.InTx: the guarded row update and the item
// replacement are separate statements.
func (r *pgSetJobRepo) Update(ctx context.Context, job *domain.SetJob) error {
	query := `
		UPDATE set_job
		SET requested_by = $2, set_type = $3, status = $4, last_error = NULL, updated_at = $5
		WHERE id = $1 AND (status IS NULL OR status IN ($4, $6))
		RETURNING created_at`

	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query,
		job.ID, job.RequestedBy, job.SetType, domain.StatusOpen, now, domain.StatusError,
	).Scan(&job.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.missingOr(ctx, job.ID, domain.ErrJobNotEditable)
	}
	if err != nil {
		return fmt.Errorf("postgres: update set job: %w", err)
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM set_job_items WHERE set_job_id = $1`, job.ID); err != nil {
		return fmt.Errorf("postgres: delete set job items: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO set_job_items (set_job_id, sort_index, variant_id)
		SELECT $1, t.ord - 1, t.variant_id
		FROM unnest($2::bigint[]) WITH ORDINALITY AS t(variant_id, ord)`,
		job.ID, job.VariantIDs(),
	)
	if err != nil {
		return fmt.Errorf("postgres: insert set job items: %w", err)
	}

	job.Status = domain.StatusOpen
	job.LastError = nil
	job.Items = domain.NewItems(job.VariantIDs())
	job.UpdatedAt = now
	return nil
}

func (r *pgSetJobRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM set_job WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete set job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

func (r *pgSetJobRepo) LockSignatures(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, signatureLockID); err != nil {
		return fmt.Errorf("postgres: acquire signature lock: %w", err)
	}
	return nil
}

func (r *pgSetJobRepo) Signatures(ctx context.Context, count int, excludeID int64) ([]domain.JobSignature, error) {
	query := `
		SELECT j.id, j.new_variant_id, COUNT(*)::int,
		       string_agg(i.variant_id::text, ',' ORDER BY i.variant_id)
		FROM set_job j
		JOIN set_job_items i ON i.set_job_id = j.id
		WHERE j.id <> $2
		GROUP BY j.id, j.new_variant_id
		HAVING COUNT(*) = $1
		ORDER BY j.id`

	rows, err := r.db.Query(ctx, query, count, excludeID)
	if err != nil {
		return nil, fmt.Errorf("postgres: query signatures: %w", err)
	}
	defer rows.Close()

	var out []domain.JobSignature
	for rows.Next() {
		var s domain.JobSignature
		if err := rows.Scan(&s.JobID, &s.NewVariantID, &s.Count, &s.Signature); err != nil {
			return nil, fmt.Errorf("postgres: scan signature: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate signatures: %w", err)
	}
	return out, nil
}

func (r *pgSetJobRepo) MarkAggregated(ctx context.Context, id int64, barcode string) error {
	query := `
		UPDATE set_job
		SET status = $2, barcode = $3, last_error = NULL, updated_at = $4
		WHERE id = $1 AND (status IS NULL OR status = $5)`

	tag, err := r.db.Exec(ctx, query,
		id, domain.StatusWaitingForComponents, barcode, time.Now().UTC(), domain.StatusOpen,
	)
	if err != nil {
		return fmt.Errorf("postgres: mark aggregated: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOr(ctx, id, domain.ErrJobNotEligible)
	}
	return nil
}

func (r *pgSetJobRepo) MarkError(ctx context.Context, id int64, reason string) error {
	query := `
		UPDATE set_job
		SET status = $2, last_error = $3, updated_at = $4
		WHERE id = $1 AND (status IS NULL OR status = $5)`

	tag, err := r.db.Exec(ctx, query,
		id, domain.StatusError, reason, time.Now().UTC(), domain.StatusOpen,
	)
	if err != nil {
		return fmt.Errorf("postgres: mark error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOr(ctx, id, domain.ErrJobNotEligible)
	}
	return nil
}

func (r *pgSetJobRepo) ApplyImport(ctx context.Context, id, itemID, variantID int64) (bool, error) {
	query := `
		UPDATE set_job
		SET new_item_id = $2, new_variant_id = $3, status = $4, updated_at = $5
		WHERE id = $1 AND status = $6`

	tag, err := r.db.Exec(ctx, query,
		id, itemID, variantID, domain.StatusComponentsAdded, time.Now().UTC(), domain.StatusWaitingForComponents,
	)
	if err != nil {
		return false, fmt.Errorf("postgres: apply import: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// missingOr tells a missing job apart from a guard failure.
func (r *pgSetJobRepo) missingOr(ctx context.Context, id int64, guardErr error) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM set_job WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("postgres: check set job: %w", err)
	}
	if !exists {
		return domain.ErrJobNotFound
	}
	return guardErr
}

func (r *pgSetJobRepo) queryJobs(ctx context.Context, query string, args ...any) ([]*domain.SetJob, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list set jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.SetJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan set job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate set jobs: %w", err)
	}
	rows.Close()

	if err := r.loadItems(ctx, jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *pgSetJobRepo) loadItems(ctx context.Context, jobs []*domain.SetJob) error {
	if len(jobs) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.SetJob, len(jobs))
	ids := make([]int64, len(jobs))
	for i, j := range jobs {
		j.Items = []domain.SetJobItem{}
		byID[j.ID] = j
		ids[i] = j.ID
	}

	rows, err := r.db.Query(ctx, `
		SELECT set_job_id, variant_id, sort_index
		FROM set_job_items
		WHERE set_job_id = ANY($1)
		ORDER BY set_job_id, sort_index`, ids)
	if err != nil {
		return fmt.Errorf("postgres: query set job items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var jobID int64
		var it domain.SetJobItem
		if err := rows.Scan(&jobID, &it.VariantID, &it.SortIndex); err != nil {
			return fmt.Errorf("postgres: scan set job item: %w", err)
		}
		if j, ok := byID[jobID]; ok {
			j.Items = append(j.Items, it)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("postgres: iterate set job items: %w", err)
	}
	return nil
}

func scanJob(row pgx.Row) (*domain.SetJob, error) {
	job := &domain.SetJob{}
	var status *string
	err := row.Scan(
		&job.ID, &job.RequestedBy, &job.SetType, &status,
		&job.NewItemID, &job.NewVariantID, &job.Barcode, &job.LastError,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if status != nil {
		job.Status = domain.SetJobStatus(*status)
	}
	return job, nil
}
