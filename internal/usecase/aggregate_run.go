package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/export"
	"github.com/Harsh-BH/SetForge/internal/metrics"
	"github.com/Harsh-BH/SetForge/internal/notify"
	"github.com/Harsh-BH/SetForge/internal/repository"
	"github.com/Harsh-BH/SetForge/internal/setcalc"
	"github.com/Harsh-BH/SetForge/internal/workflow"
)

// AggregateRunUsecase merges every open set job into a set record, claims a
// barcode for it and hands the records to the set creation workflow.
type AggregateRunUsecase struct {
	runDeps
	store      repository.Store
	components repository.ComponentSource
	opts       setcalc.AggregateOptions
}

// NewAggregateRunUsecase creates a new AggregateRunUsecase.
func NewAggregateRunUsecase(
	store repository.Store,
	components repository.ComponentSource,
	writer *export.Writer,
	notifier notify.Notifier,
	flows workflow.Client,
	flowID string,
	opts setcalc.AggregateOptions,
	logger *zap.Logger,
) *AggregateRunUsecase {
	return &AggregateRunUsecase{
		runDeps: runDeps{
			writer:   writer,
			notifier: notifier,
			flows:    flows,
			flowID:   flowID,
			logger:   logger,
		},
		store:      store,
		components: components,
		opts:       opts,
	}
}

// Execute runs one aggregation batch. Per-job failures land in the report and
// move the job to ERROR; the returned error is reserved for failures of the
// whole run.
func (uc *AggregateRunUsecase) Execute(ctx context.Context, req *domain.RunRequest) (*domain.RunReport, error) {
	report := domain.NewRunReport(req)

	jobs, err := uc.store.Jobs().ListAggregatable(ctx)
	if err != nil {
		err = fmt.Errorf("list aggregatable jobs: %w", err)
		uc.logger.Error("Failed to select set jobs", zap.Error(err))
		if !req.DryRun {
			uc.notifyCritical(ctx, report, err)
		}
		return finish(report), err
	}
	report.Selected = len(jobs)

	// A selected batch runs to completion. Every job committed to
	// WAITING_FOR_COMPONENTS must reach the set export.
	ctx = context.WithoutCancel(ctx)

	// A dry run hands out the barcodes a real run would claim, in the same order.
	var peeked []string
	if req.DryRun && len(jobs) > 0 {
		if peeked, err = uc.store.Barcodes().Peek(ctx, len(jobs)); err != nil {
			return finish(report), fmt.Errorf("peek barcodes: %w", err)
		}
	}

	records := make([]*domain.SetRecord, 0, len(jobs))
	for _, job := range jobs {
		rec, err := uc.aggregateJob(ctx, job, req.DryRun, &peeked)
		if err != nil {
			uc.handleFailure(ctx, report, job, err, req.DryRun)
			continue
		}
		records = append(records, rec)
		report.Succeeded++
		metrics.JobOutcomes.WithLabelValues("aggregated").Inc()
		uc.logger.Info("Set job aggregated",
			zap.Int64("job_id", job.ID),
			zap.String("barcode", rec.Barcode),
			zap.Bool("dry_run", req.DryRun),
		)
	}

	if req.DryRun {
		report.Records = records
		return finish(report), nil
	}

	if n, err := uc.store.Barcodes().CountUnused(ctx); err == nil {
		metrics.BarcodesUnused.Set(float64(n))
	} else {
		uc.logger.Warn("Failed to count unused barcodes", zap.Error(err))
	}

	if len(records) == 0 {
		report.Diagnostics = append(report.Diagnostics, "no set aggregated, nothing exported")
		return finish(report), nil
	}

	table := &export.Table{Name: SetExportName, Header: domain.SetRecordHeader}
	for _, rec := range records {
		table.Rows = append(table.Rows, rec.Row())
	}
	if err := uc.writeTable(ctx, report, table); err != nil {
		// The jobs already wait for components; without the file nobody creates them.
		uc.logger.Error("Failed to write set export", zap.Error(err), zap.Int("records", len(records)))
		uc.notifyCritical(ctx, report, err)
		return finish(report), err
	}

	uc.triggerFlow(ctx, report)
	return finish(report), nil
}

// aggregateJob computes the set record of job and, unless dryRun, claims its
// barcode and moves it to WAITING_FOR_COMPONENTS in one transaction.
func (uc *AggregateRunUsecase) aggregateJob(ctx context.Context, job *domain.SetJob, dryRun bool, peeked *[]string) (rec *domain.SetRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error("Panic while aggregating set job", zap.Any("panic", r), zap.Int64("job_id", job.ID))
			rec, err = nil, fmt.Errorf("%w: panic: %v", domain.ErrUnexpected, r)
		}
	}()

	if len(job.Items) < setcalc.MinComponents {
		return nil, fmt.Errorf("%w: job %d has %d", domain.ErrInsufficientComponents, job.ID, len(job.Items))
	}

	ids := job.VariantIDs()
	found, err := uc.components.Lookup(ctx, setcalc.DistinctIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("%w: lookup components: %v", domain.ErrUnexpected, err)
	}
	components, err := setcalc.ExpandComponents(ids, found)
	if err != nil {
		return nil, err
	}
	rec, err = setcalc.Aggregate(job, components, uc.opts)
	if err != nil {
		return nil, err
	}

	if dryRun {
		if len(*peeked) == 0 {
			return nil, domain.ErrMissingBarcode
		}
		rec.Barcode = (*peeked)[0]
		*peeked = (*peeked)[1:]
		return rec, nil
	}

	err = uc.store.InTx(ctx, func(tx repository.Store) error {
		code, err := tx.Barcodes().ClaimNext(ctx)
		if err != nil {
			return err
		}
		if err := tx.Jobs().MarkAggregated(ctx, job.ID, code); err != nil {
			return err
		}
		rec.Barcode = code
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (uc *AggregateRunUsecase) handleFailure(ctx context.Context, report *domain.RunReport, job *domain.SetJob, err error, dryRun bool) {
	// The job left OPEN or vanished while the run was underway.
	if errors.Is(err, domain.ErrJobNotEligible) || errors.Is(err, domain.ErrJobNotFound) {
		report.Skipped++
		metrics.JobOutcomes.WithLabelValues("skipped").Inc()
		uc.logger.Warn("Set job changed during aggregation, skipped", zap.Int64("job_id", job.ID), zap.Error(err))
		return
	}

	kind := domain.ErrorKind(err)
	report.AddFailure(job.ID, err)
	metrics.JobOutcomes.WithLabelValues(kind).Inc()
	uc.logger.Warn("Set job aggregation failed",
		zap.Int64("job_id", job.ID),
		zap.String("kind", kind),
		zap.Error(err),
		zap.Bool("dry_run", dryRun),
	)
	if dryRun {
		return
	}

	if mErr := uc.store.Jobs().MarkError(ctx, job.ID, kind+": "+err.Error()); mErr != nil {
		uc.logger.Error("Failed to mark set job as errored", zap.Error(mErr), zap.Int64("job_id", job.ID))
	}
	uc.notifyJobError(ctx, job, err)
}
