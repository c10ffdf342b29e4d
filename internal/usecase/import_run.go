package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/export"
	"github.com/Harsh-BH/SetForge/internal/importfile"
	"github.com/Harsh-BH/SetForge/internal/metrics"
	"github.com/Harsh-BH/SetForge/internal/notify"
	"github.com/Harsh-BH/SetForge/internal/repository"
	"github.com/Harsh-BH/SetForge/internal/setcalc"
	"github.com/Harsh-BH/SetForge/internal/workflow"
)

// ImportRunUsecase applies the identifiers of freshly created sets to their
// jobs, then exports the set components and the further set data.
type ImportRunUsecase struct {
	runDeps
	store      repository.Store
	components repository.ComponentSource
	source     importfile.Source
	opts       setcalc.DetailOptions
}

// NewImportRunUsecase creates a new ImportRunUsecase.
func NewImportRunUsecase(
	store repository.Store,
	components repository.ComponentSource,
	source importfile.Source,
	writer *export.Writer,
	notifier notify.Notifier,
	flows workflow.Client,
	flowID string,
	opts setcalc.DetailOptions,
	logger *zap.Logger,
) *ImportRunUsecase {
	return &ImportRunUsecase{
		runDeps: runDeps{
			writer:   writer,
			notifier: notifier,
			flows:    flows,
			flowID:   flowID,
			logger:   logger,
		},
		store:      store,
		components: components,
		source:     source,
		opts:       opts,
	}
}

// Execute runs one import batch.
func (uc *ImportRunUsecase) Execute(ctx context.Context, req *domain.RunRequest) (*domain.RunReport, error) {
	report := domain.NewRunReport(req)

	f, err := uc.source.Open(ctx)
	if errors.Is(err, domain.ErrImportFileMissing) {
		report.Diagnostics = append(report.Diagnostics, "nothing to import: no import file found")
		uc.logger.Info("No import file found, nothing to import")
		return finish(report), nil
	}
	if err != nil {
		err = fmt.Errorf("open import file: %w", err)
		uc.logger.Error("Failed to read import file", zap.Error(err))
		if !req.DryRun {
			uc.notifyCritical(ctx, report, err)
		}
		return finish(report), err
	}
	report.Selected = len(f.Rows)

	// A loaded file is processed to completion. Every applied job must reach
	// the component and detail exports.
	ctx = context.WithoutCancel(ctx)

	var updated []*domain.SetJob
	seen := make(map[int64]bool)
	for _, row := range f.Rows {
		job, err := uc.applyRow(ctx, row, req.DryRun, seen)
		switch {
		case err != nil:
			id, _ := strconv.ParseInt(row.JobID, 10, 64)
			report.AddFailure(id, err)
			metrics.ImportRows.WithLabelValues("failed").Inc()
			uc.logger.Error("Failed to apply import row", zap.Error(err), zap.Int("line", row.Line))
		case job == nil:
			report.Skipped++
			metrics.ImportRows.WithLabelValues("skipped").Inc()
		default:
			report.Succeeded++
			metrics.ImportRows.WithLabelValues("applied").Inc()
			updated = append(updated, job)
		}
	}

	if req.DryRun {
		return finish(report), nil
	}

	if archived, err := uc.source.Archive(ctx, f); err != nil {
		uc.logger.Error("Failed to archive import file", zap.Error(err), zap.String("path", f.Path))
		report.Diagnostics = append(report.Diagnostics, fmt.Sprintf("import file not archived: %v", err))
	} else {
		uc.logger.Info("Import file archived", zap.String("path", archived))
	}

	if len(updated) == 0 {
		report.Diagnostics = append(report.Diagnostics, "no set job updated, nothing exported")
		return finish(report), nil
	}

	if err := uc.exportUpdated(ctx, report, updated); err != nil {
		uc.logger.Error("Failed to export imported sets", zap.Error(err))
		uc.notifyCritical(ctx, report, err)
		return finish(report), err
	}

	uc.triggerFlow(ctx, report)
	return finish(report), nil
}

// applyRow returns the updated job, or nil when the row is skipped. Rows with
// a blank or non-numeric field and rows whose job is not waiting for its
// components are skipped.
func (uc *ImportRunUsecase) applyRow(ctx context.Context, row importfile.Row, dryRun bool, seen map[int64]bool) (*domain.SetJob, error) {
	if row.Blank() {
		uc.logger.Debug("Skipping blank import row", zap.Int("line", row.Line))
		return nil, nil
	}
	itemID, err1 := strconv.ParseInt(row.ItemID, 10, 64)
	variantID, err2 := strconv.ParseInt(row.MainVariantID, 10, 64)
	jobID, err3 := strconv.ParseInt(row.JobID, 10, 64)
	if err := errors.Join(err1, err2, err3); err != nil {
		uc.logger.Warn("Skipping non-numeric import row", zap.Int("line", row.Line), zap.Error(err))
		return nil, nil
	}

	if dryRun {
		job, err := uc.store.Jobs().GetByID(ctx, jobID)
		if errors.Is(err, domain.ErrJobNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		// A real run finds the job COMPONENTS_ADDED on its second row.
		if !job.Status.Importable() || seen[jobID] {
			return nil, nil
		}
		seen[jobID] = true
		return job, nil
	}

	var job *domain.SetJob
	err := uc.store.InTx(ctx, func(tx repository.Store) error {
		ok, err := tx.Jobs().ApplyImport(ctx, jobID, itemID, variantID)
		if err != nil || !ok {
			return err
		}
		job, err = tx.Jobs().GetByID(ctx, jobID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if job == nil {
		uc.logger.Info("Import row does not match a waiting set job, skipped",
			zap.Int("line", row.Line),
			zap.Int64("job_id", jobID),
		)
		return nil, nil
	}
	uc.logger.Info("Set job components added",
		zap.Int64("job_id", jobID),
		zap.Int64("item_id", itemID),
		zap.Int64("variant_id", variantID),
	)
	return job, nil
}

func (uc *ImportRunUsecase) exportUpdated(ctx context.Context, report *domain.RunReport, jobs []*domain.SetJob) error {
	var all []int64
	for _, j := range jobs {
		all = append(all, j.VariantIDs()...)
	}
	found, err := uc.components.Lookup(ctx, setcalc.DistinctIDs(all))
	if err != nil {
		return fmt.Errorf("lookup components: %w", err)
	}
	records := make(map[int64]domain.ComponentRecord, len(found))
	for _, r := range found {
		records[r.VariantID] = r
	}

	components := &export.Table{Name: ComponentExportName, Header: domain.ComponentRowHeader}
	details := &export.Table{Name: DetailExportName, Header: domain.SetDetailHeader}
	for _, job := range jobs {
		for _, it := range job.Items {
			row := domain.ComponentRow{
				JobID:              job.ID,
				SetType:            job.SetType,
				ComponentVariantID: it.VariantID,
				SortIndex:          it.SortIndex,
				RequestedBy:        job.RequestedBy,
				RequestedAt:        job.CreatedAt,
			}
			if job.NewItemID != nil {
				row.SetItemID = *job.NewItemID
			}
			if job.NewVariantID != nil {
				row.SetVariantID = *job.NewVariantID
			}
			components.Rows = append(components.Rows, row.Row())
		}

		detail, price := setcalc.BuildDetail(job, records, uc.opts)
		if len(price.MissingPrice) > 0 {
			report.Diagnostics = append(report.Diagnostics, fmt.Sprintf("%s: job %d: no usable gross price for variants %s",
				domain.ErrorKind(domain.ErrMissingPrice), job.ID, domain.JoinIDs(price.MissingPrice, ", ")))
		}
		details.Rows = append(details.Rows, detail.Row())
	}

	if err := uc.writeTable(ctx, report, components); err != nil {
		return err
	}
	return uc.writeTable(ctx, report, details)
}
