package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/export"
	"github.com/Harsh-BH/SetForge/internal/notify"
	"github.com/Harsh-BH/SetForge/internal/workflow"
)

// Export table names. The writer appends a timestamp and the format extension.
const (
	SetExportName       = "sets"
	ComponentExportName = "komponenten"
	DetailExportName    = "set_weitere_daten"
)

// Default workflow flows triggered after a run wrote its exports.
const (
	DefaultAggregateFlowID = "BundleErstellen"
	DefaultImportFlowID    = "Sets-erstellen-Komponenten"
)

// runDeps are the collaborators shared by both batch runs.
type runDeps struct {
	writer   *export.Writer
	notifier notify.Notifier
	flows    workflow.Client
	flowID   string
	logger   *zap.Logger
}

func (d *runDeps) writeTable(ctx context.Context, report *domain.RunReport, t *export.Table) error {
	loc, err := d.writer.Write(ctx, t)
	if err != nil {
		return fmt.Errorf("write %s export: %w", t.Name, err)
	}
	report.Exports = append(report.Exports, loc)
	d.logger.Info("Export written", zap.String("table", t.Name), zap.Int("rows", len(t.Rows)), zap.String("location", loc))
	return nil
}

// triggerFlow starts the follow-up workflow. A failure is reported but does
// not fail the run; the exports are already in place.
func (d *runDeps) triggerFlow(ctx context.Context, report *domain.RunReport) {
	if d.flows == nil || d.flowID == "" {
		report.Diagnostics = append(report.Diagnostics, "workflow not configured, flow not triggered")
		return
	}
	runID, status, err := workflow.Run(ctx, d.flows, d.flowID)
	report.FlowRunID = runID
	if err != nil {
		d.logger.Error("Failed to trigger workflow", zap.Error(err), zap.String("flow_id", d.flowID))
		report.Diagnostics = append(report.Diagnostics, fmt.Sprintf("workflow %s: %v", d.flowID, err))
		return
	}
	report.FlowStatus = status.Describe()
	d.logger.Info("Workflow triggered",
		zap.String("flow_id", d.flowID),
		zap.String("flow_run_id", runID),
		zap.String("status", string(status)),
	)
}

func (d *runDeps) notifyJobError(ctx context.Context, job *domain.SetJob, err error) {
	subject := fmt.Sprintf("SetForge: set job %d failed (%s)", job.ID, domain.ErrorKind(err))
	body := fmt.Sprintf("Set job %d (%s, requested by %s) could not be aggregated.\n\n%s\n\nVariant ids: %s\n",
		job.ID, domain.SetLabel(job.SetType), job.RequestedBy.Name(), err, domain.JoinIDs(job.VariantIDs(), ", "))
	if nErr := d.notifier.Notify(ctx, subject, body); nErr != nil {
		d.logger.Error("Failed to send job error notification", zap.Error(nErr), zap.Int64("job_id", job.ID))
	}
}

func (d *runDeps) notifyCritical(ctx context.Context, report *domain.RunReport, err error) {
	subject := fmt.Sprintf("SetForge: CRITICAL %s run failed", report.Kind)
	body := fmt.Sprintf("Run %s (%s) aborted at %s.\n\n%s\n",
		report.RunID, report.Kind, time.Now().UTC().Format(time.RFC3339), err)
	if nErr := d.notifier.Notify(ctx, subject, body); nErr != nil {
		d.logger.Error("Failed to send critical notification", zap.Error(nErr), zap.String("run_id", report.RunID.String()))
	}
}

func finish(report *domain.RunReport) *domain.RunReport {
	report.FinishedAt = time.Now().UTC()
	return report
}
