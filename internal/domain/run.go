package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunKind selects which scheduled batch a run executes.
type RunKind string

const (
	RunAggregate RunKind = "aggregate"
	RunImport    RunKind = "import"
)

// IsValid checks if the run kind is supported.
func (k RunKind) IsValid() bool {
	return k == RunAggregate || k == RunImport
}

// RunRequest asks the worker to execute one batch run.
type RunRequest struct {
	RunID       uuid.UUID `json:"run_id"`
	Kind        RunKind   `json:"kind"`
	DryRun      bool      `json:"dry_run"`
	RequestedAt time.Time `json:"requested_at"`
}

// RunMessage wraps a RunRequest received from the queue with its ACK/NACK callbacks.
// Requests produced by the local scheduler carry no-op callbacks.
type RunMessage struct {
	Request *RunRequest
	Ack     func() error
	Nack    func(requeue bool) error
}

// JobFailure records why a single job failed inside a run.
type JobFailure struct {
	JobID   int64  `json:"job_id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// RunReport is the end-of-run summary of a batch.
type RunReport struct {
	RunID      uuid.UUID `json:"run_id"`
	Kind       RunKind   `json:"kind"`
	DryRun     bool      `json:"dry_run"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Selected  int `json:"selected"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`

	Failures    []JobFailure `json:"failures,omitempty"`
	Diagnostics []string     `json:"diagnostics,omitempty"`
	Exports     []string     `json:"exports,omitempty"`

	FlowRunID  string `json:"flow_run_id,omitempty"`
	FlowStatus string `json:"flow_status,omitempty"`

	// Records holds the aggregation rows; populated for dry runs.
	Records []*SetRecord `json:"records,omitempty"`
}

// NewRunReport starts a report for req.
func NewRunReport(req *RunRequest) *RunReport {
	return &RunReport{
		RunID:     req.RunID,
		Kind:      req.Kind,
		DryRun:    req.DryRun,
		StartedAt: time.Now().UTC(),
	}
}

// AddFailure records a failed job.
func (r *RunReport) AddFailure(jobID int64, err error) {
	r.Failed++
	r.Failures = append(r.Failures, JobFailure{
		JobID:   jobID,
		Kind:    ErrorKind(err),
		Message: err.Error(),
	})
}
