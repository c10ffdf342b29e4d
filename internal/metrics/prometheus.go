package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts batch runs by kind and result (success, failed, skipped, dry_run).
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setforge_runs_total",
			Help: "Total number of batch runs",
		},
		[]string{"kind", "result"},
	)

	// RunDuration tracks the duration of batch runs in seconds.
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "setforge_run_duration_seconds",
			Help:    "Duration of batch runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
		},
		[]string{"kind"},
	)

	// JobOutcomes counts per-job results of the aggregation run by outcome
	// (aggregated or an error kind).
	JobOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setforge_job_outcomes_total",
			Help: "Per-job outcomes of aggregation runs",
		},
		[]string{"outcome"},
	)

	// ImportRows counts import file rows by outcome (applied, skipped).
	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setforge_import_rows_total",
			Help: "Import file rows by outcome",
		},
		[]string{"outcome"},
	)

	// JobsCreated counts set jobs accepted by the intake API.
	JobsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "setforge_jobs_created_total",
			Help: "Total number of set jobs created",
		},
	)

	// DuplicatesRejected counts create or edit requests rejected as duplicates.
	DuplicatesRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "setforge_duplicates_rejected_total",
			Help: "Total number of set job requests rejected as duplicates",
		},
	)

	// BarcodesUnused reports the unused barcodes left after the last aggregation run.
	BarcodesUnused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "setforge_barcodes_unused",
			Help: "Number of unused barcodes in the pool",
		},
	)

	// WorkersActive tracks the number of currently active worker goroutines.
	WorkersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "setforge_workers_active",
			Help: "Number of currently active worker goroutines",
		},
	)
)
