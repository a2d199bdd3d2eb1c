// Package metrics exposes Prometheus instrumentation for the filing
// pipeline. Collectors register themselves on the default registry at
// init; the server serves them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Filing pipeline metrics
var (
	FilingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dotfile_filings_total",
			Help: "Total number of filing requests by outcome",
		},
		[]string{"outcome"},
	)

	StageFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dotfile_stage_failures_total",
			Help: "Total number of fatal stage failures",
		},
		[]string{"stage"},
	)

	FilingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dotfile_filing_duration_seconds",
			Help:    "End-to-end duration of filing requests in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0},
		},
	)
)

// Classification metrics
var (
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dotfile_classifications_total",
			Help: "Total number of classifications by category and verdict source",
		},
		[]string{"category", "source"},
	)
)

// File movement metrics
var (
	FilesMovedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dotfile_files_moved_total",
			Help: "Total number of per-file move outcomes",
		},
		[]string{"outcome"},
	)

	RoundsAllocatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dotfile_rounds_allocated_total",
			Help: "Total number of round folders allocated for outgoing work",
		},
	)
)
