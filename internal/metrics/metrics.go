// Package metrics provides Prometheus metrics collection for scans and cleans.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation kinds and outcomes used as label values.
const (
	KindScan  = "scan"
	KindClean = "clean"

	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

var (
	// OperationsTotal counts finished operations by kind and outcome.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachecleaner_operations_total",
			Help: "Total number of scan and clean operations",
		},
		[]string{"kind", "outcome"},
	)

	// BytesFreedTotal counts bytes released by successful deletions.
	BytesFreedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cachecleaner_bytes_freed_total",
			Help: "Total bytes freed by clean operations",
		},
	)

	// ReclaimableBytes holds the per-category result of the last scan.
	ReclaimableBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cachecleaner_reclaimable_bytes",
			Help: "Bytes of stale cache found by the last scan, by category",
		},
		[]string{"category"},
	)

	// OperationDuration tracks how long operations take.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cachecleaner_operation_duration_seconds",
			Help:    "Scan and clean duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"kind"},
	)

	// DeleteFailuresTotal counts items left in place, by reason.
	DeleteFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachecleaner_delete_failures_total",
			Help: "Total number of cache items that could not be deleted",
		},
		[]string{"reason"},
	)

	// ScheduledRunsTotal counts daemon jobs by schedule name and outcome.
	ScheduledRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachecleaner_scheduled_runs_total",
			Help: "Total number of scheduled daemon jobs",
		},
		[]string{"schedule", "outcome"},
	)
)

// ObserveScheduledRun counts one daemon job.
func ObserveScheduledRun(schedule, outcome string) {
	ScheduledRunsTotal.WithLabelValues(schedule, outcome).Inc()
}

// Recorder receives the engine's measurements.
type Recorder interface {
	ObserveOperation(kind, outcome string, d time.Duration)
	AddFreed(bytes int64)
	SetReclaimable(sizes map[string]int64)
	IncDeleteFailure(reason string)
}

// Prometheus records into the package collectors above.
type Prometheus struct{}

// ObserveOperation records one finished operation.
func (Prometheus) ObserveOperation(kind, outcome string, d time.Duration) {
	OperationDuration.WithLabelValues(kind).Observe(d.Seconds())
	OperationsTotal.WithLabelValues(kind, outcome).Inc()
}

// AddFreed adds to the freed bytes counter.
func (Prometheus) AddFreed(bytes int64) {
	if bytes > 0 {
		BytesFreedTotal.Add(float64(bytes))
	}
}

// SetReclaimable replaces the reclaimable gauge with sizes. Categories
// missing from sizes are removed.
func (Prometheus) SetReclaimable(sizes map[string]int64) {
	ReclaimableBytes.Reset()
	for category, size := range sizes {
		ReclaimableBytes.WithLabelValues(category).Set(float64(size))
	}
}

// IncDeleteFailure counts one failed deletion.
func (Prometheus) IncDeleteFailure(reason string) {
	DeleteFailuresTotal.WithLabelValues(reason).Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveOperation(string, string, time.Duration) {}
func (Nop) AddFreed(int64)                                 {}
func (Nop) SetReclaimable(map[string]int64)                {}
func (Nop) IncDeleteFailure(string)                        {}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
