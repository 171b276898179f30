// Package metrics provides Prometheus collectors for pipeline runs.
// The tool is a client only and exposes no endpoint; collectors are
// registered on the default registry for embedding applications that
// already serve one.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsExtracted counts records decoded from source responses.
	RecordsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dataglide",
		Name:      "records_extracted_total",
		Help:      "Total records extracted from the source endpoint",
	})

	// RowsWritten counts rows written to output files.
	RowsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dataglide",
		Name:      "rows_written_total",
		Help:      "Total rows written to CSV output",
	})

	// StageErrors counts stage failures by stage name.
	StageErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dataglide",
		Name:      "stage_errors_total",
		Help:      "Total stage failures by stage",
	}, []string{"stage"})

	// RunDuration observes end-to-end pipeline run durations.
	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dataglide",
		Name:      "run_duration_seconds",
		Help:      "End-to-end pipeline run duration",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})
)

// Timer measures an operation's duration.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed time since the timer started.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// ObserveRun records a completed run's duration.
func ObserveRun(d time.Duration) {
	RunDuration.Observe(d.Seconds())
}
