// Package metrics records operational metrics for an audit run.
//
// Callers use the package-level helpers (RecordStep, RecordDataset,
// RecordSampleBytes). They forward to a pluggable Backend which defaults to
// a no-op, so instrumentation is always safe to call even when no metrics
// system is configured. Concrete backends live in subpackages (prompush,
// datadog) and are installed once at startup with SetBackend.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// Metric names.
const (
	StepTotal      = "cc_erddap_step_total"
	StepDuration   = "cc_erddap_step_duration_seconds"
	DatasetsTotal  = "cc_erddap_datasets_total"
	SampleBytesSum = "cc_erddap_sample_bytes_total"
)

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep measures latency and success/failure of one audit step
// (catalog, build, fetch, check, summarize).
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordDataset counts one dataset outcome. outcome is "passed",
// "failed_criteria" or a failure kind such as "fetch_failed".
func RecordDataset(job, outcome string) {
	backend.IncCounter(DatasetsTotal, 1, Labels{
		"job":     job,
		"outcome": outcome,
	})
}

// RecordSampleBytes adds the size of a downloaded sample.
func RecordSampleBytes(job string, n int64) {
	if n <= 0 {
		return
	}
	backend.IncCounter(SampleBytesSum, float64(n), Labels{
		"job": job,
	})
}
