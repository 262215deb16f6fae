// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// An audit run is a short-lived batch job with nothing to scrape, so the
// collected metrics are pushed once at the end of the run. The job label
// becomes the Pushgateway grouping key; the remaining labels map onto
// collector labels.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"ccerddap/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stepCounter    *prometheus.CounterVec // step, status
	stepDuration   *prometheus.SummaryVec // step, status
	datasetCounter *prometheus.CounterVec // outcome
	sampleBytes    prometheus.Counter
}

// NewBackend constructs a Prometheus Pushgateway backend. An empty jobName
// defaults to "cc_erddap".
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "cc_erddap"
	}

	reg := prometheus.NewRegistry()

	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Audit step executions, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.StepDuration,
			Help:       "Duration of audit steps in seconds, partitioned by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	datasetCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.DatasetsTotal,
			Help: "Datasets audited, partitioned by outcome (passed, failed_criteria or a failure kind).",
		},
		[]string{"outcome"},
	)
	sampleBytes := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: metrics.SampleBytesSum,
			Help: "Bytes of sample data downloaded.",
		},
	)

	for name, c := range map[string]prometheus.Collector{
		"step counter":    stepCounter,
		"step summary":    stepDuration,
		"dataset counter": datasetCounter,
		"sample bytes":    sampleBytes,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}

	return &Backend{
		gatewayURL:     gatewayURL,
		jobName:        jobName,
		reg:            reg,
		stepCounter:    stepCounter,
		stepDuration:   stepDuration,
		datasetCounter: datasetCounter,
		sampleBytes:    sampleBytes,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
	case metrics.DatasetsTotal:
		b.datasetCounter.WithLabelValues(labels["outcome"]).Add(delta)
	case metrics.SampleBytesSum:
		b.sampleBytes.Add(delta)
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDuration {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway, replacing the
// previous push for this job.
func (b *Backend) Flush() error {
	if err := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg).Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.gatewayURL, err)
	}
	return nil
}
