package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the dubbing pipeline.
type Metrics struct {
	registry              *prometheus.Registry
	tasksProcessedTotal   prometheus.Counter
	stageFailuresTotal    *prometheus.CounterVec
	outputsPublishedTotal prometheus.Counter
	segmentsClippedTotal  prometheus.Counter
	activeWorkers         prometheus.Gauge
}

// New creates and registers Prometheus metrics for the pipeline.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	tasksProcessedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dub_tasks_processed_total",
		Help: "Total number of dubbing tasks pulled from the queue and run",
	})
	stageFailuresTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dub_stage_failures_total",
		Help: "Total number of stage attempt failures, by stage",
	}, []string{"stage"})
	outputsPublishedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dub_outputs_published_total",
		Help: "Total number of dubbed outputs published",
	})
	segmentsClippedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dub_segments_clipped_total",
		Help: "Total number of synthesized segments trimmed to fit their slot",
	})
	activeWorkers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dub_active_workers",
		Help: "Number of workers currently running a task",
	})

	registry.MustRegister(
		tasksProcessedTotal,
		stageFailuresTotal,
		outputsPublishedTotal,
		segmentsClippedTotal,
		activeWorkers,
	)

	return &Metrics{
		registry:              registry,
		tasksProcessedTotal:   tasksProcessedTotal,
		stageFailuresTotal:    stageFailuresTotal,
		outputsPublishedTotal: outputsPublishedTotal,
		segmentsClippedTotal:  segmentsClippedTotal,
		activeWorkers:         activeWorkers,
	}
}

// IncTasksProcessed increments the processed tasks counter.
func (m *Metrics) IncTasksProcessed() {
	m.tasksProcessedTotal.Inc()
}

// IncStageFailures increments the failure counter for the given stage.
func (m *Metrics) IncStageFailures(stage string) {
	m.stageFailuresTotal.WithLabelValues(stage).Inc()
}

// IncOutputsPublished increments the published outputs counter.
func (m *Metrics) IncOutputsPublished() {
	m.outputsPublishedTotal.Inc()
}

// AddSegmentsClipped adds to the clipped segments counter.
func (m *Metrics) AddSegmentsClipped(n int) {
	m.segmentsClippedTotal.Add(float64(n))
}

// WorkerStarted and WorkerDone track the active worker gauge.
func (m *Metrics) WorkerStarted() { m.activeWorkers.Inc() }
func (m *Metrics) WorkerDone()    { m.activeWorkers.Dec() }

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
