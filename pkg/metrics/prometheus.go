package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Run outcomes used as the status label.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Manager owns every Prometheus metric of the rating pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         *prometheus.Registry

	// Runs
	runsTotal     *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	stageDuration *prometheus.HistogramVec

	// Data shape of the last run per mode
	possessionsLoaded prometheus.Counter
	entities          *prometheus.GaugeVec
	designRows        *prometheus.GaugeVec
	designColumns     *prometheus.GaugeVec

	// Fit
	chosenAlpha  *prometheus.GaugeVec
	cvScore      *prometheus.GaugeVec
	cgIterations prometheus.Histogram

	// Output
	sinkWrites  *prometheus.CounterVec
	tablesTotal prometheus.Gauge
	tableRows   *prometheus.GaugeVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue and workers
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	workerActive       prometheus.Gauge
	workerLatency      prometheus.Histogram
	workerErrors       prometheus.Counter

	// Errors
	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager. Without WithPrometheusRegistry it
// registers on a fresh private registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "courtside",
		subsystem:        "rapm",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		constLabels:      map[string]string{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

// Registry returns the registry the manager's metrics live on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	counterOpts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
	}
	gaugeOpts := func(name, help string) prometheus.GaugeOpts {
		return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
	}
	histOpts := func(name, help string, buckets []float64) prometheus.HistogramOpts {
		return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
	}

	m.runsTotal = auto.NewCounterVec(counterOpts("runs_total", "Rating runs by mode and outcome"), []string{"mode", "status"})
	m.runDuration = auto.NewHistogramVec(histOpts("run_duration_milliseconds", "End-to-end rating run duration", m.histogramBuckets), []string{"mode"})
	m.stageDuration = auto.NewHistogramVec(histOpts("stage_duration_milliseconds", "Duration of each pipeline stage", m.histogramBuckets), []string{"stage"})

	m.possessionsLoaded = auto.NewCounter(counterOpts("possessions_loaded_total", "Possessions read from sources"))
	m.entities = auto.NewGaugeVec(gaugeOpts("entities", "Distinct entities of the last run, before and after the appearance floor"), []string{"mode", "state"})
	m.designRows = auto.NewGaugeVec(gaugeOpts("design_rows", "Design matrix rows of the last run, kept and pruned"), []string{"mode", "state"})
	m.designColumns = auto.NewGaugeVec(gaugeOpts("design_columns", "Design matrix columns of the last run"), []string{"mode"})

	m.chosenAlpha = auto.NewGaugeVec(gaugeOpts("chosen_alpha", "Penalty selected by cross-validation in the last run"), []string{"mode"})
	m.cvScore = auto.NewGaugeVec(gaugeOpts("cv_score", "Mean held-out R² of the chosen penalty in the last run"), []string{"mode"})
	m.cgIterations = auto.NewHistogram(histOpts("cg_iterations", "Conjugate gradient iterations of final fits",
		[]float64{5, 10, 25, 50, 100, 250, 500, 1000, 5000}))

	m.sinkWrites = auto.NewCounterVec(counterOpts("sink_writes_total", "Rating table writes by sink and outcome"), []string{"sink", "status"})
	m.tablesTotal = auto.NewGauge(gaugeOpts("tables", "Rating tables held by the store"))
	m.tableRows = auto.NewGaugeVec(gaugeOpts("table_rows", "Rows per stored rating table"), []string{"table"})

	m.httpRequests = auto.NewCounterVec(counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(histOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250}), []string{"endpoint", "method", "status_code"})

	m.queueSize = auto.NewGauge(gaugeOpts("queue_size", "Jobs waiting in the run queue"))
	m.queueCapacity = auto.NewGauge(gaugeOpts("queue_capacity", "Capacity of the run queue"))
	m.queueEnqueued = auto.NewCounter(counterOpts("queue_enqueued_total", "Jobs accepted by the run queue"))
	m.queueEnqueueErrors = auto.NewCounter(counterOpts("queue_enqueue_errors_total", "Jobs rejected by the run queue"))
	m.workerActive = auto.NewGauge(gaugeOpts("worker_active", "Workers currently running a job"))
	m.workerLatency = auto.NewHistogram(histOpts("worker_job_duration_milliseconds", "Time a worker spent on one job", m.histogramBuckets))
	m.workerErrors = auto.NewCounter(counterOpts("worker_errors_total", "Jobs that finished with an error"))

	m.errorsByComponent = auto.NewCounterVec(counterOpts("errors_total", "Errors by component and kind"), []string{"component", "error_type"})
}

// RecordRun counts a finished run and observes its duration.
func (m *Manager) RecordRun(mode, status string, d time.Duration) {
	m.runsTotal.WithLabelValues(mode, status).Inc()
	m.runDuration.WithLabelValues(mode).Observe(ms(d))
}

// RecordStage observes the duration of one pipeline stage.
func (m *Manager) RecordStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(ms(d))
}

// RecordDesign records the size of a run's problem.
func (m *Manager) RecordDesign(mode string, possessions, seen, kept, rowsKept, rowsPruned, cols int) {
	m.possessionsLoaded.Add(float64(possessions))
	m.entities.WithLabelValues(mode, "seen").Set(float64(seen))
	m.entities.WithLabelValues(mode, "kept").Set(float64(kept))
	m.designRows.WithLabelValues(mode, "kept").Set(float64(rowsKept))
	m.designRows.WithLabelValues(mode, "pruned").Set(float64(rowsPruned))
	m.designColumns.WithLabelValues(mode).Set(float64(cols))
}

// RecordFit records the outcome of model selection.
func (m *Manager) RecordFit(mode string, alpha, cvScore float64, cgIterations int) {
	m.chosenAlpha.WithLabelValues(mode).Set(alpha)
	m.cvScore.WithLabelValues(mode).Set(cvScore)
	if cgIterations > 0 {
		m.cgIterations.Observe(float64(cgIterations))
	}
}

// RecordSinkWrite counts one table write.
func (m *Manager) RecordSinkWrite(sink, status string) {
	m.sinkWrites.WithLabelValues(sink, status).Inc()
}

// UpdateTables sets the number of stored tables.
func (m *Manager) UpdateTables(count int) { m.tablesTotal.Set(float64(count)) }

// UpdateTableRows sets the row count of one stored table.
func (m *Manager) UpdateTableRows(table string, rows int) {
	m.tableRows.WithLabelValues(table).Set(float64(rows))
}

// RecordHTTPRequest counts a request and observes its duration in milliseconds.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateQueue sets the queue gauges.
func (m *Manager) UpdateQueue(size, capacity int) {
	m.queueSize.Set(float64(size))
	m.queueCapacity.Set(float64(capacity))
}

// RecordEnqueue counts an enqueue attempt.
func (m *Manager) RecordEnqueue(ok bool) {
	if ok {
		m.queueEnqueued.Inc()
		return
	}
	m.queueEnqueueErrors.Inc()
}

// WorkerStarted marks one more worker busy.
func (m *Manager) WorkerStarted() { m.workerActive.Inc() }

// WorkerFinished records the end of a job started with WorkerStarted.
func (m *Manager) WorkerFinished(d time.Duration, err error) {
	m.workerActive.Dec()
	m.workerLatency.Observe(ms(d))
	if err != nil {
		m.workerErrors.Inc()
	}
}

// RecordError counts an error by component and kind.
func (m *Manager) RecordError(component, errorType string) {
	m.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// Push sends every metric on the manager's registry to a Pushgateway.
func (m *Manager) Push(ctx context.Context, url, job string) error {
	if url == "" {
		return ErrNoPushURL
	}
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrPushFailed, err)
	}
	return nil
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Default returns the process-wide manager.
func Default() *Manager { return globalManager }

// RecordRun records a run on the default manager.
func RecordRun(mode, status string, d time.Duration) { globalManager.RecordRun(mode, status, d) }

// RecordStage records a stage duration on the default manager.
func RecordStage(stage string, d time.Duration) { globalManager.RecordStage(stage, d) }

// RecordHTTPRequest records a request on the default manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordError records an error on the default manager.
func RecordError(component, errorType string) { globalManager.RecordError(component, errorType) }

// Push pushes the default registry to a Pushgateway.
func Push(ctx context.Context, url, job string) error { return globalManager.Push(ctx, url, job) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
