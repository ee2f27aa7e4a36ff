// Package metrics provides Prometheus metrics for the staffing scheduler.
package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultRefreshInterval is how often CollectSystem samples when given no
// interval.
const DefaultRefreshInterval = 10 * time.Second

// Default histogram buckets in milliseconds. Fast operations (board, queue,
// HTTP) stay well under a second; searches and runs are bounded by the
// allocator budget and may take minutes.
//
//nolint:gochecknoglobals // bucket defaults
var (
	defaultLatencyBuckets = []float64{0.05, 0.1, 0.5, 1, 5, 10, 25, 50, 100, 250, 500, 1000}
	defaultSearchBuckets  = []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 20000, 60000, 300000}
)

// Manager manages all Prometheus metrics for the scheduler.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	searchBuckets  []float64
	registry       prometheus.Registerer

	// Scheduling metrics
	projectsCommitted   prometheus.Counter
	projectsSkipped     *prometheus.CounterVec
	scoreTotal          prometheus.Counter
	learningPoints      prometheus.Counter
	simulationDay       prometheus.Gauge
	pendingProjects     prometheus.Gauge
	feasibilityVerdicts *prometheus.CounterVec

	// Allocator metrics
	allocations       *prometheus.CounterVec
	allocationLatency prometheus.Histogram
	allocatorAttempts *prometheus.CounterVec

	// Run metrics
	runs                 *prometheus.CounterVec
	runDuration          prometheus.Histogram
	instanceContributors prometheus.Gauge
	instanceProjects     prometheus.Gauge

	// Branch board metrics
	boardBranches      prometheus.Gauge
	boardUpdateLatency prometheus.Histogram
	boardQueryLatency  prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue Metrics
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker Metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "staffing",
		subsystem:      "scheduler",
		latencyBuckets: defaultLatencyBuckets,
		searchBuckets:  defaultSearchBuckets,
		registry:       prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	m.projectsCommitted = m.counter("projects_committed_total", "Total number of projects committed to a plan")
	m.projectsSkipped = m.counterVec("projects_skipped_total", "Projects dropped from consideration by reason", "reason")
	m.scoreTotal = m.counter("score_total", "Sum of actual scores earned by committed projects")
	m.learningPoints = m.counter("learning_points_total", "Total number of mentored promotions")
	m.simulationDay = m.gauge("simulation_day", "Current simulated day of the running driver")
	m.pendingProjects = m.gauge("pending_projects", "Projects neither committed nor dropped")
	m.feasibilityVerdicts = m.counterVec("feasibility_verdicts_total", "Feasibility filter verdicts", "verdict")

	m.allocations = m.counterVec("allocations_total", "Allocator calls by outcome", "outcome")
	m.allocationLatency = m.histogram("allocation_latency_milliseconds", "Wall time of one allocator call in milliseconds", m.searchBuckets)
	m.allocatorAttempts = m.counterVec("allocator_attempts_total", "Allocator search attempts by outcome", "outcome")

	m.runs = m.counterVec("runs_total", "Planning runs by status", "status")
	m.runDuration = m.histogram("run_duration_milliseconds", "Wall time of a planning run in milliseconds", m.searchBuckets)
	m.instanceContributors = m.gauge("instance_contributors", "Contributors in the last loaded instance")
	m.instanceProjects = m.gauge("instance_projects", "Projects in the last loaded instance")

	m.boardBranches = m.gauge("board_branches", "Branches recorded on the exploration board")
	m.boardUpdateLatency = m.histogram("board_update_latency_milliseconds", "Board update latency in milliseconds", m.latencyBuckets)
	m.boardQueryLatency = m.histogram("board_query_latency_milliseconds", "Board query latency in milliseconds", m.latencyBuckets)

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "http_request_duration_milliseconds",
		Help: "HTTP request duration in milliseconds", Buckets: m.latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.queueSize = m.gauge("queue_size", "Current size of the branch job queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of jobs enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of enqueue errors")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Queue processing latency in milliseconds", m.latencyBuckets)

	m.workerCount = m.gauge("worker_count", "Configured number of branch workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers currently running a branch")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Branch run latency in milliseconds", m.searchBuckets)
	m.workerErrorRate = m.counter("worker_errors_total", "Total number of worker errors")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component",
		"component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint",
		"endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordProjectCommitted records a committed project and what it earned.
func RecordProjectCommitted(score, learningPoints int) {
	globalManager.projectsCommitted.Inc()
	globalManager.scoreTotal.Add(float64(score))
	globalManager.learningPoints.Add(float64(learningPoints))
}

// RecordProjectSkipped records a project dropped for the given reason.
func RecordProjectSkipped(reason string) {
	globalManager.projectsSkipped.WithLabelValues(reason).Inc()
}

// UpdateSimulationDay sets the current simulated day.
func UpdateSimulationDay(day int) {
	globalManager.simulationDay.Set(float64(day))
}

// UpdatePendingProjects sets the number of still-open projects.
func UpdatePendingProjects(n int) {
	globalManager.pendingProjects.Set(float64(n))
}

// RecordFeasibility records one feasibility verdict.
func RecordFeasibility(verdict string) {
	globalManager.feasibilityVerdicts.WithLabelValues(verdict).Inc()
}

// RecordAllocation records one allocator call.
func RecordAllocation(outcome string, latencyMs float64) {
	globalManager.allocations.WithLabelValues(outcome).Inc()
	globalManager.allocationLatency.Observe(latencyMs)
}

// RecordAllocatorAttempt records how a single search attempt ended.
func RecordAllocatorAttempt(outcome string) {
	globalManager.allocatorAttempts.WithLabelValues(outcome).Inc()
}

// RecordRun records a finished planning run.
func RecordRun(status string, durationMs float64) {
	globalManager.runs.WithLabelValues(status).Inc()
	globalManager.runDuration.Observe(durationMs)
}

// UpdateInstanceSize sets the size of the last loaded instance.
func UpdateInstanceSize(contributors, projects int) {
	globalManager.instanceContributors.Set(float64(contributors))
	globalManager.instanceProjects.Set(float64(projects))
}

// UpdateBoardBranches sets the number of recorded branches.
func UpdateBoardBranches(n int) {
	globalManager.boardBranches.Set(float64(n))
}

// RecordBoardUpdateLatency records board update latency.
func RecordBoardUpdateLatency(latencyMs float64) {
	globalManager.boardUpdateLatency.Observe(latencyMs)
}

// RecordBoardQueryLatency records board query latency.
func RecordBoardQueryLatency(latencyMs float64) {
	globalManager.boardQueryLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// CollectSystem samples runtime gauges every interval until ctx is done.
// A non-positive interval means DefaultRefreshInterval.
func CollectSystem(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	sample := func() {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		UpdateSystemMemoryUsage(ms.Alloc)
		UpdateSystemGoroutineCount(runtime.NumGoroutine())
	}
	sample()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sample()
		}
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
