package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the application-wide metrics registry exposed on /api/metrics.
// A dedicated registry keeps default global collectors out of the scrape.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// Custom histogram buckets optimized for API response times ranging from milliseconds to 30+ seconds
	// Note: no 60s bucket to avoid histogram_quantile interpolation issues with low sample counts
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Database Metrics
	DBOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_client_operation_duration_seconds",
			Help:    "Database client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	DBOperationTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_client_operation_total",
			Help: "Total number of database client operations",
		},
		[]string{"operation", "status"},
	)

	// Cache Metrics
	CacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	CacheSize = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Number of entries in cache",
		},
		[]string{"cache_name"},
	)

	// Business Metrics
	SessionsCreated = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorbridge_sessions_created_total",
			Help: "Total number of session requests created",
		},
		[]string{"session_type"},
	)

	SessionTransitions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorbridge_session_transitions_total",
			Help: "Total number of session status transitions",
		},
		[]string{"from_status", "to_status"},
	)

	SessionTransitionRejects = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorbridge_session_transition_rejects_total",
			Help: "Total number of rejected (invalid) session transitions",
		},
		[]string{"from_status", "action"},
	)

	SessionListDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mentorbridge_session_list_duration_seconds",
			Help:    "Session list query duration in seconds",
			Buckets: CustomAPIBuckets,
		},
	)

	SessionListTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorbridge_session_list_total",
			Help: "Total number of session list queries",
		},
		[]string{"group"},
	)

	FeedbackSubmissions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorbridge_feedback_submissions_total",
			Help: "Total number of session feedback submissions",
		},
		[]string{"role", "status"},
	)

	RoadmapStepWrites = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorbridge_roadmap_step_writes_total",
			Help: "Total number of roadmap step write operations",
		},
		[]string{"operation", "status"},
	)

	RoadmapFanoutApplied = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mentorbridge_roadmap_fanout_applied_languages",
			Help:    "Number of language roadmaps touched by a fan-out write",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6},
		},
		[]string{"operation"},
	)

	// Infrastructure Metrics
	GoRoutines = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
