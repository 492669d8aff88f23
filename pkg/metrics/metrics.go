package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks API request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// DBQueryDuration tracks repository query latency.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	// MQConsumeLatency tracks event consumption latency in the notifier.
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// NotificationsGenerated counts notifications produced by the rule engine.
	NotificationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_generated_total",
			Help: "Total number of notifications generated",
		},
		[]string{"type"},
	)

	// SearchQueries counts search requests by kind.
	SearchQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_queries_total",
			Help: "Total number of search queries served",
		},
		[]string{"kind"}, // kind: unified, similar_projects, decision_patterns
	)

	// KPICacheHits counts dashboard cache hits and misses.
	KPICacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kpi_cache_requests_total",
			Help: "Dashboard KPI cache lookups by result",
		},
		[]string{"result"}, // result: hit, miss
	)
)

// RecordHTTPRequestDuration records API request latency.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration records repository query latency.
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordMQConsumeLatency records event consumption latency.
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// IncrementNotificationsGenerated bumps the per-type generation counter.
func IncrementNotificationsGenerated(notificationType string) {
	NotificationsGenerated.WithLabelValues(notificationType).Inc()
}

// IncrementSearchQueries bumps the per-kind search counter.
func IncrementSearchQueries(kind string) {
	SearchQueries.WithLabelValues(kind).Inc()
}

// IncrementKPICacheLookup bumps the cache counter with result "hit" or "miss".
func IncrementKPICacheLookup(result string) {
	KPICacheHits.WithLabelValues(result).Inc()
}
