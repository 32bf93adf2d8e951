package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "snapgram_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// DatabaseErrors counts failed database statements by operation.
	DatabaseErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapgram_database_errors_total",
		Help: "Total number of failed database statements",
	}, []string{"operation"})

	// DatabaseSlowQueries counts statements slower than the configured threshold.
	DatabaseSlowQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapgram_database_slow_queries_total",
		Help: "Total number of database statements over the slow threshold",
	})

	// RedisErrorRate counts Redis errors by command.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapgram_redis_error_rate_total",
		Help: "Total number of Redis errors by command",
	}, []string{"operation"})

	// CacheLookups counts cache lookups by outcome (hit, miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapgram_cache_lookups_total",
		Help: "Total number of cache lookups by outcome",
	}, []string{"outcome"})
)

// ObserveQuery records the latency of one database statement.
func ObserveQuery(operation string, elapsed time.Duration) {
	DatabaseQueryLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}
