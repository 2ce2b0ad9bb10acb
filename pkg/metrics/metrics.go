// Package metrics holds the Prometheus collectors shared by the API and the worker.
package metrics

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bookshelf"

type Metrics struct {
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPRequestsInProgress prometheus.Gauge

	// entity, operation (upsert|delete|search), result (ok|error|rejected)
	IndexOperationsTotal *prometheus.CounterVec
	// task type, result
	IndexJobsTotal *prometheus.CounterVec
	// name; 0 closed, 1 half-open, 2 open
	CircuitBreakerState *prometheus.GaugeVec

	DBPoolConnections *prometheus.GaugeVec
}

// New registers every collector on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		HTTPRequestsInProgress: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_progress",
			Help:      "HTTP requests currently being served.",
		}),

		IndexOperationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_index_operations_total",
			Help:      "Search index operations by entity, operation and result.",
		}, []string{"entity", "operation", "result"}),

		IndexJobsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_index_jobs_total",
			Help:      "Background reindex tasks by type and result.",
		}, []string{"task", "result"}),

		CircuitBreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open).",
		}, []string{"name"}),

		DBPoolConnections: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_pool_connections",
			Help:      "PostgreSQL pool connections by state.",
		}, []string{"state"}),
	}
}

// ObservePool copies a pgxpool snapshot into DBPoolConnections.
func (m *Metrics) ObservePool(stat *pgxpool.Stat) {
	m.DBPoolConnections.WithLabelValues("total").Set(float64(stat.TotalConns()))
	m.DBPoolConnections.WithLabelValues("idle").Set(float64(stat.IdleConns()))
	m.DBPoolConnections.WithLabelValues("acquired").Set(float64(stat.AcquiredConns()))
	m.DBPoolConnections.WithLabelValues("max").Set(float64(stat.MaxConns()))
}

// Handler exposes the collectors of g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
