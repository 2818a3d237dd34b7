// Package metrics exposes Prometheus instrumentation for the API server.
// Services depend on the Recorder interface so tests and deployments with
// PROMETHEUS_ENABLED=false can pass Nop.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Recorder interface {
	ObserveAggregation(kind string, duration time.Duration)
	RecordGoalConflict(goalType string)
	RecordMediaLookupFailure(source string)
	RecordLogsCreated(logType string, count int)
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// Collector records to a Prometheus registry.
type Collector struct {
	aggregationLatency  *prometheus.HistogramVec
	goalConflicts       *prometheus.CounterVec
	mediaLookupFailures *prometheus.CounterVec
	logsCreated         *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpLatency         *prometheus.HistogramVec
}

// NewCollector creates the collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		aggregationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "immersionhub_aggregation_duration_seconds",
			Help:    "Time spent computing goal progress and period statistics.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		goalConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "immersionhub_goal_conflicts_total",
			Help: "Goal writes rejected because an active goal of the same type exists.",
		}, []string{"type"}),
		mediaLookupFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "immersionhub_media_lookup_failures_total",
			Help: "Media duration lookups that failed and fell back.",
		}, []string{"source"}),
		logsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "immersionhub_logs_created_total",
			Help: "Immersion logs created, by type.",
		}, []string{"type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "immersionhub_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "immersionhub_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.aggregationLatency,
		c.goalConflicts,
		c.mediaLookupFailures,
		c.logsCreated,
		c.httpRequests,
		c.httpLatency,
	)

	return c
}

func (c *Collector) ObserveAggregation(kind string, duration time.Duration) {
	c.aggregationLatency.WithLabelValues(kind).Observe(duration.Seconds())
}

func (c *Collector) RecordGoalConflict(goalType string) {
	c.goalConflicts.WithLabelValues(goalType).Inc()
}

func (c *Collector) RecordMediaLookupFailure(source string) {
	c.mediaLookupFailures.WithLabelValues(source).Inc()
}

func (c *Collector) RecordLogsCreated(logType string, count int) {
	c.logsCreated.WithLabelValues(logType).Add(float64(count))
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveAggregation(string, time.Duration)             {}
func (Nop) RecordGoalConflict(string)                            {}
func (Nop) RecordMediaLookupFailure(string)                      {}
func (Nop) RecordLogsCreated(string, int)                        {}
func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
