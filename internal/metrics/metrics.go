// Package metrics holds the Prometheus collectors for the feed pipeline and
// the HTTP API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector the service records. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	recordsFetched   *prometheus.CounterVec
	recordsDropped   *prometheus.CounterVec
	marketsExcluded  *prometheus.CounterVec
	feedDuration     prometheus.Histogram
	httpRequests     *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry together
// with the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketboard_upstream_requests_total",
			Help: "Upstream page fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marketboard_upstream_request_seconds",
			Help:    "Upstream page fetch latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		recordsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketboard_records_fetched_total",
			Help: "Raw records received from upstream sources.",
		}, []string{"source"}),
		recordsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketboard_records_dropped_total",
			Help: "Raw records dropped before normalization.",
		}, []string{"source", "reason"}),
		marketsExcluded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketboard_markets_excluded_total",
			Help: "Normalized markets removed by the sports filter, by rule.",
		}, []string{"rule"}),
		feedDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "marketboard_feed_seconds",
			Help:    "End-to-end feed pipeline latency.",
			Buckets: prometheus.DefBuckets,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketboard_http_requests_total",
			Help: "API requests by route and status code.",
		}, []string{"route", "code"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.upstreamRequests,
		m.upstreamDuration,
		m.recordsFetched,
		m.recordsDropped,
		m.marketsExcluded,
		m.feedDuration,
		m.httpRequests,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveUpstream records one upstream page fetch.
func (m *Metrics) ObserveUpstream(source string, d time.Duration, records int, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.upstreamRequests.WithLabelValues(source, outcome).Inc()
	m.upstreamDuration.WithLabelValues(source).Observe(d.Seconds())
	if err == nil {
		m.recordsFetched.WithLabelValues(source).Add(float64(records))
	}
}

// RecordsDropped counts records discarded before normalization.
func (m *Metrics) RecordsDropped(source, reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.recordsDropped.WithLabelValues(source, reason).Add(float64(n))
}

// MarketExcluded counts one market removed by the named filter rule.
func (m *Metrics) MarketExcluded(rule string) {
	if m == nil {
		return
	}
	m.marketsExcluded.WithLabelValues(rule).Inc()
}

// ObserveFeed records the latency of one full pipeline run.
func (m *Metrics) ObserveFeed(d time.Duration) {
	if m == nil {
		return
	}
	m.feedDuration.Observe(d.Seconds())
}

// HTTPRequest counts one API response.
func (m *Metrics) HTTPRequest(route, code string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, code).Inc()
}
