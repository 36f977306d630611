// Package metrics holds the Prometheus instruments of the taskflow client.
//
// The client keeps its own registry rather than the default one, so the
// "metrics" command reports only what this process recorded. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "taskflow_client"

type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	cacheLookups *prometheus.CounterVec
	cacheEntries prometheus.Gauge

	actionsRejected *prometheus.CounterVec
}

// New creates the instruments on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// Labels:
		//   - method: HTTP method
		//   - route:  path template, e.g. "/tasks/:id"
		//   - status: HTTP status code, or "error" when no response arrived
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Backend requests issued, by method, route and status.",
		}, []string{"method", "route", "status"}),

		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Backend request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		// Label result: "hit", "miss" or "stale"
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Query cache lookups, by resource kind and result.",
		}, []string{"kind", "result"}),

		cacheEntries: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Entries currently held by the query cache.",
		}),

		actionsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_rejected_total",
			Help:      "Duplicate submissions dropped while the entity was busy.",
		}, []string{"op"}),
	}
}

// ObserveRequest records one backend call. status is 0 when the transport
// failed before a response arrived.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requestsTotal.WithLabelValues(method, route, label).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) CacheHit(kind string) {
	if m != nil {
		m.cacheLookups.WithLabelValues(kind, "hit").Inc()
	}
}

func (m *Metrics) CacheMiss(kind string) {
	if m != nil {
		m.cacheLookups.WithLabelValues(kind, "miss").Inc()
	}
}

// StaleDiscarded counts responses dropped because a newer request for the
// same key had already resolved.
func (m *Metrics) StaleDiscarded(kind string) {
	if m != nil {
		m.cacheLookups.WithLabelValues(kind, "stale").Inc()
	}
}

func (m *Metrics) SetCacheEntries(n int) {
	if m != nil {
		m.cacheEntries.Set(float64(n))
	}
}

func (m *Metrics) ActionRejected(op string) {
	if m != nil {
		m.actionsRejected.WithLabelValues(op).Inc()
	}
}

// Gather snapshots every instrument.
func (m *Metrics) Gather() ([]*dto.MetricFamily, error) {
	if m == nil {
		return nil, nil
	}
	return m.registry.Gather()
}
