// Package metrics provides Prometheus metrics for the hardwood service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Proxy names.
const (
	ProxyESPN     = "espn"
	ProxySportsDB = "sportsdb"
)

// Proxy outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeUpstream = "upstream_error"
	OutcomeCached   = "cache_hit"
)

// Manager owns every collector on its own registry.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	proxyRequests   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	cacheErrors     *prometheus.CounterVec

	leagueLoads        *prometheus.CounterVec
	leagueLoadDuration *prometheus.HistogramVec
	leaderFailures     *prometheus.CounterVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom histogram buckets for latency metrics.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// NewManager creates a manager with a fresh private registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hardwood",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.proxyRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "proxy",
		Name:      "requests_total",
		Help:      "Proxy requests by upstream and outcome",
	}, []string{"proxy", "outcome"})

	m.upstreamLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "proxy",
		Name:      "upstream_duration_seconds",
		Help:      "Upstream round trip latency",
		Buckets:   m.histogramBuckets,
	}, []string{"proxy"})

	m.cacheErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "proxy",
		Name:      "cache_errors_total",
		Help:      "Response cache read or write failures",
	}, []string{"proxy"})

	m.leagueLoads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "board",
		Name:      "loads_total",
		Help:      "League loads by outcome",
	}, []string{"league", "outcome"})

	m.leagueLoadDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "board",
		Name:      "load_duration_seconds",
		Help:      "Wall time of one league load",
		Buckets:   m.histogramBuckets,
	}, []string{"league"})

	m.leaderFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "board",
		Name:      "leader_summary_failures_total",
		Help:      "Game summaries skipped while computing leaders",
	}, []string{"league"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   m.histogramBuckets,
	}, []string{"route"})
}

// Registry exposes the private registry.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ProxyRequest counts one proxied request.
func (m *Manager) ProxyRequest(proxy, outcome string) {
	if m == nil {
		return
	}
	m.proxyRequests.WithLabelValues(proxy, outcome).Inc()
}

// UpstreamLatency records one upstream round trip.
func (m *Manager) UpstreamLatency(proxy string, d time.Duration) {
	if m == nil {
		return
	}
	m.upstreamLatency.WithLabelValues(proxy).Observe(d.Seconds())
}

func (m *Manager) CacheError(proxy string) {
	if m == nil {
		return
	}
	m.cacheErrors.WithLabelValues(proxy).Inc()
}

// LoadFinished records a league load.
func (m *Manager) LoadFinished(league string, ok bool, took time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.leagueLoads.WithLabelValues(league, outcome).Inc()
	m.leagueLoadDuration.WithLabelValues(league).Observe(took.Seconds())
}

func (m *Manager) LeaderSummaryFailed(league string) {
	if m == nil {
		return
	}
	m.leaderFailures.WithLabelValues(league).Inc()
}

// HTTPRequest records one served request.
func (m *Manager) HTTPRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}
