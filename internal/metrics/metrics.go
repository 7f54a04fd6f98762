// Package metrics holds the Prometheus collectors shared by the service,
// the quote client and the HTTP layer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "breakingbad"

type Metrics struct {
	registry *prometheus.Registry

	Calculations     *prometheus.CounterVec
	CalculationTime  *prometheus.HistogramVec
	SweepOmitted     prometheus.Counter
	QuoteRequestTime *prometheus.HistogramVec
	QuoteCache       *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	AuditDropped     prometheus.Counter
}

// New registers every collector on a fresh registry so tests and multiple
// servers in one process do not collide.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Pricing operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		CalculationTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_seconds",
			Help:      "Time spent in pricing operations.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"op"}),
		SweepOmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_points_omitted_total",
			Help:      "Volatility levels dropped from heat maps after a pricing failure.",
		}),
		QuoteRequestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_request_seconds",
			Help:      "Upstream quote lookup latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "outcome"}),
		QuoteCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_cache_total",
			Help:      "Quote cache lookups by backend and result.",
		}, []string{"backend", "result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		AuditDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_events_dropped_total",
			Help:      "Audit events dropped because the buffer was full.",
		}),
	}

	m.registry.MustRegister(
		m.Calculations,
		m.CalculationTime,
		m.SweepOmitted,
		m.QuoteRequestTime,
		m.QuoteCache,
		m.HTTPRequests,
		m.HTTPDuration,
		m.AuditDropped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCalculation records one pricing operation.
func (m *Metrics) ObserveCalculation(op string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Calculations.WithLabelValues(op, outcome).Inc()
	m.CalculationTime.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) AddSweepOmitted(n int) {
	if m == nil || n == 0 {
		return
	}
	m.SweepOmitted.Add(float64(n))
}

func (m *Metrics) ObserveQuote(provider, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.QuoteRequestTime.WithLabelValues(provider, outcome).Observe(d.Seconds())
}

func (m *Metrics) CountCache(backend, result string) {
	if m == nil {
		return
	}
	m.QuoteCache.WithLabelValues(backend, result).Inc()
}

func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func (m *Metrics) DropAudit() {
	if m == nil {
		return
	}
	m.AuditDropped.Inc()
}
