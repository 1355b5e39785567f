package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "swapper"

// Outcome labels.
const (
	OutcomeReady    = "ready"
	OutcomeFailed   = "failed"
	OutcomeSettled  = "settled"
	OutcomeRejected = "rejected"
	OutcomeInFlight = "in_flight"
	OutcomeDefect   = "defect"
)

// Metrics owns a dedicated registry so tests and multiple servers never collide
// on the global one. All methods are safe on a nil receiver.
type Metrics struct {
	registry       *prometheus.Registry
	catalogLoads   *prometheus.CounterVec
	catalogOptions prometheus.Gauge
	quotes         *prometheus.CounterVec
	settlement     prometheus.Histogram
	requests       *prometheus.CounterVec
	durations      *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		catalogLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "loads_total",
			Help:      "Price catalog loads segmented by outcome.",
		}, []string{"outcome"}),
		catalogOptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "options",
			Help:      "Number of tradable options in the current catalog.",
		}),
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quote",
			Name:      "submissions_total",
			Help:      "Swap submissions segmented by outcome.",
		}, []string{"outcome"}),
		settlement: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "quote",
			Name:      "settlement_duration_seconds",
			Help:      "Time from entering processing to settlement.",
			Buckets:   prometheus.DefBuckets,
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		}, []string{"route", "method", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.catalogLoads,
		m.catalogOptions,
		m.quotes,
		m.settlement,
		m.requests,
		m.durations,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveCatalogLoad records a catalog load and the resulting option count.
func (m *Metrics) ObserveCatalogLoad(outcome string, options int) {
	if m == nil {
		return
	}
	m.catalogLoads.WithLabelValues(outcome).Inc()
	m.catalogOptions.Set(float64(options))
}

// ObserveQuote records a submission outcome.
func (m *Metrics) ObserveQuote(outcome string) {
	if m == nil {
		return
	}
	m.quotes.WithLabelValues(outcome).Inc()
}

// ObserveSettlement records the processing latency of a settled swap.
func (m *Metrics) ObserveSettlement(d time.Duration) {
	if m == nil {
		return
	}
	m.settlement.Observe(d.Seconds())
}

// ObserveRequest records a served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.durations.WithLabelValues(route, method).Observe(d.Seconds())
}
