// Package metrics exposes Prometheus collectors on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "apf"

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// requests counts HTTP requests.
	// Labels: method, route, status
	requests *prometheus.CounterVec

	// requestDuration measures HTTP handler latency.
	// Labels: route
	requestDuration *prometheus.HistogramVec

	// imports counts Markdown imports.
	// Labels: result (ok, no_hypotheses, failed)
	imports *prometheus.CounterVec

	// llmCalls counts AI actions.
	// Labels: action, status (ok, error)
	llmCalls *prometheus.CounterVec

	// llmDuration measures model round trips.
	// Labels: action
	llmDuration *prometheus.HistogramVec

	hypotheses prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP handler latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		imports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "markdown",
			Name:      "imports_total",
			Help:      "Markdown imports by result",
		}, []string{"result"}),
		llmCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "AI actions by outcome",
		}, []string{"action", "status"}),
		llmDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "Model round-trip time in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"action"}),
		hypotheses: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hypotheses",
			Help:      "Hypotheses in the workbench",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) ObserveImport(result string) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveLLM(action string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.llmCalls.WithLabelValues(action, status).Inc()
	m.llmDuration.WithLabelValues(action).Observe(d.Seconds())
}

func (m *Metrics) SetHypotheses(n int) {
	if m == nil {
		return
	}
	m.hypotheses.Set(float64(n))
}
