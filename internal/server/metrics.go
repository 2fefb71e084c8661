package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "rnaget_report"

// Metrics holds the collectors exposed by the report server on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	renderDuration prometheus.Histogram
	servers        prometheus.Gauge
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "Requests served by the report server, by handler and status code.",
		}, []string{"handler", "code"}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "render_duration_seconds",
			Help:      "Time taken to load, render and save the report.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		servers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "report_servers",
			Help:      "Servers in the rendered report.",
		}),
	}
	m.registry.MustRegister(m.requests, m.renderDuration, m.servers)
	m.registry.MustRegister(prometheus.NewGoCollector())
	return m
}

// ObserveRender records a render run.
func (m *Metrics) ObserveRender(seconds float64, servers int) {
	m.renderDuration.Observe(seconds)
	m.servers.Set(float64(servers))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry exposes the registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
