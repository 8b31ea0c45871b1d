// Package metrics holds the Prometheus collectors exported by the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kaleidoscope"

// Metrics holds the collectors shared across components.
type Metrics struct {
	// ProviderCalls counts platform calls by platform, op and outcome
	// ("ok", "not_found" or "error").
	ProviderCalls *prometheus.CounterVec

	// ProviderDuration observes platform call latency by platform and op.
	ProviderDuration *prometheus.HistogramVec

	// FallbackSteps counts stream fallback steps by step and outcome
	// ("hit" or "miss").
	FallbackSteps *prometheus.CounterVec

	// RateLimitDecisions counts limiter decisions by class and outcome.
	RateLimitDecisions *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with a fresh registry that
// also carries the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the collectors with reg and serves them from g.
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	m := &Metrics{
		ProviderCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "Calls made to music platform providers.",
		}, []string{"platform", "op", "outcome"}),

		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_seconds",
			Help:      "Latency of music platform provider calls.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 4, 8},
		}, []string{"platform", "op"}),

		FallbackSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_steps_total",
			Help:      "Stream fallback steps attempted.",
		}, []string{"step", "outcome"}),

		RateLimitDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_decisions_total",
			Help:      "Rate limiter decisions.",
		}, []string{"class", "outcome"}),

		gatherer: g,
	}

	reg.MustRegister(m.ProviderCalls, m.ProviderDuration, m.FallbackSteps, m.RateLimitDecisions)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
