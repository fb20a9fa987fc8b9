package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcomes used as label values.
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation_error"
	OutcomeEngine     = "engine_error"
	OutcomeTransport  = "transport_error"
	OutcomeBusy       = "busy"
)

// Registry holds all Prometheus metrics for the gateway
type Registry struct {
	registry *prometheus.Registry

	RunsTotal       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	RunsInFlight    prometheus.Gauge
	DegradedResults *prometheus.CounterVec
}

// NewRegistry creates a registry with every gateway metric registered
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backtestview_runs_total",
				Help: "Total number of backtest runs by outcome",
			},
			[]string{"outcome"},
		),

		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "backtestview_run_duration_seconds",
				Help:    "Duration of a full run cycle in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),

		RunsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "backtestview_runs_in_flight",
				Help: "1 while a run is waiting on the engine",
			},
		),

		DegradedResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backtestview_degraded_results_total",
				Help: "Results rendered with a display fallback, by condition",
			},
			[]string{"condition"},
		),
	}

	r.registry.MustRegister(r.RunsTotal, r.RunDuration, r.RunsInFlight, r.DegradedResults)
	return r
}

// ObserveRun records a finished run
func (r *Registry) ObserveRun(outcome string, elapsed time.Duration) {
	r.RunsTotal.WithLabelValues(outcome).Inc()
	if outcome != OutcomeBusy {
		r.RunDuration.Observe(elapsed.Seconds())
	}
}

// Degraded counts a display fallback such as a missing benchmark
func (r *Registry) Degraded(condition string) {
	r.DegradedResults.WithLabelValues(condition).Inc()
}

// Gatherer exposes the underlying registry for tests and exporters
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the metrics in Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
