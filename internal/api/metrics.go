package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the analysis desk.
type Metrics struct {
	registry *prometheus.Registry

	Assessments     *prometheus.CounterVec
	ScoringFailures *prometheus.CounterVec
	Reports         prometheus.Counter
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a metrics set on its own registry so tests can
// build handlers without collector name collisions.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		Assessments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kestrel_assessments_total",
			Help: "Completed assessments by verdict.",
		}, []string{"verdict"}),
		ScoringFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kestrel_scoring_failures_total",
			Help: "Failed scoring calls by reason.",
		}, []string{"reason"}),
		Reports: factory.NewCounter(prometheus.CounterOpts{
			Name: "kestrel_reports_generated_total",
			Help: "Analysis reports synthesized for download.",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kestrel_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
