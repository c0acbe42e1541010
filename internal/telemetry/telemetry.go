// Package telemetry exposes Prometheus metrics for classification, quoting
// and the HTTP API.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hyperifyio/cotizador/internal/classify"
)

// Metrics holds the cotizador collectors.
type Metrics struct {
	Classifications  *prometheus.CounterVec
	ClassifyDuration prometheus.Histogram
	Quotes           prometheus.Counter
	HTTPRequests     *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. A nil reg uses a fresh private
// registry, which keeps repeated construction in tests from colliding.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		Classifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cotizador_classifications_total",
			Help: "Detected modules by level",
		}, []string{"module", "level"}),
		ClassifyDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cotizador_classify_duration_seconds",
			Help:    "Time to classify a single brief",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		Quotes: f.NewCounter(prometheus.CounterOpts{
			Name: "cotizador_quotes_total",
			Help: "Quotes computed",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cotizador_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"route", "status"}),
		gatherer: reg,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordClassification counts each detected module at its level and
// observes the elapsed time.
func (m *Metrics) RecordClassification(w classify.Weights, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ClassifyDuration.Observe(elapsed.Seconds())
	for _, mod := range w.Active() {
		m.Classifications.WithLabelValues(string(mod), classify.LevelFor(mod, w[mod])).Inc()
	}
}

// RecordQuote counts one computed quote.
func (m *Metrics) RecordQuote() {
	if m == nil {
		return
	}
	m.Quotes.Inc()
}

// RecordRequest counts one HTTP request. route is the registered pattern,
// not the raw path.
func (m *Metrics) RecordRequest(route string, status int) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
