// Package metrics holds the Prometheus collectors for the EMR server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector the server exports. A nil *Metrics is valid
// and records nothing, so domain services can run without it in tests.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests         *prometheus.CounterVec
	HTTPDuration         *prometheus.HistogramVec
	RiskScores           *prometheus.CounterVec
	VitalClassifications *prometheus.CounterVec
	StockAdjustments     *prometheus.CounterVec
}

// New creates the collectors on a private registry alongside the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emr_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "emr_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "route"}),
		RiskScores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emr_hts_risk_scores_total",
			Help: "HTS risk scores computed, by HIV risk band",
		}, []string{"hiv_band"}),
		VitalClassifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emr_vitals_classifications_total",
			Help: "Vital sign readings classified, by vital and status",
		}, []string{"vital", "status"}),
		StockAdjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emr_stock_adjustments_total",
			Help: "Pharmacy stock adjustments, by direction",
		}, []string{"direction"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.RiskScores,
		m.VitalClassifications,
		m.StockAdjustments,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRiskScore(hivBand string) {
	if m == nil {
		return
	}
	m.RiskScores.WithLabelValues(hivBand).Inc()
}

func (m *Metrics) ObserveVital(vital, status string) {
	if m == nil {
		return
	}
	m.VitalClassifications.WithLabelValues(vital, status).Inc()
}

func (m *Metrics) ObserveStockAdjustment(delta int) {
	if m == nil {
		return
	}
	direction := "in"
	if delta < 0 {
		direction = "out"
	}
	m.StockAdjustments.WithLabelValues(direction).Inc()
}
