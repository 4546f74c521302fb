package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	recommendations *prometheus.CounterVec
	outcomes        *prometheus.CounterVec
	adjustments     *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	lastPrice       *prometheus.GaugeVec
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		recommendations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocksage_recommendations_total",
				Help: "Total number of recommendations produced",
			},
			[]string{"symbol", "action"},
		),
		outcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocksage_outcomes_total",
				Help: "Total number of labeled watchlist outcomes",
			},
			[]string{"label"},
		),
		adjustments: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocksage_weight_adjustments_total",
				Help: "Total number of weight adjustments applied",
			},
			[]string{"category"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocksage_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stocksage_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stocksage_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRecommendation records a produced recommendation.
func (r *Recorder) RecordRecommendation(symbol, action string) {
	r.recommendations.WithLabelValues(symbol, action).Inc()
}

// RecordOutcome records a terminal watchlist label.
func (r *Recorder) RecordOutcome(label string) {
	r.outcomes.WithLabelValues(label).Inc()
}

// RecordAdjustment records an applied weight adjustment.
func (r *Recorder) RecordAdjustment(category string) {
	r.adjustments.WithLabelValues(category).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
