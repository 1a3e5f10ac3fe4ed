package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics of CushyPost client operations.
// It implements cushypost.MetricsRecorder.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Errors          *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them on reg.
// A nil reg registers on the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cushypost_requests_total",
				Help: "Total number of CushyPost operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cushypost_request_duration_seconds",
				Help:    "CushyPost operation duration in seconds by operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cushypost_errors_total",
				Help: "Total CushyPost operation failures by operation and error code",
			},
			[]string{"operation", "code"},
		),
	}
}

// RecordRequest records one finished operation.
func (m *Metrics) RecordRequest(operation, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, status).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(duration)
}

// RecordError records a failed operation.
func (m *Metrics) RecordError(operation, code string) {
	if code == "" {
		code = "unknown"
	}
	m.Errors.WithLabelValues(operation, code).Inc()
}
