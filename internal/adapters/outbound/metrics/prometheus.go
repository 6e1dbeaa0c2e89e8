// Package metrics implements domain.MetricsRecorder on Prometheus
// collectors. Registration happens on the registry passed by the caller, so
// tests can use an isolated registry instead of the process default.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rulegate/rulegate/internal/domain"
)

// PrometheusRecorder counts validations by format and status and observes
// their latency.
type PrometheusRecorder struct {
	validations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	engineErrs  *prometheus.CounterVec
}

// New creates a recorder and registers its collectors on reg.
func New(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rulegate",
			Name:      "validations_total",
			Help:      "Completed validations by format and status.",
		}, []string{"format", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rulegate",
			Name:      "validation_duration_seconds",
			Help:      "Validation latency by format.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		engineErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rulegate",
			Name:      "engine_errors_total",
			Help:      "Engine failures by format and kind.",
		}, []string{"format", "kind"}),
	}

	reg.MustRegister(r.validations, r.duration, r.engineErrs)
	return r
}

func (r *PrometheusRecorder) RecordValidation(format domain.Format, status domain.Status, d time.Duration) {
	r.validations.WithLabelValues(format.String(), string(status)).Inc()
	r.duration.WithLabelValues(format.String()).Observe(d.Seconds())
}

func (r *PrometheusRecorder) RecordEngineError(format domain.Format, kind string) {
	r.engineErrs.WithLabelValues(format.String(), kind).Inc()
}
