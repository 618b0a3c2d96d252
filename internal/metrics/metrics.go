// Package metrics exposes Prometheus collectors for profile evaluations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mamdani"

// Metrics is safe to use as a nil pointer; every recorder becomes a no-op.
type Metrics struct {
	EvaluationsTotal  *prometheus.CounterVec
	FallbacksTotal    *prometheus.CounterVec
	ErrorsTotal       *prometheus.CounterVec
	EvaluationSeconds *prometheus.HistogramVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests
// to avoid clashing with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EvaluationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Evaluations by profile and output label",
			},
			[]string{"profile", "label"},
		),
		FallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fallbacks_total",
				Help:      "Evaluations where no rule fired and the domain midpoint was returned",
			},
			[]string{"profile"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluation_errors_total",
				Help:      "Evaluations rejected by the engine",
			},
			[]string{"profile"},
		),
		EvaluationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Wall time of a single evaluation",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"profile"},
		),
	}
}

func (m *Metrics) ObserveEvaluation(profile, label string, fired bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.EvaluationsTotal.WithLabelValues(profile, label).Inc()
	if !fired {
		m.FallbacksTotal.WithLabelValues(profile).Inc()
	}
	m.EvaluationSeconds.WithLabelValues(profile).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveError(profile string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(profile).Inc()
}
