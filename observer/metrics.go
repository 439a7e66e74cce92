package observer

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pfeifer.dev/velfilter/filter"
)

const NAMESPACE = "velocity_filter"

// Metrics counts filter runs and failures in a prometheus registry.
type Metrics struct {
	runs          *prometheus.CounterVec
	failures      *prometheus.CounterVec
	clipped       *prometheus.CounterVec
	matches       *prometheus.CounterVec
	reduced       prometheus.Counter
	intersections prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: NAMESPACE,
			Name:      "runs_total",
			Help:      "Completed filter operations.",
		}, []string{"op"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: NAMESPACE,
			Name:      "failures_total",
			Help:      "Failed filter operations by reason.",
		}, []string{"op", "reason"}),
		clipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: NAMESPACE,
			Name:      "clipped_samples_total",
			Help:      "Samples re-anchored to their bound by the smoother.",
		}, []string{"pass"}),
		matches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: NAMESPACE,
			Name:      "conflict_matches_total",
			Help:      "Obstacle conflict matches by window.",
		}, []string{"window"}),
		reduced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: NAMESPACE,
			Name:      "reduced_samples_total",
			Help:      "Samples lowered below their bound by an obstacle.",
		}),
		intersections: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: NAMESPACE,
			Name:      "intersections",
			Help:      "Obstacle points lying on the ego path per limit call.",
			Buckets:   prometheus.LinearBuckets(0, 5, 8),
		}),
	}
}

func (m *Metrics) Smoothed(rep filter.SmoothReport) {
	m.runs.WithLabelValues(filter.OP_SMOOTH).Inc()
	m.clipped.WithLabelValues("forward").Add(float64(rep.ForwardClipped))
	m.clipped.WithLabelValues("backward").Add(float64(rep.BackwardClipped))
}

func (m *Metrics) Intersected(rep filter.IntersectionReport) {
	m.intersections.Observe(float64(rep.Intersections))
}

func (m *Metrics) Limited(rep filter.LimitReport) {
	m.runs.WithLabelValues(filter.OP_LIMIT).Inc()
	m.matches.WithLabelValues("tight").Add(float64(rep.TightMatches))
	m.matches.WithLabelValues("loose").Add(float64(rep.LooseMatches))
	m.reduced.Add(float64(rep.Reduced))
}

func (m *Metrics) Failed(op string, err error) {
	m.failures.WithLabelValues(op, Reason(err)).Inc()
}

// Reason maps an error onto a small fixed label set.
func Reason(err error) string {
	switch {
	case errors.Is(err, filter.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, filter.ErrNoIntersection):
		return "no_intersection"
	case errors.Is(err, filter.ErrInterpolation):
		return "interpolation"
	default:
		return "other"
	}
}
