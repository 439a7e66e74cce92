package observer

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pfeifer.dev/velfilter/filter"
)

func crossing() filter.Obstacle {
	return filter.Obstacle{ID: "lead", Points: []filter.ObstaclePoint{
		{S: 4, T: 1}, {S: 5, T: 1.5}, {S: 6, T: 2}, {S: 7, T: 2.5},
	}}
}

func uniform(n int, ds float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = float64(i) * ds
	}
	return s
}

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f := filter.New(filter.DefaultConfig(), NewLog(logger))

	_, err := f.LimitObstacle(4, uniform(11, 1), flat(11, 4), crossing())
	require.NoError(t, err)
	_, _, err = f.Smooth(-1, 0, 0, 1, 1, flat(3, 1))
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "intersected obstacle")
	assert.Contains(t, out, "cut_in=4")
	assert.Contains(t, out, "limited velocity for obstacle")
	assert.Contains(t, out, "reduced=6")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "op=smooth")
}

func TestNewLogDefaultsLogger(t *testing.T) {
	assert.Equal(t, slog.Default(), NewLog(nil).Logger)
}

func TestMetricsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	f := filter.New(filter.DefaultConfig(), m)

	_, err := f.LimitObstacle(4, uniform(11, 1), flat(11, 4), crossing())
	require.NoError(t, err)
	_, _, err = f.Smooth(1, 5, 0, 1, 0.5, flat(5, 5))
	require.NoError(t, err)
	off := filter.Obstacle{Points: []filter.ObstaclePoint{{S: 4.5, T: 1}}}
	_, err = f.LimitObstacle(4, uniform(11, 1), flat(11, 4), off)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(filter.OP_LIMIT)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(filter.OP_SMOOTH)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.clipped.WithLabelValues("forward")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.clipped.WithLabelValues("backward")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.matches.WithLabelValues("tight")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.matches.WithLabelValues("loose")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.reduced))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues(filter.OP_LIMIT, "no_intersection")))

	families, err := reg.Gather()
	require.NoError(t, err)
	var observed uint64
	for _, mf := range families {
		if mf.GetName() == "velocity_filter_intersections" {
			observed = mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(2), observed)
}

func TestReason(t *testing.T) {
	assert.Equal(t, "invalid_input", Reason(errors.Wrap(filter.ErrInvalidInput, "x")))
	assert.Equal(t, "interpolation", Reason(errors.Wrap(filter.ErrInterpolation, "x")))
	assert.Equal(t, "no_intersection", Reason(filter.ErrNoIntersection))
	assert.Equal(t, "other", Reason(errors.New("boom")))
}

type counting struct {
	filter.NopObserver
	smoothed int
	failed   int
}

func (c *counting) Smoothed(filter.SmoothReport) { c.smoothed++ }
func (c *counting) Failed(string, error)         { c.failed++ }

func TestMultiFansOut(t *testing.T) {
	a, b := &counting{}, &counting{}
	f := filter.New(filter.DefaultConfig(), Multi{a, b})

	_, _, err := f.Smooth(1, 0, 0, 1, 1, flat(4, 2))
	require.NoError(t, err)
	_, _, err = f.Smooth(1, 0, 0, 1, 1, flat(1, 2))
	require.Error(t, err)

	assert.Equal(t, 1, a.smoothed)
	assert.Equal(t, 1, b.smoothed)
	assert.Equal(t, 1, a.failed)
	assert.Equal(t, 1, b.failed)
}
