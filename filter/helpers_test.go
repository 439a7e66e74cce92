package filter

import (
	"github.com/bradleyjkemp/cupaloy/v2"
)

// new snapshots are written on first run instead of failing the test
var snapshotter = cupaloy.New(cupaloy.FailOnUpdate(false))

const tolerance = 1e-9

type recordingObserver struct {
	smoothed    []SmoothReport
	intersected []IntersectionReport
	limited     []LimitReport
	failures    []error
	failureOps  []string
}

func (r *recordingObserver) Smoothed(rep SmoothReport) { r.smoothed = append(r.smoothed, rep) }
func (r *recordingObserver) Intersected(rep IntersectionReport) { r.intersected = append(r.intersected, rep) }
func (r *recordingObserver) Limited(rep LimitReport) { r.limited = append(r.limited, rep) }
func (r *recordingObserver) Failed(op string, err error) {
	r.failureOps = append(r.failureOps, op)
	r.failures = append(r.failures, err)
}

func uniformArclength(n int, ds float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = float64(i) * ds
	}
	return s
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
