package math

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/interp"
)

var ErrInterpolation = errors.New("interpolation is not well-posed")

// Interpolate maps ys sampled at xs onto queryXs using piecewise linear
// interpolation. xs must be non-decreasing; a run of repeated xs keeps only its
// first value. At least two distinct xs are needed and every query must lie
// inside [xs[0], xs[len(xs)-1]]; anything else is reported as ErrInterpolation.
func Interpolate(xs []float64, ys []float64, queryXs []float64) ([]float64, error) {
	if len(xs) != len(ys) {
		return nil, errors.Wrapf(ErrInterpolation, "got %d samples but %d values", len(xs), len(ys))
	}
	if !NonDecreasing(xs) {
		return nil, errors.Wrap(ErrInterpolation, "samples are decreasing")
	}

	// gonum panics on repeated samples instead of returning an error
	xs, ys = collapseRepeats(xs, ys)
	if len(xs) < 2 {
		return nil, errors.Wrapf(ErrInterpolation, "need at least 2 distinct samples, got %d", len(xs))
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, errors.Wrap(ErrInterpolation, err.Error())
	}

	lo, hi := xs[0], xs[len(xs)-1]
	out := make([]float64, len(queryXs))
	for i, x := range queryXs {
		if x < lo || x > hi {
			return nil, errors.Wrapf(ErrInterpolation, "query %g outside of [%g, %g]", x, lo, hi)
		}
		out[i] = pl.Predict(x)
	}
	return out, nil
}

func collapseRepeats(xs []float64, ys []float64) ([]float64, []float64) {
	outX := make([]float64, 0, len(xs))
	outY := make([]float64, 0, len(ys))
	for i, x := range xs {
		if i > 0 && x == xs[i-1] {
			continue
		}
		outX = append(outX, x)
		outY = append(outY, ys[i])
	}
	return outX, outY
}
