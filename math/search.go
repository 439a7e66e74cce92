package math

import (
	"math"

	"github.com/samber/lo"
)

// NearestIndex returns the index of the sample in xs closest to x along with
// the absolute distance to it. xs is expected to be sorted ascending, which lets
// the scan stop as soon as the distance starts growing. The first of two
// equally distant samples wins.
func NearestIndex(xs []float64, x float64) (idx int, dist float64, found bool) {
	idx = -1
	dist = math.MaxFloat64
	for i, v := range xs {
		d := math.Abs(v - x)
		if d < dist {
			dist = d
			idx = i
			continue
		}
		if idx >= 0 {
			break
		}
	}
	return idx, dist, idx >= 0
}

// FirstIndex returns the index of the first element of xs satisfying pred.
func FirstIndex(xs []float64, pred func(x float64) bool) (int, bool) {
	_, idx, found := lo.FindIndexOf(xs, pred)
	return idx, found
}

// StrictlyIncreasing reports whether every element of xs is larger than the
// one before it.
func StrictlyIncreasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return false
		}
	}
	return true
}

// NonDecreasing reports whether no element of xs is smaller than the one
// before it. NaN never compares, so it fails the check.
func NonDecreasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if !(xs[i] >= xs[i-1]) {
			return false
		}
	}
	return true
}
