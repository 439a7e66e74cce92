package math

import (
	"testing"

	"github.com/bradleyjkemp/cupaloy/v2"
	"github.com/stretchr/testify/assert"
)

func TestNearestIndex(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}

	idx, dist, found := NearestIndex(xs, 2.3)
	assert.True(t, found)
	assert.Equal(t, 2, idx)
	assert.InDelta(t, 0.3, dist, 1e-12)

	idx, _, _ = NearestIndex(xs, -5)
	assert.Equal(t, 0, idx)

	idx, dist, _ = NearestIndex(xs, 9)
	assert.Equal(t, 4, idx)
	assert.Equal(t, 5.0, dist)

	// ties go to the earlier sample
	idx, _, _ = NearestIndex(xs, 1.5)
	assert.Equal(t, 1, idx)

	_, _, found = NearestIndex(nil, 1)
	assert.False(t, found)
}

func TestFirstIndex(t *testing.T) {
	xs := []float64{0, 1, 2, 3}

	idx, found := FirstIndex(xs, func(x float64) bool { return x >= 1.5 })
	assert.True(t, found)
	assert.Equal(t, 2, idx)

	idx, found = FirstIndex(xs, func(x float64) bool { return x > 3 })
	assert.False(t, found)
	assert.Equal(t, -1, idx)
}

func TestStrictlyIncreasing(t *testing.T) {
	cupaloy.New(cupaloy.FailOnUpdate(false)).SnapshotT(t,
		StrictlyIncreasing([]float64{0, 1, 2}),
		StrictlyIncreasing([]float64{0, 1, 1}),
		StrictlyIncreasing([]float64{2, 1}),
		StrictlyIncreasing(nil),
	)
	assert.True(t, StrictlyIncreasing([]float64{0, 1, 2}))
	assert.False(t, StrictlyIncreasing([]float64{0, 1, 1}))
	assert.True(t, StrictlyIncreasing([]float64{5}))
}

func TestAbsAndFinite(t *testing.T) {
	assert.Equal(t, 1.5, Abs(float32(-1.5)))
	assert.True(t, Finite(3))
	assert.False(t, Finite(1/zero()))
}

func zero() float64 { return 0 }

func TestNonDecreasing(t *testing.T) {
	assert.True(t, NonDecreasing([]float64{0, 1, 1, 2}))
	assert.True(t, NonDecreasing(nil))
	assert.False(t, NonDecreasing([]float64{0, 2, 1}))
	assert.False(t, NonDecreasing([]float64{0, zero() / zero()}))
}
