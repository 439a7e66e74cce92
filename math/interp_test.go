package math

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolate(t *testing.T) {
	ys, err := Interpolate([]float64{1, 2, 4}, []float64{10, 20, 0}, []float64{1, 1.5, 2, 3, 4})
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{10, 15, 20, 10, 0}, ys, 1e-12)
}

func TestInterpolateRepeatedSamplesKeepFirst(t *testing.T) {
	ys, err := Interpolate([]float64{1, 2, 2, 2, 4}, []float64{10, 20, 99, 98, 0}, []float64{1.5, 2, 3, 4})
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{15, 20, 10, 0}, ys, 1e-12)
}

func TestInterpolateRepeatedLastSample(t *testing.T) {
	ys, err := Interpolate([]float64{4, 5, 6, 7, 7}, []float64{1, 1.5, 2, 2.5, 2.55}, []float64{4, 5, 6, 7})
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{1, 1.5, 2, 2.5}, ys, 1e-12)
}

func TestInterpolateEmptyQuery(t *testing.T) {
	ys, err := Interpolate([]float64{1, 2}, []float64{1, 2}, nil)
	require.NoError(t, err)
	assert.Empty(t, ys)
}

func TestInterpolateFailures(t *testing.T) {
	tests := []struct {
		name    string
		xs, ys  []float64
		queries []float64
	}{
		{"single sample", []float64{1}, []float64{1}, []float64{1}},
		{"no samples", nil, nil, []float64{1}},
		{"length mismatch", []float64{1, 2}, []float64{1}, []float64{1}},
		{"one distinct sample", []float64{1, 1, 1}, []float64{1, 2, 3}, []float64{1}},
		{"nan sample", []float64{1, math.NaN(), 2}, []float64{1, 2, 3}, []float64{1}},
		{"decreasing samples", []float64{2, 1}, []float64{1, 2}, []float64{1.5}},
		{"query below range", []float64{1, 2}, []float64{1, 2}, []float64{0.5}},
		{"query above range", []float64{1, 2}, []float64{1, 2}, []float64{2.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Interpolate(tt.xs, tt.ys, tt.queries)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInterpolation))
		})
	}
}
