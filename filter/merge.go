package filter

import (
	"github.com/pkg/errors"
)

// Merge combines a forward and a backward profile into their pointwise
// minimum. When the backward profile starts below the forward one, the leading
// run where backward stays below forward keeps the forward values so the
// acceleration ramp at the start survives the backward pass's seeding.
func Merge(forward, backward []float64) ([]float64, error) {
	merged, _, err := mergeProfiles(forward, backward, MERGE_EPSILON)
	return merged, err
}

func mergeProfiles(forward, backward []float64, eps float64) (merged []float64, run int, err error) {
	if len(forward) != len(backward) {
		return nil, 0, errors.Wrapf(ErrInvalidInput, "forward has %d samples, backward %d", len(forward), len(backward))
	}
	merged = make([]float64, len(forward))
	if len(forward) == 0 {
		return merged, 0, nil
	}

	i := 0
	if backward[0] < forward[0]-eps {
		for i < len(merged) && backward[i] < forward[i] {
			merged[i] = forward[i]
			i++
		}
	}
	run = i

	for ; i < len(merged); i++ {
		merged[i] = min(forward[i], backward[i])
	}
	return merged, run, nil
}
