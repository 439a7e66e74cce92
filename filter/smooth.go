package filter

import (
	"math"
	"slices"

	"github.com/pkg/errors"
)

// Kinematics describes the vehicle limits used by the smoother. Ds is the
// uniform spacing of the velocity samples.
type Kinematics struct {
	Ds      float64 // m
	MaxAcc  float64 // m/s^2
	JerkAcc float64 // m/s^3
}

// Pass is the result of a single forward or backward sweep.
type Pass struct {
	Vel     []float64
	Acc     []float64
	Clipped int
}

// step advances the state across one sample spacing. Below stationaryEps the
// traversal time is the time needed to cover ds from rest at MaxAcc.
func (k Kinematics) step(vel, acc, stationaryEps float64) (nextVel float64, nextAcc float64) {
	var dt float64
	if math.Abs(vel) < stationaryEps {
		dt = math.Sqrt(2 * k.Ds / k.MaxAcc)
	} else {
		dt = k.Ds / vel
	}

	nextAcc = math.Min(acc+k.JerkAcc*dt, k.MaxAcc)
	return vel + nextAcc*dt, nextAcc
}

// ForwardPass accelerates from the initial state as fast as the limits allow,
// re-anchoring to the bound (with zero acceleration) wherever it would be
// exceeded.
func ForwardPass(k Kinematics, initialVel, initialAcc float64, upperBound []float64, stationaryEps float64) Pass {
	n := len(upperBound)
	p := Pass{Vel: make([]float64, n), Acc: make([]float64, n)}
	if n == 0 {
		return p
	}
	p.Vel[0] = initialVel
	p.Acc[0] = initialAcc

	vel, acc := initialVel, initialAcc
	for i := 1; i < n; i++ {
		nextVel, nextAcc := k.step(vel, acc, stationaryEps)
		if nextVel > upperBound[i] {
			vel = upperBound[i]
			acc = 0
			p.Clipped++
		} else {
			vel = nextVel
			acc = nextAcc
		}
		p.Vel[i] = vel
		p.Acc[i] = acc
	}
	return p
}

// BackwardPass walks from the end of forward back to its start so that the
// profile can brake in time for slow sections ahead. The last sample is seeded
// with endVel. Each sample is capped by the forward value stored there, and
// samples that are not capped record the braking as negative acceleration.
func BackwardPass(k Kinematics, forward Pass, endVel float64, stationaryEps float64) Pass {
	n := len(forward.Vel)
	p := Pass{Vel: slices.Clone(forward.Vel), Acc: slices.Clone(forward.Acc)}
	if n == 0 {
		return p
	}
	p.Vel[n-1] = endVel
	p.Acc[n-1] = 0

	vel, acc := endVel, 0.0
	for i := n - 2; i >= 0; i-- {
		nextVel, nextAcc := k.step(vel, acc, stationaryEps)
		if nextVel > p.Vel[i] {
			vel = p.Vel[i]
			acc = 0
			p.Clipped++
		} else {
			vel = nextVel
			acc = nextAcc
			p.Acc[i] = -acc
		}
		p.Vel[i] = vel
	}
	return p
}

// Smooth returns a velocity and acceleration profile that never exceeds
// upperBound and respects maxAcc and jerkAcc. upperBound must be sampled every
// ds metres. The velocity is the merge of the forward and backward passes, the
// acceleration the backward pass's view of it.
func (f *Filter) Smooth(ds, initialVel, initialAcc, maxAcc, jerkAcc float64, upperBound []float64) ([]float64, []float64, error) {
	if err := validateSmooth(ds, initialVel, initialAcc, maxAcc, jerkAcc, upperBound); err != nil {
		return nil, nil, f.fail(OP_SMOOTH, err)
	}

	k := Kinematics{Ds: ds, MaxAcc: maxAcc, JerkAcc: jerkAcc}
	forward := ForwardPass(k, initialVel, initialAcc, upperBound, f.Config.ForwardStationaryEpsilon)
	backward := BackwardPass(k, forward, upperBound[len(upperBound)-1], f.Config.BackwardStationaryEpsilon)

	merged, run, err := mergeProfiles(forward.Vel, backward.Vel, f.Config.MergeEpsilon)
	if err != nil {
		return nil, nil, f.fail(OP_SMOOTH, err)
	}

	f.observer().Smoothed(SmoothReport{
		Samples:         len(upperBound),
		ForwardClipped:  forward.Clipped,
		BackwardClipped: backward.Clipped,
		ForwardRun:      run,
	})
	return merged, backward.Acc, nil
}

func validateSmooth(ds, initialVel, initialAcc, maxAcc, jerkAcc float64, upperBound []float64) error {
	if len(upperBound) < 2 {
		return errors.Wrapf(ErrInvalidInput, "upper bound needs at least 2 samples, got %d", len(upperBound))
	}
	if !(ds > 0) || math.IsInf(ds, 0) {
		return errors.Wrapf(ErrInvalidInput, "sample spacing must be positive, got %g", ds)
	}
	if !(maxAcc > 0) || math.IsInf(maxAcc, 0) {
		return errors.Wrapf(ErrInvalidInput, "max acceleration must be positive, got %g", maxAcc)
	}
	if !(jerkAcc >= 0) || math.IsInf(jerkAcc, 0) {
		return errors.Wrapf(ErrInvalidInput, "jerk must not be negative, got %g", jerkAcc)
	}
	if !(initialVel >= 0) || math.IsInf(initialVel, 0) {
		return errors.Wrapf(ErrInvalidInput, "initial velocity must not be negative, got %g", initialVel)
	}
	if math.IsNaN(initialAcc) || math.IsInf(initialAcc, 0) {
		return errors.Wrapf(ErrInvalidInput, "initial acceleration must be finite, got %g", initialAcc)
	}
	for i, v := range upperBound {
		if !(v >= 0) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrInvalidInput, "upper bound %d is %g", i, v)
		}
	}
	return nil
}
