package plan

import (
	"context"
	"slices"

	"github.com/pkg/errors"

	"pfeifer.dev/velfilter/filter"
	"pfeifer.dev/velfilter/settings"
)

type Order string

const (
	SmoothThenLimit Order = settings.ORDER_SMOOTH_THEN_LIMIT
	LimitThenSmooth Order = settings.ORDER_LIMIT_THEN_SMOOTH
)

func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case SmoothThenLimit, LimitThenSmooth:
		return Order(s), nil
	case "":
		return SmoothThenLimit, nil
	}
	return "", errors.Errorf("unknown pipeline order %q", s)
}

type Result struct {
	Order          Order     `json:"order"`
	Arclength      []float64 `json:"arclength"`
	UpperBound     []float64 `json:"upper_bound"`
	SmoothedVel    []float64 `json:"smoothed_vel"`
	SmoothedAcc    []float64 `json:"smoothed_acc"`
	LimitedVel     []float64 `json:"limited_vel,omitempty"`
	FinalVel       []float64 `json:"final_vel"`
	Fallback       bool      `json:"fallback"`
	FallbackReason string    `json:"fallback_reason,omitempty"`
}

// Recoverable reports whether a limiter error means "no usable obstacle
// limit" rather than bad input. Callers fall back to the unlimited profile.
func Recoverable(err error) bool {
	return errors.Is(err, filter.ErrInterpolation) || errors.Is(err, filter.ErrNoIntersection)
}

// Run composes the smoother and the obstacle limiter in the given order.
// When the limiter cannot produce a profile the unlimited one is used and the
// result is marked as a fallback.
func Run(ctx context.Context, f *filter.Filter, sc Scenario, order Order) (Result, error) {
	s, err := sc.Samples()
	if err != nil {
		return Result{}, err
	}
	res := Result{Order: order, Arclength: s, UpperBound: slices.Clone(sc.UpperBound)}

	switch order {
	case SmoothThenLimit:
		if err := res.smooth(f, sc, sc.UpperBound); err != nil {
			return Result{}, err
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		res.FinalVel = res.SmoothedVel
		if err := res.limit(f, sc, res.SmoothedVel); err != nil {
			return Result{}, err
		}
	case LimitThenSmooth:
		res.FinalVel = res.UpperBound
		if err := res.limit(f, sc, sc.UpperBound); err != nil {
			return Result{}, err
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if err := res.smooth(f, sc, res.FinalVel); err != nil {
			return Result{}, err
		}
		res.FinalVel = res.SmoothedVel
	default:
		return Result{}, errors.Errorf("unknown pipeline order %q", order)
	}
	return res, nil
}

func (res *Result) smooth(f *filter.Filter, sc Scenario, bound []float64) error {
	vel, acc, err := f.Smooth(sc.Ds, sc.InitialVel, sc.InitialAcc, sc.MaxAcc, sc.JerkAcc, bound)
	if err != nil {
		return errors.Wrap(err, "could not smooth velocity")
	}
	res.SmoothedVel = vel
	res.SmoothedAcc = acc
	return nil
}

// limit applies the obstacle limit to vel and stores it as the final profile.
// Recoverable failures leave FinalVel as it was.
func (res *Result) limit(f *filter.Filter, sc Scenario, vel []float64) error {
	if sc.Obstacle == nil {
		return nil
	}
	limited, err := f.LimitObstacle(sc.InitialVel, res.Arclength, vel, *sc.Obstacle)
	if err != nil {
		if Recoverable(err) {
			res.Fallback = true
			res.FallbackReason = err.Error()
			return nil
		}
		return errors.Wrap(err, "could not limit velocity for obstacle")
	}
	res.LimitedVel = limited
	res.FinalVel = limited
	return nil
}
