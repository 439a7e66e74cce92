// Package filter shapes a velocity profile along an arclength parameterised
// path. It holds two independent entry points: Smooth, a jerk and acceleration
// limited forward/backward filter, and LimitObstacle, which slows the profile
// where a predicted obstacle crossing meets the ego vehicle in space and time.
//
// Both are pure functions of their inputs. A Filter only carries thresholds and
// an Observer, so one value can be shared between goroutines.
package filter

import (
	"github.com/pkg/errors"

	m "pfeifer.dev/velfilter/math"
)

const (
	FORWARD_STATIONARY_EPSILON  = 1e-6
	BACKWARD_STATIONARY_EPSILON = 1e-4
	MERGE_EPSILON               = 1e-6
	PROXIMITY_THRESHOLD         = 0.2 // m
	LOOSE_SPACE_WINDOW          = 3.0 // m
	TIGHT_SPACE_WINDOW          = 1.0 // m
	TIME_WINDOW                 = 0.5 // s
	ZERO_VELOCITY_EPSILON       = 1e-3
	MIN_SEED_VELOCITY           = 0.1 // m/s
)

const (
	OP_SMOOTH = "smooth"
	OP_LIMIT  = "limit"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNoIntersection = errors.New("obstacle does not intersect the path")
	ErrInterpolation  = m.ErrInterpolation
)

// Config holds the tunable thresholds. The forward and backward stationary
// epsilons differ on purpose and must not be unified.
type Config struct {
	ForwardStationaryEpsilon  float64
	BackwardStationaryEpsilon float64
	MergeEpsilon              float64
	ProximityThreshold        float64
	LooseSpaceWindow          float64
	TightSpaceWindow          float64
	TimeWindow                float64
	ZeroVelocityEpsilon       float64
	MinSeedVelocity           float64
	SeedWithInitialVelocity   bool
}

func DefaultConfig() Config {
	return Config{
		ForwardStationaryEpsilon:  FORWARD_STATIONARY_EPSILON,
		BackwardStationaryEpsilon: BACKWARD_STATIONARY_EPSILON,
		MergeEpsilon:              MERGE_EPSILON,
		ProximityThreshold:        PROXIMITY_THRESHOLD,
		LooseSpaceWindow:          LOOSE_SPACE_WINDOW,
		TightSpaceWindow:          TIGHT_SPACE_WINDOW,
		TimeWindow:                TIME_WINDOW,
		ZeroVelocityEpsilon:       ZERO_VELOCITY_EPSILON,
		MinSeedVelocity:           MIN_SEED_VELOCITY,
	}
}

type Filter struct {
	Config   Config
	Observer Observer
}

// New returns a Filter using cfg. A nil observer is replaced by NopObserver.
func New(cfg Config, observer Observer) *Filter {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Filter{Config: cfg, Observer: observer}
}

func (f *Filter) observer() Observer {
	if f.Observer == nil {
		return NopObserver{}
	}
	return f.Observer
}

func (f *Filter) fail(op string, err error) error {
	f.observer().Failed(op, err)
	return err
}
