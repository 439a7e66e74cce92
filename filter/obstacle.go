package filter

import (
	"math"
	"slices"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	m "pfeifer.dev/velfilter/math"
)

// ObstaclePoint is a predicted occupancy of the ego path: the obstacle is
// expected at arclength S (m) at time T (s).
type ObstaclePoint struct {
	S float64 `json:"s" yaml:"s"`
	T float64 `json:"t" yaml:"t"`
}

// Obstacle is the predicted crossing of a single obstacle, ordered by index.
type Obstacle struct {
	ID     string          `json:"id,omitempty" yaml:"id,omitempty"`
	Points []ObstaclePoint `json:"points" yaml:"points"`
}

func (o Obstacle) Arclengths() []float64 {
	return lo.Map(o.Points, func(p ObstaclePoint, _ int) float64 { return p.S })
}

func (o Obstacle) Times() []float64 {
	return lo.Map(o.Points, func(p ObstaclePoint, _ int) float64 { return p.T })
}

// Intersection is the part of an obstacle trajectory lying on the ego path.
// Arclength holds the matched ego samples, Time the obstacle's predicted times.
type Intersection struct {
	Arclength []float64
	Time      []float64
}

// Conflict is the intersection resampled onto the ego samples
// arclength[CutIn:CutOut].
type Conflict struct {
	CutIn  int
	CutOut int
	S      []float64
	T      []float64
}

// Intersect keeps the obstacle points whose nearest ego sample lies after the
// first one and within the proximity threshold.
func (f *Filter) Intersect(arclength []float64, obstacle Obstacle) Intersection {
	var in Intersection
	for _, p := range obstacle.Points {
		idx, dist, found := m.NearestIndex(arclength, p.S)
		if !found || idx == 0 || !(dist < f.Config.ProximityThreshold) {
			continue
		}
		in.Arclength = append(in.Arclength, arclength[idx])
		in.Time = append(in.Time, p.T)
	}
	return in
}

// conflict finds the cut-in and cut-out samples of an intersection and
// interpolates the obstacle's crossing time onto the samples between them.
func (f *Filter) conflict(arclength []float64, in Intersection) (Conflict, error) {
	if len(in.Arclength) == 0 {
		return Conflict{}, ErrNoIntersection
	}
	first := in.Arclength[0]
	last := in.Arclength[len(in.Arclength)-1]

	cutIn, found := m.FirstIndex(arclength, func(s float64) bool { return s >= first })
	if !found {
		return Conflict{}, errors.Wrapf(ErrNoIntersection, "no sample at or after cut-in %g", first)
	}
	cutOut, found := m.FirstIndex(arclength, func(s float64) bool { return s > last })
	if !found {
		cutOut = len(arclength)
	}
	// an intersection running backwards along the path leaves nothing inside
	cutOut = max(cutOut, cutIn)

	c := Conflict{CutIn: cutIn, CutOut: cutOut, S: slices.Clone(arclength[cutIn:cutOut])}
	t, err := m.Interpolate(in.Arclength, in.Time, c.S)
	if err != nil {
		return c, errors.Wrap(err, "could not interpolate crossing times")
	}
	c.T = t
	// the tight window follows a slope between two conflict samples
	if len(c.S) < 2 {
		return c, errors.Wrapf(ErrInterpolation, "conflict covers %d sample(s)", len(c.S))
	}
	return c, nil
}

// nearest searches the conflict for the sample closest to (s, t). A candidate
// must be inside the loose window and improve on both the space and the time
// gap found so far.
func (f *Filter) nearest(c Conflict, s, t float64) (j int, ds float64, found bool) {
	nearestS := f.Config.LooseSpaceWindow
	nearestT := f.Config.TimeWindow
	j = -1
	for k := range c.S {
		deltaS := math.Abs(c.S[k] - s)
		deltaT := math.Abs(c.T[k] - t)
		if deltaS < nearestS && deltaT < nearestT {
			nearestS = deltaS
			nearestT = deltaT
			j = k
		}
	}
	return j, nearestS, j >= 0
}

// conflictVelocity picks the velocity for a sample matched to conflict sample
// j. Inside the tight window it follows the obstacle's local speed, otherwise
// it is the average speed reaching the end of the conflict when the obstacle
// leaves it.
func (f *Filter) conflictVelocity(c Conflict, j int, deltaS, s, t float64) (v float64, tight bool) {
	if deltaS < f.Config.TightSpaceWindow {
		a, b := j, j+1
		if b >= len(c.S) {
			a, b = j-1, j
		}
		return (c.S[b] - c.S[a]) / (c.T[b] - c.T[a]), true
	}
	end := len(c.S) - 1
	return (c.S[end] - s) / (c.T[end] - t), false
}

// LimitObstacle reduces maxVels where the ego vehicle, driving the profile,
// would reach the obstacle's predicted crossing at the same time. The returned
// profile always ends at zero. Interpolation failures are reported as
// ErrInterpolation and an obstacle that never touches the path as
// ErrNoIntersection; in both cases the caller should fall back to maxVels.
func (f *Filter) LimitObstacle(initialVel float64, arclength []float64, maxVels []float64, obstacle Obstacle) ([]float64, error) {
	if err := validateLimit(arclength, maxVels, obstacle); err != nil {
		return nil, f.fail(OP_LIMIT, err)
	}

	in := f.Intersect(arclength, obstacle)
	c, err := f.conflict(arclength, in)
	f.observer().Intersected(IntersectionReport{
		ObstacleID:     obstacle.ID,
		ObstaclePoints: len(obstacle.Points),
		Intersections:  len(in.Arclength),
		CutIn:          c.CutIn,
		CutOut:         c.CutOut,
	})
	if err != nil {
		return nil, f.fail(OP_LIMIT, errors.Wrapf(err, "obstacle %q", obstacle.ID))
	}

	cfg := f.Config
	report := LimitReport{ObstacleID: obstacle.ID, Samples: len(arclength)}
	filtered := slices.Clone(maxVels)

	seed := maxVels[0]
	if cfg.SeedWithInitialVelocity {
		seed = initialVel
	}
	t := arclength[1] / math.Max(seed, cfg.MinSeedVelocity)

	for i := 1; i < len(arclength)-1; i++ {
		ds := arclength[i+1] - arclength[i]
		bound := maxVels[i]

		if bound < cfg.ZeroVelocityEpsilon || i > c.CutOut {
			if bound >= cfg.ZeroVelocityEpsilon {
				t += ds / bound
			}
			continue
		}

		tTmp := t + ds/bound
		j, deltaS, found := f.nearest(c, arclength[i], tTmp)
		if !found {
			t = tTmp
			continue
		}

		v, tight := f.conflictVelocity(c, j, deltaS, arclength[i], t)
		if tight {
			report.TightMatches++
		} else {
			report.LooseMatches++
		}
		if math.IsNaN(v) || v <= 0 {
			// the obstacle gives no usable speed to follow
			t = tTmp
			continue
		}
		// only ever lowers the bound, so t follows the stored velocity rather
		// than a faster conflict speed
		if v < bound {
			filtered[i] = v
			report.Reduced++
		}
		t += ds / filtered[i]
	}
	filtered[len(filtered)-1] = 0

	f.observer().Limited(report)
	return filtered, nil
}

func validateLimit(arclength []float64, maxVels []float64, obstacle Obstacle) error {
	if len(arclength) < 2 {
		return errors.Wrapf(ErrInvalidInput, "arclength needs at least 2 samples, got %d", len(arclength))
	}
	if len(arclength) != len(maxVels) {
		return errors.Wrapf(ErrInvalidInput, "%d arclength samples but %d velocities", len(arclength), len(maxVels))
	}
	if !m.StrictlyIncreasing(arclength) {
		return errors.Wrap(ErrInvalidInput, "arclength is not strictly increasing")
	}
	for i, v := range maxVels {
		if !m.Finite(v) {
			return errors.Wrapf(ErrInvalidInput, "max velocity %d is %g", i, v)
		}
	}
	if len(obstacle.Points) == 0 {
		return errors.Wrap(ErrInvalidInput, "obstacle trajectory is empty")
	}
	return nil
}
