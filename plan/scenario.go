package plan

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"pfeifer.dev/velfilter/filter"
	"pfeifer.dev/velfilter/settings"
)

type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// Scenario is one planning request: the kinematic state and limits, the
// upper bound velocity per sample and, optionally, a single obstacle.
type Scenario struct {
	Ds         float64          `json:"ds" yaml:"ds"`
	InitialVel float64          `json:"initial_vel" yaml:"initial_vel"`
	InitialAcc float64          `json:"initial_acc" yaml:"initial_acc"`
	MaxAcc     float64          `json:"max_acc" yaml:"max_acc"`
	JerkAcc    float64          `json:"jerk_acc" yaml:"jerk_acc"`
	UpperBound []float64        `json:"upper_bound" yaml:"upper_bound"`
	Arclength  []float64        `json:"arclength,omitempty" yaml:"arclength,omitempty"`
	Obstacle   *filter.Obstacle `json:"obstacle,omitempty" yaml:"obstacle,omitempty"`
}

func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func Decode(r io.Reader, format Format) (Scenario, error) {
	var sc Scenario
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&sc); err != nil {
			return sc, errors.Wrap(err, "could not decode yaml scenario")
		}
	default:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&sc); err != nil {
			return sc, errors.Wrap(err, "could not decode json scenario")
		}
	}
	return sc, nil
}

func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, errors.Wrapf(err, "could not read scenario %s", path)
	}
	sc, err := Decode(bytes.NewReader(data), FormatForPath(path))
	if err != nil {
		return sc, errors.Wrapf(err, "scenario %s", path)
	}
	return sc, nil
}

// WithDefaults fills zero sample spacing and kinematic limits from s.
func (sc Scenario) WithDefaults(s settings.FilterSettings) Scenario {
	if sc.Ds == 0 {
		sc.Ds = s.Ds
	}
	if sc.MaxAcc == 0 {
		sc.MaxAcc = s.MaxAcc
	}
	if sc.JerkAcc == 0 {
		sc.JerkAcc = s.JerkAcc
	}
	return sc
}

// Samples returns the arclength of every upper bound sample. Without an
// explicit arclength the samples are spaced Ds apart starting at zero.
func (sc Scenario) Samples() ([]float64, error) {
	if len(sc.Arclength) == 0 {
		s := make([]float64, len(sc.UpperBound))
		for i := range s {
			s[i] = float64(i) * sc.Ds
		}
		return s, nil
	}
	if len(sc.Arclength) != len(sc.UpperBound) {
		return nil, errors.Wrapf(filter.ErrInvalidInput, "%d arclength samples but %d upper bound values", len(sc.Arclength), len(sc.UpperBound))
	}
	for i := 1; i < len(sc.Arclength); i++ {
		spacing := sc.Arclength[i] - sc.Arclength[i-1]
		if math.Abs(spacing-sc.Ds) > 1e-6*math.Max(1, sc.Ds) {
			slog.Warn("arclength spacing differs from ds, smoothing assumes uniform samples", "index", i, "spacing", spacing, "ds", sc.Ds)
			break
		}
	}
	return sc.Arclength, nil
}
