package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"pfeifer.dev/velfilter/filter"
	"pfeifer.dev/velfilter/params"
	"pfeifer.dev/velfilter/utils"
)

var (
	Settings = FilterSettings{}
)

type FilterSettings struct {
	Ds                        float64 `json:"ds"`
	MaxAcc                    float64 `json:"max_acc"`
	JerkAcc                   float64 `json:"jerk_acc"`
	ProximityThreshold        float64 `json:"proximity_threshold"`
	LooseSpaceWindow          float64 `json:"loose_space_window"`
	TightSpaceWindow          float64 `json:"tight_space_window"`
	TimeWindow                float64 `json:"time_window"`
	ForwardStationaryEpsilon  float64 `json:"forward_stationary_epsilon"`
	BackwardStationaryEpsilon float64 `json:"backward_stationary_epsilon"`
	MergeEpsilon              float64 `json:"merge_epsilon"`
	ZeroVelocityEpsilon       float64 `json:"zero_velocity_epsilon"`
	MinSeedVelocity           float64 `json:"min_seed_velocity"`
	SeedWithInitialVelocity   bool    `json:"seed_with_initial_velocity"`
	PipelineOrder             string  `json:"pipeline_order"`
	LogLevel                  string  `json:"log_level"`
	MetricsAddr               string  `json:"metrics_addr"`
}

func (s *FilterSettings) Default() {
	cfg := filter.DefaultConfig()
	s.Ds = 1.0
	s.MaxAcc = 1.5
	s.JerkAcc = 1.0
	s.ProximityThreshold = cfg.ProximityThreshold
	s.LooseSpaceWindow = cfg.LooseSpaceWindow
	s.TightSpaceWindow = cfg.TightSpaceWindow
	s.TimeWindow = cfg.TimeWindow
	s.ForwardStationaryEpsilon = cfg.ForwardStationaryEpsilon
	s.BackwardStationaryEpsilon = cfg.BackwardStationaryEpsilon
	s.MergeEpsilon = cfg.MergeEpsilon
	s.ZeroVelocityEpsilon = cfg.ZeroVelocityEpsilon
	s.MinSeedVelocity = cfg.MinSeedVelocity
	s.SeedWithInitialVelocity = false
	s.PipelineOrder = ORDER_SMOOTH_THEN_LIMIT
	s.LogLevel = "error"
	s.MetricsAddr = ""
}

// Comfort keeps the default thresholds but lowers the kinematic limits for a
// gentler ride.
func (s *FilterSettings) Comfort() {
	s.Default()
	s.MaxAcc = 0.8
	s.JerkAcc = 0.4
}

func (s FilterSettings) FilterConfig() filter.Config {
	return filter.Config{
		ForwardStationaryEpsilon:  s.ForwardStationaryEpsilon,
		BackwardStationaryEpsilon: s.BackwardStationaryEpsilon,
		MergeEpsilon:              s.MergeEpsilon,
		ProximityThreshold:        s.ProximityThreshold,
		LooseSpaceWindow:          s.LooseSpaceWindow,
		TightSpaceWindow:          s.TightSpaceWindow,
		TimeWindow:                s.TimeWindow,
		ZeroVelocityEpsilon:       s.ZeroVelocityEpsilon,
		MinSeedVelocity:           s.MinSeedVelocity,
		SeedWithInitialVelocity:   s.SeedWithInitialVelocity,
	}
}

func (s *FilterSettings) Load(store *params.Store) (success bool) {
	s.Default() // set defaults so settings not already in param are defaulted
	data, err := store.Get(params.VELOCITY_FILTER_SETTINGS)
	if err != nil {
		utils.Logwe(err)
		return false
	}

	err = s.Unmarshal(data)
	if err != nil {
		utils.Loge(err)
		return false
	}

	s.SetLogLevel()

	return true
}

func (s *FilterSettings) LoadWithRetries(store *params.Store, tries int) {
	for range tries {
		if s.Load(store) {
			break
		}
		time.Sleep(1 * time.Second)
	}
	utils.Loge(s.Save(store))
}

func (s *FilterSettings) Save(store *params.Store) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not marshal settings")
	}
	err = store.Put(params.VELOCITY_FILTER_SETTINGS, data)
	if err != nil {
		return errors.Wrap(err, "could not save settings")
	}
	return nil
}

func (s *FilterSettings) Unmarshal(data []byte) error {
	err := json.Unmarshal(data, s)
	if err != nil {
		return errors.Wrap(err, "could not unmarshal settings")
	}
	return s.Validate()
}

func (s *FilterSettings) Validate() error {
	if !(s.Ds > 0) {
		return errors.Errorf("ds must be positive, got %g", s.Ds)
	}
	if !(s.MaxAcc > 0) {
		return errors.Errorf("max_acc must be positive, got %g", s.MaxAcc)
	}
	if s.JerkAcc < 0 {
		return errors.Errorf("jerk_acc must not be negative, got %g", s.JerkAcc)
	}
	if s.TightSpaceWindow > s.LooseSpaceWindow {
		return errors.Errorf("tight_space_window %g is wider than loose_space_window %g", s.TightSpaceWindow, s.LooseSpaceWindow)
	}
	switch s.PipelineOrder {
	case ORDER_SMOOTH_THEN_LIMIT, ORDER_LIMIT_THEN_SMOOTH:
	default:
		return errors.Errorf("unknown pipeline_order %q", s.PipelineOrder)
	}
	return nil
}

// Keys lists the settings by their JSON name in declaration order.
func (s FilterSettings) Keys() []string {
	data, _ := json.Marshal(s)
	var ordered []string
	dec := json.NewDecoder(bytes.NewReader(data))
	// skip the opening brace, then read key/value pairs
	if _, err := dec.Token(); err != nil {
		return nil
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return ordered
		}
		ordered = append(ordered, tok.(string))
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return ordered
		}
	}
	return ordered
}

// Get returns the current value of a setting formatted for display.
func (s FilterSettings) Get(key string) (string, error) {
	values, err := s.values()
	if err != nil {
		return "", err
	}
	val, ok := values[key]
	if !ok {
		return "", errors.Errorf("unknown setting %q", key)
	}
	return fmt.Sprint(val), nil
}

// Set parses value according to the type of the named setting and applies it.
// The settings are left unchanged if the result does not validate.
func (s *FilterSettings) Set(key string, value string) error {
	values, err := s.values()
	if err != nil {
		return err
	}
	current, ok := values[key]
	if !ok {
		return errors.Errorf("unknown setting %q", key)
	}

	switch current.(type) {
	case float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return errors.Wrapf(err, "setting %s expects a number", key)
		}
		values[key] = f
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(err, "setting %s expects true or false", key)
		}
		values[key] = b
	default:
		values[key] = value
	}

	data, err := json.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "could not marshal settings")
	}
	updated := *s
	if err := updated.Unmarshal(data); err != nil {
		return err
	}
	*s = updated
	if key == "log_level" {
		s.SetLogLevel()
	}
	return nil
}

func (s FilterSettings) values() (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "could not marshal settings")
	}
	values := map[string]any{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(err, "could not unmarshal settings")
	}
	return values, nil
}

func (s *FilterSettings) SetLogLevel() {
	slog.SetLogLoggerLevel(ParseLogLevel(s.LogLevel))
}

func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
