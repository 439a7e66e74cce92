package observer

import (
	"log/slog"

	"pfeifer.dev/velfilter/filter"
)

// Log reports filter events through slog. Successful runs are logged at
// debug level, failures as warnings since callers are expected to fall back.
type Log struct {
	Logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{Logger: logger}
}

func (l *Log) Smoothed(rep filter.SmoothReport) {
	l.Logger.Debug("smoothed velocity profile",
		"samples", rep.Samples,
		"forward_clipped", rep.ForwardClipped,
		"backward_clipped", rep.BackwardClipped,
		"forward_run", rep.ForwardRun,
	)
}

func (l *Log) Intersected(rep filter.IntersectionReport) {
	l.Logger.Debug("intersected obstacle",
		"obstacle", rep.ObstacleID,
		"points", rep.ObstaclePoints,
		"intersections", rep.Intersections,
		"cut_in", rep.CutIn,
		"cut_out", rep.CutOut,
	)
}

func (l *Log) Limited(rep filter.LimitReport) {
	l.Logger.Debug("limited velocity for obstacle",
		"obstacle", rep.ObstacleID,
		"samples", rep.Samples,
		"tight", rep.TightMatches,
		"loose", rep.LooseMatches,
		"reduced", rep.Reduced,
	)
}

func (l *Log) Failed(op string, err error) {
	l.Logger.Warn("velocity filter failed", "op", op, "error", err)
}
