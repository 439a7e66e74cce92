// Package chart draws velocity profiles against arclength.
package chart

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"pfeifer.dev/velfilter/plan"
)

type Series struct {
	Name   string
	Values []float64
}

// Profiles lists every velocity profile present in res, in drawing order.
func Profiles(res plan.Result) []Series {
	series := []Series{{Name: "upper bound", Values: res.UpperBound}}
	if len(res.SmoothedVel) > 0 {
		series = append(series, Series{Name: "smoothed", Values: res.SmoothedVel})
	}
	if len(res.LimitedVel) > 0 {
		series = append(series, Series{Name: "obstacle limited", Values: res.LimitedVel})
	}
	if len(res.FinalVel) > 0 {
		series = append(series, Series{Name: "final", Values: res.FinalVel})
	}
	return series
}

func subtitle(res plan.Result) string {
	if res.Fallback {
		return string(res.Order) + " (fallback: " + res.FallbackReason + ")"
	}
	return string(res.Order)
}

// Render writes the chart to path, as HTML or PNG depending on its extension.
func Render(path string, res plan.Result, title string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return SaveHTML(path, res, title)
	case ".png":
		return SavePNG(path, res, title)
	}
	return errors.Errorf("unsupported chart format %q", filepath.Ext(path))
}
