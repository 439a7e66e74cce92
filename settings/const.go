package settings

import (
	"time"
)

const (
	DEFAULT_SEGMENT_SIZE = 2 * 1024 * 1024
	LOOP_DELAY           = 50 * time.Millisecond
	KPH_TO_MS            = 1 / 3.6
	MPH_TO_MS            = 0.44704
)

const (
	ORDER_SMOOTH_THEN_LIMIT = "smooth_then_limit"
	ORDER_LIMIT_THEN_SMOOTH = "limit_then_smooth"
)

const (
	VELOCITY_FILTER_IN  = "velocityFilterIn"
	VELOCITY_FILTER_OUT = "velocityFilterOut"
)

var segmentSizes = map[string]int{
	VELOCITY_FILTER_IN:  DEFAULT_SEGMENT_SIZE,
	VELOCITY_FILTER_OUT: 4 * 1024 * 1024,
}

// GetSegmentSize returns the msgq buffer size used for the named channel.
func GetSegmentSize(name string) int {
	if size, ok := segmentSizes[name]; ok {
		return size
	}
	return DEFAULT_SEGMENT_SIZE
}
