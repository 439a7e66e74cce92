package math

import "math"

func Abs[T float64 | float32](val T) float64 {
	return math.Abs(float64(val))
}

// Finite reports whether val is neither NaN nor an infinity.
func Finite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}
