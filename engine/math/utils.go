package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

// Clamp limits f to [low, high] for any ordered type.
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// WrapDegrees maps an angle into [0, 360).
func WrapDegrees[T constraints.Float](deg T) T {
	w := T(gomath.Mod(float64(deg), 360))
	if w < 0 {
		w += 360
	}
	return w
}
