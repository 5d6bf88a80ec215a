// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"cmp"
	"math"
)

// SaturateInt16 converts a wide accumulator value to int16, clipping at the
// int16 bounds instead of wrapping.
func SaturateInt16(x int32) int16 {
	if x > math.MaxInt16 {
		return math.MaxInt16
	} else if x < math.MinInt16 {
		return math.MinInt16
	}

	return int16(x)
}

// ScalePercent scales a sample by percent/100 using integer arithmetic.
// The quotient is truncated toward zero, so 50% of -3 is -1.
func ScalePercent(sample int16, percent int32) int32 {
	return int32(sample) * percent / 100
}

// Clamp constrains v to the inclusive range [lo, hi].
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}
