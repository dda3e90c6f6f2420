package core

import "math"

// RoundHalfEven rounds x to the nearest integer, resolving ties to the even
// neighbour. All index arithmetic in this module rounds this way so that
// window lengths and step positions are reproducible across packages.
func RoundHalfEven(x float64) int {
	return int(math.RoundToEven(x))
}

// CeilInt returns ceil(x) as an int.
func CeilInt(x float64) int {
	return int(math.Ceil(x))
}

// ClampInt limits value to the inclusive range [lo, hi].
func ClampInt(value, lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
