package core

import "math"

// NaNs returns a slice of length n filled with NaN.
func NaNs(n int) []float64 {
	out := make([]float64, n)
	Fill(out, math.NaN())
	return out
}

// Fill sets all values in buf to v.
func Fill(buf []float64, v float64) {
	for i := range buf {
		buf[i] = v
	}
}

// Trim returns a copy of buf without n leading and n trailing samples.
func Trim(buf []float64, n int) []float64 {
	if n <= 0 {
		return append([]float64(nil), buf...)
	}
	if 2*n >= len(buf) {
		return nil
	}
	return append([]float64(nil), buf[n:len(buf)-n]...)
}
