package signal

import (
	"fmt"
	"math"
	"slices"

	"github.com/cwbudde/algo-tweezer/dsp/core"
)

// LogSpacedInts returns up to n logarithmically spaced integers from start
// to stop (both inclusive before rounding). Duplicates caused by rounding are
// removed and the result is sorted ascending.
func LogSpacedInts(start, stop float64, n int) ([]int, error) {
	if start < 1 || stop < start {
		return nil, fmt.Errorf("signal: log spacing requires 1 <= start <= stop: start=%f stop=%f", start, stop)
	}
	if n < 1 {
		return nil, fmt.Errorf("signal: log spacing requires n >= 1: %d", n)
	}

	lo := math.Log10(start)
	hi := math.Log10(stop)
	out := make([]int, 0, n)
	for i := range n {
		e := lo
		if n > 1 {
			e = lo + (hi-lo)*float64(i)/float64(n-1)
		}
		out = append(out, core.RoundHalfEven(math.Pow(10, e)))
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// LogSpacedTimeWindows returns log spaced window lengths in samples for
// window times from tmin to tmax seconds. tmax defaults to tmin,
// resolution (samples per second) to 1 and n to 1 when zero.
func LogSpacedTimeWindows(tmin, tmax, resolution float64, n int) ([]int, error) {
	if tmax == 0 {
		tmax = tmin
	}
	if resolution == 0 {
		resolution = 1
	}
	if n == 0 {
		n = 1
	}
	return LogSpacedInts(tmin*resolution, tmax*resolution, n)
}
