package steps

import (
	"fmt"
	"math"
	"strconv"

	"github.com/cwbudde/algo-tweezer/dsp/filter/fbnl"
	"github.com/cwbudde/algo-tweezer/dsp/signal"
	timestats "github.com/cwbudde/algo-tweezer/stats/time"
)

// Analyse returns the step sizes, plateau heights and dwell points of the
// steps at indices. Plateau heights are the means of data over each
// plateau, ignoring NaNs.
func Analyse(indices []int, plateaus []signal.Segment, data []float64) (sizes, heights []float64, dwells []int) {
	dwells = make([]int, max(len(indices)-1, 0))
	for i := range dwells {
		dwells[i] = indices[i+1] - indices[i]
	}

	heights = make([]float64, len(plateaus))
	for i, p := range plateaus {
		heights[i] = timestats.Mean(data[p.Start:p.Stop])
	}

	sizes = make([]float64, max(len(heights)-1, 0))
	for i := range sizes {
		sizes[i] = heights[i+1] - heights[i]
	}
	return sizes, heights, dwells
}

type thresholdKind int

const (
	thresholdAdapt thresholdKind = iota
	thresholdStatic
	thresholdValue
)

// Threshold selects how the minimum size of a step is derived.
type Threshold struct {
	kind  thresholdKind
	value float64
}

var (
	// ThresholdAdapt scales yc with the mean noise around every step. It is
	// the zero value.
	ThresholdAdapt = Threshold{kind: thresholdAdapt}
	// ThresholdStatic scales yc with the mean noise of the whole trace.
	ThresholdStatic = Threshold{kind: thresholdStatic}
)

// ThresholdValue uses v as minimum step size for all steps. 0 disables the
// deletion of small steps.
func ThresholdValue(v float64) Threshold {
	return Threshold{kind: thresholdValue, value: v}
}

// ParseThreshold parses "adapt", "static" or a number.
func ParseThreshold(s string) (Threshold, error) {
	switch s {
	case "", "adapt":
		return ThresholdAdapt, nil
	case "static":
		return ThresholdStatic, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return Threshold{}, fmt.Errorf("%w: %q", ErrInvalidThreshold, s)
	}
	return ThresholdValue(v), nil
}

func (t Threshold) String() string {
	switch t.kind {
	case thresholdStatic:
		return "static"
	case thresholdValue:
		return strconv.FormatFloat(t.value, 'g', -1, 64)
	default:
		return "adapt"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Threshold) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Threshold) UnmarshalText(text []byte) error {
	v, err := ParseThreshold(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MinStepSizes returns the minimum size each step at indices must have to
// survive [DeleteSmallSteps].
func MinStepSizes(indices []int, yc float64, filter *fbnl.Result, t Threshold) []float64 {
	out := make([]float64, len(indices))
	switch t.kind {
	case thresholdStatic:
		for i := range out {
			out[i] = yc * filter.NoiseMean
		}
	case thresholdValue:
		for i := range out {
			out[i] = t.value
		}
	default:
		// The window reaches span samples back but span*Window ahead.
		span := filter.Window + filter.WindowVar
		lo := filter.Loss()
		hi := len(filter.Noise) - lo
		for i, idx := range indices {
			start := max(idx-span, lo)
			stop := min(idx+span*filter.Window, hi)
			mean := math.NaN()
			if start < stop {
				mean = timestats.Mean(filter.Noise[start:stop])
			}
			out[i] = yc * mean
		}
	}
	return out
}
