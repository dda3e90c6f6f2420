package steps

import (
	"github.com/cwbudde/algo-tweezer/dsp/core"
	"github.com/cwbudde/algo-tweezer/dsp/signal"
)

// Steps describes the steps found in a trace and the plateaus between them.
//
// Indexing: step i separates Plateaus[i] and Plateaus[i+1], so there is one
// plateau more than steps. StepSizes[i] = PlateauHeights[i+1] -
// PlateauHeights[i] and DwellPoints[i] = Indices[i+1] - Indices[i]; the
// dwell of the outer plateaus is unknown.
type Steps struct {
	Indices []int
	// Up is true for a positive step.
	Up []bool
	// Bounds are the runs of the step mass beyond the threshold.
	Bounds         []signal.Segment
	Plateaus       []signal.Segment
	PlateauCenters []int

	StepSizes      []float64
	PlateauHeights []float64
	DwellPoints    []int
}

// Number returns the number of steps.
func (s *Steps) Number() int { return len(s.Indices) }

// clone returns a deep copy of s.
func (s *Steps) clone() *Steps {
	return &Steps{
		Indices:        append([]int(nil), s.Indices...),
		Up:             append([]bool(nil), s.Up...),
		Bounds:         append([]signal.Segment(nil), s.Bounds...),
		Plateaus:       append([]signal.Segment(nil), s.Plateaus...),
		PlateauCenters: append([]int(nil), s.PlateauCenters...),
		StepSizes:      append([]float64(nil), s.StepSizes...),
		PlateauHeights: append([]float64(nil), s.PlateauHeights...),
		DwellPoints:    append([]int(nil), s.DwellPoints...),
	}
}

// plateauCenter returns the rounded center of p clamped to the last sample.
func plateauCenter(p signal.Segment, n int) int {
	return min(core.RoundHalfEven(p.Center()), n-1)
}
