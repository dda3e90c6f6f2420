package steps

import (
	"math"

	"github.com/cwbudde/algo-tweezer/dsp/core"
	"github.com/cwbudde/algo-tweezer/dsp/signal"
)

// DeleteSmallSteps removes, from left to right, every step whose absolute
// size is below its entry in minSizes. The plateaus around a deleted step
// are fused with a length-weighted height, the sizes of the neighbouring
// steps and the dwell points are updated, and the previous step is checked
// again since its size changed. steps is not modified.
func DeleteSmallSteps(steps *Steps, minSizes []float64) *Steps {
	s := steps.clone()
	limits := append([]float64(nil), minSizes...)

	n := s.Number()
	for i := 0; i < n; i++ {
		if !(math.Abs(s.StepSizes[i]) < limits[i]) {
			continue
		}

		left, right := s.Plateaus[i], s.Plateaus[i+1]
		fused := signal.Segment{Start: left.Start, Stop: right.Stop}
		l, r := float64(left.Len()), float64(right.Len())
		height := (s.PlateauHeights[i]*l + s.PlateauHeights[i+1]*r) / (l + r)

		s.Plateaus[i+1] = fused
		s.PlateauCenters[i+1] = core.RoundHalfEven(fused.Center())
		s.PlateauHeights[i+1] = height
		s.Plateaus = remove(s.Plateaus, i)
		s.PlateauCenters = remove(s.PlateauCenters, i)
		s.PlateauHeights = remove(s.PlateauHeights, i)

		if i >= 1 {
			s.StepSizes[i-1] = height - s.PlateauHeights[i-1]
		}
		if i < n-1 {
			s.StepSizes[i+1] = s.PlateauHeights[i+1] - height
		}
		s.StepSizes = remove(s.StepSizes, i)

		switch {
		case i < n-1:
			if i >= 1 {
				s.DwellPoints[i-1] += s.DwellPoints[i]
			}
			s.DwellPoints = remove(s.DwellPoints, i)
		case n >= 2:
			// last step: drop the dwell that ended at it
			s.DwellPoints = s.DwellPoints[:len(s.DwellPoints)-1]
		}

		s.Indices = remove(s.Indices, i)
		s.Up = remove(s.Up, i)
		s.Bounds = remove(s.Bounds, i)
		limits = remove(limits, i)
		n--

		// recheck the previous step, its size changed
		i = max(i-2, -1)
	}
	return s
}

func remove[T any](s []T, i int) []T {
	return append(s[:i], s[i+1:]...)
}
