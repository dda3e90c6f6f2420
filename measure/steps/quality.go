package steps

import (
	"math"

	"github.com/cwbudde/algo-tweezer/dsp/core"
	"github.com/cwbudde/algo-tweezer/dsp/filter/fbnl"
	timestats "github.com/cwbudde/algo-tweezer/stats/time"
)

// Quality rates every step. Noise is the mean filter noise and SD the
// standard deviation of the data around the plateau heights, both taken
// over the inner halves of the two plateaus adjoining a step. For a clean
// step both agree; a plateau hiding another step has SD > Noise.
type Quality struct {
	SD          []float64
	Noise       []float64
	NoiseOverSD []float64
}

// Qualities computes the quality of every step. Steps with fewer than two
// samples to rate get NaN.
func Qualities(steps *Steps, filter *fbnl.Result) Quality {
	n := steps.Number()
	q := Quality{
		SD:          make([]float64, n),
		Noise:       make([]float64, n),
		NoiseOverSD: make([]float64, n),
	}
	data, noise := filter.Data, filter.Noise
	w := filter.Window
	lo := filter.Loss()
	hi := len(noise) - lo
	clamp := func(i int) int { return core.ClampInt(i, 0, len(data)) }

	for i := range n {
		pl, pr := steps.Plateaus[i], steps.Plateaus[i+1]
		hl, hr := steps.PlateauHeights[i], steps.PlateauHeights[i+1]

		// right half of the left plateau, window away from the step
		startL := max(core.RoundHalfEven(pl.Center()), pl.Start+w, lo)
		stopL := max(pl.Stop-w, startL)
		// left half of the right plateau
		stopR := min(core.RoundHalfEven(float64(pr.Stop)-float64(pr.Len())/2), pr.Stop-w, hi)
		startR := min(pr.Start+w, stopR)
		startL, stopL = clamp(startL), clamp(stopL)
		startR, stopR = clamp(startR), clamp(stopR)

		total := stopL - startL + stopR - startR
		var ss float64
		for _, v := range data[startL:stopL] {
			ss += (v - hl) * (v - hl)
		}
		for _, v := range data[startR:stopR] {
			ss += (v - hr) * (v - hr)
		}
		q.SD[i] = math.NaN()
		if total >= 2 {
			q.SD[i] = math.Sqrt(ss / float64(total-1))
		}

		ns := make([]float64, 0, total)
		ns = append(ns, noise[startL:stopL]...)
		ns = append(ns, noise[startR:stopR]...)
		q.Noise[i] = timestats.Mean(ns)
		q.NoiseOverSD[i] = q.Noise[i] / q.SD[i]
	}
	return q
}
