package steps

import (
	"cmp"
	"math"
	"slices"

	"github.com/cwbudde/algo-tweezer/dsp/core"
	"github.com/cwbudde/algo-tweezer/dsp/signal"
)

// FindOptions tunes FindSteps. Zero values select the defaults.
type FindOptions struct {
	// MaxStepWidth is the widest run two fused candidates may span.
	// Defaults to MinStepSpacing.
	MaxStepWidth int
	// MinStepSpacing (E) is the minimum distance between the centers of two
	// steps. Closer candidates are fused or dropped. Defaults to 1.
	MinStepSpacing int
	// MinWidth (H) drops runs shorter than this. Defaults to 1.
	MinWidth int
	// MinGap (L) fuses runs of the same sign separated by fewer samples at
	// the threshold level. Defaults to 1.
	MinGap int
	// SwitchAccept keeps a candidate closer than MinStepSpacing if its
	// direction is opposite to the previous step.
	SwitchAccept bool
}

func (o FindOptions) withDefaults() FindOptions {
	if o.MinStepSpacing < 1 {
		o.MinStepSpacing = 1
	}
	if o.MaxStepWidth < 1 {
		o.MaxStepWidth = o.MinStepSpacing
	}
	o.MinWidth = max(o.MinWidth, 1)
	o.MinGap = max(o.MinGap, 1)
	return o
}

type candidate struct {
	bounds signal.Segment
	up     bool
}

// FindSteps locates steps in stepMass. Runs above yc are positive steps,
// runs below -yc negative ones; NaNs count as zero. The index of a step is
// the step-mass weighted center of its run. Only Indices, Up, Bounds,
// Plateaus and PlateauCenters of the result are set; see [Analyse].
func FindSteps(stepMass []float64, yc float64, opts FindOptions) *Steps {
	opts = opts.withDefaults()
	n := len(stepMass)
	sm := make([]float64, n)
	pos := make([]bool, n)
	neg := make([]bool, n)
	for i, v := range stepMass {
		if math.IsNaN(v) {
			v = 0
		}
		sm[i] = v
		pos[i] = v > yc
		neg[i] = v < -yc
	}

	segOpts := signal.SegmentOptions{
		MinLengthHigh:     opts.MinWidth,
		MinDistanceCenter: 1,
		MinLengthLow:      opts.MinGap,
	}
	var cands []candidate
	for _, s := range signal.ContiguousSegments(pos, segOpts) {
		cands = append(cands, candidate{bounds: s, up: true})
	}
	for _, s := range signal.ContiguousSegments(neg, segOpts) {
		cands = append(cands, candidate{bounds: s, up: false})
	}
	slices.SortStableFunc(cands, func(a, b candidate) int {
		return cmp.Compare(a.bounds.Start, b.bounds.Start)
	})
	cands = deleteCloseCenters(cands, opts)

	steps := &Steps{
		Indices: make([]int, len(cands)),
		Up:      make([]bool, len(cands)),
		Bounds:  make([]signal.Segment, len(cands)),
	}
	for i, c := range cands {
		steps.Indices[i] = centerOfMass(sm, c.bounds)
		steps.Up[i] = c.up
		steps.Bounds[i] = c.bounds
	}
	steps.Plateaus, steps.PlateauCenters = plateaus(steps.Indices, n)
	return steps
}

// deleteCloseCenters walks the sorted candidates and resolves every one
// whose center lies within MinStepSpacing of the last kept candidate: it
// is kept on a direction switch (with SwitchAccept), fused into the last
// one when both point the same way and the fused run is not wider than
// MaxStepWidth, and dropped otherwise.
func deleteCloseCenters(cands []candidate, opts FindOptions) []candidate {
	if len(cands) < 2 {
		return cands
	}
	out := []candidate{cands[0]}
	for _, c := range cands[1:] {
		last := &out[len(out)-1]
		if c.bounds.Center()-last.bounds.Center() >= float64(opts.MinStepSpacing) {
			out = append(out, c)
			continue
		}
		switch {
		case c.up != last.up && opts.SwitchAccept:
			out = append(out, c)
		case c.up == last.up && c.bounds.Stop-last.bounds.Start <= opts.MaxStepWidth:
			last.bounds.Stop = max(last.bounds.Stop, c.bounds.Stop)
		}
	}
	return out
}

// centerOfMass returns the step-mass weighted mean index of s, rounded and
// clamped into s. A run whose weights cancel yields its midpoint.
func centerOfMass(sm []float64, s signal.Segment) int {
	var sum, weighted float64
	for i := s.Start; i < s.Stop; i++ {
		sum += sm[i]
		weighted += float64(i) * sm[i]
	}
	idx := core.RoundHalfEven(s.Center() - 0.5)
	if sum != 0 {
		idx = core.RoundHalfEven(weighted / sum)
	}
	return core.ClampInt(idx, s.Start, s.Stop-1)
}

// plateaus returns the ranges between the steps at indices in a trace of n
// samples and their centers.
func plateaus(indices []int, n int) ([]signal.Segment, []int) {
	bounds := make([]int, 0, len(indices)+2)
	bounds = append(bounds, 0)
	bounds = append(bounds, indices...)
	bounds = append(bounds, n)
	ps := signal.IndexSegments(bounds)
	centers := make([]int, len(ps))
	for i, p := range ps {
		centers[i] = plateauCenter(p, n)
	}
	return ps, centers
}
