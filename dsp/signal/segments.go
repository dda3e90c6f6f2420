package signal

// Segment is a half-open index range [Start, Stop).
type Segment struct {
	Start int
	Stop  int
}

// Len returns the number of samples in the segment.
func (s Segment) Len() int { return s.Stop - s.Start }

// Center returns the midpoint of the segment.
func (s Segment) Center() float64 {
	return float64(s.Start) + float64(s.Stop-s.Start)/2
}

// SegmentOptions filters the runs returned by ContiguousSegments. Zero
// values disable the corresponding rule.
type SegmentOptions struct {
	// MinLengthHigh drops runs shorter than this many samples.
	MinLengthHigh int
	// MinDistanceCenter fuses runs whose centers are closer than this.
	MinDistanceCenter int
	// MinLengthLow fuses runs separated by fewer than this many false samples.
	MinLengthLow int
}

// ContiguousSegments returns the runs of true values in mask. The rules of
// opts are applied in the order high length, center distance, low length.
func ContiguousSegments(mask []bool, opts SegmentOptions) []Segment {
	var segs []Segment
	start := -1
	for i, v := range mask {
		switch {
		case v && start < 0:
			start = i
		case !v && start >= 0:
			segs = append(segs, Segment{Start: start, Stop: i})
			start = -1
		}
	}
	if start >= 0 {
		segs = append(segs, Segment{Start: start, Stop: len(mask)})
	}

	if opts.MinLengthHigh > 1 {
		kept := segs[:0]
		for _, s := range segs {
			if s.Len() >= opts.MinLengthHigh {
				kept = append(kept, s)
			}
		}
		segs = kept
	}
	if opts.MinDistanceCenter > 0 {
		segs = fuse(segs, func(prev, next Segment) bool {
			return next.Center()-prev.Center() < float64(opts.MinDistanceCenter)
		})
	}
	if opts.MinLengthLow > 1 {
		segs = fuse(segs, func(prev, next Segment) bool {
			return next.Start-prev.Stop < opts.MinLengthLow
		})
	}
	return segs
}

func fuse(segs []Segment, join func(prev, next Segment) bool) []Segment {
	if len(segs) < 2 {
		return segs
	}
	out := []Segment{segs[0]}
	for _, s := range segs[1:] {
		last := &out[len(out)-1]
		if join(*last, s) {
			last.Stop = s.Stop
			continue
		}
		out = append(out, s)
	}
	return out
}

// IndexSegments pairs consecutive indices into segments:
// [i0, i1, i2] becomes [{i0, i1}, {i1, i2}].
func IndexSegments(indices []int) []Segment {
	if len(indices) < 2 {
		return nil
	}
	out := make([]Segment, len(indices)-1)
	for i := range out {
		out[i] = Segment{Start: indices[i], Stop: indices[i+1]}
	}
	return out
}
