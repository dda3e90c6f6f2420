package fbnl

import (
	"context"
	"runtime"

	"github.com/cwbudde/algo-vecmath"
	"golang.org/x/sync/errgroup"
)

// BankResult holds a bank of filter runs with different windows and the
// element-wise means over the bank.
type BankResult struct {
	Windows []int
	Results []*Result // in the order of Windows

	FilteredMean []float64
	StepSizeMean []float64
	NoiseMean    []float64
	// StepMassMean is StepSizeMean / NoiseMean.
	StepMassMean []float64
}

// Bank filters data once per window. Every run uses its window as variance
// length; the remaining options apply to all runs. Runs execute
// concurrently, bounded by GOMAXPROCS. The cap noise of run i is seeded
// with seed+i, so a bank is reproducible for a fixed seed.
func Bank(ctx context.Context, data []float64, resolution float64, windows []int, opts ...Option) (*BankResult, error) {
	if len(windows) == 0 {
		return nil, ErrNoWindows
	}
	base := applyOptions(windows[0], opts)

	results := make([]*Result, len(windows))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, w := range windows {
		runOpts := append(append([]Option(nil), opts...),
			WithWindowVar(w),
			WithSeed(base.seed+int64(i)),
		)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := Filter(data, resolution, w, runOpts...)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	n := len(data)
	bank := &BankResult{
		Windows:      append([]int(nil), windows...),
		Results:      results,
		FilteredMean: make([]float64, n),
		StepSizeMean: make([]float64, n),
		NoiseMean:    make([]float64, n),
		StepMassMean: make([]float64, n),
	}
	scale := 1 / float64(len(windows))
	tmp := make([]float64, n)
	for _, r := range results {
		accumulate(bank.FilteredMean, r.Filtered, tmp, scale)
		accumulate(bank.StepSizeMean, r.StepSize, tmp, scale)
		accumulate(bank.NoiseMean, r.Noise, tmp, scale)
	}
	for i := range bank.StepMassMean {
		bank.StepMassMean[i] = bank.StepSizeMean[i] / bank.NoiseMean[i]
	}
	return bank, nil
}

// accumulate adds scale*src to dst.
func accumulate(dst, src, tmp []float64, scale float64) {
	vecmath.ScaleBlock(tmp, src, scale)
	vecmath.AddBlockInPlace(dst, tmp)
}
