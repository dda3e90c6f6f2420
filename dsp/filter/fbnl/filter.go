package fbnl

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-tweezer/dsp/core"
	"github.com/cwbudde/algo-tweezer/dsp/signal"
	timestats "github.com/cwbudde/algo-tweezer/stats/time"
)

// fbRatioLimit bounds the ratio of summed forward and backward weights of a
// well-behaved filter run.
const fbRatioLimit = 1.15

// outlierIQRFactor selects strong outliers of the step mass.
const outlierIQRFactor = 3.0

// Result holds the filtered trace and all intermediate series. Every slice
// has the length of Data; samples without a defined predictor are NaN.
type Result struct {
	Data       []float64
	Resolution float64
	Window     int
	WindowVar  int
	P          float64

	Filtered []float64
	SF, SB   []float64 // forward / backward prediction variances
	F, B     []float64 // normalised forward / backward weights
	XF, XB   []float64 // forward / backward predictors

	StepSize  []float64 // XB - XF
	Noise     []float64 // sqrt(F*SF + B*SB)
	StepMass  []float64 // StepSize / Noise
	NoiseMean float64

	// ASNR and MSNR are the mean and median of |outlier step mass| / STD,
	// NaN when no outliers were found.
	ASNR float64
	MSNR float64
	// STD is the population standard deviation of the non-outlier step mass.
	STD      float64
	Outliers []bool

	// FBRatio is sum(F) / sum(B) over the samples with defined weights,
	// NaN when there are none.
	FBRatio float64
}

// Loss returns the number of samples at each end of an uncapped run that
// have no defined output.
func (r *Result) Loss() int { return r.Window + r.WindowVar - 1 }

// FBRatioCritical reports whether forward and backward weights are
// unbalanced by more than 15 %.
func (r *Result) FBRatioCritical() bool {
	return r.FBRatio > fbRatioLimit || r.FBRatio < 1/fbRatioLimit
}

// OutlierCount returns the number of samples flagged as outliers.
func (r *Result) OutlierCount() int {
	n := 0
	for _, o := range r.Outliers {
		if o {
			n++
		}
	}
	return n
}

// Filter runs the forward-backward nonlinear filter with the given window
// length over data sampled at resolution Hz.
func Filter(data []float64, resolution float64, window int, opts ...Option) (*Result, error) {
	cfg := applyOptions(window, opts)
	if err := cfg.validate(len(data), resolution); err != nil {
		return nil, err
	}

	var r *Result
	if cfg.cap {
		r = filterCapped(data, cfg)
	} else {
		r = filterRaw(data, cfg)
	}
	r.Resolution = resolution
	r.analyse()
	return r, nil
}

func filterCapped(data []float64, cfg config) *Result {
	loss := cfg.loss()
	inspect := core.CeilInt(float64(cfg.window) / 2)
	rng := rand.New(rand.NewSource(cfg.seed))
	capped := signal.CapData(data, loss, inspect, rng)

	r := filterRaw(capped, cfg)
	r.Data = append([]float64(nil), data...)
	r.Filtered = core.Trim(r.Filtered, loss)
	r.SF = core.Trim(r.SF, loss)
	r.SB = core.Trim(r.SB, loss)
	r.F = core.Trim(r.F, loss)
	r.B = core.Trim(r.B, loss)
	r.XF = core.Trim(r.XF, loss)
	r.XB = core.Trim(r.XB, loss)
	return r
}

// filterRaw filters data without capping. Outputs are defined on
// [loss, len(data)-loss).
func filterRaw(data []float64, cfg config) *Result {
	n := len(data)
	w, wv := cfg.window, cfg.windowVar
	loss := cfg.loss()

	xf := core.NaNs(n)
	xb := core.NaNs(n)
	x := timestats.MovingMean(data, w)
	for i := w; i < n-w; i++ {
		xf[i] = x[i-w] // mean(data[i-w:i])
		xb[i] = x[i+1] // mean(data[i+1:i+1+w])
	}

	sf := core.NaNs(n)
	sb := core.NaNs(n)
	lo, hi := loss, n-loss
	if lo < hi {
		var accF, accB float64
		for j := w; j <= loss; j++ {
			d := data[j] - xf[j]
			accF += d * d
		}
		for j := loss; j < loss+wv; j++ {
			d := data[j] - xb[j]
			accB += d * d
		}
		sf[lo], sb[lo] = accF, accB
		for i := lo + 1; i < hi; i++ {
			in := data[i] - xf[i]
			out := data[i-wv] - xf[i-wv]
			accF += in*in - out*out
			in = data[i+wv-1] - xb[i+wv-1]
			out = data[i-1] - xb[i-1]
			accB += in*in - out*out
			sf[i], sb[i] = math.Max(accF, 0), math.Max(accB, 0)
		}
	}

	f := core.NaNs(n)
	b := core.NaNs(n)
	filtered := core.NaNs(n)
	var sumF, sumB float64
	invWV := 1 / float64(wv)
	for i := lo; i < hi; i++ {
		sf[i] *= invWV
		sb[i] *= invWV
		fi := math.Pow(sf[i], -cfg.p)
		bi := math.Pow(sb[i], -cfg.p)
		total := fi + bi
		f[i] = fi / total
		b[i] = bi / total
		// zero variance on both sides leaves the weights NaN
		if !math.IsNaN(f[i]) && !math.IsNaN(b[i]) {
			sumF += f[i]
			sumB += b[i]
		}
	}
	if lo < hi {
		// filtered = f*xf + b*xb on the defined range
		tmp := make([]float64, hi-lo)
		vecmath.MulBlock(filtered[lo:hi], f[lo:hi], xf[lo:hi])
		vecmath.MulBlock(tmp, b[lo:hi], xb[lo:hi])
		vecmath.AddBlockInPlace(filtered[lo:hi], tmp)
	}

	return &Result{
		Data:      data,
		Window:    w,
		WindowVar: wv,
		P:         cfg.p,
		Filtered:  filtered,
		SF:        sf,
		SB:        sb,
		F:         f,
		B:         b,
		XF:        xf,
		XB:        xb,
		FBRatio:   sumF / sumB,
	}
}

// analyse derives step size, noise, step mass and the outlier statistics
// from the filter series.
func (r *Result) analyse() {
	n := len(r.Data)
	r.StepSize = make([]float64, n)
	r.Noise = make([]float64, n)
	r.StepMass = make([]float64, n)
	for i := range n {
		r.StepSize[i] = r.XB[i] - r.XF[i]
		r.Noise[i] = math.Sqrt(r.F[i]*r.SF[i] + r.B[i]*r.SB[i])
		r.StepMass[i] = r.StepSize[i] / r.Noise[i]
	}
	r.NoiseMean = timestats.Mean(r.Noise)

	sm := make([]float64, 0, n)
	for _, v := range r.StepMass {
		if !math.IsNaN(v) {
			sm = append(sm, v)
		}
	}
	threshold := timestats.IQROutlierThreshold(sm, outlierIQRFactor)

	var outliers, rest []float64
	for _, v := range sm {
		if math.Abs(v) > threshold {
			outliers = append(outliers, v)
		} else {
			rest = append(rest, v)
		}
	}
	r.STD = timestats.Std(rest)
	r.ASNR, r.MSNR = math.NaN(), math.NaN()
	if len(outliers) > 0 {
		snr := make([]float64, len(outliers))
		for i, v := range outliers {
			snr[i] = math.Abs(v / r.STD)
		}
		r.ASNR = timestats.Mean(snr)
		r.MSNR = timestats.Median(snr)
	}

	r.Outliers = make([]bool, n)
	for i, v := range r.StepMass {
		if math.IsNaN(v) {
			v = 0
		}
		r.Outliers[i] = math.Abs(v) > threshold
	}
}
