package psd

import (
	"fmt"
	"math/bits"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-tweezer/dsp/window"
	timestats "github.com/cwbudde/algo-tweezer/stats/time"
)

// DefaultBlockLength is the block length used when none is configured.
const DefaultBlockLength = 4096

// EstimateConfig configures Estimate.
type EstimateConfig struct {
	// BlockLength is the FFT length of every block, a power of two.
	// 0 uses DefaultBlockLength.
	BlockLength int
	Window      Window
	// Detrend removes the mean of every block before windowing.
	Detrend bool
}

// Spectrum is a one-sided power spectral density in signal units² per Hz.
type Spectrum struct {
	Freq  []float64
	Power []float64
	// Blocks is the number of independent periodograms averaged in every
	// bin; the relative standard deviation of Power is 1/sqrt(Blocks).
	Blocks     int
	SampleRate float64
}

// Estimate returns the averaged periodogram of data sampled at sampleRate.
// The data is split into non-overlapping blocks; samples after the last
// full block are ignored. Bins run from DC to Nyquist.
func Estimate(data []float64, sampleRate float64, cfg EstimateConfig) (*Spectrum, error) {
	n := cfg.BlockLength
	if n == 0 {
		n = DefaultBlockLength
	}
	if n < 4 || bits.OnesCount(uint(n)) != 1 {
		return nil, fmt.Errorf("%w: %d", ErrBlockLength, n)
	}
	if !(sampleRate > 0) {
		return nil, fmt.Errorf("%w: %g", ErrSampleRate, sampleRate)
	}
	blocks := len(data) / n
	if blocks < 1 {
		return nil, fmt.Errorf("%w: %d samples, block length %d", ErrTooShort, len(data), n)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("psd: failed to create FFT plan: %w", err)
	}

	win := cfg.Window.coefficients(n)
	winPower := window.Power(win)

	bins := n/2 + 1
	block := make([]float64, n)
	in := make([]complex128, n)
	out := make([]complex128, n)
	re := make([]float64, bins)
	im := make([]float64, bins)
	pw := make([]float64, bins)
	sum := make([]float64, bins)

	for b := range blocks {
		copy(block, data[b*n:(b+1)*n])
		if cfg.Detrend {
			mean := timestats.Mean(block)
			for i := range block {
				block[i] -= mean
			}
		}
		vecmath.MulBlockInPlace(block, win)
		for i, v := range block {
			in[i] = complex(v, 0)
		}
		if err := plan.Forward(out, in); err != nil {
			return nil, fmt.Errorf("psd: forward FFT: %w", err)
		}
		for k := range bins {
			re[k] = real(out[k])
			im[k] = imag(out[k])
		}
		vecmath.Power(pw, re, im)
		vecmath.AddBlockInPlace(sum, pw)
	}

	// one-sided: every bin but DC and Nyquist carries its mirror
	scale := 2 / (sampleRate * winPower * float64(blocks))
	power := make([]float64, bins)
	vecmath.ScaleBlock(power, sum, scale)
	power[0] /= 2
	power[bins-1] /= 2

	freq := make([]float64, bins)
	for k := range freq {
		freq[k] = float64(k) * sampleRate / float64(n)
	}
	return &Spectrum{Freq: freq, Power: power, Blocks: blocks, SampleRate: sampleRate}, nil
}

// Range returns the bins with fmin <= f <= fmax. fmax <= 0 means Nyquist.
func (s *Spectrum) Range(fmin, fmax float64) *Spectrum {
	if fmax <= 0 {
		fmax = s.SampleRate / 2
	}
	out := &Spectrum{Blocks: s.Blocks, SampleRate: s.SampleRate}
	for i, f := range s.Freq {
		if f >= fmin && f <= fmax {
			out.Freq = append(out.Freq, f)
			out.Power = append(out.Power, s.Power[i])
		}
	}
	return out
}

// Bin averages groups of n adjacent bins. A trailing partial group is
// dropped. Blocks is scaled by n.
func (s *Spectrum) Bin(n int) *Spectrum {
	if n <= 1 {
		return &Spectrum{
			Freq:       append([]float64(nil), s.Freq...),
			Power:      append([]float64(nil), s.Power...),
			Blocks:     s.Blocks,
			SampleRate: s.SampleRate,
		}
	}
	groups := len(s.Freq) / n
	out := &Spectrum{
		Freq:       make([]float64, groups),
		Power:      make([]float64, groups),
		Blocks:     s.Blocks * n,
		SampleRate: s.SampleRate,
	}
	for g := range groups {
		out.Freq[g] = timestats.Mean(s.Freq[g*n : (g+1)*n])
		out.Power[g] = timestats.Mean(s.Power[g*n : (g+1)*n])
	}
	return out
}
