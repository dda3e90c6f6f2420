package psd

import (
	"fmt"
	"math"
)

// FitConfig bounds the fitted frequency range. FMax <= 0 means Nyquist.
type FitConfig struct {
	FMin float64
	FMax float64
}

// Fit is the result of FitLorentzian.
type Fit struct {
	Fc    float64
	D     float64
	FcErr float64
	DErr  float64
	// ChiSquare is the reduced χ² of the relative residuals; about 1 for
	// a good fit.
	ChiSquare float64
	Bins      int
	FMin      float64
	FMax      float64
}

// Model returns the fitted (unaliased) Lorentzian.
func (f *Fit) Model() Model { return Model{Fc: f.Fc, D: f.D} }

// FitLorentzian fits fc and D of a one-sided Lorentzian to s within cfg's
// frequency range. It solves the linear least-squares problem
// 1/P = a + b f² with weights P² analytically (Berg-Sørensen & Flyvbjerg
// 2004, sec. IV), so fc = sqrt(a/b) and D = π²/b. The standard errors
// assume Power scatters with relative deviation 1/sqrt(Blocks).
func FitLorentzian(s *Spectrum, cfg FitConfig) (*Fit, error) {
	r := s.Range(cfg.FMin, cfg.FMax)
	n := len(r.Freq)
	if n < 3 {
		return nil, fmt.Errorf("%w: %d bins in [%g, %g] Hz", ErrFitDegenerate, n, cfg.FMin, cfg.FMax)
	}

	// s_pq = sum f^(2p) P^q
	var s01, s02, s11, s12, s22 float64
	for i, f := range r.Freq {
		p := r.Power[i]
		f2 := f * f
		s01 += p
		s02 += p * p
		s11 += f2 * p
		s12 += f2 * p * p
		s22 += f2 * f2 * p * p
	}
	det := s02*s22 - s12*s12
	if !(det > 0) {
		return nil, fmt.Errorf("%w: singular normal equations", ErrFitDegenerate)
	}
	a := (s01*s22 - s11*s12) / det
	b := (s02*s11 - s12*s01) / det
	if !(a > 0) || !(b > 0) {
		return nil, fmt.Errorf("%w: a=%g b=%g", ErrFitDegenerate, a, b)
	}

	fc := math.Sqrt(a / b)
	d := math.Pi * math.Pi / b

	k := float64(max(s.Blocks, 1))
	varA := s22 / det / k
	varB := s02 / det / k
	covAB := -s12 / det / k
	varFc := (varA/(fc*fc) + fc*fc*varB - 2*covAB) / (4 * b * b)

	var chi float64
	for i, f := range r.Freq {
		model := Lorentzian(f, fc, d)
		rel := (r.Power[i] - model) / model
		chi += rel * rel
	}
	chi *= k / float64(n-2)

	return &Fit{
		Fc:        fc,
		D:         d,
		FcErr:     math.Sqrt(math.Max(varFc, 0)),
		DErr:      math.Pi * math.Pi * math.Sqrt(varB) / (b * b),
		ChiSquare: chi,
		Bins:      n,
		FMin:      r.Freq[0],
		FMax:      r.Freq[n-1],
	}, nil
}
