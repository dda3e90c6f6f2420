package psd

import "math"

// Lorentzian returns the one-sided Lorentzian D / (π² (fc² + f²)).
func Lorentzian(f, fc, d float64) float64 {
	return d / (math.Pi * math.Pi * (fc*fc + f*f))
}

// AliasedLorentzian returns the one-sided spectrum of a harmonically
// trapped bead sampled at fs, including aliasing of the frequencies above
// Nyquist (Berg-Sørensen & Flyvbjerg 2004, eq. 35).
func AliasedLorentzian(f, fc, d, fs float64) float64 {
	c := math.Exp(-2 * math.Pi * fc / fs)
	dx2 := (1 - c*c) * d / (2 * math.Pi * fc)
	return 2 * dx2 / fs / (1 + c*c - 2*c*math.Cos(2*math.Pi*f/fs))
}

// Model is a Lorentzian spectrum. With SampleRate > 0 it is aliased.
type Model struct {
	Fc         float64
	D          float64
	SampleRate float64
}

// At returns the model power at f.
func (m Model) At(f float64) float64 {
	if m.SampleRate > 0 {
		return AliasedLorentzian(f, m.Fc, m.D, m.SampleRate)
	}
	return Lorentzian(f, m.Fc, m.D)
}

// Generate evaluates m at freqs.
func Generate(freqs []float64, m Model) []float64 {
	out := make([]float64, len(freqs))
	for i, f := range freqs {
		out[i] = m.At(f)
	}
	return out
}
