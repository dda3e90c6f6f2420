package psd

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-tweezer/dsp/core"
	"github.com/cwbudde/algo-tweezer/dsp/signal"
	"github.com/cwbudde/algo-tweezer/internal/testutil"
)

func TestAliasedLorentzianLimit(t *testing.T) {
	for _, f := range []float64{1, 10, 100} {
		got := AliasedLorentzian(f, 50, 2, 1e7)
		testutil.RequireRelative(t, "aliased", got, Lorentzian(f, 50, 2), 1e-4)
	}
	// aliasing raises the spectrum towards Nyquist
	fs := 20000.0
	if AliasedLorentzian(fs/2, 200, 1, fs) <= Lorentzian(fs/2, 200, 1) {
		t.Fatal("aliased spectrum not above the Lorentzian at Nyquist")
	}
}

func TestGenerate(t *testing.T) {
	freqs := []float64{0, 10, 100}
	got := Generate(freqs, Model{Fc: 10, D: math.Pi * math.Pi * 100})
	testutil.RequireSliceNearlyEqual(t, got, []float64{1, 0.5, 100.0 / 10100}, 1e-12)
}

func TestFitLorentzianExact(t *testing.T) {
	freqs := make([]float64, 200)
	for i := range freqs {
		freqs[i] = float64(i+1) * 5
	}
	s := &Spectrum{Freq: freqs, Power: Generate(freqs, Model{Fc: 150, D: 0.3}), Blocks: 50, SampleRate: 4000}

	fit, err := FitLorentzian(s, FitConfig{FMin: 10, FMax: 900})
	if err != nil {
		t.Fatalf("FitLorentzian() error = %v", err)
	}
	testutil.RequireRelative(t, "Fc", fit.Fc, 150, 1e-9)
	testutil.RequireRelative(t, "D", fit.D, 0.3, 1e-9)
	if fit.ChiSquare > 1e-12 {
		t.Fatalf("ChiSquare = %g, want 0", fit.ChiSquare)
	}
	if fit.Bins != 179 || fit.FMin != 10 || fit.FMax != 900 {
		t.Fatalf("fit range = %d bins [%g, %g]", fit.Bins, fit.FMin, fit.FMax)
	}
	if !(fit.FcErr > 0) || !(fit.DErr > 0) {
		t.Fatalf("errors = %g, %g, want > 0", fit.FcErr, fit.DErr)
	}
}

func TestFitLorentzianOrnsteinUhlenbeck(t *testing.T) {
	const (
		fs = 20000.0
		fc = 200.0
		d  = 0.5
	)
	gen := signal.NewGeneratorWithOptions(
		[]core.ProcessorOption{core.WithSampleRate(fs)},
		signal.WithSeed(17),
	)
	x, err := gen.OrnsteinUhlenbeck(fc, d, 4096*64)
	if err != nil {
		t.Fatal(err)
	}
	s, err := Estimate(x, fs, EstimateConfig{BlockLength: 4096})
	if err != nil {
		t.Fatal(err)
	}

	fit, err := FitLorentzian(s, FitConfig{FMin: 10, FMax: 2000})
	if err != nil {
		t.Fatalf("FitLorentzian() error = %v", err)
	}
	testutil.RequireRelative(t, "Fc", fit.Fc, fc, 0.1)
	testutil.RequireRelative(t, "D", fit.D, d, 0.1)
	if fit.FcErr > 0.1*fit.Fc {
		t.Fatalf("FcErr = %g, too large for %d blocks", fit.FcErr, s.Blocks)
	}
	if fit.ChiSquare < 0.5 || fit.ChiSquare > 2 {
		t.Fatalf("ChiSquare = %g, want ~1", fit.ChiSquare)
	}
}

func TestFitLorentzianDegenerate(t *testing.T) {
	s := &Spectrum{Freq: []float64{1, 2, 3, 4}, Power: []float64{1, 1, 1, 1}, Blocks: 1}
	if _, err := FitLorentzian(s, FitConfig{FMin: 2, FMax: 3}); !errors.Is(err, ErrFitDegenerate) {
		t.Fatalf("err = %v, want ErrFitDegenerate", err)
	}
	// rising spectrum gives b < 0
	rising := &Spectrum{Freq: []float64{1, 2, 3, 4}, Power: []float64{1, 2, 3, 4}, Blocks: 1}
	if _, err := FitLorentzian(rising, FitConfig{}); !errors.Is(err, ErrFitDegenerate) {
		t.Fatalf("err = %v, want ErrFitDegenerate", err)
	}
}
