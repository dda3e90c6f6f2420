package psd_test

import (
	"fmt"

	"github.com/cwbudde/algo-tweezer/measure/psd"
)

func ExampleFitLorentzian() {
	freqs := make([]float64, 400)
	for i := range freqs {
		freqs[i] = float64(i+1) * 2.5
	}
	spectrum := &psd.Spectrum{
		Freq:       freqs,
		Power:      psd.Generate(freqs, psd.Model{Fc: 120, D: 0.02}),
		Blocks:     64,
		SampleRate: 2000,
	}

	fit, err := psd.FitLorentzian(spectrum, psd.FitConfig{FMin: 5, FMax: 800})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("fc=%.1f Hz D=%.3f\n", fit.Fc, fit.D)
	// Output:
	// fc=120.0 Hz D=0.020
}
