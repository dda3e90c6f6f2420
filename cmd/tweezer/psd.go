package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-tweezer/internal/traceio"
	"github.com/cwbudde/algo-tweezer/measure/calibration"
	"github.com/cwbudde/algo-tweezer/measure/psd"
)

type psdFlags struct {
	rate        float64
	column      int
	blockLength int
	window      string
	detrend     bool
	fmin, fmax  float64
	bin         int
	radius      float64
	temperature float64
	viscosity   float64
	height      float64
	traceName   string
	calibration string
	axis        string
	spectrum    string
}

type fitJSON struct {
	Fc        float64   `json:"fc"`
	FcErr     float64   `json:"fcErr"`
	D         float64   `json:"d"`
	DErr      float64   `json:"dErr"`
	ChiSquare jsonFloat `json:"chiSquare"`
	Bins      int       `json:"bins"`
	FMin      float64   `json:"fmin"`
	FMax      float64   `json:"fmax"`
}

type psdJSON struct {
	SampleRate float64           `json:"sampleRate"`
	Blocks     int               `json:"blocks"`
	Fit        fitJSON           `json:"fit"`
	Axis       calibration.Axis  `json:"calibration"`
	Reference  *calibration.Axis `json:"reference,omitempty"`
}

func parseDim(s string) (calibration.Dim, error) {
	switch s {
	case "x":
		return calibration.X, nil
	case "y":
		return calibration.Y, nil
	case "z":
		return calibration.Z, nil
	default:
		return 0, fmt.Errorf("unknown axis %q", s)
	}
}

func (f *psdFlags) configs(cmd *cobra.Command) (psd.EstimateConfig, psd.FitConfig, psd.Physical, int, error) {
	est, err := settings.PSD.Estimate()
	if err != nil {
		return est, psd.FitConfig{}, psd.Physical{}, 0, err
	}
	fit := settings.PSD.Fit()
	phys := settings.Physical
	bin := settings.PSD.Bin

	changed := cmd.Flags().Changed
	if changed("block-length") {
		est.BlockLength = f.blockLength
	}
	if changed("window") {
		if est.Window, err = psd.ParseWindow(f.window); err != nil {
			return est, fit, phys, 0, err
		}
	}
	if changed("detrend") {
		est.Detrend = f.detrend
	}
	if changed("fmin") {
		fit.FMin = f.fmin
	}
	if changed("fmax") {
		fit.FMax = f.fmax
	}
	if changed("bin") {
		bin = f.bin
	}
	if changed("radius") {
		phys.Radius = f.radius
	}
	if changed("temperature") {
		phys.Temperature = f.temperature
	}
	if changed("viscosity") {
		phys.Viscosity = f.viscosity
	}
	if changed("height") {
		phys.Height = f.height
	}
	return est, fit, phys, bin, nil
}

func NewPSDCommand() *cobra.Command {
	f := &psdFlags{}

	cmd := &cobra.Command{
		Use:   "psd [file]",
		Short: "Fit the power spectral density of a bead trace",
		Long: `Estimate the power spectral density of a bead trace, fit a Lorentzian
and derive the displacement sensitivity beta and the trap stiffness kappa.

With --trace the offset, conversion and inversion of the named record
trace in the config are applied first. With --calibration the result is
compared with the configured calibration of --axis.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			est, fitCfg, phys, bin, err := f.configs(cmd)
			if err != nil {
				return err
			}
			dim, err := parseDim(f.axis)
			if err != nil {
				return err
			}
			data, err := readTrace(cmd.InOrStdin(), args[0], f.column)
			if err != nil {
				return fmt.Errorf("failed to read trace: %w", err)
			}
			if f.traceName != "" {
				if _, ok := settings.Record.Setup(f.traceName); !ok {
					return fmt.Errorf("%w: no setup for %q in record.traces", calibration.ErrUnknownTrace, f.traceName)
				}
				rec := settings.Record
				rec.Data = map[string][]float64{f.traceName: data}
				if data, err = rec.Trace(f.traceName); err != nil {
					return err
				}
			}
			rate := sampleRate(cmd, f.rate)

			spec, err := psd.Estimate(data, rate, est)
			if err != nil {
				return err
			}
			spec = spec.Bin(bin)
			fit, err := psd.FitLorentzian(spec, fitCfg)
			if err != nil {
				return err
			}
			axis, err := psd.Calibrate(fit, phys)
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{"fc": fit.Fc, "d": fit.D, "chi2": fit.ChiSquare}).Info("fitted lorentzian")
			if fit.ChiSquare > 2 {
				logrus.Warnf("reduced chi-square %.2f: the spectrum is not Lorentzian in [%g, %g] Hz", fit.ChiSquare, fit.FMin, fit.FMax)
			}

			res := psdJSON{
				SampleRate: rate,
				Blocks:     spec.Blocks,
				Fit: fitJSON{
					Fc: fit.Fc, FcErr: fit.FcErr, D: fit.D, DErr: fit.DErr,
					ChiSquare: jsonFloat(fit.ChiSquare), Bins: fit.Bins, FMin: fit.FMin, FMax: fit.FMax,
				},
				Axis: axis,
			}
			if f.calibration != "" {
				ref, err := referenceAxis(cmd, f.calibration, dim)
				if err != nil {
					return err
				}
				res.Reference = &ref
			}
			if f.spectrum != "" {
				if err := writeSpectrum(f.spectrum, spec, fit.Model()); err != nil {
					return err
				}
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return printPSD(cmd, res)
		},
	}

	fl := cmd.Flags()
	fl.Float64Var(&f.rate, "rate", 0, "sample rate in Hz, record.sample_rate if unset")
	fl.IntVarP(&f.column, "column", "c", 0, "column of the trace in the file")
	fl.IntVar(&f.blockLength, "block-length", psd.DefaultBlockLength, "samples per block, a power of two")
	fl.StringVar(&f.window, "window", "rectangular", "block window (rectangular, hann, hamming, blackman)")
	fl.BoolVar(&f.detrend, "detrend", true, "remove the mean of every block")
	fl.Float64Var(&f.fmin, "fmin", 0, "lowest fitted frequency in Hz")
	fl.Float64Var(&f.fmax, "fmax", 0, "highest fitted frequency in Hz, Nyquist if 0")
	fl.IntVar(&f.bin, "bin", 1, "average this many adjacent bins")
	fl.Float64Var(&f.radius, "radius", 0, "bead radius in m")
	fl.Float64Var(&f.temperature, "temperature", 0, "temperature in K")
	fl.Float64Var(&f.viscosity, "viscosity", 0, "viscosity in Pa s")
	fl.Float64Var(&f.height, "height", 0, "bead height above the surface in m")
	fl.StringVar(&f.traceName, "trace", "", "record trace whose setup is applied")
	fl.StringVar(&f.calibration, "calibration", "", "configured calibration to compare with")
	fl.StringVar(&f.axis, "axis", "x", "axis of the compared calibration (x, y, z)")
	fl.StringVar(&f.spectrum, "spectrum", "", "write frequency, power and model columns to this file")
	return cmd
}

func referenceAxis(cmd *cobra.Command, name string, d calibration.Dim) (calibration.Axis, error) {
	reg, err := settings.Registry()
	if err != nil {
		return calibration.Axis{}, err
	}
	c, err := settings.Calibration(cmd.Context(), reg, name)
	if err != nil {
		return calibration.Axis{}, err
	}
	return c.Axis(d), nil
}

func writeSpectrum(path string, spec *psd.Spectrum, m psd.Model) error {
	m.SampleRate = spec.SampleRate
	model := psd.Generate(spec.Freq, m)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := traceio.Write(f, []string{"freq", "power", "model"}, spec.Freq, spec.Power, model); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printPSD(cmd *cobra.Command, res psdJSON) error {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, bold("Lorentzian fit:"))
	t := newTable(w, "fc [Hz]", "±", "D [units²/s]", "±", "χ²", "Bins", "Range [Hz]")
	t.row(res.Fit.Fc, res.Fit.FcErr, res.Fit.D, res.Fit.DErr, float64(res.Fit.ChiSquare), res.Fit.Bins,
		fmt.Sprintf("%s-%s", formatFloat(res.Fit.FMin), formatFloat(res.Fit.FMax)))
	if err := t.flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, bold("Calibration:"))
	t = newTable(w, "", "beta [nm/unit]", "kappa [pN/nm]")
	t.row("fit", res.Axis.Beta*1e9, res.Axis.Kappa*1e3)
	if res.Reference != nil {
		t.row("config", res.Reference.Beta*1e9, res.Reference.Kappa*1e3)
	}
	return t.flush()
}
