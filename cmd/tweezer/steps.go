package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-tweezer/measure/steps"
	timestats "github.com/cwbudde/algo-tweezer/stats/time"
)

type stepsFlags struct {
	rate       float64
	column     int
	filterTime float64
	filterMinT float64
	filterMaxT float64
	number     int
	edginess   float64
	minStep    float64
	minDwell   float64
	threshold  string
	useMean    bool
	noCap      bool
	noSwitch   bool
}

// pipelineConfig merges the changed flags into the configured pipeline.
func (f *stepsFlags) pipelineConfig(cmd *cobra.Command) (steps.PipelineConfig, error) {
	cfg, err := settings.Steps.Pipeline()
	if err != nil {
		return cfg, err
	}
	changed := cmd.Flags().Changed
	if changed("filter-time") {
		cfg.FilterTime = f.filterTime
	}
	if changed("filter-min-t") {
		cfg.FilterMinT = f.filterMinT
	}
	if changed("filter-max-t") {
		cfg.FilterMaxT = f.filterMaxT
	}
	if changed("filter-number") {
		cfg.FilterNumber = f.number
	}
	if changed("edginess") {
		cfg.Edginess = f.edginess
	}
	if changed("min-step") {
		cfg.Analyse.ExpectedMinStepSize = f.minStep
	}
	if changed("min-dwell") {
		cfg.Analyse.ExpectedMinDwell = f.minDwell
	}
	if changed("threshold") {
		th, err := steps.ParseThreshold(f.threshold)
		if err != nil {
			return cfg, err
		}
		cfg.Analyse.Threshold = th
	}
	if changed("use-mean") {
		cfg.UseMean = f.useMean
	}
	if changed("no-cap") {
		cfg.NoCap = f.noCap
	}
	if changed("no-switch") {
		cfg.Analyse.SwitchAccept = !f.noSwitch
	}
	cfg.Analyse.Logger = logrus.StandardLogger()
	return cfg, nil
}

type stepJSON struct {
	Index       int       `json:"index"`
	Time        float64   `json:"time"`
	Up          bool      `json:"up"`
	Size        float64   `json:"size"`
	MinSize     jsonFloat `json:"minSize"`
	SD          jsonFloat `json:"sd"`
	Noise       jsonFloat `json:"noise"`
	NoiseOverSD jsonFloat `json:"noiseOverSd"`
}

type windowJSON struct {
	Window   int       `json:"window"`
	Time     float64   `json:"time"`
	ASNR     jsonFloat `json:"asnr"`
	MSNR     jsonFloat `json:"msnr"`
	STD      jsonFloat `json:"std"`
	Outliers int       `json:"outliers"`
	StepsPre int       `json:"stepsPre"`
	Steps    int       `json:"steps"`
}

type traceJSON struct {
	Valid  int       `json:"valid"`
	Mean   jsonFloat `json:"mean"`
	Std    jsonFloat `json:"std"`
	Median jsonFloat `json:"median"`
	Min    jsonFloat `json:"min"`
	Max    jsonFloat `json:"max"`
}

type stepsJSON struct {
	Samples        int          `json:"samples"`
	Trace          traceJSON    `json:"trace"`
	SampleRate     float64      `json:"sampleRate"`
	Window         int          `json:"window"`
	FilterTime     float64      `json:"filterTime"`
	YC             float64      `json:"yc"`
	MinStepSpacing int          `json:"minStepSpacing"`
	Threshold      string       `json:"threshold"`
	StepsPre       int          `json:"stepsPre"`
	Steps          []stepJSON   `json:"steps"`
	Plateaus       []float64    `json:"plateauHeights"`
	Dwells         []float64    `json:"dwellTimes"`
	Windows        []windowJSON `json:"windows"`
	Warnings       []string     `json:"warnings"`
}

func newStepsJSON(p *steps.Pipeline, rate float64) stepsJSON {
	st := p.Steps
	ts := timestats.Calculate(p.Filter.Data)
	out := stepsJSON{
		Samples: len(p.Filter.Data),
		Trace:   traceJSON{
			Valid:  ts.Valid,
			Mean:   jsonFloat(ts.Mean),
			Std:    jsonFloat(ts.Std),
			Median: jsonFloat(ts.Median),
			Min:    jsonFloat(ts.Min),
			Max:    jsonFloat(ts.Max),
		},
		SampleRate:     rate,
		Window:         p.Window,
		FilterTime:     float64(p.Window) / rate,
		YC:             p.YC,
		MinStepSpacing: p.MinStepSpacing,
		Threshold:      p.Threshold.String(),
		StepsPre:       p.StepsPre.Number(),
		Steps:          make([]stepJSON, st.Number()),
		Plateaus:       st.PlateauHeights,
		Dwells:         make([]float64, len(st.DwellPoints)),
		Windows:        make([]windowJSON, len(p.Windows)),
		Warnings:       p.Warnings,
	}
	for i := range out.Steps {
		out.Steps[i] = stepJSON{
			Index:       st.Indices[i],
			Time:        float64(st.Indices[i]) / rate,
			Up:          st.Up[i],
			Size:        st.StepSizes[i],
			MinSize:     jsonFloat(p.MinSizes[i]),
			SD:          jsonFloat(p.Quality.SD[i]),
			Noise:       jsonFloat(p.Quality.Noise[i]),
			NoiseOverSD: jsonFloat(p.Quality.NoiseOverSD[i]),
		}
	}
	for i, d := range st.DwellPoints {
		out.Dwells[i] = float64(d) / rate
	}
	for i, w := range p.Windows {
		out.Windows[i] = windowJSON{
			Window:   w.Window,
			Time:     w.Time,
			ASNR:     jsonFloat(w.ASNR),
			MSNR:     jsonFloat(w.MSNR),
			STD:      jsonFloat(w.STD),
			Outliers: w.Outliers,
			StepsPre: w.StepsPre,
			Steps:    w.Steps,
		}
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	return out
}

func NewStepsCommand() *cobra.Command {
	f := &stepsFlags{}

	cmd := &cobra.Command{
		Use:   "steps [file]",
		Short: "Detect steps in a trace",
		Long: `Detect steps in a trace with the forward-backward nonlinear filter.

The trace is read from column --column of file, or of stdin for "-".
Without --filter-time a bank of windows between --filter-min-t and
--filter-max-t is scanned and the window with the least step-mass noise
is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.pipelineConfig(cmd)
			if err != nil {
				return err
			}
			data, err := readTrace(cmd.InOrStdin(), args[0], f.column)
			if err != nil {
				return fmt.Errorf("failed to read trace: %w", err)
			}
			rate := sampleRate(cmd, f.rate)

			p, err := steps.FilterFindAnalyse(cmd.Context(), data, rate, cfg)
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"window":   p.Window,
				"stepsPre": p.StepsPre.Number(),
				"steps":    p.Steps.Number(),
			}).Info("detected steps")

			res := newStepsJSON(p, rate)
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return printSteps(cmd, res)
		},
	}

	fl := cmd.Flags()
	fl.Float64Var(&f.rate, "rate", 0, "sample rate in Hz, record.sample_rate if unset")
	fl.IntVarP(&f.column, "column", "c", 0, "column of the trace in the file")
	fl.Float64Var(&f.filterTime, "filter-time", 0, "filter window in s")
	fl.Float64Var(&f.filterMinT, "filter-min-t", 0, "shortest scanned window in s")
	fl.Float64Var(&f.filterMaxT, "filter-max-t", 0, "longest scanned window in s")
	fl.IntVar(&f.number, "filter-number", 1, "number of scanned windows")
	fl.Float64Var(&f.edginess, "edginess", 1, "filter nonlinearity")
	fl.Float64Var(&f.minStep, "min-step", 0, "expected minimum step size")
	fl.Float64Var(&f.minDwell, "min-dwell", 0, "expected minimum dwell time in s")
	fl.StringVar(&f.threshold, "threshold", "adapt", "minimum step size (adapt, static or a value)")
	fl.BoolVar(&f.useMean, "use-mean", false, "detect steps on the mean step mass of all windows")
	fl.BoolVar(&f.noCap, "no-cap", false, "do not cap the trace ends")
	fl.BoolVar(&f.noSwitch, "no-switch", false, "drop close steps of opposite direction")
	return cmd
}

func printSteps(cmd *cobra.Command, res stepsJSON) error {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, bold("Trace:"))
	fmt.Fprintf(w, "  samples: %d, mean: %s, std: %s, range: %s to %s\n", res.Samples,
		formatFloat(float64(res.Trace.Mean)), formatFloat(float64(res.Trace.Std)),
		formatFloat(float64(res.Trace.Min)), formatFloat(float64(res.Trace.Max)))
	fmt.Fprintln(w)
	fmt.Fprintln(w, bold("Filter:"))
	fmt.Fprintf(w, "  window: %d samples (%s s), yc: %s, threshold: %s\n",
		res.Window, formatFloat(res.FilterTime), formatFloat(res.YC), res.Threshold)
	fmt.Fprintf(w, "  steps: %d found, %d kept\n", res.StepsPre, len(res.Steps))

	if len(res.Windows) > 1 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, bold("Windows:"))
		t := newTable(w, "Window", "Time [s]", "ASNR", "MSNR", "STD", "Outliers", "Steps")
		for _, s := range res.Windows {
			t.row(s.Window, s.Time, float64(s.ASNR), float64(s.MSNR), float64(s.STD), s.Outliers, s.Steps)
		}
		if err := t.flush(); err != nil {
			return err
		}
	}

	if len(res.Steps) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, bold("Steps:"))
		t := newTable(w, "Index", "Time [s]", "Size", "Min size", "SD", "Noise/SD")
		for _, s := range res.Steps {
			t.row(s.Index, s.Time, s.Size, float64(s.MinSize), float64(s.SD), float64(s.NoiseOverSD))
		}
		if err := t.flush(); err != nil {
			return err
		}
	}

	return nil
}
