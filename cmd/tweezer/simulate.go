package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-tweezer/dsp/core"
	"github.com/cwbudde/algo-tweezer/dsp/signal"
	"github.com/cwbudde/algo-tweezer/internal/traceio"
)

func NewSimulateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate traces",
		Long: `Simulate traces and write them as text columns.

Use "-" or omit --out to write to stdout.`,
	}
	cmd.AddCommand(newSimulateStepsCommand(), newSimulateBeadCommand())
	return cmd
}

// sampleRate returns the --rate flag if given, else the configured record
// sample rate.
func sampleRate(cmd *cobra.Command, rate float64) float64 {
	if cmd.Flags().Changed("rate") {
		return rate
	}
	return settings.Record.SampleRate
}

func openOut(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func newSimulateStepsCommand() *cobra.Command {
	var (
		cfg      = signal.DefaultStepConfig()
		rate     float64
		seed     int64
		movement string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "steps",
		Short: "Simulate a stepping motor with Gaussian noise",
		Long: `Simulate a stepping motor with Gaussian noise.

Writes the columns data (noisy trace) and clean (noise-free trace).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := signal.ParseMovement(movement)
			if err != nil {
				return err
			}
			cfg.Movement = m

			g := signal.NewGeneratorWithOptions(
				[]core.ProcessorOption{core.WithSampleRate(sampleRate(cmd, rate))},
				signal.WithSeed(seed),
			)
			sim, err := g.Steps(cfg)
			if err != nil {
				return fmt.Errorf("failed to simulate steps: %w", err)
			}
			logrus.WithFields(logrus.Fields{
				"samples": len(sim.Data),
				"steps":   sim.Number,
			}).Info("simulated steps")
			logrus.Debugf("step indices: %v", sim.Indices)

			w, closeOut, err := openOut(cmd, out)
			if err != nil {
				return err
			}
			if err := traceio.Write(w, []string{"data", "clean"}, sim.Noisy(), sim.Data); err != nil {
				_ = closeOut()
				return err
			}
			return closeOut()
		},
	}

	f := cmd.Flags()
	f.Float64Var(&cfg.Duration, "duration", cfg.Duration, "trace duration in s")
	f.Float64Var(&rate, "rate", 0, "sample rate in Hz, record.sample_rate if unset")
	f.Float64Var(&cfg.DwellTime, "dwell", cfg.DwellTime, "mean dwell time in s")
	f.Float64Var(&cfg.StepSize, "step-size", cfg.StepSize, "step size")
	f.Float64Var(&cfg.SNR, "snr", cfg.SNR, "step size over noise standard deviation")
	f.StringVar(&movement, "movement", cfg.Movement.String(), "movement (diffusive, monotonic)")
	f.BoolVar(&cfg.ConstantDwell, "constant-dwell", false, "use constant instead of exponential dwell times")
	f.Int64Var(&seed, "seed", 1, "random seed")
	f.StringVarP(&out, "out", "o", "", "output file")
	return cmd
}

func newSimulateBeadCommand() *cobra.Command {
	var (
		fc, d   float64
		rate    float64
		samples int
		seed    int64
		out     string
	)

	cmd := &cobra.Command{
		Use:   "bead",
		Short: "Simulate the position of a trapped bead",
		Long: `Simulate the position of a bead in a harmonic trap.

The one-sided PSD of the trace is an aliased Lorentzian with corner
frequency --fc and diffusion constant --d.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := signal.NewGeneratorWithOptions(
				[]core.ProcessorOption{core.WithSampleRate(sampleRate(cmd, rate))},
				signal.WithSeed(seed),
			)
			x, err := g.OrnsteinUhlenbeck(fc, d, samples)
			if err != nil {
				return fmt.Errorf("failed to simulate bead: %w", err)
			}
			logrus.WithFields(logrus.Fields{"samples": len(x), "fc": fc, "d": d}).Info("simulated bead")

			w, closeOut, err := openOut(cmd, out)
			if err != nil {
				return err
			}
			if err := traceio.Write(w, []string{"x"}, x); err != nil {
				_ = closeOut()
				return err
			}
			return closeOut()
		},
	}

	f := cmd.Flags()
	f.Float64Var(&fc, "fc", 100, "corner frequency in Hz")
	f.Float64Var(&d, "d", 1, "diffusion constant in units²/s")
	f.Float64Var(&rate, "rate", 0, "sample rate in Hz, record.sample_rate if unset")
	f.IntVar(&samples, "samples", 1<<18, "number of samples")
	f.Int64Var(&seed, "seed", 1, "random seed")
	f.StringVarP(&out, "out", "o", "", "output file")
	return cmd
}
