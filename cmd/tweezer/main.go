// Command tweezer simulates and analyses optical-tweezer traces.
//
// Usage:
//
//	tweezer simulate steps --duration 10 --rate 1000 > trace.txt
//	tweezer steps --filter-time 0.02 --min-step 8 trace.txt
//	tweezer psd --fmin 10 --fmax 5000 --rate 40000 psdx.txt
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cwbudde/algo-tweezer/internal/config"
	"github.com/cwbudde/algo-tweezer/internal/observe"
	"github.com/cwbudde/algo-tweezer/measure/psd"
	"github.com/cwbudde/algo-tweezer/measure/steps"
)

var (
	logLevel   = "info"
	configPath = ""
	jsonOutput = false
	traceSpans = false
)

// settings is loaded before every command runs.
var settings *config.Settings

var shutdownTracing observe.ShutdownFunc

func setupLogger(w io.Writer) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(w)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(w io.Writer, err error) {
	switch {
	case errors.Is(err, steps.ErrNoFilterTime):
		fmt.Fprintln(w, "\nError: no filter window given")
		fmt.Fprintln(w, "  - Pass --filter-time, or --filter-min-t and --filter-max-t to scan windows")
	case errors.Is(err, psd.ErrTooShort), errors.Is(err, psd.ErrBlockLength):
		fmt.Fprintln(w, "\nError: the trace does not fit the PSD block length")
		fmt.Fprintln(w, "  - Lower --block-length to a power of two below the trace length")
	case errors.Is(err, psd.ErrFitDegenerate):
		fmt.Fprintln(w, "\nError: the Lorentzian fit failed")
		fmt.Fprintln(w, "  - Widen --fmin/--fmax so the range covers the corner frequency")
	}
}

func main() {
	cmd := NewCommand()
	err := cmd.Execute()
	if shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if serr := shutdownTracing(ctx); serr != nil {
			logrus.WithError(serr).Warn("failed to flush trace spans")
		}
		cancel()
	}
	if err != nil {
		handleCmdError(os.Stderr, err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tweezer",
		Short: "tweezer analyses optical-tweezer traces",
		Long: `tweezer analyses optical-tweezer traces.

It simulates step and bead traces, detects steps with a forward-backward
nonlinear filter, and calibrates traps from the power spectral density.

Settings are read from --config (YAML, JSON or TOML) and TWEEZER_*
environment variables; flags override both.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := setupLogger(cmd.ErrOrStderr()); err != nil {
				return err
			}

			s, err := config.Load(configPath)
			if err != nil {
				return err
			}
			settings = s

			exporter := "none"
			if traceSpans {
				exporter = "stdout"
			}
			shutdownTracing, err = observe.Setup(cmd.Context(), observe.Config{
				ServiceName: "tweezer",
				Version:     Version,
				Exporter:    exporter,
				Writer:      cmd.ErrOrStderr(),
				Pretty:      true,
			})
			return err
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", "", "config file path")
	globalFlags.BoolVar(&jsonOutput, "json", false, "print results as JSON")
	globalFlags.BoolVar(&traceSpans, "trace", false, "export trace spans to stderr")

	cmd.AddCommand(
		NewVersionCommand(),
		NewSimulateCommand(),
		NewStepsCommand(),
		NewPSDCommand(),
	)

	return cmd
}
