package steps

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cwbudde/algo-tweezer/dsp/core"
	"github.com/cwbudde/algo-tweezer/dsp/filter/fbnl"
	"github.com/cwbudde/algo-tweezer/dsp/signal"
)

const tracerName = "github.com/cwbudde/algo-tweezer/measure/steps"

// autoWindowScale shrinks the window of least step-mass noise to a more
// conservative filter window.
const autoWindowScale = 4.0 / 5.0

// PipelineConfig configures FilterFindAnalyse. Times are in seconds.
type PipelineConfig struct {
	// FilterTime fixes the filter window. When zero the window is chosen
	// from the scanned bank.
	FilterTime float64
	// FilterMinT and FilterMaxT bound the scanned window times. FilterMinT
	// defaults to min(FilterTime, FilterMaxT), FilterMaxT to FilterTime.
	FilterMinT float64
	FilterMaxT float64
	// FilterNumber is the number of log spaced windows scanned. Defaults
	// to 1.
	FilterNumber int
	// Edginess is the filter nonlinearity p. 0 uses 1.
	Edginess float64
	// NoCap disables capping the trace ends.
	NoCap bool
	// Seed seeds the random caps.
	Seed int64
	// UseMean detects steps on the bank mean of the step mass instead of
	// the step mass of the selected window.
	UseMean bool

	Analyse AnalyseConfig
}

// DefaultPipelineConfig returns a configuration scanning nothing; set at
// least FilterTime or FilterMinT.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		FilterNumber: 1,
		Seed:         1,
		Analyse:      DefaultAnalyseConfig(),
	}
}

// WindowStat summarises one scanned filter window.
type WindowStat struct {
	Window   int
	Time     float64
	ASNR     float64
	MSNR     float64
	STD      float64
	Outliers int
	StepsPre int
	Steps    int
}

// Pipeline is the result of FilterFindAnalyse.
type Pipeline struct {
	*Result
	// Windows lists the scanned windows in ascending order.
	Windows []WindowStat
	// Window is the window used for the final filter run.
	Window int
}

// FilterFindAnalyse scans a bank of filter windows over data, picks the
// filter window, refilters the data with it and finds and analyses the
// steps. Without FilterTime the chosen window is 4/5 of the mean of the
// windows with the least step-mass noise (STD).
func FilterFindAnalyse(ctx context.Context, data []float64, resolution float64, cfg PipelineConfig) (_ *Pipeline, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "steps.FilterFindAnalyse",
		trace.WithAttributes(
			attribute.Int("samples", len(data)),
			attribute.Float64("resolution", resolution),
		),
	)
	defer func() { endSpan(span, err) }()

	log := loggerOrDiscard(cfg.Analyse.Logger)

	windows, fixed, err := scanWindows(resolution, cfg)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.IntSlice("windows", windows))

	opts := []fbnl.Option{fbnl.WithSeed(cfg.Seed)}
	if cfg.Edginess != 0 {
		opts = append(opts, fbnl.WithEdginess(cfg.Edginess))
	}
	if cfg.NoCap {
		opts = append(opts, fbnl.WithoutCap())
	}

	bank, err := runBank(ctx, data, resolution, windows, opts)
	if err != nil {
		return nil, err
	}

	scanCfg := cfg.Analyse
	scanCfg.StepMass = nil
	scanCfg.Logger = nil
	stats := make([]WindowStat, len(windows))
	for i, r := range bank.Results {
		scan, err := FindAndAnalyse(r, scanCfg)
		if err != nil {
			return nil, err
		}
		stats[i] = WindowStat{
			Window:   r.Window,
			Time:     float64(r.Window) / resolution,
			ASNR:     r.ASNR,
			MSNR:     r.MSNR,
			STD:      r.STD,
			Outliers: r.OutlierCount(),
			StepsPre: scan.StepsPre.Number(),
			Steps:    scan.Steps.Number(),
		}
		log.WithFields(logrus.Fields{
			"window":   stats[i].Window,
			"time":     stats[i].Time,
			"asnr":     stats[i].ASNR,
			"msnr":     stats[i].MSNR,
			"std":      stats[i].STD,
			"outliers": stats[i].Outliers,
			"pre":      stats[i].StepsPre,
			"steps":    stats[i].Steps,
		}).Debug("filter window scanned")
	}

	window := fixed
	if window == 0 {
		window = selectWindow(stats)
		log.WithField("window", window).Info("filter window selected automatically, verify the result")
	}
	span.SetAttributes(attribute.Int("window", window))

	final, err := fbnl.Filter(data, resolution, window, append(opts, fbnl.WithWindowVar(window))...)
	if err != nil {
		return nil, fmt.Errorf("steps: refilter with window %d: %w", window, err)
	}

	acfg := cfg.Analyse
	if cfg.UseMean {
		acfg.StepMass = bank.StepMassMean
	}
	res, err := FindAndAnalyse(final, acfg)
	if err != nil {
		return nil, err
	}
	res.Bank = bank
	span.SetAttributes(
		attribute.Int("steps.pre", res.StepsPre.Number()),
		attribute.Int("steps", res.Steps.Number()),
	)
	return &Pipeline{Result: res, Windows: stats, Window: window}, nil
}

// scanWindows returns the sorted windows to scan and, if FilterTime is
// set, its window.
func scanWindows(resolution float64, cfg PipelineConfig) ([]int, int, error) {
	maxT := cfg.FilterMaxT
	if maxT == 0 {
		maxT = cfg.FilterTime
	}
	minT := cfg.FilterMinT
	if minT == 0 {
		if cfg.FilterTime == 0 {
			return nil, 0, ErrNoFilterTime
		}
		minT = cfg.FilterTime
		if maxT != 0 {
			minT = min(minT, maxT)
		}
	}
	windows, err := signal.LogSpacedTimeWindows(minT, maxT, resolution, cfg.FilterNumber)
	if err != nil {
		return nil, 0, fmt.Errorf("steps: filter windows: %w", err)
	}
	if cfg.FilterTime == 0 {
		return windows, 0, nil
	}
	fixed := max(core.RoundHalfEven(cfg.FilterTime*resolution), 1)
	if !slices.Contains(windows, fixed) {
		windows = append(windows, fixed)
		slices.Sort(windows)
	}
	return windows, fixed, nil
}

func runBank(ctx context.Context, data []float64, resolution float64, windows []int, opts []fbnl.Option) (*fbnl.BankResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "steps.bank",
		trace.WithAttributes(attribute.Int("windows", len(windows))),
	)
	bank, err := fbnl.Bank(ctx, data, resolution, windows, opts...)
	endSpan(span, err)
	if err != nil {
		return nil, fmt.Errorf("steps: filter bank: %w", err)
	}
	return bank, nil
}

// selectWindow returns 4/5 of the mean window with minimal STD.
func selectWindow(stats []WindowStat) int {
	best := math.Inf(1)
	for _, s := range stats {
		if s.STD < best {
			best = s.STD
		}
	}
	var sum float64
	n := 0
	for _, s := range stats {
		if s.STD == best {
			sum += float64(s.Window)
			n++
		}
	}
	if n == 0 {
		return stats[0].Window
	}
	return max(core.RoundHalfEven(sum/float64(n)*autoWindowScale), 1)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
