package steps

import (
	"context"
	"errors"
	"slices"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/cwbudde/algo-tweezer/internal/testutil"
)

func pipelineConfig() PipelineConfig {
	cfg := DefaultPipelineConfig()
	cfg.Analyse.ExpectedMinStepSize = 4
	return cfg
}

func TestFilterFindAnalyseFixedTime(t *testing.T) {
	data := testutil.StepTrace(traceLevels, traceLengths, 1, 21)
	cfg := pipelineConfig()
	cfg.FilterTime = 0.02
	cfg.FilterMinT = 0.005
	cfg.FilterMaxT = 0.05
	cfg.FilterNumber = 5

	res, err := FilterFindAnalyse(context.Background(), data, 1000, cfg)
	if err != nil {
		t.Fatalf("FilterFindAnalyse() error = %v", err)
	}
	if res.Window != 20 || res.Filter.Window != 20 || res.Filter.WindowVar != 20 {
		t.Fatalf("window = %d (filter %d/%d), want 20", res.Window, res.Filter.Window, res.Filter.WindowVar)
	}
	windows := make([]int, len(res.Windows))
	for i, w := range res.Windows {
		windows[i] = w.Window
		testutil.RequireRelative(t, "Time", w.Time, float64(w.Window)/1000, 1e-12)
	}
	if !slices.IsSorted(windows) || !slices.Contains(windows, 20) {
		t.Fatalf("windows = %v, want sorted and containing 20", windows)
	}
	if diff := len(res.Bank.Windows) - len(windows); diff != 0 {
		t.Fatalf("bank has %d windows, stats %d", len(res.Bank.Windows), len(windows))
	}
	requireNear(t, res.Steps.Indices, testutil.StepPositions(traceLengths), 3)
}

func TestFilterFindAnalyseAutoWindow(t *testing.T) {
	data := testutil.StepTrace(traceLevels, traceLengths, 1, 21)
	cfg := pipelineConfig()
	cfg.FilterMinT = 0.005
	cfg.FilterMaxT = 0.05
	cfg.FilterNumber = 4

	res, err := FilterFindAnalyse(context.Background(), data, 1000, cfg)
	if err != nil {
		t.Fatalf("FilterFindAnalyse() error = %v", err)
	}
	best := res.Windows[0]
	for _, w := range res.Windows {
		if w.STD < best.STD {
			best = w
		}
	}
	if res.Window > best.Window {
		t.Fatalf("window = %d, want at most the best window %d", res.Window, best.Window)
	}
	for _, want := range testutil.StepPositions(traceLengths) {
		found := false
		for _, idx := range res.Steps.Indices {
			if idx >= want-5 && idx <= want+5 {
				found = true
			}
		}
		if !found {
			t.Fatalf("no step near %d in %v", want, res.Steps.Indices)
		}
	}
}

func TestFilterFindAnalyseUseMean(t *testing.T) {
	data := testutil.StepTrace(traceLevels, traceLengths, 1, 21)
	cfg := pipelineConfig()
	cfg.FilterTime = 0.02
	cfg.FilterMinT = 0.01
	cfg.FilterMaxT = 0.04
	cfg.FilterNumber = 3
	cfg.UseMean = true

	res, err := FilterFindAnalyse(context.Background(), data, 1000, cfg)
	if err != nil {
		t.Fatalf("FilterFindAnalyse() error = %v", err)
	}
	requireNear(t, res.Steps.Indices, testutil.StepPositions(traceLengths), 5)
}

func TestFilterFindAnalyseNoFilterTime(t *testing.T) {
	data := testutil.StepTrace(traceLevels, traceLengths, 1, 21)
	_, err := FilterFindAnalyse(context.Background(), data, 1000, DefaultPipelineConfig())
	if !errors.Is(err, ErrNoFilterTime) {
		t.Fatalf("err = %v, want ErrNoFilterTime", err)
	}
}

func TestFilterFindAnalyseSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	data := testutil.StepTrace(traceLevels, traceLengths, 1, 21)
	cfg := pipelineConfig()
	cfg.FilterTime = 0.02
	if _, err := FilterFindAnalyse(context.Background(), data, 1000, cfg); err != nil {
		t.Fatalf("FilterFindAnalyse() error = %v", err)
	}

	names := map[string]bool{}
	for _, s := range recorder.Ended() {
		names[s.Name()] = true
	}
	for _, want := range []string{"steps.FilterFindAnalyse", "steps.bank"} {
		if !names[want] {
			t.Fatalf("span %q not recorded, got %v", want, names)
		}
	}
}

func TestScanWindows(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PipelineConfig
		windows []int
		fixed   int
	}{
		{"fixed only", PipelineConfig{FilterTime: 0.01}, []int{10}, 10},
		{"range", PipelineConfig{FilterMinT: 0.001, FilterMaxT: 0.1, FilterNumber: 3}, []int{1, 10, 100}, 0},
		{"range plus fixed", PipelineConfig{FilterTime: 0.02, FilterMinT: 0.001, FilterMaxT: 0.1, FilterNumber: 3}, []int{1, 10, 20, 100}, 20},
		{"max defaults to fixed", PipelineConfig{FilterTime: 0.1, FilterMinT: 0.001, FilterNumber: 3}, []int{1, 10, 100}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows, fixed, err := scanWindows(1000, tt.cfg)
			if err != nil {
				t.Fatalf("scanWindows() error = %v", err)
			}
			if !slices.Equal(windows, tt.windows) || fixed != tt.fixed {
				t.Fatalf("scanWindows() = %v, %d, want %v, %d", windows, fixed, tt.windows, tt.fixed)
			}
		})
	}
}

func TestSelectWindow(t *testing.T) {
	stats := []WindowStat{
		{Window: 10, STD: 0.5},
		{Window: 20, STD: 0.3},
		{Window: 30, STD: 0.3},
		{Window: 40, STD: 0.4},
	}
	// 4/5 of mean(20, 30)
	if got := selectWindow(stats); got != 20 {
		t.Fatalf("selectWindow() = %d, want 20", got)
	}
}
