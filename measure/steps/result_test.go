package steps

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/cwbudde/algo-tweezer/dsp/filter/fbnl"
	"github.com/cwbudde/algo-tweezer/internal/testutil"
)

var (
	traceLevels  = []float64{0, 10, 4, 12}
	traceLengths = []int{300, 300, 300, 300}
)

func filteredTrace(t *testing.T, window int) *fbnl.Result {
	t.Helper()
	data := testutil.StepTrace(traceLevels, traceLengths, 1, 21)
	r, err := fbnl.Filter(data, 1000, window)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	return r
}

func requireNear(t *testing.T, got, want []int, tol int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if d := got[i] - want[i]; d < -tol || d > tol {
			t.Fatalf("index %d: got %d, want %d +- %d", i, got[i], want[i], tol)
		}
	}
}

func TestFindAndAnalyse(t *testing.T) {
	filter := filteredTrace(t, 20)
	cfg := DefaultAnalyseConfig()
	cfg.ExpectedMinStepSize = 4

	res, err := FindAndAnalyse(filter, cfg)
	if err != nil {
		t.Fatalf("FindAndAnalyse() error = %v", err)
	}

	testutil.RequireRelative(t, "YC", res.YC, 2.0/3.0*4/filter.NoiseMean, 1e-12)
	if res.MinStepSpacing != 20 {
		t.Fatalf("MinStepSpacing = %d, want 20", res.MinStepSpacing)
	}
	testutil.RequireRelative(t, "MinDwellTime", res.MinDwellTime, 0.02, 1e-12)

	requireNear(t, res.Steps.Indices, testutil.StepPositions(traceLengths), 3)
	wantUp := []bool{true, false, true}
	for i, up := range res.Steps.Up {
		if up != wantUp[i] {
			t.Fatalf("Up = %v, want %v", res.Steps.Up, wantUp)
		}
	}
	for i, h := range res.Steps.PlateauHeights {
		if math.Abs(h-traceLevels[i]) > 0.5 {
			t.Fatalf("PlateauHeights[%d] = %v, want ~%v", i, h, traceLevels[i])
		}
	}
	if len(res.MinSizes) != res.Steps.Number() || len(res.Quality.SD) != res.Steps.Number() {
		t.Fatalf("MinSizes/Quality do not match the %d steps", res.Steps.Number())
	}
	for i, r := range res.Quality.NoiseOverSD {
		if r < 0.7 || r > 1.3 {
			t.Fatalf("NoiseOverSD[%d] = %v, want ~1 for clean steps", i, r)
		}
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
}

func TestFindAndAnalyseNoSteps(t *testing.T) {
	data := testutil.DeterministicNoise(3, 1, 500)
	filter, err := fbnl.Filter(data, 1000, 20)
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultAnalyseConfig()
	cfg.ExpectedMinStepSize = 50

	res, err := FindAndAnalyse(filter, cfg)
	if err != nil {
		t.Fatalf("FindAndAnalyse() error = %v", err)
	}
	if res.Steps.Number() != 0 || res.StepsPre.Number() != 0 {
		t.Fatalf("found %d steps, want 0", res.Steps.Number())
	}
	if len(res.Steps.Plateaus) != 1 || res.Steps.Plateaus[0].Stop != 500 {
		t.Fatalf("Plateaus = %v, want one spanning the trace", res.Steps.Plateaus)
	}
	var mean float64
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))
	testutil.RequireSliceNearlyEqual(t, res.Steps.PlateauHeights, []float64{mean}, 1e-12)
}

func TestFindAndAnalyseWarnings(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	filter := filteredTrace(t, 4)
	cfg := DefaultAnalyseConfig()
	cfg.ExpectedMinDwell = 0.001
	cfg.Logger = logger

	res, err := FindAndAnalyse(filter, cfg)
	if err != nil {
		t.Fatalf("FindAndAnalyse() error = %v", err)
	}
	if res.MinStepSpacing != 4 {
		t.Fatalf("MinStepSpacing = %d, want the window 4", res.MinStepSpacing)
	}

	var threshold, dwell bool
	for _, w := range res.Warnings {
		threshold = threshold || strings.Contains(w, "threshold yc")
		dwell = dwell || strings.Contains(w, "expected minimum dwell time")
	}
	if !threshold || !dwell {
		t.Fatalf("warnings = %v, want threshold and dwell warnings", res.Warnings)
	}

	warned := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned++
		}
	}
	if warned != len(res.Warnings) {
		t.Fatalf("logged %d warnings, result holds %d", warned, len(res.Warnings))
	}
}

func TestFindAndAnalyseUnbalancedWeights(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	cfg := DefaultAnalyseConfig()
	cfg.ExpectedMinStepSize = 4
	cfg.Logger = logger

	for _, ratio := range []float64{1.3, 0.8} {
		filter := *filteredTrace(t, 20)
		filter.FBRatio = ratio
		res, err := FindAndAnalyse(&filter, cfg)
		if err != nil {
			t.Fatalf("FindAndAnalyse() error = %v", err)
		}
		if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "forward to backward") {
			t.Fatalf("ratio %v: warnings = %v, want the weight balance warning", ratio, res.Warnings)
		}
	}
	warned := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned++
		}
	}
	if warned != 2 {
		t.Fatalf("logged %d warnings, want 2", warned)
	}
}

func TestFindAndAnalyseStepMassOverride(t *testing.T) {
	filter := filteredTrace(t, 20)
	cfg := DefaultAnalyseConfig()

	cfg.StepMass = make([]float64, 10)
	if _, err := FindAndAnalyse(filter, cfg); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("err = %v, want ErrLengthMismatch", err)
	}

	cfg.StepMass = make([]float64, len(filter.Data))
	res, err := FindAndAnalyse(filter, cfg)
	if err != nil {
		t.Fatalf("FindAndAnalyse() error = %v", err)
	}
	if res.Steps.Number() != 0 {
		t.Fatalf("found %d steps on a flat step mass", res.Steps.Number())
	}

	if _, err := FindAndAnalyse(nil, cfg); !errors.Is(err, ErrNoFilter) {
		t.Fatalf("err = %v, want ErrNoFilter", err)
	}
}
