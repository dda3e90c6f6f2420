package steps

import (
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-tweezer/dsp/core"
	"github.com/cwbudde/algo-tweezer/dsp/filter/fbnl"
	"github.com/cwbudde/algo-tweezer/dsp/signal"
	timestats "github.com/cwbudde/algo-tweezer/stats/time"
)

// defaultYC is the threshold for an assumed step-to-noise ratio of one.
const defaultYC = 2.0 / 3.0

// AnalyseConfig configures FindAndAnalyse.
type AnalyseConfig struct {
	// ExpectedMinStepSize sets yc = 2/3 * ExpectedMinStepSize / NoiseMean.
	// 0 uses yc = 2/3.
	ExpectedMinStepSize float64
	// ExpectedMinDwell is the shortest dwell time in seconds expected in
	// the data. It is raised to the filter window. 0 uses the window.
	ExpectedMinDwell float64
	// SwitchAccept keeps closely following steps of opposite direction.
	SwitchAccept bool
	// Threshold selects the minimum step size of the deletion pass.
	Threshold Threshold
	// StepMass replaces the step mass of the filter for detection,
	// typically with the bank mean. It must have the length of the data.
	StepMass []float64
	// Logger receives warnings and progress. nil discards.
	Logger logrus.FieldLogger
}

// DefaultAnalyseConfig returns the configuration with SwitchAccept enabled
// and adaptive thresholds.
func DefaultAnalyseConfig() AnalyseConfig {
	return AnalyseConfig{
		SwitchAccept: true,
		Threshold:    ThresholdAdapt,
	}
}

// Result is the outcome of FindAndAnalyse. The *Pre fields describe the
// steps before small steps were deleted.
type Result struct {
	Filter *fbnl.Result
	// Bank is set when the result stems from FilterFindAnalyse.
	Bank *fbnl.BankResult

	ExpectedMinStepSize float64
	YC                  float64
	ExpectedMinDwell    float64
	MinStepSpacing      int
	MinDwellTime        float64
	SwitchAccept        bool
	Threshold           Threshold

	StepsPre    *Steps
	Steps       *Steps
	MinSizesPre []float64
	MinSizes    []float64
	QualityPre  Quality
	Quality     Quality

	Warnings []string
}

// FindAndAnalyse finds the steps in the step mass of filter, analyses
// them, deletes steps smaller than the configured threshold and rates the
// remaining ones.
func FindAndAnalyse(filter *fbnl.Result, cfg AnalyseConfig) (*Result, error) {
	if filter == nil {
		return nil, ErrNoFilter
	}
	stepMass := filter.StepMass
	if cfg.StepMass != nil {
		if len(cfg.StepMass) != len(filter.Data) {
			return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(cfg.StepMass), len(filter.Data))
		}
		stepMass = cfg.StepMass
	}
	w := &warner{log: loggerOrDiscard(cfg.Logger)}

	yc := defaultYC
	if cfg.ExpectedMinStepSize != 0 {
		yc = defaultYC * cfg.ExpectedMinStepSize / filter.NoiseMean
	}
	if yc <= 2/math.Sqrt(float64(filter.Window)) {
		w.warnf("threshold yc=%.3f is not well above 1/sqrt(window): increase the filter window or the expected minimum step size", yc)
	}
	if filter.FBRatioCritical() {
		w.warnf("ratio of forward to backward weights %.3f is critical: the filter favours one direction, check the edginess and the trace for drift", filter.FBRatio)
	}
	w.log.WithFields(logrus.Fields{
		"noise": filter.NoiseMean,
		"yc":    yc,
	}).Debug("step detection threshold")

	spacing := filter.Window
	if cfg.ExpectedMinDwell != 0 {
		expected := core.RoundHalfEven(cfg.ExpectedMinDwell * filter.Resolution)
		spacing = max(expected, filter.Window)
		if expected < filter.Window {
			w.warnf("expected minimum dwell time %.4f s (%d samples) is shorter than the filter window %.4f s (%d samples), using the window",
				cfg.ExpectedMinDwell, expected, float64(filter.Window)/filter.Resolution, filter.Window)
		}
	}

	res := &Result{
		Filter:              filter,
		ExpectedMinStepSize: cfg.ExpectedMinStepSize,
		YC:                  yc,
		ExpectedMinDwell:    cfg.ExpectedMinDwell,
		MinStepSpacing:      spacing,
		MinDwellTime:        float64(spacing) / filter.Resolution,
		SwitchAccept:        cfg.SwitchAccept,
		Threshold:           cfg.Threshold,
	}

	found := FindSteps(stepMass, yc, FindOptions{
		MinStepSpacing: spacing,
		SwitchAccept:   cfg.SwitchAccept,
	})
	w.log.WithField("steps", found.Number()).Debug("steps found")

	if found.Number() == 0 {
		n := len(filter.Data)
		steps := &Steps{
			Plateaus:       []signal.Segment{{Start: 0, Stop: n}},
			PlateauCenters: found.PlateauCenters,
			PlateauHeights: []float64{timestats.Mean(filter.Data)},
		}
		res.StepsPre, res.Steps = steps, steps
		res.Warnings = w.warnings
		return res, nil
	}

	found.StepSizes, found.PlateauHeights, found.DwellPoints = Analyse(found.Indices, found.Plateaus, filter.Data)
	res.StepsPre = found
	res.MinSizesPre = MinStepSizes(found.Indices, yc, filter, cfg.Threshold)
	res.QualityPre = Qualities(found, filter)

	res.Steps = DeleteSmallSteps(found, res.MinSizesPre)
	if deleted := found.Number() - res.Steps.Number(); deleted > 0 {
		w.log.WithFields(logrus.Fields{
			"deleted":   deleted,
			"remaining": res.Steps.Number(),
		}).Debug("small steps deleted")
	}
	res.MinSizes = MinStepSizes(res.Steps.Indices, yc, filter, cfg.Threshold)
	res.Quality = Qualities(res.Steps, filter)

	if meanDwell(found.DwellPoints) < float64(spacing) {
		w.log.Info("mean dwell time of all steps, deleted ones included, is below the minimum step spacing")
	}
	if meanDwell(res.Steps.DwellPoints) < float64(spacing) {
		w.warnf("mean dwell time is below the minimum step spacing: reduce the spacing if forward and backward steps are expected, or raise yc if most steps go one way")
	}

	res.Warnings = w.warnings
	return res, nil
}

// meanDwell returns the mean of dwells, NaN if empty.
func meanDwell(dwells []int) float64 {
	if len(dwells) == 0 {
		return math.NaN()
	}
	sum := 0
	for _, d := range dwells {
		sum += d
	}
	return float64(sum) / float64(len(dwells))
}

// warner logs warnings and keeps them for the result.
type warner struct {
	log      logrus.FieldLogger
	warnings []string
}

func (w *warner) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	w.warnings = append(w.warnings, msg)
	w.log.Warn(msg)
}

func loggerOrDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l != nil {
		return l
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	return discard
}
