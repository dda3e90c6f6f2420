// Package config loads analysis settings from a config file and the
// environment.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/cwbudde/algo-tweezer/measure/calibration"
	"github.com/cwbudde/algo-tweezer/measure/psd"
	"github.com/cwbudde/algo-tweezer/measure/steps"
)

// EnvPrefix prefixes every environment override, e.g.
// TWEEZER_STEPS_FILTER_TIME.
const EnvPrefix = "TWEEZER"

// SettingsModule is the source module under which Settings.Registry
// publishes the configured calibrations.
const SettingsModule = "settings"

// ErrUnknownCalibration reports a calibration name missing from Settings.
var ErrUnknownCalibration = errors.New("config: unknown calibration")

// Settings is the content of a config file.
type Settings struct {
	Steps        StepsSettings             `mapstructure:"steps"`
	PSD          PSDSettings               `mapstructure:"psd"`
	Physical     psd.Physical              `mapstructure:"physical"`
	Calibrations []calibration.Calibration `mapstructure:"calibrations"`
	Record       calibration.Record        `mapstructure:"record"`
}

// StepsSettings configures step detection. Times are in seconds.
type StepsSettings struct {
	FilterTime          float64 `mapstructure:"filter_time"`
	FilterMinT          float64 `mapstructure:"filter_min_t"`
	FilterMaxT          float64 `mapstructure:"filter_max_t"`
	FilterNumber        int     `mapstructure:"filter_number"`
	Edginess            float64 `mapstructure:"edginess"`
	NoCap               bool    `mapstructure:"no_cap"`
	Seed                int64   `mapstructure:"seed"`
	UseMean             bool    `mapstructure:"use_mean"`
	ExpectedMinStepSize float64 `mapstructure:"expected_min_step_size"`
	ExpectedMinDwell    float64 `mapstructure:"expected_min_dwell"`
	SwitchAccept        bool    `mapstructure:"switch_accept"`
	// Threshold is "adapt", "static" or a step size.
	Threshold string `mapstructure:"threshold"`
}

// Pipeline converts s into a pipeline configuration.
func (s StepsSettings) Pipeline() (steps.PipelineConfig, error) {
	th, err := steps.ParseThreshold(s.Threshold)
	if err != nil {
		return steps.PipelineConfig{}, fmt.Errorf("config: steps.threshold: %w", err)
	}
	cfg := steps.DefaultPipelineConfig()
	cfg.FilterTime = s.FilterTime
	cfg.FilterMinT = s.FilterMinT
	cfg.FilterMaxT = s.FilterMaxT
	cfg.FilterNumber = s.FilterNumber
	cfg.Edginess = s.Edginess
	cfg.NoCap = s.NoCap
	cfg.Seed = s.Seed
	cfg.UseMean = s.UseMean
	cfg.Analyse.ExpectedMinStepSize = s.ExpectedMinStepSize
	cfg.Analyse.ExpectedMinDwell = s.ExpectedMinDwell
	cfg.Analyse.SwitchAccept = s.SwitchAccept
	cfg.Analyse.Threshold = th
	return cfg, nil
}

// PSDSettings configures spectrum estimation and the Lorentzian fit.
type PSDSettings struct {
	BlockLength int     `mapstructure:"block_length"`
	Window      string  `mapstructure:"window"`
	Detrend     bool    `mapstructure:"detrend"`
	FMin        float64 `mapstructure:"fmin"`
	FMax        float64 `mapstructure:"fmax"`
	// Bin averages this many adjacent bins before fitting. 0 and 1 do
	// nothing.
	Bin int `mapstructure:"bin"`
}

// Estimate converts s into an estimate configuration.
func (s PSDSettings) Estimate() (psd.EstimateConfig, error) {
	w, err := psd.ParseWindow(s.Window)
	if err != nil {
		return psd.EstimateConfig{}, fmt.Errorf("config: psd.window: %w", err)
	}
	return psd.EstimateConfig{BlockLength: s.BlockLength, Window: w, Detrend: s.Detrend}, nil
}

// Fit returns the fit range of s.
func (s PSDSettings) Fit() psd.FitConfig {
	return psd.FitConfig{FMin: s.FMin, FMax: s.FMax}
}

// Load reads the config file at path. An empty path loads the defaults
// and the environment only.
func Load(path string) (*Settings, error) {
	v := newViper()
	if path != "" {
		dir, base := filepath.Split(path)
		if dir == "" {
			dir = "."
		}
		v.AddConfigPath(dir)
		v.SetConfigName(strings.TrimSuffix(base, filepath.Ext(base)))
		if ext := strings.TrimPrefix(filepath.Ext(base), "."); ext != "" {
			v.SetConfigType(ext)
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return decode(v)
}

// LoadBytes reads a config of configType ("yaml", "json", "toml", ...)
// from data.
func LoadBytes(configType string, data []byte) (*Settings, error) {
	v := newViper()
	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", configType, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	p := steps.DefaultPipelineConfig()
	v.SetDefault("steps.filter_time", p.FilterTime)
	v.SetDefault("steps.filter_min_t", p.FilterMinT)
	v.SetDefault("steps.filter_max_t", p.FilterMaxT)
	v.SetDefault("steps.filter_number", p.FilterNumber)
	v.SetDefault("steps.edginess", 1.0)
	v.SetDefault("steps.no_cap", p.NoCap)
	v.SetDefault("steps.seed", p.Seed)
	v.SetDefault("steps.use_mean", p.UseMean)
	v.SetDefault("steps.expected_min_step_size", p.Analyse.ExpectedMinStepSize)
	v.SetDefault("steps.expected_min_dwell", p.Analyse.ExpectedMinDwell)
	v.SetDefault("steps.switch_accept", p.Analyse.SwitchAccept)
	v.SetDefault("steps.threshold", p.Analyse.Threshold.String())

	v.SetDefault("psd.block_length", psd.DefaultBlockLength)
	v.SetDefault("psd.window", psd.WindowRectangular.String())
	v.SetDefault("psd.detrend", true)
	v.SetDefault("psd.fmin", 0.0)
	v.SetDefault("psd.fmax", 0.0)
	v.SetDefault("psd.bin", 1)

	ph := psd.DefaultPhysical()
	v.SetDefault("physical.radius", ph.Radius)
	v.SetDefault("physical.temperature", ph.Temperature)
	v.SetDefault("physical.viscosity", ph.Viscosity)
	v.SetDefault("physical.height", ph.Height)

	v.SetDefault("record.name", "")
	v.SetDefault("record.sample_rate", 1000.0)
	v.SetDefault("record.datasource", "")
}

func decode(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the parts of s that can be checked without data.
func (s *Settings) Validate() error {
	if _, err := s.Steps.Pipeline(); err != nil {
		return err
	}
	if _, err := s.PSD.Estimate(); err != nil {
		return err
	}
	if err := s.Physical.Validate(); err != nil {
		return fmt.Errorf("config: physical: %w", err)
	}
	seen := make(map[string]bool, len(s.Calibrations))
	for i := range s.Calibrations {
		c := &s.Calibrations[i]
		if seen[c.Name] {
			return fmt.Errorf("config: duplicate calibration %q", c.Name)
		}
		seen[c.Name] = true
		if err := c.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

// Registry returns a registry that serves every calibration with
// constants under Source{SettingsModule, name}, so that other
// calibrations may refer to them.
func (s *Settings) Registry() (*calibration.Registry, error) {
	r := calibration.NewRegistry()
	for _, c := range s.Calibrations {
		if c.Source != nil {
			continue
		}
		src := calibration.Source{Module: SettingsModule, Class: c.Name}
		if err := r.Register(src, calibration.Static(c)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Calibration returns the named calibration, resolved through r.
func (s *Settings) Calibration(ctx context.Context, r *calibration.Registry, name string) (*calibration.Calibration, error) {
	for i := range s.Calibrations {
		if s.Calibrations[i].Name == name {
			c := s.Calibrations[i]
			return r.Resolve(ctx, &c)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCalibration, name)
}
