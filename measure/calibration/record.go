package calibration

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Trace describes how a raw trace is converted into signal units.
type Trace struct {
	Name   string  `json:"name" mapstructure:"name"`
	Offset float64 `json:"offset" mapstructure:"offset"`
	// Conversion scales the offset-corrected trace. 0 means 1.
	Conversion float64 `json:"conversion" mapstructure:"conversion"`
	Inverted   bool    `json:"inverted" mapstructure:"inverted"`
}

// Apply returns (raw - Offset) * Conversion, negated when Inverted.
func (t Trace) Apply(raw []float64) []float64 {
	scale := t.Conversion
	if scale == 0 {
		scale = 1
	}
	if t.Inverted {
		scale = -scale
	}
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = (v - t.Offset) * scale
	}
	return out
}

// Record is a measurement of several traces sampled at a common rate.
type Record struct {
	Name       string  `json:"name" mapstructure:"name"`
	SampleRate float64 `json:"sample_rate" mapstructure:"sample_rate"`
	// Datasource names where the raw data comes from.
	Datasource string           `json:"datasource" mapstructure:"datasource"`
	Traces     map[string]Trace `json:"traces" mapstructure:"traces"`
	// Data holds the raw samples by trace name.
	Data map[string][]float64 `json:"-" mapstructure:"-"`
}

// Trace returns the named trace converted by its setup. Traces without
// setup are returned unchanged.
func (r *Record) Trace(name string) ([]float64, error) {
	raw, ok := r.Data[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTrace, name)
	}
	setup, ok := r.Setup(name)
	if !ok {
		return append([]float64(nil), raw...), nil
	}
	return setup.Apply(raw), nil
}

// Setup returns the setup of the named trace. Config loaders may fold
// the keys of Traces to lower case, so a name matching no key exactly is
// compared case-insensitively.
func (r *Record) Setup(name string) (Trace, bool) {
	if t, ok := r.Traces[name]; ok {
		return t, true
	}
	for _, key := range slices.Sorted(maps.Keys(r.Traces)) {
		if strings.EqualFold(key, name) {
			return r.Traces[key], true
		}
	}
	return Trace{}, false
}

// TraceNames returns the names of the traces with data, sorted.
func (r *Record) TraceNames() []string {
	return slices.Sorted(maps.Keys(r.Data))
}
