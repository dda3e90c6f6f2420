package fbnl

import "errors"

var (
	// ErrEmptyData is returned for empty input traces.
	ErrEmptyData = errors.New("fbnl: data must not be empty")
	// ErrInvalidWindow is returned for window or variance lengths < 1.
	ErrInvalidWindow = errors.New("fbnl: window lengths must be >= 1")
	// ErrInvalidResolution is returned for sample rates <= 0.
	ErrInvalidResolution = errors.New("fbnl: resolution must be > 0")
	// ErrInvalidEdginess is returned for negative nonlinearity factors.
	ErrInvalidEdginess = errors.New("fbnl: edginess must be >= 0")
	// ErrDataTooShort is returned when an uncapped trace has no sample with
	// both predictors and variances defined.
	ErrDataTooShort = errors.New("fbnl: data too short for window")
	// ErrNoWindows is returned by Bank for an empty window list.
	ErrNoWindows = errors.New("fbnl: at least one window is required")
)
