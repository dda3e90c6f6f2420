package psd

import "errors"

var (
	// ErrBlockLength is returned for block lengths that are not a power of
	// two of at least 4.
	ErrBlockLength = errors.New("psd: block length must be a power of two >= 4")
	// ErrTooShort is returned when the data holds less than one block.
	ErrTooShort = errors.New("psd: data shorter than one block")
	// ErrSampleRate is returned for non-positive sample rates.
	ErrSampleRate = errors.New("psd: sample rate must be > 0")
	// ErrFitDegenerate is returned when the least-squares system has no
	// physical solution.
	ErrFitDegenerate = errors.New("psd: degenerate Lorentzian fit")
	// ErrPhysical is returned for invalid physical parameters.
	ErrPhysical = errors.New("psd: invalid physical parameters")
)
