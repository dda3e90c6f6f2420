package steps

import "errors"

var (
	// ErrNoFilter is returned when no filter result is given.
	ErrNoFilter = errors.New("steps: filter result is required")
	// ErrNoFilterTime is returned when neither a filter time nor a minimum
	// filter time is configured.
	ErrNoFilterTime = errors.New("steps: at least one filter time is required")
	// ErrLengthMismatch is returned when a step mass override does not have
	// the length of the filtered data.
	ErrLengthMismatch = errors.New("steps: step mass length does not match data")
	// ErrInvalidThreshold is returned for unknown threshold names.
	ErrInvalidThreshold = errors.New("steps: invalid step size threshold")
)
