package calibration

import "errors"

var (
	// ErrUnknownTrace is returned when a record has no trace of that name.
	ErrUnknownTrace = errors.New("calibration: unknown trace")
	// ErrUnknownSource is returned when no loader is registered for a source.
	ErrUnknownSource = errors.New("calibration: unknown source")
	// ErrDuplicateSource is returned when a source is registered twice.
	ErrDuplicateSource = errors.New("calibration: source already registered")
	// ErrInvalid is returned by Validate for inconsistent constants.
	ErrInvalid = errors.New("calibration: invalid calibration")
)
