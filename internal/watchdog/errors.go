package watchdog

import "errors"

var (
	// ErrInvalidHandle is returned when an operation names a group or tool the engine does not know.
	ErrInvalidHandle = errors.New("invalid watchdog handle")

	// ErrMisconfiguredInterval is returned when a refresh interval is zero or negative.
	ErrMisconfiguredInterval = errors.New("refresh interval must be positive")

	// ErrDuplicateTool is returned when a group already has a tool with the same name.
	ErrDuplicateTool = errors.New("tool already exists in group")
)
