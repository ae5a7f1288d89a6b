package optimizer

import "errors"

var (
	// ErrOutOfRange is returned by time-parameterized assignment and
	// series accessors when queried outside their window.
	ErrOutOfRange = errors.New("optimizer: time outside assignment window")

	// ErrStepMismatch is returned when merging series with different
	// step sizes.
	ErrStepMismatch = errors.New("optimizer: series step mismatch")
)
