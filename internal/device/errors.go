package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when a device ID does not exist or exists
	// under a different kind than the one requested.
	ErrNotFound = errors.New("device: not found")

	// ErrInvalidDevice is returned when device validation fails.
	ErrInvalidDevice = errors.New("device: invalid")

	// ErrInvalidKind is returned when a kind value is not recognised.
	ErrInvalidKind = errors.New("device: invalid kind")

	// ErrInvalidName is returned when a device name is empty or too long.
	ErrInvalidName = errors.New("device: invalid name")

	// ErrInvalidWindow is returned when an action window is empty or
	// inverted, or the duration does not fit inside it.
	ErrInvalidWindow = errors.New("device: invalid action window")
)
