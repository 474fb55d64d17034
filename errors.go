package primer

import "errors"

// Sentinel errors shared by the primer packages. Wrap them with
// fmt.Errorf("%w: ...") to attach detail.
var (
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("primer: invalid config")

	// ErrZeroExtent is returned when a surface has no drawable area,
	// typically because the window is minimized.
	ErrZeroExtent = errors.New("primer: zero extent")

	// ErrNoDevice is returned when no usable GPU adapter is available.
	ErrNoDevice = errors.New("primer: no GPU device")

	// ErrClosed is returned when using a resource after Close/Destroy.
	ErrClosed = errors.New("primer: closed")
)
