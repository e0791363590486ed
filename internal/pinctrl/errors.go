package pinctrl

import "errors"

// Domain errors for the pin-control package.
var (
	// ErrInvalidArgument is returned when a pin, function or parameter id is
	// outside the range the wire format can carry.
	ErrInvalidArgument = errors.New("pinctrl: invalid argument")

	// ErrNotSupported is returned when a generic configuration parameter has
	// no wire mapping. Bulk property parsing treats it as "skip"; the
	// single-parameter set operation treats it as fatal.
	ErrNotSupported = errors.New("pinctrl: parameter not supported")

	// ErrCapacityExceeded is returned when an encoded message would not fit
	// the shared transport buffer, or a ConfigSet is already full.
	ErrCapacityExceeded = errors.New("pinctrl: transport buffer capacity exceeded")

	// ErrInvalidData is returned when a response is malformed or internally
	// inconsistent.
	ErrInvalidData = errors.New("pinctrl: invalid response data")

	// ErrNotFound is returned when releasing a pin that was never claimed.
	ErrNotFound = errors.New("pinctrl: pin not claimed")

	// ErrAlreadyClaimed is returned when claiming a pin that already has a
	// saved entry. The platform firmware would accept the second claim, but
	// a duplicate entry would make the later restore ambiguous.
	ErrAlreadyClaimed = errors.New("pinctrl: pin already claimed")

	// ErrInvalidProperty is returned when a configuration-source property
	// value has an unexpected length (must be 0 or 4 bytes).
	ErrInvalidProperty = errors.New("pinctrl: invalid property value")
)
