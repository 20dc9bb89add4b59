package core

import "errors"

// Sentinel errors for arithmetic and commitment contract violations.
// These are local, deterministic failures: retrying the same call cannot
// succeed, so callers surface them immediately.
var (
	// ErrDivisionByZero is returned when inverting the additive identity
	ErrDivisionByZero = errors.New("division by zero")

	// ErrInvalidDomainSize is returned when a requested evaluation domain is
	// not a power of two or exceeds the field's maximum FFT-friendly order
	ErrInvalidDomainSize = errors.New("invalid domain size")

	// ErrDegreeTooLarge is returned when a polynomial does not fit the
	// requested evaluation domain
	ErrDegreeTooLarge = errors.New("polynomial degree too large for domain")

	// ErrIndexOutOfRange is returned for out-of-range leaf indices
	ErrIndexOutOfRange = errors.New("index out of range")
)
