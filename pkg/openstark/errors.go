package openstark

import (
	"fmt"

	"github.com/openstark/openstark-go/internal/openstark/core"
	"github.com/openstark/openstark-go/internal/openstark/protocols"
)

// Sentinel errors surfaced by the library. Test for them with errors.Is;
// they are wrapped with context at every level.
var (
	// ErrDivisionByZero is returned on inversion or division by the zero
	// element
	ErrDivisionByZero = core.ErrDivisionByZero

	// ErrInvalidDomainSize is returned when a domain size is not a power of
	// two or exceeds the field's two-adic FFT order
	ErrInvalidDomainSize = core.ErrInvalidDomainSize

	// ErrIndexOutOfRange is returned on out-of-range tree, trace or domain
	// accesses
	ErrIndexOutOfRange = core.ErrIndexOutOfRange

	// ErrDegreeTooLarge is returned when a polynomial does not fit its
	// evaluation domain
	ErrDegreeTooLarge = core.ErrDegreeTooLarge

	// ErrProofMalformed is returned for structurally invalid proof bytes
	ErrProofMalformed = protocols.ErrProofMalformed

	// ErrConsistencyFailure is returned when an algebraic cross-check fails
	ErrConsistencyFailure = protocols.ErrConsistencyFailure

	// ErrProofRejected is the verifier's verdict on an invalid proof
	ErrProofRejected = protocols.ErrProofRejected
)

// ErrorCode classifies a StarkError
type ErrorCode int

const (
	// ErrUnknown represents an unknown error
	ErrUnknown ErrorCode = iota

	// ErrInvalidConfig represents an invalid parameter configuration
	ErrInvalidConfig

	// ErrInvalidTrace represents a trace that does not match the constraint
	// system
	ErrInvalidTrace

	// ErrProofGeneration represents a failure while generating a proof
	ErrProofGeneration

	// ErrProofVerification represents a failure while checking a proof
	ErrProofVerification

	// ErrInvalidInput represents malformed caller input
	ErrInvalidInput
)

// StarkError carries an error code alongside the underlying cause
type StarkError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error returns the error message
func (e *StarkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("openstark error [%d]: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("openstark error [%d]: %s", e.Code, e.Message)
}

// Unwrap returns the cause of the error
func (e *StarkError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error
func (e *StarkError) Is(target error) bool {
	t, ok := target.(*StarkError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}
