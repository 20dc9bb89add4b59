package openstark

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStarkErrorMessage(t *testing.T) {
	plain := &StarkError{Code: ErrInvalidConfig, Message: "bad blowup"}
	require.Contains(t, plain.Error(), "bad blowup")

	caused := &StarkError{Code: ErrProofGeneration, Message: "prove failed", Cause: fmt.Errorf("boom")}
	require.Contains(t, caused.Error(), "caused by")
	require.Contains(t, caused.Error(), "boom")
}

func TestStarkErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("inner: %w", ErrProofRejected)
	err := &StarkError{Code: ErrProofVerification, Message: "verify", Cause: cause}

	require.ErrorIs(t, err, ErrProofRejected)
	require.Equal(t, cause, errors.Unwrap(err))
}

func TestStarkErrorIsMatchesOnCode(t *testing.T) {
	a := &StarkError{Code: ErrInvalidInput, Message: "first"}
	b := &StarkError{Code: ErrInvalidInput, Message: "second"}
	c := &StarkError{Code: ErrInvalidConfig, Message: "third"}

	require.ErrorIs(t, a, b)
	require.NotErrorIs(t, a, c)
	require.NotErrorIs(t, a, fmt.Errorf("unrelated"))
}

func TestSentinelReexports(t *testing.T) {
	// The facade sentinels must be the same values the internal packages
	// wrap, so errors.Is works across the API boundary.
	for _, err := range []error{
		ErrDivisionByZero,
		ErrInvalidDomainSize,
		ErrIndexOutOfRange,
		ErrDegreeTooLarge,
		ErrProofMalformed,
		ErrConsistencyFailure,
		ErrProofRejected,
	} {
		require.Error(t, err)
		require.ErrorIs(t, fmt.Errorf("wrapped: %w", err), err)
	}
}
