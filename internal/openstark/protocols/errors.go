package protocols

import "errors"

var (
	// ErrProofMalformed is returned when proof bytes fail structural
	// validation: wrong element counts, lengths or truncated sections.
	// Malformed input is detected before any cryptographic check runs.
	ErrProofMalformed = errors.New("proof malformed")

	// ErrConsistencyFailure is returned when an internal algebraic relation
	// does not hold: a FRI fold mismatch or a failed out-of-domain check
	ErrConsistencyFailure = errors.New("consistency check failed")

	// ErrProofRejected is the verifier's overall verdict on an invalid
	// proof. It is an expected, recoverable outcome, not a fault: the
	// wrapped message carries the first failing check as a diagnostic.
	ErrProofRejected = errors.New("proof rejected")
)
