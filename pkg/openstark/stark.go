package openstark

import (
	"errors"
	"time"

	"github.com/openstark/openstark-go/internal/openstark/protocols"
)

// Prover generates STARK proofs
type Prover interface {
	// Prove generates a proof that trace satisfies cs
	Prove(cs *ConstraintSystem, trace *Trace) (*Proof, error)
}

// Verifier checks STARK proofs
type Verifier interface {
	// Verify checks that proof attests to a trace of the given length
	// satisfying cs
	Verify(cs *ConstraintSystem, traceLength int, proof *Proof) (*VerificationResult, error)
}

// VerificationResult reports the outcome of a verification
type VerificationResult struct {
	// Valid reports whether the proof was accepted
	Valid bool

	// Reason carries the first failing check when the proof was rejected
	Reason string

	// VerificationTimeMs is the wall-clock verification time in
	// milliseconds
	VerificationTimeMs int64
}

type proverImpl struct {
	inner *protocols.StarkProver
}

// NewProver creates a prover from the given parameters
func NewProver(params *Parameters) (Prover, error) {
	inner, err := protocols.NewStarkProver(params)
	if err != nil {
		return nil, &StarkError{Code: ErrInvalidConfig, Message: "invalid parameters", Cause: err}
	}
	return &proverImpl{inner: inner}, nil
}

func (p *proverImpl) Prove(cs *ConstraintSystem, trace *Trace) (*Proof, error) {
	proof, err := p.inner.Prove(cs, trace)
	if err != nil {
		return nil, &StarkError{Code: ErrProofGeneration, Message: "proof generation failed", Cause: err}
	}
	return proof, nil
}

type verifierImpl struct {
	inner *protocols.StarkVerifier
}

// NewVerifier creates a verifier from the given parameters
func NewVerifier(params *Parameters) (Verifier, error) {
	inner, err := protocols.NewStarkVerifier(params)
	if err != nil {
		return nil, &StarkError{Code: ErrInvalidConfig, Message: "invalid parameters", Cause: err}
	}
	return &verifierImpl{inner: inner}, nil
}

// Verify checks the proof. A rejected or malformed proof is reported in the
// result, not as an error; the error return covers configuration problems.
func (v *verifierImpl) Verify(cs *ConstraintSystem, traceLength int, proof *Proof) (*VerificationResult, error) {
	start := time.Now()
	err := v.inner.Verify(cs, traceLength, proof)
	result := &VerificationResult{
		Valid:              err == nil,
		VerificationTimeMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		if !errors.Is(err, ErrProofRejected) && !errors.Is(err, ErrProofMalformed) {
			return nil, &StarkError{Code: ErrProofVerification, Message: "verification failed", Cause: err}
		}
		result.Reason = err.Error()
	}
	return result, nil
}
