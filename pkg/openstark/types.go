package openstark

import (
	"io"

	"github.com/openstark/openstark-go/internal/openstark/core"
	"github.com/openstark/openstark-go/internal/openstark/protocols"
)

// Field represents a prime field
type Field = core.Field

// FieldElement represents an element of a prime field
type FieldElement = core.FieldElement

// Polynomial represents a polynomial over a prime field
type Polynomial = core.Polynomial

// EvaluationDomain represents a multiplicative root-of-unity domain,
// optionally shifted onto a coset
type EvaluationDomain = core.EvaluationDomain

// MerkleTree commits to an ordered sequence of byte-string leaves
type MerkleTree = core.MerkleTree

// MerkleProof is a Merkle authentication path
type MerkleProof = core.MerkleProof

// Hasher is the hash capability used for commitments and the transcript
type Hasher = core.Hasher

// Parameters bundles the protocol configuration shared by prover and
// verifier
type Parameters = protocols.Parameters

// ConstraintSystem is the public statement being proven
type ConstraintSystem = protocols.ConstraintSystem

// TransitionConstraint relates each trace row to its successor
type TransitionConstraint = protocols.TransitionConstraint

// BoundaryConstraint pins one trace cell to a public value
type BoundaryConstraint = protocols.BoundaryConstraint

// Trace is a private execution trace
type Trace = protocols.Trace

// Proof is a complete transferable STARK proof
type Proof = protocols.StarkProof

// FriProof is the low-degree test portion of a proof
type FriProof = protocols.FriProof

// Transcript is the deterministic Fiat-Shamir challenge generator
type Transcript = protocols.Transcript

// NewStarkField returns the 252-bit STARK field
func NewStarkField() *Field {
	return core.StarkField()
}

// NewTestField returns a small 32-bit field for tests and experimentation
func NewTestField() *Field {
	return core.TestField()
}

// DefaultParameters returns a configuration targeting roughly 80 bits of
// conjectured security on the given field
func DefaultParameters(field *Field) *Parameters {
	return protocols.DefaultParameters(field)
}

// NewTrace builds a trace from its columns. All columns must have the same
// power-of-two length.
func NewTrace(field *Field, columns [][]*FieldElement) (*Trace, error) {
	trace, err := protocols.NewTrace(field, columns)
	if err != nil {
		return nil, &StarkError{Code: ErrInvalidInput, Message: "invalid trace", Cause: err}
	}
	return trace, nil
}

// ReadProof decodes a proof from its canonical binary encoding
func ReadProof(r io.Reader, field *Field) (*Proof, error) {
	proof, err := protocols.ReadStarkProof(r, field)
	if err != nil {
		return nil, &StarkError{Code: ErrInvalidInput, Message: "cannot decode proof", Cause: err}
	}
	return proof, nil
}
