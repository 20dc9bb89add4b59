package protocols

import (
	"errors"
	"fmt"

	"github.com/openstark/openstark-go/internal/openstark/core"
)

// StarkVerifier checks proofs against a public constraint system. It holds
// no secret state and a single verifier may check any number of proofs.
type StarkVerifier struct {
	params *Parameters
}

// NewStarkVerifier validates the parameters and returns a verifier
func NewStarkVerifier(params *Parameters) (*StarkVerifier, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &StarkVerifier{params: params}, nil
}

// Verify checks that proof attests to some trace of the given length
// satisfying cs.
//
// The verifier replays the prover's transcript schedule lockstep, so every
// challenge it derives matches the prover's, then checks:
//   - the out-of-domain algebraic relation between the revealed trace and
//     composition values,
//   - the FRI low-degree test on the committed composition,
//   - per query, the Merkle openings of the trace rows and that the opened
//     composition value equals the one recomputed from the opened trace.
//
// A structurally invalid proof fails with ErrProofMalformed. Any failed
// check yields ErrProofRejected wrapping a diagnostic for the first failing
// condition. Verification is deterministic: the same inputs always produce
// the same verdict.
func (v *StarkVerifier) Verify(cs *ConstraintSystem, traceLength int, proof *StarkProof) error {
	if err := cs.Validate(traceLength); err != nil {
		return err
	}
	if err := v.checkShape(cs, proof); err != nil {
		return err
	}

	field := v.params.Field
	air, err := newAirContext(v.params, cs, traceLength)
	if err != nil {
		return err
	}
	degreeBound := air.degreeBound()
	if degreeBound*2 > air.ldeDomain.Size() {
		return fmt.Errorf("expansion factor %d too small for constraint degree %d",
			v.params.ExpansionFactor, cs.MaxDegree())
	}
	hasher, err := v.params.Hasher()
	if err != nil {
		return err
	}

	// Replay the commit phase
	t := NewTranscript(hasher)
	t.Absorb(LabelTraceRoot, proof.TraceRoot)
	coefficients := t.SqueezeFieldElements(LabelCompositionCoeff, field, cs.NumConstraints())
	t.Absorb(LabelCompositionRoot, proof.CompositionRoot)
	z := air.sampleOodPoint(t)
	t.Absorb(LabelOodValues, oodValueBytes(proof.OodTraceCurrent, proof.OodTraceNext, proof.OodComposition))

	// Out-of-domain consistency: the revealed values must satisfy the
	// composition relation at z
	oodExpected, err := air.compositionAt(z, proof.OodTraceCurrent, proof.OodTraceNext, coefficients)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProofRejected, err)
	}
	if !oodExpected.Equal(proof.OodComposition) {
		return fmt.Errorf("%w: out-of-domain composition value mismatch: %w", ErrProofRejected, ErrConsistencyFailure)
	}

	// Low-degree test; the composition commitment is the first FRI layer
	compositionValues, indices, err := FriVerify(t, v.params, air.ldeDomain,
		proof.CompositionRoot, degreeBound, proof.Fri, nil)
	if err != nil {
		if errors.Is(err, ErrProofMalformed) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrProofRejected, err)
	}
	if len(proof.TraceQueries) != len(indices) {
		return fmt.Errorf("%w: %d trace openings, want %d", ErrProofMalformed, len(proof.TraceQueries), len(indices))
	}

	// Spot checks: authenticate the trace rows and tie the composition
	// commitment to the trace commitment pointwise
	blowup := v.params.ExpansionFactor
	n := air.ldeDomain.Size()
	for q, index := range indices {
		opening := proof.TraceQueries[q]
		nextIndex := (index + blowup) % n

		if len(opening.Current) != cs.NumColumns || len(opening.Next) != cs.NumColumns {
			return fmt.Errorf("%w: query %d trace row has wrong width", ErrProofMalformed, q)
		}
		if !core.VerifyMerkleProof(proof.TraceRoot, n, index, rowBytes(opening.Current), opening.CurrentProof, hasher) {
			return fmt.Errorf("%w: query %d trace opening at index %d: %w",
				ErrProofRejected, q, index, ErrConsistencyFailure)
		}
		if !core.VerifyMerkleProof(proof.TraceRoot, n, nextIndex, rowBytes(opening.Next), opening.NextProof, hasher) {
			return fmt.Errorf("%w: query %d trace opening at index %d: %w",
				ErrProofRejected, q, nextIndex, ErrConsistencyFailure)
		}

		recomputed, err := air.compositionAt(air.ldeDomain.Element(index), opening.Current, opening.Next, coefficients)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrProofRejected, err)
		}
		if !recomputed.Equal(compositionValues[q]) {
			return fmt.Errorf("%w: query %d composition value does not match the trace: %w",
				ErrProofRejected, q, ErrConsistencyFailure)
		}
	}

	return nil
}

// checkShape runs the structural checks that need no transcript work
func (v *StarkVerifier) checkShape(cs *ConstraintSystem, proof *StarkProof) error {
	switch {
	case proof == nil:
		return fmt.Errorf("%w: nil proof", ErrProofMalformed)
	case len(proof.TraceRoot) == 0 || len(proof.CompositionRoot) == 0:
		return fmt.Errorf("%w: missing commitment root", ErrProofMalformed)
	case proof.Fri == nil || proof.Fri.FinalPolynomial == nil:
		return fmt.Errorf("%w: missing low-degree test", ErrProofMalformed)
	case proof.OodComposition == nil:
		return fmt.Errorf("%w: missing out-of-domain values", ErrProofMalformed)
	case len(proof.OodTraceCurrent) != cs.NumColumns || len(proof.OodTraceNext) != cs.NumColumns:
		return fmt.Errorf("%w: out-of-domain trace width %d, want %d",
			ErrProofMalformed, len(proof.OodTraceCurrent), cs.NumColumns)
	}
	for _, es := range [][]*core.FieldElement{proof.OodTraceCurrent, proof.OodTraceNext} {
		for _, e := range es {
			if e == nil {
				return fmt.Errorf("%w: missing out-of-domain values", ErrProofMalformed)
			}
		}
	}
	return nil
}

// rowBytes serializes a trace row the way the prover serialized its leaves
func rowBytes(row []*core.FieldElement) []byte {
	data := make([]byte, 0, len(row)*core.ElementSize)
	for _, e := range row {
		data = append(data, e.Bytes()...)
	}
	return data
}
