package protocols

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openstark/openstark-go/internal/openstark/core"
)

func encodedTestProof(t *testing.T) (*StarkProof, []byte, *core.Field) {
	t.Helper()
	field := core.TestField()
	cs, trace := fibonacciStatement(t, field, 16)
	prover, err := NewStarkProver(testParams(field))
	require.NoError(t, err)
	proof, err := prover.Prove(cs, trace)
	require.NoError(t, err)
	encoded, err := proof.Bytes()
	require.NoError(t, err)
	return proof, encoded, field
}

func TestProofEncodingRoundTrip(t *testing.T) {
	proof, encoded, field := encodedTestProof(t)

	decoded, err := ReadStarkProof(bytes.NewReader(encoded), field)
	require.NoError(t, err)

	// Re-encoding must reproduce the identical bytes
	reencoded, err := decoded.Bytes()
	require.NoError(t, err)
	require.Equal(t, encoded, reencoded)

	// And the decoded proof still verifies
	cs, trace := fibonacciStatement(t, field, 16)
	verifier, err := NewStarkVerifier(testParams(field))
	require.NoError(t, err)
	require.NoError(t, verifier.Verify(cs, trace.NumRows(), decoded))

	require.Equal(t, proof.TraceRoot, decoded.TraceRoot)
	require.Equal(t, proof.CompositionRoot, decoded.CompositionRoot)
}

func TestProofDecodingRejectsMalformedInput(t *testing.T) {
	_, encoded, field := encodedTestProof(t)

	t.Run("truncated", func(t *testing.T) {
		for _, cut := range []int{0, 1, 4, len(encoded) / 2, len(encoded) - 1} {
			_, err := ReadStarkProof(bytes.NewReader(encoded[:cut]), field)
			require.ErrorIs(t, err, ErrProofMalformed, "cut at %d", cut)
		}
	})

	t.Run("trailing_garbage", func(t *testing.T) {
		_, err := ReadStarkProof(bytes.NewReader(append(append([]byte(nil), encoded...), 0x00)), field)
		require.ErrorIs(t, err, ErrProofMalformed)
	})

	t.Run("non_canonical_element", func(t *testing.T) {
		// An out-of-field residue in place of the first OOD value. The OOD
		// section starts after the two length-prefixed roots.
		mutated := append([]byte(nil), encoded...)
		offset := 4 + 32 + 4 + 32 + 4
		for i := 0; i < core.ElementSize; i++ {
			mutated[offset+i] = 0xff
		}
		_, err := ReadStarkProof(bytes.NewReader(mutated), field)
		require.ErrorIs(t, err, ErrProofMalformed)
	})

	t.Run("oversized_count", func(t *testing.T) {
		// A digest length beyond the cap must fail before allocating
		mutated := append([]byte(nil), encoded...)
		mutated[0], mutated[1], mutated[2], mutated[3] = 0xff, 0xff, 0xff, 0xff
		_, err := ReadStarkProof(bytes.NewReader(mutated), field)
		require.ErrorIs(t, err, ErrProofMalformed)
	})
}

func TestProofDigest(t *testing.T) {
	proof, _, field := encodedTestProof(t)
	hasher, err := core.GetHasher(core.HashKeccak)
	require.NoError(t, err)

	first, err := proof.Digest(hasher)
	require.NoError(t, err)
	require.Len(t, first, hasher.Size())
	second, err := proof.Digest(hasher)
	require.NoError(t, err)
	require.Equal(t, first, second)

	// Any change to the proof changes the digest
	tampered := *proof
	tampered.OodComposition = proof.OodComposition.Add(field.One())
	other, err := tampered.Digest(hasher)
	require.NoError(t, err)
	require.NotEqual(t, first, other)
}

func TestParametersValidate(t *testing.T) {
	field := core.TestField()

	require.NoError(t, DefaultParameters(field).Validate())

	for name, params := range map[string]*Parameters{
		"nil_field":           {HashName: core.HashKeccak, ExpansionFactor: 8, NumQueries: 10, FriMaxRemainderDegree: 7},
		"odd_blowup":          DefaultParameters(field).WithExpansionFactor(6),
		"blowup_one":          DefaultParameters(field).WithExpansionFactor(1),
		"no_queries":          DefaultParameters(field).WithNumQueries(0),
		"unknown_hash":        DefaultParameters(field).WithHash("md5"),
		"bad_remainder_width": {Field: field, HashName: core.HashKeccak, ExpansionFactor: 8, NumQueries: 10, FriMaxRemainderDegree: 6},
	} {
		require.Error(t, params.Validate(), name)
	}

	t.Run("security_level", func(t *testing.T) {
		params := DefaultParameters(field).WithExpansionFactor(16).WithNumQueries(20)
		require.Equal(t, 80, params.SecurityLevel())
	})
}

func TestConstraintSystemValidate(t *testing.T) {
	field := core.TestField()
	cs, trace := fibonacciStatement(t, field, 8)

	require.NoError(t, cs.Validate(trace.NumRows()))
	require.Equal(t, 5, cs.NumConstraints())
	require.Equal(t, 1, cs.MaxDegree())

	t.Run("boundary_row_out_of_range", func(t *testing.T) {
		bad := *cs
		bad.Boundaries = append([]BoundaryConstraint(nil), cs.Boundaries...)
		bad.Boundaries[0].Row = 8
		require.ErrorIs(t, bad.Validate(8), core.ErrIndexOutOfRange)
	})

	t.Run("boundary_column_out_of_range", func(t *testing.T) {
		bad := *cs
		bad.Boundaries = append([]BoundaryConstraint(nil), cs.Boundaries...)
		bad.Boundaries[0].Column = 2
		require.ErrorIs(t, bad.Validate(8), core.ErrIndexOutOfRange)
	})

	t.Run("missing_evaluator", func(t *testing.T) {
		bad := *cs
		bad.Transitions = []TransitionConstraint{{Name: "empty", Degree: 1}}
		require.Error(t, bad.Validate(8))
	})

	t.Run("no_constraints", func(t *testing.T) {
		bad := &ConstraintSystem{NumColumns: 1}
		require.Error(t, bad.Validate(8))
	})
}

func TestTraceValidation(t *testing.T) {
	field := core.TestField()

	column := func(n int) []*core.FieldElement {
		col := make([]*core.FieldElement, n)
		for i := range col {
			col[i] = field.NewElementFromUint64(uint64(i))
		}
		return col
	}

	t.Run("rejects_non_power_of_two_length", func(t *testing.T) {
		_, err := NewTrace(field, [][]*core.FieldElement{column(6)})
		require.ErrorIs(t, err, core.ErrInvalidDomainSize)
	})

	t.Run("rejects_ragged_columns", func(t *testing.T) {
		_, err := NewTrace(field, [][]*core.FieldElement{column(8), column(4)})
		require.Error(t, err)
	})

	t.Run("rejects_empty", func(t *testing.T) {
		_, err := NewTrace(field, nil)
		require.Error(t, err)
	})

	t.Run("check_constraints_reports_row", func(t *testing.T) {
		cs, trace := fibonacciStatement(t, field, 8)
		trace.Column(0)[3] = trace.Cell(3, 0).Add(field.One())
		require.Error(t, trace.CheckConstraints(cs))
	})
}
