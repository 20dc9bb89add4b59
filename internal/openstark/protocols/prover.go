package protocols

import (
	"fmt"
	"time"

	"github.com/openstark/openstark-go/internal/openstark/core"
	"github.com/openstark/openstark-go/internal/openstark/logger"
	"github.com/openstark/openstark-go/internal/openstark/utils"
)

// StarkProver produces proofs that a private execution trace satisfies a
// public constraint system
type StarkProver struct {
	params *Parameters
}

// NewStarkProver validates the parameters and returns a prover
func NewStarkProver(params *Parameters) (*StarkProver, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &StarkProver{params: params}, nil
}

// Prove generates a proof that trace satisfies cs.
//
// The workflow:
//  1. Interpolate the trace columns and extend them onto the commitment
//     coset, then commit to the extended trace row-wise.
//  2. Draw composition coefficients and build the composition polynomial's
//     evaluations over the commitment domain; commit to them.
//  3. Reveal the trace and composition at an out-of-domain point, tying the
//     two commitments to the claimed algebraic relation.
//  4. Run the FRI low-degree test on the composition evaluations.
//  5. Open the trace and FRI layers at transcript-sampled query indices.
//
// An invalid trace fails fast, before any commitment work.
func (p *StarkProver) Prove(cs *ConstraintSystem, trace *Trace) (*StarkProof, error) {
	start := time.Now()
	field := p.params.Field

	if cs.NumColumns != trace.NumColumns() {
		return nil, fmt.Errorf("constraint system expects %d columns, trace has %d", cs.NumColumns, trace.NumColumns())
	}
	if err := cs.Validate(trace.NumRows()); err != nil {
		return nil, err
	}
	if err := trace.CheckConstraints(cs); err != nil {
		return nil, fmt.Errorf("cannot prove an unsatisfied statement: %w", err)
	}

	air, err := newAirContext(p.params, cs, trace.NumRows())
	if err != nil {
		return nil, err
	}
	degreeBound := air.degreeBound()
	if degreeBound*2 > air.ldeDomain.Size() {
		return nil, fmt.Errorf("expansion factor %d too small for constraint degree %d",
			p.params.ExpansionFactor, cs.MaxDegree())
	}
	hasher, err := p.params.Hasher()
	if err != nil {
		return nil, err
	}
	log := logger.Logger().With().
		Int("rows", trace.NumRows()).
		Int("columns", trace.NumColumns()).
		Int("ldeSize", air.ldeDomain.Size()).
		Logger()

	// 1. Commit to the low-degree extended trace
	traceLDE := make([][]*core.FieldElement, trace.NumColumns())
	tracePolys := make([]*core.Polynomial, trace.NumColumns())
	for c := range traceLDE {
		coeffs, err := core.INTT(air.traceDomain, trace.Column(c))
		if err != nil {
			return nil, err
		}
		tracePolys[c] = core.NewPolynomial(field, coeffs)
		if traceLDE[c], err = core.NTT(air.ldeDomain, coeffs); err != nil {
			return nil, err
		}
	}
	traceTree, err := core.NewMerkleTree(traceRowLeaves(traceLDE), hasher)
	if err != nil {
		return nil, err
	}

	t := NewTranscript(hasher)
	t.Absorb(LabelTraceRoot, traceTree.Root())

	// 2. Compose the constraints and commit
	coefficients := t.SqueezeFieldElements(LabelCompositionCoeff, field, cs.NumConstraints())
	composition, err := air.compositionEvaluations(p.params, traceLDE, coefficients)
	if err != nil {
		return nil, err
	}
	compositionTree, err := core.NewMerkleTree(friLeaves(composition), hasher)
	if err != nil {
		return nil, err
	}
	t.Absorb(LabelCompositionRoot, compositionTree.Root())

	// 3. Out-of-domain consistency values
	z := air.sampleOodPoint(t)
	zNext := z.Mul(air.traceDomain.Generator())
	oodCurrent := make([]*core.FieldElement, len(tracePolys))
	oodNext := make([]*core.FieldElement, len(tracePolys))
	for c, poly := range tracePolys {
		oodCurrent[c] = poly.Eval(z)
		oodNext[c] = poly.Eval(zNext)
	}
	compositionPoly, err := core.InterpolateOnDomain(air.ldeDomain, composition)
	if err != nil {
		return nil, err
	}
	oodComposition := compositionPoly.Eval(z)
	t.Absorb(LabelOodValues, oodValueBytes(oodCurrent, oodNext, oodComposition))

	// 4. Low-degree test on the composition
	friCommitment, err := FriCommit(t, p.params, air.ldeDomain, composition, compositionTree, degreeBound)
	if err != nil {
		return nil, err
	}

	// 5. Query phase
	indices, err := t.SqueezeIndices(LabelQueryIndices, p.params.NumQueries, air.ldeDomain.Size(), true)
	if err != nil {
		return nil, err
	}
	friProof, err := friCommitment.Open(indices)
	if err != nil {
		return nil, err
	}
	traceQueries := make([]TraceOpening, len(indices))
	blowup := p.params.ExpansionFactor
	n := air.ldeDomain.Size()
	for q, index := range indices {
		nextIndex := (index + blowup) % n
		opening := TraceOpening{
			Current: traceRow(traceLDE, index),
			Next:    traceRow(traceLDE, nextIndex),
		}
		if opening.CurrentProof, err = traceTree.Open(index); err != nil {
			return nil, err
		}
		if opening.NextProof, err = traceTree.Open(nextIndex); err != nil {
			return nil, err
		}
		traceQueries[q] = opening
	}

	log.Debug().
		Int("queries", len(indices)).
		Dur("took", time.Since(start)).
		Msg("proof generated")

	return &StarkProof{
		TraceRoot:       traceTree.Root(),
		CompositionRoot: compositionTree.Root(),
		OodTraceCurrent: oodCurrent,
		OodTraceNext:    oodNext,
		OodComposition:  oodComposition,
		TraceQueries:    traceQueries,
		Fri:             friProof,
	}, nil
}

// traceRow collects one row of the extended trace
func traceRow(traceLDE [][]*core.FieldElement, index int) []*core.FieldElement {
	row := make([]*core.FieldElement, len(traceLDE))
	for c := range traceLDE {
		row[c] = traceLDE[c][index]
	}
	return row
}

// traceRowLeaves serializes the extended trace into row leaves, one leaf per
// domain point with all column values concatenated
func traceRowLeaves(traceLDE [][]*core.FieldElement) [][]byte {
	n := len(traceLDE[0])
	leaves := make([][]byte, n)
	utils.Parallelize(n, func(start, end int) {
		for i := start; i < end; i++ {
			leaf := make([]byte, 0, len(traceLDE)*core.ElementSize)
			for c := range traceLDE {
				leaf = append(leaf, traceLDE[c][i].Bytes()...)
			}
			leaves[i] = leaf
		}
	})
	return leaves
}

// oodValueBytes serializes the out-of-domain values for the transcript
func oodValueBytes(current, next []*core.FieldElement, composition *core.FieldElement) []byte {
	data := make([]byte, 0, (len(current)+len(next)+1)*core.ElementSize)
	for _, e := range current {
		data = append(data, e.Bytes()...)
	}
	for _, e := range next {
		data = append(data, e.Bytes()...)
	}
	return append(data, composition.Bytes()...)
}
