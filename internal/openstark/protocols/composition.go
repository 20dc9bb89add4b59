package protocols

import (
	"fmt"

	"github.com/openstark/openstark-go/internal/openstark/core"
	"github.com/openstark/openstark-go/internal/openstark/utils"
)

// Constraint composition.
//
// Every constraint becomes a quotient: transition constraints are divided by
// the transition vanishing polynomial Z(x) = (x^N - 1)/(x - g^{N-1}), which
// is zero on every trace row except the last, and each boundary constraint
// on cell (row r, column c) becomes (trace_c(x) - value)/(x - g^r). A valid
// trace makes every numerator vanish where its denominator does, so all
// quotients are polynomials of degree below the composition degree bound.
// The composition polynomial is their random linear combination under
// transcript-derived coefficients, transitions first.

// airContext carries the domain geometry both sides of the protocol agree on
type airContext struct {
	cs          *ConstraintSystem
	traceDomain *core.EvaluationDomain
	ldeDomain   *core.EvaluationDomain
	lastPoint   *core.FieldElement // g^{N-1}, the excluded last row
}

func newAirContext(params *Parameters, cs *ConstraintSystem, traceLength int) (*airContext, error) {
	traceDomain, err := core.NewEvaluationDomain(params.Field, traceLength)
	if err != nil {
		return nil, err
	}
	ldeDomain, err := core.NewEvaluationDomain(params.Field, traceLength*params.ExpansionFactor)
	if err != nil {
		return nil, err
	}
	// Committing on a coset keeps the vanishing denominators nonzero at
	// every commitment point
	ldeDomain = ldeDomain.WithOffset(params.Field.Generator())

	return &airContext{
		cs:          cs,
		traceDomain: traceDomain,
		ldeDomain:   ldeDomain,
		lastPoint:   traceDomain.Generator().ExpUint64(uint64(traceLength - 1)),
	}, nil
}

// degreeBound returns the strict degree bound the composition polynomial is
// tested against. Dividing a degree-d constraint by the vanishing
// polynomial leaves degree at most (d-1)(N-1), rounded up to a power-of-two
// multiple of the trace length.
func (a *airContext) degreeBound() int {
	factor := utils.NextPowerOfTwo(a.cs.MaxDegree() - 1)
	if factor < 1 {
		factor = 1
	}
	return a.traceDomain.Size() * factor
}

// compositionAt evaluates the composition polynomial at one point from the
// trace values at x and g*x. Used by the verifier at query points and at
// the out-of-domain point; x must lie outside the trace domain.
func (a *airContext) compositionAt(x *core.FieldElement, current, next []*core.FieldElement,
	coefficients []*core.FieldElement) (*core.FieldElement, error) {

	field := x.Field()
	n := uint64(a.traceDomain.Size())

	// Z(x) = (x^N - 1)/(x - g^{N-1})
	vanishing, err := x.ExpUint64(n).Sub(field.One()).Div(x.Sub(a.lastPoint))
	if err != nil {
		return nil, err
	}
	vanishingInv, err := vanishing.Inv()
	if err != nil {
		return nil, fmt.Errorf("composition point lies on the trace domain: %w", err)
	}

	result := field.Zero()
	k := 0
	for _, c := range a.cs.Transitions {
		term := c.Evaluate(current, next).Mul(vanishingInv)
		result = result.Add(coefficients[k].Mul(term))
		k++
	}
	for _, b := range a.cs.Boundaries {
		point := a.traceDomain.Generator().ExpUint64(uint64(b.Row))
		denomInv, err := x.Sub(point).Inv()
		if err != nil {
			return nil, fmt.Errorf("composition point lies on the trace domain: %w", err)
		}
		term := current[b.Column].Sub(b.Value).Mul(denomInv)
		result = result.Add(coefficients[k].Mul(term))
		k++
	}
	return result, nil
}

// compositionEvaluations computes the composition polynomial in evaluation
// form over the whole commitment domain. traceLDE holds the low-degree
// extended trace columns; the row g*x sits ExpansionFactor slots ahead.
//
// All denominators are inverted in batches up front, then the pointwise
// combination runs in parallel.
func (a *airContext) compositionEvaluations(params *Parameters, traceLDE [][]*core.FieldElement,
	coefficients []*core.FieldElement) ([]*core.FieldElement, error) {

	field := params.Field
	n := a.ldeDomain.Size()
	traceLen := uint64(a.traceDomain.Size())
	blowup := params.ExpansionFactor
	points := a.ldeDomain.Elements()

	// x^N - 1 over the commitment domain is periodic with period blowup:
	// x_q^N = offset^N * (gen^N)^q and gen^N has order blowup.
	genN := a.ldeDomain.Generator().ExpUint64(traceLen)
	periodic := make([]*core.FieldElement, blowup)
	acc := a.ldeDomain.Offset().ExpUint64(traceLen)
	for r := 0; r < blowup; r++ {
		periodic[r] = acc.Sub(field.One())
		acc = acc.Mul(genN)
	}
	periodicInv, err := field.BatchInverse(periodic)
	if err != nil {
		return nil, err
	}

	// 1/(x_q - g^r) for every boundary constraint, batched per constraint
	boundaryInv := make([][]*core.FieldElement, len(a.cs.Boundaries))
	for bi, b := range a.cs.Boundaries {
		point := a.traceDomain.Generator().ExpUint64(uint64(b.Row))
		denoms := make([]*core.FieldElement, n)
		utils.Parallelize(n, func(start, end int) {
			for q := start; q < end; q++ {
				denoms[q] = points[q].Sub(point)
			}
		})
		if boundaryInv[bi], err = field.BatchInverse(denoms); err != nil {
			return nil, err
		}
	}

	evaluations := make([]*core.FieldElement, n)
	utils.Parallelize(n, func(start, end int) {
		current := make([]*core.FieldElement, len(traceLDE))
		next := make([]*core.FieldElement, len(traceLDE))
		for q := start; q < end; q++ {
			for c := range traceLDE {
				current[c] = traceLDE[c][q]
				next[c] = traceLDE[c][(q+blowup)%n]
			}

			// 1/Z(x_q) = (x_q - g^{N-1}) / (x_q^N - 1)
			vanishingInv := points[q].Sub(a.lastPoint).Mul(periodicInv[q%blowup])

			acc := field.Zero()
			k := 0
			for _, c := range a.cs.Transitions {
				term := c.Evaluate(current, next).Mul(vanishingInv)
				acc = acc.Add(coefficients[k].Mul(term))
				k++
			}
			for bi, b := range a.cs.Boundaries {
				term := current[b.Column].Sub(b.Value).Mul(boundaryInv[bi][q])
				acc = acc.Add(coefficients[k].Mul(term))
				k++
			}
			evaluations[q] = acc
		}
	})
	return evaluations, nil
}

// sampleOodPoint draws the out-of-domain challenge, resampling until it
// avoids both the trace domain and the commitment coset
func (a *airContext) sampleOodPoint(t *Transcript) *core.FieldElement {
	field := a.traceDomain.Field()
	traceLen := uint64(a.traceDomain.Size())
	ldeLen := uint64(a.ldeDomain.Size())
	cosetAnchor := a.ldeDomain.Offset().ExpUint64(ldeLen)
	for {
		z := t.SqueezeFieldElement(LabelOodPoint, field)
		if z.ExpUint64(traceLen).IsOne() {
			continue
		}
		if z.ExpUint64(ldeLen).Equal(cosetAnchor) {
			continue
		}
		return z
	}
}
