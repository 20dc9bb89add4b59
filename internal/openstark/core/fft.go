package core

import (
	"fmt"

	"github.com/openstark/openstark-go/internal/openstark/utils"
)

// Number-theoretic transform between coefficient and evaluation form on a
// root-of-unity domain.
//
// The kernel is an iterative radix-2 Cooley-Tukey transform: a bit-reversal
// permutation followed by log n butterfly stages with precomputed twiddle
// factors. Butterflies within one stage touch disjoint index pairs, so each
// stage is parallelized over blocks.

// NTT converts a polynomial in coefficient form to its evaluations over the
// domain, in index order Element(0)..Element(size-1).
//
// Fails with ErrDegreeTooLarge if the coefficient count exceeds the domain
// size; shorter inputs are zero-padded.
func NTT(domain *EvaluationDomain, coefficients []*FieldElement) ([]*FieldElement, error) {
	n := domain.Size()
	if len(coefficients) > n {
		return nil, fmt.Errorf("%w: %d coefficients on a domain of size %d",
			ErrDegreeTooLarge, len(coefficients), n)
	}

	field := domain.field
	values := make([]*FieldElement, n)
	copy(values, coefficients)
	for i := len(coefficients); i < n; i++ {
		values[i] = field.Zero()
	}

	// Coset evaluation: p(offset*x) has coefficients c_i * offset^i
	if !domain.offset.IsOne() {
		scale := field.One()
		for i := 1; i < n; i++ {
			scale = scale.Mul(domain.offset)
			if !values[i].IsZero() {
				values[i] = values[i].Mul(scale)
			}
		}
	}

	nttCore(values, domain.generator)
	return values, nil
}

// INTT converts evaluations over the domain back to coefficient form.
// The evaluation count must equal the domain size.
func INTT(domain *EvaluationDomain, evaluations []*FieldElement) ([]*FieldElement, error) {
	n := domain.Size()
	if len(evaluations) != n {
		return nil, fmt.Errorf("%w: %d evaluations on a domain of size %d",
			ErrInvalidDomainSize, len(evaluations), n)
	}

	field := domain.field
	values := make([]*FieldElement, n)
	copy(values, evaluations)

	genInv, err := domain.generator.Inv()
	if err != nil {
		return nil, err
	}
	nttCore(values, genInv)

	nInv, err := field.NewElementFromUint64(uint64(n)).Inv()
	if err != nil {
		return nil, err
	}
	for i := range values {
		values[i] = values[i].Mul(nInv)
	}

	// Undo the coset scaling applied by NTT
	if !domain.offset.IsOne() {
		offsetInv, err := domain.offset.Inv()
		if err != nil {
			return nil, err
		}
		scale := field.One()
		for i := 1; i < n; i++ {
			scale = scale.Mul(offsetInv)
			values[i] = values[i].Mul(scale)
		}
	}

	return values, nil
}

// nttCore runs the in-place transform. len(values) is a power of two and
// generator has exactly that order.
func nttCore(values []*FieldElement, generator *FieldElement) {
	n := len(values)
	if n == 1 {
		return
	}
	logN := uint(utils.Log2(n))

	// Bit-reversal permutation
	for i := 0; i < n; i++ {
		j := int(utils.ReverseBits(uint(i), logN))
		if i < j {
			values[i], values[j] = values[j], values[i]
		}
	}

	// Twiddle table: generator^0 .. generator^(n/2-1)
	twiddles := make([]*FieldElement, n/2)
	twiddles[0] = generator.field.One()
	for i := 1; i < n/2; i++ {
		twiddles[i] = twiddles[i-1].Mul(generator)
	}

	for length := 2; length <= n; length <<= 1 {
		half := length / 2
		stride := n / length
		nbBlocks := n / length

		// Blocks of one stage are independent; split them across CPUs.
		utils.Parallelize(nbBlocks, func(startBlock, endBlock int) {
			for b := startBlock; b < endBlock; b++ {
				base := b * length
				for j := 0; j < half; j++ {
					t := values[base+j+half].Mul(twiddles[j*stride])
					values[base+j+half] = values[base+j].Sub(t)
					values[base+j] = values[base+j].Add(t)
				}
			}
		})
	}
}

// InterpolateOnDomain interpolates evaluations over a root-of-unity domain
// into a polynomial, in O(n log n)
func InterpolateOnDomain(domain *EvaluationDomain, evaluations []*FieldElement) (*Polynomial, error) {
	coefficients, err := INTT(domain, evaluations)
	if err != nil {
		return nil, err
	}
	return NewPolynomial(domain.field, coefficients), nil
}

// LowDegreeExtend reinterpolates evaluations from a source domain onto a
// larger target domain. This moves a trace column from the trace domain into
// the commitment domain.
//
// Fails with ErrDegreeTooLarge if the target is smaller than the source.
func LowDegreeExtend(evaluations []*FieldElement, src, dst *EvaluationDomain) ([]*FieldElement, error) {
	if dst.Size() < src.Size() {
		return nil, fmt.Errorf("%w: target domain %d smaller than source %d",
			ErrDegreeTooLarge, dst.Size(), src.Size())
	}
	coefficients, err := INTT(src, evaluations)
	if err != nil {
		return nil, err
	}
	return NTT(dst, coefficients)
}

// Mul multiplies two polynomials, switching to NTT-based multiplication
// (pad to a power of two, transform, pointwise multiply, inverse transform)
// once the result degree justifies it.
func (p *Polynomial) Mul(other *Polynomial) (*Polynomial, error) {
	if p.IsZero() || other.IsZero() {
		return ZeroPolynomial(p.field), nil
	}

	resultLen := p.Degree() + other.Degree() + 1
	if resultLen <= 64 {
		return p.MulNaive(other), nil
	}

	size := utils.NextPowerOfTwo(resultLen)
	domain, err := NewEvaluationDomain(p.field, size)
	if err != nil {
		// Result too large for the field's FFT order; fall back to schoolbook
		return p.MulNaive(other), nil
	}

	lhs, err := NTT(domain, p.coefficients)
	if err != nil {
		return nil, err
	}
	rhs, err := NTT(domain, other.coefficients)
	if err != nil {
		return nil, err
	}
	for i := range lhs {
		lhs[i] = lhs[i].Mul(rhs[i])
	}
	coefficients, err := INTT(domain, lhs)
	if err != nil {
		return nil, err
	}
	return NewPolynomial(p.field, coefficients), nil
}
