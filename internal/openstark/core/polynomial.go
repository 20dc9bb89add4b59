package core

import (
	"fmt"
	"strings"
)

// Polynomial represents a polynomial with coefficients in a finite field,
// lowest degree first. The zero polynomial has no coefficients and degree -1.
//
// Polynomials are immutable value types; operations return new polynomials.
type Polynomial struct {
	coefficients []*FieldElement
	field        *Field
}

// NewPolynomial creates a polynomial from field elements, trimming leading
// zero coefficients
func NewPolynomial(field *Field, coefficients []*FieldElement) *Polynomial {
	last := len(coefficients) - 1
	for last >= 0 && coefficients[last].IsZero() {
		last--
	}
	trimmed := make([]*FieldElement, last+1)
	copy(trimmed, coefficients[:last+1])
	return &Polynomial{coefficients: trimmed, field: field}
}

// NewPolynomialFromUint64 creates a polynomial from uint64 coefficients
func NewPolynomialFromUint64(field *Field, coefficients []uint64) *Polynomial {
	fieldCoeffs := make([]*FieldElement, len(coefficients))
	for i, c := range coefficients {
		fieldCoeffs[i] = field.NewElementFromUint64(c)
	}
	return NewPolynomial(field, fieldCoeffs)
}

// ZeroPolynomial returns the zero polynomial
func ZeroPolynomial(field *Field) *Polynomial {
	return &Polynomial{field: field}
}

// Degree returns the degree of the polynomial; the zero polynomial has
// degree -1
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// IsZero reports whether p is the zero polynomial
func (p *Polynomial) IsZero() bool {
	return len(p.coefficients) == 0
}

// Field returns the field the polynomial is defined over
func (p *Polynomial) Field() *Field {
	return p.field
}

// Coefficient returns the coefficient of the given degree, zero beyond the
// stored length
func (p *Polynomial) Coefficient(degree int) *FieldElement {
	if degree < 0 || degree >= len(p.coefficients) {
		return p.field.Zero()
	}
	return p.coefficients[degree]
}

// Coefficients returns a copy of the coefficient slice, lowest degree first
func (p *Polynomial) Coefficients() []*FieldElement {
	coeffs := make([]*FieldElement, len(p.coefficients))
	copy(coeffs, p.coefficients)
	return coeffs
}

// Eval evaluates the polynomial at the given point using Horner's rule
func (p *Polynomial) Eval(point *FieldElement) *FieldElement {
	result := p.field.Zero()
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		result = result.Mul(point).Add(p.coefficients[i])
	}
	return result
}

// Add adds two polynomials
func (p *Polynomial) Add(other *Polynomial) *Polynomial {
	n := len(p.coefficients)
	if len(other.coefficients) > n {
		n = len(other.coefficients)
	}
	coefficients := make([]*FieldElement, n)
	for i := 0; i < n; i++ {
		coefficients[i] = p.Coefficient(i).Add(other.Coefficient(i))
	}
	return NewPolynomial(p.field, coefficients)
}

// Sub subtracts two polynomials
func (p *Polynomial) Sub(other *Polynomial) *Polynomial {
	n := len(p.coefficients)
	if len(other.coefficients) > n {
		n = len(other.coefficients)
	}
	coefficients := make([]*FieldElement, n)
	for i := 0; i < n; i++ {
		coefficients[i] = p.Coefficient(i).Sub(other.Coefficient(i))
	}
	return NewPolynomial(p.field, coefficients)
}

// MulScalar multiplies the polynomial by a scalar
func (p *Polynomial) MulScalar(scalar *FieldElement) *Polynomial {
	coefficients := make([]*FieldElement, len(p.coefficients))
	for i, c := range p.coefficients {
		coefficients[i] = c.Mul(scalar)
	}
	return NewPolynomial(p.field, coefficients)
}

// MulNaive multiplies two polynomials by schoolbook convolution.
// Quadratic; Mul switches to the NTT for large operands.
func (p *Polynomial) MulNaive(other *Polynomial) *Polynomial {
	if p.IsZero() || other.IsZero() {
		return ZeroPolynomial(p.field)
	}
	coefficients := make([]*FieldElement, p.Degree()+other.Degree()+1)
	for i := range coefficients {
		coefficients[i] = p.field.Zero()
	}
	for i, a := range p.coefficients {
		for j, b := range other.coefficients {
			coefficients[i+j] = coefficients[i+j].Add(a.Mul(b))
		}
	}
	return NewPolynomial(p.field, coefficients)
}

// DivideByLinear divides p by (x - root) using synthetic division and
// returns the quotient and the remainder p(root).
func (p *Polynomial) DivideByLinear(root *FieldElement) (*Polynomial, *FieldElement) {
	if p.IsZero() {
		return ZeroPolynomial(p.field), p.field.Zero()
	}
	n := len(p.coefficients)
	quotient := make([]*FieldElement, n-1)
	carry := p.field.Zero()
	for i := n - 1; i > 0; i-- {
		carry = p.coefficients[i].Add(carry.Mul(root))
		quotient[i-1] = carry
	}
	remainder := p.coefficients[0].Add(carry.Mul(root))
	return NewPolynomial(p.field, quotient), remainder
}

// Interpolate performs Lagrange interpolation through the given points.
// Intended for arbitrary (non-subgroup) domains; for root-of-unity domains
// use InterpolateOnDomain, which runs in O(n log n).
func Interpolate(field *Field, xs, ys []*FieldElement) (*Polynomial, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("points and values length mismatch: %d != %d", len(xs), len(ys))
	}
	if len(xs) == 0 {
		return ZeroPolynomial(field), nil
	}

	result := ZeroPolynomial(field)
	for i := range xs {
		// basis_i(x) = prod_{j != i} (x - x_j) / (x_i - x_j)
		basis := NewPolynomial(field, []*FieldElement{field.One()})
		denominator := field.One()
		for j := range xs {
			if i == j {
				continue
			}
			basis = basis.MulNaive(NewPolynomial(field, []*FieldElement{xs[j].Neg(), field.One()}))
			diff := xs[i].Sub(xs[j])
			if diff.IsZero() {
				return nil, fmt.Errorf("duplicate interpolation point at indices %d and %d", i, j)
			}
			denominator = denominator.Mul(diff)
		}
		scale, err := ys[i].Div(denominator)
		if err != nil {
			return nil, err
		}
		result = result.Add(basis.MulScalar(scale))
	}
	return result, nil
}

// String returns a human-readable representation, highest degree first
func (p *Polynomial) String() string {
	if p.IsZero() {
		return "0"
	}
	var terms []string
	for i := p.Degree(); i >= 0; i-- {
		c := p.coefficients[i]
		if c.IsZero() {
			continue
		}
		switch {
		case i == 0:
			terms = append(terms, c.String())
		case i == 1 && c.IsOne():
			terms = append(terms, "x")
		case i == 1:
			terms = append(terms, c.String()+"x")
		case c.IsOne():
			terms = append(terms, fmt.Sprintf("x^%d", i))
		default:
			terms = append(terms, fmt.Sprintf("%sx^%d", c.String(), i))
		}
	}
	return strings.Join(terms, " + ")
}
