package core

import "fmt"

// BatchInverse inverts n elements at the cost of a single field inversion
// plus 3n multiplications, using Montgomery's running-product trick:
//
//  1. Accumulate prefix products acc[i] = e[0] * ... * e[i]
//  2. Invert the final accumulator once
//  3. Back-substitute: e[i]^-1 = acc[i-1] * (e[i+1] * ... * e[n-1] * acc[n-1]^-1)
//
// Fails with ErrDivisionByZero if any element is zero.
func (f *Field) BatchInverse(elements []*FieldElement) ([]*FieldElement, error) {
	n := len(elements)
	if n == 0 {
		return []*FieldElement{}, nil
	}

	for i, e := range elements {
		if e.IsZero() {
			return nil, fmt.Errorf("%w: element %d", ErrDivisionByZero, i)
		}
	}

	acc := make([]*FieldElement, n)
	acc[0] = elements[0]
	for i := 1; i < n; i++ {
		acc[i] = acc[i-1].Mul(elements[i])
	}

	accInv, err := acc[n-1].Inv()
	if err != nil {
		return nil, err
	}

	results := make([]*FieldElement, n)
	for i := n - 1; i > 0; i-- {
		results[i] = accInv.Mul(acc[i-1])
		accInv = accInv.Mul(elements[i])
	}
	results[0] = accInv

	return results, nil
}
