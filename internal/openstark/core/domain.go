package core

import "fmt"

// EvaluationDomain is a coset of a multiplicative subgroup:
// {offset * generator^i : i = 0..size-1}, where generator is a primitive
// size-th root of unity and size is a power of two.
//
// Domains are immutable; the generator and its powers are derived from the
// field's canonical root-of-unity table, so prover and verifier always agree
// on element ordering.
type EvaluationDomain struct {
	field     *Field
	size      int
	generator *FieldElement
	offset    *FieldElement
}

// NewEvaluationDomain creates a domain of the given power-of-two size with
// no coset offset. Fails with ErrInvalidDomainSize on unsupported sizes.
func NewEvaluationDomain(field *Field, size int) (*EvaluationDomain, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDomainSize, size)
	}
	generator, err := field.RootOfUnity(uint64(size))
	if err != nil {
		return nil, err
	}
	return &EvaluationDomain{
		field:     field,
		size:      size,
		generator: generator,
		offset:    field.One(),
	}, nil
}

// WithOffset returns a copy of the domain shifted by the given coset offset
func (d *EvaluationDomain) WithOffset(offset *FieldElement) *EvaluationDomain {
	return &EvaluationDomain{
		field:     d.field,
		size:      d.size,
		generator: d.generator,
		offset:    offset,
	}
}

// Halve returns the domain of squares {offset^2 * (generator^2)^i}, which
// has half the size. This is the codomain of one FRI folding step.
func (d *EvaluationDomain) Halve() (*EvaluationDomain, error) {
	if d.size < 2 {
		return nil, fmt.Errorf("%w: cannot halve domain of size %d", ErrInvalidDomainSize, d.size)
	}
	return &EvaluationDomain{
		field:     d.field,
		size:      d.size / 2,
		generator: d.generator.Square(),
		offset:    d.offset.Square(),
	}, nil
}

// Field returns the field the domain lives in
func (d *EvaluationDomain) Field() *Field {
	return d.field
}

// Size returns the number of elements in the domain
func (d *EvaluationDomain) Size() int {
	return d.size
}

// Generator returns the primitive size-th root of unity generating the domain
func (d *EvaluationDomain) Generator() *FieldElement {
	return d.generator
}

// Offset returns the coset offset (one for plain subgroups)
func (d *EvaluationDomain) Offset() *FieldElement {
	return d.offset
}

// Element returns offset * generator^i
func (d *EvaluationDomain) Element(i int) *FieldElement {
	return d.offset.Mul(d.generator.ExpUint64(uint64(i % d.size)))
}

// Elements returns all domain elements in index order
func (d *EvaluationDomain) Elements() []*FieldElement {
	elements := make([]*FieldElement, d.size)
	current := d.offset
	for i := 0; i < d.size; i++ {
		elements[i] = current
		current = current.Mul(d.generator)
	}
	return elements
}
