package protocols

import (
	"fmt"

	"github.com/openstark/openstark-go/internal/openstark/core"
)

// TransitionConstraint is a polynomial relation between a trace row and its
// successor. A valid trace satisfies Evaluate(row i, row i+1) == 0 for every
// i except the last row.
type TransitionConstraint struct {
	// Name identifies the constraint in diagnostics
	Name string

	// Degree is the total degree of the relation in the row variables.
	// It bounds the degree of the constraint quotient and must not be
	// understated.
	Degree int

	// Evaluate computes the relation on a pair of adjacent rows. It is
	// called on arbitrary field elements during proving, not just trace
	// values, and must be a pure polynomial function of its inputs.
	Evaluate func(current, next []*core.FieldElement) *core.FieldElement
}

// BoundaryConstraint pins one trace cell to a public value
type BoundaryConstraint struct {
	// Column is the trace column the constraint applies to
	Column int

	// Row is the trace row the constraint applies to
	Row int

	// Value is the required cell value
	Value *core.FieldElement
}

// ConstraintSystem is the public statement being proven: the trace shape
// together with the transition and boundary constraints a valid trace must
// satisfy. The verifier sees the constraint system and never the trace.
type ConstraintSystem struct {
	// NumColumns is the trace width
	NumColumns int

	Transitions []TransitionConstraint
	Boundaries  []BoundaryConstraint
}

// NumConstraints returns the total constraint count. Composition coefficients
// are sampled in this quantity, transitions first.
func (cs *ConstraintSystem) NumConstraints() int {
	return len(cs.Transitions) + len(cs.Boundaries)
}

// MaxDegree returns the largest transition constraint degree. Boundary
// constraints are linear and never dominate.
func (cs *ConstraintSystem) MaxDegree() int {
	max := 1
	for _, c := range cs.Transitions {
		if c.Degree > max {
			max = c.Degree
		}
	}
	return max
}

// Validate checks the constraint system against a trace length
func (cs *ConstraintSystem) Validate(traceLength int) error {
	if cs.NumColumns < 1 {
		return fmt.Errorf("constraint system: trace must have at least one column")
	}
	if cs.NumConstraints() == 0 {
		return fmt.Errorf("constraint system: at least one constraint is required")
	}
	for _, c := range cs.Transitions {
		if c.Evaluate == nil {
			return fmt.Errorf("constraint system: transition %q has no evaluator", c.Name)
		}
		if c.Degree < 1 {
			return fmt.Errorf("constraint system: transition %q has degree %d", c.Name, c.Degree)
		}
	}
	for i, b := range cs.Boundaries {
		if b.Column < 0 || b.Column >= cs.NumColumns {
			return fmt.Errorf("%w: boundary %d targets column %d of %d",
				core.ErrIndexOutOfRange, i, b.Column, cs.NumColumns)
		}
		if b.Row < 0 || b.Row >= traceLength {
			return fmt.Errorf("%w: boundary %d targets row %d of %d",
				core.ErrIndexOutOfRange, i, b.Row, traceLength)
		}
		if b.Value == nil {
			return fmt.Errorf("constraint system: boundary %d has no value", i)
		}
	}
	return nil
}
