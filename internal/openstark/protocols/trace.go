package protocols

import (
	"fmt"

	"github.com/openstark/openstark-go/internal/openstark/core"
	"github.com/openstark/openstark-go/internal/openstark/utils"
)

// Trace is the execution trace: a rectangular table of field elements with
// one column per register and one row per step. The row count must be a
// power of two so the trace domain is a root-of-unity subgroup.
type Trace struct {
	field   *core.Field
	columns [][]*core.FieldElement
}

// NewTrace builds a trace from its columns. All columns must have the same
// power-of-two length.
func NewTrace(field *core.Field, columns [][]*core.FieldElement) (*Trace, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("trace must have at least one column")
	}
	rows := len(columns[0])
	if rows == 0 || !utils.IsPowerOfTwo(rows) {
		return nil, fmt.Errorf("%w: trace length %d is not a power of two", core.ErrInvalidDomainSize, rows)
	}
	for i, col := range columns {
		if len(col) != rows {
			return nil, fmt.Errorf("trace column %d has %d rows, want %d", i, len(col), rows)
		}
	}
	return &Trace{field: field, columns: columns}, nil
}

// NumRows returns the trace length
func (tr *Trace) NumRows() int {
	return len(tr.columns[0])
}

// NumColumns returns the trace width
func (tr *Trace) NumColumns() int {
	return len(tr.columns)
}

// Column returns column i by reference
func (tr *Trace) Column(i int) []*core.FieldElement {
	return tr.columns[i]
}

// Cell returns the value at (row, column)
func (tr *Trace) Cell(row, column int) *core.FieldElement {
	return tr.columns[column][row]
}

// Row returns row i as a fresh slice of column values
func (tr *Trace) Row(i int) []*core.FieldElement {
	row := make([]*core.FieldElement, len(tr.columns))
	for c := range tr.columns {
		row[c] = tr.columns[c][i]
	}
	return row
}

// CheckConstraints verifies the trace against the constraint system
// directly, without proving. Useful when debugging a failing statement.
func (tr *Trace) CheckConstraints(cs *ConstraintSystem) error {
	if cs.NumColumns != tr.NumColumns() {
		return fmt.Errorf("constraint system expects %d columns, trace has %d", cs.NumColumns, tr.NumColumns())
	}
	rows := tr.NumRows()
	for i := 0; i < rows-1; i++ {
		current, next := tr.Row(i), tr.Row(i+1)
		for _, c := range cs.Transitions {
			if !c.Evaluate(current, next).IsZero() {
				return fmt.Errorf("transition %q violated at row %d", c.Name, i)
			}
		}
	}
	for i, b := range cs.Boundaries {
		if !tr.Cell(b.Row, b.Column).Equal(b.Value) {
			return fmt.Errorf("boundary %d violated: trace[%d][%d] != %s", i, b.Row, b.Column, b.Value)
		}
	}
	return nil
}
