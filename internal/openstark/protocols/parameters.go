package protocols

import (
	"fmt"

	"github.com/openstark/openstark-go/internal/openstark/core"
	"github.com/openstark/openstark-go/internal/openstark/utils"
)

// Parameters bundles the protocol configuration shared by prover and
// verifier. Both sides must run with identical parameters or verification
// fails.
type Parameters struct {
	// Field is the prime field all arithmetic happens in
	Field *core.Field

	// HashName selects the hash capability for commitments and the
	// transcript. Empty selects Keccak-256.
	HashName string

	// ExpansionFactor is the blowup from the trace domain to the commitment
	// domain. Power of two, at least 2.
	ExpansionFactor int

	// NumQueries is the number of spot-check indices sampled in the query
	// phase
	NumQueries int

	// FriMaxRemainderDegree is the largest degree the explicit FRI final
	// polynomial may have. Folding stops once the tracked degree bound
	// drops to this size. FriMaxRemainderDegree+1 must be a power of two.
	FriMaxRemainderDegree int
}

// DefaultParameters returns a configuration targeting roughly 80 bits of
// conjectured security on the given field
func DefaultParameters(field *core.Field) *Parameters {
	return &Parameters{
		Field:                 field,
		HashName:              core.HashKeccak,
		ExpansionFactor:       8,
		NumQueries:            30,
		FriMaxRemainderDegree: 7,
	}
}

// WithExpansionFactor returns a copy with the given blowup factor
func (p *Parameters) WithExpansionFactor(factor int) *Parameters {
	q := *p
	q.ExpansionFactor = factor
	return &q
}

// WithNumQueries returns a copy with the given query count
func (p *Parameters) WithNumQueries(count int) *Parameters {
	q := *p
	q.NumQueries = count
	return &q
}

// WithHash returns a copy using the named hash function
func (p *Parameters) WithHash(name string) *Parameters {
	q := *p
	q.HashName = name
	return &q
}

// Validate checks the configuration for internal consistency
func (p *Parameters) Validate() error {
	if p.Field == nil {
		return fmt.Errorf("parameters: field is required")
	}
	if p.ExpansionFactor < 2 || !utils.IsPowerOfTwo(p.ExpansionFactor) {
		return fmt.Errorf("parameters: expansion factor must be a power of two >= 2, got %d", p.ExpansionFactor)
	}
	if p.NumQueries < 1 {
		return fmt.Errorf("parameters: at least one query is required, got %d", p.NumQueries)
	}
	if p.FriMaxRemainderDegree < 0 || !utils.IsPowerOfTwo(p.FriMaxRemainderDegree+1) {
		return fmt.Errorf("parameters: FRI remainder degree + 1 must be a power of two, got %d", p.FriMaxRemainderDegree)
	}
	if _, err := core.GetHasher(p.HashName); err != nil {
		return fmt.Errorf("parameters: %w", err)
	}
	return nil
}

// Hasher returns the configured hash capability. Validate first.
func (p *Parameters) Hasher() (core.Hasher, error) {
	return core.GetHasher(p.HashName)
}

// SecurityLevel returns the conjectured security level in bits. Each query
// contributes log2(expansion factor) bits.
func (p *Parameters) SecurityLevel() int {
	return p.NumQueries * utils.Log2(p.ExpansionFactor)
}
