package core

import (
	"crypto/rand"
	"fmt"

	"github.com/holiman/uint256"
)

// Field represents a prime field with an FFT-friendly multiplicative
// structure: modulus - 1 = 2^twoAdicity * odd.
//
// A Field is immutable once constructed and is shared by reference across
// every component of a proving or verifying session. It is safe for
// concurrent use.
type Field struct {
	modulus     uint256.Int
	generator   uint256.Int // generator of the multiplicative group
	twoAdicity  uint
	twoAdicRoot uint256.Int // canonical generator of the order-2^twoAdicity subgroup
}

// FieldElement represents an element in the finite field.
//
// The value is always a canonical residue in [0, modulus); every operation
// reduces its result, so equality and serialization observe canonical values
// only. FieldElements are immutable: operations return new elements.
type FieldElement struct {
	field *Field
	value uint256.Int
}

// NewField creates a prime field from its modulus, a generator of the
// multiplicative group, and the canonical 2^twoAdicity-th root of unity.
//
// The modulus must be an odd prime of at most 255 bits (so that a+b never
// overflows 256-bit intermediate arithmetic). The root's order is verified.
func NewField(modulus, generator, twoAdicRoot *uint256.Int, twoAdicity uint) (*Field, error) {
	two := uint256.NewInt(2)
	if modulus.Cmp(two) <= 0 {
		return nil, fmt.Errorf("modulus must be greater than 2")
	}
	if modulus.BitLen() > 255 {
		return nil, fmt.Errorf("modulus must fit in 255 bits, got %d", modulus.BitLen())
	}
	if modulus[0]&1 == 0 {
		return nil, fmt.Errorf("modulus must be odd")
	}
	if generator.IsZero() || generator.Cmp(modulus) >= 0 {
		return nil, fmt.Errorf("generator must be a nonzero residue")
	}
	if twoAdicRoot.IsZero() || twoAdicRoot.Cmp(modulus) >= 0 {
		return nil, fmt.Errorf("two-adic root must be a nonzero residue")
	}
	if twoAdicity == 0 {
		return nil, fmt.Errorf("two-adicity must be positive")
	}

	f := &Field{twoAdicity: twoAdicity}
	f.modulus.Set(modulus)
	f.generator.Set(generator)
	f.twoAdicRoot.Set(twoAdicRoot)

	// Check ord(root) = 2^twoAdicity by repeated squaring.
	var acc uint256.Int
	acc.Set(twoAdicRoot)
	for i := uint(0); i < twoAdicity-1; i++ {
		acc.MulMod(&acc, &acc, &f.modulus)
	}
	if acc.Eq(uint256.NewInt(1)) {
		return nil, fmt.Errorf("two-adic root has order below 2^%d", twoAdicity)
	}
	acc.MulMod(&acc, &acc, &f.modulus)
	if !acc.Eq(uint256.NewInt(1)) {
		return nil, fmt.Errorf("two-adic root does not have order 2^%d", twoAdicity)
	}

	return f, nil
}

// starkModulusHex is the prime 2^251 + 17*2^192 + 1.
const starkModulusHex = "0x800000000000011000000000000000000000000000000000000000000000001"

// starkTwoAdicRootHex is 3^((p-1)/2^192) mod p, the canonical generator of
// the maximal power-of-two subgroup.
const starkTwoAdicRootHex = "0x5282db87529cfa3f0464519c8b0fa5ad187148e11a61616070024f42f8ef94"

// StarkField returns the standard 252-bit STARK field with
// p = 2^251 + 17*2^192 + 1, generator 3 and two-adicity 192.
func StarkField() *Field {
	modulus := uint256.MustFromHex(starkModulusHex)
	root := uint256.MustFromHex(starkTwoAdicRootHex)
	f, err := NewField(modulus, uint256.NewInt(3), root, 192)
	if err != nil {
		panic("stark field construction: " + err.Error())
	}
	return f
}

// TestField returns a small field with p = 3*2^30 + 1, generator 5 and
// two-adicity 30. Intended for tests that want human-sized values.
func TestField() *Field {
	f, err := NewField(uint256.NewInt(3221225473), uint256.NewInt(5), uint256.NewInt(125), 30)
	if err != nil {
		panic("test field construction: " + err.Error())
	}
	return f
}

// Modulus returns a copy of the field modulus
func (f *Field) Modulus() *uint256.Int {
	var m uint256.Int
	m.Set(&f.modulus)
	return &m
}

// Generator returns the generator of the multiplicative group
func (f *Field) Generator() *FieldElement {
	return f.newElementReduced(&f.generator)
}

// TwoAdicity returns k such that 2^k is the largest power-of-two subgroup order
func (f *Field) TwoAdicity() uint {
	return f.twoAdicity
}

// Equals reports whether two fields have the same modulus
func (f *Field) Equals(other *Field) bool {
	return f.modulus.Eq(&other.modulus)
}

// NewElement creates a field element, reducing the value mod the modulus
func (f *Field) NewElement(value *uint256.Int) *FieldElement {
	fe := &FieldElement{field: f}
	fe.value.Mod(value, &f.modulus)
	return fe
}

// NewElementFromUint64 creates a field element from a uint64
func (f *Field) NewElementFromUint64(value uint64) *FieldElement {
	return f.NewElement(uint256.NewInt(value))
}

// newElementReduced wraps a value already known to be in [0, modulus)
func (f *Field) newElementReduced(value *uint256.Int) *FieldElement {
	fe := &FieldElement{field: f}
	fe.value.Set(value)
	return fe
}

// ElementFromBytes decodes a canonical 32-byte big-endian residue.
// Values >= modulus are rejected so that every element has exactly one
// serialization.
func (f *Field) ElementFromBytes(b []byte) (*FieldElement, error) {
	if len(b) != ElementSize {
		return nil, fmt.Errorf("expected %d bytes, got %d", ElementSize, len(b))
	}
	var v uint256.Int
	v.SetBytes(b)
	if v.Cmp(&f.modulus) >= 0 {
		return nil, fmt.Errorf("value is not a canonical residue")
	}
	return f.newElementReduced(&v), nil
}

// ElementSize is the canonical serialized size of a field element in bytes
const ElementSize = 32

// Zero returns the additive identity
func (f *Field) Zero() *FieldElement {
	return &FieldElement{field: f}
}

// One returns the multiplicative identity
func (f *Field) One() *FieldElement {
	return f.NewElementFromUint64(1)
}

// RandomElement samples a uniformly random field element from crypto/rand
// using rejection sampling.
func (f *Field) RandomElement() (*FieldElement, error) {
	buf := make([]byte, ElementSize)
	var v uint256.Int
	for {
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to sample random element: %w", err)
		}
		v.SetBytes(buf)
		if v.Cmp(&f.modulus) < 0 {
			return f.newElementReduced(&v), nil
		}
	}
}

// RootOfUnity returns the canonical generator of the multiplicative subgroup
// of the given power-of-two order.
//
// Fails with ErrInvalidDomainSize if size is not a power of two or exceeds
// 2^twoAdicity.
func (f *Field) RootOfUnity(size uint64) (*FieldElement, error) {
	if size == 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: %d is not a power of two", ErrInvalidDomainSize, size)
	}
	log := uint(0)
	for s := size; s > 1; s >>= 1 {
		log++
	}
	if log > f.twoAdicity {
		return nil, fmt.Errorf("%w: 2^%d exceeds the field's maximum order 2^%d",
			ErrInvalidDomainSize, log, f.twoAdicity)
	}

	// twoAdicRoot^(2^(twoAdicity-log)) generates the order-size subgroup
	var r uint256.Int
	r.Set(&f.twoAdicRoot)
	for i := uint(0); i < f.twoAdicity-log; i++ {
		r.MulMod(&r, &r, &f.modulus)
	}
	return f.newElementReduced(&r), nil
}

// Field returns the field this element belongs to
func (fe *FieldElement) Field() *Field {
	return fe.field
}

// Uint256 returns a copy of the canonical value
func (fe *FieldElement) Uint256() *uint256.Int {
	var v uint256.Int
	v.Set(&fe.value)
	return &v
}

// Uint64 returns the low 64 bits of the canonical value
func (fe *FieldElement) Uint64() uint64 {
	return fe.value.Uint64()
}

// Add performs field addition
func (fe *FieldElement) Add(other *FieldElement) *FieldElement {
	fe.checkField(other)
	r := &FieldElement{field: fe.field}
	r.value.AddMod(&fe.value, &other.value, &fe.field.modulus)
	return r
}

// Sub performs field subtraction
func (fe *FieldElement) Sub(other *FieldElement) *FieldElement {
	fe.checkField(other)
	r := &FieldElement{field: fe.field}
	if fe.value.Lt(&other.value) {
		r.value.Add(&fe.value, &fe.field.modulus)
		r.value.Sub(&r.value, &other.value)
	} else {
		r.value.Sub(&fe.value, &other.value)
	}
	return r
}

// Neg returns the additive inverse
func (fe *FieldElement) Neg() *FieldElement {
	r := &FieldElement{field: fe.field}
	if !fe.value.IsZero() {
		r.value.Sub(&fe.field.modulus, &fe.value)
	}
	return r
}

// Mul performs field multiplication
func (fe *FieldElement) Mul(other *FieldElement) *FieldElement {
	fe.checkField(other)
	r := &FieldElement{field: fe.field}
	r.value.MulMod(&fe.value, &other.value, &fe.field.modulus)
	return r
}

// Square computes the square of the field element
func (fe *FieldElement) Square() *FieldElement {
	r := &FieldElement{field: fe.field}
	r.value.MulMod(&fe.value, &fe.value, &fe.field.modulus)
	return r
}

// Double returns 2*fe
func (fe *FieldElement) Double() *FieldElement {
	return fe.Add(fe)
}

// Exp performs field exponentiation by square-and-multiply
func (fe *FieldElement) Exp(exponent *uint256.Int) *FieldElement {
	var result, base uint256.Int
	result.SetOne()
	base.Set(&fe.value)
	mod := &fe.field.modulus

	for i := exponent.BitLen() - 1; i >= 0; i-- {
		result.MulMod(&result, &result, mod)
		if exponent[i/64]>>(uint(i)%64)&1 == 1 {
			result.MulMod(&result, &base, mod)
		}
	}
	return fe.field.newElementReduced(&result)
}

// ExpUint64 performs field exponentiation with a small exponent
func (fe *FieldElement) ExpUint64(exponent uint64) *FieldElement {
	return fe.Exp(uint256.NewInt(exponent))
}

// Inv computes the multiplicative inverse via Fermat's little theorem.
// Fails with ErrDivisionByZero on the additive identity.
func (fe *FieldElement) Inv() (*FieldElement, error) {
	if fe.value.IsZero() {
		return nil, ErrDivisionByZero
	}
	var pMinus2 uint256.Int
	pMinus2.Sub(&fe.field.modulus, uint256.NewInt(2))
	return fe.Exp(&pMinus2), nil
}

// Div performs field division (multiplication by inverse)
func (fe *FieldElement) Div(other *FieldElement) (*FieldElement, error) {
	inv, err := other.Inv()
	if err != nil {
		return nil, err
	}
	return fe.Mul(inv), nil
}

// Equal checks if two field elements are equal
func (fe *FieldElement) Equal(other *FieldElement) bool {
	return fe.field.Equals(other.field) && fe.value.Eq(&other.value)
}

// IsZero checks if the element is zero
func (fe *FieldElement) IsZero() bool {
	return fe.value.IsZero()
}

// IsOne checks if the element is one
func (fe *FieldElement) IsOne() bool {
	return fe.value.Eq(uint256.NewInt(1))
}

// Bytes returns the canonical 32-byte big-endian serialization
func (fe *FieldElement) Bytes() []byte {
	b := fe.value.Bytes32()
	return b[:]
}

// String returns the decimal representation of the canonical value
func (fe *FieldElement) String() string {
	return fe.value.Dec()
}

func (fe *FieldElement) checkField(other *FieldElement) {
	if !fe.field.Equals(other.field) {
		panic("field elements from different fields")
	}
}
