package core

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestNewFieldValidation(t *testing.T) {
	one := uint256.NewInt(1)

	t.Run("rejects_even_modulus", func(t *testing.T) {
		_, err := NewField(uint256.NewInt(16), uint256.NewInt(3), one, 2)
		require.Error(t, err)
	})

	t.Run("rejects_tiny_modulus", func(t *testing.T) {
		_, err := NewField(uint256.NewInt(2), one, one, 1)
		require.Error(t, err)
	})

	t.Run("rejects_wrong_root_order", func(t *testing.T) {
		// 125 has order 2^30 in the test field, not 2^29
		_, err := NewField(uint256.NewInt(3221225473), uint256.NewInt(5), uint256.NewInt(125), 29)
		require.Error(t, err)
	})

	t.Run("accepts_test_field", func(t *testing.T) {
		f, err := NewField(uint256.NewInt(3221225473), uint256.NewInt(5), uint256.NewInt(125), 30)
		require.NoError(t, err)
		require.Equal(t, uint(30), f.TwoAdicity())
	})
}

func TestStarkFieldConstants(t *testing.T) {
	f := StarkField()

	// p = 2^251 + 17*2^192 + 1
	var p uint256.Int
	p.Lsh(uint256.NewInt(1), 251)
	var term uint256.Int
	term.Lsh(uint256.NewInt(17), 192)
	p.Add(&p, &term)
	p.Add(&p, uint256.NewInt(1))
	require.Equal(t, p.Hex(), f.Modulus().Hex())

	require.Equal(t, uint(192), f.TwoAdicity())
	require.Equal(t, uint64(3), f.Generator().Uint64())
}

func TestRootOfUnity(t *testing.T) {
	for _, f := range []*Field{TestField(), StarkField()} {
		root, err := f.RootOfUnity(1024)
		require.NoError(t, err)
		require.True(t, root.ExpUint64(1024).IsOne())
		require.False(t, root.ExpUint64(512).IsOne())
	}

	t.Run("rejects_non_power_of_two", func(t *testing.T) {
		_, err := TestField().RootOfUnity(12)
		require.ErrorIs(t, err, ErrInvalidDomainSize)
	})

	t.Run("rejects_excessive_order", func(t *testing.T) {
		_, err := TestField().RootOfUnity(1 << 31)
		require.ErrorIs(t, err, ErrInvalidDomainSize)
	})
}

func TestElementArithmetic(t *testing.T) {
	f := TestField()

	t.Run("sub_wraps", func(t *testing.T) {
		a := f.NewElementFromUint64(3)
		b := f.NewElementFromUint64(5)
		require.True(t, a.Sub(b).Equal(f.NewElementFromUint64(3221225471)))
	})

	t.Run("neg", func(t *testing.T) {
		a := f.NewElementFromUint64(1)
		require.True(t, a.Add(a.Neg()).IsZero())
		require.True(t, f.Zero().Neg().IsZero())
	})

	t.Run("exp_matches_repeated_mul", func(t *testing.T) {
		base := f.NewElementFromUint64(7)
		acc := f.One()
		for e := uint64(0); e < 20; e++ {
			require.True(t, base.ExpUint64(e).Equal(acc), "exponent %d", e)
			acc = acc.Mul(base)
		}
	})

	t.Run("inv_of_zero_fails", func(t *testing.T) {
		_, err := f.Zero().Inv()
		require.ErrorIs(t, err, ErrDivisionByZero)

		_, err = f.One().Div(f.Zero())
		require.ErrorIs(t, err, ErrDivisionByZero)
	})

	t.Run("fermat_inverse", func(t *testing.T) {
		a := f.NewElementFromUint64(123456789)
		inv, err := a.Inv()
		require.NoError(t, err)
		require.True(t, a.Mul(inv).IsOne())
	})
}

func TestElementBytesRoundTrip(t *testing.T) {
	f := StarkField()
	a, err := f.RandomElement()
	require.NoError(t, err)

	b := a.Bytes()
	require.Len(t, b, ElementSize)
	back, err := f.ElementFromBytes(b)
	require.NoError(t, err)
	require.True(t, a.Equal(back))

	t.Run("rejects_non_canonical", func(t *testing.T) {
		modBytes := f.Modulus().Bytes32()
		_, err := f.ElementFromBytes(modBytes[:])
		require.Error(t, err)
	})

	t.Run("rejects_short_input", func(t *testing.T) {
		_, err := f.ElementFromBytes([]byte{1, 2, 3})
		require.Error(t, err)
	})
}

func TestBatchInverse(t *testing.T) {
	f := TestField()

	elements := make([]*FieldElement, 33)
	for i := range elements {
		elements[i] = f.NewElementFromUint64(uint64(i + 1))
	}
	inverses, err := f.BatchInverse(elements)
	require.NoError(t, err)
	for i, inv := range inverses {
		require.True(t, elements[i].Mul(inv).IsOne(), "index %d", i)
	}

	t.Run("zero_element_fails", func(t *testing.T) {
		_, err := f.BatchInverse([]*FieldElement{f.One(), f.Zero(), f.One()})
		require.ErrorIs(t, err, ErrDivisionByZero)
	})

	t.Run("empty_input", func(t *testing.T) {
		inverses, err := f.BatchInverse(nil)
		require.NoError(t, err)
		require.Empty(t, inverses)
	})
}

// genElement produces arbitrary elements of f for property-based tests
func genElement(f *Field) gopter.Gen {
	return gen.UInt64().Map(func(v uint64) *FieldElement {
		return f.NewElementFromUint64(v)
	})
}

func TestFieldProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	for _, f := range []*Field{TestField(), StarkField()} {
		properties := gopter.NewProperties(parameters)

		properties.Property("addition is commutative", prop.ForAll(
			func(a, b *FieldElement) bool {
				return a.Add(b).Equal(b.Add(a))
			}, genElement(f), genElement(f)))

		properties.Property("multiplication distributes over addition", prop.ForAll(
			func(a, b, c *FieldElement) bool {
				return a.Add(b).Mul(c).Equal(a.Mul(c).Add(b.Mul(c)))
			}, genElement(f), genElement(f), genElement(f)))

		properties.Property("nonzero elements invert", prop.ForAll(
			func(a *FieldElement) bool {
				if a.IsZero() {
					return true
				}
				inv, err := a.Inv()
				return err == nil && a.Mul(inv).IsOne()
			}, genElement(f)))

		properties.Property("square matches self-multiplication", prop.ForAll(
			func(a *FieldElement) bool {
				return a.Square().Equal(a.Mul(a))
			}, genElement(f)))

		properties.TestingRun(t)
	}
}
