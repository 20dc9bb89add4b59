package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPolynomialBasics(t *testing.T) {
	f := TestField()

	t.Run("trims_leading_zeros", func(t *testing.T) {
		p := NewPolynomialFromUint64(f, []uint64{1, 2, 0, 0})
		require.Equal(t, 1, p.Degree())
	})

	t.Run("zero_polynomial", func(t *testing.T) {
		p := ZeroPolynomial(f)
		require.True(t, p.IsZero())
		require.Equal(t, -1, p.Degree())
		require.True(t, p.Eval(f.NewElementFromUint64(42)).IsZero())
	})

	t.Run("coefficient_beyond_degree_is_zero", func(t *testing.T) {
		p := NewPolynomialFromUint64(f, []uint64{1, 2})
		require.True(t, p.Coefficient(5).IsZero())
	})
}

func TestPolynomialEval(t *testing.T) {
	f := TestField()

	// p(x) = 3 + 2x + x^2, p(5) = 38
	p := NewPolynomialFromUint64(f, []uint64{3, 2, 1})
	got := p.Eval(f.NewElementFromUint64(5))
	require.True(t, got.Equal(f.NewElementFromUint64(38)))
}

func TestPolynomialAddSub(t *testing.T) {
	f := TestField()
	p := NewPolynomialFromUint64(f, []uint64{1, 2, 3})
	q := NewPolynomialFromUint64(f, []uint64{5, 0, 0, 7})

	sum := p.Add(q)
	require.Equal(t, 3, sum.Degree())
	require.True(t, sum.Sub(q).Eval(f.NewElementFromUint64(9)).Equal(p.Eval(f.NewElementFromUint64(9))))

	// p - p = 0
	require.True(t, p.Sub(p).IsZero())
}

func TestPolynomialMul(t *testing.T) {
	f := TestField()

	t.Run("schoolbook", func(t *testing.T) {
		p := NewPolynomialFromUint64(f, []uint64{1, 1})
		square := p.MulNaive(p)
		require.Equal(t, 2, square.Degree())
		require.True(t, square.Coefficient(0).IsOne())
		require.True(t, square.Coefficient(1).Equal(f.NewElementFromUint64(2)))
		require.True(t, square.Coefficient(2).IsOne())
	})

	t.Run("ntt_matches_schoolbook", func(t *testing.T) {
		coeffsA := make([]*FieldElement, 100)
		coeffsB := make([]*FieldElement, 90)
		for i := range coeffsA {
			coeffsA[i] = f.NewElementFromUint64(uint64(i*i + 1))
		}
		for i := range coeffsB {
			coeffsB[i] = f.NewElementFromUint64(uint64(3*i + 7))
		}
		p := NewPolynomial(f, coeffsA)
		q := NewPolynomial(f, coeffsB)

		fast, err := p.Mul(q)
		require.NoError(t, err)
		slow := p.MulNaive(q)
		require.Equal(t, slow.Degree(), fast.Degree())
		for i := 0; i <= slow.Degree(); i++ {
			require.True(t, fast.Coefficient(i).Equal(slow.Coefficient(i)), "coefficient %d", i)
		}
	})

	t.Run("zero_operand", func(t *testing.T) {
		p := NewPolynomialFromUint64(f, []uint64{1, 2})
		got, err := p.Mul(ZeroPolynomial(f))
		require.NoError(t, err)
		require.True(t, got.IsZero())
	})
}

func TestDivideByLinear(t *testing.T) {
	f := TestField()
	p := NewPolynomialFromUint64(f, []uint64{6, 11, 6, 1}) // (x+1)(x+2)(x+3)
	root := f.NewElementFromUint64(3).Neg()

	quotient, remainder := p.DivideByLinear(root)
	require.True(t, remainder.IsZero())
	require.Equal(t, 2, quotient.Degree())

	// quotient * (x - root) reproduces p
	linear := NewPolynomial(f, []*FieldElement{root.Neg(), f.One()})
	back := quotient.MulNaive(linear)
	for i := 0; i <= p.Degree(); i++ {
		require.True(t, back.Coefficient(i).Equal(p.Coefficient(i)), "coefficient %d", i)
	}

	t.Run("remainder_is_evaluation", func(t *testing.T) {
		point := f.NewElementFromUint64(10)
		_, rem := p.DivideByLinear(point)
		require.True(t, rem.Equal(p.Eval(point)))
	})
}

func TestLagrangeInterpolate(t *testing.T) {
	f := TestField()

	xs := []*FieldElement{
		f.NewElementFromUint64(2),
		f.NewElementFromUint64(7),
		f.NewElementFromUint64(11),
		f.NewElementFromUint64(40),
	}
	target := NewPolynomialFromUint64(f, []uint64{5, 0, 3, 1})
	ys := make([]*FieldElement, len(xs))
	for i, x := range xs {
		ys[i] = target.Eval(x)
	}

	p, err := Interpolate(f, xs, ys)
	require.NoError(t, err)
	require.Equal(t, target.Degree(), p.Degree())
	for i, x := range xs {
		require.True(t, p.Eval(x).Equal(ys[i]), "point %d", i)
	}

	t.Run("duplicate_points_fail", func(t *testing.T) {
		_, err := Interpolate(f, []*FieldElement{xs[0], xs[0]}, []*FieldElement{ys[0], ys[1]})
		require.Error(t, err)
	})

	t.Run("mismatched_lengths_fail", func(t *testing.T) {
		_, err := Interpolate(f, xs[:2], ys[:3])
		require.Error(t, err)
	})
}
