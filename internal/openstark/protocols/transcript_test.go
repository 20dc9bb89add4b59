package protocols

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openstark/openstark-go/internal/openstark/core"
)

func newTestTranscript(t *testing.T) *Transcript {
	t.Helper()
	hasher, err := core.GetHasher(core.HashKeccak)
	require.NoError(t, err)
	return NewTranscript(hasher)
}

func TestTranscriptDeterminism(t *testing.T) {
	field := core.TestField()

	a := newTestTranscript(t)
	b := newTestTranscript(t)
	for _, tr := range []*Transcript{a, b} {
		tr.Absorb("commitment", []byte{1, 2, 3})
		tr.Absorb("values", []byte{4, 5})
	}

	require.True(t, a.SqueezeFieldElement("alpha", field).Equal(b.SqueezeFieldElement("alpha", field)))

	ia, err := a.SqueezeIndices("queries", 10, 64, false)
	require.NoError(t, err)
	ib, err := b.SqueezeIndices("queries", 10, 64, false)
	require.NoError(t, err)
	require.Equal(t, ia, ib)
}

func TestTranscriptDivergence(t *testing.T) {
	field := core.TestField()

	t.Run("different_data", func(t *testing.T) {
		a, b := newTestTranscript(t), newTestTranscript(t)
		a.Absorb("commitment", []byte{1})
		b.Absorb("commitment", []byte{2})
		require.False(t, a.SqueezeFieldElement("alpha", field).Equal(b.SqueezeFieldElement("alpha", field)))
	})

	t.Run("different_label", func(t *testing.T) {
		a, b := newTestTranscript(t), newTestTranscript(t)
		a.Absorb("commitment", []byte{1})
		b.Absorb("challenge", []byte{1})
		require.False(t, a.SqueezeFieldElement("alpha", field).Equal(b.SqueezeFieldElement("alpha", field)))
	})

	t.Run("squeezing_advances_state", func(t *testing.T) {
		tr := newTestTranscript(t)
		first := tr.SqueezeFieldElement("alpha", field)
		second := tr.SqueezeFieldElement("alpha", field)
		require.False(t, first.Equal(second))
	})
}

func TestSqueezeFieldElementIsCanonical(t *testing.T) {
	// The small field forces heavy rejection sampling: digests are 256 bits
	// and the modulus only 32, so out-of-range candidates dominate.
	field := core.TestField()
	tr := newTestTranscript(t)
	for i := 0; i < 50; i++ {
		e := tr.SqueezeFieldElement("alpha", field)
		require.True(t, e.Uint256().Cmp(field.Modulus()) < 0)
	}
}

func TestSqueezeIndices(t *testing.T) {
	t.Run("in_range", func(t *testing.T) {
		tr := newTestTranscript(t)
		indices, err := tr.SqueezeIndices("queries", 100, 32, false)
		require.NoError(t, err)
		require.Len(t, indices, 100)
		for _, idx := range indices {
			require.GreaterOrEqual(t, idx, 0)
			require.Less(t, idx, 32)
		}
	})

	t.Run("distinct_mode", func(t *testing.T) {
		tr := newTestTranscript(t)
		indices, err := tr.SqueezeIndices("queries", 30, 32, true)
		require.NoError(t, err)
		seen := make(map[int]bool)
		for _, idx := range indices {
			require.False(t, seen[idx], "duplicate index %d", idx)
			seen[idx] = true
		}
	})

	t.Run("rejects_non_power_of_two_domain", func(t *testing.T) {
		tr := newTestTranscript(t)
		_, err := tr.SqueezeIndices("queries", 4, 12, false)
		require.ErrorIs(t, err, core.ErrInvalidDomainSize)
	})

	t.Run("rejects_oversampling_distinct", func(t *testing.T) {
		tr := newTestTranscript(t)
		_, err := tr.SqueezeIndices("queries", 33, 32, true)
		require.Error(t, err)
	})
}
