package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsPowerOfTwo(t *testing.T) {
	for _, n := range []int{1, 2, 4, 8, 1024, 1 << 30} {
		require.True(t, IsPowerOfTwo(n), "n=%d", n)
	}
	for _, n := range []int{-4, -1, 0, 3, 6, 12, 1023} {
		require.False(t, IsPowerOfTwo(n), "n=%d", n)
	}
}

func TestLog2(t *testing.T) {
	require.Equal(t, 0, Log2(1))
	require.Equal(t, 3, Log2(8))
	require.Equal(t, 10, Log2(1024))
	require.Equal(t, -1, Log2(0))
	require.Equal(t, -1, Log2(12))
}

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 8: 8, 9: 16, 1000: 1024}
	for in, want := range cases {
		require.Equal(t, want, NextPowerOfTwo(in), "n=%d", in)
	}
}

func TestReverseBits(t *testing.T) {
	require.Equal(t, uint(0), ReverseBits(0, 4))
	require.Equal(t, uint(8), ReverseBits(1, 4))
	require.Equal(t, uint(12), ReverseBits(3, 4))
	require.Equal(t, uint(1), ReverseBits(1, 1))

	// Reversing twice is the identity
	for v := uint(0); v < 64; v++ {
		require.Equal(t, v, ReverseBits(ReverseBits(v, 6), 6))
	}
}

func TestParallelizeCoversRangeOnce(t *testing.T) {
	const n = 1009 // deliberately not a multiple of any worker count
	hits := make([]int32, n)
	Parallelize(n, func(start, end int) {
		for i := start; i < end; i++ {
			hits[i]++
		}
	})
	for i, h := range hits {
		require.Equal(t, int32(1), h, "index %d", i)
	}
}

func TestParallelizeEmpty(t *testing.T) {
	called := false
	Parallelize(0, func(start, end int) {
		if start != end {
			called = true
		}
	})
	require.False(t, called)
}
