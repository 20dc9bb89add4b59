package utils

import "math/bits"

// IsPowerOfTwo checks if a number is a power of 2
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// Log2 computes the base-2 logarithm of a power of 2
func Log2(n int) int {
	if !IsPowerOfTwo(n) {
		return -1
	}
	return bits.TrailingZeros(uint(n))
}

// NextPowerOfTwo returns the smallest power of 2 >= n
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// ReverseBits reverses the lowest bitLen bits of v.
// Used for the bit-reversal permutation in the NTT.
func ReverseBits(v, bitLen uint) uint {
	return uint(bits.Reverse64(uint64(v)) >> (64 - bitLen))
}
