package core

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Hasher is the collision-resistant hash capability shared by Merkle
// commitments and the Fiat-Shamir transcript.
//
// Prover and verifier must agree on the identical hasher (by Name) or no
// proof will verify. Implementations are one-shot and safe for concurrent
// use.
type Hasher interface {
	// Hash returns the fixed-width digest of data
	Hash(data []byte) []byte

	// Size returns the digest width in bytes
	Size() int

	// Name returns the registry name of the hash function
	Name() string
}

// Supported hash function names
const (
	HashKeccak  = "keccak"
	HashBlake2b = "blake2b"
	HashMiMC    = "mimc"
)

// GetHasher returns the hasher registered under the given name.
// The empty name selects Keccak-256.
func GetHasher(name string) (Hasher, error) {
	switch name {
	case "", HashKeccak:
		return keccakHasher{}, nil
	case HashBlake2b:
		return blake2bHasher{}, nil
	case HashMiMC:
		return mimcHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown hash function %q", name)
	}
}

// keccakHasher is Keccak-256 (the pre-NIST-padding variant)
type keccakHasher struct{}

func (keccakHasher) Hash(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

func (keccakHasher) Size() int    { return 32 }
func (keccakHasher) Name() string { return HashKeccak }

// blake2bHasher is BLAKE2b-256
type blake2bHasher struct{}

func (blake2bHasher) Hash(data []byte) []byte {
	digest := blake2b.Sum256(data)
	return digest[:]
}

func (blake2bHasher) Size() int    { return 32 }
func (blake2bHasher) Name() string { return HashBlake2b }

// mimcHasher is the field-friendly MiMC hash over the BN254 scalar field.
// Input bytes are packed into 31-byte blocks so every block is a canonical
// BN254 residue.
type mimcHasher struct{}

func (mimcHasher) Hash(data []byte) []byte {
	h := mimc.NewMiMC()
	block := make([]byte, h.BlockSize())
	for start := 0; start < len(data); start += 31 {
		end := start + 31
		if end > len(data) {
			end = len(data)
		}
		for i := range block {
			block[i] = 0
		}
		copy(block[len(block)-(end-start):], data[start:end])
		h.Write(block)
	}
	return h.Sum(nil)
}

func (mimcHasher) Size() int    { return mimc.NewMiMC().Size() }
func (mimcHasher) Name() string { return HashMiMC }
