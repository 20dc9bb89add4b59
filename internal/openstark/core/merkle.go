package core

import (
	"bytes"
	"fmt"

	"github.com/openstark/openstark-go/internal/openstark/utils"
)

// MerkleTree commits to an ordered sequence of byte-string leaves.
//
// The leaf count is padded to the next power of two with a fixed sentinel
// leaf, the tree is hashed bottom-up, and all internal levels are retained
// for proof generation. A built tree is read-only and may serve concurrent
// Open calls without synchronization.
type MerkleTree struct {
	hasher    Hasher
	leafCount int        // number of caller-supplied leaves, before padding
	levels    [][][]byte // levels[0] = leaf digests, last level = root
}

// MerkleProof is an authentication path from a leaf to the root
type MerkleProof struct {
	// Index is the leaf position the path authenticates
	Index int

	// Path holds the sibling digests, leaf level first
	Path [][]byte
}

// merkleSentinel pads the leaf sequence to a power of two
var merkleSentinel = make([]byte, 32)

// Domain separation prefixes keep leaf preimages and internal-node preimages
// disjoint, so a leaf value can never masquerade as the concatenation of two
// child digests.
const (
	merkleLeafPrefix byte = 0x00
	merkleNodePrefix byte = 0x01
)

func leafDigest(hasher Hasher, leaf []byte) []byte {
	buf := make([]byte, 0, 1+len(leaf))
	buf = append(buf, merkleLeafPrefix)
	buf = append(buf, leaf...)
	return hasher.Hash(buf)
}

func nodeDigest(hasher Hasher, left, right []byte) []byte {
	buf := make([]byte, 0, 1+len(left)+len(right))
	buf = append(buf, merkleNodePrefix)
	buf = append(buf, left...)
	buf = append(buf, right...)
	return hasher.Hash(buf)
}

// NewMerkleTree builds a Merkle tree over the given leaves with the given
// hash capability. Per-level node hashing is independent across nodes and
// runs in parallel.
func NewMerkleTree(leaves [][]byte, hasher Hasher) (*MerkleTree, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("cannot build a Merkle tree with no leaves")
	}

	padded := utils.NextPowerOfTwo(len(leaves))
	digests := make([][]byte, padded)
	utils.Parallelize(padded, func(start, end int) {
		for i := start; i < end; i++ {
			if i < len(leaves) {
				digests[i] = leafDigest(hasher, leaves[i])
			} else {
				digests[i] = leafDigest(hasher, merkleSentinel)
			}
		}
	})

	levels := [][][]byte{digests}
	for current := digests; len(current) > 1; {
		next := make([][]byte, len(current)/2)
		utils.Parallelize(len(next), func(start, end int) {
			for i := start; i < end; i++ {
				next[i] = nodeDigest(hasher, current[2*i], current[2*i+1])
			}
		})
		levels = append(levels, next)
		current = next
	}

	return &MerkleTree{
		hasher:    hasher,
		leafCount: len(leaves),
		levels:    levels,
	}, nil
}

// Root returns the root digest
func (mt *MerkleTree) Root() []byte {
	root := mt.levels[len(mt.levels)-1][0]
	return append([]byte(nil), root...)
}

// LeafCount returns the number of caller-supplied leaves
func (mt *MerkleTree) LeafCount() int {
	return mt.leafCount
}

// Open returns the authentication path for the given leaf index.
// Fails with ErrIndexOutOfRange if index >= the leaf count.
func (mt *MerkleTree) Open(index int) (*MerkleProof, error) {
	if index < 0 || index >= mt.leafCount {
		return nil, fmt.Errorf("%w: leaf %d of %d", ErrIndexOutOfRange, index, mt.leafCount)
	}

	path := make([][]byte, len(mt.levels)-1)
	current := index
	for level := 0; level < len(mt.levels)-1; level++ {
		sibling := current ^ 1
		path[level] = append([]byte(nil), mt.levels[level][sibling]...)
		current /= 2
	}
	return &MerkleProof{Index: index, Path: path}, nil
}

// VerifyMerkleProof recomputes the authentication path of value and reports
// whether it matches root. leafCount is the committed leaf count; it pins
// the expected path length to the tree depth, so paths shorter or longer
// than the tree are rejected outright. Pure and side-effect free; O(log N).
func VerifyMerkleProof(root []byte, leafCount, index int, value []byte, proof *MerkleProof, hasher Hasher) bool {
	if proof == nil || index != proof.Index || index < 0 || index >= leafCount {
		return false
	}
	if len(proof.Path) != utils.Log2(utils.NextPowerOfTwo(leafCount)) {
		return false
	}
	digest := leafDigest(hasher, value)
	current := index
	for _, sibling := range proof.Path {
		if current&1 == 0 {
			digest = nodeDigest(hasher, digest, sibling)
		} else {
			digest = nodeDigest(hasher, sibling, digest)
		}
		current /= 2
	}
	return bytes.Equal(digest, root)
}
