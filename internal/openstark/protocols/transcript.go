package protocols

import (
	"encoding/binary"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/holiman/uint256"

	"github.com/openstark/openstark-go/internal/openstark/core"
)

// Transcript derives verifier challenges deterministically from the protocol
// transcript (the Fiat-Shamir transform).
//
// The state is a running hash over the exact sequence of absorbed,
// length-prefixed byte strings. Squeeze operations advance the state, so
// repeated squeezes yield an independent-looking stream, and no output can
// be re-derived from a shorter absorb history.
//
// Prover and verifier must absorb the identical sequence, in the identical
// order, or soundness is lost. A Transcript belongs to exactly one proving
// or verifying session and must not be shared across goroutines.
type Transcript struct {
	hasher core.Hasher
	state  []byte
}

// Domain separation labels for the transcript phases. These are protocol
// constants: changing any of them invalidates all existing proofs.
const (
	labelInit             = "openstark.transcript.v1"
	LabelTraceRoot        = "trace.root"
	LabelCompositionCoeff = "composition.coefficient"
	LabelCompositionRoot  = "composition.root"
	LabelOodPoint         = "ood.point"
	LabelOodValues        = "ood.values"
	LabelFriAlpha         = "fri.alpha"
	LabelFriRoot          = "fri.layer.root"
	LabelFriFinal         = "fri.final.polynomial"
	LabelQueryIndices     = "query.indices"
)

// NewTranscript creates a transcript bound to the given hash capability
func NewTranscript(hasher core.Hasher) *Transcript {
	t := &Transcript{hasher: hasher}
	t.state = hasher.Hash([]byte(labelInit))
	return t
}

// Absorb folds a labeled, length-prefixed byte string into the state.
// The label is the domain separation constant of the current protocol phase.
func (t *Transcript) Absorb(label string, data []byte) {
	buf := make([]byte, 0, len(t.state)+4+len(label)+8+len(data))
	buf = append(buf, t.state...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(label)))
	buf = append(buf, label...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(len(data)))
	buf = append(buf, data...)
	t.state = t.hasher.Hash(buf)
}

// squeeze advances the state and returns a fresh digest
func (t *Transcript) squeeze(label string) []byte {
	t.Absorb(label, nil)
	return append([]byte(nil), t.state...)
}

// SqueezeFieldElement derives the next field element from the state.
// Out-of-range digests are rejected and resampled, so the output is
// unbiased mod p.
func (t *Transcript) SqueezeFieldElement(label string, field *core.Field) *core.FieldElement {
	modulus := field.Modulus()
	shift := uint(0)
	if bits := modulus.BitLen(); bits < 256 {
		shift = uint(256 - bits)
	}
	var v uint256.Int
	for {
		digest := t.squeeze(label)
		v.SetBytes(digest[:32])
		// Keep only modulus.BitLen() bits so the retry probability stays
		// below one half.
		v.Rsh(&v, shift)
		if v.Cmp(modulus) < 0 {
			return field.NewElement(&v)
		}
	}
}

// SqueezeFieldElements derives count field elements
func (t *Transcript) SqueezeFieldElements(label string, field *core.Field, count int) []*core.FieldElement {
	elements := make([]*core.FieldElement, count)
	for i := range elements {
		elements[i] = t.SqueezeFieldElement(label, field)
	}
	return elements
}

// SqueezeIndices derives count pseudorandom indices in [0, domainSize).
// The domain size must be a power of two, so reducing digest words mod the
// size introduces no bias. With distinct set, sampling is without
// replacement and duplicates are skipped.
func (t *Transcript) SqueezeIndices(label string, count, domainSize int, distinct bool) ([]int, error) {
	if domainSize <= 0 || domainSize&(domainSize-1) != 0 {
		return nil, fmt.Errorf("%w: %d is not a power of two", core.ErrInvalidDomainSize, domainSize)
	}
	if distinct && count > domainSize {
		return nil, fmt.Errorf("cannot sample %d distinct indices from a domain of size %d", count, domainSize)
	}

	mask := uint64(domainSize - 1)
	seen := bitset.New(uint(domainSize))
	indices := make([]int, 0, count)

	for len(indices) < count {
		digest := t.squeeze(label)
		for offset := 0; offset+8 <= len(digest) && len(indices) < count; offset += 8 {
			idx := int(binary.BigEndian.Uint64(digest[offset:offset+8]) & mask)
			if distinct {
				if seen.Test(uint(idx)) {
					continue
				}
				seen.Set(uint(idx))
			}
			indices = append(indices, idx)
		}
	}
	return indices, nil
}
