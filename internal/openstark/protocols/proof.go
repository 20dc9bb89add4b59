package protocols

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/openstark/openstark-go/internal/openstark/core"
)

// TraceOpening authenticates the trace rows one query needs: the row at the
// query index and the row one trace step ahead, which sits ExpansionFactor
// slots further in the commitment domain.
type TraceOpening struct {
	Current      []*core.FieldElement
	Next         []*core.FieldElement
	CurrentProof *core.MerkleProof
	NextProof    *core.MerkleProof
}

// StarkProof is the complete transferable proof
type StarkProof struct {
	// TraceRoot commits to the low-degree extended trace, one row per leaf
	TraceRoot []byte

	// CompositionRoot commits to the composition polynomial's evaluations.
	// It doubles as the first FRI layer commitment.
	CompositionRoot []byte

	// Out-of-domain evaluations: the trace columns at z and z*g, and the
	// composition polynomial at z
	OodTraceCurrent []*core.FieldElement
	OodTraceNext    []*core.FieldElement
	OodComposition  *core.FieldElement

	// TraceQueries holds the trace row openings, one per query index
	TraceQueries []TraceOpening

	// Fri is the low-degree test on the composition evaluations
	Fri *FriProof
}

// Proof encoding: big-endian, length-prefixed sections in a fixed order.
// Field elements are fixed-width canonical bytes; decoding rejects
// non-canonical residues, so encode/decode round-trips exactly and every
// proof has one byte representation.

// decode caps, to bound allocation on adversarial input
const (
	maxProofDigestLen = 64
	maxProofCount     = 1 << 20
)

type proofWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (pw *proofWriter) bytes(b []byte) {
	if pw.err != nil {
		return
	}
	var n int
	n, pw.err = pw.w.Write(b)
	pw.n += int64(n)
}

func (pw *proofWriter) u32(v int) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	pw.bytes(buf[:])
}

func (pw *proofWriter) digest(d []byte) {
	pw.u32(len(d))
	pw.bytes(d)
}

func (pw *proofWriter) element(e *core.FieldElement) {
	pw.bytes(e.Bytes())
}

func (pw *proofWriter) elements(es []*core.FieldElement) {
	pw.u32(len(es))
	for _, e := range es {
		pw.element(e)
	}
}

func (pw *proofWriter) merkleProof(p *core.MerkleProof) {
	pw.u32(p.Index)
	pw.u32(len(p.Path))
	for _, d := range p.Path {
		pw.digest(d)
	}
}

// WriteTo serializes the proof in canonical order
func (p *StarkProof) WriteTo(w io.Writer) (int64, error) {
	pw := &proofWriter{w: w}

	pw.digest(p.TraceRoot)
	pw.digest(p.CompositionRoot)

	pw.elements(p.OodTraceCurrent)
	pw.elements(p.OodTraceNext)
	pw.element(p.OodComposition)

	pw.u32(len(p.Fri.LayerRoots))
	for _, root := range p.Fri.LayerRoots {
		pw.digest(root)
	}
	pw.elements(p.Fri.FinalPolynomial.Coefficients())

	pw.u32(len(p.TraceQueries))
	for _, tq := range p.TraceQueries {
		pw.elements(tq.Current)
		pw.elements(tq.Next)
		pw.merkleProof(tq.CurrentProof)
		pw.merkleProof(tq.NextProof)
	}
	pw.u32(len(p.Fri.Queries))
	for _, fq := range p.Fri.Queries {
		pw.u32(len(fq.Layers))
		for _, layer := range fq.Layers {
			pw.element(layer.Value)
			pw.element(layer.Sibling)
			pw.merkleProof(layer.ValueProof)
			pw.merkleProof(layer.SiblingProof)
		}
	}

	return pw.n, pw.err
}

// Bytes returns the canonical proof encoding
func (p *StarkProof) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := p.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Digest returns a hash of the canonical proof encoding, usable as a stable
// proof identifier
func (p *StarkProof) Digest(hasher core.Hasher) ([]byte, error) {
	encoded, err := p.Bytes()
	if err != nil {
		return nil, err
	}
	return hasher.Hash(encoded), nil
}

type proofReader struct {
	r     io.Reader
	field *core.Field
	err   error
}

func (pr *proofReader) fail(format string, args ...interface{}) {
	if pr.err == nil {
		pr.err = fmt.Errorf("%w: "+format, append([]interface{}{ErrProofMalformed}, args...)...)
	}
}

func (pr *proofReader) bytes(n int) []byte {
	if pr.err != nil {
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(pr.r, buf); err != nil {
		pr.fail("truncated input: %v", err)
		return nil
	}
	return buf
}

func (pr *proofReader) u32(max int) int {
	buf := pr.bytes(4)
	if pr.err != nil {
		return 0
	}
	v := binary.BigEndian.Uint32(buf)
	if int(v) > max {
		pr.fail("count %d exceeds limit %d", v, max)
		return 0
	}
	return int(v)
}

func (pr *proofReader) digest() []byte {
	n := pr.u32(maxProofDigestLen)
	return pr.bytes(n)
}

func (pr *proofReader) element() *core.FieldElement {
	buf := pr.bytes(core.ElementSize)
	if pr.err != nil {
		return nil
	}
	e, err := pr.field.ElementFromBytes(buf)
	if err != nil {
		pr.fail("non-canonical field element: %v", err)
		return nil
	}
	return e
}

func (pr *proofReader) elements() []*core.FieldElement {
	n := pr.u32(maxProofCount)
	if pr.err != nil {
		return nil
	}
	es := make([]*core.FieldElement, n)
	for i := range es {
		es[i] = pr.element()
	}
	return es
}

func (pr *proofReader) merkleProof() *core.MerkleProof {
	index := pr.u32(maxProofCount)
	pathLen := pr.u32(64)
	if pr.err != nil {
		return nil
	}
	path := make([][]byte, pathLen)
	for i := range path {
		path[i] = pr.digest()
	}
	return &core.MerkleProof{Index: index, Path: path}
}

// ReadStarkProof decodes a proof from its canonical encoding. Structural
// problems fail with ErrProofMalformed; semantic checks are the verifier's
// job.
func ReadStarkProof(r io.Reader, field *core.Field) (*StarkProof, error) {
	pr := &proofReader{r: r, field: field}
	proof := &StarkProof{Fri: &FriProof{}}

	proof.TraceRoot = pr.digest()
	proof.CompositionRoot = pr.digest()

	proof.OodTraceCurrent = pr.elements()
	proof.OodTraceNext = pr.elements()
	proof.OodComposition = pr.element()

	numRoots := pr.u32(64)
	for i := 0; i < numRoots && pr.err == nil; i++ {
		proof.Fri.LayerRoots = append(proof.Fri.LayerRoots, pr.digest())
	}
	if coeffs := pr.elements(); pr.err == nil {
		proof.Fri.FinalPolynomial = core.NewPolynomial(field, coeffs)
	}

	numTraceQueries := pr.u32(maxProofCount)
	for i := 0; i < numTraceQueries && pr.err == nil; i++ {
		proof.TraceQueries = append(proof.TraceQueries, TraceOpening{
			Current:      pr.elements(),
			Next:         pr.elements(),
			CurrentProof: pr.merkleProof(),
			NextProof:    pr.merkleProof(),
		})
	}
	numFriQueries := pr.u32(maxProofCount)
	for i := 0; i < numFriQueries && pr.err == nil; i++ {
		numLayers := pr.u32(64)
		query := FriQuery{}
		for l := 0; l < numLayers && pr.err == nil; l++ {
			query.Layers = append(query.Layers, FriOpening{
				Value:        pr.element(),
				Sibling:      pr.element(),
				ValueProof:   pr.merkleProof(),
				SiblingProof: pr.merkleProof(),
			})
		}
		proof.Fri.Queries = append(proof.Fri.Queries, query)
	}

	if pr.err != nil {
		return nil, pr.err
	}
	// Trailing garbage would break the one-encoding-per-proof property
	var trailer [1]byte
	if n, _ := pr.r.Read(trailer[:]); n != 0 {
		return nil, fmt.Errorf("%w: trailing data after proof", ErrProofMalformed)
	}
	return proof, nil
}
