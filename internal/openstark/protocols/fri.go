package protocols

import (
	"fmt"

	"github.com/openstark/openstark-go/internal/openstark/core"
	"github.com/openstark/openstark-go/internal/openstark/utils"
)

// FRI low-degree test.
//
// The prover commits to a sequence of evaluation layers. Each layer is the
// previous one folded in half with a transcript-derived challenge:
//
//	g(x^2) = (f(x) + f(-x)) / 2 + alpha * (f(x) - f(-x)) / (2x)
//
// where -x sits at index i+n/2 of the layer domain. Folding preserves
// closeness to low degree and halves the tracked degree bound, so after
// enough rounds the remainder is small enough to ship as an explicit
// polynomial the verifier degree-checks directly. Spot checks then confirm
// each fold was performed honestly at randomly sampled positions.

// FriOpening is the pair of authenticated leaf openings one fold check needs
// from one layer: the evaluation at the pair base index j and at its
// negation partner j + n/2.
type FriOpening struct {
	Value        *core.FieldElement
	Sibling      *core.FieldElement
	ValueProof   *core.MerkleProof
	SiblingProof *core.MerkleProof
}

// FriQuery carries the openings of all committed layers along one query's
// fold chain, first layer first
type FriQuery struct {
	Layers []FriOpening
}

// FriProof is the transferable output of the low-degree test. The first
// layer's commitment root is not repeated here; it is the caller's
// evaluation commitment.
type FriProof struct {
	// LayerRoots holds the commitment roots of the intermediate folded
	// layers, in folding order
	LayerRoots [][]byte

	// FinalPolynomial is the explicit remainder after the last fold
	FinalPolynomial *core.Polynomial

	// Queries holds one fold-chain opening per query index
	Queries []FriQuery
}

// friLayer is one entry of the prover's layer arena
type friLayer struct {
	domain      *core.EvaluationDomain
	evaluations []*core.FieldElement
	tree        *core.MerkleTree
}

// FriCommitment is the prover-side state after the commit phase, ready to
// answer query openings
type FriCommitment struct {
	params      *Parameters
	layers      []*friLayer
	finalDomain *core.EvaluationDomain
	finalPoly   *core.Polynomial
	numFolds    int
}

// friNumFolds returns how many folding rounds shrink degreeBound down to the
// configured remainder size
func friNumFolds(params *Parameters, degreeBound int) int {
	folds := utils.Log2(degreeBound) - utils.Log2(params.FriMaxRemainderDegree+1)
	if folds < 0 {
		folds = 0
	}
	return folds
}

// friFold folds one evaluation layer in half with challenge alpha.
// The returned evaluations live on the halved domain.
func friFold(layer *friLayer, alpha *core.FieldElement) ([]*core.FieldElement, error) {
	field := layer.domain.Field()
	half := layer.domain.Size() / 2

	// 1/(2x) for every pair base point, in one batch inversion
	points := layer.domain.Elements()[:half]
	inverses, err := field.BatchInverse(points)
	if err != nil {
		return nil, err
	}
	invTwo, err := field.NewElementFromUint64(2).Inv()
	if err != nil {
		return nil, err
	}

	folded := make([]*core.FieldElement, half)
	utils.Parallelize(half, func(start, end int) {
		for i := start; i < end; i++ {
			even := layer.evaluations[i].Add(layer.evaluations[i+half]).Mul(invTwo)
			odd := layer.evaluations[i].Sub(layer.evaluations[i+half]).Mul(inverses[i]).Mul(invTwo)
			folded[i] = even.Add(alpha.Mul(odd))
		}
	})
	return folded, nil
}

// friLeaves serializes an evaluation layer into Merkle leaves
func friLeaves(evaluations []*core.FieldElement) [][]byte {
	leaves := make([][]byte, len(evaluations))
	utils.Parallelize(len(evaluations), func(start, end int) {
		for i := start; i < end; i++ {
			leaves[i] = evaluations[i].Bytes()
		}
	})
	return leaves
}

// absorbFinalPolynomial feeds the remainder coefficients into the
// transcript, padded to the fixed remainder width so the absorbed encoding
// does not depend on the actual degree
func absorbFinalPolynomial(t *Transcript, params *Parameters, finalPoly *core.Polynomial) {
	data := make([]byte, 0, (params.FriMaxRemainderDegree+1)*core.ElementSize)
	for i := 0; i <= params.FriMaxRemainderDegree; i++ {
		data = append(data, finalPoly.Coefficient(i).Bytes()...)
	}
	t.Absorb(LabelFriFinal, data)
}

// FriCommit runs the commit phase: it folds the committed evaluations down
// to the remainder polynomial, committing and absorbing every intermediate
// layer. tree must be the commitment over evaluations whose root the
// transcript has already absorbed; it serves as the first layer's
// commitment.
//
// degreeBound is the claimed strict degree bound of the evaluations and must
// be a power of two smaller than the domain size.
func FriCommit(t *Transcript, params *Parameters, domain *core.EvaluationDomain,
	evaluations []*core.FieldElement, tree *core.MerkleTree, degreeBound int) (*FriCommitment, error) {

	n := domain.Size()
	if len(evaluations) != n {
		return nil, fmt.Errorf("%w: %d evaluations on a domain of size %d", core.ErrInvalidDomainSize, len(evaluations), n)
	}
	if degreeBound < 1 || !utils.IsPowerOfTwo(degreeBound) || degreeBound >= n {
		return nil, fmt.Errorf("fri: degree bound %d must be a power of two below the domain size %d", degreeBound, n)
	}

	numFolds := friNumFolds(params, degreeBound)
	commitment := &FriCommitment{
		params:   params,
		layers:   []*friLayer{{domain: domain, evaluations: evaluations, tree: tree}},
		numFolds: numFolds,
	}
	hasher, err := params.Hasher()
	if err != nil {
		return nil, err
	}

	current := commitment.layers[0]
	for round := 0; round < numFolds; round++ {
		alpha := t.SqueezeFieldElement(LabelFriAlpha, domain.Field())
		folded, err := friFold(current, alpha)
		if err != nil {
			return nil, err
		}
		halved, err := current.domain.Halve()
		if err != nil {
			return nil, err
		}
		current = &friLayer{domain: halved, evaluations: folded}

		if round+1 < numFolds {
			// Intermediate layer: commit and absorb
			current.tree, err = core.NewMerkleTree(friLeaves(folded), hasher)
			if err != nil {
				return nil, err
			}
			t.Absorb(LabelFriRoot, current.tree.Root())
			commitment.layers = append(commitment.layers, current)
		}
	}

	// The last layer is shipped explicitly instead of committed
	finalPoly, err := core.InterpolateOnDomain(current.domain, current.evaluations)
	if err != nil {
		return nil, err
	}
	if finalPoly.Degree() > params.FriMaxRemainderDegree {
		return nil, fmt.Errorf("%w: remainder degree %d exceeds bound %d",
			core.ErrDegreeTooLarge, finalPoly.Degree(), params.FriMaxRemainderDegree)
	}
	commitment.finalDomain = current.domain
	commitment.finalPoly = finalPoly
	absorbFinalPolynomial(t, params, finalPoly)

	return commitment, nil
}

// FinalPolynomial returns the remainder polynomial
func (c *FriCommitment) FinalPolynomial() *core.Polynomial {
	return c.finalPoly
}

// Open answers the query phase for indices sampled over the first layer's
// domain, returning the complete proof
func (c *FriCommitment) Open(indices []int) (*FriProof, error) {
	proof := &FriProof{
		FinalPolynomial: c.finalPoly,
		Queries:         make([]FriQuery, len(indices)),
	}
	for _, layer := range c.layers[1:] {
		proof.LayerRoots = append(proof.LayerRoots, layer.tree.Root())
	}

	for q, index := range indices {
		if index < 0 || index >= c.layers[0].domain.Size() {
			return nil, fmt.Errorf("%w: query index %d on a domain of size %d",
				core.ErrIndexOutOfRange, index, c.layers[0].domain.Size())
		}
		// One opening per fold; with no folds the explicit remainder
		// already determines every first-layer value.
		openings := make([]FriOpening, c.numFolds)
		j := index
		for l, layer := range c.layers[:c.numFolds] {
			half := layer.domain.Size() / 2
			j %= half
			opening := FriOpening{
				Value:   layer.evaluations[j],
				Sibling: layer.evaluations[j+half],
			}
			var err error
			if opening.ValueProof, err = layer.tree.Open(j); err != nil {
				return nil, err
			}
			if opening.SiblingProof, err = layer.tree.Open(j + half); err != nil {
				return nil, err
			}
			openings[l] = opening
		}
		proof.Queries[q] = FriQuery{Layers: openings}
	}
	return proof, nil
}

// FriVerify replays the commit phase from the proof, then checks every fold
// chain. layer0Root is the commitment root of the evaluations under test,
// absorbed by the caller before this call, exactly as during proving.
//
// When indices is nil, NumQueries distinct indices are sampled from the
// transcript after the replayed commit phase, mirroring the prover's
// schedule. On success FriVerify returns the indices used and, per index,
// the authenticated first-layer evaluation there, for the caller to
// cross-check against its own openings of the committed sequence.
func FriVerify(t *Transcript, params *Parameters, domain *core.EvaluationDomain,
	layer0Root []byte, degreeBound int, proof *FriProof, indices []int) ([]*core.FieldElement, []int, error) {

	n := domain.Size()
	if degreeBound < 1 || !utils.IsPowerOfTwo(degreeBound) || degreeBound >= n {
		return nil, nil, fmt.Errorf("fri: degree bound %d must be a power of two below the domain size %d", degreeBound, n)
	}
	hasher, err := params.Hasher()
	if err != nil {
		return nil, nil, err
	}

	numFolds := friNumFolds(params, degreeBound)
	wantRoots := 0
	if numFolds > 0 {
		wantRoots = numFolds - 1
	}
	if len(proof.LayerRoots) != wantRoots {
		return nil, nil, fmt.Errorf("%w: %d folded layer roots, want %d",
			ErrProofMalformed, len(proof.LayerRoots), wantRoots)
	}
	if proof.FinalPolynomial == nil {
		return nil, nil, fmt.Errorf("%w: missing final polynomial", ErrProofMalformed)
	}

	// Replay the commit phase to recover the fold challenges
	field := domain.Field()
	alphas := make([]*core.FieldElement, numFolds)
	for round := 0; round < numFolds; round++ {
		alphas[round] = t.SqueezeFieldElement(LabelFriAlpha, field)
		if round+1 < numFolds {
			t.Absorb(LabelFriRoot, proof.LayerRoots[round])
		}
	}
	if proof.FinalPolynomial.Degree() > params.FriMaxRemainderDegree {
		return nil, nil, fmt.Errorf("%w: final polynomial degree %d exceeds bound %d",
			ErrConsistencyFailure, proof.FinalPolynomial.Degree(), params.FriMaxRemainderDegree)
	}
	absorbFinalPolynomial(t, params, proof.FinalPolynomial)

	if indices == nil {
		if indices, err = t.SqueezeIndices(LabelQueryIndices, params.NumQueries, n, true); err != nil {
			return nil, nil, err
		}
	}
	if len(proof.Queries) != len(indices) {
		return nil, nil, fmt.Errorf("%w: %d queries, want %d", ErrProofMalformed, len(proof.Queries), len(indices))
	}

	// Layer domains, first layer first
	domains := make([]*core.EvaluationDomain, numFolds+1)
	domains[0] = domain
	for l := 1; l <= numFolds; l++ {
		if domains[l], err = domains[l-1].Halve(); err != nil {
			return nil, nil, err
		}
	}

	invTwo, err := field.NewElementFromUint64(2).Inv()
	if err != nil {
		return nil, nil, err
	}

	firstLayerValues := make([]*core.FieldElement, len(indices))
	for q, index := range indices {
		if index < 0 || index >= n {
			return nil, nil, fmt.Errorf("%w: query index %d on a domain of size %d", core.ErrIndexOutOfRange, index, n)
		}
		query := proof.Queries[q]
		if len(query.Layers) != numFolds {
			return nil, nil, fmt.Errorf("%w: query %d opens %d layers, want %d",
				ErrProofMalformed, q, len(query.Layers), numFolds)
		}

		j := index
		var expected *core.FieldElement
		for l := 0; l < numFolds; l++ {
			half := domains[l].Size() / 2
			base := j % half
			opening := query.Layers[l]
			if opening.Value == nil || opening.Sibling == nil {
				return nil, nil, fmt.Errorf("%w: query %d layer %d has missing values", ErrProofMalformed, q, l)
			}

			root := layer0Root
			if l > 0 {
				root = proof.LayerRoots[l-1]
			}
			if !core.VerifyMerkleProof(root, domains[l].Size(), base, opening.Value.Bytes(), opening.ValueProof, hasher) {
				return nil, nil, fmt.Errorf("%w: query %d layer %d opening at index %d", ErrConsistencyFailure, q, l, base)
			}
			if !core.VerifyMerkleProof(root, domains[l].Size(), base+half, opening.Sibling.Bytes(), opening.SiblingProof, hasher) {
				return nil, nil, fmt.Errorf("%w: query %d layer %d opening at index %d", ErrConsistencyFailure, q, l, base+half)
			}

			// The chain position j is one of the opened pair
			at := opening.Value
			if j >= half {
				at = opening.Sibling
			}
			if l == 0 {
				firstLayerValues[q] = at
			}
			if expected != nil && !at.Equal(expected) {
				return nil, nil, fmt.Errorf("%w: query %d fold mismatch entering layer %d", ErrConsistencyFailure, q, l)
			}

			// Fold the pair and descend
			x := domains[l].Element(base)
			xInv, err := x.Inv()
			if err != nil {
				return nil, nil, err
			}
			even := opening.Value.Add(opening.Sibling).Mul(invTwo)
			odd := opening.Value.Sub(opening.Sibling).Mul(xInv).Mul(invTwo)
			expected = even.Add(alphas[l].Mul(odd))
			j = base
		}

		// The chain must terminate on the explicit remainder
		finalDomain := domains[numFolds]
		finalValue := proof.FinalPolynomial.Eval(finalDomain.Element(j % finalDomain.Size()))
		if expected == nil {
			// No folds at all: the remainder is the first layer itself
			firstLayerValues[q] = finalValue
		} else if !finalValue.Equal(expected) {
			return nil, nil, fmt.Errorf("%w: query %d final polynomial mismatch", ErrConsistencyFailure, q)
		}
	}

	return firstLayerValues, indices, nil
}

// ProveLowDegree is the self-contained low-degree test over an evaluation
// sequence: it commits the evaluations, runs the folding rounds and answers
// transcript-sampled queries. Returns the proof together with the first
// layer's commitment root.
func ProveLowDegree(params *Parameters, domain *core.EvaluationDomain,
	evaluations []*core.FieldElement, degreeBound int) (*FriProof, []byte, error) {

	if err := params.Validate(); err != nil {
		return nil, nil, err
	}
	hasher, err := params.Hasher()
	if err != nil {
		return nil, nil, err
	}
	tree, err := core.NewMerkleTree(friLeaves(evaluations), hasher)
	if err != nil {
		return nil, nil, err
	}

	t := NewTranscript(hasher)
	t.Absorb(LabelFriRoot, tree.Root())
	commitment, err := FriCommit(t, params, domain, evaluations, tree, degreeBound)
	if err != nil {
		return nil, nil, err
	}
	indices, err := t.SqueezeIndices(LabelQueryIndices, params.NumQueries, domain.Size(), true)
	if err != nil {
		return nil, nil, err
	}
	proof, err := commitment.Open(indices)
	if err != nil {
		return nil, nil, err
	}
	return proof, tree.Root(), nil
}

// VerifyLowDegree checks a ProveLowDegree proof against the evaluation
// commitment root
func VerifyLowDegree(params *Parameters, domain *core.EvaluationDomain,
	root []byte, degreeBound int, proof *FriProof) error {

	if err := params.Validate(); err != nil {
		return err
	}
	hasher, err := params.Hasher()
	if err != nil {
		return err
	}

	t := NewTranscript(hasher)
	t.Absorb(LabelFriRoot, root)
	_, _, err = FriVerify(t, params, domain, root, degreeBound, proof, nil)
	return err
}
