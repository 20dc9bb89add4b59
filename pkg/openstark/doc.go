// Package openstark provides a transparent zero-knowledge proof system of
// the STARK family (Scalable Transparent Argument of Knowledge).
//
// A prover convinces a verifier that a private execution trace satisfies a
// public constraint system, without revealing the trace. No trusted setup is
// required; the only cryptographic assumption is a collision-resistant hash
// function.
//
// # Features
//
// - Complete STARK prover and verifier
// - Configurable prime fields, including the 252-bit STARK field
// - FRI low-degree testing with configurable query count and blowup
// - Merkle commitments over Keccak-256, BLAKE2b or MiMC
// - Deterministic Fiat-Shamir transcript, fully non-interactive proofs
// - Canonical binary proof encoding
//
// # Quick Start
//
// Describe the statement as a constraint system, fill in the trace, then
// prove and verify:
//
//	params := openstark.DefaultParameters(openstark.NewTestField())
//
//	prover, err := openstark.NewProver(params)
//	if err != nil {
//		log.Fatal(err)
//	}
//	proof, err := prover.Prove(cs, trace)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	verifier, err := openstark.NewVerifier(params)
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := verifier.Verify(cs, trace.NumRows(), proof)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if result.Valid {
//		fmt.Println("proof accepted")
//	}
//
// # Architecture
//
// The public API lives in this package; the implementation is private:
//
// - pkg/openstark/: Public API (this package)
// - internal/openstark/: Private implementation (not importable)
//
// Prover and verifier must agree on identical parameters. A proof produced
// under one parameter set never verifies under another.
package openstark
