// note.go - Note type consumed by the proof engine.
//
// A Note commits to a value k under a secret viewing key a:
//
//	gamma = z·G
//	sigma = k·gamma + a·h
//
// Whoever holds a can strip the blinding term from sigma and recover k by
// brute force, which is why values are capped at curve.KMax.

package note

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"notecrypto/internal/curve"
	"notecrypto/internal/transcript"
)

// Note is a commitment to a value plus the secrets needed to prove over it.
// The proof engine treats notes as read-only.
type Note struct {
	Value      uint256.Int    // k, below curve.KMax for well-formed notes
	ViewingKey uint256.Int    // a, nonzero and below the group order
	Gamma      bn254.G1Affine // commitment base
	Sigma      bn254.G1Affine // k·gamma + a·h
	Owner      common.Address // account that may spend the note
	Hash       common.Hash    // keccak256(gamma || sigma)
}

// New creates a note worth value for owner, drawing the viewing key and the
// commitment base from rnd (crypto/rand when nil).
func New(value uint64, owner common.Address, rnd io.Reader) (*Note, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	a, err := nonZeroScalar(rnd)
	if err != nil {
		return nil, fmt.Errorf("drawing viewing key: %w", err)
	}
	z, err := nonZeroScalar(rnd)
	if err != nil {
		return nil, fmt.Errorf("drawing commitment base: %w", err)
	}
	return FromSecrets(value, &a, &z, owner), nil
}

// FromSecrets builds a note deterministically from its viewing key a and
// commitment base scalar z.
func FromSecrets(value uint64, a, z *fr.Element, owner common.Address) *Note {
	n := &Note{Owner: owner}
	n.Value.SetUint64(value)
	n.ViewingKey = curve.WordFromScalar(a)

	k := fr.NewElement(value)
	n.Gamma = curve.Mul(&curve.G, z)
	n.Sigma = curve.Commit(&n.Gamma, &curve.H, &k, a)
	n.Hash = n.ComputeHash()
	return n
}

func nonZeroScalar(rnd io.Reader) (fr.Element, error) {
	for {
		s, err := curve.RandomScalar(rnd)
		if err != nil {
			return s, err
		}
		if !s.IsZero() {
			return s, nil
		}
	}
}

// ComputeHash returns keccak256(gamma.x || gamma.y || sigma.x || sigma.y).
func (n *Note) ComputeHash() common.Hash {
	t := transcript.New()
	t.AppendPoint(&n.Gamma)
	t.AppendPoint(&n.Sigma)
	return common.BytesToHash(t.Sum())
}

// ValueScalar returns k in the scalar field.
func (n *Note) ValueScalar() fr.Element {
	b := n.Value.Bytes32()
	var s fr.Element
	s.SetBytes(b[:])
	return s
}

// ViewingScalar returns a in the scalar field.
func (n *Note) ViewingScalar() fr.Element {
	b := n.ViewingKey.Bytes32()
	var s fr.Element
	s.SetBytes(b[:])
	return s
}

// DecryptValue recovers the committed value from gamma and sigma using the
// viewing key, searching no further than ceiling.
func (n *Note) DecryptValue(ceiling uint64) (uint64, error) {
	a := n.ViewingScalar()
	aH := curve.Mul(&curve.H, &a)
	negAH := curve.Neg(&aH)
	gammaK := curve.Add(&n.Sigma, &negAH)
	// RecoverValue reports 1 for an identity gammaK; for a note that means k = 0.
	if gammaK.IsInfinity() {
		return 0, nil
	}
	return curve.RecoverValue(&n.Gamma, &gammaK, ceiling)
}
