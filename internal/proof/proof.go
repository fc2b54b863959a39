// Package proof builds and checks AZTEC-style join-split proofs over notes.
//
// A proof shows that a set of input and output note commitments satisfies a
// linear relation on their hidden values (a zero-sum balance, a ratio, a
// swap, a range bound) without revealing the values. Every relation is a
// variant of one sigma protocol: the prover commits to blinding factors,
// derives a Fiat-Shamir challenge from a keccak transcript and answers with
// one response row per note. The verifier rebuilds the blinding factors from
// the rows and checks that the transcript reproduces the challenge.
package proof

import (
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"notecrypto/internal/curve"
	"notecrypto/internal/note"
	"notecrypto/internal/transcript"
)

// Type selects the relation a proof attests to.
type Type uint8

const (
	JoinSplit Type = iota + 1
	Mint
	Burn
	Dividend
	Swap
	PrivateRange
	PublicRange
)

var typeNames = map[Type]string{
	JoinSplit:    "joinSplit",
	Mint:         "mint",
	Burn:         "burn",
	Dividend:     "dividend",
	Swap:         "swap",
	PrivateRange: "privateRange",
	PublicRange:  "publicRange",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// ParseType maps a name produced by Type.String back to its Type.
func ParseType(s string) (Type, error) {
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown proof type %q", s)
}

// Row is one note's response: the two scalar answers followed by the note's
// commitment coordinates, each a raw 256-bit word.
type Row struct {
	KBar   uint256.Int
	ABar   uint256.Int
	GammaX uint256.Int
	GammaY uint256.Int
	SigmaX uint256.Int
	SigmaY uint256.Int
}

// Words returns the row in wire order.
func (r *Row) Words() [6]*uint256.Int {
	return [6]*uint256.Int{&r.KBar, &r.ABar, &r.GammaX, &r.GammaY, &r.SigmaX, &r.SigmaY}
}

// Holds reports whether n is the note whose commitment r carries and n's hash
// is that of its commitment.
func (r *Row) Holds(n *note.Note) bool {
	if n == nil {
		return false
	}
	return curve.WordFromField(&n.Gamma.X) == r.GammaX &&
		curve.WordFromField(&n.Gamma.Y) == r.GammaY &&
		curve.WordFromField(&n.Sigma.X) == r.SigmaX &&
		curve.WordFromField(&n.Sigma.Y) == r.SigmaY &&
		n.Hash == n.ComputeHash()
}

// Ratio is the public za/zb pair of a dividend proof.
type Ratio struct {
	Za uint256.Int
	Zb uint256.Int
}

// Params carries the public context shared by every proof type.
type Params struct {
	Sender      common.Address
	PublicOwner common.Address
	// PublicValue is the net value entering (negative) or leaving (positive)
	// the note set. Only join-splits carry one; nil means zero.
	PublicValue *big.Int
	// Rand supplies blinding scalars. Defaults to crypto/rand.
	Rand io.Reader
}

// Proof is a constructed proof together with the public context a verifier
// needs to check it.
type Proof struct {
	Type        Type
	M           int // number of input notes; rows [0, M) are inputs
	Sender      common.Address
	PublicOwner common.Address
	PublicValue uint256.Int // reduced mod r; r - |v| for negative values
	Challenge   uint256.Int
	Data        []Row

	InputNotes  []*note.Note
	OutputNotes []*note.Note

	Ratio      Ratio       // dividend only
	Comparison uint256.Int // public range only

	Statements []Statement
	Signatures [][]byte // join-split input note signatures, when attached
}

// ChallengeHex returns the challenge as 0x followed by 64 hex digits.
func (p *Proof) ChallengeHex() string {
	return curve.WordHex(&p.Challenge)
}

// EncodeData packs the rows as consecutive big-endian words, six per row.
func (p *Proof) EncodeData() []byte {
	out := make([]byte, 0, len(p.Data)*6*transcript.WordSize)
	for i := range p.Data {
		for _, w := range p.Data[i].Words() {
			b := w.Bytes32()
			out = append(out, b[:]...)
		}
	}
	return out
}

// Notes returns the inputs followed by the outputs, in row order.
func (p *Proof) Notes() []*note.Note {
	notes := make([]*note.Note, 0, len(p.InputNotes)+len(p.OutputNotes))
	notes = append(notes, p.InputNotes...)
	return append(notes, p.OutputNotes...)
}
