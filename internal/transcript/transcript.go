// Package transcript implements the rolling Fiat-Shamir hash used by note
// proofs.
//
// A Transcript absorbs 32-byte big-endian words. Drain hashes everything
// absorbed so far with Keccak-256, feeds the digest back in and returns it
// reduced modulo the group order, so one transcript can yield a sequence of
// dependent challenges. Provers and verifiers must absorb in the same order.
package transcript

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// WordSize is the width of every absorbed item.
const WordSize = 32

// Transcript is an append-only hash accumulator. The zero value is ready to use.
type Transcript struct {
	buf []byte
}

// New returns an empty transcript.
func New() *Transcript {
	return &Transcript{}
}

// AppendPoint absorbs x then y. The point at infinity absorbs two zero words.
func (t *Transcript) AppendPoint(p *bn254.G1Affine) {
	x, y := p.X.Bytes(), p.Y.Bytes()
	t.buf = append(t.buf, x[:]...)
	t.buf = append(t.buf, y[:]...)
}

// AppendScalar absorbs a reduced scalar.
func (t *Transcript) AppendScalar(s *fr.Element) {
	b := s.Bytes()
	t.buf = append(t.buf, b[:]...)
}

// AppendWord absorbs a raw 256-bit word.
func (t *Transcript) AppendWord(w *uint256.Int) {
	b := w.Bytes32()
	t.buf = append(t.buf, b[:]...)
}

// AppendUint64 absorbs n as a 256-bit word.
func (t *Transcript) AppendUint64(n uint64) {
	t.AppendWord(uint256.NewInt(n))
}

// AppendAddress absorbs an account address left-padded to a word.
func (t *Transcript) AppendAddress(a common.Address) {
	t.buf = append(t.buf, common.LeftPadBytes(a.Bytes(), WordSize)...)
}

// Len returns the number of bytes absorbed so far.
func (t *Transcript) Len() int {
	return len(t.buf)
}

// Sum returns keccak256 of the accumulated buffer without absorbing it.
func (t *Transcript) Sum() []byte {
	return Keccak256(t.buf)
}

// Drain hashes the whole accumulated buffer, absorbs the digest and returns it
// reduced into the scalar field. The buffer is never reset.
func (t *Transcript) Drain() fr.Element {
	digest := Keccak256(t.buf)
	t.buf = append(t.buf, digest...)
	var s fr.Element
	s.SetBytes(digest)
	return s
}

// Keccak256 is the legacy (pre-NIST) Keccak used throughout the protocol.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}
