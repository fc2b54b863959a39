package curve

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// Proof data travels as raw 256-bit words so that a verifier can tell an
// out-of-range value apart from its reduction.

// ScalarFromWord returns w as a scalar, or false if w >= r.
func ScalarFromWord(w *uint256.Int) (fr.Element, bool) {
	var s fr.Element
	b := w.Bytes32()
	if err := s.SetBytesCanonical(b[:]); err != nil {
		return fr.Element{}, false
	}
	return s, true
}

// FieldFromWord returns w as a base field element, or false if w >= p.
func FieldFromWord(w *uint256.Int) (fp.Element, bool) {
	var e fp.Element
	b := w.Bytes32()
	if err := e.SetBytesCanonical(b[:]); err != nil {
		return fp.Element{}, false
	}
	return e, true
}

// WordFromScalar takes s out of Montgomery form into a plain 256-bit word.
func WordFromScalar(s *fr.Element) uint256.Int {
	var w uint256.Int
	b := s.Bytes()
	w.SetBytes32(b[:])
	return w
}

// WordFromField is WordFromScalar for base field elements.
func WordFromField(e *fp.Element) uint256.Int {
	var w uint256.Int
	b := e.Bytes()
	w.SetBytes32(b[:])
	return w
}

// PointFromWords rebuilds an affine point from its coordinate words. The
// all-zero pair is the identity and yields ErrPointAtInfinity.
func PointFromWords(x, y *uint256.Int) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	var ok bool
	if p.X, ok = FieldFromWord(x); !ok {
		return bn254.G1Affine{}, ErrNotOnCurve
	}
	if p.Y, ok = FieldFromWord(y); !ok {
		return bn254.G1Affine{}, ErrNotOnCurve
	}
	if err := ValidatePoint(&p); err != nil {
		return bn254.G1Affine{}, err
	}
	return p, nil
}

// WordHex renders w as 0x followed by exactly 64 hex digits.
func WordHex(w *uint256.Int) string {
	b := w.Bytes32()
	return hexutil.Encode(b[:])
}

// ParseWordHex parses the fixed-width form produced by WordHex.
func ParseWordHex(s string) (uint256.Int, error) {
	var w uint256.Int
	b, err := hexutil.Decode(s)
	if err != nil {
		return w, fmt.Errorf("decoding word %q: %w", s, err)
	}
	if len(b) != 32 {
		return w, fmt.Errorf("word %q is %d bytes, want 32", s, len(b))
	}
	w.SetBytes32(b)
	return w, nil
}
