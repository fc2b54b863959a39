package curve

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const signBit = 0x80

// Compress encodes p in 256 bits: the big-endian x coordinate with bit 255 set
// when y is odd. x < p < 2^254, so the top bits are free. The point at infinity
// encodes as the zero word.
func Compress(p *bn254.G1Affine) [32]byte {
	if p.IsInfinity() {
		return [32]byte{}
	}
	out := p.X.Bytes()
	y := p.Y.Bytes()
	if y[31]&1 == 1 {
		out[0] |= signBit
	}
	return out
}

// Decompress inverts Compress. It fails with ErrNotOnCurve when x is not a
// canonical field element or x³ + 3 has no square root.
func Decompress(in [32]byte) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	if in == ([32]byte{}) {
		return p, nil
	}
	odd := in[0]&signBit != 0
	in[0] &^= signBit

	if err := p.X.SetBytesCanonical(in[:]); err != nil {
		return bn254.G1Affine{}, ErrNotOnCurve
	}
	_, b := bn254.CurveCoefficients()
	var rhs fp.Element
	rhs.Square(&p.X).Mul(&rhs, &p.X).Add(&rhs, &b)
	if p.Y.Sqrt(&rhs) == nil {
		return bn254.G1Affine{}, ErrNotOnCurve
	}
	y := p.Y.Bytes()
	if (y[31]&1 == 1) != odd {
		p.Y.Neg(&p.Y)
	}
	return p, nil
}

// CompressedHex renders Compress(p) as 0x-prefixed hex.
func CompressedHex(p *bn254.G1Affine) string {
	b := Compress(p)
	return hexutil.Encode(b[:])
}

// ParseCompressedHex inverts CompressedHex.
func ParseCompressedHex(s string) (bn254.G1Affine, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return bn254.G1Affine{}, fmt.Errorf("decoding point %q: %w", s, err)
	}
	if len(b) != 32 {
		return bn254.G1Affine{}, fmt.Errorf("compressed point is %d bytes, want 32", len(b))
	}
	return Decompress([32]byte(b))
}
