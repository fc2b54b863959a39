// curve.go - BN254 group parameters and arithmetic for the note proof engine.
//
// All points live in G1 of alt_bn128 (gnark-crypto's bn254). Proof scalars are
// reduced modulo the group order r, point coordinates modulo the base field p.

package curve

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// KMax is the note value ceiling. Every value below it can be recovered from a
// commitment by RecoverValue.
const KMax = 1 << 20

// hDomain is the hash-to-curve domain tag for the auxiliary generator.
const hDomain = "NOTECRYPTO-V1-BN254G1_XMD:SHA-256_SVDW_RO_"

var (
	// G is the standard generator of G1.
	G bn254.G1Affine
	// H is the auxiliary generator. Nobody knows log_G(H).
	H bn254.G1Affine

	// ErrNotOnCurve is returned when coordinates do not satisfy y² = x³ + 3.
	ErrNotOnCurve = errors.New("point is not on the curve")
	// ErrPointAtInfinity is returned where the identity is not an acceptable point.
	ErrPointAtInfinity = errors.New("point at infinity")
	// ErrValueNotFound is returned when RecoverValue exhausts its ceiling.
	ErrValueNotFound = errors.New("value not found below ceiling")
	// ErrEntropy is returned when the randomness source fails.
	ErrEntropy = errors.New("randomness source failed")
)

func init() {
	_, _, G, _ = bn254.Generators()
	h, err := bn254.HashToG1([]byte("h"), []byte(hDomain))
	if err != nil {
		panic(fmt.Sprintf("curve: deriving auxiliary generator: %v", err))
	}
	H = h
}

// GroupOrder returns r, the order of G1 and the modulus of every proof scalar.
func GroupOrder() *big.Int {
	return fr.Modulus()
}

// FieldModulus returns p, the base field prime.
func FieldModulus() *big.Int {
	return fp.Modulus()
}

// RandomScalar draws 48 bytes from rnd and reduces them into the scalar field.
// The extra 16 bytes keep the modular bias negligible.
func RandomScalar(rnd io.Reader) (fr.Element, error) {
	var (
		s   fr.Element
		buf [48]byte
	)
	if _, err := io.ReadFull(rnd, buf[:]); err != nil {
		return s, fmt.Errorf("%w: %w", ErrEntropy, err)
	}
	s.SetBytes(buf[:])
	return s, nil
}

// Mul returns s·p.
func Mul(p *bn254.G1Affine, s *fr.Element) bn254.G1Affine {
	var out bn254.G1Affine
	out.ScalarMultiplication(p, s.BigInt(new(big.Int)))
	return out
}

// Add returns p + q.
func Add(p, q *bn254.G1Affine) bn254.G1Affine {
	var out bn254.G1Affine
	out.Add(p, q)
	return out
}

// Neg returns -p.
func Neg(p *bn254.G1Affine) bn254.G1Affine {
	var out bn254.G1Affine
	out.Neg(p)
	return out
}

// Commit returns s·p + t·q using a joint (Straus-Shamir) multiplication.
func Commit(p, q *bn254.G1Affine, s, t *fr.Element) bn254.G1Affine {
	var (
		jac bn254.G1Jac
		out bn254.G1Affine
	)
	jac.JointScalarMultiplication(p, q, s.BigInt(new(big.Int)), t.BigInt(new(big.Int)))
	out.FromJacobian(&jac)
	return out
}

// ValidatePoint rejects the identity and anything off the curve.
func ValidatePoint(p *bn254.G1Affine) error {
	if p.IsInfinity() {
		return ErrPointAtInfinity
	}
	if !p.IsOnCurve() {
		return ErrNotOnCurve
	}
	return nil
}
