package proof

import (
	"bytes"
	"errors"
	"slices"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"

	"notecrypto/internal/curve"
)

// Result is the outcome of Verify. A proof is valid when Errors is empty.
type Result struct {
	Errors []Kind

	// PairingGammas and PairingSigmas are Σ c'·γ and Σ -c'·σ over every
	// row, for callers that additionally pair-check the commitments against
	// a trusted setup.
	PairingGammas bn254.G1Affine
	PairingSigmas bn254.G1Affine
}

// Valid reports whether the proof passed every check.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

// Has reports whether k is among the failures.
func (r *Result) Has(k Kind) bool {
	return slices.Contains(r.Errors, k)
}

// Err joins the failures into one error, nil for a valid proof.
func (r *Result) Err() error {
	errs := make([]error, len(r.Errors))
	for i, k := range r.Errors {
		errs[i] = k
	}
	return errors.Join(errs...)
}

func (r *Result) fail(k Kind) {
	if !r.Has(k) {
		r.Errors = append(r.Errors, k)
	}
}

// scalar parses w, recording ScalarTooBig when it is not reduced.
func (r *Result) scalar(w *uint256.Int) fr.Element {
	s, ok := curve.ScalarFromWord(w)
	if !ok {
		r.fail(ScalarTooBig)
	}
	return s
}

// nonZeroScalar is scalar that additionally records ScalarIsZero.
func (r *Result) nonZeroScalar(w *uint256.Int) fr.Element {
	s, ok := curve.ScalarFromWord(w)
	switch {
	case !ok:
		r.fail(ScalarTooBig)
	case s.IsZero():
		r.fail(ScalarIsZero)
	}
	return s
}

// point parses a coordinate pair. Bad points are recorded and replaced by
// the identity so the remaining checks still run.
func (r *Result) point(x, y *uint256.Int) bn254.G1Affine {
	p, err := curve.PointFromWords(x, y)
	switch {
	case errors.Is(err, curve.ErrPointAtInfinity):
		r.fail(PointAtInfinity)
	case err != nil:
		r.fail(NotOnCurve)
	}
	return p
}

// bind checks that the notes, public value and statements travelling with p
// are the ones its rows prove.
func (r *Result) bind(p *Proof, rel relation, public *uint256.Int) {
	if p.PublicValue != *public {
		r.fail(PublicValueMalformed)
	}
	if len(p.InputNotes) != p.M || len(p.InputNotes)+len(p.OutputNotes) != len(p.Data) {
		r.fail(IncorrectNoteNumber)
		return
	}
	for i, n := range p.Notes() {
		if !p.Data[i].Holds(n) {
			r.fail(NoteMismatch)
			return
		}
	}
	if !slices.EqualFunc(p.Statements, rel.statements(p), sameStatement) {
		r.fail(NoteMismatch)
	}
}

func sameStatement(a, b Statement) bool {
	var enc WordEncoder
	x, _ := enc.EncodeStatement(&a)
	y, _ := enc.EncodeStatement(&b)
	return bytes.Equal(x, y)
}

// Verify checks p and reports every problem it finds. Malformed proofs are
// never an error return: they produce a Result listing why they failed.
// Verify panics if p.Type is not a known proof type.
func Verify(p *Proof) *Result {
	rel := relationFor(p)
	res := &Result{}
	lg := engineLog()

	n := len(p.Data)
	if p.M < 0 || p.M > n || !rel.counts(n, p.M) {
		res.fail(IncorrectNoteNumber)
		lg.Debug().Stringer("type", p.Type).Int("rows", n).Int("inputs", p.M).Msg("proof rejected")
		return res
	}

	c := res.nonZeroScalar(&p.Challenge)

	var public uint256.Int
	if w := rel.publicValue(p); w != nil {
		public = *w
	}
	_, ratio := rel.(dividend)
	for _, w := range rel.publicInputs(p) {
		if ratio {
			res.nonZeroScalar(w)
		} else {
			res.scalar(w)
		}
	}
	var off fr.Element
	if w := rel.offset(p); w != nil {
		off = res.scalar(w)
	}
	off.Mul(&off, &c)

	kBar := make([]fr.Element, n)
	aBar := make([]fr.Element, n)
	gammas := make([]bn254.G1Affine, n)
	sigmas := make([]bn254.G1Affine, n)
	for i := range p.Data {
		row := &p.Data[i]
		kBar[i] = res.scalar(&row.KBar)
		aBar[i] = res.nonZeroScalar(&row.ABar)
		gammas[i] = res.point(&row.GammaX, &row.GammaY)
		sigmas[i] = res.point(&row.SigmaX, &row.SigmaY)
	}
	rel.link(kBar, p.M, &off)

	scale := noteScalers(gammas, sigmas, p.M)
	blinding := make([]bn254.G1Affine, n)
	var gammaSum, sigmaSum bn254.G1Jac
	for i := range p.Data {
		var cx, sk, sa fr.Element
		cx.Mul(&c, &scale[i])
		sk.Mul(&kBar[i], &scale[i])
		sa.Mul(&aBar[i], &scale[i])

		b := curve.Commit(&gammas[i], &curve.H, &sk, &sa)
		cSigma := curve.Mul(&sigmas[i], &cx)
		b.Sub(&b, &cSigma)
		// The identity doubles as the all-zero coordinate sentinel; both
		// are absorbed as zero words.
		if b.IsInfinity() {
			res.fail(BadBlindingFactor)
		}
		blinding[i] = b

		cGamma := curve.Mul(&gammas[i], &cx)
		negSigma := curve.Neg(&cSigma)
		gammaSum.AddMixed(&cGamma)
		sigmaSum.AddMixed(&negSigma)
	}
	res.PairingGammas.FromJacobian(&gammaSum)
	res.PairingSigmas.FromJacobian(&sigmaSum)

	recomputed := challenge(p, rel, &public, gammas, sigmas, blinding)
	if curve.WordFromScalar(&recomputed) != p.Challenge {
		res.fail(ChallengeResponseFail)
	}
	res.bind(p, rel, &public)

	if !res.Valid() {
		lg.Debug().Stringer("type", p.Type).Err(res.Err()).Msg("proof rejected")
	} else {
		lg.Debug().Stringer("type", p.Type).Str("challenge", p.ChallengeHex()).Msg("proof verified")
	}
	return res
}
