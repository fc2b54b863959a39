package proof

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"

	"notecrypto/internal/curve"
	"notecrypto/internal/note"
	"notecrypto/internal/transcript"
)

var groupOrder = uint256.MustFromBig(curve.GroupOrder())

// Variant holds the public inputs only some proof types take.
type Variant struct {
	Ratio      Ratio    // dividend
	Comparison *big.Int // public range; nil means zero
}

// NewJoinSplit proves that the inputs, minus the outputs, equal
// params.PublicValue.
func NewJoinSplit(inputs, outputs []*note.Note, params Params) (*Proof, error) {
	notes := make([]*note.Note, 0, len(inputs)+len(outputs))
	notes = append(append(notes, inputs...), outputs...)
	return New(JoinSplit, notes, len(inputs), params, Variant{})
}

// NewMint proves newTotal = oldTotal + Σ issued for a mintable asset's
// running supply counter.
func NewMint(newTotal, oldTotal *note.Note, issued []*note.Note, params Params) (*Proof, error) {
	notes := append([]*note.Note{newTotal, oldTotal}, issued...)
	return New(Mint, notes, 1, params, Variant{})
}

// NewBurn proves newTotal = oldTotal + Σ burned for a burnable asset's
// running burn counter.
func NewBurn(newTotal, oldTotal *note.Note, burned []*note.Note, params Params) (*Proof, error) {
	notes := append([]*note.Note{newTotal, oldTotal}, burned...)
	return New(Burn, notes, 1, params, Variant{})
}

// NewDividend proves zb·notional = za·target + residual.
func NewDividend(notional, target, residual *note.Note, za, zb uint64, params Params) (*Proof, error) {
	v := Variant{Ratio: Ratio{Za: *uint256.NewInt(za), Zb: *uint256.NewInt(zb)}}
	return New(Dividend, []*note.Note{notional, target, residual}, 1, params, v)
}

// NewSwap proves the taker's bid and ask notes match the maker's.
func NewSwap(makerBid, makerAsk, takerBid, takerAsk *note.Note, params Params) (*Proof, error) {
	return New(Swap, []*note.Note{makerBid, makerAsk, takerBid, takerAsk}, 2, params, Variant{})
}

// NewPrivateRange proves original = comparison + utility.
func NewPrivateRange(original, comparison, utility *note.Note, params Params) (*Proof, error) {
	return New(PrivateRange, []*note.Note{original, comparison, utility}, 1, params, Variant{})
}

// NewPublicRange proves original = comparison + utility for a public
// comparison value.
func NewPublicRange(original, utility *note.Note, comparison uint64, params Params) (*Proof, error) {
	v := Variant{Comparison: new(big.Int).SetUint64(comparison)}
	return New(PublicRange, []*note.Note{original, utility}, 1, params, v)
}

// New builds a proof of type t over notes, the first m of which are inputs.
// Bad input fails fast with a Kind, wrapped with the offending note's
// position where there is one. New panics on an unknown type.
func New(t Type, notes []*note.Note, m int, params Params, v Variant) (*Proof, error) {
	p := &Proof{
		Type:        t,
		M:           m,
		Sender:      params.Sender,
		PublicOwner: params.PublicOwner,
	}
	rel := relationFor(p)

	for i, n := range notes {
		if err := checkNote(n); err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
	}
	public, err := signedWord(params.PublicValue)
	if err != nil {
		return nil, fmt.Errorf("public value %v: %w", params.PublicValue, err)
	}
	if t != JoinSplit && !public.IsZero() {
		return nil, fmt.Errorf("%s proofs carry no public value: %w", t, PublicValueMalformed)
	}
	if m < 0 || m > len(notes) || !rel.counts(len(notes), m) {
		return nil, fmt.Errorf("%s proof over %d notes with %d inputs: %w", t, len(notes), m, IncorrectNoteNumber)
	}
	if err := p.setVariant(v); err != nil {
		return nil, err
	}
	rel = relationFor(p)

	p.PublicValue = public
	p.InputNotes = append([]*note.Note(nil), notes[:m]...)
	p.OutputNotes = append([]*note.Note(nil), notes[m:]...)

	rnd := params.Rand
	if rnd == nil {
		rnd = rand.Reader
	}
	n := len(notes)
	bk := make([]fr.Element, n)
	ba := make([]fr.Element, n)
	for i := range notes {
		if bk[i], err = curve.RandomScalar(rnd); err != nil {
			return nil, fmt.Errorf("drawing blinding scalars: %w", err)
		}
		if ba[i], err = curve.RandomScalar(rnd); err != nil {
			return nil, fmt.Errorf("drawing blinding scalars: %w", err)
		}
	}
	var zero fr.Element
	rel.link(bk, m, &zero)

	gammas := make([]bn254.G1Affine, n)
	sigmas := make([]bn254.G1Affine, n)
	for i, nt := range notes {
		gammas[i], sigmas[i] = nt.Gamma, nt.Sigma
	}
	scale := noteScalers(gammas, sigmas, m)
	blinding := make([]bn254.G1Affine, n)
	for i := range notes {
		var sk, sa fr.Element
		sk.Mul(&bk[i], &scale[i])
		sa.Mul(&ba[i], &scale[i])
		blinding[i] = curve.Commit(&gammas[i], &curve.H, &sk, &sa)
	}

	c := challenge(p, rel, &p.PublicValue, gammas, sigmas, blinding)
	p.Challenge = curve.WordFromScalar(&c)

	p.Data = make([]Row, n)
	for i, nt := range notes {
		k, a := nt.ValueScalar(), nt.ViewingScalar()
		var kBar, aBar fr.Element
		kBar.Mul(&k, &c).Add(&kBar, &bk[i])
		aBar.Mul(&a, &c).Add(&aBar, &ba[i])
		p.Data[i] = Row{
			KBar:   curve.WordFromScalar(&kBar),
			ABar:   curve.WordFromScalar(&aBar),
			GammaX: curve.WordFromField(&nt.Gamma.X),
			GammaY: curve.WordFromField(&nt.Gamma.Y),
			SigmaX: curve.WordFromField(&nt.Sigma.X),
			SigmaY: curve.WordFromField(&nt.Sigma.Y),
		}
	}
	if err := rel.fill(p, rnd); err != nil {
		return nil, fmt.Errorf("filling derived rows: %w", err)
	}
	p.Statements = rel.statements(p)

	lg := engineLog()
	lg.Debug().
		Stringer("type", t).
		Int("notes", n).
		Int("inputs", m).
		Str("challenge", p.ChallengeHex()).
		Msg("proof constructed")
	return p, nil
}

func checkNote(n *note.Note) error {
	switch {
	case n == nil:
		return IncorrectNoteNumber
	case n.ViewingKey.IsZero() || !n.ViewingKey.Lt(groupOrder):
		return ViewingKeyMalformed
	case !n.Value.LtUint64(curve.KMax):
		return NoteValueTooBig
	case n.Gamma.IsInfinity() || n.Sigma.IsInfinity():
		return PointAtInfinity
	case !n.Gamma.IsOnCurve() || !n.Sigma.IsOnCurve():
		return NotOnCurve
	}
	return nil
}

// setVariant validates and records the type-specific public inputs.
func (p *Proof) setVariant(v Variant) error {
	switch p.Type {
	case Dividend:
		for _, z := range []*uint256.Int{&v.Ratio.Za, &v.Ratio.Zb} {
			if z.IsZero() || !z.Lt(groupOrder) {
				return fmt.Errorf("dividend ratio %s: %w", z.Dec(), PublicValueMalformed)
			}
		}
		p.Ratio = v.Ratio
	case PublicRange:
		if v.Comparison != nil && v.Comparison.Sign() < 0 {
			return fmt.Errorf("comparison %v: %w", v.Comparison, PublicValueMalformed)
		}
		w, err := signedWord(v.Comparison)
		if err != nil {
			return fmt.Errorf("comparison %v: %w", v.Comparison, err)
		}
		p.Comparison = w
	}
	return nil
}

// signedWord reduces v into the scalar field, mapping -|v| to r - |v|.
// Magnitudes of r or more are malformed.
func signedWord(v *big.Int) (uint256.Int, error) {
	var w uint256.Int
	if v == nil {
		return w, nil
	}
	r := curve.GroupOrder()
	abs := new(big.Int).Abs(v)
	if abs.Cmp(r) >= 0 {
		return w, PublicValueMalformed
	}
	if v.Sign() < 0 {
		abs.Sub(r, abs)
	}
	w.SetFromBig(abs)
	return w, nil
}

// noteScalers returns the factor each note's blinding terms are scaled by:
// one for inputs and, for outputs, successive draws from a transcript seeded
// with every commitment. The scaling stops outputs from being moved between
// proofs.
func noteScalers(gammas, sigmas []bn254.G1Affine, m int) []fr.Element {
	t := transcript.New()
	for i := range gammas {
		t.AppendPoint(&gammas[i])
		t.AppendPoint(&sigmas[i])
	}
	out := make([]fr.Element, len(gammas))
	for i := range out {
		if i < m {
			out[i].SetOne()
			continue
		}
		out[i] = t.Drain()
	}
	return out
}

// challenge hashes the public context, the commitments and the blinding
// factors, in that order.
func challenge(p *Proof, rel relation, public *uint256.Int, gammas, sigmas, blinding []bn254.G1Affine) fr.Element {
	t := transcript.New()
	t.AppendAddress(p.Sender)
	t.AppendWord(public)
	t.AppendUint64(uint64(p.M))
	t.AppendAddress(p.PublicOwner)
	for _, w := range rel.publicInputs(p) {
		t.AppendWord(w)
	}
	for i := range gammas {
		t.AppendPoint(&gammas[i])
		t.AppendPoint(&sigmas[i])
	}
	for i := range blinding {
		t.AppendPoint(&blinding[i])
	}
	return t.Drain()
}
