package proof

import (
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"

	"notecrypto/internal/curve"
	"notecrypto/internal/note"
	"notecrypto/internal/transcript"
)

// relation is what distinguishes one proof type from another. The prover and
// verifier run the same protocol and defer to the relation for the note
// layout, the public inputs and the linear constraint tying the notes
// together.
type relation interface {
	// counts reports whether n notes of which m are inputs fit the relation.
	counts(n, m int) bool

	// publicInputs are absorbed into the challenge after the public owner.
	publicInputs(p *Proof) []*uint256.Int

	// publicValue is the word the verifier treats as the public value, or nil.
	// The prover absorbs p.PublicValue in its place.
	publicValue(p *Proof) *uint256.Int

	// offset is the public scalar the verifier feeds into link, or nil.
	offset(p *Proof) *uint256.Int

	// link overwrites the derived entries of v so that they satisfy the
	// relation given the free entries. The prover links blinding scalars
	// with a zero offset; the verifier links kBar with challenge·offset.
	link(v []fr.Element, m int, off *fr.Element)

	// fill rewrites the derived rows' kBar slot once responses exist.
	fill(p *Proof, rnd io.Reader) error

	// statements packages the proof into ledger sub-statements.
	statements(p *Proof) []Statement
}

// relationFor returns the relation behind p.Type. Unknown types are a
// programming error.
func relationFor(p *Proof) relation {
	switch p.Type {
	case JoinSplit, Mint, Burn:
		return balance{typ: p.Type}
	case Dividend:
		return newDividend(&p.Ratio)
	case Swap:
		return swap{}
	case PrivateRange:
		return privateRange{}
	case PublicRange:
		return publicRange{}
	default:
		panic(fmt.Sprintf("proof: unknown proof type %d", uint8(p.Type)))
	}
}

// balance is the zero-sum relation: inputs minus outputs equals the public
// value. The last note is derived.
type balance struct {
	typ Type
}

func (b balance) counts(n, m int) bool {
	if b.typ == JoinSplit {
		return n >= 1 && m >= 0 && m <= n
	}
	return n >= 2 && m == 1
}

func (balance) publicInputs(*Proof) []*uint256.Int { return nil }

func (b balance) publicValue(p *Proof) *uint256.Int {
	if b.typ != JoinSplit {
		return nil
	}
	return &p.Data[len(p.Data)-1].KBar
}

func (b balance) offset(p *Proof) *uint256.Int { return b.publicValue(p) }

func (balance) link(v []fr.Element, m int, off *fr.Element) {
	last := len(v) - 1
	var running fr.Element
	for i := 0; i < last; i++ {
		if i < m {
			running.Add(&running, &v[i])
		} else {
			running.Sub(&running, &v[i])
		}
	}
	if last < m {
		v[last].Sub(off, &running)
	} else {
		v[last].Sub(&running, off)
	}
}

// fill stores the public value in the last kBar slot. Mint and burn proofs
// have none, so the slot is zero.
func (b balance) fill(p *Proof, _ io.Reader) error {
	last := &p.Data[len(p.Data)-1].KBar
	if b.typ == JoinSplit {
		*last = p.PublicValue
	} else {
		last.Clear()
	}
	return nil
}

// statements: mint and burn proofs move the supply counter from the old
// total to the new one and separately create or destroy the minted or burned
// notes. Join-splits are settled directly.
func (b balance) statements(p *Proof) []Statement {
	if b.typ == JoinSplit {
		return nil
	}
	newTotal, oldTotal, rest := p.InputNotes[0], p.OutputNotes[0], p.OutputNotes[1:]
	counter := p.statement([]*note.Note{oldTotal}, []*note.Note{newTotal}, p.Challenge)
	supply := p.statement(nil, rest, keyedChallenge(&p.Challenge))
	if b.typ == Burn {
		supply = p.statement(rest, nil, keyedChallenge(&p.Challenge))
	}
	return []Statement{counter, supply}
}

// dividend: zb·notional = za·target + residual.
type dividend struct {
	za, zb fr.Element
}

func newDividend(r *Ratio) dividend {
	var d dividend
	a, b := r.Za.Bytes32(), r.Zb.Bytes32()
	d.za.SetBytes(a[:])
	d.zb.SetBytes(b[:])
	return d
}

func (dividend) counts(n, m int) bool { return n == 3 && m == 1 }

func (dividend) publicInputs(p *Proof) []*uint256.Int {
	return []*uint256.Int{&p.Ratio.Za, &p.Ratio.Zb}
}

func (dividend) publicValue(*Proof) *uint256.Int { return nil }
func (dividend) offset(*Proof) *uint256.Int      { return nil }

func (d dividend) link(v []fr.Element, _ int, _ *fr.Element) {
	var t fr.Element
	t.Mul(&d.za, &v[1])
	v[2].Mul(&d.zb, &v[0]).Sub(&v[2], &t)
}

func (dividend) fill(*Proof, io.Reader) error { return nil }

func (dividend) statements(p *Proof) []Statement {
	return []Statement{p.statement(p.InputNotes, p.OutputNotes, p.Challenge)}
}

// swap: the taker's bid and ask mirror the maker's.
type swap struct{}

func (swap) counts(n, m int) bool               { return n == 4 && m == 2 }
func (swap) publicInputs(*Proof) []*uint256.Int { return nil }
func (swap) publicValue(*Proof) *uint256.Int    { return nil }
func (swap) offset(*Proof) *uint256.Int         { return nil }

func (swap) link(v []fr.Element, _ int, _ *fr.Element) {
	v[2] = v[0]
	v[3] = v[1]
}

func (swap) fill(*Proof, io.Reader) error { return nil }

func (swap) statements(p *Proof) []Statement {
	makerBid, makerAsk := p.InputNotes[0], p.InputNotes[1]
	takerBid, takerAsk := p.OutputNotes[0], p.OutputNotes[1]
	return []Statement{
		p.statement([]*note.Note{makerBid}, []*note.Note{makerAsk}, p.Challenge),
		p.statement([]*note.Note{takerBid}, []*note.Note{takerAsk}, keyedChallenge(&p.Challenge)),
	}
}

// privateRange: original = comparison + utility, so original >= comparison
// whenever utility is a valid note value.
type privateRange struct{}

func (privateRange) counts(n, m int) bool               { return n == 3 && m == 1 }
func (privateRange) publicInputs(*Proof) []*uint256.Int { return nil }
func (privateRange) publicValue(*Proof) *uint256.Int    { return nil }
func (privateRange) offset(*Proof) *uint256.Int         { return nil }

func (privateRange) link(v []fr.Element, _ int, _ *fr.Element) {
	v[2].Sub(&v[0], &v[1])
}

func (privateRange) fill(p *Proof, rnd io.Reader) error {
	return randomSlot(&p.Data[2].KBar, rnd)
}

func (privateRange) statements(p *Proof) []Statement {
	return []Statement{p.statement(p.InputNotes, p.OutputNotes, p.Challenge)}
}

// publicRange: original = comparison + utility for a public comparison.
type publicRange struct{}

func (publicRange) counts(n, m int) bool { return n == 2 && m == 1 }

func (publicRange) publicInputs(p *Proof) []*uint256.Int {
	return []*uint256.Int{&p.Comparison}
}

func (publicRange) publicValue(*Proof) *uint256.Int { return nil }
func (publicRange) offset(p *Proof) *uint256.Int    { return &p.Comparison }

func (publicRange) link(v []fr.Element, _ int, off *fr.Element) {
	v[1].Sub(&v[0], off)
}

func (publicRange) fill(p *Proof, rnd io.Reader) error {
	return randomSlot(&p.Data[1].KBar, rnd)
}

func (publicRange) statements(p *Proof) []Statement {
	s := p.statement(p.InputNotes, p.OutputNotes, p.Challenge)
	s.PublicValue = p.Comparison
	return []Statement{s}
}

// randomSlot fills a kBar slot the verifier overwrites with fresh randomness
// so it leaks nothing about the derived note.
func randomSlot(w *uint256.Int, rnd io.Reader) error {
	s, err := curve.RandomScalar(rnd)
	if err != nil {
		return err
	}
	*w = curve.WordFromScalar(&s)
	return nil
}

// keyedChallenge derives the challenge of a second sub-statement so that it
// cannot be replayed as the first.
func keyedChallenge(c *uint256.Int) uint256.Int {
	b := c.Bytes32()
	var out uint256.Int
	out.SetBytes32(transcript.Keccak256(b[:]))
	return out
}
