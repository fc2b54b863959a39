package proof

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"notecrypto/internal/curve"
	"notecrypto/internal/note"
)

// validJoinSplit returns a verified 2-in 2-out join-split.
func validJoinSplit(t *testing.T) *Proof {
	t.Helper()
	n := makeNotes(t, seeded(80), 80, 60, 50, 100)
	prm := params(81)
	prm.PublicValue = big.NewInt(-10)
	p, err := NewJoinSplit(n[:2], n[2:], prm)
	require.NoError(t, err)
	requireValid(t, p)
	return p
}

func TestTamper(t *testing.T) {
	p := validJoinSplit(t)

	for i := range p.Data {
		for j := range 6 {
			cp := clone(p)
			w := cp.Data[i].Words()[j]
			w.AddUint64(w, 1)
			require.False(t, Verify(cp).Valid(), "row %d word %d", i, j)
		}
	}

	for name, mutate := range map[string]func(*Proof){
		"challenge":   func(p *Proof) { p.Challenge.AddUint64(&p.Challenge, 1) },
		"sender":      func(p *Proof) { p.Sender = common.HexToAddress("0x99") },
		"publicOwner": func(p *Proof) { p.PublicOwner = common.Address{} },
		"m":           func(p *Proof) { p.M = 1 },
		"swapRows":    func(p *Proof) { p.Data[0], p.Data[1] = p.Data[1], p.Data[0] },
		"dropInput":   func(p *Proof) { p.Data = p.Data[1:]; p.M = 1 },
	} {
		cp := clone(p)
		mutate(cp)
		require.False(t, Verify(cp).Valid(), name)
	}
	requireValid(t, p)
}

func TestVerifyRejects(t *testing.T) {
	p := validJoinSplit(t)

	t.Run("ChallengeTooBig", func(t *testing.T) {
		cp := clone(p)
		cp.Challenge = *groupOrder
		res := Verify(cp)
		require.True(t, res.Has(ScalarTooBig))
		require.False(t, res.Has(ScalarIsZero))
		require.True(t, res.Has(ChallengeResponseFail))
	})

	t.Run("ChallengeZero", func(t *testing.T) {
		cp := clone(p)
		cp.Challenge.Clear()
		require.True(t, Verify(cp).Has(ScalarIsZero))
	})

	t.Run("ResponseTooBig", func(t *testing.T) {
		cp := clone(p)
		cp.Data[0].KBar.SetAllOne()
		require.True(t, Verify(cp).Has(ScalarTooBig))
	})

	t.Run("PublicValueTooBig", func(t *testing.T) {
		cp := clone(p)
		cp.Data[3].KBar = *groupOrder
		require.True(t, Verify(cp).Has(ScalarTooBig))
	})

	t.Run("ABarZero", func(t *testing.T) {
		cp := clone(p)
		cp.Data[2].ABar.Clear()
		require.True(t, Verify(cp).Has(ScalarIsZero))
	})

	t.Run("NotOnCurve", func(t *testing.T) {
		cp := clone(p)
		cp.Data[1].SigmaY.AddUint64(&cp.Data[1].SigmaY, 1)
		res := Verify(cp)
		require.True(t, res.Has(NotOnCurve))
		require.True(t, res.Has(ChallengeResponseFail))
	})

	t.Run("GammaXOffCurve", func(t *testing.T) {
		cp := clone(p)
		x := offCurveX(t)
		cp.Data[1].GammaX = curve.WordFromField(&x)
		res := Verify(cp)
		require.True(t, res.Has(NotOnCurve))
		require.False(t, res.Has(PointAtInfinity))
		require.True(t, res.Has(ChallengeResponseFail))
	})

	t.Run("CoordinateTooBig", func(t *testing.T) {
		cp := clone(p)
		cp.Data[0].GammaX = *uint256.MustFromBig(curve.FieldModulus())
		require.True(t, Verify(cp).Has(NotOnCurve))
	})

	t.Run("PointAtInfinity", func(t *testing.T) {
		cp := clone(p)
		cp.Data[2].GammaX.Clear()
		cp.Data[2].GammaY.Clear()
		require.True(t, Verify(cp).Has(PointAtInfinity))
	})

	t.Run("BadBlindingFactor", func(t *testing.T) {
		// With γ = G, σ = h, kBar = 0 and aBar = c the input row's blinding
		// factor collapses to the identity.
		cp := clone(p)
		row := &cp.Data[0]
		row.GammaX, row.GammaY = curve.WordFromField(&curve.G.X), curve.WordFromField(&curve.G.Y)
		row.SigmaX, row.SigmaY = curve.WordFromField(&curve.H.X), curve.WordFromField(&curve.H.Y)
		row.KBar.Clear()
		row.ABar = cp.Challenge
		res := Verify(cp)
		require.True(t, res.Has(BadBlindingFactor))
		require.True(t, res.Has(ChallengeResponseFail))
	})

	t.Run("RowCount", func(t *testing.T) {
		n := makeNotes(t, seeded(82), 10, 20, 10, 20)
		s, err := NewSwap(n[0], n[1], n[2], n[3], params(83))
		require.NoError(t, err)
		s.Data = s.Data[:3]
		require.Equal(t, []Kind{IncorrectNoteNumber}, Verify(s).Errors)

		cp := clone(p)
		cp.M = 5
		require.Equal(t, []Kind{IncorrectNoteNumber}, Verify(cp).Errors)
	})

	t.Run("ZeroRatio", func(t *testing.T) {
		n := makeNotes(t, seeded(84), 100, 30, 10)
		d, err := NewDividend(n[0], n[1], n[2], 3, 1, params(85))
		require.NoError(t, err)
		requireValid(t, d)

		for name, zero := range map[string]func(*Ratio){
			"za": func(r *Ratio) { r.Za.Clear() },
			"zb": func(r *Ratio) { r.Zb.Clear() },
		} {
			cp := clone(d)
			zero(&cp.Ratio)
			res := Verify(cp)
			require.True(t, res.Has(ScalarIsZero), name)
			require.False(t, res.Has(ScalarTooBig), name)
		}
	})

	t.Run("UnknownType", func(t *testing.T) {
		cp := clone(p)
		cp.Type = 0
		require.Panics(t, func() { Verify(cp) })
	})

	t.Run("ErrorsDeduplicated", func(t *testing.T) {
		cp := clone(p)
		cp.Data[0].ABar.Clear()
		cp.Data[1].ABar.Clear()
		res := Verify(cp)
		count := 0
		for _, k := range res.Errors {
			if k == ScalarIsZero {
				count++
			}
		}
		require.Equal(t, 1, count)
		require.ErrorIs(t, res.Err(), ScalarIsZero)
	})
}

// roundTrip sends p through its wire form, as a ledger would receive it.
func roundTrip(t *testing.T, p *Proof) *Proof {
	t.Helper()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	var got Proof
	require.NoError(t, json.Unmarshal(data, &got))
	return &got
}

func TestRecordBinding(t *testing.T) {
	p := validJoinSplit(t)
	forged := makeNotes(t, seeded(120), 1_000_000)[0]

	t.Run("SwappedOutputNote", func(t *testing.T) {
		cp := clone(p)
		cp.OutputNotes[1] = forged
		cp.PublicValue.SetUint64(999)
		res := Verify(roundTrip(t, cp))
		require.False(t, res.Valid())
		require.True(t, res.Has(NoteMismatch))
		require.True(t, res.Has(PublicValueMalformed))
		require.False(t, res.Has(ChallengeResponseFail))
	})

	t.Run("PublicValueRewritten", func(t *testing.T) {
		cp := clone(p)
		cp.PublicValue.SetUint64(999)
		require.Equal(t, []Kind{PublicValueMalformed}, Verify(roundTrip(t, cp)).Errors)
	})

	t.Run("NoteCount", func(t *testing.T) {
		cp := clone(p)
		cp.InputNotes = cp.InputNotes[:1]
		require.Equal(t, []Kind{IncorrectNoteNumber}, Verify(cp).Errors)

		cp = clone(p)
		cp.OutputNotes = append(cp.OutputNotes, forged)
		require.Equal(t, []Kind{IncorrectNoteNumber}, Verify(cp).Errors)
	})

	t.Run("StaleNoteHash", func(t *testing.T) {
		cp := clone(p)
		stale := *cp.InputNotes[0]
		stale.Hash = forged.Hash
		cp.InputNotes[0] = &stale
		require.Equal(t, []Kind{NoteMismatch}, Verify(cp).Errors)
	})

	t.Run("Mint", func(t *testing.T) {
		n := makeNotes(t, seeded(121), 10, 5, 5)
		m, err := NewMint(n[0], n[1], n[2:], params(122))
		require.NoError(t, err)
		requireValid(t, roundTrip(t, m))

		public := clone(m)
		public.PublicValue.SetUint64(5)
		res := Verify(roundTrip(t, public))
		require.True(t, res.Has(PublicValueMalformed))

		issued := clone(m)
		issued.OutputNotes[1] = forged
		got := roundTrip(t, issued)
		require.Equal(t, forged.Hash, got.Statements[1].OutputNotes[0].Hash)
		require.Equal(t, []Kind{NoteMismatch}, Verify(got).Errors)
	})

	t.Run("Statements", func(t *testing.T) {
		n := makeNotes(t, seeded(123), 10, 5, 5)
		m, err := NewMint(n[0], n[1], n[2:], params(124))
		require.NoError(t, err)

		cp := clone(m)
		cp.Statements[1].OutputNotes = []*note.Note{forged}
		require.Equal(t, []Kind{NoteMismatch}, Verify(cp).Errors)

		cp = clone(m)
		cp.Statements = cp.Statements[:1]
		require.Equal(t, []Kind{NoteMismatch}, Verify(cp).Errors)
		requireValid(t, m)
	})
}

func TestPairingSums(t *testing.T) {
	n := makeNotes(t, seeded(90), 30, 20)
	prm := params(91)
	prm.PublicValue = big.NewInt(50)
	p, err := NewJoinSplit(n, nil, prm)
	require.NoError(t, err)
	res := requireValid(t, p)

	// All rows are inputs, so every c' is the challenge itself.
	c, ok := curve.ScalarFromWord(&p.Challenge)
	require.True(t, ok)
	gammas := curve.Add(&n[0].Gamma, &n[1].Gamma)
	sigmas := curve.Add(&n[0].Sigma, &n[1].Sigma)
	wantGammas := curve.Mul(&gammas, &c)
	wantSigmas := curve.Mul(&sigmas, &c)
	wantSigmas = curve.Neg(&wantSigmas)
	require.True(t, wantGammas.Equal(&res.PairingGammas))
	require.True(t, wantSigmas.Equal(&res.PairingSigmas))
}

func TestKindText(t *testing.T) {
	require.Equal(t, "NOT_ON_CURVE", NotOnCurve.String())
	require.Equal(t, "proof: challenge response fail", ChallengeResponseFail.Error())
	require.Equal(t, "UNKNOWN", Kind(0).String())
}
