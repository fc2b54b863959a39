package proof

import (
	"io"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"notecrypto/internal/note"
)

var (
	owner       = common.HexToAddress("0x1111111111111111111111111111111111111111")
	sender      = common.HexToAddress("0x2222222222222222222222222222222222222222")
	publicOwner = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func seeded(b byte) *rand.ChaCha8 {
	return rand.NewChaCha8([32]byte{b})
}

// makeNotes creates one note per value, all owned by owner.
func makeNotes(t *testing.T, rnd io.Reader, values ...uint64) []*note.Note {
	t.Helper()
	out := make([]*note.Note, len(values))
	for i, v := range values {
		n, err := note.New(v, owner, rnd)
		require.NoError(t, err)
		out[i] = n
	}
	return out
}

func params(seed byte) Params {
	return Params{Sender: sender, PublicOwner: publicOwner, Rand: seeded(seed)}
}

// clone copies p deeply enough that tampering with rows, note lists or
// statements leaves p intact.
func clone(p *Proof) *Proof {
	cp := *p
	cp.Data = slices.Clone(p.Data)
	cp.InputNotes = slices.Clone(p.InputNotes)
	cp.OutputNotes = slices.Clone(p.OutputNotes)
	cp.Statements = slices.Clone(p.Statements)
	return &cp
}

// offCurveX returns an x coordinate for which x³ + 3 is not a square.
func offCurveX(t *testing.T) fp.Element {
	t.Helper()
	_, b := bn254.CurveCoefficients()
	for i := uint64(1); i < 1000; i++ {
		var x, rhs, y fp.Element
		x.SetUint64(i)
		rhs.Square(&x).Mul(&rhs, &x).Add(&rhs, &b)
		if y.Sqrt(&rhs) == nil {
			return x
		}
	}
	t.Fatal("no off-curve x below 1000")
	return fp.Element{}
}

func requireValid(t *testing.T, p *Proof) *Result {
	t.Helper()
	res := Verify(p)
	require.Empty(t, res.Errors)
	require.True(t, res.Valid())
	require.NoError(t, res.Err())
	return res
}
