package transcript

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestKeccakMatchesEthereum(t *testing.T) {
	data := []byte("note proof transcript")
	require.Equal(t, crypto.Keccak256(data), Keccak256(data))
	require.Equal(t, crypto.Keccak256(data[:4], data[4:]), Keccak256(data[:4], data[4:]))
}

func TestDrain(t *testing.T) {
	_, _, g, _ := bn254.Generators()
	s := fr.NewElement(42)

	build := func() *Transcript {
		tr := New()
		tr.AppendPoint(&g)
		tr.AppendScalar(&s)
		tr.AppendUint64(7)
		tr.AppendAddress(common.HexToAddress("0x00000000000000000000000000000000000000aa"))
		return tr
	}

	t.Run("WordAligned", func(t *testing.T) {
		require.Equal(t, 5*WordSize, build().Len())
	})

	t.Run("Deterministic", func(t *testing.T) {
		a, b := build().Drain(), build().Drain()
		require.True(t, a.Equal(&b))
	})

	t.Run("HashesWholeBuffer", func(t *testing.T) {
		tr := build()
		var want fr.Element
		want.SetBytes(Keccak256(tr.buf))
		got := tr.Drain()
		require.True(t, want.Equal(&got))
	})

	t.Run("Ratchets", func(t *testing.T) {
		tr := build()
		first := tr.Drain()
		second := tr.Drain()
		require.False(t, first.Equal(&second))
		require.Equal(t, 7*WordSize, tr.Len())
	})

	t.Run("OrderSensitive", func(t *testing.T) {
		a := New()
		a.AppendScalar(&s)
		a.AppendUint64(7)
		b := New()
		b.AppendUint64(7)
		b.AppendScalar(&s)
		da, db := a.Drain(), b.Drain()
		require.False(t, da.Equal(&db))
	})

	t.Run("Infinity", func(t *testing.T) {
		var inf bn254.G1Affine
		tr := New()
		tr.AppendPoint(&inf)
		require.Equal(t, make([]byte, 2*WordSize), tr.buf)
	})
}

func TestSumDoesNotAbsorb(t *testing.T) {
	tr := New()
	tr.AppendUint64(1)
	a := tr.Sum()
	b := tr.Sum()
	require.Equal(t, a, b)
	require.Equal(t, WordSize, tr.Len())
}
