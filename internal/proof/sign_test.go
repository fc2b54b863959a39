package proof

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"notecrypto/internal/note"
)

var validator = common.HexToAddress("0x4444444444444444444444444444444444444444")

func TestSignInputs(t *testing.T) {
	rnd := seeded(110)
	keys := make([]*ecdsa.PrivateKey, 2)
	inputs := make([]*note.Note, 2)
	for i, v := range []uint64{25, 15} {
		key, err := crypto.GenerateKey()
		require.NoError(t, err)
		keys[i] = key
		inputs[i], err = note.New(v, crypto.PubkeyToAddress(key.PublicKey), rnd)
		require.NoError(t, err)
	}
	outputs := makeNotes(t, rnd, 40)

	p, err := NewJoinSplit(inputs, outputs, params(111))
	require.NoError(t, err)
	requireValid(t, p)

	t.Run("RoundTrip", func(t *testing.T) {
		cp := clone(p)
		require.NoError(t, SignInputs(cp, validator, keys))
		require.Len(t, cp.Signatures, 2)
		require.NoError(t, CheckSignatures(cp, validator))
		require.ErrorIs(t, CheckSignatures(cp, sender), ErrSignerMismatch)
	})

	t.Run("SwappedSignatures", func(t *testing.T) {
		cp := clone(p)
		require.NoError(t, SignInputs(cp, validator, keys))
		cp.Signatures[0], cp.Signatures[1] = cp.Signatures[1], cp.Signatures[0]
		require.ErrorIs(t, CheckSignatures(cp, validator), ErrSignerMismatch)
	})

	t.Run("NotesOffTheRows", func(t *testing.T) {
		cp := clone(p)
		require.NoError(t, SignInputs(cp, validator, keys))
		cp.InputNotes[0], cp.InputNotes[1] = cp.InputNotes[1], cp.InputNotes[0]
		cp.Signatures[0], cp.Signatures[1] = cp.Signatures[1], cp.Signatures[0]
		require.ErrorIs(t, CheckSignatures(cp, validator), ErrUnboundNote)
		require.True(t, Verify(cp).Has(NoteMismatch))
	})

	t.Run("WrongKey", func(t *testing.T) {
		cp := clone(p)
		err := SignInputs(cp, validator, []*ecdsa.PrivateKey{keys[1], keys[0]})
		require.ErrorIs(t, err, ErrSignerMismatch)
		require.Empty(t, cp.Signatures)
	})

	t.Run("KeyCount", func(t *testing.T) {
		require.ErrorIs(t, SignInputs(clone(p), validator, keys[:1]), ErrKeyCount)
	})

	t.Run("NotJoinSplit", func(t *testing.T) {
		n := makeNotes(t, rnd, 100, 40)
		r, err := NewPublicRange(n[0], n[1], 60, params(112))
		require.NoError(t, err)
		require.ErrorIs(t, SignInputs(r, validator, keys[:1]), ErrNotJoinSplit)
	})

	t.Run("PublicValueUnaffected", func(t *testing.T) {
		prm := params(113)
		prm.PublicValue = big.NewInt(0)
		cp, err := NewJoinSplit(inputs, outputs, prm)
		require.NoError(t, err)
		require.NoError(t, SignInputs(cp, validator, keys))
		requireValid(t, cp)
	})
}
