package proof

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"notecrypto/internal/note"
)

func TestProofJSON(t *testing.T) {
	rnd := seeded(100)

	t.Run("JoinSplit", func(t *testing.T) {
		p := validJoinSplit(t)
		data, err := json.Marshal(p)
		require.NoError(t, err)
		require.NotContains(t, string(data), "viewingKey")
		require.Contains(t, string(data), p.ChallengeHex())

		var got Proof
		require.NoError(t, json.Unmarshal(data, &got))
		require.Equal(t, p.Data, got.Data)
		require.Equal(t, p.Challenge, got.Challenge)
		require.Equal(t, p.PublicValue, got.PublicValue)
		require.Len(t, got.InputNotes, 2)
		require.Equal(t, p.InputNotes[0].Hash, got.InputNotes[0].Hash)
		requireValid(t, &got)
	})

	t.Run("Dividend", func(t *testing.T) {
		n := makeNotes(t, rnd, 100, 30, 10)
		p, err := NewDividend(n[0], n[1], n[2], 3, 1, params(101))
		require.NoError(t, err)
		data, err := json.Marshal(p)
		require.NoError(t, err)

		var got Proof
		require.NoError(t, json.Unmarshal(data, &got))
		require.Equal(t, p.Ratio, got.Ratio)
		require.Len(t, got.Statements, 1)
		requireValid(t, &got)
	})

	t.Run("PublicRange", func(t *testing.T) {
		n := makeNotes(t, rnd, 100, 40)
		p, err := NewPublicRange(n[0], n[1], 60, params(102))
		require.NoError(t, err)
		data, err := json.Marshal(p)
		require.NoError(t, err)

		var got Proof
		require.NoError(t, json.Unmarshal(data, &got))
		require.Equal(t, p.Comparison, got.Comparison)
		requireValid(t, &got)
	})

	t.Run("UnreducedWordsSurvive", func(t *testing.T) {
		p := clone(validJoinSplit(t))
		p.Data[0].KBar.SetAllOne()
		data, err := json.Marshal(p)
		require.NoError(t, err)

		var got Proof
		require.NoError(t, json.Unmarshal(data, &got))
		require.Equal(t, p.Data[0].KBar, got.Data[0].KBar)
		require.True(t, Verify(&got).Has(ScalarTooBig))
	})

	t.Run("NoteHashMismatch", func(t *testing.T) {
		p := validJoinSplit(t)
		data, err := json.Marshal(p)
		require.NoError(t, err)
		h := p.InputNotes[0].Hash.Hex()
		tampered := strings.Replace(string(data), h, p.InputNotes[1].Hash.Hex(), 1)

		var got Proof
		require.ErrorIs(t, json.Unmarshal([]byte(tampered), &got), note.ErrHashMismatch)
	})

	t.Run("UnknownType", func(t *testing.T) {
		var got Proof
		require.Error(t, json.Unmarshal([]byte(`{"type":"teleport"}`), &got))
	})
}

func TestParseType(t *testing.T) {
	for typ := range typeNames {
		got, err := ParseType(typ.String())
		require.NoError(t, err)
		require.Equal(t, typ, got)
	}
	_, err := ParseType("nope")
	require.Error(t, err)
}
