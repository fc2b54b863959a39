package proof

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"notecrypto/internal/note"
	"notecrypto/internal/transcript"
)

// Statement is one ledger update carried by a proof: the notes it destroys,
// the notes it creates and the public transfer that goes with them.
type Statement struct {
	InputNotes  []*note.Note
	OutputNotes []*note.Note
	PublicOwner common.Address
	PublicValue uint256.Int
	Challenge   uint256.Int
}

func (p *Proof) statement(inputs, outputs []*note.Note, challenge uint256.Int) Statement {
	return Statement{
		InputNotes:  inputs,
		OutputNotes: outputs,
		PublicOwner: p.PublicOwner,
		PublicValue: p.PublicValue,
		Challenge:   challenge,
	}
}

// OutputEncoder serializes a statement into the bytes a ledger consumes.
// The ledger's ABI encoder lives outside this module.
type OutputEncoder interface {
	EncodeStatement(s *Statement) ([]byte, error)
}

// Output is an encoded statement and its keccak256 hash.
type Output struct {
	Data []byte
	Hash common.Hash
}

// Outputs encodes every statement of p with enc.
func (p *Proof) Outputs(enc OutputEncoder) ([]Output, error) {
	out := make([]Output, 0, len(p.Statements))
	for i := range p.Statements {
		data, err := enc.EncodeStatement(&p.Statements[i])
		if err != nil {
			return nil, fmt.Errorf("encoding statement %d: %w", i, err)
		}
		out = append(out, Output{Data: data, Hash: common.BytesToHash(transcript.Keccak256(data))})
	}
	return out, nil
}

// WordEncoder is a flat OutputEncoder: the input count, the input note
// hashes, the output count, the output note hashes, then the public owner,
// the public value and the challenge, each as one 32-byte word.
type WordEncoder struct{}

func (WordEncoder) EncodeStatement(s *Statement) ([]byte, error) {
	words := 5 + len(s.InputNotes) + len(s.OutputNotes)
	out := make([]byte, 0, words*transcript.WordSize)
	for _, notes := range [][]*note.Note{s.InputNotes, s.OutputNotes} {
		out = appendWord(out, uint256.NewInt(uint64(len(notes))))
		for _, n := range notes {
			out = append(out, n.Hash.Bytes()...)
		}
	}
	out = append(out, common.LeftPadBytes(s.PublicOwner.Bytes(), transcript.WordSize)...)
	out = appendWord(out, &s.PublicValue)
	out = appendWord(out, &s.Challenge)
	return out, nil
}

func appendWord(dst []byte, w *uint256.Int) []byte {
	b := w.Bytes32()
	return append(dst, b[:]...)
}
