package proof

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"notecrypto/internal/curve"
	"notecrypto/internal/note"
)

// proofJSON is the wire form of a Proof. Every word is fixed-width hex and
// notes carry only their public half.
type proofJSON struct {
	Type        string           `json:"type"`
	M           int              `json:"m"`
	Sender      common.Address   `json:"sender"`
	PublicOwner common.Address   `json:"publicOwner"`
	PublicValue string           `json:"publicValue"`
	Challenge   string           `json:"challenge"`
	Data        [][6]string      `json:"data"`
	InputNotes  []publicNoteJSON `json:"inputNotes"`
	OutputNotes []publicNoteJSON `json:"outputNotes"`
	Ratio       *ratioJSON       `json:"ratio,omitempty"`
	Comparison  string           `json:"comparison,omitempty"`
	Statements  []statementJSON  `json:"statements,omitempty"`
	Signatures  []hexutil.Bytes  `json:"signatures,omitempty"`
}

type publicNoteJSON struct {
	Gamma string         `json:"gamma"`
	Sigma string         `json:"sigma"`
	Owner common.Address `json:"owner"`
	Hash  common.Hash    `json:"noteHash"`
}

type ratioJSON struct {
	Za string `json:"za"`
	Zb string `json:"zb"`
}

// statementJSON is informational: decoding rebuilds statements from the proof.
type statementJSON struct {
	Inputs      []common.Hash  `json:"inputs"`
	Outputs     []common.Hash  `json:"outputs"`
	PublicOwner common.Address `json:"publicOwner"`
	PublicValue string         `json:"publicValue"`
	Challenge   string         `json:"challenge"`
}

// MarshalJSON implements the json.Marshaler interface.
func (p Proof) MarshalJSON() ([]byte, error) {
	out := proofJSON{
		Type:        p.Type.String(),
		M:           p.M,
		Sender:      p.Sender,
		PublicOwner: p.PublicOwner,
		PublicValue: curve.WordHex(&p.PublicValue),
		Challenge:   curve.WordHex(&p.Challenge),
		Data:        make([][6]string, len(p.Data)),
		InputNotes:  publicNotes(p.InputNotes),
		OutputNotes: publicNotes(p.OutputNotes),
	}
	for i := range p.Data {
		for j, w := range p.Data[i].Words() {
			out.Data[i][j] = curve.WordHex(w)
		}
	}
	switch p.Type {
	case Dividend:
		out.Ratio = &ratioJSON{Za: curve.WordHex(&p.Ratio.Za), Zb: curve.WordHex(&p.Ratio.Zb)}
	case PublicRange:
		out.Comparison = curve.WordHex(&p.Comparison)
	}
	for i := range p.Statements {
		s := &p.Statements[i]
		out.Statements = append(out.Statements, statementJSON{
			Inputs:      noteHashes(s.InputNotes),
			Outputs:     noteHashes(s.OutputNotes),
			PublicOwner: s.PublicOwner,
			PublicValue: curve.WordHex(&s.PublicValue),
			Challenge:   curve.WordHex(&s.Challenge),
		})
	}
	for _, sig := range p.Signatures {
		out.Signatures = append(out.Signatures, sig)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements the json.Unmarshaler interface. Row words are
// taken as they come, unreduced values included, so Verify sees exactly
// what was sent.
func (p *Proof) UnmarshalJSON(data []byte) error {
	var raw proofJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, err := ParseType(raw.Type)
	if err != nil {
		return err
	}
	out := Proof{
		Type:        t,
		M:           raw.M,
		Sender:      raw.Sender,
		PublicOwner: raw.PublicOwner,
		Data:        make([]Row, len(raw.Data)),
	}
	if out.PublicValue, err = curve.ParseWordHex(raw.PublicValue); err != nil {
		return fmt.Errorf("public value: %w", err)
	}
	if out.Challenge, err = curve.ParseWordHex(raw.Challenge); err != nil {
		return fmt.Errorf("challenge: %w", err)
	}
	for i, words := range raw.Data {
		for j, w := range out.Data[i].Words() {
			if *w, err = curve.ParseWordHex(words[j]); err != nil {
				return fmt.Errorf("row %d word %d: %w", i, j, err)
			}
		}
	}
	if out.InputNotes, err = parsePublicNotes(raw.InputNotes); err != nil {
		return fmt.Errorf("input notes: %w", err)
	}
	if out.OutputNotes, err = parsePublicNotes(raw.OutputNotes); err != nil {
		return fmt.Errorf("output notes: %w", err)
	}
	if raw.Ratio != nil {
		if out.Ratio.Za, err = curve.ParseWordHex(raw.Ratio.Za); err != nil {
			return fmt.Errorf("ratio za: %w", err)
		}
		if out.Ratio.Zb, err = curve.ParseWordHex(raw.Ratio.Zb); err != nil {
			return fmt.Errorf("ratio zb: %w", err)
		}
	}
	if raw.Comparison != "" {
		if out.Comparison, err = curve.ParseWordHex(raw.Comparison); err != nil {
			return fmt.Errorf("comparison: %w", err)
		}
	}
	for _, sig := range raw.Signatures {
		out.Signatures = append(out.Signatures, sig)
	}
	if n := len(out.InputNotes) + len(out.OutputNotes); n == len(out.Data) && out.M == len(out.InputNotes) {
		if rel := relationFor(&out); rel.counts(n, out.M) {
			out.Statements = rel.statements(&out)
		}
	}
	*p = out
	return nil
}

func publicNotes(notes []*note.Note) []publicNoteJSON {
	out := make([]publicNoteJSON, len(notes))
	for i, n := range notes {
		out[i] = publicNoteJSON{
			Gamma: curve.CompressedHex(&n.Gamma),
			Sigma: curve.CompressedHex(&n.Sigma),
			Owner: n.Owner,
			Hash:  n.Hash,
		}
	}
	return out
}

func parsePublicNotes(raw []publicNoteJSON) ([]*note.Note, error) {
	out := make([]*note.Note, len(raw))
	for i, r := range raw {
		n := &note.Note{Owner: r.Owner}
		var err error
		if n.Gamma, err = curve.ParseCompressedHex(r.Gamma); err != nil {
			return nil, fmt.Errorf("note %d gamma: %w", i, err)
		}
		if n.Sigma, err = curve.ParseCompressedHex(r.Sigma); err != nil {
			return nil, fmt.Errorf("note %d sigma: %w", i, err)
		}
		n.Hash = n.ComputeHash()
		if r.Hash != n.Hash {
			return nil, fmt.Errorf("note %d: %w", i, note.ErrHashMismatch)
		}
		out[i] = n
	}
	return out, nil
}

func noteHashes(notes []*note.Note) []common.Hash {
	out := make([]common.Hash, len(notes))
	for i, n := range notes {
		out[i] = n.Hash
	}
	return out
}
