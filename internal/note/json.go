package note

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"notecrypto/internal/curve"
)

// ErrHashMismatch is returned when a decoded note's hash does not match its points.
var ErrHashMismatch = errors.New("note hash does not match commitment")

// noteJSON is the wire form of a Note. Points are compressed, words are
// fixed-width hex.
type noteJSON struct {
	Value      string         `json:"value"`
	ViewingKey string         `json:"viewingKey"`
	Gamma      string         `json:"gamma"`
	Sigma      string         `json:"sigma"`
	Owner      common.Address `json:"owner"`
	Hash       common.Hash    `json:"noteHash"`
}

// MarshalJSON implements the json.Marshaler interface.
func (n Note) MarshalJSON() ([]byte, error) {
	return json.Marshal(noteJSON{
		Value:      curve.WordHex(&n.Value),
		ViewingKey: curve.WordHex(&n.ViewingKey),
		Gamma:      curve.CompressedHex(&n.Gamma),
		Sigma:      curve.CompressedHex(&n.Sigma),
		Owner:      n.Owner,
		Hash:       n.Hash,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (n *Note) UnmarshalJSON(data []byte) error {
	var raw noteJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out Note
	var err error
	if out.Value, err = curve.ParseWordHex(raw.Value); err != nil {
		return fmt.Errorf("value: %w", err)
	}
	if out.ViewingKey, err = curve.ParseWordHex(raw.ViewingKey); err != nil {
		return fmt.Errorf("viewing key: %w", err)
	}
	if out.Gamma, err = curve.ParseCompressedHex(raw.Gamma); err != nil {
		return fmt.Errorf("gamma: %w", err)
	}
	if out.Sigma, err = curve.ParseCompressedHex(raw.Sigma); err != nil {
		return fmt.Errorf("sigma: %w", err)
	}
	out.Owner = raw.Owner
	out.Hash = out.ComputeHash()
	if raw.Hash != (common.Hash{}) && raw.Hash != out.Hash {
		return ErrHashMismatch
	}
	*n = out
	return nil
}
