// request.go - Proof request format accepted by `noteproof prove`
package main

import (
	"crypto/ecdsa"
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"notecrypto/internal/note"
	"notecrypto/internal/proof"
)

// ProveRequest describes a proof to build. Notes are listed in row order:
// Inputs become rows [0, len(Inputs)) and Outputs follow. For mint and burn
// proofs the single input is the new total and the first output the old one.
type ProveRequest struct {
	Type        string         `json:"type"`
	Inputs      []*note.Note   `json:"inputs"`
	Outputs     []*note.Note   `json:"outputs"`
	Sender      common.Address `json:"sender"`
	PublicOwner common.Address `json:"publicOwner"`
	// PublicValue is a signed decimal; join-splits only.
	PublicValue string `json:"publicValue,omitempty"`
	// Ratio is required for dividend proofs.
	Ratio *struct {
		Za uint64 `json:"za"`
		Zb uint64 `json:"zb"`
	} `json:"ratio,omitempty"`
	// Comparison is the public bound of a public range proof.
	Comparison uint64 `json:"comparison,omitempty"`
	// SigningKeys are hex secp256k1 keys, one per input note, used to sign
	// join-split inputs for the configured validator.
	SigningKeys []string `json:"signingKeys,omitempty"`
}

// Build constructs the requested proof, drawing randomness from rnd
// (crypto/rand when nil).
func (r *ProveRequest) Build(validator common.Address, rnd io.Reader) (*proof.Proof, error) {
	t, err := proof.ParseType(r.Type)
	if err != nil {
		return nil, err
	}

	params := proof.Params{Sender: r.Sender, PublicOwner: r.PublicOwner, Rand: rnd}
	if r.PublicValue != "" {
		v, ok := new(big.Int).SetString(r.PublicValue, 10)
		if !ok {
			return nil, fmt.Errorf("public value %q is not a decimal integer", r.PublicValue)
		}
		params.PublicValue = v
	}

	var variant proof.Variant
	switch t {
	case proof.Dividend:
		if r.Ratio == nil {
			return nil, fmt.Errorf("dividend proofs need a ratio")
		}
		variant.Ratio = proof.Ratio{Za: *uint256.NewInt(r.Ratio.Za), Zb: *uint256.NewInt(r.Ratio.Zb)}
	case proof.PublicRange:
		variant.Comparison = new(big.Int).SetUint64(r.Comparison)
	}

	notes := make([]*note.Note, 0, len(r.Inputs)+len(r.Outputs))
	notes = append(append(notes, r.Inputs...), r.Outputs...)
	p, err := proof.New(t, notes, len(r.Inputs), params, variant)
	if err != nil {
		return nil, err
	}

	if len(r.SigningKeys) > 0 {
		keys := make([]*ecdsa.PrivateKey, len(r.SigningKeys))
		for i, hexKey := range r.SigningKeys {
			if keys[i], err = crypto.HexToECDSA(hexKey); err != nil {
				return nil, fmt.Errorf("signing key %d: %w", i, err)
			}
		}
		if err := proof.SignInputs(p, validator, keys); err != nil {
			return nil, err
		}
	}
	return p, nil
}
