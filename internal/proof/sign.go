package proof

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"notecrypto/internal/sign"
)

var (
	ErrNotJoinSplit   = errors.New("only join-split proofs carry input signatures")
	ErrSignerMismatch = errors.New("signer does not own the note")
	ErrKeyCount       = errors.New("need one key per input note")
	ErrUnboundNote    = errors.New("note does not match its proof row")
)

// SignInputs attaches one owner signature per input note, authorizing the
// validator to spend it in p. keys[i] must belong to p.InputNotes[i].Owner.
func SignInputs(p *Proof, validator common.Address, keys []*ecdsa.PrivateKey) error {
	if p.Type != JoinSplit {
		return ErrNotJoinSplit
	}
	if len(keys) != len(p.InputNotes) {
		return fmt.Errorf("%w: have %d, want %d", ErrKeyCount, len(keys), len(p.InputNotes))
	}
	sigs := make([][]byte, len(keys))
	for i, key := range keys {
		n := p.InputNotes[i]
		if owner := crypto.PubkeyToAddress(key.PublicKey); owner != n.Owner {
			return fmt.Errorf("input %d: %w: key is %s, owner is %s", i, ErrSignerMismatch, owner, n.Owner)
		}
		sig, err := sign.SignNote(validator, n.Hash, &p.Challenge, p.Sender, key)
		if err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
		sigs[i] = sig
	}
	p.Signatures = sigs
	return nil
}

// CheckSignatures confirms that every input note's owner signed p and that
// the signed notes are the ones p's rows spend.
func CheckSignatures(p *Proof, validator common.Address) error {
	if p.Type != JoinSplit {
		return ErrNotJoinSplit
	}
	if len(p.InputNotes) != p.M || p.M > len(p.Data) {
		return fmt.Errorf("%w: %d input notes, m is %d, %d rows", ErrUnboundNote, len(p.InputNotes), p.M, len(p.Data))
	}
	for i, n := range p.InputNotes {
		if !p.Data[i].Holds(n) {
			return fmt.Errorf("input %d: %w", i, ErrUnboundNote)
		}
	}
	if len(p.Signatures) != len(p.InputNotes) {
		return fmt.Errorf("%w: have %d signatures for %d inputs", ErrKeyCount, len(p.Signatures), len(p.InputNotes))
	}
	for i, n := range p.InputNotes {
		signer, err := sign.RecoverSigner(validator, n.Hash, &p.Challenge, p.Sender, p.Signatures[i])
		if err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
		if signer != n.Owner {
			return fmt.Errorf("input %d: %w: signed by %s, owner is %s", i, ErrSignerMismatch, signer, n.Owner)
		}
	}
	return nil
}
