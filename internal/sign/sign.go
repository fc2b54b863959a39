// Package sign produces and checks the owner signatures that authorize
// spending a note inside a join-split proof.
//
// Signatures are over an EIP-712 style digest binding the note hash to the
// proof challenge and the sender, under a domain naming the validator that
// will check them.
package sign

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

const (
	DomainName    = "NOTECRYPTO"
	DomainVersion = "1"
)

var (
	domainTypeHash = crypto.Keccak256([]byte("EIP712Domain(string name,string version,address verifyingContract)"))
	noteTypeHash   = crypto.Keccak256([]byte("NoteSignature(bytes32 noteHash,uint256 challenge,address sender)"))

	ErrSignatureLength = errors.New("signature must be 65 bytes")
)

// Digest is the hash an owner signs to spend noteHash in the proof with the
// given challenge.
func Digest(validator common.Address, noteHash common.Hash, challenge *uint256.Int, sender common.Address) common.Hash {
	domain := crypto.Keccak256(
		domainTypeHash,
		crypto.Keccak256([]byte(DomainName)),
		crypto.Keccak256([]byte(DomainVersion)),
		common.LeftPadBytes(validator.Bytes(), 32),
	)
	c := challenge.Bytes32()
	message := crypto.Keccak256(
		noteTypeHash,
		noteHash.Bytes(),
		c[:],
		common.LeftPadBytes(sender.Bytes(), 32),
	)
	return common.BytesToHash(crypto.Keccak256([]byte{0x19, 0x01}, domain, message))
}

// SignNote returns a 65-byte [R || S || V] signature with V in {27, 28}.
func SignNote(validator common.Address, noteHash common.Hash, challenge *uint256.Int, sender common.Address, key *ecdsa.PrivateKey) ([]byte, error) {
	digest := Digest(validator, noteHash, challenge, sender)
	sig, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return nil, fmt.Errorf("signing note %s: %w", noteHash, err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// RecoverSigner returns the address that produced sig over the same digest
// SignNote signs.
func RecoverSigner(validator common.Address, noteHash common.Hash, challenge *uint256.Int, sender common.Address, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, ErrSignatureLength
	}
	raw := make([]byte, len(sig))
	copy(raw, sig)
	if raw[crypto.RecoveryIDOffset] >= 27 {
		raw[crypto.RecoveryIDOffset] -= 27
	}
	digest := Digest(validator, noteHash, challenge, sender)
	pub, err := crypto.SigToPub(digest.Bytes(), raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("recovering signer of note %s: %w", noteHash, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
