// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package auth authenticates callers of mutating operations through
// secp256k1 signed envelopes with per-account nonces.
package auth

import (
	"crypto/ecdsa"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/manaproject/mana/mana"
)

// DefaultDomain separates signatures of different deployments.
const DefaultDomain = "mana"

// Envelope wraps the JSON payload of a mutating call.
type Envelope struct {
	Nonce     uint64          `json:"nonce"`
	Payload   json.RawMessage `json:"payload"`
	Signature hexutil.Bytes   `json:"signature"`
}

// SigningHash returns keccak256(rlp([domain, method, nonce, payload])).
func SigningHash(domain, method string, nonce uint64, payload []byte) mana.Bytes32 {
	data, err := rlp.EncodeToBytes([]any{domain, method, nonce, payload})
	if err != nil {
		panic(err) // strings, uint64 and bytes always encode
	}
	return mana.Keccak256(data)
}

// Sign builds an envelope for method carrying payload.
func Sign(domain, method string, nonce uint64, payload any, key *ecdsa.PrivateKey) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal payload")
	}
	hash := SigningHash(domain, method, nonce, raw)
	sig, err := crypto.Sign(hash.Bytes(), key)
	if err != nil {
		return nil, errors.Wrap(err, "unable to sign envelope")
	}
	return &Envelope{Nonce: nonce, Payload: raw, Signature: sig}, nil
}

// DecodePayload unmarshals the payload into v.
func (e *Envelope) DecodePayload(v any) error {
	if len(e.Payload) == 0 {
		return errors.New("empty payload")
	}
	return json.Unmarshal(e.Payload, v)
}

// Signer recovers the address that signed the envelope for method.
func (e *Envelope) Signer(domain, method string) (mana.Address, error) {
	if len(e.Signature) != crypto.SignatureLength {
		return mana.Address{}, ErrInvalidSignature
	}
	hash := SigningHash(domain, method, e.Nonce, e.Payload)
	pub, err := crypto.SigToPub(hash.Bytes(), e.Signature)
	if err != nil {
		return mana.Address{}, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	return mana.Address(crypto.PubkeyToAddress(*pub)), nil
}

// Address returns the account address of a private key.
func Address(key *ecdsa.PrivateKey) mana.Address {
	return mana.Address(crypto.PubkeyToAddress(key.PublicKey))
}
