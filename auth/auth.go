// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auth

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/manaproject/mana/builtin/reverts"
	"github.com/manaproject/mana/cache"
	"github.com/manaproject/mana/kv"
	"github.com/manaproject/mana/log"
	"github.com/manaproject/mana/mana"
)

var logger = log.WithContext("pkg", "auth")

const nonceBucket = kv.Bucket("n")

var ErrInvalidSignature = errors.New("invalid signature")

// NonceError reports an envelope nonce that is not the account's next nonce.
type NonceError struct {
	Expected uint64
	Got      uint64
}

func (e *NonceError) Error() string {
	return fmt.Sprintf("invalid nonce: expected %d, got %d", e.Expected, e.Got)
}

// Authenticator verifies envelopes and tracks account nonces.
type Authenticator struct {
	domain  string
	nonces  kv.Store
	signers *cache.LRU
	mu      sync.Mutex
}

// New creates an authenticator persisting nonces in store.
func New(domain string, store kv.Store) *Authenticator {
	signers, _ := cache.NewLRU(1024)
	return &Authenticator{
		domain:  domain,
		nonces:  nonceBucket.NewStore(store),
		signers: signers,
	}
}

// Domain returns the signing domain.
func (a *Authenticator) Domain() string {
	return a.domain
}

type signerKey struct {
	hash mana.Bytes32
	sig  string
}

// Signer recovers the signer of env for method. Recoveries are cached.
func (a *Authenticator) Signer(method string, env *Envelope) (mana.Address, error) {
	key := signerKey{SigningHash(a.domain, method, env.Nonce, env.Payload), string(env.Signature)}
	v, err := a.signers.GetOrLoad(key, func(any) (any, error) {
		return env.Signer(a.domain, method)
	})
	if err != nil {
		return mana.Address{}, err
	}
	return v.(mana.Address), nil
}

// Nonce returns the next nonce of addr.
func (a *Authenticator) Nonce(addr mana.Address) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.nonce(addr)
}

func (a *Authenticator) nonce(addr mana.Address) (uint64, error) {
	data, err := a.nonces.Get(addr.Bytes())
	if err != nil {
		if a.nonces.IsNotFound(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "get nonce")
	}
	return binary.BigEndian.Uint64(data), nil
}

// Do authenticates env for method and runs fn with the signer.
// The nonce is consumed when fn succeeds or reverts, so a rejected envelope
// cannot be replayed later. Other failures leave it. Calls are serialized.
func (a *Authenticator) Do(method string, env *Envelope, fn func(caller mana.Address) error) error {
	caller, err := a.Signer(method, env)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	next, err := a.nonce(caller)
	if err != nil {
		return err
	}
	if env.Nonce != next {
		logger.Debug("nonce rejected", "caller", caller, "expected", next, "got", env.Nonce)
		return &NonceError{Expected: next, Got: env.Nonce}
	}
	ferr := fn(caller)
	if ferr != nil && !reverts.IsRevertErr(ferr) {
		return ferr
	}
	if err := a.nonces.Put(caller.Bytes(), binary.BigEndian.AppendUint64(nil, next+1)); err != nil {
		logger.Error("failed to consume nonce", "caller", caller, "nonce", next, "err", err)
		if ferr != nil {
			return ferr
		}
		return errors.Wrap(err, "put nonce")
	}
	return ferr
}
