// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements the MNAT reference token ledger, an ERC20 style
// balance and allowance book kept in contract storage.
package token

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/manaproject/mana/builtin/reverts"
	"github.com/manaproject/mana/builtin/solidity"
	"github.com/manaproject/mana/log"
	"github.com/manaproject/mana/mana"
	"github.com/manaproject/mana/state"
)

var logger = log.WithContext("pkg", "token")

var (
	ErrInsufficientAllowance = reverts.New(reverts.LedgerFailure, "ERC20: insufficient allowance")
	ErrInsufficientBalance   = reverts.New(reverts.LedgerFailure, "ERC20: transfer amount exceeds balance")
	ErrInvalidReceiver       = reverts.New(reverts.LedgerFailure, "ERC20: invalid receiver")
	ErrInvalidAmount         = reverts.New(reverts.LedgerFailure, "ERC20: invalid amount")
	ErrUnauthorized          = reverts.New(reverts.Unauthorized, "Only owner can call this function.")
	ErrAlreadyInitialized    = reverts.New(reverts.InvalidState, "Token already initialized.")
)

var (
	slotOwner       = mana.BytesToBytes32([]byte("owner"))
	slotTotalSupply = mana.BytesToBytes32([]byte("total-supply"))
	slotBalances    = mana.BytesToBytes32([]byte("balances"))
	slotAllowances  = mana.BytesToBytes32([]byte("allowances"))
)

type allowanceKey struct {
	owner   mana.Address
	spender mana.Address
}

func (k allowanceKey) Bytes() []byte {
	return append(k.owner.Bytes(), k.spender.Bytes()...)
}

// Token is the MNAT ledger. Every mutating call commits on its own.
type Token struct {
	addr   mana.Address
	stater *state.Stater
	mu     sync.Mutex
}

func New(addr mana.Address, stater *state.Stater) *Token {
	return &Token{addr: addr, stater: stater}
}

// Address returns the contract address of the token.
func (t *Token) Address() mana.Address {
	return t.addr
}

type book struct {
	owner       *solidity.Address
	totalSupply *solidity.Uint256
	balances    *solidity.Mapping[mana.Address, *big.Int]
	allowances  *solidity.Mapping[allowanceKey, *big.Int]
}

func (t *Token) book(st *state.State) *book {
	ctx := solidity.NewContext(t.addr, st)
	return &book{
		owner:       solidity.NewAddress(ctx, slotOwner),
		totalSupply: solidity.NewUint256(ctx, slotTotalSupply),
		balances:    solidity.NewMapping[mana.Address, *big.Int](ctx, slotBalances),
		allowances:  solidity.NewMapping[allowanceKey, *big.Int](ctx, slotAllowances),
	}
}

// write runs fn on a fresh state and commits it if fn succeeds.
func (t *Token) write(fn func(b *book) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.stater.NewState()
	if err := fn(t.book(st)); err != nil {
		return err
	}
	if err := st.Stage().Commit(); err != nil {
		return errors.Wrap(err, "commit token state")
	}
	return nil
}

func (t *Token) read() *book {
	return t.book(t.stater.NewState())
}

// Initialize sets the minting owner. It can only be done once.
func (t *Token) Initialize(owner mana.Address) error {
	return t.write(func(b *book) error {
		current, err := b.owner.Get()
		if err != nil {
			return err
		}
		if !current.IsZero() {
			return ErrAlreadyInitialized
		}
		b.owner.Set(owner)
		logger.Info("token initialized", "owner", owner)
		return nil
	})
}

// Owner returns the minting owner.
func (t *Token) Owner() (mana.Address, error) {
	return t.read().owner.Get()
}

// Mint creates amount new tokens for to.
func (t *Token) Mint(caller, to mana.Address, amount *big.Int) error {
	return t.write(func(b *book) error {
		owner, err := b.owner.Get()
		if err != nil {
			return err
		}
		if owner.IsZero() || caller != owner {
			return ErrUnauthorized
		}
		if to.IsZero() {
			return ErrInvalidReceiver
		}
		if amount == nil || amount.Sign() < 0 {
			return ErrInvalidAmount
		}
		if err := b.add(to, amount); err != nil {
			return err
		}
		if err := b.totalSupply.Add(amount); err != nil {
			return err
		}
		logger.Debug("minted", "to", to, "amount", amount)
		return nil
	})
}

// TotalSupply returns the amount of minted tokens.
func (t *Token) TotalSupply() (*big.Int, error) {
	return t.read().totalSupply.Get()
}

// BalanceOf returns the balance of addr.
func (t *Token) BalanceOf(addr mana.Address) (*big.Int, error) {
	return t.read().balances.Get(addr)
}

// Allowance returns how much spender may still move out of owner's balance.
func (t *Token) Allowance(owner, spender mana.Address) (*big.Int, error) {
	return t.read().allowances.Get(allowanceKey{owner, spender})
}

// Approve sets the allowance of spender over owner's tokens.
func (t *Token) Approve(owner, spender mana.Address, amount *big.Int) error {
	return t.write(func(b *book) error {
		if spender.IsZero() {
			return ErrInvalidReceiver
		}
		if amount == nil || amount.Sign() < 0 {
			return ErrInvalidAmount
		}
		logger.Debug("approve", "owner", owner, "spender", spender, "amount", amount)
		return b.allowances.Set(allowanceKey{owner, spender}, amount)
	})
}

// Transfer moves amount from from to to.
func (t *Token) Transfer(from, to mana.Address, amount *big.Int) error {
	return t.write(func(b *book) error {
		return b.transfer(from, to, amount)
	})
}

// TransferFrom moves amount from from to to, spending spender's allowance.
func (t *Token) TransferFrom(spender, from, to mana.Address, amount *big.Int) error {
	return t.write(func(b *book) error {
		key := allowanceKey{from, spender}
		allowance, err := b.allowances.Get(key)
		if err != nil {
			return err
		}
		if allowance.Cmp(amount) < 0 {
			return ErrInsufficientAllowance
		}
		if err := b.transfer(from, to, amount); err != nil {
			return err
		}
		return b.allowances.Set(key, allowance.Sub(allowance, amount))
	})
}

func (b *book) transfer(from, to mana.Address, amount *big.Int) error {
	if to.IsZero() {
		return ErrInvalidReceiver
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	bal, err := b.balances.Get(from)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := b.balances.Set(from, bal.Sub(bal, amount)); err != nil {
		return err
	}
	return b.add(to, amount)
}

func (b *book) add(addr mana.Address, amount *big.Int) error {
	bal, err := b.balances.Get(addr)
	if err != nil {
		return err
	}
	return b.balances.Set(addr, bal.Add(bal, amount))
}
