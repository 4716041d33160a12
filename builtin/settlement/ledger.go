// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package settlement

import (
	"math/big"
	"sync/atomic"
	"time"

	"github.com/manaproject/mana/mana"
)

// Ledger moves the staked token. The reference implementation is token.Token.
type Ledger interface {
	// TransferFrom moves amount from from to to, spending spender's allowance.
	TransferFrom(spender, from, to mana.Address, amount *big.Int) error
	// Transfer moves amount held by from to to.
	Transfer(from, to mana.Address, amount *big.Int) error
	BalanceOf(addr mana.Address) (*big.Int, error)
}

// Approver is implemented by ledgers whose allowances the engine can restore
// after a failed stake.
type Approver interface {
	Allowance(owner, spender mana.Address) (*big.Int, error)
	Approve(owner, spender mana.Address, amount *big.Int) error
}

// Clock supplies the unix time in seconds.
type Clock interface {
	Now() uint64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}

// ManualClock only moves when told to.
type ManualClock struct {
	now atomic.Uint64
}

func NewManualClock(start uint64) *ManualClock {
	c := &ManualClock{}
	c.now.Store(start)
	return c
}

func (c *ManualClock) Now() uint64 {
	return c.now.Load()
}

// Set sets the clock to t.
func (c *ManualClock) Set(t uint64) {
	c.now.Store(t)
}

// Advance moves the clock forward by d, truncated to seconds.
func (c *ManualClock) Advance(d time.Duration) uint64 {
	return c.now.Add(uint64(d / time.Second))
}
