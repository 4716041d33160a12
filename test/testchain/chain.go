// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testchain builds an in-memory devnet deployment for tests.
package testchain

import (
	"fmt"
	"math/big"

	"github.com/manaproject/mana/auth"
	"github.com/manaproject/mana/builtin/settlement"
	"github.com/manaproject/mana/builtin/token"
	"github.com/manaproject/mana/eventdb"
	"github.com/manaproject/mana/genesis"
	"github.com/manaproject/mana/lvldb"
	"github.com/manaproject/mana/mana"
	"github.com/manaproject/mana/state"
)

// StartTime is the initial time of the chain clock.
const StartTime = 1_700_000_000

// Chain bundles the stores and builtins of a devnet.
type Chain struct {
	db         *lvldb.LevelDB
	stater     *state.Stater
	clock      *settlement.ManualClock
	deployment *genesis.Deployment
	auth       *auth.Authenticator
	eventDB    *eventdb.EventDB
	accounts   []genesis.DevAccount
}

// NewDefault creates a devnet chain with the default engine config.
func NewDefault() (*Chain, error) {
	return NewWithConfig(settlement.DefaultConfig())
}

// NewWithConfig creates a devnet chain. Every dev account is funded and the
// event db is subscribed to the engine.
func NewWithConfig(config settlement.Config) (*Chain, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	eventDB, err := eventdb.NewMem()
	if err != nil {
		db.Close()
		return nil, err
	}

	stater := state.NewStater(db)
	clock := settlement.NewManualClock(StartTime)
	d, err := genesis.NewDevnet(config).Clock(clock).Build(stater)
	if err != nil {
		db.Close()
		eventDB.Close()
		return nil, fmt.Errorf("unable to build devnet: %w", err)
	}
	d.Engine.AddSink(eventDB)

	return &Chain{
		db:         db,
		stater:     stater,
		clock:      clock,
		deployment: d,
		auth:       auth.New(auth.DefaultDomain, db),
		eventDB:    eventDB,
		accounts:   genesis.DevAccounts(),
	}, nil
}

func (c *Chain) Stater() *state.Stater           { return c.stater }
func (c *Chain) Clock() *settlement.ManualClock  { return c.clock }
func (c *Chain) Deployment() *genesis.Deployment { return c.deployment }
func (c *Chain) Token() *token.Token             { return c.deployment.Token }
func (c *Chain) Engine() *settlement.Engine      { return c.deployment.Engine }
func (c *Chain) Auth() *auth.Authenticator       { return c.auth }
func (c *Chain) EventDB() *eventdb.EventDB       { return c.eventDB }
func (c *Chain) Accounts() []genesis.DevAccount  { return c.accounts }

// Owner is the deployer of both builtins.
func (c *Chain) Owner() genesis.DevAccount { return c.accounts[0] }

// Oracle is the initial price oracle.
func (c *Chain) Oracle() genesis.DevAccount { return c.accounts[1] }

// Staker returns the i-th account that is neither owner nor oracle.
func (c *Chain) Staker(i int) genesis.DevAccount { return c.accounts[2+i] }

// Advance moves the clock forward.
func (c *Chain) Advance(seconds uint64) { c.clock.Set(c.clock.Now() + seconds) }

func (c *Chain) BalanceOf(addr mana.Address) (*big.Int, error) {
	return c.Token().BalanceOf(addr)
}

// Stake approves and stakes amount for acc.
func (c *Chain) Stake(acc genesis.DevAccount, amount *big.Int, price int64) (*settlement.Receipt, error) {
	if err := c.Token().Approve(acc.Address, c.Engine().Address(), amount); err != nil {
		return nil, err
	}
	return c.Engine().StakeTokens(acc.Address, amount, price)
}

// SettleCurrent sets the price of the current period as the oracle and
// returns the settled period id.
func (c *Chain) SettleCurrent(price int64) (uint64, error) {
	id, err := c.Engine().CurrentPeriod()
	if err != nil {
		return 0, err
	}
	if _, err := c.Engine().SetActualPrice(c.Oracle().Address, id, price); err != nil {
		return 0, err
	}
	return id, nil
}

// Close releases the stores.
func (c *Chain) Close() error {
	if err := c.eventDB.Close(); err != nil {
		return err
	}
	return c.db.Close()
}
