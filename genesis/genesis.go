// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis deploys the token and the settlement engine on an empty store.
package genesis

import (
	"math/big"
	"sort"

	"github.com/pkg/errors"

	"github.com/manaproject/mana/builtin/settlement"
	"github.com/manaproject/mana/builtin/token"
	"github.com/manaproject/mana/config"
	"github.com/manaproject/mana/log"
	"github.com/manaproject/mana/mana"
	"github.com/manaproject/mana/state"
)

var logger = log.WithContext("pkg", "genesis")

type allocation struct {
	addr   mana.Address
	amount *big.Int
}

// Builder helper to build the genesis deployment.
type Builder struct {
	owner  mana.Address
	oracle mana.Address
	allocs []allocation
	config settlement.Config
	clock  settlement.Clock
}

// Owner sets the owner of the token and the engine.
func (b *Builder) Owner(addr mana.Address) *Builder {
	b.owner = addr
	return b
}

// Oracle sets the initial oracle.
func (b *Builder) Oracle(addr mana.Address) *Builder {
	b.oracle = addr
	return b
}

// Alloc mints amount to addr.
func (b *Builder) Alloc(addr mana.Address, amount *big.Int) *Builder {
	b.allocs = append(b.allocs, allocation{addr, amount})
	return b
}

// Engine sets the engine configuration.
func (b *Builder) Engine(config settlement.Config) *Builder {
	b.config = config
	return b
}

// Clock sets the engine clock. Defaults to the system clock.
func (b *Builder) Clock(clock settlement.Clock) *Builder {
	b.clock = clock
	return b
}

// Deployment is the deployed pair.
type Deployment struct {
	Token  *token.Token
	Engine *settlement.Engine
}

// Build deploys on stater. A store that already holds a deployment is
// reopened as is.
func (b *Builder) Build(stater *state.Stater) (*Deployment, error) {
	tk := token.New(mana.TokenAddress, stater)
	engine := settlement.New(mana.EngineAddress, stater, tk, b.clock, b.config)
	d := &Deployment{Token: tk, Engine: engine}

	owner, err := tk.Owner()
	if err != nil {
		return nil, err
	}
	if !owner.IsZero() {
		logger.Info("existing deployment found", "owner", owner)
		return d, nil
	}
	if b.owner.IsZero() {
		return nil, errors.New("genesis: owner required")
	}

	if err := tk.Initialize(b.owner); err != nil {
		return nil, errors.Wrap(err, "initialize token")
	}
	for _, a := range b.allocs {
		if err := tk.Mint(b.owner, a.addr, a.amount); err != nil {
			return nil, errors.Wrapf(err, "mint to %v", a.addr)
		}
	}
	if err := engine.Initialize(b.owner, b.oracle); err != nil {
		return nil, errors.Wrap(err, "initialize engine")
	}
	supply, err := tk.TotalSupply()
	if err != nil {
		return nil, err
	}
	logger.Info("genesis deployed", "owner", b.owner, "oracle", b.oracle, "supply", mana.FormatUnits(supply))
	return d, nil
}

// FromConfig creates a builder from the config file.
func FromConfig(c *config.Config) (*Builder, error) {
	engineConfig, err := c.Engine.Settlement()
	if err != nil {
		return nil, err
	}
	amounts, err := c.AllocationAmounts()
	if err != nil {
		return nil, err
	}
	b := new(Builder).
		Owner(c.OwnerAddress()).
		Oracle(c.OracleAddress()).
		Engine(engineConfig)

	addrs := make([]mana.Address, 0, len(amounts))
	for addr := range amounts {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return string(addrs[i].Bytes()) < string(addrs[j].Bytes())
	})
	for _, addr := range addrs {
		b.Alloc(addr, amounts[addr])
	}
	return b, nil
}
