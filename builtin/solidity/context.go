// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/manaproject/mana/mana"
	"github.com/manaproject/mana/state"
)

// Context binds a contract address to the state its storage lives in.
type Context struct {
	address mana.Address
	state   *state.State
}

func NewContext(address mana.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() mana.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}
