// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/manaproject/mana/mana"
)

// Address is an address stored in a single slot.
type Address struct {
	context *Context
	pos     mana.Bytes32
}

func NewAddress(context *Context, pos mana.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (mana.Address, error) {
	storage, err := a.context.state.GetStorage(a.context.address, a.pos)
	if err != nil {
		return mana.Address{}, err
	}
	return mana.BytesToAddress(storage.Bytes()), nil
}

func (a *Address) Set(addr mana.Address) {
	a.context.state.SetStorage(a.context.address, a.pos, mana.BytesToBytes32(addr.Bytes()))
}
