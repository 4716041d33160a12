// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/manaproject/mana/mana"
)

func RandomHash() (b mana.Bytes32) {
	rand.Read(b[:])
	return
}

func RandAddress() (addr mana.Address) {
	rand.Read(addr[:])
	return
}
