// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"math/big"
	mathrand "math/rand/v2"

	"github.com/manaproject/mana/mana"
)

func RandIntN(n int) int {
	return mathrand.N(n) //#nosec G404
}

// RandUnits returns between 1 and max whole tokens.
func RandUnits(max int) *big.Int {
	return mana.Units(int64(1 + RandIntN(max)))
}

// RandPrice returns a price in [lo, hi].
func RandPrice(lo, hi int64) int64 {
	return lo + mathrand.Int64N(hi-lo+1) //#nosec G404
}
