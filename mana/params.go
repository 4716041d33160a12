// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mana

// well-known contract addresses
var (
	EngineAddress = BytesToAddress([]byte("Mana"))
	TokenAddress  = BytesToAddress([]byte("MNAT"))
)

const (
	// FirstPeriodID is the id of the first voting period.
	FirstPeriodID uint64 = 1

	// TokenSymbol is the symbol of the stake token.
	TokenSymbol = "MNAT"
)

// DefaultHighStakeThreshold is the stake amount at or above which a
// HighStakeWarning event is emitted.
var DefaultHighStakeThreshold = Units(1000)
