// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mana

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Decimals is the number of decimal places of the stake token.
const Decimals = 18

var unitScale = decimal.New(1, Decimals)

// ParseUnits converts a decimal string in whole tokens ("100", "0.5") into
// its integer amount in the smallest token unit.
func ParseUnits(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Wrap(err, "parse units")
	}
	if d.IsNegative() {
		return nil, errors.New("parse units: negative amount")
	}
	scaled := d.Mul(unitScale)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, errors.Errorf("parse units: more than %d decimals", Decimals)
	}
	return scaled.BigInt(), nil
}

// MustParseUnits is like ParseUnits but panics on error.
func MustParseUnits(s string) *big.Int {
	v, err := ParseUnits(s)
	if err != nil {
		panic(err)
	}
	return v
}

// FormatUnits renders an amount in the smallest token unit as whole tokens.
func FormatUnits(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -Decimals).String()
}

// Units returns n whole tokens in the smallest token unit.
func Units(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), unitScale.BigInt())
}
