// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package period

import (
	"math/big"
)

// Period is a voting period.
type Period struct {
	ID           uint64
	Opened       bool
	TotalStaked  *big.Int // gross stake, never decreases
	PriceSet     bool
	ActualPrice  int64
	PriceSetTime uint64
	StartTime    uint64
	TotalPaid    *big.Int
	Stakers      uint64
}

// Exists returns whether the period has ever been opened.
func (p *Period) Exists() bool {
	return p.Opened
}

// Remaining returns the unpaid part of the pool.
func (p *Period) Remaining() *big.Int {
	return new(big.Int).Sub(p.TotalStaked, p.TotalPaid)
}

// body is the stored form of a period. rlp has no signed integers, so the
// price is kept as its two's complement bits.
type body struct {
	Opened       bool
	TotalStaked  *big.Int
	PriceSet     bool
	ActualPrice  uint64
	PriceSetTime uint64
	StartTime    uint64
	TotalPaid    *big.Int
	Stakers      uint64
}

func (b *body) toPeriod(id uint64) *Period {
	p := &Period{
		ID:           id,
		Opened:       b.Opened,
		TotalStaked:  b.TotalStaked,
		PriceSet:     b.PriceSet,
		ActualPrice:  int64(b.ActualPrice),
		PriceSetTime: b.PriceSetTime,
		StartTime:    b.StartTime,
		TotalPaid:    b.TotalPaid,
		Stakers:      b.Stakers,
	}
	if p.TotalStaked == nil {
		p.TotalStaked = new(big.Int)
	}
	if p.TotalPaid == nil {
		p.TotalPaid = new(big.Int)
	}
	return p
}

func newBody(p *Period) *body {
	return &body{
		Opened:       p.Opened,
		TotalStaked:  p.TotalStaked,
		PriceSet:     p.PriceSet,
		ActualPrice:  uint64(p.ActualPrice),
		PriceSetTime: p.PriceSetTime,
		StartTime:    p.StartTime,
		TotalPaid:    p.TotalPaid,
		Stakers:      p.Stakers,
	}
}
