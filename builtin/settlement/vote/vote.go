// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vote

import (
	"math/big"
)

// Vote is a staker's prediction within a period.
type Vote struct {
	PredictedPrice int64
	StakedAmount   *big.Int
	ClaimedReward  bool
	Reward         *big.Int // paid amount, zero until claimed
}

// IsEmpty returns whether no stake is recorded.
func (v *Vote) IsEmpty() bool {
	return v.StakedAmount == nil || v.StakedAmount.Sign() == 0
}

// Tally sums the stakes placed on one predicted price.
type Tally struct {
	Stake *big.Int
	Count uint64
}

type body struct {
	PredictedPrice uint64 // two's complement of the int64 price
	StakedAmount   *big.Int
	ClaimedReward  bool
	Reward         *big.Int
}

func (b *body) toVote() *Vote {
	v := &Vote{
		PredictedPrice: int64(b.PredictedPrice),
		StakedAmount:   b.StakedAmount,
		ClaimedReward:  b.ClaimedReward,
		Reward:         b.Reward,
	}
	if v.StakedAmount == nil {
		v.StakedAmount = new(big.Int)
	}
	if v.Reward == nil {
		v.Reward = new(big.Int)
	}
	return v
}

func newBody(v *Vote) *body {
	return &body{
		PredictedPrice: uint64(v.PredictedPrice),
		StakedAmount:   v.StakedAmount,
		ClaimedReward:  v.ClaimedReward,
		Reward:         v.Reward,
	}
}

type tallyBody struct {
	Stake *big.Int
	Count uint64
}
