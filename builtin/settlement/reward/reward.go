// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reward computes the payout of a winning vote.
package reward

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var (
	ErrOverflow  = errors.New("reward computation overflows uint256")
	ErrNoWinners = errors.New("no winning stake")
	ErrBadFactor = errors.New("multiplier denominator must be positive")
	ErrBadInput  = errors.New("reward input out of range")
)

// Strategy names.
const (
	NameProportional = "proportional"
	NameMultiplier   = "multiplier"
	NameEqual        = "equal"
)

// Input describes the claimant and the period pool.
type Input struct {
	Stake        *big.Int // claimant's stake
	TotalStaked  *big.Int // period pool
	WinnersStake *big.Int // summed stake of all matching votes
	Winners      uint64   // count of matching votes
}

// Strategy decides the reward of one winning vote. Callers clamp the result
// to the unpaid part of the pool.
type Strategy interface {
	Name() string
	Reward(in *Input) (*big.Int, error)
}

// New creates the strategy by name. num/den only apply to the multiplier strategy.
func New(name string, num, den uint64) (Strategy, error) {
	switch name {
	case "", NameProportional:
		return Proportional{}, nil
	case NameEqual:
		return Equal{}, nil
	case NameMultiplier:
		if den == 0 {
			return nil, ErrBadFactor
		}
		return Multiplier{Numerator: num, Denominator: den}, nil
	}
	return nil, fmt.Errorf("unknown reward strategy %q", name)
}

// Proportional splits the whole pool among winners by stake weight.
type Proportional struct{}

func (Proportional) Name() string { return NameProportional }

func (Proportional) Reward(in *Input) (*big.Int, error) {
	stake, total, winners, err := toUint256(in.Stake, in.TotalStaked, in.WinnersStake)
	if err != nil {
		return nil, err
	}
	if winners.IsZero() {
		return nil, ErrNoWinners
	}
	// stake * total / winners, in 512 bits so the product can't overflow
	r, overflow := new(uint256.Int).MulDivOverflow(stake, total, winners)
	if overflow {
		return nil, ErrOverflow
	}
	return r.ToBig(), nil
}

// Multiplier pays a fixed multiple of the stake.
type Multiplier struct {
	Numerator   uint64
	Denominator uint64
}

func (m Multiplier) Name() string { return NameMultiplier }

func (m Multiplier) Reward(in *Input) (*big.Int, error) {
	if m.Denominator == 0 {
		return nil, ErrBadFactor
	}
	stake, err := toUint256One(in.Stake)
	if err != nil {
		return nil, err
	}
	r, overflow := new(uint256.Int).MulDivOverflow(stake, uint256.NewInt(m.Numerator), uint256.NewInt(m.Denominator))
	if overflow {
		return nil, ErrOverflow
	}
	return r.ToBig(), nil
}

// Equal splits the pool evenly among winners regardless of stake.
type Equal struct{}

func (Equal) Name() string { return NameEqual }

func (Equal) Reward(in *Input) (*big.Int, error) {
	if in.Winners == 0 {
		return nil, ErrNoWinners
	}
	total, err := toUint256One(in.TotalStaked)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Div(total, uint256.NewInt(in.Winners)).ToBig(), nil
}

func toUint256One(v *big.Int) (*uint256.Int, error) {
	if v == nil || v.Sign() < 0 {
		return nil, ErrBadInput
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return nil, ErrOverflow
	}
	return u, nil
}

func toUint256(a, b, c *big.Int) (x, y, z *uint256.Int, err error) {
	if x, err = toUint256One(a); err != nil {
		return
	}
	if y, err = toUint256One(b); err != nil {
		return
	}
	z, err = toUint256One(c)
	return
}
