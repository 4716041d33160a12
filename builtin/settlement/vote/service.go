// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vote

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/manaproject/mana/builtin/solidity"
	"github.com/manaproject/mana/mana"
)

var (
	slotVotes   = mana.BytesToBytes32([]byte("votes"))
	slotTallies = mana.BytesToBytes32([]byte("tallies"))
)

type voteKey struct {
	period uint64
	staker mana.Address
}

func (k voteKey) Bytes() []byte {
	return append(binary.BigEndian.AppendUint64(nil, k.period), k.staker.Bytes()...)
}

type tallyKey struct {
	period uint64
	price  int64
}

func (k tallyKey) Bytes() []byte {
	b := binary.BigEndian.AppendUint64(nil, k.period)
	return binary.BigEndian.AppendUint64(b, uint64(k.price))
}

// Service keeps the votes of every period and the stake tally per predicted price.
type Service struct {
	votes   *solidity.Mapping[voteKey, *body]
	tallies *solidity.Mapping[tallyKey, *tallyBody]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		votes:   solidity.NewMapping[voteKey, *body](sctx, slotVotes),
		tallies: solidity.NewMapping[tallyKey, *tallyBody](sctx, slotTallies),
	}
}

// Get returns the vote of staker in period. A missing vote is an empty one.
func (s *Service) Get(period uint64, staker mana.Address) (*Vote, error) {
	b, err := s.votes.Get(voteKey{period, staker})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get vote")
	}
	return b.toVote(), nil
}

func (s *Service) set(period uint64, staker mana.Address, v *Vote) error {
	if err := s.votes.Set(voteKey{period, staker}, newBody(v)); err != nil {
		return errors.Wrap(err, "failed to set vote")
	}
	return nil
}

// Add records amount staked on price. An existing vote is topped up and
// keeps its prediction; callers reject a price change beforehand.
// It returns whether the vote is new.
func (s *Service) Add(period uint64, staker mana.Address, price int64, amount *big.Int) (bool, error) {
	v, err := s.Get(period, staker)
	if err != nil {
		return false, err
	}
	created := v.IsEmpty()
	if created {
		v.PredictedPrice = price
	} else if v.PredictedPrice != price {
		return false, errors.Errorf("vote of %v in period %d predicts %d", staker, period, v.PredictedPrice)
	}
	v.StakedAmount = new(big.Int).Add(v.StakedAmount, amount)
	if err := s.set(period, staker, v); err != nil {
		return false, err
	}

	t, err := s.Tally(period, price)
	if err != nil {
		return false, err
	}
	t.Stake.Add(t.Stake, amount)
	if created {
		t.Count++
	}
	if err := s.tallies.Set(tallyKey{period, price}, &tallyBody{t.Stake, t.Count}); err != nil {
		return false, errors.Wrap(err, "failed to set tally")
	}
	return created, nil
}

// MarkClaimed flips the vote to claimed and records the paid reward.
func (s *Service) MarkClaimed(period uint64, staker mana.Address, reward *big.Int) error {
	v, err := s.Get(period, staker)
	if err != nil {
		return err
	}
	if v.ClaimedReward {
		return errors.Errorf("vote of %v in period %d already claimed", staker, period)
	}
	v.ClaimedReward = true
	v.Reward = new(big.Int).Set(reward)
	return s.set(period, staker, v)
}

// Tally returns the stake sum and staker count on price in period.
func (s *Service) Tally(period uint64, price int64) (*Tally, error) {
	b, err := s.tallies.Get(tallyKey{period, price})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get tally")
	}
	t := &Tally{Stake: b.Stake, Count: b.Count}
	if t.Stake == nil {
		t.Stake = new(big.Int)
	}
	return t, nil
}
