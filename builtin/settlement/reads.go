// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package settlement

import (
	"math/big"

	"github.com/manaproject/mana/builtin/settlement/access"
	"github.com/manaproject/mana/builtin/settlement/period"
	"github.com/manaproject/mana/builtin/settlement/vote"
	"github.com/manaproject/mana/mana"
)

//
// Getters - no state change
//

// Access returns the owner and oracle.
func (e *Engine) Access() (*access.Record, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.newContract().access.Get()
}

// CurrentPeriod returns the id of the period accepting stakes.
func (e *Engine) CurrentPeriod() (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.newContract().periods.Current()
}

// VotingPeriod returns the period record. Unknown ids yield a zero record.
func (e *Engine) VotingPeriod(periodID uint64) (*period.Period, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.newContract().periods.Get(periodID)
}

// GetVote returns the vote of staker in a period. Missing votes are empty.
func (e *Engine) GetVote(periodID uint64, staker mana.Address) (*vote.Vote, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.newContract().votes.Get(periodID, staker)
}

// Stakers lists the stakers of a period in staking order.
func (e *Engine) Stakers(periodID uint64, offset, limit uint64) ([]mana.Address, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c := e.newContract()
	p, err := c.periods.Get(periodID)
	if err != nil {
		return nil, err
	}
	return c.periods.Stakers(p, offset, limit)
}

// IsEligible returns whether staker can claim a reward for the period now.
func (e *Engine) IsEligible(periodID uint64, staker mana.Address) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c := e.newContract()
	p, v, err := c.load(periodID, staker)
	if err != nil {
		return false, err
	}
	return eligible(p, v), nil
}

// PendingReward previews what ClaimReward would pay staker now. It is zero if not eligible.
func (e *Engine) PendingReward(periodID uint64, staker mana.Address) (*big.Int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c := e.newContract()
	p, v, err := c.load(periodID, staker)
	if err != nil {
		return nil, err
	}
	if !eligible(p, v) {
		return new(big.Int), nil
	}
	return e.computeReward(c, p, v)
}

// VoteStatus returns the vote of staker with its eligibility and pending
// reward, all read from the same state.
func (e *Engine) VoteStatus(periodID uint64, staker mana.Address) (*vote.Vote, bool, *big.Int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c := e.newContract()
	p, v, err := c.load(periodID, staker)
	if err != nil {
		return nil, false, nil, err
	}
	if !eligible(p, v) {
		return v, false, new(big.Int), nil
	}
	pending, err := e.computeReward(c, p, v)
	if err != nil {
		return nil, false, nil, err
	}
	return v, true, pending, nil
}

// Seq returns the number of committed receipts.
func (e *Engine) Seq() (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.newContract().seq.Get()
}

func (c *contract) load(periodID uint64, staker mana.Address) (*period.Period, *vote.Vote, error) {
	p, err := c.periods.Get(periodID)
	if err != nil {
		return nil, nil, err
	}
	v, err := c.votes.Get(periodID, staker)
	if err != nil {
		return nil, nil, err
	}
	return p, v, nil
}
