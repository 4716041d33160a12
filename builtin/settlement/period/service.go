// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package period

import (
	"encoding/binary"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/manaproject/mana/builtin/solidity"
	"github.com/manaproject/mana/mana"
)

var (
	slotPeriods = mana.BytesToBytes32([]byte("periods"))
	slotStakers = mana.BytesToBytes32([]byte("period-stakers"))
	slotCurrent = mana.BytesToBytes32([]byte("current-period"))
)

// ErrOverflow is returned when a period total would not fit in 256 bits.
var ErrOverflow = errors.New("period total overflows uint256")

type stakerKey struct {
	period uint64
	index  uint64
}

func (k stakerKey) Bytes() []byte {
	b := binary.BigEndian.AppendUint64(nil, k.period)
	return binary.BigEndian.AppendUint64(b, k.index)
}

// Service keeps the voting period records, the per period staker index and
// the current period pointer.
type Service struct {
	periods *solidity.Mapping[solidity.Uint64Key, *body]
	stakers *solidity.Mapping[stakerKey, mana.Address]
	current *solidity.Raw[uint64]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		periods: solidity.NewMapping[solidity.Uint64Key, *body](sctx, slotPeriods),
		stakers: solidity.NewMapping[stakerKey, mana.Address](sctx, slotStakers),
		current: solidity.NewRaw[uint64](sctx, slotCurrent),
	}
}

// Current returns the id of the period accepting stakes.
func (s *Service) Current() (uint64, error) {
	id, err := s.current.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get current period")
	}
	if id == 0 {
		return mana.FirstPeriodID, nil
	}
	return id, nil
}

// Get returns the period record. Unknown ids yield a zero record.
func (s *Service) Get(id uint64) (*Period, error) {
	b, err := s.periods.Get(solidity.Uint64Key(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get period")
	}
	return b.toPeriod(id), nil
}

func (s *Service) set(p *Period) error {
	if err := s.periods.Set(solidity.Uint64Key(p.ID), newBody(p)); err != nil {
		return errors.Wrap(err, "failed to set period")
	}
	return nil
}

// Open returns the period, creating its record stamped with now if it was never opened.
func (s *Service) Open(id uint64, now uint64) (*Period, error) {
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !p.Exists() {
		p.Opened = true
		p.StartTime = now
		if err := s.set(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AddStake adds amount to the period total. A new staker is appended to the staker index.
func (s *Service) AddStake(p *Period, staker mana.Address, amount *big.Int, newStaker bool) error {
	total, err := checkedAdd(p.TotalStaked, amount)
	if err != nil {
		return err
	}
	if newStaker {
		if err := s.stakers.Set(stakerKey{p.ID, p.Stakers}, staker); err != nil {
			return errors.Wrap(err, "failed to index staker")
		}
		p.Stakers++
	}
	p.TotalStaked = total
	return s.set(p)
}

// SetPrice records the realized price. Setting the price of the current
// period moves the current pointer to the next period.
func (s *Service) SetPrice(p *Period, price int64, now uint64) error {
	p.PriceSet = true
	p.ActualPrice = price
	p.PriceSetTime = now
	if !p.Exists() {
		p.Opened = true
		p.StartTime = now
	}
	if err := s.set(p); err != nil {
		return err
	}

	current, err := s.Current()
	if err != nil {
		return err
	}
	if p.ID == current {
		if err := s.current.Upsert(current + 1); err != nil {
			return errors.Wrap(err, "failed to advance current period")
		}
	}
	return nil
}

// AddPaid records a payout from the period pool.
func (s *Service) AddPaid(p *Period, amount *big.Int) error {
	paid, err := checkedAdd(p.TotalPaid, amount)
	if err != nil {
		return err
	}
	if paid.Cmp(p.TotalStaked) > 0 {
		return errors.Errorf("period %d payouts exceed total stake", p.ID)
	}
	p.TotalPaid = paid
	return s.set(p)
}

// Stakers lists up to limit stakers of the period starting at offset.
func (s *Service) Stakers(p *Period, offset, limit uint64) ([]mana.Address, error) {
	if offset >= p.Stakers {
		return []mana.Address{}, nil
	}
	end := p.Stakers
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	list := make([]mana.Address, 0, end-offset)
	for i := offset; i < end; i++ {
		addr, err := s.stakers.Get(stakerKey{p.ID, i})
		if err != nil {
			return nil, errors.Wrap(err, "failed to get staker")
		}
		list = append(list, addr)
	}
	return list, nil
}

func checkedAdd(a, b *big.Int) (*big.Int, error) {
	x, overflow := uint256.FromBig(a)
	if overflow {
		return nil, ErrOverflow
	}
	y, overflow := uint256.FromBig(b)
	if overflow {
		return nil, ErrOverflow
	}
	sum, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, ErrOverflow
	}
	return sum.ToBig(), nil
}
