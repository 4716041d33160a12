// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package access keeps the owner and oracle of the settlement engine.
package access

import (
	"github.com/manaproject/mana/builtin/solidity"
	"github.com/manaproject/mana/mana"
)

var (
	slotOwner  = mana.BytesToBytes32([]byte("owner"))
	slotOracle = mana.BytesToBytes32([]byte("oracle"))
)

// Record is the access control record.
type Record struct {
	Owner  mana.Address
	Oracle mana.Address
}

// IsOwner returns whether addr is the owner. The zero address never is.
func (r *Record) IsOwner(addr mana.Address) bool {
	return !r.Owner.IsZero() && r.Owner == addr
}

// IsOracle returns whether addr is the oracle. The zero address never is.
func (r *Record) IsOracle(addr mana.Address) bool {
	return !r.Oracle.IsZero() && r.Oracle == addr
}

type Service struct {
	owner  *solidity.Address
	oracle *solidity.Address
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		owner:  solidity.NewAddress(sctx, slotOwner),
		oracle: solidity.NewAddress(sctx, slotOracle),
	}
}

// Get loads the access record.
func (s *Service) Get() (*Record, error) {
	owner, err := s.owner.Get()
	if err != nil {
		return nil, err
	}
	oracle, err := s.oracle.Get()
	if err != nil {
		return nil, err
	}
	return &Record{Owner: owner, Oracle: oracle}, nil
}

func (s *Service) SetOwner(addr mana.Address) {
	s.owner.Set(addr)
}

func (s *Service) SetOracle(addr mana.Address) {
	s.oracle.Set(addr)
}
