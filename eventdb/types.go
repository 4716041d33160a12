// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"github.com/manaproject/mana/builtin/settlement"
	"github.com/manaproject/mana/mana"
)

// MaxTopics is the number of indexed topic columns.
const MaxTopics = 4

// Event is a settlement event as stored in the db.
type Event struct {
	Seq       uint64
	Index     uint32
	Op        string
	Caller    mana.Address
	Timestamp uint64
	Address   mana.Address
	Topics    [MaxTopics]*mana.Bytes32
	Data      []byte
}

// newEvents flattens the events of a receipt.
func newEvents(r *settlement.Receipt) []*Event {
	events := make([]*Event, 0, len(r.Events))
	for i, ev := range r.Events {
		e := &Event{
			Seq:       r.Seq,
			Index:     uint32(i),
			Op:        r.Op,
			Caller:    r.Caller,
			Timestamp: r.Timestamp,
			Address:   ev.Address,
			Data:      ev.Data,
		}
		for j := 0; j < len(ev.Topics) && j < MaxTopics; j++ {
			e.Topics[j] = &ev.Topics[j]
		}
		events = append(events, e)
	}
	return events
}

// ToSettlementEvent converts back to the engine representation.
func (e *Event) ToSettlementEvent() *settlement.Event {
	ev := &settlement.Event{Address: e.Address, Data: e.Data}
	for _, t := range e.Topics {
		if t != nil {
			ev.Topics = append(ev.Topics, *t)
		}
	}
	return ev
}

type RangeType string

const (
	Seq  RangeType = "seq"
	Time RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range bounds the query on seq or timestamp. To below From means unbounded.
type Range struct {
	Unit RangeType `json:"unit"`
	From uint64    `json:"from"`
	To   uint64    `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Criteria matches events by address and topics. Nil fields match anything.
type Criteria struct {
	Address *mana.Address
	Topics  [MaxTopics]*mana.Bytes32
}

// Filter is OR of its criteria, AND-ed with caller and range.
type Filter struct {
	CriteriaSet []*Criteria
	Caller      *mana.Address
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
