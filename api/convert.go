// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"math"

	"github.com/pkg/errors"

	"github.com/manaproject/mana/builtin/settlement"
	"github.com/manaproject/mana/eventdb"
	"github.com/manaproject/mana/mana"
)

// ConvertEventFilter validates the query and converts it for the event db.
func ConvertEventFilter(f *EventFilter, limit uint64) (*eventdb.Filter, error) {
	out := &eventdb.Filter{Caller: f.Caller, Order: eventdb.ASC}
	switch f.Order {
	case "", "asc":
	case "desc":
		out.Order = eventdb.DESC
	default:
		return nil, errors.Errorf("order: unknown value %q", f.Order)
	}

	if f.Range != nil {
		r := &eventdb.Range{Unit: eventdb.Seq, To: math.MaxInt64}
		switch f.Range.Unit {
		case "", "seq":
		case "time":
			r.Unit = eventdb.Time
		default:
			return nil, errors.Errorf("range.unit: unknown value %q", f.Range.Unit)
		}
		if f.Range.From != nil {
			r.From = *f.Range.From
		}
		if f.Range.To != nil {
			r.To = min(*f.Range.To, math.MaxInt64)
		}
		if r.From > r.To {
			return nil, errors.New("range.to must be greater than or equal to range.from")
		}
		out.Range = r
	}

	for i, c := range f.CriteriaSet {
		if c == nil {
			return nil, errors.Errorf("criteriaSet[%d]: null not allowed", i)
		}
		criteria := &eventdb.Criteria{
			Address: c.Address,
			Topics:  [eventdb.MaxTopics]*mana.Bytes32{c.Topic0, c.Topic1, c.Topic2, c.Topic3},
		}
		if c.Event != "" {
			ev, ok := settlement.ABI.EventByName(c.Event)
			if !ok {
				return nil, errors.Errorf("criteriaSet[%d]: unknown event %q", i, c.Event)
			}
			id := ev.ID()
			criteria.Topics[0] = &id
		}
		out.CriteriaSet = append(out.CriteriaSet, criteria)
	}

	out.Options = &eventdb.Options{Limit: limit}
	if f.Options != nil {
		if f.Options.Limit > limit {
			return nil, errors.Errorf("options.limit exceeds the maximum allowed value of %d", limit)
		}
		if f.Options.Offset > math.MaxInt64 {
			return nil, errors.Errorf("options.offset exceeds the maximum allowed value of %d", int64(math.MaxInt64))
		}
		out.Options.Offset = f.Options.Offset
		if f.Options.Limit > 0 {
			out.Options.Limit = f.Options.Limit
		}
	}
	return out, nil
}
