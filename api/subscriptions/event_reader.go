// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"math"

	"github.com/manaproject/mana/api"
	"github.com/manaproject/mana/eventdb"
)

// eventReader reads events in seq order starting from a position.
type eventReader struct {
	db        *eventdb.EventDB
	filter    *eventdb.Filter
	next      uint64
	batchSize uint64
}

func newEventReader(db *eventdb.EventDB, position uint64, criteria *eventdb.Criteria, batchSize uint64) *eventReader {
	filter := &eventdb.Filter{Order: eventdb.ASC}
	if criteria != nil {
		filter.CriteriaSet = []*eventdb.Criteria{criteria}
	}
	return &eventReader{db: db, filter: filter, next: position, batchSize: batchSize}
}

// Read returns the next batch of messages and whether more are ready.
// Events of one receipt are never split across batches.
func (er *eventReader) Read(ctx context.Context) ([]any, bool, error) {
	er.filter.Range = &eventdb.Range{Unit: eventdb.Seq, From: er.next, To: math.MaxInt64}
	// one extra event tells whether the batch ends on a receipt boundary
	er.filter.Options = &eventdb.Options{Limit: er.batchSize + 1}

	events, err := er.db.FilterEvents(ctx, er.filter)
	if err != nil {
		return nil, false, err
	}
	if len(events) == 0 {
		return nil, false, nil
	}

	hasMore := uint64(len(events)) > er.batchSize
	if hasMore {
		peek := events[er.batchSize]
		events = events[:er.batchSize]
		if events[len(events)-1].Seq == peek.Seq {
			i := len(events)
			for i > 0 && events[i-1].Seq == peek.Seq {
				i--
			}
			if i > 0 {
				events = events[:i]
			} else if events, err = er.receipt(ctx, peek.Seq); err != nil {
				return nil, false, err
			}
		}
	}

	msgs := make([]any, 0, len(events))
	for _, ev := range events {
		msgs = append(msgs, api.ConvertEvent(ev))
	}
	er.next = events[len(events)-1].Seq + 1
	return msgs, hasMore, nil
}

// receipt returns the matching events of one receipt.
func (er *eventReader) receipt(ctx context.Context, seq uint64) ([]*eventdb.Event, error) {
	filter := *er.filter
	filter.Range = &eventdb.Range{Unit: eventdb.Seq, From: seq, To: seq}
	filter.Options = nil
	return er.db.FilterEvents(ctx, &filter)
}
