// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb_test

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manaproject/mana/builtin/settlement"
	"github.com/manaproject/mana/eventdb"
	"github.com/manaproject/mana/mana"
)

var (
	engineAddr = mana.EngineAddress
	alice      = mana.BytesToAddress([]byte("alice"))
	bob        = mana.BytesToAddress([]byte("bob"))
)

func newReceipt(t *testing.T, seq uint64, caller mana.Address, amount int64) *settlement.Receipt {
	topics, data, err := settlement.EventStaked.Encode(uint64(1), caller, mana.Units(amount), int64(100))
	require.NoError(t, err)
	r := &settlement.Receipt{
		Seq:       seq,
		Op:        "stake",
		Caller:    caller,
		Timestamp: 1000 + seq,
		Events:    []*settlement.Event{{Address: engineAddr, Topics: topics, Data: data}},
	}
	if amount >= 1000 {
		topics, data, err := settlement.EventHighStakeWarning.Encode(caller, mana.Units(amount))
		require.NoError(t, err)
		r.Events = append(r.Events, &settlement.Event{Address: engineAddr, Topics: topics, Data: data})
	}
	return r
}

func TestEventDB(t *testing.T) {
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	var receipts []*settlement.Receipt
	for i := uint64(1); i <= 100; i++ {
		caller := alice
		if i%2 == 0 {
			caller = bob
		}
		amount := int64(100)
		if i%10 == 0 {
			amount = 5000
		}
		receipts = append(receipts, newReceipt(t, i, caller, amount))
	}
	require.NoError(t, db.Insert(receipts...))

	seq, err := db.NewestSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(100), seq)

	all, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 110)

	warning := settlement.EventHighStakeWarning.ID()
	events, err := db.FilterEvents(context.Background(), &eventdb.Filter{
		CriteriaSet: []*eventdb.Criteria{{Address: &engineAddr, Topics: [eventdb.MaxTopics]*mana.Bytes32{&warning}}},
	})
	require.NoError(t, err)
	assert.Len(t, events, 10)

	name, args, err := events[0].ToSettlementEvent().Decode()
	require.NoError(t, err)
	assert.Equal(t, "HighStakeWarning", name)
	assert.Equal(t, bob, args["user"])
	assert.Equal(t, 0, mana.Units(5000).Cmp(args["amount"].(*big.Int)))

	aliceTopic := mana.BytesToBytes32(alice.Bytes())
	events, err = db.FilterEvents(context.Background(), &eventdb.Filter{
		CriteriaSet: []*eventdb.Criteria{
			{Topics: [eventdb.MaxTopics]*mana.Bytes32{nil, nil, &aliceTopic}},
			{Topics: [eventdb.MaxTopics]*mana.Bytes32{&warning}},
		},
		Range:   &eventdb.Range{Unit: eventdb.Seq, From: 1, To: 20},
		Options: &eventdb.Options{Offset: 0, Limit: 5},
		Order:   eventdb.DESC,
	})
	require.NoError(t, err)
	require.Len(t, events, 5)
	assert.Equal(t, uint64(20), events[0].Seq)
	assert.Equal(t, uint32(1), events[0].Index)
	assert.Equal(t, uint64(19), events[1].Seq)

	events, err = db.FilterEvents(context.Background(), &eventdb.Filter{
		Caller: &bob,
		Range:  &eventdb.Range{Unit: eventdb.Time, From: 1050, To: 1060},
	})
	require.NoError(t, err)
	assert.Len(t, events, 8) // six stakes and two warnings
	for _, ev := range events {
		assert.Equal(t, bob, ev.Caller)
		assert.Equal(t, "stake", ev.Op)
	}
}

func TestInsertIsIdempotent(t *testing.T) {
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	r := newReceipt(t, 1, alice, 100)
	require.NoError(t, db.Publish(r))
	require.NoError(t, db.Publish(r))

	events, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestTruncate(t *testing.T) {
	db, err := eventdb.New(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	defer db.Close()

	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, db.Insert(newReceipt(t, i, alice, 100)))
	}
	require.NoError(t, db.Truncate(3))
	seq, err := db.NewestSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), seq)
}

func TestWaiter(t *testing.T) {
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	w := db.NewWaiter()
	require.NoError(t, db.Insert(newReceipt(t, 1, alice, 100)))
	select {
	case <-w.C():
	case <-time.After(time.Second):
		t.Fatal("waiter not notified")
	}
}

func TestEngineSink(t *testing.T) {
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	seq, err := db.NewestSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), seq)

	var sink settlement.EventSink = db
	require.NoError(t, sink.Publish(newReceipt(t, 7, bob, 2000)))
	events, err := db.FilterEvents(context.Background(), &eventdb.Filter{Caller: &bob})
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
