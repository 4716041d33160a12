// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb indexes the events of committed settlement operations in sqlite.
package eventdb

import (
	"context"
	"database/sql"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/manaproject/mana/builtin/settlement"
	"github.com/manaproject/mana/co"
	"github.com/manaproject/mana/log"
	"github.com/manaproject/mana/mana"
)

var logger = log.WithContext("pkg", "eventdb")

// EventDB manages the settlement events.
type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	signal        co.Signal
}

// New create or open event db at given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	// a single connection keeps ":memory:" dbs shared
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
	}, nil
}

// NewMem create an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close close the event db.
func (db *EventDB) Close() error {
	return db.db.Close()
}

func (db *EventDB) Path() string {
	return db.path
}

// DriverVersion returns the sqlite library version.
func (db *EventDB) DriverVersion() string {
	return db.driverVersion
}

// NewWaiter returns a waiter notified after each insert.
func (db *EventDB) NewWaiter() co.Waiter {
	return db.signal.NewWaiter()
}

// Publish implements settlement.EventSink.
func (db *EventDB) Publish(r *settlement.Receipt) error {
	return db.Insert(r)
}

// Insert stores all events of the receipt. Re-inserting a receipt is a no-op.
func (db *EventDB) Insert(receipts ...*settlement.Receipt) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	for _, r := range receipts {
		for _, ev := range newEvents(r) {
			if _, err := tx.Exec("INSERT OR REPLACE INTO event(seq, eventIndex, op, caller, timestamp, address, topic0, topic1, topic2, topic3, data) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
				ev.Seq,
				ev.Index,
				ev.Op,
				ev.Caller.Bytes(),
				ev.Timestamp,
				ev.Address.Bytes(),
				topicValue(ev.Topics[0]),
				topicValue(ev.Topics[1]),
				topicValue(ev.Topics[2]),
				topicValue(ev.Topics[3]),
				ev.Data,
			); err != nil {
				tx.Rollback()
				return errors.Wrapf(err, "insert event %d:%d", ev.Seq, ev.Index)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	metricEventsInserted().Add(int64(countEvents(receipts)))
	db.signal.Broadcast()
	return nil
}

// NewestSeq returns the largest stored seq, or 0 if empty.
func (db *EventDB) NewestSeq() (uint64, error) {
	var seq sql.NullInt64
	if err := db.db.QueryRow("SELECT MAX(seq) FROM event").Scan(&seq); err != nil {
		return 0, err
	}
	return uint64(seq.Int64), nil
}

// Truncate deletes events with seq greater than seq.
func (db *EventDB) Truncate(seq uint64) error {
	_, err := db.db.Exec("DELETE FROM event WHERE seq > ?", seq)
	return err
}

// FilterEvents returns events matching the filter.
func (db *EventDB) FilterEvents(ctx context.Context, filter *Filter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT * FROM event ORDER BY seq ASC, eventIndex ASC")
	}
	var args []any
	stmt := "SELECT * FROM event WHERE 1"
	if filter.Range != nil {
		condition := "seq"
		if filter.Range.Unit == Time {
			condition = "timestamp"
		}
		args = append(args, filter.Range.From)
		stmt += " AND " + condition + " >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND " + condition + " <= ? "
		}
	}
	if filter.Caller != nil {
		args = append(args, filter.Caller.Bytes())
		stmt += " AND caller = ? "
	}
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Address != nil {
			args = append(args, criteria.Address.Bytes())
			stmt += " AND address = ? "
		}
		for j, topic := range criteria.Topics {
			if topic != nil {
				args = append(args, topic.Bytes())
				stmt += fmt.Sprintf(" AND topic%v = ?", j)
			}
		}
		stmt += ")"
	}
	if len(filter.CriteriaSet) > 0 {
		stmt += ")"
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC, eventIndex DESC "
	} else {
		stmt += " ORDER BY seq ASC, eventIndex ASC "
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *EventDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq       uint64
			index     uint32
			op        string
			caller    []byte
			timestamp uint64
			address   []byte
			topics    [MaxTopics][]byte
			data      []byte
		)
		if err := rows.Scan(
			&seq,
			&index,
			&op,
			&caller,
			&timestamp,
			&address,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&data,
		); err != nil {
			return nil, err
		}
		event := &Event{
			Seq:       seq,
			Index:     index,
			Op:        op,
			Caller:    mana.BytesToAddress(caller),
			Timestamp: timestamp,
			Address:   mana.BytesToAddress(address),
			Data:      data,
		}
		for i, topic := range topics {
			if len(topic) > 0 {
				h := mana.BytesToBytes32(topic)
				event.Topics[i] = &h
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.Trace("events queried", "count", len(events))
	return events, nil
}

func topicValue(topic *mana.Bytes32) []byte {
	if topic == nil {
		return nil
	}
	return topic.Bytes()
}

func countEvents(receipts []*settlement.Receipt) (n int) {
	for _, r := range receipts {
		n += len(r.Events)
	}
	return
}
