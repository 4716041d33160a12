// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package settlement

import (
	_ "embed"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/manaproject/mana/abi"
	"github.com/manaproject/mana/mana"
)

//go:embed abi/Settlement.abi.json
var abiJSON []byte

// ABI is the event interface of the engine.
var ABI = abi.MustNew(abiJSON)

var (
	EventHighStakeWarning     = mustEvent("HighStakeWarning")
	EventStaked               = mustEvent("Staked")
	EventActualPriceSet       = mustEvent("ActualPriceSet")
	EventRewardClaimed        = mustEvent("RewardClaimed")
	EventOracleChanged        = mustEvent("OracleChanged")
	EventOwnershipTransferred = mustEvent("OwnershipTransferred")
)

func mustEvent(name string) *abi.Event {
	ev, ok := ABI.EventByName(name)
	if !ok {
		panic("settlement: missing event " + name)
	}
	return ev
}

// Event is a log entry emitted by an operation.
type Event struct {
	Address mana.Address   `json:"address"`
	Topics  []mana.Bytes32 `json:"topics"`
	Data    hexutil.Bytes  `json:"data"`
}

// Name returns the event name, or empty if the event is unknown.
func (ev *Event) Name() string {
	if len(ev.Topics) == 0 {
		return ""
	}
	if e, ok := ABI.EventByID(ev.Topics[0]); ok {
		return e.Name()
	}
	return ""
}

// Decode decodes the event arguments by name.
func (ev *Event) Decode() (string, map[string]any, error) {
	if len(ev.Topics) == 0 {
		return "", nil, errors.New("anonymous event")
	}
	e, ok := ABI.EventByID(ev.Topics[0])
	if !ok {
		return "", nil, errors.Errorf("unknown event %v", ev.Topics[0])
	}
	args, err := e.Decode(ev.Topics, ev.Data)
	if err != nil {
		return "", nil, err
	}
	return e.Name(), args, nil
}

// Receipt is the outcome of a successful mutating operation.
type Receipt struct {
	Seq       uint64       `json:"seq"` // position in the operation log, starting at 1
	Op        string       `json:"op"`
	Caller    mana.Address `json:"caller"`
	Timestamp uint64       `json:"timestamp"`
	Events    []*Event     `json:"events"`
}

// EventsByName returns the events named name.
func (r *Receipt) EventsByName(name string) []*Event {
	var out []*Event
	for _, ev := range r.Events {
		if ev.Name() == name {
			out = append(out, ev)
		}
	}
	return out
}

func (r *Receipt) emit(addr mana.Address, e *abi.Event, args ...any) error {
	topics, data, err := e.Encode(args...)
	if err != nil {
		return err
	}
	r.Events = append(r.Events, &Event{Address: addr, Topics: topics, Data: data})
	return nil
}

// EventSink receives receipts once their operation is committed, in commit order.
type EventSink interface {
	Publish(r *Receipt) error
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(r *Receipt) error

func (f SinkFunc) Publish(r *Receipt) error { return f(r) }
