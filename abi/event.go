// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/manaproject/mana/mana"
)

// Event see abi.Event in go-ethereum.
type Event struct {
	id                 mana.Bytes32
	event              *ethabi.Event
	indexed            ethabi.Arguments
	argsWithoutIndexed ethabi.Arguments
}

func newEvent(event *ethabi.Event) *Event {
	var indexed, argsWithoutIndexed ethabi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		} else {
			argsWithoutIndexed = append(argsWithoutIndexed, arg)
		}
	}
	return &Event{
		mana.Bytes32(event.ID),
		event,
		indexed,
		argsWithoutIndexed,
	}
}

// ID returns event id.
func (e *Event) ID() mana.Bytes32 {
	return e.id
}

// Name returns event name.
func (e *Event) Name() string {
	return e.event.Name
}

// Encode encodes args, in declaration order, into topics and data.
// The first topic is the event id.
func (e *Event) Encode(args ...any) ([]mana.Bytes32, []byte, error) {
	if len(args) != len(e.event.Inputs) {
		return nil, nil, errors.Errorf("event %s: want %d args, got %d", e.Name(), len(e.event.Inputs), len(args))
	}
	topics := []mana.Bytes32{e.id}
	var values []any
	for i, arg := range e.event.Inputs {
		v := args[i]
		if addr, ok := v.(mana.Address); ok {
			v = common.Address(addr)
		}
		if !arg.Indexed {
			values = append(values, v)
			continue
		}
		hashes, err := ethabi.MakeTopics([]any{v})
		if err != nil {
			return nil, nil, errors.Wrapf(err, "event %s: topic %s", e.Name(), arg.Name)
		}
		topics = append(topics, mana.Bytes32(hashes[0][0]))
	}
	data, err := e.argsWithoutIndexed.Pack(values...)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "event %s: pack", e.Name())
	}
	return topics, data, nil
}

// Decode decodes topics and data into a map keyed by argument name.
func (e *Event) Decode(topics []mana.Bytes32, data []byte) (map[string]any, error) {
	if len(topics) == 0 || topics[0] != e.id {
		return nil, errors.Errorf("event %s: id mismatch", e.Name())
	}
	out := make(map[string]any)
	if err := e.argsWithoutIndexed.UnpackIntoMap(out, data); err != nil {
		return nil, errors.Wrapf(err, "event %s: unpack", e.Name())
	}
	hashes := make([]common.Hash, 0, len(topics)-1)
	for _, t := range topics[1:] {
		hashes = append(hashes, common.Hash(t))
	}
	if err := ethabi.ParseTopicsIntoMap(out, e.indexed, hashes); err != nil {
		return nil, errors.Wrapf(err, "event %s: topics", e.Name())
	}
	for k, v := range out {
		if addr, ok := v.(common.Address); ok {
			out[k] = mana.Address(addr)
		}
	}
	return out, nil
}
