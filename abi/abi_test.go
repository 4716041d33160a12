// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manaproject/mana/mana"
)

const testABI = `[
  {"type":"event","name":"Staked","inputs":[
    {"name":"periodId","type":"uint64","indexed":true},
    {"name":"user","type":"address","indexed":true},
    {"name":"amount","type":"uint256","indexed":false},
    {"name":"predictedPrice","type":"int64","indexed":false}]},
  {"type":"event","name":"Changed","inputs":[
    {"name":"previous","type":"address","indexed":true},
    {"name":"next","type":"address","indexed":true}]}
]`

func TestEventEncodeDecode(t *testing.T) {
	abi, err := New([]byte(testABI))
	require.NoError(t, err)

	ev, ok := abi.EventByName("Staked")
	require.True(t, ok)
	assert.Equal(t, mana.Keccak256([]byte("Staked(uint64,address,uint256,int64)")), ev.ID())

	byID, ok := abi.EventByID(ev.ID())
	require.True(t, ok)
	assert.Equal(t, "Staked", byID.Name())

	user := mana.BytesToAddress([]byte("alice"))
	topics, data, err := ev.Encode(uint64(1), user, big.NewInt(100), int64(-5))
	require.NoError(t, err)
	require.Len(t, topics, 3)
	assert.Equal(t, mana.BytesToBytes32([]byte{1}), topics[1])
	assert.Equal(t, mana.BytesToBytes32(user.Bytes()), topics[2])
	assert.Len(t, data, 64)

	out, err := ev.Decode(topics, data)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), out["periodId"])
	assert.Equal(t, user, out["user"])
	assert.Equal(t, 0, big.NewInt(100).Cmp(out["amount"].(*big.Int)))
	assert.Equal(t, int64(-5), out["predictedPrice"])
}

func TestEventIndexedOnly(t *testing.T) {
	abi := MustNew([]byte(testABI))
	ev, _ := abi.EventByName("Changed")

	a, b := mana.BytesToAddress([]byte("a")), mana.BytesToAddress([]byte("b"))
	topics, data, err := ev.Encode(a, b)
	require.NoError(t, err)
	assert.Empty(t, data)

	out, err := ev.Decode(topics, data)
	require.NoError(t, err)
	assert.Equal(t, a, out["previous"])
	assert.Equal(t, b, out["next"])
}

func TestEventErrors(t *testing.T) {
	abi := MustNew([]byte(testABI))
	ev, _ := abi.EventByName("Staked")

	_, _, err := ev.Encode(uint64(1))
	assert.Error(t, err)

	_, err = ev.Decode([]mana.Bytes32{{1}}, nil)
	assert.Error(t, err)

	_, err = New([]byte("not json"))
	assert.Error(t, err)
}
