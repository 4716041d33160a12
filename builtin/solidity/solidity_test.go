// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manaproject/mana/lvldb"
	"github.com/manaproject/mana/mana"
	"github.com/manaproject/mana/state"
)

type testStruct struct {
	Field1 uint64
	Amount *big.Int
	Addr   mana.Address
}

func newTestContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(mana.BytesToAddress([]byte{1}), state.NewStater(db).NewState())
}

func TestMapping(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[Uint64Key, *testStruct](ctx, mana.BytesToBytes32([]byte("m")))

	v, err := m.Get(1)
	assert.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, uint64(0), v.Field1)

	exists, err := m.Exists(1)
	assert.NoError(t, err)
	assert.False(t, exists)

	want := &testStruct{Field1: 7, Amount: big.NewInt(99), Addr: mana.BytesToAddress([]byte("a"))}
	require.NoError(t, m.Set(1, want))

	v, err = m.Get(1)
	assert.NoError(t, err)
	assert.Equal(t, want, v)

	exists, _ = m.Exists(1)
	assert.True(t, exists)

	// distinct keys and bases don't collide
	other := NewMapping[Uint64Key, *testStruct](ctx, mana.BytesToBytes32([]byte("n")))
	v, _ = other.Get(1)
	assert.Equal(t, uint64(0), v.Field1)
	v, _ = m.Get(2)
	assert.Equal(t, uint64(0), v.Field1)

	m.Delete(1)
	exists, _ = m.Exists(1)
	assert.False(t, exists)
}

func TestMappingDecodeError(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[Uint64Key, *testStruct](ctx, mana.BytesToBytes32([]byte("m")))

	pos := mana.Blake2b(Uint64Key(1).Bytes(), mana.BytesToBytes32([]byte("m")).Bytes())
	ctx.State().SetRawStorage(ctx.Address(), pos, rlp.RawValue{0xFF})

	_, err := m.Get(1)
	assert.Error(t, err)
}

func TestRaw(t *testing.T) {
	ctx := newTestContext(t)
	r := NewRaw[uint64](ctx, mana.BytesToBytes32([]byte("counter")))

	v, err := r.Get()
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), v)

	require.NoError(t, r.Upsert(5))
	v, err = r.Get()
	assert.NoError(t, err)
	assert.Equal(t, uint64(5), v)
}

func TestUint256AndAddress(t *testing.T) {
	ctx := newTestContext(t)

	u := NewUint256(ctx, mana.BytesToBytes32([]byte("u")))
	require.NoError(t, u.Add(big.NewInt(10)))
	require.NoError(t, u.Sub(big.NewInt(3)))
	v, err := u.Get()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(7), v)

	a := NewAddress(ctx, mana.BytesToBytes32([]byte("a")))
	got, err := a.Get()
	assert.NoError(t, err)
	assert.True(t, got.IsZero())

	addr := mana.BytesToAddress([]byte("owner"))
	a.Set(addr)
	got, _ = a.Get()
	assert.Equal(t, addr, got)
}
