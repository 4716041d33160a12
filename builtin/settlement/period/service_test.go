// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package period

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manaproject/mana/builtin/solidity"
	"github.com/manaproject/mana/lvldb"
	"github.com/manaproject/mana/mana"
	"github.com/manaproject/mana/state"
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

func newSvc(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := state.NewStater(db).NewState()
	return New(solidity.NewContext(mana.EngineAddress, st))
}

func TestCurrentStartsAtFirstPeriod(t *testing.T) {
	svc := newSvc(t)
	id, err := svc.Current()
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestUnknownPeriodIsZero(t *testing.T) {
	svc := newSvc(t)
	p, err := svc.Get(42)
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), p.ID)
	assert.False(t, p.Exists())
	assert.False(t, p.PriceSet)
	assert.Equal(t, 0, p.TotalStaked.Sign())
	assert.Equal(t, 0, p.TotalPaid.Sign())
}

func TestOpenAndStake(t *testing.T) {
	svc := newSvc(t)
	alice := mana.BytesToAddress([]byte("alice"))
	bob := mana.BytesToAddress([]byte("bob"))

	p, err := svc.Open(1, 1000)
	require.NoError(t, err)
	assert.True(t, p.Exists())
	assert.Equal(t, uint64(1000), p.StartTime)

	// reopening keeps the original start
	p, err = svc.Open(1, 2000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), p.StartTime)

	require.NoError(t, svc.AddStake(p, alice, big.NewInt(100), true))
	require.NoError(t, svc.AddStake(p, bob, big.NewInt(50), true))
	require.NoError(t, svc.AddStake(p, alice, big.NewInt(5), false))

	p, err = svc.Get(1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(155), p.TotalStaked)
	assert.Equal(t, uint64(2), p.Stakers)

	list, err := svc.Stakers(p, 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, []mana.Address{alice, bob}, list)

	list, err = svc.Stakers(p, 1, 5)
	assert.NoError(t, err)
	assert.Equal(t, []mana.Address{bob}, list)

	list, err = svc.Stakers(p, 0, 1)
	assert.NoError(t, err)
	assert.Equal(t, []mana.Address{alice}, list)

	list, err = svc.Stakers(p, 9, 1)
	assert.NoError(t, err)
	assert.Empty(t, list)
}

func TestStakeOverflow(t *testing.T) {
	svc := newSvc(t)
	p, err := svc.Open(1, 1)
	require.NoError(t, err)

	require.NoError(t, svc.AddStake(p, mana.Address{1}, maxUint256, true))
	err = svc.AddStake(p, mana.Address{2}, big.NewInt(1), true)
	assert.ErrorIs(t, err, ErrOverflow)

	p, _ = svc.Get(1)
	assert.Equal(t, maxUint256, p.TotalStaked)
	assert.Equal(t, uint64(1), p.Stakers)
}

func TestSetPriceAdvancesCurrent(t *testing.T) {
	svc := newSvc(t)
	p, err := svc.Open(1, 10)
	require.NoError(t, err)

	require.NoError(t, svc.SetPrice(p, -250, 20))
	p, _ = svc.Get(1)
	assert.True(t, p.PriceSet)
	assert.Equal(t, int64(-250), p.ActualPrice)
	assert.Equal(t, uint64(20), p.PriceSetTime)

	cur, _ := svc.Current()
	assert.Equal(t, uint64(2), cur)

	p2, _ := svc.Get(2)
	require.NoError(t, svc.SetPrice(p2, 1, 30))
	cur, _ = svc.Current()
	assert.Equal(t, uint64(3), cur)
	p2, _ = svc.Get(2)
	assert.True(t, p2.Exists())

	// a past period does not move the pointer
	require.NoError(t, svc.SetPrice(p, 7, 40))
	cur, _ = svc.Current()
	assert.Equal(t, uint64(3), cur)
}

func TestAddPaid(t *testing.T) {
	svc := newSvc(t)
	p, _ := svc.Open(1, 1)
	require.NoError(t, svc.AddStake(p, mana.Address{1}, big.NewInt(100), true))

	require.NoError(t, svc.AddPaid(p, big.NewInt(60)))
	assert.Equal(t, big.NewInt(40), p.Remaining())
	assert.Error(t, svc.AddPaid(p, big.NewInt(41)))

	p, _ = svc.Get(1)
	assert.Equal(t, big.NewInt(60), p.TotalPaid)
}
