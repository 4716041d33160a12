// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

func TestNew(t *testing.T) {
	s, err := New("", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, NameProportional, s.Name())

	s, err = New(NameMultiplier, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, Multiplier{3, 2}, s)

	_, err = New(NameMultiplier, 3, 0)
	assert.ErrorIs(t, err, ErrBadFactor)

	s, err = New(NameEqual, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, NameEqual, s.Name())

	_, err = New("lottery", 0, 0)
	assert.Error(t, err)
}

func TestProportional(t *testing.T) {
	tests := []struct {
		stake, total, winners int64
		want                  int64
	}{
		{100, 100, 100, 100},
		{100, 300, 100, 300},
		{100, 400, 200, 200},
		{1, 10, 3, 3}, // rounds down
	}
	for _, tt := range tests {
		r, err := Proportional{}.Reward(&Input{
			Stake:        big.NewInt(tt.stake),
			TotalStaked:  big.NewInt(tt.total),
			WinnersStake: big.NewInt(tt.winners),
			Winners:      1,
		})
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(tt.want), r)
	}

	_, err := Proportional{}.Reward(&Input{Stake: big.NewInt(1), TotalStaked: big.NewInt(1), WinnersStake: new(big.Int)})
	assert.ErrorIs(t, err, ErrNoWinners)
}

func TestProportionalLargeValues(t *testing.T) {
	// the intermediate product exceeds 256 bits but the result fits
	r, err := Proportional{}.Reward(&Input{
		Stake:        maxUint256,
		TotalStaked:  maxUint256,
		WinnersStake: maxUint256,
	})
	require.NoError(t, err)
	assert.Equal(t, maxUint256, r)

	_, err = Proportional{}.Reward(&Input{
		Stake:        new(big.Int).Add(maxUint256, big.NewInt(1)),
		TotalStaked:  big.NewInt(1),
		WinnersStake: big.NewInt(1),
	})
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestMultiplier(t *testing.T) {
	r, err := Multiplier{2, 1}.Reward(&Input{Stake: big.NewInt(50)})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), r)

	r, err = Multiplier{3, 2}.Reward(&Input{Stake: big.NewInt(5)})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), r)

	_, err = Multiplier{2, 1}.Reward(&Input{Stake: maxUint256})
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Multiplier{2, 0}.Reward(&Input{Stake: big.NewInt(1)})
	assert.ErrorIs(t, err, ErrBadFactor)

	_, err = Multiplier{2, 1}.Reward(&Input{Stake: big.NewInt(-1)})
	assert.ErrorIs(t, err, ErrBadInput)
}

func TestEqual(t *testing.T) {
	r, err := Equal{}.Reward(&Input{Stake: big.NewInt(1), TotalStaked: big.NewInt(301), Winners: 3})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), r)

	_, err = Equal{}.Reward(&Input{TotalStaked: big.NewInt(1)})
	assert.ErrorIs(t, err, ErrNoWinners)
}
