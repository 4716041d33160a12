// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manaproject/mana/builtin/settlement"
	"github.com/manaproject/mana/builtin/settlement/reward"
	"github.com/manaproject/mana/mana"
)

const sample = `
owner: "0xf077b491b355e64048ce21e3a6fc4751eeea77fa"
oracle: "0x435933c8064b4ae76be665428e0307ef2ccfbd68"
engine:
  high_stake_threshold: "2500.5"
  restake_policy: accumulate
  reward_strategy: multiplier
  multiplier:
    numerator: 3
    denominator: 2
allocations:
  - address: "0x0f872421dc479f3c11edd89512731814d0598db5"
    amount: "1000"
  - address: "0x0f872421dc479f3c11edd89512731814d0598db5"
    amount: "0.5"
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "mana", c.Domain)
	assert.Equal(t, mana.MustParseAddress("0xf077b491b355e64048ce21e3a6fc4751eeea77fa"), c.OwnerAddress())
	assert.Equal(t, mana.MustParseAddress("0x435933c8064b4ae76be665428e0307ef2ccfbd68"), c.OracleAddress())

	sc, err := c.Engine.Settlement()
	require.NoError(t, err)
	assert.Equal(t, mana.MustParseUnits("2500.5"), sc.HighStakeThreshold)
	assert.Equal(t, settlement.RestakeAccumulate, sc.RestakePolicy)
	assert.Equal(t, reward.Multiplier{Numerator: 3, Denominator: 2}, sc.Strategy)

	allocs, err := c.AllocationAmounts()
	require.NoError(t, err)
	assert.Len(t, allocs, 1)
	assert.Equal(t, mana.MustParseUnits("1000.5"), allocs[mana.MustParseAddress("0x0f872421dc479f3c11edd89512731814d0598db5")])
}

func TestDefaults(t *testing.T) {
	c, err := Parse([]byte(`owner: "0xf077b491b355e64048ce21e3a6fc4751eeea77fa"`))
	require.NoError(t, err)
	assert.True(t, c.OracleAddress().IsZero())

	sc, err := c.Engine.Settlement()
	require.NoError(t, err)
	assert.Equal(t, mana.Units(1000), sc.HighStakeThreshold)
	assert.Equal(t, settlement.RestakeReject, sc.RestakePolicy)
	assert.Equal(t, reward.Proportional{}, sc.Strategy)

	d := Default()
	assert.Equal(t, "proportional", d.Engine.RewardStrategy)
	assert.Equal(t, uint64(2), d.Engine.Multiplier.Numerator)
}

func TestInvalid(t *testing.T) {
	cases := map[string]string{
		"missing owner": `oracle: "0x435933c8064b4ae76be665428e0307ef2ccfbd68"`,
		"bad owner":     `owner: "alice"`,
		"bad policy":    "owner: \"0xf077b491b355e64048ce21e3a6fc4751eeea77fa\"\nengine:\n  restake_policy: replace",
		"bad strategy":  "owner: \"0xf077b491b355e64048ce21e3a6fc4751eeea77fa\"\nengine:\n  reward_strategy: lottery",
		"bad amount":    "owner: \"0xf077b491b355e64048ce21e3a6fc4751eeea77fa\"\nallocations:\n  - address: \"0x0f872421dc479f3c11edd89512731814d0598db5\"\n    amount: \"-1\"",
		"not yaml":      "owner: [",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mana.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	c, err := Load(path)
	require.NoError(t, err)

	data, err := c.Marshal()
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, c, again)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
