// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manaproject/mana/builtin/solidity"
	"github.com/manaproject/mana/lvldb"
	"github.com/manaproject/mana/mana"
	"github.com/manaproject/mana/state"
)

func TestRecord(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	svc := New(solidity.NewContext(mana.EngineAddress, state.NewStater(db).NewState()))

	rec, err := svc.Get()
	require.NoError(t, err)
	assert.False(t, rec.IsOwner(mana.Address{}))
	assert.False(t, rec.IsOracle(mana.Address{}))

	owner := mana.BytesToAddress([]byte("owner"))
	oracle := mana.BytesToAddress([]byte("oracle"))
	svc.SetOwner(owner)
	svc.SetOracle(oracle)

	rec, err = svc.Get()
	require.NoError(t, err)
	assert.Equal(t, owner, rec.Owner)
	assert.Equal(t, oracle, rec.Oracle)
	assert.True(t, rec.IsOwner(owner))
	assert.False(t, rec.IsOwner(oracle))
	assert.True(t, rec.IsOracle(oracle))
	assert.False(t, rec.IsOracle(owner))
}
