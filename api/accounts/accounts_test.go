// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts_test

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manaproject/mana/api"
	"github.com/manaproject/mana/api/accounts"
	"github.com/manaproject/mana/genesis"
	"github.com/manaproject/mana/mana"
	"github.com/manaproject/mana/test/testchain"
)

func httpGet(t *testing.T, url string) (int, []byte) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, body
}

func TestAccounts(t *testing.T) {
	chain, err := testchain.NewDefault()
	require.NoError(t, err)
	defer chain.Close()

	router := mux.NewRouter()
	accounts.New(chain.Token(), chain.Auth(), chain.Engine().Address()).Mount(router, "/accounts")
	ts := httptest.NewServer(router)
	defer ts.Close()

	staker := chain.Staker(0)
	require.NoError(t, chain.Token().Approve(staker.Address, chain.Engine().Address(), mana.Units(7)))

	code, body := httpGet(t, ts.URL+"/accounts/"+staker.Address.String())
	require.Equal(t, http.StatusOK, code, string(body))
	var acc api.Account
	require.NoError(t, json.Unmarshal(body, &acc))
	assert.Equal(t, staker.Address, acc.Address)
	assert.Equal(t, 0, (*big.Int)(acc.Balance).Cmp(genesis.DevAllocation))
	assert.Equal(t, 0, (*big.Int)(acc.Allowance).Cmp(mana.Units(7)))
	assert.Equal(t, uint64(0), acc.Nonce)

	code, body = httpGet(t, ts.URL+"/accounts/"+staker.Address.String()+"/nonce")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"nonce":0}`, string(body))

	code, _ = httpGet(t, ts.URL+"/accounts/0x01")
	assert.Equal(t, http.StatusBadRequest, code)
}
