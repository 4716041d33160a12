// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package manaclient

import (
	"math/big"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manaproject/mana/api"
	"github.com/manaproject/mana/builtin/settlement"
	"github.com/manaproject/mana/genesis"
	"github.com/manaproject/mana/mana"
	"github.com/manaproject/mana/manaclient/common"
	"github.com/manaproject/mana/manaclient/httpclient"
	"github.com/manaproject/mana/manaclient/wsclient"
	"github.com/manaproject/mana/test/testchain"
	"github.com/manaproject/mana/test/testnode"
)

func newTestClient(t *testing.T) (*Client, *testchain.Chain) {
	node, err := testnode.NewNodeBuilder().WithPingInterval(time.Second).Build()
	require.NoError(t, err)
	require.NoError(t, node.Start())
	t.Cleanup(func() {
		node.Stop()
		node.Chain().Close()
	})

	c, err := New(node.APIServer().URL)
	require.NoError(t, err)
	return c, node.Chain()
}

func TestStakeSettleClaim(t *testing.T) {
	c, chain := newTestClient(t)
	staker := chain.Staker(0)
	amount := mana.Units(100)

	acc, err := c.ApproveEngine(staker.PrivateKey, amount)
	require.NoError(t, err)
	assert.Equal(t, 0, (*big.Int)(acc.Allowance).Cmp(amount))
	assert.Equal(t, uint64(1), acc.Nonce)

	receipt, err := c.StakeTokens(staker.PrivateKey, amount, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), receipt.Seq)
	assert.Equal(t, staker.Address, receipt.Caller)
	assert.Len(t, receipt.EventsByName("Staked"), 1)
	assert.Empty(t, receipt.EventsByName("HighStakeWarning"))

	vote, err := c.GetVote(httpclient.CurrentPeriod, staker.Address)
	require.NoError(t, err)
	assert.Equal(t, int64(100), vote.PredictedPrice)
	assert.Equal(t, 0, (*big.Int)(vote.StakedAmount).Cmp(amount))
	assert.False(t, vote.Eligible)

	stakers, err := c.GetStakers(httpclient.PeriodID(mana.FirstPeriodID), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []mana.Address{staker.Address}, stakers)

	_, err = c.SetPrice(chain.Oracle().PrivateKey, mana.FirstPeriodID, 100)
	require.NoError(t, err)

	period, err := c.GetPeriod(httpclient.PeriodID(mana.FirstPeriodID))
	require.NoError(t, err)
	require.NotNil(t, period.ActualPrice)
	assert.Equal(t, int64(100), *period.ActualPrice)

	summary, err := c.GetSummary()
	require.NoError(t, err)
	assert.Equal(t, mana.FirstPeriodID+1, summary.CurrentPeriod)

	receipt, err = c.Claim(staker.PrivateKey, mana.FirstPeriodID)
	require.NoError(t, err)
	assert.Len(t, receipt.EventsByName("RewardClaimed"), 1)

	acc, err = c.GetAccount(staker.Address)
	require.NoError(t, err)
	assert.Equal(t, 0, (*big.Int)(acc.Balance).Cmp(genesis.DevAllocation))
	assert.Equal(t, uint64(3), acc.Nonce)
}

func TestRevertsAreTyped(t *testing.T) {
	c, chain := newTestClient(t)
	staker := chain.Staker(0)

	_, err := c.SetPrice(staker.PrivateKey, mana.FirstPeriodID, 100)
	assert.True(t, errors.Is(err, settlement.ErrOnlyOracle))

	_, err = c.Claim(staker.PrivateKey, mana.FirstPeriodID)
	assert.True(t, errors.Is(err, settlement.ErrPriceNotSet))

	_, err = c.StakeTokens(staker.PrivateKey, big.NewInt(0), 100)
	assert.True(t, errors.Is(err, settlement.ErrZeroStake))

	// reverted calls consume the nonce
	nonce, err := c.GetNonce(staker.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), nonce)
}

func TestReplayRejected(t *testing.T) {
	c, chain := newTestClient(t)
	owner := chain.Owner()
	oracle := chain.Staker(1).Address

	env, err := c.Sign(owner.PrivateKey, api.MethodSetOracle, &api.AddressRequest{Address: oracle})
	require.NoError(t, err)
	_, err = c.SetOracle(env)
	require.NoError(t, err)

	_, err = c.SetOracle(env)
	var serr *common.StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusConflict, serr.StatusCode)

	summary, err := c.GetSummary()
	require.NoError(t, err)
	assert.Equal(t, oracle, summary.Oracle)
}

func TestBadSignature(t *testing.T) {
	c, chain := newTestClient(t)
	owner := chain.Owner()

	env, err := c.Sign(owner.PrivateKey, api.MethodSetOracle, &api.AddressRequest{Address: owner.Address})
	require.NoError(t, err)
	env.Signature = env.Signature[:10]

	_, err = c.SetOracle(env)
	var serr *common.StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusUnauthorized, serr.StatusCode)

	// signed for another method
	env, err = c.Sign(owner.PrivateKey, api.MethodTransferOwnership, &api.AddressRequest{Address: owner.Address})
	require.NoError(t, err)
	_, err = c.SetOracle(env)
	require.Error(t, err)

	summary, err := c.GetSummary()
	require.NoError(t, err)
	assert.Equal(t, chain.Oracle().Address, summary.Oracle)
}

func TestTokenTransfer(t *testing.T) {
	c, chain := newTestClient(t)
	from, to := chain.Staker(0), chain.Staker(1)

	acc, err := c.SendTokens(from.PrivateKey, to.Address, mana.Units(5))
	require.NoError(t, err)
	assert.Equal(t, 0, (*big.Int)(acc.Balance).Cmp(new(big.Int).Sub(genesis.DevAllocation, mana.Units(5))))

	info, err := c.GetToken()
	require.NoError(t, err)
	assert.Equal(t, mana.TokenSymbol, info.Symbol)
	assert.Equal(t, chain.Owner().Address, info.Owner)
}

func TestFilterEvents(t *testing.T) {
	c, chain := newTestClient(t)
	for i := range 3 {
		_, err := chain.Stake(chain.Staker(i), mana.Units(10), 100)
		require.NoError(t, err)
	}

	events, err := c.FilterEvents(&api.EventFilter{
		CriteriaSet: []*api.EventCriteria{{Event: "Staked"}},
		Order:       "desc",
	})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, uint64(3), events[0].Meta.Seq)
	assert.Equal(t, chain.Staker(2).Address, events[0].Meta.Caller)
	assert.Equal(t, "Staked", events[0].Name)
}

func TestSubscribeEvents(t *testing.T) {
	c, chain := newTestClient(t)
	_, err := chain.Stake(chain.Staker(0), mana.Units(10), 100)
	require.NoError(t, err)

	pos := uint64(1)
	sub, err := c.WS().SubscribeEvents(wsclient.EventQuery(&pos, ""))
	require.NoError(t, err)
	defer sub.Unsubscribe()

	next := func() *api.FilteredEvent {
		select {
		case ev := <-sub.EventChan:
			require.NoError(t, ev.Error)
			return ev.Data
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for event")
			return nil
		}
	}

	ev := next()
	assert.Equal(t, uint64(1), ev.Meta.Seq)
	assert.Equal(t, "Staked", ev.Name)

	_, err = chain.Stake(chain.Staker(1), mana.Units(10), 90)
	require.NoError(t, err)

	ev = next()
	assert.Equal(t, uint64(2), ev.Meta.Seq)
	assert.Equal(t, chain.Staker(1).Address, ev.Meta.Caller)
}
