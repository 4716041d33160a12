// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package settlement

import (
	"math/big"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manaproject/mana/builtin/reverts"
	"github.com/manaproject/mana/builtin/settlement/reward"
	"github.com/manaproject/mana/builtin/token"
	"github.com/manaproject/mana/lvldb"
	"github.com/manaproject/mana/mana"
	"github.com/manaproject/mana/state"
)

var (
	owner  = mana.BytesToAddress([]byte("owner"))
	oracle = mana.BytesToAddress([]byte("oracle"))
	addr1  = mana.BytesToAddress([]byte("addr1"))
	addr2  = mana.BytesToAddress([]byte("addr2"))
)

type testEnv struct {
	engine *Engine
	token  *token.Token
	clock  *ManualClock
}

func newTestEnv(t *testing.T, config Config) *testEnv {
	return newTestEnvWithLedger(t, config, nil)
}

// newTestEnvWithLedger deploys the token and the engine, funds addr1 and
// addr2 with 1000 MNAT each and sets the oracle.
func newTestEnvWithLedger(t *testing.T, config Config, wrap func(*token.Token) Ledger) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	stater := state.NewStater(db)
	tk := token.New(mana.TokenAddress, stater)
	require.NoError(t, tk.Initialize(owner))
	require.NoError(t, tk.Mint(owner, owner, mana.Units(1_000_000)))
	require.NoError(t, tk.Transfer(owner, addr1, mana.Units(1000)))
	require.NoError(t, tk.Transfer(owner, addr2, mana.Units(1000)))

	var ledger Ledger = tk
	if wrap != nil {
		ledger = wrap(tk)
	}
	clock := NewManualClock(1_700_000_000)
	engine := New(mana.EngineAddress, stater, ledger, clock, config)
	require.NoError(t, engine.Initialize(owner, mana.Address{}))
	_, err = engine.SetOracle(owner, oracle)
	require.NoError(t, err)

	return &testEnv{engine: engine, token: tk, clock: clock}
}

func (env *testEnv) approveAndStake(t *testing.T, staker mana.Address, amount *big.Int, price int64) *Receipt {
	require.NoError(t, env.token.Approve(staker, env.engine.Address(), amount))
	r, err := env.engine.StakeTokens(staker, amount, price)
	require.NoError(t, err)
	return r
}

func (env *testEnv) balance(t *testing.T, addr mana.Address) *big.Int {
	bal, err := env.token.BalanceOf(addr)
	require.NoError(t, err)
	return bal
}

func TestStakeTokens(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	stakeAmount := mana.Units(100)

	r := env.approveAndStake(t, addr1, stakeAmount, 100)
	assert.Equal(t, "stake", r.Op)
	assert.Equal(t, addr1, r.Caller)

	p, err := env.engine.VotingPeriod(1)
	require.NoError(t, err)
	assert.Equal(t, stakeAmount, p.TotalStaked)
	assert.Equal(t, uint64(1_700_000_000), p.StartTime)
	assert.Equal(t, uint64(1), p.Stakers)

	v, err := env.engine.GetVote(1, addr1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), v.PredictedPrice)
	assert.Equal(t, stakeAmount, v.StakedAmount)
	assert.False(t, v.ClaimedReward)

	assert.Equal(t, mana.Units(900), env.balance(t, addr1))
	assert.Equal(t, stakeAmount, env.balance(t, env.engine.Address()))

	staked := r.EventsByName("Staked")
	require.Len(t, staked, 1)
	name, args, err := staked[0].Decode()
	require.NoError(t, err)
	assert.Equal(t, "Staked", name)
	assert.Equal(t, uint64(1), args["periodId"])
	assert.Equal(t, addr1, args["user"])
	assert.Equal(t, 0, stakeAmount.Cmp(args["amount"].(*big.Int)))
	assert.Equal(t, int64(100), args["predictedPrice"])
	assert.Empty(t, r.EventsByName("HighStakeWarning"))
}

func TestSetActualPriceAndClaim(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	stakeAmount := mana.Units(100)
	env.approveAndStake(t, addr1, stakeAmount, 100)

	env.clock.Advance(2 * time.Hour)
	r, err := env.engine.SetActualPrice(oracle, 1, 100)
	require.NoError(t, err)
	require.Len(t, r.EventsByName("ActualPriceSet"), 1)

	p, err := env.engine.VotingPeriod(1)
	require.NoError(t, err)
	assert.True(t, p.PriceSet)
	assert.Equal(t, int64(100), p.ActualPrice)
	assert.Equal(t, uint64(1_700_000_000+2*3600), p.PriceSetTime)

	initial := env.balance(t, addr1)
	r, err = env.engine.ClaimReward(addr1, 1)
	require.NoError(t, err)
	final := env.balance(t, addr1)
	assert.Equal(t, 1, final.Cmp(initial))
	assert.Equal(t, stakeAmount, new(big.Int).Sub(final, initial))

	claimed := r.EventsByName("RewardClaimed")
	require.Len(t, claimed, 1)
	_, args, err := claimed[0].Decode()
	require.NoError(t, err)
	assert.Equal(t, addr1, args["user"])

	v, _ := env.engine.GetVote(1, addr1)
	assert.True(t, v.ClaimedReward)
	assert.Equal(t, stakeAmount, v.Reward)

	p, _ = env.engine.VotingPeriod(1)
	assert.Equal(t, stakeAmount, p.TotalStaked)
	assert.Equal(t, stakeAmount, p.TotalPaid)
}

func TestNonOracleCannotSetPrice(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())

	for _, caller := range []mana.Address{addr1, owner, {}} {
		_, err := env.engine.SetActualPrice(caller, 1, 100)
		assert.ErrorIs(t, err, ErrOnlyOracle)
		assert.Equal(t, "Only oracle can call this function.", err.Error())
		assert.Equal(t, reverts.Unauthorized, reverts.KindOf(err))
	}

	// regardless of prior state
	_, err := env.engine.SetActualPrice(oracle, 1, 100)
	require.NoError(t, err)
	_, err = env.engine.SetActualPrice(addr1, 1, 100)
	assert.ErrorIs(t, err, ErrOnlyOracle)
	_, err = env.engine.SetActualPrice(addr1, 99, 100)
	assert.ErrorIs(t, err, ErrOnlyOracle)
}

func TestClaimBeforePriceSet(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	env.approveAndStake(t, addr1, mana.Units(100), 100)

	_, err := env.engine.ClaimReward(addr1, 1)
	assert.ErrorIs(t, err, ErrPriceNotSet)
	assert.Equal(t, "Actual price not set yet.", err.Error())
	assert.Equal(t, reverts.InvalidState, reverts.KindOf(err))

	_, err = env.engine.ClaimReward(addr1, 7)
	assert.ErrorIs(t, err, ErrPriceNotSet)
}

func TestClaimTwice(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	env.approveAndStake(t, addr1, mana.Units(100), 100)

	env.clock.Advance(2 * time.Hour)
	_, err := env.engine.SetActualPrice(oracle, 1, 100)
	require.NoError(t, err)

	_, err = env.engine.ClaimReward(addr1, 1)
	require.NoError(t, err)
	balance := env.balance(t, addr1)

	_, err = env.engine.ClaimReward(addr1, 1)
	assert.ErrorIs(t, err, ErrNotEligible)
	assert.Equal(t, "Not eligible for reward or already claimed.", err.Error())
	assert.Equal(t, reverts.NotEligible, reverts.KindOf(err))
	assert.Equal(t, balance, env.balance(t, addr1))
}

func TestHighStakeWarning(t *testing.T) {
	env := newTestEnv(t, Config{RestakePolicy: RestakeAccumulate})
	stakeAmount := mana.Units(10000)
	require.NoError(t, env.token.Transfer(owner, addr1, stakeAmount))

	r := env.approveAndStake(t, addr1, stakeAmount, 100)
	warnings := r.EventsByName("HighStakeWarning")
	require.Len(t, warnings, 1)
	_, args, err := warnings[0].Decode()
	require.NoError(t, err)
	assert.Equal(t, addr1, args["user"])
	assert.Equal(t, 0, stakeAmount.Cmp(args["amount"].(*big.Int)))

	r = env.approveAndStake(t, addr2, mana.Units(100), 100)
	assert.Empty(t, r.EventsByName("HighStakeWarning"))

	// the threshold itself warns
	r = env.approveAndStake(t, addr2, mana.Units(900), 100)
	assert.Empty(t, r.EventsByName("HighStakeWarning"))
	require.NoError(t, env.token.Transfer(owner, addr2, mana.Units(1000)))
	r = env.approveAndStake(t, addr2, mana.Units(1000), 100)
	assert.Len(t, r.EventsByName("HighStakeWarning"), 1)
}

func TestConfigurableThreshold(t *testing.T) {
	env := newTestEnv(t, Config{HighStakeThreshold: mana.Units(50)})
	r := env.approveAndStake(t, addr1, mana.Units(100), 100)
	assert.Len(t, r.EventsByName("HighStakeWarning"), 1)
}

func TestStakeValidation(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())

	_, err := env.engine.StakeTokens(addr1, big.NewInt(0), 100)
	assert.ErrorIs(t, err, ErrZeroStake)
	_, err = env.engine.StakeTokens(addr1, nil, 100)
	assert.ErrorIs(t, err, ErrZeroStake)

	// no approval
	_, err = env.engine.StakeTokens(addr1, mana.Units(100), 100)
	assert.ErrorIs(t, err, token.ErrInsufficientAllowance)
	assert.Equal(t, reverts.LedgerFailure, reverts.KindOf(err))
	assert.Equal(t, "ERC20: insufficient allowance", err.Error())

	// approved beyond balance
	require.NoError(t, env.token.Approve(addr1, env.engine.Address(), mana.Units(5000)))
	_, err = env.engine.StakeTokens(addr1, mana.Units(5000), 100)
	assert.ErrorIs(t, err, token.ErrInsufficientBalance)

	// nothing recorded
	p, err := env.engine.VotingPeriod(1)
	require.NoError(t, err)
	assert.False(t, p.Exists())
	assert.Equal(t, 0, p.TotalStaked.Sign())
	v, _ := env.engine.GetVote(1, addr1)
	assert.True(t, v.IsEmpty())
	assert.Equal(t, mana.Units(1000), env.balance(t, addr1))

	seq, err := env.engine.Seq()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq) // only SetOracle
}

func TestRestakeReject(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	env.approveAndStake(t, addr1, mana.Units(100), 100)

	require.NoError(t, env.token.Approve(addr1, env.engine.Address(), mana.Units(100)))
	_, err := env.engine.StakeTokens(addr1, mana.Units(100), 100)
	assert.ErrorIs(t, err, ErrAlreadyStaked)
	assert.Equal(t, mana.Units(900), env.balance(t, addr1))
}

func TestRestakeAccumulate(t *testing.T) {
	env := newTestEnv(t, Config{RestakePolicy: RestakeAccumulate})
	env.approveAndStake(t, addr1, mana.Units(100), 100)
	env.approveAndStake(t, addr1, mana.Units(50), 100)

	require.NoError(t, env.token.Approve(addr1, env.engine.Address(), mana.Units(10)))
	_, err := env.engine.StakeTokens(addr1, mana.Units(10), 101)
	assert.ErrorIs(t, err, ErrPredictionChanged)

	v, _ := env.engine.GetVote(1, addr1)
	assert.Equal(t, mana.Units(150), v.StakedAmount)
	p, _ := env.engine.VotingPeriod(1)
	assert.Equal(t, mana.Units(150), p.TotalStaked)
	assert.Equal(t, uint64(1), p.Stakers)
}

func TestSetOracle(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	newOracle := mana.BytesToAddress([]byte("oracle2"))

	_, err := env.engine.SetOracle(addr1, newOracle)
	assert.ErrorIs(t, err, ErrOnlyOwner)
	assert.Equal(t, "Only owner can call this function.", err.Error())

	r, err := env.engine.SetOracle(owner, newOracle)
	require.NoError(t, err)
	changed := r.EventsByName("OracleChanged")
	require.Len(t, changed, 1)
	_, args, err := changed[0].Decode()
	require.NoError(t, err)
	assert.Equal(t, oracle, args["previous"])
	assert.Equal(t, newOracle, args["oracle"])

	rec, err := env.engine.Access()
	require.NoError(t, err)
	assert.Equal(t, newOracle, rec.Oracle)

	_, err = env.engine.SetActualPrice(oracle, 1, 1)
	assert.ErrorIs(t, err, ErrOnlyOracle)
	_, err = env.engine.SetActualPrice(newOracle, 1, 1)
	assert.NoError(t, err)
}

func TestTransferOwnership(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())

	_, err := env.engine.TransferOwnership(addr1, addr1)
	assert.ErrorIs(t, err, ErrOnlyOwner)
	_, err = env.engine.TransferOwnership(owner, mana.Address{})
	assert.ErrorIs(t, err, ErrInvalidOwner)

	r, err := env.engine.TransferOwnership(owner, addr2)
	require.NoError(t, err)
	assert.Len(t, r.EventsByName("OwnershipTransferred"), 1)

	_, err = env.engine.SetOracle(owner, addr1)
	assert.ErrorIs(t, err, ErrOnlyOwner)
	_, err = env.engine.SetOracle(addr2, addr1)
	assert.NoError(t, err)

	assert.ErrorIs(t, env.engine.Initialize(addr1, addr1), ErrAlreadyInitialized)
}

func TestPeriodLifecycle(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	env.approveAndStake(t, addr1, mana.Units(100), 100)

	_, err := env.engine.SetActualPrice(oracle, 0, 100)
	assert.ErrorIs(t, err, ErrPeriodNotFound)
	_, err = env.engine.SetActualPrice(oracle, 2, 100)
	assert.ErrorIs(t, err, ErrPeriodNotFound)

	_, err = env.engine.SetActualPrice(oracle, 1, 100)
	require.NoError(t, err)
	_, err = env.engine.SetActualPrice(oracle, 1, 200)
	assert.ErrorIs(t, err, ErrPriceAlreadySet)
	assert.Equal(t, "Actual price already set.", err.Error())

	// stakes now go to the next period
	cur, err := env.engine.CurrentPeriod()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), cur)

	env.approveAndStake(t, addr1, mana.Units(10), 50)
	v, _ := env.engine.GetVote(2, addr1)
	assert.Equal(t, mana.Units(10), v.StakedAmount)
	p1, _ := env.engine.VotingPeriod(1)
	assert.Equal(t, mana.Units(100), p1.TotalStaked)

	p, _ := env.engine.VotingPeriod(1)
	assert.Equal(t, int64(100), p.ActualPrice)
}

func TestRewardDistribution(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	carol := mana.BytesToAddress([]byte("carol"))
	require.NoError(t, env.token.Transfer(owner, carol, mana.Units(1000)))

	env.approveAndStake(t, addr1, mana.Units(100), 100)
	env.approveAndStake(t, addr2, mana.Units(300), 90)
	env.approveAndStake(t, carol, mana.Units(100), 100)

	_, err := env.engine.SetActualPrice(oracle, 1, 100)
	require.NoError(t, err)

	ok, err := env.engine.IsEligible(1, addr1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = env.engine.IsEligible(1, addr2)
	assert.False(t, ok)

	pending, err := env.engine.PendingReward(1, addr1)
	require.NoError(t, err)
	assert.Equal(t, mana.Units(250), pending)

	pending, _ = env.engine.PendingReward(1, addr2)
	assert.Equal(t, 0, pending.Sign())

	_, err = env.engine.ClaimReward(addr2, 1)
	assert.ErrorIs(t, err, ErrNotEligible)

	_, err = env.engine.ClaimReward(addr1, 1)
	require.NoError(t, err)
	_, err = env.engine.ClaimReward(carol, 1)
	require.NoError(t, err)

	assert.Equal(t, mana.Units(1150), env.balance(t, addr1))
	assert.Equal(t, mana.Units(1150), env.balance(t, carol))
	assert.Equal(t, mana.Units(700), env.balance(t, addr2))
	assert.Equal(t, 0, env.balance(t, env.engine.Address()).Sign())

	ok, _ = env.engine.IsEligible(1, addr1)
	assert.False(t, ok)

	stakers, err := env.engine.Stakers(1, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []mana.Address{addr1, addr2, carol}, stakers)
}

func TestVoteStatusConsistentWithClaim(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	env.approveAndStake(t, addr1, mana.Units(100), 100)
	env.approveAndStake(t, addr2, mana.Units(300), 90)
	_, err := env.engine.SetActualPrice(oracle, 1, 100)
	require.NoError(t, err)

	v, ok, pending, err := env.engine.VoteStatus(1, addr1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, v.ClaimedReward)
	assert.Equal(t, 0, pending.Cmp(mana.Units(400)))

	done := make(chan error)
	go func() {
		_, err := env.engine.ClaimReward(addr1, 1)
		done <- err
	}()
	for claimed := false; !claimed; {
		select {
		case err := <-done:
			require.NoError(t, err)
			claimed = true
		default:
		}
		v, ok, pending, err := env.engine.VoteStatus(1, addr1)
		require.NoError(t, err)
		if v.ClaimedReward {
			assert.False(t, ok)
			assert.Equal(t, 0, pending.Sign())
		} else {
			assert.True(t, ok)
			assert.Equal(t, 0, pending.Cmp(mana.Units(400)))
		}
	}

	v, ok, pending, err = env.engine.VoteStatus(1, addr1)
	require.NoError(t, err)
	assert.True(t, v.ClaimedReward)
	assert.False(t, ok)
	assert.Equal(t, 0, pending.Sign())

	_, ok, _, err = env.engine.VoteStatus(1, addr2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMultiplierCappedByPool(t *testing.T) {
	env := newTestEnv(t, Config{Strategy: reward.Multiplier{Numerator: 3, Denominator: 1}})
	env.approveAndStake(t, addr1, mana.Units(100), 100)
	env.approveAndStake(t, addr2, mana.Units(100), 100)

	_, err := env.engine.SetActualPrice(oracle, 1, 100)
	require.NoError(t, err)

	_, err = env.engine.ClaimReward(addr1, 1)
	require.NoError(t, err)
	assert.Equal(t, mana.Units(1100), env.balance(t, addr1))

	// the pool is drained, the claim is recorded with nothing paid
	_, err = env.engine.ClaimReward(addr2, 1)
	require.NoError(t, err)
	assert.Equal(t, mana.Units(900), env.balance(t, addr2))
	v, _ := env.engine.GetVote(1, addr2)
	assert.True(t, v.ClaimedReward)
	assert.Equal(t, 0, v.Reward.Sign())

	p, _ := env.engine.VotingPeriod(1)
	assert.Equal(t, p.TotalStaked, p.TotalPaid)
}

type failingLedger struct {
	*token.Token
	failTransfer bool
	afterFrom    func()
}

func (l *failingLedger) Transfer(from, to mana.Address, amount *big.Int) error {
	if l.failTransfer {
		return errors.New("ledger unavailable")
	}
	return l.Token.Transfer(from, to, amount)
}

func (l *failingLedger) TransferFrom(spender, from, to mana.Address, amount *big.Int) error {
	if err := l.Token.TransferFrom(spender, from, to, amount); err != nil {
		return err
	}
	if l.afterFrom != nil {
		l.afterFrom()
	}
	return nil
}

func TestClaimPaymentFailureRestores(t *testing.T) {
	var ledger *failingLedger
	env := newTestEnvWithLedger(t, DefaultConfig(), func(tk *token.Token) Ledger {
		ledger = &failingLedger{Token: tk}
		return ledger
	})
	env.approveAndStake(t, addr1, mana.Units(100), 100)
	_, err := env.engine.SetActualPrice(oracle, 1, 100)
	require.NoError(t, err)
	seq, _ := env.engine.Seq()

	ledger.failTransfer = true
	_, err = env.engine.ClaimReward(addr1, 1)
	assert.Equal(t, reverts.LedgerFailure, reverts.KindOf(err))
	assert.Equal(t, "ledger unavailable", err.Error())

	v, _ := env.engine.GetVote(1, addr1)
	assert.False(t, v.ClaimedReward)
	p, _ := env.engine.VotingPeriod(1)
	assert.Equal(t, 0, p.TotalPaid.Sign())
	after, _ := env.engine.Seq()
	assert.Equal(t, seq, after)

	ledger.failTransfer = false
	_, err = env.engine.ClaimReward(addr1, 1)
	require.NoError(t, err)
	assert.Equal(t, mana.Units(1000), env.balance(t, addr1))
}

func TestStakeCommitFailureRefunds(t *testing.T) {
	var ledger *failingLedger
	env := newTestEnvWithLedger(t, DefaultConfig(), func(tk *token.Token) Ledger {
		ledger = &failingLedger{Token: tk}
		return ledger
	})

	// the engine keeps its own store, closed once the tokens moved
	engineDB, err := lvldb.NewMem()
	require.NoError(t, err)
	engine := New(mana.EngineAddress, state.NewStater(engineDB), ledger, env.clock, DefaultConfig())
	require.NoError(t, engine.Initialize(owner, oracle))
	ledger.afterFrom = func() { engineDB.Close() }

	require.NoError(t, env.token.Approve(addr1, engine.Address(), mana.Units(100)))
	_, err = engine.StakeTokens(addr1, mana.Units(100), 100)
	assert.Error(t, err)
	assert.False(t, reverts.IsRevertErr(err))

	assert.Equal(t, mana.Units(1000), env.balance(t, addr1))
	assert.Equal(t, 0, env.balance(t, engine.Address()).Sign())
	allowance, err := env.token.Allowance(addr1, engine.Address())
	require.NoError(t, err)
	assert.Equal(t, 0, allowance.Cmp(mana.Units(100)))
}

type plainLedger struct {
	tk *token.Token
}

func (l plainLedger) TransferFrom(spender, from, to mana.Address, amount *big.Int) error {
	return l.tk.TransferFrom(spender, from, to, amount)
}

func (l plainLedger) Transfer(from, to mana.Address, amount *big.Int) error {
	return l.tk.Transfer(from, to, amount)
}

func (l plainLedger) BalanceOf(addr mana.Address) (*big.Int, error) {
	return l.tk.BalanceOf(addr)
}

func TestStakeRefundWithoutApprover(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	var ledger Ledger = plainLedger{env.token}
	_, ok := ledger.(Approver)
	require.False(t, ok)

	engineDB, err := lvldb.NewMem()
	require.NoError(t, err)
	engine := New(mana.EngineAddress, state.NewStater(engineDB), ledger, env.clock, DefaultConfig())
	require.NoError(t, engine.Initialize(owner, oracle))
	require.NoError(t, env.token.Approve(addr1, engine.Address(), mana.Units(100)))
	require.NoError(t, env.token.TransferFrom(engine.Address(), addr1, engine.Address(), mana.Units(40)))

	engine.refundStake(addr1, mana.Units(40))
	assert.Equal(t, mana.Units(1000), env.balance(t, addr1))
	allowance, err := env.token.Allowance(addr1, engine.Address())
	require.NoError(t, err)
	assert.Equal(t, 0, allowance.Cmp(mana.Units(60)))
}

func TestReadsAreIdempotent(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())
	env.approveAndStake(t, addr1, mana.Units(100), 100)

	v1, _ := env.engine.GetVote(1, addr1)
	p1, _ := env.engine.VotingPeriod(1)
	for range 5 {
		v, err := env.engine.GetVote(1, addr1)
		require.NoError(t, err)
		assert.Equal(t, v1, v)
		p, err := env.engine.VotingPeriod(1)
		require.NoError(t, err)
		assert.Equal(t, p1, p)
	}
}

func TestSinks(t *testing.T) {
	env := newTestEnv(t, DefaultConfig())

	var got []*Receipt
	env.engine.AddSink(SinkFunc(func(r *Receipt) error {
		got = append(got, r)
		return nil
	}))
	env.engine.AddSink(SinkFunc(func(*Receipt) error {
		return errors.New("sink down")
	}))

	env.approveAndStake(t, addr1, mana.Units(100), 100)
	_, err := env.engine.SetActualPrice(addr1, 1, 100)
	require.Error(t, err)
	_, err = env.engine.SetActualPrice(oracle, 1, 100)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "stake", got[0].Op)
	assert.Equal(t, "setActualPrice", got[1].Op)
	assert.Equal(t, got[0].Seq+1, got[1].Seq)
}
