// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package settlement implements the prediction staking engine: stakes are
// locked against a price prediction for the current voting period, the
// oracle reports the realized price, and matching stakers claim a share of
// the period pool.
package settlement

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/manaproject/mana/builtin/reverts"
	"github.com/manaproject/mana/builtin/settlement/access"
	"github.com/manaproject/mana/builtin/settlement/period"
	"github.com/manaproject/mana/builtin/settlement/reward"
	"github.com/manaproject/mana/builtin/settlement/vote"
	"github.com/manaproject/mana/builtin/solidity"
	"github.com/manaproject/mana/log"
	"github.com/manaproject/mana/mana"
	"github.com/manaproject/mana/state"
)

var logger = log.WithContext("pkg", "settlement")

func SetLogger(l log.Logger) {
	logger = l
}

var slotSeq = mana.BytesToBytes32([]byte("receipt-seq"))

// Engine is the settlement engine. Mutating operations are serialized and
// either fully commit or leave no trace.
type Engine struct {
	addr   mana.Address
	stater *state.Stater
	ledger Ledger
	clock  Clock
	config Config

	mu    sync.RWMutex
	sinks []EventSink
}

// New create a new engine instance at addr.
func New(addr mana.Address, stater *state.Stater, ledger Ledger, clock Clock, config Config) *Engine {
	def := DefaultConfig()
	if config.HighStakeThreshold == nil {
		config.HighStakeThreshold = def.HighStakeThreshold
	}
	if config.Strategy == nil {
		config.Strategy = def.Strategy
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Engine{
		addr:   addr,
		stater: stater,
		ledger: ledger,
		clock:  clock,
		config: config,
	}
}

// contract binds the engine services to one state.
type contract struct {
	st      *state.State
	access  *access.Service
	periods *period.Service
	votes   *vote.Service
	seq     *solidity.Raw[uint64]
}

func (e *Engine) bind(st *state.State) *contract {
	sctx := solidity.NewContext(e.addr, st)
	return &contract{
		st:      st,
		access:  access.New(sctx),
		periods: period.New(sctx),
		votes:   vote.New(sctx),
		seq:     solidity.NewRaw[uint64](sctx, slotSeq),
	}
}

func (e *Engine) newContract() *contract {
	return e.bind(e.stater.NewState())
}

// Address returns the engine address, which holds the staked tokens.
func (e *Engine) Address() mana.Address {
	return e.addr
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// AddSink registers a receiver of committed receipts.
func (e *Engine) AddSink(sink EventSink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sinks = append(e.sinks, sink)
}

func (e *Engine) newReceipt(c *contract, op string, caller mana.Address, now uint64) (*Receipt, error) {
	seq, err := c.seq.Get()
	if err != nil {
		return nil, err
	}
	seq++
	if err := c.seq.Upsert(seq); err != nil {
		return nil, err
	}
	return &Receipt{Seq: seq, Op: op, Caller: caller, Timestamp: now}, nil
}

func (e *Engine) publish(r *Receipt) {
	for _, sink := range e.sinks {
		if err := sink.Publish(r); err != nil {
			metricSinkErrors().Add(1)
			logger.Warn("failed to publish receipt", "seq", r.Seq, "op", r.Op, "err", err)
		}
	}
}

func (e *Engine) commit(c *contract) error {
	stage := c.st.Stage()
	if err := stage.Commit(); err != nil {
		return errors.Wrap(err, "commit settlement state")
	}
	logger.Trace("state committed", "changes", stage.Len(), "hash", stage.Hash())
	return nil
}

// refundStake returns amount to staker after a stake that moved tokens but
// failed to commit, restoring the allowance it spent when the ledger allows.
func (e *Engine) refundStake(staker mana.Address, amount *big.Int) {
	if err := e.ledger.Transfer(e.addr, staker, amount); err != nil {
		logger.Error("failed to refund stake", "staker", staker, "amount", amount, "allowanceSpent", amount, "err", err)
		return
	}
	a, ok := e.ledger.(Approver)
	if !ok {
		logger.Warn("stake refunded, allowance not restored", "staker", staker, "allowanceSpent", amount)
		return
	}
	allowance, err := a.Allowance(staker, e.addr)
	if err == nil {
		err = a.Approve(staker, e.addr, allowance.Add(allowance, amount))
	}
	if err != nil {
		logger.Error("failed to restore allowance", "staker", staker, "allowanceSpent", amount, "err", err)
	}
}

// Initialize sets the owner and oracle. It can only be done once.
func (e *Engine) Initialize(owner, oracle mana.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.newContract()
	rec, err := c.access.Get()
	if err != nil {
		return err
	}
	if !rec.Owner.IsZero() {
		return ErrAlreadyInitialized
	}
	if owner.IsZero() {
		return ErrInvalidOwner
	}
	c.access.SetOwner(owner)
	c.access.SetOracle(oracle)
	if err := e.commit(c); err != nil {
		return err
	}
	logger.Info("settlement initialized", "owner", owner, "oracle", oracle)
	return nil
}

// SetOracle replaces the oracle. Owner only.
func (e *Engine) SetOracle(caller, oracle mana.Address) (*Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.setOracle(caller, oracle)
	observeOp("setOracle", err)
	return r, err
}

func (e *Engine) setOracle(caller, oracle mana.Address) (*Receipt, error) {
	c := e.newContract()
	rec, err := c.access.Get()
	if err != nil {
		return nil, err
	}
	if !rec.IsOwner(caller) {
		logger.Debug("set oracle rejected", "caller", caller)
		return nil, ErrOnlyOwner
	}
	c.access.SetOracle(oracle)

	r, err := e.newReceipt(c, "setOracle", caller, e.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := r.emit(e.addr, EventOracleChanged, rec.Oracle, oracle); err != nil {
		return nil, err
	}
	if err := e.commit(c); err != nil {
		return nil, err
	}
	logger.Info("oracle changed", "previous", rec.Oracle, "oracle", oracle)
	e.publish(r)
	return r, nil
}

// TransferOwnership hands the owner role to newOwner. Owner only.
func (e *Engine) TransferOwnership(caller, newOwner mana.Address) (*Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.transferOwnership(caller, newOwner)
	observeOp("transferOwnership", err)
	return r, err
}

func (e *Engine) transferOwnership(caller, newOwner mana.Address) (*Receipt, error) {
	c := e.newContract()
	rec, err := c.access.Get()
	if err != nil {
		return nil, err
	}
	if !rec.IsOwner(caller) {
		return nil, ErrOnlyOwner
	}
	if newOwner.IsZero() {
		return nil, ErrInvalidOwner
	}
	c.access.SetOwner(newOwner)

	r, err := e.newReceipt(c, "transferOwnership", caller, e.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := r.emit(e.addr, EventOwnershipTransferred, rec.Owner, newOwner); err != nil {
		return nil, err
	}
	if err := e.commit(c); err != nil {
		return nil, err
	}
	logger.Info("ownership transferred", "previous", rec.Owner, "owner", newOwner)
	e.publish(r)
	return r, nil
}

// StakeTokens locks amount of caller's tokens on predictedPrice in the current period.
// The engine must be approved to spend amount on the ledger.
func (e *Engine) StakeTokens(caller mana.Address, amount *big.Int, predictedPrice int64) (*Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.stakeTokens(caller, amount, predictedPrice)
	observeOp("stake", err)
	return r, err
}

func (e *Engine) stakeTokens(caller mana.Address, amount *big.Int, predictedPrice int64) (*Receipt, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrZeroStake
	}

	c := e.newContract()
	now := e.clock.Now()

	id, err := c.periods.Current()
	if err != nil {
		return nil, err
	}
	p, err := c.periods.Open(id, now)
	if err != nil {
		return nil, err
	}

	v, err := c.votes.Get(id, caller)
	if err != nil {
		return nil, err
	}
	if !v.IsEmpty() {
		if e.config.RestakePolicy != RestakeAccumulate {
			logger.Debug("restake rejected", "period", id, "staker", caller)
			return nil, ErrAlreadyStaked
		}
		if v.PredictedPrice != predictedPrice {
			return nil, ErrPredictionChanged
		}
	}

	created, err := c.votes.Add(id, caller, predictedPrice, amount)
	if err != nil {
		return nil, err
	}
	if err := c.periods.AddStake(p, caller, amount, created); err != nil {
		if errors.Is(err, period.ErrOverflow) {
			return nil, ErrStakeOverflow
		}
		return nil, err
	}

	r, err := e.newReceipt(c, "stake", caller, now)
	if err != nil {
		return nil, err
	}
	if err := r.emit(e.addr, EventStaked, id, caller, amount, predictedPrice); err != nil {
		return nil, err
	}
	highStake := amount.Cmp(e.config.HighStakeThreshold) >= 0
	if highStake {
		if err := r.emit(e.addr, EventHighStakeWarning, caller, amount); err != nil {
			return nil, err
		}
	}

	if err := e.ledger.TransferFrom(e.addr, caller, e.addr, amount); err != nil {
		logger.Debug("stake transfer failed", "staker", caller, "amount", amount, "err", err)
		return nil, ledgerFailure(err)
	}
	if err := e.commit(c); err != nil {
		e.refundStake(caller, amount)
		return nil, err
	}

	if highStake {
		metricHighStake().Add(1)
		logger.Warn("high stake", "staker", caller, "amount", mana.FormatUnits(amount), "period", id)
	}
	logger.Debug("staked", "period", id, "staker", caller, "amount", amount, "price", predictedPrice)
	metricCurrentPeriod().Set(int64(id))
	e.publish(r)
	return r, nil
}

// SetActualPrice records the realized price of a period. Oracle only.
func (e *Engine) SetActualPrice(caller mana.Address, periodID uint64, price int64) (*Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.setActualPrice(caller, periodID, price)
	observeOp("setActualPrice", err)
	return r, err
}

func (e *Engine) setActualPrice(caller mana.Address, periodID uint64, price int64) (*Receipt, error) {
	c := e.newContract()
	rec, err := c.access.Get()
	if err != nil {
		return nil, err
	}
	if !rec.IsOracle(caller) {
		logger.Debug("set price rejected", "caller", caller, "period", periodID)
		return nil, ErrOnlyOracle
	}

	current, err := c.periods.Current()
	if err != nil {
		return nil, err
	}
	if periodID == 0 || periodID > current {
		return nil, ErrPeriodNotFound
	}
	p, err := c.periods.Get(periodID)
	if err != nil {
		return nil, err
	}
	if p.PriceSet {
		return nil, ErrPriceAlreadySet
	}

	now := e.clock.Now()
	if err := c.periods.SetPrice(p, price, now); err != nil {
		return nil, err
	}

	r, err := e.newReceipt(c, "setActualPrice", caller, now)
	if err != nil {
		return nil, err
	}
	if err := r.emit(e.addr, EventActualPriceSet, periodID, price); err != nil {
		return nil, err
	}
	if err := e.commit(c); err != nil {
		return nil, err
	}

	if periodID == current {
		metricCurrentPeriod().Set(int64(current + 1))
	}
	logger.Info("actual price set", "period", periodID, "price", price, "staked", mana.FormatUnits(p.TotalStaked))
	e.publish(r)
	return r, nil
}

// ClaimReward pays caller's reward for a settled period, at most once.
func (e *Engine) ClaimReward(caller mana.Address, periodID uint64) (*Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.claimReward(caller, periodID)
	observeOp("claim", err)
	return r, err
}

func (e *Engine) claimReward(caller mana.Address, periodID uint64) (*Receipt, error) {
	c := e.newContract()
	p, err := c.periods.Get(periodID)
	if err != nil {
		return nil, err
	}
	if !p.PriceSet {
		return nil, ErrPriceNotSet
	}
	v, err := c.votes.Get(periodID, caller)
	if err != nil {
		return nil, err
	}
	if !eligible(p, v) {
		logger.Debug("claim rejected", "period", periodID, "staker", caller)
		return nil, ErrNotEligible
	}

	amount, err := e.computeReward(c, p, v)
	if err != nil {
		return nil, err
	}
	if err := c.votes.MarkClaimed(periodID, caller, amount); err != nil {
		return nil, err
	}
	if err := c.periods.AddPaid(p, amount); err != nil {
		return nil, err
	}

	now := e.clock.Now()
	r, err := e.newReceipt(c, "claim", caller, now)
	if err != nil {
		return nil, err
	}
	if err := r.emit(e.addr, EventRewardClaimed, periodID, caller, amount); err != nil {
		return nil, err
	}

	// the claim is committed before paying so it can't be paid twice;
	// a failed payment restores the previous state.
	stage := c.st.Stage()
	undo, err := stage.Undo()
	if err != nil {
		return nil, errors.Wrap(err, "build undo stage")
	}
	if err := stage.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit settlement state")
	}
	if amount.Sign() > 0 {
		if err := e.ledger.Transfer(e.addr, caller, amount); err != nil {
			if uerr := undo.Commit(); uerr != nil {
				logger.Error("failed to restore claim", "period", periodID, "staker", caller, "err", uerr)
			}
			return nil, ledgerFailure(err)
		}
	}

	logger.Debug("reward claimed", "period", periodID, "staker", caller, "amount", amount)
	e.publish(r)
	return r, nil
}

func eligible(p *period.Period, v *vote.Vote) bool {
	return p.PriceSet &&
		!v.IsEmpty() &&
		v.PredictedPrice == p.ActualPrice &&
		!v.ClaimedReward
}

// computeReward runs the strategy and caps the result at the unpaid pool.
func (e *Engine) computeReward(c *contract, p *period.Period, v *vote.Vote) (*big.Int, error) {
	tally, err := c.votes.Tally(p.ID, p.ActualPrice)
	if err != nil {
		return nil, err
	}
	amount, err := e.config.Strategy.Reward(&reward.Input{
		Stake:        v.StakedAmount,
		TotalStaked:  p.TotalStaked,
		WinnersStake: tally.Stake,
		Winners:      tally.Count,
	})
	if err != nil {
		return nil, reverts.Wrap(reverts.InvalidState, err)
	}
	if remaining := p.Remaining(); amount.Cmp(remaining) > 0 {
		logger.Debug("reward capped by pool", "period", p.ID, "reward", amount, "remaining", remaining)
		amount = remaining
	}
	return amount, nil
}
