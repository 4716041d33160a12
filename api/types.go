// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api defines the JSON types of the REST interface.
package api

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/manaproject/mana/builtin/settlement"
	"github.com/manaproject/mana/builtin/settlement/period"
	"github.com/manaproject/mana/builtin/settlement/vote"
	"github.com/manaproject/mana/eventdb"
	"github.com/manaproject/mana/mana"
)

// Signed methods. The method name is part of the signing hash.
const (
	MethodStake             = "stake"
	MethodSetActualPrice    = "setActualPrice"
	MethodClaimReward       = "claimReward"
	MethodSetOracle         = "setOracle"
	MethodTransferOwnership = "transferOwnership"
	MethodApprove           = "approve"
	MethodTransfer          = "transfer"
)

// Summary is the engine overview.
type Summary struct {
	Engine             mana.Address          `json:"engine"`
	Token              mana.Address          `json:"token"`
	Owner              mana.Address          `json:"owner"`
	Oracle             mana.Address          `json:"oracle"`
	CurrentPeriod      uint64                `json:"currentPeriod"`
	HighStakeThreshold *math.HexOrDecimal256 `json:"highStakeThreshold"`
	RestakePolicy      string                `json:"restakePolicy"`
	RewardStrategy     string                `json:"rewardStrategy"`
	Seq                uint64                `json:"seq"`
}

type Period struct {
	ID           uint64                `json:"id"`
	Opened       bool                  `json:"opened"`
	TotalStaked  *math.HexOrDecimal256 `json:"totalStaked"`
	ActualPrice  *int64                `json:"actualPrice"` // null until set
	PriceSetTime uint64                `json:"priceSetTime"`
	StartTime    uint64                `json:"startTime"`
	TotalPaid    *math.HexOrDecimal256 `json:"totalPaid"`
	Stakers      uint64                `json:"stakers"`
}

func ConvertPeriod(p *period.Period) *Period {
	jp := &Period{
		ID:           p.ID,
		Opened:       p.Opened,
		TotalStaked:  (*math.HexOrDecimal256)(p.TotalStaked),
		PriceSetTime: p.PriceSetTime,
		StartTime:    p.StartTime,
		TotalPaid:    (*math.HexOrDecimal256)(p.TotalPaid),
		Stakers:      p.Stakers,
	}
	if p.PriceSet {
		price := p.ActualPrice
		jp.ActualPrice = &price
	}
	return jp
}

type Vote struct {
	PeriodID       uint64                `json:"periodId"`
	Staker         mana.Address          `json:"staker"`
	PredictedPrice int64                 `json:"predictedPrice"`
	StakedAmount   *math.HexOrDecimal256 `json:"stakedAmount"`
	ClaimedReward  bool                  `json:"claimedReward"`
	Reward         *math.HexOrDecimal256 `json:"reward"`
	Eligible       bool                  `json:"eligible"`
	PendingReward  *math.HexOrDecimal256 `json:"pendingReward"`
}

func ConvertVote(periodID uint64, staker mana.Address, v *vote.Vote, eligible bool, pending *big.Int) *Vote {
	return &Vote{
		PeriodID:       periodID,
		Staker:         staker,
		PredictedPrice: v.PredictedPrice,
		StakedAmount:   (*math.HexOrDecimal256)(v.StakedAmount),
		ClaimedReward:  v.ClaimedReward,
		Reward:         (*math.HexOrDecimal256)(v.Reward),
		Eligible:       eligible,
		PendingReward:  (*math.HexOrDecimal256)(pending),
	}
}

// Event is an emitted event with its resolved name.
type Event struct {
	Name    string         `json:"name"`
	Address mana.Address   `json:"address"`
	Topics  []mana.Bytes32 `json:"topics"`
	Data    hexutil.Bytes  `json:"data"`
}

type Receipt struct {
	Seq       uint64       `json:"seq"`
	Op        string       `json:"op"`
	Caller    mana.Address `json:"caller"`
	Timestamp uint64       `json:"timestamp"`
	Events    []*Event     `json:"events"`
}

func ConvertReceipt(r *settlement.Receipt) *Receipt {
	jr := &Receipt{
		Seq:       r.Seq,
		Op:        r.Op,
		Caller:    r.Caller,
		Timestamp: r.Timestamp,
		Events:    make([]*Event, 0, len(r.Events)),
	}
	for _, ev := range r.Events {
		jr.Events = append(jr.Events, &Event{
			Name:    ev.Name(),
			Address: ev.Address,
			Topics:  ev.Topics,
			Data:    ev.Data,
		})
	}
	return jr
}

// EventsByName returns the events named name.
func (r *Receipt) EventsByName(name string) []*Event {
	var out []*Event
	for _, ev := range r.Events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

// request payloads, carried in auth envelopes

type StakeRequest struct {
	Amount         *math.HexOrDecimal256 `json:"amount"`
	PredictedPrice int64                 `json:"predictedPrice"`
}

type SetPriceRequest struct {
	PeriodID uint64 `json:"periodId"`
	Price    int64  `json:"price"`
}

type ClaimRequest struct {
	PeriodID uint64 `json:"periodId"`
}

type AddressRequest struct {
	Address mana.Address `json:"address"`
}

type ApproveRequest struct {
	Spender mana.Address          `json:"spender"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
}

type TransferRequest struct {
	To     mana.Address          `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type Account struct {
	Address   mana.Address          `json:"address"`
	Balance   *math.HexOrDecimal256 `json:"balance"`
	Allowance *math.HexOrDecimal256 `json:"allowance"` // granted to the engine
	Nonce     uint64                `json:"nonce"`
}

type TokenInfo struct {
	Address     mana.Address          `json:"address"`
	Symbol      string                `json:"symbol"`
	Decimals    uint8                 `json:"decimals"`
	Owner       mana.Address          `json:"owner"`
	TotalSupply *math.HexOrDecimal256 `json:"totalSupply"`
}

// event log queries

type EventCriteria struct {
	Address *mana.Address `json:"address"`
	Event   string        `json:"event"` // shortcut for topic0
	Topic0  *mana.Bytes32 `json:"topic0"`
	Topic1  *mana.Bytes32 `json:"topic1"`
	Topic2  *mana.Bytes32 `json:"topic2"`
	Topic3  *mana.Bytes32 `json:"topic3"`
}

type Range struct {
	Unit string  `json:"unit"` // "seq" or "time"
	From *uint64 `json:"from"`
	To   *uint64 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Caller      *mana.Address    `json:"caller"`
	Range       *Range           `json:"range"`
	Options     *Options         `json:"options"`
	Order       string           `json:"order"`
}

type LogMeta struct {
	Seq       uint64       `json:"seq"`
	Index     uint32       `json:"index"`
	Op        string       `json:"op"`
	Caller    mana.Address `json:"caller"`
	Timestamp uint64       `json:"timestamp"`
}

type FilteredEvent struct {
	Event
	Meta LogMeta `json:"meta"`
}

func ConvertEvent(e *eventdb.Event) *FilteredEvent {
	ev := e.ToSettlementEvent()
	return &FilteredEvent{
		Event: Event{
			Name:    ev.Name(),
			Address: ev.Address,
			Topics:  ev.Topics,
			Data:    ev.Data,
		},
		Meta: LogMeta{
			Seq:       e.Seq,
			Index:     e.Index,
			Op:        e.Op,
			Caller:    e.Caller,
			Timestamp: e.Timestamp,
		},
	}
}
