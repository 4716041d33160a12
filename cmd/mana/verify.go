// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/manaproject/mana/builtin/settlement"
	"github.com/manaproject/mana/eventdb"
	"github.com/manaproject/mana/genesis"
	"github.com/manaproject/mana/mana"
	"github.com/manaproject/mana/state"
)

const stakersPage = 256

func verifyAction(ctx *cli.Context) error {
	initLogger(ctx)

	builder := genesis.NewDevnet(settlement.DefaultConfig())
	if ctx.IsSet(configFlag.Name) {
		b, err := genesis.FromConfig(loadConfig(ctx))
		if err != nil {
			fatal("genesis:", err)
		}
		builder = b
	}

	dataDir := makeDataDir(ctx)
	mainDB := openMainDB(ctx, dataDir)
	defer mainDB.Close()

	deployment, err := builder.Build(state.NewStater(mainDB))
	if err != nil {
		return err
	}

	var eventDB *eventdb.EventDB
	if !ctx.Bool(skipLogsFlag.Name) {
		eventDB = openEventDB(dataDir)
		defer eventDB.Close()
	}
	return verifyDeployment(handleExitSignal(), deployment, eventDB)
}

// periodTally is what a period should add up to.
type periodTally struct {
	ID      uint64 `json:"id"`
	Stakers uint64 `json:"stakers"`
	Staked  string `json:"staked"`
	Paid    string `json:"paid"`
}

// verifyDeployment checks every period: votes sum to the pool, paid rewards
// never exceed it, the event log agrees, and the engine holds exactly the
// unpaid pools.
func verifyDeployment(ctx context.Context, d *genesis.Deployment, eventDB *eventdb.EventDB) error {
	current, err := d.Engine.CurrentPeriod()
	if err != nil {
		return err
	}

	fmt.Println(">> Verifying periods <<")
	bar := pb.New64(int64(current)).
		Set64(0).
		SetMaxWidth(90).
		Start()
	defer func() { bar.NotPrint = true }()

	remaining := new(big.Int)
	for id := uint64(1); id <= current; id++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := d.Engine.VotingPeriod(id)
		if err != nil {
			return err
		}
		if !p.Exists() {
			bar.Increment()
			continue
		}
		if p.TotalPaid.Cmp(p.TotalStaked) > 0 {
			return errors.Errorf("period %v: paid %v over pool %v", id, p.TotalPaid, p.TotalStaked)
		}
		remaining.Add(remaining, p.Remaining())

		stored := periodTally{ID: id, Stakers: p.Stakers, Staked: p.TotalStaked.String(), Paid: p.TotalPaid.String()}
		fromVotes, err := tallyVotes(d.Engine, id)
		if err != nil {
			return err
		}
		if !reflect.DeepEqual(stored, *fromVotes) {
			fmt.Println("\nDiff votes of period", id)
			fmt.Println(jsonDiff(stored, fromVotes))
			return errors.New("incorrect votes")
		}

		if eventDB != nil {
			fromEvents, err := tallyEvents(ctx, eventDB, d.Engine.Address(), id)
			if err != nil {
				return err
			}
			if !reflect.DeepEqual(stored, *fromEvents) {
				fmt.Println("\nDiff events of period", id)
				fmt.Println(jsonDiff(stored, fromEvents))
				return errors.New("incorrect events")
			}
		}
		bar.Increment()
	}
	bar.Finish()

	balance, err := d.Token.BalanceOf(d.Engine.Address())
	if err != nil {
		return err
	}
	if balance.Cmp(remaining) != 0 {
		return errors.Errorf("engine holds %v %v, unpaid pools %v", mana.FormatUnits(balance), mana.TokenSymbol, mana.FormatUnits(remaining))
	}
	fmt.Printf("%v periods verified, engine holds %v %v\n", current, mana.FormatUnits(balance), mana.TokenSymbol)
	return nil
}

func tallyVotes(engine *settlement.Engine, id uint64) (*periodTally, error) {
	var (
		stakers uint64
		staked  = new(big.Int)
		paid    = new(big.Int)
	)
	for offset := uint64(0); ; offset += stakersPage {
		addrs, err := engine.Stakers(id, offset, stakersPage)
		if err != nil {
			return nil, err
		}
		for _, addr := range addrs {
			v, err := engine.GetVote(id, addr)
			if err != nil {
				return nil, err
			}
			stakers++
			staked.Add(staked, v.StakedAmount)
			if v.Reward != nil {
				paid.Add(paid, v.Reward)
			}
		}
		if len(addrs) < stakersPage {
			break
		}
	}
	return &periodTally{ID: id, Stakers: stakers, Staked: staked.String(), Paid: paid.String()}, nil
}

func tallyEvents(ctx context.Context, db *eventdb.EventDB, engine mana.Address, id uint64) (*periodTally, error) {
	periodTopic := mana.BytesToBytes32(new(big.Int).SetUint64(id).Bytes())
	staked := settlement.EventStaked.ID()
	claimed := settlement.EventRewardClaimed.ID()

	var (
		stakers = make(map[mana.Address]struct{})
		tally   = &periodTally{ID: id}
		total   = new(big.Int)
		paid    = new(big.Int)
	)
	for offset := uint64(0); ; offset += stakersPage {
		events, err := db.FilterEvents(ctx, &eventdb.Filter{
			CriteriaSet: []*eventdb.Criteria{
				{Address: &engine, Topics: [eventdb.MaxTopics]*mana.Bytes32{&staked, &periodTopic}},
				{Address: &engine, Topics: [eventdb.MaxTopics]*mana.Bytes32{&claimed, &periodTopic}},
			},
			Options: &eventdb.Options{Offset: offset, Limit: stakersPage},
		})
		if err != nil {
			return nil, err
		}
		for _, e := range events {
			name, args, err := e.ToSettlementEvent().Decode()
			if err != nil {
				return nil, err
			}
			amount, _ := args["amount"].(*big.Int)
			if amount == nil {
				return nil, errors.Errorf("seq %v: %v without amount", e.Seq, name)
			}
			if name == "Staked" {
				if user, ok := args["user"].(mana.Address); ok {
					stakers[user] = struct{}{}
				}
				total.Add(total, amount)
			} else {
				paid.Add(paid, amount)
			}
		}
		if len(events) < stakersPage {
			break
		}
	}
	tally.Stakers = uint64(len(stakers))
	tally.Staked = total.String()
	tally.Paid = paid.String()
	return tally, nil
}

func jsonDiff(expected, actual any) string {
	e, _ := json.MarshalIndent(expected, "", "  ")
	a, _ := json.MarshalIndent(actual, "", "  ")
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(e)),
		B:        difflib.SplitLines(string(a)),
		FromFile: "Stored",
		FromDate: "",
		ToFile:   "Recomputed",
		ToDate:   "",
		Context:  1,
	})
	return diff
}
