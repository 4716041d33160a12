// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strconv"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/manaproject/mana/api"
	"github.com/manaproject/mana/mana"
	"github.com/manaproject/mana/manaclient"
	"github.com/manaproject/mana/manaclient/httpclient"
	"github.com/manaproject/mana/manaclient/wsclient"
)

var clientFlags = []cli.Flag{nodeFlag, domainFlag}

var signerFlags = []cli.Flag{nodeFlag, domainFlag, keyFlag, keyFileFlag}

var clientCommand = cli.Command{
	Name:  "client",
	Usage: "talk to a running node",
	Subcommands: []cli.Command{
		{
			Name:   "summary",
			Usage:  "show the engine roles and current period",
			Flags:  clientFlags,
			Action: summaryAction,
		},
		{
			Name:   "period",
			Usage:  "show a voting period",
			Flags:  append([]cli.Flag{periodFlag}, clientFlags...),
			Action: periodAction,
		},
		{
			Name:   "vote",
			Usage:  "show the vote of an address in a period",
			Flags:  append([]cli.Flag{periodFlag, addressFlag}, clientFlags...),
			Action: voteAction,
		},
		{
			Name:   "account",
			Usage:  "show balance, allowance to the engine and nonce",
			Flags:  append([]cli.Flag{addressFlag}, clientFlags...),
			Action: accountAction,
		},
		{
			Name:   "approve",
			Usage:  "allow the engine to take --amount from the signer",
			Flags:  append([]cli.Flag{amountFlag}, signerFlags...),
			Action: approveAction,
		},
		{
			Name:   "stake",
			Usage:  "stake --amount on --price in the current period",
			Flags:  append([]cli.Flag{amountFlag, priceFlag}, signerFlags...),
			Action: stakeAction,
		},
		{
			Name:   "set-price",
			Usage:  "settle a period with the actual --price (oracle only)",
			Flags:  append([]cli.Flag{periodFlag, priceFlag}, signerFlags...),
			Action: setPriceAction,
		},
		{
			Name:   "claim",
			Usage:  "claim the reward of a settled period",
			Flags:  append([]cli.Flag{periodFlag}, signerFlags...),
			Action: claimAction,
		},
		{
			Name:   "set-oracle",
			Usage:  "replace the oracle with --address (owner only)",
			Flags:  append([]cli.Flag{addressFlag}, signerFlags...),
			Action: setOracleAction,
		},
		{
			Name:   "transfer-ownership",
			Usage:  "hand the engine to --address (owner only)",
			Flags:  append([]cli.Flag{addressFlag}, signerFlags...),
			Action: transferOwnershipAction,
		},
		{
			Name:   "send",
			Usage:  "transfer --amount tokens to --address",
			Flags:  append([]cli.Flag{addressFlag, amountFlag}, signerFlags...),
			Action: sendAction,
		},
		{
			Name:   "watch",
			Usage:  "stream engine events",
			Flags:  append([]cli.Flag{posFlag, eventFlag}, clientFlags...),
			Action: watchAction,
		},
	},
}

func newClient(ctx *cli.Context) (*manaclient.Client, error) {
	return manaclient.New(ctx.String(nodeFlag.Name), manaclient.WithDomain(ctx.String(domainFlag.Name)))
}

func parsePeriod(ctx *cli.Context) (string, error) {
	s := ctx.String(periodFlag.Name)
	if s == "" || s == httpclient.CurrentPeriod {
		return httpclient.CurrentPeriod, nil
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return "", errors.Wrap(err, "period")
	}
	return httpclient.PeriodID(id), nil
}

// settledPeriod resolves --period to an id. "current" is the period the
// oracle settles next.
func settledPeriod(ctx *cli.Context, c *manaclient.Client) (uint64, error) {
	s := ctx.String(periodFlag.Name)
	if s != "" && s != httpclient.CurrentPeriod {
		return strconv.ParseUint(s, 10, 64)
	}
	summary, err := c.GetSummary()
	if err != nil {
		return 0, err
	}
	return summary.CurrentPeriod, nil
}

func parseAddress(ctx *cli.Context) (mana.Address, error) {
	s := ctx.String(addressFlag.Name)
	if s == "" {
		return mana.Address{}, errors.New("address flag not specified")
	}
	return mana.ParseAddress(s)
}

func summaryAction(ctx *cli.Context) error {
	c, err := newClient(ctx)
	if err != nil {
		return err
	}
	summary, err := c.GetSummary()
	if err != nil {
		return err
	}
	return printJSON(summary)
}

func periodAction(ctx *cli.Context) error {
	c, err := newClient(ctx)
	if err != nil {
		return err
	}
	id, err := parsePeriod(ctx)
	if err != nil {
		return err
	}
	p, err := c.GetPeriod(id)
	if err != nil {
		return err
	}
	return printJSON(p)
}

func voteAction(ctx *cli.Context) error {
	c, err := newClient(ctx)
	if err != nil {
		return err
	}
	id, err := parsePeriod(ctx)
	if err != nil {
		return err
	}
	addr, err := parseAddress(ctx)
	if err != nil {
		return err
	}
	v, err := c.GetVote(id, addr)
	if err != nil {
		return err
	}
	return printJSON(v)
}

func accountAction(ctx *cli.Context) error {
	c, err := newClient(ctx)
	if err != nil {
		return err
	}
	addr, err := parseAddress(ctx)
	if err != nil {
		return err
	}
	acc, err := c.GetAccount(addr)
	if err != nil {
		return err
	}
	return printJSON(acc)
}

func parseAmount(ctx *cli.Context) (*big.Int, error) {
	s := ctx.String(amountFlag.Name)
	if s == "" {
		return nil, errors.New("amount flag not specified")
	}
	return mana.ParseUnits(s)
}

// signed runs a signing command with the client and the loaded key.
func signed(ctx *cli.Context, fn func(c *manaclient.Client, key *ecdsa.PrivateKey) (any, error)) error {
	c, err := newClient(ctx)
	if err != nil {
		return err
	}
	key, err := loadKey(ctx)
	if err != nil {
		return err
	}
	res, err := fn(c, key)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func approveAction(ctx *cli.Context) error {
	amount, err := parseAmount(ctx)
	if err != nil {
		return err
	}
	return signed(ctx, func(c *manaclient.Client, key *ecdsa.PrivateKey) (any, error) {
		return c.ApproveEngine(key, amount)
	})
}

func stakeAction(ctx *cli.Context) error {
	amount, err := parseAmount(ctx)
	if err != nil {
		return err
	}
	if !ctx.IsSet(priceFlag.Name) {
		return errors.New("price flag not specified")
	}
	price := ctx.Int64(priceFlag.Name)
	return signed(ctx, func(c *manaclient.Client, key *ecdsa.PrivateKey) (any, error) {
		return c.StakeTokens(key, amount, price)
	})
}

func setPriceAction(ctx *cli.Context) error {
	if !ctx.IsSet(priceFlag.Name) {
		return errors.New("price flag not specified")
	}
	price := ctx.Int64(priceFlag.Name)
	return signed(ctx, func(c *manaclient.Client, key *ecdsa.PrivateKey) (any, error) {
		id, err := settledPeriod(ctx, c)
		if err != nil {
			return nil, err
		}
		return c.SetPrice(key, id, price)
	})
}

func claimAction(ctx *cli.Context) error {
	return signed(ctx, func(c *manaclient.Client, key *ecdsa.PrivateKey) (any, error) {
		id, err := settledPeriod(ctx, c)
		if err != nil {
			return nil, err
		}
		return c.Claim(key, id)
	})
}

func setOracleAction(ctx *cli.Context) error {
	addr, err := parseAddress(ctx)
	if err != nil {
		return err
	}
	return signed(ctx, func(c *manaclient.Client, key *ecdsa.PrivateKey) (any, error) {
		return c.ChangeOracle(key, addr)
	})
}

func transferOwnershipAction(ctx *cli.Context) error {
	addr, err := parseAddress(ctx)
	if err != nil {
		return err
	}
	return signed(ctx, func(c *manaclient.Client, key *ecdsa.PrivateKey) (any, error) {
		return c.ChangeOwner(key, addr)
	})
}

func sendAction(ctx *cli.Context) error {
	addr, err := parseAddress(ctx)
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx)
	if err != nil {
		return err
	}
	return signed(ctx, func(c *manaclient.Client, key *ecdsa.PrivateKey) (any, error) {
		return c.SendTokens(key, addr, amount)
	})
}

func watchAction(ctx *cli.Context) error {
	c, err := newClient(ctx)
	if err != nil {
		return err
	}
	var pos *uint64
	if p := ctx.Int64(posFlag.Name); p >= 0 {
		u := uint64(p)
		pos = &u
	}
	sub, err := c.WS().SubscribeEvents(wsclient.EventQuery(pos, ctx.String(eventFlag.Name)))
	if err != nil {
		return err
	}
	exit := handleExitSignal()
	go func() {
		<-exit.Done()
		sub.Unsubscribe()
	}()

	for ev := range sub.EventChan {
		if ev.Error != nil {
			if exit.Err() != nil {
				return nil
			}
			return ev.Error
		}
		if err := printEvent(ev.Data); err != nil {
			return err
		}
	}
	return nil
}

func printEvent(ev *api.FilteredEvent) error {
	fmt.Printf("#%v.%v %v by %v\n", ev.Meta.Seq, ev.Meta.Index, ev.Meta.Op, ev.Meta.Caller)
	return printJSON(ev)
}
