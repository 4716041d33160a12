// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/manaproject/mana/eventdb"
	"github.com/manaproject/mana/genesis"
	"github.com/manaproject/mana/health"
	"github.com/manaproject/mana/log"
	"github.com/manaproject/mana/state"
)

var logger = log.WithContext("pkg", "node")

// Options tunes the background routines.
type Options struct {
	CheckClock       bool
	HouseKeepPeriod  time.Duration
	ClockCheckPeriod time.Duration
}

// Node runs the background routines of a serving process. All mutations
// arrive through the API, so the node itself only watches.
type Node struct {
	deployment *genesis.Deployment
	stater     *state.Stater
	eventDB    *eventdb.EventDB
	health     *health.Health
	options    Options
}

// New creates a node. eventDB may be nil when event logs are skipped.
func New(deployment *genesis.Deployment, stater *state.Stater, eventDB *eventdb.EventDB, h *health.Health, options Options) *Node {
	if options.HouseKeepPeriod <= 0 {
		options.HouseKeepPeriod = time.Minute
	}
	if options.ClockCheckPeriod <= 0 {
		options.ClockCheckPeriod = 10 * time.Minute
	}
	return &Node{
		deployment: deployment,
		stater:     stater,
		eventDB:    eventDB,
		health:     h,
		options:    options,
	}
}

// Run blocks until ctx is done or a routine fails.
func (n *Node) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return n.houseKeeping(ctx)
	})
	if n.options.CheckClock {
		g.Go(func() error {
			n.clockKeeping(ctx)
			return nil
		})
	}

	n.health.Ready(true)
	defer n.health.Ready(false)
	logger.Info("node started")

	err := g.Wait()
	if err != nil {
		logger.Error("node stopped", "err", err)
	}
	return err
}
