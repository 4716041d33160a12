// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/manaproject/mana/metrics"
)

// MaxClockOffset is the tolerated drift of the local clock. Period start
// and price set times come from it.
const MaxClockOffset = 5 * time.Second

var (
	metricCurrentPeriod = metrics.LazyLoadGauge("node_current_period")
	metricSeq           = metrics.LazyLoadGauge("node_operation_seq")
	metricEventLag      = metrics.LazyLoadGauge("node_event_lag")
)

func (n *Node) houseKeeping(ctx context.Context) error {
	logger.Debug("enter house keeping")
	defer logger.Debug("leave house keeping")

	ticker := time.NewTicker(n.options.HouseKeepPeriod)
	defer ticker.Stop()

	for {
		if err := n.report(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// report logs and exports the engine position. A failing store stops the node.
func (n *Node) report() error {
	engine := n.deployment.Engine
	seq, err := engine.Seq()
	if err != nil {
		return errors.Wrap(err, "read engine seq")
	}
	current, err := engine.CurrentPeriod()
	if err != nil {
		return errors.Wrap(err, "read current period")
	}
	metricSeq().Set(int64(seq))
	metricCurrentPeriod().Set(int64(current))

	if n.eventDB != nil {
		newest, err := n.eventDB.NewestSeq()
		if err != nil {
			return errors.Wrap(err, "read event db")
		}
		metricEventLag().Set(int64(seq) - int64(newest))
	}

	if changed, hit, miss := n.stater.CacheStats().Stats(); changed {
		logger.Debug("state cache stats updated", "hit", hit, "miss", miss)
	}
	logger.Debug("engine status", "seq", seq, "period", current)
	return nil
}

func (n *Node) clockKeeping(ctx context.Context) {
	ticker := time.NewTicker(n.options.ClockCheckPeriod)
	defer ticker.Stop()

	for {
		checkClockOffset()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func checkClockOffset() {
	resp, err := ntp.Query("pool.ntp.org")
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}
	if offset > MaxClockOffset {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}
