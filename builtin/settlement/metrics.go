// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package settlement

import (
	"github.com/manaproject/mana/builtin/reverts"
	"github.com/manaproject/mana/metrics"
)

var (
	metricOps           = metrics.LazyLoadCounterVec("settlement_ops_count", []string{"op", "result"})
	metricHighStake     = metrics.LazyLoadCounter("settlement_high_stake_warnings_count")
	metricCurrentPeriod = metrics.LazyLoadGauge("settlement_current_period")
	metricSinkErrors    = metrics.LazyLoadCounter("settlement_sink_errors_count")
)

func observeOp(op string, err error) {
	result := "ok"
	if err != nil {
		if kind := reverts.KindOf(err); kind != 0 {
			result = kind.String()
		} else {
			result = "error"
		}
	}
	metricOps().AddWithLabel(1, map[string]string{"op": op, "result": result})
}
