// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import "github.com/manaproject/mana/metrics"

var metricEventsInserted = metrics.LazyLoadCounter("eventdb_events_inserted_count")
