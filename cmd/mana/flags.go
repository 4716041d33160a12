// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/manaproject/mana/log"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to the deployment config file (yaml)",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for databases",
	}
	cacheFlag = cli.Uint64Flag{
		Name:  "cache",
		Usage: "megabytes of ram allocated to the storage cache",
		Value: 512,
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.Uint64Flag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:  "api-logs-limit",
		Value: 1000,
		Usage: "limit the number of logs returned by /logs API",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Value: 0,
		Usage: "all queries with duration (ms) above the threshold will be logged",
	}
	apiPingIntervalFlag = cli.Uint64Flag{
		Name:  "api-ping-interval",
		Value: 30,
		Usage: "interval (seconds) of websocket pings on subscriptions",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	skipLogsFlag = cli.BoolFlag{
		Name:  "skip-logs",
		Usage: "skip writing event logs (/logs and /subscriptions API will be disabled)",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}

	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: log.LegacyLevelInfo,
		Usage: "log verbosity (0-9)",
	}
	verbositySettlementFlag = cli.Uint64Flag{
		Name:  "verbosity-settlement",
		Value: log.LegacyLevelInfo,
		Usage: "log verbosity for the settlement engine (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}

	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}
	disableNTPFlag = cli.BoolFlag{
		Name:  "disable-ntp",
		Usage: "disable the periodic clock offset check",
	}

	// solo mode only flags
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "storage option, if set data will be saved to disk",
	}

	// client flags
	nodeFlag = cli.StringFlag{
		Name:  "node",
		Value: "http://localhost:8669",
		Usage: "API url of the node",
	}
	domainFlag = cli.StringFlag{
		Name:  "domain",
		Value: "mana",
		Usage: "signing domain of the node",
	}
	keyFlag = cli.StringFlag{
		Name:  "key",
		Usage: "private key as hex (for testing)",
	}
	keyFileFlag = cli.StringFlag{
		Name:  "key-file",
		Usage: "file holding the hex private key, read from the terminal if neither key flag is set",
	}
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "token amount in MNAT, decimals allowed",
	}
	priceFlag = cli.Int64Flag{
		Name:  "price",
		Usage: "predicted or actual price",
	}
	periodFlag = cli.StringFlag{
		Name:  "period",
		Value: "current",
		Usage: "voting period id or 'current'",
	}
	addressFlag = cli.StringFlag{
		Name:  "address",
		Usage: "account address",
	}
	posFlag = cli.Int64Flag{
		Name:  "pos",
		Value: -1,
		Usage: "seq to start streaming from, the next event if negative",
	}
	eventFlag = cli.StringFlag{
		Name:  "event",
		Usage: "event name filter",
	}
)
