// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/manaproject/mana/auth"
	"github.com/manaproject/mana/builtin/settlement"
	"github.com/manaproject/mana/cmd/mana/httpserver"
	"github.com/manaproject/mana/cmd/mana/node"
	"github.com/manaproject/mana/eventdb"
	"github.com/manaproject/mana/genesis"
	"github.com/manaproject/mana/log"
	"github.com/manaproject/mana/lvldb"
	"github.com/manaproject/mana/state"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

var nodeFlags = []cli.Flag{
	dataDirFlag,
	cacheFlag,
	apiAddrFlag,
	apiCorsFlag,
	apiTimeoutFlag,
	apiLogsLimitFlag,
	apiSlowQueriesThresholdFlag,
	apiPingIntervalFlag,
	enableAPILogsFlag,
	skipLogsFlag,
	pprofFlag,
	verbosityFlag,
	verbositySettlementFlag,
	jsonLogsFlag,
	enableMetricsFlag,
	metricsAddrFlag,
	enableAdminFlag,
	adminAddrFlag,
	disableNTPFlag,
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Mana",
		Usage:     "Prediction staking and settlement node",
		Copyright: "2026 The MANA developers",
		Flags:     append([]cli.Flag{configFlag}, nodeFlags...),
		Action:    defaultAction,
		Commands: []cli.Command{
			{
				Name:   "solo",
				Usage:  "single node devnet with funded dev accounts",
				Flags:  append([]cli.Flag{persistFlag}, nodeFlags...),
				Action: soloAction,
			},
			{
				Name:  "verify",
				Usage: "check the stored periods against the token ledger and the event log",
				Flags: []cli.Flag{
					configFlag,
					dataDirFlag,
					cacheFlag,
					skipLogsFlag,
					verbosityFlag,
				},
				Action: verifyAction,
			},
			clientCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)
	cfg := loadConfig(ctx)
	builder, err := genesis.FromConfig(cfg)
	if err != nil {
		fatal("genesis:", err)
	}

	dataDir := makeDataDir(ctx)
	mainDB := openMainDB(ctx, dataDir)
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	eventDB := openEventDB(dataDir)
	defer func() { logger.Info("closing event database..."); eventDB.Close() }()

	return run(ctx, logLevel, builder, cfg.Domain, dataDir, mainDB, eventDB)
}

func soloAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)

	var (
		mainDB  *lvldb.LevelDB
		eventDB *eventdb.EventDB
		dataDir string
	)
	if ctx.Bool(persistFlag.Name) {
		dataDir = makeDataDir(ctx)
		mainDB = openMainDB(ctx, dataDir)
		eventDB = openEventDB(dataDir)
	} else {
		dataDir = "Memory"
		mainDB = openMemMainDB()
		eventDB = openMemEventDB()
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()
	defer func() { logger.Info("closing event database..."); eventDB.Close() }()

	printSoloStartupMessage(genesis.DevAccounts())
	return run(ctx, logLevel, genesis.NewDevnet(settlement.DefaultConfig()), auth.DefaultDomain, dataDir, mainDB, eventDB)
}

func run(
	ctx *cli.Context,
	logLevel *slog.LevelVar,
	builder *genesis.Builder,
	domain string,
	dataDir string,
	mainDB *lvldb.LevelDB,
	eventDB *eventdb.EventDB,
) error {
	stater := state.NewStater(mainDB)
	deployment, err := builder.Build(stater)
	if err != nil {
		fatal("deploy:", err)
	}

	skipLogs := ctx.Bool(skipLogsFlag.Name)
	if !skipLogs {
		syncEventDB(deployment.Engine, eventDB)
		deployment.Engine.AddSink(eventDB)
	}
	h := newHealth(deployment)

	apiLogs := new(atomic.Bool)
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	backend := &httpserver.Backend{
		Deployment: deployment,
		Auth:       auth.New(domain, mainDB),
		EventDB:    eventDB,
	}
	apiURL, stopAPI := startAPIServer(ctx, backend, apiLogs)
	defer func() { logger.Info("stopping API server..."); stopAPI() }()

	metricsURL, stopMetrics := startMetricsServer(ctx)
	defer func() { logger.Info("stopping metrics server..."); stopMetrics() }()

	adminURL, stopAdmin := startAdminServer(ctx, logLevel, apiLogs, h)
	defer func() { logger.Info("stopping admin server..."); stopAdmin() }()

	printStartupMessage(deployment, domain, dataDir, apiURL, metricsURL, adminURL)

	var nodeEventDB *eventdb.EventDB
	if !skipLogs {
		nodeEventDB = eventDB
	}
	return node.New(deployment, stater, nodeEventDB, h, node.Options{
		CheckClock: !ctx.Bool(disableNTPFlag.Name),
	}).Run(handleExitSignal())
}
