// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/manaproject/mana/admin"
	"github.com/manaproject/mana/builtin/settlement"
	"github.com/manaproject/mana/cmd/mana/httpserver"
	"github.com/manaproject/mana/config"
	"github.com/manaproject/mana/eventdb"
	"github.com/manaproject/mana/genesis"
	"github.com/manaproject/mana/health"
	"github.com/manaproject/mana/log"
	"github.com/manaproject/mana/lvldb"
	"github.com/manaproject/mana/mana"
	"github.com/manaproject/mana/metrics"
)

func initLogger(ctx *cli.Context) *slog.LevelVar {
	logLevel := new(slog.LevelVar)
	logLevel.Set(log.FromLegacyLevel(int(ctx.Uint64(verbosityFlag.Name))))

	overrides := make(map[string]slog.Leveler)
	if ctx.IsSet(verbositySettlementFlag.Name) {
		overrides["settlement"] = log.FromLegacyLevel(int(ctx.Uint64(verbositySettlementFlag.Name)))
	}

	var output slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		output = log.JSONHandlerWithLevel(os.Stderr, log.LevelTrace)
	} else {
		fd := os.Stderr.Fd()
		useColor := (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("TERM") != "dumb"
		output = log.NewTerminalHandlerWithLevel(os.Stderr, log.LevelTrace, useColor)
	}
	log.SetDefault(log.NewLogger(log.NewPkgLevelHandler(output, logLevel, overrides)))
	return logLevel
}

func loadConfig(ctx *cli.Context) *config.Config {
	path := ctx.String(configFlag.Name)
	if path == "" {
		cli.ShowAppHelp(ctx)
		fmt.Println("config flag not specified")
		os.Exit(1)
	}
	c, err := config.Load(path)
	if err != nil {
		fatal(fmt.Sprintf("load config [%v]: %v", path, err))
	}
	return c
}

func makeDataDir(ctx *cli.Context) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name))
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		fatal(fmt.Sprintf("create data dir [%v]: %v", dataDir, err))
	}
	return dataDir
}

func openMainDB(ctx *cli.Context, dataDir string) *lvldb.LevelDB {
	cacheMB := normalizeCacheSize(int(ctx.Uint64(cacheFlag.Name)))
	logger.Debug("cache size(MB)", "size", cacheMB)

	// Ensure Go's GC ignores the database cache for trigger percentage
	gogc := math.Max(20, math.Min(100, 100/(float64(cacheMB)/1024)))
	logger.Debug("sanitize Go's GC trigger", "percent", int(gogc))
	debug.SetGCPercent(int(gogc))

	fdCache := suggestFDCache()
	logger.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		fatal(fmt.Sprintf("open main database [%v]: %v", dir, err))
	}
	return db
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 16 {
		sizeMB = 16
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		fatal("failed to get fd limit:", err)
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

func openMemMainDB() *lvldb.LevelDB {
	db, err := lvldb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open main database: %v", err))
	}
	return db
}

func openEventDB(dataDir string) *eventdb.EventDB {
	dir := filepath.Join(dataDir, "events.db")
	db, err := eventdb.New(dir)
	if err != nil {
		fatal(fmt.Sprintf("open event database [%v]: %v", dir, err))
	}
	return db
}

func openMemEventDB() *eventdb.EventDB {
	db, err := eventdb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open event database: %v", err))
	}
	return db
}

// syncEventDB aligns the event log with the operation counter of the engine.
// Events past the engine are dropped. Missing events cannot be recovered.
func syncEventDB(engine *settlement.Engine, eventDB *eventdb.EventDB) {
	seq, err := engine.Seq()
	if err != nil {
		fatal("read engine seq:", err)
	}
	newest, err := eventDB.NewestSeq()
	if err != nil {
		fatal("read event db:", err)
	}
	switch {
	case newest > seq:
		logger.Warn("event db ahead of engine, truncating", "engine", seq, "events", newest)
		if err := eventDB.Truncate(seq); err != nil {
			fatal("truncate event db:", err)
		}
	case newest < seq:
		logger.Warn("event db behind engine, some events are missing", "engine", seq, "events", newest)
	}
}

func newHealth(d *genesis.Deployment) *health.Health {
	h := health.New(func() error {
		_, err := d.Engine.Seq()
		return err
	})
	d.Engine.AddSink(h)
	return h
}

func startAPIServer(ctx *cli.Context, backend *httpserver.Backend, apiLogs *atomic.Bool) (string, func()) {
	config := httpserver.APIConfig{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
		SkipLogs:             ctx.Bool(skipLogsFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		PingInterval:         time.Duration(ctx.Uint64(apiPingIntervalFlag.Name)) * time.Second,
	}
	handler, closeSubs := httpserver.NewAPIHandler(backend, config)

	timeout := time.Duration(ctx.Uint64(apiTimeoutFlag.Name)) * time.Millisecond
	url, stop, err := httpserver.StartAPIServer(ctx.String(apiAddrFlag.Name), handler, timeout)
	if err != nil {
		fatal(err)
	}
	return url, func() {
		closeSubs()
		stop()
	}
}

func startMetricsServer(ctx *cli.Context) (string, func()) {
	if !ctx.Bool(enableMetricsFlag.Name) {
		return "", func() {}
	}
	metrics.InitializePrometheusMetrics()
	url, stop, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
	if err != nil {
		fatal(err)
	}
	return url, stop
}

func startAdminServer(ctx *cli.Context, logLevel *slog.LevelVar, apiLogs *atomic.Bool, h *health.Health) (string, func()) {
	if !ctx.Bool(enableAdminFlag.Name) {
		return "", func() {}
	}
	url, stop, err := admin.StartServer(ctx.String(adminAddrFlag.Name), logLevel, apiLogs, h)
	if err != nil {
		fatal(err)
	}
	return url, stop
}

func printStartupMessage(d *genesis.Deployment, domain, dataDir, apiURL, metricsURL, adminURL string) {
	access, err := d.Engine.Access()
	if err != nil {
		fatal("read engine access:", err)
	}
	current, err := d.Engine.CurrentPeriod()
	if err != nil {
		fatal("read current period:", err)
	}
	supply, err := d.Token.TotalSupply()
	if err != nil {
		fatal("read total supply:", err)
	}

	fmt.Printf(`Starting %v
    Engine         [ %v ]
    Owner          [ %v ]
    Oracle         [ %v ]
    Domain         [ %v ]
    Supply         [ %v %v ]
    Current period [ %v ]
    Data dir       [ %v ]
    API portal     [ %v ]%v%v
`,
		fullVersion(),
		d.Engine.Address(),
		access.Owner,
		access.Oracle,
		domain,
		mana.FormatUnits(supply), mana.TokenSymbol,
		current,
		dataDir,
		apiURL,
		optionalLine("Metrics", metricsURL),
		optionalLine("Admin", adminURL),
	)
}

func optionalLine(name, url string) string {
	if url == "" {
		return ""
	}
	return fmt.Sprintf("\n    %-14v [ %v ]", name, url)
}

func printSoloStartupMessage(accounts []genesis.DevAccount) {
	var b strings.Builder
	b.WriteString("Dev accounts (owner, oracle, stakers...)\n")
	for _, a := range accounts {
		fmt.Fprintf(&b, "    %v  %x\n", a.Address, a.PrivateKey.D.FillBytes(make([]byte, 32)))
	}
	fmt.Print(b.String())
}
