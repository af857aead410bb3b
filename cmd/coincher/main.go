package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/vctt94/coinched/pkg/client"
	"github.com/vctt94/coinched/pkg/logging"
	"github.com/vctt94/coinched/pkg/ui"
	"github.com/vctt94/coinched/pkg/utils"
)

var (
	dataDir    = flag.String("datadir", "", "Directory to load config file from")
	host       = flag.String("host", "", "coinched server address (host:port or URL)")
	logFile    = flag.String("logfile", "", "Path to log file")
	debugLevel = flag.String("debuglevel", "", "Debug level for logging")
	maxHands   = flag.Int("hands", 0, "Leave after this many hands (0 = play until the party ends)")
)

func realMain() error {
	flag.Parse()

	cfg, err := client.LoadConfig("coincher", *dataDir, client.ConfigOverrides{
		Server:     *host,
		LogFile:    *logFile,
		DebugLevel: *debugLevel,
		MaxHands:   *maxHands,
	})
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := utils.EnsureDataDirExists(cfg.DataDir); err != nil {
		return err
	}

	// The terminal belongs to the UI: logs only go to the file.
	logBackend, err := logging.NewLogBackend(logging.LogConfig{
		LogFile:    cfg.LogFile,
		DebugLevel: cfg.DebugLevel,
		NoStdout:   true,
	})
	if err != nil {
		return fmt.Errorf("logging error: %w", err)
	}
	defer logBackend.Close()

	log := logBackend.Logger("CLNT")
	log.Infof("Using server address: %s", cfg.Server)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	backend := client.NewHTTPBackend(cfg.Server, nil, logBackend.Logger("CLNT"))
	return ui.Run(ctx, backend, log, cfg.MaxHands)
}

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
