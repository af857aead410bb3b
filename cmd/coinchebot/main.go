package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/decred/slog"
	"github.com/vctt94/coinched/pkg/client"
	"github.com/vctt94/coinched/pkg/logging"
)

var (
	dataDir    = flag.String("datadir", "", "Directory to load config file from")
	host       = flag.String("host", "", "coinched server address (host:port or URL)")
	logFile    = flag.String("logfile", "", "Path to log file")
	debugLevel = flag.String("debuglevel", "", "Debug level for logging")
	numBots    = flag.Int("bots", 3, "Number of bots to run")
	maxHands   = flag.Int("hands", 0, "Hands each bot plays before leaving (0 = until the party ends)")
	parties    = flag.Int("parties", 1, "Parties each bot joins in a row (0 = forever)")
)

// playParties joins parties one after the other until n were played or ctx
// is done.
func playParties(ctx context.Context, cfg *client.AppConfig, log slog.Logger, n int) error {
	for i := 0; n == 0 || i < n; i++ {
		c := client.New(client.Config{
			Backend:  client.NewHTTPBackend(cfg.Server, nil, log),
			Frontend: client.NewBot(log),
			Log:      log,
			MaxHands: cfg.MaxHands,
		})
		err := c.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		view := c.View()
		log.Infof("Party %s over after %d hands, scores %v", c.Info().PartyID, view.HandsPlayed, view.Scores)
	}
	return nil
}

func realMain() error {
	flag.Parse()

	cfg, err := client.LoadConfig("coinchebot", *dataDir, client.ConfigOverrides{
		Server:     *host,
		LogFile:    *logFile,
		DebugLevel: *debugLevel,
		MaxHands:   *maxHands,
	})
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if *numBots <= 0 {
		return errors.New("need at least one bot")
	}

	logBackend, err := logging.NewLogBackend(logging.LogConfig{
		LogFile:    cfg.LogFile,
		DebugLevel: cfg.DebugLevel,
	})
	if err != nil {
		return fmt.Errorf("logging error: %w", err)
	}
	defer logBackend.Close()

	log := logBackend.Logger("BOTS")
	log.Infof("Starting %d bots against %s", *numBots, cfg.Server)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < *numBots; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := playParties(ctx, cfg, log, *parties); err != nil {
				log.Errorf("Bot %d: %v", i, err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("bot %d: %w", i, err))
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	log.Infof("Bots exited")
	return errors.Join(errs...)
}

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
