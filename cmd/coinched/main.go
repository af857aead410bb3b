package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/decred/slog"
	_ "github.com/mattn/go-sqlite3"
	"github.com/vctt94/coinched/pkg/logging"
	"github.com/vctt94/coinched/pkg/server"
	"github.com/vctt94/coinched/pkg/utils"
	"google.golang.org/grpc"
)

func realMain() error {
	var (
		dataDir     string
		dbPath      string
		host        string
		port        int
		portFile    string
		seed        int64
		debugLevel  string
		logFile     string
		idleTimeout time.Duration
		sweepEvery  time.Duration
		grpcHealth  string
		workers     int
	)
	flag.StringVar(&dataDir, "datadir", utils.AppDataDir("coinched"), "Directory for the database and logs")
	flag.StringVar(&dbPath, "db", "", "Path to SQLite hand history (default <datadir>/coinched.sqlite, \"none\" disables it)")
	flag.StringVar(&host, "host", "127.0.0.1", "Host to listen on")
	flag.IntVar(&port, "port", 3000, "Port to listen on (0 for random free port)")
	flag.StringVar(&portFile, "portfile", "", "If set, write selected port to this file")
	flag.Int64Var(&seed, "seed", 0, "Deterministic RNG seed for decks (0 = random)")
	flag.StringVar(&debugLevel, "debuglevel", "info", "Logging level: trace, debug, info, warn, error; per subsystem with SUBSYS=level")
	flag.StringVar(&logFile, "logfile", "", "Log file (default <datadir>/logs/coinched.log)")
	flag.DurationVar(&idleTimeout, "idletimeout", 0, "Cancel parties whose players are silent for this long (0 = never)")
	flag.DurationVar(&sweepEvery, "sweepinterval", 30*time.Second, "How often idle players are looked for")
	flag.StringVar(&grpcHealth, "grpchealth", "", "If set, serve the gRPC health service on this address")
	flag.IntVar(&workers, "historyworkers", 2, "Hand history writers")
	flag.Parse()

	if err := utils.EnsureDataDirExists(dataDir); err != nil {
		return err
	}
	if logFile == "" {
		logFile = filepath.Join(dataDir, "logs", "coinched.log")
	}
	logBackend, err := logging.NewLogBackend(logging.LogConfig{
		LogFile:    logFile,
		DebugLevel: debugLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logBackend.Close()
	log := logBackend.Logger("SRVR")

	if seed == 0 {
		// Allow env override for convenience
		if env := os.Getenv("COINCHED_SEED"); env != "" {
			v, err := strconv.ParseInt(env, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid COINCHED_SEED: %w", err)
			}
			seed = v
		}
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var (
		db       server.Database
		observer server.PartyObserver
	)
	if dbPath != "none" {
		if dbPath == "" {
			dbPath = filepath.Join(dataDir, "coinched.sqlite")
		}
		db, err = server.NewDatabase(dbPath)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer db.Close()

		processor := server.NewEventProcessor(db, logBackend.Logger("HIST"), 256, workers)
		processor.Start()
		defer processor.Stop()
		observer = processor
		log.Infof("Hand history stored in %s", dbPath)
	}

	var idle server.IdlePolicy = server.NeverExpire{}
	if idleTimeout > 0 {
		idle = server.IdleTimeout(idleTimeout)
	}
	gm := server.NewGameManager(server.Config{
		Seed:       seed,
		IdlePolicy: idle,
		Observer:   observer,
		LogBackend: logBackend,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if idleTimeout > 0 {
		go gm.RunSweeper(ctx, sweepEvery)
	}

	lis, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	if portFile != "" {
		_, p, _ := net.SplitHostPort(lis.Addr().String())
		if err := os.WriteFile(portFile, []byte(p), 0600); err != nil {
			return err
		}
	}

	health := server.NewHealthReporter()
	if grpcHealth != "" {
		glis, err := net.Listen("tcp", grpcHealth)
		if err != nil {
			return fmt.Errorf("failed to listen for gRPC health: %w", err)
		}
		grpcSrv := grpc.NewServer()
		health.Register(grpcSrv)
		go func() {
			if err := grpcSrv.Serve(glis); err != nil {
				log.Errorf("gRPC health server: %v", err)
			}
		}()
		defer grpcSrv.GracefulStop()
		log.Infof("gRPC health service on %s", glis.Addr())
	}

	httpSrv := newHTTPServer(ctx, server.NewHTTPServer(gm, db, logBackend.Logger("SRVR")))
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(lis)
	}()
	health.SetServing(true)
	log.Infof("Listening on %s (seed %d)", lis.Addr(), seed)

	select {
	case err := <-errCh:
		health.Shutdown()
		return err
	case <-ctx.Done():
	}

	log.Infof("Shutting down")
	health.Shutdown()
	return stopHTTP(httpSrv, 5*time.Second, log)
}

// newHTTPServer serves handler with request contexts derived from ctx, so
// pending long-polls end once ctx is done.
func newHTTPServer(ctx context.Context, handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

// stopHTTP shuts srv down, closing the connections still open after timeout.
func stopHTTP(srv *http.Server, timeout time.Duration, log slog.Logger) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	switch {
	case err == nil, errors.Is(err, http.ErrServerClosed):
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		log.Warnf("Forcing shutdown after %v", timeout)
		if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
	return err
}

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
