package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/vctt94/coinched/pkg/client"
	"github.com/vctt94/coinched/pkg/coinche"
	"github.com/vctt94/coinched/pkg/server"
)

// Common flags
var (
	host     = flag.String("host", client.DefaultServer, "coinched server address (host:port or URL)")
	playerID = flag.String("id", "", "Player ID returned by join")
	timeout  = flag.Duration("timeout", 0, "Give up after this long (0 = no limit)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [global flags] <command> [args]\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  health                   Print server status (JSON)")
		fmt.Fprintln(os.Stderr, "  join                     Wait for a party; prints player ID and seat (JSON)")
		fmt.Fprintln(os.Stderr, "  hand                     Print the cards in hand")
		fmt.Fprintln(os.Stderr, "  scores                   Print the party scores (JSON)")
		fmt.Fprintln(os.Stderr, "  phase                    Print the party phase (JSON)")
		fmt.Fprintln(os.Stderr, "  history                  Print the finished hands (JSON)")
		fmt.Fprintln(os.Stderr, "  pull [AFTER]             Wait for the event after AFTER (default -1)")
		fmt.Fprintln(os.Stderr, "  stream [AFTER]           Print events until the party ends")
		fmt.Fprintln(os.Stderr, "  bid SUIT TARGET          Bid, e.g. bid hearts 100")
		fmt.Fprintln(os.Stderr, "  pass | coinche           Auction actions")
		fmt.Fprintln(os.Stderr, "  play CARD                Play a card, e.g. play 10h")
		fmt.Fprintln(os.Stderr, "  leave                    Leave the party")
		fmt.Fprintln(os.Stderr, "\nGlobal flags:")
		flag.PrintDefaults()
	}

	// Suppress default flag errors to avoid noisy usage on subcommands
	flag.CommandLine.SetOutput(io.Discard)
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if *timeout > 0 {
		var tcancel context.CancelFunc
		ctx, tcancel = context.WithTimeout(ctx, *timeout)
		defer tcancel()
	}

	b := client.NewHTTPBackend(*host, nil, nil)
	if cmd != "health" && cmd != "join" {
		if *playerID == "" {
			fatal("-id is required for " + cmd)
		}
		id, err := server.ParsePlayerID(*playerID)
		if err != nil {
			fatalErr(err)
		}
		b.Resume(id)
	}

	if err := run(ctx, b, cmd, args); err != nil {
		fatalErr(err)
	}
}

func run(ctx context.Context, b *client.HTTPBackend, cmd string, args []string) error {
	switch cmd {
	case "health":
		return printResult(b.Health(ctx))
	case "join":
		return printResult(b.Join(ctx))
	case "hand":
		hand, err := b.Hand(ctx)
		if err != nil {
			return err
		}
		fmt.Println(hand)
		return nil
	case "scores":
		return printResult(b.Scores(ctx))
	case "phase":
		return printResult(b.Phase(ctx))
	case "history":
		return printResult(b.History(ctx))
	case "pull":
		after, err := parseAfter(args)
		if err != nil {
			return err
		}
		return printResult(b.Pull(ctx, after))
	case "stream":
		after, err := parseAfter(args)
		if err != nil {
			return err
		}
		return handleStream(ctx, b, after)
	case "bid":
		if len(args) != 2 {
			return fmt.Errorf("bid requires SUIT TARGET")
		}
		suit, err := coinche.ParseSuit(args[0])
		if err != nil {
			return err
		}
		target, err := coinche.ParseTarget(args[1])
		if err != nil {
			return err
		}
		return printResult(b.Bid(ctx, suit, target))
	case "pass":
		return printResult(b.Pass(ctx))
	case "coinche":
		return printResult(b.Coinche(ctx))
	case "play":
		if len(args) != 1 {
			return fmt.Errorf("play requires CARD")
		}
		card, err := coinche.ParseCard(args[0])
		if err != nil {
			return err
		}
		return printResult(b.PlayCard(ctx, card))
	case "leave":
		return b.Leave(ctx)
	default:
		flag.Usage()
		os.Exit(2)
	}
	return nil
}

// handleStream prints events as they arrive until the party is cancelled.
// Transport errors are retried every second.
func handleStream(ctx context.Context, b *client.HTTPBackend, after int) error {
	enc := json.NewEncoder(os.Stdout)
	var serr *client.ServerError
	for {
		ev, err := b.Pull(ctx, after)
		switch {
		case client.IsPartyGone(err):
			return nil
		case errors.As(err, &serr):
			return err
		case err != nil && ctx.Err() == nil:
			fmt.Fprintf(os.Stderr, "pull: %v\n", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		case err != nil:
			return nil
		}
		if err := enc.Encode(ev); err != nil {
			return err
		}
		after = ev.ID
	}
}

func parseAfter(args []string) (int, error) {
	if len(args) == 0 {
		return -1, nil
	}
	after, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid event id %q", args[0])
	}
	return after, nil
}

func printResult[T any](v T, err error) error {
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

func fatalErr(err error) {
	fatal(err.Error())
}
