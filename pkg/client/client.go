package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/slog"
	"github.com/vctt94/coinched/pkg/coinche"
	"github.com/vctt94/coinched/pkg/event"
	"github.com/vctt94/coinched/pkg/server"
	"github.com/vctt94/coinched/pkg/statemachine"
)

// Backend is the connection to a coinched server, bound to one player once
// joined.
type Backend interface {
	Join(ctx context.Context) (server.NewPartyInfo, error)
	Bid(ctx context.Context, trump coinche.Suit, target coinche.Target) (event.Event, error)
	Pass(ctx context.Context) (event.Event, error)
	Coinche(ctx context.Context) (event.Event, error)
	PlayCard(ctx context.Context, card coinche.Card) (event.Event, error)
	Pull(ctx context.Context, after int) (event.Event, error)
	Leave(ctx context.Context) error
}

// AuctionActionKind is what a player does when asked to bid.
type AuctionActionKind int

const (
	AuctionLeave AuctionActionKind = iota
	AuctionPass
	AuctionCoinche
	AuctionBid
)

// AuctionAction is the answer of a frontend to AskBid.
type AuctionAction struct {
	Kind   AuctionActionKind
	Suit   coinche.Suit
	Target coinche.Target
}

// GameAction is the answer of a frontend to AskCard.
type GameAction struct {
	Leave bool
	Card  coinche.Card
}

// PlayedCard is a card on the table.
type PlayedCard struct {
	Seat coinche.Seat
	Card coinche.Card
}

// TableView is what a player knows about the party.
type TableView struct {
	Seat     coinche.Seat
	Hand     coinche.Hand
	First    coinche.Seat
	Turn     coinche.Seat
	Contract *coinche.Contract
	Trick    []PlayedCard
	// LastTrick is the previous trick, kept until the next one starts.
	LastTrick   []PlayedCard
	Scores      [2]int
	HandsPlayed int
}

// MyTurn reports whether the viewing player is expected to act.
func (v TableView) MyTurn() bool {
	return v.Turn == v.Seat
}

// Frontend shows the party to a player and asks for decisions.
type Frontend interface {
	// Show is called for every event of the party, including a synthetic
	// YourTurn right before AskBid or AskCard.
	Show(ev event.Event, view TableView)
	ShowError(err error)
	AskBid(ctx context.Context, view TableView) AuctionAction
	AskCard(ctx context.Context, view TableView) GameAction
}

// Config configures a Client.
type Config struct {
	Backend  Backend
	Frontend Frontend
	Log      slog.Logger
	// MaxHands makes the client leave after that many hands. Zero plays
	// until the party ends.
	MaxHands int
}

// Client plays one party: it joins, follows the event stream and asks its
// frontend for actions when it is the player's turn.
type Client struct {
	backend Backend
	front   Frontend
	log     slog.Logger
	cfg     Config

	ctx  context.Context
	info server.NewPartyInfo
	view TableView
	last int
	err  error
	// acted is set between a successful action and its event.
	acted bool
	// auction replays the bids to know whose turn it is.
	auction *coinche.Auction
}

// noSeat is the turn while the server decides who acts next.
const noSeat coinche.Seat = -1

// New creates a client.
func New(cfg Config) *Client {
	if cfg.Log == nil {
		cfg.Log = slog.Disabled
	}
	return &Client{
		backend: cfg.Backend,
		front:   cfg.Frontend,
		log:     cfg.Log,
		cfg:     cfg,
		last:    -1,
	}
}

// Run plays until the party ends, the player leaves, or ctx is done.
func (c *Client) Run(ctx context.Context) error {
	c.ctx = ctx
	sm := statemachine.NewStateMachine(c, stateJoin)
	sm.Run()
	if c.err == nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return c.err
}

// Info returns the party the client joined.
func (c *Client) Info() server.NewPartyInfo {
	return c.info
}

// View returns the current table view.
func (c *Client) View() TableView {
	return c.view
}

// fail ends the run with err.
func (c *Client) fail(err error) statemachine.StateFn[Client] {
	if c.ctx.Err() == nil {
		c.err = err
	}
	return nil
}

// next pulls the next event of the party.
func (c *Client) next() (event.Event, error) {
	ev, err := c.backend.Pull(c.ctx, c.last)
	if err != nil {
		return event.Event{}, err
	}
	c.last = ev.ID
	return ev, nil
}

func (c *Client) unexpected(ev event.Event) {
	c.log.Warnf("Unexpected event %d (%s)", ev.ID, ev.Payload.Kind())
	c.log.Debugf("%s", spew.Sdump(ev))
}

// yourTurn tells the frontend it is the player's turn.
func (c *Client) yourTurn() {
	c.front.Show(event.Event{ID: c.last, Payload: event.YourTurn{}}, c.view)
}

func (c *Client) leave() statemachine.StateFn[Client] {
	if err := c.backend.Leave(c.ctx); err != nil {
		return c.fail(err)
	}
	c.log.Infof("Left the party after %d hands", c.view.HandsPlayed)
	return nil
}

// handleCommon deals with the events that end the party. It reports
// whether ev was handled.
func (c *Client) handleCommon(ev event.Event) (statemachine.StateFn[Client], bool) {
	if _, ok := ev.Payload.(event.PartyCancelled); ok {
		c.front.Show(ev, c.view)
		return nil, true
	}
	return nil, false
}

// followAuction replays an auction action on the local auction.
func (c *Client) followAuction(ev event.FromPlayer) {
	var state coinche.AuctionState
	var err error
	switch action := ev.Action.(type) {
	case event.Bid:
		state, err = c.auction.Bid(ev.Seat, action.Suit, action.Target)
	case event.Passed:
		state, err = c.auction.Pass(ev.Seat)
	case event.Coinched:
		state, err = c.auction.Coinche(ev.Seat)
	default:
		c.log.Warnf("Unexpected %s during the auction", action.ActionKind())
		return
	}
	if err != nil {
		c.log.Warnf("Auction out of sync with the server: %v", err)
		return
	}

	if contract, ok := c.auction.Contract(); ok {
		c.view.Contract = &contract
	}
	switch state {
	case coinche.AuctionOver, coinche.AuctionCancelled:
		c.view.Turn = noSeat
	default:
		c.view.Turn = c.auction.Turn()
	}
}

// rejected handles an action refused by the server. It returns the next
// state.
func (c *Client) rejected(err error, retry statemachine.StateFn[Client]) statemachine.StateFn[Client] {
	var serr *ServerError
	switch {
	case c.ctx.Err() != nil:
		return nil
	case IsPartyGone(err):
		return stateDrain
	case errors.As(err, &serr) && serr.Status == http.StatusConflict:
		// The phase moved on; the events will tell how.
		c.log.Debugf("Action out of phase: %v", err)
		c.acted = true
		return retry
	}
	c.front.ShowError(err)
	return retry
}

func stateJoin(c *Client) statemachine.StateFn[Client] {
	info, err := c.backend.Join(c.ctx)
	if err != nil {
		return c.fail(err)
	}
	c.info = info
	c.view.Seat = info.Seat
	c.log.Infof("Joined party %s at seat %s", info.PartyID, info.Seat)
	return stateWaitDeal
}

func stateWaitDeal(c *Client) statemachine.StateFn[Client] {
	ev, err := c.next()
	if err != nil {
		return c.fail(err)
	}
	if next, ok := c.handleCommon(ev); ok {
		return next
	}

	deal, ok := ev.Payload.(event.NewGameRelative)
	if !ok {
		c.unexpected(ev)
		return stateWaitDeal
	}
	c.auction = coinche.NewAuction(deal.First, [coinche.NumSeats]coinche.Hand{})
	c.view.Hand = deal.Hand
	c.view.First = deal.First
	c.view.Turn = deal.First
	c.view.Contract = nil
	c.view.Trick = nil
	c.view.LastTrick = nil
	c.acted = false
	c.front.Show(ev, c.view)
	return stateAuction
}

func stateAuction(c *Client) statemachine.StateFn[Client] {
	if c.view.MyTurn() && !c.acted {
		c.yourTurn()
		action := c.front.AskBid(c.ctx, c.view)

		var err error
		switch action.Kind {
		case AuctionLeave:
			return c.leave()
		case AuctionPass:
			_, err = c.backend.Pass(c.ctx)
		case AuctionCoinche:
			_, err = c.backend.Coinche(c.ctx)
		case AuctionBid:
			_, err = c.backend.Bid(c.ctx, action.Suit, action.Target)
		}
		if err != nil {
			return c.rejected(err, stateAuction)
		}
		c.acted = true
	}

	ev, err := c.next()
	if err != nil {
		return c.fail(err)
	}
	if next, ok := c.handleCommon(ev); ok {
		return next
	}

	switch payload := ev.Payload.(type) {
	case event.FromPlayer:
		if payload.Seat == c.view.Seat {
			c.acted = false
		}
		c.followAuction(payload)
		c.front.Show(ev, c.view)
		return stateAuction

	case event.BidOver:
		contract := payload.Contract
		c.view.Contract = &contract
		c.view.Turn = c.view.First
		c.acted = false
		c.front.Show(ev, c.view)
		return statePlaying

	case event.BidCancelled:
		c.front.Show(ev, c.view)
		return stateWaitDeal
	}

	c.unexpected(ev)
	return stateAuction
}

func statePlaying(c *Client) statemachine.StateFn[Client] {
	if c.view.MyTurn() && !c.acted {
		c.yourTurn()
		action := c.front.AskCard(c.ctx, c.view)
		if action.Leave {
			return c.leave()
		}
		_, err := c.backend.PlayCard(c.ctx, action.Card)
		if err != nil {
			return c.rejected(err, statePlaying)
		}
		c.acted = true
	}

	ev, err := c.next()
	if err != nil {
		return c.fail(err)
	}
	if next, ok := c.handleCommon(ev); ok {
		return next
	}

	switch payload := ev.Payload.(type) {
	case event.FromPlayer:
		played, ok := payload.Action.(event.CardPlayed)
		if !ok {
			c.unexpected(ev)
			return statePlaying
		}
		if payload.Seat == c.view.Seat {
			c.view.Hand.Remove(played.Card)
			c.acted = false
		}
		c.view.Trick = append(c.view.Trick, PlayedCard{Seat: payload.Seat, Card: played.Card})
		c.view.Turn = payload.Seat.Next()
		if len(c.view.Trick) == coinche.NumSeats {
			c.view.Turn = noSeat
		}
		c.front.Show(ev, c.view)
		return statePlaying

	case event.TrickOver:
		c.view.LastTrick = c.view.Trick
		c.view.Trick = nil
		c.view.Turn = payload.Winner
		c.front.Show(ev, c.view)
		return statePlaying

	case event.GameOver:
		c.view.Scores = payload.Scores
		c.view.HandsPlayed++
		c.front.Show(ev, c.view)
		if c.cfg.MaxHands > 0 && c.view.HandsPlayed >= c.cfg.MaxHands {
			return c.leave()
		}
		return stateWaitDeal
	}

	c.unexpected(ev)
	return statePlaying
}

// stateDrain reads the remaining events after the party was cancelled so
// the frontend sees the reason.
func stateDrain(c *Client) statemachine.StateFn[Client] {
	ev, err := c.next()
	if err != nil {
		if IsPartyGone(err) {
			return nil
		}
		return c.fail(err)
	}
	if next, ok := c.handleCommon(ev); ok {
		return next
	}
	c.front.Show(ev, c.view)
	return stateDrain
}
