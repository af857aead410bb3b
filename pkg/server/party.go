package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/google/uuid"
	"github.com/vctt94/coinched/pkg/coinche"
	"github.com/vctt94/coinched/pkg/event"
)

// PhaseKind names the phase a party is in.
type PhaseKind string

const (
	PhaseBidding   PhaseKind = "bidding"
	PhasePlaying   PhaseKind = "playing"
	PhaseCancelled PhaseKind = "cancelled"
)

// phase is exactly one of biddingPhase, playingPhase or cancelledPhase.
type phase interface {
	kind() PhaseKind
}

type biddingPhase struct {
	auction Auction
}

type playingPhase struct {
	game CardPlay
}

type cancelledPhase struct {
	reason string
}

func (biddingPhase) kind() PhaseKind   { return PhaseBidding }
func (playingPhase) kind() PhaseKind   { return PhasePlaying }
func (cancelledPhase) kind() PhaseKind { return PhaseCancelled }

// PhaseSummary describes the state of a party as seen by one seat.
type PhaseSummary struct {
	Phase PhaseKind `json:"phase"`
	// HandNumber counts hands dealt since the party started, from 1.
	HandNumber int          `json:"hand_number"`
	First      coinche.Seat `json:"first"`
	// Turn is the seat expected to act. Unset once cancelled.
	Turn     *coinche.Seat     `json:"turn,omitempty"`
	Contract *coinche.Contract `json:"contract,omitempty"`
	Scores   [2]int            `json:"scores"`
	Reason   string            `json:"reason,omitempty"`
}

// PartyObserver is told about the lifecycle of parties. Calls are made with
// the party lock held and must not block.
type PartyObserver interface {
	PartyCreated(id uuid.UUID, first coinche.Seat, at time.Time)
	HandFinished(id uuid.UUID, hand HandSummary)
	PartyCancelled(id uuid.UUID, reason string, at time.Time)
}

// HandSummary is a finished hand.
type HandSummary struct {
	Number   int              `json:"number"`
	First    coinche.Seat     `json:"first"`
	Contract coinche.Contract `json:"contract"`
	Taken    [2]int           `json:"taken"`
	Winner   coinche.Team     `json:"winner"`
	Points   [2]int           `json:"points"`
	Scores   [2]int           `json:"scores"`
	At       time.Time        `json:"at"`
}

type nopObserver struct{}

func (nopObserver) PartyCreated(uuid.UUID, coinche.Seat, time.Time) {}
func (nopObserver) HandFinished(uuid.UUID, HandSummary)             {}
func (nopObserver) PartyCancelled(uuid.UUID, string, time.Time)     {}

// waiter is a pending long-poll. Its channel receives exactly one event.
type waiter struct {
	seat coinche.Seat
	ch   chan event.Event
}

// Party is one table of four players, across as many hands as they play.
type Party struct {
	ID uuid.UUID

	log      slog.Logger
	rules    Rules
	observer PartyObserver
	now      func() time.Time

	mu      sync.Mutex
	phase   phase
	events  []event.Event
	waiters map[*waiter]struct{}
	first   coinche.Seat
	scores  [2]int
	hand    int
}

type partyConfig struct {
	rules    Rules
	observer PartyObserver
	log      slog.Logger
	now      func() time.Time
}

// newParty creates a party where first opens the first hand, and logs the
// deal of that hand as event 0.
func newParty(cfg partyConfig, first coinche.Seat) *Party {
	p := &Party{
		ID:       uuid.New(),
		log:      cfg.log,
		rules:    cfg.rules,
		observer: cfg.observer,
		now:      cfg.now,
		waiters:  make(map[*waiter]struct{}),
		first:    first,
	}
	if p.log == nil {
		p.log = slog.Disabled
	}
	if p.observer == nil {
		p.observer = nopObserver{}
	}
	if p.now == nil {
		p.now = time.Now
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.observer.PartyCreated(p.ID, first, p.now())
	p.dealLocked()
	return p
}

// appendLocked logs payload as the next event and resolves every pending
// waiter with it. Must be called with p.mu held.
func (p *Party) appendLocked(payload event.Payload) event.Event {
	ev := event.Event{ID: len(p.events), Payload: payload}
	p.events = append(p.events, ev)
	for w := range p.waiters {
		w.ch <- ev.For(w.seat)
		delete(p.waiters, w)
	}
	p.log.Tracef("Party %s: %s", p.ID, ev)
	return ev
}

// dealLocked starts a new hand opened by p.first.
func (p *Party) dealLocked() {
	auction, hands := p.rules.NewAuction(p.first)
	p.phase = biddingPhase{auction: auction}
	p.hand++
	p.appendLocked(event.NewGame{First: p.first, Hands: hands})
	p.log.Debugf("Party %s: dealt hand %d, %s speaks first", p.ID, p.hand, p.first)
}

// cancelLocked moves the party to its terminal phase.
func (p *Party) cancelLocked(reason string) {
	if _, ok := p.phase.(cancelledPhase); ok {
		return
	}
	p.phase = cancelledPhase{reason: reason}
	p.appendLocked(event.PartyCancelled{Message: reason})
	p.observer.PartyCancelled(p.ID, reason, p.now())
	p.log.Infof("Party %s cancelled: %s", p.ID, reason)
}

// auctionFor returns the running auction, or the error matching the phase.
func (p *Party) auctionFor() (Auction, error) {
	switch ph := p.phase.(type) {
	case biddingPhase:
		return ph.auction, nil
	case playingPhase:
		return nil, ErrWrongPhaseForBid
	default:
		return nil, ErrPartyGone
	}
}

// Bid proposes a contract for seat.
func (p *Party) Bid(seat coinche.Seat, trump coinche.Suit, target coinche.Target) (event.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	auction, err := p.auctionFor()
	if err != nil {
		return event.Event{}, err
	}
	state, err := auction.Bid(seat, trump, target)
	if err != nil {
		return event.Event{}, &BidRejectedError{Err: err}
	}
	ev := p.appendLocked(event.FromPlayer{Seat: seat, Action: event.Bid{Suit: trump, Target: target}})
	p.auctionMovedLocked(auction, state)
	return ev.For(seat), nil
}

// Pass lets seat speak without bidding.
func (p *Party) Pass(seat coinche.Seat) (event.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	auction, err := p.auctionFor()
	if err != nil {
		return event.Event{}, err
	}
	state, err := auction.Pass(seat)
	if err != nil {
		return event.Event{}, &BidRejectedError{Err: err}
	}
	ev := p.appendLocked(event.FromPlayer{Seat: seat, Action: event.Passed{}})
	p.auctionMovedLocked(auction, state)
	return ev.For(seat), nil
}

// Coinche doubles the current contract.
func (p *Party) Coinche(seat coinche.Seat) (event.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	auction, err := p.auctionFor()
	if err != nil {
		return event.Event{}, err
	}
	state, err := auction.Coinche(seat)
	if err != nil {
		return event.Event{}, &BidRejectedError{Err: err}
	}
	ev := p.appendLocked(event.FromPlayer{Seat: seat, Action: event.Coinched{}})
	p.auctionMovedLocked(auction, state)
	return ev.For(seat), nil
}

// auctionMovedLocked applies the outcome of an accepted auction action.
func (p *Party) auctionMovedLocked(auction Auction, state coinche.AuctionState) {
	switch state {
	case coinche.AuctionOver:
		game, err := auction.Complete()
		if err != nil {
			// The rules broke their contract. Only this party stops.
			p.log.Criticalf("Party %s: auction over without a contract: %v", p.ID, err)
			p.cancelLocked("internal error")
			return
		}
		p.phase = playingPhase{game: game}
		p.appendLocked(event.BidOver{Contract: game.Contract()})

	case coinche.AuctionCancelled:
		p.appendLocked(event.BidCancelled{})
		// The same seat opens the redeal.
		p.dealLocked()
	}
}

// PlayCard plays card for seat.
func (p *Party) PlayCard(seat coinche.Seat, card coinche.Card) (event.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var game CardPlay
	switch ph := p.phase.(type) {
	case playingPhase:
		game = ph.game
	case biddingPhase:
		return event.Event{}, ErrWrongPhaseForPlay
	default:
		return event.Event{}, ErrPartyGone
	}

	result, err := game.PlayCard(seat, card)
	if err != nil {
		return event.Event{}, &PlayRejectedError{Err: err}
	}
	ev := p.appendLocked(event.FromPlayer{Seat: seat, Action: event.CardPlayed{Card: card}})
	if result.TrickOver {
		p.appendLocked(event.TrickOver{Winner: result.Winner})
	}
	if result.Game != nil {
		p.handOverLocked(game.Contract(), result.Game)
	}
	return ev.For(seat), nil
}

func (p *Party) handOverLocked(contract coinche.Contract, res *coinche.GameResult) {
	for team := range p.scores {
		p.scores[team] += res.Points[team]
	}
	p.appendLocked(event.GameOver{Points: res.Points, Winner: res.Winner, Scores: p.scores})
	p.observer.HandFinished(p.ID, HandSummary{
		Number:   p.hand,
		First:    p.first,
		Contract: contract,
		Taken:    res.Taken,
		Winner:   res.Winner,
		Points:   res.Points,
		Scores:   p.scores,
		At:       p.now(),
	})
	p.log.Debugf("Party %s: hand %d won by %s, scores %v", p.ID, p.hand, res.Winner, p.scores)

	p.first = p.first.Next()
	p.dealLocked()
}

// WaitFor returns the first event after the given id as seen by seat,
// blocking until it is logged. after = -1 asks for event 0. A cancelled
// party still serves the events it logged before failing with ErrPartyGone.
func (p *Party) WaitFor(ctx context.Context, seat coinche.Seat, after int) (event.Event, error) {
	p.mu.Lock()
	if after < -1 || after >= len(p.events) {
		p.mu.Unlock()
		return event.Event{}, ErrUnknownEvent
	}
	if next := after + 1; next < len(p.events) {
		ev := p.events[next]
		p.mu.Unlock()
		return ev.For(seat), nil
	}
	if ph, ok := p.phase.(cancelledPhase); ok {
		p.mu.Unlock()
		return event.Event{}, fmt.Errorf("%w: %s", ErrPartyGone, ph.reason)
	}
	w := &waiter{seat: seat, ch: make(chan event.Event, 1)}
	p.waiters[w] = struct{}{}
	p.mu.Unlock()

	select {
	case ev := <-w.ch:
		return ev, nil
	case <-ctx.Done():
		p.mu.Lock()
		delete(p.waiters, w)
		p.mu.Unlock()
		return event.Event{}, ctx.Err()
	}
}

// Cancel ends the party. Pending waiters receive the cancellation event.
func (p *Party) Cancel(reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelLocked(reason)
}

// Cancelled reports whether the party was cancelled.
func (p *Party) Cancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.phase.(cancelledPhase)
	return ok
}

// Scores returns the cumulative team scores.
func (p *Party) Scores() [2]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scores
}

// Hand returns the cards seat currently holds.
func (p *Party) Hand(seat coinche.Seat) (coinche.Hand, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch ph := p.phase.(type) {
	case biddingPhase:
		return ph.auction.Hands()[seat], nil
	case playingPhase:
		return ph.game.Hands()[seat], nil
	default:
		return 0, ErrPartyGone
	}
}

// Phase summarizes the party state.
func (p *Party) Phase() PhaseSummary {
	p.mu.Lock()
	defer p.mu.Unlock()

	summary := PhaseSummary{
		Phase:      p.phase.kind(),
		HandNumber: p.hand,
		First:      p.first,
		Scores:     p.scores,
	}
	switch ph := p.phase.(type) {
	case biddingPhase:
		turn := ph.auction.Turn()
		summary.Turn = &turn
		if contract, ok := ph.auction.Contract(); ok {
			summary.Contract = &contract
		}
	case playingPhase:
		turn := ph.game.Turn()
		contract := ph.game.Contract()
		summary.Turn = &turn
		summary.Contract = &contract
	case cancelledPhase:
		summary.Reason = ph.reason
	}
	return summary
}

// EventCount returns how many events the party logged.
func (p *Party) EventCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// pendingWaiters returns how many long-polls are waiting on the party.
func (p *Party) pendingWaiters() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.waiters)
}
