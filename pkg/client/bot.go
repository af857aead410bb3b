package client

import (
	"context"

	"github.com/decred/slog"
	"github.com/vctt94/coinched/pkg/coinche"
	"github.com/vctt94/coinched/pkg/event"
)

// Bot is a Frontend that plays on its own. It opens the auction at 80 in
// its longest suit when nobody bid yet and passes otherwise. For cards it
// tries its hand in order until the server accepts one.
type Bot struct {
	log   slog.Logger
	tried coinche.Hand
}

// NewBot creates a bot frontend.
func NewBot(log slog.Logger) *Bot {
	if log == nil {
		log = slog.Disabled
	}
	return &Bot{log: log}
}

func (b *Bot) Show(ev event.Event, view TableView) {
	switch payload := ev.Payload.(type) {
	case event.FromPlayer:
		if payload.Seat == view.Seat {
			b.tried = 0
		}
	case event.NewGameRelative:
		b.tried = 0
		b.log.Debugf("New hand: %s", view.Hand)
	case event.GameOver:
		b.log.Infof("Hand over, team %s won %v, scores %v", payload.Winner, payload.Points, payload.Scores)
	case event.PartyCancelled:
		b.log.Infof("Party cancelled: %s", payload.Message)
	}
}

func (b *Bot) ShowError(err error) {
	b.log.Debugf("Rejected: %v", err)
}

func (b *Bot) AskBid(ctx context.Context, view TableView) AuctionAction {
	if view.Contract != nil {
		return AuctionAction{Kind: AuctionPass}
	}
	return AuctionAction{Kind: AuctionBid, Suit: LongestSuit(view.Hand), Target: coinche.Target80}
}

func (b *Bot) AskCard(ctx context.Context, view TableView) GameAction {
	for _, card := range view.Hand.Cards() {
		if !b.tried.Has(card) {
			b.tried.Add(card)
			return GameAction{Card: card}
		}
	}
	// Every card was refused; the hand view is stale.
	b.log.Warnf("No playable card left in %s", view.Hand)
	return GameAction{Leave: true}
}

// LongestSuit returns the suit with the most cards in hand, the first one
// in suit order on ties.
func LongestSuit(hand coinche.Hand) coinche.Suit {
	var counts [4]int
	for _, card := range hand.Cards() {
		counts[card.Suit]++
	}
	best := coinche.Hearts
	for _, suit := range coinche.Suits {
		if counts[suit] > counts[best] {
			best = suit
		}
	}
	return best
}
