// Package event defines what happens at a coinche party and how it is
// presented to each seat.
package event

import (
	"fmt"

	"github.com/vctt94/coinched/pkg/coinche"
)

// Kind identifies the variant carried by an Event.
type Kind string

const (
	KindYourTurn        Kind = "your_turn"
	KindPartyCancelled  Kind = "party_cancelled"
	KindFromPlayer      Kind = "from_player"
	KindBidOver         Kind = "bid_over"
	KindBidCancelled    Kind = "bid_cancelled"
	KindTrickOver       Kind = "trick_over"
	KindNewGame         Kind = "new_game"
	KindNewGameRelative Kind = "new_game_relative"
	KindGameOver        Kind = "game_over"
)

// Event is an entry of a party log. ID is assigned by the party: 0 for the
// first event, then increasing by one without gaps.
type Event struct {
	ID      int
	Payload Payload
}

// String returns a readable representation of the event.
func (e Event) String() string {
	if e.Payload == nil {
		return fmt.Sprintf("#%d <nil>", e.ID)
	}
	return fmt.Sprintf("#%d %s", e.ID, e.Payload.Kind())
}

// Payload is one of the event variants declared in this package.
type Payload interface {
	Kind() Kind
	isPayload()
}

// YourTurn tells the addressed player they are expected to act.
type YourTurn struct{}

// PartyCancelled ends the party; nothing follows it.
type PartyCancelled struct {
	Message string `json:"message"`
}

// FromPlayer is an action made by a seated player.
type FromPlayer struct {
	Seat   coinche.Seat
	Action PlayerEvent
}

// BidOver closes the auction on a contract; card play starts.
type BidOver struct {
	Contract coinche.Contract `json:"contract"`
}

// BidCancelled closes an auction where nobody bid. A new hand is dealt.
type BidCancelled struct{}

// TrickOver reports the winner of a completed trick.
type TrickOver struct {
	Winner coinche.Seat `json:"winner"`
}

// NewGame starts a hand. It holds every seat's cards and must be turned into
// a NewGameRelative before leaving the server.
type NewGame struct {
	First coinche.Seat
	Hands [coinche.NumSeats]coinche.Hand
}

// NewGameRelative is NewGame as seen from a single seat.
type NewGameRelative struct {
	First coinche.Seat `json:"first"`
	Hand  coinche.Hand `json:"hand"`
}

// GameOver ends a hand. Points is what each team earned with this hand and
// Scores the running totals of the party.
type GameOver struct {
	Points [2]int       `json:"points"`
	Winner coinche.Team `json:"winner"`
	Scores [2]int       `json:"scores"`
}

func (YourTurn) Kind() Kind        { return KindYourTurn }
func (PartyCancelled) Kind() Kind  { return KindPartyCancelled }
func (FromPlayer) Kind() Kind      { return KindFromPlayer }
func (BidOver) Kind() Kind         { return KindBidOver }
func (BidCancelled) Kind() Kind    { return KindBidCancelled }
func (TrickOver) Kind() Kind       { return KindTrickOver }
func (NewGame) Kind() Kind         { return KindNewGame }
func (NewGameRelative) Kind() Kind { return KindNewGameRelative }
func (GameOver) Kind() Kind        { return KindGameOver }

func (YourTurn) isPayload()        {}
func (PartyCancelled) isPayload()  {}
func (FromPlayer) isPayload()      {}
func (BidOver) isPayload()         {}
func (BidCancelled) isPayload()    {}
func (TrickOver) isPayload()       {}
func (NewGame) isPayload()         {}
func (NewGameRelative) isPayload() {}
func (GameOver) isPayload()        {}

// ActionKind identifies the variant of a PlayerEvent.
type ActionKind string

const (
	ActionBid        ActionKind = "bid"
	ActionCoinched   ActionKind = "coinched"
	ActionPassed     ActionKind = "passed"
	ActionCardPlayed ActionKind = "card_played"
)

// PlayerEvent is an action a seated player can take.
type PlayerEvent interface {
	ActionKind() ActionKind
	isPlayerEvent()
}

// Bid proposes a contract.
type Bid struct {
	Suit   coinche.Suit   `json:"suit"`
	Target coinche.Target `json:"target"`
}

// Coinched doubles the current contract.
type Coinched struct{}

// Passed lets the turn go without bidding.
type Passed struct{}

// CardPlayed puts a card in the current trick.
type CardPlayed struct {
	Card coinche.Card `json:"card"`
}

func (Bid) ActionKind() ActionKind        { return ActionBid }
func (Coinched) ActionKind() ActionKind   { return ActionCoinched }
func (Passed) ActionKind() ActionKind     { return ActionPassed }
func (CardPlayed) ActionKind() ActionKind { return ActionCardPlayed }

func (Bid) isPlayerEvent()        {}
func (Coinched) isPlayerEvent()   {}
func (Passed) isPlayerEvent()     {}
func (CardPlayed) isPlayerEvent() {}
