package server

import (
	"math/rand"
	"sync"

	"github.com/vctt94/coinched/pkg/coinche"
)

// Rules deals hands and opens auctions. Parties only reach the card game
// through these interfaces.
type Rules interface {
	// NewAuction deals a fresh hand and opens its auction with first to speak.
	NewAuction(first coinche.Seat) (Auction, [coinche.NumSeats]coinche.Hand)
	// RandomSeat picks the seat that opens the first hand of a party.
	RandomSeat() coinche.Seat
}

// Auction is the bidding phase of a hand.
type Auction interface {
	Bid(seat coinche.Seat, trump coinche.Suit, target coinche.Target) (coinche.AuctionState, error)
	Pass(seat coinche.Seat) (coinche.AuctionState, error)
	Coinche(seat coinche.Seat) (coinche.AuctionState, error)
	Contract() (coinche.Contract, bool)
	Turn() coinche.Seat
	Hands() [coinche.NumSeats]coinche.Hand
	// Complete must only fail if the auction is not over.
	Complete() (CardPlay, error)
}

// CardPlay is the card phase of a hand.
type CardPlay interface {
	PlayCard(seat coinche.Seat, card coinche.Card) (coinche.TrickResult, error)
	Contract() coinche.Contract
	Turn() coinche.Seat
	Hands() [coinche.NumSeats]coinche.Hand
}

// coincheRules implements Rules with the pkg/coinche engine.
type coincheRules struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewCoincheRules returns the standard coinche rules, dealing from a
// generator seeded with seed.
func NewCoincheRules(seed int64) Rules {
	return &coincheRules{rng: rand.New(rand.NewSource(seed))}
}

func (r *coincheRules) NewAuction(first coinche.Seat) (Auction, [coinche.NumSeats]coinche.Hand) {
	r.mu.Lock()
	hands := coinche.Deal(r.rng)
	r.mu.Unlock()
	return &coincheAuction{Auction: coinche.NewAuction(first, hands)}, hands
}

func (r *coincheRules) RandomSeat() coinche.Seat {
	r.mu.Lock()
	defer r.mu.Unlock()
	return coinche.Seat(r.rng.Intn(coinche.NumSeats))
}

type coincheAuction struct {
	*coinche.Auction
}

func (a *coincheAuction) Complete() (CardPlay, error) {
	game, err := a.Auction.Complete()
	if err != nil {
		return nil, err
	}
	return game, nil
}
