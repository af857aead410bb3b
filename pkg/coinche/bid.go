package coinche

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Target is the number of points a contract promises.
type Target int

const (
	Target80 Target = iota
	Target90
	Target100
	Target110
	Target120
	Target130
	Target140
	Target150
	Target160
	// TargetCapot promises to win every trick.
	TargetCapot
	// TargetGenerale promises the contract author alone wins every trick.
	TargetGenerale
)

// Score is what the contract is worth before coinche multipliers.
func (t Target) Score() int {
	switch t {
	case TargetCapot:
		return 250
	case TargetGenerale:
		return 500
	default:
		return 80 + 10*int(t)
	}
}

// Valid reports whether t names a real contract target.
func (t Target) Valid() bool {
	return t >= Target80 && t <= TargetGenerale
}

// String returns the target as written at the table.
func (t Target) String() string {
	switch t {
	case TargetCapot:
		return "capot"
	case TargetGenerale:
		return "generale"
	}
	if !t.Valid() {
		return fmt.Sprintf("Target(%d)", int(t))
	}
	return strconv.Itoa(t.Score())
}

// ParseTarget reads "80" through "160", "capot" or "generale".
func ParseTarget(str string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "capot":
		return TargetCapot, nil
	case "generale", "générale":
		return TargetGenerale, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(str))
	if err != nil || n < 80 || n > 160 || n%10 != 0 {
		return 0, fmt.Errorf("invalid target: %q", str)
	}
	return Target((n - 80) / 10), nil
}

// MarshalText implements encoding.TextMarshaler.
func (t Target) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid target: %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Target) UnmarshalText(text []byte) error {
	parsed, err := ParseTarget(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Contract is a bid that has been made during the auction.
type Contract struct {
	Author       Seat   `json:"author"`
	Trump        Suit   `json:"trump"`
	Target       Target `json:"target"`
	CoincheLevel int    `json:"coinche_level"`
}

// Multiplier is the factor coinche and surcoinche apply to the contract score.
func (c Contract) Multiplier() int {
	return 1 << c.CoincheLevel
}

// String returns a readable representation of the contract.
func (c Contract) String() string {
	s := fmt.Sprintf("%s %s by %s", c.Target, c.Trump, c.Author)
	switch c.CoincheLevel {
	case 1:
		s += " (coinched)"
	case 2:
		s += " (surcoinched)"
	}
	return s
}

// AuctionState is the progress of an auction.
type AuctionState int

const (
	// AuctionBidding means players may still bid, pass or coinche.
	AuctionBidding AuctionState = iota
	// AuctionCoinching means the last contract was coinched: only a
	// surcoinche or passes remain.
	AuctionCoinching
	// AuctionOver means a contract was reached; the auction can be completed.
	AuctionOver
	// AuctionCancelled means everyone passed without a contract.
	AuctionCancelled
)

func (s AuctionState) String() string {
	switch s {
	case AuctionBidding:
		return "bidding"
	case AuctionCoinching:
		return "coinching"
	case AuctionOver:
		return "over"
	case AuctionCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("AuctionState(%d)", int(s))
}

// Errors returned by auction actions. A rejected action leaves the auction unchanged.
var (
	ErrAuctionClosed   = errors.New("auction is closed")
	ErrBidTurnOrder    = errors.New("not your turn to bid")
	ErrInvalidTarget   = errors.New("invalid target")
	ErrInvalidSuit     = errors.New("invalid suit")
	ErrTargetTooLow    = errors.New("bid must be higher than the current contract")
	ErrBidAfterCoinche = errors.New("cannot bid after a coinche")
	ErrNoContract      = errors.New("no contract to coinche")
	ErrOwnContract     = errors.New("cannot coinche your own team's contract")
	ErrAlreadyCoinched = errors.New("contract is already coinched")
	ErrAuctionNotOver  = errors.New("auction is not over")
)

// Auction runs the bidding phase of a hand.
type Auction struct {
	first     Seat
	turn      Seat
	state     AuctionState
	passCount int
	history   []Contract
	hands     [NumSeats]Hand
}

// NewAuction starts an auction where first speaks first, for the given hands.
func NewAuction(first Seat, hands [NumSeats]Hand) *Auction {
	return &Auction{
		first: first,
		turn:  first,
		state: AuctionBidding,
		hands: hands,
	}
}

// State returns the current auction state.
func (a *Auction) State() AuctionState {
	return a.state
}

// Turn returns the seat expected to speak next.
func (a *Auction) Turn() Seat {
	return a.turn
}

// First returns the seat that opened the auction.
func (a *Auction) First() Seat {
	return a.first
}

// Hands returns the cards dealt for this hand.
func (a *Auction) Hands() [NumSeats]Hand {
	return a.hands
}

// Contract returns the highest contract so far.
func (a *Auction) Contract() (Contract, bool) {
	if len(a.history) == 0 {
		return Contract{}, false
	}
	return a.history[len(a.history)-1], true
}

func (a *Auction) checkTurn(seat Seat) error {
	if a.state == AuctionOver || a.state == AuctionCancelled {
		return ErrAuctionClosed
	}
	if seat != a.turn {
		return ErrBidTurnOrder
	}
	return nil
}

// Bid proposes a new contract for seat.
func (a *Auction) Bid(seat Seat, trump Suit, target Target) (AuctionState, error) {
	if err := a.checkTurn(seat); err != nil {
		return a.state, err
	}
	if a.state == AuctionCoinching {
		return a.state, ErrBidAfterCoinche
	}
	if !target.Valid() {
		return a.state, ErrInvalidTarget
	}
	if trump < Hearts || trump > Clubs {
		return a.state, ErrInvalidSuit
	}
	if current, ok := a.Contract(); ok && target <= current.Target {
		return a.state, ErrTargetTooLow
	}

	a.history = append(a.history, Contract{Author: seat, Trump: trump, Target: target})
	a.passCount = 0
	a.turn = seat.Next()
	return a.state, nil
}

// Pass lets seat speak without bidding. Three passes after a contract close
// the auction; four passes without any contract cancel it.
func (a *Auction) Pass(seat Seat) (AuctionState, error) {
	if err := a.checkTurn(seat); err != nil {
		return a.state, err
	}

	a.passCount++
	switch {
	case len(a.history) == 0 && a.passCount >= NumSeats:
		a.state = AuctionCancelled
	case len(a.history) > 0 && a.passCount >= NumSeats-1:
		a.state = AuctionOver
	}
	a.turn = seat.Next()
	return a.state, nil
}

// Coinche doubles the current contract when played by an opponent, and
// doubles it again, closing the auction, when played by the contract team
// after a coinche.
func (a *Auction) Coinche(seat Seat) (AuctionState, error) {
	if err := a.checkTurn(seat); err != nil {
		return a.state, err
	}
	if len(a.history) == 0 {
		return a.state, ErrNoContract
	}

	contract := &a.history[len(a.history)-1]
	sameTeam := contract.Author.Team() == seat.Team()
	switch a.state {
	case AuctionBidding:
		if sameTeam {
			return a.state, ErrOwnContract
		}
		contract.CoincheLevel = 1
		a.state = AuctionCoinching
	case AuctionCoinching:
		if !sameTeam {
			return a.state, ErrAlreadyCoinched
		}
		contract.CoincheLevel = 2
		a.state = AuctionOver
	}
	a.passCount = 0
	a.turn = seat.Next()
	return a.state, nil
}

// Complete turns a finished auction into the card play of the hand.
func (a *Auction) Complete() (*Game, error) {
	if a.state != AuctionOver {
		return nil, ErrAuctionNotOver
	}
	contract, ok := a.Contract()
	if !ok {
		return nil, ErrNoContract
	}
	return NewGame(a.first, contract, a.hands), nil
}
