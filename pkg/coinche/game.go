package coinche

import "errors"

// TricksPerHand is the number of tricks played in a hand.
const TricksPerHand = 8

// lastTrickBonus is awarded to the team winning the final trick.
const lastTrickBonus = 10

// Errors returned when a card cannot be played. A rejected card leaves the
// game unchanged.
var (
	ErrGameOver          = errors.New("hand is already over")
	ErrPlayTurnOrder     = errors.New("not your turn to play")
	ErrCardMissing       = errors.New("card is not in your hand")
	ErrIncorrectSuit     = errors.New("you must follow the suit that was led")
	ErrShouldTrump       = errors.New("you must play a trump")
	ErrShouldOverTrump   = errors.New("you must play a higher trump")
	ErrInvalidCardPlayed = errors.New("invalid card")
)

// Trick holds the cards played in one round.
type Trick struct {
	First  Seat
	Cards  [NumSeats]Card
	Count  int
	Winner Seat
}

func newTrick(first Seat) Trick {
	return Trick{First: first, Winner: first}
}

// Led returns the first card of the trick.
func (t *Trick) Led() (Card, bool) {
	if t.Count == 0 {
		return Card{}, false
	}
	return t.Cards[t.First], true
}

// Points sums the value of the cards in the trick.
func (t *Trick) Points(trump Suit) int {
	total := 0
	for i := 0; i < t.Count; i++ {
		total += t.Cards[(t.First+Seat(i))%NumSeats].Points(trump)
	}
	return total
}

// highestTrump returns the strongest trump already in the trick.
func (t *Trick) highestTrump(trump Suit) (Card, bool) {
	var best Card
	found := false
	for i := 0; i < t.Count; i++ {
		c := t.Cards[(t.First+Seat(i))%NumSeats]
		if c.Suit != trump {
			continue
		}
		if !found || c.Beats(best, trump) {
			best, found = c, true
		}
	}
	return best, found
}

func (t *Trick) play(seat Seat, card Card, trump Suit) {
	t.Cards[seat] = card
	t.Count++
	if t.Count > 1 && card.Beats(t.Cards[t.Winner], trump) {
		t.Winner = seat
	}
}

// TrickResult is what happened after a card was played.
type TrickResult struct {
	// TrickOver is set when the card completed a trick.
	TrickOver bool
	// Winner is the seat that won the completed trick.
	Winner Seat
	// Game is set when the completed trick was the last of the hand.
	Game *GameResult
}

// GameResult sums up a finished hand.
type GameResult struct {
	// Taken is the card points each team collected, including the last trick bonus.
	Taken [2]int
	// Winner is the team that won the hand.
	Winner Team
	// Points is the score each team earns for this hand.
	Points [2]int
}

// Game runs the card play of a hand once the auction settled a contract.
type Game struct {
	first     Seat
	turn      Seat
	contract  Contract
	hands     [NumSeats]Hand
	trick     Trick
	lastTrick *Trick
	tricks    int
	taken     [2]int
	wonBy     [NumSeats]int
	done      bool
}

// NewGame starts the card play; first leads the first trick.
func NewGame(first Seat, contract Contract, hands [NumSeats]Hand) *Game {
	return &Game{
		first:    first,
		turn:     first,
		contract: contract,
		hands:    hands,
		trick:    newTrick(first),
	}
}

// Contract returns the contract being played.
func (g *Game) Contract() Contract {
	return g.contract
}

// Turn returns the seat expected to play next.
func (g *Game) Turn() Seat {
	return g.turn
}

// Hands returns the cards each seat still holds.
func (g *Game) Hands() [NumSeats]Hand {
	return g.hands
}

// CurrentTrick returns the trick in progress.
func (g *Game) CurrentTrick() Trick {
	return g.trick
}

// LastTrick returns the previously completed trick, if any.
func (g *Game) LastTrick() (Trick, bool) {
	if g.lastTrick == nil {
		return Trick{}, false
	}
	return *g.lastTrick, true
}

// IsOver reports whether every trick has been played.
func (g *Game) IsOver() bool {
	return g.done
}

// CanPlay checks whether seat may play card right now.
func (g *Game) CanPlay(seat Seat, card Card) error {
	if g.done {
		return ErrGameOver
	}
	if seat != g.turn {
		return ErrPlayTurnOrder
	}
	if !card.valid() {
		return ErrInvalidCardPlayed
	}
	hand := g.hands[seat]
	if !hand.Has(card) {
		return ErrCardMissing
	}

	led, ok := g.trick.Led()
	if !ok {
		return nil
	}
	trump := g.contract.Trump

	if card.Suit == led.Suit {
		if led.Suit == trump && !g.overTrumps(hand, card) {
			return ErrShouldOverTrump
		}
		return nil
	}
	if hand.HasSuit(led.Suit) {
		return ErrIncorrectSuit
	}
	if g.trick.Winner == seat.Partner() {
		return nil
	}
	if card.Suit == trump {
		if !g.overTrumps(hand, card) {
			return ErrShouldOverTrump
		}
		return nil
	}
	if hand.HasSuit(trump) {
		return ErrShouldTrump
	}
	return nil
}

// overTrumps reports whether playing the trump card respects the obligation
// to go above the best trump of the trick whenever the hand allows it.
func (g *Game) overTrumps(hand Hand, card Card) bool {
	trump := g.contract.Trump
	best, ok := g.trick.highestTrump(trump)
	if !ok || card.Beats(best, trump) {
		return true
	}
	for _, r := range Ranks {
		c := Card{Suit: trump, Rank: r}
		if hand.Has(c) && c.Beats(best, trump) {
			return false
		}
	}
	return true
}

// PlayCard plays card for seat.
func (g *Game) PlayCard(seat Seat, card Card) (TrickResult, error) {
	if err := g.CanPlay(seat, card); err != nil {
		return TrickResult{}, err
	}

	trump := g.contract.Trump
	g.hands[seat].Remove(card)
	g.trick.play(seat, card, trump)
	g.turn = seat.Next()

	if g.trick.Count < NumSeats {
		return TrickResult{}, nil
	}

	winner := g.trick.Winner
	g.taken[winner.Team()] += g.trick.Points(trump)
	g.wonBy[winner]++
	g.tricks++
	finished := g.trick
	g.lastTrick = &finished
	g.trick = newTrick(winner)
	g.turn = winner

	result := TrickResult{TrickOver: true, Winner: winner}
	if g.tricks == TricksPerHand {
		g.taken[winner.Team()] += lastTrickBonus
		g.done = true
		res := g.score()
		result.Game = &res
	}
	return result, nil
}

// score decides whether the contract was made. The winning team earns the
// contract score, doubled for each coinche level.
func (g *Game) score() GameResult {
	author := g.contract.Author
	team := author.Team()

	var made bool
	switch g.contract.Target {
	case TargetCapot:
		made = g.wonBy[author]+g.wonBy[author.Partner()] == TricksPerHand
	case TargetGenerale:
		made = g.wonBy[author] == TricksPerHand
	default:
		made = g.taken[team] >= g.contract.Target.Score()
	}

	winner := team
	if !made {
		winner = team.Opponent()
	}
	var points [2]int
	points[winner] = g.contract.Target.Score() * g.contract.Multiplier()
	return GameResult{Taken: g.taken, Winner: winner, Points: points}
}
