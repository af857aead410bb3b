package coinche

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"math/rand"
	"sort"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Hearts Suit = iota
	Spades
	Diamonds
	Clubs
)

// Suits lists every suit in display order.
var Suits = []Suit{Hearts, Spades, Diamonds, Clubs}

var suitNames = [...]string{"hearts", "spades", "diamonds", "clubs"}
var suitSymbols = [...]string{"♥", "♠", "♦", "♣"}

// String returns the suit name.
func (s Suit) String() string {
	if s < Hearts || s > Clubs {
		return fmt.Sprintf("Suit(%d)", int(s))
	}
	return suitNames[s]
}

// Symbol returns the unicode symbol for the suit.
func (s Suit) Symbol() string {
	if s < Hearts || s > Clubs {
		return "?"
	}
	return suitSymbols[s]
}

// ParseSuit accepts suit names, initials and symbols.
func ParseSuit(str string) (Suit, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "♥", "h", "heart", "hearts":
		return Hearts, nil
	case "♠", "s", "spade", "spades":
		return Spades, nil
	case "♦", "d", "diamond", "diamonds":
		return Diamonds, nil
	case "♣", "c", "club", "clubs":
		return Clubs, nil
	}
	return 0, fmt.Errorf("invalid suit: %q", str)
}

// MarshalText implements encoding.TextMarshaler.
func (s Suit) MarshalText() ([]byte, error) {
	if s < Hearts || s > Clubs {
		return nil, fmt.Errorf("invalid suit: %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Suit) UnmarshalText(text []byte) error {
	parsed, err := ParseSuit(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Rank represents a card value. Ranks are declared in their non-trump order.
type Rank int

const (
	Seven Rank = iota
	Eight
	Nine
	Jack
	Queen
	King
	Ten
	Ace
)

// Ranks lists every rank from weakest to strongest outside trump.
var Ranks = []Rank{Seven, Eight, Nine, Jack, Queen, King, Ten, Ace}

var rankNames = [...]string{"7", "8", "9", "J", "Q", "K", "10", "A"}

// String returns the short rank name.
func (r Rank) String() string {
	if r < Seven || r > Ace {
		return fmt.Sprintf("Rank(%d)", int(r))
	}
	return rankNames[r]
}

// ParseRank accepts short and long rank names.
func ParseRank(str string) (Rank, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "7", "seven":
		return Seven, nil
	case "8", "eight":
		return Eight, nil
	case "9", "nine":
		return Nine, nil
	case "j", "jack":
		return Jack, nil
	case "q", "queen":
		return Queen, nil
	case "k", "king":
		return King, nil
	case "10", "t", "ten":
		return Ten, nil
	case "a", "ace":
		return Ace, nil
	}
	return 0, fmt.Errorf("invalid value: %q", str)
}

// trumpOrder maps a rank to its strength when its suit is trump.
var trumpOrder = [...]int{
	Seven: 0,
	Eight: 1,
	Queen: 2,
	King:  3,
	Ten:   4,
	Ace:   5,
	Nine:  6,
	Jack:  7,
}

var trumpPoints = [...]int{Seven: 0, Eight: 0, Nine: 14, Jack: 20, Queen: 3, King: 4, Ten: 10, Ace: 11}
var plainPoints = [...]int{Seven: 0, Eight: 0, Nine: 0, Jack: 2, Queen: 3, King: 4, Ten: 10, Ace: 11}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a card from its suit and rank.
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns a string representation of the card
func (c Card) String() string {
	return c.Rank.String() + c.Suit.Symbol()
}

// Points returns what the card is worth at the end of a hand.
func (c Card) Points(trump Suit) int {
	if c.Suit == trump {
		return trumpPoints[c.Rank]
	}
	return plainPoints[c.Rank]
}

// strength orders cards of the same suit.
func (c Card) strength(trump Suit) int {
	if c.Suit == trump {
		return trumpOrder[c.Rank]
	}
	return int(c.Rank)
}

// Beats reports whether c wins against other in a trick led with the given suit.
func (c Card) Beats(other Card, trump Suit) bool {
	if c.Suit == other.Suit {
		return c.strength(trump) > other.strength(trump)
	}
	return c.Suit == trump
}

func (c Card) index() uint {
	return uint(c.Suit)*8 + uint(c.Rank)
}

func (c Card) valid() bool {
	return c.Suit >= Hearts && c.Suit <= Clubs && c.Rank >= Seven && c.Rank <= Ace
}

// ParseCard reads a card written as rank then suit, e.g. "10h", "J♠" or "A spades".
func ParseCard(str string) (Card, error) {
	str = strings.TrimSpace(str)
	if fields := strings.Fields(str); len(fields) == 2 {
		return parseCardParts(fields[0], fields[1])
	}
	for _, symbol := range suitSymbols {
		if strings.HasSuffix(str, symbol) {
			return parseCardParts(strings.TrimSuffix(str, symbol), symbol)
		}
	}
	if len(str) < 2 {
		return Card{}, fmt.Errorf("invalid card: %q", str)
	}
	return parseCardParts(str[:len(str)-1], str[len(str)-1:])
}

func parseCardParts(rank, suit string) (Card, error) {
	r, err := ParseRank(rank)
	if err != nil {
		return Card{}, err
	}
	s, err := ParseSuit(suit)
	if err != nil {
		return Card{}, err
	}
	return Card{Suit: s, Rank: r}, nil
}

// CardJSON represents a card for JSON serialization
type CardJSON struct {
	Suit  string `json:"suit"`
	Value string `json:"value"`
}

// MarshalJSON implements json.Marshaler interface for Card
func (c Card) MarshalJSON() ([]byte, error) {
	if !c.valid() {
		return nil, fmt.Errorf("invalid card: %d/%d", int(c.Suit), int(c.Rank))
	}
	return json.Marshal(CardJSON{
		Suit:  c.Suit.String(),
		Value: c.Rank.String(),
	})
}

// UnmarshalJSON implements json.Unmarshaler interface for Card
func (c *Card) UnmarshalJSON(data []byte) error {
	var cardJSON CardJSON
	if err := json.Unmarshal(data, &cardJSON); err != nil {
		return err
	}
	card, err := parseCardParts(cardJSON.Value, cardJSON.Suit)
	if err != nil {
		return err
	}
	*c = card
	return nil
}

// Hand is a set of cards, one bit per card.
type Hand uint32

// NewHand builds a hand holding the given cards.
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h.Add(c)
	}
	return h
}

// Add puts c in the hand.
func (h *Hand) Add(c Card) {
	*h |= 1 << c.index()
}

// Remove takes c out of the hand.
func (h *Hand) Remove(c Card) {
	*h &^= 1 << c.index()
}

// Has reports whether the hand holds c.
func (h Hand) Has(c Card) bool {
	return c.valid() && h&(1<<c.index()) != 0
}

// HasSuit reports whether the hand holds any card of the suit.
func (h Hand) HasSuit(s Suit) bool {
	return h&(0xff<<(uint(s)*8)) != 0
}

// Len returns the number of cards in the hand.
func (h Hand) Len() int {
	return bits.OnesCount32(uint32(h))
}

// IsEmpty reports whether the hand holds no card.
func (h Hand) IsEmpty() bool {
	return h == 0
}

// Cards lists the cards of the hand, grouped by suit and sorted by rank.
func (h Hand) Cards() []Card {
	cards := make([]Card, 0, h.Len())
	for _, s := range Suits {
		for _, r := range Ranks {
			c := Card{Suit: s, Rank: r}
			if h.Has(c) {
				cards = append(cards, c)
			}
		}
	}
	return cards
}

// String returns the cards of the hand separated by spaces.
func (h Hand) String() string {
	cards := h.Cards()
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// MarshalJSON encodes the hand as a list of cards.
func (h Hand) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Cards())
}

// UnmarshalJSON decodes a list of cards.
func (h *Hand) UnmarshalJSON(data []byte) error {
	var cards []Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return err
	}
	*h = NewHand(cards...)
	return nil
}

// Deck represents a deck of cards
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck creates a new shuffled 32-card deck with the given random number generator
func NewDeck(rng *rand.Rand) *Deck {
	deck := &Deck{
		cards: make([]Card, 0, 32),
		rng:   rng,
	}
	for _, suit := range Suits {
		for _, rank := range Ranks {
			deck.cards = append(deck.cards, Card{Suit: suit, Rank: rank})
		}
	}
	deck.Shuffle()
	return deck
}

// Shuffle randomizes the order of cards in the deck
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top card from the deck
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// Size returns the number of cards remaining in the deck
func (d *Deck) Size() int {
	return len(d.cards)
}

// Deal shuffles a fresh deck and gives eight cards to every seat, three,
// then two, then three at a time.
func Deal(rng *rand.Rand) [NumSeats]Hand {
	deck := NewDeck(rng)
	var hands [NumSeats]Hand
	for _, n := range []int{3, 2, 3} {
		for seat := range hands {
			for i := 0; i < n; i++ {
				c, _ := deck.Draw()
				hands[seat].Add(c)
			}
		}
	}
	return hands
}

// SortCards orders cards the same way Hand.Cards does.
func SortCards(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		return cards[i].index() < cards[j].index()
	})
}
