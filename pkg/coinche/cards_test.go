package coinche

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck(t *testing.T) {
	deck := NewDeck(rand.New(rand.NewSource(42)))
	require.Equal(t, 32, deck.Size())

	seen := make(map[Card]bool)
	suitCount := make(map[Suit]int)
	for _, card := range deck.cards {
		assert.False(t, seen[card], "duplicate card %v", card)
		seen[card] = true
		suitCount[card.Suit]++
	}
	for _, suit := range Suits {
		assert.Equal(t, 8, suitCount[suit], "suit %v", suit)
	}
}

func TestDeckShuffleIsSeeded(t *testing.T) {
	deck1 := NewDeck(rand.New(rand.NewSource(42)))
	deck2 := NewDeck(rand.New(rand.NewSource(42)))
	deck3 := NewDeck(rand.New(rand.NewSource(43)))

	assert.Equal(t, deck1.cards, deck2.cards, "same seed should give the same order")
	assert.NotEqual(t, deck1.cards, deck3.cards, "different seeds should give different orders")
}

func TestDeckDraw(t *testing.T) {
	deck := NewDeck(rand.New(rand.NewSource(7)))
	for i := 0; i < 32; i++ {
		_, ok := deck.Draw()
		require.True(t, ok)
		assert.Equal(t, 31-i, deck.Size())
	}
	card, ok := deck.Draw()
	assert.False(t, ok)
	assert.Equal(t, Card{}, card)
}

func TestDealGivesEightDistinctCardsEach(t *testing.T) {
	hands := Deal(rand.New(rand.NewSource(1)))

	var all Hand
	for seat, hand := range hands {
		assert.Equal(t, 8, hand.Len(), "seat %d", seat)
		assert.Zero(t, all&hand, "seat %d shares cards with another seat", seat)
		all |= hand
	}
	assert.Equal(t, 32, all.Len())
}

func TestHandOperations(t *testing.T) {
	jackH := NewCard(Hearts, Jack)
	aceS := NewCard(Spades, Ace)

	h := NewHand(jackH, aceS)
	assert.Equal(t, 2, h.Len())
	assert.True(t, h.Has(jackH))
	assert.True(t, h.HasSuit(Spades))
	assert.False(t, h.HasSuit(Clubs))

	h.Remove(jackH)
	assert.False(t, h.Has(jackH))
	assert.False(t, h.HasSuit(Hearts))
	assert.Equal(t, []Card{aceS}, h.Cards())
}

func TestCardStrength(t *testing.T) {
	tests := []struct {
		name  string
		card  Card
		other Card
		trump Suit
		beats bool
	}{
		{"trump jack over trump nine", NewCard(Hearts, Jack), NewCard(Hearts, Nine), Hearts, true},
		{"trump nine over trump ace", NewCard(Hearts, Nine), NewCard(Hearts, Ace), Hearts, true},
		{"plain ace over plain ten", NewCard(Spades, Ace), NewCard(Spades, Ten), Hearts, true},
		{"plain ten over plain jack", NewCard(Spades, Ten), NewCard(Spades, Jack), Hearts, true},
		{"any trump over plain ace", NewCard(Hearts, Seven), NewCard(Spades, Ace), Hearts, true},
		{"off suit never wins", NewCard(Clubs, Ace), NewCard(Spades, Seven), Hearts, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.beats, tc.card.Beats(tc.other, tc.trump))
		})
	}
}

func TestDeckIsWorth152Points(t *testing.T) {
	for _, trump := range Suits {
		total := 0
		for _, s := range Suits {
			for _, r := range Ranks {
				total += NewCard(s, r).Points(trump)
			}
		}
		assert.Equal(t, 152, total, "trump %v", trump)
	}
}

func TestParseCard(t *testing.T) {
	tests := map[string]Card{
		"10h":      NewCard(Hearts, Ten),
		"J♠":       NewCard(Spades, Jack),
		"a clubs":  NewCard(Clubs, Ace),
		"7d":       NewCard(Diamonds, Seven),
		"Q hearts": NewCard(Hearts, Queen),
	}
	for input, want := range tests {
		got, err := ParseCard(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseCard("2h")
	assert.Error(t, err)
	_, err = ParseCard("x")
	assert.Error(t, err)
}

func TestCardJSON(t *testing.T) {
	card := NewCard(Diamonds, King)
	data, err := json.Marshal(card)
	require.NoError(t, err)
	assert.JSONEq(t, `{"suit":"diamonds","value":"K"}`, string(data))

	var decoded Card
	require.NoError(t, json.Unmarshal([]byte(`{"suit":"♦","value":"king"}`), &decoded))
	assert.Equal(t, card, decoded)

	hand := NewHand(NewCard(Hearts, Seven), card)
	data, err = json.Marshal(hand)
	require.NoError(t, err)
	var decodedHand Hand
	require.NoError(t, json.Unmarshal(data, &decodedHand))
	assert.Equal(t, hand, decodedHand)
}
