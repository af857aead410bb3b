package coinche

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func suitHand(s Suit) Hand {
	var h Hand
	for _, r := range Ranks {
		h.Add(NewCard(s, r))
	}
	return h
}

func TestGameFollowSuitRules(t *testing.T) {
	hands := [NumSeats]Hand{
		NewHand(NewCard(Spades, Ace), NewCard(Clubs, Seven)),
		NewHand(NewCard(Spades, Seven), NewCard(Clubs, Ace)),
		NewHand(NewCard(Diamonds, Ace), NewCard(Hearts, Seven)),
		NewHand(NewCard(Hearts, Jack), NewCard(Hearts, Eight), NewCard(Clubs, Eight)),
	}
	g := NewGame(0, Contract{Author: 0, Trump: Hearts, Target: Target80}, hands)

	_, err := g.PlayCard(1, NewCard(Spades, Seven))
	assert.ErrorIs(t, err, ErrPlayTurnOrder)
	_, err = g.PlayCard(0, NewCard(Hearts, Ace))
	assert.ErrorIs(t, err, ErrCardMissing)

	_, err = g.PlayCard(0, NewCard(Spades, Ace))
	require.NoError(t, err)

	_, err = g.PlayCard(1, NewCard(Clubs, Ace))
	assert.ErrorIs(t, err, ErrIncorrectSuit)
	assert.True(t, g.Hands()[1].Has(NewCard(Clubs, Ace)), "rejected card stays in hand")
	_, err = g.PlayCard(1, NewCard(Spades, Seven))
	require.NoError(t, err)

	// Partner is winning the trick: no obligation to trump.
	_, err = g.PlayCard(2, NewCard(Diamonds, Ace))
	require.NoError(t, err)

	// Opponent is winning and seat 3 holds trumps.
	_, err = g.PlayCard(3, NewCard(Clubs, Eight))
	assert.ErrorIs(t, err, ErrShouldTrump)
	res, err := g.PlayCard(3, NewCard(Hearts, Eight))
	require.NoError(t, err)
	assert.True(t, res.TrickOver)
	assert.Equal(t, Seat(3), res.Winner)
	assert.Nil(t, res.Game)
	assert.Equal(t, Seat(3), g.Turn(), "trick winner leads")
}

func TestGameMustOverTrump(t *testing.T) {
	hands := [NumSeats]Hand{
		NewHand(NewCard(Hearts, Ace)),
		NewHand(NewCard(Hearts, Seven), NewCard(Hearts, Jack)),
		NewHand(NewCard(Spades, Seven)),
		NewHand(NewCard(Spades, Eight)),
	}
	g := NewGame(0, Contract{Author: 1, Trump: Hearts, Target: Target80}, hands)

	_, err := g.PlayCard(0, NewCard(Hearts, Ace))
	require.NoError(t, err)
	_, err = g.PlayCard(1, NewCard(Hearts, Seven))
	assert.ErrorIs(t, err, ErrShouldOverTrump)
	_, err = g.PlayCard(1, NewCard(Hearts, Jack))
	require.NoError(t, err)
}

func TestGameFullHandScoring(t *testing.T) {
	hands := [NumSeats]Hand{suitHand(Hearts), suitHand(Spades), suitHand(Diamonds), suitHand(Clubs)}
	contract := Contract{Author: 0, Trump: Hearts, Target: Target120, CoincheLevel: 1}
	g := NewGame(0, contract, hands)

	var last TrickResult
	for trick := 0; trick < TricksPerHand; trick++ {
		for i := 0; i < NumSeats; i++ {
			seat := g.Turn()
			card := g.Hands()[seat].Cards()[0]
			res, err := g.PlayCard(seat, card)
			require.NoError(t, err, "trick %d seat %d card %v", trick, seat, card)
			last = res
		}
		require.True(t, last.TrickOver)
		assert.Equal(t, Seat(0), last.Winner)
	}

	require.NotNil(t, last.Game)
	assert.True(t, g.IsOver())
	assert.Equal(t, [2]int{162, 0}, last.Game.Taken)
	assert.Equal(t, Team(0), last.Game.Winner)
	assert.Equal(t, [2]int{240, 0}, last.Game.Points)

	_, err := g.PlayCard(0, NewCard(Hearts, Ace))
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestGameFailedContract(t *testing.T) {
	hands := [NumSeats]Hand{suitHand(Hearts), suitHand(Spades), suitHand(Diamonds), suitHand(Clubs)}
	// Seat 1 names diamonds but seat 2, on the other team, holds every diamond.
	contract := Contract{Author: 1, Trump: Diamonds, Target: Target80}
	g := NewGame(0, contract, hands)

	var last TrickResult
	for !g.IsOver() {
		seat := g.Turn()
		res, err := g.PlayCard(seat, g.Hands()[seat].Cards()[0])
		require.NoError(t, err)
		last = res
	}
	require.NotNil(t, last.Game)
	assert.Equal(t, Team(0), last.Game.Winner)
	assert.Equal(t, [2]int{80, 0}, last.Game.Points)
	assert.Equal(t, [2]int{162, 0}, last.Game.Taken)
}
