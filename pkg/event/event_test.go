package event

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vctt94/coinched/pkg/coinche"
)

func TestForRedactsNewGame(t *testing.T) {
	hands := coinche.Deal(rand.New(rand.NewSource(3)))
	ev := Event{ID: 0, Payload: NewGame{First: 2, Hands: hands}}

	for seat := coinche.Seat(0); seat < coinche.NumSeats; seat++ {
		got := ev.For(seat)
		require.False(t, IsInternal(got.Payload), "seat %d received a raw NewGame", seat)

		rel, ok := got.Payload.(NewGameRelative)
		require.True(t, ok)
		assert.Equal(t, 0, got.ID)
		assert.Equal(t, coinche.Seat(2), rel.First)
		assert.Equal(t, hands[seat], rel.Hand)

		data, err := json.Marshal(got)
		require.NoError(t, err)
		var decoded Event
		require.NoError(t, json.Unmarshal(data, &decoded))
		decodedRel := decoded.Payload.(NewGameRelative)
		for other := coinche.Seat(0); other < coinche.NumSeats; other++ {
			if other == seat {
				continue
			}
			assert.Zero(t, decodedRel.Hand&hands[other], "seat %d sees cards of seat %d", seat, other)
		}
	}

	// The log entry itself is left untouched.
	_, ok := ev.Payload.(NewGame)
	assert.True(t, ok)
}

func TestForLeavesOtherEventsUnchanged(t *testing.T) {
	payloads := []Payload{
		YourTurn{},
		PartyCancelled{Message: "bye"},
		FromPlayer{Seat: 1, Action: Passed{}},
		BidOver{Contract: coinche.Contract{Author: 1, Trump: coinche.Clubs, Target: coinche.Target90}},
		BidCancelled{},
		TrickOver{Winner: 3},
		GameOver{Points: [2]int{0, 90}, Winner: 1, Scores: [2]int{80, 90}},
	}
	for _, p := range payloads {
		ev := Event{ID: 7, Payload: p}
		assert.Equal(t, ev, ev.For(0), "kind %s", p.Kind())
	}
}

func TestNewGameCannotBeEncoded(t *testing.T) {
	ev := Event{ID: 0, Payload: NewGame{First: 0}}
	_, err := json.Marshal(ev)
	assert.ErrorIs(t, err, ErrInternalEvent)
}

func TestEventJSON(t *testing.T) {
	ev := Event{ID: 1, Payload: FromPlayer{
		Seat:   0,
		Action: Bid{Suit: coinche.Hearts, Target: coinche.Target80},
	}}
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":1,"type":"from_player","event":{"seat":0,"action":"bid","data":{"suit":"hearts","target":"80"}}}`,
		string(data))

	var decoded Event
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ev, decoded)

	card := Event{ID: 9, Payload: FromPlayer{Seat: 3, Action: CardPlayed{Card: coinche.NewCard(coinche.Spades, coinche.Jack)}}}
	data, err = json.Marshal(card)
	require.NoError(t, err)
	decoded = Event{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, card, decoded)

	assert.Error(t, json.Unmarshal([]byte(`{"id":1,"type":"new_game"}`), &decoded))
}
