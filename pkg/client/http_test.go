package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vctt94/coinched/pkg/coinche"
	"github.com/vctt94/coinched/pkg/server"
)

func TestHTTPBackendRequiresJoin(t *testing.T) {
	b := NewHTTPBackend("127.0.0.1:1", nil, nil)
	_, err := b.Pass(context.Background())
	assert.ErrorIs(t, err, ErrNotJoined)
	_, err = b.Pull(context.Background(), -1)
	assert.ErrorIs(t, err, ErrNotJoined)
	assert.ErrorIs(t, b.Leave(context.Background()), ErrNotJoined)
}

func TestHTTPBackendDecodesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/join":
			w.Write([]byte(`{"player_id":77,"seat":2,"party":"6f1c1a3c-4a7b-4b86-9d55-4b8c3a0e8f10"}`))
		case "/pass/77":
			w.WriteHeader(http.StatusGone)
			w.Write([]byte(`{"error":"party was cancelled: player P1 left the party"}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	b := NewHTTPBackend(srv.URL+"/", nil, nil)
	info, err := b.Join(context.Background())
	require.NoError(t, err)
	assert.Equal(t, server.PlayerID(77), info.PlayerID)
	assert.Equal(t, coinche.Seat(2), info.Seat)

	_, err = b.Pass(context.Background())
	var serr *ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusGone, serr.Status)
	assert.Equal(t, "party was cancelled: player P1 left the party", serr.Message)
	assert.True(t, IsPartyGone(err))

	_, err = b.Coinche(context.Background())
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadGateway, serr.Status)
	assert.Equal(t, "Bad Gateway", serr.Message)
	assert.False(t, IsPartyGone(err))
}

func TestHTTPBackendAgainstServer(t *testing.T) {
	gm := server.NewGameManager(server.Config{Rules: firstSeatRules{server.NewCoincheRules(8)}})
	srv := httptest.NewServer(server.NewHTTPServer(gm, nil, nil))
	defer srv.Close()

	type joined struct {
		b    *HTTPBackend
		info server.NewPartyInfo
	}
	results := make(chan joined, coinche.NumSeats)
	for i := 0; i < coinche.NumSeats; i++ {
		go func() {
			b := NewHTTPBackend(srv.URL, nil, nil)
			info, err := b.Join(context.Background())
			assert.NoError(t, err)
			results <- joined{b, info}
		}()
	}

	var bidder *HTTPBackend
	for i := 0; i < coinche.NumSeats; i++ {
		j := <-results
		require.NotNil(t, j.b)
		id, ok := j.b.PlayerID()
		require.True(t, ok)
		assert.Equal(t, j.info.PlayerID, id)

		ev, err := j.b.Pull(context.Background(), -1)
		require.NoError(t, err)
		assert.Equal(t, 0, ev.ID)

		hand, err := j.b.Hand(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 8, hand.Len())

		phase, err := j.b.Phase(context.Background())
		require.NoError(t, err)
		assert.Equal(t, server.PhaseBidding, phase.Phase)
		require.NotNil(t, phase.Turn)
		if *phase.Turn == j.info.Seat {
			bidder = j.b
		}
	}
	require.NotNil(t, bidder)

	ev, err := bidder.Bid(context.Background(), coinche.Spades, coinche.Target100)
	require.NoError(t, err)
	assert.Equal(t, 1, ev.ID)

	scores, err := bidder.Scores(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [2]int{0, 0}, scores)

	_, err = bidder.History(context.Background())
	var serr *ServerError
	require.ErrorAs(t, err, &serr, "history is disabled without a database")
	assert.Equal(t, http.StatusNotFound, serr.Status)

	require.NoError(t, bidder.Leave(context.Background()))
	_, ok := bidder.PlayerID()
	assert.False(t, ok)
}

func TestHTTPBackendResumeAndHealth(t *testing.T) {
	gm := server.NewGameManager(server.Config{Rules: firstSeatRules{server.NewCoincheRules(8)}})
	srv := httptest.NewServer(server.NewHTTPServer(gm, nil, nil))
	defer srv.Close()

	b := NewHTTPBackend(srv.URL, nil, nil)
	health, err := b.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Zero(t, health.Players)

	b.Resume(42)
	id, ok := b.PlayerID()
	assert.True(t, ok)
	assert.Equal(t, server.PlayerID(42), id)

	_, err = b.Scores(context.Background())
	var serr *ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusNotFound, serr.Status)
}
