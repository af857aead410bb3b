package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vctt94/coinched/pkg/coinche"
	"github.com/vctt94/coinched/pkg/event"
)

type httpFixture struct {
	t   *testing.T
	srv *httptest.Server
	gm  *GameManager
	db  *InMemoryDB
}

func newHTTPFixture(t *testing.T, rules Rules) *httpFixture {
	db := NewInMemoryDB()
	ep := NewEventProcessor(db, nil, 64, 1)
	ep.Start()
	gm := NewGameManager(Config{Rules: rules, Observer: ep})
	srv := httptest.NewServer(NewHTTPServer(gm, db, nil))
	t.Cleanup(func() {
		srv.Close()
		ep.Stop()
	})
	return &httpFixture{t: t, srv: srv, gm: gm, db: db}
}

// do sends a request and decodes the JSON answer into out.
func (f *httpFixture) do(method, path string, body, out interface{}) int {
	f.t.Helper()
	var reader bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader.Reset(data)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, &reader)
	require.NoError(f.t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(f.t, err)
	defer resp.Body.Close()
	assert.Equal(f.t, "application/json", resp.Header.Get("Content-Type"))
	if out != nil {
		require.NoError(f.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (f *httpFixture) party(id PlayerID) *Party {
	f.t.Helper()
	info, err := f.gm.registry.Lookup(id)
	require.NoError(f.t, err)
	return info.Party
}

func (f *httpFixture) joinFour() [coinche.NumSeats]NewPartyInfo {
	f.t.Helper()
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		players [coinche.NumSeats]NewPartyInfo
	)
	for i := 0; i < coinche.NumSeats; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var info NewPartyInfo
			if assert.Equal(f.t, http.StatusOK, f.do(http.MethodPost, "/join", nil, &info)) {
				mu.Lock()
				players[info.Seat] = info
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return players
}

func TestHTTPAuctionScenario(t *testing.T) {
	f := newHTTPFixture(t, seatZeroRules{NewCoincheRules(5)})
	players := f.joinFour()
	require.NotZero(t, players[3].PlayerID)
	assert.Equal(t, players[0].PartyID, players[3].PartyID)

	var ev event.Event
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, fmt.Sprintf("/pull/%d/-1", players[2].PlayerID), nil, &ev))
	deal, ok := ev.Payload.(event.NewGameRelative)
	require.True(t, ok)
	var hand coinche.Hand
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, fmt.Sprintf("/hand/%d", players[2].PlayerID), nil, &hand))
	assert.Equal(t, hand, deal.Hand)

	bid := map[string]string{"suit": "hearts", "target": "80"}
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, fmt.Sprintf("/bid/%d", players[0].PlayerID), bid, &ev))
	assert.Equal(t, 1, ev.ID)
	assert.Equal(t, event.FromPlayer{Seat: 0, Action: event.Bid{Suit: coinche.Hearts, Target: coinche.Target80}}, ev.Payload)

	// Long-poll released by a pass from another player.
	pulled := make(chan event.Event)
	go func() {
		var ev event.Event
		f.do(http.MethodGet, fmt.Sprintf("/pull/%d/1", players[3].PlayerID), nil, &ev)
		pulled <- ev
	}()
	require.Eventually(t, func() bool { return f.party(players[3].PlayerID).pendingWaiters() == 1 },
		time.Second, time.Millisecond)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, fmt.Sprintf("/pass/%d", players[1].PlayerID), nil, &ev))
	assert.Equal(t, ev, <-pulled)

	for _, seat := range []coinche.Seat{2, 3} {
		require.Equal(t, http.StatusOK, f.do(http.MethodPost, fmt.Sprintf("/pass/%d", players[seat].PlayerID), nil, &ev))
	}
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, fmt.Sprintf("/pull/%d/4", players[1].PlayerID), nil, &ev))
	assert.Equal(t, event.BidOver{Contract: coinche.Contract{Author: 0, Trump: coinche.Hearts, Target: coinche.Target80}}, ev.Payload)

	var phase PhaseSummary
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, fmt.Sprintf("/phase/%d", players[0].PlayerID), nil, &phase))
	assert.Equal(t, PhasePlaying, phase.Phase)

	var scores [2]int
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, fmt.Sprintf("/scores/%d", players[0].PlayerID), nil, &scores))
	assert.Equal(t, [2]int{0, 0}, scores)

	var hands []HandSummary
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, fmt.Sprintf("/history/%d", players[0].PlayerID), nil, &hands))
	assert.Empty(t, hands)

	var health HealthResponse
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", nil, &health))
	assert.Equal(t, HealthResponse{Status: "ok", Players: 4}, health)
}

func TestHTTPErrors(t *testing.T) {
	f := newHTTPFixture(t, seatZeroRules{NewCoincheRules(5)})
	players := f.joinFour()
	p0, p1 := players[0].PlayerID, players[1].PlayerID

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"unknown player", http.MethodPost, "/pass/1", nil, http.StatusNotFound},
		{"bad player id", http.MethodPost, "/pass/abc", nil, http.StatusBadRequest},
		{"bad event id", http.MethodGet, fmt.Sprintf("/pull/%d/x", p0), nil, http.StatusBadRequest},
		{"unknown event", http.MethodGet, fmt.Sprintf("/pull/%d/5", p0), nil, http.StatusNotFound},
		{"bid out of turn", http.MethodPost, fmt.Sprintf("/bid/%d", p1),
			map[string]string{"suit": "spades", "target": "90"}, http.StatusUnprocessableEntity},
		{"bad bid body", http.MethodPost, fmt.Sprintf("/bid/%d", p0),
			map[string]string{"suit": "stars", "target": "90"}, http.StatusBadRequest},
		{"play while bidding", http.MethodPost, fmt.Sprintf("/play/%d", p0),
			map[string]interface{}{"card": map[string]string{"suit": "hearts", "value": "A"}}, http.StatusConflict},
		{"no such route", http.MethodGet, "/nope", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp ErrorResponse
			assert.Equal(t, tt.status, f.do(tt.method, tt.path, tt.body, &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}

	var resp ErrorResponse
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, fmt.Sprintf("/leave/%d", p1), nil, nil))
	assert.Equal(t, http.StatusGone, f.do(http.MethodPost, fmt.Sprintf("/pass/%d", p0), nil, &resp))
	assert.Contains(t, resp.Error, "cancelled")

	require.Eventually(t, func() bool {
		reason, ok := f.db.cancelReason(players[0].PartyID)
		return ok && reason == "player P1 left the party"
	}, time.Second, 5*time.Millisecond)
}

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, errorStatus(&PlayRejectedError{Err: coinche.ErrIncorrectSuit}))
	assert.Equal(t, http.StatusConflict, errorStatus(ErrWrongPhaseForBid))
	assert.Equal(t, http.StatusGone, errorStatus(fmt.Errorf("%w: gone", ErrPartyGone)))
	assert.Equal(t, http.StatusRequestTimeout, errorStatus(ErrJoinExpired))
	assert.Equal(t, http.StatusInternalServerError, errorStatus(fmt.Errorf("disk on fire")))
}
