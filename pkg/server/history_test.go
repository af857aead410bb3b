package server

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vctt94/coinched/pkg/coinche"
)

func TestEventProcessorStoresInOrder(t *testing.T) {
	db := NewInMemoryDB()
	ep := NewEventProcessor(db, nil, 16, 3)

	id := uuid.New()
	// Publish before start is dropped.
	ep.PartyCreated(id, 1, time.Now())

	ep.Start()
	ep.Start()
	ep.PartyCreated(id, 1, time.Now())
	for i := 1; i <= 3; i++ {
		ep.HandFinished(id, HandSummary{Number: i, Points: [2]int{i * 10, 0}})
	}
	ep.PartyCancelled(id, "player P0 left the party", time.Now())
	ep.Stop()
	ep.Stop()

	assert.Equal(t, []HistoryEventType{
		HistoryEventPartyCreated,
		HistoryEventHandFinished,
		HistoryEventHandFinished,
		HistoryEventHandFinished,
		HistoryEventPartyCancelled,
	}, db.saveOrder)

	hands, err := db.LoadHands(id)
	require.NoError(t, err)
	require.Len(t, hands, 3)
	for i, hand := range hands {
		assert.Equal(t, i+1, hand.Number)
	}
	reason, ok := db.cancelReason(id)
	require.True(t, ok)
	assert.Equal(t, "player P0 left the party", reason)

	// Stopped processors drop events.
	ep.PartyCreated(uuid.New(), 0, time.Now())
	assert.Equal(t, 1, db.partyCount())
}

func TestEventProcessorFullQueueDrops(t *testing.T) {
	db := NewInMemoryDB()
	ep := NewEventProcessor(db, nil, 1, 1)

	// Fill the single queue slot without running the worker.
	ep.mu.Lock()
	ep.started = true
	ep.mu.Unlock()
	ep.PartyCreated(uuid.New(), 0, time.Now())
	ep.PartyCreated(uuid.New(), 0, time.Now())
	assert.Len(t, ep.workers[0].queue, 1)
}

func TestHistoryFromPartyIntoSQLite(t *testing.T) {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "sub", "history.sqlite"))
	require.NoError(t, err)
	defer db.Close()

	ep := NewEventProcessor(db, nil, 64, 2)
	ep.Start()

	rules := newScriptedRules(
		coinche.GameResult{Winner: 1, Taken: [2]int{50, 112}, Points: [2]int{0, 160}},
	)
	p := newParty(partyConfig{rules: rules, observer: ep}, 1)
	_, err = p.Bid(1, coinche.Clubs, coinche.Target100)
	require.NoError(t, err)
	_, err = p.Coinche(2)
	require.NoError(t, err)
	_, err = p.Coinche(3)
	require.NoError(t, err)
	_, err = p.PlayCard(1, rules.hands[1].Cards()[0])
	require.NoError(t, err)
	p.Cancel("player P2 left the party")
	ep.Stop()

	hands, err := db.LoadHands(p.ID)
	require.NoError(t, err)
	require.Len(t, hands, 1)
	hand := hands[0]
	assert.Equal(t, 1, hand.Number)
	assert.Equal(t, coinche.Seat(1), hand.First)
	assert.Equal(t, coinche.Contract{Author: 1, Trump: coinche.Clubs, Target: coinche.Target100, CoincheLevel: 2}, hand.Contract)
	assert.Equal(t, coinche.Team(1), hand.Winner)
	assert.Equal(t, [2]int{50, 112}, hand.Taken)
	assert.Equal(t, [2]int{0, 160}, hand.Scores)
}
