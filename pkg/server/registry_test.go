package server

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vctt94/coinched/pkg/coinche"
)

// sequenceIDs hands out ids from a fixed list.
func sequenceIDs(ids ...PlayerID) func() PlayerID {
	var mu sync.Mutex
	return func() PlayerID {
		mu.Lock()
		defer mu.Unlock()
		id := ids[0]
		ids = ids[1:]
		return id
	}
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRegistryRetriesCollisions(t *testing.T) {
	r := NewRegistry(sequenceIDs(0, 7, 7, 8, 8, 9, 10, 9, 11, 12, 13, 14), nil)
	party := newTestParty(newScriptedRules(), 0)

	ids := r.Register(party)
	assert.Equal(t, [coinche.NumSeats]PlayerID{7, 8, 9, 10}, ids)

	ids = r.Register(party)
	assert.Equal(t, [coinche.NumSeats]PlayerID{11, 12, 13, 14}, ids)
	assert.Equal(t, 8, r.Len())

	for seat, id := range ids {
		info, err := r.Lookup(id)
		require.NoError(t, err)
		assert.Same(t, party, info.Party)
		assert.Equal(t, coinche.Seat(seat), info.Seat)
	}
}

func TestRegistryLookupTouchesPlayer(t *testing.T) {
	clock := newFakeClock()
	r := NewRegistry(nil, clock.Now)
	ids := r.Register(newTestParty(newScriptedRules(), 0))

	info, err := r.Lookup(ids[2])
	require.NoError(t, err)
	assert.True(t, clock.Now().Equal(info.LastActive()))

	clock.Advance(time.Minute)
	_, err = r.Lookup(ids[2])
	require.NoError(t, err)
	assert.True(t, clock.Now().Equal(info.LastActive()))

	idle := r.Idle(IdleTimeout(30*time.Second), clock.Now())
	assert.Len(t, idle, 3)
	assert.NotContains(t, idle, ids[2])
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry(nil, nil)
	ids := r.Register(newTestParty(newScriptedRules(), 0))

	assert.True(t, r.Remove(ids[0]))
	assert.False(t, r.Remove(ids[0]))
	_, err := r.Lookup(ids[0])
	assert.ErrorIs(t, err, ErrUnknownPlayer)
	assert.Equal(t, 3, r.Len())
}

func TestRegistryConcurrentLookups(t *testing.T) {
	r := NewRegistry(nil, nil)
	ids := r.Register(newTestParty(newScriptedRules(), 0))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				info, err := r.Lookup(ids[(i+j)%len(ids)])
				if assert.NoError(t, err) {
					assert.Equal(t, coinche.Seat((i+j)%len(ids)), info.Seat)
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestIdlePolicies(t *testing.T) {
	now := time.Now()
	assert.False(t, NeverExpire{}.Expired(now.Add(-24*time.Hour), now))
	assert.True(t, IdleTimeout(time.Minute).Expired(now.Add(-2*time.Minute), now))
	assert.False(t, IdleTimeout(time.Minute).Expired(now.Add(-30*time.Second), now))
}

func TestParsePlayerID(t *testing.T) {
	id, err := ParsePlayerID("4294967295")
	require.NoError(t, err)
	assert.Equal(t, PlayerID(4294967295), id)
	assert.Equal(t, "4294967295", id.String())

	_, err = ParsePlayerID("4294967296")
	assert.Error(t, err)
	_, err = ParsePlayerID("-1")
	assert.Error(t, err)
}
