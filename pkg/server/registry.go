package server

import (
	"math/rand"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vctt94/coinched/pkg/coinche"
)

// PlayerID identifies a seated player. Zero is never assigned.
type PlayerID uint32

func (id PlayerID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParsePlayerID parses the decimal form of a player id.
func ParsePlayerID(s string) (PlayerID, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return PlayerID(v), nil
}

// PlayerInfo is what the registry knows about a player.
type PlayerInfo struct {
	Party *Party
	Seat  coinche.Seat

	lastActive atomic.Int64
}

// LastActive returns when the player last called the server.
func (pi *PlayerInfo) LastActive() time.Time {
	return time.Unix(0, pi.lastActive.Load())
}

func (pi *PlayerInfo) touch(now time.Time) {
	pi.lastActive.Store(now.UnixNano())
}

// Registry maps player ids to their party and seat.
type Registry struct {
	mu      sync.RWMutex
	players map[PlayerID]*PlayerInfo

	newID func() PlayerID
	now   func() time.Time
}

// NewRegistry creates an empty registry. newID generates candidate ids and
// now provides activity timestamps; nil picks random ids and the wall clock.
func NewRegistry(newID func() PlayerID, now func() time.Time) *Registry {
	if newID == nil {
		newID = func() PlayerID { return PlayerID(rand.Uint32()) }
	}
	if now == nil {
		now = time.Now
	}
	return &Registry{
		players: make(map[PlayerID]*PlayerInfo),
		newID:   newID,
		now:     now,
	}
}

// Register seats four new players at party, seat i going to ids[i].
func (r *Registry) Register(party *Party) [coinche.NumSeats]PlayerID {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var ids [coinche.NumSeats]PlayerID
	for seat := range ids {
		id := r.newID()
		for r.takenLocked(id) {
			id = r.newID()
		}
		info := &PlayerInfo{Party: party, Seat: coinche.Seat(seat)}
		info.touch(now)
		r.players[id] = info
		ids[seat] = id
	}
	return ids
}

func (r *Registry) takenLocked(id PlayerID) bool {
	_, ok := r.players[id]
	return ok || id == 0
}

// Lookup returns the player and marks it active.
func (r *Registry) Lookup(id PlayerID) (*PlayerInfo, error) {
	r.mu.RLock()
	info, ok := r.players[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownPlayer
	}
	info.touch(r.now())
	return info, nil
}

// Remove forgets a player. It reports whether the player was registered.
func (r *Registry) Remove(id PlayerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.players[id]
	delete(r.players, id)
	return ok
}

// Idle returns the players that policy considers expired at now.
func (r *Registry) Idle(policy IdlePolicy, now time.Time) map[PlayerID]*PlayerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idle := make(map[PlayerID]*PlayerInfo)
	for id, info := range r.players {
		if policy.Expired(info.LastActive(), now) {
			idle[id] = info
		}
	}
	return idle
}

// Len returns the number of registered players.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}
