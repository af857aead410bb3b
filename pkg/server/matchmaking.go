package server

import (
	"context"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/google/uuid"
	"github.com/vctt94/coinched/pkg/coinche"
)

// NewPartyInfo is handed to each of the four players of a new party.
type NewPartyInfo struct {
	PlayerID PlayerID     `json:"player_id"`
	Seat     coinche.Seat `json:"seat"`
	PartyID  uuid.UUID    `json:"party"`

	party *Party
}

type joinResult struct {
	info NewPartyInfo
	err  error
}

// Ticket is a pending join request.
type Ticket struct {
	created time.Time
	result  chan joinResult
}

// Wait blocks until the ticket is matched, expired, or ctx is done.
func (t *Ticket) Wait(ctx context.Context) (NewPartyInfo, error) {
	select {
	case res := <-t.result:
		return res.info, res.err
	case <-ctx.Done():
		return NewPartyInfo{}, ctx.Err()
	}
}

func (t *Ticket) resolve(info NewPartyInfo, err error) {
	t.result <- joinResult{info: info, err: err}
}

// PartyFactory creates a party and registers its four players, seat i
// going to the i-th id.
type PartyFactory func() (*Party, [coinche.NumSeats]PlayerID)

// Matchmaker groups join requests by four.
type Matchmaker struct {
	log    slog.Logger
	create PartyFactory
	now    func() time.Time

	mu      sync.Mutex
	waiting []*Ticket
}

// NewMatchmaker creates an empty queue that builds parties with create.
func NewMatchmaker(log slog.Logger, create PartyFactory, now func() time.Time) *Matchmaker {
	if log == nil {
		log = slog.Disabled
	}
	if now == nil {
		now = time.Now
	}
	return &Matchmaker{log: log, create: create, now: now}
}

// Enqueue adds a join request. The fourth request of a group creates the
// party and resolves the whole group before Enqueue returns.
func (m *Matchmaker) Enqueue() *Ticket {
	t := &Ticket{created: m.now(), result: make(chan joinResult, 1)}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.waiting = append(m.waiting, t)
	if len(m.waiting) < coinche.NumSeats {
		m.log.Debugf("Join request queued, %d waiting", len(m.waiting))
		return t
	}

	group := m.waiting[:coinche.NumSeats]
	m.waiting = append([]*Ticket(nil), m.waiting[coinche.NumSeats:]...)

	party, ids := m.create()
	for seat, ticket := range group {
		ticket.resolve(NewPartyInfo{
			PlayerID: ids[seat],
			Seat:     coinche.Seat(seat),
			PartyID:  party.ID,
			party:    party,
		}, nil)
	}
	m.log.Infof("Party %s created for players %v", party.ID, ids)
	return t
}

// Withdraw removes a pending ticket. It returns false if the ticket was
// already resolved.
func (m *Matchmaker) Withdraw(t *Ticket) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, pending := range m.waiting {
		if pending == t {
			m.waiting = append(m.waiting[:i], m.waiting[i+1:]...)
			return true
		}
	}
	return false
}

// Expire fails the tickets that policy considers expired at now with
// ErrJoinExpired and returns how many were dropped.
func (m *Matchmaker) Expire(policy IdlePolicy, now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.waiting[:0]
	var expired int
	for _, t := range m.waiting {
		if policy.Expired(t.created, now) {
			t.resolve(NewPartyInfo{}, ErrJoinExpired)
			expired++
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(m.waiting); i++ {
		m.waiting[i] = nil
	}
	m.waiting = kept
	if expired > 0 {
		m.log.Infof("Dropped %d expired join requests", expired)
	}
	return expired
}

// Waiting returns the number of pending join requests.
func (m *Matchmaker) Waiting() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiting)
}
