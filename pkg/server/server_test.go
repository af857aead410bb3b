package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vctt94/coinched/pkg/coinche"
)

// InMemoryDB implements Database interface for testing
type InMemoryDB struct {
	mu        sync.RWMutex
	parties   map[uuid.UUID]*memParty
	hands     map[uuid.UUID][]HandSummary
	saveOrder []HistoryEventType
}

type memParty struct {
	first     coinche.Seat
	createdAt time.Time
	cancelled string
}

// NewInMemoryDB creates a new in-memory database for testing
func NewInMemoryDB() *InMemoryDB {
	return &InMemoryDB{
		parties: make(map[uuid.UUID]*memParty),
		hands:   make(map[uuid.UUID][]HandSummary),
	}
}

func (m *InMemoryDB) SaveParty(id uuid.UUID, first coinche.Seat, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parties[id] = &memParty{first: first, createdAt: at}
	m.saveOrder = append(m.saveOrder, HistoryEventPartyCreated)
	return nil
}

func (m *InMemoryDB) SaveHand(id uuid.UUID, hand HandSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.parties[id]; !ok {
		return fmt.Errorf("party %s not found", id)
	}
	m.hands[id] = append(m.hands[id], hand)
	m.saveOrder = append(m.saveOrder, HistoryEventHandFinished)
	return nil
}

func (m *InMemoryDB) CancelParty(id uuid.UUID, reason string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.parties[id]
	if !ok {
		return fmt.Errorf("party %s not found", id)
	}
	p.cancelled = reason
	m.saveOrder = append(m.saveOrder, HistoryEventPartyCancelled)
	return nil
}

func (m *InMemoryDB) LoadHands(id uuid.UUID) ([]HandSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]HandSummary(nil), m.hands[id]...), nil
}

func (m *InMemoryDB) Close() error {
	return nil
}

func (m *InMemoryDB) cancelReason(id uuid.UUID) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.parties[id]
	if !ok {
		return "", false
	}
	return p.cancelled, true
}

func (m *InMemoryDB) partyCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.parties)
}
