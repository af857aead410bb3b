package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/decred/slog"
	"github.com/google/uuid"
	"github.com/vctt94/coinched/pkg/coinche"
	"github.com/vctt94/coinched/pkg/event"
	"github.com/vctt94/coinched/pkg/logging"
)

// Config holds the knobs of a GameManager.
type Config struct {
	// Rules deals and referees hands. Nil uses the coinche rules seeded
	// with Seed.
	Rules Rules
	Seed  int64

	// IdlePolicy is applied by Sweep. Nil never expires anything.
	IdlePolicy IdlePolicy

	// Observer receives party lifecycle notifications, typically an
	// EventProcessor feeding the hand history.
	Observer PartyObserver

	LogBackend *logging.LogBackend

	// NewPlayerID and Now replace the random id source and the clock.
	NewPlayerID func() PlayerID
	Now         func() time.Time
}

// GameManager is the entry point for every player action. It finds the
// caller's party and seat and forwards the action to the party.
type GameManager struct {
	log      slog.Logger
	registry *Registry
	queue    *Matchmaker
	rules    Rules
	idle     IdlePolicy
	now      func() time.Time
	partyCfg partyConfig
}

// NewGameManager creates a manager with an empty registry and queue.
func NewGameManager(cfg Config) *GameManager {
	if cfg.Rules == nil {
		cfg.Rules = NewCoincheRules(cfg.Seed)
	}
	if cfg.IdlePolicy == nil {
		cfg.IdlePolicy = NeverExpire{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	m := &GameManager{
		log:      cfg.LogBackend.Logger("SRVR"),
		registry: NewRegistry(cfg.NewPlayerID, cfg.Now),
		rules:    cfg.Rules,
		idle:     cfg.IdlePolicy,
		now:      cfg.Now,
		partyCfg: partyConfig{
			rules:    cfg.Rules,
			observer: cfg.Observer,
			log:      cfg.LogBackend.Logger("PRTY"),
			now:      cfg.Now,
		},
	}
	m.queue = NewMatchmaker(cfg.LogBackend.Logger("MTCH"), m.createParty, cfg.Now)
	return m
}

func (m *GameManager) createParty() (*Party, [coinche.NumSeats]PlayerID) {
	party := newParty(m.partyCfg, m.rules.RandomSeat())
	return party, m.registry.Register(party)
}

// Join waits until three other players join and returns the new party.
// If ctx ends after the match was made, the party is cancelled.
func (m *GameManager) Join(ctx context.Context) (NewPartyInfo, error) {
	ticket := m.queue.Enqueue()
	info, err := ticket.Wait(ctx)
	if err == nil || !errors.Is(err, ctx.Err()) {
		return info, err
	}
	m.abandon(ticket)
	return NewPartyInfo{}, err
}

// abandon withdraws a ticket whose result was never read. If the ticket was
// matched in the meantime, its player is removed and the party cancelled.
func (m *GameManager) abandon(ticket *Ticket) {
	if m.queue.Withdraw(ticket) {
		return
	}
	res := <-ticket.result
	if res.err != nil {
		return
	}
	m.log.Infof("Player %s gave up joining party %s", res.info.PlayerID, res.info.PartyID)
	m.registry.Remove(res.info.PlayerID)
	res.info.party.Cancel("a player left before the party started")
}

func (m *GameManager) lookup(id PlayerID) (*PlayerInfo, error) {
	info, err := m.registry.Lookup(id)
	if err != nil {
		return nil, fmt.Errorf("player %s: %w", id, err)
	}
	return info, nil
}

// Bid proposes a contract.
func (m *GameManager) Bid(id PlayerID, trump coinche.Suit, target coinche.Target) (event.Event, error) {
	info, err := m.lookup(id)
	if err != nil {
		return event.Event{}, err
	}
	return info.Party.Bid(info.Seat, trump, target)
}

// Pass speaks without bidding.
func (m *GameManager) Pass(id PlayerID) (event.Event, error) {
	info, err := m.lookup(id)
	if err != nil {
		return event.Event{}, err
	}
	return info.Party.Pass(info.Seat)
}

// Coinche doubles the current contract.
func (m *GameManager) Coinche(id PlayerID) (event.Event, error) {
	info, err := m.lookup(id)
	if err != nil {
		return event.Event{}, err
	}
	return info.Party.Coinche(info.Seat)
}

// PlayCard plays a card from the player's hand.
func (m *GameManager) PlayCard(id PlayerID, card coinche.Card) (event.Event, error) {
	info, err := m.lookup(id)
	if err != nil {
		return event.Event{}, err
	}
	return info.Party.PlayCard(info.Seat, card)
}

// WaitForEvent returns the event following after in the player's party,
// blocking until it exists. A player whose party is gone and fully drained
// is forgotten.
func (m *GameManager) WaitForEvent(ctx context.Context, id PlayerID, after int) (event.Event, error) {
	info, err := m.lookup(id)
	if err != nil {
		return event.Event{}, err
	}
	ev, err := info.Party.WaitFor(ctx, info.Seat, after)
	if errors.Is(err, ErrPartyGone) {
		m.registry.Remove(id)
	}
	return ev, err
}

// Leave removes the player and cancels its party.
func (m *GameManager) Leave(id PlayerID) error {
	info, err := m.lookup(id)
	if err != nil {
		return err
	}
	m.registry.Remove(id)
	info.Party.Cancel(fmt.Sprintf("player %s left the party", info.Seat))
	return nil
}

// CurrentScores returns the cumulative scores of the player's party.
func (m *GameManager) CurrentScores(id PlayerID) ([2]int, error) {
	info, err := m.lookup(id)
	if err != nil {
		return [2]int{}, err
	}
	return info.Party.Scores(), nil
}

// CurrentHand returns the cards the player holds.
func (m *GameManager) CurrentHand(id PlayerID) (coinche.Hand, error) {
	info, err := m.lookup(id)
	if err != nil {
		return 0, err
	}
	return info.Party.Hand(info.Seat)
}

// CurrentPhase summarizes the state of the player's party.
func (m *GameManager) CurrentPhase(id PlayerID) (PhaseSummary, error) {
	info, err := m.lookup(id)
	if err != nil {
		return PhaseSummary{}, err
	}
	return info.Party.Phase(), nil
}

// PartyID returns the id of the player's party.
func (m *GameManager) PartyID(id PlayerID) (uuid.UUID, error) {
	info, err := m.lookup(id)
	if err != nil {
		return uuid.Nil, err
	}
	return info.Party.ID, nil
}

// Sweep applies the idle policy at now: expired join requests fail and
// expired players are removed with their party cancelled.
func (m *GameManager) Sweep(now time.Time) {
	m.queue.Expire(m.idle, now)

	for id, info := range m.registry.Idle(m.idle, now) {
		m.registry.Remove(id)
		info.Party.Cancel(fmt.Sprintf("player %s timed out", info.Seat))
		m.log.Infof("Player %s of party %s timed out", id, info.Party.ID)
	}
}

// Players returns the number of registered players.
func (m *GameManager) Players() int {
	return m.registry.Len()
}

// WaitingJoins returns the number of pending join requests.
func (m *GameManager) WaitingJoins() int {
	return m.queue.Waiting()
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *GameManager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}
