package server

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/decred/slog"
	"github.com/google/uuid"
	"github.com/vctt94/coinched/pkg/coinche"
)

// HistoryEventType represents the type of history event
type HistoryEventType string

const (
	HistoryEventPartyCreated   HistoryEventType = "party_created"
	HistoryEventHandFinished   HistoryEventType = "hand_finished"
	HistoryEventPartyCancelled HistoryEventType = "party_cancelled"
)

// HistoryEvent is a party lifecycle notification waiting to be stored.
type HistoryEvent struct {
	Type    HistoryEventType
	PartyID uuid.UUID
	First   coinche.Seat
	Hand    HandSummary
	Reason  string
	At      time.Time
}

// EventProcessor persists party history in the background. Events of a
// party always go to the same worker, so they are stored in order.
type EventProcessor struct {
	db      Database
	log     slog.Logger
	workers []*eventWorker
	wg      sync.WaitGroup
	started bool
	mu      sync.RWMutex
}

// eventWorker stores the events of its share of the parties.
type eventWorker struct {
	id        int
	processor *EventProcessor
	queue     chan *HistoryEvent
}

// NewEventProcessor creates a new event processor
func NewEventProcessor(db Database, log slog.Logger, queueSize, workerCount int) *EventProcessor {
	if log == nil {
		log = slog.Disabled
	}
	if workerCount < 1 {
		workerCount = 1
	}
	processor := &EventProcessor{
		db:  db,
		log: log,
	}

	// Create workers
	processor.workers = make([]*eventWorker, workerCount)
	for i := 0; i < workerCount; i++ {
		processor.workers[i] = &eventWorker{
			id:        i,
			processor: processor,
			queue:     make(chan *HistoryEvent, queueSize),
		}
	}

	return processor
}

// Start begins processing events
func (ep *EventProcessor) Start() {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	if ep.started {
		return
	}

	ep.started = true
	ep.log.Infof("Starting event processor with %d workers", len(ep.workers))

	for _, worker := range ep.workers {
		ep.wg.Add(1)
		go worker.run()
	}
}

// Stop stores the events already queued and stops the workers. A stopped
// processor cannot be restarted.
func (ep *EventProcessor) Stop() {
	ep.mu.Lock()
	if !ep.started {
		ep.mu.Unlock()
		return
	}
	ep.started = false
	ep.log.Infof("Stopping event processor...")
	for _, worker := range ep.workers {
		close(worker.queue)
	}
	ep.mu.Unlock()

	ep.wg.Wait()
	ep.log.Infof("Event processor stopped")
}

// PublishEvent queues an event for its party's worker without blocking.
func (ep *EventProcessor) PublishEvent(event *HistoryEvent) {
	ep.mu.RLock()
	defer ep.mu.RUnlock()

	if !ep.started {
		ep.log.Warnf("Event processor not started, dropping event: %v", event.Type)
		return
	}

	worker := ep.workers[xxhash.Sum64(event.PartyID[:])%uint64(len(ep.workers))]
	select {
	case worker.queue <- event:
		ep.log.Tracef("Published event: %s for party %s", event.Type, event.PartyID)
	default:
		ep.log.Errorf("Event queue full, dropping event: %s for party %s", event.Type, event.PartyID)
	}
}

func (ep *EventProcessor) PartyCreated(id uuid.UUID, first coinche.Seat, at time.Time) {
	ep.PublishEvent(&HistoryEvent{Type: HistoryEventPartyCreated, PartyID: id, First: first, At: at})
}

func (ep *EventProcessor) HandFinished(id uuid.UUID, hand HandSummary) {
	ep.PublishEvent(&HistoryEvent{Type: HistoryEventHandFinished, PartyID: id, Hand: hand, At: hand.At})
}

func (ep *EventProcessor) PartyCancelled(id uuid.UUID, reason string, at time.Time) {
	ep.PublishEvent(&HistoryEvent{Type: HistoryEventPartyCancelled, PartyID: id, Reason: reason, At: at})
}

// run executes the worker loop until its queue is closed.
func (w *eventWorker) run() {
	defer w.processor.wg.Done()
	w.processor.log.Debugf("Event worker %d started", w.id)

	for event := range w.queue {
		w.processEvent(event)
	}
	w.processor.log.Debugf("Event worker %d stopping", w.id)
}

// processEvent stores a single event.
func (w *eventWorker) processEvent(event *HistoryEvent) {
	db := w.processor.db

	var err error
	switch event.Type {
	case HistoryEventPartyCreated:
		err = db.SaveParty(event.PartyID, event.First, event.At)
	case HistoryEventHandFinished:
		err = db.SaveHand(event.PartyID, event.Hand)
	case HistoryEventPartyCancelled:
		err = db.CancelParty(event.PartyID, event.Reason, event.At)
	}
	if err != nil {
		w.processor.log.Errorf("Worker %d failed to store %s for party %s: %v",
			w.id, event.Type, event.PartyID, err)
	}
}
