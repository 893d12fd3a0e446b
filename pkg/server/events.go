package server

import (
	"sync"
	"time"

	"github.com/decred/slog"

	"github.com/kuhhandel/kuhhandel/pkg/game"
)

// GameEvent represents an immutable snapshot of a game event
type GameEvent struct {
	Name      string
	GameID    string
	Payload   interface{}
	Timestamp time.Time
}

// EventProcessor manages the processing of game events
type EventProcessor struct {
	server   *Server
	log      slog.Logger
	queue    chan *GameEvent
	workers  []*eventWorker
	stopChan chan struct{}
	wg       sync.WaitGroup
	started  bool
	mu       sync.Mutex
}

// eventWorker processes events from the queue
type eventWorker struct {
	id        int
	processor *EventProcessor
	stopChan  chan struct{}
	wg        *sync.WaitGroup
}

// NewEventProcessor creates a new event processor
func NewEventProcessor(server *Server, queueSize, workerCount int) *EventProcessor {
	processor := &EventProcessor{
		server:   server,
		log:      server.log,
		queue:    make(chan *GameEvent, queueSize),
		stopChan: make(chan struct{}),
	}

	processor.workers = make([]*eventWorker, workerCount)
	for i := 0; i < workerCount; i++ {
		processor.workers[i] = &eventWorker{
			id:        i,
			processor: processor,
			stopChan:  make(chan struct{}),
			wg:        &processor.wg,
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

// Stop gracefully stops the event processor
func (ep *EventProcessor) Stop() {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	if !ep.started {
		return
	}

	ep.log.Infof("Stopping event processor...")

	close(ep.stopChan)
	for _, worker := range ep.workers {
		close(worker.stopChan)
	}

	ep.wg.Wait()

	ep.started = false
	ep.log.Infof("Event processor stopped")
}

// PublishEvent publishes an event for processing. Never blocks: sessions emit
// while holding their own lock, so a full queue drops the event instead of
// stalling play.
func (ep *EventProcessor) PublishEvent(event *GameEvent) {
	ep.mu.Lock()
	started := ep.started
	ep.mu.Unlock()

	if !started {
		ep.log.Warnf("Event processor not started, dropping event: %s", event.Name)
		return
	}

	select {
	case ep.queue <- event:
		ep.log.Debugf("Published event: %s for game %s", event.Name, event.GameID)
	default:
		ep.log.Errorf("Event queue full, dropping event: %s for game %s", event.Name, event.GameID)
	}
}

// run executes the worker loop
func (w *eventWorker) run() {
	defer w.wg.Done()
	w.processor.log.Debugf("Event worker %d started", w.id)

	for {
		select {
		case <-w.stopChan:
			w.processor.log.Debugf("Event worker %d stopping", w.id)
			return

		case <-w.processor.stopChan:
			w.processor.log.Debugf("Event worker %d stopping (processor shutdown)", w.id)
			return

		case event := <-w.processor.queue:
			if event != nil {
				w.processEvent(event)
			}
		}
	}
}

// processEvent processes a single event using all registered handlers
func (w *eventWorker) processEvent(event *GameEvent) {
	w.processor.log.Debugf("Worker %d processing event: %s for game %s", w.id, event.Name, event.GameID)

	w.processAudit(event)
	w.processPersistence(event)
}

// processAudit handles audit logging for the event
func (w *eventWorker) processAudit(event *GameEvent) {
	handler := NewAuditHandler(w.processor.server)
	handler.HandleEvent(event)
}

// processPersistence handles ledger persistence for the event
func (w *eventWorker) processPersistence(event *GameEvent) {
	handler := NewPersistenceHandler(w.processor.server)
	handler.HandleEvent(event)
}

// EventHandler defines the interface for handling events
type EventHandler interface {
	HandleEvent(event *GameEvent)
}

// AuditHandler writes a structured log line per event
type AuditHandler struct {
	server *Server
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(server *Server) *AuditHandler {
	return &AuditHandler{server: server}
}

// HandleEvent logs the event with its payload
func (ah *AuditHandler) HandleEvent(event *GameEvent) {
	switch event.Name {
	case game.EventAuctionSettled, game.EventBluffDetected, game.EventBonusPaid, game.EventGameEnded:
		ah.server.log.Infof("game=%s event=%s payload=%+v", event.GameID, event.Name, event.Payload)
	default:
		ah.server.log.Debugf("game=%s event=%s", event.GameID, event.Name)
	}
}

// PersistenceHandler writes settlement and bonus events to the ledger
type PersistenceHandler struct {
	server *Server
}

// NewPersistenceHandler creates a new persistence handler
func NewPersistenceHandler(server *Server) *PersistenceHandler {
	return &PersistenceHandler{server: server}
}

// HandleEvent persists the events that move money. No-bid closes publish a
// summary payload rather than a settlement record and are skipped here.
func (ph *PersistenceHandler) HandleEvent(event *GameEvent) {
	if ph.server.db == nil {
		return
	}

	switch event.Name {
	case game.EventAuctionSettled:
		rec, ok := event.Payload.(game.SettlementRecord)
		if !ok {
			return
		}
		err := ph.server.db.RecordTransfer(rec.GameID, string(rec.Kind), rec.PayerID, rec.PayeeID, rec.Owed, rec.Moved, rec.Cards)
		if err != nil {
			ph.server.log.Errorf("Failed to persist transfer for game %s: %v", event.GameID, err)
		}

	case game.EventBonusPaid:
		rec, ok := event.Payload.(game.BonusRecord)
		if !ok {
			return
		}
		err := ph.server.db.RecordBonus(rec.GameID, rec.Draw, rec.Amount, rec.Players)
		if err != nil {
			ph.server.log.Errorf("Failed to persist bonus for game %s: %v", event.GameID, err)
		}
	}
}
