package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nodelet/nodelet/pkg/types"
)

// EventType represents the type of event
type EventType string

const (
	EventWorkerSpawned      EventType = "worker.spawned"
	EventWorkerAnnounced    EventType = "worker.announced"
	EventWorkerLeased       EventType = "worker.leased"
	EventWorkerReleased     EventType = "worker.released"
	EventWorkerKilled       EventType = "worker.killed"
	EventKillEscalated      EventType = "worker.kill_escalated"
	EventWorkerExited       EventType = "worker.exited"
	EventWorkerDisconnected EventType = "worker.disconnected"
	EventOrphanReaped       EventType = "worker.orphan_reaped"
	EventGCSRestarted       EventType = "gcs.restarted"
)

// Event represents a worker lifecycle event
type Event struct {
	ID        string
	Type      EventType
	WorkerID  types.WorkerID
	Timestamp time.Time
	Message   string
	Metadata  map[string]string
}

// NewEvent builds an event for one worker with a fresh ID and timestamp.
func NewEvent(typ EventType, workerID types.WorkerID, msg string) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      typ,
		WorkerID:  workerID,
		Timestamp: time.Now(),
		Message:   msg,
	}
}

// Subscriber is a channel that receives events
type Subscriber chan *Event

// Broker manages event subscriptions and distribution
type Broker struct {
	subscribers map[Subscriber]bool
	mu          sync.RWMutex
	eventCh     chan *Event
	stopCh      chan struct{}
}

// NewBroker creates a new event broker
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]bool),
		eventCh:     make(chan *Event, 100), // Buffer up to 100 events
		stopCh:      make(chan struct{}),
	}
}

// Start begins the broker's event distribution loop
func (b *Broker) Start() {
	go b.run()
}

// Stop stops the broker
func (b *Broker) Stop() {
	close(b.stopCh)
}

// Subscribe creates a new subscription and returns a channel
func (b *Broker) Subscribe() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 50) // Buffer per subscriber
	b.subscribers[sub] = true
	return sub
}

// Unsubscribe removes a subscription
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, sub)
	close(sub)
}

// Publish publishes an event to all subscribers
func (b *Broker) Publish(event *Event) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.eventCh <- event:
	case <-b.stopCh:
	}
}

func (b *Broker) run() {
	for {
		select {
		case event := <-b.eventCh:
			b.broadcast(event)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber buffer full, skip
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
