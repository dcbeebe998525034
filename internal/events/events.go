package events

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/constants"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	// Pending-count events
	EventPendingCountsChanged          EventType = "pending-count-changed"
	EventResearchOutputsPendingChanged EventType = "research-outputs-pending-count-changed"
	EventApplicationsPendingChanged    EventType = "applications-pending-count-changed"
	EventDatasetsPendingChanged        EventType = "datasets-pending-count-changed"

	// List engine events
	EventListChanged EventType = "list_changed"
	EventListError   EventType = "list_error"

	// Session events
	EventSessionChanged EventType = "session_changed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// NewBaseEvent stamps an event of the given type with the current time.
func NewBaseEvent(t EventType) BaseEvent {
	return BaseEvent{EventType: t, Time: time.Now()}
}

// PendingCountsEvent carries the counters after a change.
type PendingCountsEvent struct {
	BaseEvent
	Category        string // "research-outputs", "applications", "datasets" or "" for all
	Previous        int
	Current         int
	ResearchOutputs int
	Applications    int
	Datasets        int
	Total           int
}

// ListEvent is published by list engines when their visible state changes.
type ListEvent struct {
	BaseEvent
	List          string // name of the list view
	Items         int
	Page          int
	TotalElements int64
	HasMore       bool
	Error         error
}

// SessionEvent is published on login and logout.
type SessionEvent struct {
	BaseEvent
	UserID        string
	Authenticated bool
}

// Listener is a callback registered for one event type.
type Listener func(Event)

// ListenerID identifies a registered listener so it can be removed later.
type ListenerID uint64

type listenerEntry struct {
	id ListenerID
	fn Listener
}

// ListenerPanicHandler is told about listeners that panicked during dispatch.
type ListenerPanicHandler func(eventType EventType, id ListenerID, recovered error)

// EventBus manages event subscriptions and publishing.
// Subscribers either receive events on buffered channels (Subscribe) or are
// invoked synchronously as callbacks (AddListener).
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	listeners     map[EventType][]listenerEntry
	nextID        atomic.Uint64
	onPanic       ListenerPanicHandler
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		listeners:   make(map[EventType][]listenerEntry),
		bufferSize:  bufferSize,
	}
}

// SetPanicHandler installs the handler told about panicking listeners.
func (eb *EventBus) SetPanicHandler(h ListenerPanicHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.onPanic = h
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// AddListener registers fn for eventType. Several listeners may share an event type.
func (eb *EventBus) AddListener(eventType EventType, fn Listener) ListenerID {
	id := ListenerID(eb.nextID.Add(1))

	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.listeners[eventType] = append(eb.listeners[eventType], listenerEntry{id: id, fn: fn})
	return id
}

// RemoveListener unregisters a listener. Unknown ids are ignored.
func (eb *EventBus) RemoveListener(eventType EventType, id ListenerID) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	entries := eb.listeners[eventType]
	for i, e := range entries {
		if e.id == id {
			// Copy so a dispatch in progress keeps iterating its own slice
			next := make([]listenerEntry, 0, len(entries)-1)
			next = append(next, entries[:i]...)
			next = append(next, entries[i+1:]...)
			eb.listeners[eventType] = next
			return
		}
	}
}

// ListenerCount returns the number of callbacks registered for eventType.
func (eb *EventBus) ListenerCount(eventType EventType) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.listeners[eventType])
}

// Publish sends an event to all subscribers (non-blocking for channels) and
// then runs the registered callbacks outside the lock. A panicking callback
// is recovered and reported; the remaining callbacks still run.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	if eb.closed {
		eb.mu.RUnlock()
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	entries := eb.listeners[event.Type()]
	onPanic := eb.onPanic
	eb.mu.RUnlock()

	for _, e := range entries {
		eb.dispatch(event, e, onPanic)
	}
}

func (eb *EventBus) dispatch(event Event, e listenerEntry, onPanic ListenerPanicHandler) {
	defer func() {
		if r := recover(); r != nil {
			if onPanic != nil {
				onPanic(event.Type(), e.id, fmt.Errorf("listener panic: %v", r))
			}
		}
	}()
	e.fn(event)
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}

	for _, ch := range eb.all {
		close(ch)
	}

	eb.listeners = make(map[EventType][]listenerEntry)
}

// Unsubscribe removes a subscription channel from a specific event type
// This prevents memory leaks from abandoned subscriptions
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			break
		}
	}
}

// UnsubscribeAll removes a subscription channel from all event types
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	for eventType, subscribers := range eb.subscribers {
		for i, subCh := range subscribers {
			if subCh == ch {
				subscribers[i] = subscribers[len(subscribers)-1]
				eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
				break
			}
		}
	}

	for i, subCh := range eb.all {
		if subCh == ch {
			eb.all[i] = eb.all[len(eb.all)-1]
			eb.all = eb.all[:len(eb.all)-1]
			break
		}
	}
}

// GetDroppedEventCount returns the total number of events dropped due to full buffers
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}
