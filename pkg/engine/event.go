package engine

import (
	"sync"
	"time"
)

// EventKind identifies the type of an engine event.
type EventKind string

const (
	EventAgentStart    EventKind = "agent_start"
	EventAgentEnd      EventKind = "agent_end"
	EventToolCallStart EventKind = "tool_call_start"
	EventToolCallEnd   EventKind = "tool_call_end"
	EventError         EventKind = "error"
)

// Event is an immutable notification of engine activity.
type Event struct {
	Kind      EventKind
	SessionID string
	Agent     string
	Tool      string
	Timestamp time.Time
	Data      any
}

// Subscription receives events from an EventBus. Read from C and call
// Unsubscribe when done.
type Subscription struct {
	C  <-chan Event
	ch chan Event
}

// EventBus fans events out to all subscribers. Safe for concurrent use.
type EventBus struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// NewEventBus creates an EventBus ready for use.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[*Subscription]struct{})}
}

// Subscribe creates a subscription with the given channel buffer size.
func (b *EventBus) Subscribe(bufSize int) *Subscription {
	ch := make(chan Event, bufSize)
	sub := &Subscription{C: ch, ch: ch}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	return sub
}

// Unsubscribe removes the subscription and closes its channel.
func (b *EventBus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub.ch)
	}
}

// Publish delivers e to every subscriber. When a subscriber's buffer is full
// the event is dropped for that subscriber so slow consumers never stall the
// agent loop.
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		select {
		case sub.ch <- e:
		default:
		}
	}
}
