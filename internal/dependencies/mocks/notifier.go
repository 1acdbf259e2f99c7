package mocks

import (
	"sync"

	"github.com/mcoot/dicearena-go/internal/dependencies/notifier"
	"github.com/mcoot/dicearena-go/internal/model"
)

// SentEvent is an event delivered to a single connection
type SentEvent struct {
	Conn  model.ConnectionID
	Event model.Event
}

// MockNotifier records every delivered event
type MockNotifier struct {
	mu         sync.Mutex
	sent       []SentEvent
	broadcasts []model.Event
}

// Ensure MockNotifier implements Notifier
var _ notifier.Notifier = (*MockNotifier)(nil)

// NewMockNotifier creates a new MockNotifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Send records a directed event
func (n *MockNotifier) Send(conn model.ConnectionID, event model.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, SentEvent{Conn: conn, Event: event})
}

// Broadcast records a broadcast event
func (n *MockNotifier) Broadcast(event model.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.broadcasts = append(n.broadcasts, event)
}

// Sent returns all directed events in delivery order
func (n *MockNotifier) Sent() []SentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]SentEvent(nil), n.sent...)
}

// SentTo returns the events delivered to one connection
func (n *MockNotifier) SentTo(conn model.ConnectionID) []model.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var events []model.Event
	for _, s := range n.sent {
		if s.Conn == conn {
			events = append(events, s.Event)
		}
	}
	return events
}

// SentOfType returns the events of one type delivered to one connection
func (n *MockNotifier) SentOfType(conn model.ConnectionID, eventType model.EventType) []model.Event {
	var events []model.Event
	for _, e := range n.SentTo(conn) {
		if e.Type == eventType {
			events = append(events, e)
		}
	}
	return events
}

// LastSent returns the most recent event of a type delivered to a connection
func (n *MockNotifier) LastSent(conn model.ConnectionID, eventType model.EventType) (model.Event, bool) {
	events := n.SentOfType(conn, eventType)
	if len(events) == 0 {
		return model.Event{}, false
	}
	return events[len(events)-1], true
}

// Broadcasts returns all broadcast events in delivery order
func (n *MockNotifier) Broadcasts() []model.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Event(nil), n.broadcasts...)
}

// LastBroadcast returns the most recent broadcast of a type
func (n *MockNotifier) LastBroadcast(eventType model.EventType) (model.Event, bool) {
	b := n.Broadcasts()
	for i := len(b) - 1; i >= 0; i-- {
		if b[i].Type == eventType {
			return b[i], true
		}
	}
	return model.Event{}, false
}

// Reset clears all recorded events
func (n *MockNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = nil
	n.broadcasts = nil
}
