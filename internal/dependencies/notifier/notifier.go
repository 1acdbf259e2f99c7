package notifier

import "github.com/mcoot/dicearena-go/internal/model"

// Notifier delivers events to connected clients
type Notifier interface {
	// Send delivers an event to one connection. Unknown or closed
	// connections are ignored.
	Send(conn model.ConnectionID, event model.Event)

	// Broadcast delivers an event to every connection
	Broadcast(event model.Event)
}

// Nop discards every event
type Nop struct{}

func (Nop) Send(model.ConnectionID, model.Event) {}

func (Nop) Broadcast(model.Event) {}
