package ws

import (
	"encoding/json"
	"fmt"

	"github.com/mcoot/dicearena-go/internal/model"
)

// inbound is a frame received from a client
type inbound struct {
	Event   model.EventType `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// outbound is a frame sent to a client
type outbound struct {
	Event   model.EventType `json:"event"`
	Payload any             `json:"payload,omitempty"`
}

// Encode renders an event as a text frame
func Encode(event model.Event) ([]byte, error) {
	data, err := json.Marshal(outbound{Event: event.Type, Payload: event.Payload})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event.Type, err)
	}
	return data, nil
}

func decode(data []byte) (inbound, error) {
	var frame inbound
	if err := json.Unmarshal(data, &frame); err != nil {
		return inbound{}, fmt.Errorf("decode frame: %w", err)
	}
	if frame.Event == "" {
		return inbound{}, fmt.Errorf("decode frame: missing event name")
	}
	return frame, nil
}

// payload decodes a frame's payload into target
func (f inbound) payload(target any) error {
	if len(f.Payload) == 0 {
		return fmt.Errorf("%s: missing payload", f.Event)
	}
	if err := json.Unmarshal(f.Payload, target); err != nil {
		return fmt.Errorf("%s: %w", f.Event, err)
	}
	return nil
}
