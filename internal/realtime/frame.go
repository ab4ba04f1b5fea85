package realtime

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Inbound request discriminators.
const (
	RequestMessage           = 0
	RequestLikeUnlikeMessage = 1
)

// Outbound response discriminators, nested inside the chat_message frame.
const (
	ResponseMessage      = 0
	ResponseNotification = 1
)

// Registry-level frame tags. chat_message frames carry a client-facing
// envelope; add_to_group frames are membership directives consumed by the
// session itself and never written to the socket.
const (
	frameChatMessage = "chat_message"
	frameAddToGroup  = "add_to_group"
)

// registryFrame is the outer layer of everything that moves through the
// group registry.
type registryFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// envelope is the client-facing {type, data} wire unit, used in both
// directions.
type envelope struct {
	Type int `json:"type"`
	Data any `json:"data"`
}

// OutboundFrame is a broadcast before serialization: the inner
// discriminator plus its payload. Encode produces the exact two-level
// shape existing clients depend on:
//
//	{"type":"chat_message","data":{"type":<int>,"data":<payload>}}
//
// Sessions strip the outer layer on delivery, so the socket carries only
// the inner envelope.
type OutboundFrame struct {
	InnerType int
	Payload   any
}

func (f OutboundFrame) Encode() ([]byte, error) {
	inner, err := json.Marshal(envelope{Type: f.InnerType, Data: f.Payload})
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return json.Marshal(registryFrame{Type: frameChatMessage, Data: inner})
}

type directivePayload struct {
	EventID *int `json:"event_id"`
}

// EncodeDirective builds the add_to_group frame instructing a user's live
// sessions to subscribe to an event's chat group.
func EncodeDirective(eventID int) ([]byte, error) {
	data, err := json.Marshal(directivePayload{EventID: &eventID})
	if err != nil {
		return nil, err
	}
	return json.Marshal(registryFrame{Type: frameAddToGroup, Data: data})
}
