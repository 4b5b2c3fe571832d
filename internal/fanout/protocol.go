package fanout

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charleschow/xi-predictor/internal/events"
)

// Envelope is the wire format for events sent over the fanout WebSocket.
type Envelope struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
	Timestamp time.Time       `json:"ts"`
	Payload   json.RawMessage `json:"payload"`
}

// MarshalEvent serializes an Event into a JSON-encoded Envelope.
func MarshalEvent(evt events.Event) ([]byte, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	env := Envelope{
		Type:      string(evt.Type),
		ID:        evt.ID,
		SessionID: evt.SessionID,
		Timestamp: evt.Timestamp,
		Payload:   payload,
	}
	return json.Marshal(env)
}

// UnmarshalEvent deserializes a JSON Envelope back into a typed Event.
func UnmarshalEvent(data []byte) (events.Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return events.Event{}, fmt.Errorf("unmarshal envelope: %w", err)
	}

	evt := events.Event{
		ID:        env.ID,
		Type:      events.EventType(env.Type),
		SessionID: env.SessionID,
		Timestamp: env.Timestamp,
	}

	switch evt.Type {
	case events.EventFormUpdated:
		var fu events.FormUpdatedEvent
		if err := json.Unmarshal(env.Payload, &fu); err != nil {
			return evt, fmt.Errorf("unmarshal form_updated: %w", err)
		}
		evt.Payload = fu
	case events.EventNotice:
		var n events.NoticeEvent
		if err := json.Unmarshal(env.Payload, &n); err != nil {
			return evt, fmt.Errorf("unmarshal notice: %w", err)
		}
		evt.Payload = n
	case events.EventPredictionReady:
		var pr events.PredictionReadyEvent
		if err := json.Unmarshal(env.Payload, &pr); err != nil {
			return evt, fmt.Errorf("unmarshal prediction_ready: %w", err)
		}
		evt.Payload = pr
	case events.EventPredictionFailed:
		var pf events.PredictionFailedEvent
		if err := json.Unmarshal(env.Payload, &pf); err != nil {
			return evt, fmt.Errorf("unmarshal prediction_failed: %w", err)
		}
		evt.Payload = pf
	default:
		return evt, fmt.Errorf("unknown event type: %s", env.Type)
	}

	return evt, nil
}
