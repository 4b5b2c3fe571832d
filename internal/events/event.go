package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the envelope that flows through the event bus. Every session
// change, notice and prediction outcome is wrapped in one.
type Event struct {
	ID        string
	Type      EventType
	SessionID string
	Timestamp time.Time
	Payload   any
}

type EventType string

const (
	// Form state after any accepted change
	EventFormUpdated EventType = "form_updated"
	// Rejected selection, role or validation message for the user
	EventNotice EventType = "notice"
	// Prediction outcomes
	EventPredictionReady  EventType = "prediction_ready"
	EventPredictionFailed EventType = "prediction_failed"
)

// Types lists every event type the bus carries.
var Types = []EventType{EventFormUpdated, EventNotice, EventPredictionReady, EventPredictionFailed}

// New stamps an event with a fresh ID and the current time.
func New(t EventType, sessionID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
