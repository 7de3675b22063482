package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_EXCHANGE_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent carries the common fields every event shares.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const TypeChatExchangeCompleted = "CHAT_EXCHANGE_COMPLETED"

// NewChatExchangeCompleted signals that one full question/answer turn
// finished streaming to a visitor.
func NewChatExchangeCompleted(sessionId uuid.UUID, query string, responseLength int) Event {
	data := map[string]interface{}{
		"query":           query,
		"response_length": responseLength,
	}
	if sessionId != uuid.Nil {
		data["session_id"] = sessionId.String()
	}
	return BaseEvent{
		Type:       TypeChatExchangeCompleted,
		Data:       data,
		OccurredAt: time.Now(),
	}
}
