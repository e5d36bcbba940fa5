package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is a fact about one voucher, published after the change is stored
type Event struct {
	ID            string         `json:"id"`
	Type          Type           `json:"type"`
	VoucherID     string         `json:"voucher_id"`
	ActorPIN      string         `json:"actor_pin,omitempty"`
	Payload       map[string]any `json:"payload"`
	Timestamp     time.Time      `json:"timestamp"`
	CorrelationID string         `json:"correlation_id"`
}

// NewEvent creates an event that starts its own correlation chain
func NewEvent(eventType Type, voucherID, actorPIN string, payload map[string]any) *Event {
	id := newID()
	return &Event{
		ID:            id,
		Type:          eventType,
		VoucherID:     voucherID,
		ActorPIN:      actorPIN,
		Payload:       payload,
		Timestamp:     time.Now(),
		CorrelationID: id,
	}
}

// NewEventWithCorrelation creates an event inside an existing chain, e.g.
// every voucher of one batch submission
func NewEventWithCorrelation(eventType Type, voucherID, actorPIN string, payload map[string]any, correlationID string) *Event {
	e := NewEvent(eventType, voucherID, actorPIN, payload)
	e.CorrelationID = correlationID
	return e
}

// WithPayload returns a copy of e with key set in the payload
func (e *Event) WithPayload(key string, value any) *Event {
	payload := make(map[string]any, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	payload[key] = value

	copied := *e
	copied.Payload = payload
	return &copied
}

// PayloadString reads a string payload value
func (e *Event) PayloadString(key string) string {
	if s, ok := e.Payload[key].(string); ok {
		return s
	}
	return ""
}

// PayloadFloat reads a numeric payload value
func (e *Event) PayloadFloat(key string) float64 {
	switch v := e.Payload[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// newID returns a time ordered UUIDv7, falling back to v4
func newID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
