package amqp

import (
	"encoding/json"
	"time"

	"centavo/internal/uuid"
)

// Event kinds published to the notification queue.
const (
	EventSettlementUpdated  = "settlement.updated"
	EventTransactionRemoved = "transaction.removed"
	EventInvoicePaid        = "invoice.paid"
)

// Event is the envelope for all notification messages. Payloads are small;
// consumers fetch full records from the API when they need more.
type Event struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	UserID    uint           `json:"user_id"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent creates an event envelope with a UUIDv7 message ID.
func NewEvent(kind string, userID uint, payload map[string]any) *Event {
	return &Event{
		ID:        uuid.New(),
		Kind:      kind,
		UserID:    userID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
