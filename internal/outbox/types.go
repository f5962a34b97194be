package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is one pending outbox row: an auction journal entry waiting to be
// relayed onto the message bus.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	AuctionID uuid.UUID       `json:"auction_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Envelope is the wire shape published to the bus. Payload carries the full
// journal entry; EventID doubles as the dedupe key for at-least-once
// delivery.
type Envelope struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	AuctionID string          `json:"auctionId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}
