package gateway

import (
	"encoding/json"
	"time"
)

// AuctionFrame is the message shape pushed to WebSocket clients. It mirrors
// the relay envelope so a client can follow the journal without polling.
type AuctionFrame struct {
	ID        string          `json:"id"`         // Event UUID
	AuctionID string          `json:"auction_id"` // Auction UUID
	Type      string          `json:"type"`       // Journal event type
	Timestamp time.Time       `json:"timestamp"`  // Event creation time
	Data      json.RawMessage `json:"data"`       // Journal entry payload
}
