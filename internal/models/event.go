package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of an auction log event.
type EventType string

const (
	EventTypeBid            EventType = "bid"
	EventTypeSold           EventType = "sold"
	EventTypePassed         EventType = "passed"
	EventTypeTimerReset     EventType = "timer_reset"
	EventTypeAuctionStarted EventType = "auction_started"
	EventTypeAuctionPaused  EventType = "auction_paused"
	EventTypeAuctionResumed EventType = "auction_resumed"
)

// AuctionEvent is an append-only journal entry, written by the state machine
// as a side effect of a successful transition and never retracted.
type AuctionEvent struct {
	ID        uuid.UUID       `json:"id"`
	AuctionID uuid.UUID       `json:"auction_id"`
	EventType EventType       `json:"event_type"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
