package models

import (
	"time"

	"github.com/google/uuid"
)

// AuctionStatus defines the lifecycle status of an auction.
type AuctionStatus string

const (
	AuctionStatusSetup     AuctionStatus = "setup"
	AuctionStatusActive    AuctionStatus = "active"
	AuctionStatusPaused    AuctionStatus = "paused"
	AuctionStatusCompleted AuctionStatus = "completed"
)

// Auction represents one auction night: a named pool of teams and players.
type Auction struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Status    AuctionStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
