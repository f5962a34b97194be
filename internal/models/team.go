package models

import (
	"time"

	"github.com/google/uuid"
)

// Team is a bidding franchise. BudgetRemaining only ever decreases, and only
// at settlement; PlayersNeeded is decremented exactly once per won player.
type Team struct {
	ID              uuid.UUID `json:"id"`
	AuctionID       uuid.UUID `json:"auction_id"`
	Name            string    `json:"name"`
	PasswordHash    string    `json:"-"`
	BudgetTotal     int64     `json:"budget_total"`
	BudgetRemaining int64     `json:"budget_remaining"`
	PlayersNeeded   int       `json:"players_needed"`
	CreatedAt       time.Time `json:"created_at"`
}
