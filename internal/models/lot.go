package models

import (
	"time"

	"github.com/google/uuid"
)

// LotState is the singleton per-auction record for the player currently on
// the block. CurrentPlayerID is non-nil iff the timer fields are meaningful;
// CurrentBidderTeamID is non-nil only once a bid has been accepted.
//
// Timer state is stored as absolute timestamps only. While paused,
// TimerPausedAt freezes the clock: remaining time is TimerEndsAt minus
// TimerPausedAt, and resume re-anchors TimerEndsAt from the frozen remainder.
//
// Version backs the compare-and-swap every mutating operation runs under, so
// concurrent writers from multiple service instances cannot interleave.
type LotState struct {
	AuctionID           uuid.UUID  `json:"auction_id"`
	CurrentPlayerID     *uuid.UUID `json:"current_player_id,omitempty"`
	CurrentBid          *int64     `json:"current_bid,omitempty"`
	CurrentBidderTeamID *uuid.UUID `json:"current_bidder_team_id,omitempty"`
	TimerStartedAt      *time.Time `json:"timer_started_at,omitempty"`
	TimerEndsAt         *time.Time `json:"timer_ends_at,omitempty"`
	TimerPausedAt       *time.Time `json:"timer_paused_at,omitempty"`
	TimerPaused         bool       `json:"timer_paused"`
	Version             int64      `json:"version"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// OnBlock reports whether a player is currently up for bidding.
func (l *LotState) OnBlock() bool {
	return l.CurrentPlayerID != nil
}
