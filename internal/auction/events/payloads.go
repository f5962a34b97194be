// Package events holds the structured metadata attached to auction log
// entries. The payloads are shared between the state machine, which writes
// them, and the gateway, which republishes them to subscribers.
package events

// BidPayload is the metadata for a bid event.
type BidPayload struct {
	TeamID     string `json:"team_id"`
	TeamName   string `json:"team_name"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Amount     int64  `json:"amount"`
}

// SoldPayload is the metadata for a sold event.
type SoldPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	TeamID     string `json:"team_id"`
	TeamName   string `json:"team_name"`
	Price      int64  `json:"price"`
}

// PassedPayload is the metadata for a passed event.
type PassedPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// TimerResetPayload is the metadata for an anti-snipe timer_reset event.
type TimerResetPayload struct {
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
}

// LotStartedPayload is the metadata for an auction_started event.
type LotStartedPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}
