package models

import (
	"time"

	"github.com/google/uuid"
)

// PlayerSkill defines the skill category of a player.
type PlayerSkill string

const (
	SkillBatsman      PlayerSkill = "Batsman"
	SkillBowler       PlayerSkill = "Bowler"
	SkillAllRounder   PlayerSkill = "All-Rounder"
	SkillWicketKeeper PlayerSkill = "Wicket-Keeper"
)

// PlayerStatus defines where a player sits in the auction flow. Exactly one
// status holds at any time; passed players may return to the block for a
// second round.
type PlayerStatus string

const (
	PlayerStatusUnsold  PlayerStatus = "unsold"
	PlayerStatusOnBlock PlayerStatus = "on_block"
	PlayerStatusSold    PlayerStatus = "sold"
	PlayerStatusPassed  PlayerStatus = "passed"
)

// Player is a draftable player. TeamID and FinalPrice are set only when sold.
type Player struct {
	ID         uuid.UUID    `json:"id"`
	AuctionID  uuid.UUID    `json:"auction_id"`
	Name       string       `json:"name"`
	BasePrice  int64        `json:"base_price"`
	Skill      PlayerSkill  `json:"skill"`
	Status     PlayerStatus `json:"status"`
	TeamID     *uuid.UUID   `json:"team_id,omitempty"`
	FinalPrice *int64       `json:"final_price,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}
