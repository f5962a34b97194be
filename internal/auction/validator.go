package auction

import (
	"github.com/paddleup/auctioneer/internal/models"
)

// MinimumNextBid returns the lowest acceptable bid for the lot: one point
// over the standing bid, or over the base price if no bid stands yet.
// StartLot seeds the standing bid with the base price, so the first bid on a
// fresh lot is base_price+1.
func MinimumNextBid(lot *models.LotState, player *models.Player) int64 {
	if lot != nil && lot.CurrentBid != nil {
		return *lot.CurrentBid + 1
	}
	return player.BasePrice + 1
}

// ValidateBid applies the bid-acceptance rules in order and reports whether
// the advisory reserve warning fires. The warning is never a rejection: the
// caller decides whether to confirm. reservePerPlayer is the configured
// budget each team is advised to hold back per unfilled slot.
func ValidateBid(lot *models.LotState, player *models.Player, team *models.Team, amount, reservePerPlayer int64) (reserveWarn bool, err error) {
	if lot == nil || !lot.OnBlock() {
		return false, ErrInvalidState
	}
	if lot.CurrentBidderTeamID != nil && *lot.CurrentBidderTeamID == team.ID {
		return false, &BidRejectedError{Reason: ReasonSelfBid}
	}
	min := MinimumNextBid(lot, player)
	if amount < min {
		return false, &BidRejectedError{Reason: ReasonBelowMinimum, Minimum: min}
	}
	if amount > team.BudgetRemaining {
		return false, &BidRejectedError{Reason: ReasonInsufficientBudget, Minimum: min}
	}
	if team.BudgetRemaining-amount < int64(team.PlayersNeeded)*reservePerPlayer {
		reserveWarn = true
	}
	return reserveWarn, nil
}
