package auction

import (
	"fmt"

	"github.com/paddleup/auctioneer/internal/models"
)

// ApplySale returns the team after paying for a won player: the budget is
// debited by the sale amount and one needed-player slot is consumed.
//
// The validator guarantees upstream that the amount fits the budget and that
// the team still needs players, so a violation here is a logic bug: the
// ledger refuses rather than clamping.
func ApplySale(team models.Team, amount int64) (models.Team, error) {
	if amount <= 0 {
		return team, fmt.Errorf("ledger: sale amount must be positive, got %d", amount)
	}
	if amount > team.BudgetRemaining {
		return team, fmt.Errorf("ledger: sale of %d exceeds remaining budget %d for team %s",
			amount, team.BudgetRemaining, team.ID)
	}
	if team.PlayersNeeded <= 0 {
		return team, fmt.Errorf("ledger: team %s has no player slots left", team.ID)
	}
	team.BudgetRemaining -= amount
	team.PlayersNeeded--
	return team, nil
}
