package auction

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/paddleup/auctioneer/internal/models"
)

func TestApplySale(t *testing.T) {
	team := models.Team{
		ID:              uuid.New(),
		Name:            "Strikers",
		BudgetTotal:     100,
		BudgetRemaining: 60,
		PlayersNeeded:   3,
	}

	updated, err := ApplySale(team, 25)
	require.NoError(t, err)
	require.Equal(t, int64(35), updated.BudgetRemaining)
	require.Equal(t, 2, updated.PlayersNeeded)

	// Input is untouched.
	require.Equal(t, int64(60), team.BudgetRemaining)
	require.Equal(t, 3, team.PlayersNeeded)
}

func TestApplySaleRejectsInvariantViolations(t *testing.T) {
	team := models.Team{ID: uuid.New(), BudgetRemaining: 10, PlayersNeeded: 1}

	_, err := ApplySale(team, 0)
	require.Error(t, err)

	_, err = ApplySale(team, -5)
	require.Error(t, err)

	_, err = ApplySale(team, 11)
	require.Error(t, err)

	team.PlayersNeeded = 0
	_, err = ApplySale(team, 5)
	require.Error(t, err)
}

func TestApplySaleExactBudget(t *testing.T) {
	team := models.Team{ID: uuid.New(), BudgetRemaining: 10, PlayersNeeded: 1}

	updated, err := ApplySale(team, 10)
	require.NoError(t, err)
	require.Zero(t, updated.BudgetRemaining)
	require.Zero(t, updated.PlayersNeeded)
}
