package auction

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/paddleup/auctioneer/internal/models"
)

const testReservePerPlayer = 5

func validatorFixture() (*models.LotState, *models.Player, *models.Team) {
	playerID := uuid.New()
	auctionID := uuid.New()
	now := time.Now()
	ends := now.Add(45 * time.Second)
	bid := int64(10)

	lot := &models.LotState{
		AuctionID:       auctionID,
		CurrentPlayerID: &playerID,
		CurrentBid:      &bid,
		TimerStartedAt:  &now,
		TimerEndsAt:     &ends,
	}
	player := &models.Player{
		ID:        playerID,
		AuctionID: auctionID,
		Name:      "R. Sharma",
		BasePrice: 10,
		Skill:     models.SkillBatsman,
		Status:    models.PlayerStatusOnBlock,
	}
	team := &models.Team{
		ID:              uuid.New(),
		AuctionID:       auctionID,
		Name:            "Thunder",
		BudgetTotal:     100,
		BudgetRemaining: 100,
		PlayersNeeded:   4,
	}
	return lot, player, team
}

func TestMinimumNextBid(t *testing.T) {
	lot, player, _ := validatorFixture()
	require.Equal(t, int64(11), MinimumNextBid(lot, player))

	lot.CurrentBid = nil
	require.Equal(t, int64(11), MinimumNextBid(lot, player))

	require.Equal(t, int64(11), MinimumNextBid(nil, player))
}

func TestValidateBidNoLot(t *testing.T) {
	_, player, team := validatorFixture()

	_, err := ValidateBid(nil, player, team, 11, testReservePerPlayer)
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = ValidateBid(&models.LotState{}, player, team, 11, testReservePerPlayer)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestValidateBidSelfBid(t *testing.T) {
	lot, player, team := validatorFixture()
	lot.CurrentBidderTeamID = &team.ID

	_, err := ValidateBid(lot, player, team, 20, testReservePerPlayer)
	var rej *BidRejectedError
	require.ErrorAs(t, err, &rej)
	require.Equal(t, ReasonSelfBid, rej.Reason)
}

func TestValidateBidBelowMinimum(t *testing.T) {
	lot, player, team := validatorFixture()

	_, err := ValidateBid(lot, player, team, 10, testReservePerPlayer)
	var rej *BidRejectedError
	require.ErrorAs(t, err, &rej)
	require.Equal(t, ReasonBelowMinimum, rej.Reason)
	require.Equal(t, int64(11), rej.Minimum)
}

func TestValidateBidInsufficientBudget(t *testing.T) {
	lot, player, team := validatorFixture()
	team.BudgetRemaining = 10

	_, err := ValidateBid(lot, player, team, 11, testReservePerPlayer)
	var rej *BidRejectedError
	require.ErrorAs(t, err, &rej)
	require.Equal(t, ReasonInsufficientBudget, rej.Reason)
}

func TestValidateBidReserveWarning(t *testing.T) {
	lot, player, team := validatorFixture()

	// 100 - 81 = 19 < 4 x 5: warn, but no error.
	warn, err := ValidateBid(lot, player, team, 81, testReservePerPlayer)
	require.NoError(t, err)
	require.True(t, warn)

	// 100 - 80 = 20 == 4 x 5: exactly the reserve is fine.
	warn, err = ValidateBid(lot, player, team, 80, testReservePerPlayer)
	require.NoError(t, err)
	require.False(t, warn)
}

func TestValidateBidHappyPath(t *testing.T) {
	lot, player, team := validatorFixture()
	other := uuid.New()
	lot.CurrentBidderTeamID = &other

	warn, err := ValidateBid(lot, player, team, 11, testReservePerPlayer)
	require.NoError(t, err)
	require.False(t, warn)
}
