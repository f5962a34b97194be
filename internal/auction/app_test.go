package auction

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/paddleup/auctioneer/internal/models"
)

// fakeStore is an in-memory Store with the same version semantics as the
// Postgres repository, so the app's concurrency handling is exercised for
// real.
type fakeStore struct {
	mu       sync.Mutex
	auctions map[uuid.UUID]*models.Auction
	teams    map[uuid.UUID]*models.Team
	players  map[uuid.UUID]*models.Player
	lots     map[uuid.UUID]*models.LotState
	bids     []models.Bid
	events   []models.AuctionEvent
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		auctions: make(map[uuid.UUID]*models.Auction),
		teams:    make(map[uuid.UUID]*models.Team),
		players:  make(map[uuid.UUID]*models.Player),
		lots:     make(map[uuid.UUID]*models.LotState),
	}
}

func (s *fakeStore) CreateAuction(_ context.Context, params CreateAuctionParams) (*models.Auction, []models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &models.Auction{ID: params.ID, Name: params.Name, Status: models.AuctionStatusSetup}
	s.auctions[a.ID] = a
	teams := make([]models.Team, 0, len(params.Teams))
	for _, tp := range params.Teams {
		t := &models.Team{
			ID:              tp.ID,
			AuctionID:       a.ID,
			Name:            tp.Name,
			PasswordHash:    tp.PasswordHash,
			BudgetTotal:     tp.BudgetTotal,
			BudgetRemaining: tp.BudgetTotal,
			PlayersNeeded:   tp.PlayersNeeded,
		}
		s.teams[t.ID] = t
		teams = append(teams, *t)
	}
	s.lots[a.ID] = &models.LotState{AuctionID: a.ID}
	return a, teams, nil
}

func (s *fakeStore) GetAuction(_ context.Context, id uuid.UUID) (*models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil, fmt.Errorf("%w: auction %s", ErrNotFound, id)
	}
	cp := *a
	return &cp, nil
}

func (s *fakeStore) GetTeam(_ context.Context, id uuid.UUID) (*models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[id]
	if !ok {
		return nil, fmt.Errorf("%w: team %s", ErrNotFound, id)
	}
	cp := *t
	return &cp, nil
}

func (s *fakeStore) GetTeamByName(_ context.Context, auctionID uuid.UUID, name string) (*models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.teams {
		if t.AuctionID == auctionID && t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: team %q", ErrNotFound, name)
}

func (s *fakeStore) ListTeams(_ context.Context, auctionID uuid.UUID) ([]models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Team
	for _, t := range s.teams {
		if t.AuctionID == auctionID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *fakeStore) CreatePlayer(_ context.Context, params CreatePlayerParams) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Player{
		ID:        params.ID,
		AuctionID: params.AuctionID,
		Name:      params.Name,
		BasePrice: params.BasePrice,
		Skill:     params.Skill,
		Status:    models.PlayerStatusUnsold,
	}
	s.players[p.ID] = p
	cp := *p
	return &cp, nil
}

func (s *fakeStore) CreatePlayers(ctx context.Context, params []CreatePlayerParams) ([]models.Player, error) {
	out := make([]models.Player, 0, len(params))
	for _, p := range params {
		created, err := s.CreatePlayer(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, *created)
	}
	return out, nil
}

func (s *fakeStore) GetPlayer(_ context.Context, id uuid.UUID) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return nil, fmt.Errorf("%w: player %s", ErrNotFound, id)
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) ListPlayers(_ context.Context, auctionID uuid.UUID) ([]models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Player
	for _, p := range s.players {
		if p.AuctionID == auctionID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakeStore) DeletePlayer(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[id]; !ok {
		return fmt.Errorf("%w: player %s", ErrNotFound, id)
	}
	delete(s.players, id)
	return nil
}

func (s *fakeStore) GetLotState(_ context.Context, auctionID uuid.UUID) (*models.LotState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lots[auctionID]
	if !ok {
		return nil, fmt.Errorf("%w: auction %s", ErrNotFound, auctionID)
	}
	cp := *l
	return &cp, nil
}

// casLot enforces the same guard the SQL layer does.
func (s *fakeStore) casLot(auctionID uuid.UUID, version int64) (*models.LotState, error) {
	l, ok := s.lots[auctionID]
	if !ok {
		return nil, fmt.Errorf("%w: auction %s", ErrNotFound, auctionID)
	}
	if l.Version != version {
		return nil, ErrStaleLot
	}
	l.Version++
	return l, nil
}

func (s *fakeStore) appendEvents(auctionID uuid.UUID, evs []EventParams) {
	for _, ev := range evs {
		s.events = append(s.events, models.AuctionEvent{
			ID:        uuid.New(),
			AuctionID: auctionID,
			EventType: ev.Type,
			Message:   ev.Message,
			Metadata:  ev.Metadata,
		})
	}
}

func (s *fakeStore) OpenLot(_ context.Context, params OpenLotParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.casLot(params.AuctionID, params.Version)
	if err != nil {
		return err
	}
	pid, bid, start, ends := params.PlayerID, params.OpeningBid, params.StartedAt, params.EndsAt
	l.CurrentPlayerID = &pid
	l.CurrentBid = &bid
	l.CurrentBidderTeamID = nil
	l.TimerStartedAt = &start
	l.TimerEndsAt = &ends
	l.TimerPausedAt = nil
	l.TimerPaused = false
	s.players[params.PlayerID].Status = models.PlayerStatusOnBlock
	if a := s.auctions[params.AuctionID]; a.Status == models.AuctionStatusSetup {
		a.Status = models.AuctionStatusActive
	}
	s.appendEvents(params.AuctionID, params.Events)
	return nil
}

func (s *fakeStore) RecordBid(_ context.Context, params RecordBidParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.casLot(params.AuctionID, params.Version)
	if err != nil {
		return err
	}
	amount, teamID := params.Amount, params.TeamID
	l.CurrentBid = &amount
	l.CurrentBidderTeamID = &teamID
	if params.NewEndsAt != nil {
		ends := *params.NewEndsAt
		l.TimerEndsAt = &ends
	}
	s.bids = append(s.bids, models.Bid{
		ID:        params.BidID,
		AuctionID: params.AuctionID,
		PlayerID:  params.PlayerID,
		TeamID:    params.TeamID,
		Amount:    params.Amount,
	})
	s.appendEvents(params.AuctionID, params.Events)
	return nil
}

func (s *fakeStore) PauseLot(_ context.Context, params PauseLotParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.casLot(params.AuctionID, params.Version)
	if err != nil {
		return err
	}
	pausedAt := params.PausedAt
	l.TimerPaused = true
	l.TimerPausedAt = &pausedAt
	s.auctions[params.AuctionID].Status = models.AuctionStatusPaused
	s.appendEvents(params.AuctionID, params.Events)
	return nil
}

func (s *fakeStore) ResumeLot(_ context.Context, params ResumeLotParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.casLot(params.AuctionID, params.Version)
	if err != nil {
		return err
	}
	ends := params.EndsAt
	l.TimerPaused = false
	l.TimerPausedAt = nil
	l.TimerEndsAt = &ends
	s.auctions[params.AuctionID].Status = models.AuctionStatusActive
	s.appendEvents(params.AuctionID, params.Events)
	return nil
}

func (s *fakeStore) clearLot(l *models.LotState) {
	l.CurrentPlayerID = nil
	l.CurrentBid = nil
	l.CurrentBidderTeamID = nil
	l.TimerStartedAt = nil
	l.TimerEndsAt = nil
	l.TimerPausedAt = nil
	l.TimerPaused = false
}

func (s *fakeStore) CloseLotSold(_ context.Context, params CloseLotSoldParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.casLot(params.AuctionID, params.Version)
	if err != nil {
		return err
	}
	s.clearLot(l)
	p := s.players[params.PlayerID]
	teamID, price := params.TeamID, params.FinalPrice
	p.Status = models.PlayerStatusSold
	p.TeamID = &teamID
	p.FinalPrice = &price
	t := s.teams[params.TeamID]
	t.BudgetRemaining = params.TeamBudgetRemaining
	t.PlayersNeeded = params.TeamPlayersNeeded
	s.appendEvents(params.AuctionID, params.Events)
	return nil
}

func (s *fakeStore) CloseLotPassed(_ context.Context, params CloseLotPassedParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.casLot(params.AuctionID, params.Version)
	if err != nil {
		return err
	}
	s.clearLot(l)
	p := s.players[params.PlayerID]
	p.Status = models.PlayerStatusPassed
	p.TeamID = nil
	p.FinalPrice = nil
	s.appendEvents(params.AuctionID, params.Events)
	return nil
}

func (s *fakeStore) ListRecentBids(_ context.Context, auctionID uuid.UUID, limit int32) ([]models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Bid
	for i := len(s.bids) - 1; i >= 0 && int32(len(out)) < limit; i-- {
		if s.bids[i].AuctionID == auctionID {
			out = append(out, s.bids[i])
		}
	}
	return out, nil
}

func (s *fakeStore) ListRecentEvents(_ context.Context, auctionID uuid.UUID, limit int32) ([]models.AuctionEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AuctionEvent
	for i := len(s.events) - 1; i >= 0 && int32(len(out)) < limit; i-- {
		if s.events[i].AuctionID == auctionID {
			out = append(out, s.events[i])
		}
	}
	return out, nil
}

func (s *fakeStore) NextDeadline(_ context.Context) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var min *time.Time
	for _, l := range s.lots {
		if l.CurrentPlayerID == nil || l.TimerPaused || l.TimerEndsAt == nil {
			continue
		}
		if min == nil || l.TimerEndsAt.Before(*min) {
			t := *l.TimerEndsAt
			min = &t
		}
	}
	return min, nil
}

func (s *fakeStore) AuctionsDueForSettle(_ context.Context, now time.Time, limit int32) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []uuid.UUID
	for id, l := range s.lots {
		if l.CurrentPlayerID != nil && !l.TimerPaused && l.TimerEndsAt != nil && !l.TimerEndsAt.After(now) {
			out = append(out, id)
			if int32(len(out)) == limit {
				break
			}
		}
	}
	return out, nil
}

var _ Store = (*fakeStore)(nil)

type appFixture struct {
	app     *App
	store   *fakeStore
	clock   *clockwork.FakeClock
	auction *models.Auction
	teams   []models.Team
	player  *models.Player
}

func newAppFixture(t *testing.T) *appFixture {
	t.Helper()
	ctx := context.Background()
	store := newFakeStore()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 5, 10, 19, 0, 0, 0, time.UTC))
	app := NewApp(store, clock, Config{})

	auction, teams, err := app.CreateAuction(ctx, CreateAuctionRequest{
		Name: "Summer League Auction",
		Teams: []TeamSeed{
			{Name: "Thunder", Password: "thunder-pass"},
			{Name: "Strikers", Password: "strikers-pass"},
		},
	})
	require.NoError(t, err)

	player, err := app.AddPlayer(ctx, AddPlayerRequest{
		AuctionID: auction.ID,
		Name:      "R. Sharma",
		BasePrice: 10,
		Skill:     models.SkillBatsman,
	})
	require.NoError(t, err)

	return &appFixture{app: app, store: store, clock: clock, auction: auction, teams: teams, player: player}
}

func (f *appFixture) startLot(t *testing.T) *models.LotState {
	t.Helper()
	lot, err := f.app.StartLot(context.Background(), f.auction.ID, f.player.ID)
	require.NoError(t, err)
	return lot
}

func (f *appFixture) lastEventTypes(n int) []models.EventType {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	evs := f.store.events
	if len(evs) > n {
		evs = evs[len(evs)-n:]
	}
	out := make([]models.EventType, 0, len(evs))
	for _, e := range evs {
		out = append(out, e.EventType)
	}
	return out
}

func TestStartLot(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	lot := f.startLot(t)
	require.True(t, lot.OnBlock())
	require.Equal(t, f.player.ID, *lot.CurrentPlayerID)
	require.Equal(t, f.player.BasePrice, *lot.CurrentBid)
	require.Nil(t, lot.CurrentBidderTeamID)
	require.Equal(t, f.clock.Now().UTC().Add(DefaultLotDuration), *lot.TimerEndsAt)

	auction, err := f.app.GetState(ctx, f.auction.ID)
	require.NoError(t, err)
	require.Equal(t, models.AuctionStatusActive, auction.Auction.Status)
	require.Equal(t, models.PlayerStatusOnBlock, auction.CurrentPlayer.Status)
	require.Equal(t, []models.EventType{models.EventTypeAuctionStarted}, f.lastEventTypes(1))

	// One player on the block at a time.
	second, err := f.app.AddPlayer(ctx, AddPlayerRequest{
		AuctionID: f.auction.ID, Name: "J. Bumrah", BasePrice: 15, Skill: models.SkillBowler,
	})
	require.NoError(t, err)
	_, err = f.app.StartLot(ctx, f.auction.ID, second.ID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestStartLotRejectsSoldPlayer(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	f.startLot(t)
	_, err := f.app.PlaceBid(ctx, PlaceBidRequest{AuctionID: f.auction.ID, TeamID: f.teams[0].ID})
	require.NoError(t, err)
	require.NoError(t, f.app.Settle(ctx, f.auction.ID, SettleSold))

	_, err = f.app.StartLot(ctx, f.auction.ID, f.player.ID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestPlaceBidDefaultsToMinimum(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	f.startLot(t)

	bid, err := f.app.PlaceBid(ctx, PlaceBidRequest{AuctionID: f.auction.ID, TeamID: f.teams[0].ID})
	require.NoError(t, err)
	require.Equal(t, int64(11), bid.Amount)

	bid, err = f.app.PlaceBid(ctx, PlaceBidRequest{AuctionID: f.auction.ID, TeamID: f.teams[1].ID})
	require.NoError(t, err)
	require.Equal(t, int64(12), bid.Amount)
}

func TestPlaceBidRejections(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	// No lot open yet.
	_, err := f.app.PlaceBid(ctx, PlaceBidRequest{AuctionID: f.auction.ID, TeamID: f.teams[0].ID})
	require.ErrorIs(t, err, ErrInvalidState)

	f.startLot(t)
	_, err = f.app.PlaceBid(ctx, PlaceBidRequest{AuctionID: f.auction.ID, TeamID: f.teams[0].ID, Amount: 20})
	require.NoError(t, err)

	// Leading team cannot outbid itself.
	_, err = f.app.PlaceBid(ctx, PlaceBidRequest{AuctionID: f.auction.ID, TeamID: f.teams[0].ID, Amount: 25})
	var rej *BidRejectedError
	require.ErrorAs(t, err, &rej)
	require.Equal(t, ReasonSelfBid, rej.Reason)

	_, err = f.app.PlaceBid(ctx, PlaceBidRequest{AuctionID: f.auction.ID, TeamID: f.teams[1].ID, Amount: 20})
	require.ErrorAs(t, err, &rej)
	require.Equal(t, ReasonBelowMinimum, rej.Reason)
	require.Equal(t, int64(21), rej.Minimum)

	_, err = f.app.PlaceBid(ctx, PlaceBidRequest{AuctionID: f.auction.ID, TeamID: f.teams[1].ID, Amount: 101})
	require.ErrorAs(t, err, &rej)
	require.Equal(t, ReasonInsufficientBudget, rej.Reason)
}

func TestPlaceBidReserveWarningAndConfirm(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	f.startLot(t)

	// 100 - 85 = 15 < 4 x 5.
	_, err := f.app.PlaceBid(ctx, PlaceBidRequest{AuctionID: f.auction.ID, TeamID: f.teams[0].ID, Amount: 85})
	var warn *ReserveWarningError
	require.ErrorAs(t, err, &warn)
	require.Equal(t, int64(15), warn.RemainingAfter)
	require.Equal(t, int64(20), warn.Required)

	// Nothing was recorded.
	lot, err := f.store.GetLotState(ctx, f.auction.ID)
	require.NoError(t, err)
	require.Nil(t, lot.CurrentBidderTeamID)

	bid, err := f.app.PlaceBid(ctx, PlaceBidRequest{
		AuctionID: f.auction.ID, TeamID: f.teams[0].ID, Amount: 85, ConfirmReserve: true,
	})
	require.NoError(t, err)
	require.Equal(t, int64(85), bid.Amount)
}

func TestPlaceBidAntiSnipe(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	f.startLot(t)

	// Outside the window: deadline untouched.
	f.clock.Advance(30 * time.Second)
	_, err := f.app.PlaceBid(ctx, PlaceBidRequest{AuctionID: f.auction.ID, TeamID: f.teams[0].ID})
	require.NoError(t, err)
	lot, err := f.store.GetLotState(ctx, f.auction.ID)
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, Remaining(lot, f.clock.Now().UTC()))

	// Inside the window: deadline becomes now + extension.
	f.clock.Advance(26 * time.Second)
	_, err = f.app.PlaceBid(ctx, PlaceBidRequest{AuctionID: f.auction.ID, TeamID: f.teams[1].ID})
	require.NoError(t, err)
	lot, err = f.store.GetLotState(ctx, f.auction.ID)
	require.NoError(t, err)
	require.Equal(t, f.clock.Now().UTC().Add(DefaultAntiSnipeExtension), *lot.TimerEndsAt)

	require.Equal(t,
		[]models.EventType{models.EventTypeTimerReset, models.EventTypeBid},
		f.lastEventTypes(2))
}

func TestPlaceBidAfterExpiry(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	f.startLot(t)

	f.clock.Advance(DefaultLotDuration)
	_, err := f.app.PlaceBid(ctx, PlaceBidRequest{AuctionID: f.auction.ID, TeamID: f.teams[0].ID})
	require.ErrorIs(t, err, ErrLotClosed)
}

func TestPauseResume(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	f.startLot(t)

	f.clock.Advance(40 * time.Second)
	require.NoError(t, f.app.Pause(ctx, f.auction.ID))

	// Wall time keeps moving; the lot clock does not.
	f.clock.Advance(10 * time.Minute)
	lot, err := f.store.GetLotState(ctx, f.auction.ID)
	require.NoError(t, err)
	require.Equal(t, 20*time.Second, Remaining(lot, f.clock.Now().UTC()))

	_, err = f.app.PlaceBid(ctx, PlaceBidRequest{AuctionID: f.auction.ID, TeamID: f.teams[0].ID})
	require.ErrorIs(t, err, ErrInvalidState)

	require.ErrorIs(t, f.app.Pause(ctx, f.auction.ID), ErrInvalidState)

	require.NoError(t, f.app.Resume(ctx, f.auction.ID))
	lot, err = f.store.GetLotState(ctx, f.auction.ID)
	require.NoError(t, err)
	require.Equal(t, f.clock.Now().UTC().Add(20*time.Second), *lot.TimerEndsAt)

	require.ErrorIs(t, f.app.Resume(ctx, f.auction.ID), ErrInvalidState)
}

func TestSettleSold(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	f.startLot(t)

	_, err := f.app.PlaceBid(ctx, PlaceBidRequest{AuctionID: f.auction.ID, TeamID: f.teams[0].ID, Amount: 30})
	require.NoError(t, err)
	require.NoError(t, f.app.Settle(ctx, f.auction.ID, SettleSold))

	player, err := f.store.GetPlayer(ctx, f.player.ID)
	require.NoError(t, err)
	require.Equal(t, models.PlayerStatusSold, player.Status)
	require.Equal(t, f.teams[0].ID, *player.TeamID)
	require.Equal(t, int64(30), *player.FinalPrice)

	team, err := f.store.GetTeam(ctx, f.teams[0].ID)
	require.NoError(t, err)
	require.Equal(t, int64(70), team.BudgetRemaining)
	require.Equal(t, 3, team.PlayersNeeded)

	lot, err := f.store.GetLotState(ctx, f.auction.ID)
	require.NoError(t, err)
	require.False(t, lot.OnBlock())

	require.Equal(t, []models.EventType{models.EventTypeSold}, f.lastEventTypes(1))
}

func TestSettleSoldRequiresBidder(t *testing.T) {
	f := newAppFixture(t)
	f.startLot(t)

	err := f.app.Settle(context.Background(), f.auction.ID, SettleSold)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestSettlePassedAllowsSecondRound(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	f.startLot(t)

	require.NoError(t, f.app.Settle(ctx, f.auction.ID, SettlePassed))
	player, err := f.store.GetPlayer(ctx, f.player.ID)
	require.NoError(t, err)
	require.Equal(t, models.PlayerStatusPassed, player.Status)

	// A passed player can come back on the block.
	_, err = f.app.StartLot(ctx, f.auction.ID, f.player.ID)
	require.NoError(t, err)
}

func TestSettleExpired(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	f.startLot(t)

	_, err := f.app.PlaceBid(ctx, PlaceBidRequest{AuctionID: f.auction.ID, TeamID: f.teams[1].ID, Amount: 25})
	require.NoError(t, err)

	// Not due yet.
	require.NoError(t, f.app.SettleExpired(ctx, f.auction.ID))
	lot, err := f.store.GetLotState(ctx, f.auction.ID)
	require.NoError(t, err)
	require.True(t, lot.OnBlock())

	f.clock.Advance(DefaultLotDuration)
	require.NoError(t, f.app.SettleExpired(ctx, f.auction.ID))

	player, err := f.store.GetPlayer(ctx, f.player.ID)
	require.NoError(t, err)
	require.Equal(t, models.PlayerStatusSold, player.Status)

	// Idempotent.
	require.NoError(t, f.app.SettleExpired(ctx, f.auction.ID))
}

func TestSettleExpiredWithoutBidsPasses(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	f.startLot(t)

	f.clock.Advance(DefaultLotDuration + time.Second)
	require.NoError(t, f.app.SettleExpired(ctx, f.auction.ID))

	player, err := f.store.GetPlayer(ctx, f.player.ID)
	require.NoError(t, err)
	require.Equal(t, models.PlayerStatusPassed, player.Status)
}

func TestSettleExpiredSkipsPausedLot(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	f.startLot(t)

	require.NoError(t, f.app.Pause(ctx, f.auction.ID))
	f.clock.Advance(time.Hour)
	require.NoError(t, f.app.SettleExpired(ctx, f.auction.ID))

	lot, err := f.store.GetLotState(ctx, f.auction.ID)
	require.NoError(t, err)
	require.True(t, lot.OnBlock())
}

func TestTeamLogin(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	team, err := f.app.TeamLogin(ctx, f.auction.ID, "Thunder", "thunder-pass")
	require.NoError(t, err)
	require.Equal(t, f.teams[0].ID, team.ID)

	_, err = f.app.TeamLogin(ctx, f.auction.ID, "Thunder", "wrong")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.app.TeamLogin(ctx, f.auction.ID, "Nobody", "thunder-pass")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePlayer(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	require.NoError(t, f.app.DeletePlayer(ctx, f.player.ID))

	p, err := f.app.AddPlayer(ctx, AddPlayerRequest{
		AuctionID: f.auction.ID, Name: "M. Starc", BasePrice: 12, Skill: models.SkillBowler,
	})
	require.NoError(t, err)
	_, err = f.app.StartLot(ctx, f.auction.ID, p.ID)
	require.NoError(t, err)
	require.ErrorIs(t, f.app.DeletePlayer(ctx, p.ID), ErrInvalidState)
}

func TestGetStateSnapshot(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	f.startLot(t)

	_, err := f.app.PlaceBid(ctx, PlaceBidRequest{AuctionID: f.auction.ID, TeamID: f.teams[0].ID, Amount: 14})
	require.NoError(t, err)
	f.clock.Advance(10 * time.Second)

	snap, err := f.app.GetState(ctx, f.auction.ID)
	require.NoError(t, err)
	require.Equal(t, f.player.ID, snap.CurrentPlayer.ID)
	require.Equal(t, int64(50), snap.RemainingSeconds)
	require.Equal(t, int64(15), *snap.MinimumNextBid)
	require.Len(t, snap.RecentBids, 1)
	require.Len(t, snap.Teams, 2)
}

func TestConcurrentBidsSerialize(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	f.startLot(t)

	var wg sync.WaitGroup
	errs := make([]error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			team := f.teams[i%2].ID
			_, errs[i] = f.app.PlaceBid(ctx, PlaceBidRequest{AuctionID: f.auction.ID, TeamID: team})
		}(i)
	}
	wg.Wait()

	// Minimum-next-bid requests alternate teams, so only self-bid
	// rejections are possible and every acceptance raised the price by one.
	var accepted int
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		var rej *BidRejectedError
		require.True(t, errors.As(err, &rej))
		require.Equal(t, ReasonSelfBid, rej.Reason)
	}
	lot, err := f.store.GetLotState(ctx, f.auction.ID)
	require.NoError(t, err)
	require.Equal(t, f.player.BasePrice+int64(accepted), *lot.CurrentBid)
}

func TestEventLogMessages(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	f.startLot(t)
	_, err := f.app.PlaceBid(ctx, PlaceBidRequest{AuctionID: f.auction.ID, TeamID: f.teams[0].ID})
	require.NoError(t, err)
	require.NoError(t, f.app.Pause(ctx, f.auction.ID))
	require.NoError(t, f.app.Resume(ctx, f.auction.ID))

	// Land the second bid inside the anti-snipe window.
	f.clock.Advance(DefaultLotDuration - 4*time.Second)
	_, err = f.app.PlaceBid(ctx, PlaceBidRequest{AuctionID: f.auction.ID, TeamID: f.teams[1].ID})
	require.NoError(t, err)
	require.NoError(t, f.app.Settle(ctx, f.auction.ID, SettleSold))

	f.store.mu.Lock()
	messages := make([]string, 0, len(f.store.events))
	for _, ev := range f.store.events {
		messages = append(messages, ev.Message)
	}
	f.store.mu.Unlock()

	require.Equal(t, []string{
		"Auction started for R. Sharma",
		"Thunder bid 11 points for R. Sharma",
		"Auction paused",
		"Auction resumed",
		"Timer reset to 15 seconds after Strikers bid in final 5 seconds",
		"Strikers bid 12 points for R. Sharma",
		"R. Sharma sold to Strikers for 12 points",
	}, messages)
}

func TestEventLogMessageForPassedPlayer(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	f.startLot(t)
	require.NoError(t, f.app.Settle(ctx, f.auction.ID, SettlePassed))

	f.store.mu.Lock()
	last := f.store.events[len(f.store.events)-1]
	f.store.mu.Unlock()
	require.Equal(t, models.EventTypePassed, last.EventType)
	require.Equal(t, "R. Sharma passed (no bids)", last.Message)
}
