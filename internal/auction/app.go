package auction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/paddleup/auctioneer/internal/auction/events"
	"github.com/paddleup/auctioneer/internal/auth"
	"github.com/paddleup/auctioneer/internal/models"
)

// Store defines what the auction app layer needs from persistence. Mutating
// calls carry the lot version they read; the store rejects them with
// ErrStaleLot when the row has moved on.
type Store interface {
	CreateAuction(ctx context.Context, params CreateAuctionParams) (*models.Auction, []models.Team, error)
	GetAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error)

	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	GetTeamByName(ctx context.Context, auctionID uuid.UUID, name string) (*models.Team, error)
	ListTeams(ctx context.Context, auctionID uuid.UUID) ([]models.Team, error)

	CreatePlayer(ctx context.Context, params CreatePlayerParams) (*models.Player, error)
	CreatePlayers(ctx context.Context, params []CreatePlayerParams) ([]models.Player, error)
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
	ListPlayers(ctx context.Context, auctionID uuid.UUID) ([]models.Player, error)
	DeletePlayer(ctx context.Context, id uuid.UUID) error

	GetLotState(ctx context.Context, auctionID uuid.UUID) (*models.LotState, error)
	OpenLot(ctx context.Context, params OpenLotParams) error
	RecordBid(ctx context.Context, params RecordBidParams) error
	PauseLot(ctx context.Context, params PauseLotParams) error
	ResumeLot(ctx context.Context, params ResumeLotParams) error
	CloseLotSold(ctx context.Context, params CloseLotSoldParams) error
	CloseLotPassed(ctx context.Context, params CloseLotPassedParams) error

	ListRecentBids(ctx context.Context, auctionID uuid.UUID, limit int32) ([]models.Bid, error)
	ListRecentEvents(ctx context.Context, auctionID uuid.UUID, limit int32) ([]models.AuctionEvent, error)

	NextDeadline(ctx context.Context) (*time.Time, error)
	AuctionsDueForSettle(ctx context.Context, now time.Time, limit int32) ([]uuid.UUID, error)
}

// Config carries the tunables of the lot clock and the ledger defaults.
// Zero values fall back to the standard rules.
type Config struct {
	LotDuration          time.Duration
	AntiSnipeWindow      time.Duration
	AntiSnipeExtension   time.Duration
	ReservePerPlayer     int64
	DefaultBudget        int64
	DefaultPlayersNeeded int
	RecentLimit          int32
}

func (c Config) withDefaults() Config {
	if c.LotDuration <= 0 {
		c.LotDuration = DefaultLotDuration
	}
	if c.AntiSnipeWindow <= 0 {
		c.AntiSnipeWindow = DefaultAntiSnipeWindow
	}
	if c.AntiSnipeExtension <= 0 {
		c.AntiSnipeExtension = DefaultAntiSnipeExtension
	}
	if c.ReservePerPlayer <= 0 {
		c.ReservePerPlayer = 5
	}
	if c.DefaultBudget <= 0 {
		c.DefaultBudget = 100
	}
	if c.DefaultPlayersNeeded <= 0 {
		c.DefaultPlayersNeeded = 4
	}
	if c.RecentLimit <= 0 {
		c.RecentLimit = 10
	}
	return c
}

// App handles auction business logic. All mutating operations on one auction
// serialize through a per-auction mutex; cross-instance races are caught by
// the store's version check.
type App struct {
	store Store
	clock clockwork.Clock
	cfg   Config

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex

	wakeCh chan struct{}
}

// NewApp creates a new auction App.
func NewApp(store Store, clock clockwork.Clock, cfg Config) *App {
	return &App{
		store:  store,
		clock:  clock,
		cfg:    cfg.withDefaults(),
		locks:  make(map[uuid.UUID]*sync.Mutex),
		wakeCh: make(chan struct{}, 1),
	}
}

// Wake signals whenever a lot deadline may have moved, so the settle
// scheduler can recompute its timer.
func (a *App) Wake() <-chan struct{} {
	return a.wakeCh
}

func (a *App) nudge() {
	select {
	case a.wakeCh <- struct{}{}:
	default:
	}
}

// lockAuction serializes mutations per auction. Entries are created on first
// use and never evicted: every waiter must block on the same mutex instance,
// so the map holds one entry per auction seen by this process.
func (a *App) lockAuction(id uuid.UUID) func() {
	a.mu.Lock()
	lock, ok := a.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[id] = lock
	}
	a.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// eventMeta marshals an event payload struct. The payload types contain only
// strings and integers, so marshaling cannot fail.
func eventMeta(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// TeamSeed describes one team to create alongside a new auction. Budget and
// PlayersNeeded fall back to the configured defaults when nil.
type TeamSeed struct {
	Name          string `json:"name"`
	Password      string `json:"password"`
	Budget        *int64 `json:"budget,omitempty"`
	PlayersNeeded *int   `json:"players_needed,omitempty"`
}

// CreateAuctionRequest creates an auction together with its teams.
type CreateAuctionRequest struct {
	Name  string     `json:"name"`
	Teams []TeamSeed `json:"teams"`
}

// CreateAuction creates a new auction in setup status with its teams and an
// empty lot record.
func (a *App) CreateAuction(ctx context.Context, req CreateAuctionRequest) (*models.Auction, []models.Team, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, nil, fmt.Errorf("%w: auction name is required", ErrInvalidState)
	}
	if len(req.Teams) < 2 {
		return nil, nil, fmt.Errorf("%w: an auction needs at least two teams", ErrInvalidState)
	}

	seen := make(map[string]bool, len(req.Teams))
	teamParams := make([]CreateTeamParams, 0, len(req.Teams))
	for _, seed := range req.Teams {
		name := strings.TrimSpace(seed.Name)
		if name == "" || seed.Password == "" {
			return nil, nil, fmt.Errorf("%w: every team needs a name and a passcode", ErrInvalidState)
		}
		if seen[name] {
			return nil, nil, fmt.Errorf("%w: duplicate team name %q", ErrInvalidState, name)
		}
		seen[name] = true

		budget := a.cfg.DefaultBudget
		if seed.Budget != nil && *seed.Budget > 0 {
			budget = *seed.Budget
		}
		needed := a.cfg.DefaultPlayersNeeded
		if seed.PlayersNeeded != nil && *seed.PlayersNeeded > 0 {
			needed = *seed.PlayersNeeded
		}
		teamParams = append(teamParams, CreateTeamParams{
			ID:            uuid.New(),
			Name:          name,
			PasswordHash:  auth.HashPassword(seed.Password),
			BudgetTotal:   budget,
			PlayersNeeded: needed,
		})
	}

	auction, teams, err := a.store.CreateAuction(ctx, CreateAuctionParams{
		ID:    uuid.New(),
		Name:  strings.TrimSpace(req.Name),
		Teams: teamParams,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create auction: %w", err)
	}

	log.Info().
		Str("auction_id", auction.ID.String()).
		Int("teams", len(teams)).
		Msg("created auction")
	return auction, teams, nil
}

var validSkills = map[models.PlayerSkill]bool{
	models.SkillBatsman:      true,
	models.SkillBowler:       true,
	models.SkillAllRounder:   true,
	models.SkillWicketKeeper: true,
}

// AddPlayerRequest registers one player into an auction's pool.
type AddPlayerRequest struct {
	AuctionID uuid.UUID          `json:"auction_id"`
	Name      string             `json:"name"`
	BasePrice int64              `json:"base_price"`
	Skill     models.PlayerSkill `json:"skill"`
}

func (a *App) validateAddPlayer(req AddPlayerRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: player name is required", ErrInvalidState)
	}
	if req.BasePrice <= 0 {
		return fmt.Errorf("%w: base price must be positive", ErrInvalidState)
	}
	if !validSkills[req.Skill] {
		return fmt.Errorf("%w: unknown skill %q", ErrInvalidState, req.Skill)
	}
	return nil
}

// AddPlayer adds a single player to the auction pool.
func (a *App) AddPlayer(ctx context.Context, req AddPlayerRequest) (*models.Player, error) {
	if err := a.validateAddPlayer(req); err != nil {
		return nil, err
	}
	if _, err := a.store.GetAuction(ctx, req.AuctionID); err != nil {
		return nil, fmt.Errorf("auction lookup failed: %w", err)
	}

	player, err := a.store.CreatePlayer(ctx, CreatePlayerParams{
		ID:        uuid.New(),
		AuctionID: req.AuctionID,
		Name:      strings.TrimSpace(req.Name),
		BasePrice: req.BasePrice,
		Skill:     req.Skill,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

// BulkAddPlayers adds a batch of players in one transaction. Either every
// row lands or none do.
func (a *App) BulkAddPlayers(ctx context.Context, reqs []AddPlayerRequest) ([]models.Player, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: empty player batch", ErrInvalidState)
	}
	auctionID := reqs[0].AuctionID
	params := make([]CreatePlayerParams, 0, len(reqs))
	for i, req := range reqs {
		if req.AuctionID != auctionID {
			return nil, fmt.Errorf("%w: batch row %d targets a different auction", ErrInvalidState, i)
		}
		if err := a.validateAddPlayer(req); err != nil {
			return nil, fmt.Errorf("batch row %d: %w", i, err)
		}
		params = append(params, CreatePlayerParams{
			ID:        uuid.New(),
			AuctionID: req.AuctionID,
			Name:      strings.TrimSpace(req.Name),
			BasePrice: req.BasePrice,
			Skill:     req.Skill,
		})
	}
	if _, err := a.store.GetAuction(ctx, auctionID); err != nil {
		return nil, fmt.Errorf("auction lookup failed: %w", err)
	}

	players, err := a.store.CreatePlayers(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create players: %w", err)
	}
	log.Info().
		Str("auction_id", auctionID.String()).
		Int("players", len(players)).
		Msg("bulk added players")
	return players, nil
}

// DeletePlayer removes a player that has not been on the block or sold.
func (a *App) DeletePlayer(ctx context.Context, playerID uuid.UUID) error {
	player, err := a.store.GetPlayer(ctx, playerID)
	if err != nil {
		return fmt.Errorf("player lookup failed: %w", err)
	}
	if player.Status == models.PlayerStatusOnBlock || player.Status == models.PlayerStatusSold {
		return fmt.Errorf("%w: cannot delete a %s player", ErrInvalidState, player.Status)
	}
	if err := a.store.DeletePlayer(ctx, playerID); err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	return nil
}

// TeamLogin authenticates a team by name and passcode within one auction.
// Lookup and verification failures are indistinguishable to the caller.
func (a *App) TeamLogin(ctx context.Context, auctionID uuid.UUID, name, password string) (*models.Team, error) {
	team, err := a.store.GetTeamByName(ctx, auctionID, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown team or wrong passcode", ErrNotFound)
		}
		return nil, fmt.Errorf("team lookup failed: %w", err)
	}
	if !auth.VerifyPassword(password, team.PasswordHash) {
		return nil, fmt.Errorf("%w: unknown team or wrong passcode", ErrNotFound)
	}
	return team, nil
}

// StartLot puts a player on the block and starts the lot clock. The opening
// bid is seeded with the player's base price; the first accepted bid must
// beat it by one.
func (a *App) StartLot(ctx context.Context, auctionID, playerID uuid.UUID) (*models.LotState, error) {
	defer a.lockAuction(auctionID)()

	auction, err := a.store.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("auction lookup failed: %w", err)
	}
	switch auction.Status {
	case models.AuctionStatusSetup, models.AuctionStatusActive:
	default:
		return nil, fmt.Errorf("%w: cannot start a lot while auction is %s", ErrInvalidState, auction.Status)
	}

	lot, err := a.store.GetLotState(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("lot lookup failed: %w", err)
	}
	if lot.OnBlock() {
		return nil, fmt.Errorf("%w: a player is already on the block", ErrInvalidState)
	}

	player, err := a.store.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("player lookup failed: %w", err)
	}
	if player.AuctionID != auctionID {
		return nil, fmt.Errorf("%w: player %s does not belong to auction %s", ErrNotFound, playerID, auctionID)
	}
	switch player.Status {
	case models.PlayerStatusUnsold, models.PlayerStatusPassed:
	default:
		return nil, fmt.Errorf("%w: player is %s", ErrInvalidState, player.Status)
	}

	now := a.clock.Now().UTC()
	endsAt := now.Add(a.cfg.LotDuration)

	err = a.store.OpenLot(ctx, OpenLotParams{
		AuctionID:  auctionID,
		Version:    lot.Version,
		PlayerID:   playerID,
		OpeningBid: player.BasePrice,
		StartedAt:  now,
		EndsAt:     endsAt,
		Events: []EventParams{{
			Type:    models.EventTypeAuctionStarted,
			Message: fmt.Sprintf("Auction started for %s", player.Name),
			Metadata: eventMeta(events.LotStartedPayload{
				PlayerID:   playerID.String(),
				PlayerName: player.Name,
			}),
		}},
	})
	if err != nil {
		if errors.Is(err, ErrStaleLot) {
			return nil, fmt.Errorf("%w: lot changed concurrently", ErrInvalidState)
		}
		return nil, fmt.Errorf("failed to open lot: %w", err)
	}
	a.nudge()

	log.Info().
		Str("auction_id", auctionID.String()).
		Str("player_id", playerID.String()).
		Time("ends_at", endsAt).
		Msg("lot opened")

	opening := player.BasePrice
	return &models.LotState{
		AuctionID:       auctionID,
		CurrentPlayerID: &playerID,
		CurrentBid:      &opening,
		TimerStartedAt:  &now,
		TimerEndsAt:     &endsAt,
		Version:         lot.Version + 1,
		UpdatedAt:       now,
	}, nil
}

// PlaceBidRequest is one team's attempt to take the lead on the current lot.
// Amount zero means "the minimum next bid". ConfirmReserve acknowledges a
// previously returned reserve warning.
type PlaceBidRequest struct {
	AuctionID      uuid.UUID `json:"auction_id"`
	TeamID         uuid.UUID `json:"team_id"`
	Amount         int64     `json:"amount"`
	ConfirmReserve bool      `json:"confirm_reserve"`
}

// PlaceBid validates and records a bid, extending the lot clock when the bid
// lands inside the anti-snipe window.
func (a *App) PlaceBid(ctx context.Context, req PlaceBidRequest) (*models.Bid, error) {
	defer a.lockAuction(req.AuctionID)()

	lot, err := a.store.GetLotState(ctx, req.AuctionID)
	if err != nil {
		return nil, fmt.Errorf("lot lookup failed: %w", err)
	}
	if !lot.OnBlock() {
		return nil, fmt.Errorf("%w: no player on the block", ErrInvalidState)
	}
	if lot.TimerPaused {
		return nil, fmt.Errorf("%w: auction is paused", ErrInvalidState)
	}

	now := a.clock.Now().UTC()
	remaining := Remaining(lot, now)
	if remaining == 0 {
		return nil, fmt.Errorf("%w: lot timer has expired", ErrLotClosed)
	}

	player, err := a.store.GetPlayer(ctx, *lot.CurrentPlayerID)
	if err != nil {
		return nil, fmt.Errorf("player lookup failed: %w", err)
	}
	team, err := a.store.GetTeam(ctx, req.TeamID)
	if err != nil {
		return nil, fmt.Errorf("team lookup failed: %w", err)
	}
	if team.AuctionID != req.AuctionID {
		return nil, fmt.Errorf("%w: team %s does not belong to auction %s", ErrNotFound, req.TeamID, req.AuctionID)
	}

	amount := req.Amount
	if amount <= 0 {
		amount = MinimumNextBid(lot, player)
	}

	warn, err := ValidateBid(lot, player, team, amount, a.cfg.ReservePerPlayer)
	if err != nil {
		return nil, err
	}
	if warn && !req.ConfirmReserve {
		return nil, &ReserveWarningError{
			RemainingAfter: team.BudgetRemaining - amount,
			Required:       int64(team.PlayersNeeded) * a.cfg.ReservePerPlayer,
			PlayersNeeded:  team.PlayersNeeded,
		}
	}

	extend := ShouldExtend(remaining, a.cfg.AntiSnipeWindow)
	var newEndsAt *time.Time
	evs := make([]EventParams, 0, 2)
	if extend {
		ends := now.Add(a.cfg.AntiSnipeExtension)
		newEndsAt = &ends
		evs = append(evs, EventParams{
			Type: models.EventTypeTimerReset,
			Message: fmt.Sprintf("Timer reset to %d seconds after %s bid in final %d seconds",
				int(a.cfg.AntiSnipeExtension/time.Second), team.Name,
				int(a.cfg.AntiSnipeWindow/time.Second)),
			Metadata: eventMeta(events.TimerResetPayload{
				TeamID:   team.ID.String(),
				TeamName: team.Name,
			}),
		})
	}
	evs = append(evs, EventParams{
		Type:    models.EventTypeBid,
		Message: fmt.Sprintf("%s bid %d points for %s", team.Name, amount, player.Name),
		Metadata: eventMeta(events.BidPayload{
			TeamID:     team.ID.String(),
			TeamName:   team.Name,
			PlayerID:   player.ID.String(),
			PlayerName: player.Name,
			Amount:     amount,
		}),
	})

	bidID := uuid.New()
	err = a.store.RecordBid(ctx, RecordBidParams{
		AuctionID: req.AuctionID,
		Version:   lot.Version,
		BidID:     bidID,
		PlayerID:  player.ID,
		TeamID:    team.ID,
		Amount:    amount,
		NewEndsAt: newEndsAt,
		Events:    evs,
	})
	if err != nil {
		if errors.Is(err, ErrStaleLot) {
			return nil, a.staleBidError(ctx, req.AuctionID, player)
		}
		return nil, fmt.Errorf("failed to record bid: %w", err)
	}
	if extend {
		a.nudge()
	}

	log.Info().
		Str("auction_id", req.AuctionID.String()).
		Str("team", team.Name).
		Int64("amount", amount).
		Bool("extended", extend).
		Msg("bid accepted")

	return &models.Bid{
		ID:        bidID,
		AuctionID: req.AuctionID,
		PlayerID:  player.ID,
		TeamID:    team.ID,
		Amount:    amount,
		CreatedAt: now,
	}, nil
}

// staleBidError translates a lost version race into the caller-facing error:
// the lot either closed under us or another bid landed first.
func (a *App) staleBidError(ctx context.Context, auctionID uuid.UUID, player *models.Player) error {
	lot, err := a.store.GetLotState(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("lot re-read failed: %w", err)
	}
	if !lot.OnBlock() {
		return fmt.Errorf("%w: lot settled while bidding", ErrLotClosed)
	}
	return &BidRejectedError{Reason: ReasonStaleBid, Minimum: MinimumNextBid(lot, player)}
}

// Pause freezes the lot clock. Bidding is rejected until Resume.
func (a *App) Pause(ctx context.Context, auctionID uuid.UUID) error {
	defer a.lockAuction(auctionID)()

	lot, err := a.store.GetLotState(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("lot lookup failed: %w", err)
	}
	if !lot.OnBlock() {
		return fmt.Errorf("%w: no player on the block", ErrInvalidState)
	}
	if lot.TimerPaused {
		return fmt.Errorf("%w: auction is already paused", ErrInvalidState)
	}

	now := a.clock.Now().UTC()
	err = a.store.PauseLot(ctx, PauseLotParams{
		AuctionID: auctionID,
		Version:   lot.Version,
		PausedAt:  now,
		Events: []EventParams{{
			Type:    models.EventTypeAuctionPaused,
			Message: "Auction paused",
		}},
	})
	if err != nil {
		if errors.Is(err, ErrStaleLot) {
			return fmt.Errorf("%w: lot changed concurrently", ErrInvalidState)
		}
		return fmt.Errorf("failed to pause lot: %w", err)
	}

	log.Info().Str("auction_id", auctionID.String()).Msg("auction paused")
	return nil
}

// Resume unfreezes the lot clock, re-anchoring the deadline so exactly the
// frozen remainder is left.
func (a *App) Resume(ctx context.Context, auctionID uuid.UUID) error {
	defer a.lockAuction(auctionID)()

	lot, err := a.store.GetLotState(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("lot lookup failed: %w", err)
	}
	if !lot.OnBlock() || !lot.TimerPaused {
		return fmt.Errorf("%w: auction is not paused", ErrInvalidState)
	}

	now := a.clock.Now().UTC()
	endsAt := now.Add(Remaining(lot, now))
	err = a.store.ResumeLot(ctx, ResumeLotParams{
		AuctionID: auctionID,
		Version:   lot.Version,
		EndsAt:    endsAt,
		Events: []EventParams{{
			Type:    models.EventTypeAuctionResumed,
			Message: "Auction resumed",
		}},
	})
	if err != nil {
		if errors.Is(err, ErrStaleLot) {
			return fmt.Errorf("%w: lot changed concurrently", ErrInvalidState)
		}
		return fmt.Errorf("failed to resume lot: %w", err)
	}
	a.nudge()

	log.Info().
		Str("auction_id", auctionID.String()).
		Time("ends_at", endsAt).
		Msg("auction resumed")
	return nil
}

// SettleOutcome is the auctioneer's verdict on the current lot.
type SettleOutcome string

const (
	SettleSold   SettleOutcome = "sold"
	SettlePassed SettleOutcome = "passed"
)

// Settle closes the current lot by hand. Selling requires a leading bidder;
// passing returns the player to the pool for a later round.
func (a *App) Settle(ctx context.Context, auctionID uuid.UUID, outcome SettleOutcome) error {
	defer a.lockAuction(auctionID)()

	lot, err := a.store.GetLotState(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("lot lookup failed: %w", err)
	}
	if !lot.OnBlock() {
		return fmt.Errorf("%w: no player on the block", ErrInvalidState)
	}

	switch outcome {
	case SettleSold:
		return a.settleSold(ctx, lot)
	case SettlePassed:
		return a.settlePassed(ctx, lot)
	default:
		return fmt.Errorf("%w: unknown settle outcome %q", ErrInvalidState, outcome)
	}
}

// SettleExpired settles the lot if and only if its clock has run out. Safe
// to call repeatedly and from multiple schedulers: an already-settled lot is
// a no-op.
func (a *App) SettleExpired(ctx context.Context, auctionID uuid.UUID) error {
	defer a.lockAuction(auctionID)()

	lot, err := a.store.GetLotState(ctx, auctionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lot lookup failed: %w", err)
	}
	if !Expired(lot, a.clock.Now().UTC()) {
		return nil
	}

	if lot.CurrentBidderTeamID != nil {
		err = a.settleSold(ctx, lot)
	} else {
		err = a.settlePassed(ctx, lot)
	}
	if errors.Is(err, ErrLotClosed) {
		return nil
	}
	return err
}

func (a *App) settleSold(ctx context.Context, lot *models.LotState) error {
	if lot.CurrentBidderTeamID == nil {
		return fmt.Errorf("%w: cannot sell without a leading bidder", ErrInvalidState)
	}
	price := *lot.CurrentBid

	player, err := a.store.GetPlayer(ctx, *lot.CurrentPlayerID)
	if err != nil {
		return fmt.Errorf("player lookup failed: %w", err)
	}
	team, err := a.store.GetTeam(ctx, *lot.CurrentBidderTeamID)
	if err != nil {
		return fmt.Errorf("team lookup failed: %w", err)
	}

	updated, err := ApplySale(*team, price)
	if err != nil {
		return fmt.Errorf("ledger update failed: %w", err)
	}

	err = a.store.CloseLotSold(ctx, CloseLotSoldParams{
		AuctionID:           lot.AuctionID,
		Version:             lot.Version,
		PlayerID:            player.ID,
		TeamID:              team.ID,
		FinalPrice:          price,
		TeamBudgetRemaining: updated.BudgetRemaining,
		TeamPlayersNeeded:   updated.PlayersNeeded,
		Events: []EventParams{{
			Type:    models.EventTypeSold,
			Message: fmt.Sprintf("%s sold to %s for %d points", player.Name, team.Name, price),
			Metadata: eventMeta(events.SoldPayload{
				PlayerID:   player.ID.String(),
				PlayerName: player.Name,
				TeamID:     team.ID.String(),
				TeamName:   team.Name,
				Price:      price,
			}),
		}},
	})
	if err != nil {
		if errors.Is(err, ErrStaleLot) {
			return fmt.Errorf("%w: lot settled concurrently", ErrLotClosed)
		}
		return fmt.Errorf("failed to close lot as sold: %w", err)
	}
	a.nudge()

	log.Info().
		Str("auction_id", lot.AuctionID.String()).
		Str("player", player.Name).
		Str("team", team.Name).
		Int64("price", price).
		Msg("lot sold")
	return nil
}

func (a *App) settlePassed(ctx context.Context, lot *models.LotState) error {
	player, err := a.store.GetPlayer(ctx, *lot.CurrentPlayerID)
	if err != nil {
		return fmt.Errorf("player lookup failed: %w", err)
	}

	err = a.store.CloseLotPassed(ctx, CloseLotPassedParams{
		AuctionID: lot.AuctionID,
		Version:   lot.Version,
		PlayerID:  player.ID,
		Events: []EventParams{{
			Type:    models.EventTypePassed,
			Message: fmt.Sprintf("%s passed (no bids)", player.Name),
			Metadata: eventMeta(events.PassedPayload{
				PlayerID:   player.ID.String(),
				PlayerName: player.Name,
			}),
		}},
	})
	if err != nil {
		if errors.Is(err, ErrStaleLot) {
			return fmt.Errorf("%w: lot settled concurrently", ErrLotClosed)
		}
		return fmt.Errorf("failed to close lot as passed: %w", err)
	}
	a.nudge()

	log.Info().
		Str("auction_id", lot.AuctionID.String()).
		Str("player", player.Name).
		Msg("lot passed")
	return nil
}

// Snapshot is the full read model of one auction, assembled for the state
// endpoint and for clients joining the live feed.
type Snapshot struct {
	Auction          *models.Auction       `json:"auction"`
	Teams            []models.Team         `json:"teams"`
	Players          []models.Player       `json:"players"`
	Lot              *models.LotState      `json:"lot"`
	CurrentPlayer    *models.Player        `json:"current_player,omitempty"`
	RecentBids       []models.Bid          `json:"recent_bids"`
	RecentEvents     []models.AuctionEvent `json:"recent_events"`
	RemainingSeconds int64                 `json:"remaining_seconds"`
	MinimumNextBid   *int64                `json:"minimum_next_bid,omitempty"`
}

// GetState returns a consistent-enough snapshot for display. It reads
// without the auction lock; clients reconcile via the event feed.
func (a *App) GetState(ctx context.Context, auctionID uuid.UUID) (*Snapshot, error) {
	auction, err := a.store.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("auction lookup failed: %w", err)
	}
	teams, err := a.store.ListTeams(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("team list failed: %w", err)
	}
	players, err := a.store.ListPlayers(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("player list failed: %w", err)
	}
	lot, err := a.store.GetLotState(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("lot lookup failed: %w", err)
	}
	bids, err := a.store.ListRecentBids(ctx, auctionID, a.cfg.RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("bid list failed: %w", err)
	}
	evs, err := a.store.ListRecentEvents(ctx, auctionID, a.cfg.RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("event list failed: %w", err)
	}

	snap := &Snapshot{
		Auction:          auction,
		Teams:            teams,
		Players:          players,
		Lot:              lot,
		RecentBids:       bids,
		RecentEvents:     evs,
		RemainingSeconds: int64(Remaining(lot, a.clock.Now().UTC()) / time.Second),
	}
	if lot.OnBlock() {
		for i := range players {
			if players[i].ID == *lot.CurrentPlayerID {
				snap.CurrentPlayer = &players[i]
				min := MinimumNextBid(lot, &players[i])
				snap.MinimumNextBid = &min
				break
			}
		}
	}
	return snap, nil
}

// NextDeadline reports the earliest running lot deadline across auctions,
// nil when nothing is on the clock.
func (a *App) NextDeadline(ctx context.Context) (*time.Time, error) {
	deadline, err := a.store.NextDeadline(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch next deadline: %w", err)
	}
	return deadline, nil
}

// DueForSettle lists auctions whose lot clock has run out.
func (a *App) DueForSettle(ctx context.Context, limit int32) ([]uuid.UUID, error) {
	ids, err := a.store.AuctionsDueForSettle(ctx, a.clock.Now().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due auctions: %w", err)
	}
	return ids, nil
}
