package auction

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/paddleup/auctioneer/internal/models"
	"github.com/paddleup/auctioneer/internal/sqlutil"
)

// Repository implements Store on top of Postgres. Every mutating call runs
// in one transaction so the lot row, the ledger rows, the journal and the
// outbox move together or not at all.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateTeamParams seeds one team row during auction creation.
type CreateTeamParams struct {
	ID            uuid.UUID
	Name          string
	PasswordHash  string
	BudgetTotal   int64
	PlayersNeeded int
}

// CreateAuctionParams creates the auction row, its teams and the empty lot
// record in one transaction.
type CreateAuctionParams struct {
	ID    uuid.UUID
	Name  string
	Teams []CreateTeamParams
}

// CreatePlayerParams registers one player into the pool.
type CreatePlayerParams struct {
	ID        uuid.UUID
	AuctionID uuid.UUID
	Name      string
	BasePrice int64
	Skill     models.PlayerSkill
}

// EventParams is one journal entry to append alongside a state change. The
// repository assigns the id and mirrors the entry into the outbox.
type EventParams struct {
	Type     models.EventType
	Message  string
	Metadata json.RawMessage
}

// OpenLotParams puts a player on the block.
type OpenLotParams struct {
	AuctionID  uuid.UUID
	Version    int64
	PlayerID   uuid.UUID
	OpeningBid int64
	StartedAt  time.Time
	EndsAt     time.Time
	Events     []EventParams
}

// RecordBidParams appends a bid and advances the lot. NewEndsAt is non-nil
// only when the anti-snipe extension fired.
type RecordBidParams struct {
	AuctionID uuid.UUID
	Version   int64
	BidID     uuid.UUID
	PlayerID  uuid.UUID
	TeamID    uuid.UUID
	Amount    int64
	NewEndsAt *time.Time
	Events    []EventParams
}

// PauseLotParams freezes the lot clock at PausedAt.
type PauseLotParams struct {
	AuctionID uuid.UUID
	Version   int64
	PausedAt  time.Time
	Events    []EventParams
}

// ResumeLotParams unfreezes the lot clock with a re-anchored deadline.
type ResumeLotParams struct {
	AuctionID uuid.UUID
	Version   int64
	EndsAt    time.Time
	Events    []EventParams
}

// CloseLotSoldParams settles the lot to the leading bidder: player, team
// ledger and lot row update together.
type CloseLotSoldParams struct {
	AuctionID           uuid.UUID
	Version             int64
	PlayerID            uuid.UUID
	TeamID              uuid.UUID
	FinalPrice          int64
	TeamBudgetRemaining int64
	TeamPlayersNeeded   int
	Events              []EventParams
}

// CloseLotPassedParams settles the lot unsold.
type CloseLotPassedParams struct {
	AuctionID uuid.UUID
	Version   int64
	PlayerID  uuid.UUID
	Events    []EventParams
}

func (r *Repository) CreateAuction(ctx context.Context, params CreateAuctionParams) (*models.Auction, []models.Team, error) {
	var auction *models.Auction
	teams := make([]models.Team, 0, len(params.Teams))

	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			INSERT INTO auctions (id, name, status)
			VALUES ($1, $2, $3)
			RETURNING id, name, status, created_at, updated_at`,
			params.ID, params.Name, models.AuctionStatusSetup,
		)
		a, err := scanAuction(row)
		if err != nil {
			return fmt.Errorf("failed to insert auction: %w", err)
		}
		auction = a

		for _, t := range params.Teams {
			row := tx.QueryRowContext(ctx, `
				INSERT INTO teams (id, auction_id, name, password_hash, budget_total, budget_remaining, players_needed)
				VALUES ($1, $2, $3, $4, $5, $5, $6)
				RETURNING id, auction_id, name, password_hash, budget_total, budget_remaining, players_needed, created_at`,
				t.ID, params.ID, t.Name, t.PasswordHash, t.BudgetTotal, t.PlayersNeeded,
			)
			team, err := scanTeam(row)
			if err != nil {
				return fmt.Errorf("failed to insert team %q: %w", t.Name, err)
			}
			teams = append(teams, *team)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO lot_state (auction_id, version) VALUES ($1, 0)`,
			params.ID,
		); err != nil {
			return fmt.Errorf("failed to insert lot state: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return auction, teams, nil
}

func (r *Repository) GetAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, status, created_at, updated_at
		FROM auctions WHERE id = $1`, id)
	auction, err := scanAuction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: auction %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return auction, nil
}

func (r *Repository) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, auction_id, name, password_hash, budget_total, budget_remaining, players_needed, created_at
		FROM teams WHERE id = $1`, id)
	team, err := scanTeam(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: team %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

func (r *Repository) GetTeamByName(ctx context.Context, auctionID uuid.UUID, name string) (*models.Team, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, auction_id, name, password_hash, budget_total, budget_remaining, players_needed, created_at
		FROM teams WHERE auction_id = $1 AND name = $2`, auctionID, name)
	team, err := scanTeam(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: team %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team by name: %w", err)
	}
	return team, nil
}

func (r *Repository) ListTeams(ctx context.Context, auctionID uuid.UUID) ([]models.Team, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, auction_id, name, password_hash, budget_total, budget_remaining, players_needed, created_at
		FROM teams WHERE auction_id = $1 ORDER BY name`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, *team)
	}
	return teams, rows.Err()
}

func (r *Repository) CreatePlayer(ctx context.Context, params CreatePlayerParams) (*models.Player, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO players (id, auction_id, name, base_price, skill, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, auction_id, name, base_price, skill, status, team_id, final_price, created_at`,
		params.ID, params.AuctionID, params.Name, params.BasePrice, params.Skill, models.PlayerStatusUnsold,
	)
	player, err := scanPlayer(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert player: %w", err)
	}
	return player, nil
}

func (r *Repository) CreatePlayers(ctx context.Context, params []CreatePlayerParams) ([]models.Player, error) {
	players := make([]models.Player, 0, len(params))
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		for _, p := range params {
			row := tx.QueryRowContext(ctx, `
				INSERT INTO players (id, auction_id, name, base_price, skill, status)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id, auction_id, name, base_price, skill, status, team_id, final_price, created_at`,
				p.ID, p.AuctionID, p.Name, p.BasePrice, p.Skill, models.PlayerStatusUnsold,
			)
			player, err := scanPlayer(row)
			if err != nil {
				return fmt.Errorf("failed to insert player %q: %w", p.Name, err)
			}
			players = append(players, *player)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return players, nil
}

func (r *Repository) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, auction_id, name, base_price, skill, status, team_id, final_price, created_at
		FROM players WHERE id = $1`, id)
	player, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: player %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

func (r *Repository) ListPlayers(ctx context.Context, auctionID uuid.UUID) ([]models.Player, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, auction_id, name, base_price, skill, status, team_id, final_price, created_at
		FROM players WHERE auction_id = $1 ORDER BY created_at, name`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, *player)
	}
	return players, rows.Err()
}

func (r *Repository) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: player %s", ErrNotFound, id)
	}
	return nil
}

func (r *Repository) GetLotState(ctx context.Context, auctionID uuid.UUID) (*models.LotState, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT auction_id, current_player_id, current_bid, current_bidder_team_id,
		       timer_started_at, timer_ends_at, timer_paused_at, timer_paused, version, updated_at
		FROM lot_state WHERE auction_id = $1`, auctionID)
	lot, err := scanLotState(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: auction %s", ErrNotFound, auctionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lot state: %w", err)
	}
	return lot, nil
}

func (r *Repository) OpenLot(ctx context.Context, params OpenLotParams) error {
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		if err := casLotUpdate(ctx, tx, `
			UPDATE lot_state
			SET current_player_id = $3, current_bid = $4, current_bidder_team_id = NULL,
			    timer_started_at = $5, timer_ends_at = $6, timer_paused_at = NULL,
			    timer_paused = FALSE, version = version + 1, updated_at = now()
			WHERE auction_id = $1 AND version = $2`,
			params.AuctionID, params.Version, params.PlayerID, params.OpeningBid,
			params.StartedAt, params.EndsAt,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE players SET status = $2 WHERE id = $1`,
			params.PlayerID, models.PlayerStatusOnBlock,
		); err != nil {
			return fmt.Errorf("failed to mark player on block: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE auctions SET status = $2, updated_at = now()
			WHERE id = $1 AND status = $3`,
			params.AuctionID, models.AuctionStatusActive, models.AuctionStatusSetup,
		); err != nil {
			return fmt.Errorf("failed to activate auction: %w", err)
		}
		return insertEvents(ctx, tx, params.AuctionID, params.Events)
	})
}

func (r *Repository) RecordBid(ctx context.Context, params RecordBidParams) error {
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		if err := casLotUpdate(ctx, tx, `
			UPDATE lot_state
			SET current_bid = $3, current_bidder_team_id = $4,
			    timer_ends_at = COALESCE($5, timer_ends_at),
			    version = version + 1, updated_at = now()
			WHERE auction_id = $1 AND version = $2`,
			params.AuctionID, params.Version, params.Amount, params.TeamID,
			nullTime(params.NewEndsAt),
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bids (id, auction_id, player_id, team_id, amount)
			VALUES ($1, $2, $3, $4, $5)`,
			params.BidID, params.AuctionID, params.PlayerID, params.TeamID, params.Amount,
		); err != nil {
			return fmt.Errorf("failed to insert bid: %w", err)
		}
		return insertEvents(ctx, tx, params.AuctionID, params.Events)
	})
}

func (r *Repository) PauseLot(ctx context.Context, params PauseLotParams) error {
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		if err := casLotUpdate(ctx, tx, `
			UPDATE lot_state
			SET timer_paused = TRUE, timer_paused_at = $3,
			    version = version + 1, updated_at = now()
			WHERE auction_id = $1 AND version = $2`,
			params.AuctionID, params.Version, params.PausedAt,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE auctions SET status = $2, updated_at = now() WHERE id = $1`,
			params.AuctionID, models.AuctionStatusPaused,
		); err != nil {
			return fmt.Errorf("failed to pause auction: %w", err)
		}
		return insertEvents(ctx, tx, params.AuctionID, params.Events)
	})
}

func (r *Repository) ResumeLot(ctx context.Context, params ResumeLotParams) error {
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		if err := casLotUpdate(ctx, tx, `
			UPDATE lot_state
			SET timer_paused = FALSE, timer_paused_at = NULL, timer_ends_at = $3,
			    version = version + 1, updated_at = now()
			WHERE auction_id = $1 AND version = $2`,
			params.AuctionID, params.Version, params.EndsAt,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE auctions SET status = $2, updated_at = now() WHERE id = $1`,
			params.AuctionID, models.AuctionStatusActive,
		); err != nil {
			return fmt.Errorf("failed to resume auction: %w", err)
		}
		return insertEvents(ctx, tx, params.AuctionID, params.Events)
	})
}

func (r *Repository) CloseLotSold(ctx context.Context, params CloseLotSoldParams) error {
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		if err := casLotUpdate(ctx, tx, clearLotSQL,
			params.AuctionID, params.Version,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE players SET status = $2, team_id = $3, final_price = $4
			WHERE id = $1`,
			params.PlayerID, models.PlayerStatusSold, params.TeamID, params.FinalPrice,
		); err != nil {
			return fmt.Errorf("failed to mark player sold: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE teams SET budget_remaining = $2, players_needed = $3
			WHERE id = $1`,
			params.TeamID, params.TeamBudgetRemaining, params.TeamPlayersNeeded,
		); err != nil {
			return fmt.Errorf("failed to update team ledger: %w", err)
		}
		return insertEvents(ctx, tx, params.AuctionID, params.Events)
	})
}

func (r *Repository) CloseLotPassed(ctx context.Context, params CloseLotPassedParams) error {
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		if err := casLotUpdate(ctx, tx, clearLotSQL,
			params.AuctionID, params.Version,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE players SET status = $2, team_id = NULL, final_price = NULL
			WHERE id = $1`,
			params.PlayerID, models.PlayerStatusPassed,
		); err != nil {
			return fmt.Errorf("failed to mark player passed: %w", err)
		}
		return insertEvents(ctx, tx, params.AuctionID, params.Events)
	})
}

// clearLotSQL returns the lot row to idle under the version check.
const clearLotSQL = `
	UPDATE lot_state
	SET current_player_id = NULL, current_bid = NULL, current_bidder_team_id = NULL,
	    timer_started_at = NULL, timer_ends_at = NULL, timer_paused_at = NULL,
	    timer_paused = FALSE, version = version + 1, updated_at = now()
	WHERE auction_id = $1 AND version = $2`

func (r *Repository) ListRecentBids(ctx context.Context, auctionID uuid.UUID, limit int32) ([]models.Bid, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, auction_id, player_id, team_id, amount, created_at
		FROM bids WHERE auction_id = $1
		ORDER BY created_at DESC LIMIT $2`, auctionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	defer rows.Close()

	var bids []models.Bid
	for rows.Next() {
		var b models.Bid
		if err := rows.Scan(&b.ID, &b.AuctionID, &b.PlayerID, &b.TeamID, &b.Amount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

func (r *Repository) ListRecentEvents(ctx context.Context, auctionID uuid.UUID, limit int32) ([]models.AuctionEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, auction_id, event_type, message, metadata, created_at
		FROM auction_log WHERE auction_id = $1
		ORDER BY created_at DESC LIMIT $2`, auctionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var evs []models.AuctionEvent
	for rows.Next() {
		var (
			e    models.AuctionEvent
			meta pqtype.NullRawMessage
		)
		if err := rows.Scan(&e.ID, &e.AuctionID, &e.EventType, &e.Message, &meta, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if meta.Valid {
			e.Metadata = json.RawMessage(meta.RawMessage)
		}
		evs = append(evs, e)
	}
	return evs, rows.Err()
}

func (r *Repository) NextDeadline(ctx context.Context) (*time.Time, error) {
	var deadline sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT min(timer_ends_at) FROM lot_state
		WHERE current_player_id IS NOT NULL AND timer_paused = FALSE`,
	).Scan(&deadline)
	if err != nil {
		return nil, fmt.Errorf("failed to query next deadline: %w", err)
	}
	if !deadline.Valid {
		return nil, nil
	}
	t := deadline.Time.UTC()
	return &t, nil
}

func (r *Repository) AuctionsDueForSettle(ctx context.Context, now time.Time, limit int32) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT auction_id FROM lot_state
		WHERE current_player_id IS NOT NULL AND timer_paused = FALSE AND timer_ends_at <= $1
		ORDER BY timer_ends_at LIMIT $2`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due auctions: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan auction id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// casLotUpdate runs a version-guarded lot_state update and converts a missed
// guard into ErrStaleLot.
func casLotUpdate(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update lot state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update lot state: %w", err)
	}
	if n == 0 {
		return ErrStaleLot
	}
	return nil
}

// insertEvents appends journal entries and mirrors each into the outbox
// inside the caller's transaction. The outbox insert fires the NOTIFY
// trigger that wakes the relay.
func insertEvents(ctx context.Context, tx *sql.Tx, auctionID uuid.UUID, evs []EventParams) error {
	for _, ev := range evs {
		eventID := uuid.New()
		meta := pqtype.NullRawMessage{RawMessage: ev.Metadata, Valid: len(ev.Metadata) > 0}

		var createdAt time.Time
		err := tx.QueryRowContext(ctx, `
			INSERT INTO auction_log (id, auction_id, event_type, message, metadata)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at`,
			eventID, auctionID, ev.Type, ev.Message, meta,
		).Scan(&createdAt)
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}

		payload, err := json.Marshal(models.AuctionEvent{
			ID:        eventID,
			AuctionID: auctionID,
			EventType: ev.Type,
			Message:   ev.Message,
			Metadata:  ev.Metadata,
			CreatedAt: createdAt,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal outbox payload: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO auction_outbox (id, auction_id, event_type, payload)
			VALUES ($1, $2, $3, $4)`,
			eventID, auctionID, ev.Type, payload,
		); err != nil {
			return fmt.Errorf("failed to insert outbox row: %w", err)
		}
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuction(row rowScanner) (*models.Auction, error) {
	var a models.Auction
	if err := row.Scan(&a.ID, &a.Name, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanTeam(row rowScanner) (*models.Team, error) {
	var t models.Team
	if err := row.Scan(&t.ID, &t.AuctionID, &t.Name, &t.PasswordHash,
		&t.BudgetTotal, &t.BudgetRemaining, &t.PlayersNeeded, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanPlayer(row rowScanner) (*models.Player, error) {
	var (
		p          models.Player
		teamID     uuid.NullUUID
		finalPrice sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.AuctionID, &p.Name, &p.BasePrice, &p.Skill,
		&p.Status, &teamID, &finalPrice, &p.CreatedAt); err != nil {
		return nil, err
	}
	if teamID.Valid {
		p.TeamID = &teamID.UUID
	}
	if finalPrice.Valid {
		p.FinalPrice = &finalPrice.Int64
	}
	return &p, nil
}

func scanLotState(row rowScanner) (*models.LotState, error) {
	var (
		l         models.LotState
		playerID  uuid.NullUUID
		bid       sql.NullInt64
		bidderID  uuid.NullUUID
		startedAt sql.NullTime
		endsAt    sql.NullTime
		pausedAt  sql.NullTime
	)
	if err := row.Scan(&l.AuctionID, &playerID, &bid, &bidderID,
		&startedAt, &endsAt, &pausedAt, &l.TimerPaused, &l.Version, &l.UpdatedAt); err != nil {
		return nil, err
	}
	if playerID.Valid {
		l.CurrentPlayerID = &playerID.UUID
	}
	if bid.Valid {
		l.CurrentBid = &bid.Int64
	}
	if bidderID.Valid {
		l.CurrentBidderTeamID = &bidderID.UUID
	}
	if startedAt.Valid {
		t := startedAt.Time.UTC()
		l.TimerStartedAt = &t
	}
	if endsAt.Valid {
		t := endsAt.Time.UTC()
		l.TimerEndsAt = &t
	}
	if pausedAt.Valid {
		t := pausedAt.Time.UTC()
		l.TimerPausedAt = &t
	}
	return &l, nil
}
