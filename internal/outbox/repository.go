package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Repository reads and advances outbox rows. Rows are written by the auction
// repository inside its transactions; this side only fetches and marks.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FetchByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, auction_id, event_type, payload, created_at
		FROM auction_outbox WHERE id = $1 AND status = 'pending'`, id)

	var ev Event
	err := row.Scan(&ev.ID, &ev.AuctionID, &ev.EventType, &ev.Payload, &ev.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// Already published by the fallback sweep or another relay.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch outbox event: %w", err)
	}
	return &ev, nil
}

func (r *Repository) FetchPending(ctx context.Context, limit int32) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, auction_id, event_type, payload, created_at
		FROM auction_outbox WHERE status = 'pending'
		ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending outbox events: %w", err)
	}
	defer rows.Close()

	var evs []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.AuctionID, &ev.EventType, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		evs = append(evs, ev)
	}
	return evs, rows.Err()
}

func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE auction_outbox SET status = 'sent', published_at = now()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event sent: %w", err)
	}
	return nil
}
