package auction

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState means the operation is not legal in the lot's current
	// lifecycle state (e.g. bidding with no player on the block).
	ErrInvalidState = errors.New("operation not allowed in current lot state")

	// ErrLotClosed means the lot was settled before the operation landed.
	ErrLotClosed = errors.New("lot already closed")

	// ErrNotFound means a referenced auction, team or player does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStaleLot is returned by the store when the lot_state version check
	// fails, i.e. another writer got there first.
	ErrStaleLot = errors.New("lot state changed concurrently")
)

// RejectReason identifies why the validator refused a bid.
type RejectReason string

const (
	ReasonSelfBid            RejectReason = "self_bid"
	ReasonBelowMinimum       RejectReason = "below_minimum"
	ReasonInsufficientBudget RejectReason = "insufficient_budget"
	ReasonStaleBid           RejectReason = "stale_bid"
)

// BidRejectedError is a hard validator rejection. Minimum carries the lowest
// acceptable amount so callers can re-prompt.
type BidRejectedError struct {
	Reason  RejectReason
	Minimum int64
}

func (e *BidRejectedError) Error() string {
	switch e.Reason {
	case ReasonSelfBid:
		return "bid rejected: team is already the leading bidder"
	case ReasonBelowMinimum:
		return fmt.Sprintf("bid rejected: below minimum next bid of %d", e.Minimum)
	case ReasonInsufficientBudget:
		return "bid rejected: insufficient budget"
	case ReasonStaleBid:
		return "bid rejected: lot changed while bidding, retry with the current minimum"
	default:
		return fmt.Sprintf("bid rejected: %s", e.Reason)
	}
}

// ReserveWarningError is the advisory reserve check: the bid is legal but
// would leave the team below players_needed x reserve_per_player. Callers
// confirm and resubmit rather than treating this as a rejection.
type ReserveWarningError struct {
	RemainingAfter int64
	Required       int64
	PlayersNeeded  int
}

func (e *ReserveWarningError) Error() string {
	return fmt.Sprintf(
		"this bid will leave you with %d points; you need at least %d points for %d more player(s)",
		e.RemainingAfter, e.Required, e.PlayersNeeded,
	)
}
