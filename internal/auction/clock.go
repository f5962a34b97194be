package auction

import (
	"time"

	"github.com/paddleup/auctioneer/internal/models"
)

// Lot clock defaults. The deadline is always stored as an absolute
// timestamp; remaining time is recomputed from it on every call, so callers
// may poll at any cadence without drift.
const (
	DefaultLotDuration        = 60 * time.Second
	DefaultAntiSnipeWindow    = 5 * time.Second
	DefaultAntiSnipeExtension = 15 * time.Second
)

// Remaining returns the time left on the lot clock, floored to whole seconds
// and never negative. While paused the clock is frozen at the instant of the
// pause. Zero when no lot is on the block.
func Remaining(lot *models.LotState, now time.Time) time.Duration {
	if lot == nil || lot.TimerEndsAt == nil {
		return 0
	}
	ref := now
	if lot.TimerPaused && lot.TimerPausedAt != nil {
		ref = *lot.TimerPausedAt
	}
	rem := lot.TimerEndsAt.Sub(ref)
	if rem <= 0 {
		return 0
	}
	return rem.Truncate(time.Second)
}

// Expired reports whether an unpaused lot has run out of time.
func Expired(lot *models.LotState, now time.Time) bool {
	return lot != nil && lot.OnBlock() && !lot.TimerPaused && Remaining(lot, now) == 0
}

// ShouldExtend reports whether a bid accepted with this much time left
// triggers the anti-snipe extension. A bid at exactly zero never extends; it
// lost the race against settlement.
func ShouldExtend(remaining, window time.Duration) bool {
	return remaining > 0 && remaining <= window
}
