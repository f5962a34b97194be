// Package settler closes expired lots. One scheduler goroutine sleeps until
// the earliest lot deadline, then fans due auctions out to a worker pool.
// Settlement is idempotent, so multiple instances can run side by side.
package settler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Clock is the subset of clockwork used by the scheduler. In production use
// clockwork.NewRealClock(); tests use a FakeClock.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) clockwork.Timer
}

// AuctionSettler defines what the settler needs from the auction app.
type AuctionSettler interface {
	NextDeadline(ctx context.Context) (*time.Time, error)
	DueForSettle(ctx context.Context, limit int32) ([]uuid.UUID, error)
	SettleExpired(ctx context.Context, auctionID uuid.UUID) error
	Wake() <-chan struct{}
}

// Config tunes the settle scheduler.
type Config struct {
	BatchSize    int32
	NumWorkers   int
	IdlePoll     time.Duration
	ErrorBackoff time.Duration
}

func DefaultConfig() Config {
	return Config{
		BatchSize:    16,
		NumWorkers:   4,
		IdlePoll:     5 * time.Second,
		ErrorBackoff: time.Second,
	}
}

type Settler struct {
	app        AuctionSettler
	clock      Clock
	cfg        Config
	instanceID string

	workCh chan uuid.UUID

	// Track in-flight auctions to prevent duplicate settlement work.
	inFlight   map[uuid.UUID]bool
	inFlightMu sync.Mutex
}

func New(app AuctionSettler, clock Clock, cfg Config) *Settler {
	if cfg.BatchSize <= 0 {
		cfg = DefaultConfig()
	}
	return &Settler{
		app:        app,
		clock:      clock,
		cfg:        cfg,
		instanceID: uuid.New().String()[:8],
		workCh:     make(chan uuid.UUID, cfg.NumWorkers*2),
		inFlight:   make(map[uuid.UUID]bool),
	}
}

// Run loops until ctx is done, sleeping until the next lot deadline and
// dispatching due auctions to the worker pool.
func (s *Settler) Run(ctx context.Context) error {
	log.Info().Str("instance", s.instanceID).Int("workers", s.cfg.NumWorkers).Msg("settler started")

	var wg sync.WaitGroup
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer func() {
		cancelWorkers()
		close(s.workCh)
		wg.Wait()
		log.Info().Str("instance", s.instanceID).Msg("settler shut down")
	}()

	for i := 0; i < s.cfg.NumWorkers; i++ {
		wg.Add(1)
		go s.worker(workerCtx, &wg)
	}

	timer := s.clock.NewTimer(0)
	defer timer.Stop()

	for {
		// Drain any stale wake signal before computing the deadline, so a
		// nudge that arrives after this point is never lost.
		select {
		case <-s.app.Wake():
			log.Debug().Str("instance", s.instanceID).Msg("drained wake channel")
		default:
		}

		deadline, err := s.app.NextDeadline(ctx)
		if err != nil {
			log.Error().Err(err).Str("instance", s.instanceID).Msg("error fetching next deadline")
			timer.Reset(s.cfg.ErrorBackoff)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				return nil
			}
		}

		if deadline == nil {
			// Nothing on the clock anywhere; idle until woken.
			timer.Reset(s.cfg.IdlePoll)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				return nil
			case <-s.app.Wake():
				log.Debug().Str("instance", s.instanceID).Msg("woken from idle")
				continue
			}
		}

		if wait := deadline.Sub(s.clock.Now()); wait > 0 {
			timer.Reset(wait)
			select {
			case <-timer.Chan():
			case <-ctx.Done():
				return nil
			case <-s.app.Wake():
				// A deadline may have moved; recompute.
				log.Debug().Str("instance", s.instanceID).Msg("woken early")
				continue
			}
		}

		due, err := s.app.DueForSettle(ctx, s.cfg.BatchSize)
		if err != nil {
			log.Error().Err(err).Str("instance", s.instanceID).Msg("error fetching due auctions")
			timer.Reset(s.cfg.ErrorBackoff)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				return nil
			}
		}

		for _, auctionID := range due {
			s.inFlightMu.Lock()
			if s.inFlight[auctionID] {
				s.inFlightMu.Unlock()
				continue
			}
			s.inFlight[auctionID] = true
			s.inFlightMu.Unlock()

			select {
			case <-ctx.Done():
				s.inFlightMu.Lock()
				delete(s.inFlight, auctionID)
				s.inFlightMu.Unlock()
				return nil
			case s.workCh <- auctionID:
			}
		}
	}
}

func (s *Settler) worker(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case auctionID, ok := <-s.workCh:
			if !ok {
				return
			}
			if err := s.app.SettleExpired(ctx, auctionID); err != nil {
				log.Error().
					Err(err).
					Str("auction_id", auctionID.String()).
					Str("instance", s.instanceID).
					Msg("failed to settle expired lot")
			}
			s.inFlightMu.Lock()
			delete(s.inFlight, auctionID)
			s.inFlightMu.Unlock()
		}
	}
}
