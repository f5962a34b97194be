package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// ListenerConfig tunes the LISTEN/NOTIFY relay.
type ListenerConfig struct {
	DatabaseURL      string        // Postgres DSN for LISTEN/NOTIFY
	NotifyChannel    string        // Channel name to LISTEN on
	FallbackInterval time.Duration // How often to sweep for missed events
	MaxRetries       int
	RetryDelay       time.Duration
	PingInterval     time.Duration
	BatchSize        int32 // Max events to fetch per sweep
}

func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		NotifyChannel:    "auction_outbox_events",
		FallbackInterval: 30 * time.Second,
		MaxRetries:       5,
		RetryDelay:       200 * time.Millisecond,
		PingInterval:     90 * time.Second,
		BatchSize:        100,
	}
}

// Publisher pushes one envelope onto the bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Listener relays outbox rows to the Publisher. Notifications give low
// latency; the fallback sweep guarantees delivery when a notification is
// lost, so overall the relay is at-least-once and consumers dedupe by
// event id.
type Listener struct {
	repo      *Repository
	listener  *pq.Listener
	publisher Publisher
	cfg       ListenerConfig
}

func NewListener(repo *Repository, publisher Publisher, cfg ListenerConfig) (*Listener, error) {
	l := pq.NewListener(
		cfg.DatabaseURL,
		10*time.Second,
		time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("listener event")
			}
		},
	)
	if err := l.Listen(cfg.NotifyChannel); err != nil {
		return nil, fmt.Errorf("failed to listen to channel: %w", err)
	}

	log.Info().
		Str("channel", cfg.NotifyChannel).
		Msg("listening for notifications")

	return &Listener{
		repo:      repo,
		listener:  l,
		publisher: publisher,
		cfg:       cfg,
	}, nil
}

func (l *Listener) Start(ctx context.Context) error {
	log.Info().
		Str("channel", l.cfg.NotifyChannel).
		Dur("ping_interval", l.cfg.PingInterval).
		Dur("fallback_interval", l.cfg.FallbackInterval).
		Msg("relay started")

	pingTicker := time.NewTicker(l.cfg.PingInterval)
	fallbackTicker := time.NewTicker(l.cfg.FallbackInterval)
	defer pingTicker.Stop()
	defer fallbackTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("relay shutting down")
			return l.Stop()
		case note := <-l.listener.Notify:
			if note == nil {
				// nil notification means the connection was lost and pq is
				// reconnecting; the fallback sweep covers the gap.
				continue
			}
			if err := l.handleNotification(ctx, note.Extra); err != nil {
				log.Error().Err(err).Msg("failed to handle notification")
			}
		case <-fallbackTicker.C:
			if err := l.processPending(ctx); err != nil {
				log.Error().Err(err).Msg("failed to process pending events")
			}
		case <-pingTicker.C:
			if err := l.listener.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping listener")
			}
		}
	}
}

func (l *Listener) Stop() error {
	return l.listener.Close()
}

// handleNotification fetches the notified outbox row, publishes it and marks
// it sent.
func (l *Listener) handleNotification(ctx context.Context, extra string) error {
	id, err := uuid.Parse(extra)
	if err != nil {
		return fmt.Errorf("invalid event id in notification: %w", err)
	}

	ev, err := l.repo.FetchByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch outbox event: %w", err)
	}
	if ev == nil {
		return nil
	}
	return l.relay(ctx, *ev)
}

// processPending sweeps rows whose notification never arrived.
func (l *Listener) processPending(ctx context.Context) error {
	pending, err := l.repo.FetchPending(ctx, l.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending outbox events: %w", err)
	}

	for _, ev := range pending {
		if err := l.relay(ctx, ev); err != nil {
			log.Error().Err(err).Str("event_id", ev.ID.String()).Msg("failed to relay event")
		}
	}
	return nil
}

func (l *Listener) relay(ctx context.Context, ev Event) error {
	if err := l.publishWithRetry(ctx, ev); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if err := l.repo.MarkSent(ctx, ev.ID); err != nil {
		return fmt.Errorf("failed to mark event sent: %w", err)
	}
	log.Info().
		Str("event_id", ev.ID.String()).
		Str("event_type", ev.EventType).
		Msg("published event")
	return nil
}

// publishWithRetry attempts to publish with linear backoff.
func (l *Listener) publishWithRetry(ctx context.Context, ev Event) error {
	var lastErr error
	for attempt := 0; attempt <= l.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := l.cfg.RetryDelay * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		if lastErr = l.publisher.Publish(ctx, ev); lastErr == nil {
			return nil
		}
		log.Warn().
			Err(lastErr).
			Int("attempt", attempt+1).
			Str("event_id", ev.ID.String()).
			Msg("publish attempt failed")
	}
	return fmt.Errorf("publish failed after %d attempts: %w", l.cfg.MaxRetries+1, lastErr)
}
