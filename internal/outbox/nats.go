package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// NATSConfig holds JetStream publishing settings.
type NATSConfig struct {
	URL           string
	StreamName    string
	SubjectPrefix string // events publish to <prefix>.<event_type>
	MaxReconnects int
	ReconnectWait time.Duration
}

func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		StreamName:    "AUCTION_EVENTS",
		SubjectPrefix: "auction.events",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// NATSPublisher publishes envelopes to JetStream with the event id as the
// message id, so redelivered outbox rows deduplicate on the stream.
type NATSPublisher struct {
	nc  *nats.Conn
	js  jetstream.JetStream
	cfg NATSConfig
}

func NewNATSPublisher(ctx context.Context, cfg NATSConfig) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: []string{cfg.SubjectPrefix + ".>"},
		Storage:  jetstream.FileStorage,
	}); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	return &NATSPublisher{nc: nc, js: js, cfg: cfg}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, ev Event) error {
	subject := fmt.Sprintf("%s.%s", p.cfg.SubjectPrefix, ev.EventType)

	data, err := json.Marshal(Envelope{
		EventID:   ev.ID.String(),
		EventType: ev.EventType,
		AuctionID: ev.AuctionID.String(),
		Timestamp: ev.CreatedAt,
		Payload:   ev.Payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	if _, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(ev.ID.String())); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

func (p *NATSPublisher) Close() {
	p.nc.Close()
}
