package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/outbox"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

type ConsumerConfig struct {
	StreamName    string        `yaml:"stream"`
	ConsumerName  string        `yaml:"consumer"`
	SubjectPrefix string        `yaml:"subject_prefix"`
	AckWait       time.Duration `yaml:"ack_wait"`
	MaxDeliver    int           `yaml:"max_deliver"`
}

func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		StreamName:    "MARKET_EVENTS",
		ConsumerName:  "market-gateway",
		SubjectPrefix: outbox.DefaultSubjectPrefix,
		AckWait:       30 * time.Second,
		MaxDeliver:    5,
	}
}

// Consumer reads the market stream and hands each event to the hub.
type Consumer struct {
	hub *Hub
	js  jetstream.JetStream
	cfg ConsumerConfig
}

func NewConsumer(hub *Hub, nc *nats.Conn, cfg ConsumerConfig) (*Consumer, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}
	return &Consumer{hub: hub, js: js, cfg: cfg}, nil
}

// Run consumes until ctx is cancelled. Live clients only care about new
// events, so a fresh consumer starts at the tail of the stream.
func (c *Consumer) Run(ctx context.Context) error {
	cons, err := c.js.CreateOrUpdateConsumer(ctx, c.cfg.StreamName, jetstream.ConsumerConfig{
		Durable:       c.cfg.ConsumerName,
		Description:   "market websocket gateway",
		FilterSubject: c.cfg.SubjectPrefix + ".>",
		DeliverPolicy: jetstream.DeliverNewPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       c.cfg.AckWait,
		MaxDeliver:    c.cfg.MaxDeliver,
	})
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}

	cc, err := cons.Consume(func(msg jetstream.Msg) {
		if err := c.handle(msg.Subject(), msg.Data()); err != nil {
			log.Error().Err(err).Str("subject", msg.Subject()).Msg("dropping undeliverable market event")
			// malformed messages never become deliverable
			_ = msg.Term()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	log.Info().Str("consumer", c.cfg.ConsumerName).Str("stream", c.cfg.StreamName).Msg("market gateway consuming")

	<-ctx.Done()
	cc.Stop()
	return nil
}

// handle validates an envelope and queues it for the league named in the
// subject.
func (c *Consumer) handle(subject string, data []byte) error {
	leagueID, err := outbox.LeagueFromSubject(c.cfg.SubjectPrefix, subject)
	if err != nil {
		return err
	}
	var env outbox.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.LeagueID != "" {
		if id, err := uuid.Parse(env.LeagueID); err != nil || id != leagueID {
			return fmt.Errorf("envelope league %q does not match subject", env.LeagueID)
		}
	}
	c.hub.Broadcast(leagueID, data)
	return nil
}
