// Package stream mirrors audit entries to a Kafka topic so downstream
// consumers (SIEM, long-term archival) see the same trail the database
// holds. The database remains the query surface; the stream is best-effort.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"offboard/internal/audit"
	"offboard/internal/platform/config"
)

// producer is the seam between the publisher and kgo, so tests can capture
// records without a broker.
type producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Close()
}

// Publisher mirrors audit entries onto one topic. A nil Publisher is valid
// and publishes nothing.
type Publisher struct {
	client producer
	topic  string
	logger *slog.Logger
}

// New connects to the configured brokers and makes sure the topic exists.
// Returns nil when no brokers are configured.
func New(cfg config.KafkaConfig, logger *slog.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}

	if err := ensureTopic(client, cfg.Topic); err != nil {
		client.Close()
		return nil, err
	}

	return &Publisher{client: client, topic: cfg.Topic, logger: logger}, nil
}

// newWithProducer is the test constructor.
func newWithProducer(p producer, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{client: p, topic: topic, logger: logger}
}

func ensureTopic(client *kgo.Client, topic string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, 3, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	for _, res := range resp {
		if res.Err != nil && !topicExists(res.Err) {
			return fmt.Errorf("create audit topic %s: %w", res.Topic, res.Err)
		}
	}
	return nil
}

// topicExists reports whether a create failed only because the topic is
// already there, the normal case on every boot after the first.
func topicExists(err error) bool {
	return errors.Is(err, kerr.TopicAlreadyExists)
}

// payload is the wire shape published per entry.
type payload struct {
	ID                 int64  `json:"id"`
	Action             string `json:"action"`
	Status             string `json:"status"`
	Message            string `json:"message,omitempty"`
	ActorID            string `json:"actor_id,omitempty"`
	ActorUsername      string `json:"actor_username,omitempty"`
	TargetUsername     string `json:"target_username,omitempty"`
	TargetRegistration string `json:"target_registration,omitempty"`
	Resource           string `json:"resource,omitempty"`
	IPAddress          string `json:"ip_address,omitempty"`
	UserAgent          string `json:"user_agent,omitempty"`
	CreatedAt          string `json:"created_at"`
}

// Publish mirrors one entry. Fire-and-forget: delivery failures are logged,
// never surfaced, and never block the caller.
func (p *Publisher) Publish(ctx context.Context, entry audit.Entry) {
	if p == nil {
		return
	}

	body := payload{
		ID:                 entry.ID,
		Action:             string(entry.Action),
		Status:             string(entry.Status),
		Message:            entry.Message,
		ActorUsername:      entry.ActorUsername,
		TargetUsername:     entry.TargetUsername,
		TargetRegistration: entry.TargetRegistration,
		Resource:           entry.Resource,
		IPAddress:          entry.IPAddress,
		UserAgent:          entry.UserAgent,
		CreatedAt:          entry.CreatedAt.Format(time.RFC3339Nano),
	}
	if entry.ActorID != nil {
		body.ActorID = entry.ActorID.String()
	}

	value, err := json.Marshal(body)
	if err != nil {
		p.logger.ErrorContext(ctx, "marshal audit mirror payload", "error", err)
		return
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(entry.Action),
		Value: value,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("audit mirror delivery failed",
				"action", entry.Action,
				"error", err,
			)
		}
	})
}

// Close flushes and releases the underlying client.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.client.Close()
}
