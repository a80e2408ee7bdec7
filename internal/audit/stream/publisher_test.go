package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"offboard/internal/audit"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (p *fakeProducer) Produce(_ context.Context, r *kgo.Record, promise func(*kgo.Record, error)) {
	p.records = append(p.records, r)
	promise(r, p.err)
}

func (p *fakeProducer) Close() { p.closed = true }

type PublisherSuite struct {
	suite.Suite
	producer *fakeProducer
	pub      *Publisher
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.producer = &fakeProducer{}
	s.pub = newWithProducer(s.producer, "audit-entries", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *PublisherSuite) TestPublishProducesJSON() {
	actorID := uuid.New()
	s.pub.Publish(context.Background(), audit.Entry{
		ID:                 42,
		Action:             audit.ActionDisableDirectoryUser,
		Status:             audit.StatusSuccess,
		Message:            "User disabled",
		ActorID:            &actorID,
		ActorUsername:      "alice",
		TargetRegistration: "12345",
		CreatedAt:          time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})

	s.Require().Len(s.producer.records, 1)
	record := s.producer.records[0]
	s.Equal("audit-entries", record.Topic)
	s.Equal("disable_ad_user", string(record.Key))

	var body map[string]any
	s.Require().NoError(json.Unmarshal(record.Value, &body))
	s.Equal(float64(42), body["id"])
	s.Equal("SUCCESS", body["status"])
	s.Equal(actorID.String(), body["actor_id"])
	s.Equal("12345", body["target_registration"])
	s.Equal("2025-06-01T12:00:00Z", body["created_at"])
}

func (s *PublisherSuite) TestDeliveryFailureDoesNotPropagate() {
	s.producer.err = errors.New("broker unavailable")

	s.NotPanics(func() {
		s.pub.Publish(context.Background(), audit.Entry{
			Action: audit.ActionSystemError,
			Status: audit.StatusFailed,
		})
	})
	s.Len(s.producer.records, 1)
}

func (s *PublisherSuite) TestNilPublisherIsSafe() {
	var pub *Publisher
	s.NotPanics(func() {
		pub.Publish(context.Background(), audit.Entry{})
		pub.Close()
	})
}

func (s *PublisherSuite) TestCloseReleasesClient() {
	s.pub.Close()
	s.True(s.producer.closed)
}

func (s *PublisherSuite) TestTopicExistsTolerance() {
	s.True(topicExists(kerr.TopicAlreadyExists))
	s.True(topicExists(fmt.Errorf("create topic: %w", kerr.TopicAlreadyExists)))
	s.False(topicExists(kerr.UnknownTopicOrPartition))
	s.False(topicExists(errors.New("broker unavailable")))
	s.False(topicExists(nil))
}
