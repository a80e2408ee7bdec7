package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type captureSender struct {
	mu      sync.Mutex
	sent    []Message
	failFor map[string]error
}

func (c *captureSender) Send(_ context.Context, msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failFor[msg.Registration]; err != nil {
		return err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *captureSender) messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.sent...)
}

type NotifySuite struct {
	suite.Suite
	sender     *captureSender
	dispatcher *Dispatcher
}

func TestNotifySuite(t *testing.T) {
	suite.Run(t, new(NotifySuite))
}

func (s *NotifySuite) SetupTest() {
	s.sender = &captureSender{}
	s.dispatcher = NewDispatcher(s.sender, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *NotifySuite) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.dispatcher.Drain(ctx)
}

func (s *NotifySuite) TestSubject() {
	msg := Message{Registration: "12345"}
	s.Equal("Offboarding Log - 12345", msg.Subject())
}

func (s *NotifySuite) TestBodyListsRevokedSystems() {
	msg := Message{
		Registration: "12345",
		Action:       "Offboarding",
		PerformedBy:  "admin",
		Systems:      []string{"Rede", "InTouch"},
		At:           time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC),
	}

	body := msg.Body()
	s.Contains(body, "registration 12345")
	s.Contains(body, "- Rede")
	s.Contains(body, "- InTouch")
	s.Contains(body, "Performed by: admin")
	s.Contains(body, "01/06/2025 14:30:00")
}

func (s *NotifySuite) TestBodyWarnsWhenNothingRevoked() {
	msg := Message{Registration: "12345", Action: "Offboarding"}
	s.Contains(msg.Body(), "no systems were successfully affected")
}

func (s *NotifySuite) TestDispatchDelivers() {
	s.dispatcher.Start(context.Background())
	s.dispatcher.Enqueue(Message{Registration: "12345", Systems: []string{"Rede"}})
	s.drain()

	sent := s.sender.messages()
	s.Require().Len(sent, 1)
	s.Equal("12345", sent[0].Registration)
	s.False(sent[0].At.IsZero(), "enqueue must stamp the time")
}

func (s *NotifySuite) TestDeliveryFailureDoesNotKillWorker() {
	s.sender.failFor = map[string]error{"1": errors.New("smtp refused")}
	s.dispatcher.Start(context.Background())
	s.dispatcher.Enqueue(Message{Registration: "1"})
	s.dispatcher.Enqueue(Message{Registration: "2"})
	s.drain()

	sent := s.sender.messages()
	s.Require().Len(sent, 1)
	s.Equal("2", sent[0].Registration)
}

func (s *NotifySuite) TestDrainIsIdempotent() {
	s.dispatcher.Start(context.Background())
	s.drain()
	s.NotPanics(func() { s.drain() })
}
