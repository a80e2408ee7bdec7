// Package notify delivers offboarding summaries by mail. Dispatch is
// asynchronous and best-effort: the caller's response never waits on SMTP,
// and delivery failures are logged, not surfaced.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/wneessen/go-mail"

	"offboard/internal/platform/config"
)

// Message summarizes one completed offboarding run.
type Message struct {
	Registration string
	Action       string
	PerformedBy  string
	Systems      []string
	At           time.Time
}

// Subject is the mail subject line for this message.
func (m Message) Subject() string {
	return "Offboarding Log - " + m.Registration
}

// Body renders the plain-text mail body. An empty revoked list is called
// out explicitly so operators notice runs that achieved nothing.
func (m Message) Body() string {
	var details string
	if len(m.Systems) > 0 {
		items := make([]string, len(m.Systems))
		for i, s := range m.Systems {
			items[i] = "- " + s
		}
		details = "Systems successfully affected:\n" + strings.Join(items, "\n")
	} else {
		details = "Warning: no systems were successfully affected."
	}

	return fmt.Sprintf(
		"The user with registration %s went through the process: (%s).\nPerformed by: %s\n%s\nDate/Time: %s",
		m.Registration,
		m.Action,
		m.PerformedBy,
		details,
		m.At.Format("02/01/2006 15:04:05"),
	)
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers over the configured mail relay.
type SMTPSender struct {
	cfg config.SMTPConfig
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Sender),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("build smtp client: %w", err)
	}

	m := mail.NewMsg()
	if err := m.From(s.cfg.Sender); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(s.cfg.Receiver); err != nil {
		return fmt.Errorf("set receiver: %w", err)
	}
	m.Subject(msg.Subject())
	m.SetBodyString(mail.TypeTextPlain, msg.Body())

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// Dispatcher queues messages for a single background worker.
type Dispatcher struct {
	sender Sender
	logger *slog.Logger

	queue chan Message
	wg    sync.WaitGroup
	once  sync.Once
}

func NewDispatcher(sender Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		logger: logger,
		queue:  make(chan Message, 128),
	}
}

// Start launches the delivery worker.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for msg := range d.queue {
			if err := d.sender.Send(ctx, msg); err != nil {
				d.logger.Error("notification delivery failed",
					"registration", msg.Registration,
					"error", err,
				)
				continue
			}
			d.logger.Info("notification sent", "registration", msg.Registration)
		}
	}()
}

// Enqueue schedules a message without blocking. A full queue drops the
// message with a log line.
func (d *Dispatcher) Enqueue(msg Message) {
	if msg.At.IsZero() {
		msg.At = time.Now()
	}
	select {
	case d.queue <- msg:
	default:
		d.logger.Warn("notification queue full, message dropped",
			"registration", msg.Registration)
	}
}

// Drain stops accepting messages and waits for in-flight deliveries,
// bounded by ctx.
func (d *Dispatcher) Drain(ctx context.Context) {
	d.once.Do(func() { close(d.queue) })

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		d.logger.Warn("notification drain timed out")
	}
}
