// Package publish forwards media request counts to NATS.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/fivetwenty-io/mpx-client/internal/constants"
	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
)

// HeaderAccount carries the MPX account the counts belong to.
const HeaderAccount = "Mpx-Account"

// Static errors for err113 compliance.
var (
	ErrNATSURLRequired = errors.New("NATS URL is required")
	ErrNoConnection    = errors.New("publisher has no connection")
)

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	PublishMsg(msg *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// Message is the payload published for every media request entry.
type Message struct {
	Account      string    `json:"account"`
	MediaID      string    `json:"mediaId"`
	RequestCount int       `json:"requestCount"`
	CollectedAt  time.Time `json:"collectedAt"`
}

// Publisher publishes media request counts on one subject.
type Publisher struct {
	conn    Conn
	subject string
	logger  mpx.Logger
	now     func() time.Time
}

// NewPublisher wraps an existing connection. An empty subject selects the
// default subject.
func NewPublisher(conn Conn, subject string, logger mpx.Logger) *Publisher {
	if subject == "" {
		subject = constants.DefaultNATSSubject
	}

	return &Publisher{
		conn:    conn,
		subject: subject,
		logger:  logger,
		now:     time.Now,
	}
}

// Connect dials url and returns a publisher on subject.
func Connect(url, subject string, logger mpx.Logger) (*Publisher, error) {
	if url == "" {
		return nil, ErrNATSURLRequired
	}

	conn, err := nats.Connect(url,
		nats.Name(constants.DefaultUserAgent),
		nats.Timeout(constants.ShortHTTPTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	return NewPublisher(conn, subject, logger), nil
}

// Subject returns the subject messages are published on.
func (p *Publisher) Subject() string {
	return p.subject
}

// Encode builds the NATS message for one entry without sending it.
func (p *Publisher) Encode(account string, entry mpx.MediaRequestEntry) (*nats.Msg, error) {
	data, err := json.Marshal(Message{
		Account:      account,
		MediaID:      entry.MediaID,
		RequestCount: entry.RequestCount,
		CollectedAt:  p.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding media request %s: %w", entry.MediaID, err)
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = data
	msg.Header.Set(HeaderAccount, account)

	return msg, nil
}

// Publish sends one message per entry and flushes. It stops at the first
// failure and reports how many entries were sent.
func (p *Publisher) Publish(ctx context.Context, account string, entries []mpx.MediaRequestEntry) (int, error) {
	if p.conn == nil {
		return 0, ErrNoConnection
	}

	sent := 0

	for _, entry := range entries {
		msg, err := p.Encode(account, entry)
		if err != nil {
			return sent, err
		}

		err = p.conn.PublishMsg(msg)
		if err != nil {
			return sent, fmt.Errorf("publishing to %s: %w", p.subject, err)
		}

		sent++
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, constants.ShortHTTPTimeout)
		defer cancel()
	}

	err := p.conn.FlushWithContext(ctx)
	if err != nil {
		return sent, fmt.Errorf("flushing %s: %w", p.subject, err)
	}

	mpx.Log(p.logger, mpx.LevelInfo, "Published media requests", map[string]interface{}{
		"subject": p.subject,
		"account": account,
		"count":   sent,
	})

	return sent, nil
}

// Close drains the connection.
func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}

	err := p.conn.Drain()
	if err != nil {
		return fmt.Errorf("draining NATS connection: %w", err)
	}

	return nil
}
