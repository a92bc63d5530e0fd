// Package eventbus publishes domain events to NATS.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/richxcame/currency-exchange/pkg/logger"
	"go.uber.org/zap"
)

// Publisher publishes events to a subject
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// Event is the envelope written to the bus
type Event struct {
	ID            string          `json:"id"`
	Subject       string          `json:"subject"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Time          time.Time       `json:"time"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent wraps data in an Event envelope
func NewEvent(ctx context.Context, source, subject string, data interface{}) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	return &Event{
		ID:            uuid.New().String(),
		Subject:       subject,
		Source:        source,
		CorrelationID: logger.CorrelationIDFromContext(ctx),
		Time:          time.Now().UTC(),
		Data:          payload,
	}, nil
}

// Bus is a NATS backed Publisher
type Bus struct {
	conn   *nats.Conn
	source string
}

// Connect dials NATS and returns a Bus tagging events with source
func Connect(url, source string) (*Bus, error) {
	conn, err := nats.Connect(url,
		nats.Name(source),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	return &Bus{conn: conn, source: source}, nil
}

// Publish wraps data in an Event and publishes it on subject
func (b *Bus) Publish(ctx context.Context, subject string, data interface{}) error {
	event, err := NewEvent(ctx, b.source, subject, data)
	if err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = body
	if event.CorrelationID != "" {
		msg.Header.Set("X-Request-ID", event.CorrelationID)
	}

	if err := b.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}

// Close drains pending messages and closes the connection
func (b *Bus) Close() {
	if b == nil || b.conn == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		logger.Warn("Failed to drain NATS connection", zap.Error(err))
		b.conn.Close()
	}
}

// NopPublisher discards every event
type NopPublisher struct{}

// Publish implements Publisher
func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
