// Package events publishes domain events to NATS. Subscribers are other
// services; nothing in this process consumes them.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	ProjectCreated     = "project.created"
	MilestonePaid      = "milestone.paid"
	BidSubmitted       = "bid.submitted"
	OrderPlaced        = "order.placed"
	OrderStatusChanged = "order.status_changed"
	InvoicePaid        = "invoice.paid"
)

type Publisher interface {
	Publish(kind string, payload any) error
	Status() string
	Close()
}

type envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// NATSPublisher publishes JSON envelopes on <prefix>.<kind>.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("sqb-backend"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, prefix: prefix}, nil
}

func (p *NATSPublisher) Subject(kind string) string {
	if p.prefix == "" {
		return kind
	}
	return p.prefix + "." + kind
}

func (p *NATSPublisher) Publish(kind string, payload any) error {
	data, err := Encode(kind, payload, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.Subject(kind), data); err != nil {
		return fmt.Errorf("publish %s: %w", kind, err)
	}
	return nil
}

func (p *NATSPublisher) Status() string {
	return p.conn.Status().String()
}

// Close drains pending messages before closing the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		slog.Warn("nats drain failed", "error", err)
		p.conn.Close()
	}
}

func Encode(kind string, payload any, at time.Time) ([]byte, error) {
	data, err := json.Marshal(envelope{Type: kind, OccurredAt: at, Data: payload})
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", kind, err)
	}
	return data, nil
}

// Noop is used when NATS_URL is unset.
type Noop struct{}

func (Noop) Publish(string, any) error { return nil }
func (Noop) Status() string            { return "disabled" }
func (Noop) Close()                    {}

// Emit publishes and logs failures. Events are best-effort: a broker outage
// never fails the request that produced the event.
func Emit(p Publisher, kind string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(kind, payload); err != nil {
		slog.Warn("event publish failed", "event", kind, "error", err)
	}
}
