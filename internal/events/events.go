// Package events publishes domain events on NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/michaelcoll/card-collection-price-tracker/internal/metrics"
	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

// SubjectSnapshotCreated is published after a valuation snapshot is stored.
const SubjectSnapshotCreated = "valuation.snapshot.created"

// SnapshotCreated is the payload of SubjectSnapshotCreated.
type SnapshotCreated struct {
	Date  models.Date       `json:"date"`
	User  models.UserID     `json:"user"`
	Total models.PriceGuide `json:"total"`
}

// Publisher sends events to NATS. A nil *Publisher drops every event.
type Publisher struct {
	conn *nats.Conn
}

// Connect opens a NATS connection. An empty url disables publishing and
// returns a nil Publisher.
func Connect(url, token string) (*Publisher, error) {
	if url == "" {
		log.Info("Events: NATS_URL not set, valuation events disabled")
		return nil, nil
	}

	opts := []nats.Option{
		nats.Name("card-collection-price-tracker"),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	log.Infof("Events: connected to NATS at %s", url)
	return NewPublisher(conn), nil
}

// NewPublisher wraps an existing connection.
func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

// SnapshotCreated publishes a SubjectSnapshotCreated event for s.
func (p *Publisher) SnapshotCreated(_ context.Context, s models.ValuationSnapshot) error {
	if p == nil || p.conn == nil {
		return nil
	}

	data, err := json.Marshal(SnapshotCreated{Date: s.Date, User: s.User, Total: s.Total})
	if err != nil {
		return err
	}

	if err := p.conn.Publish(SubjectSnapshotCreated, data); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(SubjectSnapshotCreated, "failed").Inc()
		return fmt.Errorf("failed to publish %s: %w", SubjectSnapshotCreated, err)
	}
	metrics.EventsPublishedTotal.WithLabelValues(SubjectSnapshotCreated, "success").Inc()
	return nil
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		log.Warnf("Events: failed to drain NATS connection: %v", err)
	}
}
