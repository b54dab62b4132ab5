// Package adapters bridges infrastructure clients to the ports the services
// and workers depend on.
package adapters

import (
	"context"
	"errors"
	"log/slog"

	"fintrack/internal/amqp"
)

// ErrNoBroker is returned by operations that cannot run without AMQP.
var ErrNoBroker = errors.New("amqp broker not configured")

// EventBus adapts an optional amqp.Client to services.EventPublisher and
// worker.DigestPublisher. A nil client drops ledger events, so callers never
// hold a typed-nil *amqp.Client behind an interface.
type EventBus struct {
	client *amqp.Client
}

func NewEventBus(client *amqp.Client) *EventBus {
	return &EventBus{client: client}
}

// Enabled reports whether a broker connection was configured.
func (b *EventBus) Enabled() bool {
	return b != nil && b.client != nil
}

// PublishLedgerEvent implements services.EventPublisher.
func (b *EventBus) PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	if !b.Enabled() {
		slog.DebugContext(ctx, "AMQP disabled, dropping ledger event",
			"user_id", ev.UserID, "month", ev.Month, "action", ev.Action)
		return nil
	}
	return b.client.PublishLedgerEvent(ctx, ev)
}

// PublishDigest implements worker.DigestPublisher.
func (b *EventBus) PublishDigest(ctx context.Context, msg *amqp.InsightDigestMessage) error {
	if !b.Enabled() {
		return ErrNoBroker
	}
	return b.client.PublishDigest(ctx, msg)
}

// ConsumeLedgerEvents blocks delivering ledger events to handler until ctx
// is done.
func (b *EventBus) ConsumeLedgerEvents(ctx context.Context, handler func(context.Context, *amqp.LedgerEvent) error) error {
	if !b.Enabled() {
		return ErrNoBroker
	}
	return b.client.ConsumeLedgerEvents(ctx, handler)
}

// Ready implements a readiness probe. A disabled bus is always ready.
func (b *EventBus) Ready(context.Context) error {
	if !b.Enabled() || b.client.Healthy() {
		return nil
	}
	return errors.New("amqp connection unhealthy")
}

func (b *EventBus) Close() error {
	if !b.Enabled() {
		return nil
	}
	return b.client.Close()
}
