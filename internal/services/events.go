package services

import (
	"context"
	"log/slog"

	"cassa/internal/amqp"
	"cassa/internal/core"
	"cassa/internal/metrics"
)

// EventPublisher is the part of the AMQP client the services use.
type EventPublisher interface {
	Publish(ctx context.Context, evt *amqp.Event) error
}

// publishEvent announces a history change. Failures are logged and
// counted; the change is already stored, so the caller never fails on them.
func publishEvent(ctx context.Context, pub EventPublisher, t amqp.EventType, id string, d core.Date) {
	if pub == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping event", "event_type", string(t), "id", id)
		return
	}
	if err := pub.Publish(ctx, amqp.NewEvent(t, id, d)); err != nil {
		metrics.EventsPublished.WithLabelValues(string(t), "failed").Inc()
		slog.ErrorContext(ctx, "Failed to publish event",
			"event_type", string(t),
			"id", id,
			"error", err)
		return
	}
	metrics.EventsPublished.WithLabelValues(string(t), "ok").Inc()
}
