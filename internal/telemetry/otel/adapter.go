package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"delta-market/backend/internal/telemetry"
)

// NewEventEmitter returns an EventEmitter that sends events as OTel log records via the given LoggerProvider.
// If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger("deltamarket.telemetry")}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *telemetry.Event) error { return nil }

type otelEmitter struct {
	logger otellog.Logger
}

// Emit converts the telemetry event to an OTel log record and emits it.
func (e *otelEmitter) Emit(ctx context.Context, event *telemetry.Event) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	if !event.CreatedAt.IsZero() {
		rec.SetTimestamp(event.CreatedAt)
	} else {
		rec.SetTimestamp(time.Now().UTC())
	}
	rec.SetBody(otellog.StringValue(event.EventType))
	if event.ID != "" {
		rec.AddAttributes(otellog.String("event_id", event.ID))
	}
	if event.EventType != "" {
		rec.AddAttributes(otellog.String("event_type", event.EventType))
	}
	if event.OrderID != "" {
		rec.AddAttributes(otellog.String("order_id", event.OrderID))
	}
	if event.Email != "" {
		rec.AddAttributes(otellog.String("email", event.Email))
	}
	if event.Source != "" {
		rec.AddAttributes(otellog.String("source", event.Source))
	}
	e.logger.Emit(ctx, rec)
	return nil
}
