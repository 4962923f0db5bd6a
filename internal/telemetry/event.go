// Package telemetry emits order-lifecycle events to configured sinks (Kafka,
// OTel logs). Emission is always best-effort; callers log and ignore errors.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the server.
const (
	EventOTPIssued      = "otp_issued"
	EventOrderCreated   = "order_created"
	EventOrderCompleted = "order_completed"
	EventOrderDeleted   = "order_deleted"
)

// Source identifies this service in emitted events.
const Source = "delta-market-backend"

// Event is a single order-lifecycle event.
type Event struct {
	ID        string    `json:"id"`
	EventType string    `json:"eventType"`
	OrderID   string    `json:"orderId,omitempty"`
	Email     string    `json:"email,omitempty"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewEvent builds an event with a fresh ID and the current time.
func NewEvent(eventType, orderID, email string) *Event {
	return &Event{
		ID:        uuid.New().String(),
		EventType: eventType,
		OrderID:   orderID,
		Email:     email,
		Source:    Source,
		CreatedAt: time.Now().UTC(),
	}
}

// EventEmitter emits telemetry events. Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}

// MultiEmitter fans one event out to several emitters. Emit returns the first
// error but still tries every emitter.
type MultiEmitter []EventEmitter

func (m MultiEmitter) Emit(ctx context.Context, event *Event) error {
	var firstErr error
	for _, e := range m {
		if e == nil {
			continue
		}
		if err := e.Emit(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
