// Package repository defines persistence for orders. The repository is the
// sole owner of the durable record set; no other component touches it.
package repository

import (
	"context"
	"time"

	"delta-market/backend/internal/order/domain"
)

// Repository persists orders. Mutations are durable before they return.
type Repository interface {
	// Create persists a new order. Returns domain.ErrOrderIDTaken when the ID
	// already exists, so callers can regenerate on collision.
	Create(ctx context.Context, o *domain.Order) error
	// GetByID returns the order for id, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// Complete transitions the order to completed at the given time. Returns
	// the stored order and already=true when it was completed before this
	// call; two concurrent Complete calls for the same id serialize, and
	// exactly one of them observes already=false.
	Complete(ctx context.Context, id string, at time.Time) (o *domain.Order, already bool, err error)
	// Delete removes the order permanently. Returns domain.ErrOrderNotFound
	// when no such order exists.
	Delete(ctx context.Context, id string) error
	// List returns all orders. Iteration order is not meaningful.
	List(ctx context.Context) ([]*domain.Order, error)
}
