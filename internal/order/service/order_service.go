// Package service implements the order register: creation, lookup, the
// pending → completed transition, and administrative deletion.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"delta-market/backend/internal/order/domain"
	"delta-market/backend/internal/order/repository"
)

// createAttempts bounds ID regeneration on collision.
const createAttempts = 5

// CreateOrderInput holds the buyer-supplied order fields. Name and Product
// are required; the rest are optional.
type CreateOrderInput struct {
	Name     string
	Email    string
	Product  string
	Plan     string
	Price    string
	Payment  string
	Platform string
	Referral string
}

// CompleteResult is the outcome of Complete. AlreadyCompleted is true when the
// order was completed before this call; callers must not re-dispatch receipt
// side effects in that case.
type CompleteResult struct {
	Order            *domain.Order
	AlreadyCompleted bool
}

// OrderService drives the order lifecycle over a Repository. The clock and ID
// generator are injectable for tests.
type OrderService struct {
	repo  repository.Repository
	now   func() time.Time
	newID func() (string, error)
}

// NewOrderService returns an OrderService over the given repository.
func NewOrderService(repo repository.Repository) *OrderService {
	return &OrderService{
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: newOrderID,
	}
}

// WithNow overrides the clock. For tests.
func (s *OrderService) WithNow(now func() time.Time) *OrderService {
	s.now = now
	return s
}

// WithIDGenerator overrides the order ID generator. For tests.
func (s *OrderService) WithIDGenerator(gen func() (string, error)) *OrderService {
	s.newID = gen
	return s
}

// Create validates the input, generates a fresh unique ID (regenerating on
// collision), and persists a pending order. A persistence failure fails the
// whole call; no order is half-created.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Product) == "" {
		return nil, domain.ErrInvalidOrder
	}

	o := &domain.Order{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Product:   strings.TrimSpace(in.Product),
		Plan:      in.Plan,
		Price:     in.Price,
		Payment:   in.Payment,
		Platform:  in.Platform,
		Referral:  in.Referral,
		Status:    domain.StatusPending,
		CreatedAt: s.now(),
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		id, err := s.newID()
		if err != nil {
			return nil, err
		}
		o.ID = id
		err = s.repo.Create(ctx, o)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, domain.ErrOrderIDTaken) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("order create: exhausted %d id attempts: %w", createAttempts, domain.ErrOrderIDTaken)
}

// Get returns the order for id, or domain.ErrOrderNotFound.
func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

// Complete transitions the order to completed. Completing an already-completed
// order is an idempotent success reported via AlreadyCompleted.
func (s *OrderService) Complete(ctx context.Context, id string) (CompleteResult, error) {
	o, already, err := s.repo.Complete(ctx, id, s.now())
	if err != nil {
		return CompleteResult{}, err
	}
	return CompleteResult{Order: o, AlreadyCompleted: already}, nil
}

// Delete removes the order permanently. Administrative override only.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// List returns all persisted orders.
func (s *OrderService) List(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.List(ctx)
}
