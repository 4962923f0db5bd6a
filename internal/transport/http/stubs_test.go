package http

import (
	"context"
	"errors"
	"sync"

	"delta-market/backend/internal/order/domain"
	"delta-market/backend/internal/order/service"
)

var errTest = errors.New("test failure")

type stubChallenges struct {
	mu        sync.Mutex
	issueCode string
	issueErr  error
	verifyErr error
	issued    []string
	verified  []string // "email|code"
}

func (s *stubChallenges) Issue(ctx context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued = append(s.issued, email)
	return s.issueCode, s.issueErr
}

func (s *stubChallenges) Verify(ctx context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verified = append(s.verified, email+"|"+code)
	return s.verifyErr
}

type stubOrders struct {
	createFn   func(ctx context.Context, in service.CreateOrderInput) (*domain.Order, error)
	completeFn func(ctx context.Context, id string) (service.CompleteResult, error)
	deleteFn   func(ctx context.Context, id string) error
	listFn     func(ctx context.Context) ([]*domain.Order, error)
}

func (s *stubOrders) Create(ctx context.Context, in service.CreateOrderInput) (*domain.Order, error) {
	return s.createFn(ctx, in)
}

func (s *stubOrders) Complete(ctx context.Context, id string) (service.CompleteResult, error) {
	return s.completeFn(ctx, id)
}

func (s *stubOrders) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *stubOrders) List(ctx context.Context) ([]*domain.Order, error) {
	return s.listFn(ctx)
}

type stubMail struct {
	mu    sync.Mutex
	codes []string // "email|code"
}

func (s *stubMail) SendCode(email, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = append(s.codes, email+"|"+code)
}

func (s *stubMail) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes
}

type stubAnnouncer struct {
	mu        sync.Mutex
	announced []string // order IDs
	chatIDs   []string
}

func (s *stubAnnouncer) AnnounceOrder(o *domain.Order, chatIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announced = append(s.announced, o.ID)
	s.chatIDs = chatIDs
}

type stubReceipts struct {
	mu       sync.Mutex
	receipts []string // order IDs
	ctxErrs  []error  // ctx.Err() observed per send
	err      error
}

func (s *stubReceipts) SendReceipt(ctx context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts = append(s.receipts, o.ID)
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	return s.err
}
