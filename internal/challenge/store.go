// Package challenge issues and verifies the per-email one-time code challenges
// that gate order creation.
package challenge

import (
	"context"
	"sync"
	"time"
)

// Challenge is a live one-time code challenge for an email address.
// Only the hash of the code is kept.
type Challenge struct {
	Email     string
	CodeHash  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Store holds at most one live challenge per email. Put overwrites any prior
// challenge for the same email. Get returns expired challenges too; expiry is
// the Manager's concern so NotFound and Expired stay distinguishable.
type Store interface {
	Put(ctx context.Context, c Challenge)
	Get(ctx context.Context, email string) (Challenge, bool)
	Delete(ctx context.Context, email string)
}

// MemoryStore is an in-memory Store implementation. Challenges do not survive
// a restart, matching the single-process deployment this service targets.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]Challenge
}

// NewMemoryStore returns a new in-memory challenge store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]Challenge)}
}

// Put stores c keyed by its email, replacing any existing challenge.
func (s *MemoryStore) Put(ctx context.Context, c Challenge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[c.Email] = c
}

// Get returns the challenge for email if present.
func (s *MemoryStore) Get(ctx context.Context, email string) (Challenge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.m[email]
	return c, ok
}

// Delete removes the challenge for email.
func (s *MemoryStore) Delete(ctx context.Context, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, email)
}
