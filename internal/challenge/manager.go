package challenge

import (
	"context"
	"errors"
	"strings"
	"time"

	"delta-market/backend/internal/otp"
)

// Sentinel errors for verification; handlers map them to response reasons.
var (
	ErrChallengeNotFound = errors.New("no challenge for this email")
	ErrChallengeExpired  = errors.New("challenge expired")
	ErrCodeMismatch      = errors.New("code mismatch")
)

// DefaultTTL is the default challenge validity window.
const DefaultTTL = 5 * time.Minute

// Manager issues and verifies one-time code challenges. The code generator and
// clock are injectable for tests.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
	gen   func() (string, error)
}

// NewManager returns a Manager over the given store with the given TTL.
// A non-positive ttl falls back to DefaultTTL.
func NewManager(store Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store: store,
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
		gen:   otp.GenerateCode,
	}
}

// WithNow overrides the clock. For tests.
func (m *Manager) WithNow(now func() time.Time) *Manager {
	m.now = now
	return m
}

// WithGenerator overrides the code generator. For tests.
func (m *Manager) WithGenerator(gen func() (string, error)) *Manager {
	m.gen = gen
	return m
}

// Issue creates a challenge for email, overwriting any live one, and returns
// the plain code for delivery. Delivery itself is the caller's concern and
// must not influence the issuance outcome.
func (m *Manager) Issue(ctx context.Context, email string) (string, error) {
	code, err := m.gen()
	if err != nil {
		return "", err
	}
	now := m.now()
	m.store.Put(ctx, Challenge{
		Email:     normalizeEmail(email),
		CodeHash:  otp.HashCode(code),
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	})
	return code, nil
}

// Verify checks code against the live challenge for email.
// ErrChallengeNotFound when none exists; ErrChallengeExpired when past the TTL
// (the challenge is removed); ErrCodeMismatch when the code is wrong (the
// challenge is kept so the buyer may retry). On success the challenge is
// consumed: a second Verify with the same code reports ErrChallengeNotFound.
func (m *Manager) Verify(ctx context.Context, email, code string) error {
	key := normalizeEmail(email)
	c, ok := m.store.Get(ctx, key)
	if !ok {
		return ErrChallengeNotFound
	}
	if m.now().After(c.ExpiresAt) {
		m.store.Delete(ctx, key)
		return ErrChallengeExpired
	}
	if !otp.CodeEqual(code, c.CodeHash) {
		return ErrCodeMismatch
	}
	m.store.Delete(ctx, key)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
