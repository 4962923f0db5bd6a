// Package security issues and validates the bearer tokens that guard the
// admin HTTP endpoints (listing, completion, deletion).
package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, expired, or invalid.
	ErrInvalidToken = errors.New("invalid token")
)

// AdminClaims holds JWT claims for an admin API token.
type AdminClaims struct {
	jwt.RegisteredClaims
}

// TokenProvider issues and validates HS256 admin tokens signed with a shared secret.
type TokenProvider struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewTokenProvider returns a TokenProvider. secret must be non-empty;
// issuer and audience are set on claims and validated.
func NewTokenProvider(secret, issuer, audience string, ttl time.Duration) (*TokenProvider, error) {
	if secret == "" {
		return nil, errors.New("security: admin API secret must be set")
	}
	return &TokenProvider{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}, nil
}

// Issue signs an admin token for the given subject (e.g. an operator name).
// Returns the token string and its expiration time.
func (p *TokenProvider) Issue(subject string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(p.ttl)
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Validate parses and verifies an admin token. Returns ErrInvalidToken for
// any signature, expiry, issuer, or audience failure.
func (p *TokenProvider) Validate(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return p.secret, nil
		},
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
