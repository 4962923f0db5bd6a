package service

import (
	"crypto/rand"
	"fmt"
)

const (
	orderIDPrefix = "DM-"
	orderIDLength = 6
	idAlphabet    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// newOrderID returns a short human-typeable order ID such as "DM-4K7Q2Z".
// Uniqueness is enforced against the store by the caller, not assumed from
// the random suffix alone.
func newOrderID() (string, error) {
	b := make([]byte, orderIDLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("order id: %w", err)
	}
	s := make([]byte, orderIDLength)
	for i := range b {
		s[i] = idAlphabet[int(b[i])%len(idAlphabet)]
	}
	return orderIDPrefix + string(s), nil
}
