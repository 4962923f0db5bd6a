// Package otp generates and checks the one-time codes buyers use to prove
// control of their email address.
package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

const codeDigits = 6

// GenerateCode returns a 6-digit numeric code string (e.g. "047291").
// Uses crypto/rand for randomness.
func GenerateCode() (string, error) {
	b := make([]byte, codeDigits)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := make([]byte, codeDigits)
	for i := 0; i < codeDigits; i++ {
		s[i] = '0' + (b[i] % 10)
	}
	return string(s), nil
}

// HashCode returns a SHA-256 hash of the code string, hex-encoded.
// Challenges store only the hash, never the plain code.
func HashCode(code string) string {
	h := sha256.Sum256([]byte(code))
	return hex.EncodeToString(h[:])
}

// CodeEqual performs constant-time comparison of the provided code's hash with the stored hash.
func CodeEqual(providedCode, storedHash string) bool {
	providedHash := HashCode(providedCode)
	return subtle.ConstantTimeCompare([]byte(providedHash), []byte(storedHash)) == 1
}
