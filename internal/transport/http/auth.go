package http

import (
	"net/http"
	"strings"

	"delta-market/backend/internal/security"
)

// TokenValidator verifies an admin API bearer token.
type TokenValidator interface {
	Validate(token string) (*security.AdminClaims, error)
}

// RequireAdminToken guards admin endpoints with a bearer token check.
// Requests without a valid token get a 401 and never reach next.
func RequireAdminToken(validator TokenValidator, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeFailure(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}
		if _, err := validator.Validate(token); err != nil {
			writeFailure(w, http.StatusUnauthorized, codeUnauthorized, "invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}
