package http

import (
	"context"
	"net/http"
)

// HandleHealth reports liveness. ping, when non-nil, checks the order store
// (e.g. a database ping); a failed ping reports 503.
func HandleHealth(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("store unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
