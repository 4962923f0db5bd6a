package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"delta-market/backend/internal/notify/telegram"
)

// UpdateHandler processes one inbound chat update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, upd telegram.Update)
}

// HandleTelegramWebhook returns the handler for the bot webhook. It always
// acknowledges with 200 so the provider does not retry: a malformed or
// unprocessable update is logged and dropped, never replayed.
func HandleTelegramWebhook(proc UpdateHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeFailure(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var upd telegram.Update
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			log.Printf("http: webhook decode failed: %v", err)
			w.WriteHeader(http.StatusOK)
			return
		}

		// The processor's replies and receipt sends must survive the
		// provider abandoning the request; the update will not be
		// usefully redelivered once the order is completed.
		proc.HandleUpdate(context.WithoutCancel(r.Context()), upd)
		w.WriteHeader(http.StatusOK)
	}
}
