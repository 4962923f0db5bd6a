// Package http is the HTTP transport for the order intake API: code
// issuance, order submission, admin order management, and the chat webhook.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"delta-market/backend/internal/telemetry"
)

// CodeIssuer is the slice of the challenge manager the code endpoint needs.
type CodeIssuer interface {
	Issue(ctx context.Context, email string) (string, error)
}

// CodeDispatcher delivers an issued code to the buyer's email.
type CodeDispatcher interface {
	SendCode(email, code string)
}

type requestCodeRequest struct {
	Email string `json:"email"`
}

type requestCodeResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
}

// HandleRequestCode returns the handler for issuing a one-time code.
// echoCode enables dev mode: the code is returned in the response body
// instead of relying on email delivery.
func HandleRequestCode(issuer CodeIssuer, mail CodeDispatcher, emitter telemetry.EventEmitter, echoCode bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeFailure(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req requestCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeFailure(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		email := strings.TrimSpace(req.Email)
		if email == "" {
			writeFailure(w, http.StatusBadRequest, codeEmailRequired, "email is required")
			return
		}

		code, err := issuer.Issue(r.Context(), email)
		if err != nil {
			writeFailure(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		telemetry.EmitAsync(emitter, telemetry.NewEvent(telemetry.EventOTPIssued, "", email))

		// Delivery is detached: issuance already succeeded and the client
		// only needs to know a code is on its way.
		mail.SendCode(email, code)

		resp := requestCodeResponse{Success: true}
		if echoCode {
			resp.Code = code
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
