package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeEmailRequired      = "email_required"
	codeCodeRequired       = "code_required"
	codeCodeNotFound       = "code_not_found"
	codeCodeExpired        = "code_expired"
	codeCodeMismatch       = "code_mismatch"
	codeInvalidOrder       = "invalid_order"
	codeOrderIDRequired    = "order_id_required"
	codeOrderNotFound      = "order_not_found"
	codeUnauthorized       = "unauthorized"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type failureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func writeFailure(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(failureResponse{
		Success: false,
		Message: msg,
		Code:    code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"success":false,"message":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
