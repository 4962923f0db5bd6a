package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"delta-market/backend/internal/challenge"
	"delta-market/backend/internal/order/domain"
	"delta-market/backend/internal/order/service"
	"delta-market/backend/internal/telemetry"
)

// CodeVerifier checks a submitted one-time code against the open challenge.
type CodeVerifier interface {
	Verify(ctx context.Context, email, code string) error
}

// OrderService is the slice of the order service the order endpoints need.
type OrderService interface {
	Create(ctx context.Context, in service.CreateOrderInput) (*domain.Order, error)
	Complete(ctx context.Context, id string) (service.CompleteResult, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Order, error)
}

// OrderAnnouncer fans a new order out to the admin chats.
type OrderAnnouncer interface {
	AnnounceOrder(o *domain.Order, chatIDs []string)
}

// ReceiptSender emails the buyer their completion receipt.
type ReceiptSender interface {
	SendReceipt(ctx context.Context, o *domain.Order) error
}

type createOrderRequest struct {
	Email string           `json:"email"`
	Code  string           `json:"code"`
	Order orderFormRequest `json:"order"`
}

type orderFormRequest struct {
	Name     string `json:"name"`
	Product  string `json:"product"`
	Plan     string `json:"plan"`
	Price    string `json:"price"`
	Payment  string `json:"payment"`
	Platform string `json:"platform"`
	Referral string `json:"referral"`
}

type createOrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
}

// HandleCreateOrder returns the handler for the public order submission
// endpoint. The one-time code is verified (and consumed) before the order is
// registered; a failed verification is a 200 with success=false so the order
// form can surface the reason without treating it as a transport error.
func HandleCreateOrder(verifier CodeVerifier, orders OrderService, announcer OrderAnnouncer, adminChatIDs []string, emitter telemetry.EventEmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeFailure(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		email := strings.TrimSpace(req.Email)
		if email == "" {
			writeFailure(w, http.StatusBadRequest, codeEmailRequired, "email is required")
			return
		}
		if req.Code == "" {
			writeFailure(w, http.StatusBadRequest, codeCodeRequired, "verification code is required")
			return
		}
		// Check the required order fields before Verify: verification
		// consumes the challenge, and a fixable form mistake must not
		// force the buyer to request a fresh code.
		if strings.TrimSpace(req.Order.Name) == "" || strings.TrimSpace(req.Order.Product) == "" {
			writeFailure(w, http.StatusBadRequest, codeInvalidOrder, domain.ErrInvalidOrder.Error())
			return
		}

		if err := verifier.Verify(r.Context(), email, req.Code); err != nil {
			switch {
			case errors.Is(err, challenge.ErrChallengeNotFound):
				writeFailure(w, http.StatusOK, codeCodeNotFound, "no verification code was requested for this email")
			case errors.Is(err, challenge.ErrChallengeExpired):
				writeFailure(w, http.StatusOK, codeCodeExpired, "verification code has expired, request a new one")
			case errors.Is(err, challenge.ErrCodeMismatch):
				writeFailure(w, http.StatusOK, codeCodeMismatch, "verification code is incorrect")
			default:
				writeFailure(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		o, err := orders.Create(r.Context(), service.CreateOrderInput{
			Name:     req.Order.Name,
			Email:    email,
			Product:  req.Order.Product,
			Plan:     req.Order.Plan,
			Price:    req.Order.Price,
			Payment:  req.Order.Payment,
			Platform: req.Order.Platform,
			Referral: req.Order.Referral,
		})
		if err != nil {
			if errors.Is(err, domain.ErrInvalidOrder) {
				writeFailure(w, http.StatusBadRequest, codeInvalidOrder, err.Error())
				return
			}
			log.Printf("http: create order for %s failed: %v", email, err)
			writeFailure(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		telemetry.EmitAsync(emitter, telemetry.NewEvent(telemetry.EventOrderCreated, o.ID, o.Email))
		announcer.AnnounceOrder(o, adminChatIDs)

		writeJSON(w, http.StatusOK, createOrderResponse{Success: true, OrderID: o.ID})
	}
}

type completeOrderRequest struct {
	OrderID string `json:"orderId"`
}

type completeOrderResponse struct {
	Success          bool `json:"success"`
	AlreadyCompleted bool `json:"alreadyCompleted,omitempty"`
}

// HandleCompleteOrder returns the handler for the admin completion endpoint.
// Completing an already-completed order is an idempotent success and does not
// re-send the buyer receipt.
func HandleCompleteOrder(orders OrderService, receipts ReceiptSender, emitter telemetry.EventEmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeFailure(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req completeOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeFailure(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.OrderID == "" {
			writeFailure(w, http.StatusBadRequest, codeOrderIDRequired, "orderId is required")
			return
		}

		res, err := orders.Complete(r.Context(), req.OrderID)
		if err != nil {
			if errors.Is(err, domain.ErrOrderNotFound) {
				writeFailure(w, http.StatusNotFound, codeOrderNotFound, "order not found")
				return
			}
			log.Printf("http: complete order %s failed: %v", req.OrderID, err)
			writeFailure(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		if res.AlreadyCompleted {
			writeJSON(w, http.StatusOK, completeOrderResponse{Success: true, AlreadyCompleted: true})
			return
		}

		telemetry.EmitAsync(emitter, telemetry.NewEvent(telemetry.EventOrderCompleted, res.Order.ID, res.Order.Email))

		// The order is already completed and a retry hits the
		// AlreadyCompleted guard, so this is the receipt's only shot: an
		// abandoned request must not cancel it. The send stays awaited.
		// A failure does not fail the completion; the admin can resend
		// by hand.
		if err := receipts.SendReceipt(context.WithoutCancel(r.Context()), res.Order); err != nil {
			log.Printf("http: receipt for %s failed: %v", res.Order.ID, err)
		}

		writeJSON(w, http.StatusOK, completeOrderResponse{Success: true})
	}
}

type deleteOrderResponse struct {
	Success bool `json:"success"`
}

// HandleDeleteOrder returns the handler for DELETE /orders/{id}.
func HandleDeleteOrder(orders OrderService, emitter telemetry.EventEmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			writeFailure(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		id, ok := parseOrderPath(r.URL.Path)
		if !ok {
			writeFailure(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		if err := orders.Delete(r.Context(), id); err != nil {
			if errors.Is(err, domain.ErrOrderNotFound) {
				writeFailure(w, http.StatusNotFound, codeOrderNotFound, "order not found")
				return
			}
			log.Printf("http: delete order %s failed: %v", id, err)
			writeFailure(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		telemetry.EmitAsync(emitter, telemetry.NewEvent(telemetry.EventOrderDeleted, id, ""))

		writeJSON(w, http.StatusOK, deleteOrderResponse{Success: true})
	}
}

// HandleListOrders returns the handler for the admin order listing.
func HandleListOrders(orders OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := orders.List(r.Context())
		if err != nil {
			log.Printf("http: list orders failed: %v", err)
			writeFailure(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}
		if list == nil {
			list = []*domain.Order{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// parseOrderPath extracts the order ID from /orders/{id}.
func parseOrderPath(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/orders/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
