package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"delta-market/backend/internal/challenge"
	"delta-market/backend/internal/order/domain"
	"delta-market/backend/internal/order/service"
)

func pendingOrder(id string) *domain.Order {
	return &domain.Order{
		ID:        id,
		Name:      "Ann",
		Email:     "ann@example.com",
		Product:   "Widget",
		Status:    domain.StatusPending,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestHandleCreateOrder(t *testing.T) {
	t.Parallel()

	validBody := `{"email":"ann@example.com","code":"123456","order":{"name":"Ann","product":"Widget"}}`

	tests := []struct {
		name           string
		body           string
		verifyErr      error
		createErr      error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           validBody,
			expectedStatus: http.StatusOK,
			expectedSubstr: `"orderId":"DM-TEST01"`,
		},
		{
			name:           "invalid json",
			body:           `{"email":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing email",
			body:           `{"code":"123456","order":{"name":"Ann","product":"Widget"}}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeEmailRequired,
		},
		{
			name:           "missing code",
			body:           `{"email":"ann@example.com","order":{"name":"Ann","product":"Widget"}}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeCodeRequired,
		},
		{
			name:           "no challenge open",
			body:           validBody,
			verifyErr:      challenge.ErrChallengeNotFound,
			expectedStatus: http.StatusOK,
			expectedSubstr: codeCodeNotFound,
		},
		{
			name:           "challenge expired",
			body:           validBody,
			verifyErr:      challenge.ErrChallengeExpired,
			expectedStatus: http.StatusOK,
			expectedSubstr: codeCodeExpired,
		},
		{
			name:           "code mismatch",
			body:           validBody,
			verifyErr:      challenge.ErrCodeMismatch,
			expectedStatus: http.StatusOK,
			expectedSubstr: codeCodeMismatch,
		},
		{
			name:           "verify internal error",
			body:           validBody,
			verifyErr:      errTest,
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "invalid order",
			body:           validBody,
			createErr:      domain.ErrInvalidOrder,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeInvalidOrder,
		},
		{
			name:           "create internal error",
			body:           validBody,
			createErr:      errTest,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			challenges := &stubChallenges{verifyErr: tc.verifyErr}
			orders := &stubOrders{
				createFn: func(ctx context.Context, in service.CreateOrderInput) (*domain.Order, error) {
					if tc.createErr != nil {
						return nil, tc.createErr
					}
					o := pendingOrder("DM-TEST01")
					o.Name = in.Name
					o.Email = in.Email
					o.Product = in.Product
					return o, nil
				},
			}
			handler := HandleCreateOrder(challenges, orders, &stubAnnouncer{}, nil, nil)

			req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != tc.expectedStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.expectedStatus, rec.Body.String())
			}
			if tc.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tc.expectedSubstr) {
				t.Errorf("body = %s, want substring %s", rec.Body.String(), tc.expectedSubstr)
			}
		})
	}
}

func TestHandleCreateOrder_AnnouncesToAdmins(t *testing.T) {
	challenges := &stubChallenges{}
	orders := &stubOrders{
		createFn: func(ctx context.Context, in service.CreateOrderInput) (*domain.Order, error) {
			return pendingOrder("DM-TEST01"), nil
		},
	}
	announcer := &stubAnnouncer{}
	handler := HandleCreateOrder(challenges, orders, announcer, []string{"100", "200"}, nil)

	body := `{"email":"ann@example.com","code":"123456","order":{"name":"Ann","product":"Widget"}}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if len(announcer.announced) != 1 || announcer.announced[0] != "DM-TEST01" {
		t.Errorf("announced = %v, want [DM-TEST01]", announcer.announced)
	}
	if len(announcer.chatIDs) != 2 {
		t.Errorf("chatIDs = %v, want both admin chats", announcer.chatIDs)
	}
	if len(challenges.verified) != 1 || challenges.verified[0] != "ann@example.com|123456" {
		t.Errorf("verified = %v, want the submitted email and code", challenges.verified)
	}
}

func TestHandleCompleteOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		method           string
		body             string
		completeErr      error
		alreadyCompleted bool
		expectedStatus   int
		expectedSubstr   string
		expectedReceipts int
	}{
		{
			name:             "success sends receipt",
			method:           http.MethodPost,
			body:             `{"orderId":"DM-TEST01"}`,
			expectedStatus:   http.StatusOK,
			expectedSubstr:   `"success":true`,
			expectedReceipts: 1,
		},
		{
			name:             "already completed skips receipt",
			method:           http.MethodPost,
			body:             `{"orderId":"DM-TEST01"}`,
			alreadyCompleted: true,
			expectedStatus:   http.StatusOK,
			expectedSubstr:   `"alreadyCompleted":true`,
			expectedReceipts: 0,
		},
		{
			name:           "unknown order",
			method:         http.MethodPost,
			body:           `{"orderId":"DM-NOPE00"}`,
			completeErr:    domain.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
			expectedSubstr: codeOrderNotFound,
		},
		{
			name:           "missing order id",
			method:         http.MethodPost,
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeOrderIDRequired,
		},
		{
			name:           "invalid json",
			method:         http.MethodPost,
			body:           `{"orderId":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "method not allowed",
			method:         http.MethodGet,
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name:           "internal error",
			method:         http.MethodPost,
			body:           `{"orderId":"DM-TEST01"}`,
			completeErr:    errTest,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			orders := &stubOrders{
				completeFn: func(ctx context.Context, id string) (service.CompleteResult, error) {
					if tc.completeErr != nil {
						return service.CompleteResult{}, tc.completeErr
					}
					o := pendingOrder(id)
					o.Status = domain.StatusCompleted
					return service.CompleteResult{Order: o, AlreadyCompleted: tc.alreadyCompleted}, nil
				},
			}
			receipts := &stubReceipts{}
			handler := HandleCompleteOrder(orders, receipts, nil)

			req := httptest.NewRequest(tc.method, "/orders/complete", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != tc.expectedStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.expectedStatus, rec.Body.String())
			}
			if tc.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tc.expectedSubstr) {
				t.Errorf("body = %s, want substring %s", rec.Body.String(), tc.expectedSubstr)
			}
			if len(receipts.receipts) != tc.expectedReceipts {
				t.Errorf("receipts = %v, want %d dispatches", receipts.receipts, tc.expectedReceipts)
			}
		})
	}
}

func TestHandleCompleteOrder_ReceiptFailureStillSucceeds(t *testing.T) {
	orders := &stubOrders{
		completeFn: func(ctx context.Context, id string) (service.CompleteResult, error) {
			return service.CompleteResult{Order: pendingOrder(id)}, nil
		},
	}
	receipts := &stubReceipts{err: errTest}
	handler := HandleCompleteOrder(orders, receipts, nil)

	req := httptest.NewRequest(http.MethodPost, "/orders/complete", strings.NewReader(`{"orderId":"DM-TEST01"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 even when the receipt fails", rec.Code)
	}
}

func TestHandleCompleteOrder_ReceiptSurvivesAbandonedRequest(t *testing.T) {
	orders := &stubOrders{
		completeFn: func(ctx context.Context, id string) (service.CompleteResult, error) {
			return service.CompleteResult{Order: pendingOrder(id)}, nil
		},
	}
	receipts := &stubReceipts{}
	handler := HandleCompleteOrder(orders, receipts, nil)

	// The client disconnects before the receipt goes out. The order is
	// already completed and a retry is absorbed by the already-completed
	// guard, so the delivery must not inherit the cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/orders/complete", strings.NewReader(`{"orderId":"DM-TEST01"}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if len(receipts.receipts) != 1 {
		t.Fatalf("receipts = %v, want one dispatch", receipts.receipts)
	}
	if receipts.ctxErrs[0] != nil {
		t.Errorf("receipt context error = %v, want none after the request was abandoned", receipts.ctxErrs[0])
	}
}

func TestHandleCreateOrder_ValidationFailureKeepsChallenge(t *testing.T) {
	challenges := &stubChallenges{}
	orders := &stubOrders{
		createFn: func(ctx context.Context, in service.CreateOrderInput) (*domain.Order, error) {
			t.Error("Create called for an invalid order form")
			return nil, domain.ErrInvalidOrder
		},
	}
	handler := HandleCreateOrder(challenges, orders, &stubAnnouncer{}, nil, nil)

	// Product is missing: the buyer gets a 400 but keeps the open
	// challenge, so fixing the form does not need a fresh code.
	body := `{"email":"ann@example.com","code":"123456","order":{"name":"Ann"}}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), codeInvalidOrder) {
		t.Errorf("body = %s, want %s", rec.Body.String(), codeInvalidOrder)
	}
	if len(challenges.verified) != 0 {
		t.Errorf("verified = %v, want the challenge left unconsumed", challenges.verified)
	}
}

func TestHandleDeleteOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		path           string
		deleteErr      error
		expectedStatus int
	}{
		{"success", http.MethodDelete, "/orders/DM-TEST01", nil, http.StatusOK},
		{"unknown order", http.MethodDelete, "/orders/DM-NOPE00", domain.ErrOrderNotFound, http.StatusNotFound},
		{"missing id", http.MethodDelete, "/orders/", nil, http.StatusNotFound},
		{"nested path", http.MethodDelete, "/orders/DM-TEST01/x", nil, http.StatusNotFound},
		{"method not allowed", http.MethodPost, "/orders/DM-TEST01", nil, http.StatusMethodNotAllowed},
		{"internal error", http.MethodDelete, "/orders/DM-TEST01", errTest, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			orders := &stubOrders{
				deleteFn: func(ctx context.Context, id string) error { return tc.deleteErr },
			}
			handler := HandleDeleteOrder(orders, nil)

			req := httptest.NewRequest(tc.method, tc.path, nil)
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != tc.expectedStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tc.expectedStatus, rec.Body.String())
			}
		})
	}
}

func TestHandleListOrders(t *testing.T) {
	orders := &stubOrders{
		listFn: func(ctx context.Context) ([]*domain.Order, error) {
			return []*domain.Order{pendingOrder("DM-TEST01"), pendingOrder("DM-TEST02")}, nil
		},
	}
	handler := HandleListOrders(orders)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "DM-TEST01") || !strings.Contains(body, "DM-TEST02") {
		t.Errorf("body = %s, want both orders", body)
	}
}

func TestHandleListOrders_EmptyListIsArray(t *testing.T) {
	orders := &stubOrders{
		listFn: func(ctx context.Context) ([]*domain.Order, error) { return nil, nil },
	}
	handler := HandleListOrders(orders)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %s, want empty JSON array", got)
	}
}
