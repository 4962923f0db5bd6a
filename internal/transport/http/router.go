package http

import (
	"context"
	"log"
	"net/http"

	"delta-market/backend/internal/telemetry"
)

// ChallengeManager issues and verifies one-time codes.
type ChallengeManager interface {
	CodeIssuer
	CodeVerifier
}

// Deps collects everything the HTTP transport needs from the rest of the app.
type Deps struct {
	Challenges   ChallengeManager
	Orders       OrderService
	Mail         CodeDispatcher
	Announcer    OrderAnnouncer
	Receipts     ReceiptSender
	Webhook      UpdateHandler
	AdminTokens  TokenValidator
	Emitter      telemetry.EventEmitter
	AdminChatIDs []string
	// EchoCode enables dev OTP mode: issued codes are echoed in the response.
	EchoCode bool
	// HealthPing, when non-nil, is checked by /healthz (e.g. db ping).
	HealthPing func(ctx context.Context) error
	// AllowedOrigins is the CORS allow-list; "*" allows any origin.
	AllowedOrigins []string
	Logger         *log.Logger
}

// NewHandler wires the route table and middleware into one http.Handler.
func NewHandler(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", HandleHealth(d.HealthPing))
	mux.HandleFunc("/otp/request", HandleRequestCode(d.Challenges, d.Mail, d.Emitter, d.EchoCode))
	mux.HandleFunc("/telegram/webhook", HandleTelegramWebhook(d.Webhook))

	createOrder := HandleCreateOrder(d.Challenges, d.Orders, d.Announcer, d.AdminChatIDs, d.Emitter)
	listOrders := RequireAdminToken(d.AdminTokens, HandleListOrders(d.Orders))
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			createOrder(w, r)
		case http.MethodGet:
			listOrders.ServeHTTP(w, r)
		default:
			writeFailure(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	})

	mux.Handle("/orders/complete", RequireAdminToken(d.AdminTokens, HandleCompleteOrder(d.Orders, d.Receipts, d.Emitter)))
	mux.Handle("/orders/", RequireAdminToken(d.AdminTokens, HandleDeleteOrder(d.Orders, d.Emitter)))

	var handler http.Handler = mux
	handler = CORS(d.AllowedOrigins, handler)
	handler = RequestLogger(handler, d.Logger)
	return handler
}
