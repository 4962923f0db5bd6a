// Package notify fans order events out to admin chats and buyer email.
// Outbound broadcasts are fire-and-forget; receipt and reply sends are awaited
// by their callers.
package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"delta-market/backend/internal/order/domain"
)

// sendTimeout bounds a single detached delivery attempt. Detached sends use
// context.Background() so an abandoned originating request never cancels them.
const sendTimeout = 15 * time.Second

// ChatSender sends a message to one chat recipient.
type ChatSender interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// MailSender delivers one email.
type MailSender interface {
	Send(ctx context.Context, to, subject, text string) error
}

// Notifier is the notification fan-out. Broadcast failures are absorbed here:
// logged, counted on a metric, never returned to callers.
type Notifier struct {
	chat     ChatSender
	mail     MailSender
	failures metric.Int64Counter
}

// NewNotifier returns a Notifier over the given chat and mail senders.
func NewNotifier(chat ChatSender, mail MailSender) *Notifier {
	meter := otel.Meter("delta-market/backend/notify")
	failures, err := meter.Int64Counter("notify.delivery.failures",
		metric.WithDescription("Notification deliveries that failed (by channel)"))
	if err != nil {
		log.Printf("notify: failures counter: %v", err)
	}
	return &Notifier{chat: chat, mail: mail, failures: failures}
}

// Broadcast sends text independently to each chat recipient, fire-and-forget.
// One failed recipient neither blocks nor fails the others, and the caller
// returns without waiting for any delivery.
func (n *Notifier) Broadcast(chatIDs []string, text string) {
	for _, chatID := range chatIDs {
		chatID := chatID
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()
			if err := n.chat.SendMessage(ctx, chatID, text); err != nil {
				n.countFailure(ctx, "telegram")
				log.Printf("notify: broadcast to chat %s failed: %v", chatID, err)
			}
		}()
	}
}

// NotifyAdmin sends one chat message and reports the outcome so the admin
// command processor knows whether its reply was attempted.
func (n *Notifier) NotifyAdmin(ctx context.Context, chatID, text string) error {
	if err := n.chat.SendMessage(ctx, chatID, text); err != nil {
		n.countFailure(ctx, "telegram")
		return err
	}
	return nil
}

// SendCode dispatches the one-time code email without blocking the caller.
// Issuance already succeeded; a delivery failure is observable only here.
func (n *Notifier) SendCode(email, code string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		subject := "Your Delta Market verification code"
		text := fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", code)
		if err := n.mail.Send(ctx, email, subject, text); err != nil {
			n.countFailure(ctx, "mail")
			log.Printf("notify: code delivery to %s failed: %v", email, err)
		}
	}()
}

// SendReceipt emails the buyer that their order is complete. Awaited by the
// completion path; the error is for the caller's log, never the buyer.
func (n *Notifier) SendReceipt(ctx context.Context, o *domain.Order) error {
	subject := fmt.Sprintf("Order %s completed", o.ID)
	text := fmt.Sprintf(
		"Hi %s,\n\nYour order %s (%s) has been completed. Thank you for shopping with Delta Market.",
		o.Name, o.ID, o.Product,
	)
	if err := n.mail.Send(ctx, o.Email, subject, text); err != nil {
		n.countFailure(ctx, "mail")
		return err
	}
	return nil
}

// AnnounceOrder broadcasts the new-order summary to the admin chats.
func (n *Notifier) AnnounceOrder(o *domain.Order, chatIDs []string) {
	n.Broadcast(chatIDs, FormatOrder(o))
}

// FormatOrder renders the admin-facing order summary, one field per line.
func FormatOrder(o *domain.Order) string {
	var b strings.Builder
	b.WriteString("NEW ORDER\n\n")
	fmt.Fprintf(&b, "Order ID: %s\n", o.ID)
	fmt.Fprintf(&b, "Name: %s\n", o.Name)
	fmt.Fprintf(&b, "Product: %s\n", o.Product)
	fmt.Fprintf(&b, "Email: %s\n", orNA(o.Email))
	fmt.Fprintf(&b, "Plan: %s\n", orNA(o.Plan))
	fmt.Fprintf(&b, "Price: %s\n", orNA(o.Price))
	fmt.Fprintf(&b, "Payment: %s\n", orNA(o.Payment))
	fmt.Fprintf(&b, "Platform: %s\n", orNA(o.Platform))
	fmt.Fprintf(&b, "Referral: %s", orNA(o.Referral))
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func (n *Notifier) countFailure(ctx context.Context, channel string) {
	if n.failures == nil {
		return
	}
	n.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("channel", channel)))
}
