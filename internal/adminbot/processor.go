// Package adminbot turns inbound admin chat messages into order completions.
// Each update is processed statelessly: authorize the sender, parse the
// command, drive the order register, reply.
package adminbot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"delta-market/backend/internal/notify/telegram"
	"delta-market/backend/internal/order/domain"
	"delta-market/backend/internal/order/service"
	"delta-market/backend/internal/telemetry"
)

const completeCommand = "/done"

// Orders is the slice of the order service the processor needs.
type Orders interface {
	Complete(ctx context.Context, id string) (service.CompleteResult, error)
}

// Replier sends the processor's chat replies and buyer receipts.
type Replier interface {
	NotifyAdmin(ctx context.Context, chatID, text string) error
	SendReceipt(ctx context.Context, o *domain.Order) error
}

// Authorizer decides whether a chat sender may issue admin commands.
type Authorizer interface {
	Allow(ctx context.Context, chatID string) bool
}

// Processor handles inbound webhook updates from the admin chat.
type Processor struct {
	orders   Orders
	notifier Replier
	authz    Authorizer
	emitter  telemetry.EventEmitter
}

// NewProcessor returns a Processor. emitter may be nil.
func NewProcessor(orders Orders, notifier Replier, authz Authorizer, emitter telemetry.EventEmitter) *Processor {
	return &Processor{orders: orders, notifier: notifier, authz: authz, emitter: emitter}
}

// HandleUpdate processes one inbound update. It never returns an error: the
// webhook acknowledges the provider regardless of the internal outcome, so
// every failure path ends in a logged reply attempt instead.
func (p *Processor) HandleUpdate(ctx context.Context, upd telegram.Update) {
	if upd.Message == nil {
		return
	}
	chatID := strconv.FormatInt(upd.Message.Chat.ID, 10)

	// Hard boundary: unauthorized senders get no reply and no side effect,
	// so they cannot learn whether an order exists.
	if !p.authz.Allow(ctx, chatID) {
		log.Printf("adminbot: ignoring message from unauthorized chat %s", chatID)
		return
	}

	fields := strings.Fields(upd.Message.Text)
	if len(fields) == 0 || !isCompleteCommand(fields[0]) {
		return
	}
	if len(fields) != 2 {
		p.reply(ctx, chatID, "Usage: /done <order-id>")
		return
	}
	orderID := fields[1]

	res, err := p.orders.Complete(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			p.reply(ctx, chatID, fmt.Sprintf("Order %s not found.", orderID))
			return
		}
		log.Printf("adminbot: complete %s failed: %v", orderID, err)
		p.reply(ctx, chatID, fmt.Sprintf("Could not complete order %s, see server logs.", orderID))
		return
	}

	if res.AlreadyCompleted {
		p.reply(ctx, chatID, fmt.Sprintf("Order %s is already completed.", orderID))
		return
	}

	telemetry.EmitAsync(p.emitter, telemetry.NewEvent(telemetry.EventOrderCompleted, res.Order.ID, res.Order.Email))

	// The receipt is awaited: the confirmation below must reflect whether it
	// was actually dispatched.
	if err := p.notifier.SendReceipt(ctx, res.Order); err != nil {
		log.Printf("adminbot: receipt for %s failed: %v", res.Order.ID, err)
		p.reply(ctx, chatID, fmt.Sprintf("Order %s completed, but the receipt email to %s failed.", res.Order.ID, res.Order.Email))
		return
	}
	p.reply(ctx, chatID, fmt.Sprintf("Order %s completed. Receipt sent to %s.", res.Order.ID, res.Order.Email))
}

func isCompleteCommand(word string) bool {
	// Telegram appends "@BotName" to commands in group chats.
	cmd, _, _ := strings.Cut(word, "@")
	return cmd == completeCommand
}

func (p *Processor) reply(ctx context.Context, chatID, text string) {
	if err := p.notifier.NotifyAdmin(ctx, chatID, text); err != nil {
		log.Printf("adminbot: reply to chat %s failed: %v", chatID, err)
	}
}
