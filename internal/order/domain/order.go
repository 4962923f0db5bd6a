// Package domain holds the order model and its sentinel errors.
package domain

import (
	"errors"
	"time"
)

// Status is the order lifecycle state. The only legal transition is
// StatusPending → StatusCompleted.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Sentinel errors; transport and the admin bot map them to replies.
var (
	ErrOrderNotFound = errors.New("order not found")
	ErrOrderIDTaken  = errors.New("order id already taken")
	ErrInvalidOrder  = errors.New("order must have a name and a product")
)

// Order is a buyer's purchase request. ID is the short human-typeable
// identifier shown to admins (e.g. "DM-4K7Q2Z").
type Order struct {
	ID          string     `json:"orderId"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Product     string     `json:"product"`
	Plan        string     `json:"plan,omitempty"`
	Price       string     `json:"price,omitempty"`
	Payment     string     `json:"payment,omitempty"`
	Platform    string     `json:"platform,omitempty"`
	Referral    string     `json:"referral,omitempty"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
