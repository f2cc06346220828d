package models

import "time"

const (
	EventCheckoutRequested = "checkout.requested"
	EventBuyNowRequested   = "checkout.buy_now"
)

type CheckoutEvent struct {
	Event     string     `json:"event"`
	OrderID   string     `json:"order_id"`
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	Summary   Summary    `json:"summary"`
	Timestamp time.Time  `json:"timestamp"`
}

// CheckoutResult is returned to the client after a hand-off.
type CheckoutResult struct {
	OrderID   string  `json:"order_id"`
	Replayed  bool    `json:"replayed"`
	Message   string  `json:"message"`
	Summary   Summary `json:"summary"`
	Remaining *Cart   `json:"cart,omitempty"`
}
