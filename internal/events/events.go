package events

import "time"

const Topic = "booking-confirmed"

// BookingConfirmed is published after the webhook has durably written the
// order (and booking, when one applies) for a checkout session.
type BookingConfirmed struct {
	CheckoutSessionID string    `json:"checkout_session_id"`
	OrderID           string    `json:"order_id"`
	BookingID         string    `json:"booking_id,omitempty"`
	UserID            string    `json:"user_id"`
	TotalAmount       int64     `json:"total_amount"`
	Currency          string    `json:"currency"`
	ConfirmedAt       time.Time `json:"confirmed_at"`
}
