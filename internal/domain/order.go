package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPaid OrderStatus = "paid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
)

// Order is created only by the payment confirmation flow, never by the
// client. Amounts are in minor currency units.
type Order struct {
	ID                uuid.UUID
	UserID            string
	TotalAmount       int64
	Currency          string
	Status            OrderStatus
	CheckoutSessionID string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Booking is created in the same confirmation flow as its Order and is
// keyed to the same checkout session.
type Booking struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	UserID            string
	ProductID         string
	VariantID         string
	StartDate         string
	EndDate           string
	Participants      int
	TotalPrice        int64
	Status            BookingStatus
	CheckoutSessionID string
	CreatedAt         time.Time
}
