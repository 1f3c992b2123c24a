package repository

import (
	"context"
	"errors"

	"github.com/zvMateo/Maikekai-surf/internal/domain"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrBookingNotFound = errors.New("booking not found")

	// ErrDuplicateSession means a record for this checkout session already
	// exists. Gateway redeliveries converge on it instead of duplicating.
	ErrDuplicateSession = errors.New("record already exists for checkout session")
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *domain.Booking) error
	GetBookingBySessionID(ctx context.Context, sessionID string) (*domain.Booking, error)
}
