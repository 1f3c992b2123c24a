package webhook

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zvMateo/Maikekai-surf/internal/domain"
	"github.com/zvMateo/Maikekai-surf/internal/events"
	"github.com/zvMateo/Maikekai-surf/internal/notify"
	"github.com/zvMateo/Maikekai-surf/internal/payment"
	"github.com/zvMateo/Maikekai-surf/internal/repository"
)

// Metadata keys attached to the checkout session at initiation time.
const (
	metaProductID    = "product_id"
	metaVariantID    = "variant_id"
	metaStartDate    = "start_date"
	metaEndDate      = "end_date"
	metaParticipants = "participants"
)

// EventPublisher is the slice of the events producer the handler uses.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, event *events.BookingConfirmed) error
}

// Handler performs the authoritative state transition for a completed
// payment: verify, write the order, write the booking, notify. Writes
// are keyed on the checkout session so redelivered events converge.
type Handler struct {
	verifier  payment.EventVerifier
	orders    repository.OrderRepository
	bookings  repository.BookingRepository
	notifier  notify.Notifier
	publisher EventPublisher
	logger    *zap.Logger
}

func NewHandler(
	verifier payment.EventVerifier,
	orders repository.OrderRepository,
	bookings repository.BookingRepository,
	notifier notify.Notifier,
	publisher EventPublisher,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		verifier:  verifier,
		orders:    orders,
		bookings:  bookings,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
	}
}

// HandleEvent processes one raw webhook delivery. A returned error
// wrapping payment.ErrInvalidSignature means the delivery was rejected
// outright; any other error means persistence failed and the gateway
// should redeliver.
func (h *Handler) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := h.verifier.VerifyEvent(payload, signature)
	if err != nil {
		return err
	}

	if event.Kind != payment.EventCheckoutCompleted {
		// Verified but irrelevant: acknowledge so the gateway stops
		// redelivering event types we do not act on.
		h.logger.Debug("ignoring webhook event of unhandled kind")
		return nil
	}

	session := event.Session
	order, err := h.writeOrder(ctx, session)
	if err != nil {
		return err
	}

	booking, err := h.writeBooking(ctx, session, order)
	if err != nil {
		return err
	}

	h.sendConfirmation(ctx, session, booking)
	h.publishConfirmed(ctx, session, order, booking)
	return nil
}

func (h *Handler) writeOrder(ctx context.Context, session *payment.CheckoutSession) (*domain.Order, error) {
	currency := session.Currency
	if currency == "" {
		currency = "usd"
	}

	userID := session.ClientReferenceID
	if userID == "" {
		userID = session.CustomerEmail
	}

	order := &domain.Order{
		ID:                uuid.New(),
		UserID:            userID,
		TotalAmount:       session.AmountTotal,
		Currency:          currency,
		Status:            domain.OrderStatusPaid,
		CheckoutSessionID: session.ID,
	}

	err := h.orders.CreateOrder(ctx, order)
	if errors.Is(err, repository.ErrDuplicateSession) {
		// Redelivered event: reuse the order written by an earlier
		// attempt so the booking links to the right row.
		h.logger.Info("order already recorded for session, continuing",
			zap.String("checkout_session_id", session.ID))
		existing, errGet := h.orders.GetOrderBySessionID(ctx, session.ID)
		if errGet != nil {
			return nil, fmt.Errorf("load existing order: %w", errGet)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("write order: %w", err)
	}

	return order, nil
}

// writeBooking persists the booking described by the session metadata.
// Sessions without booking metadata are simple-goods purchases and yield
// no booking.
func (h *Handler) writeBooking(ctx context.Context, session *payment.CheckoutSession, order *domain.Order) (*domain.Booking, error) {
	productID := session.Metadata[metaProductID]
	if productID == "" {
		return nil, nil
	}

	participants := 1
	if raw := session.Metadata[metaParticipants]; raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.logger.Warn("unparseable participants metadata, defaulting to 1",
				zap.String("checkout_session_id", session.ID),
				zap.String("participants", raw))
		} else {
			participants = parsed
		}
	}

	booking := &domain.Booking{
		ID:                uuid.New(),
		OrderID:           order.ID,
		UserID:            order.UserID,
		ProductID:         productID,
		VariantID:         session.Metadata[metaVariantID],
		StartDate:         session.Metadata[metaStartDate],
		EndDate:           session.Metadata[metaEndDate],
		Participants:      participants,
		TotalPrice:        session.AmountTotal,
		Status:            domain.BookingStatusConfirmed,
		CheckoutSessionID: session.ID,
	}

	err := h.bookings.CreateBooking(ctx, booking)
	if errors.Is(err, repository.ErrDuplicateSession) {
		h.logger.Info("booking already recorded for session",
			zap.String("checkout_session_id", session.ID))
		existing, errGet := h.bookings.GetBookingBySessionID(ctx, session.ID)
		if errGet != nil {
			return nil, fmt.Errorf("load existing booking: %w", errGet)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("write booking: %w", err)
	}

	return booking, nil
}

// sendConfirmation is best-effort: the monetary and booking state is
// already durable, a failed email must not fail the delivery.
func (h *Handler) sendConfirmation(ctx context.Context, session *payment.CheckoutSession, booking *domain.Booking) {
	if h.notifier == nil || session.CustomerEmail == "" {
		return
	}

	subject := "Your booking is confirmed"
	body := fmt.Sprintf("Thanks for your purchase! Payment reference: %s.", session.ID)
	if booking != nil {
		body = fmt.Sprintf(
			"Thanks for your purchase! Your booking for %s from %s to %s (%d participant(s)) is confirmed. Payment reference: %s.",
			booking.ProductID, booking.StartDate, booking.EndDate, booking.Participants, session.ID)
	}

	if err := h.notifier.Send(ctx, session.CustomerEmail, subject, body); err != nil {
		h.logger.Warn("confirmation email failed",
			zap.String("checkout_session_id", session.ID),
			zap.Error(err))
	}
}

func (h *Handler) publishConfirmed(ctx context.Context, session *payment.CheckoutSession, order *domain.Order, booking *domain.Booking) {
	if h.publisher == nil {
		return
	}

	event := &events.BookingConfirmed{
		CheckoutSessionID: session.ID,
		OrderID:           order.ID.String(),
		UserID:            order.UserID,
		TotalAmount:       order.TotalAmount,
		Currency:          order.Currency,
		ConfirmedAt:       time.Now(),
	}
	if booking != nil {
		event.BookingID = booking.ID.String()
	}

	if err := h.publisher.PublishBookingConfirmed(ctx, event); err != nil {
		h.logger.Warn("failed to publish booking confirmed event",
			zap.String("checkout_session_id", session.ID),
			zap.Error(err))
	}
}
