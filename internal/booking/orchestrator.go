package booking

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/zvMateo/Maikekai-surf/internal/availability"
	"github.com/zvMateo/Maikekai-surf/internal/domain"
)

var ErrInvalidItem = errors.New("invalid cart item")

// Checker decides whether a candidate booking is available.
// Consumers define this interface, not the availability package.
type Checker interface {
	Check(ctx context.Context, q availability.Query) bool
}

// CartAdder is the slice of the cart service the orchestrator mutates.
type CartAdder interface {
	Add(ctx context.Context, sessionID string, item domain.CartItem) error
}

// Orchestrator composes the availability check and the cart mutation.
// The cart is never touched before availability is confirmed.
type Orchestrator struct {
	checker Checker
	cart    CartAdder
	logger  *zap.Logger
}

func NewOrchestrator(checker Checker, cart CartAdder, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		checker: checker,
		cart:    cart,
		logger:  logger,
	}
}

// AddBookingToCart returns false when there is no availability for the
// requested range and party size; that is an expected outcome, not an
// error. Errors are reserved for malformed input and cart persistence
// failures.
func (o *Orchestrator) AddBookingToCart(ctx context.Context, sessionID string, item domain.CartItem) (bool, error) {
	if item.ProductID == "" || item.Quantity <= 0 {
		return false, ErrInvalidItem
	}

	query := availability.Query{
		ProductID: item.ProductID,
		StartDate: item.StartDate,
		EndDate:   item.EndDate,
		Persons:   item.Persons,
	}

	if !o.checker.Check(ctx, query) {
		o.logger.Info("booking rejected, no availability",
			zap.String("product_id", item.ProductID),
			zap.String("start_date", item.StartDate),
			zap.String("end_date", item.EndDate),
			zap.Int("persons", item.Persons))
		return false, nil
	}

	if err := o.cart.Add(ctx, sessionID, item); err != nil {
		return false, err
	}

	return true, nil
}
