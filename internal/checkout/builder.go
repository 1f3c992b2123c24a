package checkout

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/zvMateo/Maikekai-surf/internal/payment"
)

const defaultCurrency = "usd"

var (
	ErrNoItems         = errors.New("no line items to check out")
	ErrInvalidAmount   = errors.New("line item amount must be positive")
	ErrInvalidQuantity = errors.New("line item quantity must be positive")
)

// LineItem is the wire shape accepted from the storefront: a display name
// and a minor-currency-unit amount.
type LineItem struct {
	Name     string `json:"name"`
	Amount   int64  `json:"amount"`
	Quantity int64  `json:"quantity"`
	Currency string `json:"currency,omitempty"`
}

// Builder turns cart contents into a provider checkout session. It
// creates no Order or Booking itself; those wait for the asynchronous
// payment confirmation.
type Builder struct {
	gateway payment.Gateway
	baseURL string
	logger  *zap.Logger
}

func NewBuilder(gateway payment.Gateway, baseURL string, logger *zap.Logger) *Builder {
	return &Builder{
		gateway: gateway,
		baseURL: baseURL,
		logger:  logger,
	}
}

// CreateSession validates the items, builds a one-time payment request
// and returns the provider redirect URL. The gateway is never called for
// invalid input.
func (b *Builder) CreateSession(ctx context.Context, items []LineItem, contactEmail, clientReferenceID string, metadata map[string]string) (string, error) {
	if len(items) == 0 {
		return "", ErrNoItems
	}

	lineItems := make([]payment.LineItem, 0, len(items))
	for _, item := range items {
		if item.Amount <= 0 {
			return "", fmt.Errorf("%w: %q", ErrInvalidAmount, item.Name)
		}
		if item.Quantity <= 0 {
			return "", fmt.Errorf("%w: %q", ErrInvalidQuantity, item.Name)
		}

		currency := item.Currency
		if currency == "" {
			currency = defaultCurrency
		}

		lineItems = append(lineItems, payment.LineItem{
			Name:     item.Name,
			Amount:   item.Amount,
			Quantity: item.Quantity,
			Currency: currency,
		})
	}

	req := &payment.CheckoutRequest{
		LineItems:         lineItems,
		SuccessURL:        b.baseURL + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         b.baseURL + "/cart",
		CustomerEmail:     contactEmail,
		ClientReferenceID: clientReferenceID,
		Metadata:          metadata,
	}

	url, err := b.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		b.logger.Error("gateway rejected checkout session", zap.Error(err))
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	return url, nil
}
