package payment

import (
	"context"
	"errors"
)

// ErrInvalidSignature marks a webhook delivery that failed verification.
// Deliveries that fail this way are rejected, never retried.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// LineItem is the payment-shaped view of a purchase: a display name and a
// minor-unit price, nothing domain-specific.
type LineItem struct {
	Name     string
	Amount   int64
	Quantity int64
	Currency string
}

// CheckoutRequest describes a one-time payment checkout to be created at
// the provider.
type CheckoutRequest struct {
	LineItems         []LineItem
	SuccessURL        string
	CancelURL         string
	CustomerEmail     string
	ClientReferenceID string
	Metadata          map[string]string
}

// Gateway creates provider-hosted checkout sessions and returns the
// redirect URL the purchaser is sent to.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (string, error)
}

// EventKind is the closed set of webhook event shapes this system acts
// on. Anything the provider sends that does not decode into a known kind
// becomes EventIgnored and is acknowledged without action.
type EventKind int

const (
	EventIgnored EventKind = iota
	EventCheckoutCompleted
)

// CheckoutSession is the decoded payload of a completed checkout.
type CheckoutSession struct {
	ID                string
	AmountTotal       int64
	Currency          string
	CustomerEmail     string
	ClientReferenceID string
	Metadata          map[string]string
}

// Event is the tagged variant produced at the trust boundary, after
// signature verification.
type Event struct {
	Kind    EventKind
	Session *CheckoutSession // set only for EventCheckoutCompleted
}

// EventVerifier authenticates a raw webhook delivery and decodes it into
// a known event variant. Verification failure is the only error path.
type EventVerifier interface {
	VerifyEvent(payload []byte, signature string) (*Event, error)
}
