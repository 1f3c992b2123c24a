package cart

import (
	"context"
	"errors"

	"github.com/zvMateo/Maikekai-surf/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// Storage defines the interface for durable cart persistence.
// Consumers define this interface, not the MongoDB implementation.
type Storage interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Upsert(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}
