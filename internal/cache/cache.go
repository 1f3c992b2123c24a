package cache

import (
	"context"
	"errors"

	"github.com/zvMateo/Maikekai-surf/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Set(ctx context.Context, sessionID string, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")

// Noop satisfies CartCache for deployments without Redis.
type Noop struct{}

func (Noop) Get(context.Context, string) (*domain.Cart, error) {
	return nil, ErrCacheMiss
}

func (Noop) Set(context.Context, string, *domain.Cart) error { return nil }

func (Noop) Delete(context.Context, string) error { return nil }
