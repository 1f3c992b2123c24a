package cart

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/zvMateo/Maikekai-surf/internal/cache"
	"github.com/zvMateo/Maikekai-surf/internal/domain"
)

// Service owns the in-progress cart for one session context at a time.
// It is constructed once and handed a session key per call; there is no
// process-wide cart state.
type Service struct {
	storage Storage
	cache   cache.CartCache
	logger  *zap.Logger
	sfg     singleflight.Group // Prevents cache stampede
}

func NewService(storage Storage, cartCache cache.CartCache, logger *zap.Logger) *Service {
	return &Service{
		storage: storage,
		cache:   cartCache,
		logger:  logger,
	}
}

// Get returns the cart for the session, an empty cart if none was ever
// persisted or the persisted data could not be read back.
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		cached, err := s.cache.Get(ctx, sessionID)
		if err == nil {
			return cached, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cache get error", zap.Error(err))
		}

		cart, errGet := s.storage.Get(ctx, sessionID)
		if errGet != nil && errors.Is(errGet, ErrCartNotFound) {
			return &domain.Cart{
				SessionID: sessionID,
				Items:     nil,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), sessionID, cart); errSet != nil {
				s.logger.Warn("cache set error", zap.Error(errSet))
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// List returns the current lines in insertion order.
func (s *Service) List(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return cart.Items, nil
}

// Add merges the item into an existing matching line or appends a new
// one, then persists the whole cart back to storage.
func (s *Service) Add(ctx context.Context, sessionID string, item domain.CartItem) error {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	item.AddedAt = time.Now()
	cart.AddItem(item)

	if errUpsert := s.storage.Upsert(ctx, cart); errUpsert != nil {
		s.logger.Error("storage upsert error", zap.Error(errUpsert))
		return errUpsert
	}

	s.invalidateCache(sessionID)
	return nil
}

// Remove deletes all lines matching productID and variantID. Removing a
// line that does not exist is a no-op.
func (s *Service) Remove(ctx context.Context, sessionID, productID, variantID string) error {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	cart.RemoveItem(productID, variantID)

	if errUpsert := s.storage.Upsert(ctx, cart); errUpsert != nil {
		s.logger.Error("storage upsert error", zap.Error(errUpsert))
		return errUpsert
	}

	s.invalidateCache(sessionID)
	return nil
}

// Clear empties the cart unconditionally.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	errDelete := s.storage.Delete(ctx, sessionID)
	if errDelete != nil && !errors.Is(errDelete, ErrCartNotFound) {
		s.logger.Error("storage delete error", zap.Error(errDelete))
		return errDelete
	}

	s.invalidateCache(sessionID)
	return nil
}

func (s *Service) invalidateCache(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("cache invalidate error", zap.Error(err))
	}
}
