package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/zvMateo/Maikekai-surf/internal/domain"
)

// MemoryStorage keeps each cart as a serialized blob under a single slot
// per session, the same shape the browser-side storage used. It backs
// deployments without a configured MongoDB and the test suite.
type MemoryStorage struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		slots: make(map[string][]byte),
	}
}

func (m *MemoryStorage) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	m.mu.RLock()
	data, ok := m.slots[sessionID]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrCartNotFound
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		// Malformed persisted data starts the session over with an empty
		// cart instead of failing initialization.
		return nil, ErrCartNotFound
	}

	return &cart, nil
}

func (m *MemoryStorage) Upsert(_ context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.slots[cart.SessionID] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.slots[sessionID]; !ok {
		return ErrCartNotFound
	}
	delete(m.slots, sessionID)
	return nil
}

// Corrupt overwrites a session's slot with arbitrary bytes. Test helper.
func (m *MemoryStorage) Corrupt(sessionID string, data []byte) {
	m.mu.Lock()
	m.slots[sessionID] = data
	m.mu.Unlock()
}
