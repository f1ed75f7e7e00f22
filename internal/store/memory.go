package store

import (
	"context"
	"sync"

	"github.com/roso1102/reboard/internal/model"
)

// MemoryStore is the session-scoped in-memory implementation. Insertion
// order is tracked explicitly so listings are deterministic.
type MemoryStore struct {
	mu         sync.RWMutex
	components map[string]model.Component
	compOrder  []string
	orders     map[string]model.Order
	orderIDs   []string
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		components: make(map[string]model.Component),
		orders:     make(map[string]model.Order),
	}
}

func (s *MemoryStore) SaveComponent(ctx context.Context, c *model.Component) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.components[c.ID]; !exists {
		s.compOrder = append(s.compOrder, c.ID)
	}
	s.components[c.ID] = *c
	return nil
}

func (s *MemoryStore) GetComponent(ctx context.Context, id string) (*model.Component, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.components[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) ListComponents(ctx context.Context, filter ComponentFilter) ([]model.Component, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Component
	skipped := 0
	for _, id := range s.compOrder {
		c := s.components[id]
		if !componentMatches(&c, filter) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		out = append(out, c)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateComponent(ctx context.Context, c *model.Component) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.components[c.ID]; !ok {
		return ErrNotFound
	}
	s.components[c.ID] = *c
	return nil
}

func (s *MemoryStore) SaveOrder(ctx context.Context, o *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[o.ID]; !exists {
		s.orderIDs = append(s.orderIDs, o.ID)
	}
	s.orders[o.ID] = *o
	return nil
}

func (s *MemoryStore) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (s *MemoryStore) ListOrders(ctx context.Context, limit int) ([]model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Order
	// Newest first.
	for i := len(s.orderIDs) - 1; i >= 0; i-- {
		out = append(out, s.orders[s.orderIDs[i]])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	s.orders[id] = o
	return nil
}

func (s *MemoryStore) Migrate(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func componentMatches(c *model.Component, f ComponentFilter) bool {
	if f.Category != "" && c.Category != f.Category {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Grade != "" && c.Diagnostic.Grade != f.Grade {
		return false
	}
	return true
}
