// Package market implements catalog lifecycle, cart and order placement
// on top of a Store. All mutations go through one mutex so no partial
// update is ever visible.
package market

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/roso1102/reboard/internal/model"
	"github.com/roso1102/reboard/internal/store"
)

// Service is the single mutator of the catalog and the session cart.
type Service struct {
	mu    sync.Mutex
	store store.Store
	cart  []model.CartItem
}

// NewService creates a Service over the given store.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// AddComponent registers a freshly graded component in the catalog.
// Missing ID and timestamp are filled in; listed controls whether it goes
// straight to the marketplace or stays internal.
func (s *Service) AddComponent(ctx context.Context, c model.Component, listed bool) (*model.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.TestedAt.IsZero() {
		c.TestedAt = time.Now().UTC()
	}
	if c.Quantity == 0 {
		c.Quantity = 1
	}
	c.Status = model.StatusInternal
	if listed {
		c.Status = model.StatusListed
	}

	if err := s.store.SaveComponent(ctx, &c); err != nil {
		return nil, eris.Wrap(err, "market: add component")
	}

	zap.L().Info("market: component added",
		zap.String("id", c.ID),
		zap.String("name", c.Name),
		zap.String("grade", string(c.Diagnostic.Grade)),
		zap.Bool("listed", listed),
	)
	return &c, nil
}

// List publishes a component on the marketplace.
func (s *Service) List(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, model.StatusListed)
}

// Unlist takes a component off the marketplace without deleting it.
func (s *Service) Unlist(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, model.StatusInternal)
}

func (s *Service) setStatus(ctx context.Context, id string, status model.ComponentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.GetComponent(ctx, id)
	if err != nil {
		return eris.Wrapf(err, "market: set status %s", id)
	}
	if status == model.StatusListed && c.Quantity < 1 {
		return eris.Errorf("market: component %s has no stock to list", id)
	}
	c.Status = status
	return eris.Wrapf(s.store.UpdateComponent(ctx, c), "market: set status %s", id)
}

// Components lists catalog entries through the store filter.
func (s *Service) Components(ctx context.Context, filter store.ComponentFilter) ([]model.Component, error) {
	return s.store.ListComponents(ctx, filter)
}

// Component fetches one catalog entry.
func (s *Service) Component(ctx context.Context, id string) (*model.Component, error) {
	return s.store.GetComponent(ctx, id)
}

// AddToCart puts quantity units of a listed component in the cart,
// merging with an existing line. The combined quantity may not exceed
// available stock.
func (s *Service) AddToCart(ctx context.Context, componentID string, quantity int) error {
	if quantity < 1 {
		return eris.Errorf("market: quantity %d below one", quantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.GetComponent(ctx, componentID)
	if err != nil {
		return eris.Wrapf(err, "market: add to cart %s", componentID)
	}
	if c.Status != model.StatusListed {
		return eris.Errorf("market: component %s is not listed", componentID)
	}

	inCart := 0
	for _, item := range s.cart {
		if item.ComponentID == componentID {
			inCart = item.Quantity
			break
		}
	}
	if inCart+quantity > c.Quantity {
		return eris.Errorf("market: only %d of %s in stock", c.Quantity, componentID)
	}

	for i, item := range s.cart {
		if item.ComponentID == componentID {
			s.cart[i].Quantity += quantity
			return nil
		}
	}
	s.cart = append(s.cart, model.CartItem{ComponentID: componentID, Quantity: quantity})
	return nil
}

// UpdateCartQuantity sets a cart line's quantity; below one removes the
// line.
func (s *Service) UpdateCartQuantity(ctx context.Context, componentID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		s.removeLine(componentID)
		return nil
	}

	c, err := s.store.GetComponent(ctx, componentID)
	if err != nil {
		return eris.Wrapf(err, "market: update cart %s", componentID)
	}
	if quantity > c.Quantity {
		return eris.Errorf("market: only %d of %s in stock", c.Quantity, componentID)
	}

	for i, item := range s.cart {
		if item.ComponentID == componentID {
			s.cart[i].Quantity = quantity
			return nil
		}
	}
	return eris.Errorf("market: component %s not in cart", componentID)
}

// RemoveFromCart drops a cart line; unknown ids are a no-op.
func (s *Service) RemoveFromCart(componentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLine(componentID)
}

func (s *Service) removeLine(componentID string) {
	for i, item := range s.cart {
		if item.ComponentID == componentID {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			return
		}
	}
}

// ClearCart empties the cart.
func (s *Service) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = nil
}

// Cart returns a copy of the current cart lines.
func (s *Service) Cart() []model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CartItem, len(s.cart))
	copy(out, s.cart)
	return out
}

// CartTotal prices the cart against current catalog prices.
func (s *Service) CartTotal(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, item := range s.cart {
		c, err := s.store.GetComponent(ctx, item.ComponentID)
		if err != nil {
			return 0, eris.Wrapf(err, "market: cart total %s", item.ComponentID)
		}
		total += c.Price * item.Quantity
	}
	return total, nil
}

// PlaceOrder turns the cart into an order. Every line is validated
// before anything is applied, so a rejected order leaves the catalog and
// the cart untouched. Stock hits zero exactly, never below, and a
// sold-out component flips to sold.
func (s *Service) PlaceOrder(ctx context.Context, buyer string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.placeItemsLocked(ctx, buyer, s.cart)
	if err != nil {
		return nil, err
	}
	s.cart = nil
	return order, nil
}

// PlaceOrderItems places an order for explicit lines, bypassing the
// session cart. Used by the HTTP API, where there is no session.
func (s *Service) PlaceOrderItems(ctx context.Context, buyer string, items []model.CartItem) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.placeItemsLocked(ctx, buyer, items)
}

func (s *Service) placeItemsLocked(ctx context.Context, buyer string, items []model.CartItem) (*model.Order, error) {
	if len(items) == 0 {
		return nil, eris.New("market: no items to order")
	}

	// Validation pass: nothing is written until every line checks out.
	components := make(map[string]*model.Component, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, eris.Errorf("market: quantity %d below one for %s", item.Quantity, item.ComponentID)
		}
		if _, dup := components[item.ComponentID]; dup {
			return nil, eris.Errorf("market: duplicate order line for %s", item.ComponentID)
		}
		c, err := s.store.GetComponent(ctx, item.ComponentID)
		if err != nil {
			return nil, eris.Wrapf(err, "market: place order %s", item.ComponentID)
		}
		if c.Status != model.StatusListed {
			return nil, eris.Errorf("market: component %s is not listed", item.ComponentID)
		}
		if item.Quantity > c.Quantity {
			return nil, eris.Errorf("market: only %d of %s in stock", c.Quantity, item.ComponentID)
		}
		components[item.ComponentID] = c
	}

	order := model.Order{
		ID:       uuid.New().String(),
		Buyer:    buyer,
		Status:   model.OrderConfirmed,
		PlacedAt: time.Now().UTC(),
	}

	// Apply pass. A write failure restores the rows already updated so a
	// partial order never persists on the SQL backends.
	applied := make([]model.Component, 0, len(items))
	for _, item := range items {
		c := components[item.ComponentID]
		prev := *c
		c.Quantity -= item.Quantity
		if c.Quantity <= 0 {
			c.Quantity = 0
			c.Status = model.StatusSold
		}
		if err := s.store.UpdateComponent(ctx, c); err != nil {
			s.restoreComponents(ctx, applied)
			return nil, eris.Wrapf(err, "market: place order apply %s", item.ComponentID)
		}
		applied = append(applied, prev)

		order.Items = append(order.Items, model.OrderItem{
			ComponentID: c.ID,
			Name:        c.Name,
			Grade:       c.Diagnostic.Grade,
			Price:       c.Price,
			Quantity:    item.Quantity,
		})
		order.Total += c.Price * item.Quantity
	}

	if err := s.store.SaveOrder(ctx, &order); err != nil {
		s.restoreComponents(ctx, applied)
		return nil, eris.Wrap(err, "market: save order")
	}
	s.cart = nil

	zap.L().Info("market: order placed",
		zap.String("id", order.ID),
		zap.Int("items", len(order.Items)),
		zap.Int("total", order.Total),
	)
	return &order, nil
}

// restoreComponents writes back the pre-order state of components whose
// quantities were already decremented when a later write failed.
func (s *Service) restoreComponents(ctx context.Context, prev []model.Component) {
	for i := range prev {
		if err := s.store.UpdateComponent(ctx, &prev[i]); err != nil {
			zap.L().Error("market: order rollback write failed",
				zap.String("id", prev[i].ID),
				zap.Error(err),
			)
		}
	}
}

// Orders lists placed orders, newest first.
func (s *Service) Orders(ctx context.Context, limit int) ([]model.Order, error) {
	return s.store.ListOrders(ctx, limit)
}

// Order fetches one order.
func (s *Service) Order(ctx context.Context, id string) (*model.Order, error) {
	return s.store.GetOrder(ctx, id)
}

// UpdateOrderStatus transitions an order's status.
func (s *Service) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	switch status {
	case model.OrderConfirmed, model.OrderShipped, model.OrderDelivered:
	default:
		return eris.Errorf("market: unknown order status %q", status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return eris.Wrapf(s.store.UpdateOrderStatus(ctx, id, status), "market: update order %s", id)
}
