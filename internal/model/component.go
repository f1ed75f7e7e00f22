package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ComponentStatus tracks where a catalog entry sits in its lifecycle.
type ComponentStatus string

const (
	StatusInternal ComponentStatus = "internal"
	StatusListed   ComponentStatus = "listed"
	StatusSold     ComponentStatus = "sold"
)

// Component is a graded catalog entry. ID is immutable; status and
// quantity change through explicit market actions only. Category, price,
// location and seller are pass-through attributes the engine does not
// interpret.
type Component struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	ModelName    string           `json:"model_name,omitempty"`
	SerialNumber string           `json:"serial_number,omitempty"`
	Category     string           `json:"category"`
	Price        int              `json:"price"`
	Seller       string           `json:"seller,omitempty"`
	SellerType   string           `json:"seller_type,omitempty"`
	Location     string           `json:"location,omitempty"`
	Quantity     int              `json:"quantity"`
	Status       ComponentStatus  `json:"status"`
	Diagnostic   DiagnosticResult `json:"diagnostic"`
	TestedAt     time.Time        `json:"tested_at"`
}

// HasLayer reports whether the component's named layer is usable.
func (c *Component) HasLayer(l LayerName) bool {
	return c.Diagnostic.Layers[l].Working()
}

// Validate checks the mutation-boundary invariants of a component.
func (c *Component) Validate() error {
	var errs []string

	if c.ID == "" {
		errs = append(errs, "id is required")
	}
	if c.Name == "" {
		errs = append(errs, "name is required")
	}
	if c.Quantity < 0 {
		errs = append(errs, fmt.Sprintf("quantity %d below zero", c.Quantity))
	}
	switch c.Status {
	case StatusInternal, StatusListed, StatusSold:
	default:
		errs = append(errs, fmt.Sprintf("unknown status %q", c.Status))
	}
	if err := c.Diagnostic.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return eris.Errorf("model: invalid component: %s", strings.Join(errs, "; "))
	}
	return nil
}

// OrderStatus is an opaque order state string. "confirmed" is assigned at
// placement; later transitions are pass-through.
type OrderStatus string

const (
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
)

// OrderItem is one line of an order.
type OrderItem struct {
	ComponentID string `json:"component_id"`
	Name        string `json:"name"`
	Grade       Grade  `json:"grade"`
	Price       int    `json:"price"`
	Quantity    int    `json:"quantity"`
}

// Order records a placed purchase.
type Order struct {
	ID       string      `json:"id"`
	Items    []OrderItem `json:"items"`
	Buyer    string      `json:"buyer,omitempty"`
	Total    int         `json:"total"`
	Status   OrderStatus `json:"status"`
	PlacedAt time.Time   `json:"placed_at"`
}

// CartItem is a pending purchase line, session-scoped and never stored.
type CartItem struct {
	ComponentID string `json:"component_id"`
	Quantity    int    `json:"quantity"`
}
