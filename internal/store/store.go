// Package store persists the graded component catalog and placed orders.
// Three implementations exist: in-memory for sessions and tests, sqlite
// for single-node deployments, postgres for shared ones.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/roso1102/reboard/internal/model"
)

// ErrNotFound is returned when a component or order id does not exist.
var ErrNotFound = eris.New("store: not found")

// ComponentFilter specifies criteria for listing components. Zero values
// mean no constraint.
type ComponentFilter struct {
	Category string                `json:"category,omitempty"`
	Status   model.ComponentStatus `json:"status,omitempty"`
	Grade    model.Grade           `json:"grade,omitempty"`
	Limit    int                   `json:"limit,omitempty"`
	Offset   int                   `json:"offset,omitempty"`
}

// Store defines the persistence interface for the catalog and orders.
// ListComponents returns rows in insertion order so ranking tie-breaks
// stay stable.
type Store interface {
	// Components
	SaveComponent(ctx context.Context, c *model.Component) error
	GetComponent(ctx context.Context, id string) (*model.Component, error)
	ListComponents(ctx context.Context, filter ComponentFilter) ([]model.Component, error)
	UpdateComponent(ctx context.Context, c *model.Component) error

	// Orders
	SaveOrder(ctx context.Context, o *model.Order) error
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context, limit int) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
