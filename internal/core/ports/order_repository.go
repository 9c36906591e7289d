// Package ports defines the contracts between the production core and its
// infrastructure: repositories behind a unit of work, read-only master data
// directories, the material meter and the outbound event and metric sinks.
package ports

import (
	"context"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// An order is always stored and loaded together with its full row ledger.
type OrderRepository interface {
	// Add persists a new order aggregate and all of its rows.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists the status and every row of an existing order.
	// Returns errs.ObjectNotFoundError when the order does not exist.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order with its rows ordered by sequence.
	// Returns errs.ObjectNotFoundError when the order does not exist.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// List returns up to limit orders, newest first.
	List(ctx context.Context, limit int) ([]*order.Order, error)

	// ListByStatus returns every order currently in one of statuses, oldest first.
	//
	// Example:
	//   active, err := repo.ListByStatus(ctx, order.Running, order.Paused, order.Done)
	ListByStatus(ctx context.Context, statuses ...order.Status) ([]*order.Order, error)
}
