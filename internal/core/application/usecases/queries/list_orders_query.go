// Package queries contains read operations for retrieving production state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return flat read models built with SQL rather than full aggregates.
package queries

import (
	"errors"
	"time"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/order"
	"batchplant/internal/pkg/errs"
	"batchplant/internal/pkg/guard"
)

const (
	// DefaultListLimit is used when no limit is given.
	DefaultListLimit = 50
	// MaxListLimit caps a single page of orders.
	MaxListLimit = 500
)

var ErrListOrdersQueryIsNotConstructed = errors.New(
	"ListOrdersQuery must be created via NewListOrdersQuery constructor",
)

// ListOrdersQuery retrieves the most recent orders with their progress.
//
// Example:
//
//	query, _ := NewListOrdersQuery(0) // default of 50
//	handler := NewListOrdersQueryHandler(db)
//
//	orders, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to list orders: %w", err)
//	}
//	for _, o := range orders {
//	    fmt.Printf("%s %s %d/%d\n", o.ClientName, o.Status, o.DoneCount, o.TotalCount)
//	}
type ListOrdersQuery struct {
	limit int

	guard guard.ConstructorGuard
}

// NewListOrdersQuery creates the query. A zero limit selects DefaultListLimit.
func NewListOrdersQuery(limit int) (ListOrdersQuery, error) {
	if limit == 0 {
		limit = DefaultListLimit
	}
	if limit < 1 || limit > MaxListLimit {
		return ListOrdersQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxListLimit)
	}
	return ListOrdersQuery{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

func (q ListOrdersQuery) Limit() int {
	return q.limit
}

// ListOrdersQueryResponse is one order in the list, newest first.
type ListOrdersQueryResponse struct {
	ID          kernel.UUID
	ClientName  string
	RecipeName  string
	TotalVolume kernel.Volume
	Status      order.Status
	DoneCount   int
	TotalCount  int
	CreatedAt   time.Time
}
